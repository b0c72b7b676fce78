package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/githubnext/yamlassist/pkg/cli"
	"github.com/githubnext/yamlassist/pkg/console"
	"github.com/githubnext/yamlassist/pkg/constants"
	"github.com/spf13/cobra"
)

// Build-time variables set by GoReleaser
var (
	version = "dev"
)

// Global flags
var verbose bool

// fail prints err and exits with status 1
func fail(err error) {
	fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
	os.Exit(1)
}

// inputArg returns the single file argument, defaulting to standard input
func inputArg(args []string) string {
	if len(args) == 0 {
		return "-"
	}
	return args[0]
}

var rootCmd = &cobra.Command{
	Use:   constants.CLIName,
	Short: "Validate, improve and convert YAML documents",
	Long: `Validate YAML documents, suggest improvements and convert between YAML and JSON.

Every command that takes a file reads standard input when the file is omitted or "-".
Preferences are read from ` + constants.SettingsFileName + ` in the working directory and from
` + constants.EnvPrefix + `* environment variables (a ` + constants.EnvFileName + ` file is honoured); flags win.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [files or directories...]",
	Short: "Validate YAML files and report errors with positions",
	Long: `Validate YAML files and report syntax, structure and formatting errors.

Directories expand to the .yml and .yaml files directly inside them. The command exits with
status 1 when any file is invalid.

Examples:
  ` + constants.CLIName + ` validate config.yml
  ` + constants.CLIName + ` validate deploy/ --summary
  cat config.yml | ` + constants.CLIName + ` validate`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			args = []string{"-"}
		}
		summary, _ := cmd.Flags().GetBool("summary")
		schemaPath, _ := cmd.Flags().GetString("schema")
		config := cli.ValidateConfig{SchemaPath: schemaPath, Summary: summary, Verbose: verbose}
		if err := cli.ValidateFiles(os.Stdout, args, config); err != nil {
			fail(err)
		}
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema [files...] --schema <schema.json>",
	Short: "Validate YAML files against a JSON schema",
	Long: `Validate YAML files against a JSON schema. Schema violations are reported at the
position of the offending YAML node.

Examples:
  ` + constants.CLIName + ` schema values.yaml --schema values.schema.json`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			args = []string{"-"}
		}
		schemaPath, _ := cmd.Flags().GetString("schema")
		summary, _ := cmd.Flags().GetBool("summary")
		config := cli.ValidateConfig{SchemaPath: schemaPath, Summary: summary, Verbose: verbose}
		if err := cli.ValidateFiles(os.Stdout, args, config); err != nil {
			fail(err)
		}
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Suggest improvements for a YAML document",
	Long: `Analyze a YAML document and list formatting, naming, best-practice, logical and
security suggestions with a confidence score.

Examples:
  ` + constants.CLIName + ` analyze config.yml
  ` + constants.CLIName + ` analyze config.yml --json
  ` + constants.CLIName + ` analyze config.yml --no-ai`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, err := cli.LoadSettings(cmd, verbose)
		if err != nil {
			fail(err)
		}
		jsonOutput, _ := cmd.Flags().GetBool("json")
		config := cli.AnalyzeConfig{JSON: jsonOutput, Verbose: verbose}
		if err := cli.AnalyzeFile(cmd.Context(), os.Stdout, inputArg(args), s, config); err != nil {
			fail(err)
		}
	},
}

var improveCmd = &cobra.Command{
	Use:   "improve [file]",
	Short: "Apply every suggestion and print the improved document",
	Long: `Apply every available suggestion to a YAML document.

Examples:
  ` + constants.CLIName + ` improve config.yml
  ` + constants.CLIName + ` improve config.yml --diff
  ` + constants.CLIName + ` improve config.yml -o config.improved.yml`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, err := cli.LoadSettings(cmd, verbose)
		if err != nil {
			fail(err)
		}
		diff, _ := cmd.Flags().GetBool("diff")
		output, _ := cmd.Flags().GetString("output")
		config := cli.ImproveConfig{Diff: diff, Output: output, Verbose: verbose}
		if err := cli.ImproveFile(cmd.Context(), os.Stdout, inputArg(args), s, config); err != nil {
			fail(err)
		}
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert [file] --to json|yaml",
	Short: "Convert YAML to JSON or JSON to YAML",
	Long: `Convert a YAML document to JSON, or a JSON document to YAML.

Examples:
  ` + constants.CLIName + ` convert config.yml --to json
  ` + constants.CLIName + ` convert config.yml --to json --indent 0
  ` + constants.CLIName + ` convert data.json --to yaml --sort-keys
  ` + constants.CLIName + ` convert config.yml --to json --write   # writes config.json`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		to, _ := cmd.Flags().GetString("to")
		format, err := cli.ParseOutputFormat(to)
		if err != nil {
			fail(err)
		}
		s, err := cli.LoadSettings(cmd, verbose)
		if err != nil {
			fail(err)
		}
		output, _ := cmd.Flags().GetString("output")
		write, _ := cmd.Flags().GetBool("write")
		skipInvalid, _ := cmd.Flags().GetBool("skip-invalid")
		config := cli.ConvertConfig{To: format, Output: output, Write: write, SkipInvalid: skipInvalid, Verbose: verbose}
		if err := cli.ConvertFile(os.Stdout, inputArg(args), s.ConverterOptions(), config); err != nil {
			fail(err)
		}
	},
}

var formatCmd = &cobra.Command{
	Use:   "format [files or directories...]",
	Short: "Re-emit YAML documents in canonical form",
	Long: `Re-emit YAML documents with consistent indentation. Comments are not preserved.

With --write the files are rewritten in place; if any file fails, every file already
rewritten is restored.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			args = []string{"-"}
		}
		s, err := cli.LoadSettings(cmd, verbose)
		if err != nil {
			fail(err)
		}
		write, _ := cmd.Flags().GetBool("write")
		if err := cli.FormatFiles(os.Stdout, args, s.ConverterOptions(), write, verbose); err != nil {
			fail(err)
		}
	},
}

var minifyCmd = &cobra.Command{
	Use:   "minify [file]",
	Short: "Print the most compact YAML rendering of a document",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		if err := cli.MinifyFile(os.Stdout, inputArg(args), output); err != nil {
			fail(err)
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(console.FormatInfoMessage(fmt.Sprintf("%s version %s", constants.CLIName, version)))
	},
}

// addConverterFlags registers the flags that override converter settings
func addConverterFlags(cmd *cobra.Command) {
	cmd.Flags().Int("indent", 2, "Spaces per nesting level (JSON: 0 for compact output)")
	cmd.Flags().Bool("sort-keys", false, "Sort mapping keys")
	cmd.Flags().Int("flow-level", -1, "Nesting depth from which YAML collections use flow style (-1 for block style)")
}

// addAnalyzerFlags registers the flags that override analyzer settings
func addAnalyzerFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-ai", false, "Disable the advisory provider")
	cmd.Flags().StringSlice("allow-host", nil, "Hosts excluded from the hardcoded endpoint check")
}

func init() {
	// Add global verbose flag to root command
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output showing detailed information")

	validateCmd.Flags().Bool("summary", false, "Print a per-file summary table")
	validateCmd.Flags().String("schema", "", "Also validate against this JSON schema file")

	schemaCmd.Flags().String("schema", "", "JSON schema file")
	schemaCmd.Flags().Bool("summary", false, "Print a per-file summary table")
	_ = schemaCmd.MarkFlagRequired("schema")

	analyzeCmd.Flags().Bool("json", false, "Print the analysis result as JSON")
	addAnalyzerFlags(analyzeCmd)

	improveCmd.Flags().Bool("diff", false, "Print a line diff instead of the improved document")
	improveCmd.Flags().StringP("output", "o", "", "Write the improved document to a file")
	addAnalyzerFlags(improveCmd)

	convertCmd.Flags().String("to", "", "Target format: json or yaml")
	convertCmd.Flags().StringP("output", "o", "", "Write the result to a file")
	convertCmd.Flags().BoolP("write", "w", false, "Write next to the input with the target extension")
	convertCmd.Flags().Bool("skip-invalid", false, "Drop values the target format cannot represent")
	_ = convertCmd.MarkFlagRequired("to")
	addConverterFlags(convertCmd)

	formatCmd.Flags().BoolP("write", "w", false, "Rewrite files in place")
	addConverterFlags(formatCmd)

	minifyCmd.Flags().StringP("output", "o", "", "Write the result to a file")

	// Add all commands to root
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(improveCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(minifyCmd)
	rootCmd.AddCommand(cli.NewWatchCommand())
	rootCmd.AddCommand(cli.NewMCPServerCommand())
	rootCmd.AddCommand(versionCmd)
}

func main() {
	// Set version information in the CLI package
	cli.SetVersionInfo(version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		stop()
		os.Exit(1)
	}
}
