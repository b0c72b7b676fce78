package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/githubnext/yamlassist/pkg/console"
	"github.com/githubnext/yamlassist/pkg/constants"
	"github.com/githubnext/yamlassist/pkg/converter"
	"github.com/githubnext/yamlassist/pkg/settings"
	"github.com/githubnext/yamlassist/pkg/suggest"
	"github.com/githubnext/yamlassist/pkg/validator"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

// ValidateArgs are the arguments of the validate_yaml tool
type ValidateArgs struct {
	YAML   string `json:"yaml" jsonschema:"the YAML document to validate"`
	Schema string `json:"schema,omitempty" jsonschema:"optional JSON schema the document must satisfy"`
}

// AnalyzeArgs are the arguments of the analyze_yaml tool
type AnalyzeArgs struct {
	YAML string `json:"yaml" jsonschema:"the YAML document to analyze"`
}

// ConvertArgs are the arguments of the convert_yaml tool
type ConvertArgs struct {
	Input    string `json:"input" jsonschema:"the document to convert"`
	To       string `json:"to" jsonschema:"target format: json or yaml"`
	Indent   *int   `json:"indent,omitempty" jsonschema:"spaces per nesting level"`
	SortKeys bool   `json:"sortKeys,omitempty" jsonschema:"sort mapping keys"`
}

// mcpTools implements the tool handlers on top of the engine packages
type mcpTools struct {
	settings *settings.Settings
	analyzer *suggest.Analyzer
}

func newMCPTools(s *settings.Settings) *mcpTools {
	return &mcpTools{settings: s, analyzer: NewAnalyzer(s, os.Stderr)}
}

// NewMCPServer creates an MCP server exposing the validation, analysis and conversion tools
func NewMCPServer(s *settings.Settings) *mcp.Server {
	tools := newMCPTools(s)
	server := mcp.NewServer(&mcp.Implementation{Name: constants.CLIName, Version: GetVersion()}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_yaml",
		Description: "Validate a YAML document and report syntax, structure and formatting errors with positions",
	}, tools.validate)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_yaml",
		Description: "Suggest formatting, naming, best-practice, logical and security improvements for a YAML document",
	}, tools.analyze)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "convert_yaml",
		Description: "Convert YAML to JSON or JSON to YAML",
	}, tools.convert)

	return server
}

func (t *mcpTools) validate(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[ValidateArgs]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	result := validator.Classify(args.YAML)

	if args.Schema != "" && result.IsValid {
		errs, err := validator.ValidateSchema(args.YAML, args.Schema)
		if err != nil {
			return errorResult(err), nil
		}
		if len(errs) > 0 {
			result.IsValid = false
			result.Errors = errs
			result.Formatted = ""
		}
	}
	return jsonResult(result)
}

func (t *mcpTools) analyze(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[AnalyzeArgs]) (*mcp.CallToolResultFor[any], error) {
	return jsonResult(t.analyzer.Analyze(ctx, params.Arguments.YAML))
}

func (t *mcpTools) convert(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[ConvertArgs]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	format, err := ParseOutputFormat(args.To)
	if err != nil {
		return errorResult(err), nil
	}

	opts := t.settings.ConverterOptions()
	if args.Indent != nil {
		opts.Indent = *args.Indent
	}
	opts.SortKeys = opts.SortKeys || args.SortKeys

	var result converter.Result
	if format == constants.FormatJSON {
		result = converter.ToJSON(args.Input, opts)
	} else {
		result = converter.ToYAML(args.Input, opts)
	}
	if !result.Success {
		return errorResult(fmt.Errorf("%s", result.Error)), nil
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: result.Result}},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResultFor[any], error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

func errorResult(err error) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}

// NewMCPServerCommand creates the mcp-server command
func NewMCPServerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve validation, analysis and conversion tools over MCP on stdio",
		Long: `Run a Model Context Protocol server on standard input and output.

Tools:
  validate_yaml   Validate a YAML document, optionally against a JSON schema
  analyze_yaml    Suggest improvements for a YAML document
  convert_yaml    Convert between YAML and JSON

Settings are loaded from ` + constants.SettingsFileName + ` and ` + constants.EnvPrefix + `* variables as for every other command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			s, err := LoadSettings(cmd, verbose)
			if err != nil {
				return err
			}
			if verbose {
				fmt.Fprintln(os.Stderr, console.FormatInfoMessage("Serving MCP tools on stdio"))
			}
			return NewMCPServer(s).Run(cmd.Context(), mcp.NewStdioTransport())
		},
	}
	cmd.Flags().Bool("no-ai", false, "Disable the advisory provider")
	cmd.Flags().StringSlice("allow-host", nil, "Hosts excluded from the hardcoded endpoint check")
	return cmd
}
