package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/githubnext/yamlassist/pkg/console"
	"github.com/githubnext/yamlassist/pkg/constants"
	"github.com/githubnext/yamlassist/pkg/converter"
)

// ConvertConfig controls ConvertFile
type ConvertConfig struct {
	To          constants.OutputFormat
	Output      string // explicit output path
	Write       bool   // write next to the input, replacing its extension
	SkipInvalid bool
	Verbose     bool
}

// ParseOutputFormat validates a --to flag value
func ParseOutputFormat(value string) (constants.OutputFormat, error) {
	switch f := constants.OutputFormat(strings.ToLower(value)); f {
	case constants.FormatJSON, constants.FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("invalid output format '%s'. Must be 'json' or 'yaml'", value)
}

// ConvertFile converts YAML to JSON, or JSON to YAML, depending on the target format
func ConvertFile(w io.Writer, path string, opts converter.Options, config ConvertConfig) error {
	text, err := readInput(path)
	if err != nil {
		return err
	}
	opts.SkipInvalid = config.SkipInvalid

	var result converter.Result
	if config.To == constants.FormatJSON {
		result = converter.ToJSON(text, opts)
	} else {
		result = converter.ToYAML(text, opts)
	}
	if !result.Success {
		return fmt.Errorf("failed to convert %s: %s", displayName(path), result.Error)
	}

	content := result.Result
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	output := config.Output
	if output == "" && config.Write {
		if path == "-" {
			return fmt.Errorf("--write needs a file argument")
		}
		output = strings.TrimSuffix(path, filepath.Ext(path)) + config.To.Extension()
	}
	if err := writeOutput(w, output, content, nil); err != nil {
		return err
	}
	if output != "" && config.Verbose {
		fmt.Fprintln(os.Stderr, console.FormatVerboseMessage(fmt.Sprintf("Wrote %s (%s)", console.ToRelativePath(output), config.To.MIMEType())))
	}
	return nil
}

// FormatFiles re-emits each file in canonical form. With write set the files are
// rewritten in place, and if any file fails every rewritten file is restored.
func FormatFiles(w io.Writer, paths []string, opts converter.Options, write, verbose bool) error {
	files, err := expandPaths(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no YAML files found")
	}

	tracker := NewFileTracker()
	for _, path := range files {
		if err := formatOne(w, path, opts, write, tracker); err != nil {
			if rollbackErr := tracker.Rollback(verbose); rollbackErr != nil {
				fmt.Fprintln(os.Stderr, console.FormatWarningMessage(rollbackErr.Error()))
			}
			return err
		}
	}

	if write {
		fmt.Fprintln(os.Stderr, console.FormatSuccessMessage(fmt.Sprintf("Rewrote %d of %d files", len(tracker.GetAllFiles()), len(files))))
	}
	return nil
}

func formatOne(w io.Writer, path string, opts converter.Options, write bool, tracker *FileTracker) error {
	text, err := readInput(path)
	if err != nil {
		return err
	}
	result := converter.Format(text, opts)
	if !result.Success {
		return fmt.Errorf("failed to format %s: %s", displayName(path), result.Error)
	}
	if !write || path == "-" {
		_, err := io.WriteString(w, result.Result)
		return err
	}
	if result.Result == text {
		return nil
	}
	return writeOutput(w, path, result.Result, tracker)
}

// MinifyFile prints the most compact YAML rendering of path
func MinifyFile(w io.Writer, path, output string) error {
	text, err := readInput(path)
	if err != nil {
		return err
	}
	result := converter.Minify(text)
	if !result.Success {
		return fmt.Errorf("failed to minify %s: %s", displayName(path), result.Error)
	}
	return writeOutput(w, output, result.Result, nil)
}
