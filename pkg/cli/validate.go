package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/githubnext/yamlassist/pkg/console"
	"github.com/githubnext/yamlassist/pkg/validator"
	"github.com/sourcegraph/conc/pool"
)

// MaxConcurrentValidations limits the number of files validated in parallel
const MaxConcurrentValidations = 8

// contextRadius is the number of source lines shown around a diagnostic
const contextRadius = 1

// ValidateConfig controls ValidateFiles
type ValidateConfig struct {
	// SchemaPath, when set, names a JSON schema every syntactically valid file is checked against
	SchemaPath string
	// Summary prints a per-file table after the diagnostics
	Summary bool
	Verbose bool
}

// FileReport is the validation outcome for one file
type FileReport struct {
	Path   string
	Text   string
	Result validator.ValidationResult
	Error  error // the file could not be read
}

// ErrValidationFailed is returned when at least one file has errors
type ErrValidationFailed struct {
	Invalid int
	Total   int
}

func (e *ErrValidationFailed) Error() string {
	return fmt.Sprintf("%d of %d files failed validation", e.Invalid, e.Total)
}

// ValidateFiles validates every path (directories expand to the YAML files inside them)
// and writes diagnostics to w in argument order.
func ValidateFiles(w io.Writer, paths []string, config ValidateConfig) error {
	files, err := expandPaths(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no YAML files found")
	}

	var schema *validator.Schema
	if config.SchemaPath != "" {
		data, err := os.ReadFile(config.SchemaPath)
		if err != nil {
			return fmt.Errorf("failed to read schema: %w", err)
		}
		if schema, err = validator.CompileSchema(string(data)); err != nil {
			return err
		}
	}

	reports := validateConcurrent(files, schema, config.Verbose)

	invalid := 0
	for _, report := range reports {
		if report.Error != nil {
			invalid++
			fmt.Fprintln(w, console.FormatErrorMessage(report.Error.Error()))
			continue
		}
		if !report.Result.IsValid {
			invalid++
		}
		writeReport(w, report)
	}

	if config.Summary && len(reports) > 1 {
		fmt.Fprint(w, renderSummary(reports))
	}

	if invalid > 0 {
		return &ErrValidationFailed{Invalid: invalid, Total: len(reports)}
	}
	return nil
}

// validateConcurrent validates files in parallel and returns the reports in input order
func validateConcurrent(files []string, schema *validator.Schema, verbose bool) []FileReport {
	type indexed struct {
		index  int
		report FileReport
	}

	p := pool.NewWithResults[indexed]().WithMaxGoroutines(MaxConcurrentValidations)
	for i, path := range files {
		p.Go(func() indexed {
			if verbose {
				fmt.Fprintln(os.Stderr, console.FormatVerboseMessage("Validating "+displayName(path)))
			}
			return indexed{index: i, report: ValidateFile(path, schema)}
		})
	}

	reports := make([]FileReport, len(files))
	for _, r := range p.Wait() {
		reports[r.index] = r.report
	}
	return reports
}

// ValidateFile classifies one file and, when the schema is non-nil and the document is
// well formed, checks it against the schema
func ValidateFile(path string, schema *validator.Schema) FileReport {
	report := FileReport{Path: path}
	text, err := readInput(path)
	if err != nil {
		report.Error = err
		return report
	}
	report.Text = text
	report.Result = validator.Classify(text)

	if schema != nil && report.Result.IsValid {
		if errs := schema.Validate(text); len(errs) > 0 {
			report.Result.IsValid = false
			report.Result.Errors = errs
			report.Result.Formatted = ""
		}
	}
	return report
}

func writeReport(w io.Writer, report FileReport) {
	name := displayName(report.Path)
	if report.Result.IsValid {
		fmt.Fprintln(w, console.FormatSuccessMessage(name+" is valid"))
		return
	}
	lines := validator.SplitLines(report.Text)
	for _, e := range report.Result.Errors {
		fmt.Fprint(w, console.FormatDiagnostic(errorDiagnostic(name, lines, e)))
	}
}

// errorDiagnostic converts a validation error into a console diagnostic with source context
func errorDiagnostic(file string, lines []string, e validator.ValidationError) console.Diagnostic {
	start, context := console.ContextLines(lines, e.Line, contextRadius)
	return console.Diagnostic{
		Position:     console.Position{File: file, Line: e.Line, Column: e.Column},
		Severity:     "error",
		Code:         string(e.Kind),
		Message:      e.Message,
		Context:      context,
		ContextStart: start,
		Hint:         e.Suggestion,
	}
}

func renderSummary(reports []FileReport) string {
	rows := make([][]string, 0, len(reports))
	total := 0
	for _, report := range reports {
		status := "valid"
		count := len(report.Result.Errors)
		switch {
		case report.Error != nil:
			status = "unreadable"
			count = 1
		case !report.Result.IsValid:
			status = "invalid"
		}
		total += count
		rows = append(rows, []string{displayName(report.Path), status, strconv.Itoa(count)})
	}
	return console.RenderTable(console.TableConfig{
		Title:          "Validation summary",
		Headers:        []string{"File", "Status", "Errors"},
		Rows:           rows,
		Align:          []console.Alignment{console.AlignLeft, console.AlignLeft, console.AlignRight},
		SeverityHeader: "Status",
		ShowTotal:      true,
		TotalRow:       []string{"TOTAL", "", strconv.Itoa(total)},
	})
}
