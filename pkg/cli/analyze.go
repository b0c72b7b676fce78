package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/githubnext/yamlassist/pkg/console"
	"github.com/githubnext/yamlassist/pkg/settings"
	"github.com/githubnext/yamlassist/pkg/suggest"
	"github.com/githubnext/yamlassist/pkg/validator"
)

// maxMessageWidth caps table cells; the full message is in the diagnostic above the table
const maxMessageWidth = 60

// AnalyzeConfig controls AnalyzeFile
type AnalyzeConfig struct {
	JSON    bool // print the analysis result as JSON
	Verbose bool
}

// ImproveConfig controls ImproveFile
type ImproveConfig struct {
	Diff    bool   // print a line diff instead of the improved document
	Output  string // write the improved document here instead of w
	Verbose bool
}

// AnalyzeFile runs the suggestion engine over path and prints the suggestions
func AnalyzeFile(ctx context.Context, w io.Writer, path string, s *settings.Settings, config AnalyzeConfig) error {
	text, err := readInput(path)
	if err != nil {
		return err
	}
	result := runAnalysis(ctx, text, s)

	if config.JSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	name := displayName(path)
	if !result.HasImprovements {
		fmt.Fprintln(w, console.FormatSuccessMessage(name+": no suggestions"))
		return nil
	}

	lines := validator.SplitLines(text)
	for _, suggestion := range result.Suggestions {
		fmt.Fprint(w, console.FormatDiagnostic(suggestionDiagnostic(name, lines, suggestion)))
	}
	fmt.Fprint(w, renderSuggestionTable(result.Suggestions))
	fmt.Fprintln(w, console.FormatCountMessage(fmt.Sprintf("%d suggestions, confidence %.2f", len(result.Suggestions), result.ConfidenceScore)))
	return nil
}

// ImproveFile applies every suggestion to path and prints the improved document or a diff
func ImproveFile(ctx context.Context, w io.Writer, path string, s *settings.Settings, config ImproveConfig) error {
	text, err := readInput(path)
	if err != nil {
		return err
	}
	result := runAnalysis(ctx, text, s)
	if !result.HasImprovements {
		fmt.Fprintln(os.Stderr, console.FormatInfoMessage(displayName(path)+": nothing to improve"))
		if config.Diff {
			return nil
		}
		return writeOutput(w, config.Output, text, nil)
	}

	if config.Verbose {
		fmt.Fprintln(os.Stderr, console.FormatVerboseMessage(fmt.Sprintf("Applied %d suggestions", len(result.Suggestions))))
	}
	if config.Diff {
		_, err := io.WriteString(w, suggest.Diff(text, result.ImprovedYAML))
		return err
	}
	if err := writeOutput(w, config.Output, result.ImprovedYAML, nil); err != nil {
		return err
	}
	if config.Output != "" {
		fmt.Fprintln(os.Stderr, console.FormatSuccessMessage("Wrote "+console.ToRelativePath(config.Output)))
	}
	return nil
}

// runAnalysis analyzes text, showing a spinner while the advisory provider runs
func runAnalysis(ctx context.Context, text string, s *settings.Settings) suggest.AnalysisResult {
	analyzer := NewAnalyzer(s, os.Stderr)
	if !s.EnableAISuggestions {
		return analyzer.Analyze(ctx, text)
	}

	spinner := console.NewSpinner("Running advisory checks...")
	spinner.Start()
	defer spinner.Stop()
	return analyzer.Analyze(ctx, text)
}

// suggestionDiagnostic converts a suggestion into a console diagnostic. Suggestions
// without a line render without location or context.
func suggestionDiagnostic(file string, lines []string, s suggest.Suggestion) console.Diagnostic {
	d := console.Diagnostic{
		Position: console.Position{File: file, Line: s.Line, Column: max(s.Column, 1)},
		Severity: string(s.Severity),
		Code:     string(s.Kind),
		Message:  s.Message,
		Hint:     s.Suggestion,
	}
	if !s.HasLine() {
		d.Position = console.Position{}
		return d
	}
	d.ContextStart, d.Context = console.ContextLines(lines, s.Line, 0)
	return d
}

func renderSuggestionTable(suggestions []suggest.Suggestion) string {
	rows := make([][]string, 0, len(suggestions))
	for _, s := range suggestions {
		line := "-"
		if s.HasLine() {
			line = strconv.Itoa(s.Line)
		}
		fix := "no"
		if s.ImprovedCode != nil {
			fix = "yes"
		}
		rows = append(rows, []string{line, string(s.Kind), string(s.Severity), fix, s.Message})
	}
	return console.RenderTable(console.TableConfig{
		Headers:        []string{"Line", "Type", "Severity", "Fix", "Message"},
		Rows:           rows,
		Align:          []console.Alignment{console.AlignRight},
		MaxColumnWidth: maxMessageWidth,
		SeverityHeader: "Severity",
	})
}
