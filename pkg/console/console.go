package console

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Position is a 1-based location in a source file
type Position struct {
	File   string
	Line   int
	Column int
}

// Diagnostic is one finding rendered for the terminal
type Diagnostic struct {
	Position Position
	Severity string   // "error", "warning", "info", "suggestion"
	Code     string   // short label such as "syntax" or "naming"
	Message  string
	// Context holds source lines starting at line ContextStart; when ContextStart is
	// zero the lines are taken to be centred on Position.Line
	Context      []string
	ContextStart int
	Hint         string
}

// Styles for different severities
var (
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5555"))

	warningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))

	infoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	suggestionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#BD93F9"))

	filePathStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#BD93F9"))

	lineNumberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	contextLineStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F8F8F2"))

	highlightStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#FF5555")).
			Foreground(lipgloss.Color("#282A36"))

	hintStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#50FA7B"))
)

// isTTY checks if stdout is a terminal
func isTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

// applyStyle conditionally applies styling based on TTY status
func applyStyle(style lipgloss.Style, text string) string {
	if isTTY() {
		return style.Render(text)
	}
	return text
}

// ToRelativePath converts an absolute path to a relative path from the current working directory
func ToRelativePath(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}

	wd, err := os.Getwd()
	if err != nil {
		return path
	}

	relPath, err := filepath.Rel(wd, path)
	if err != nil {
		return path
	}

	return relPath
}

// ContextLines returns the lines within radius of the 1-based line and the line number
// of the first one
func ContextLines(lines []string, line, radius int) (int, []string) {
	if line < 1 || line > len(lines) || radius < 0 {
		return 0, nil
	}
	start := max(1, line-radius)
	end := min(len(lines), line+radius)
	return start, lines[start-1 : end]
}

// FormatDiagnostic renders a diagnostic in the IDE-parseable form
// "file:line:column: severity[code]: message", followed by source context and a hint
func FormatDiagnostic(d Diagnostic) string {
	var output strings.Builder

	var typeStyle lipgloss.Style
	prefix := d.Severity
	switch d.Severity {
	case "warning":
		typeStyle = warningStyle
	case "info":
		typeStyle = infoStyle
	case "suggestion":
		typeStyle = suggestionStyle
	default:
		typeStyle = errorStyle
		prefix = "error"
	}
	if d.Code != "" {
		prefix += "[" + d.Code + "]"
	}

	if d.Position.File != "" {
		location := fmt.Sprintf("%s:%d:%d:", ToRelativePath(d.Position.File), d.Position.Line, d.Position.Column)
		output.WriteString(applyStyle(filePathStyle, location))
		output.WriteString(" ")
	}

	output.WriteString(applyStyle(typeStyle, prefix+":"))
	output.WriteString(" ")
	output.WriteString(d.Message)
	output.WriteString("\n")

	if len(d.Context) > 0 && d.Position.Line > 0 {
		output.WriteString(renderContext(d))
	}

	if d.Hint != "" {
		output.WriteString(applyStyle(hintStyle, "hint: "))
		output.WriteString(d.Hint)
		output.WriteString("\n")
	}

	return output.String()
}

// renderContext renders source lines with line numbers and a caret under the column.
// Columns count runes.
func renderContext(d Diagnostic) string {
	var output strings.Builder

	first := d.ContextStart
	if first == 0 {
		first = d.Position.Line - len(d.Context)/2
	}
	lineNumWidth := len(fmt.Sprintf("%d", first+len(d.Context)-1))

	for i, line := range d.Context {
		lineNum := first + i
		if lineNum < 1 {
			continue
		}

		output.WriteString(applyStyle(lineNumberStyle, fmt.Sprintf("%*d", lineNumWidth, lineNum)))
		output.WriteString(" | ")

		if lineNum != d.Position.Line {
			output.WriteString(applyStyle(contextLineStyle, line))
			output.WriteString("\n")
			continue
		}

		runes := []rune(line)
		col := d.Position.Column
		if col > 0 && col <= len(runes) {
			output.WriteString(applyStyle(contextLineStyle, string(runes[:col-1])))
			output.WriteString(applyStyle(highlightStyle, string(runes[col-1])))
			output.WriteString(applyStyle(contextLineStyle, string(runes[col:])))
		} else {
			output.WriteString(applyStyle(highlightStyle, line))
		}
		output.WriteString("\n")

		if col > 0 {
			output.WriteString(strings.Repeat(" ", lineNumWidth+3+col-1))
			output.WriteString(applyStyle(errorStyle, "^"))
			output.WriteString("\n")
		}
	}

	return output.String()
}

// FormatSuccessMessage formats a success message with styling
func FormatSuccessMessage(message string) string {
	successStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#50FA7B"))

	return applyStyle(successStyle, "✓ ") + message
}

// FormatInfoMessage formats an informational message
func FormatInfoMessage(message string) string {
	return applyStyle(infoStyle, "ℹ ") + message
}

// FormatWarningMessage formats a warning message
func FormatWarningMessage(message string) string {
	return applyStyle(warningStyle, "⚠ ") + message
}

// FormatErrorMessage formats a simple error message (for stderr output)
func FormatErrorMessage(message string) string {
	return applyStyle(errorStyle, "✗ ") + message
}

// FormatProgressMessage formats a progress/activity message
func FormatProgressMessage(message string) string {
	progressStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F1FA8C"))

	return applyStyle(progressStyle, "🔨 ") + message
}

// FormatCountMessage formats a count/numeric status message
func FormatCountMessage(message string) string {
	countStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#8BE9FD"))

	return applyStyle(countStyle, "📊 ") + message
}

// FormatVerboseMessage formats verbose debugging output
func FormatVerboseMessage(message string) string {
	verboseStyle := lipgloss.NewStyle().
		Italic(true).
		Foreground(lipgloss.Color("#6272A4"))

	return applyStyle(verboseStyle, "🔍 ") + message
}
