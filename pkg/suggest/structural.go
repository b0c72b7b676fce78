package suggest

import (
	"strings"
	"unicode"

	"github.com/githubnext/yamlassist/pkg/validator"
)

// ruleSeverity maps structural rule names to suggestion severities
var ruleSeverity = map[string]Severity{
	"no-tabs":                SeverityWarning,
	"no-trailing-whitespace": SeverityInfo,
	"even-indentation":       SeverityWarning,
}

// StructuralSuggestions reports the structural linter findings as Formatting suggestions.
// Tab and trailing-whitespace findings carry the corrected line as ImprovedCode.
func StructuralSuggestions(text string) []Suggestion {
	findings := validator.Lint(text)
	if len(findings) == 0 {
		return nil
	}
	lines := validator.SplitLines(text)

	suggestions := make([]Suggestion, 0, len(findings))
	for _, f := range findings {
		rule := validator.RuleName(f.Message)
		severity, ok := ruleSeverity[rule]
		if !ok {
			severity = SeverityInfo
		}
		s := Suggestion{
			Kind:       Formatting,
			Severity:   severity,
			Line:       f.Line,
			Column:     f.Column,
			Message:    f.Message,
			Suggestion: f.Suggestion,
		}
		if rule == "no-tabs" || rule == "no-trailing-whitespace" {
			s.ImprovedCode = code(cleanLine(lines[f.Line-1]))
		}
		suggestions = append(suggestions, s)
	}
	return suggestions
}

// cleanLine expands tabs to two spaces and drops trailing whitespace. Both fixes go into
// one line so that applying either suggestion keeps the other.
func cleanLine(line string) string {
	return strings.TrimRightFunc(strings.ReplaceAll(line, "\t", "  "), unicode.IsSpace)
}
