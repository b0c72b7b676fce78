package suggest

import (
	"context"
	"regexp"
	"strings"

	"github.com/githubnext/yamlassist/pkg/parser"
)

// Advisor is an optional source of suggestions beyond the built-in rules
type Advisor interface {
	Advise(ctx context.Context, text string, value parser.Value) ([]Suggestion, error)
}

// AdvisorFunc adapts a function to the Advisor interface
type AdvisorFunc func(ctx context.Context, text string, value parser.Value) ([]Suggestion, error)

// Advise calls f
func (f AdvisorFunc) Advise(ctx context.Context, text string, value parser.Value) ([]Suggestion, error) {
	return f(ctx, text, value)
}

var (
	quotedPortPattern = regexp.MustCompile(`port:\s*"(\d+)"`)
	sensitivePattern  = regexp.MustCompile(`(?i)password|secret`)
	sensitiveValue    = regexp.MustCompile(`(?i)(password|secret):\s*"[^"]*"`)
)

// HeuristicAdvisor is the built-in advisory provider. It flags quoted port numbers and
// inline credentials.
type HeuristicAdvisor struct{}

// Advise implements Advisor
func (HeuristicAdvisor) Advise(ctx context.Context, text string, _ parser.Value) ([]Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var suggestions []Suggestion
	if loc := quotedPortPattern.FindStringIndex(text); loc != nil {
		line, column := position(text, loc[0])
		suggestions = append(suggestions, Suggestion{
			Kind:         Logical,
			Severity:     SeverityWarning,
			Line:         line,
			Column:       column,
			Message:      "Port numbers should be numbers, not strings",
			Suggestion:   "Remove the quotes around the port number",
			ImprovedCode: code(quotedPortPattern.ReplaceAllString(text, "port: $1")),
		})
	}

	if loc := sensitivePattern.FindStringIndex(text); loc != nil {
		line, column := position(text, loc[0])
		s := Suggestion{
			Kind:       Security,
			Severity:   SeverityWarning,
			Line:       line,
			Column:     column,
			Message:    "Possible sensitive data in configuration",
			Suggestion: "Load passwords and secrets from environment variables or a secret manager",
		}
		if improved, ok := replaceFirstSecret(text); ok {
			s.ImprovedCode = code(improved)
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, nil
}

// replaceFirstSecret substitutes the first quoted password/secret value with an
// environment placeholder named after the key
func replaceFirstSecret(text string) (string, bool) {
	m := sensitiveValue.FindStringSubmatchIndex(text)
	if m == nil {
		return "", false
	}
	key := text[m[2]:m[3]]
	replacement := key + `: "${` + strings.ToUpper(key) + `_FROM_ENV}"`
	return text[:m[0]] + replacement + text[m[1]:], true
}

// position converts a byte offset into a 1-based line and rune column
func position(text string, offset int) (int, int) {
	before := text[:offset]
	line := strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1
	return line, len([]rune(before[lineStart:])) + 1
}
