package validator

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/githubnext/yamlassist/pkg/parser"
)

// syntaxHint maps parser reason keywords to remediation text
type syntaxHint struct {
	keywords []string
	hint     string
}

// syntaxHints is matched case-insensitively against the parser reason; first match wins
var syntaxHints = []syntaxHint{
	{keywords: []string{"indent"}, hint: "Check your indentation. YAML requires spaces, not tabs"},
	{keywords: []string{"mapping"}, hint: "Check for missing colons (:) after keys"},
	{keywords: []string{"sequence"}, hint: "Check list syntax. List items must start with \"- \""},
	{keywords: []string{"quote", "string"}, hint: "Check for unmatched quotes or special characters"},
	{keywords: []string{"expected ':'"}, hint: "Check for missing colons (:) after keys"},
	{keywords: []string{"'-' indicator", "block entry"}, hint: "Check list syntax. List items must start with \"- \""},
	{keywords: []string{"unexpected end of stream"}, hint: "Check for unclosed quotes or brackets"},
}

const (
	defaultSyntaxHint    = "Check your YAML syntax"
	defaultSyntaxMessage = "Invalid YAML syntax"
)

// SyntaxHint returns the remediation text for a parser reason
func SyntaxHint(reason string) string {
	lower := strings.ToLower(reason)
	for _, h := range syntaxHints {
		for _, kw := range h.keywords {
			if strings.Contains(lower, kw) {
				return h.hint
			}
		}
	}
	return defaultSyntaxHint
}

// Classify validates text and returns every detected issue. The result is valid only
// when the text parses and neither the structural linter nor the duplicate-key check
// reports anything.
func Classify(text string) ValidationResult {
	result := ValidationResult{
		OriginalYAML: text,
		Errors:       []ValidationError{},
	}

	if strings.TrimSpace(text) == "" {
		result.Errors = append(result.Errors, ValidationError{
			Kind:       StructureError,
			Line:       1,
			Column:     1,
			Message:    "YAML input is empty",
			Suggestion: "Enter some YAML content to validate",
		})
		return result
	}

	outcome := parser.Parse(text)
	if !outcome.OK() {
		result.Errors = append(result.Errors, syntaxErrors(text, outcome.Failure)...)
		return result
	}

	result.Errors = append(result.Errors, Lint(text)...)
	result.Errors = append(result.Errors, DuplicateKeyErrors(outcome.Warnings)...)
	if len(result.Errors) > 0 {
		return result
	}

	result.IsValid = true
	result.Formatted = strings.TrimSpace(text)
	return result
}

// syntaxErrors turns a parse failure into validation errors. When the structural linter
// has a finding on the failing line, the structural findings are reported instead.
func syntaxErrors(text string, failure *parser.SyntaxFailure) []ValidationError {
	lines := SplitLines(text)
	line, column := clampPosition(lines, failure.Line+1, failure.Column+1)

	findings := Lint(text)
	for _, f := range findings {
		if f.Line == line && RuleName(f.Message) != "no-trailing-whitespace" {
			return findings
		}
	}

	message := failure.Reason
	if message == "" {
		message = defaultSyntaxMessage
	}
	return []ValidationError{{
		Kind:       SyntaxError,
		Line:       line,
		Column:     column,
		Message:    message,
		Suggestion: SyntaxHint(failure.Reason),
	}}
}

// clampPosition keeps a 1-based position inside the text. Lines past the end point at
// the end of the last line.
func clampPosition(lines []string, line, column int) (int, int) {
	if line < 1 || column < 1 {
		return 1, 1
	}
	if line > len(lines) {
		last := len(lines)
		return last, utf8.RuneCountInString(lines[last-1]) + 1
	}
	if maxColumn := utf8.RuneCountInString(lines[line-1]) + 1; column > maxColumn {
		column = maxColumn
	}
	return line, column
}

// DuplicateKeyErrors converts parser duplicate-key warnings into Structure errors.
// Root-level duplicates come first, nested ones follow, each group in detection order.
func DuplicateKeyErrors(warnings []parser.Warning) []ValidationError {
	var dups []parser.Warning
	for _, w := range warnings {
		if w.Kind == parser.DuplicateKeyWarning {
			dups = append(dups, w)
		}
	}
	sort.SliceStable(dups, func(i, j int) bool {
		return dups[i].Path == "" && dups[j].Path != ""
	})

	errs := make([]ValidationError, 0, len(dups))
	for _, w := range dups {
		key := w.Key
		if w.Path != "" {
			key = w.Path + "." + w.Key
		}
		errs = append(errs, ValidationError{
			Kind:       StructureError,
			Line:       w.Line,
			Column:     w.Column,
			Message:    fmt.Sprintf("Duplicate key %q (first defined at line %d)", key, w.FirstLine),
			Suggestion: "Remove or rename the duplicate key. Later values silently replace earlier ones",
		})
	}
	return errs
}
