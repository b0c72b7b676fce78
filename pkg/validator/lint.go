package validator

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// lineRule is one structural check applied to every physical line
type lineRule struct {
	name       string
	message    string
	suggestion string
	// check returns the 1-based column of the finding
	check func(line string) (column int, found bool)
}

// lineRules run in order on each line; every matching rule reports
var lineRules = []lineRule{
	{
		name:       "no-tabs",
		message:    "Found tabs instead of spaces",
		suggestion: "Replace tabs with 2 or 4 spaces",
		check: func(line string) (int, bool) {
			idx := strings.IndexByte(line, '\t')
			if idx < 0 {
				return 0, false
			}
			return runeColumn(line, idx), true
		},
	},
	{
		name:       "no-trailing-whitespace",
		message:    "Trailing whitespace",
		suggestion: "Remove trailing spaces at the end of the line",
		check: func(line string) (int, bool) {
			trimmed := strings.TrimRightFunc(line, unicode.IsSpace)
			if line == "" || trimmed == line {
				return 0, false
			}
			return utf8.RuneCountInString(trimmed) + 1, true
		},
	},
	{
		name:       "even-indentation",
		message:    "Inconsistent indentation",
		suggestion: "Use 2 or 4 spaces consistently for indentation",
		check: func(line string) (int, bool) {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				return 0, false
			}
			spaces := LeadingSpaces(line)
			return 1, spaces > 0 && spaces%2 == 1
		},
	},
}

// Lint scans raw text line by line for tabs, trailing whitespace and odd indentation.
// It never looks at the parsed value and collects every finding on every line.
func Lint(text string) []ValidationError {
	var findings []ValidationError
	for i, line := range SplitLines(text) {
		for _, rule := range lineRules {
			column, found := rule.check(line)
			if !found {
				continue
			}
			findings = append(findings, ValidationError{
				Kind:       FormatError,
				Line:       i + 1,
				Column:     column,
				Message:    rule.message,
				Suggestion: rule.suggestion,
			})
		}
	}
	return findings
}

// RuleName returns the name of the structural rule that produced message, or ""
func RuleName(message string) string {
	for _, rule := range lineRules {
		if rule.message == message {
			return rule.name
		}
	}
	return ""
}

// SplitLines splits text into physical lines. A "\r" before the line break is not part
// of the line.
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// LeadingSpaces counts the space characters that start line
func LeadingSpaces(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}

func runeColumn(line string, byteOffset int) int {
	return utf8.RuneCountInString(line[:byteOffset]) + 1
}
