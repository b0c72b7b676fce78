package suggest

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Apply produces the improved text by applying every suggestion that carries
// ImprovedCode, in order. Formatting suggestions with a line replace that line; every
// other replacement becomes the whole working text, discarding earlier edits.
func Apply(original string, suggestions []Suggestion) string {
	working := original
	for _, s := range suggestions {
		if s.ImprovedCode == nil {
			continue
		}
		if s.Kind == Formatting && s.HasLine() {
			working = replaceLine(working, s.Line, *s.ImprovedCode)
			continue
		}
		working = *s.ImprovedCode
	}
	return working
}

// replaceLine swaps the 1-based line n; out-of-range lines leave text unchanged
func replaceLine(text string, n int, replacement string) string {
	lines := strings.Split(text, "\n")
	if n < 1 || n > len(lines) {
		return text
	}
	// Keep a CRLF line ending on the replaced line
	if strings.HasSuffix(lines[n-1], "\r") && !strings.HasSuffix(replacement, "\r") {
		replacement += "\r"
	}
	lines[n-1] = replacement
	return strings.Join(lines, "\n")
}

// Diff renders a line diff between original and improved. Unchanged lines are prefixed
// with two spaces, removed lines with "- " and added lines with "+ ". Identical inputs
// give an empty string.
func Diff(original, improved string) string {
	if original == improved {
		return ""
	}
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(original, improved)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(prefix)
			out.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				out.WriteByte('\n')
			}
		}
	}
	return out.String()
}
