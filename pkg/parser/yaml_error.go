package parser

import (
	"regexp"
	"strconv"
	"strings"

	goyaml "github.com/goccy/go-yaml"
	goparser "github.com/goccy/go-yaml/parser"
)

// errorPattern recognises one parser error layout. Groups are line, optional column, message.
type errorPattern struct {
	re        *regexp.Regexp
	hasColumn bool
}

// Tried in order: the most specific layouts come first
var errorPatterns = []errorPattern{
	// goccy: "[3:5] mapping value is not allowed in this context"
	{re: regexp.MustCompile(`^\s*\[(\d+):(\d+)\]\s*(.*)`), hasColumn: true},
	// "yaml: line 3: column 5: message"
	{re: regexp.MustCompile(`yaml: line (\d+): column (\d+): (.*)`), hasColumn: true},
	// "yaml: line 3: message"
	{re: regexp.MustCompile(`yaml: line (\d+): (.*)`)},
	// "yaml: unmarshal errors:\n  line 4: message"
	{re: regexp.MustCompile(`(?m)^\s*line (\d+): (.*)`)},
}

// ExtractYAMLError extracts the 1-based line and column and the bare message from a
// YAML parser error. startLine is added to the line so callers parsing an embedded
// document can report file positions. Column defaults to 1 when only a line is known;
// line and column are 0 when the error carries no position.
func ExtractYAMLError(err error, startLine int) (line int, column int, message string) {
	errStr := err.Error()

	for _, p := range errorPatterns {
		m := p.re.FindStringSubmatch(errStr)
		if m == nil {
			continue
		}
		l, convErr := strconv.Atoi(m[1])
		if convErr != nil {
			continue
		}
		column = 1
		message = m[2]
		if p.hasColumn {
			if c, convErr := strconv.Atoi(m[2]); convErr == nil && c > 0 {
				column = c
			}
			message = m[3]
		}
		return l + startLine, column, firstLine(message)
	}

	return 0, 0, trimYAMLPrefix(errStr)
}

// locateSyntaxError asks the token-based goccy parser for a precise 1-based position
func locateSyntaxError(text string) (line int, column int, ok bool) {
	defer func() {
		if recover() != nil {
			line, column, ok = 0, 0, false
		}
	}()

	_, err := goparser.ParseBytes([]byte(text), 0)
	if err == nil {
		return 0, 0, false
	}
	m := errorPatterns[0].re.FindStringSubmatch(goyaml.FormatError(err, false, false))
	if m == nil {
		return 0, 0, false
	}
	line, _ = strconv.Atoi(m[1])
	column, _ = strconv.Atoi(m[2])
	return line, column, line > 0 && column > 0
}

func trimYAMLPrefix(msg string) string {
	return firstLine(strings.TrimPrefix(strings.TrimSpace(msg), "yaml: "))
}

func firstLine(msg string) string {
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return strings.TrimSpace(msg)
}
