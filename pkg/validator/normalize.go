package validator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// "(3:5)" as appended by exception-style parsers, "[3:5]" as printed by goccy
	positionMarker = regexp.MustCompile(`[(\[](\d+):(\d+)[)\]]`)
	lineMarker     = regexp.MustCompile(`\bline (\d+)\b`)

	technicalPrefixes = []*regexp.Regexp{
		regexp.MustCompile(`^[A-Za-z]*(Exception|Error):\s*`),
		regexp.MustCompile(`^yaml:\s*`),
		regexp.MustCompile(`^\[\d+:\d+\]\s*`),
		regexp.MustCompile(`^line \d+:\s*(column \d+:\s*)?`),
	}
	trailingMarker = regexp.MustCompile(`\s*\(\d+:\d+\)\s*$`)
)

// NormalizeErrorMessage turns a raw parser message into a single user-facing sentence.
// Exception prefixes and position markers are removed and, when a position was present,
// "(Around Line N)" is appended.
func NormalizeErrorMessage(raw string) string {
	msg := strings.TrimSpace(raw)
	if msg == "" {
		return defaultSyntaxMessage
	}

	line := 0
	if m := positionMarker.FindStringSubmatch(msg); m != nil {
		line, _ = strconv.Atoi(m[1])
	} else if m := lineMarker.FindStringSubmatch(msg); m != nil {
		line, _ = strconv.Atoi(m[1])
	}

	// Source snippets follow the first line
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}

	for stripped := true; stripped; {
		stripped = false
		for _, prefix := range technicalPrefixes {
			if loc := prefix.FindStringIndex(msg); loc != nil && loc[1] > 0 {
				msg = msg[loc[1]:]
				stripped = true
			}
		}
	}
	msg = trailingMarker.ReplaceAllString(msg, "")
	msg = strings.TrimSpace(msg)

	if msg == "" {
		msg = defaultSyntaxMessage
	}
	first, size := utf8.DecodeRuneInString(msg)
	msg = string(unicode.ToUpper(first)) + msg[size:]

	if line > 0 {
		msg = fmt.Sprintf("%s (Around Line %d)", msg, line)
	}
	return msg
}
