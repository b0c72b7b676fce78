package mapper

import (
	"errors"
	"strings"
)

// decodeJSONPointer decodes an RFC 6901 pointer such as "/services/0/port" into
// its unescaped segments. "" and "/" both address the document root.
func decodeJSONPointer(ptr string) ([]string, error) {
	if ptr == "" || ptr == "/" {
		return []string{}, nil
	}
	if !strings.HasPrefix(ptr, "/") {
		return nil, errors.New("invalid json pointer: must start with '/'")
	}
	parts := strings.Split(ptr[1:], "/")
	for i, p := range parts {
		parts[i] = strings.NewReplacer("~1", "/", "~0", "~").Replace(p)
	}
	return parts, nil
}

// EncodeJSONPointer builds a pointer from instance-location segments
func EncodeJSONPointer(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	escaper := strings.NewReplacer("~", "~0", "/", "~1")
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(escaper.Replace(s))
	}
	return b.String()
}

// isIndex reports whether segment is a non-negative decimal array index
func isIndex(segment string) bool {
	if segment == "" {
		return false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
