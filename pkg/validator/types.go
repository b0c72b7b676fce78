package validator

// ErrorKind is the validation error taxonomy
type ErrorKind string

const (
	// SyntaxError is reported by the YAML parser; its position is known
	SyntaxError ErrorKind = "syntax"
	// StructureError covers logical issues independent of the grammar (empty input, duplicate keys, schema)
	StructureError ErrorKind = "structure"
	// FormatError covers whitespace and indentation style
	FormatError ErrorKind = "format"
)

// ValidationError is one issue at a fixed 1-based position in the source text
type ValidationError struct {
	Kind       ErrorKind `json:"type"`
	Line       int       `json:"line"`
	Column     int       `json:"column"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
}

// ValidationResult is the outcome of Classify. IsValid implies Errors is empty and
// Formatted holds the trimmed input.
type ValidationResult struct {
	IsValid      bool              `json:"isValid"`
	Errors       []ValidationError `json:"errors"`
	Formatted    string            `json:"formatted,omitempty"`
	OriginalYAML string            `json:"originalYaml"`
}
