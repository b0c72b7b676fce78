package mapper

// Span describes a location in the source YAML text.
type Span struct {
	StartLine  int // 1-based
	StartCol   int // 1-based
	EndLine    int
	EndCol     int
	Confidence float64 // 0.0 - 1.0
	Reason     string  // why this span was chosen
}

// ErrorMeta is the schema-failure metadata used to pick a span.
type ErrorMeta struct {
	Kind     string // last schema keyword: "type", "required", "additionalProperties", ...
	Property string // offending or missing property name when the keyword names one
}
