package suggest

// Kind classifies a suggestion
type Kind string

const (
	Formatting   Kind = "formatting"
	Naming       Kind = "naming"
	BestPractice Kind = "best-practice"
	Logical      Kind = "logical"
	Security     Kind = "security"
)

// Severity is how strongly a suggestion should be presented
type Severity string

const (
	SeverityInfo       Severity = "info"
	SeverityWarning    Severity = "warning"
	SeveritySuggestion Severity = "suggestion"
)

// Suggestion is one style, best-practice or security finding. Line and Column are 1-based
// and zero when absent.
//
// ImprovedCode, when set, replaces the single line Line for Formatting suggestions that
// carry a line; otherwise it replaces the whole document.
type Suggestion struct {
	Kind         Kind     `json:"type"`
	Severity     Severity `json:"severity"`
	Line         int      `json:"line,omitempty"`
	Column       int      `json:"column,omitempty"`
	Message      string   `json:"message"`
	Suggestion   string   `json:"suggestion"`
	ImprovedCode *string  `json:"improvedCode,omitempty"`
}

// HasLine reports whether the suggestion is anchored to a line
func (s Suggestion) HasLine() bool { return s.Line > 0 }

// AnalysisResult is the outcome of Analyze. HasImprovements is true iff Suggestions is
// non-empty; ImprovedYAML is only set in that case.
type AnalysisResult struct {
	HasImprovements bool         `json:"hasImprovements"`
	Suggestions     []Suggestion `json:"suggestions"`
	ImprovedYAML    string       `json:"improvedYaml,omitempty"`
	ConfidenceScore float64      `json:"confidenceScore"`
}

func code(s string) *string { return &s }
