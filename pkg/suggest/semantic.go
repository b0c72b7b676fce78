package suggest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/githubnext/yamlassist/pkg/parser"
	"github.com/githubnext/yamlassist/pkg/sanitizer"
)

// MaxTopLevelKeys is the size above which a document is reported as a large configuration
const MaxTopLevelKeys = 10

var (
	camelCasePattern = regexp.MustCompile(`[a-z][A-Z]`)
	wordBoundary     = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// semanticRule is one best-practice check over the raw text and its parsed record
type semanticRule struct {
	name  string
	check func(text string, record parser.Value, cfg *semanticConfig) []Suggestion
}

type semanticConfig struct {
	allowedHosts []string
}

// semanticRules run in order after the naming check
var semanticRules = []semanticRule{
	{name: "version-field", check: checkVersionField},
	{name: "hardcoded-endpoints", check: checkEndpoints},
	{name: "large-config", check: checkLargeConfig},
}

// SemanticSuggestions scans a parsed record for naming and best-practice issues. Values
// other than mappings contribute nothing.
func SemanticSuggestions(text string, value parser.Value) []Suggestion {
	return semanticSuggestions(text, value, &semanticConfig{})
}

func semanticSuggestions(text string, value parser.Value, cfg *semanticConfig) []Suggestion {
	if !value.IsRecord() {
		return nil
	}

	suggestions := namingSuggestions(value)
	for _, rule := range semanticRules {
		suggestions = append(suggestions, rule.check(text, value, cfg)...)
	}
	return suggestions
}

// namingSuggestions flags camelCase keys, descending into nested records including the
// records held in sequences
func namingSuggestions(value parser.Value) []Suggestion {
	var suggestions []Suggestion
	switch value.Kind {
	case parser.SequenceKind:
		for _, item := range value.Items {
			suggestions = append(suggestions, namingSuggestions(item)...)
		}
	case parser.MappingKind:
		for _, entry := range value.Entries {
			if camelCasePattern.MatchString(entry.Key) {
				suggestions = append(suggestions, Suggestion{
					Kind:     Naming,
					Severity: SeveritySuggestion,
					Line:     entry.Line,
					Column:   entry.Column,
					Message:  fmt.Sprintf("Consider using kebab-case or snake_case for key %q", entry.Key),
					Suggestion: fmt.Sprintf("Rename to %q or %q for consistency",
						ToKebabCase(entry.Key), ToSnakeCase(entry.Key)),
				})
			}
			suggestions = append(suggestions, namingSuggestions(entry.Value)...)
		}
	}
	return suggestions
}

// ToKebabCase converts camelCase to kebab-case
func ToKebabCase(key string) string {
	return strings.ToLower(wordBoundary.ReplaceAllString(key, "${1}-${2}"))
}

// ToSnakeCase converts camelCase to snake_case
func ToSnakeCase(key string) string {
	return strings.ToLower(wordBoundary.ReplaceAllString(key, "${1}_${2}"))
}

func checkVersionField(text string, record parser.Value, _ *semanticConfig) []Suggestion {
	if record.Has("version") || record.Has("apiVersion") {
		return nil
	}
	return []Suggestion{{
		Kind:         BestPractice,
		Severity:     SeveritySuggestion,
		Message:      "Consider adding a version field",
		Suggestion:   "A version field helps track configuration changes over time",
		ImprovedCode: code("version: \"1.0\"\n" + text),
	}}
}

func checkEndpoints(text string, _ parser.Value, cfg *semanticConfig) []Suggestion {
	endpoints := sanitizer.FindEndpoints(text, &sanitizer.EndpointConfig{AllowDomains: cfg.allowedHosts})
	if len(endpoints) == 0 {
		return nil
	}
	first := endpoints[0]
	return []Suggestion{{
		Kind:       BestPractice,
		Severity:   SeverityInfo,
		Line:       first.Line,
		Column:     first.Column,
		Message:    fmt.Sprintf("Hardcoded URLs or IP addresses detected (%d found, first: %s)", len(endpoints), first.Value),
		Suggestion: "Consider moving URLs and IP addresses to environment variables or a separate configuration file",
	}}
}

func checkLargeConfig(_ string, record parser.Value, _ *semanticConfig) []Suggestion {
	if len(record.Entries) <= MaxTopLevelKeys {
		return nil
	}
	return []Suggestion{{
		Kind:       BestPractice,
		Severity:   SeveritySuggestion,
		Message:    fmt.Sprintf("Large configuration detected (%d top-level keys)", len(record.Entries)),
		Suggestion: "Consider splitting the configuration into multiple files or grouping related keys",
	}}
}
