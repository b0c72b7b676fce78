package suggest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/githubnext/yamlassist/pkg/console"
	"github.com/githubnext/yamlassist/pkg/parser"
)

// Analyzer aggregates structural, semantic and advisory suggestions for a document.
// It is safe for concurrent use.
type Analyzer struct {
	advisor      Advisor
	warnings     io.Writer
	allowedHosts []string
	cache        *resultCache
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithAdvisor enables an advisory provider. Without one, only built-in rules run.
func WithAdvisor(advisor Advisor) Option {
	return func(a *Analyzer) { a.advisor = advisor }
}

// WithWarningWriter sets where advisory failures are reported; os.Stderr by default
func WithWarningWriter(w io.Writer) Option {
	return func(a *Analyzer) { a.warnings = w }
}

// WithAllowedHosts excludes URLs on these hosts and their subdomains from the
// hardcoded-endpoint check
func WithAllowedHosts(hosts ...string) Option {
	return func(a *Analyzer) { a.allowedHosts = hosts }
}

// WithCache memoises results by content hash, keeping at most size entries. A size of
// zero or less disables caching.
func WithCache(size int) Option {
	return func(a *Analyzer) {
		if size > 0 {
			a.cache = newResultCache(size)
		} else {
			a.cache = nil
		}
	}
}

// NewAnalyzer creates an Analyzer
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{warnings: os.Stderr}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze returns every suggestion for text: structural findings first, then semantic
// ones, then advisory ones. Text that does not parse yields no suggestions and a zero
// confidence score. A failing advisor contributes nothing and is reported to the warning
// writer.
func (a *Analyzer) Analyze(ctx context.Context, text string) AnalysisResult {
	var key string
	if a.cache != nil {
		key = contentHash(text)
		if cached, ok := a.cache.get(key); ok {
			return cached
		}
	}

	outcome := parser.Parse(text)
	if !outcome.OK() {
		return AnalysisResult{Suggestions: []Suggestion{}, ConfidenceScore: 0}
	}
	value := outcome.Value

	suggestions := StructuralSuggestions(text)
	suggestions = append(suggestions, semanticSuggestions(text, value, &semanticConfig{allowedHosts: a.allowedHosts})...)

	advisoryFailed := false
	if a.advisor != nil {
		advisory, err := a.advise(ctx, text, value)
		if err != nil {
			advisoryFailed = true
			fmt.Fprintln(a.warnings, console.FormatWarningMessage(fmt.Sprintf("advisory suggestions unavailable: %v", err)))
		} else {
			suggestions = append(suggestions, advisory...)
		}
	}

	result := AnalysisResult{
		HasImprovements: len(suggestions) > 0,
		Suggestions:     suggestions,
		ConfidenceScore: ConfidenceScore(suggestions),
	}
	if result.Suggestions == nil {
		result.Suggestions = []Suggestion{}
	}
	if result.HasImprovements {
		result.ImprovedYAML = Apply(text, suggestions)
	}

	if a.cache != nil && !advisoryFailed {
		a.cache.put(key, result)
	}
	return result
}

func (a *Analyzer) advise(ctx context.Context, text string, value parser.Value) ([]Suggestion, error) {
	return safeAdvise(ctx, a.advisor, text, value)
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// resultCache is a size-capped map that evicts its oldest entry first
type resultCache struct {
	mu      sync.Mutex
	size    int
	order   []string
	entries map[string]AnalysisResult
}

func newResultCache(size int) *resultCache {
	return &resultCache{size: size, entries: make(map[string]AnalysisResult, size)}
}

func (c *resultCache) get(key string) (AnalysisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[key]
	if !ok {
		return AnalysisResult{}, false
	}
	// Callers own the returned slice
	r.Suggestions = cloneSuggestions(r.Suggestions)
	return r, true
}

func (c *resultCache) put(key string, r AnalysisResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}
	if len(c.order) >= c.size {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	r.Suggestions = cloneSuggestions(r.Suggestions)
	c.entries[key] = r
	c.order = append(c.order, key)
}

func (c *resultCache) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func cloneSuggestions(in []Suggestion) []Suggestion {
	out := make([]Suggestion, len(in))
	copy(out, in)
	return out
}
