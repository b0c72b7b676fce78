// Package converter re-serializes parsed documents as YAML or JSON.
package converter

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/githubnext/yamlassist/pkg/parser"
)

// Options controls serialization
type Options struct {
	// Indent is the number of spaces per nesting level. For JSON, 0 means compact output;
	// YAML indentation is kept within 2..9.
	Indent int `json:"indent"`
	// SkipInvalid drops values the target format cannot represent instead of failing
	SkipInvalid bool `json:"skipInvalid"`
	// FlowLevel is the nesting depth from which YAML collections use flow style; -1 keeps
	// block style throughout
	FlowLevel int `json:"flowLevel"`
	// SortKeys orders mapping keys lexically at every level
	SortKeys bool `json:"sortKeys"`
}

// DefaultOptions returns indent 2, block style, source key order
func DefaultOptions() Options {
	return Options{Indent: 2, FlowLevel: -1}
}

// Result is the outcome of a conversion: Result is set on success, Error otherwise
type Result struct {
	Success bool   `json:"success"`
	Result  string `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

var errNothingToConvert = errors.New("input does not contain a value to convert")

func success(out string) Result { return Result{Success: true, Result: out} }

func failure(err error) Result { return Result{Success: false, Error: err.Error()} }

// ToJSON converts YAML text to JSON
func ToJSON(yamlText string, opts Options) Result {
	value, err := parseYAML(yamlText, opts)
	if err != nil {
		return failure(err)
	}
	out, err := EncodeJSON(value, opts)
	if err != nil {
		return failure(err)
	}
	return success(out)
}

// ToYAML converts JSON text to YAML
func ToYAML(jsonText string, opts Options) Result {
	if strings.TrimSpace(jsonText) == "" {
		return failure(errors.New("JSON input is empty"))
	}
	if err := checkOptions(opts); err != nil {
		return failure(err)
	}
	value, err := DecodeJSON(jsonText)
	if err != nil {
		return failure(err)
	}
	if value.IsNull() {
		return failure(errNothingToConvert)
	}
	out, err := EncodeYAML(value, opts)
	if err != nil {
		return failure(err)
	}
	return success(out)
}

// Format parses YAML text and serializes it again with opts
func Format(yamlText string, opts Options) Result {
	value, err := parseYAML(yamlText, opts)
	if err != nil {
		return failure(err)
	}
	out, err := EncodeYAML(value, opts)
	if err != nil {
		return failure(err)
	}
	return success(out)
}

// Minify formats YAML text with flow collections throughout
func Minify(yamlText string) Result {
	return Format(yamlText, Options{Indent: 0, FlowLevel: 0})
}

func parseYAML(text string, opts Options) (parser.Value, error) {
	if strings.TrimSpace(text) == "" {
		return parser.Value{}, errors.New("YAML input is empty")
	}
	if err := checkOptions(opts); err != nil {
		return parser.Value{}, err
	}
	outcome := parser.Parse(text)
	if !outcome.OK() {
		return parser.Value{}, fmt.Errorf("invalid YAML: %w", outcome.Failure)
	}
	if outcome.Value.IsNull() {
		return parser.Value{}, errNothingToConvert
	}
	return outcome.Value, nil
}

func checkOptions(opts Options) error {
	if opts.Indent < 0 {
		return fmt.Errorf("indent must be non-negative, got %d", opts.Indent)
	}
	return nil
}

// sortedEntries returns the mapping entries ordered by key
func sortedEntries(entries []parser.Entry) []parser.Entry {
	out := make([]parser.Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
