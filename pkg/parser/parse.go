package parser

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxExpandedNodes bounds alias expansion so that "billion laughs" documents fail
// as syntax errors instead of exhausting memory.
const maxExpandedNodes = 1_000_000

// SyntaxFailure is a parse failure. Line and Column are 0-based marks; a mark of
// (0, 0) is also used when the parser could not supply a position.
type SyntaxFailure struct {
	Line   int
	Column int
	Reason string
}

func (f *SyntaxFailure) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", f.Line+1, f.Column+1, f.Reason)
}

// WarningKind classifies a parser warning
type WarningKind string

// DuplicateKeyWarning is reported when a mapping repeats a key before it is folded
const DuplicateKeyWarning WarningKind = "duplicate-key"

// Warning is informational output of a successful parse
type Warning struct {
	Kind      WarningKind
	Path      string // dotted path of the mapping that holds Key, empty for the root mapping
	Key       string
	Line      int // 1-based position of the repeated key
	Column    int
	FirstLine int // line where the key was first defined
}

// Message renders the warning as a sentence
func (w Warning) Message() string {
	return fmt.Sprintf("duplicate key %q (first defined at line %d)", w.Key, w.FirstLine)
}

// Outcome is the result of Parse: either a parsed Value (Failure == nil) or a SyntaxFailure.
type Outcome struct {
	Value    Value
	Warnings []Warning
	Failure  *SyntaxFailure
}

// OK reports whether the text parsed
func (o Outcome) OK() bool { return o.Failure == nil }

// Parse parses the first YAML document in text. Later documents in the stream are only
// checked for syntax: a failure in any of them fails the parse. Duplicate keys are
// recorded as warnings and folded last-wins; they never fail the parse.
func Parse(text string) Outcome {
	var doc yaml.Node
	dec := yaml.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty or comment-only stream
			return Outcome{Value: Null()}
		}
		return Outcome{Failure: syntaxFailure(text, err)}
	}

	b := &builder{}
	value, err := b.build(&doc, "")
	if err != nil {
		var sf *SyntaxFailure
		if errors.As(err, &sf) {
			return Outcome{Failure: sf}
		}
		return Outcome{Failure: &SyntaxFailure{Reason: err.Error()}}
	}

	for {
		var next yaml.Node
		err := dec.Decode(&next)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Outcome{Failure: syntaxFailure(text, err)}
		}
	}
	return Outcome{Value: value, Warnings: b.warnings}
}

// syntaxFailure converts a yaml.v3 error into a 0-based mark. The goccy parser is
// consulted for the column because yaml.v3 only reports lines.
func syntaxFailure(text string, err error) *SyntaxFailure {
	line, column, reason := ExtractYAMLError(err, 0)
	if refinedLine, refinedColumn, ok := locateSyntaxError(text); ok && (line == 0 || refinedLine == line) {
		line, column = refinedLine, refinedColumn
	}

	failure := &SyntaxFailure{Reason: reason}
	if line > 0 {
		failure.Line = line - 1
	}
	if column > 0 {
		failure.Column = column - 1
	}
	return failure
}

type builder struct {
	warnings []Warning
	expanded int
	aliasing int
}

func (b *builder) build(n *yaml.Node, path string) (Value, error) {
	b.expanded++
	if b.expanded > maxExpandedNodes {
		return Value{}, &SyntaxFailure{
			Line:   max(n.Line-1, 0),
			Column: max(n.Column-1, 0),
			Reason: "document contains excessive aliasing",
		}
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return b.build(n.Content[0], path)

	case yaml.AliasNode:
		if n.Alias == nil {
			return Value{}, &SyntaxFailure{Line: n.Line - 1, Column: n.Column - 1, Reason: fmt.Sprintf("unknown anchor %q referenced", n.Value)}
		}
		b.aliasing++
		defer func() { b.aliasing-- }()
		v, err := b.build(n.Alias, path)
		if err != nil {
			return Value{}, err
		}
		v.Line, v.Column = n.Line, n.Column
		return v, nil

	case yaml.ScalarNode:
		return b.scalar(n)

	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for i, child := range n.Content {
			item, err := b.build(child, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		v := Sequence(items...)
		v.Line, v.Column = n.Line, n.Column
		return v, nil

	case yaml.MappingNode:
		return b.mapping(n, path)
	}

	return Value{}, &SyntaxFailure{Line: n.Line - 1, Column: n.Column - 1, Reason: fmt.Sprintf("unsupported node kind %d", n.Kind)}
}

func (b *builder) scalar(n *yaml.Node) (Value, error) {
	var raw any
	if err := n.Decode(&raw); err != nil {
		return Value{}, &SyntaxFailure{Line: n.Line - 1, Column: n.Column - 1, Reason: trimYAMLPrefix(err.Error())}
	}

	var v Value
	switch t := raw.(type) {
	case nil:
		v = Null()
	case bool:
		v = Bool(t)
	case int:
		v = Int(int64(t))
	case int64:
		v = Int(t)
	case uint64:
		if t > math.MaxInt64 {
			v = Float(float64(t))
		} else {
			v = Int(int64(t))
		}
	case float64:
		v = Float(t)
	case string:
		v = String(t)
	default:
		// timestamps, binary and custom tags keep their source text
		v = String(n.Value)
	}
	v.Line, v.Column = n.Line, n.Column
	return v, nil
}

func (b *builder) mapping(n *yaml.Node, path string) (Value, error) {
	entries := make([]Entry, 0, len(n.Content)/2)
	index := make(map[string]int, len(n.Content)/2)
	var merged []Entry

	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valueNode := n.Content[i], n.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.ShortTag() == "!!merge" {
			m, err := b.mergeSources(valueNode, path)
			if err != nil {
				return Value{}, err
			}
			merged = append(merged, m...)
			continue
		}

		key, err := b.key(keyNode, path)
		if err != nil {
			return Value{}, err
		}
		value, err := b.build(valueNode, joinPath(path, key))
		if err != nil {
			return Value{}, err
		}

		entry := Entry{Key: key, Value: value, Line: keyNode.Line, Column: keyNode.Column}
		if at, seen := index[key]; seen {
			if b.aliasing == 0 {
				b.warnings = append(b.warnings, Warning{
					Kind:      DuplicateKeyWarning,
					Path:      path,
					Key:       key,
					Line:      keyNode.Line,
					Column:    keyNode.Column,
					FirstLine: entries[at].Line,
				})
			}
			// Fold last-wins but keep the first position
			entries[at].Value = value
			continue
		}
		index[key] = len(entries)
		entries = append(entries, entry)
	}

	// Explicit keys override merged ones
	for _, m := range merged {
		if _, seen := index[m.Key]; seen {
			continue
		}
		index[m.Key] = len(entries)
		entries = append(entries, m)
	}

	v := Mapping(entries...)
	v.Line, v.Column = n.Line, n.Column
	return v, nil
}

// mergeSources resolves the value of a "<<" key into the entries it contributes
func (b *builder) mergeSources(n *yaml.Node, path string) ([]Entry, error) {
	b.aliasing++
	defer func() { b.aliasing-- }()

	source, err := b.build(n, path)
	if err != nil {
		return nil, err
	}

	switch source.Kind {
	case MappingKind:
		return source.Entries, nil
	case SequenceKind:
		var entries []Entry
		seen := make(map[string]bool)
		// Earlier sources take precedence
		for _, item := range source.Items {
			if item.Kind != MappingKind {
				return nil, &SyntaxFailure{Line: n.Line - 1, Column: n.Column - 1, Reason: "map merge requires map or sequence of maps as the value"}
			}
			for _, e := range item.Entries {
				if !seen[e.Key] {
					seen[e.Key] = true
					entries = append(entries, e)
				}
			}
		}
		return entries, nil
	}
	return nil, &SyntaxFailure{Line: n.Line - 1, Column: n.Column - 1, Reason: "map merge requires map or sequence of maps as the value"}
}

func (b *builder) key(n *yaml.Node, path string) (string, error) {
	if n.Kind == yaml.ScalarNode {
		if n.ShortTag() == "!!null" {
			return "null", nil
		}
		return n.Value, nil
	}
	if n.Kind == yaml.AliasNode && n.Alias != nil && n.Alias.Kind == yaml.ScalarNode {
		return n.Alias.Value, nil
	}
	// Complex keys are rendered as flow YAML text
	out, err := yaml.Marshal(n)
	if err != nil {
		return "", &SyntaxFailure{Line: n.Line - 1, Column: n.Column - 1, Reason: "unsupported mapping key"}
	}
	return strings.TrimSpace(string(out)), nil
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
