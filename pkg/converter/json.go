package converter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/githubnext/yamlassist/pkg/parser"
	goyaml "github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	goparser "github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"
)

const maxJSONIndent = 10

var errUnrepresentable = errors.New("value cannot be represented in JSON")

// EncodeJSON serializes value as JSON, keeping key order unless opts.SortKeys is set.
// NaN and infinities fail the conversion unless opts.SkipInvalid drops them.
func EncodeJSON(value parser.Value, opts Options) (string, error) {
	if err := checkOptions(opts); err != nil {
		return "", err
	}
	if !representable(value) {
		if !opts.SkipInvalid {
			return "", fmt.Errorf("%w: %s", errUnrepresentable, parser.FormatFloat(value.Float))
		}
		return "", errNothingToConvert
	}

	ordered, err := toOrdered(value, opts)
	if err != nil {
		return "", err
	}
	flow, err := goyaml.MarshalWithOptions(ordered, goyaml.JSON())
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	flow = jsonEscapes(bytes.TrimSpace(flow))

	var out bytes.Buffer
	if indent := min(opts.Indent, maxJSONIndent); indent > 0 {
		err = json.Indent(&out, flow, "", strings.Repeat(" ", indent))
	} else {
		err = json.Compact(&out, flow)
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	return out.String(), nil
}

func representable(v parser.Value) bool {
	return v.Kind != parser.FloatKind || !(math.IsNaN(v.Float) || math.IsInf(v.Float, 0))
}

// toOrdered converts value into the types the goccy encoder keeps in order: MapSlice for
// mappings and []any for sequences
func toOrdered(v parser.Value, opts Options) (any, error) {
	switch v.Kind {
	case parser.NullKind:
		return nil, nil
	case parser.BoolKind:
		return v.Bool, nil
	case parser.IntKind:
		return v.Int, nil
	case parser.FloatKind:
		if !representable(v) {
			return nil, fmt.Errorf("%w: %s", errUnrepresentable, parser.FormatFloat(v.Float))
		}
		return v.Float, nil
	case parser.StringKind:
		return v.Str, nil
	case parser.SequenceKind:
		items := make([]any, 0, len(v.Items))
		for _, item := range v.Items {
			if !representable(item) && opts.SkipInvalid {
				continue
			}
			converted, err := toOrdered(item, opts)
			if err != nil {
				return nil, err
			}
			items = append(items, converted)
		}
		return items, nil
	case parser.MappingKind:
		entries := v.Entries
		if opts.SortKeys {
			entries = sortedEntries(entries)
		}
		mapping := make(goyaml.MapSlice, 0, len(entries))
		for _, e := range entries {
			if !representable(e.Value) && opts.SkipInvalid {
				continue
			}
			converted, err := toOrdered(e.Value, opts)
			if err != nil {
				return nil, err
			}
			mapping = append(mapping, goyaml.MapItem{Key: e.Key, Value: converted})
		}
		return mapping, nil
	}
	return nil, fmt.Errorf("unsupported value kind %s", v.Kind)
}

// jsonEscapes rewrites the Go-quoting escapes the YAML encoder emits (\a, \v, \xHH,
// \UHHHHHHHH) into their JSON \u forms. Backslashes only occur inside string literals.
func jsonEscapes(flow []byte) []byte {
	if !bytes.ContainsAny(flow, `\`) {
		return flow
	}
	out := make([]byte, 0, len(flow))
	for i := 0; i < len(flow); i++ {
		if flow[i] != '\\' || i+1 >= len(flow) {
			out = append(out, flow[i])
			continue
		}
		switch next := flow[i+1]; {
		case next == 'a':
			out = append(out, `\u0007`...)
			i++
		case next == 'v':
			out = append(out, `\u000b`...)
			i++
		case next == 'x' && i+3 < len(flow):
			code, err := strconv.ParseUint(string(flow[i+2:i+4]), 16, 8)
			if err != nil || code >= 0x80 {
				// invalid UTF-8 byte
				code = 0xfffd
			}
			out = fmt.Appendf(out, `\u%04x`, code)
			i += 3
		case next == 'U' && i+9 < len(flow):
			code, err := strconv.ParseUint(string(flow[i+2:i+10]), 16, 32)
			if err != nil {
				code = 0xfffd
			}
			if r1, r2 := utf16.EncodeRune(rune(code)); r1 != unicode.ReplacementChar {
				out = fmt.Appendf(out, `\u%04x\u%04x`, r1, r2)
			} else {
				out = fmt.Appendf(out, `\u%04x`, code)
			}
			i += 9
		default:
			out = append(out, flow[i], next)
			i++
		}
	}
	return out
}

// DecodeJSON parses JSON text into an ordered value. Integers that fit in int64 stay
// integers; repeated keys keep the last value at the first key's position.
func DecodeJSON(text string) (parser.Value, error) {
	// encoding/json enforces JSON grammar; the re-indented text is a YAML flow
	// document that goccy parses with key order and duplicates intact
	var normalized bytes.Buffer
	if err := json.Indent(&normalized, []byte(text), "", "  "); err != nil {
		return parser.Value{}, fmt.Errorf("invalid JSON: %w", err)
	}

	file, err := goparser.ParseBytes(normalized.Bytes(), 0, goparser.AllowDuplicateMapKey())
	if err != nil {
		return parser.Value{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if len(file.Docs) == 0 || file.Docs[0].Body == nil {
		return parser.Null(), nil
	}
	value, err := decodeNode(file.Docs[0].Body)
	if err != nil {
		return parser.Value{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return value, nil
}

func decodeNode(node ast.Node) (parser.Value, error) {
	switch n := node.(type) {
	case nil, *ast.NullNode:
		return parser.Null(), nil
	case *ast.BoolNode:
		return parser.Bool(n.Value), nil
	case *ast.StringNode:
		if n.Token != nil && n.Token.Type == token.DoubleQuoteType {
			return parser.String(n.Value), nil
		}
		// an unquoted scalar in valid JSON is a number goccy did not classify, e.g. 1e3
		return decodeNumber(n.Value)
	case *ast.IntegerNode:
		return decodeNumber(n.Token.Value)
	case *ast.FloatNode:
		return decodeNumber(n.Token.Value)
	case *ast.SequenceNode:
		items := make([]parser.Value, 0, len(n.Values))
		for _, child := range n.Values {
			item, err := decodeNode(child)
			if err != nil {
				return parser.Value{}, err
			}
			items = append(items, item)
		}
		return parser.Sequence(items...), nil
	case *ast.MappingNode:
		return decodeMapping(n.Values)
	case *ast.MappingValueNode:
		return decodeMapping([]*ast.MappingValueNode{n})
	}
	return parser.Value{}, fmt.Errorf("unexpected %s node", node.Type())
}

func decodeMapping(values []*ast.MappingValueNode) (parser.Value, error) {
	entries := make([]parser.Entry, 0, len(values))
	index := map[string]int{}
	for _, mv := range values {
		key := mv.Key.GetToken().Value
		if s, ok := mv.Key.(*ast.StringNode); ok {
			key = s.Value
		}
		val, err := decodeNode(mv.Value)
		if err != nil {
			return parser.Value{}, err
		}
		if i, seen := index[key]; seen {
			entries[i].Value = val
			continue
		}
		index[key] = len(entries)
		entries = append(entries, parser.Entry{Key: key, Value: val})
	}
	return parser.Mapping(entries...), nil
}

func decodeNumber(s string) (parser.Value, error) {
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return parser.Int(i), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return parser.Value{}, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return parser.Float(f), nil
}
