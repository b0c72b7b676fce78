package mapper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"
)

// MapErrorToSpans maps a JSON Schema failure (instance pointer + meta) to YAML source spans.
// Spans are ordered by confidence; at least one span is returned when err is nil.
func MapErrorToSpans(yamlBytes []byte, instancePath string, meta ErrorMeta) ([]Span, error) {
	segments, err := decodeJSONPointer(instancePath)
	if err != nil {
		return nil, err
	}

	file, err := parser.ParseBytes(yamlBytes, 0)
	if err != nil {
		return nil, fmt.Errorf("yaml parse error: %w", err)
	}
	if len(file.Docs) == 0 || file.Docs[0].Body == nil {
		return []Span{documentFallbackSpan()}, nil
	}
	root := file.Docs[0].Body

	node := traverse(root, segments)

	switch meta.Kind {
	case "type", "enum", "const", "format", "pattern", "minimum", "maximum", "minLength", "maxLength":
		if node != nil {
			return []Span{nodeSpan(node, 0.95, meta.Kind+" violation: highlighting value")}, nil
		}

	case "additionalProperties":
		if node != nil && meta.Property != "" {
			if key := findKey(node, meta.Property); key != nil {
				return []Span{nodeSpan(key, 0.98, "additional property key")}, nil
			}
		}
		if node != nil {
			return []Span{nodeSpan(node, 0.6, "additionalProperties fallback")}, nil
		}

	case "required":
		// The instance path points at the object missing the property
		if node != nil {
			return []Span{insertionAnchor(node, meta.Property)}, nil
		}

	default:
		if node != nil {
			return []Span{nodeSpan(node, 0.8, "generic mapping")}, nil
		}
	}

	if candidates := fallbackHeuristics(root, yamlBytes, segments, meta); len(candidates) > 0 {
		return candidates, nil
	}
	return []Span{documentFallbackSpan()}, nil
}

// traverse walks the AST along the pointer segments and returns the value node, or nil
func traverse(root ast.Node, segments []string) ast.Node {
	current := unwrap(root)
	for _, segment := range segments {
		switch node := current.(type) {
		case *ast.MappingNode:
			next := ast.Node(nil)
			for _, mv := range node.Values {
				if keyMatches(mv.Key, segment) {
					next = mv.Value
					break
				}
			}
			if next == nil {
				return nil
			}
			current = unwrap(next)
		case *ast.MappingValueNode:
			if !keyMatches(node.Key, segment) {
				return nil
			}
			current = unwrap(node.Value)
		case *ast.SequenceNode:
			idx, ok := parseIndex(segment)
			if !ok || idx >= len(node.Values) {
				return nil
			}
			current = unwrap(node.Values[idx])
		default:
			return nil
		}
	}
	return current
}

// unwrap strips anchor and tag wrappers
func unwrap(node ast.Node) ast.Node {
	for {
		switch n := node.(type) {
		case *ast.AnchorNode:
			node = n.Value
		case *ast.TagNode:
			node = n.Value
		default:
			return node
		}
	}
}

func keyMatches(keyNode ast.MapKeyNode, segment string) bool {
	switch key := keyNode.(type) {
	case *ast.StringNode:
		return key.Value == segment
	case *ast.MappingKeyNode:
		return key.Value.GetToken().Value == segment
	default:
		if tk := key.GetToken(); tk != nil {
			return tk.Value == segment
		}
		return false
	}
}

func parseIndex(segment string) (int, bool) {
	if !isIndex(segment) {
		return 0, false
	}
	idx, err := strconv.Atoi(segment)
	return idx, err == nil
}

// findKey returns the key node for property inside a mapping
func findKey(node ast.Node, property string) ast.Node {
	switch n := node.(type) {
	case *ast.MappingNode:
		for _, mv := range n.Values {
			if keyMatches(mv.Key, property) {
				return mv.Key
			}
		}
	case *ast.MappingValueNode:
		if keyMatches(n.Key, property) {
			return n.Key
		}
	}
	return nil
}

func nodeSpan(node ast.Node, conf float64, reason string) Span {
	if tk := node.GetToken(); tk != nil {
		return tokenToSpan(tk, conf, reason)
	}
	return Span{StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1, Confidence: conf * 0.5, Reason: reason + " (no position)"}
}

func tokenToSpan(tk *token.Token, confidence float64, reason string) Span {
	pos := tk.Position
	return Span{
		StartLine:  pos.Line,
		StartCol:   pos.Column,
		EndLine:    pos.Line,
		EndCol:     pos.Column + len(tk.Value),
		Confidence: confidence,
		Reason:     reason,
	}
}

// insertionAnchor points at the first key of the mapping that should gain property
func insertionAnchor(node ast.Node, property string) Span {
	var first ast.Node
	switch n := node.(type) {
	case *ast.MappingNode:
		if len(n.Values) > 0 {
			first = n.Values[0].Key
		}
	case *ast.MappingValueNode:
		first = n.Key
	}
	if first != nil {
		return nodeSpan(first, 0.75, fmt.Sprintf("insertion anchor for missing property '%s'", property))
	}
	return nodeSpan(node, 0.7, fmt.Sprintf("empty mapping insertion anchor for '%s'", property))
}

// fallbackHeuristics searches the text for the property and falls back to the deepest
// existing ancestor
func fallbackHeuristics(root ast.Node, yamlBytes []byte, segments []string, meta ErrorMeta) []Span {
	var candidates []Span

	if meta.Property != "" {
		candidates = append(candidates, searchPropertyInText(yamlBytes, meta.Property)...)
	}

	for i := len(segments) - 1; i > 0; i-- {
		if ancestor := traverse(root, segments[:i]); ancestor != nil {
			candidates = append(candidates, nodeSpan(ancestor, 0.4, fmt.Sprintf("parent context for missing segments at depth %d", i)))
			break
		}
	}

	return candidates
}

func searchPropertyInText(yamlBytes []byte, property string) []Span {
	var spans []Span
	for lineNum, line := range strings.Split(string(yamlBytes), "\n") {
		if idx := strings.Index(line, property+":"); idx != -1 {
			spans = append(spans, Span{
				StartLine:  lineNum + 1,
				StartCol:   idx + 1,
				EndLine:    lineNum + 1,
				EndCol:     idx + len(property) + 1,
				Confidence: 0.6,
				Reason:     fmt.Sprintf("text search match for property '%s'", property),
			})
		}
	}
	return spans
}

func documentFallbackSpan() Span {
	return Span{StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1, Confidence: 0.2, Reason: "document-level fallback"}
}
