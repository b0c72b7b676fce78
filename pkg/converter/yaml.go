package converter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/githubnext/yamlassist/pkg/parser"
	"gopkg.in/yaml.v3"
)

const (
	minYAMLIndent = 2
	maxYAMLIndent = 9
)

// yaml11Words are plain scalars that YAML 1.1 readers resolve to booleans
var yaml11Words = map[string]bool{
	"y": true, "yes": true, "n": true, "no": true, "on": true, "off": true,
}

// EncodeYAML serializes value as a YAML document. Key order is kept unless
// opts.SortKeys is set.
func EncodeYAML(value parser.Value, opts Options) (string, error) {
	if err := checkOptions(opts); err != nil {
		return "", err
	}
	node := toNode(value, 0, opts)

	indent := opts.Indent
	if indent < minYAMLIndent {
		indent = minYAMLIndent
	}
	if indent > maxYAMLIndent {
		indent = maxYAMLIndent
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(node); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.String(), nil
}

// toNode builds a yaml.v3 node tree with explicit tags so that scalars keep their type
func toNode(v parser.Value, depth int, opts Options) *yaml.Node {
	var style yaml.Style
	if opts.FlowLevel >= 0 && depth >= opts.FlowLevel {
		style = yaml.FlowStyle
	}

	switch v.Kind {
	case parser.BoolKind:
		return scalarNode("!!bool", strconv.FormatBool(v.Bool))
	case parser.IntKind:
		return scalarNode("!!int", strconv.FormatInt(v.Int, 10))
	case parser.FloatKind:
		return scalarNode("!!float", parser.FormatFloat(v.Float))
	case parser.StringKind:
		return stringNode(v.Str)
	case parser.SequenceKind:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: style}
		for _, item := range v.Items {
			node.Content = append(node.Content, toNode(item, depth+1, opts))
		}
		return node
	case parser.MappingKind:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Style: style}
		entries := v.Entries
		if opts.SortKeys {
			entries = sortedEntries(entries)
		}
		for _, e := range entries {
			node.Content = append(node.Content, stringNode(e.Key), toNode(e.Value, depth+1, opts))
		}
		return node
	default:
		return scalarNode("!!null", "null")
	}
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

// stringNode double-quotes strings that a YAML 1.1 reader would take for a boolean
func stringNode(s string) *yaml.Node {
	node := scalarNode("!!str", s)
	if yaml11Words[strings.ToLower(s)] {
		node.Style = yaml.DoubleQuotedStyle
	}
	return node
}
