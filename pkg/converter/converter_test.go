package converter

import (
	"math"
	"testing"

	"github.com/githubnext/yamlassist/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToJSON(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		opts     Options
		expected string
	}{
		{
			name:     "ordered keys with default indent",
			yaml:     "b: 1\na: [true, null]\n",
			opts:     DefaultOptions(),
			expected: "{\n  \"b\": 1,\n  \"a\": [\n    true,\n    null\n  ]\n}",
		},
		{
			name:     "compact",
			yaml:     "name: app\nitems:\n  - 1\n  - 2.5\n",
			opts:     Options{Indent: 0, FlowLevel: -1},
			expected: `{"name":"app","items":[1,2.5]}`,
		},
		{
			name:     "sorted keys",
			yaml:     "z: 1\na:\n  y: 2\n  b: 3\n",
			opts:     Options{Indent: 0, SortKeys: true},
			expected: `{"a":{"b":3,"y":2},"z":1}`,
		},
		{
			name:     "floats stay floats",
			yaml:     "x: 3.0\n",
			opts:     Options{},
			expected: `{"x":3.0}`,
		},
		{
			name:     "html characters are not escaped",
			yaml:     "html: \"<b>&</b>\"\n",
			opts:     Options{},
			expected: `{"html":"<b>&</b>"}`,
		},
		{
			name:     "empty collections",
			yaml:     "a: []\nb: {}\n",
			opts:     DefaultOptions(),
			expected: "{\n  \"a\": [],\n  \"b\": {}\n}",
		},
		{
			name:     "skip invalid drops nan",
			yaml:     "a: .nan\nb: [1, .inf]\nc: 2\n",
			opts:     Options{SkipInvalid: true},
			expected: `{"b":[1],"c":2}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToJSON(tt.yaml, tt.opts)
			require.True(t, result.Success, result.Error)
			assert.Empty(t, result.Error)
			assert.Equal(t, tt.expected, result.Result)
		})
	}
}

func TestToJSONFailures(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		opts     Options
		contains string
	}{
		{name: "empty", yaml: "  \n", opts: DefaultOptions(), contains: "empty"},
		{name: "null document", yaml: "~\n", opts: DefaultOptions(), contains: "does not contain a value"},
		{name: "comment only", yaml: "# nothing\n", opts: DefaultOptions(), contains: "does not contain a value"},
		{name: "syntax error", yaml: "a: b: c", opts: DefaultOptions(), contains: "invalid YAML"},
		{name: "nan without skip", yaml: "a: .nan", opts: DefaultOptions(), contains: "cannot be represented"},
		{name: "negative indent", yaml: "a: 1", opts: Options{Indent: -1}, contains: "non-negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToJSON(tt.yaml, tt.opts)
			assert.False(t, result.Success)
			assert.Empty(t, result.Result)
			assert.Contains(t, result.Error, tt.contains)
		})
	}
}

func TestToYAML(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		opts     Options
		expected string
	}{
		{
			name:     "ordered mapping",
			json:     `{"name": "app", "port": 80, "tags": ["a", "b"]}`,
			opts:     DefaultOptions(),
			expected: "name: app\nport: 80\ntags:\n  - a\n  - b\n",
		},
		{
			name:     "strings that look like other types are quoted",
			json:     `{"v": "1.0", "b": "true", "n": "null"}`,
			opts:     DefaultOptions(),
			expected: "v: \"1.0\"\nb: \"true\"\nn: \"null\"\n",
		},
		{
			name:     "flow level one",
			json:     `{"a": {"b": 1}, "c": [1, 2]}`,
			opts:     Options{Indent: 2, FlowLevel: 1},
			expected: "a: {b: 1}\nc: [1, 2]\n",
		},
		{
			name:     "sorted keys",
			json:     `{"b": 1, "a": 2}`,
			opts:     Options{Indent: 2, FlowLevel: -1, SortKeys: true},
			expected: "a: 2\nb: 1\n",
		},
		{
			name:     "wider indent",
			json:     `{"a": {"b": 1}}`,
			opts:     Options{Indent: 4, FlowLevel: -1},
			expected: "a:\n    b: 1\n",
		},
		{
			name:     "repeated keys keep the last value",
			json:     `{"a": 1, "b": 2, "a": 3}`,
			opts:     DefaultOptions(),
			expected: "a: 3\nb: 2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToYAML(tt.json, tt.opts)
			require.True(t, result.Success, result.Error)
			assert.Equal(t, tt.expected, result.Result)
		})
	}
}

func TestToYAMLFailures(t *testing.T) {
	for _, input := range []string{"", "   ", "null", "{", `{"a": 1} x`, `{"a": 1,}`} {
		result := ToYAML(input, DefaultOptions())
		assert.False(t, result.Success, "input %q", input)
		assert.NotEmpty(t, result.Error, "input %q", input)
	}
}

func TestFormatIdempotent(t *testing.T) {
	inputs := []string{
		"b:   1\na:\n    - x\n    -   y\n",
		"# comment\nname: \"app\"\nnested: {k: v, list: [1, 2]}\n",
		"anchors:\n  base: &b {x: 1}\n  copy: *b\n",
		"text: |\n  line one\n  line two\nempty: ''\nnull_value: ~\n",
		"'null': 1\n'123': two\n",
	}
	optsList := []Options{DefaultOptions(), {Indent: 4, FlowLevel: -1, SortKeys: true}, {Indent: 2, FlowLevel: 1}}

	for _, input := range inputs {
		for _, opts := range optsList {
			once := Format(input, opts)
			require.True(t, once.Success, "%q: %s", input, once.Error)
			twice := Format(once.Result, opts)
			require.True(t, twice.Success, twice.Error)
			assert.Equal(t, once.Result, twice.Result, "input %q opts %+v", input, opts)
		}
	}
}

func TestMinify(t *testing.T) {
	result := Minify("name: app\nitems:\n  - 1\n  - 2\nnested:\n  k: v\n")
	require.True(t, result.Success, result.Error)
	assert.Equal(t, "{name: app, items: [1, 2], nested: {k: v}}\n", result.Result)

	assert.False(t, Minify("").Success)
}

func TestRoundTrip(t *testing.T) {
	values := []parser.Value{
		parser.Mapping(
			parser.Entry{Key: "name", Value: parser.String("app")},
			parser.Entry{Key: "count", Value: parser.Int(3)},
			parser.Entry{Key: "ratio", Value: parser.Float(0.25)},
			parser.Entry{Key: "whole", Value: parser.Float(2)},
			parser.Entry{Key: "on", Value: parser.Bool(true)},
			parser.Entry{Key: "none", Value: parser.Null()},
			parser.Entry{Key: "version", Value: parser.String("1.0")},
			parser.Entry{Key: "list", Value: parser.Sequence(parser.Int(1), parser.String("two"), parser.Sequence())},
			parser.Entry{Key: "nested", Value: parser.Mapping(parser.Entry{Key: "deep", Value: parser.Mapping()})},
			parser.Entry{Key: "multiline", Value: parser.String("a\nb\n")},
			parser.Entry{Key: "big", Value: parser.Float(1e21)},
		),
		parser.Sequence(parser.String("- dash"), parser.String("#hash"), parser.String(" padded ")),
		parser.String("scalar document"),
	}

	for _, v := range values {
		yamlText, err := EncodeYAML(v, DefaultOptions())
		require.NoError(t, err)
		back := parser.Parse(yamlText)
		require.True(t, back.OK(), "%s: %v", yamlText, back.Failure)
		assert.True(t, v.Equal(back.Value), "YAML round trip of %s", yamlText)

		jsonText, err := EncodeJSON(v, DefaultOptions())
		require.NoError(t, err)
		yamlResult := ToYAML(jsonText, DefaultOptions())
		require.True(t, yamlResult.Success, yamlResult.Error)
		again := parser.Parse(yamlResult.Result)
		require.True(t, again.OK())
		assert.True(t, v.Equal(again.Value), "JSON round trip of %s", jsonText)
	}
}

func TestEncodeYAMLSpecialFloats(t *testing.T) {
	v := parser.Sequence(parser.Float(math.NaN()), parser.Float(math.Inf(1)), parser.Float(math.Inf(-1)))
	out, err := EncodeYAML(v, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "- .nan\n- .inf\n- -.inf\n", out)
}

func TestDecodeJSONNumbers(t *testing.T) {
	v, err := DecodeJSON(`[1, -2, 3.5, 1e3, 9223372036854775808]`)
	require.NoError(t, err)
	require.Len(t, v.Items, 5)
	assert.Equal(t, parser.IntKind, v.Items[0].Kind)
	assert.Equal(t, int64(-2), v.Items[1].Int)
	assert.Equal(t, parser.FloatKind, v.Items[2].Kind)
	assert.Equal(t, 1000.0, v.Items[3].Float)
	assert.Equal(t, parser.FloatKind, v.Items[4].Kind)
}

func TestEncodeJSONControlCharacters(t *testing.T) {
	v := parser.Mapping(parser.Entry{Key: "bell", Value: parser.String("a\x07b\x0bc\x01")})

	out, err := EncodeJSON(v, Options{})
	require.NoError(t, err)
	assert.Equal(t, `{"bell":"a\u0007b\u000bc\u0001"}`, out)

	back, err := DecodeJSON(out)
	require.NoError(t, err)
	assert.True(t, v.Equal(back), "decoded %+v", back)
}

func TestDecodeJSONKeepsOrder(t *testing.T) {
	v, err := DecodeJSON("{\n\t\"z\": 1,\n\t\"a\": {\"y\": [1e3, \"x\\/y\"], \"b\": null}\n}")
	require.NoError(t, err)

	assert.Equal(t, []string{"z", "a"}, v.Keys())
	nested, ok := v.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{"y", "b"}, nested.Keys())
	y, _ := nested.Get("y")
	require.Len(t, y.Items, 2)
	assert.Equal(t, 1000.0, y.Items[0].Float)
	assert.Equal(t, "x/y", y.Items[1].Str)
}

func TestToYAMLQuotesYAML11Booleans(t *testing.T) {
	result := ToYAML(`{"j": "yes", "on": "Off", "n": "N", "word": "yesterday"}`, DefaultOptions())
	require.True(t, result.Success, result.Error)
	assert.Equal(t, "j: \"yes\"\n\"on\": \"Off\"\n\"n\": \"N\"\nword: yesterday\n", result.Result)

	again := Format(result.Result, DefaultOptions())
	require.True(t, again.Success, again.Error)
	assert.Equal(t, result.Result, again.Result)
}
