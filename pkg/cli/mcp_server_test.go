package cli

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/githubnext/yamlassist/pkg/settings"
	"github.com/githubnext/yamlassist/pkg/suggest"
	"github.com/githubnext/yamlassist/pkg/validator"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func resultText(t *testing.T, result *mcp.CallToolResultFor[any]) string {
	t.Helper()
	if result == nil || len(result.Content) != 1 {
		t.Fatalf("Expected exactly one content item, got %+v", result)
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestMCPValidateTool(t *testing.T) {
	tools := newMCPTools(settings.Default())

	tests := []struct {
		name    string
		args    ValidateArgs
		valid   bool
		errKind validator.ErrorKind
		errLine int
	}{
		{name: "valid document", args: ValidateArgs{YAML: "a: 1\n"}, valid: true},
		{name: "tab indentation", args: ValidateArgs{YAML: "name: John\n\tage: 30"}, errKind: validator.FormatError, errLine: 2},
		{name: "empty document", args: ValidateArgs{YAML: "  "}, errKind: validator.StructureError, errLine: 1},
		{
			name:    "schema violation",
			args:    ValidateArgs{YAML: "port: high\n", Schema: `{"properties": {"port": {"type": "integer"}}}`},
			errKind: validator.StructureError,
			errLine: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tools.validate(context.Background(), nil, &mcp.CallToolParamsFor[ValidateArgs]{Arguments: tt.args})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result.IsError {
				t.Fatalf("Unexpected tool error: %s", resultText(t, result))
			}

			var got validator.ValidationResult
			if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
				t.Fatalf("Result is not a validation result: %v", err)
			}
			if got.IsValid != tt.valid {
				t.Fatalf("Expected IsValid=%v, got %+v", tt.valid, got)
			}
			if tt.valid {
				return
			}
			if len(got.Errors) == 0 || got.Errors[0].Kind != tt.errKind || got.Errors[0].Line != tt.errLine {
				t.Errorf("Expected a %s error on line %d, got %+v", tt.errKind, tt.errLine, got.Errors)
			}
		})
	}
}

func TestMCPValidateToolBadSchema(t *testing.T) {
	tools := newMCPTools(settings.Default())

	result, err := tools.validate(context.Background(), nil, &mcp.CallToolParamsFor[ValidateArgs]{
		Arguments: ValidateArgs{YAML: "a: 1\n", Schema: "{not json"},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.IsError {
		t.Errorf("Expected a tool error for an invalid schema, got %s", resultText(t, result))
	}
}

func TestMCPAnalyzeTool(t *testing.T) {
	tools := newMCPTools(settings.Default())

	result, err := tools.analyze(context.Background(), nil, &mcp.CallToolParamsFor[AnalyzeArgs]{
		Arguments: AnalyzeArgs{YAML: `port: "8080"`},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var got suggest.AnalysisResult
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatalf("Result is not an analysis result: %v", err)
	}
	if !got.HasImprovements || got.ImprovedYAML != "port: 8080" {
		t.Errorf("Expected the quoted port to be fixed, got %+v", got)
	}
}

func TestMCPConvertTool(t *testing.T) {
	tools := newMCPTools(settings.Default())
	zero := 0

	tests := []struct {
		name     string
		args     ConvertArgs
		expected string
		isError  bool
	}{
		{
			name:     "yaml to json with settings indent",
			args:     ConvertArgs{Input: "a: 1\nb: [x]\n", To: "json"},
			expected: "{\n  \"a\": 1,\n  \"b\": [\n    \"x\"\n  ]\n}",
		},
		{
			name:     "compact json",
			args:     ConvertArgs{Input: "a: 1\n", To: "json", Indent: &zero},
			expected: `{"a":1}`,
		},
		{
			name:     "json to sorted yaml",
			args:     ConvertArgs{Input: `{"b": 1, "a": 2}`, To: "yaml", SortKeys: true},
			expected: "a: 2\nb: 1\n",
		},
		{name: "unknown format", args: ConvertArgs{Input: "a: 1", To: "xml"}, isError: true},
		{name: "invalid input", args: ConvertArgs{Input: "a: [", To: "json"}, isError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tools.convert(context.Background(), nil, &mcp.CallToolParamsFor[ConvertArgs]{Arguments: tt.args})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			text := resultText(t, result)
			if result.IsError != tt.isError {
				t.Fatalf("Expected IsError=%v, got %v (%s)", tt.isError, result.IsError, text)
			}
			if tt.isError {
				if strings.TrimSpace(text) == "" {
					t.Error("Expected an error message")
				}
				return
			}
			if text != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, text)
			}
		})
	}
}

func TestNewMCPServer(t *testing.T) {
	if NewMCPServer(settings.Default()) == nil {
		t.Fatal("Expected a server")
	}
}
