package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/githubnext/yamlassist/pkg/settings"
	"github.com/githubnext/yamlassist/pkg/suggest"
)

func TestAnalyzeFileText(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "app.yml", "userName: admin\n")

	s := settings.Default()
	s.EnableAISuggestions = false

	var out bytes.Buffer
	if err := AnalyzeFile(context.Background(), &out, path, s, AnalyzeConfig{}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, expected := range []string{
		"app.yml:1:1:",
		"suggestion[naming]:",
		`Consider using kebab-case or snake_case for key "userName"`,
		"suggestion[best-practice]: Consider adding a version field",
		"Severity",
		"2 suggestions",
	} {
		if !strings.Contains(out.String(), expected) {
			t.Errorf("Expected output to contain %q, got:\n%s", expected, out.String())
		}
	}
}

func TestAnalyzeFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "server.yml", "version: 1\nport: \"8080\"\n")

	var out bytes.Buffer
	if err := AnalyzeFile(context.Background(), &out, path, settings.Default(), AnalyzeConfig{JSON: true}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var result suggest.AnalysisResult
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, out.String())
	}
	if !result.HasImprovements {
		t.Fatal("Expected improvements")
	}
	found := false
	for _, s := range result.Suggestions {
		if s.Kind == suggest.Logical {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a logical suggestion for the quoted port, got %+v", result.Suggestions)
	}
	if result.ConfidenceScore < 0.1 || result.ConfidenceScore > 1 {
		t.Errorf("Confidence score out of range: %v", result.ConfidenceScore)
	}
}

func TestAnalyzeFileNoSuggestions(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "clean.yml", "version: 1\nname: app\n")

	var out bytes.Buffer
	if err := AnalyzeFile(context.Background(), &out, path, settings.Default(), AnalyzeConfig{}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "clean.yml: no suggestions") {
		t.Errorf("Expected no suggestions, got:\n%s", out.String())
	}
}

func TestAnalyzeFileMissing(t *testing.T) {
	err := AnalyzeFile(context.Background(), &bytes.Buffer{}, filepath.Join(t.TempDir(), "none.yml"), settings.Default(), AnalyzeConfig{})
	if err == nil {
		t.Fatal("Expected an error for a missing file")
	}
}

func TestImproveFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "server.yml", "port: \"8080\"\n")

	tests := []struct {
		name     string
		config   ImproveConfig
		expected string
		contains []string
	}{
		{
			name:     "improved document",
			config:   ImproveConfig{},
			expected: "port: 8080\n",
		},
		{
			name:     "diff",
			config:   ImproveConfig{Diff: true},
			contains: []string{"- port: \"8080\"", "+ port: 8080"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := ImproveFile(context.Background(), &out, path, settings.Default(), tt.config); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.expected != "" && out.String() != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, out.String())
			}
			for _, s := range tt.contains {
				if !strings.Contains(out.String(), s) {
					t.Errorf("Expected output to contain %q, got:\n%s", s, out.String())
				}
			}
		})
	}
}

func TestImproveFileToOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "app.yml", "version: 1\nname: app \n")
	output := filepath.Join(dir, "app.improved.yml")

	var out bytes.Buffer
	if err := ImproveFile(context.Background(), &out, path, settings.Default(), ImproveConfig{Output: output}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("Expected nothing on stdout, got %q", out.String())
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("Expected output file: %v", err)
	}
	if string(data) != "version: 1\nname: app\n" {
		t.Errorf("Unexpected improved document %q", string(data))
	}
}

func TestImproveFileNothingToImprove(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "clean.yml", "version: 1\nname: app\n")

	var out bytes.Buffer
	if err := ImproveFile(context.Background(), &out, path, settings.Default(), ImproveConfig{Diff: true}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("Expected an empty diff, got %q", out.String())
	}
}

func TestSuggestionDiagnostic(t *testing.T) {
	lines := []string{"a: 1", "b: 2"}

	d := suggestionDiagnostic("x.yml", lines, suggest.Suggestion{Kind: suggest.Formatting, Severity: suggest.SeverityInfo, Line: 2, Column: 5, Message: "Trailing whitespace"})
	if d.Position.Line != 2 || d.ContextStart != 2 || len(d.Context) != 1 || d.Context[0] != "b: 2" {
		t.Errorf("Unexpected line-anchored diagnostic %+v", d)
	}

	d = suggestionDiagnostic("x.yml", lines, suggest.Suggestion{Kind: suggest.BestPractice, Severity: suggest.SeveritySuggestion, Message: "Consider adding a version field"})
	if d.Position.File != "" || len(d.Context) != 0 {
		t.Errorf("Expected a document-level diagnostic without location, got %+v", d)
	}
}
