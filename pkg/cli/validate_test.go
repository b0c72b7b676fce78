package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestValidateFiles(t *testing.T) {
	dir := t.TempDir()
	valid := writeTestFile(t, dir, "valid.yml", "name: app\nport: 8080\n")
	tabbed := writeTestFile(t, dir, "tabbed.yaml", "name: John\n\tage: 30\n")

	tests := []struct {
		name        string
		paths       []string
		expectErr   bool
		contains    []string
		notContains []string
	}{
		{
			name:     "valid file",
			paths:    []string{valid},
			contains: []string{"valid.yml is valid"},
		},
		{
			name:      "tab indentation",
			paths:     []string{tabbed},
			expectErr: true,
			contains: []string{
				"tabbed.yaml:2:1:",
				"error[format]: Found tabs instead of spaces",
				"hint: Replace tabs with 2 or 4 spaces",
				"1 | name: John",
			},
			notContains: []string{"is valid"},
		},
		{
			name:      "directory expands to YAML files",
			paths:     []string{dir},
			expectErr: true,
			contains:  []string{"valid.yml is valid", "tabbed.yaml:2:1:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := ValidateFiles(&out, tt.paths, ValidateConfig{})

			if tt.expectErr && err == nil {
				t.Fatalf("Expected an error, output:\n%s", out.String())
			}
			if !tt.expectErr && err != nil {
				t.Fatalf("Unexpected error: %v\n%s", err, out.String())
			}
			for _, s := range tt.contains {
				if !strings.Contains(out.String(), s) {
					t.Errorf("Expected output to contain %q, got:\n%s", s, out.String())
				}
			}
			for _, s := range tt.notContains {
				if strings.Contains(out.String(), s) {
					t.Errorf("Expected output not to contain %q, got:\n%s", s, out.String())
				}
			}
		})
	}
}

func TestValidateFilesKeepsArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"c.yml", "a.yml", "b.yml", "e.yml", "d.yml"} {
		paths = append(paths, writeTestFile(t, dir, name, "key: value\n"))
	}

	var out bytes.Buffer
	if err := ValidateFiles(&out, paths, ValidateConfig{}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	last := -1
	for _, name := range []string{"c.yml", "a.yml", "b.yml", "e.yml", "d.yml"} {
		idx := strings.Index(out.String(), name)
		if idx <= last {
			t.Fatalf("Expected %s after the previous file, got:\n%s", name, out.String())
		}
		last = idx
	}
}

func TestValidateFilesFailureCount(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeTestFile(t, dir, "ok.yml", "a: 1\n"),
		writeTestFile(t, dir, "dup.yml", "a: 1\na: 2\n"),
		writeTestFile(t, dir, "tabs.yml", "a:\n\tb: 1\n"),
	}

	var out bytes.Buffer
	err := ValidateFiles(&out, paths, ValidateConfig{Summary: true})

	var failed *ErrValidationFailed
	if !errors.As(err, &failed) {
		t.Fatalf("Expected ErrValidationFailed, got %v", err)
	}
	if failed.Invalid != 2 || failed.Total != 3 {
		t.Errorf("Expected 2 of 3 invalid, got %d of %d", failed.Invalid, failed.Total)
	}
	if err.Error() != "2 of 3 files failed validation" {
		t.Errorf("Unexpected error message %q", err.Error())
	}
	for _, s := range []string{"Validation summary", "valid", "invalid", "TOTAL"} {
		if !strings.Contains(out.String(), s) {
			t.Errorf("Expected output to contain %q, got:\n%s", s, out.String())
		}
	}
}

func TestValidateFilesWithSchema(t *testing.T) {
	dir := t.TempDir()
	schema := writeTestFile(t, dir, "schema.json", `{
  "type": "object",
  "properties": {"port": {"type": "integer"}},
  "required": ["port"]
}`)
	good := writeTestFile(t, dir, "good.yml", "port: 8080\n")
	bad := writeTestFile(t, dir, "bad.yml", "name: app\nport: high\n")

	var out bytes.Buffer
	if err := ValidateFiles(&out, []string{good}, ValidateConfig{SchemaPath: schema}); err != nil {
		t.Fatalf("Unexpected error: %v\n%s", err, out.String())
	}

	out.Reset()
	if err := ValidateFiles(&out, []string{bad}, ValidateConfig{SchemaPath: schema}); err == nil {
		t.Fatal("Expected schema violation")
	}
	if !strings.Contains(out.String(), "bad.yml:2:") || !strings.Contains(out.String(), "error[structure]:") {
		t.Errorf("Expected a structure error on line 2, got:\n%s", out.String())
	}
}

func TestValidateFilesErrors(t *testing.T) {
	dir := t.TempDir()

	if err := ValidateFiles(&bytes.Buffer{}, []string{dir}, ValidateConfig{}); err == nil || !strings.Contains(err.Error(), "no YAML files") {
		t.Errorf("Expected 'no YAML files' error, got %v", err)
	}
	if err := ValidateFiles(&bytes.Buffer{}, []string{filepath.Join(dir, "nope")}, ValidateConfig{}); err == nil {
		t.Error("Expected an error for a missing directory argument")
	}

	file := writeTestFile(t, dir, "a.yml", "a: 1\n")
	if err := ValidateFiles(&bytes.Buffer{}, []string{file}, ValidateConfig{SchemaPath: filepath.Join(dir, "missing.json")}); err == nil {
		t.Error("Expected an error for a missing schema")
	}
}

func TestValidateStdin(t *testing.T) {
	original := stdin
	t.Cleanup(func() { stdin = original })
	stdin = strings.NewReader("a: 1\n")

	var out bytes.Buffer
	if err := ValidateFiles(&out, []string{"-"}, ValidateConfig{}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "<stdin> is valid") {
		t.Errorf("Expected stdin to be reported as <stdin>, got:\n%s", out.String())
	}
}
