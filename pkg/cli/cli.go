package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/githubnext/yamlassist/pkg/console"
	"github.com/githubnext/yamlassist/pkg/constants"
	"github.com/githubnext/yamlassist/pkg/settings"
	"github.com/githubnext/yamlassist/pkg/suggest"
	"github.com/spf13/cobra"
)

// Version information set by the main package
var version = "dev"

// stdin is swapped out by tests
var stdin io.Reader = os.Stdin

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v string) {
	version = v
}

// GetVersion returns the current version
func GetVersion() string {
	return version
}

// LoadSettings reads settings for the working directory and applies any flags the user
// set on cmd. Flags win over every other source.
func LoadSettings(cmd *cobra.Command, verbose bool) (*settings.Settings, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}
	s, err := settings.Load(dir)
	if err != nil {
		return nil, err
	}
	if err := applyFlagOverrides(cmd, s); err != nil {
		return nil, err
	}
	if verbose {
		fmt.Fprintln(os.Stderr, console.FormatVerboseMessage(fmt.Sprintf("Settings: indent=%d sort-keys=%t ai-suggestions=%t advisory-timeout=%s cache-size=%d",
			s.Indent, s.SortKeys, s.EnableAISuggestions, s.AdvisoryTimeout, s.CacheSize)))
	}
	return s, nil
}

// applyFlagOverrides copies explicitly set flags into s and re-validates
func applyFlagOverrides(cmd *cobra.Command, s *settings.Settings) error {
	if cmd == nil {
		return nil
	}
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed("indent") {
		s.Indent, _ = flags.GetInt("indent")
	}
	if changed("sort-keys") {
		s.SortKeys, _ = flags.GetBool("sort-keys")
	}
	if changed("flow-level") {
		s.FlowLevel, _ = flags.GetInt("flow-level")
	}
	if changed("no-ai") {
		noAI, _ := flags.GetBool("no-ai")
		s.EnableAISuggestions = !noAI
	}
	if changed("debounce") {
		d, _ := flags.GetDuration("debounce")
		s.WatchDebounce = d.String()
	}
	if changed("allow-host") {
		s.AllowedHosts, _ = flags.GetStringSlice("allow-host")
	}
	return s.Validate()
}

// NewAnalyzer builds the analyzer the settings describe. The advisory provider only runs
// when AI suggestions are enabled.
func NewAnalyzer(s *settings.Settings, warnings io.Writer) *suggest.Analyzer {
	opts := []suggest.Option{
		suggest.WithWarningWriter(warnings),
		suggest.WithAllowedHosts(s.AllowedHosts...),
		suggest.WithCache(s.CacheSize),
	}
	if s.EnableAISuggestions {
		config := suggest.DefaultResilienceConfig()
		config.Timeout = s.AdvisoryTimeoutDuration()
		opts = append(opts, suggest.WithAdvisor(suggest.NewResilientAdvisor(suggest.HeuristicAdvisor{}, config)))
	}
	return suggest.NewAnalyzer(opts...)
}

// readInput reads a document from path, or from standard input when path is "-"
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// displayName is the path shown in diagnostics
func displayName(path string) string {
	if path == "-" {
		return "<stdin>"
	}
	return console.ToRelativePath(path)
}

// isYAMLFile reports whether path has a YAML extension
func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range constants.YAMLExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// expandPaths replaces directories with the YAML files directly inside them
func expandPaths(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		if path == "-" {
			files = append(files, path)
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && isYAMLFile(entry.Name()) {
				files = append(files, filepath.Join(path, entry.Name()))
			}
		}
	}
	return files, nil
}

// writeOutput writes content to path, or to w when path is empty
func writeOutput(w io.Writer, path, content string, tracker *FileTracker) error {
	if path == "" {
		_, err := io.WriteString(w, content)
		return err
	}
	if tracker != nil {
		if _, err := os.Stat(path); err == nil {
			tracker.TrackModified(path)
		} else {
			tracker.TrackCreated(path)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
