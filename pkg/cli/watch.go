package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/githubnext/yamlassist/pkg/console"
	"github.com/githubnext/yamlassist/pkg/constants"
	"github.com/githubnext/yamlassist/pkg/converter"
	"github.com/spf13/cobra"
)

// WatchConfig controls WatchPath
type WatchConfig struct {
	Debounce time.Duration
	// AutoValidate re-validates changed files; otherwise changes are only reported
	AutoValidate bool
	// FormatOnChange rewrites a valid changed file in canonical form
	FormatOnChange bool
	FormatOptions  converter.Options
	Verbose        bool
}

// watchSession serialises output and batches changed files between debounce ticks
type watchSession struct {
	config WatchConfig

	mu       sync.Mutex
	out      io.Writer
	modified map[string]struct{}
	timer    *time.Timer
}

// WatchPath watches a YAML file or every YAML file in a directory and re-validates files
// as they change, until ctx is cancelled
func WatchPath(ctx context.Context, w io.Writer, target string, config WatchConfig) error {
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", target, err)
	}
	dir := target
	singleFile := ""
	if !info.IsDir() {
		dir = filepath.Dir(target)
		if singleFile, err = filepath.Abs(target); err != nil {
			return err
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	session := &watchSession{
		config:   config,
		out:      w,
		modified: make(map[string]struct{}),
	}

	session.println(console.FormatInfoMessage(fmt.Sprintf("Watching for file changes in %s...", console.ToRelativePath(target))))
	if config.Verbose {
		session.println(console.FormatVerboseMessage("Press Ctrl+C to stop watching."))
	}

	// Initial pass
	if config.AutoValidate {
		initial, err := expandPaths([]string{target})
		if err != nil {
			return err
		}
		session.process(initial)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher channel closed")
			}
			if !isYAMLFile(event.Name) {
				continue
			}
			if singleFile != "" && absPath(event.Name) != singleFile {
				continue
			}
			if config.Verbose {
				session.println(console.FormatVerboseMessage(fmt.Sprintf("Detected change: %s (%s)", console.ToRelativePath(event.Name), event.Op.String())))
			}

			switch {
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				session.println(console.FormatInfoMessage(console.ToRelativePath(event.Name) + " was removed"))
			case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
				session.schedule(event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			session.println(console.FormatWarningMessage(fmt.Sprintf("Watcher error: %v", err)))

		case <-ctx.Done():
			session.stop()
			if config.Verbose {
				session.println(console.FormatVerboseMessage("Stopping watch mode..."))
			}
			return nil
		}
	}
}

// schedule adds file to the pending batch and restarts the debounce timer
func (s *watchSession) schedule(file string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.modified[file] = struct{}{}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.config.Debounce, s.flush)
}

func (s *watchSession) flush() {
	s.mu.Lock()
	files := make([]string, 0, len(s.modified))
	for file := range s.modified {
		files = append(files, file)
	}
	s.modified = make(map[string]struct{})
	s.mu.Unlock()

	sort.Strings(files)
	s.process(files)
}

func (s *watchSession) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
}

// process validates a batch of files and reports the outcome
func (s *watchSession) process(files []string) {
	if len(files) == 0 {
		return
	}
	if !s.config.AutoValidate {
		for _, file := range files {
			s.println(console.FormatInfoMessage(console.ToRelativePath(file) + " changed"))
		}
		return
	}

	s.println(console.FormatProgressMessage(fmt.Sprintf("Re-validating %d files...", len(files))))
	for _, report := range validateConcurrent(files, nil, false) {
		s.mu.Lock()
		if report.Error != nil {
			fmt.Fprintln(s.out, console.FormatErrorMessage(report.Error.Error()))
		} else {
			writeReport(s.out, report)
		}
		s.mu.Unlock()

		if report.Error == nil && report.Result.IsValid && s.config.FormatOnChange {
			s.reformat(report)
		}
	}
}

// reformat rewrites a valid file in canonical form. The rewrite triggers one more event
// whose content is already canonical, so it settles.
func (s *watchSession) reformat(report FileReport) {
	result := converter.Format(report.Text, s.config.FormatOptions)
	if !result.Success || result.Result == report.Text {
		return
	}
	if err := os.WriteFile(report.Path, []byte(result.Result), 0644); err != nil {
		s.println(console.FormatWarningMessage(fmt.Sprintf("Failed to format %s: %v", console.ToRelativePath(report.Path), err)))
		return
	}
	s.println(console.FormatSuccessMessage("Formatted " + console.ToRelativePath(report.Path)))
}

func (s *watchSession) println(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, message)
}

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [file or directory]",
		Short: "Re-validate YAML files whenever they change",
		Long: `Watch a YAML file, or the .yml and .yaml files in a directory, and re-validate them
after each change. Changes are batched over the debounce window.

When auto-validate is disabled in the settings, changes are only reported. When
format-on-paste is enabled, valid files are rewritten in canonical form.

Examples:
  ` + constants.CLIName + ` watch
  ` + constants.CLIName + ` watch deploy/ --debounce 1s
  ` + constants.CLIName + ` watch config.yml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			s, err := LoadSettings(cmd, verbose)
			if err != nil {
				return err
			}
			target := "."
			if len(args) > 0 {
				target = args[0]
			}
			return WatchPath(cmd.Context(), os.Stdout, target, WatchConfig{
				Debounce:       s.WatchDebounceDuration(),
				AutoValidate:   s.AutoValidate,
				FormatOnChange: s.FormatOnPaste,
				FormatOptions:  s.ConverterOptions(),
				Verbose:        verbose,
			})
		},
	}
	cmd.Flags().Duration("debounce", 0, "Debounce window (default from settings, 500ms)")
	return cmd
}
