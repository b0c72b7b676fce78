package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/githubnext/yamlassist/pkg/console"
)

// FileTracker records files written by a command so a failed batch can be undone
type FileTracker struct {
	CreatedFiles    []string
	ModifiedFiles   []string
	OriginalContent map[string][]byte // content before the first write
}

// NewFileTracker creates a new file tracker
func NewFileTracker() *FileTracker {
	return &FileTracker{
		CreatedFiles:    make([]string, 0),
		ModifiedFiles:   make([]string, 0),
		OriginalContent: make(map[string][]byte),
	}
}

// TrackCreated adds a file to the created files list
func (ft *FileTracker) TrackCreated(filePath string) {
	ft.CreatedFiles = append(ft.CreatedFiles, absPath(filePath))
}

// TrackModified adds a file to the modified files list and stores its original content
func (ft *FileTracker) TrackModified(filePath string) {
	path := absPath(filePath)

	if _, exists := ft.OriginalContent[path]; exists {
		return
	}
	if content, err := os.ReadFile(path); err == nil {
		ft.OriginalContent[path] = content
	}
	ft.ModifiedFiles = append(ft.ModifiedFiles, path)
}

// GetAllFiles returns all tracked files (created and modified)
func (ft *FileTracker) GetAllFiles() []string {
	all := make([]string, 0, len(ft.CreatedFiles)+len(ft.ModifiedFiles))
	all = append(all, ft.CreatedFiles...)
	all = append(all, ft.ModifiedFiles...)
	return all
}

// Rollback deletes created files and restores modified ones
func (ft *FileTracker) Rollback(verbose bool) error {
	var errors []string

	for _, file := range ft.CreatedFiles {
		if verbose {
			fmt.Fprintln(os.Stderr, console.FormatVerboseMessage("Deleting "+console.ToRelativePath(file)))
		}
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("failed to delete %s: %v", file, err))
		}
	}

	for _, file := range ft.ModifiedFiles {
		original, exists := ft.OriginalContent[file]
		if !exists {
			continue
		}
		if verbose {
			fmt.Fprintln(os.Stderr, console.FormatVerboseMessage("Restoring "+console.ToRelativePath(file)))
		}
		if err := os.WriteFile(file, original, 0644); err != nil {
			errors = append(errors, fmt.Sprintf("failed to restore %s: %v", file, err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("rollback errors: %s", strings.Join(errors, "; "))
	}
	return nil
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
