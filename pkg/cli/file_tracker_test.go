package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileTrackerRollback(t *testing.T) {
	dir := t.TempDir()
	modified := writeTestFile(t, dir, "existing.yml", "a: 1\n")
	created := filepath.Join(dir, "new.json")

	tracker := NewFileTracker()
	tracker.TrackModified(modified)
	tracker.TrackModified(modified) // second write keeps the first snapshot
	tracker.TrackCreated(created)

	if err := os.WriteFile(modified, []byte("a: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(created, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	if got := len(tracker.GetAllFiles()); got != 2 {
		t.Errorf("Expected 2 tracked files, got %d", got)
	}

	if err := tracker.Rollback(false); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	data, err := os.ReadFile(modified)
	if err != nil || string(data) != "a: 1\n" {
		t.Errorf("Expected original content to be restored, got %q (%v)", string(data), err)
	}
	if _, err := os.Stat(created); !os.IsNotExist(err) {
		t.Errorf("Expected created file to be removed, stat error: %v", err)
	}
}

func TestFileTrackerRollbackMissingCreatedFile(t *testing.T) {
	tracker := NewFileTracker()
	tracker.TrackCreated(filepath.Join(t.TempDir(), "never-written.yml"))

	if err := tracker.Rollback(false); err != nil {
		t.Errorf("Rollback of a file that was never written should succeed, got %v", err)
	}
}
