package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewFileWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	w, err := newFileWriter(dir)
	if err != nil {
		t.Fatalf("newFileWriter failed: %v", err)
	}
	defer w.Close()

	if w.Filename != filepath.Join(dir, FileName) {
		t.Errorf("Filename = %s", w.Filename)
	}
	if _, err := os.Stat(filepath.Join(dir, ".write-test")); !os.IsNotExist(err) {
		t.Errorf("Write test file was left behind")
	}
}

func TestInit_UsesLogsFolder(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOGS_FOLDER", dir)

	if err := Init(true); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
}
