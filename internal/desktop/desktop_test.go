package desktop

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExists(t *testing.T) {
	d := New()

	file := filepath.Join(t.TempDir(), "app")
	if err := os.WriteFile(file, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	if !d.Exists(file) {
		t.Errorf("expected %s to exist", file)
	}
	if d.Exists(filepath.Join(t.TempDir(), "missing")) {
		t.Error("missing file reported as existing")
	}
	if d.Exists("") {
		t.Error("empty path reported as existing")
	}
}

func TestOpenPath_Missing(t *testing.T) {
	d := New()
	if err := d.OpenPath(t.Context(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing folder")
	}
}
