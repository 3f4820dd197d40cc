package home

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("with explicit path", func(t *testing.T) {
		dir, err := New("/tmp/test-medlens")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir.Path() != "/tmp/test-medlens" {
			t.Errorf("expected path /tmp/test-medlens, got %s", dir.Path())
		}
	})

	t.Run("with empty path uses default", func(t *testing.T) {
		dir, err := New("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, DefaultDirName)
		if dir.Path() != expected {
			t.Errorf("expected path %s, got %s", expected, dir.Path())
		}
	})
}

func TestDir_Paths(t *testing.T) {
	dir, _ := New("/tmp/test-medlens")

	if got := dir.ScratchPath(); got != "/tmp/test-medlens/scratch" {
		t.Errorf("ScratchPath() = %s", got)
	}
	if got := dir.ConfigPath(); got != "/tmp/test-medlens/config.yaml" {
		t.Errorf("ConfigPath() = %s", got)
	}
}

func TestDir_EnsureExists(t *testing.T) {
	dir, err := New(filepath.Join(t.TempDir(), "medlens-test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dir.Exists() {
		t.Error("directory should not exist before EnsureExists")
	}
	if err := dir.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}
	if !dir.Exists() {
		t.Error("directory should exist after EnsureExists")
	}

	info, err := os.Stat(dir.ScratchPath())
	if err != nil {
		t.Fatalf("scratch directory should exist: %v", err)
	}
	if info.Mode().Perm() != 0o700 {
		t.Errorf("scratch mode = %v, want 0700", info.Mode().Perm())
	}
}

func TestDir_ConfigExists(t *testing.T) {
	dir, _ := New(t.TempDir())

	if dir.ConfigExists() {
		t.Error("config should not exist initially")
	}
	if err := os.WriteFile(dir.ConfigPath(), []byte("server: {}\n"), 0o644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if !dir.ConfigExists() {
		t.Error("config should exist after creation")
	}
}

func TestDir_TempDir(t *testing.T) {
	dir, _ := New(filepath.Join(t.TempDir(), "home"))

	a, err := dir.TempDir("upload-*")
	if err != nil {
		t.Fatalf("TempDir() error = %v", err)
	}
	b, err := dir.TempDir("upload-*")
	if err != nil {
		t.Fatalf("TempDir() error = %v", err)
	}
	if a == b {
		t.Error("temp dirs must be distinct")
	}
	if !strings.HasPrefix(a, dir.ScratchPath()) {
		t.Errorf("%s is not under scratch", a)
	}
}
