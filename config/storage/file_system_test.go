package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAtomicWriteFileCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "file.json")

	if err := AtomicWriteFile(path, []byte(`{}`), 0600); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if !FileExists(path) {
		t.Error("Expected file to exist")
	}
}

func TestAtomicWriteFileReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.json")

	if err := AtomicWriteFile(path, []byte("first"), 0600); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("second"), 0600); err != nil {
		t.Fatalf("Failed to overwrite: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("Expected 'second', got '%s'", data)
	}
}

func TestAtomicWriteFileLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.json")

	if err := AtomicWriteFile(path, []byte("data"), 0600); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "file.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Expected only file.json, found %v", names)
	}
}

func TestAtomicWriteFileSetsPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.json")

	if err := AtomicWriteFile(path, []byte("secret"), 0600); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected 0600, got %v", info.Mode().Perm())
	}
}

func TestAtomicWriteFileCleansUpOnFailure(t *testing.T) {
	dir := t.TempDir()

	// A non-empty directory at the target path makes the rename fail.
	target := filepath.Join(dir, "target")
	if err := os.MkdirAll(filepath.Join(target, "x"), 0755); err != nil {
		t.Fatalf("Failed to set up conflict: %v", err)
	}
	if err := AtomicWriteFile(target, []byte("nope"), 0600); err == nil {
		t.Fatal("Expected error writing over a directory")
	}

	// The aborted replace must not leave its temporary file behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "target" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Expected only the target directory, found %v", names)
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.json")
	dst := filepath.Join(dir, "dst.json")

	if err := os.WriteFile(src, []byte(`{"env": {}}`), 0600); err != nil {
		t.Fatalf("Failed to write source: %v", err)
	}
	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("Failed to copy: %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("Failed to read copy: %v", err)
	}
	if string(data) != `{"env": {}}` {
		t.Errorf("Copy differs from source: %s", data)
	}

	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("Failed to stat copy: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected copied permissions 0600, got %v", info.Mode().Perm())
	}
}
