package workspace

import (
	"errors"
	"path/filepath"
	"testing"

	"codewright/internal/types"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestWriteThenRead(t *testing.T) {
	s := newStore(t)

	if err := s.WriteFile("a.txt", "hello"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := s.ReadFile("a.txt")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got != "hello" {
		t.Errorf("expected %q, got %q", "hello", got)
	}
}

func TestWriteCreatesParentDirs(t *testing.T) {
	s := newStore(t)

	if err := s.WriteFile(filepath.Join("deep", "nested", "dir", "f.go"), "package f"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := s.ReadFile("deep/nested/dir/f.go")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got != "package f" {
		t.Errorf("unexpected content %q", got)
	}
}

func TestReadMissingIsNotFound(t *testing.T) {
	s := newStore(t)

	_, err := s.ReadFile("nope.txt")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound in chain, got %v", err)
	}
	var ioErr *types.ResourceIOError
	if !errors.As(err, &ioErr) {
		t.Errorf("expected ResourceIOError, got %T", err)
	}
}

func TestDeleteFileAndDir(t *testing.T) {
	s := newStore(t)

	if err := s.WriteFile("dir/file.txt", "x"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := s.Delete("dir/file.txt"); err != nil {
		t.Fatalf("Delete file: %v", err)
	}
	if s.Exists("dir/file.txt") {
		t.Error("file should be gone")
	}
	if err := s.Delete("dir"); err != nil {
		t.Fatalf("Delete dir: %v", err)
	}
	if s.Exists("dir") {
		t.Error("dir should be gone")
	}
}

func TestDeleteMissingIsNotFound(t *testing.T) {
	s := newStore(t)

	err := s.Delete("ghost")
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEscapeRefused(t *testing.T) {
	s := newStore(t)

	if _, err := s.Resolve("../outside.txt"); err == nil {
		t.Error("expected refusal for path escaping the root")
	}
	if _, err := s.Resolve("/etc/passwd"); err == nil {
		t.Error("expected refusal for absolute path outside the root")
	}
	if err := s.WriteFile("../../escape", "x"); err == nil {
		t.Error("expected write refusal outside the root")
	}
}

func TestMakeDir(t *testing.T) {
	s := newStore(t)

	if err := s.MakeDir("new/folder"); err != nil {
		t.Fatalf("MakeDir: %v", err)
	}
	if !s.Exists("new/folder") {
		t.Error("expected folder to exist")
	}
}
