// Package workspace is the file-system collaborator. All resource paths used
// by handlers and the change set store resolve against a single workspace
// root; escapes via ".." or absolute paths outside the root are refused.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codewright/internal/logging"
	"codewright/internal/types"
)

// Store reads and writes files under one workspace root.
type Store struct {
	root string
}

// New creates a workspace store rooted at the given directory.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute workspace root.
func (s *Store) Root() string { return s.root }

// Resolve maps a resource path to an absolute path inside the workspace.
// Absolute paths already inside the root are accepted as-is.
func (s *Store) Resolve(path string) (string, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return "", &types.ResourceIOError{Op: "resolve", Path: path, Err: fmt.Errorf("empty path")}
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.root, p)
	}
	p = filepath.Clean(p)
	if p != s.root && !strings.HasPrefix(p, s.root+string(filepath.Separator)) {
		return "", &types.ResourceIOError{Op: "resolve", Path: path, Err: fmt.Errorf("outside workspace root")}
	}
	return p, nil
}

// ReadFile returns the content of a workspace file. Missing files are
// reported with types.ErrNotFound in the error chain.
func (s *Store) ReadFile(path string) (string, error) {
	abs, err := s.Resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &types.ResourceIOError{Op: "read", Path: path, Err: types.ErrNotFound}
		}
		return "", &types.ResourceIOError{Op: "read", Path: path, Err: err}
	}
	return string(data), nil
}

// WriteFile writes content to a workspace file, creating parent directories
// as needed.
func (s *Store) WriteFile(path, content string) error {
	abs, err := s.Resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return &types.ResourceIOError{Op: "write", Path: path, Err: err}
	}
	if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
		return &types.ResourceIOError{Op: "write", Path: path, Err: err}
	}
	logging.Get(logging.CategoryChangeset).Debug("wrote %s (%d bytes)", path, len(content))
	return nil
}

// Delete removes a file or directory tree from the workspace.
func (s *Store) Delete(path string) error {
	abs, err := s.Resolve(path)
	if err != nil {
		return err
	}
	if abs == s.root {
		return &types.ResourceIOError{Op: "delete", Path: path, Err: fmt.Errorf("refusing to delete workspace root")}
	}
	if _, err := os.Stat(abs); os.IsNotExist(err) {
		return &types.ResourceIOError{Op: "delete", Path: path, Err: types.ErrNotFound}
	}
	if err := os.RemoveAll(abs); err != nil {
		return &types.ResourceIOError{Op: "delete", Path: path, Err: err}
	}
	return nil
}

// MakeDir creates a directory (and parents) inside the workspace.
func (s *Store) MakeDir(path string) error {
	abs, err := s.Resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return &types.ResourceIOError{Op: "mkdir", Path: path, Err: err}
	}
	return nil
}

// Exists reports whether a workspace path exists.
func (s *Store) Exists(path string) bool {
	abs, err := s.Resolve(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(abs)
	return err == nil
}
