// Package adapter contains infrastructure adapters for the gapfill pipeline.
package adapter

import (
	"os"
	"path/filepath"

	m "gapfill.dev/pkg/gapfill/internal/model"
)

// SourceFSAdapter abstracts filesystem-specific operations that the domain layer
// relies on when scanning the working tree and writing generated tests. It
// hides direct `os` access so the pipeline can be tested against temp dirs.
//
//nolint:interfacebloat // A richer interface keeps workflow logic decoupled from os/fs.
type SourceFSAdapter interface {
	// Walk traverses the provided root path. When recursive is false the
	// implementation should limit itself to the root directory (no sub-dirs).
	Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// FileInfo returns metadata for a path without following symlinks.
	FileInfo(path m.Path) (os.FileInfo, error)

	// CreateTempDir creates a temporary directory outside the working tree.
	CreateTempDir(pattern string) (m.Path, error)

	// RemoveAll removes a directory and all its contents.
	RemoveAll(path m.Path) error

	// Remove deletes a single file.
	Remove(path m.Path) error

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path m.Path) error

	// WriteFile replaces the file at path with content. Readers observe either
	// the old or the new contents, never a partial write.
	WriteFile(path m.Path, content []byte, perm os.FileMode) error
}

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk. It is
// defined here to avoid leaking the standard-library type directly into the
// domain layer.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// LocalSourceFSAdapter is the os-backed SourceFSAdapter.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Walk iterates over files under root, optionally descending into subdirectories.
// Hidden directories and __pycache__ are never entered.
func (a *LocalSourceFSAdapter) Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error {
	rootStr := string(root)

	return filepath.Walk(rootStr, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fn(path, info, err)
		}

		if info.IsDir() && path != rootStr {
			if !recursive {
				return filepath.SkipDir
			}

			base := filepath.Base(path)
			if base == "__pycache__" || (len(base) > 1 && base[0] == '.') {
				return filepath.SkipDir
			}
		}

		return fn(path, info, nil)
	})
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Lstat(string(path))
}

// CreateTempDir creates a temporary directory for run-scoped artifacts.
func (a *LocalSourceFSAdapter) CreateTempDir(pattern string) (m.Path, error) {
	tmpDir, err := os.MkdirTemp("", pattern)
	if err != nil {
		return "", err
	}

	return m.Path(tmpDir), nil
}

// RemoveAll removes a directory and all its contents.
func (a *LocalSourceFSAdapter) RemoveAll(path m.Path) error {
	return os.RemoveAll(string(path))
}

// Remove deletes a single file. A missing file is not an error.
func (a *LocalSourceFSAdapter) Remove(path m.Path) error {
	err := os.Remove(string(path))
	if err != nil && os.IsNotExist(err) {
		return nil
	}

	return err
}

// MkdirAll creates path and any missing parents.
func (a *LocalSourceFSAdapter) MkdirAll(path m.Path) error {
	return os.MkdirAll(string(path), 0o750)
}

// WriteFile writes content to a sibling temp file and renames it over path.
func (a *LocalSourceFSAdapter) WriteFile(path m.Path, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(string(path))

	// #nosec G304 - dir is derived from the canonical tests root
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(string(path))+".tmp-*")
	if err != nil {
		return err
	}

	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(content); err != nil {
		cleanup()
		return err
	}

	if err := tmp.Chmod(perm); err != nil {
		cleanup()
		return err
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, string(path)); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	return nil
}
