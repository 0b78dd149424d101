// Package fs wraps the OS filesystem with the operations the tools and session stores share.
package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Stages of an atomic write, reported by AtomicWriteError.
const (
	StageCreateTemp = "create temp"
	StageWrite      = "write"
	StageSync       = "sync"
	StageClose      = "close"
	StageRename     = "rename"
	StageChmod      = "chmod"
)

// AtomicWriteError is returned when WriteFileAtomic fails. The target is untouched unless Stage is StageChmod.
type AtomicWriteError struct {
	Stage string
	Path  string
	Cause error
}

func (e *AtomicWriteError) Error() string {
	return fmt.Sprintf("atomic write %s: %s: %v", e.Path, e.Stage, e.Cause)
}
func (e *AtomicWriteError) Unwrap() error { return e.Cause }

// ErrIsDirectory is returned when a file operation targets a directory.
var ErrIsDirectory = errors.New("path is a directory")

// OSFileSystem implements filesystem operations using the local OS filesystem primitives.
type OSFileSystem struct{}

// NewOSFileSystem creates a new OSFileSystem.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// Stat returns file info for a path (follows symlinks).
func (OSFileSystem) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// ReadFile reads a whole regular file.
func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// ReadDir lists a directory sorted by name.
func (OSFileSystem) ReadDir(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}

// EnsureDirs creates a directory and its parents.
func (OSFileSystem) EnsureDirs(path string) error {
	return os.MkdirAll(path, 0o755)
}

// Remove deletes a file. A missing file is not an error.
func (OSFileSystem) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// WriteFileAtomic writes content through a temp file in the target's directory and renames it into place.
// A reader sees either the previous content or the new content, never a partial file.
// An existing file keeps its mode; new files get perm.
func (OSFileSystem) WriteFileAtomic(path string, content []byte, perm os.FileMode) error {
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return ErrIsDirectory
		}
		perm = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return &AtomicWriteError{Stage: StageCreateTemp, Path: path, Cause: err}
	}

	tmpPath := tmpFile.Name()
	committed := false
	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
		}
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(content); err != nil {
		return &AtomicWriteError{Stage: StageWrite, Path: path, Cause: err}
	}
	if err := tmpFile.Sync(); err != nil {
		return &AtomicWriteError{Stage: StageSync, Path: path, Cause: err}
	}

	// Close before rename (required on some systems)
	closeErr := tmpFile.Close()
	tmpFile = nil
	if closeErr != nil {
		return &AtomicWriteError{Stage: StageClose, Path: path, Cause: closeErr}
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		return &AtomicWriteError{Stage: StageChmod, Path: path, Cause: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return &AtomicWriteError{Stage: StageRename, Path: path, Cause: err}
	}
	committed = true

	return nil
}
