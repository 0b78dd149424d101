package path

import (
	"errors"
	"fmt"
)

// RootError is returned when the working directory itself is unusable.
type RootError struct {
	Root  string
	Cause error
}

func (e *RootError) Error() string {
	return fmt.Sprintf("invalid working directory %s: %v", e.Root, e.Cause)
}
func (e *RootError) Unwrap() error { return e.Cause }

// PathError is returned when a tool path is rejected.
type PathError struct {
	Path  string
	Cause error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Cause)
}
func (e *PathError) Unwrap() error { return e.Cause }

// -- Sentinels --

var (
	ErrOutsideWorkspace = errors.New("path escapes the working directory")
	ErrAbsolutePath     = errors.New("absolute paths are not allowed, use a path relative to the working directory")
	ErrNotADirectory    = errors.New("not a directory")
	ErrReserved         = errors.New("path is reserved for the agent's own state")
)
