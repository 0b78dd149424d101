package session

import (
	"errors"
	"fmt"
)

// Sentinel errors for session operations.
var (
	ErrNotFound  = errors.New("session not found")
	ErrNoSession = errors.New("no session is bound")
)

// NotFoundError names the missing session.
type NotFoundError struct {
	ID uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// StepNotFoundError is returned for a step number outside the recorded range.
type StepNotFoundError struct {
	Number int
	Count  int
}

func (e *StepNotFoundError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("step %d does not exist: no steps recorded yet", e.Number)
	}
	return fmt.Sprintf("step %d does not exist, valid range is 0-%d", e.Number, e.Count-1)
}

// CorruptError is returned when a stored session cannot be decoded.
type CorruptError struct {
	Path  string
	Cause error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt session data at %s: %v", e.Path, e.Cause)
}

func (e *CorruptError) Unwrap() error { return e.Cause }
