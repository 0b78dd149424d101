package todo

import (
	"errors"
	"fmt"
)

// -- Sentinels --

var (
	ErrEmptyID         = errors.New("id is required")
	ErrEmptyContent    = errors.New("content is required")
	ErrInvalidStatus   = errors.New("status must be one of pending, in-progress, done")
	ErrInvalidPriority = errors.New("priority must be one of high, medium, low")
	ErrDuplicateID     = errors.New("duplicate id")
	ErrNoList          = errors.New("no session is bound to the todo list")
)

// ItemError points at the offending entry of a todowrite call.
type ItemError struct {
	Index int
	Cause error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("todos[%d]: %v", e.Index, e.Cause)
}
func (e *ItemError) Unwrap() error { return e.Cause }
