package workflow

import (
	"errors"
	"fmt"
)

// Sentinel errors for turn outcomes that abort a turn.
var (
	ErrEngineUnavailable     = errors.New("engine unavailable")
	ErrMaxIterationsExceeded = errors.New("max iterations exceeded")
	ErrStore                 = errors.New("session store failure")
)

// EngineUnavailableError is returned when the model could not be reached after retries.
type EngineUnavailableError struct {
	Attempts int
	Cause    error
}

func (e *EngineUnavailableError) Error() string {
	return fmt.Sprintf("engine unavailable after %d attempt(s): %v", e.Attempts, e.Cause)
}

func (e *EngineUnavailableError) Unwrap() error { return e.Cause }

func (e *EngineUnavailableError) Is(target error) bool { return target == ErrEngineUnavailable }

// MaxIterationsError is returned when the model keeps asking for tools past the limit.
type MaxIterationsError struct {
	Limit int
}

func (e *MaxIterationsError) Error() string {
	return fmt.Sprintf("max iterations (%d) reached", e.Limit)
}

func (e *MaxIterationsError) Is(target error) bool { return target == ErrMaxIterationsExceeded }

// StoreError is returned when the session could not be persisted.
type StoreError struct {
	Op        string
	SessionID uint64
	Cause     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("session %d: %s failed: %v", e.SessionID, e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error { return e.Cause }

func (e *StoreError) Is(target error) bool { return target == ErrStore }
