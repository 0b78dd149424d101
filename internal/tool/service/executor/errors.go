package executor

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when a command exceeds its timeout. The process group has been killed.
var ErrTimeout = errors.New("command timeout")

// CommandError is returned when a command could not be started.
type CommandError struct {
	Cmd   string
	Cause error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Cmd, e.Cause)
}
func (e *CommandError) Unwrap() error { return e.Cause }
