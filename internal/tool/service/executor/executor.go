// Package executor runs shell commands in their own process group with a hard timeout.
package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/Cyclone1070/codeagent/internal/config"
)

// Result represents the outcome of a command execution.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
	Duration  time.Duration
}

// OSCommandExecutor implements command execution using os/exec for real system commands.
type OSCommandExecutor struct {
	maxOutput int
	grace     time.Duration
}

// NewOSCommandExecutor creates a new OSCommandExecutor with injected config.
func NewOSCommandExecutor(cfg *config.Config) *OSCommandExecutor {
	if cfg == nil {
		panic("cfg is required")
	}
	return &OSCommandExecutor{
		maxOutput: int(cfg.Tools.MaxCommandOutputSize),
		grace:     time.Duration(cfg.Tools.ShellGracefulShutdownMs) * time.Millisecond,
	}
}

// Run executes command in dir. A non-zero exit is reported through Result.ExitCode, not as an error.
//
// On timeout the whole process group receives SIGINT, then SIGKILL once the graceful period
// has passed, and ErrTimeout is returned with whatever output was collected.
// On context cancellation the group is killed immediately and ctx.Err() is returned.
func (e *OSCommandExecutor) Run(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*Result, error) {
	if len(command) == 0 {
		return nil, os.ErrInvalid
	}

	stdout := newCollector(e.maxOutput)
	stderr := newCollector(e.maxOutput)

	// Not CommandContext: cancellation has to reach the whole group, not just the direct child
	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdin = nil
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	// Background children may keep the pipes open after the group leader exits
	cmd.WaitDelay = e.grace + 100*time.Millisecond

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &CommandError{Cmd: command[0], Cause: err}
	}
	pgid := cmd.Process.Pid

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	var waitErr, execErr error
	select {
	case waitErr = <-done:
	case <-ctx.Done():
		killGroup(pgid)
		waitErr = <-done
		execErr = ctx.Err()
	case <-timer:
		_ = syscall.Kill(-pgid, syscall.SIGINT)
		select {
		case waitErr = <-done:
		case <-time.After(e.grace):
			killGroup(pgid)
			waitErr = <-done
		}
		execErr = ErrTimeout
	}
	// Reap anything the shell left behind in its group
	killGroup(pgid)

	res := &Result{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		ExitCode:  exitCode(waitErr),
		Truncated: stdout.Truncated() || stderr.Truncated(),
		Duration:  time.Since(start),
	}
	if execErr != nil {
		res.ExitCode = -1
		return res, execErr
	}
	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) && !errors.Is(waitErr, exec.ErrWaitDelay) {
		return res, waitErr
	}
	return res, nil
}

func killGroup(pgid int) {
	_ = syscall.Kill(-pgid, syscall.SIGKILL)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if errors.Is(err, exec.ErrWaitDelay) {
		return 0
	}
	return -1
}
