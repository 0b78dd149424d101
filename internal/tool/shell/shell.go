// Package shell implements the bash tool.
package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Cyclone1070/codeagent/internal/config"
	"github.com/Cyclone1070/codeagent/internal/tool"
	"github.com/Cyclone1070/codeagent/internal/tool/service/executor"
)

// commandRunner runs a command in its own process group.
type commandRunner interface {
	Run(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*executor.Result, error)
}

// pathResolver confines the working directory of a command to the workspace.
type pathResolver interface {
	Abs(path string) (string, error)
	RelOf(abs string) string
}

type BashRequest struct {
	Command     string `json:"command"`
	Timeout     int    `json:"timeout,omitempty"`
	Workdir     string `json:"workdir,omitempty"`
	Description string `json:"description,omitempty"`
}

func (r *BashRequest) String() string {
	if r.Description != "" {
		return r.Description
	}
	return "Running " + r.Command
}

// BashTool runs shell commands with a bounded timeout.
type BashTool struct {
	runner commandRunner
	paths  pathResolver
	config *config.Config
}

// NewBashTool creates a new BashTool with injected dependencies.
func NewBashTool(runner commandRunner, paths pathResolver, cfg *config.Config) *BashTool {
	if runner == nil {
		panic("runner is required")
	}
	if paths == nil {
		panic("paths is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &BashTool{runner: runner, paths: paths, config: cfg}
}

func (t *BashTool) Name() string {
	return "bash"
}

func (t *BashTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name: "bash",
		Description: fmt.Sprintf("Run a command with /bin/sh -c. stdout, stderr and the exit code are returned. "+
			"The command is killed after timeout milliseconds (default %d, max %d).",
			t.config.Tools.ShellDefaultTimeoutMs, t.config.Tools.ShellMaxTimeoutMs),
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"command":     {Type: tool.TypeString, Description: "The command to run"},
				"timeout":     {Type: tool.TypeInteger, Description: "Timeout in milliseconds", Minimum: tool.Min(1)},
				"workdir":     {Type: tool.TypeString, Description: "Directory to run in, relative to the working directory"},
				"description": {Type: tool.TypeString, Description: "Short description of what the command does"},
			},
			Required: []string{"command"},
		},
	}
}

func (t *BashTool) Input() any {
	return &BashRequest{}
}

// Execute runs the command. A non-zero exit and a timeout are failures the model sees;
// cancellation of ctx is returned as an error.
func (t *BashTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*BashRequest)
	if !ok {
		return tool.Result{}, fmt.Errorf("invalid input type: %T", input)
	}
	if strings.TrimSpace(req.Command) == "" {
		return tool.Failure(tool.CodeInvalidArguments, "command must not be empty"), nil
	}

	workdir := req.Workdir
	if workdir == "" {
		workdir = "."
	}
	dir, err := t.paths.Abs(workdir)
	if err != nil {
		return tool.PathFailure(workdir, err), nil
	}

	timeoutMs := req.Timeout
	if timeoutMs <= 0 {
		timeoutMs = t.config.Tools.ShellDefaultTimeoutMs
	}
	timeoutMs = min(timeoutMs, t.config.Tools.ShellMaxTimeoutMs)
	timeout := time.Duration(timeoutMs) * time.Millisecond

	res, err := t.runner.Run(ctx, []string{"/bin/sh", "-c", req.Command}, dir, nil, timeout)
	switch {
	case errors.Is(err, executor.ErrTimeout):
		failure := tool.Failure(tool.CodeTimeout, "command timed out after %s and was terminated", timeout)
		if res != nil {
			failure = failure.WithContent(formatOutput(res))
		}
		return failure, nil
	case err != nil && ctx.Err() != nil:
		return tool.Result{}, ctx.Err()
	case err != nil:
		return tool.Failure(tool.CodeExecutionFailed, "run command: %v", err), nil
	}

	display := tool.ShellDisplay{
		Command:    req.Command,
		WorkingDir: t.paths.RelOf(dir),
		ExitCode:   res.ExitCode,
		Output:     res.Stdout + res.Stderr,
	}
	if res.ExitCode != 0 {
		failure := tool.Failure(tool.CodeExitStatus, "command exited with status %d", res.ExitCode).WithContent(formatOutput(res))
		failure.Display = display
		return failure, nil
	}
	return tool.Success(formatOutput(res), display), nil
}

func formatOutput(res *executor.Result) string {
	var b strings.Builder
	if res.Stdout != "" {
		b.WriteString(res.Stdout)
		if !strings.HasSuffix(res.Stdout, "\n") {
			b.WriteByte('\n')
		}
	}
	if res.Stderr != "" {
		b.WriteString("[stderr]\n")
		b.WriteString(res.Stderr)
		if !strings.HasSuffix(res.Stderr, "\n") {
			b.WriteByte('\n')
		}
	}
	if res.Truncated {
		b.WriteString("[output truncated]\n")
	}
	fmt.Fprintf(&b, "[exit code %d]", res.ExitCode)
	return b.String()
}
