package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Cyclone1070/codeagent/internal/config"
	"github.com/Cyclone1070/codeagent/internal/tool"
	"github.com/Cyclone1070/codeagent/internal/tool/service/fs"
)

// WriteTool creates or replaces a file atomically.
type WriteTool struct {
	fs     fileWriter
	paths  pathResolver
	config *config.Config
}

// NewWriteTool creates a new WriteTool with injected dependencies.
func NewWriteTool(fs fileWriter, paths pathResolver, cfg *config.Config) *WriteTool {
	if fs == nil {
		panic("fs is required")
	}
	if paths == nil {
		panic("paths is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &WriteTool{fs: fs, paths: paths, config: cfg}
}

func (t *WriteTool) Name() string {
	return "write"
}

func (t *WriteTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "write",
		Description: "Create a file or overwrite it completely. Parent directories are created as needed.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"filePath": {Type: tool.TypeString, Description: "Path relative to the working directory"},
				"content":  {Type: tool.TypeString, Description: "The full file content"},
			},
			Required: []string{"filePath", "content"},
		},
	}
}

func (t *WriteTool) Input() any {
	return &WriteRequest{}
}

// Execute writes the file through a temp file and rename, so readers never see a partial file.
func (t *WriteTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*WriteRequest)
	if !ok {
		return tool.Result{}, invalidInput(input)
	}

	abs, err := t.paths.Abs(req.FilePath)
	if err != nil {
		return tool.PathFailure(req.FilePath, err), nil
	}
	rel := t.paths.RelOf(abs)

	if int64(len(req.Content)) > t.config.Tools.MaxFileSize {
		return tool.Failure(tool.CodeInvalidArguments, "content is too large (%d bytes, limit %d)", len(req.Content), t.config.Tools.MaxFileSize), nil
	}

	existed := false
	info, err := t.fs.Stat(abs)
	switch {
	case err == nil && info.IsDir():
		return tool.Failure(tool.CodeIsADirectory, "%s is a directory", rel), nil
	case err == nil:
		existed = true
	case !os.IsNotExist(err):
		return statFailure(rel, err), nil
	}

	if err := ctx.Err(); err != nil {
		return tool.Result{}, err
	}

	if err := t.fs.EnsureDirs(filepath.Dir(abs)); err != nil {
		return tool.Failure(tool.CodeExecutionFailed, "create parent directories for %s: %v", rel, err), nil
	}
	if err := t.fs.WriteFileAtomic(abs, []byte(req.Content), 0o644); err != nil {
		if errors.Is(err, fs.ErrIsDirectory) {
			return tool.Failure(tool.CodeIsADirectory, "%s is a directory", rel), nil
		}
		return tool.Failure(tool.CodeExecutionFailed, "write %s: %v", rel, err), nil
	}

	verb := "Created"
	if existed {
		verb = "Overwrote"
	}
	msg := fmt.Sprintf("%s %s (%d bytes)", verb, rel, len(req.Content))
	return tool.Success(msg, tool.StringDisplay(msg)), nil
}
