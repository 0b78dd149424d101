package file

import (
	"context"
	"fmt"
	"strings"

	"github.com/Cyclone1070/codeagent/internal/config"
	"github.com/Cyclone1070/codeagent/internal/tool"
	"github.com/Cyclone1070/codeagent/internal/tool/helper/content"
)

// ReadTool returns a text file, or a window of its lines, exactly as stored.
type ReadTool struct {
	fs     fileReader
	paths  pathResolver
	config *config.Config
}

// NewReadTool creates a new ReadTool with injected dependencies.
func NewReadTool(fs fileReader, paths pathResolver, cfg *config.Config) *ReadTool {
	if fs == nil {
		panic("fs is required")
	}
	if paths == nil {
		panic("paths is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &ReadTool{fs: fs, paths: paths, config: cfg}
}

func (t *ReadTool) Name() string {
	return "read"
}

func (t *ReadTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name: "read",
		Description: "Read a text file from the working directory. The content is returned exactly as stored. " +
			"Use offset (0-based line) and limit to page through large files; a partial read ends with a note naming the next offset.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"filePath": {Type: tool.TypeString, Description: "Path relative to the working directory"},
				"offset":   {Type: tool.TypeInteger, Description: "First line to return, 0-based", Minimum: tool.Min(0)},
				"limit":    {Type: tool.TypeInteger, Description: "Maximum number of lines to return", Minimum: tool.Min(1)},
			},
			Required: []string{"filePath"},
		},
	}
}

func (t *ReadTool) Input() any {
	return &ReadRequest{}
}

// Execute reads the requested window of a file.
//
// Note: ctx is accepted for API consistency but not used - file I/O is synchronous.
func (t *ReadTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*ReadRequest)
	if !ok {
		return tool.Result{}, invalidInput(input)
	}

	abs, err := t.paths.Abs(req.FilePath)
	if err != nil {
		return tool.PathFailure(req.FilePath, err), nil
	}
	rel := t.paths.RelOf(abs)

	info, err := t.fs.Stat(abs)
	if err != nil {
		return statFailure(rel, err), nil
	}
	if info.IsDir() {
		return tool.Failure(tool.CodeIsADirectory, "%s is a directory, use glob to list its contents", rel), nil
	}
	if info.Size() > t.config.Tools.MaxFileSize {
		return tool.Failure(tool.CodeExecutionFailed, "%s is too large (%d bytes, limit %d)", rel, info.Size(), t.config.Tools.MaxFileSize), nil
	}

	data, err := t.fs.ReadFile(abs)
	if err != nil {
		return statFailure(rel, err), nil
	}
	if content.IsBinary(data) {
		return tool.Failure(tool.CodeBinaryFile, "%s is a binary file", rel), nil
	}

	lines := content.SplitLinesKeepEnds(string(data))
	total := len(lines)
	if total == 0 {
		return tool.Success("", tool.StringDisplay("Read 0 lines from "+rel)), nil
	}
	if req.Offset >= total {
		return tool.Failure(tool.CodeInvalidArguments, "offset %d is beyond the end of %s (%d lines)", req.Offset, rel, total), nil
	}

	limit := req.Limit
	if limit <= 0 {
		limit = t.config.Tools.ReadDefaultLimit
	}
	end := min(req.Offset+limit, total)

	var b strings.Builder
	cutLines := 0
	for _, line := range lines[req.Offset:end] {
		eol := content.LineEnding(line)
		body := strings.TrimSuffix(line, eol)
		if cut, truncated := content.TruncateRunes(body, t.config.Tools.ReadMaxLineLength); truncated {
			line = cut + "..." + eol
			cutLines++
		}
		b.WriteString(line)
	}

	// Notes only follow a partial window or a cut line; otherwise the content is the file verbatim
	if end < total {
		fmt.Fprintf(&b, "\n(Showing lines %d-%d of %d. Use offset=%d to read more.)\n", req.Offset+1, end, total, end)
	}
	if cutLines > 0 {
		fmt.Fprintf(&b, "\n(%d line(s) cut at %d characters.)\n", cutLines, t.config.Tools.ReadMaxLineLength)
	}

	display := fmt.Sprintf("Read %d lines from %s", end-req.Offset, rel)
	if req.Offset > 0 || end < total {
		display = fmt.Sprintf("Read lines %d-%d of %d from %s", req.Offset+1, end, total, rel)
	}
	return tool.Success(b.String(), tool.StringDisplay(display)), nil
}
