package file

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/codeagent/internal/config"
	"github.com/Cyclone1070/codeagent/internal/tool"
	"github.com/Cyclone1070/codeagent/internal/tool/helper/content"
	"github.com/pmezard/go-difflib/difflib"
)

// EditTool replaces an exact snippet in an existing file.
type EditTool struct {
	fs     fileEditor
	paths  pathResolver
	config *config.Config
}

// NewEditTool creates a new EditTool with injected dependencies.
func NewEditTool(fs fileEditor, paths pathResolver, cfg *config.Config) *EditTool {
	if fs == nil {
		panic("fs is required")
	}
	if paths == nil {
		panic("paths is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &EditTool{fs: fs, paths: paths, config: cfg}
}

func (t *EditTool) Name() string {
	return "edit"
}

func (t *EditTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name: "edit",
		Description: "Replace oldString with newString in an existing file. oldString must match exactly once " +
			"unless replaceAll is set; include surrounding lines to make it unique.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"filePath":   {Type: tool.TypeString, Description: "Path relative to the working directory"},
				"oldString":  {Type: tool.TypeString, Description: "Exact text to replace"},
				"newString":  {Type: tool.TypeString, Description: "Replacement text"},
				"replaceAll": {Type: tool.TypeBoolean, Description: "Replace every occurrence of oldString"},
			},
			Required: []string{"filePath", "oldString", "newString"},
		},
	}
}

func (t *EditTool) Input() any {
	return &EditRequest{}
}

// Execute applies the replacement and writes the file atomically, keeping its mode and line endings.
func (t *EditTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*EditRequest)
	if !ok {
		return tool.Result{}, invalidInput(input)
	}

	if req.OldString == "" {
		return tool.Failure(tool.CodeInvalidArguments, "oldString must not be empty, use write to create a file"), nil
	}
	if req.OldString == req.NewString {
		return tool.Failure(tool.CodeInvalidArguments, "oldString and newString are identical"), nil
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
		return tool.Failure(tool.CodeIsADirectory, "%s is a directory", rel), nil
	}

	data, err := t.fs.ReadFile(abs)
	if err != nil {
		return statFailure(rel, err), nil
	}
	if content.IsBinary(data) {
		return tool.Failure(tool.CodeBinaryFile, "%s is a binary file", rel), nil
	}

	raw := string(data)
	endings := lineEndings(raw)

	// Uniform files match on \n so the model's snippets work whatever the file uses.
	// Mixed files are edited byte for byte so untouched lines keep their endings.
	oldContent, before, after := raw, req.OldString, req.NewString
	if endings != endingsMixed {
		oldContent = strings.ReplaceAll(raw, "\r\n", "\n")
		before = strings.ReplaceAll(before, "\r\n", "\n")
		after = strings.ReplaceAll(after, "\r\n", "\n")
	}

	count := strings.Count(oldContent, before)
	switch {
	case count == 0:
		return tool.Failure(tool.CodeNoMatch, "oldString not found in %s", rel), nil
	case count > 1 && !req.ReplaceAll:
		return tool.Failure(tool.CodeNoMatch,
			"oldString matches %d times in %s; add surrounding context to make it unique or set replaceAll", count, rel), nil
	}

	newContent := strings.ReplaceAll(oldContent, before, after)
	final := newContent
	if endings == endingsCRLF {
		final = strings.ReplaceAll(newContent, "\n", "\r\n")
	}
	if int64(len(final)) > t.config.Tools.MaxFileSize {
		return tool.Failure(tool.CodeExecutionFailed, "%s would be too large after the edit (%d bytes, limit %d)", rel, len(final), t.config.Tools.MaxFileSize), nil
	}

	if err := ctx.Err(); err != nil {
		return tool.Result{}, err
	}
	if err := t.fs.WriteFileAtomic(abs, []byte(final), info.Mode().Perm()); err != nil {
		return tool.Failure(tool.CodeExecutionFailed, "write %s: %v", rel, err), nil
	}

	diff, added, removed := computeUnifiedDiff(filepath.Base(abs), oldContent, newContent)
	msg := fmt.Sprintf("Edited %s: replaced %d occurrence(s)", rel, count)
	return tool.Success(msg, tool.DiffDisplay{Diff: diff, AddedLines: added, RemovedLines: removed}), nil
}

type endingStyle int

const (
	endingsLF endingStyle = iota
	endingsCRLF
	endingsMixed
)

// lineEndings classifies raw by its line terminators. A file without newlines counts as LF.
func lineEndings(raw string) endingStyle {
	lf := strings.Count(raw, "\n")
	crlf := strings.Count(raw, "\r\n")
	switch {
	case crlf == 0:
		return endingsLF
	case crlf == lf:
		return endingsCRLF
	}
	return endingsMixed
}

func computeUnifiedDiff(filename, oldContent, newContent string) (diff string, added, removed int) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldContent),
		B:        difflib.SplitLines(newContent),
		FromFile: "a/" + filename,
		ToFile:   "b/" + filename,
		Context:  3,
	}
	diff, _ = difflib.GetUnifiedDiffString(ud)

	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++") {
			added++
		} else if strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---") {
			removed++
		}
	}
	return diff, added, removed
}
