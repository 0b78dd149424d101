package file

import (
	"errors"
	"fmt"
	"os"

	"github.com/Cyclone1070/codeagent/internal/tool"
	"github.com/Cyclone1070/codeagent/internal/tool/service/fs"
)

// -- Read --

type ReadRequest struct {
	FilePath string `json:"filePath"`
	Offset   int    `json:"offset,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

func (r *ReadRequest) String() string {
	return "Reading " + r.FilePath
}

// -- Write --

type WriteRequest struct {
	FilePath string `json:"filePath"`
	Content  string `json:"content"`
}

func (r *WriteRequest) String() string {
	return "Writing " + r.FilePath
}

// -- Edit --

type EditRequest struct {
	FilePath   string `json:"filePath"`
	OldString  string `json:"oldString"`
	NewString  string `json:"newString"`
	ReplaceAll bool   `json:"replaceAll,omitempty"`
}

func (r *EditRequest) String() string {
	return "Editing " + r.FilePath
}

// statFailure maps a failed Stat or ReadFile into a Result.
func statFailure(rel string, err error) tool.Result {
	switch {
	case os.IsNotExist(err):
		return tool.Failure(tool.CodeNotFound, "file not found: %s", rel)
	case errors.Is(err, fs.ErrIsDirectory):
		return tool.Failure(tool.CodeIsADirectory, "%s is a directory", rel)
	default:
		return tool.Failure(tool.CodeExecutionFailed, "%s: %v", rel, err)
	}
}

func invalidInput(input any) error {
	return fmt.Errorf("invalid input type: %T", input)
}
