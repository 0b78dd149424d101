package tool

import (
	"errors"
	"testing"

	"github.com/Cyclone1070/codeagent/internal/tool/service/path"
	"github.com/stretchr/testify/assert"
)

func TestCodeKind(t *testing.T) {
	assert.Equal(t, KindValidation, CodeUnknownTool.Kind())
	assert.Equal(t, KindValidation, CodeInvalidArguments.Kind())
	assert.Equal(t, KindValidation, CodeOutsideWorkspace.Kind())
	assert.Equal(t, KindExecution, CodeNotFound.Kind())
	assert.Equal(t, KindExecution, CodeTimeout.Kind())
	assert.Equal(t, KindExecution, CodeNoMatch.Kind())
}

func TestResult_LLMContent(t *testing.T) {
	ok := Success("line one\nline two", nil)
	assert.False(t, ok.Failed())
	assert.Equal(t, "line one\nline two", ok.LLMContent())
	assert.Equal(t, StringDisplay("line one"), ok.Display)

	failed := Failure(CodeNotFound, "file %s does not exist", "a.txt")
	assert.True(t, failed.Failed())
	assert.Equal(t, "Error [not_found]: file a.txt does not exist", failed.LLMContent())

	withOutput := Failure(CodeExitStatus, "exit code 2").WithContent("stderr: boom")
	assert.Equal(t, "Error [exit_status]: exit code 2\n\nstderr: boom", withOutput.LLMContent())
}

func TestPathFailure(t *testing.T) {
	res := PathFailure("../x", &path.PathError{Path: "../x", Cause: path.ErrOutsideWorkspace})
	assert.Equal(t, CodeOutsideWorkspace, res.Code)
	assert.Equal(t, KindValidation, res.Code.Kind())

	res = PathFailure("/etc/passwd", &path.PathError{Path: "/etc/passwd", Cause: path.ErrAbsolutePath})
	assert.Equal(t, CodeOutsideWorkspace, res.Code)

	res = PathFailure("x", errors.New("permission denied"))
	assert.Equal(t, CodeExecutionFailed, res.Code)
	assert.Contains(t, res.Error, "permission denied")
}
