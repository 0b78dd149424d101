package tool

import (
	"errors"

	"github.com/Cyclone1070/codeagent/internal/tool/service/path"
)

// PathFailure turns a path resolution error into a Result the model can act on.
func PathFailure(p string, err error) Result {
	if errors.Is(err, path.ErrOutsideWorkspace) || errors.Is(err, path.ErrAbsolutePath) || errors.Is(err, path.ErrReserved) {
		return Failure(CodeOutsideWorkspace, "%v", err)
	}
	return Failure(CodeExecutionFailed, "resolve %s: %v", p, err)
}
