package tool

import (
	"fmt"
	"strings"
)

// Status is the outcome of a tool call.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Kind separates failures the model caused with its arguments from failures of the work itself.
type Kind string

const (
	KindValidation Kind = "validation"
	KindExecution  Kind = "execution"
)

// Code identifies a failure.
type Code string

const (
	CodeUnknownTool      Code = "unknown_tool"
	CodeInvalidArguments Code = "invalid_arguments"
	CodeOutsideWorkspace Code = "path_outside_workspace"

	CodeNotFound        Code = "not_found"
	CodeIsADirectory    Code = "is_a_directory"
	CodeNoMatch         Code = "no_match"
	CodeTimeout         Code = "timeout"
	CodeExitStatus      Code = "exit_status"
	CodeBinaryFile      Code = "binary_file"
	CodeHTTPError       Code = "http_error"
	CodeExecutionFailed Code = "execution_failed"
)

// Kind reports which side of the taxonomy the code belongs to.
func (c Code) Kind() Kind {
	switch c {
	case CodeUnknownTool, CodeInvalidArguments, CodeOutsideWorkspace:
		return KindValidation
	default:
		return KindExecution
	}
}

// Result is what a tool call produced. Failures the model can act on are Results, not Go errors.
type Result struct {
	CallID  string
	Status  Status
	Content string
	Code    Code
	Error   string
	Display ToolDisplay
}

// Success builds a successful Result.
func Success(content string, display ToolDisplay) Result {
	if display == nil {
		display = StringDisplay(firstLine(content))
	}
	return Result{Status: StatusSuccess, Content: content, Display: display}
}

// Failure builds a failed Result.
func Failure(code Code, format string, args ...any) Result {
	msg := fmt.Sprintf(format, args...)
	return Result{
		Status:  StatusFailure,
		Code:    code,
		Error:   msg,
		Display: StringDisplay(msg),
	}
}

// WithContent attaches partial output to a failure, such as the stderr of a failed command.
func (r Result) WithContent(content string) Result {
	r.Content = content
	return r
}

// Failed reports whether the call failed.
func (r Result) Failed() bool {
	return r.Status == StatusFailure
}

// LLMContent renders the result for the tool message sent back to the model.
func (r Result) LLMContent() string {
	if !r.Failed() {
		return r.Content
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Error [%s]: %s", r.Code, r.Error)
	if r.Content != "" {
		b.WriteString("\n\n")
		b.WriteString(r.Content)
	}
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
