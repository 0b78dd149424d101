// Package history lets the model look back at questions already handled in the session.
package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/Cyclone1070/codeagent/internal/session"
	"github.com/Cyclone1070/codeagent/internal/tool"
)

// stepSource returns recorded steps of the active session.
type stepSource interface {
	Step(n int) (session.Step, error)
}

type DetailRequest struct {
	StepNumber int `json:"stepNumber"`
}

func (r *DetailRequest) String() string {
	return fmt.Sprintf("Reading step %d", r.StepNumber)
}

// DetailTool implements session_detail.
type DetailTool struct {
	steps stepSource
}

// NewDetailTool creates a DetailTool with injected dependencies.
func NewDetailTool(steps stepSource) *DetailTool {
	if steps == nil {
		panic("steps is required")
	}
	return &DetailTool{steps: steps}
}

func (t *DetailTool) Name() string {
	return "session_detail"
}

func (t *DetailTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name: "session_detail",
		Description: "Show the full record of an earlier question in this session: the tool calls made, " +
			"their results and the final answer. Step numbers start at 0.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"stepNumber": {Type: tool.TypeInteger, Description: "Step number from the session summary", Minimum: tool.Min(0)},
			},
			Required: []string{"stepNumber"},
		},
	}
}

func (t *DetailTool) Input() any {
	return &DetailRequest{}
}

func (t *DetailTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*DetailRequest)
	if !ok {
		return tool.Result{}, fmt.Errorf("invalid input type: %T", input)
	}

	step, err := t.steps.Step(req.StepNumber)
	if err != nil {
		var notFound *session.StepNotFoundError
		if errors.As(err, &notFound) {
			return tool.Failure(tool.CodeNotFound, "%v", err), nil
		}
		return tool.Failure(tool.CodeExecutionFailed, "%v", err), nil
	}
	return tool.Success(step.Detail(), tool.StringDisplay(fmt.Sprintf("Step %d: %s", step.Number, step.Question))), nil
}
