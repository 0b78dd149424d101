package question

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Cyclone1070/codeagent/internal/tool"
)

// asker delivers prompts to a human.
type asker interface {
	Ask(ctx context.Context, prompts []Prompt) ([]string, error)
}

type AskRequest struct {
	Questions []Prompt `json:"questions"`
}

func (r *AskRequest) String() string {
	return fmt.Sprintf("Asking %d question(s)", len(r.Questions))
}

// Tool suspends the turn until the user answers.
type Tool struct {
	asker asker
}

// NewTool creates a new question Tool with injected dependencies.
func NewTool(asker asker) *Tool {
	if asker == nil {
		panic("asker is required")
	}
	return &Tool{asker: asker}
}

func (t *Tool) Name() string {
	return "question"
}

func (t *Tool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "question",
		Description: "Ask the user for missing information, a confirmation or a choice. Execution pauses until they answer.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"questions": {
					Type:        tool.TypeArray,
					Description: "Questions to ask, in order",
					Items: &tool.Schema{
						Type: tool.TypeObject,
						Properties: map[string]*tool.Schema{
							"question": {Type: tool.TypeString, Description: "The full question"},
							"header":   {Type: tool.TypeString, Description: "Short label, at most 30 characters"},
							"options":  {Type: tool.TypeArray, Description: "Suggested answers", Items: &tool.Schema{Type: tool.TypeString}},
						},
						Required: []string{"question"},
					},
				},
			},
			Required: []string{"questions"},
		},
	}
}

func (t *Tool) Input() any {
	return &AskRequest{}
}

// Execute hands the prompts to the shell and returns the answers as Q/A pairs.
func (t *Tool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*AskRequest)
	if !ok {
		return tool.Result{}, fmt.Errorf("invalid input type: %T", input)
	}
	if len(req.Questions) == 0 {
		return tool.Failure(tool.CodeInvalidArguments, "questions must not be empty"), nil
	}
	for i, q := range req.Questions {
		if strings.TrimSpace(q.Question) == "" {
			return tool.Failure(tool.CodeInvalidArguments, "questions[%d].question must not be empty", i), nil
		}
	}

	resume := tool.AwaitUser(ctx)
	answers, err := t.asker.Ask(ctx, req.Questions)
	resume()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return tool.Result{}, err
		}
		return tool.Failure(tool.CodeExecutionFailed, "%v", err), nil
	}

	var b strings.Builder
	for i, q := range req.Questions {
		answer := ""
		if i < len(answers) {
			answer = answers[i]
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Q: %s\nA: %s", q.Question, answer)
	}
	return tool.Success(b.String(), tool.StringDisplay(fmt.Sprintf("User answered %d question(s)", len(req.Questions)))), nil
}
