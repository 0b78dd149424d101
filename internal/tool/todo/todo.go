package todo

import (
	"context"
	"fmt"
	"slices"

	"github.com/Cyclone1070/codeagent/internal/tool"
)

// listStore holds the checklist of the session being driven.
type listStore interface {
	Todos() []Item
	SetTodos(items []Item) error
}

// WriteTool replaces the session checklist.
type WriteTool struct {
	store listStore
}

// NewWriteTool creates a new WriteTool with injected dependencies.
func NewWriteTool(store listStore) *WriteTool {
	if store == nil {
		panic("store is required")
	}
	return &WriteTool{store: store}
}

func (t *WriteTool) Name() string {
	return "todowrite"
}

func (t *WriteTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name: "todowrite",
		Description: "Create or update the task checklist for a multi-step request. Send the complete list every time; " +
			"it replaces the previous one. Keep exactly one item in-progress while working.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"todos": {
					Type:        tool.TypeArray,
					Description: "The full checklist",
					Items: &tool.Schema{
						Type: tool.TypeObject,
						Properties: map[string]*tool.Schema{
							"id":       {Type: tool.TypeString, Description: "Unique identifier"},
							"content":  {Type: tool.TypeString, Description: "What needs to be done"},
							"status":   {Type: tool.TypeString, Enum: []string{string(StatusPending), string(StatusInProgress), string(StatusDone)}},
							"priority": {Type: tool.TypeString, Enum: []string{string(PriorityHigh), string(PriorityMedium), string(PriorityLow)}},
						},
						Required: []string{"id", "content", "status"},
					},
				},
			},
			Required: []string{"todos"},
		},
	}
}

func (t *WriteTool) Input() any {
	return &WriteRequest{}
}

// Execute validates and stores the list. Writing the same list twice yields the same state and output.
func (t *WriteTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*WriteRequest)
	if !ok {
		return tool.Result{}, fmt.Errorf("invalid input type: %T", input)
	}
	if err := req.Validate(); err != nil {
		return tool.Failure(tool.CodeInvalidArguments, "%v", err), nil
	}

	items := slices.Clone(req.Todos)
	if items == nil {
		items = []Item{}
	}
	if err := t.store.SetTodos(items); err != nil {
		return tool.Failure(tool.CodeExecutionFailed, "%v", err), nil
	}

	var pending, active, done int
	for _, item := range items {
		switch item.Status {
		case StatusPending:
			pending++
		case StatusInProgress:
			active++
		case StatusDone:
			done++
		}
	}
	summary := fmt.Sprintf("%d todos: %d pending, %d in progress, %d done", len(items), pending, active, done)
	return tool.Success(summary+"\n"+Render(items), tool.StringDisplay(summary)), nil
}
