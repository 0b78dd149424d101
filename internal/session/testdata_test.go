package session

import (
	"time"

	"github.com/Cyclone1070/codeagent/internal/llm"
	"github.com/Cyclone1070/codeagent/internal/tool/todo"
)

// populate fills s with a representative turn.
func populate(s *Session) {
	glob := llm.ToolCall{ID: "call_1", Name: "glob", Arguments: `{"pattern":"*"}`}
	read := llm.ToolCall{ID: "call_2", Name: "read", Arguments: `{"filePath":"main.go"}`}
	s.Append(
		llm.UserMessage("list files in the current directory"),
		llm.AssistantMessage("", []llm.ToolCall{glob, read}),
		llm.ToolMessage(glob, "go.mod\nmain.go"),
		llm.ToolMessage(read, "Error [not_found]: main.go does not exist"),
		llm.AssistantMessage("There are two files: go.mod and main.go.", nil),
	)
	s.Todos = []todo.Item{
		{ID: "1", Content: "list files", Status: todo.StatusDone, Priority: todo.PriorityHigh},
		{ID: "2", Content: "summarise", Status: todo.StatusInProgress},
	}
	s.AddStep(Step{
		Question:  "list files in the current directory",
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC),
		Calls: []StepCall{
			{Name: "glob", Arguments: `{"pattern":"*"}`, Status: "success", Result: "go.mod"},
			{Name: "read", Arguments: `{"filePath":"main.go"}`, Status: "failure", Result: "main.go does not exist"},
		},
		Completed:    true,
		FinalMessage: "There are two files: go.mod and main.go.",
	})
}
