package workflow

import (
	"context"
	"time"

	"github.com/Cyclone1070/codeagent/internal/tool"
)

// Event is the interface for all workflow events.
// UI handles events via type switch.
type Event interface {
	isEvent()
}

// ThinkingEvent is emitted when a request goes to the model.
type ThinkingEvent struct {
	Iteration int
}

func (ThinkingEvent) isEvent() {}

// ReasoningEvent carries the model's reasoning text when the engine returns it.
type ReasoningEvent struct {
	Text string
}

func (ReasoningEvent) isEvent() {}

// TextEvent is emitted when the LLM produces text output.
type TextEvent struct {
	Text string
}

func (TextEvent) isEvent() {}

// RetryEvent is emitted before a failed model request is retried.
type RetryEvent struct {
	Attempt int
	Delay   time.Duration
	Err     error
}

func (RetryEvent) isEvent() {}

// ToolStartEvent is emitted when a tool execution begins.
type ToolStartEvent struct {
	ToolName       string
	CallID         string
	RequestDisplay string // e.g., "Reading src/index.ts"
}

func (ToolStartEvent) isEvent() {}

// ToolEndEvent is emitted when a tool completes.
type ToolEndEvent struct {
	ToolName string
	CallID   string
	Failed   bool
	Display  tool.ToolDisplay
}

func (ToolEndEvent) isEvent() {}

// DoneEvent is emitted when a turn ends, whatever the outcome.
type DoneEvent struct{}

func (DoneEvent) isEvent() {}

// Emit sends ev unless events is nil or ctx ends first.
func Emit(ctx context.Context, events chan<- Event, ev Event) {
	if events == nil {
		return
	}
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}
