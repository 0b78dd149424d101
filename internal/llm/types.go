// Package llm defines the contract between the agent loop and the model providers.
package llm

import (
	"context"

	"github.com/Cyclone1070/codeagent/internal/tool"
)

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a tool invocation requested by the model.
// Arguments is the raw JSON object the model produced.
type ToolCall struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Arguments string `json:"arguments" yaml:"arguments"`
}

// Message is one entry of a conversation.
// ToolCalls is set on assistant messages, ToolCallID and ToolName on tool messages.
type Message struct {
	Role       Role       `json:"role" yaml:"role"`
	Content    string     `json:"content" yaml:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty" yaml:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty" yaml:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty" yaml:"tool_name,omitempty"`
}

// UserMessage builds a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant message, optionally carrying tool calls.
func AssistantMessage(content string, calls []ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: calls}
}

// ToolMessage builds the reply to a single tool call.
func ToolMessage(call ToolCall, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: call.ID, ToolName: call.Name}
}

// Response is what a completion produced: a TextResponse or a ToolCallsResponse.
type Response interface {
	isResponse()
}

// TextResponse is a final answer with no tool calls.
type TextResponse struct {
	Text     string
	Thinking string
}

func (TextResponse) isResponse() {}

// ToolCallsResponse asks for one or more tool calls, with optional accompanying text.
type ToolCallsResponse struct {
	Text     string
	Thinking string
	Calls    []ToolCall
}

func (ToolCallsResponse) isResponse() {}

// Options are the generation settings for one completion.
type Options struct {
	Model          string
	System         string
	EnableThinking bool
	MaxTokens      int
	Temperature    float64
}

// Client is a model provider.
type Client interface {
	Complete(ctx context.Context, messages []Message, tools []tool.Declaration, opts Options) (Response, error)
}
