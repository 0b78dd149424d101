package gemini

import (
	"testing"

	"github.com/Cyclone1070/codeagent/internal/llm"
	"github.com/Cyclone1070/codeagent/internal/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestToGeminiContents_Roles(t *testing.T) {
	glob := llm.ToolCall{ID: "c1", Name: "glob", Arguments: `{"pattern":"*"}`}
	read := llm.ToolCall{ID: "c2", Name: "read", Arguments: `{"filePath":"a.go"}`}
	messages := []llm.Message{
		llm.UserMessage("list files"),
		llm.AssistantMessage("", []llm.ToolCall{glob, read}),
		llm.ToolMessage(glob, "a.go"),
		llm.ToolMessage(read, "package a"),
		llm.AssistantMessage("Done.", nil),
	}

	contents := toGeminiContents(messages)

	require.Len(t, contents, 4)
	assert.Equal(t, genai.RoleUser, contents[0].Role)
	assert.Equal(t, "list files", contents[0].Parts[0].Text)

	assert.Equal(t, genai.RoleModel, contents[1].Role)
	require.Len(t, contents[1].Parts, 2)
	assert.Equal(t, "c1", contents[1].Parts[0].FunctionCall.ID)
	assert.Equal(t, map[string]any{"pattern": "*"}, contents[1].Parts[0].FunctionCall.Args)

	// both results travel in one user turn, in call order
	assert.Equal(t, genai.RoleUser, contents[2].Role)
	require.Len(t, contents[2].Parts, 2)
	assert.Equal(t, "glob", contents[2].Parts[0].FunctionResponse.Name)
	assert.Equal(t, "c1", contents[2].Parts[0].FunctionResponse.ID)
	assert.Equal(t, map[string]any{"content": "a.go"}, contents[2].Parts[0].FunctionResponse.Response)
	assert.Equal(t, "read", contents[2].Parts[1].FunctionResponse.Name)

	assert.Equal(t, genai.RoleModel, contents[3].Role)
}

func TestToGeminiContents_SkipsEmptyMessages(t *testing.T) {
	contents := toGeminiContents([]llm.Message{{Role: llm.RoleAssistant}})
	assert.Empty(t, contents)
}

func TestDecodeArgs(t *testing.T) {
	assert.Equal(t, map[string]any{}, decodeArgs(""))
	assert.Equal(t, map[string]any{}, decodeArgs("{not json"))
	assert.Equal(t, map[string]any{"n": float64(2)}, decodeArgs(`{"n":2}`))
}

func TestToGeminiSchema_Nested(t *testing.T) {
	s := &tool.Schema{
		Type: tool.TypeObject,
		Properties: map[string]*tool.Schema{
			"todos": {
				Type: tool.TypeArray,
				Items: &tool.Schema{
					Type: tool.TypeObject,
					Properties: map[string]*tool.Schema{
						"status": {Type: tool.TypeString, Enum: []string{"pending", "done"}},
					},
					Required: []string{"status"},
				},
			},
			"offset": {Type: tool.TypeInteger, Minimum: tool.Min(0)},
		},
		Required: []string{"todos"},
	}

	got := toGeminiSchema(s)

	assert.Equal(t, genai.TypeObject, got.Type)
	assert.Equal(t, []string{"todos"}, got.Required)
	items := got.Properties["todos"].Items
	require.NotNil(t, items)
	assert.Equal(t, genai.TypeObject, items.Type)
	assert.Equal(t, []string{"pending", "done"}, items.Properties["status"].Enum)
	require.NotNil(t, got.Properties["offset"].Minimum)
	assert.Equal(t, 0.0, *got.Properties["offset"].Minimum)
}

func TestToGeminiType(t *testing.T) {
	tests := []struct {
		in   tool.Type
		want genai.Type
	}{
		{tool.TypeString, genai.TypeString},
		{tool.TypeNumber, genai.TypeNumber},
		{tool.TypeInteger, genai.TypeInteger},
		{tool.TypeBoolean, genai.TypeBoolean},
		{tool.TypeArray, genai.TypeArray},
		{tool.TypeObject, genai.TypeObject},
		{"unknown", genai.TypeString},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, toGeminiType(tt.in), string(tt.in))
	}
}
