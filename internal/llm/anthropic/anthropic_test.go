package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Cyclone1070/codeagent/internal/config"
	"github.com/Cyclone1070/codeagent/internal/llm"
	"github.com/Cyclone1070/codeagent/internal/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, status int, reply string, body *map[string]any) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		if body != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(body))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig().Engine
	cfg.Producer = "anthropic"
	cfg.APIKey = "test-key"
	cfg.APIBase = srv.URL
	return New(cfg)
}

func TestComplete_TextResponse(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, http.StatusOK, `{"id":"m1","type":"message","role":"assistant","model":"claude-test",
		"content":[{"type":"text","text":"Hi there"}],"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":2}}`, &body)

	resp, err := c.Complete(context.Background(), []llm.Message{llm.UserMessage("hello")}, nil, llm.Options{
		Model:  "claude-test",
		System: "be brief",
	})

	require.NoError(t, err)
	assert.Equal(t, llm.TextResponse{Text: "Hi there"}, resp)
	assert.Equal(t, "claude-test", body["model"])
	assert.EqualValues(t, defaultMaxTokens, body["max_tokens"])
	system := body["system"].([]any)
	require.Len(t, system, 1)
	assert.Equal(t, "be brief", system[0].(map[string]any)["text"])
}

func TestComplete_ToolUse(t *testing.T) {
	c := newTestClient(t, http.StatusOK, `{"id":"m2","type":"message","role":"assistant","model":"claude-test",
		"content":[
			{"type":"text","text":"Let me look."},
			{"type":"tool_use","id":"toolu_1","name":"glob","input":{"pattern":"*"}}],
		"stop_reason":"tool_use","usage":{"input_tokens":3,"output_tokens":2}}`, nil)

	resp, err := c.Complete(context.Background(), []llm.Message{llm.UserMessage("list")}, nil, llm.Options{Model: "claude-test"})

	require.NoError(t, err)
	calls, ok := resp.(llm.ToolCallsResponse)
	require.True(t, ok, "got %T", resp)
	assert.Equal(t, "Let me look.", calls.Text)
	require.Len(t, calls.Calls, 1)
	assert.Equal(t, "toolu_1", calls.Calls[0].ID)
	assert.Equal(t, "glob", calls.Calls[0].Name)
	assert.JSONEq(t, `{"pattern":"*"}`, calls.Calls[0].Arguments)
}

func TestComplete_FoldsToolResults(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, http.StatusOK, `{"id":"m3","type":"message","role":"assistant","model":"claude-test",
		"content":[{"type":"text","text":"done"}],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`, &body)

	a := llm.ToolCall{ID: "toolu_a", Name: "read", Arguments: `{"filePath":"a.go"}`}
	b := llm.ToolCall{ID: "toolu_b", Name: "read", Arguments: ""}
	history := []llm.Message{
		llm.UserMessage("read both"),
		llm.AssistantMessage("", []llm.ToolCall{a, b}),
		llm.ToolMessage(a, "package a"),
		llm.ToolMessage(b, "Error [not_found]: b.go"),
	}
	decls := []tool.Declaration{{
		Name:        "read",
		Description: "Read a file",
		Parameters: &tool.Schema{
			Type:       tool.TypeObject,
			Properties: map[string]*tool.Schema{"filePath": {Type: tool.TypeString}},
			Required:   []string{"filePath"},
		},
	}}

	_, err := c.Complete(context.Background(), history, decls, llm.Options{Model: "claude-test"})
	require.NoError(t, err)

	msgs := body["messages"].([]any)
	require.Len(t, msgs, 3)
	assistant := msgs[1].(map[string]any)
	assert.Equal(t, "assistant", assistant["role"])
	uses := assistant["content"].([]any)
	require.Len(t, uses, 2)
	assert.Equal(t, map[string]any{}, uses[1].(map[string]any)["input"])

	results := msgs[2].(map[string]any)
	assert.Equal(t, "user", results["role"])
	blocks := results["content"].([]any)
	require.Len(t, blocks, 2)
	assert.Equal(t, "toolu_a", blocks[0].(map[string]any)["tool_use_id"])
	assert.Equal(t, "toolu_b", blocks[1].(map[string]any)["tool_use_id"])

	tools := body["tools"].([]any)
	require.Len(t, tools, 1)
	schema := tools[0].(map[string]any)["input_schema"].(map[string]any)
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []any{"filePath"}, schema["required"])
}

func TestComplete_ErrorMapping(t *testing.T) {
	tests := []struct {
		status    int
		wantCode  llm.ErrorCode
		retryable bool
	}{
		{http.StatusTooManyRequests, llm.ErrorCodeRateLimit, true},
		{http.StatusUnauthorized, llm.ErrorCodeAuth, false},
		{http.StatusBadRequest, llm.ErrorCodeInvalidRequest, false},
		{529, llm.ErrorCodeUnavailable, true},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, tt.status, `{"type":"error","error":{"type":"x","message":"nope"}}`, nil)

			_, err := c.Complete(context.Background(), []llm.Message{llm.UserMessage("hi")}, nil, llm.Options{Model: "claude-test"})

			var perr *llm.ProviderError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.wantCode, perr.Code)
			assert.Equal(t, tt.retryable, llm.IsRetryable(err))
		})
	}
}

func TestComplete_EmptyContent(t *testing.T) {
	c := newTestClient(t, http.StatusOK, `{"id":"m4","type":"message","role":"assistant","model":"claude-test",
		"content":[],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":0}}`, nil)

	_, err := c.Complete(context.Background(), []llm.Message{llm.UserMessage("hi")}, nil, llm.Options{Model: "claude-test"})

	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}
