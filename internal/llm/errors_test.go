package llm

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Cyclone1070/codeagent/internal/tool"
	"github.com/stretchr/testify/assert"
)

func TestFromStatus(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		status    int
		code      ErrorCode
		retryable bool
	}{
		{401, ErrorCodeAuth, false},
		{403, ErrorCodeAuth, false},
		{408, ErrorCodeNetwork, true},
		{429, ErrorCodeRateLimit, true},
		{400, ErrorCodeInvalidRequest, false},
		{404, ErrorCodeInvalidRequest, false},
		{500, ErrorCodeUnavailable, true},
		{503, ErrorCodeUnavailable, true},
		{0, ErrorCodeNetwork, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := FromStatus(tt.status, "msg", nil, cause)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.retryable, IsRetryable(err))
			assert.ErrorIs(t, err, cause)
		})
	}
}

func TestRetryAfter(t *testing.T) {
	err := FromStatus(http.StatusTooManyRequests, "", http.Header{"Retry-After": {"3"}}, nil)
	wrapped := fmt.Errorf("attempt 1: %w", err)

	got := GetRetryAfter(wrapped)
	if assert.NotNil(t, got) {
		assert.Equal(t, 3*time.Second, *got)
	}

	assert.Nil(t, ParseRetryAfter(http.Header{"Retry-After": {"Wed, 21 Oct 2015 07:28:00 GMT"}}))
	assert.Nil(t, ParseRetryAfter(nil))
	assert.Nil(t, GetRetryAfter(errors.New("plain")))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestProviderError_Message(t *testing.T) {
	assert.Equal(t, "rate_limit: slow", (&ProviderError{Code: ErrorCodeRateLimit, Message: "slow"}).Error())
	assert.Equal(t, "network_error: down (eof)", (&ProviderError{Code: ErrorCodeNetwork, Message: "down", Underlying: errors.New("eof")}).Error())
}

func TestSchemaMap(t *testing.T) {
	assert.Equal(t, map[string]any{"type": "object", "properties": map[string]any{}}, SchemaMap(nil))

	got := SchemaMap(&tool.Schema{
		Type:       tool.TypeObject,
		Properties: map[string]*tool.Schema{"n": {Type: tool.TypeInteger, Minimum: tool.Min(1)}},
		Required:   []string{"n"},
	})
	assert.Equal(t, map[string]any{
		"type":       "object",
		"properties": map[string]any{"n": map[string]any{"type": "integer", "minimum": float64(1)}},
		"required":   []any{"n"},
	}, got)
}

func TestMessageBuilders(t *testing.T) {
	call := ToolCall{ID: "c1", Name: "glob", Arguments: "{}"}

	assert.Equal(t, Message{Role: RoleTool, Content: "x", ToolCallID: "c1", ToolName: "glob"}, ToolMessage(call, "x"))
	assert.Equal(t, Message{Role: RoleAssistant, ToolCalls: []ToolCall{call}}, AssistantMessage("", []ToolCall{call}))
	assert.Equal(t, "{}", ArgumentsOrEmpty(""))
	assert.Equal(t, `{"a":1}`, ArgumentsOrEmpty(`{"a":1}`))
}
