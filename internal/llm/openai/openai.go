// Package openai implements llm.Client for OpenAI-compatible chat completion APIs.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Cyclone1070/codeagent/internal/config"
	"github.com/Cyclone1070/codeagent/internal/llm"
	"github.com/Cyclone1070/codeagent/internal/tool"
	oai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Base URLs of the OpenAI-compatible producers.
const (
	QwenBaseURL     = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	BigModelBaseURL = "https://open.bigmodel.cn/api/paas/v4"
)

// completer is the slice of the SDK the adapter calls.
type completer interface {
	New(ctx context.Context, body oai.ChatCompletionNewParams, opts ...option.RequestOption) (*oai.ChatCompletion, error)
}

// Client talks to one OpenAI-compatible producer.
type Client struct {
	completions completer
	producer    string
}

// New builds a client for producer from the engine config.
// Retries are left to the agent loop, so the SDK's own retries are disabled.
func New(cfg config.EngineConfig, extra ...option.RequestOption) (*Client, error) {
	opts := []option.RequestOption{
		option.WithMaxRetries(0),
		option.WithRequestTimeout(time.Duration(cfg.RequestTimeout) * time.Second),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}

	producer := strings.ToLower(cfg.Producer)
	base := cfg.APIBase
	switch producer {
	case "openai":
	case "qwen":
		if base == "" {
			base = QwenBaseURL
		}
	case "bigmodel":
		if base == "" {
			base = BigModelBaseURL
		}
	case "local":
		if base == "" {
			return nil, errors.New("engine.api_base is required for the local producer")
		}
		if cfg.APIKey == "" {
			opts = append(opts, option.WithAPIKey("local"))
		}
	default:
		return nil, fmt.Errorf("producer %q is not OpenAI-compatible", cfg.Producer)
	}
	if base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	opts = append(opts, extra...)

	client := oai.NewClient(opts...)
	return NewWithCompleter(&client.Chat.Completions, producer), nil
}

// NewWithCompleter wraps an existing completions service.
func NewWithCompleter(completions completer, producer string) *Client {
	if completions == nil {
		panic("completions is required")
	}
	return &Client{completions: completions, producer: producer}
}

// Complete sends one chat completion request.
func (c *Client) Complete(ctx context.Context, messages []llm.Message, tools []tool.Declaration, opts llm.Options) (llm.Response, error) {
	params := oai.ChatCompletionNewParams{
		Model:    oai.ChatModel(opts.Model),
		Messages: toMessages(opts.System, messages),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = oai.Int(int64(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		params.Temperature = oai.Float(opts.Temperature)
	}
	if len(tools) > 0 {
		params.Tools = toTools(tools)
	}

	resp, err := c.completions.New(ctx, params, c.thinkingOptions(opts.EnableThinking)...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, mapError(err)
	}
	return fromCompletion(resp)
}

// thinkingOptions sets the producer specific request field that turns reasoning on.
func (c *Client) thinkingOptions(enabled bool) []option.RequestOption {
	if !enabled {
		return nil
	}
	switch c.producer {
	case "qwen":
		return []option.RequestOption{option.WithJSONSet("enable_thinking", true)}
	case "bigmodel":
		return []option.RequestOption{option.WithJSONSet("thinking", map[string]any{"type": "enabled"})}
	default:
		return nil
	}
}

func toMessages(system string, messages []llm.Message) []oai.ChatCompletionMessageParamUnion {
	out := make([]oai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if system != "" {
		out = append(out, oai.SystemMessage(system))
	}
	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleUser:
			out = append(out, oai.UserMessage(msg.Content))
		case llm.RoleAssistant:
			m := oai.AssistantMessage(msg.Content)
			for _, call := range msg.ToolCalls {
				m.OfAssistant.ToolCalls = append(m.OfAssistant.ToolCalls, oai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &oai.ChatCompletionMessageFunctionToolCallParam{
						ID: call.ID,
						Function: oai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      call.Name,
							Arguments: llm.ArgumentsOrEmpty(call.Arguments),
						},
					},
				})
			}
			out = append(out, m)
		case llm.RoleTool:
			out = append(out, oai.ToolMessage(msg.Content, msg.ToolCallID))
		}
	}
	return out
}

func toTools(tools []tool.Declaration) []oai.ChatCompletionToolUnionParam {
	out := make([]oai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, t := range tools {
		out = append(out, oai.ChatCompletionToolUnionParam{
			OfFunction: &oai.ChatCompletionFunctionToolParam{
				Function: oai.FunctionDefinitionParam{
					Name:        t.Name,
					Description: oai.String(t.Description),
					Parameters:  oai.FunctionParameters(llm.SchemaMap(t.Parameters)),
				},
			},
		})
	}
	return out
}

func fromCompletion(resp *oai.ChatCompletion) (llm.Response, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, &llm.ProviderError{
			Code:       llm.ErrorCodeEmptyResponse,
			Message:    "no choices in response",
			Underlying: llm.ErrEmptyResponse,
			Retryable:  true,
		}
	}

	choice := resp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return nil, &llm.ProviderError{
			Code:       llm.ErrorCodeContentBlocked,
			Message:    "content blocked by safety filters",
			Underlying: llm.ErrContentBlocked,
		}
	}

	msg := choice.Message
	text := msg.Content
	if text == "" && msg.Refusal != "" {
		text = msg.Refusal
	}
	thinking := reasoningContent(msg)

	if len(msg.ToolCalls) == 0 {
		return llm.TextResponse{Text: text, Thinking: thinking}, nil
	}

	calls := make([]llm.ToolCall, 0, len(msg.ToolCalls))
	for _, tc := range msg.ToolCalls {
		calls = append(calls, llm.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return llm.ToolCallsResponse{Text: text, Thinking: thinking, Calls: calls}, nil
}

// reasoningContent reads the non-standard reasoning field that qwen, bigmodel and
// several local servers return next to the content.
func reasoningContent(msg oai.ChatCompletionMessage) string {
	field, ok := msg.JSON.ExtraFields["reasoning_content"]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal([]byte(field.Raw()), &s); err != nil {
		return ""
	}
	return s
}

func mapError(err error) error {
	var apiErr *oai.Error
	if errors.As(err, &apiErr) {
		var header http.Header
		if apiErr.Response != nil {
			header = apiErr.Response.Header
		}
		return llm.FromStatus(apiErr.StatusCode, apiErr.Message, header, err)
	}
	return &llm.ProviderError{
		Code:       llm.ErrorCodeNetwork,
		Message:    "network error",
		Underlying: err,
		Retryable:  true,
	}
}
