// Package anthropic implements llm.Client for the Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Cyclone1070/codeagent/internal/config"
	"github.com/Cyclone1070/codeagent/internal/llm"
	"github.com/Cyclone1070/codeagent/internal/tool"
	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultMaxTokens = 4096

// messenger is the slice of the SDK the adapter calls.
type messenger interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// Client implements llm.Client for Claude models.
type Client struct {
	messages messenger
}

// New builds a client from the engine config. The SDK's own retries are disabled.
func New(cfg config.EngineConfig, extra ...option.RequestOption) *Client {
	opts := []option.RequestOption{
		option.WithMaxRetries(0),
		option.WithRequestTimeout(time.Duration(cfg.RequestTimeout) * time.Second),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.APIBase != "" {
		opts = append(opts, option.WithBaseURL(cfg.APIBase))
	}
	opts = append(opts, extra...)

	client := sdk.NewClient(opts...)
	return NewWithMessenger(&client.Messages)
}

// NewWithMessenger wraps an existing messages service.
func NewWithMessenger(messages messenger) *Client {
	if messages == nil {
		panic("messages is required")
	}
	return &Client{messages: messages}
}

// Complete sends one Messages API request.
// Extended thinking is not requested: it needs signed thinking blocks replayed
// on every tool round trip, which the stored history does not keep.
func (c *Client) Complete(ctx context.Context, messages []llm.Message, tools []tool.Declaration, opts llm.Options) (llm.Response, error) {
	maxTokens := int64(opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	params := sdk.MessageNewParams{
		Model:     sdk.Model(opts.Model),
		MaxTokens: maxTokens,
		Messages:  toMessages(messages),
	}
	if opts.System != "" {
		params.System = []sdk.TextBlockParam{{Text: opts.System}}
	}
	if opts.Temperature > 0 {
		params.Temperature = sdk.Float(opts.Temperature)
	}
	if len(tools) > 0 {
		params.Tools = toTools(tools)
	}

	resp, err := c.messages.New(ctx, params)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, mapError(err)
	}
	return fromMessage(resp)
}

// toMessages converts the history. Tool results must be sent as user turns, so
// consecutive tool messages are folded into a single user message.
func toMessages(messages []llm.Message) []sdk.MessageParam {
	out := make([]sdk.MessageParam, 0, len(messages))
	lastIsToolResults := false

	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleUser:
			out = append(out, sdk.NewUserMessage(sdk.NewTextBlock(msg.Content)))
			lastIsToolResults = false
		case llm.RoleAssistant:
			var blocks []sdk.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, sdk.NewTextBlock(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				input := []byte(llm.ArgumentsOrEmpty(call.Arguments))
				if !json.Valid(input) {
					input = []byte("{}")
				}
				blocks = append(blocks, sdk.NewToolUseBlock(call.ID, json.RawMessage(input), call.Name))
			}
			if len(blocks) == 0 {
				continue
			}
			out = append(out, sdk.NewAssistantMessage(blocks...))
			lastIsToolResults = false
		case llm.RoleTool:
			block := sdk.NewToolResultBlock(msg.ToolCallID, msg.Content, false)
			if lastIsToolResults {
				last := &out[len(out)-1]
				last.Content = append(last.Content, block)
				continue
			}
			out = append(out, sdk.NewUserMessage(block))
			lastIsToolResults = true
		}
	}
	return out
}

func toTools(tools []tool.Declaration) []sdk.ToolUnionParam {
	out := make([]sdk.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		schema := llm.SchemaMap(t.Parameters)
		input := sdk.ToolInputSchemaParam{Properties: schema["properties"]}
		if t.Parameters != nil {
			input.Required = t.Parameters.Required
		}
		out = append(out, sdk.ToolUnionParam{
			OfTool: &sdk.ToolParam{
				Name:        t.Name,
				Description: sdk.String(t.Description),
				InputSchema: input,
			},
		})
	}
	return out
}

func fromMessage(resp *sdk.Message) (llm.Response, error) {
	if resp == nil || len(resp.Content) == 0 {
		return nil, &llm.ProviderError{
			Code:       llm.ErrorCodeEmptyResponse,
			Message:    "no content in response",
			Underlying: llm.ErrEmptyResponse,
			Retryable:  true,
		}
	}

	var text, thinking string
	var calls []llm.ToolCall
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text += block.Text
		case "thinking":
			thinking += block.Thinking
		case "tool_use":
			args := string(block.Input)
			if args == "" || args == "null" {
				args = "{}"
			}
			calls = append(calls, llm.ToolCall{ID: block.ID, Name: block.Name, Arguments: args})
		}
	}

	if len(calls) > 0 {
		return llm.ToolCallsResponse{Text: text, Thinking: thinking, Calls: calls}, nil
	}
	if resp.StopReason == sdk.StopReasonMaxTokens && text == "" {
		return nil, &llm.ProviderError{
			Code:    llm.ErrorCodeContextLength,
			Message: "response truncated due to max tokens",
		}
	}
	return llm.TextResponse{Text: text, Thinking: thinking}, nil
}

func mapError(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		var header http.Header
		if apiErr.Response != nil {
			header = apiErr.Response.Header
		}
		return llm.FromStatus(apiErr.StatusCode, apiErr.Error(), header, err)
	}
	return &llm.ProviderError{
		Code:       llm.ErrorCodeNetwork,
		Message:    "network error",
		Underlying: err,
		Retryable:  true,
	}
}
