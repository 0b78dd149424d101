// Package gemini implements llm.Client for Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/Cyclone1070/codeagent/internal/config"
	"github.com/Cyclone1070/codeagent/internal/llm"
	"github.com/Cyclone1070/codeagent/internal/tool"
	"google.golang.org/genai"
)

// Client implements llm.Client on top of a contentGenerator.
type Client struct {
	client contentGenerator
}

// New creates an SDK client for the Gemini API from the engine config.
func New(ctx context.Context, cfg config.EngineConfig) (*Client, error) {
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	cc := &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.APIBase, Timeout: &timeout},
	}
	sdk, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return newWithClient(newModelsClient(sdk)), nil
}

// newWithClient wraps an existing generator; tests inject stubs through it.
func newWithClient(client contentGenerator) *Client {
	if client == nil {
		panic("client is required")
	}
	return &Client{client: client}
}

// Complete sends the conversation to Gemini and converts the first candidate.
func (c *Client) Complete(ctx context.Context, messages []llm.Message, tools []tool.Declaration, opts llm.Options) (llm.Response, error) {
	contents := toGeminiContents(messages)
	cfg := toGeminiConfig(opts)
	if len(tools) > 0 {
		cfg.Tools = toGeminiTools(tools)
	}

	resp, err := c.client.GenerateContent(ctx, opts.Model, contents, cfg)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, mapGeminiError(err)
	}

	return fromGeminiResponse(resp)
}
