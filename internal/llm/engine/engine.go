// Package engine builds the llm.Client selected by the engine config.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/Cyclone1070/codeagent/internal/config"
	"github.com/Cyclone1070/codeagent/internal/llm"
	"github.com/Cyclone1070/codeagent/internal/llm/anthropic"
	"github.com/Cyclone1070/codeagent/internal/llm/gemini"
	"github.com/Cyclone1070/codeagent/internal/llm/openai"
)

// New returns the client for cfg.Producer.
func New(ctx context.Context, cfg config.EngineConfig) (llm.Client, error) {
	switch strings.ToLower(cfg.Producer) {
	case "openai", "qwen", "bigmodel", "local":
		return openai.New(cfg)
	case "gemini":
		return gemini.New(ctx, cfg)
	case "anthropic":
		return anthropic.New(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported producer %q", cfg.Producer)
	}
}

// Options derives the per-request generation options from the engine config.
func Options(cfg config.EngineConfig) llm.Options {
	return llm.Options{
		Model:          cfg.Model,
		EnableThinking: cfg.EnableThinking,
		MaxTokens:      cfg.MaxTokens,
		Temperature:    cfg.Temperature,
	}
}
