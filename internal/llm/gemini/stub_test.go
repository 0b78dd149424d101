package gemini

import (
	"context"

	"google.golang.org/genai"
)

// stubGenerator delegates to generate.
type stubGenerator struct {
	generate func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func (s *stubGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return s.generate(ctx, model, contents, config)
}
