package gemini

import (
	"context"

	"google.golang.org/genai"
)

// contentGenerator is the single genai call the adapter makes.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// modelsClient routes calls to the SDK's Models service.
type modelsClient struct {
	models *genai.Models
}

func newModelsClient(sdk *genai.Client) *modelsClient {
	return &modelsClient{models: sdk.Models}
}

func (c *modelsClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return c.models.GenerateContent(ctx, model, contents, config)
}
