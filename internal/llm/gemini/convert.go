package gemini

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Cyclone1070/codeagent/internal/llm"
	"github.com/Cyclone1070/codeagent/internal/tool"
	"google.golang.org/genai"
)

// toGeminiContents converts the conversation to Gemini Content format.
// Consecutive tool messages are folded into one user turn of function responses.
func toGeminiContents(messages []llm.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))

	for _, msg := range messages {
		if msg.Role == llm.RoleTool {
			part := &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					ID:   msg.ToolCallID,
					Name: msg.ToolName,
					Response: map[string]any{
						"content": msg.Content,
					},
				},
			}
			if n := len(contents); n > 0 && isFunctionResponseTurn(contents[n-1]) {
				contents[n-1].Parts = append(contents[n-1].Parts, part)
				continue
			}
			contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: []*genai.Part{part}})
			continue
		}

		content := messageToGeminiContent(msg)
		if content != nil {
			contents = append(contents, content)
		}
	}

	return contents
}

func isFunctionResponseTurn(c *genai.Content) bool {
	return c.Role == genai.RoleUser && len(c.Parts) > 0 && c.Parts[0].FunctionResponse != nil
}

// messageToGeminiContent converts a user or assistant message to Gemini Content format.
func messageToGeminiContent(msg llm.Message) *genai.Content {
	role := genai.RoleUser
	if msg.Role == llm.RoleAssistant {
		role = genai.RoleModel
	}

	parts := make([]*genai.Part, 0, 1+len(msg.ToolCalls))

	if msg.Content != "" {
		parts = append(parts, genai.NewPartFromText(msg.Content))
	}

	for _, call := range msg.ToolCalls {
		parts = append(parts, &genai.Part{
			FunctionCall: &genai.FunctionCall{
				ID:   call.ID,
				Name: call.Name,
				Args: decodeArgs(call.Arguments),
			},
		})
	}

	// Skip empty messages
	if len(parts) == 0 {
		return nil
	}

	return &genai.Content{
		Role:  role,
		Parts: parts,
	}
}

// decodeArgs turns the stored JSON arguments back into a map. Invalid JSON was
// already reported to the model as a tool failure, so it is sent as empty args.
func decodeArgs(raw string) map[string]any {
	args := map[string]any{}
	if raw == "" {
		return args
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return map[string]any{}
	}
	return args
}

// toGeminiConfig converts generation options to Gemini config.
func toGeminiConfig(opts llm.Options) *genai.GenerateContentConfig {
	geminiConfig := &genai.GenerateContentConfig{
		SafetySettings: defaultSafetySettings(),
	}

	if opts.System != "" {
		geminiConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(opts.System)},
		}
	}
	if opts.Temperature > 0 {
		temp := float32(opts.Temperature)
		geminiConfig.Temperature = &temp
	}
	if opts.MaxTokens > 0 {
		geminiConfig.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.EnableThinking {
		geminiConfig.ThinkingConfig = &genai.ThinkingConfig{IncludeThoughts: true}
	}

	return geminiConfig
}

// defaultSafetySettings returns safety settings with BLOCK_NONE for all categories.
func defaultSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{
			Category:  genai.HarmCategoryHateSpeech,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategoryDangerousContent,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategoryHarassment,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategorySexuallyExplicit,
			Threshold: genai.HarmBlockThresholdOff,
		},
	}
}

// toGeminiTools converts tool declarations to Gemini tools.
func toGeminiTools(tools []tool.Declaration) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}

	functionDeclarations := make([]*genai.FunctionDeclaration, 0, len(tools))

	for _, t := range tools {
		fd := &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
		}

		if t.Parameters != nil {
			fd.Parameters = toGeminiSchema(t.Parameters)
		}

		functionDeclarations = append(functionDeclarations, fd)
	}

	return []*genai.Tool{
		{FunctionDeclarations: functionDeclarations},
	}
}

// toGeminiSchema converts a tool Schema to Gemini Schema, recursing into
// properties and array items.
func toGeminiSchema(s *tool.Schema) *genai.Schema {
	schema := &genai.Schema{
		Type:        toGeminiType(s.Type),
		Description: s.Description,
		Minimum:     s.Minimum,
	}

	if len(s.Enum) > 0 {
		schema.Enum = s.Enum
	}
	if len(s.Properties) > 0 {
		schema.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			schema.Properties[name] = toGeminiSchema(prop)
		}
	}
	if s.Items != nil {
		schema.Items = toGeminiSchema(s.Items)
	}
	if len(s.Required) > 0 {
		schema.Required = s.Required
	}

	return schema
}

// toGeminiType converts a schema type to Gemini Type.
func toGeminiType(t tool.Type) genai.Type {
	switch t {
	case tool.TypeString:
		return genai.TypeString
	case tool.TypeNumber:
		return genai.TypeNumber
	case tool.TypeInteger:
		return genai.TypeInteger
	case tool.TypeBoolean:
		return genai.TypeBoolean
	case tool.TypeArray:
		return genai.TypeArray
	case tool.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// fromGeminiResponse converts the first candidate to an llm.Response.
func fromGeminiResponse(resp *genai.GenerateContentResponse) (llm.Response, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, &llm.ProviderError{
			Code:       llm.ErrorCodeEmptyResponse,
			Message:    "no candidates in response",
			Underlying: llm.ErrEmptyResponse,
			Retryable:  true,
		}
	}

	candidate := resp.Candidates[0]

	// Check finish reason
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, &llm.ProviderError{
			Code:       llm.ErrorCodeContentBlocked,
			Message:    "content blocked by safety filters",
			Underlying: llm.ErrContentBlocked,
		}
	}

	var text, thinking string
	var calls []llm.ToolCall
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			switch {
			case part.FunctionCall != nil:
				args, err := json.Marshal(part.FunctionCall.Args)
				if err != nil {
					return nil, &llm.ProviderError{
						Code:       llm.ErrorCodeInvalidRequest,
						Message:    fmt.Sprintf("encode arguments of %s", part.FunctionCall.Name),
						Underlying: err,
					}
				}
				if part.FunctionCall.Args == nil {
					args = []byte("{}")
				}
				calls = append(calls, llm.ToolCall{
					ID:        part.FunctionCall.ID,
					Name:      part.FunctionCall.Name,
					Arguments: string(args),
				})
			case part.Thought:
				thinking += part.Text
			case part.Text != "":
				text += part.Text
			}
		}
	}

	if len(calls) > 0 {
		return llm.ToolCallsResponse{Text: text, Thinking: thinking, Calls: calls}, nil
	}

	if candidate.FinishReason == genai.FinishReasonMaxTokens && text == "" {
		return nil, &llm.ProviderError{
			Code:    llm.ErrorCodeContextLength,
			Message: "response truncated due to max tokens",
		}
	}

	return llm.TextResponse{Text: text, Thinking: thinking}, nil
}

// mapGeminiError maps Gemini API errors to provider errors.
func mapGeminiError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return llm.FromStatus(apiErr.Code, apiErr.Message, nil, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return llm.FromStatus(apiErrPtr.Code, apiErrPtr.Message, nil, err)
	}

	// Generic network error
	return &llm.ProviderError{
		Code:       llm.ErrorCodeNetwork,
		Message:    "network error",
		Underlying: err,
		Retryable:  true,
	}
}
