package backend

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"codewright/internal/logging"
	"codewright/internal/types"
)

// GeminiClient generates text through the official genai SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini-backed client.
func NewGeminiClient(apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, &types.BackendError{Provider: "gemini", Err: fmt.Errorf("API key is required")}
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, &types.BackendError{Provider: "gemini", Err: fmt.Errorf("failed to create client: %w", err)}
	}

	return &GeminiClient{client: client, model: model}, nil
}

// Generate sends the conversation and returns the completion text.
func (c *GeminiClient) Generate(ctx context.Context, turns []types.ChatTurn) (string, error) {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := genai.Role(genai.RoleUser)
		if t.Role == types.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Content, role))
	}

	logging.Backend("generate: model=%s turns=%d", c.model, len(turns))

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.2),
	})
	if err != nil {
		return "", &types.BackendError{Provider: "gemini", Err: err}
	}

	text := result.Text()
	if text == "" {
		return "", &types.BackendError{Provider: "gemini", Err: fmt.Errorf("no completion returned")}
	}
	return strings.TrimSpace(text), nil
}

// Model returns the current model.
func (c *GeminiClient) Model() string { return c.model }
