package llm

import (
	"context"

	"google.golang.org/genai"
)

// GenAIClient implements Client with the unified google.golang.org/genai SDK.
type GenAIClient struct {
	client *genai.Client
	config *Config
}

// NewGenAIClient creates a Gemini API client backed by the unified SDK.
func NewGenAIClient(ctx context.Context, config *Config) (*GenAIClient, error) {
	if config.APIKey == "" {
		return nil, &UnavailableError{Provider: ProviderGenAI, Message: "API key is required"}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &UnavailableError{Provider: ProviderGenAI, Message: "create client", Cause: err}
	}

	return &GenAIClient{client: client, config: config}, nil
}

// GenerateContent generates text content using the specified model tier
func (c *GenAIClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.generate(ctx, prompt, tier, "")
}

// GenerateJSON asks the model for a JSON response.
func (c *GenAIClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.generate(ctx, prompt, tier, "application/json")
}

func (c *GenAIClient) generate(ctx context.Context, prompt string, tier ModelTier, mimeType string) (string, error) {
	modelName, err := modelFor(c.config, ProviderGenAI, tier)
	if err != nil {
		return "", err
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(c.config.temperature()),
		ResponseMIMEType: mimeType,
	}

	resp, err := c.client.Models.GenerateContent(ctx, modelName, genai.Text(prompt), cfg)
	if err != nil {
		return "", classifyCallError(ProviderGenAI, modelName, err)
	}
	if resp == nil {
		return "", ErrEmptyResponse
	}
	return joinParts([]string{resp.Text()})
}

// GetModel returns the model name for a tier
func (c *GenAIClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the unified SDK client holds no closable resources.
func (c *GenAIClient) Close() error {
	return nil
}
