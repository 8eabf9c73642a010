package llm

import (
	"context"

	vertexgenai "cloud.google.com/go/vertexai/genai"
)

// VertexClient implements Client for Gemini models hosted on Vertex AI.
type VertexClient struct {
	client *vertexgenai.Client
	config *Config
}

// NewVertexClient creates a Vertex AI client using application default credentials.
func NewVertexClient(ctx context.Context, config *Config) (*VertexClient, error) {
	if config.Project == "" || config.Location == "" {
		return nil, &UnavailableError{Provider: ProviderVertex, Message: "project and location are required"}
	}

	client, err := vertexgenai.NewClient(ctx, config.Project, config.Location)
	if err != nil {
		return nil, &UnavailableError{Provider: ProviderVertex, Message: "create client", Cause: err}
	}

	return &VertexClient{client: client, config: config}, nil
}

// GenerateContent generates text content using the specified model tier
func (c *VertexClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.generate(ctx, prompt, tier, false)
}

// GenerateJSON asks the model for a JSON response.
func (c *VertexClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.generate(ctx, prompt, tier, true)
}

func (c *VertexClient) generate(ctx context.Context, prompt string, tier ModelTier, jsonMode bool) (string, error) {
	modelName, err := modelFor(c.config, ProviderVertex, tier)
	if err != nil {
		return "", err
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(c.config.temperature())
	if jsonMode {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, vertexgenai.Text(prompt))
	if err != nil {
		return "", classifyCallError(ProviderVertex, modelName, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var parts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(vertexgenai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	return joinParts(parts)
}

// GetModel returns the model name for a tier
func (c *VertexClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *VertexClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
