package llm

import (
	"context"
	"strings"
)

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent generates text content using the specified model tier
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSON generates JSON content using the specified model tier
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GetModel returns the provider model name for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration. Missing
// credentials or a failed construction yield an *UnavailableError.
func NewClient(ctx context.Context, config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	var (
		client Client
		err    error
	)
	switch config.Provider {
	case ProviderVertex:
		client, err = NewVertexClient(ctx, config)
	case ProviderGenAI:
		client, err = NewGenAIClient(ctx, config)
	default:
		client, err = NewGeminiClient(ctx, config)
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}

func modelFor(c *Config, provider Provider, tier ModelTier) (string, error) {
	name := c.GetModel(tier)
	if name == "" {
		return "", &UnavailableError{Provider: provider, Message: "no model configured for tier " + string(tier)}
	}
	return name, nil
}

func joinParts(parts []string) (string, error) {
	text := strings.Join(parts, "")
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
