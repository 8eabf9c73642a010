// Package llm provides model configuration and client abstractions for the
// generative model providers the assistant can talk to.
package llm

import (
	"github.com/cockroachdb/errors"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: short summaries, outreach drafts
	TierLite ModelTier = "lite"
	// TierStandard is for structured extraction and evaluation
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long or ambiguous inputs
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Gemini API through the generative-ai-go SDK
	ProviderGemini Provider = "gemini"
	// ProviderVertex is Gemini on Vertex AI, authenticated with application default credentials
	ProviderVertex Provider = "vertex"
	// ProviderGenAI is the Gemini API through the unified google.golang.org/genai SDK
	ProviderGenAI Provider = "genai"
)

// DefaultTemperature keeps structured output stable across calls.
const DefaultTemperature float32 = 0.1

// Config holds the model configuration for a client.
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	APIKey      string
	Project     string
	Location    string
	Temperature float32
}

// DefaultConfig returns the default configuration (Gemini API)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Location:    "us-central1",
		Temperature: DefaultTemperature,
	}
}

// ParseProvider maps a provider name to a Provider.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(s); p {
	case ProviderGemini, ProviderVertex, ProviderGenAI:
		return p, nil
	case "":
		return ProviderGemini, nil
	default:
		return "", errors.Newf("unknown llm provider %q", s)
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok && model != "" {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok && model != "" {
		return model
	}
	if model, ok := c.Models[TierLite]; ok && model != "" {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return &newConfig
}

func (c *Config) temperature() float32 {
	if c.Temperature <= 0 {
		return DefaultTemperature
	}
	return c.Temperature
}
