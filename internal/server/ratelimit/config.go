package ratelimit

import (
	"time"

	"github.com/jonathan/ats-assistant/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// FromConfig builds a limiter configuration from the service settings.
// Model-backed endpoints get the AI limit; everything else the default.
func FromConfig(c config.RateLimitConfig) *Config {
	if !c.Enabled {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    c.DefaultLimit,
		DefaultWindow:   c.DefaultWindow,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		EndpointConfigs: ModelEndpointConfigs(c.AILimit, c.AIWindow),
	}
}

// ModelEndpointConfigs returns limits for endpoints that call the model or
// decode uploads.
func ModelEndpointConfigs(limit int, window time.Duration) []EndpointConfig {
	burst := max(1, limit/5)
	return []EndpointConfig{
		{Path: "/ai/", Method: "POST", Limit: limit, Window: window, Burst: burst},
		{Path: "/documents/extract", Method: "POST", Limit: limit, Window: window, Burst: burst},
		{Path: "/applications/", Method: "POST", Limit: limit, Window: window, Burst: burst},
		{Path: "/me/profile", Method: "POST", Limit: limit, Window: window, Burst: burst},
	}
}
