// Package config loads service configuration from defaults, an optional
// config file and ATS_-prefixed environment variables.
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/jonathan/ats-assistant/internal/llm"
)

// EnvPrefix prefixes every environment variable, e.g. ATS_LLM_PROVIDER.
const EnvPrefix = "ATS"

// Config is the full service configuration.
type Config struct {
	LLM       LLMConfig       `mapstructure:"llm"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// LLMConfig selects the model provider and the extraction retry budget.
type LLMConfig struct {
	Provider       string            `mapstructure:"provider"`
	APIKey         string            `mapstructure:"api_key"`
	Project        string            `mapstructure:"project"`
	Location       string            `mapstructure:"location"`
	Models         map[string]string `mapstructure:"models"` // tier -> model
	RequestTimeout time.Duration     `mapstructure:"request_timeout"`
	MaxAttempts    int               `mapstructure:"max_attempts"`
	RetryBackoff   time.Duration     `mapstructure:"retry_backoff"`
	Temperature    float32           `mapstructure:"temperature"`
}

// PipelineConfig tunes the recruiting tasks.
type PipelineConfig struct {
	RedactPII          bool   `mapstructure:"redact_pii"`
	ResumePrefixChars  int    `mapstructure:"resume_prefix_chars"`
	DefaultCompanyName string `mapstructure:"default_company_name"`
	UseBrowser         bool   `mapstructure:"use_browser"`
}

// DatabaseConfig points at Postgres.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// StorageConfig points at an S3-compatible bucket for résumé files.
type StorageConfig struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// Enabled reports whether a bucket is configured.
func (s StorageConfig) Enabled() bool {
	return s.Bucket != ""
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port                    int      `mapstructure:"port"`
	MaxConcurrentModelCalls int      `mapstructure:"max_concurrent_model_calls"`
	MaxUploadBytes          int64    `mapstructure:"max_upload_bytes"`
	AllowedOrigins          []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig bounds request rates per client.
type RateLimitConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	DefaultLimit  int           `mapstructure:"default_limit"`
	DefaultWindow time.Duration `mapstructure:"default_window"`
	AILimit       int           `mapstructure:"ai_limit"`
	AIWindow      time.Duration `mapstructure:"ai_window"`
}

// SetDefaults registers the default for every key. Keys without a default
// are not picked up from the environment.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", string(llm.ProviderGemini))
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.project", "")
	v.SetDefault("llm.location", "us-central1")
	v.SetDefault("llm.models", map[string]string{})
	v.SetDefault("llm.request_timeout", 45*time.Second)
	v.SetDefault("llm.max_attempts", 3)
	v.SetDefault("llm.retry_backoff", time.Duration(0))
	v.SetDefault("llm.temperature", 0.1)

	v.SetDefault("pipeline.redact_pii", false)
	v.SetDefault("pipeline.resume_prefix_chars", 5000)
	v.SetDefault("pipeline.default_company_name", "Our Company")
	v.SetDefault("pipeline.use_browser", false)

	v.SetDefault("database.url", "")

	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.region", "auto")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.prefix", "resumes")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_concurrent_model_calls", 4)
	v.SetDefault("server.max_upload_bytes", 10<<20)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.expiration_hours", 24)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.default_limit", 1000)
	v.SetDefault("rate_limit.default_window", time.Minute)
	v.SetDefault("rate_limit.ai_limit", 30)
	v.SetDefault("rate_limit.ai_window", time.Minute)
}

// bindWellKnownEnv lets the conventional variable names stand in for the
// prefixed ones. The prefixed name wins when both are set.
func bindWellKnownEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"llm.api_key":     {"ATS_LLM_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"},
		"llm.project":     {"ATS_LLM_PROJECT", "GOOGLE_CLOUD_PROJECT"},
		"database.url":    {"ATS_DATABASE_URL", "DATABASE_URL"},
		"auth.jwt_secret": {"ATS_AUTH_JWT_SECRET", "JWT_SECRET"},
	}
	for key, names := range bindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return errors.Wrapf(err, "bind %s", key)
		}
	}
	return nil
}

// New returns a viper instance with defaults and environment binding. When
// path is set the file is read; its format follows the extension.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := bindWellKnownEnv(v); err != nil {
		return nil, err
	}
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}
	return v, nil
}

// Load reads configuration and validates it.
func Load(path string) (*Config, error) {
	v, err := New(path)
	if err != nil {
		return nil, err
	}
	return LoadWithViper(v)
}

// LoadWithViper decodes and validates configuration from v.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration with only defaults applied.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks that the configuration has valid values. Required
// credentials are checked by the components that need them.
func (c *Config) Validate() error {
	if _, err := llm.ParseProvider(c.LLM.Provider); err != nil {
		return errors.Wrap(err, "config error: llm.provider")
	}
	if c.LLM.RequestTimeout <= 0 {
		return errors.Newf("config error: 'llm.request_timeout' must be positive, got %s", c.LLM.RequestTimeout)
	}
	if c.LLM.MaxAttempts < 1 {
		return errors.Newf("config error: 'llm.max_attempts' must be at least 1, got %d", c.LLM.MaxAttempts)
	}
	if c.LLM.RetryBackoff < 0 {
		return errors.New("config error: 'llm.retry_backoff' must be non-negative")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.Newf("config error: 'llm.temperature' must be within [0, 2], got %g", c.LLM.Temperature)
	}
	for tier := range c.LLM.Models {
		switch llm.ModelTier(tier) {
		case llm.TierLite, llm.TierStandard, llm.TierAdvanced:
		default:
			return errors.Newf("config error: unknown model tier %q", tier)
		}
	}

	if c.Pipeline.ResumePrefixChars < 1 {
		return errors.Newf("config error: 'pipeline.resume_prefix_chars' must be positive, got %d", c.Pipeline.ResumePrefixChars)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.Newf("config error: 'server.port' out of range: %d", c.Server.Port)
	}
	if c.Server.MaxConcurrentModelCalls < 1 {
		return errors.New("config error: 'server.max_concurrent_model_calls' must be at least 1")
	}
	if c.Server.MaxUploadBytes < 1 {
		return errors.New("config error: 'server.max_upload_bytes' must be positive")
	}

	if c.RateLimit.DefaultLimit < 0 || c.RateLimit.AILimit < 0 {
		return errors.New("config error: rate limits must be non-negative")
	}
	if c.RateLimit.Enabled && (c.RateLimit.DefaultWindow <= 0 || c.RateLimit.AIWindow <= 0) {
		return errors.New("config error: rate limit windows must be positive")
	}

	if c.Auth.ExpirationHours < 1 {
		return errors.Newf("config error: 'auth.expiration_hours' must be at least 1 hour, got %d", c.Auth.ExpirationHours)
	}
	return nil
}

// LLMClientConfig converts the llm section for llm.NewClient.
func (c *Config) LLMClientConfig() *llm.Config {
	provider, _ := llm.ParseProvider(c.LLM.Provider)
	out := llm.DefaultConfig()
	out.Provider = provider
	out.APIKey = c.LLM.APIKey
	out.Project = c.LLM.Project
	if c.LLM.Location != "" {
		out.Location = c.LLM.Location
	}
	out.Temperature = c.LLM.Temperature
	for tier, model := range c.LLM.Models {
		out.Models[llm.ModelTier(tier)] = model
	}
	return out
}
