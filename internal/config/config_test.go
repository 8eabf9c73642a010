package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/ats-assistant/internal/llm"
)

// clearEnv blanks every variable that could leak into Load from the host.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "GOOGLE_CLOUD_PROJECT", "DATABASE_URL", "JWT_SECRET",
		"ATS_LLM_API_KEY", "ATS_LLM_PROVIDER", "ATS_LLM_MAX_ATTEMPTS", "ATS_DATABASE_URL",
		"ATS_AUTH_JWT_SECRET", "ATS_SERVER_PORT", "ATS_PIPELINE_REDACT_PII",
	} {
		t.Setenv(name, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 45*time.Second, cfg.LLM.RequestTimeout)
	assert.Equal(t, 3, cfg.LLM.MaxAttempts)
	assert.Equal(t, time.Duration(0), cfg.LLM.RetryBackoff)
	assert.InDelta(t, 0.1, cfg.LLM.Temperature, 0.0001)
	assert.False(t, cfg.Pipeline.RedactPII)
	assert.Equal(t, 5000, cfg.Pipeline.ResumePrefixChars)
	assert.Equal(t, "Our Company", cfg.Pipeline.DefaultCompanyName)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Server.MaxConcurrentModelCalls)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.False(t, cfg.Storage.Enabled())
	assert.False(t, cfg.Auth.Enabled())
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "ats.yaml", `
llm:
  provider: vertex
  project: talent-prod
  request_timeout: 30s
  models:
    standard: gemini-2.5-pro
pipeline:
  redact_pii: true
  default_company_name: Acme
server:
  port: 9090
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "vertex", cfg.LLM.Provider)
	assert.Equal(t, "talent-prod", cfg.LLM.Project)
	assert.Equal(t, 30*time.Second, cfg.LLM.RequestTimeout)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.Models["standard"])
	assert.True(t, cfg.Pipeline.RedactPII)
	assert.Equal(t, "Acme", cfg.Pipeline.DefaultCompanyName)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3, cfg.LLM.MaxAttempts, "unset keys keep their default")
}

func TestLoad_JSONFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "ats.json", `{"database": {"url": "postgres://localhost/ats"}, "storage": {"bucket": "resumes"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/ats", cfg.Database.URL)
	assert.True(t, cfg.Storage.Enabled())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "ats.yaml", "server:\n  port: 9090\n")
	t.Setenv("ATS_SERVER_PORT", "7000")
	t.Setenv("ATS_LLM_MAX_ATTEMPTS", "5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 5, cfg.LLM.MaxAttempts)
}

func TestLoad_WellKnownEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("DATABASE_URL", "postgres://db/ats")
	t.Setenv("JWT_SECRET", "0123456789abcdef")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gemini-key", cfg.LLM.APIKey)
	assert.Equal(t, "postgres://db/ats", cfg.Database.URL)
	assert.Equal(t, "0123456789abcdef", cfg.Auth.JWTSecret)
}

func TestLoad_PrefixedEnvWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "fallback")
	t.Setenv("ATS_LLM_API_KEY", "primary")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "primary", cfg.LLM.APIKey)
}

func TestLoad_FileNotFound(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("/nonexistent/path/ats.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("ATS_LLM_PROVIDER", "openai")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.provider")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "zero timeout", mutate: func(c *Config) { c.LLM.RequestTimeout = 0 }, wantErr: "request_timeout"},
		{name: "zero attempts", mutate: func(c *Config) { c.LLM.MaxAttempts = 0 }, wantErr: "max_attempts"},
		{name: "negative backoff", mutate: func(c *Config) { c.LLM.RetryBackoff = -time.Second }, wantErr: "retry_backoff"},
		{name: "unknown tier", mutate: func(c *Config) { c.LLM.Models = map[string]string{"huge": "x"} }, wantErr: "unknown model tier"},
		{name: "zero prefix", mutate: func(c *Config) { c.Pipeline.ResumePrefixChars = 0 }, wantErr: "resume_prefix_chars"},
		{name: "port range", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "server.port"},
		{name: "no model slots", mutate: func(c *Config) { c.Server.MaxConcurrentModelCalls = 0 }, wantErr: "max_concurrent_model_calls"},
		{name: "negative limit", mutate: func(c *Config) { c.RateLimit.AILimit = -1 }, wantErr: "non-negative"},
		{name: "zero window", mutate: func(c *Config) { c.RateLimit.DefaultWindow = 0 }, wantErr: "windows"},
		{name: "disabled limiter ignores window", mutate: func(c *Config) {
			c.RateLimit.Enabled = false
			c.RateLimit.DefaultWindow = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLLMClientConfig(t *testing.T) {
	cfg := Default()
	cfg.LLM.Provider = "genai"
	cfg.LLM.APIKey = "k"
	cfg.LLM.Models = map[string]string{"advanced": "gemini-exp"}

	out := cfg.LLMClientConfig()
	assert.Equal(t, llm.ProviderGenAI, out.Provider)
	assert.Equal(t, "k", out.APIKey)
	assert.Equal(t, "gemini-exp", out.GetModel(llm.TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash", out.GetModel(llm.TierStandard))
	assert.Equal(t, "us-central1", out.Location)
}
