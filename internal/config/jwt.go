package config

import (
	"github.com/cockroachdb/errors"
)

// AuthConfig holds configuration for verifying bearer tokens.
type AuthConfig struct {
	JWTSecret       string `mapstructure:"jwt_secret"`
	Issuer          string `mapstructure:"issuer"`
	ExpirationHours int    `mapstructure:"expiration_hours"`
}

// Enabled reports whether a signing secret is configured.
func (c AuthConfig) Enabled() bool {
	return c.JWTSecret != ""
}

// RequireSecret returns an error when no signing secret is configured.
// The server refuses to start without one.
func (c AuthConfig) RequireSecret() error {
	if c.JWTSecret == "" {
		return errors.New("JWT secret is required but not set (ATS_AUTH_JWT_SECRET or JWT_SECRET)")
	}
	if len(c.JWTSecret) < 16 {
		return errors.Newf("JWT secret must be at least 16 bytes, got %d", len(c.JWTSecret))
	}
	return nil
}
