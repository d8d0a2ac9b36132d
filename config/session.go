package config

import (
	"strings"
	"time"
)

// SessionConfig controls the signed session token carried in the session cookie.
type SessionConfig struct {
	// Secret signs the session token (HS256). Required outside development.
	Secret string `env:"SECRET"`

	// EncryptionKey seals the bearer token inside the session token.
	// Hex-encoded 32 bytes, or any string (hashed). Empty disables sealing.
	EncryptionKey string `env:"ENCRYPTION_KEY"`

	// TTL matches the Control API token lifetime.
	TTL time.Duration `env:"TTL" envDefault:"30m"`

	Issuer     string `env:"ISSUER"      envDefault:"control-panel-ui"`
	CookieName string `env:"COOKIE_NAME" envDefault:"session_token"`
}

// Sanitize applies guardrails to session configuration values.
func (c *SessionConfig) Sanitize() {
	c.Secret = strings.TrimSpace(c.Secret)
	c.EncryptionKey = strings.TrimSpace(c.EncryptionKey)
	if c.TTL < time.Minute {
		c.TTL = 30 * time.Minute
	}
	if c.TTL > 24*time.Hour {
		c.TTL = 24 * time.Hour
	}
	c.Issuer = defaultString(c.Issuer, "control-panel-ui")
	c.CookieName = defaultString(c.CookieName, "session_token")
}
