package config

import (
	"fmt"
	"strings"
	"time"
)

// DefaultAPIBaseURL is used when CONTROL_API_BASE_URL is unset.
const DefaultAPIBaseURL = "http://localhost:8000"

// APIMode selects the Control API implementation.
type APIMode string

const (
	// APIModeRemote talks to the Control API over HTTP.
	APIModeRemote APIMode = "remote"
	// APIModeMock uses an in-process stand-in (for development only).
	APIModeMock APIMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for APIMode.
func (m *APIMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "remote", "mock":
		*m = APIMode(v)
		return nil
	default:
		return fmt.Errorf("invalid APIMode: %q (valid options: remote, mock)", v)
	}
}

// ControlAPIConfig configures the outbound Control API client.
type ControlAPIConfig struct {
	Mode    APIMode `env:"MODE"     envDefault:"remote"`
	BaseURL string  `env:"BASE_URL" envDefault:"http://localhost:8000"`

	// Timeout bounds every outbound call, including the two sign-in requests.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`

	TokenPath   string `env:"TOKEN_PATH"   envDefault:"/control/auth/token"`
	ProfilePath string `env:"PROFILE_PATH" envDefault:"/control/users/me"`
	HaltPath    string `env:"HALT_PATH"    envDefault:"/control/system/override/halt"`
	ResumePath  string `env:"RESUME_PATH"  envDefault:"/control/system/override/resume"`
	StatusPath  string `env:"STATUS_PATH"  envDefault:"/control/system/status"`

	// ClientID is sent with the password grant; the Control API ignores it by default.
	ClientID string `env:"CLIENT_ID"`

	// Profile holds JMESPath expressions selecting fields from the current-user response.
	Profile ProfileMappingConfig `envPrefix:"PROFILE_"`

	// Mock configures the in-process stand-in (used when Mode=mock).
	Mock MockAPIConfig `envPrefix:"MOCK_"`
}

// ProfileMappingConfig maps the current-user response onto the profile fields.
type ProfileMappingConfig struct {
	IDExpr    string `env:"ID_EXPR"    envDefault:"id"`
	EmailExpr string `env:"EMAIL_EXPR" envDefault:"email"`
	NameExpr  string `env:"NAME_EXPR"  envDefault:"full_name"`
	RoleExpr  string `env:"ROLE_EXPR"  envDefault:"role"`
}

// MockAPIConfig controls the development stand-in's single account.
type MockAPIConfig struct {
	Email            string `env:"EMAIL"             envDefault:"admin@example.com"`
	Password         string `env:"PASSWORD"          envDefault:"admin"`
	FullName         string `env:"FULL_NAME"         envDefault:"Dev Admin"`
	Role             string `env:"ROLE"              envDefault:"admin"`
	ConfirmationCode string `env:"CONFIRMATION_CODE" envDefault:"EDWARD-ALPHA-OVERRIDE"`
}

// Sanitize applies defaults and normalises paths.
func (c *ControlAPIConfig) Sanitize() {
	if c.Mode == "" {
		c.Mode = APIModeRemote
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = DefaultAPIBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Timeout > 2*time.Minute {
		c.Timeout = 2 * time.Minute
	}
	c.TokenPath = normalizePath(c.TokenPath, "/control/auth/token")
	c.ProfilePath = normalizePath(c.ProfilePath, "/control/users/me")
	c.HaltPath = normalizePath(c.HaltPath, "/control/system/override/halt")
	c.ResumePath = normalizePath(c.ResumePath, "/control/system/override/resume")
	c.StatusPath = normalizePath(c.StatusPath, "/control/system/status")
	c.Profile.sanitize()
}

// URL joins the base URL and an endpoint path.
func (c *ControlAPIConfig) URL(path string) string {
	return c.BaseURL + path
}

func (c *ProfileMappingConfig) sanitize() {
	c.IDExpr = defaultString(c.IDExpr, "id")
	c.EmailExpr = defaultString(c.EmailExpr, "email")
	c.NameExpr = defaultString(c.NameExpr, "full_name")
	c.RoleExpr = defaultString(c.RoleExpr, "role")
}

func normalizePath(p, fallback string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return fallback
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func defaultString(v, fallback string) string {
	if v = strings.TrimSpace(v); v == "" {
		return fallback
	}
	return v
}
