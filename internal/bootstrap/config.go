package bootstrap

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/target/control-panel-ui/config"
)

// InitLogger initializes the structured logger at the configured level.
func InitLogger(level string) *slog.Logger {
	return initLogger(os.Stdout, level)
}

func initLogger(w io.Writer, level string) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (config.AppConfig, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	return cfg, nil
}

// ValidateConfig rejects configurations the panel cannot run with.
// In development a missing session secret is replaced with a random one.
func ValidateConfig(cfg *config.AppConfig, logger *slog.Logger) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if cfg.API.Mode == config.APIModeMock && !cfg.IsDev {
		return errors.New("CONTROL_API_MODE=mock is only allowed with DEV=true")
	}
	if cfg.Session.Secret != "" {
		if len(cfg.Session.Secret) < minSessionSecretLen {
			return fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSessionSecretLen)
		}
		return nil
	}
	if !cfg.IsDev {
		return errors.New("SESSION_SECRET is required")
	}

	secret, err := randomSecret()
	if err != nil {
		return err
	}
	cfg.Session.Secret = secret
	if logger != nil {
		logger.Warn("SESSION_SECRET not set; using a random secret, sessions end on restart")
	}
	return nil
}

const minSessionSecretLen = 32

func randomSecret() (string, error) {
	b := make([]byte, minSessionSecretLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
