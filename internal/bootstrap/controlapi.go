package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/target/control-panel-ui/config"
	"github.com/target/control-panel-ui/internal/adapters/controlapi"
	"github.com/target/control-panel-ui/internal/adapters/devapi"
)

// mockAPIAddr binds the development stand-in to an ephemeral loopback port.
const mockAPIAddr = "127.0.0.1:0"

// BuildControlAPI returns the Control API client. In mock mode it first starts the
// in-process stand-in, which stops when ctx is done.
func BuildControlAPI(ctx context.Context, cfg config.ControlAPIConfig, logger *slog.Logger) (*controlapi.Client, error) {
	baseURL := cfg.BaseURL
	paths := controlapi.Paths{
		Token:   cfg.TokenPath,
		Profile: cfg.ProfilePath,
		Halt:    cfg.HaltPath,
		Resume:  cfg.ResumePath,
		Status:  cfg.StatusPath,
	}
	mapping := controlapi.ProfileMapping{
		ID:    cfg.Profile.IDExpr,
		Email: cfg.Profile.EmailExpr,
		Name:  cfg.Profile.NameExpr,
		Role:  cfg.Profile.RoleExpr,
	}
	if cfg.Mode == config.APIModeMock {
		url, err := startMockAPI(ctx, cfg.Mock, logger)
		if err != nil {
			return nil, err
		}
		// The stand-in speaks the default contract only.
		baseURL, paths, mapping = url, controlapi.DefaultPaths(), controlapi.DefaultProfileMapping()
	}

	client, err := controlapi.New(controlapi.Options{
		BaseURL:  baseURL,
		Paths:    paths,
		ClientID: cfg.ClientID,
		Timeout:  cfg.Timeout,
		Mapping:  mapping,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("control api client: %w", err)
	}

	if logger != nil {
		logger.InfoContext(ctx, "control api configured", "mode", cfg.Mode, "base_url", baseURL, "timeout", cfg.Timeout)
	}
	return client, nil
}

func startMockAPI(ctx context.Context, cfg config.MockAPIConfig, logger *slog.Logger) (string, error) {
	api, err := devapi.New(devapi.Config{
		Accounts: []devapi.Account{{
			Email:    cfg.Email,
			Password: cfg.Password,
			Profile: map[string]any{
				"id":        "1",
				"email":     cfg.Email,
				"full_name": cfg.FullName,
				"role":      cfg.Role,
			},
		}},
		ConfirmationCode: cfg.ConfirmationCode,
		Logger:           logger,
	})
	if err != nil {
		return "", err
	}

	url, err := api.Start(ctx, mockAPIAddr)
	if err != nil {
		return "", err
	}
	if logger != nil {
		logger.WarnContext(ctx, "using the in-process control api stand-in", "email", cfg.Email, "role", cfg.Role)
	}
	return url, nil
}
