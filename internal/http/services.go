package httpx

import (
	"context"

	domainauth "github.com/target/control-panel-ui/internal/domain/auth"
	"github.com/target/control-panel-ui/internal/domain/model"
	"github.com/target/control-panel-ui/internal/domain/override"
	"github.com/target/control-panel-ui/internal/service"
)

// SessionReader resolves a session token to a live session.
type SessionReader interface {
	GetSession(ctx context.Context, token string) (domainauth.Session, error)
}

// AuthService is the sign-in surface used by the auth handlers.
type AuthService interface {
	SessionReader
	SignIn(ctx context.Context, cred domainauth.Credential) (*service.SignInResult, error)
	Logout(ctx context.Context, sess domainauth.Session) error
}

// OverrideService submits emergency halt and resume requests.
type OverrideService interface {
	Halt(ctx context.Context, sess domainauth.Session, req override.Request) override.Outcome
	Resume(ctx context.Context, sess domainauth.Session, req override.Request) override.Outcome
}

// StatusService reads the platform status for the dashboard widget.
type StatusService interface {
	Current(ctx context.Context, sess domainauth.Session) (*model.SystemStatus, error)
}

// ActivityService lists recent audited actions.
type ActivityService interface {
	Enabled() bool
	Recent(ctx context.Context, limit int) ([]*model.AuditEntry, error)
}

var (
	_ AuthService     = (*service.AuthService)(nil)
	_ OverrideService = (*service.OverrideService)(nil)
	_ StatusService   = (*service.StatusService)(nil)
	_ ActivityService = (*service.ActivityService)(nil)
)
