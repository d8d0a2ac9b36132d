package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	domainauth "github.com/target/control-panel-ui/internal/domain/auth"
	"github.com/target/control-panel-ui/internal/domain/model"
	apperrors "github.com/target/control-panel-ui/internal/errors"
	"github.com/target/control-panel-ui/internal/observability/metrics"
	"github.com/target/control-panel-ui/internal/observability/statsd"
	"github.com/target/control-panel-ui/internal/ports"
	"github.com/target/control-panel-ui/internal/validation"
)

const defaultSessionTTL = 30 * time.Minute

// SessionDeps groups how sessions are minted and tracked.
type SessionDeps struct {
	Codec ports.SessionCodec
	// Registry is optional; without it sign-out only clears the cookie.
	Registry ports.SessionRegistry
	TTL      time.Duration
}

// Observers groups the optional side channels shared by the panel's services.
type Observers struct {
	Audit   ports.AuditLog
	Metrics statsd.Sink
	Logger  *slog.Logger
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Exchanger ports.CredentialExchanger
	Sessions  SessionDeps
	Observers Observers
}

// AuthService signs users in against the Control API and issues session tokens.
type AuthService struct {
	exchanger ports.CredentialExchanger
	codec     ports.SessionCodec
	registry  ports.SessionRegistry
	ttl       time.Duration
	audit     ports.AuditLog
	metrics   statsd.Sink
	logger    *slog.Logger
	inflight  singleflight.Group
	now       func() time.Time
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.Exchanger == nil {
		panic("auth service: exchanger is required")
	}
	if opts.Sessions.Codec == nil {
		panic("auth service: session codec is required")
	}
	ttl := opts.Sessions.TTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &AuthService{
		exchanger: opts.Exchanger,
		codec:     opts.Sessions.Codec,
		registry:  opts.Sessions.Registry,
		ttl:       ttl,
		audit:     opts.Observers.Audit,
		metrics:   opts.Observers.Metrics,
		logger:    loggerOrDefault(opts.Observers.Logger).With("component", "auth_service"),
		now:       time.Now,
	}
}

// SignInResult is a freshly issued session and its encoded token.
type SignInResult struct {
	Session domainauth.Session
	Token   string
}

// SignIn exchanges credentials for an identity and issues a session token.
// Concurrent sign-ins with the same credentials share one exchange.
func (s *AuthService) SignIn(ctx context.Context, cred domainauth.Credential) (*SignInResult, error) {
	start := s.now()
	cred.Email = strings.TrimSpace(cred.Email)

	if err := checkCredential(cred); err != nil {
		metrics.EmitSignIn(s.metrics, metrics.SignInMetric{Result: metrics.ResultError, Err: err})
		return nil, err
	}

	v, err, shared := s.inflight.Do(credentialKey(cred), func() (any, error) {
		// Detached: every caller waiting on this key shares the result.
		return s.exchanger.Exchange(context.WithoutCancel(ctx), cred)
	})
	if err != nil {
		s.observeSignIn(ctx, cred.Email, "", start, shared, err)
		return nil, fmt.Errorf("sign in: %w", err)
	}
	identity, ok := v.(domainauth.Identity)
	if !ok || identity.UserID == "" {
		err = apperrors.UnexpectedResponse("no identity returned")
		s.observeSignIn(ctx, cred.Email, "", start, shared, err)
		return nil, err
	}

	result, err := s.issue(ctx, identity)
	if err != nil {
		s.observeSignIn(ctx, identity.Email, identity.UserID, start, shared, err)
		return nil, err
	}
	s.observeSignIn(ctx, identity.Email, identity.UserID, start, shared, nil)
	return result, nil
}

func (s *AuthService) issue(ctx context.Context, identity domainauth.Identity) (*SignInResult, error) {
	now := s.now().UTC().Truncate(time.Second)
	sess := domainauth.Session{
		ID:          uuid.NewString(),
		UserID:      identity.UserID,
		Email:       identity.Email,
		Name:        identity.Name,
		Role:        identity.Role,
		AccessToken: identity.AccessToken,
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.ttl),
	}

	token, err := s.codec.Encode(sess)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if s.registry != nil {
		if regErr := s.registry.Register(ctx, sess); regErr != nil {
			return nil, apperrors.Wrap(regErr, apperrors.ErrCodeServiceUnavailable, "session store unavailable")
		}
	}
	return &SignInResult{Session: sess, Token: token}, nil
}

// GetSession decodes a session token and, when a registry is configured, checks it was not revoked.
func (s *AuthService) GetSession(ctx context.Context, token string) (domainauth.Session, error) {
	if token == "" {
		return domainauth.Session{}, apperrors.Unauthorized("not signed in")
	}
	sess, err := s.codec.Decode(token)
	if err != nil {
		return domainauth.Session{}, err
	}
	if sess.Expired(s.now()) {
		return domainauth.Session{}, apperrors.Unauthorized("session expired")
	}
	if s.registry == nil {
		return sess, nil
	}

	active, err := s.registry.Active(ctx, sess.ID)
	if err != nil {
		return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeServiceUnavailable, "session store unavailable")
	}
	if !active {
		return domainauth.Session{}, apperrors.Unauthorized("session revoked")
	}
	return sess, nil
}

// Logout revokes the session. An empty session is a no-op.
func (s *AuthService) Logout(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return nil
	}
	if s.registry != nil {
		if err := s.registry.Revoke(ctx, sess.ID); err != nil {
			return fmt.Errorf("revoke session: %w", err)
		}
	}
	recordAudit(ctx, s.audit, s.logger, model.CreateAuditEntryRequest{
		ActorID:    sess.UserID,
		ActorEmail: sess.Email,
		Action:     model.AuditActionSignOut,
		Outcome:    "success",
	})
	return nil
}

func (s *AuthService) observeSignIn(ctx context.Context, email, userID string, start time.Time, shared bool, err error) {
	result, outcome := metrics.ResultSuccess, "success"
	if err != nil {
		result = metrics.ResultError
		outcome = string(apperrors.GetCode(err))
		if outcome == "" {
			outcome = "error"
		}
		s.logger.InfoContext(ctx, "sign-in failed", "error_code", outcome, "shared", shared)
	} else {
		s.logger.InfoContext(ctx, "signed in", "user_id", userID, "shared", shared)
	}

	metrics.EmitSignIn(s.metrics, metrics.SignInMetric{
		Result:   result,
		Shared:   shared,
		Duration: s.now().Sub(start),
		Err:      err,
	})
	recordAudit(ctx, s.audit, s.logger, model.CreateAuditEntryRequest{
		ActorID:    userID,
		ActorEmail: email,
		Action:     model.AuditActionSignIn,
		Outcome:    outcome,
	})
}

// checkCredential reports the first missing field in form order.
func checkCredential(cred domainauth.Credential) error {
	fields := validation.Struct(cred)
	for _, name := range [...]string{"email", "password"} {
		if msg, ok := fields[name]; ok {
			return apperrors.InvalidInput(name, msg)
		}
	}
	if fields.Any() {
		return apperrors.InvalidInput("", "Enter your email and password.")
	}
	return nil
}

// credentialKey collapses identical submissions without keeping the password in memory as a map key.
func credentialKey(cred domainauth.Credential) string {
	sum := sha256.Sum256([]byte(cred.Email + "\x00" + cred.Password))
	return hex.EncodeToString(sum[:])
}

func recordAudit(ctx context.Context, audit ports.AuditLog, logger *slog.Logger, req model.CreateAuditEntryRequest) {
	if audit == nil {
		return
	}
	if _, err := audit.Record(ctx, req); err != nil {
		logger.WarnContext(ctx, "audit record failed", "action", req.Action.String(), "error", err)
	}
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
