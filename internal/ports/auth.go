package ports

// Package ports defines interfaces (hexagonal ports) for the control panel.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/target/control-panel-ui/internal/domain/auth"
)

// CredentialExchanger trades an email/password pair for the caller's identity and bearer token.
type CredentialExchanger interface {
	// Exchange performs the token request and, only if it succeeds, the current-user fetch.
	// It returns an identity only when both calls succeeded.
	Exchange(ctx context.Context, cred domainauth.Credential) (domainauth.Identity, error)
}

// SessionCodec converts sessions to and from the signed token carried in the session cookie.
type SessionCodec interface {
	Encode(sess domainauth.Session) (string, error)
	Decode(token string) (domainauth.Session, error)
}

// SessionRegistry tracks which issued session ids are still live so sign-out can revoke a token
// before it expires.
type SessionRegistry interface {
	Register(ctx context.Context, sess domainauth.Session) error
	Active(ctx context.Context, id string) (bool, error)
	Revoke(ctx context.Context, id string) error
}
