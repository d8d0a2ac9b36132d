package redis

// Package redis provides Redis-based adapters for the control panel.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	domainauth "github.com/target/control-panel-ui/internal/domain/auth"
)

// SessionRegistry records issued session ids so a signed token can be revoked at sign-out.
// Entries expire with the session they describe.
type SessionRegistry struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// registryEntry is the value stored per session id. The bearer token is never stored.
type registryEntry struct {
	UserID   string    `json:"user_id"`
	Email    string    `json:"email"`
	IssuedAt time.Time `json:"issued_at"`
}

// NewSessionRegistry creates a registry using the "session:" key prefix.
func NewSessionRegistry(client redis.UniversalClient) *SessionRegistry {
	return NewSessionRegistryWithPrefix(client, "session:")
}

// NewSessionRegistryWithPrefix creates a registry with a custom key prefix.
func NewSessionRegistryWithPrefix(client redis.UniversalClient, prefix string) *SessionRegistry {
	return &SessionRegistry{client: client, prefix: prefix, now: time.Now}
}

// Register marks a session id live until the session expires.
func (r *SessionRegistry) Register(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	ttl := sess.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return errors.New("session is expired")
	}

	data, err := json.Marshal(registryEntry{UserID: sess.UserID, Email: sess.Email, IssuedAt: sess.IssuedAt})
	if err != nil {
		return fmt.Errorf("marshal session entry: %w", err)
	}
	return r.client.Set(ctx, r.prefix+sess.ID, data, ttl).Err()
}

// Active reports whether the id is registered and not yet revoked or expired.
func (r *SessionRegistry) Active(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	n, err := r.client.Exists(ctx, r.prefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n == 1, nil
}

// Revoke removes the id. Revoking an unknown id is not an error.
func (r *SessionRegistry) Revoke(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return r.client.Del(ctx, r.prefix+id).Err()
}
