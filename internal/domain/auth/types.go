package auth

// Package auth contains domain-level types for sign-in and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Role is the role string reported by the Control API.
// The set is open; only RoleAdmin is special-cased.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

// Credential is the transient email/password pair submitted on the sign-in form.
// It is never persisted or logged.
type Credential struct {
	Email    string `validate:"required,notblank"`
	Password string `validate:"required"`
}

// Blank reports whether either field is empty after trimming surrounding whitespace.
func (c Credential) Blank() bool {
	return strings.TrimSpace(c.Email) == "" || c.Password == ""
}

// Profile is the current-user resource returned by the Control API.
type Profile struct {
	ID    string
	Email string
	Name  string
	Role  Role
}

// Identity is the merged result of a successful credential exchange.
type Identity struct {
	UserID      string
	Email       string
	Name        string
	Role        Role
	AccessToken string
}

// NewIdentity merges a profile with the bearer token that fetched it.
func NewIdentity(p Profile, accessToken string) Identity {
	return Identity{
		UserID:      p.ID,
		Email:       p.Email,
		Name:        p.Name,
		Role:        p.Role,
		AccessToken: accessToken,
	}
}

// Session is the signed-in user's record carried in the session token.
// ID is the opaque session identifier; UserID is the Control API user id.
type Session struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        Role      `json:"role"`
	AccessToken string    `json:"-"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IsAdmin reports whether the session role is exactly "admin".
func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

// HasRole reports whether the session carries exactly the given role.
func (s Session) HasRole(r Role) bool { return r != "" && s.Role == r }

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
