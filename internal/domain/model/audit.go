//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// AuditEntry is one recorded operator action.
type AuditEntry struct {
	ID         string          `json:"id"                db:"id"`
	ActorID    string          `json:"actor_id"          db:"actor_id"`
	ActorEmail string          `json:"actor_email"       db:"actor_email"`
	Action     AuditAction     `json:"action"            db:"action"`
	Outcome    string          `json:"outcome"           db:"outcome"`
	Detail     json.RawMessage `json:"detail,omitempty"  db:"detail"`
	CreatedAt  time.Time       `json:"created_at"        db:"created_at"`
}

// AuditAction names the kind of operator action recorded.
type AuditAction string

const (
	AuditActionSignIn  AuditAction = "sign_in"
	AuditActionSignOut AuditAction = "sign_out"
	AuditActionHalt    AuditAction = "system_halt"
	AuditActionResume  AuditAction = "system_resume"
)

const maxAuditOutcomeSize = 64

// Valid returns true if the action is known.
func (a AuditAction) Valid() bool {
	switch a {
	case AuditActionSignIn, AuditActionSignOut, AuditActionHalt, AuditActionResume:
		return true
	default:
		return false
	}
}

// String returns the string representation of the action.
func (a AuditAction) String() string {
	return string(a)
}

// Label is the human-readable form shown in the activity feed.
func (a AuditAction) Label() string {
	switch a {
	case AuditActionSignIn:
		return "Signed in"
	case AuditActionSignOut:
		return "Signed out"
	case AuditActionHalt:
		return "System halt"
	case AuditActionResume:
		return "System resume"
	default:
		return string(a)
	}
}

// CreateAuditEntryRequest is the input for recording an action.
type CreateAuditEntryRequest struct {
	ActorID    string
	ActorEmail string
	Action     AuditAction
	Outcome    string
	Detail     map[string]any
}

// Validate checks the request before it reaches the store.
func (r *CreateAuditEntryRequest) Validate() error {
	if !r.Action.Valid() {
		return errors.New("action is invalid")
	}
	r.Outcome = strings.TrimSpace(r.Outcome)
	if r.Outcome == "" {
		return errors.New("outcome is required")
	}
	if utf8.RuneCountInString(r.Outcome) > maxAuditOutcomeSize {
		return errors.New("outcome is too long")
	}
	return nil
}
