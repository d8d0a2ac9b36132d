// Package override holds the types for the emergency halt and resume controls.
package override

import (
	"strings"
	"time"
)

// Action is the override verb sent to the Control API.
type Action string

const (
	ActionHalt   Action = "HALT"
	ActionResume Action = "RESUME"
)

// MaxReasonLength bounds the free-text reason.
const MaxReasonLength = 500

// State is the lifecycle of one override submission as shown to the operator.
type State string

const (
	StateIdle     State = "idle"
	StateInvalid  State = "invalid"
	StateSent     State = "sent"
	StateAccepted State = "accepted"
	StateRejected State = "rejected"
	StateFailed   State = "failed"
)

// Terminal reports whether the state is a final answer for a submission.
func (s State) Terminal() bool {
	switch s {
	case StateAccepted, StateRejected, StateFailed:
		return true
	default:
		return false
	}
}

// Request is a halt or resume submission from the override form.
type Request struct {
	Action           Action `json:"action"            validate:"required,oneof=HALT RESUME"`
	Reason           string `json:"reason"            validate:"required,notblank,max=500"`
	ConfirmationCode string `json:"confirmation_code" validate:"required,notblank"`
}

// Normalize trims surrounding whitespace from the free-text fields.
func (r Request) Normalize() Request {
	r.Reason = strings.TrimSpace(r.Reason)
	r.ConfirmationCode = strings.TrimSpace(r.ConfirmationCode)
	return r
}

// Outcome is what the override form renders after a submission.
type Outcome struct {
	Action      Action
	State       State
	Message     string
	Status      string
	InitiatedBy string
	At          time.Time
	// FieldErrors is keyed by form field name and only set for StateInvalid.
	FieldErrors map[string]string
}

// Reply is the Control API's answer to an accepted override.
type Reply struct {
	Message     string `json:"message"`
	Status      string `json:"status"`
	InitiatedBy string `json:"initiated_by"`
	Timestamp   string `json:"timestamp"`
}
