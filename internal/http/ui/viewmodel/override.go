package viewmodel

import (
	"time"

	"github.com/target/control-panel-ui/internal/domain/override"
)

// Form paths for the override actions.
const (
	HaltPath   = "/override/halt"
	ResumePath = "/override/resume"
)

// OverridePanel is the admin-only emergency override section.
type OverridePanel struct {
	Halt   OverrideForm
	Resume OverrideForm
}

// OverrideForm is one override form together with the result of its last submission.
type OverrideForm struct {
	Action      string
	Path        string
	CSRFToken   string
	Reason      string
	State       string
	Message     string
	Status      string
	InitiatedBy string
	At          time.Time
	FieldErrors map[string]string
}

// Title is the form heading.
func (f OverrideForm) Title() string {
	if f.Action == string(override.ActionResume) {
		return "Resume system"
	}
	return "EDWARD OVERRIDE ALPHA"
}

// SubmitLabel is the submit button text.
func (f OverrideForm) SubmitLabel() string {
	if f.Action == string(override.ActionResume) {
		return "RESUME SYSTEM"
	}
	return "HALT SYSTEM"
}

// TargetID is the DOM id the form swaps into.
func (f OverrideForm) TargetID() string {
	if f.Action == string(override.ActionResume) {
		return "override-resume"
	}
	return "override-halt"
}

// HasResult reports whether a submission outcome should be shown.
func (f OverrideForm) HasResult() bool {
	return f.State != "" && f.State != string(override.StateIdle)
}

// FieldError returns the message for a form field, if any.
func (f OverrideForm) FieldError(name string) string {
	return f.FieldErrors[name]
}

// NewOverridePanel returns both forms in their idle state.
func NewOverridePanel(csrfToken string) OverridePanel {
	return OverridePanel{
		Halt:   NewOverrideForm(override.ActionHalt, csrfToken),
		Resume: NewOverrideForm(override.ActionResume, csrfToken),
	}
}

// NewOverrideForm returns an idle form for action.
func NewOverrideForm(action override.Action, csrfToken string) OverrideForm {
	path := HaltPath
	if action == override.ActionResume {
		path = ResumePath
	}
	return OverrideForm{
		Action:    string(action),
		Path:      path,
		CSRFToken: csrfToken,
		State:     string(override.StateIdle),
	}
}

// WithOutcome renders the outcome of a submission. The reason is kept only when the
// operator needs to correct and resubmit; the confirmation code is never echoed back.
func (f OverrideForm) WithOutcome(req override.Request, out override.Outcome) OverrideForm {
	f.State = string(out.State)
	f.Message = out.Message
	f.Status = out.Status
	f.InitiatedBy = out.InitiatedBy
	f.At = out.At
	f.FieldErrors = out.FieldErrors
	if out.State != override.StateAccepted {
		f.Reason = req.Reason
	}
	return f
}
