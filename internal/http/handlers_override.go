package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/target/control-panel-ui/internal/domain/override"
	"github.com/target/control-panel-ui/internal/http/ui/viewmodel"
)

// Halt submits an emergency halt.
func (h *UIHandlers) Halt(w http.ResponseWriter, r *http.Request) {
	h.submitOverride(w, r, override.ActionHalt)
}

// Resume submits a resume.
func (h *UIHandlers) Resume(w http.ResponseWriter, r *http.Request) {
	h.submitOverride(w, r, override.ActionResume)
}

// submitOverride answers htmx with the swapped form (always 200 so the outcome is shown);
// plain form posts get the whole dashboard with the form's outcome in place.
func (h *UIHandlers) submitOverride(w http.ResponseWriter, r *http.Request, action override.Action) {
	sess, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		redirectToLogin(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger().WarnContext(r.Context(), "override form too large",
				slog.String("action", string(action)), slog.Int64("limit", tooLarge.Limit))
			http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
			return
		}
		// The fields stay empty and validation reports them.
		h.logger().InfoContext(r.Context(), "override form unparsable",
			slog.String("action", string(action)), slog.Any("error", err))
	}
	req := override.Request{
		Reason:           r.PostForm.Get("reason"),
		ConfirmationCode: r.PostForm.Get("confirmation_code"),
	}

	var out override.Outcome
	if action == override.ActionResume {
		out = h.Override.Resume(r.Context(), *sess, req)
	} else {
		out = h.Override.Halt(r.Context(), *sess, req)
	}

	form := viewmodel.NewOverrideForm(action, GetCSRFToken(r)).WithOutcome(req, out)
	if IsHTMX(r) {
		SetHXTrigger(w, "override-result", map[string]string{
			"action": string(action),
			"state":  string(out.State),
		})
		h.Pages.Fragment(w, r, TemplateOverrideForm, form)
		return
	}

	d := h.dashboard(r, sess)
	if action == override.ActionResume {
		d.Override.Resume = form
	} else {
		d.Override.Halt = form
	}
	h.Pages.Render(w, r, http.StatusOK, d)
}
