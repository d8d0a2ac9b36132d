package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/target/control-panel-ui/internal/domain/auth"
	"github.com/target/control-panel-ui/internal/http/ui/viewmodel"
)

const recentActivityLimit = 10

// UIHandlers serves the signed-in dashboard and the admin override forms.
type UIHandlers struct {
	Pages    *Pages
	Status   StatusService
	Activity ActivityService
	Override OverrideService
	Logger   *slog.Logger
}

// Dashboard renders the landing page. Status and activity failures degrade their widgets only.
func (h *UIHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		redirectToLogin(w, r)
		return
	}
	h.Pages.Render(w, r, http.StatusOK, h.dashboard(r, sess))
}

func (h *UIHandlers) dashboard(r *http.Request, sess *domainauth.Session) *viewmodel.Dashboard {
	d := viewmodel.NewDashboard(
		h.Pages.Layout(r, PageDashboard, "Dashboard"),
		sess,
		h.statusWidget(r, sess),
		h.activityFeed(r),
	)
	return &d
}

// StatusPartial renders only the status widget, for polling.
func (h *UIHandlers) StatusPartial(w http.ResponseWriter, r *http.Request) {
	sess, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		redirectToLogin(w, r)
		return
	}
	h.Pages.Fragment(w, r, TemplateStatusWidget, h.statusWidget(r, sess))
}

// ActivityPartial renders only the activity feed, for polling.
func (h *UIHandlers) ActivityPartial(w http.ResponseWriter, r *http.Request) {
	h.Pages.Fragment(w, r, TemplateActivityFeed, h.activityFeed(r))
}

func (h *UIHandlers) statusWidget(r *http.Request, sess *domainauth.Session) viewmodel.StatusWidget {
	if h.Status == nil {
		return viewmodel.StatusWidget{}
	}
	status, err := h.Status.Current(r.Context(), *sess)
	if err != nil {
		h.logger().WarnContext(r.Context(), "system status unavailable", slog.Any("error", err))
		return viewmodel.StatusWidget{}
	}
	return viewmodel.NewStatusWidget(status)
}

func (h *UIHandlers) activityFeed(r *http.Request) viewmodel.ActivityFeed {
	if h.Activity == nil || !h.Activity.Enabled() {
		return viewmodel.ActivityFeed{}
	}
	entries, err := h.Activity.Recent(r.Context(), recentActivityLimit)
	if err != nil {
		h.logger().WarnContext(r.Context(), "recent activity unavailable", slog.Any("error", err))
	}
	return viewmodel.NewActivityFeed(true, entries, err)
}

func (h *UIHandlers) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}
