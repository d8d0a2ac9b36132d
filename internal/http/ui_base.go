package httpx

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/target/control-panel-ui/internal/http/ui/viewmodel"
)

// Pages renders full pages and htmx fragments with the shared layout data.
type Pages struct {
	T      *TemplateRenderer
	Logger *slog.Logger
}

// Layout builds the chrome for the current request: titles, CSRF token and the signed-in user.
func (p *Pages) Layout(r *http.Request, page, pageTitle string) viewmodel.Layout {
	layout := viewmodel.Layout{
		Title:       viewmodel.AppTitle,
		PageTitle:   pageTitle,
		CurrentPage: page,
		CSRFToken:   GetCSRFToken(r),
	}
	if sess, ok := GetUserSessionFromContext(r.Context()); ok {
		layout.IsAuthenticated = true
		layout.User = viewmodel.NewUser(sess)
	}
	return layout
}

// Render writes the full page, or only the content section for htmx requests.
func (p *Pages) Render(w http.ResponseWriter, r *http.Request, status int, data viewmodel.LayoutProvider) {
	var err error
	if WantsPartial(r) {
		err = p.T.RenderPartial(w, status, data)
	} else {
		err = p.T.RenderFull(w, status, data)
	}
	if err != nil {
		p.renderFailed(w, r, err)
	}
}

// Fragment writes a named fragment for an htmx swap.
func (p *Pages) Fragment(w http.ResponseWriter, r *http.Request, name string, data any) {
	if err := p.T.RenderFragment(w, name, data); err != nil {
		p.renderFailed(w, r, err)
	}
}

// renderFailed is only reached before anything was written; renders are buffered.
func (p *Pages) renderFailed(w http.ResponseWriter, r *http.Request, err error) {
	if p.Logger != nil {
		p.Logger.ErrorContext(r.Context(), "render failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// NotFound renders the 404 page for browsers and a JSON error for /api/ paths.
func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	if isAPIPath(r.URL.Path) {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Message: "not found"})
		return
	}
	p.Render(w, r, http.StatusNotFound, &viewmodel.NotFound{
		Layout: p.Layout(r, PageNotFound, "Not found"),
		Path:   r.URL.Path,
	})
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}
