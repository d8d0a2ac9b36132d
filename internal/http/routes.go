package httpx

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"

	domainauth "github.com/target/control-panel-ui/internal/domain/auth"
	httpassets "github.com/target/control-panel-ui/internal/http/assets"
)

// maxFormBytes bounds every request body routed through the app mux.
const maxFormBytes = 64 << 10

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth     AuthService
	Override OverrideService
	Status   StatusService
	// Activity is optional; without it the dashboard hides the activity feed.
	Activity ActivityService

	// TemplateFS holds layout.tmpl, pages/ and partials/; StaticFS is served under /static/.
	TemplateFS fs.FS
	StaticFS   fs.FS

	Cookie      SessionCookie
	Health      HealthChecks
	Compression *CompressionConfig // nil disables gzip
	IsDev       bool               // Re-parse templates and re-hash assets per request
	Logger      *slog.Logger
}

// NewRouter creates the HTTP handler for the control panel.
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Auth == nil || services.Override == nil || services.Status == nil {
		return nil, errors.New("router: auth, override and status services are required")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	renderer, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: services.TemplateFS,
		Resolver:   httpassets.NewAssetResolver(services.StaticFS, services.IsDev, logger),
		DevMode:    services.IsDev,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	pages := &Pages{T: renderer, Logger: logger}

	authHandlers := &AuthHandlers{Svc: services.Auth, Cookie: services.Cookie, Pages: pages, Logger: logger}
	uiHandlers := &UIHandlers{
		Pages:    pages,
		Status:   services.Status,
		Activity: services.Activity,
		Override: services.Override,
		Logger:   logger,
	}

	app := http.NewServeMux()
	registerAuthRoutes(app, authHandlers, services)
	registerUIRoutes(app, uiHandlers, services, logger)
	app.Handle("/", OptionalAuth(services.Auth, services.Cookie)(http.HandlerFunc(pages.NotFound)))

	root := http.NewServeMux()
	root.Handle("GET /healthz", healthHandler(services.Health))
	root.Handle("HEAD /healthz", healthHandler(services.Health))
	if services.StaticFS != nil {
		root.Handle("GET /static/", staticHandler(services.StaticFS))
	}
	root.Handle("/", Chain(app,
		LimitBody(maxFormBytes),
		CSRFProtection(CSRFConfig{CookieDomain: services.Cookie.Domain}),
	))

	mws := []func(http.Handler) http.Handler{
		Recover(logger),
		Logging(logger),
		SecurityHeaders(),
	}
	if services.Compression != nil {
		cfg := *services.Compression
		if cfg.Logger == nil {
			cfg.Logger = logger
		}
		mws = append(mws, Compression(cfg))
	}
	return Chain(root, mws...), nil
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, services RouterServices) {
	optional := OptionalAuth(services.Auth, services.Cookie)

	mux.Handle("GET /auth/login", optional(http.HandlerFunc(h.LoginPage)))
	mux.HandleFunc("POST /auth/login", h.Login)
	mux.HandleFunc("GET /auth/error", h.ErrorPage)
	mux.Handle("POST /auth/logout", optional(http.HandlerFunc(h.Logout)))
	mux.HandleFunc("GET /auth/signed-out", h.SignedOut)
	mux.Handle("GET /api/auth/session", optional(http.HandlerFunc(h.Session)))
}

func registerUIRoutes(mux *http.ServeMux, h *UIHandlers, services RouterServices, logger *slog.Logger) {
	signedIn := RequireAuthBrowser(services.Auth, services.Cookie, logger)
	admin := func(next http.HandlerFunc) http.Handler {
		return Chain(next, signedIn, RequireRole(domainauth.RoleAdmin))
	}

	mux.Handle("GET /{$}", signedIn(http.HandlerFunc(h.Dashboard)))
	mux.Handle("GET /dashboard", signedIn(http.HandlerFunc(h.Dashboard)))
	mux.Handle("GET /dashboard/status", signedIn(http.HandlerFunc(h.StatusPartial)))
	mux.Handle("GET /dashboard/activity", signedIn(http.HandlerFunc(h.ActivityPartial)))
	mux.Handle("POST /override/halt", admin(h.Halt))
	mux.Handle("POST /override/resume", admin(h.Resume))
}

// staticHandler serves assets; versioned URLs (?v=) are cached for a year.
func staticHandler(fsys fs.FS) http.Handler {
	files := http.StripPrefix("/static/", http.FileServerFS(fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("v") != "" {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}
		files.ServeHTTP(w, r)
	})
}
