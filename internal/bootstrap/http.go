package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	controlpanel "github.com/target/control-panel-ui"
	"github.com/target/control-panel-ui/config"
	httpx "github.com/target/control-panel-ui/internal/http"
)

// Frontend directories, relative to the repository root.
const (
	templateDir = "frontend/templates"
	staticDir   = "frontend/static"
)

// FrontendFS returns the template and static file systems. In development they are read
// from disk so edits show up without a rebuild.
func FrontendFS(isDev bool) (templates, static fs.FS, err error) {
	if isDev {
		return os.DirFS(templateDir), os.DirFS(staticDir), nil
	}
	if templates, err = fs.Sub(controlpanel.TemplateFS, templateDir); err != nil {
		return nil, nil, fmt.Errorf("template fs: %w", err)
	}
	if static, err = fs.Sub(controlpanel.StaticFS, staticDir); err != nil {
		return nil, nil, fmt.Errorf("static fs: %w", err)
	}
	return templates, static, nil
}

// BuildHTTPHandler builds the router for the control panel.
func BuildHTTPHandler(cfg *config.AppConfig, services ServiceContainer, logger *slog.Logger) (http.Handler, error) {
	templates, static, err := FrontendFS(cfg.IsDev)
	if err != nil {
		return nil, err
	}

	var compression *httpx.CompressionConfig
	if cfg.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", cfg.HTTP.CompressionLevel)
		compression = &httpx.CompressionConfig{Level: cfg.HTTP.CompressionLevel, Logger: logger}
	}

	rs := httpx.RouterServices{
		Auth:       services.Auth,
		Override:   services.Override,
		Status:     services.Status,
		TemplateFS: templates,
		StaticFS:   static,
		Cookie: httpx.SessionCookie{
			Name:   cfg.Session.CookieName,
			Domain: cfg.HTTP.CookieDomain,
		},
		Health:      services.Health,
		Compression: compression,
		IsDev:       cfg.IsDev,
		Logger:      logger,
	}
	if services.Activity.Enabled() {
		rs.Activity = services.Activity
	}
	return httpx.NewRouter(rs)
}

// NewHTTPServer wraps handler with the panel's server timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Sign-in makes two sequential Control API calls.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// ServeConfig contains what Serve runs and how long shutdown may take.
type ServeConfig struct {
	Server          *http.Server
	Listener        net.Listener // optional; defaults to listening on Server.Addr
	Services        ServiceContainer
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// Serve runs the HTTP server until ctx is done, then shuts it down gracefully and waits
// for pending override announcements.
func Serve(ctx context.Context, cfg ServeConfig) error {
	if cfg.Server == nil {
		return errors.New("serve: server is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ln := cfg.Listener
	if ln == nil {
		var err error
		if ln, err = net.Listen("tcp", cfg.Server.Addr); err != nil {
			return fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", ln.Addr().String())
		if err := cfg.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		if cfg.Services.Override != nil {
			waitOrTimeout(shutdownCtx, cfg.Services.Override.Wait, logger)
		}
		logger.Info("HTTP server stopped")
		return nil
	})
	return g.Wait()
}

func waitOrTimeout(ctx context.Context, wait func(), logger *slog.Logger) {
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn("timeout waiting for override notifications to finish")
	}
}
