package httpx

import (
	"bytes"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	httpassets "github.com/target/control-panel-ui/internal/http/assets"
	assetfuncs "github.com/target/control-panel-ui/internal/http/templates/assets"
	corefuncs "github.com/target/control-panel-ui/internal/http/templates/core"
)

// TemplateRenderer renders HTML templates for UI responses.
type TemplateRenderer struct {
	t        *template.Template
	fsys     fs.FS
	resolver *httpassets.AssetResolver
	devMode  bool
	now      func() time.Time
	logger   *slog.Logger
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	TemplateFS fs.FS                     // Filesystem containing templates (required)
	Resolver   *httpassets.AssetResolver // Versioned static asset URLs (optional)
	DevMode    bool                      // Re-parse templates on every render
	Now        func() time.Time          // Clock for relative times (optional)
	Logger     *slog.Logger              // Logger for template errors (optional)
}

// NewTemplateRenderer parses the layout, pages and partials from cfg.TemplateFS.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	if cfg.TemplateFS == nil {
		return nil, errors.New("TemplateFS is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	renderer := &TemplateRenderer{
		fsys:     cfg.TemplateFS,
		resolver: cfg.Resolver,
		devMode:  cfg.DevMode,
		now:      now,
		logger:   logger,
	}
	t, err := renderer.parse()
	if err != nil {
		logger.Error("template parsing failed",
			slog.Any("error", err),
			slog.String("phase", "initialization"),
		)
		return nil, err
	}
	renderer.t = t
	return renderer, nil
}

func (r *TemplateRenderer) parse() (*template.Template, error) {
	var t *template.Template
	funcs := template.FuncMap{}
	for _, src := range []template.FuncMap{
		corefuncs.Funcs(corefuncs.Deps{
			Template:           &t,
			ContentTemplateFor: ContentTemplateFor,
			Now:                r.now,
		}),
		assetfuncs.Funcs(r.resolver),
	} {
		for name, fn := range src {
			funcs[name] = fn
		}
	}

	parsed, err := template.New("root").Funcs(funcs).ParseFS(r.fsys,
		"*.tmpl",
		"pages/*.tmpl",
		"partials/*.tmpl",
	)
	if err != nil {
		return nil, err
	}
	t = parsed
	return t, nil
}

func (r *TemplateRenderer) templates() (*template.Template, error) {
	if !r.devMode {
		return r.t, nil
	}
	return r.parse()
}

// RenderFull renders the full page (layout + page content).
func (r *TemplateRenderer) RenderFull(w http.ResponseWriter, status int, data any) error {
	return r.render(w, renderTarget{name: templateLayout, status: status}, data)
}

// RenderPartial renders only the main content area.
func (r *TemplateRenderer) RenderPartial(w http.ResponseWriter, status int, data any) error {
	return r.render(w, renderTarget{name: templateContent, status: status}, data)
}

// RenderFragment renders a named fragment with status 200.
func (r *TemplateRenderer) RenderFragment(w http.ResponseWriter, name string, data any) error {
	return r.render(w, renderTarget{name: name, status: http.StatusOK}, data)
}

type renderTarget struct {
	name   string
	status int
}

// render executes into a buffer first so a template error never produces a half-written page.
func (r *TemplateRenderer) render(w http.ResponseWriter, target renderTarget, data any) error {
	t, err := r.templates()
	if err != nil {
		r.logger.Error("template reload failed", slog.Any("error", err))
		return err
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, target.name, data); err != nil {
		r.logger.Error("template execution failed",
			slog.String("template", target.name),
			slog.Any("error", err),
		)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if target.status != 0 {
		w.WriteHeader(target.status)
	}
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Debug("failed to write rendered template",
			slog.String("template", target.name),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}
