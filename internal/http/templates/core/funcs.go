// Package core provides the template helpers shared by every page.
package core

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/target/control-panel-ui/internal/http/uiutil"
)

// Deps holds the dependencies for constructing the core template func map.
type Deps struct {
	// Template points at the parsed set once parsing finishes; renderSection executes against it.
	Template           **template.Template
	ContentTemplateFor func(string) string
	Now                func() time.Time
}

// Funcs returns the core template helpers.
func Funcs(deps Deps) template.FuncMap {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return template.FuncMap{
		"renderSection": renderSection(deps),
		"relativeTime":  func(t time.Time) string { return uiutil.RelativeTime(t, now()) },
		"dateTime":      uiutil.FormatDateTime,
		"timeTag":       timeTag,
		"uptime":        uiutil.FormatUptime,
		"truncate":      func(s string, n int) string { return uiutil.Truncate(s, n) },
		"healthClass":   HealthClass,
		"upper":         strings.ToUpper,
	}
}

func renderSection(deps Deps) func(string, any) (template.HTML, error) {
	return func(page string, data any) (template.HTML, error) {
		if deps.Template == nil || *deps.Template == nil {
			return "", errors.New("template not initialized")
		}
		var buf bytes.Buffer
		if err := (*deps.Template).ExecuteTemplate(&buf, deps.ContentTemplateFor(page), data); err != nil {
			return "", err
		}
		// #nosec G203 - output of our own html/template execution; values were escaped there.
		return template.HTML(buf.String()), nil
	}
}

func timeTag(t time.Time) template.HTML {
	if t.IsZero() {
		return ""
	}
	// #nosec G203 - built only from escaped, server-formatted timestamps
	return template.HTML(fmt.Sprintf(
		"<time datetime=\"%s\" title=\"%s\">%s</time>",
		t.UTC().Format(time.RFC3339),
		template.HTMLEscapeString(t.Local().Format(time.RFC1123)),
		template.HTMLEscapeString(uiutil.FormatDateTime(t)),
	))
}

// HealthClass maps a status or health string onto a badge modifier class.
func HealthClass(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "operational", "healthy", "ok", "accepted":
		return "badge--ok"
	case "degraded", "warning", "sent":
		return "badge--warn"
	case "halt", "halted", "down", "unhealthy", "failed", "rejected":
		return "badge--critical"
	default:
		return "badge--neutral"
	}
}
