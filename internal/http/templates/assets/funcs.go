// Package assets provides the template helpers for static asset URLs.
package assets

import (
	"html/template"

	httpassets "github.com/target/control-panel-ui/internal/http/assets"
)

// Funcs returns the "asset" helper, which resolves a logical name to a versioned URL.
func Funcs(resolver *httpassets.AssetResolver) template.FuncMap {
	return template.FuncMap{
		"asset": resolver.Resolve,
	}
}
