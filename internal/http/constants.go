package httpx

// Page identifiers used as Layout.CurrentPage.
const (
	PageSignIn    = "signin"
	PageAuthError = "auth-error"
	PageSignedOut = "signed-out"
	PageDashboard = "dashboard"
	PageNotFound  = "not-found"
)

// Fragment templates rendered on their own for htmx swaps.
const (
	TemplateStatusWidget  = "status-widget"
	TemplateOverrideForm  = "override-form"
	TemplateActivityFeed  = "activity-feed"
	templateLayout        = "layout"
	templateContent       = "content"
	defaultContentSection = "dashboard-content"
)

//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageSignIn:    "signin-content",
	PageAuthError: "signin-content",
	PageSignedOut: "signed-out-content",
	PageDashboard: "dashboard-content",
	PageNotFound:  "not-found-content",
}

// ContentTemplateFor returns the content template for the given CurrentPage.
// Falls back to dashboard-content for unknown pages.
func ContentTemplateFor(currentPage string) string {
	if name, ok := contentTemplates[currentPage]; ok {
		return name
	}
	return defaultContentSection
}
