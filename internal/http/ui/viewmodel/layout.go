package viewmodel

import domainauth "github.com/target/control-panel-ui/internal/domain/auth"

// AppTitle is the product name shown in the browser title and header.
const AppTitle = "EPIC V11 Control Panel"

// User represents the authenticated user context exposed to templates.
// The bearer token is never copied here.
type User struct {
	Name  string
	Email string
	Role  string
}

// NewUser projects a session onto the template-safe user view.
func NewUser(sess *domainauth.Session) *User {
	if sess == nil {
		return nil
	}
	return &User{Name: sess.Name, Email: sess.Email, Role: string(sess.Role)}
}

// Layout captures shared chrome metadata (titles, navigation state, auth flags).
type Layout struct {
	Title           string
	PageTitle       string
	CurrentPage     string
	CSRFToken       string
	IsAuthenticated bool
	User            *User
}

// LayoutData implements LayoutProvider.
func (l *Layout) LayoutData() *Layout { return l }

// LayoutProvider exposes layout metadata for renderer utilities.
type LayoutProvider interface {
	LayoutData() *Layout
}

// SignIn is the sign-in page and the sign-in failure page.
type SignIn struct {
	Layout
	Email        string
	RedirectURI  string
	ErrorCode    string
	ErrorMessage string
}

// SignedOut is shown after sign-out or when an htmx request finds the session gone.
type SignedOut struct {
	Layout
	RedirectURI string
}

// NotFound is the 404 page.
type NotFound struct {
	Layout
	Path string
}
