package httpx

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	domainauth "github.com/target/control-panel-ui/internal/domain/auth"
	apperrors "github.com/target/control-panel-ui/internal/errors"
	"github.com/target/control-panel-ui/internal/http/ui/viewmodel"
)

// DefaultSessionCookieName is used when SessionCookie.Name is empty.
const DefaultSessionCookieName = "session_token"

// signInFailed is the error code shown for failures without a more specific code.
const signInFailed = "sign_in_failed"

//nolint:gochecknoglobals // static read-only lookup of sign-in failure messages
var signInMessages = map[string]string{
	string(apperrors.ErrCodeInvalidInput):       "Enter your email and password.",
	string(apperrors.ErrCodeUnauthorized):       "Invalid email or password.",
	string(apperrors.ErrCodeServiceUnavailable): "The control service is unavailable. Try again shortly.",
	string(apperrors.ErrCodeUnexpectedResponse): "The control service returned an unexpected response. Try again or contact an administrator.",

	signInFailed: "Sign-in failed. Try again.",
}

// SignInMessage returns the user-facing message for a sign-in error code and the
// code it was normalised to. Unknown codes map to a generic failure.
func SignInMessage(code string) (string, string) {
	if msg, ok := signInMessages[code]; ok {
		return msg, code
	}
	return signInMessages[signInFailed], signInFailed
}

// SessionCookie describes the HttpOnly cookie carrying the session token.
type SessionCookie struct {
	Name   string
	Domain string
}

func (c SessionCookie) name() string {
	if c.Name == "" {
		return DefaultSessionCookieName
	}
	return c.Name
}

func (c SessionCookie) read(r *http.Request) string {
	return cookieValue(r, c.name())
}

func (c SessionCookie) set(w http.ResponseWriter, r *http.Request, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     c.name(),
		Value:    token,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
	if !expires.IsZero() {
		cookie.Expires = expires
		cookie.MaxAge = int(time.Until(expires).Seconds())
	}
	http.SetCookie(w, cookie)
}

func (c SessionCookie) clear(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

// AuthHandlers serves sign-in, sign-out and the session view.
type AuthHandlers struct {
	Svc    AuthService
	Cookie SessionCookie
	Pages  *Pages
	Logger *slog.Logger
}

// LoginPage renders the sign-in form, or sends signed-in users on.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	redirect := safeRedirectPath(r.URL.Query().Get("redirect_uri"))
	if _, ok := GetUserSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}
	h.Pages.Render(w, r, http.StatusOK, &viewmodel.SignIn{
		Layout:      h.Pages.Layout(r, PageSignIn, "Sign in"),
		RedirectURI: redirect,
	})
}

// Login exchanges the submitted credentials for a session. Failure sends the browser to
// /auth/error?error=<code>; success sets the session cookie and goes to the redirect target.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		Navigate(w, r, signInErrorURL(string(apperrors.ErrCodeInvalidInput)))
		return
	}
	cred := domainauth.Credential{
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	}

	res, err := h.Svc.SignIn(r.Context(), cred)
	if err != nil {
		code := string(apperrors.GetCode(err))
		if code == "" {
			code = signInFailed
		}
		h.logger().InfoContext(r.Context(), "sign-in failed", slog.String("code", code))
		Navigate(w, r, signInErrorURL(code))
		return
	}

	h.Cookie.set(w, r, res.Token, res.Session.ExpiresAt)
	Navigate(w, r, safeRedirectPath(r.PostForm.Get("redirect_uri")))
}

// ErrorPage renders the sign-in form with the message for the failure code.
func (h *AuthHandlers) ErrorPage(w http.ResponseWriter, r *http.Request) {
	msg, code := SignInMessage(r.URL.Query().Get("error"))
	h.Pages.Render(w, r, http.StatusOK, &viewmodel.SignIn{
		Layout:       h.Pages.Layout(r, PageAuthError, "Sign-in failed"),
		RedirectURI:  "/",
		ErrorCode:    code,
		ErrorMessage: msg,
	})
}

// Logout revokes the session (when one is present), clears the cookie and shows the signed-out page.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := GetUserSessionFromContext(r.Context()); ok {
		if err := h.Svc.Logout(r.Context(), *sess); err != nil {
			h.logger().WarnContext(r.Context(), "session revoke failed", slog.Any("error", err))
		}
	}
	h.Cookie.clear(w, r)
	Navigate(w, r, "/auth/signed-out")
}

// SignedOut renders the post sign-out page.
func (h *AuthHandlers) SignedOut(w http.ResponseWriter, r *http.Request) {
	page := &viewmodel.SignedOut{Layout: h.Pages.Layout(r, PageSignedOut, "Signed out")}
	if raw := r.URL.Query().Get("redirect_uri"); raw != "" {
		page.RedirectURI = safeRedirectPath(raw)
	}
	h.Pages.Render(w, r, http.StatusOK, page)
}

// sessionView is the JSON projection of a session. The bearer token is never included.
type sessionView struct {
	Authenticated bool       `json:"authenticated"`
	User          *userView  `json:"user,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Session returns the signed-in user as JSON, or {"authenticated": false}.
func (h *AuthHandlers) Session(w http.ResponseWriter, r *http.Request) {
	sess, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		WriteJSON(w, http.StatusOK, sessionView{})
		return
	}
	view := sessionView{
		Authenticated: true,
		User: &userView{
			ID:    sess.UserID,
			Email: sess.Email,
			Name:  sess.Name,
			Role:  string(sess.Role),
		},
	}
	if !sess.ExpiresAt.IsZero() {
		exp := sess.ExpiresAt.UTC()
		view.ExpiresAt = &exp
	}
	WriteJSON(w, http.StatusOK, view)
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

func signInErrorURL(code string) string {
	return "/auth/error?error=" + url.QueryEscape(code)
}
