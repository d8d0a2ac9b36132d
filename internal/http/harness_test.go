package httpx

import (
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	controlpanel "github.com/target/control-panel-ui"
	"github.com/target/control-panel-ui/internal/adapters/controlapi"
	"github.com/target/control-panel-ui/internal/adapters/sessiontoken"
	domainauth "github.com/target/control-panel-ui/internal/domain/auth"
	"github.com/target/control-panel-ui/internal/service"
	"github.com/target/control-panel-ui/internal/testutil"
)

const testCSRFToken = "csrf-test-token"

type htmlNode = html.Node

// panelHarness is the router wired to real services against a fake Control API.
type panelHarness struct {
	t        *testing.T
	api      *testutil.FakeControlAPI
	auth     *service.AuthService
	override *service.OverrideService
	codec    *sessiontoken.Codec
	handler  http.Handler
}

type harnessOption func(*RouterServices)

func withActivity(a ActivityService) harnessOption {
	return func(s *RouterServices) { s.Activity = a }
}

func withHealth(h HealthChecks) harnessOption {
	return func(s *RouterServices) { s.Health = h }
}

func withLogger(l *slog.Logger) harnessOption {
	return func(s *RouterServices) { s.Logger = l }
}

func withCompression() harnessOption {
	return func(s *RouterServices) { s.Compression = &CompressionConfig{} }
}

func newPanelHarness(t *testing.T, opts ...harnessOption) *panelHarness {
	t.Helper()
	api := testutil.NewFakeControlAPI(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client, err := controlapi.New(controlapi.Options{
		BaseURL: api.URL,
		Timeout: 2 * time.Second,
		Logger:  logger,
	})
	require.NoError(t, err)
	codec, err := sessiontoken.NewCodec(sessiontoken.Options{
		Secret: []byte(strings.Repeat("s", 32)),
		Issuer: "control-panel-test",
	})
	require.NoError(t, err)

	obs := service.Observers{Logger: logger}
	authSvc := service.NewAuthService(service.AuthServiceOptions{
		Exchanger: client,
		Sessions:  service.SessionDeps{Codec: codec, TTL: time.Hour},
		Observers: obs,
	})
	overrideSvc := service.NewOverrideService(service.OverrideServiceOptions{Client: client, Observers: obs})
	t.Cleanup(overrideSvc.Wait)
	statusSvc := service.NewStatusService(service.StatusServiceOptions{Client: client, Observers: obs})

	rs := RouterServices{
		Auth:       authSvc,
		Override:   overrideSvc,
		Status:     statusSvc,
		TemplateFS: subFS(t, controlpanel.TemplateFS, "frontend/templates"),
		StaticFS:   subFS(t, controlpanel.StaticFS, "frontend/static"),
		Logger:     logger,
	}
	for _, opt := range opts {
		opt(&rs)
	}
	handler, err := NewRouter(rs)
	require.NoError(t, err)

	return &panelHarness{t: t, api: api, auth: authSvc, override: overrideSvc, codec: codec, handler: handler}
}

func subFS(t *testing.T, fsys fs.FS, dir string) fs.FS {
	t.Helper()
	sub, err := fs.Sub(fsys, dir)
	require.NoError(t, err)
	return sub
}

func (h *panelHarness) serve(r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, r)
	return rec
}

// signIn posts the credentials and returns the session token from the response cookie.
func (h *panelHarness) signIn(email, password string) string {
	h.t.Helper()
	rec := h.serve(formRequest(http.MethodPost, "/auth/login", url.Values{
		"email":    {email},
		"password": {password},
	}))
	require.Equal(h.t, http.StatusSeeOther, rec.Code, rec.Body.String())
	c := responseCookie(rec, DefaultSessionCookieName)
	require.NotNil(h.t, c, "session cookie not set")
	return c.Value
}

func (h *panelHarness) signInAdmin() string {
	a := testutil.AdminAccount()
	return h.signIn(a.Email, a.Password)
}

func (h *panelHarness) signInOperator() string {
	a := testutil.OperatorAccount()
	return h.signIn(a.Email, a.Password)
}

// sessionWithRole mints a session token for an arbitrary role, bypassing sign-in.
// The bearer token is the operator's, so Control API reads still succeed.
func (h *panelHarness) sessionWithRole(role domainauth.Role) string {
	h.t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	token, err := h.codec.Encode(domainauth.Session{
		ID:          "sess-" + string(role),
		UserID:      "42",
		Email:       "someone@example.com",
		Name:        "Some One",
		Role:        role,
		AccessToken: testutil.OperatorAccount().Token,
		IssuedAt:    now,
		ExpiresAt:   now.Add(time.Hour),
	})
	require.NoError(h.t, err)
	return token
}

// formRequest builds a form post carrying a matching CSRF cookie and field.
func formRequest(method, target string, form url.Values) *http.Request {
	if form == nil {
		form = url.Values{}
	}
	form.Set(DefaultCSRFCookieName, testCSRFToken)
	r := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
	return r
}

func getRequest(target string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	r.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
	return r
}

func withSession(r *http.Request, token string) *http.Request {
	r.AddCookie(&http.Cookie{Name: DefaultSessionCookieName, Value: token})
	return r
}

func asHTMX(r *http.Request) *http.Request {
	r.Header.Set("Hx-Request", "true")
	return r
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func parseHTML(t *testing.T, body string) *htmlNode {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func findByID(n *html.Node, id string) *html.Node {
	found := findAll(n, func(n *html.Node) bool {
		v, ok := attr(n, "id")
		return ok && v == id
	})
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

func withAttr(key string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		_, ok := attr(n, key)
		return ok
	}
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
