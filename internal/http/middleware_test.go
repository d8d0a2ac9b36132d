package httpx

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/control-panel-ui/internal/domain/auth"
	apperrors "github.com/target/control-panel-ui/internal/errors"
)

type sessionReaderFunc func(ctx context.Context, token string) (domainauth.Session, error)

func (f sessionReaderFunc) GetSession(ctx context.Context, token string) (domainauth.Session, error) {
	return f(ctx, token)
}

func staticSessions(sessions map[string]domainauth.Session) SessionReader {
	return sessionReaderFunc(func(_ context.Context, token string) (domainauth.Session, error) {
		if sess, ok := sessions[token]; ok {
			return sess, nil
		}
		return domainauth.Session{}, apperrors.Unauthorized("invalid session token")
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := GetUserSessionFromContext(r.Context())
		if sess != nil {
			_, _ = w.Write([]byte(sess.UserID))
			return
		}
		_, _ = w.Write([]byte("anonymous"))
	})
}

func TestSafeRedirectPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/dashboard", "/dashboard"},
		{"/dashboard?tab=status", "/dashboard?tab=status"},
		{"//evil.example.com", "/"},
		{"/\\evil.example.com", "/"},
		{"https://evil.example.com/", "/"},
		{"javascript:alert(1)", "/"},
		{"dashboard", "/"},
		{"/auth/login", "/"},
		{"/auth/logout", "/"},
		{"/override/halt", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, safeRedirectPath(tt.in))
		})
	}
}

func TestSafeRedirectFromURL(t *testing.T) {
	assert.Equal(t, "/dashboard?x=1", safeRedirectFromURL("https://panel.example.com/dashboard?x=1"))
	assert.Equal(t, "/dashboard", safeRedirectFromURL("/dashboard"))
	assert.Empty(t, safeRedirectFromURL(""))
	assert.Equal(t, "/", safeRedirectFromURL("https://panel.example.com/auth/login"))
}

func TestRequireAuthBrowser(t *testing.T) {
	reader := staticSessions(map[string]domainauth.Session{
		"good": {ID: "s1", UserID: "7", Role: domainauth.RoleOperator},
	})
	mw := RequireAuthBrowser(reader, SessionCookie{}, discardLogger())

	t.Run("live session passes through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rec, withSession(httptest.NewRequest(http.MethodGet, "/dashboard", nil), "good"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "7", rec.Body.String())
	})

	t.Run("no cookie redirects to sign-in with return path", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard?tab=1", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/auth/login?redirect_uri=%2Fdashboard%3Ftab%3D1", rec.Header().Get("Location"))
	})

	t.Run("bad cookie is cleared", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rec, withSession(httptest.NewRequest(http.MethodGet, "/", nil), "forged"))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		c := responseCookie(rec, DefaultSessionCookieName)
		require.NotNil(t, c)
		assert.Empty(t, c.Value)
		assert.Negative(t, c.MaxAge)
	})

	t.Run("post without session goes to plain sign-in", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/override/halt", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
	})

	t.Run("htmx gets Hx-Redirect to the signed-out page", func(t *testing.T) {
		r := asHTMX(httptest.NewRequest(http.MethodGet, "/dashboard/status", nil))
		r.Header.Set("Hx-Current-Url", "https://panel.example.com/dashboard")
		rec := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rec, r)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/auth/signed-out?redirect_uri=%2Fdashboard", rec.Header().Get("Hx-Redirect"))
		assert.Empty(t, rec.Body.String())
	})

	t.Run("session store outage fails closed", func(t *testing.T) {
		down := sessionReaderFunc(func(context.Context, string) (domainauth.Session, error) {
			return domainauth.Session{}, apperrors.ServiceUnavailable("session store unavailable")
		})
		rec := httptest.NewRecorder()
		RequireAuthBrowser(down, SessionCookie{}, discardLogger())(okHandler()).
			ServeHTTP(rec, withSession(httptest.NewRequest(http.MethodGet, "/", nil), "good"))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
	})
}

func TestOptionalAuth(t *testing.T) {
	reader := staticSessions(map[string]domainauth.Session{"good": {ID: "s1", UserID: "7"}})
	h := OptionalAuth(reader, SessionCookie{})(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	assert.Equal(t, "anonymous", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, withSession(httptest.NewRequest(http.MethodGet, "/auth/login", nil), "good"))
	assert.Equal(t, "7", rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	sessions := map[string]domainauth.Session{
		"admin":    {ID: "a", UserID: "1", Role: domainauth.RoleAdmin},
		"operator": {ID: "o", UserID: "2", Role: domainauth.RoleOperator},
		"Admin":    {ID: "c", UserID: "3", Role: "Admin"},
		"empty":    {ID: "e", UserID: "4", Role: ""},
	}
	h := Chain(okHandler(),
		RequireAuthBrowser(staticSessions(sessions), SessionCookie{}, discardLogger()),
		RequireRole(domainauth.RoleAdmin),
	)

	for token, want := range map[string]int{
		"admin":    http.StatusOK,
		"operator": http.StatusForbidden,
		"Admin":    http.StatusForbidden,
		"empty":    http.StatusForbidden,
	} {
		t.Run(token, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, withSession(httptest.NewRequest(http.MethodPost, "/override/halt", nil), token))
			assert.Equal(t, want, rec.Code)
			if want == http.StatusForbidden {
				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, "forbidden", body["error"])
			}
		})
	}
}

func TestChain_FirstIsOutermost(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	Chain(okHandler(), mark("outer"), mark("inner")).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestRecover(t *testing.T) {
	h := Recover(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	abort := Recover(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		abort.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestLogging_SetsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	rec := httptest.NewRecorder()
	Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/error?error=unauthorized", nil))

	id := rec.Header().Get("X-Request-Id")
	require.NotEmpty(t, id)
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, id, line["request_id"])
	assert.Equal(t, "/auth/error", line["path"])
	assert.EqualValues(t, http.StatusTeapot, line["status"])
	assert.NotContains(t, buf.String(), "unauthorized")
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders()(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
}

func TestCompression(t *testing.T) {
	page := strings.Repeat("<p>EPIC V11</p>", 200)
	h := Compression(CompressionConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))

	t.Run("gzip when accepted", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Accept-Encoding", "br;q=1.0, gzip;q=0.8")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)

		assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
		assert.Contains(t, rec.Header().Values("Vary"), "Accept-Encoding")
		zr, err := gzip.NewReader(rec.Body)
		require.NoError(t, err)
		plain, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Equal(t, page, string(plain))
	})

	t.Run("identity otherwise", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Equal(t, page, rec.Body.String())
	})

	t.Run("binary content is left alone", func(t *testing.T) {
		png := Compression(CompressionConfig{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
		}))
		r := httptest.NewRequest(http.MethodGet, "/static/logo.png", nil)
		r.Header.Set("Accept-Encoding", "gzip")
		rec := httptest.NewRecorder()
		png.ServeHTTP(rec, r)
		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, rec.Body.Bytes())
	})
}

func TestLimitBody(t *testing.T) {
	h := LimitBody(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("reason="+strings.Repeat("x", 64)))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
