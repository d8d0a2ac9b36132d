package devapi

// Package devapi is a config-driven, in-process stand-in for the Control API used in local
// development (CONTROL_API_MODE=mock) and as the fake backend in tests. It speaks the same
// HTTP contract as the real service so the production client is exercised end to end.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Account is one user the stand-in accepts.
type Account struct {
	Email    string
	Password string
	// Token is the bearer token issued on sign-in. A random token is issued when empty.
	Token string
	// Profile is returned verbatim from the current-user endpoint.
	Profile map[string]any
}

// Config controls the stand-in's behavior.
type Config struct {
	Accounts         []Account
	ConfirmationCode string
	Version          string
	Logger           *slog.Logger
	Now              func() time.Time
}

// API implements the Control API routes used by the panel.
type API struct {
	mu       sync.Mutex
	accounts map[string]Account
	tokens   map[string]Account
	code     string
	version  string
	status   string
	started  time.Time
	now      func() time.Time
	logger   *slog.Logger
}

const (
	statusActive = "ACTIVE"
	statusHalt   = "HALT"
)

// New constructs the stand-in from Config.
func New(cfg Config) (*API, error) {
	if len(cfg.Accounts) == 0 {
		return nil, errors.New("dev api: at least one account is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := &API{
		accounts: make(map[string]Account, len(cfg.Accounts)),
		tokens:   make(map[string]Account),
		code:     cfg.ConfirmationCode,
		version:  cfg.Version,
		status:   statusActive,
		started:  now(),
		now:      now,
		logger:   logger.With("component", "devapi"),
	}
	if a.version == "" {
		a.version = "v11.0.0"
	}
	for _, acct := range cfg.Accounts {
		if acct.Email == "" || acct.Password == "" {
			return nil, errors.New("dev api: account email and password are required")
		}
		a.accounts[acct.Email] = acct
	}
	return a, nil
}

// Handler returns the routes of the Control API contract.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /control/auth/token", a.token)
	mux.HandleFunc("GET /control/users/me", a.me)
	mux.HandleFunc("POST /control/system/override/halt", a.override(statusHalt))
	mux.HandleFunc("POST /control/system/override/resume", a.override(statusActive))
	mux.HandleFunc("GET /control/system/status", a.systemStatus)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "control_panel_backend"})
	})
	return mux
}

// Start serves the stand-in on addr (use "127.0.0.1:0" for an ephemeral port) until ctx is done.
// It returns the base URL to point the client at.
func (a *API) Start(ctx context.Context, addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("dev api listen: %w", err)
	}
	srv := &http.Server{Handler: a.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if serveErr := srv.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			a.logger.Error("dev api stopped", "error", serveErr)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	base := "http://" + ln.Addr().String()
	a.logger.Info("dev api listening", "url", base)
	return base, nil
}

func (a *API) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid form body")
		return
	}
	username, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	if username == "" || password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	a.mu.Lock()
	acct, ok := a.accounts[username]
	a.mu.Unlock()
	if !ok || acct.Password != password {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	tok := acct.Token
	if tok == "" {
		var err error
		if tok, err = randomString(24); err != nil {
			writeDetail(w, http.StatusInternalServerError, "token generation failed")
			return
		}
	}
	a.mu.Lock()
	a.tokens[tok] = acct
	a.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"access_token": tok, "token_type": "bearer"})
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	acct, ok := a.bearer(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, acct.Profile)
}

// overrideBody mirrors the API's SystemOverrideRequest.
type overrideBody struct {
	Action           string `json:"action"`
	Reason           string `json:"reason"`
	ConfirmationCode string `json:"confirmation_code"`
}

func (a *API) override(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acct, ok := a.bearer(w, r)
		if !ok {
			return
		}
		if role, _ := acct.Profile["role"].(string); role != "admin" {
			writeDetail(w, http.StatusForbidden, "Not enough permissions")
			return
		}
		var body overrideBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Reason == "" {
			writeDetail(w, http.StatusUnprocessableEntity, "reason is required")
			return
		}
		if target == statusHalt && body.ConfirmationCode != a.code {
			writeDetail(w, http.StatusForbidden, "Invalid confirmation code")
			return
		}

		a.mu.Lock()
		a.status = target
		a.mu.Unlock()

		msg := "System operations resumed."
		if target == statusHalt {
			msg = "EDWARD OVERRIDE ALPHA activated. System HALTED."
		}
		a.logger.Info("override applied", "status", target, "by", acct.Email)
		writeJSON(w, http.StatusOK, map[string]string{
			"message":      msg,
			"status":       target,
			"initiated_by": acct.Email,
			"timestamp":    a.now().UTC().Format(time.RFC3339),
		})
	}
}

func (a *API) systemStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.bearer(w, r); !ok {
		return
	}
	a.mu.Lock()
	status := a.status
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"status": status,
		"services": map[string]string{
			"control_panel": "healthy",
			"redis":         "healthy",
			"database":      "healthy",
			"agno_service":  "unknown",
			"mcp_server":    "unknown",
		},
		"uptime":  a.now().Sub(a.started).Seconds(),
		"version": a.version,
	})
}

func (a *API) bearer(w http.ResponseWriter, r *http.Request) (Account, bool) {
	tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if ok {
		a.mu.Lock()
		acct, found := a.tokens[tok]
		a.mu.Unlock()
		if found {
			return acct, true
		}
	}
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
	return Account{}, false
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// randomString returns a URL-safe base64 string from n random bytes.
func randomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
