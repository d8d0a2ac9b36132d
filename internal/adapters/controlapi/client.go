package controlapi

// Package controlapi is the HTTP client for the external Control API: the password-grant token
// endpoint, the current-user profile, the override endpoints and the system status.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/target/control-panel-ui/internal/domain/auth"
	apperrors "github.com/target/control-panel-ui/internal/errors"
	"golang.org/x/oauth2"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 1 << 20

// Paths groups the endpoint paths relative to the base URL.
type Paths struct {
	Token   string
	Profile string
	Halt    string
	Resume  string
	Status  string
}

// DefaultPaths returns the Control API's standard endpoint paths.
func DefaultPaths() Paths {
	return Paths{
		Token:   "/control/auth/token",
		Profile: "/control/users/me",
		Halt:    "/control/system/override/halt",
		Resume:  "/control/system/override/resume",
		Status:  "/control/system/status",
	}
}

// Options configures a Client.
type Options struct {
	BaseURL  string
	Paths    Paths
	ClientID string
	// Timeout bounds each outbound request. Defaults to 10s.
	Timeout time.Duration
	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
	Mapping   ProfileMapping
	Logger    *slog.Logger
}

// Client implements ports.ControlAPI over HTTP.
type Client struct {
	oauth  oauth2.Config
	base   string
	paths  Paths
	http   *http.Client
	mapper *profileMapper
	logger *slog.Logger
}

// New constructs a Client and compiles the profile mapping expressions.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("control api: base URL is required")
	}
	paths := opts.Paths
	def := DefaultPaths()
	paths.Token = firstNonEmpty(paths.Token, def.Token)
	paths.Profile = firstNonEmpty(paths.Profile, def.Profile)
	paths.Halt = firstNonEmpty(paths.Halt, def.Halt)
	paths.Resume = firstNonEmpty(paths.Resume, def.Resume)
	paths.Status = firstNonEmpty(paths.Status, def.Status)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	mapper, err := newProfileMapper(opts.Mapping)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		oauth: oauth2.Config{
			ClientID: opts.ClientID,
			Endpoint: oauth2.Endpoint{
				TokenURL: base + paths.Token,
				// Credentials go in the form body; auto-detection would retry a refused request.
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		base:   base,
		paths:  paths,
		http:   &http.Client{Timeout: timeout, Transport: opts.Transport},
		mapper: mapper,
		logger: logger.With("component", "controlapi"),
	}, nil
}

// Exchange performs the password grant and then, with the issued token, fetches the current user.
// Nothing is sent when either credential field is empty. The profile is never requested if the
// token request fails, and no identity is returned unless both calls succeed.
func (c *Client) Exchange(ctx context.Context, cred domainauth.Credential) (domainauth.Identity, error) {
	if cred.Blank() {
		field := "password"
		if strings.TrimSpace(cred.Email) == "" {
			field = "email"
		}
		return domainauth.Identity{}, apperrors.InvalidInput(field, field+" is required")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	tok, err := c.oauth.PasswordCredentialsToken(ctx, cred.Email, cred.Password)
	if err != nil {
		return domainauth.Identity{}, classifyTokenError(err)
	}

	profile, err := c.fetchProfile(ctx, tok)
	if err != nil {
		return domainauth.Identity{}, err
	}
	return domainauth.NewIdentity(profile, tok.AccessToken), nil
}

func (c *Client) fetchProfile(ctx context.Context, tok *oauth2.Token) (domainauth.Profile, error) {
	resp, body, err := c.do(ctx, http.MethodGet, c.paths.Profile, tok, nil)
	if err != nil {
		return domainauth.Profile{}, err
	}
	if err = profileStatusError(resp.StatusCode, body); err != nil {
		return domainauth.Profile{}, err
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err = dec.Decode(&doc); err != nil {
		return domainauth.Profile{}, apperrors.Wrap(err, apperrors.ErrCodeUnexpectedResponse, "profile response is not JSON")
	}
	return c.mapper.Map(doc)
}

// do sends one request with the bearer token and reads at most maxBodyBytes of the reply.
func (c *Client) do(
	ctx context.Context,
	method, path string,
	tok *oauth2.Token,
	payload any,
) (*http.Response, []byte, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	tok.SetAuthHeader(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "control api request failed", "method", method, "path", path, "error", err)
		return nil, nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, classifyTransportError(err)
	}
	c.logger.DebugContext(ctx, "control api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, data, nil
}

func bearer(accessToken string) *oauth2.Token {
	return &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
}

func firstNonEmpty(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
