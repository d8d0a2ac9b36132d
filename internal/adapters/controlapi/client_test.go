package controlapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainauth "github.com/target/control-panel-ui/internal/domain/auth"
	"github.com/target/control-panel-ui/internal/domain/override"
	apperrors "github.com/target/control-panel-ui/internal/errors"
	"github.com/target/control-panel-ui/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(Options{BaseURL: baseURL, Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c
}

func TestExchange_EmptyCredentialsMakeNoCalls(t *testing.T) {
	fake := testutil.NewFakeControlAPI(t)
	c := newClient(t, fake.URL)

	tests := []struct {
		name  string
		cred  domainauth.Credential
		field string
	}{
		{"both empty", domainauth.Credential{}, "email"},
		{"empty email", domainauth.Credential{Password: "correct"}, "email"},
		{"blank email", domainauth.Credential{Email: "  ", Password: "correct"}, "email"},
		{"empty password", domainauth.Credential{Email: "user@example.com"}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := c.Exchange(context.Background(), tt.cred)
			require.Error(t, err)
			assert.True(t, apperrors.IsInvalidInput(err))
			assert.Equal(t, tt.field, apperrors.GetField(err))
			assert.Equal(t, domainauth.Identity{}, id)
		})
	}
	assert.Equal(t, 0, fake.TotalCalls())
}

func TestExchange_Success(t *testing.T) {
	fake := testutil.NewFakeControlAPI(t)
	c := newClient(t, fake.URL)

	id, err := c.Exchange(context.Background(), domainauth.Credential{Email: "user@example.com", Password: "correct"})
	require.NoError(t, err)
	assert.Equal(t, domainauth.Identity{
		UserID:      "1",
		Email:       "user@example.com",
		Name:        "User One",
		Role:        domainauth.RoleAdmin,
		AccessToken: "tok123",
	}, id)
	assert.Equal(t, 1, fake.Calls(testutil.TokenPath))
	assert.Equal(t, 1, fake.Calls(testutil.ProfilePath))
}

func TestExchange_TokenFailureSkipsProfile(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode apperrors.ErrorCode
	}{
		{"bad credentials", http.StatusUnauthorized, `{"detail":"Incorrect username or password"}`, apperrors.ErrCodeUnauthorized},
		{"invalid grant", http.StatusBadRequest, `{"error":"invalid_grant"}`, apperrors.ErrCodeUnauthorized},
		{"server error", http.StatusInternalServerError, `{"detail":"boom"}`, apperrors.ErrCodeServiceUnavailable},
		{"bad gateway", http.StatusBadGateway, ``, apperrors.ErrCodeServiceUnavailable},
		{"teapot", http.StatusTeapot, `{}`, apperrors.ErrCodeUnexpectedResponse},
		{"missing token", http.StatusOK, `{"token_type":"bearer"}`, apperrors.ErrCodeUnexpectedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := testutil.NewFakeControlAPI(t)
			fake.Fail(testutil.TokenPath, tt.status, tt.body)
			c := newClient(t, fake.URL)

			id, err := c.Exchange(context.Background(), domainauth.Credential{Email: "user@example.com", Password: "correct"})
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.GetCode(err))
			assert.Equal(t, domainauth.Identity{}, id)
			assert.Equal(t, 1, fake.Calls(testutil.TokenPath), "single attempt, no retry")
			assert.Equal(t, 0, fake.Calls(testutil.ProfilePath))
		})
	}
}

func TestExchange_WrongPasswordAgainstRealContract(t *testing.T) {
	fake := testutil.NewFakeControlAPI(t)
	c := newClient(t, fake.URL)

	_, err := c.Exchange(context.Background(), domainauth.Credential{Email: "user@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Equal(t, 0, fake.Calls(testutil.ProfilePath))
}

func TestExchange_ProfileFailureYieldsNoIdentity(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode apperrors.ErrorCode
	}{
		{"unauthorized", http.StatusUnauthorized, `{"detail":"Could not validate credentials"}`, apperrors.ErrCodeUnauthorized},
		{"server error", http.StatusServiceUnavailable, ``, apperrors.ErrCodeServiceUnavailable},
		{"not found", http.StatusNotFound, `{"detail":"Not Found"}`, apperrors.ErrCodeUnexpectedResponse},
		{"not json", http.StatusOK, `<html>`, apperrors.ErrCodeUnexpectedResponse},
		{"not an object", http.StatusOK, `["x"]`, apperrors.ErrCodeUnexpectedResponse},
		{"missing id", http.StatusOK, `{"email":"user@example.com","role":"admin"}`, apperrors.ErrCodeUnexpectedResponse},
		{"missing email", http.StatusOK, `{"id":"1","role":"admin"}`, apperrors.ErrCodeUnexpectedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := testutil.NewFakeControlAPI(t)
			fake.Fail(testutil.ProfilePath, tt.status, tt.body)
			c := newClient(t, fake.URL)

			id, err := c.Exchange(context.Background(), domainauth.Credential{Email: "user@example.com", Password: "correct"})
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.GetCode(err))
			assert.Equal(t, domainauth.Identity{}, id)
			assert.Equal(t, 1, fake.Calls(testutil.TokenPath))
			assert.Equal(t, 1, fake.Calls(testutil.ProfilePath))
		})
	}
}

func TestExchange_SendsFormAndBearer(t *testing.T) {
	var gotForm, gotAuth, gotContentType string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /control/auth/token", func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm.Encode()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok123","token_type":"bearer"}`))
	})
	mux.HandleFunc("GET /control/users/me", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":42,"email":"user@example.com","full_name":"User One","role":"viewer"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	id, err := newClient(t, srv.URL).Exchange(context.Background(), domainauth.Credential{Email: "user@example.com", Password: "p&ss word"})
	require.NoError(t, err)

	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "grant_type=password&password=p%26ss+word&username=user%40example.com", gotForm)
	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.Equal(t, "42", id.UserID, "numeric ids are rendered as decimal strings")
	assert.Equal(t, domainauth.RoleViewer, id.Role)
}

func TestExchange_TimeoutIsServiceUnavailable(t *testing.T) {
	fake := testutil.NewFakeControlAPI(t)
	fake.Delay(testutil.TokenPath, 2*time.Second)

	c, err := New(Options{BaseURL: fake.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	start := time.Now()
	_, err = c.Exchange(context.Background(), domainauth.Credential{Email: "user@example.com", Password: "correct"})
	require.Error(t, err)
	assert.True(t, apperrors.IsServiceUnavailable(err))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 0, fake.Calls(testutil.ProfilePath))
}

func TestExchange_UnreachableIsServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newClient(t, url).Exchange(context.Background(), domainauth.Credential{Email: "a@example.com", Password: "b"})
	require.Error(t, err)
	assert.True(t, apperrors.IsServiceUnavailable(err))
}

func TestExchange_CustomProfileMapping(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /control/auth/token", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"t","token_type":"bearer"}`))
	})
	mux.HandleFunc("GET /control/users/me", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":{"uid":"u-9","mail":"x@example.com","display":"X"},"roles":["admin","viewer"]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL, Mapping: ProfileMapping{
		ID:    "user.uid",
		Email: "user.mail",
		Name:  "user.display",
		Role:  "roles[0]",
	}})
	require.NoError(t, err)

	id, err := c.Exchange(context.Background(), domainauth.Credential{Email: "x@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, domainauth.Identity{UserID: "u-9", Email: "x@example.com", Name: "X", Role: domainauth.RoleAdmin, AccessToken: "t"}, id)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)

	_, err = New(Options{BaseURL: "http://x", Mapping: ProfileMapping{ID: "[[["}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid id expression")
}

func TestSubmitOverride(t *testing.T) {
	fake := testutil.NewFakeControlAPI(t)
	c := newClient(t, fake.URL)
	ctx := context.Background()

	admin, err := c.Exchange(ctx, domainauth.Credential{Email: "user@example.com", Password: "correct"})
	require.NoError(t, err)
	operator, err := c.Exchange(ctx, domainauth.Credential{Email: "ops@example.com", Password: "hunter2"})
	require.NoError(t, err)

	halt := override.Request{Action: override.ActionHalt, Reason: "drill", ConfirmationCode: testutil.ConfirmationCode}

	reply, err := c.SubmitOverride(ctx, admin.AccessToken, halt)
	require.NoError(t, err)
	assert.Equal(t, "HALT", reply.Status)
	assert.Equal(t, "user@example.com", reply.InitiatedBy)
	assert.Contains(t, reply.Message, "HALTED")

	_, err = c.SubmitOverride(ctx, operator.AccessToken, halt)
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
	assert.Equal(t, "Not enough permissions", err.Error())

	bad := halt
	bad.ConfirmationCode = "guess"
	_, err = c.SubmitOverride(ctx, admin.AccessToken, bad)
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
	assert.Equal(t, "Invalid confirmation code", err.Error())

	_, err = c.SubmitOverride(ctx, "", halt)
	assert.True(t, apperrors.IsUnauthorized(err))

	reply, err = c.SubmitOverride(ctx, admin.AccessToken, override.Request{Action: override.ActionResume, Reason: "done"})
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", reply.Status)
	assert.Equal(t, 1, fake.Calls(testutil.ResumePath))
}

func TestSubmitOverride_ServerFailure(t *testing.T) {
	fake := testutil.NewFakeControlAPI(t)
	fake.Fail(testutil.HaltPath, http.StatusInternalServerError, `{"detail":"redis down"}`)
	c := newClient(t, fake.URL)

	_, err := c.SubmitOverride(context.Background(), "tok123", override.Request{Action: override.ActionHalt, Reason: "r", ConfirmationCode: "c"})
	require.Error(t, err)
	assert.True(t, apperrors.IsServiceUnavailable(err))
	assert.Equal(t, 1, fake.Calls(testutil.HaltPath))
}

func TestSystemStatus(t *testing.T) {
	fake := testutil.NewFakeControlAPI(t)
	c := newClient(t, fake.URL)
	ctx := context.Background()

	id, err := c.Exchange(ctx, domainauth.Credential{Email: "ops@example.com", Password: "hunter2"})
	require.NoError(t, err)

	status, err := c.SystemStatus(ctx, id.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", status.Status)
	assert.Equal(t, "v11.0.0", status.Version)
	assert.Equal(t, "healthy", status.Services["control_panel"])

	_, err = c.SystemStatus(ctx, "not-issued")
	assert.True(t, apperrors.IsUnauthorized(err))
}
