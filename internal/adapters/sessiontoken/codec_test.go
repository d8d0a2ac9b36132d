package sessiontoken

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/target/control-panel-ui/internal/data/cryptoutil"
	domainauth "github.com/target/control-panel-ui/internal/domain/auth"
	apperrors "github.com/target/control-panel-ui/internal/errors"
	"github.com/target/control-panel-ui/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newCodec(t *testing.T, now time.Time, sealer cryptoutil.Sealer) *Codec {
	t.Helper()
	c, err := NewCodec(Options{Secret: testSecret, Issuer: "control-panel-ui", Sealer: sealer, Now: testutil.FixedTimeFunc(now)})
	require.NoError(t, err)
	return c
}

func aesSealer(t *testing.T) cryptoutil.Sealer {
	t.Helper()
	s, err := cryptoutil.NewAESGCMSealer([]byte("abcdefghijklmnopqrstuvwxyz012345"))
	require.NoError(t, err)
	return s
}

func sampleSession(now time.Time) domainauth.Session {
	return domainauth.Session{
		ID:          "8d6f7e0e-2a51-4d8e-9a0a-1f1f1f1f1f1f",
		UserID:      "1",
		Email:       "user@example.com",
		Name:        "User One",
		Role:        domainauth.RoleAdmin,
		AccessToken: "tok123",
		IssuedAt:    now,
		ExpiresAt:   now.Add(30 * time.Minute),
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	now := testutil.TestTime()
	for name, sealer := range map[string]cryptoutil.Sealer{"noop": nil, "aes-gcm": aesSealer(t)} {
		t.Run(name, func(t *testing.T) {
			c := newCodec(t, now, sealer)
			in := sampleSession(now)

			token, err := c.Encode(in)
			require.NoError(t, err)

			out, err := c.Decode(token)
			require.NoError(t, err)
			assert.Equal(t, in, out)

			// Reading twice yields the same fields.
			again, err := c.Decode(token)
			require.NoError(t, err)
			assert.Equal(t, out, again)
		})
	}
}

func TestCodec_SealedTokenIsNotReadable(t *testing.T) {
	now := testutil.TestTime()
	c := newCodec(t, now, aesSealer(t))

	token, err := c.Encode(sampleSession(now))
	require.NoError(t, err)

	var claims Claims
	_, _, err = jwt.NewParser().ParseUnverified(token, &claims)
	require.NoError(t, err)
	assert.NotContains(t, claims.AccessToken, "tok123")
	assert.True(t, strings.HasPrefix(claims.AccessToken, "v1:"))
}

func TestCodec_Expired(t *testing.T) {
	now := testutil.TestTime()
	token, err := newCodec(t, now, nil).Encode(sampleSession(now))
	require.NoError(t, err)

	later := newCodec(t, now.Add(31*time.Minute), nil)
	_, err = later.Decode(token)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Contains(t, err.Error(), "session expired")
}

func TestCodec_RejectsTampering(t *testing.T) {
	now := testutil.TestTime()
	c := newCodec(t, now, nil)
	token, err := c.Encode(sampleSession(now))
	require.NoError(t, err)

	// Re-sign the same claims with a different role and another key.
	var claims Claims
	_, _, err = jwt.NewParser().ParseUnverified(token, &claims)
	require.NoError(t, err)
	claims.Role = "admin"
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("another-secret-another-secret-xx"))
	require.NoError(t, err)

	tests := map[string]string{
		"empty":        "",
		"garbage":      "not.a.jwt",
		"wrong key":    forged,
		"alg none":     mustNone(t, claims),
		"truncated":    token[:len(token)-4],
		"other issuer": mustIssuer(t, claims, "someone-else"),
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := c.Decode(tok)
			require.Error(t, err)
			assert.True(t, apperrors.IsUnauthorized(err))
		})
	}
}

func TestCodec_SealerMismatch(t *testing.T) {
	now := testutil.TestTime()
	token, err := newCodec(t, now, nil).Encode(sampleSession(now))
	require.NoError(t, err)

	_, err = newCodec(t, now, aesSealer(t)).Decode(token)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestCodec_EncodeValidation(t *testing.T) {
	now := testutil.TestTime()
	c := newCodec(t, now, nil)

	s := sampleSession(now)
	s.ID = ""
	_, err := c.Encode(s)
	require.Error(t, err)

	s = sampleSession(now)
	s.ExpiresAt = time.Time{}
	_, err = c.Encode(s)
	require.Error(t, err)
}

func TestNewCodec_Validation(t *testing.T) {
	_, err := NewCodec(Options{Secret: []byte("short"), Issuer: "x"})
	require.Error(t, err)

	_, err = NewCodec(Options{Secret: testSecret})
	require.Error(t, err)
}

func mustNone(t *testing.T, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return s
}

func mustIssuer(t *testing.T, claims Claims, iss string) string {
	t.Helper()
	claims.Issuer = iss
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return s
}
