package sessiontoken

// Package sessiontoken encodes sessions as HS256-signed JWTs carried in the session cookie.
// The bearer token is sealed inside the payload, bound to the session id.

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/target/control-panel-ui/internal/data/cryptoutil"
	domainauth "github.com/target/control-panel-ui/internal/domain/auth"
	apperrors "github.com/target/control-panel-ui/internal/errors"
)

// minSecretLen is the shortest signing secret accepted.
const minSecretLen = 32

// Claims is the session token payload.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
	// AccessToken is the sealed Control API bearer token.
	AccessToken string `json:"at"`
	jwt.RegisteredClaims
}

// Options configures a Codec.
type Options struct {
	Secret []byte
	Issuer string
	// Sealer protects the bearer token. Defaults to cryptoutil.NoopSealer.
	Sealer cryptoutil.Sealer
	// Now overrides the clock (tests).
	Now func() time.Time
}

// Codec implements ports.SessionCodec.
type Codec struct {
	secret []byte
	issuer string
	sealer cryptoutil.Sealer
	now    func() time.Time
	parser *jwt.Parser
}

// NewCodec constructs a Codec. The secret must be at least 32 bytes.
func NewCodec(opts Options) (*Codec, error) {
	if len(opts.Secret) < minSecretLen {
		return nil, fmt.Errorf("session secret must be at least %d bytes, got %d", minSecretLen, len(opts.Secret))
	}
	if opts.Issuer == "" {
		return nil, errors.New("session issuer is required")
	}
	sealer := opts.Sealer
	if sealer == nil {
		sealer = cryptoutil.NoopSealer{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Codec{
		secret: append([]byte(nil), opts.Secret...),
		issuer: opts.Issuer,
		sealer: sealer,
		now:    now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(opts.Issuer),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
			jwt.WithTimeFunc(now),
		),
	}, nil
}

// Encode signs a session. The session must carry an id, a user id and an expiry.
func (c *Codec) Encode(sess domainauth.Session) (string, error) {
	if sess.ID == "" || sess.UserID == "" {
		return "", errors.New("session id and user id are required")
	}
	if sess.ExpiresAt.IsZero() {
		return "", errors.New("session expiry is required")
	}
	issuedAt := sess.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = c.now()
	}

	sealed, err := c.sealer.Seal([]byte(sess.AccessToken), []byte(sess.ID))
	if err != nil {
		return "", fmt.Errorf("seal access token: %w", err)
	}

	claims := Claims{
		Email:       sess.Email,
		Name:        sess.Name,
		Role:        string(sess.Role),
		AccessToken: sealed,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   sess.UserID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode verifies a token and returns the session it carries.
// Any verification failure is reported as unauthorized.
func (c *Codec) Decode(token string) (domainauth.Session, error) {
	if token == "" {
		return domainauth.Session{}, apperrors.Unauthorized("no session token")
	}
	var claims Claims
	_, err := c.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "session expired")
		}
		return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "invalid session token")
	}
	if claims.ID == "" || claims.Subject == "" {
		return domainauth.Session{}, apperrors.Unauthorized("session token is missing its id")
	}

	accessToken, err := c.sealer.Open(claims.AccessToken, []byte(claims.ID))
	if err != nil {
		return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "session access token could not be opened")
	}

	sess := domainauth.Session{
		ID:          claims.ID,
		UserID:      claims.Subject,
		Email:       claims.Email,
		Name:        claims.Name,
		Role:        domainauth.Role(claims.Role),
		AccessToken: string(accessToken),
	}
	if claims.IssuedAt != nil {
		sess.IssuedAt = claims.IssuedAt.UTC()
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.UTC()
	}
	return sess, nil
}
