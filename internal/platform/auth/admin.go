package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 12 * time.Hour

var (
	// ErrInvalidCredentials signals a failed email/password check.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrTokenInvalid signals that the presented session token could not be verified.
	ErrTokenInvalid = errors.New("auth: session token invalid")
	// ErrTokenExpired signals that the presented session token has expired.
	ErrTokenExpired = errors.New("auth: session token expired")
)

// Identity captures the authenticated back-office principal.
type Identity struct {
	Email string
}

type contextKey string

const identityContextKey contextKey = "github.com/paperloft/api/internal/platform/auth/identity"

// WithIdentity stores the identity within the context for downstream handlers.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext retrieves the identity previously stored in context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}

// AdminAuthenticator checks back-office credentials and issues signed
// session tokens. The deployment has a single admin account configured
// through the environment.
type AdminAuthenticator struct {
	email        string
	passwordHash []byte
	secret       []byte
	tokenTTL     time.Duration
	clock        func() time.Time
}

// Option customises AdminAuthenticator behaviour.
type Option func(*AdminAuthenticator)

// WithTokenTTL overrides the session token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(a *AdminAuthenticator) {
		if ttl > 0 {
			a.tokenTTL = ttl
		}
	}
}

// WithClock injects the time source used for token issuance and validation.
func WithClock(clock func() time.Time) Option {
	return func(a *AdminAuthenticator) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// NewAdminAuthenticator constructs an authenticator for the configured admin
// account. The password hash must be a bcrypt digest.
func NewAdminAuthenticator(email, passwordHash, secret string, opts ...Option) *AdminAuthenticator {
	a := &AdminAuthenticator{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		tokenTTL:     defaultTokenTTL,
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

// Login verifies the credentials and returns a signed session token.
func (a *AdminAuthenticator) Login(_ context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if a.email == "" || email != a.email {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := a.clock().UTC()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify parses the session token and returns the admin identity it names.
// Claims validation is skipped at parse time so expiry can be checked against
// the injected clock.
func (a *AdminAuthenticator) Verify(_ context.Context, tokenString string) (*Identity, error) {
	claims := &sessionClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if claims.ExpiresAt == nil || !a.clock().UTC().Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}
	if !strings.EqualFold(claims.Subject, a.email) {
		return nil, ErrTokenInvalid
	}
	return &Identity{Email: claims.Subject}, nil
}
