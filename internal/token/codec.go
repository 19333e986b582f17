// Package token issues and verifies the signed bearer tokens handed out at login.
//
// Tokens are HS256 JWTs in compact serialization carrying the subject, a single
// role claim, issued-at and expiry. A token is valid iff its signature verifies
// against the configured secret and the current time is before its expiry.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLength is the shortest accepted HS256 secret, in bytes.
const MinSecretLength = 32

const issuer = "gophreport"

var (
	// ErrInvalidSubject is returned by Issue for an empty subject.
	ErrInvalidSubject = errors.New("token: subject is required")
	// ErrEncoding is returned by Issue when the token cannot be serialized or signed.
	ErrEncoding = errors.New("token: encoding failed")
	// ErrMalformed is returned when the string is not a token of the expected structure.
	ErrMalformed = errors.New("token: malformed")
	// ErrSignature is returned when the signature does not match.
	ErrSignature = errors.New("token: signature mismatch")
	// ErrExpired is returned when the token is past its expiry.
	ErrExpired = errors.New("token: expired")
	// ErrWeakSecret is returned by NewCodec for secrets shorter than MinSecretLength.
	ErrWeakSecret = fmt.Errorf("token: secret must be at least %d bytes", MinSecretLength)
	// ErrInvalidLifetime is returned by NewCodec for a negative lifetime.
	ErrInvalidLifetime = errors.New("token: lifetime must not be negative")
)

// Claims is the JWT body.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Assertion is the verified content of a token.
type Assertion struct {
	Subject   string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec signs and verifies tokens. It is immutable after construction and safe
// for concurrent use.
type Codec struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock replaces the clock used by Verify.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec validates the secret and lifetime and returns a ready Codec.
// The secret is copied.
func NewCodec(secret []byte, lifetime time.Duration, opts ...Option) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if lifetime < 0 {
		return nil, ErrInvalidLifetime
	}
	c := &Codec{
		secret:   append([]byte(nil), secret...),
		lifetime: lifetime,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Lifetime returns the configured token lifetime.
func (c *Codec) Lifetime() time.Duration {
	return c.lifetime
}

// Issue signs a token for subject with the given role, issued at now and
// expiring at now plus the configured lifetime.
func (c *Codec) Issue(subject, role string, now time.Time) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", ErrInvalidSubject
	}
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.lifetime)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return signed, nil
}

// Verify parses tokenString, checks its signature and expiry, and returns the
// carried assertion. Failures wrap exactly one of ErrMalformed, ErrSignature
// or ErrExpired.
func (c *Codec) Verify(tokenString string) (Assertion, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	parsed, err := parser.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return Assertion{}, classify(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Assertion{}, ErrMalformed
	}
	if strings.TrimSpace(claims.Subject) == "" || claims.IssuedAt == nil {
		return Assertion{}, fmt.Errorf("%w: missing subject or issued-at", ErrMalformed)
	}
	return Assertion{
		Subject:   claims.Subject,
		Role:      claims.Role,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// classify maps jwt parser errors onto the package error kinds. Signature
// problems win over claim problems since jwt checks the signature first.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
