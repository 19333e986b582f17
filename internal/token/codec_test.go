package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	secretA = []byte("this_is_a_very_long_secret_key_for_testing_A")
	secretB = []byte("this_is_a_very_long_secret_key_for_testing_B")
	issued  = time.Unix(1_700_000_000, 0).UTC()
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewCodec(t *testing.T) {
	tests := []struct {
		name     string
		secret   []byte
		lifetime time.Duration
		wantErr  error
	}{
		{"valid", secretA, time.Hour, nil},
		{"zero lifetime", secretA, 0, nil},
		{"empty secret", nil, time.Hour, ErrWeakSecret},
		{"short secret", []byte("short"), time.Hour, ErrWeakSecret},
		{"one byte short", []byte(strings.Repeat("x", MinSecretLength-1)), time.Hour, ErrWeakSecret},
		{"negative lifetime", secretA, -time.Second, ErrInvalidLifetime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCodec(tt.secret, tt.lifetime)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.lifetime, c.Lifetime())
		})
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	tests := []struct {
		subject string
		role    string
	}{
		{"alice@example.com", "USER"},
		{"root@example.com", "ADMIN"},
		{"bob@example.com", ""},
	}
	lifetime := 15 * time.Minute
	c, err := NewCodec(secretA, lifetime, WithClock(fixedClock(issued.Add(time.Minute))))
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			raw, err := c.Issue(tt.subject, tt.role, issued)
			require.NoError(t, err)
			assert.Equal(t, 2, strings.Count(raw, "."), "compact serialization has three parts")

			got, err := c.Verify(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.subject, got.Subject)
			assert.Equal(t, tt.role, got.Role)
			assert.True(t, got.IssuedAt.Equal(issued))
			assert.True(t, got.ExpiresAt.Equal(issued.Add(lifetime)))
		})
	}
}

func TestIssueRejectsEmptySubject(t *testing.T) {
	c, err := NewCodec(secretA, time.Hour)
	require.NoError(t, err)

	for _, subject := range []string{"", "   "} {
		_, err := c.Issue(subject, "USER", issued)
		assert.ErrorIs(t, err, ErrInvalidSubject)
	}
}

func TestVerifyExpired(t *testing.T) {
	tests := []struct {
		name     string
		lifetime time.Duration
		at       time.Time
	}{
		{"zero lifetime", 0, issued},
		{"sub-second lifetime", 500 * time.Millisecond, issued},
		{"exactly at expiry", time.Minute, issued.Add(time.Minute)},
		{"after expiry", time.Minute, issued.Add(2 * time.Minute)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCodec(secretA, tt.lifetime, WithClock(fixedClock(tt.at)))
			require.NoError(t, err)

			raw, err := c.Issue("alice@example.com", "USER", issued)
			require.NoError(t, err)

			_, err = c.Verify(raw)
			assert.ErrorIs(t, err, ErrExpired)
			assert.False(t, errors.Is(err, ErrSignature))
		})
	}
}

func TestVerifyJustBeforeExpiry(t *testing.T) {
	c, err := NewCodec(secretA, time.Minute, WithClock(fixedClock(issued.Add(59*time.Second))))
	require.NoError(t, err)

	raw, err := c.Issue("alice@example.com", "USER", issued)
	require.NoError(t, err)

	_, err = c.Verify(raw)
	assert.NoError(t, err)
}

func TestVerifyWrongSecret(t *testing.T) {
	clock := WithClock(fixedClock(issued))
	a, err := NewCodec(secretA, time.Hour, clock)
	require.NoError(t, err)
	b, err := NewCodec(secretB, time.Hour, clock)
	require.NoError(t, err)

	raw, err := a.Issue("alice@example.com", "ADMIN", issued)
	require.NoError(t, err)

	_, err = b.Verify(raw)
	assert.ErrorIs(t, err, ErrSignature)
}

func TestVerifyExpiredWithWrongSecretReportsSignature(t *testing.T) {
	a, err := NewCodec(secretA, 0)
	require.NoError(t, err)
	b, err := NewCodec(secretB, 0)
	require.NoError(t, err)

	raw, err := a.Issue("alice@example.com", "USER", issued)
	require.NoError(t, err)

	_, err = b.Verify(raw)
	assert.ErrorIs(t, err, ErrSignature)
}

func TestVerifyMalformed(t *testing.T) {
	c, err := NewCodec(secretA, time.Hour)
	require.NoError(t, err)

	for _, raw := range []string{"", "not-a-token", "a.b", "a.b.c", "....", "eyJhbGciOiJIUzI1NiJ9.@@@.sig"} {
		t.Run(raw, func(t *testing.T) {
			got, err := c.Verify(raw)
			assert.ErrorIs(t, err, ErrMalformed)
			assert.Empty(t, got.Subject)
		})
	}
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	c, err := NewCodec(secretA, time.Hour, WithClock(fixedClock(issued)))
	require.NoError(t, err)

	claims := Claims{
		Role: "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "mallory@example.com",
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour)),
		},
	}

	t.Run("HS512", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secretA)
		require.NoError(t, err)
		_, err = c.Verify(raw)
		assert.ErrorIs(t, err, ErrSignature)
	})

	t.Run("none", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = c.Verify(raw)
		assert.ErrorIs(t, err, ErrSignature)
	})
}

func TestVerifyRejectsForeignIssuer(t *testing.T) {
	c, err := NewCodec(secretA, time.Hour, WithClock(fixedClock(issued)))
	require.NoError(t, err)

	claims := Claims{
		Role: "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "alice@example.com",
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretA)
	require.NoError(t, err)

	_, err = c.Verify(raw)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestNewCodecCopiesSecret(t *testing.T) {
	secret := append([]byte(nil), secretA...)
	c, err := NewCodec(secret, time.Hour, WithClock(fixedClock(issued)))
	require.NoError(t, err)

	raw, err := c.Issue("alice@example.com", "USER", issued)
	require.NoError(t, err)

	secret[0] ^= 0xff
	_, err = c.Verify(raw)
	assert.NoError(t, err)
}
