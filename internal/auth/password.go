package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned by HashPassword for an empty password.
var ErrEmptyPassword = errors.New("auth: password is empty")

// HashPassword hashes a plaintext password using bcrypt.
func HashPassword(password string) ([]byte, error) {
	if len(password) == 0 {
		return nil, ErrEmptyPassword
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// VerifyPassword reports whether presented matches the stored bcrypt hash.
func VerifyPassword(stored []byte, presented string) bool {
	if len(stored) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(stored, []byte(presented)) == nil
}
