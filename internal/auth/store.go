package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/GophReport/internal/models"
)

// ErrPrincipalNotFound is returned when no credential matches the subject.
var ErrPrincipalNotFound = errors.New("auth: principal not found")

// UserFinder reads credentials by subject. Implementations return
// models.ErrNotFound when no row matches.
type UserFinder interface {
	FindBySubject(ctx context.Context, subject string) (*models.User, error)
}

// PrincipalStore resolves principals from the user store. Nothing is cached,
// so a deactivation is visible on the very next request.
type PrincipalStore struct {
	users UserFinder
}

// NewPrincipalStore constructs a PrincipalStore over users.
func NewPrincipalStore(users UserFinder) *PrincipalStore {
	return &PrincipalStore{users: users}
}

// Load returns the principal for subject. A missing user yields
// ErrPrincipalNotFound; any other failure is returned wrapped.
func (s *PrincipalStore) Load(ctx context.Context, subject string) (Principal, error) {
	u, err := s.users.FindBySubject(ctx, subject)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return Principal{}, ErrPrincipalNotFound
	case err != nil:
		return Principal{}, fmt.Errorf("load principal: %w", err)
	case u == nil:
		return Principal{}, ErrPrincipalNotFound
	}
	return FromUser(*u), nil
}
