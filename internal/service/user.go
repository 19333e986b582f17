package service

import (
	"context"
	"errors"

	"github.com/atinyakov/GophReport/internal/models"
)

// ErrInvalidRole is returned for a role outside USER and ADMIN.
var ErrInvalidRole = errors.New("invalid role")

// UserAdminRepository defines the account mutations available to admins.
type UserAdminRepository interface {
	UpdateRole(ctx context.Context, email string, role models.Role) error
	Deactivate(ctx context.Context, email string) error
}

// UserService changes roles and deactivates accounts.
type UserService struct {
	repo UserAdminRepository
}

// NewUserService constructs a UserService with the provided repository.
func NewUserService(repo UserAdminRepository) *UserService {
	return &UserService{repo: repo}
}

// ChangeRole sets the role of email. Callers must have checked the admin role.
func (s *UserService) ChangeRole(ctx context.Context, email string, role models.Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	return s.repo.UpdateRole(ctx, normalizeEmail(email), role)
}

// Deactivate permanently disables email. Outstanding tokens stop working on
// the next request since principals are resolved fresh.
func (s *UserService) Deactivate(ctx context.Context, email string) error {
	return s.repo.Deactivate(ctx, normalizeEmail(email))
}
