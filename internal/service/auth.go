// Package service provides the business logic for accounts and complaints,
// delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atinyakov/GophReport/internal/auth"
	"github.com/atinyakov/GophReport/internal/models"
)

// ErrInvalidCredentials covers unknown users, wrong passwords and
// deactivated accounts alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository defines the persistence operations
// required by the authentication service.
type UserRepository interface {
	// FindBySubject returns the user with the given email or models.ErrNotFound.
	FindBySubject(ctx context.Context, subject string) (*models.User, error)
	// UserExists reports whether the email is taken.
	UserExists(ctx context.Context, email string) (bool, error)
	// CreateUser stores a new user, returning models.ErrAlreadyExists on a taken email.
	CreateUser(ctx context.Context, u models.User) (int64, error)
}

// TokenIssuer signs bearer tokens.
type TokenIssuer interface {
	Issue(subject, role string, now time.Time) (string, error)
}

// AuthService implements registration and password login.
type AuthService struct {
	repo   UserRepository
	tokens TokenIssuer
	now    func() time.Time
}

// NewAuthService constructs a new AuthService using the provided repository and issuer.
func NewAuthService(repo UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, now: time.Now}
}

// Register creates an active USER account with a bcrypt-hashed password.
// A taken email is reported before any hashing work; a concurrent insert of
// the same email still ends in models.ErrAlreadyExists from CreateUser.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (models.User, error) {
	email = normalizeEmail(email)
	exists, err := s.repo.UserExists(ctx, email)
	if err != nil {
		return models.User{}, fmt.Errorf("check user: %w", err)
	}
	if exists {
		return models.User{}, models.ErrAlreadyExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := models.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Role:         models.RoleUser,
		Active:       true,
	}
	id, err := s.repo.CreateUser(ctx, u)
	if err != nil {
		return models.User{}, err
	}
	u.ID = id
	return u, nil
}

// Login verifies the password and returns a freshly issued token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.repo.FindBySubject(ctx, normalizeEmail(email))
	if errors.Is(err, models.ErrNotFound) {
		// Burn the same bcrypt time as a real comparison.
		auth.VerifyPassword(placeholderHash(), password)
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if !auth.VerifyPassword(u.PasswordHash, password) || !u.Active {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(u.Email, string(u.Role), s.now())
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var (
	placeholderOnce sync.Once
	placeholder     []byte
)

func placeholderHash() []byte {
	placeholderOnce.Do(func() {
		placeholder, _ = auth.HashPassword("placeholder-password")
	})
	return placeholder
}
