// Package http provides the HTTP handlers and router of the GophReport API.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/atinyakov/GophReport/internal/auth"
	"github.com/atinyakov/GophReport/internal/models"
	"github.com/atinyakov/GophReport/internal/service"
)

// AuthService defines the account operations required by the HTTP handlers.
type AuthService interface {
	// Register creates an active USER account.
	Register(ctx context.Context, email, name, password string) (models.User, error)
	// Login checks the password and returns a signed bearer token.
	Login(ctx context.Context, email, password string) (string, error)
}

// AuthHandler handles HTTP requests for registration, login and "who am I".
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	// TokenLifetime is reported to clients as expires_in.
	TokenLifetime time.Duration
}

// RegisterRequest represents the JSON payload for user registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Name     string `json:"name" validate:"required,max=120"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest represents the JSON payload for password login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID    int64  `json:"id,omitempty"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
}

// Register handles POST /api/auth/register.
// It responds 201 with the created account, 409 if the email is taken.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeValid(w, r, &req) {
		return
	}

	u, err := h.AuthService.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: string(u.Role)})
}

// Login handles POST /api/auth/login and returns a bearer token.
// Any credential problem is answered with the same 401.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeValid(w, r, &req) {
		return
	}

	tok, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		http.Error(w, "invalid email or password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":      tok,
		"token_type": "Bearer",
		"expires_in": int64(h.TokenLifetime / time.Second),
	})
}

// Me handles GET /api/users/me and returns the current principal.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	role := ""
	if len(principal.Roles) > 0 {
		role = string(principal.Roles[0])
	}
	writeJSON(w, http.StatusOK, userResponse{Email: principal.Subject, Role: role})
}
