package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/GophReport/internal/auth"
	"github.com/atinyakov/GophReport/internal/models"
)

// UserService defines the account management operations.
type UserService interface {
	ChangeRole(ctx context.Context, email string, role models.Role) error
	Deactivate(ctx context.Context, email string) error
}

// UserHandler handles account management requests.
type UserHandler struct {
	UserService UserService
}

// RoleRequest is the payload of a role change.
type RoleRequest struct {
	Role string `json:"role" validate:"required,oneof=USER ADMIN"`
}

// ChangeRole handles PUT /api/admin/users/{email}/role. The router only lets admins in.
func (h *UserHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var req RoleRequest
	if !decodeValid(w, r, &req) {
		return
	}
	email := chi.URLParam(r, "email")
	if err := h.UserService.ChangeRole(r.Context(), email, models.Role(req.Role)); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeactivateUser handles POST /api/admin/users/{email}/deactivate.
func (h *UserHandler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	h.deactivate(w, r, chi.URLParam(r, "email"))
}

// DeactivateSelf handles POST /api/users/me/deactivate.
func (h *UserHandler) DeactivateSelf(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	h.deactivate(w, r, principal.Subject)
}

func (h *UserHandler) deactivate(w http.ResponseWriter, r *http.Request, email string) {
	if err := h.UserService.Deactivate(r.Context(), email); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
