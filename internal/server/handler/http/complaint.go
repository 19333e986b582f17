package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/GophReport/internal/auth"
	"github.com/atinyakov/GophReport/internal/models"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// ComplaintService defines the complaint operations required by the ComplaintHandler.
type ComplaintService interface {
	Create(ctx context.Context, owner string, c models.Complaint) (models.Complaint, error)
	Get(ctx context.Context, id int64) (models.Complaint, error)
	List(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, error)
	Update(ctx context.Context, id int64, changes models.Complaint) (models.Complaint, error)
	Delete(ctx context.Context, id int64) error
	Export(ctx context.Context, f models.ComplaintFilter, w io.Writer) error
}

// MutationPolicy decides whether the caller may change a complaint.
type MutationPolicy interface {
	CanMutate(ctx context.Context, resourceID int64) bool
}

// ComplaintHandler handles complaint CRUD and export.
type ComplaintHandler struct {
	ComplaintService ComplaintService
	Policy           MutationPolicy
}

// ComplaintRequest is the payload for creating or updating a complaint.
type ComplaintRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=4000"`
	Category    string   `json:"category" validate:"max=64"`
	Latitude    *float64 `json:"latitude" validate:"required,latitude"`
	Longitude   *float64 `json:"longitude" validate:"required,longitude"`
	Address     string   `json:"address" validate:"max=300"`
	Status      string   `json:"status" validate:"omitempty,oneof=OPEN IN_PROGRESS RESOLVED"`
}

func (req ComplaintRequest) model() models.Complaint {
	return models.Complaint{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		Address:     req.Address,
		Status:      models.ComplaintStatus(req.Status),
	}
}

// Create handles POST /api/complaints for the current principal.
func (h *ComplaintHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	var req ComplaintRequest
	if !decodeValid(w, r, &req) {
		return
	}

	c, err := h.ComplaintService.Create(r.Context(), principal.Subject, req.model())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// List handles GET /api/complaints?owner=&status=&limit=&offset=.
func (h *ComplaintHandler) List(w http.ResponseWriter, r *http.Request) {
	f, ok := parseFilter(w, r)
	if !ok {
		return
	}
	complaints, err := h.ComplaintService.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, complaints)
}

// Get handles GET /api/complaints/{id}.
func (h *ComplaintHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	c, err := h.ComplaintService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Update handles PUT /api/complaints/{id}; only the owner or an admin may.
func (h *ComplaintHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizeMutation(w, r)
	if !ok {
		return
	}
	var req ComplaintRequest
	if !decodeValid(w, r, &req) {
		return
	}
	c, err := h.ComplaintService.Update(r.Context(), id, req.model())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Delete handles DELETE /api/complaints/{id}; only the owner or an admin may.
func (h *ComplaintHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizeMutation(w, r)
	if !ok {
		return
	}
	if err := h.ComplaintService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /api/complaints/export and returns CSV. The file is
// rendered in full before anything is sent, so a failure is a plain error
// response and never a truncated attachment.
func (h *ComplaintHandler) Export(w http.ResponseWriter, r *http.Request) {
	f, ok := parseFilter(w, r)
	if !ok {
		return
	}
	f.Limit, f.Offset = 0, 0

	var buf bytes.Buffer
	if err := h.ComplaintService.Export(r.Context(), f, &buf); err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="complaints.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// authorizeMutation answers 401 without a principal and 403 when the policy
// denies the change.
func (h *ComplaintHandler) authorizeMutation(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := parseID(w, r)
	if !ok {
		return 0, false
	}
	if !auth.HasPrincipal(r.Context()) {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return 0, false
	}
	if !h.Policy.CanMutate(r.Context(), id) {
		http.Error(w, "not allowed to modify this complaint", http.StatusForbidden)
		return 0, false
	}
	return id, true
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid complaint id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func parseFilter(w http.ResponseWriter, r *http.Request) (models.ComplaintFilter, bool) {
	q := r.URL.Query()
	f := models.ComplaintFilter{
		Owner:  q.Get("owner"),
		Status: models.ComplaintStatus(q.Get("status")),
		Limit:  defaultPageSize,
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return f, false
		}
		f.Limit = min(n, maxPageSize)
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid offset", http.StatusBadRequest)
			return f, false
		}
		f.Offset = n
	}
	return f, true
}
