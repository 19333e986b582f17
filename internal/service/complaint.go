package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/atinyakov/GophReport/internal/models"
)

// ErrInvalidStatus is returned for an unknown complaint status.
var ErrInvalidStatus = errors.New("invalid complaint status")

// ComplaintRepository defines the persistence operations needed by the ComplaintService.
type ComplaintRepository interface {
	Create(ctx context.Context, ownerEmail string, c models.Complaint) (models.Complaint, error)
	GetByID(ctx context.Context, id int64) (models.Complaint, error)
	List(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, error)
	Update(ctx context.Context, c models.Complaint) (models.Complaint, error)
	SoftDelete(ctx context.Context, id int64) error
}

// ComplaintService implements complaint business logic. Authorization is the
// caller's job.
type ComplaintService struct {
	repo ComplaintRepository
}

// NewComplaintService constructs a ComplaintService with the provided repository.
func NewComplaintService(repo ComplaintRepository) *ComplaintService {
	return &ComplaintService{repo: repo}
}

// Create files a new OPEN complaint for owner.
func (s *ComplaintService) Create(ctx context.Context, owner string, c models.Complaint) (models.Complaint, error) {
	c.Status = models.StatusOpen
	return s.repo.Create(ctx, owner, c)
}

// Get returns a complaint by id.
func (s *ComplaintService) Get(ctx context.Context, id int64) (models.Complaint, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns complaints matching f. The owner filter is matched against
// stored emails, which are lowercase.
func (s *ComplaintService) List(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	f.Owner = normalizeEmail(f.Owner)
	return s.repo.List(ctx, f)
}

// Update replaces the editable fields of complaint id with those of changes.
// An empty status keeps the current one.
func (s *ComplaintService) Update(ctx context.Context, id int64, changes models.Complaint) (models.Complaint, error) {
	if changes.Status != "" && !changes.Status.Valid() {
		return models.Complaint{}, ErrInvalidStatus
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Complaint{}, err
	}
	current.Title = changes.Title
	current.Description = changes.Description
	current.Category = changes.Category
	current.Latitude = changes.Latitude
	current.Longitude = changes.Longitude
	current.Address = changes.Address
	if changes.Status != "" {
		current.Status = changes.Status
	}
	return s.repo.Update(ctx, current)
}

// Delete soft-deletes complaint id.
func (s *ComplaintService) Delete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

var exportHeader = []string{
	"id", "owner", "title", "description", "category", "latitude", "longitude",
	"address", "status", "created_at", "updated_at",
}

// Export writes complaints matching f to w as CSV with a header row.
func (s *ComplaintService) Export(ctx context.Context, f models.ComplaintFilter, w io.Writer) error {
	complaints, err := s.List(ctx, f)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, c := range complaints {
		record := []string{
			strconv.FormatInt(c.ID, 10),
			c.OwnerEmail,
			c.Title,
			c.Description,
			c.Category,
			strconv.FormatFloat(c.Latitude, 'f', -1, 64),
			strconv.FormatFloat(c.Longitude, 'f', -1, 64),
			c.Address,
			string(c.Status),
			c.CreatedAt.UTC().Format(time.RFC3339),
			c.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
