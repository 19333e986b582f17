package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/atinyakov/GophReport/internal/models"
)

const complaintColumns = `c.id, u.email, c.title, c.description, c.category, c.latitude, c.longitude,
		c.address, c.status, c.created_at, c.updated_at`

// PostgresComplaintRepository implements complaint persistence against a PostgreSQL database.
type PostgresComplaintRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresComplaintRepository creates a new PostgresComplaintRepository using the provided *sql.DB.
func NewPostgresComplaintRepository(db *sql.DB) *PostgresComplaintRepository {
	return &PostgresComplaintRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComplaint(row rowScanner) (models.Complaint, error) {
	var c models.Complaint
	var status string
	err := row.Scan(&c.ID, &c.OwnerEmail, &c.Title, &c.Description, &c.Category,
		&c.Latitude, &c.Longitude, &c.Address, &status, &c.CreatedAt, &c.UpdatedAt)
	c.Status = models.ComplaintStatus(status)
	return c, err
}

// Create stores a complaint owned by ownerEmail and returns it with id and
// timestamps filled in. An unknown owner yields models.ErrNotFound.
func (r *PostgresComplaintRepository) Create(ctx context.Context, ownerEmail string, c models.Complaint) (models.Complaint, error) {
	if c.Status == "" {
		c.Status = models.StatusOpen
	}
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO complaints (user_id, title, description, category, latitude, longitude, address, status)
		SELECT id, $2, $3, $4, $5, $6, $7, $8 FROM users WHERE email = $1
		RETURNING id, created_at, updated_at
	`, ownerEmail, c.Title, c.Description, c.Category, c.Latitude, c.Longitude, c.Address, string(c.Status)).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Complaint{}, models.ErrNotFound
	}
	if err != nil {
		return models.Complaint{}, fmt.Errorf("Create: %w", err)
	}
	c.OwnerEmail = ownerEmail
	return c, nil
}

// GetByID returns a live complaint or models.ErrNotFound.
func (r *PostgresComplaintRepository) GetByID(ctx context.Context, id int64) (models.Complaint, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+complaintColumns+`
		FROM complaints c JOIN users u ON u.id = c.user_id
		WHERE c.id = $1 AND c.deleted = false
	`, id)
	c, err := scanComplaint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Complaint{}, models.ErrNotFound
	}
	if err != nil {
		return models.Complaint{}, fmt.Errorf("GetByID: %w", err)
	}
	return c, nil
}

// List returns live complaints matching f, newest first.
func (r *PostgresComplaintRepository) List(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, error) {
	var sb strings.Builder
	var args []any
	sb.WriteString(`SELECT ` + complaintColumns + `
		FROM complaints c JOIN users u ON u.id = c.user_id
		WHERE c.deleted = false`)
	if f.Owner != "" {
		args = append(args, f.Owner)
		fmt.Fprintf(&sb, " AND u.email = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		fmt.Fprintf(&sb, " AND c.status = $%d", len(args))
	}
	sb.WriteString(" ORDER BY c.created_at DESC, c.id DESC")
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := r.DB.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	complaints := []models.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		complaints = append(complaints, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return complaints, nil
}

// Update overwrites the editable fields of a live complaint.
func (r *PostgresComplaintRepository) Update(ctx context.Context, c models.Complaint) (models.Complaint, error) {
	err := r.DB.QueryRowContext(ctx, `
		UPDATE complaints SET
			title = $1, description = $2, category = $3, latitude = $4,
			longitude = $5, address = $6, status = $7, updated_at = now()
		WHERE id = $8 AND deleted = false
		RETURNING updated_at
	`, c.Title, c.Description, c.Category, c.Latitude, c.Longitude, c.Address, string(c.Status), c.ID).
		Scan(&c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Complaint{}, models.ErrNotFound
	}
	if err != nil {
		return models.Complaint{}, fmt.Errorf("Update: %w", err)
	}
	return c, nil
}

// SoftDelete marks a complaint deleted; the cleaner purges it later.
func (r *PostgresComplaintRepository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE complaints SET deleted = true, deleted_at = now() WHERE id = $1 AND deleted = false`, id)
	if err != nil {
		return fmt.Errorf("SoftDelete: %w", err)
	}
	return requireAffected(res)
}

// ResourceBelongsTo reports whether the live complaint id is owned by subject.
func (r *PostgresComplaintRepository) ResourceBelongsTo(ctx context.Context, id int64, subject string) (bool, error) {
	var owned bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM complaints c JOIN users u ON u.id = c.user_id
			WHERE c.id = $1 AND u.email = $2 AND c.deleted = false
		)
	`, id, subject).Scan(&owned)
	if err != nil {
		return false, fmt.Errorf("ResourceBelongsTo: %w", err)
	}
	return owned, nil
}
