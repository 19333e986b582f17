// Package repository provides PostgreSQL persistence for users and complaints.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/atinyakov/GophReport/internal/models"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// PostgresUserRepository implements user persistence using a PostgreSQL database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// FindBySubject returns the user whose email equals subject, or
// models.ErrNotFound.
func (r *PostgresUserRepository) FindBySubject(ctx context.Context, subject string) (*models.User, error) {
	var u models.User
	var role string
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, role, active, created_at
		FROM users WHERE email = $1
	`, subject).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &u.Active, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("FindBySubject: %w", err)
	}
	u.Role = models.Role(role)
	return &u, nil
}

// UserExists checks whether a user with the specified email exists in the database.
func (r *PostgresUserRepository) UserExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`,
		email,
	).Scan(&exists)
	return exists, err
}

// CreateUser inserts an active user and returns its id. A taken email yields
// models.ErrAlreadyExists.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, u models.User) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO users (email, name, password_hash, role, active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id
	`, u.Email, u.Name, u.PasswordHash, string(u.Role)).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return 0, models.ErrAlreadyExists
		}
		return 0, fmt.Errorf("CreateUser: %w", err)
	}
	return id, nil
}

// UpdateRole sets the role of the user identified by email.
func (r *PostgresUserRepository) UpdateRole(ctx context.Context, email string, role models.Role) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET role = $1 WHERE email = $2`, string(role), email)
	if err != nil {
		return fmt.Errorf("UpdateRole: %w", err)
	}
	return requireAffected(res)
}

// Deactivate clears the active flag. There is no way back.
func (r *PostgresUserRepository) Deactivate(ctx context.Context, email string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET active = false WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("Deactivate: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
