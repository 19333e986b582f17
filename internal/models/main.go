// Package models defines the core data structures for users and complaints.
package models

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by repositories when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a unique key is already taken.
	ErrAlreadyExists = errors.New("already exists")
)

// Role is the single authority level granted to a user.
type Role string

const (
	// RoleUser is assigned to every account at registration.
	RoleUser Role = "USER"
	// RoleAdmin may mutate any complaint and manage users.
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r belongs to the closed set of roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the persisted credential of an account.
type User struct {
	// ID is the surrogate key of the user row.
	ID int64
	// Email is the subject identifier, globally unique.
	Email string
	// Name is the display name chosen at registration.
	Name string
	// PasswordHash is the bcrypt hash of the password. Never serialized.
	PasswordHash []byte
	// Role is USER at creation; only an admin may change it.
	Role Role
	// Active turns false on deactivation and never turns back.
	Active bool
	// CreatedAt is the registration time.
	CreatedAt time.Time
}

// ComplaintStatus tracks the handling of a complaint.
type ComplaintStatus string

const (
	// StatusOpen is the initial status.
	StatusOpen ComplaintStatus = "OPEN"
	// StatusInProgress marks a complaint under review.
	StatusInProgress ComplaintStatus = "IN_PROGRESS"
	// StatusResolved marks a closed complaint.
	StatusResolved ComplaintStatus = "RESOLVED"
)

// Valid reports whether s is a known status.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// Complaint is a geolocated report filed by a user.
type Complaint struct {
	ID          int64           `json:"id"`
	OwnerEmail  string          `json:"owner"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Latitude    float64         `json:"latitude"`
	Longitude   float64         `json:"longitude"`
	Address     string          `json:"address,omitempty"`
	Status      ComplaintStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ComplaintFilter narrows complaint listings. Zero values mean "any".
type ComplaintFilter struct {
	Owner  string
	Status ComplaintStatus
	Limit  int
	Offset int
}
