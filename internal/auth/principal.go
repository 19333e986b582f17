// Package auth holds the authentication-facing view of a user and the
// decisions made on it: principal resolution, the request-scoped trust
// context, the owner-or-admin policy and password verification.
package auth

import (
	"slices"

	"github.com/atinyakov/GophReport/internal/models"
)

// Principal is the resolved identity of the caller.
type Principal struct {
	// Subject is the user's email.
	Subject string
	// Roles is the authority set derived from the single role of the user.
	Roles []models.Role
	// Active mirrors the credential's active flag.
	Active bool
}

// FromUser derives a principal from the persisted credential.
func FromUser(u models.User) Principal {
	var roles []models.Role
	if u.Role.Valid() {
		roles = []models.Role{u.Role}
	}
	return Principal{
		Subject: u.Email,
		Roles:   roles,
		Active:  u.Active,
	}
}

// HasRole reports whether role is in the principal's authority set.
func (p Principal) HasRole(role models.Role) bool {
	return slices.Contains(p.Roles, role)
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.HasRole(models.RoleAdmin)
}

// Enabled reports whether the account may authenticate. Expiry, lock and
// credential-expiry states all collapse to the active flag.
func (p Principal) Enabled() bool {
	return p.Active
}
