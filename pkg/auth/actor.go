package auth

import (
	"github.com/google/uuid"

	"github.com/tavola-app/tavola-backend/pkg/enums"
)

// Actor is the authenticated caller with its resolved role memberships. It is
// seeded once by the auth middleware and consumed by every handler and
// service, so authorization checks live in one place.
type Actor struct {
	UserID  uuid.UUID
	IsStaff bool
	Roles   []enums.Role
}

// HasRole reports membership in the named role group.
func (a Actor) HasRole(role enums.Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsManagerOrAdmin reports whether the caller holds the manager role or is a
// staff user; the two are equivalent for authorization.
func (a Actor) IsManagerOrAdmin() bool {
	return a.IsStaff || a.HasRole(enums.RoleManager)
}

// IsDeliveryCrew reports membership in the delivery crew.
func (a Actor) IsDeliveryCrew() bool {
	return a.HasRole(enums.RoleDeliveryCrew)
}

// RoleNames returns the role strings for logging and projections.
func (a Actor) RoleNames() []string {
	names := make([]string, 0, len(a.Roles))
	for _, r := range a.Roles {
		names = append(names, r.String())
	}
	return names
}
