package domain

import "time"

// Role enumerates account roles.
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleVolunteer       Role = "volunteer"
	RoleCommunityMember Role = "community-member"
)

// ValidRole reports whether r is one of the enumerated roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleVolunteer, RoleCommunityMember:
		return true
	}
	return false
}

// Account is the domain model for registered users. Email is the unique key;
// tickets reference accounts by email without foreign-key enforcement.
type Account struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	Banned       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
