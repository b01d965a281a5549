package auth

import "github.com/spec-kit/civictrack/internal/domain"

// The guard functions decide whether an operation is permitted given the
// acting account's role and ownership relative to the target ticket.

// CanManageTicket allows the ticket's reporter or an admin. Covers deletion
// and location updates.
func CanManageTicket(account *domain.Account, ticket *domain.Ticket) bool {
	if account == nil {
		return false
	}
	return ticket.Reporter == account.Email || account.Role == domain.RoleAdmin
}

// CanEditTicket allows content edits (title, description, category) to the
// original reporter only.
func CanEditTicket(account *domain.Account, ticket *domain.Ticket) bool {
	return account != nil && ticket.Reporter == account.Email
}

// CanSetStatus allows status changes to admins only.
func CanSetStatus(account *domain.Account) bool {
	return account != nil && account.Role == domain.RoleAdmin
}
