package dto

import (
	"time"

	"github.com/spec-kit/civictrack/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
	Name     string `json:"name" validate:"required"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AccountResponse is the account projection returned to the client. The
// credential is never included.
type AccountResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      domain.Role `json:"role"`
	Banned    bool        `json:"banned"`
	CreatedAt time.Time   `json:"created_at"`
}

// AccountFromDomain maps an account into its wire projection.
func AccountFromDomain(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID,
		Email:     account.Email,
		Name:      account.Name,
		Role:      account.Role,
		Banned:    account.Banned,
		CreatedAt: account.CreatedAt,
	}
}

// BannedAccountResponse is the admin listing projection for banned users.
type BannedAccountResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
