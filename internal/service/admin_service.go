package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/civictrack/internal/domain"
	"github.com/spec-kit/civictrack/internal/repository"
	apperrors "github.com/spec-kit/civictrack/pkg/util"
)

// AdminService covers the moderation surface: banning accounts and clearing
// community reports.
type AdminService struct {
	accounts repository.AccountRepository
	tickets  repository.TicketRepository
}

// NewAdminService constructs the service.
func NewAdminService(accounts repository.AccountRepository, tickets repository.TicketRepository) *AdminService {
	return &AdminService{accounts: accounts, tickets: tickets}
}

// ListReported returns tickets with at least one report, most reported first.
func (s *AdminService) ListReported(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListReported(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ClearReports resets a ticket's report count and comments.
func (s *AdminService) ClearReports(ctx context.Context, ticketID string) error {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket")
		}
		return apperrors.MapError(err)
	}

	ticket.Reports = domain.Reports{Count: 0, Comments: []string{}}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// SetBanned flips the ban flag on an account.
func (s *AdminService) SetBanned(ctx context.Context, email string, banned bool) error {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user")
		}
		return apperrors.MapError(err)
	}

	account.Banned = banned
	if err := s.accounts.Update(ctx, account); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ListBanned returns all banned accounts sorted by name.
func (s *AdminService) ListBanned(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accounts.ListBanned(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return accounts, nil
}
