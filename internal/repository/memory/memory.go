// Package memory provides in-memory repository implementations used by
// service and handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/civictrack/internal/domain"
	"github.com/spec-kit/civictrack/internal/repository"
)

// AccountRepo is a map-backed AccountRepository.
type AccountRepo struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

// NewAccountRepo builds an empty repo.
func NewAccountRepo() *AccountRepo {
	return &AccountRepo{accounts: make(map[string]domain.Account)}
}

func (r *AccountRepo) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now
	r.accounts[account.Email] = *account
	return nil
}

func (r *AccountRepo) Update(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.Email]; !ok {
		return pgx.ErrNoRows
	}
	account.UpdatedAt = time.Now()
	r.accounts[account.Email] = *account
	return nil
}

func (r *AccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &account, nil
}

func (r *AccountRepo) ListBanned(_ context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Account
	for _, account := range r.accounts {
		if account.Banned {
			result = append(result, account)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// TicketRepo is a map-backed TicketRepository.
type TicketRepo struct {
	mu      sync.RWMutex
	tickets map[string]domain.Ticket
}

// NewTicketRepo builds an empty repo.
func NewTicketRepo() *TicketRepo {
	return &TicketRepo{tickets: make(map[string]domain.Ticket)}
}

func (r *TicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *TicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *TicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r *TicketRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *TicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if !matches(ticket, filter) {
			continue
		}
		result = append(result, ticket)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *TicketRepo) ListReported(_ context.Context) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.Reports.Count > 0 {
			result = append(result, ticket)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Reports.Count > result[j].Reports.Count })
	return result, nil
}

func matches(ticket domain.Ticket, filter repository.TicketFilter) bool {
	if filter.MaxReports != nil && ticket.Reports.Count > *filter.MaxReports {
		return false
	}
	if filter.Category != nil && ticket.Category != *filter.Category {
		return false
	}
	if filter.Status != nil && ticket.Status != *filter.Status {
		return false
	}
	if filter.TitleSearch != nil && strings.TrimSpace(*filter.TitleSearch) != "" {
		needle := strings.ToLower(strings.TrimSpace(*filter.TitleSearch))
		if !strings.Contains(strings.ToLower(ticket.Title), needle) {
			return false
		}
	}
	if filter.Bounds != nil {
		if ticket.Coordinates == nil {
			return false
		}
		b := filter.Bounds
		c := ticket.Coordinates
		if c.Lat < b.MinLat || c.Lat > b.MaxLat || c.Long < b.MinLong || c.Long > b.MaxLong {
			return false
		}
	}
	return true
}
