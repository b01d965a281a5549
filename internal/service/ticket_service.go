package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/civictrack/internal/auth"
	"github.com/spec-kit/civictrack/internal/domain"
	"github.com/spec-kit/civictrack/internal/events"
	"github.com/spec-kit/civictrack/internal/repository"
	apperrors "github.com/spec-kit/civictrack/pkg/util"
)

// TicketService coordinates the ticket lifecycle: creation, content edits,
// status transitions, location updates, deletion and community reports.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository, dispatcher events.Dispatcher) *TicketService {
	return &TicketService{tickets: tickets, dispatcher: dispatcher}
}

// CreateInput describes ticket creation payload. Reporter is either an
// account email or the anonymous marker, resolved by the caller.
type CreateInput struct {
	Title       string
	Description string
	Category    domain.Category
	AssignedTo  *domain.Role
	Coordinates *domain.Coordinates
	Photos      []string
	Reporter    string
}

// UpdateInput describes a partial content edit. Nil means "leave unchanged";
// a present empty string is a validation error.
type UpdateInput struct {
	Title       *string
	Description *string
	Category    *string
}

// ListQuery captures the public listing parameters.
type ListQuery struct {
	Category string
	Status   string
	Title    string
	Lat      *float64
	Long     *float64
	Dist     *float64
}

// ValidateCreateInput checks a creation payload without touching storage.
// Callers with side effects of their own (photo uploads) run it before
// committing anything.
func ValidateCreateInput(input CreateInput) error {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" {
		return apperrors.NewValidationError("title, description, and reporter are required")
	}
	if input.Reporter == "" {
		return apperrors.NewValidationError("title, description, and reporter are required")
	}
	if !domain.ValidCategory(input.Category) {
		return apperrors.NewValidationError("invalid category")
	}
	if input.AssignedTo != nil && !domain.ValidRole(*input.AssignedTo) {
		return apperrors.NewValidationError("invalid assignee")
	}
	return nil
}

// Create validates and persists a new ticket, appending the initial create
// activity entry and firing the created notification.
func (s *TicketService) Create(ctx context.Context, input CreateInput) (*domain.Ticket, error) {
	if err := ValidateCreateInput(input); err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Status:      domain.TicketStatusOpen,
		Reporter:    input.Reporter,
		AssignedTo:  input.AssignedTo,
		Coordinates: input.Coordinates,
		Photos:      input.Photos,
		Reports:     domain.Reports{Count: 0, Comments: []string{}},
		Activity: []domain.ActivityEntry{{
			Action:    domain.ActionCreate,
			Timestamp: time.Now(),
			User:      input.Reporter,
			Comment:   fmt.Sprintf("Ticket created by %s", input.Reporter),
		}},
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    ticket.Reporter,
		Payload: events.TicketCreatedPayload{
			Reporter: ticket.Reporter,
			Title:    ticket.Title,
			Category: ticket.Category,
		},
	})
	return ticket, nil
}

// Get fetches a single ticket.
func (s *TicketService) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return ticket, nil
}

// List translates query parameters into a store filter. Tickets whose
// report count exceeds the ceiling never appear in public listings.
func (s *TicketService) List(ctx context.Context, query ListQuery) ([]domain.Ticket, error) {
	ceiling := domain.ReportCeiling
	filter := repository.TicketFilter{MaxReports: &ceiling}

	if query.Category != "" {
		category := domain.Category(query.Category)
		filter.Category = &category
	}
	if query.Status != "" {
		status := domain.TicketStatus(query.Status)
		filter.Status = &status
	}
	if query.Title != "" {
		title := query.Title
		filter.TitleSearch = &title
	}
	if query.Dist != nil {
		if query.Lat == nil || query.Long == nil {
			return nil, apperrors.NewValidationError("latitude and longitude are required for distance search")
		}
		filter.Bounds = &repository.Bounds{
			MinLat:  *query.Lat - *query.Dist,
			MaxLat:  *query.Lat + *query.Dist,
			MinLong: *query.Long - *query.Dist,
			MaxLong: *query.Long + *query.Dist,
		}
	}

	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// UpdateFields applies a partial content edit. Only the original reporter may
// call; each present field must be non-empty; exactly one update activity
// entry is appended.
func (s *TicketService) UpdateFields(ctx context.Context, id string, input UpdateInput, actor *domain.Account) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if !auth.CanEditTicket(actor, ticket) {
		return nil, apperrors.NewForbidden("only the reporter may edit this ticket")
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, apperrors.NewValidationError("title must not be empty")
		}
		ticket.Title = *input.Title
	}
	if input.Description != nil {
		if strings.TrimSpace(*input.Description) == "" {
			return nil, apperrors.NewValidationError("description must not be empty")
		}
		ticket.Description = *input.Description
	}
	if input.Category != nil {
		category := domain.Category(*input.Category)
		if !domain.ValidCategory(category) {
			return nil, apperrors.NewValidationError("invalid category")
		}
		ticket.Category = category
	}

	ticket.Activity = append(ticket.Activity, domain.ActivityEntry{
		Action:    domain.ActionUpdate,
		Timestamp: time.Now(),
		User:      actor.Email,
		Comment:   fmt.Sprintf("Ticket updated by %s", actor.Email),
	})

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// Transitions out of closed are not exposed.
var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:       {domain.TicketStatusInProgress, domain.TicketStatusClosed},
	domain.TicketStatusInProgress: {domain.TicketStatusClosed},
	domain.TicketStatusClosed:     {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// SetStatus applies an admin status change, appends a status-update activity
// entry recording old and new, and fires the status-changed notification.
func (s *TicketService) SetStatus(ctx context.Context, id string, status domain.TicketStatus, actor *domain.Account) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if !auth.CanSetStatus(actor) {
		return nil, apperrors.NewForbidden("only admins may change ticket status")
	}
	if !domain.ValidStatus(status) {
		return nil, apperrors.NewValidationError("invalid status")
	}
	if !isValidTransition(ticket.Status, status) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("cannot transition from %s to %s", ticket.Status, status))
	}

	oldStatus := ticket.Status
	ticket.Status = status
	ticket.Activity = append(ticket.Activity, domain.ActivityEntry{
		Action:    domain.ActionStatusUpdate,
		Timestamp: time.Now(),
		User:      actor.Email,
		Comment:   fmt.Sprintf("Status updated to %s by %s", status, actor.Email),
	})

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    actor.Email,
		Payload: events.TicketStatusChangedPayload{
			Reporter:  ticket.Reporter,
			Title:     ticket.Title,
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
	return ticket, nil
}

// SetLocation updates the ticket's coordinates. Reporter or admin only.
func (s *TicketService) SetLocation(ctx context.Context, id string, coords domain.Coordinates, actor *domain.Account) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if !auth.CanManageTicket(actor, ticket) {
		return nil, apperrors.NewForbidden("not allowed to update this ticket")
	}

	ticket.Coordinates = &coords
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// Delete removes the ticket permanently. Reporter or admin only.
func (s *TicketService) Delete(ctx context.Context, id string, actor *domain.Account) error {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err)
	}
	if !auth.CanManageTicket(actor, ticket) {
		return apperrors.NewForbidden("not allowed to delete this ticket")
	}
	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// AddReport records a community flag against the ticket. No authentication
// and no activity entry; reports are a separate channel from activity.
func (s *TicketService) AddReport(ctx context.Context, id, comment string) (*domain.Ticket, error) {
	if strings.TrimSpace(comment) == "" {
		return nil, apperrors.NewValidationError("comment is required")
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}

	ticket.Reports.Count++
	ticket.Reports.Comments = append(ticket.Reports.Comments, comment)

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func notFoundOr(err error) error {
	domainErr := apperrors.ToDomainError(err)
	if domainErr.Code == "NOT_FOUND" {
		return apperrors.NewNotFound("ticket")
	}
	return domainErr
}
