package dto

import (
	"time"

	"github.com/spec-kit/civictrack/internal/domain"
)

// CreateTicketRequest carries new-ticket fields. Coordinates use pointer
// fields so that zero is a valid supplied value.
type CreateTicketRequest struct {
	Title       string              `json:"title" form:"title"`
	Description string              `json:"description" form:"description"`
	Category    string              `json:"category" form:"category"`
	Anonymous   bool                `json:"anonymous" form:"anonymous"`
	AssignedTo  *string             `json:"assignedTo" form:"assignedTo"`
	Coordinates *CoordinatesRequest `json:"coordinates"`
}

// CoordinatesRequest is an explicit-presence coordinate pair.
type CoordinatesRequest struct {
	Lat  *float64 `json:"lat"`
	Long *float64 `json:"long"`
}

// UpdateTicketRequest is a partial content edit; nil fields stay unchanged.
type UpdateTicketRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

// SetStatusRequest carries the target status.
type SetStatusRequest struct {
	Status *string `json:"status"`
}

// SetLocationRequest carries the new coordinates.
type SetLocationRequest struct {
	Coordinates *CoordinatesRequest `json:"coordinates"`
}

// ReportRequest carries a community flag comment.
type ReportRequest struct {
	Comment string `json:"comment"`
}

// ActivityResponse is the wire form of an activity entry.
type ActivityResponse struct {
	Action    domain.ActivityAction `json:"action"`
	Timestamp time.Time             `json:"timestamp"`
	User      string                `json:"user"`
	Comment   string                `json:"comment,omitempty"`
}

// TicketSummary is the public list projection: no activity, no reports.
type TicketSummary struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    domain.Category     `json:"category"`
	Status      domain.TicketStatus `json:"status"`
	Reporter    string              `json:"reporter"`
	AssignedTo  *domain.Role        `json:"assignedTo,omitempty"`
	Coordinates *domain.Coordinates `json:"coordinates,omitempty"`
	Photos      []string            `json:"photos"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// TicketDetail is the public detail projection: activity included, reports
// stripped.
type TicketDetail struct {
	TicketSummary
	Activity []ActivityResponse `json:"activity"`
}

// AdminTicket is the moderation projection with reports included.
type AdminTicket struct {
	TicketDetail
	Reports domain.Reports `json:"reports"`
}

// TicketSummaryFromDomain builds the list projection.
func TicketSummaryFromDomain(ticket *domain.Ticket) TicketSummary {
	photos := ticket.Photos
	if photos == nil {
		photos = []string{}
	}
	return TicketSummary{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Category:    ticket.Category,
		Status:      ticket.Status,
		Reporter:    ticket.Reporter,
		AssignedTo:  ticket.AssignedTo,
		Coordinates: ticket.Coordinates,
		Photos:      photos,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

// TicketDetailFromDomain builds the detail projection.
func TicketDetailFromDomain(ticket *domain.Ticket) TicketDetail {
	activity := make([]ActivityResponse, 0, len(ticket.Activity))
	for _, entry := range ticket.Activity {
		activity = append(activity, ActivityResponse{
			Action:    entry.Action,
			Timestamp: entry.Timestamp,
			User:      entry.User,
			Comment:   entry.Comment,
		})
	}
	return TicketDetail{
		TicketSummary: TicketSummaryFromDomain(ticket),
		Activity:      activity,
	}
}

// AdminTicketFromDomain builds the moderation projection.
func AdminTicketFromDomain(ticket *domain.Ticket) AdminTicket {
	reports := ticket.Reports
	if reports.Comments == nil {
		reports.Comments = []string{}
	}
	return AdminTicket{
		TicketDetail: TicketDetailFromDomain(ticket),
		Reports:      reports,
	}
}
