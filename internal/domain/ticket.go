package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in-progress"
	TicketStatusClosed     TicketStatus = "closed"
)

// ValidStatus reports whether s is one of the enumerated statuses.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// Category enumerates civic issue categories.
type Category string

const (
	CategoryRoads        Category = "roads"
	CategoryLighting     Category = "lighting"
	CategoryObstructions Category = "obstructions"
	CategoryPublicSafety Category = "public-safety"
	CategoryCleanliness  Category = "cleanliness"
	CategoryWaterSupply  Category = "water-supply"
	CategoryOther        Category = "other"
)

// ValidCategory reports whether c is one of the enumerated categories.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryRoads, CategoryLighting, CategoryObstructions,
		CategoryPublicSafety, CategoryCleanliness, CategoryWaterSupply, CategoryOther:
		return true
	}
	return false
}

// ActivityAction captures what kind of change an activity entry records.
type ActivityAction string

const (
	ActionCreate       ActivityAction = "create"
	ActionUpdate       ActivityAction = "update"
	ActionStatusUpdate ActivityAction = "status-update"
	ActionClose        ActivityAction = "close"
)

// AnonymousReporter is the reporter value for unauthenticated submissions.
const AnonymousReporter = "anonymous"

// ReportCeiling is the report count above which a ticket is hidden from
// public listings.
const ReportCeiling = 10

// ActivityEntry is an audit-log record of a state-changing action.
type ActivityEntry struct {
	Action    ActivityAction `json:"action"`
	Timestamp time.Time      `json:"timestamp"`
	User      string         `json:"user"`
	Comment   string         `json:"comment,omitempty"`
}

// Reports tracks community flags against a ticket's validity.
type Reports struct {
	Count    int      `json:"count"`
	Comments []string `json:"comments"`
}

// Coordinates is a WGS84 point. Zero is a valid value for either axis.
type Coordinates struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// Ticket is the aggregate for reported civic issues.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Category    Category
	Status      TicketStatus
	Reporter    string
	AssignedTo  *Role
	Coordinates *Coordinates
	Photos      []string
	Reports     Reports
	Activity    []ActivityEntry
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
