package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/civictrack/internal/domain"
)

// Bounds is an inclusive bounding box for coordinate filtering.
type Bounds struct {
	MinLat  float64
	MaxLat  float64
	MinLong float64
	MaxLong float64
}

// TicketFilter captures public listing parameters. MaxReports caps the
// report count for tickets included in the result.
type TicketFilter struct {
	Category    *domain.Category
	Status      *domain.TicketStatus
	TitleSearch *string
	Bounds      *Bounds
	MaxReports  *int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ListReported(ctx context.Context) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, title, description, category, status, reporter, assigned_to,
               lat, long, photos, report_count, report_comments, activity, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	photos, comments, activity, err := marshalTicketJSON(ticket)
	if err != nil {
		return err
	}

	var lat, long *float64
	if ticket.Coordinates != nil {
		lat = &ticket.Coordinates.Lat
		long = &ticket.Coordinates.Long
	}

	const query = `
        INSERT INTO tickets (title, description, category, status, reporter, assigned_to, lat, long, photos, report_count, report_comments, activity)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Status,
		ticket.Reporter,
		ticket.AssignedTo,
		lat,
		long,
		photos,
		ticket.Reports.Count,
		comments,
		activity,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	photos, comments, activity, err := marshalTicketJSON(ticket)
	if err != nil {
		return err
	}

	var lat, long *float64
	if ticket.Coordinates != nil {
		lat = &ticket.Coordinates.Lat
		long = &ticket.Coordinates.Long
	}

	const query = `
        UPDATE tickets SET title=$1, description=$2, category=$3, status=$4, assigned_to=$5,
            lat=$6, long=$7, photos=$8, report_count=$9, report_comments=$10, activity=$11, updated_at=NOW()
        WHERE id=$12`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Status,
		ticket.AssignedTo,
		lat,
		long,
		photos,
		ticket.Reports.Count,
		comments,
		activity,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTicketRow(row)
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.MaxReports != nil {
		args = append(args, *filter.MaxReports)
		clauses = append(clauses, fmt.Sprintf("report_count <= $%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.TitleSearch != nil && strings.TrimSpace(*filter.TitleSearch) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.TitleSearch))+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(title) LIKE $%d", len(args)))
	}
	if filter.Bounds != nil {
		args = append(args, filter.Bounds.MinLat, filter.Bounds.MaxLat)
		clauses = append(clauses, fmt.Sprintf("lat BETWEEN $%d AND $%d", len(args)-1, len(args)))
		args = append(args, filter.Bounds.MinLong, filter.Bounds.MaxLong)
		clauses = append(clauses, fmt.Sprintf("long BETWEEN $%d AND $%d", len(args)-1, len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC`,
		ticketColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListReported(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE report_count > 0 ORDER BY report_count DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func marshalTicketJSON(ticket *domain.Ticket) (photos, comments, activity []byte, err error) {
	if photos, err = json.Marshal(emptyIfNil(ticket.Photos)); err != nil {
		return nil, nil, nil, err
	}
	if comments, err = json.Marshal(emptyIfNil(ticket.Reports.Comments)); err != nil {
		return nil, nil, nil, err
	}
	entries := ticket.Activity
	if entries == nil {
		entries = []domain.ActivityEntry{}
	}
	if activity, err = json.Marshal(entries); err != nil {
		return nil, nil, nil, err
	}
	return photos, comments, activity, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicketRow(row rowScanner) (*domain.Ticket, error) {
	var (
		ticket   domain.Ticket
		lat      *float64
		long     *float64
		photos   []byte
		comments []byte
		activity []byte
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Status,
		&ticket.Reporter,
		&ticket.AssignedTo,
		&lat,
		&long,
		&photos,
		&ticket.Reports.Count,
		&comments,
		&activity,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if lat != nil && long != nil {
		ticket.Coordinates = &domain.Coordinates{Lat: *lat, Long: *long}
	}
	if err := json.Unmarshal(photos, &ticket.Photos); err != nil {
		return nil, fmt.Errorf("decode photos: %w", err)
	}
	if err := json.Unmarshal(comments, &ticket.Reports.Comments); err != nil {
		return nil, fmt.Errorf("decode report comments: %w", err)
	}
	if err := json.Unmarshal(activity, &ticket.Activity); err != nil {
		return nil, fmt.Errorf("decode activity: %w", err)
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicketRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
