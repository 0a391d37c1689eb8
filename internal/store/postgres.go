// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"helpdesk-automation/internal/models"
)

// PostgresTicketRepository persists tickets in PostgreSQL. Comments and
// feedback are stored as JSONB, tags as a text array.
type PostgresTicketRepository struct {
	db *sql.DB
}

func NewPostgresTicketRepository(db *sql.DB) *PostgresTicketRepository {
	return &PostgresTicketRepository{db: db}
}

const ticketColumns = `id, title, description, category, priority, status, source,
	submitted_by, assigned_to, created_at, updated_at, resolved_at, comments, tags, feedback`

func (r *PostgresTicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	comments, feedback, err := marshalTicketJSON(ticket)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tickets (` + ticketColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err = r.db.ExecContext(ctx, query,
		ticket.ID, ticket.Title, ticket.Description,
		string(ticket.Category), string(ticket.Priority), string(ticket.Status), string(ticket.Source),
		ticket.SubmittedBy, nullString(ticket.AssignedTo),
		ticket.CreatedAt, ticket.UpdatedAt, nullTime(ticket.ResolvedAt),
		comments, pq.Array(ticket.Tags), feedback,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ticket %s: %w", ticket.ID, err)
	}
	return nil
}

func (r *PostgresTicketRepository) Get(ctx context.Context, id string) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	ticket, err := scanTicket(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ticket %s: %w", id, err)
	}
	return ticket, nil
}

func (r *PostgresTicketRepository) Update(ctx context.Context, ticket *models.Ticket) error {
	comments, feedback, err := marshalTicketJSON(ticket)
	if err != nil {
		return err
	}

	query := `
		UPDATE tickets
		SET title = $2, description = $3, category = $4, priority = $5,
			status = $6, source = $7, submitted_by = $8, assigned_to = $9,
			updated_at = $10, resolved_at = $11, comments = $12, tags = $13,
			feedback = $14
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		ticket.ID, ticket.Title, ticket.Description,
		string(ticket.Category), string(ticket.Priority),
		string(ticket.Status), string(ticket.Source),
		ticket.SubmittedBy, nullString(ticket.AssignedTo),
		ticket.UpdatedAt, nullTime(ticket.ResolvedAt),
		comments, pq.Array(ticket.Tags), feedback,
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket %s: %w", ticket.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresTicketRepository) List(ctx context.Context, filter TicketFilter) ([]*models.Ticket, error) {
	var conditions []string
	var args []interface{}

	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.Status != "" {
		addCondition("status = $%d", string(filter.Status))
	}
	if filter.Category != "" {
		addCondition("category = $%d", string(filter.Category))
	}
	if filter.Priority != "" {
		addCondition("priority = $%d", string(filter.Priority))
	}
	if filter.SubmittedBy != "" {
		addCondition("submitted_by = $%d", filter.SubmittedBy)
	}
	if filter.AssignedTo != "" {
		addCondition("assigned_to = $%d", filter.AssignedTo)
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf(
			"(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket row: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ticket rows: %w", err)
	}
	return tickets, nil
}

func (r *PostgresTicketRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ticket %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresTicketRepository) BulkDelete(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tickets WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to bulk delete tickets: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read bulk delete result: %w", err)
	}
	return int(affected), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTicket(row rowScanner) (*models.Ticket, error) {
	var ticket models.Ticket
	var category, priority, status, source string
	var assignedTo sql.NullString
	var resolvedAt sql.NullTime
	var comments, feedback []byte

	err := row.Scan(
		&ticket.ID, &ticket.Title, &ticket.Description,
		&category, &priority, &status, &source,
		&ticket.SubmittedBy, &assignedTo,
		&ticket.CreatedAt, &ticket.UpdatedAt, &resolvedAt,
		&comments, pq.Array(&ticket.Tags), &feedback,
	)
	if err != nil {
		return nil, err
	}

	ticket.Category = models.TicketCategory(category)
	ticket.Priority = models.TicketPriority(priority)
	ticket.Status = models.TicketStatus(status)
	ticket.Source = models.TicketSource(source)
	if assignedTo.Valid {
		ticket.AssignedTo = assignedTo.String
	}
	if resolvedAt.Valid {
		resolved := resolvedAt.Time
		ticket.ResolvedAt = &resolved
	}
	if len(comments) > 0 {
		if err := json.Unmarshal(comments, &ticket.Comments); err != nil {
			return nil, fmt.Errorf("failed to decode ticket comments: %w", err)
		}
	}
	if len(feedback) > 0 {
		if err := json.Unmarshal(feedback, &ticket.Feedback); err != nil {
			return nil, fmt.Errorf("failed to decode ticket feedback: %w", err)
		}
	}
	return &ticket, nil
}

func marshalTicketJSON(ticket *models.Ticket) ([]byte, []byte, error) {
	comments, err := json.Marshal(ticket.Comments)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode ticket comments: %w", err)
	}

	var feedback []byte
	if ticket.Feedback != nil {
		feedback, err = json.Marshal(ticket.Feedback)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode ticket feedback: %w", err)
		}
	}
	return comments, feedback, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
