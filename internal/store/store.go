// Package store holds the persistence layer: ticket and workflow
// repositories with a concurrency-safe in-memory backend and a
// PostgreSQL ticket backend.
package store

import (
	"context"
	"errors"

	"helpdesk-automation/internal/models"
)

// ErrNotFound is returned when a lookup misses.
var ErrNotFound = errors.New("store: not found")

// TicketFilter narrows List results. Zero-value fields are ignored.
type TicketFilter struct {
	Status      models.TicketStatus
	Category    models.TicketCategory
	Priority    models.TicketPriority
	SubmittedBy string
	AssignedTo  string
	// Search matches case-insensitively against title and description.
	Search string
}

// TicketRepository stores tickets. Implementations must return deep
// copies from reads so callers never alias live store state.
type TicketRepository interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	Get(ctx context.Context, id string) (*models.Ticket, error)
	Update(ctx context.Context, ticket *models.Ticket) error
	List(ctx context.Context, filter TicketFilter) ([]*models.Ticket, error)
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (int, error)
}

// WorkflowStore stores workflow definitions in creation order. The
// order is significant: the engine evaluates workflows in the order
// List returns them.
type WorkflowStore interface {
	Create(ctx context.Context, workflow *models.Workflow) error
	Get(ctx context.Context, id string) (*models.Workflow, error)
	Update(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.Workflow, error)
	// RecordExecution bumps the attempt counter and, when success is
	// true, the success counter, atomically with respect to other calls.
	RecordExecution(ctx context.Context, id string, success bool) error
}

// UserStore is the directory of submitters and agents.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, role models.UserRole) ([]*models.User, error)
}

// NotificationStore holds per-user notification feeds.
type NotificationStore interface {
	Add(ctx context.Context, notification *models.Notification) error
	ListForUser(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) error
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// ChatStore holds chatbot sessions.
type ChatStore interface {
	CreateSession(ctx context.Context, session *models.ChatSession) error
	GetSession(ctx context.Context, id string) (*models.ChatSession, error)
	UpdateSession(ctx context.Context, session *models.ChatSession) error
}
