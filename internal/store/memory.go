// internal/store/memory.go
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"helpdesk-automation/internal/models"
)

// MemoryTicketRepository is a mutex-guarded in-memory ticket store.
// Reads return clones; writes replace whole snapshots.
type MemoryTicketRepository struct {
	mu      sync.RWMutex
	tickets map[string]*models.Ticket
	order   []string
}

func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{
		tickets: make(map[string]*models.Ticket),
	}
}

func (r *MemoryTicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tickets[ticket.ID] = ticket.Clone()
	r.order = append(r.order, ticket.ID)
	return nil
}

func (r *MemoryTicketRepository) Get(ctx context.Context, id string) (*models.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return ticket.Clone(), nil
}

func (r *MemoryTicketRepository) Update(ctx context.Context, ticket *models.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tickets[ticket.ID]; !ok {
		return ErrNotFound
	}
	r.tickets[ticket.ID] = ticket.Clone()
	return nil
}

func (r *MemoryTicketRepository) List(ctx context.Context, filter TicketFilter) ([]*models.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Ticket, 0, len(r.order))
	for _, id := range r.order {
		ticket, ok := r.tickets[id]
		if !ok {
			continue
		}
		if matchesFilter(ticket, filter) {
			result = append(result, ticket.Clone())
		}
	}

	// Newest first, matching the dashboard ordering.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *MemoryTicketRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tickets[id]; !ok {
		return ErrNotFound
	}
	delete(r.tickets, id)
	r.removeFromOrder(id)
	return nil
}

func (r *MemoryTicketRepository) BulkDelete(ctx context.Context, ids []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		if _, ok := r.tickets[id]; ok {
			delete(r.tickets, id)
			r.removeFromOrder(id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *MemoryTicketRepository) removeFromOrder(id string) {
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

func matchesFilter(ticket *models.Ticket, filter TicketFilter) bool {
	if filter.Status != "" && ticket.Status != filter.Status {
		return false
	}
	if filter.Category != "" && ticket.Category != filter.Category {
		return false
	}
	if filter.Priority != "" && ticket.Priority != filter.Priority {
		return false
	}
	if filter.SubmittedBy != "" && ticket.SubmittedBy != filter.SubmittedBy {
		return false
	}
	if filter.AssignedTo != "" && ticket.AssignedTo != filter.AssignedTo {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		title := strings.ToLower(ticket.Title)
		description := strings.ToLower(ticket.Description)
		if !strings.Contains(title, needle) && !strings.Contains(description, needle) {
			return false
		}
	}
	return true
}

// MemoryWorkflowStore keeps workflow definitions in creation order.
// The engine depends on List returning them in that order, and on
// RecordExecution being atomic under concurrent pipeline runs.
type MemoryWorkflowStore struct {
	mu        sync.RWMutex
	workflows map[string]*models.Workflow
	order     []string
}

func NewMemoryWorkflowStore() *MemoryWorkflowStore {
	return &MemoryWorkflowStore{
		workflows: make(map[string]*models.Workflow),
	}
}

func (s *MemoryWorkflowStore) Create(ctx context.Context, workflow *models.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workflows[workflow.ID] = workflow.Clone()
	s.order = append(s.order, workflow.ID)
	return nil
}

func (s *MemoryWorkflowStore) Get(ctx context.Context, id string) (*models.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	workflow, ok := s.workflows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return workflow.Clone(), nil
}

func (s *MemoryWorkflowStore) Update(ctx context.Context, workflow *models.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.workflows[workflow.ID]
	if !ok {
		return ErrNotFound
	}

	// Execution counters are owned by RecordExecution; an Update
	// carrying stale counters must not clobber them.
	updated := workflow.Clone()
	updated.ExecutionCount = existing.ExecutionCount
	updated.SuccessCount = existing.SuccessCount
	s.workflows[workflow.ID] = updated
	return nil
}

func (s *MemoryWorkflowStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workflows[id]; !ok {
		return ErrNotFound
	}
	delete(s.workflows, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryWorkflowStore) List(ctx context.Context) ([]*models.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Workflow, 0, len(s.order))
	for _, id := range s.order {
		if workflow, ok := s.workflows[id]; ok {
			result = append(result, workflow.Clone())
		}
	}
	return result, nil
}

func (s *MemoryWorkflowStore) RecordExecution(ctx context.Context, id string, success bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	workflow, ok := s.workflows[id]
	if !ok {
		return ErrNotFound
	}
	workflow.ExecutionCount++
	if success {
		workflow.SuccessCount++
	}
	return nil
}

// MemoryUserStore is the in-memory user directory.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*models.User
	order []string
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*models.User)}
}

func (s *MemoryUserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *user
	s.users[user.ID] = &copied
	s.order = append(s.order, user.ID)
	return nil
}

func (s *MemoryUserStore) Get(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *MemoryUserStore) List(ctx context.Context, role models.UserRole) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.User, 0, len(s.order))
	for _, id := range s.order {
		user, ok := s.users[id]
		if !ok {
			continue
		}
		if role != "" && user.Role != role {
			continue
		}
		copied := *user
		result = append(result, &copied)
	}
	return result, nil
}

// MemoryNotificationStore holds per-user notification feeds, newest first.
type MemoryNotificationStore struct {
	mu            sync.RWMutex
	notifications map[string]*models.Notification
	byUser        map[string][]string
}

func NewMemoryNotificationStore() *MemoryNotificationStore {
	return &MemoryNotificationStore{
		notifications: make(map[string]*models.Notification),
		byUser:        make(map[string][]string),
	}
}

func (s *MemoryNotificationStore) Add(ctx context.Context, notification *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *notification
	s.notifications[notification.ID] = &copied
	// Prepend so feeds read newest first.
	s.byUser[notification.UserID] = append([]string{notification.ID}, s.byUser[notification.UserID]...)
	return nil
}

func (s *MemoryNotificationStore) ListForUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byUser[userID]
	result := make([]*models.Notification, 0, len(ids))
	for _, id := range ids {
		if notification, ok := s.notifications[id]; ok {
			copied := *notification
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (s *MemoryNotificationStore) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notification, ok := s.notifications[id]
	if !ok {
		return ErrNotFound
	}
	notification.Read = true
	return nil
}

func (s *MemoryNotificationStore) MarkAllRead(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.byUser[userID] {
		if notification, ok := s.notifications[id]; ok {
			notification.Read = true
		}
	}
	return nil
}

func (s *MemoryNotificationStore) UnreadCount(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, id := range s.byUser[userID] {
		if notification, ok := s.notifications[id]; ok && !notification.Read {
			count++
		}
	}
	return count, nil
}

// MemoryChatStore holds chatbot sessions.
type MemoryChatStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.ChatSession
}

func NewMemoryChatStore() *MemoryChatStore {
	return &MemoryChatStore{sessions: make(map[string]*models.ChatSession)}
}

func (s *MemoryChatStore) CreateSession(ctx context.Context, session *models.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = cloneSession(session)
	return nil
}

func (s *MemoryChatStore) GetSession(ctx context.Context, id string) (*models.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSession(session), nil
}

func (s *MemoryChatStore) UpdateSession(ctx context.Context, session *models.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; !ok {
		return ErrNotFound
	}
	s.sessions[session.ID] = cloneSession(session)
	return nil
}

func cloneSession(session *models.ChatSession) *models.ChatSession {
	clone := *session
	if session.Messages != nil {
		clone.Messages = make([]models.ChatMessage, len(session.Messages))
		copy(clone.Messages, session.Messages)
	}
	if session.Context.Entities != nil {
		entities := make(map[string]string, len(session.Context.Entities))
		for k, v := range session.Context.Entities {
			entities[k] = v
		}
		clone.Context.Entities = entities
	}
	return &clone
}
