// internal/store/memory_test.go
package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"helpdesk-automation/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ticketFixture(id string, createdAt time.Time) *models.Ticket {
	return &models.Ticket{
		ID:          id,
		Title:       "Wifi drops in meeting room " + id,
		Description: "Connection lost during calls",
		Category:    models.CategoryNetwork,
		Priority:    models.PriorityMedium,
		Status:      models.StatusOpen,
		SubmittedBy: "user-1",
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// ==========================
// Ticket Repository Tests
// ==========================

func TestMemoryTicketRepository_CRUD(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, ticketFixture("TKT-1", now)))

	fetched, err := repo.Get(ctx, "TKT-1")
	require.NoError(t, err)
	assert.Equal(t, "TKT-1", fetched.ID)

	fetched.Status = models.StatusInProgress
	require.NoError(t, repo.Update(ctx, fetched))

	updated, err := repo.Get(ctx, "TKT-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status)

	require.NoError(t, repo.Delete(ctx, "TKT-1"))
	_, err = repo.Get(ctx, "TKT-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryTicketRepository_NotFound(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()

	_, err := repo.Get(ctx, "TKT-missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, ticketFixture("TKT-missing", time.Now())), ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "TKT-missing"), ErrNotFound)
}

func TestMemoryTicketRepository_ReadsAreClones(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()

	original := ticketFixture("TKT-1", time.Now())
	original.Tags = []string{"vpn"}
	require.NoError(t, repo.Create(ctx, original))

	// Mutating what the caller handed in must not leak into the store.
	original.Title = "mutated"
	original.Tags[0] = "mutated"

	fetched, err := repo.Get(ctx, "TKT-1")
	require.NoError(t, err)
	assert.Equal(t, "Wifi drops in meeting room TKT-1", fetched.Title)
	assert.Equal(t, []string{"vpn"}, fetched.Tags)

	// Mutating a read result must not affect later reads either.
	fetched.Tags[0] = "mutated"
	again, err := repo.Get(ctx, "TKT-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"vpn"}, again.Tags)
}

func TestMemoryTicketRepository_ListNewestFirst(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, repo.Create(ctx, ticketFixture("TKT-old", base.Add(-2*time.Hour))))
	require.NoError(t, repo.Create(ctx, ticketFixture("TKT-new", base)))
	require.NoError(t, repo.Create(ctx, ticketFixture("TKT-mid", base.Add(-1*time.Hour))))

	tickets, err := repo.List(ctx, TicketFilter{})
	require.NoError(t, err)
	require.Len(t, tickets, 3)
	assert.Equal(t, "TKT-new", tickets[0].ID)
	assert.Equal(t, "TKT-mid", tickets[1].ID)
	assert.Equal(t, "TKT-old", tickets[2].ID)
}

func TestMemoryTicketRepository_ListFilters(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	now := time.Now()

	network := ticketFixture("TKT-1", now)
	require.NoError(t, repo.Create(ctx, network))

	printer := ticketFixture("TKT-2", now)
	printer.Category = models.CategoryPrinter
	printer.Status = models.StatusResolved
	printer.AssignedTo = "agent-hardware-1"
	printer.Title = "Toner empty on floor 3"
	require.NoError(t, repo.Create(ctx, printer))

	tests := []struct {
		name     string
		filter   TicketFilter
		expected []string
	}{
		{"by status", TicketFilter{Status: models.StatusResolved}, []string{"TKT-2"}},
		{"by category", TicketFilter{Category: models.CategoryNetwork}, []string{"TKT-1"}},
		{"by assignee", TicketFilter{AssignedTo: "agent-hardware-1"}, []string{"TKT-2"}},
		{"by submitter", TicketFilter{SubmittedBy: "user-1"}, []string{"TKT-1", "TKT-2"}},
		{"search is case insensitive", TicketFilter{Search: "TONER"}, []string{"TKT-2"}},
		{"search matches description", TicketFilter{Search: "connection lost"}, []string{"TKT-1"}},
		{"no matches", TicketFilter{Search: "telephone"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tickets, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)

			ids := make([]string, 0, len(tickets))
			for _, ticket := range tickets {
				ids = append(ids, ticket.ID)
			}
			assert.ElementsMatch(t, tt.expected, ids)
		})
	}
}

func TestMemoryTicketRepository_BulkDelete(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	now := time.Now()

	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.Create(ctx, ticketFixture(fmt.Sprintf("TKT-%d", i), now)))
	}

	// Missing IDs are counted out, not errors.
	deleted, err := repo.BulkDelete(ctx, []string{"TKT-1", "TKT-missing", "TKT-3"})
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	remaining, err := repo.List(ctx, TicketFilter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "TKT-2", remaining[0].ID)
}

func TestMemoryTicketRepository_ConcurrentAccess(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("TKT-%d", n)
			_ = repo.Create(ctx, ticketFixture(id, time.Now()))
			_, _ = repo.Get(ctx, id)
			_, _ = repo.List(ctx, TicketFilter{})
		}(i)
	}
	wg.Wait()

	tickets, err := repo.List(ctx, TicketFilter{})
	require.NoError(t, err)
	assert.Len(t, tickets, 20)
}

// ==========================
// Workflow Store Tests
// ==========================

func workflowFixture(id string) *models.Workflow {
	return &models.Workflow{
		ID:      id,
		Name:    "workflow " + id,
		Enabled: true,
		Trigger: models.WorkflowTrigger{ID: "t1", Type: models.TriggerTicketCreated},
		Actions: []models.WorkflowAction{
			{ID: "a1", Type: models.ActionEscalate},
		},
	}
}

func TestMemoryWorkflowStore_ListKeepsCreationOrder(t *testing.T) {
	workflows := NewMemoryWorkflowStore()
	ctx := context.Background()

	for _, id := range []string{"WF-b", "WF-a", "WF-c"} {
		require.NoError(t, workflows.Create(ctx, workflowFixture(id)))
	}

	listed, err := workflows.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "WF-b", listed[0].ID)
	assert.Equal(t, "WF-a", listed[1].ID)
	assert.Equal(t, "WF-c", listed[2].ID)
}

func TestMemoryWorkflowStore_UpdatePreservesCounters(t *testing.T) {
	workflows := NewMemoryWorkflowStore()
	ctx := context.Background()

	require.NoError(t, workflows.Create(ctx, workflowFixture("WF-1")))
	require.NoError(t, workflows.RecordExecution(ctx, "WF-1", true))
	require.NoError(t, workflows.RecordExecution(ctx, "WF-1", false))

	// An update built from a stale read carries zero counters.
	stale := workflowFixture("WF-1")
	stale.Name = "renamed"
	require.NoError(t, workflows.Update(ctx, stale))

	stored, err := workflows.Get(ctx, "WF-1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", stored.Name)
	assert.EqualValues(t, 2, stored.ExecutionCount)
	assert.EqualValues(t, 1, stored.SuccessCount)
	assert.InDelta(t, 50.0, stored.SuccessRate(), 0.0001)
}

func TestMemoryWorkflowStore_RecordExecutionConcurrent(t *testing.T) {
	workflows := NewMemoryWorkflowStore()
	ctx := context.Background()
	require.NoError(t, workflows.Create(ctx, workflowFixture("WF-1")))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = workflows.RecordExecution(ctx, "WF-1", n%2 == 0)
		}(i)
	}
	wg.Wait()

	stored, err := workflows.Get(ctx, "WF-1")
	require.NoError(t, err)
	assert.EqualValues(t, 50, stored.ExecutionCount)
	assert.EqualValues(t, 25, stored.SuccessCount)
}

func TestMemoryWorkflowStore_DeleteRemovesFromOrder(t *testing.T) {
	workflows := NewMemoryWorkflowStore()
	ctx := context.Background()

	require.NoError(t, workflows.Create(ctx, workflowFixture("WF-1")))
	require.NoError(t, workflows.Create(ctx, workflowFixture("WF-2")))
	require.NoError(t, workflows.Delete(ctx, "WF-1"))

	listed, err := workflows.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "WF-2", listed[0].ID)

	assert.ErrorIs(t, workflows.Delete(ctx, "WF-1"), ErrNotFound)
}

// ==========================
// Notification Store Tests
// ==========================

func TestMemoryNotificationStore_FeedNewestFirst(t *testing.T) {
	notifications := NewMemoryNotificationStore()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, notifications.Add(ctx, &models.Notification{
			ID:     fmt.Sprintf("N-%d", i),
			UserID: "user-1",
			Title:  fmt.Sprintf("update %d", i),
		}))
	}

	feed, err := notifications.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, "N-3", feed[0].ID)
	assert.Equal(t, "N-1", feed[2].ID)
}

func TestMemoryNotificationStore_ReadTracking(t *testing.T) {
	notifications := NewMemoryNotificationStore()
	ctx := context.Background()

	require.NoError(t, notifications.Add(ctx, &models.Notification{ID: "N-1", UserID: "user-1"}))
	require.NoError(t, notifications.Add(ctx, &models.Notification{ID: "N-2", UserID: "user-1"}))
	require.NoError(t, notifications.Add(ctx, &models.Notification{ID: "N-3", UserID: "user-2"}))

	count, err := notifications.UnreadCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, notifications.MarkRead(ctx, "N-1"))
	count, err = notifications.UnreadCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, notifications.MarkAllRead(ctx, "user-1"))
	count, err = notifications.UnreadCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, count)

	// Other users' feeds are untouched.
	count, err = notifications.UnreadCount(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.ErrorIs(t, notifications.MarkRead(ctx, "N-missing"), ErrNotFound)
}

// ==========================
// Chat Store Tests
// ==========================

func TestMemoryChatStore_SessionLifecycle(t *testing.T) {
	chats := NewMemoryChatStore()
	ctx := context.Background()

	session := &models.ChatSession{
		ID:     "CS-1",
		UserID: "user-1",
		Messages: []models.ChatMessage{
			{ID: "m1", Role: models.ChatRoleAssistant, Content: "hello"},
		},
	}
	require.NoError(t, chats.CreateSession(ctx, session))

	// Reads are deep copies.
	fetched, err := chats.GetSession(ctx, "CS-1")
	require.NoError(t, err)
	fetched.Messages[0].Content = "mutated"

	again, err := chats.GetSession(ctx, "CS-1")
	require.NoError(t, err)
	assert.Equal(t, "hello", again.Messages[0].Content)

	again.Messages = append(again.Messages, models.ChatMessage{ID: "m2", Role: models.ChatRoleUser, Content: "hi"})
	require.NoError(t, chats.UpdateSession(ctx, again))

	final, err := chats.GetSession(ctx, "CS-1")
	require.NoError(t, err)
	assert.Len(t, final.Messages, 2)

	_, err = chats.GetSession(ctx, "CS-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

// ==========================
// User Store Tests
// ==========================

func TestMemoryUserStore_ListByRole(t *testing.T) {
	users := NewMemoryUserStore()
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &models.User{ID: "u1", Role: models.RoleEmployee}))
	require.NoError(t, users.Create(ctx, &models.User{ID: "a1", Role: models.RoleAgent}))
	require.NoError(t, users.Create(ctx, &models.User{ID: "a2", Role: models.RoleAgent}))

	agents, err := users.List(ctx, models.RoleAgent)
	require.NoError(t, err)
	assert.Len(t, agents, 2)

	everyone, err := users.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, everyone, 3)
}
