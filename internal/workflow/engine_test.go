// internal/workflow/engine_test.go
package workflow

import (
	"context"
	"errors"
	"testing"

	"helpdesk-automation/internal/common/logger"
	"helpdesk-automation/internal/models"
	"helpdesk-automation/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeNotifier struct {
	templates   []string
	autoReplies []string
	failWith    error
}

func (f *fakeNotifier) SendTemplate(ctx context.Context, ticket *models.Ticket, template string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.templates = append(f.templates, template)
	return nil
}

func (f *fakeNotifier) SendAutoReply(ctx context.Context, ticket *models.Ticket, message string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.autoReplies = append(f.autoReplies, message)
	return nil
}

func createTestEngine(t *testing.T, workflows store.WorkflowStore, notifier Notifier) *Engine {
	return NewEngine(workflows, notifier, logger.NewTestLogger(t), Options{})
}

func createTestTicket() *models.Ticket {
	return &models.Ticket{
		ID:          "TKT-1",
		Title:       "Cannot reset my password",
		Description: "The portal rejects my security answers",
		Category:    models.CategoryAccess,
		Priority:    models.PriorityMedium,
		Status:      models.StatusOpen,
		SubmittedBy: "user-1",
	}
}

func createTestWorkflow(id string, enabled bool, conditions []models.WorkflowCondition, actions []models.WorkflowAction) *models.Workflow {
	return &models.Workflow{
		ID:      id,
		Name:    "workflow " + id,
		Enabled: enabled,
		Trigger: models.WorkflowTrigger{
			ID:   "trigger-1",
			Type: models.TriggerTicketCreated,
		},
		Conditions: conditions,
		Actions:    actions,
	}
}

func action(id string, actionType models.ActionType, config map[string]string) models.WorkflowAction {
	return models.WorkflowAction{ID: id, Type: actionType, Config: config}
}

// ==========================
// Evaluation Tests
// ==========================

func TestEngine_Evaluate_TriggerMustMatch(t *testing.T) {
	engine := createTestEngine(t, store.NewMemoryWorkflowStore(), nil)
	workflow := createTestWorkflow("WF-1", true, nil, nil)

	assert.True(t, engine.Evaluate(workflow, &models.Event{Type: models.TriggerTicketCreated, Ticket: createTestTicket()}))
	assert.False(t, engine.Evaluate(workflow, &models.Event{Type: models.TriggerStatusChanged, Ticket: createTestTicket()}))
}

func TestEngine_Evaluate_ConditionsAndTogether(t *testing.T) {
	engine := createTestEngine(t, store.NewMemoryWorkflowStore(), nil)
	event := &models.Event{Type: models.TriggerTicketCreated, Ticket: createTestTicket()}

	bothHold := createTestWorkflow("WF-1", true, []models.WorkflowCondition{
		{Field: "category", Operator: models.OperatorEquals, Value: "access"},
		{Field: "title", Operator: models.OperatorContains, Value: "password"},
	}, nil)
	assert.True(t, engine.Evaluate(bothHold, event))

	oneFails := createTestWorkflow("WF-2", true, []models.WorkflowCondition{
		{Field: "category", Operator: models.OperatorEquals, Value: "access"},
		{Field: "priority", Operator: models.OperatorEquals, Value: "critical"},
	}, nil)
	assert.False(t, engine.Evaluate(oneFails, event))
}

func TestEngine_Evaluate_EmptyConditionsAlwaysFire(t *testing.T) {
	engine := createTestEngine(t, store.NewMemoryWorkflowStore(), nil)
	workflow := createTestWorkflow("WF-1", true, []models.WorkflowCondition{}, nil)

	assert.True(t, engine.Evaluate(workflow, &models.Event{Type: models.TriggerTicketCreated, Ticket: createTestTicket()}))
}

// ==========================
// Condition Operator Tests
// ==========================

func TestEngine_Conditions_Operators(t *testing.T) {
	engine := createTestEngine(t, store.NewMemoryWorkflowStore(), nil)
	ticket := createTestTicket()
	ticket.Feedback = &models.TicketFeedback{Rating: 4}

	tests := []struct {
		name      string
		condition models.WorkflowCondition
		expected  bool
	}{
		{"equals is case sensitive", models.WorkflowCondition{Field: "category", Operator: models.OperatorEquals, Value: "Access"}, false},
		{"equals exact", models.WorkflowCondition{Field: "category", Operator: models.OperatorEquals, Value: "access"}, true},
		{"not_equals negates equals", models.WorkflowCondition{Field: "category", Operator: models.OperatorNotEquals, Value: "Access"}, true},
		{"contains case insensitive", models.WorkflowCondition{Field: "title", Operator: models.OperatorContains, Value: "PASSWORD"}, true},
		{"contains absent substring", models.WorkflowCondition{Field: "title", Operator: models.OperatorContains, Value: "printer"}, false},
		{"greater_than numeric", models.WorkflowCondition{Field: "rating", Operator: models.OperatorGreaterThan, Value: "3"}, true},
		{"greater_than false on equal", models.WorkflowCondition{Field: "rating", Operator: models.OperatorGreaterThan, Value: "4"}, false},
		{"less_than numeric", models.WorkflowCondition{Field: "rating", Operator: models.OperatorLessThan, Value: "5"}, true},
		{"greater_than non-numeric field is false", models.WorkflowCondition{Field: "title", Operator: models.OperatorGreaterThan, Value: "3"}, false},
		{"less_than non-numeric value is false", models.WorkflowCondition{Field: "rating", Operator: models.OperatorLessThan, Value: "many"}, false},
		{"unknown field stringifies empty", models.WorkflowCondition{Field: "nope", Operator: models.OperatorEquals, Value: ""}, true},
		{"unknown operator is false", models.WorkflowCondition{Field: "category", Operator: "matches", Value: "access"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, engine.evaluateCondition(ticket, tt.condition))
		})
	}
}

func TestEngine_Conditions_ContainsCaseSensitiveOption(t *testing.T) {
	engine := NewEngine(store.NewMemoryWorkflowStore(), nil, logger.NewTestLogger(t), Options{ContainsCaseSensitive: true})
	ticket := createTestTicket()

	sensitive := models.WorkflowCondition{Field: "title", Operator: models.OperatorContains, Value: "PASSWORD"}
	assert.False(t, engine.evaluateCondition(ticket, sensitive))

	exact := models.WorkflowCondition{Field: "title", Operator: models.OperatorContains, Value: "password"}
	assert.True(t, engine.evaluateCondition(ticket, exact))
}

// ==========================
// Action Tests
// ==========================

func TestEngine_Execute_Actions(t *testing.T) {
	notifier := &fakeNotifier{}
	engine := createTestEngine(t, store.NewMemoryWorkflowStore(), notifier)
	ticket := createTestTicket()

	workflow := createTestWorkflow("WF-1", true, nil, []models.WorkflowAction{
		action("a1", models.ActionAssignAgent, map[string]string{"agentId": "agent-access-1"}),
		action("a2", models.ActionChangeStatus, map[string]string{"status": "in-progress"}),
		action("a3", models.ActionChangePriority, map[string]string{"priority": "high"}),
		action("a4", models.ActionAddComment, map[string]string{"content": "handled automatically"}),
		action("a5", models.ActionAddTag, map[string]string{"tag": "automated"}),
		action("a6", models.ActionSendEmail, map[string]string{"template": "ticket_assigned"}),
	})

	results := engine.Execute(context.Background(), workflow, ticket)

	require.Len(t, results, 6)
	for _, result := range results {
		assert.True(t, result.Success, result.ActionID)
	}
	assert.Equal(t, "agent-access-1", ticket.AssignedTo)
	assert.Equal(t, models.StatusInProgress, ticket.Status)
	assert.Equal(t, models.PriorityHigh, ticket.Priority)
	require.Len(t, ticket.Comments, 1)
	assert.Equal(t, "Workflow Automation", ticket.Comments[0].UserName)
	assert.Equal(t, []string{"automated"}, ticket.Tags)
	assert.Equal(t, []string{"ticket_assigned"}, notifier.templates)
}

func TestEngine_Execute_AutoReplyCommentsAndNotifies(t *testing.T) {
	notifier := &fakeNotifier{}
	engine := createTestEngine(t, store.NewMemoryWorkflowStore(), notifier)
	ticket := createTestTicket()

	workflow := createTestWorkflow("WF-1", true, nil, []models.WorkflowAction{
		action("a1", models.ActionAutoReply, map[string]string{"message": "use the portal"}),
	})

	results := engine.Execute(context.Background(), workflow, ticket)

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	require.Len(t, ticket.Comments, 1)
	assert.Equal(t, "Support Assistant", ticket.Comments[0].UserName)
	assert.Equal(t, "use the portal", ticket.Comments[0].Content)
	assert.Equal(t, []string{"use the portal"}, notifier.autoReplies)
}

func TestEngine_Execute_EscalateBumpsOneStep(t *testing.T) {
	engine := createTestEngine(t, store.NewMemoryWorkflowStore(), nil)
	ticket := createTestTicket()
	ticket.Priority = models.PriorityHigh

	workflow := createTestWorkflow("WF-1", true, nil, []models.WorkflowAction{
		action("a1", models.ActionEscalate, nil),
	})

	results := engine.Execute(context.Background(), workflow, ticket)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, models.PriorityCritical, ticket.Priority)

	// Already at the ceiling stays there.
	engine.Execute(context.Background(), workflow, ticket)
	assert.Equal(t, models.PriorityCritical, ticket.Priority)
}

func TestEngine_Execute_FailureIsolation(t *testing.T) {
	engine := createTestEngine(t, store.NewMemoryWorkflowStore(), nil)
	ticket := createTestTicket()

	workflow := createTestWorkflow("WF-1", true, nil, []models.WorkflowAction{
		action("a1", models.ActionAddTag, map[string]string{"tag": "first"}),
		action("a2", models.ActionChangeStatus, map[string]string{}),
		action("a3", "reboot_server", nil),
		action("a4", models.ActionChangeStatus, map[string]string{"status": "nonsense"}),
		action("a5", models.ActionAddTag, map[string]string{"tag": "last"}),
	})

	results := engine.Execute(context.Background(), workflow, ticket)

	require.Len(t, results, 5)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Contains(t, results[1].Error, "missing required field")
	assert.False(t, results[2].Success)
	assert.Contains(t, results[2].Error, "unknown action type")
	assert.False(t, results[3].Success)
	assert.Contains(t, results[3].Error, "invalid status")
	assert.True(t, results[4].Success)

	// Failed actions left the ticket untouched; successful ones applied.
	assert.Equal(t, models.StatusOpen, ticket.Status)
	assert.Equal(t, []string{"first", "last"}, ticket.Tags)
}

func TestEngine_Execute_NotifierFailureFailsOnlyThatAction(t *testing.T) {
	notifier := &fakeNotifier{failWith: errors.New("ses throttled")}
	engine := createTestEngine(t, store.NewMemoryWorkflowStore(), notifier)
	ticket := createTestTicket()

	workflow := createTestWorkflow("WF-1", true, nil, []models.WorkflowAction{
		action("a1", models.ActionSendEmail, map[string]string{"template": "ticket_created"}),
		action("a2", models.ActionAddTag, map[string]string{"tag": "notified"}),
	})

	results := engine.Execute(context.Background(), workflow, ticket)

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "ses throttled")
	assert.True(t, results[1].Success)
	assert.Equal(t, []string{"notified"}, ticket.Tags)
}

func TestEngine_Execute_NilNotifierSendsSucceedLocally(t *testing.T) {
	engine := createTestEngine(t, store.NewMemoryWorkflowStore(), nil)
	ticket := createTestTicket()

	workflow := createTestWorkflow("WF-1", true, nil, []models.WorkflowAction{
		action("a1", models.ActionSendEmail, map[string]string{"template": "ticket_created"}),
		action("a2", models.ActionAutoReply, map[string]string{"message": "noted"}),
	})

	results := engine.Execute(context.Background(), workflow, ticket)

	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.True(t, results[1].Success)
	// The auto-reply comment still lands even without a notifier.
	require.Len(t, ticket.Comments, 1)
}

// ==========================
// Event Handling Tests
// ==========================

func TestEngine_HandleEvent_RunsEnabledInOrder(t *testing.T) {
	workflows := store.NewMemoryWorkflowStore()
	ctx := context.Background()

	first := createTestWorkflow("WF-1", true, nil, []models.WorkflowAction{
		action("a1", models.ActionAddTag, map[string]string{"tag": "first"}),
	})
	disabled := createTestWorkflow("WF-2", false, nil, []models.WorkflowAction{
		action("a1", models.ActionAddTag, map[string]string{"tag": "never"}),
	})
	second := createTestWorkflow("WF-3", true, nil, []models.WorkflowAction{
		action("a1", models.ActionAddTag, map[string]string{"tag": "second"}),
	})
	require.NoError(t, workflows.Create(ctx, first))
	require.NoError(t, workflows.Create(ctx, disabled))
	require.NoError(t, workflows.Create(ctx, second))

	engine := createTestEngine(t, workflows, nil)
	ticket := createTestTicket()

	reports, err := engine.HandleEvent(ctx, &models.Event{Type: models.TriggerTicketCreated, Ticket: ticket})

	require.NoError(t, err)
	// Disabled workflows are skipped entirely, no report.
	require.Len(t, reports, 2)
	assert.Equal(t, "WF-1", reports[0].WorkflowID)
	assert.Equal(t, "WF-3", reports[1].WorkflowID)
	assert.True(t, reports[0].Matched)
	assert.True(t, reports[1].Matched)
	assert.Equal(t, []string{"first", "second"}, ticket.Tags)
}

func TestEngine_HandleEvent_NonMatchingReportsUnmatched(t *testing.T) {
	workflows := store.NewMemoryWorkflowStore()
	ctx := context.Background()

	miss := createTestWorkflow("WF-1", true, []models.WorkflowCondition{
		{Field: "category", Operator: models.OperatorEquals, Value: "network"},
	}, []models.WorkflowAction{
		action("a1", models.ActionAddTag, map[string]string{"tag": "network"}),
	})
	require.NoError(t, workflows.Create(ctx, miss))

	engine := createTestEngine(t, workflows, nil)
	ticket := createTestTicket()

	reports, err := engine.HandleEvent(ctx, &models.Event{Type: models.TriggerTicketCreated, Ticket: ticket})

	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.False(t, reports[0].Matched)
	assert.Empty(t, reports[0].Results)
	assert.Empty(t, ticket.Tags)

	// Non-matching runs do not touch the counters.
	stored, err := workflows.Get(ctx, "WF-1")
	require.NoError(t, err)
	assert.Zero(t, stored.ExecutionCount)
}

func TestEngine_HandleEvent_LaterWorkflowSeesEarlierMutations(t *testing.T) {
	workflows := store.NewMemoryWorkflowStore()
	ctx := context.Background()

	escalator := createTestWorkflow("WF-1", true, nil, []models.WorkflowAction{
		action("a1", models.ActionChangePriority, map[string]string{"priority": "critical"}),
	})
	pager := createTestWorkflow("WF-2", true, []models.WorkflowCondition{
		{Field: "priority", Operator: models.OperatorEquals, Value: "critical"},
	}, []models.WorkflowAction{
		action("a1", models.ActionAddTag, map[string]string{"tag": "paged"}),
	})
	require.NoError(t, workflows.Create(ctx, escalator))
	require.NoError(t, workflows.Create(ctx, pager))

	engine := createTestEngine(t, workflows, nil)
	ticket := createTestTicket()

	reports, err := engine.HandleEvent(ctx, &models.Event{Type: models.TriggerTicketCreated, Ticket: ticket})

	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.True(t, reports[1].Matched)
	assert.Equal(t, []string{"paged"}, ticket.Tags)
}

func TestEngine_HandleEvent_RecordsExecutionCounters(t *testing.T) {
	workflows := store.NewMemoryWorkflowStore()
	ctx := context.Background()

	good := createTestWorkflow("WF-1", true, nil, []models.WorkflowAction{
		action("a1", models.ActionAddTag, map[string]string{"tag": "ok"}),
	})
	flaky := createTestWorkflow("WF-2", true, nil, []models.WorkflowAction{
		action("a1", models.ActionChangeStatus, map[string]string{}),
	})
	require.NoError(t, workflows.Create(ctx, good))
	require.NoError(t, workflows.Create(ctx, flaky))

	engine := createTestEngine(t, workflows, nil)

	for i := 0; i < 3; i++ {
		_, err := engine.HandleEvent(ctx, &models.Event{Type: models.TriggerTicketCreated, Ticket: createTestTicket()})
		require.NoError(t, err)
	}

	goodStored, err := workflows.Get(ctx, "WF-1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, goodStored.ExecutionCount)
	assert.EqualValues(t, 3, goodStored.SuccessCount)
	assert.InDelta(t, 100.0, goodStored.SuccessRate(), 0.0001)

	flakyStored, err := workflows.Get(ctx, "WF-2")
	require.NoError(t, err)
	assert.EqualValues(t, 3, flakyStored.ExecutionCount)
	assert.Zero(t, flakyStored.SuccessCount)
	assert.Zero(t, flakyStored.SuccessRate())
}

func TestEngine_HandleEvent_PartialFailureMarksRunFailed(t *testing.T) {
	workflows := store.NewMemoryWorkflowStore()
	ctx := context.Background()

	mixed := createTestWorkflow("WF-1", true, nil, []models.WorkflowAction{
		action("a1", models.ActionAddTag, map[string]string{"tag": "applied"}),
		action("a2", models.ActionAssignAgent, map[string]string{}),
	})
	require.NoError(t, workflows.Create(ctx, mixed))

	engine := createTestEngine(t, workflows, nil)
	ticket := createTestTicket()

	reports, err := engine.HandleEvent(ctx, &models.Event{Type: models.TriggerTicketCreated, Ticket: ticket})

	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.True(t, reports[0].Matched)
	assert.False(t, reports[0].Success)
	assert.Equal(t, []string{"applied"}, ticket.Tags)
}
