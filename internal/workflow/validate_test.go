// internal/workflow/validate_test.go
package workflow

import (
	"testing"

	stderrors "helpdesk-automation/internal/common/errors"
	"helpdesk-automation/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T) *Validator {
	validator, err := NewValidator(5)
	require.NoError(t, err)
	return validator
}

func validWorkflow() *models.Workflow {
	return &models.Workflow{
		ID:      "WF-1",
		Name:    "Auto-assign network issues",
		Enabled: true,
		Trigger: models.WorkflowTrigger{
			ID:   "trigger-1",
			Type: models.TriggerTicketCreated,
		},
		Conditions: []models.WorkflowCondition{
			{ID: "c1", Field: "category", Operator: models.OperatorEquals, Value: "network"},
		},
		Actions: []models.WorkflowAction{
			{ID: "a1", Type: models.ActionAssignAgent, Config: map[string]string{"agentId": "agent-network-1"}},
		},
	}
}

func TestValidator_Validate_AcceptsWellFormed(t *testing.T) {
	validator := newTestValidator(t)
	assert.NoError(t, validator.Validate(validWorkflow()))
}

func TestValidator_Validate_Rejections(t *testing.T) {
	validator := newTestValidator(t)

	tests := []struct {
		name    string
		mutate  func(w *models.Workflow)
		errPart string
	}{
		{
			name:    "empty name",
			mutate:  func(w *models.Workflow) { w.Name = "" },
			errPart: "schema violations",
		},
		{
			name:    "no actions",
			mutate:  func(w *models.Workflow) { w.Actions = nil },
			errPart: "schema violations",
		},
		{
			name:    "unknown trigger",
			mutate:  func(w *models.Workflow) { w.Trigger.Type = "ticket_teleported" },
			errPart: "unknown trigger type",
		},
		{
			name: "unknown operator",
			mutate: func(w *models.Workflow) {
				w.Conditions[0].Operator = "resembles"
			},
			errPart: "unknown condition operator",
		},
		{
			name: "unknown action type",
			mutate: func(w *models.Workflow) {
				w.Actions[0].Type = "launch_rocket"
			},
			errPart: "unknown action type",
		},
		{
			name: "missing action config",
			mutate: func(w *models.Workflow) {
				w.Actions[0].Config = map[string]string{}
			},
			errPart: "requires config field",
		},
		{
			name: "over the action limit",
			mutate: func(w *models.Workflow) {
				for i := 0; i < 6; i++ {
					w.Actions = append(w.Actions, models.WorkflowAction{
						ID: "extra", Type: models.ActionEscalate,
					})
				}
			},
			errPart: "limit is 5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workflow := validWorkflow()
			tt.mutate(workflow)
			err := validator.Validate(workflow)
			require.Error(t, err)

			var stdErr *stderrors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, stderrors.ErrCodeWorkflowInvalid, stdErr.Code)
			assert.False(t, stdErr.Retryable)
			assert.Contains(t, stdErr.Details, tt.errPart)
		})
	}
}

func TestValidator_Validate_EscalateNeedsNoConfig(t *testing.T) {
	validator := newTestValidator(t)

	workflow := validWorkflow()
	workflow.Actions = []models.WorkflowAction{
		{ID: "a1", Type: models.ActionEscalate},
	}

	assert.NoError(t, validator.Validate(workflow))
}

func TestValidator_Validate_EmptyConditionsAllowed(t *testing.T) {
	validator := newTestValidator(t)

	workflow := validWorkflow()
	workflow.Conditions = nil

	assert.NoError(t, validator.Validate(workflow))
}
