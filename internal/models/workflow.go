// internal/models/workflow.go
package models

import "time"

// TriggerType is the ticket lifecycle event a workflow listens for.
type TriggerType string

const (
	TriggerTicketCreated   TriggerType = "ticket_created"
	TriggerTicketUpdated   TriggerType = "ticket_updated"
	TriggerPriorityChanged TriggerType = "priority_changed"
	TriggerStatusChanged   TriggerType = "status_changed"
	TriggerCommentAdded    TriggerType = "comment_added"
)

func (t TriggerType) Valid() bool {
	switch t {
	case TriggerTicketCreated, TriggerTicketUpdated, TriggerPriorityChanged,
		TriggerStatusChanged, TriggerCommentAdded:
		return true
	}
	return false
}

// ConditionOperator compares a ticket field against an authored value.
type ConditionOperator string

const (
	OperatorEquals      ConditionOperator = "equals"
	OperatorNotEquals   ConditionOperator = "not_equals"
	OperatorContains    ConditionOperator = "contains"
	OperatorGreaterThan ConditionOperator = "greater_than"
	OperatorLessThan    ConditionOperator = "less_than"
)

func (o ConditionOperator) Valid() bool {
	switch o {
	case OperatorEquals, OperatorNotEquals, OperatorContains,
		OperatorGreaterThan, OperatorLessThan:
		return true
	}
	return false
}

// ActionType identifies a workflow side effect.
type ActionType string

const (
	ActionAssignAgent    ActionType = "assign_agent"
	ActionChangeStatus   ActionType = "change_status"
	ActionChangePriority ActionType = "change_priority"
	ActionSendEmail      ActionType = "send_email"
	ActionAddComment     ActionType = "add_comment"
	ActionEscalate       ActionType = "escalate"
	ActionAutoReply      ActionType = "auto_reply"
	ActionAddTag         ActionType = "add_tag"
)

func (a ActionType) Valid() bool {
	switch a {
	case ActionAssignAgent, ActionChangeStatus, ActionChangePriority,
		ActionSendEmail, ActionAddComment, ActionEscalate, ActionAutoReply,
		ActionAddTag:
		return true
	}
	return false
}

// WorkflowTrigger names the event that makes a workflow eligible to run.
type WorkflowTrigger struct {
	ID    string      `json:"id"`
	Type  TriggerType `json:"type"`
	Label string      `json:"label"`
}

// WorkflowCondition is a single field/operator/value predicate. All
// conditions on a workflow AND together; there is no OR or grouping.
type WorkflowCondition struct {
	ID       string            `json:"id"`
	Field    string            `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    string            `json:"value"`
}

// WorkflowAction is a typed side effect with a per-type config map. The
// workflow engine compiles the raw config into a typed payload before
// applying it; missing required keys fail only that action.
type WorkflowAction struct {
	ID     string            `json:"id"`
	Type   ActionType        `json:"type"`
	Label  string            `json:"label"`
	Config map[string]string `json:"config"`
}

// Workflow is a user-authored automation rule: trigger + conditions +
// ordered actions. A workflow without actions is invalid; a workflow
// without conditions fires on every matching trigger.
type Workflow struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	Enabled        bool                `json:"enabled"`
	Trigger        WorkflowTrigger     `json:"trigger"`
	Conditions     []WorkflowCondition `json:"conditions"`
	Actions        []WorkflowAction    `json:"actions"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
	ExecutionCount int64               `json:"executionCount"`
	SuccessCount   int64               `json:"successCount"`
}

// SuccessRate is the percentage of successful runs over all attempts.
func (w *Workflow) SuccessRate() float64 {
	if w.ExecutionCount == 0 {
		return 0
	}
	return float64(w.SuccessCount) / float64(w.ExecutionCount) * 100
}

// Clone returns a deep copy of the workflow.
func (w *Workflow) Clone() *Workflow {
	if w == nil {
		return nil
	}
	clone := *w
	if w.Conditions != nil {
		clone.Conditions = make([]WorkflowCondition, len(w.Conditions))
		copy(clone.Conditions, w.Conditions)
	}
	if w.Actions != nil {
		clone.Actions = make([]WorkflowAction, len(w.Actions))
		for i, action := range w.Actions {
			copied := action
			if action.Config != nil {
				copied.Config = make(map[string]string, len(action.Config))
				for k, v := range action.Config {
					copied.Config[k] = v
				}
			}
			clone.Actions[i] = copied
		}
	}
	return &clone
}

// Event is a ticket lifecycle occurrence delivered to the workflow engine.
type Event struct {
	Type   TriggerType `json:"type"`
	Ticket *Ticket     `json:"ticket"`
}
