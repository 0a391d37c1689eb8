// Package workflow evaluates user-authored automation rules against
// ticket lifecycle events and applies their actions.
package workflow

import (
	"context"
	"time"

	"helpdesk-automation/internal/common/logger"
	"helpdesk-automation/internal/common/metrics"
	"helpdesk-automation/internal/models"
	"helpdesk-automation/internal/store"
)

// Notifier delivers the outbound side effects of email-style actions.
type Notifier interface {
	SendTemplate(ctx context.Context, ticket *models.Ticket, template string) error
	SendAutoReply(ctx context.Context, ticket *models.Ticket, message string) error
}

// ActionResult records the outcome of one action in a run.
type ActionResult struct {
	ActionID string            `json:"actionId"`
	Type     models.ActionType `json:"type"`
	Success  bool              `json:"success"`
	Error    string            `json:"error,omitempty"`
}

// ExecutionReport summarizes one workflow's encounter with an event.
// Matched=false means the trigger or conditions did not hold; disabled
// workflows produce no report at all.
type ExecutionReport struct {
	WorkflowID   string         `json:"workflowId"`
	WorkflowName string         `json:"workflowName"`
	Matched      bool           `json:"matched"`
	Results      []ActionResult `json:"results,omitempty"`
	Success      bool           `json:"success"`
}

// Options tune engine behavior.
type Options struct {
	// ContainsCaseSensitive switches the contains operator from its
	// default case-insensitive matching.
	ContainsCaseSensitive bool
}

// Engine runs workflows. Evaluation of a single event is sequential:
// workflows run one at a time in store registration order, and each
// action sees ticket state as mutated by the actions before it.
type Engine struct {
	workflows store.WorkflowStore
	notifier  Notifier
	log       logger.Logger
	opts      Options
	now       func() time.Time
}

func NewEngine(workflows store.WorkflowStore, notifier Notifier, log logger.Logger, opts Options) *Engine {
	return &Engine{
		workflows: workflows,
		notifier:  notifier,
		log:       log,
		opts:      opts,
		now:       time.Now,
	}
}

// Evaluate reports whether the workflow fires for the event: the
// trigger type must match exactly and every condition must hold.
// An empty condition list always holds.
func (e *Engine) Evaluate(workflow *models.Workflow, event *models.Event) bool {
	if workflow.Trigger.Type != event.Type {
		return false
	}
	for _, condition := range workflow.Conditions {
		if !e.evaluateCondition(event.Ticket, condition) {
			return false
		}
	}
	return true
}

// Execute applies the workflow's actions to the ticket in declared
// order. A failing action is reported and skipped; later actions still
// run against the mutated ticket. There is no rollback.
func (e *Engine) Execute(ctx context.Context, workflow *models.Workflow, ticket *models.Ticket) []ActionResult {
	results := make([]ActionResult, 0, len(workflow.Actions))

	for _, action := range workflow.Actions {
		result := e.applyAction(ctx, ticket, action)
		if !result.Success {
			metrics.WorkflowActionsFailed.WithLabelValues(string(action.Type), result.Error).Inc()
			e.log.Warn("Workflow action failed", map[string]interface{}{
				"workflowId": workflow.ID,
				"actionId":   action.ID,
				"actionType": action.Type,
				"error":      result.Error,
			})
		}
		results = append(results, result)
	}

	return results
}

// HandleEvent runs every enabled workflow against the event, in the
// order the store returns them. The ticket in the event is mutated in
// place; each workflow sees the effects of the ones before it.
func (e *Engine) HandleEvent(ctx context.Context, event *models.Event) ([]ExecutionReport, error) {
	workflows, err := e.workflows.List(ctx)
	if err != nil {
		return nil, err
	}

	var reports []ExecutionReport
	for _, workflow := range workflows {
		if !workflow.Enabled {
			continue
		}

		report := ExecutionReport{
			WorkflowID:   workflow.ID,
			WorkflowName: workflow.Name,
		}

		if !e.Evaluate(workflow, event) {
			reports = append(reports, report)
			continue
		}

		report.Matched = true
		report.Results = e.Execute(ctx, workflow, event.Ticket)

		report.Success = true
		for _, result := range report.Results {
			if !result.Success {
				report.Success = false
				break
			}
		}

		outcome := "success"
		if !report.Success {
			outcome = "failure"
		}
		metrics.WorkflowExecutions.WithLabelValues(workflow.ID, outcome).Inc()

		if err := e.workflows.RecordExecution(ctx, workflow.ID, report.Success); err != nil {
			e.log.Warn("Failed to record workflow execution", map[string]interface{}{
				"workflowId": workflow.ID,
				"error":      err.Error(),
			})
		}

		e.log.Info("Workflow executed", map[string]interface{}{
			"workflowId": workflow.ID,
			"name":       workflow.Name,
			"ticketId":   event.Ticket.ID,
			"trigger":    event.Type,
			"success":    report.Success,
		})

		reports = append(reports, report)
	}

	return reports, nil
}
