// internal/service/workflows.go
package service

import (
	"context"

	"github.com/google/uuid"

	"helpdesk-automation/internal/models"
)

// CreateWorkflow validates and registers a new automation rule.
func (s *Service) CreateWorkflow(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	now := s.now()
	workflow.ID = "WF-" + uuid.NewString()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now
	workflow.ExecutionCount = 0
	workflow.SuccessCount = 0

	if err := s.validator.Validate(workflow); err != nil {
		return nil, err
	}

	if err := s.workflows.Create(ctx, workflow); err != nil {
		return nil, err
	}

	s.log.Info("Workflow created", map[string]interface{}{
		"workflowId": workflow.ID,
		"name":       workflow.Name,
		"trigger":    workflow.Trigger.Type,
	})
	return workflow, nil
}

// UpdateWorkflow revalidates and replaces a workflow definition.
// Execution counters are preserved by the store.
func (s *Service) UpdateWorkflow(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if err := s.validator.Validate(workflow); err != nil {
		return nil, err
	}

	workflow.UpdatedAt = s.now()
	if err := s.workflows.Update(ctx, workflow); err != nil {
		return nil, err
	}
	return s.workflows.Get(ctx, workflow.ID)
}

// ToggleWorkflow flips the enabled flag.
func (s *Service) ToggleWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := s.workflows.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	workflow.Enabled = !workflow.Enabled
	workflow.UpdatedAt = s.now()
	if err := s.workflows.Update(ctx, workflow); err != nil {
		return nil, err
	}
	return s.workflows.Get(ctx, id)
}

// DeleteWorkflow removes a workflow definition.
func (s *Service) DeleteWorkflow(ctx context.Context, id string) error {
	return s.workflows.Delete(ctx, id)
}

// GetWorkflow returns one workflow with its execution counters.
func (s *Service) GetWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	return s.workflows.Get(ctx, id)
}

// ListWorkflows returns all workflows in registration order.
func (s *Service) ListWorkflows(ctx context.Context) ([]*models.Workflow, error) {
	return s.workflows.List(ctx)
}
