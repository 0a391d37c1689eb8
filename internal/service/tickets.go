// internal/service/tickets.go
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"helpdesk-automation/internal/classify"
	"helpdesk-automation/internal/common/metrics"
	"helpdesk-automation/internal/models"
	"helpdesk-automation/internal/route"
	"helpdesk-automation/internal/store"
	"helpdesk-automation/internal/workflow"
)

// SubmitRequest is a new ticket as entered by the submitter. Category
// and Priority are optional; classification fills whatever is absent.
type SubmitRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    models.TicketCategory `json:"category,omitempty"`
	Priority    models.TicketPriority `json:"priority,omitempty"`
	Source      models.TicketSource   `json:"source,omitempty"`
	SubmittedBy string                `json:"submittedBy"`
}

// SubmitResult bundles everything the intake pipeline produced.
type SubmitResult struct {
	Ticket         *models.Ticket             `json:"ticket"`
	Classification classify.Result            `json:"classification"`
	Routing        route.Decision             `json:"routing"`
	Workflows      []workflow.ExecutionReport `json:"workflows,omitempty"`
}

/// SubmitTicket runs the full intake pipeline: classify, route, apply
// the routing outcome, persist, then fire ticket_created workflows.
func (s *Service) SubmitTicket(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	start := s.now()
	now := start

	ticket := &models.Ticket{
		ID:          "TKT-" + uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Status:      models.StatusOpen,
		Source:      req.Source,
		SubmittedBy: req.SubmittedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
		Comments:    []models.TicketComment{},
	}
	if ticket.Source == "" {
		ticket.Source = models.SourcePortal
	}

	classification := s.classifyText(ctx, req.Title, req.Description)
	recordStageDuration("classify", start)
	metrics.TicketsClassified.WithLabelValues(
		string(classification.Category), string(classification.Priority)).Inc()

	if ticket.Category == "" {
		ticket.Category = classification.Category
	}
	if ticket.Priority == "" {
		ticket.Priority = classification.Priority
	}

	decision := s.router.Route(classification, ticket)
	s.applyRouting(ticket, decision)
	recordStageDuration("route", start)

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	s.notifyUser(ctx, ticket.SubmittedBy, models.NotificationTicketUpdate,
		"Ticket received",
		fmt.Sprintf("Your ticket %q was received and is being processed.", ticket.Title),
		ticket.ID, ticket.Priority)
	if ticket.AssignedTo != "" {
		s.notifyUser(ctx, ticket.AssignedTo, models.NotificationTicketAssigned,
			"Ticket assigned",
			fmt.Sprintf("Ticket %q has been assigned to you. %s", ticket.Title, decision.RoutingReason),
			ticket.ID, ticket.Priority)
	}

	event := &models.Event{Type: models.TriggerTicketCreated, Ticket: ticket}
	reports := s.dispatchEvent(ctx, event)
	recordStageDuration("workflows", start)

	s.log.Info("Ticket submitted", map[string]interface{}{
		"ticketId": ticket.ID,
		"category": ticket.Category,
		"priority": ticket.Priority,
		"reason":   decision.RoutingReason,
	})

	return &SubmitResult{
		Ticket:         ticket,
		Classification: classification,
		Routing:        decision,
		Workflows:      reports,
	}, nil
}

// applyRouting translates the decision into ticket state. Only the
// first true outcome applies; the router guarantees they are mutually
// consistent.
func (s *Service) applyRouting(ticket *models.Ticket, decision route.Decision) {
	switch {
	case decision.ShouldAutoResolve:
		metrics.RoutingDecisions.WithLabelValues("auto_resolve").Inc()
		ticket.SetStatus(models.StatusResolved, s.now())
		ticket.AddTag("auto-resolved")
		ticket.Comments = append(ticket.Comments, models.TicketComment{
			ID:        uuid.NewString(),
			TicketID:  ticket.ID,
			UserID:    "system",
			UserName:  "Support Assistant",
			UserRole:  "system",
			Content:   decision.RoutingReason,
			CreatedAt: s.now(),
		})

	case decision.AssignToAgent:
		metrics.RoutingDecisions.WithLabelValues("agent").Inc()
		ticket.AssignedTo = decision.SuggestedAgentID
		ticket.Status = models.StatusInProgress

	case decision.AssignToChatbot:
		metrics.RoutingDecisions.WithLabelValues("chatbot").Inc()
		ticket.AddTag("chatbot")
	}
}

// GetTicket returns one ticket.
func (s *Service) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	return s.tickets.Get(ctx, id)
}

// ListTickets returns tickets matching the filter, newest first.
func (s *Service) ListTickets(ctx context.Context, filter store.TicketFilter) ([]*models.Ticket, error) {
	return s.tickets.List(ctx, filter)
}

// ChangeStatus transitions the ticket and fires status_changed
// workflows against the new state.
func (s *Service) ChangeStatus(ctx context.Context, id string, status models.TicketStatus) (*models.Ticket, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid status %q", status)
	}

	ticket, err := s.tickets.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ticket.SetStatus(status, s.now())
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	if status.Terminal() {
		s.notifyUser(ctx, ticket.SubmittedBy, models.NotificationTicketResolved,
			"Ticket resolved",
			fmt.Sprintf("Your ticket %q has been resolved.", ticket.Title),
			ticket.ID, ticket.Priority)
	}

	s.dispatchEvent(ctx, &models.Event{Type: models.TriggerStatusChanged, Ticket: ticket})
	return ticket, nil
}

// ChangePriority updates priority and fires priority_changed workflows.
func (s *Service) ChangePriority(ctx context.Context, id string, priority models.TicketPriority) (*models.Ticket, error) {
	if !priority.Valid() {
		return nil, fmt.Errorf("invalid priority %q", priority)
	}

	ticket, err := s.tickets.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ticket.Priority = priority
	ticket.UpdatedAt = s.now()
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.dispatchEvent(ctx, &models.Event{Type: models.TriggerPriorityChanged, Ticket: ticket})
	return ticket, nil
}

// AssignTicket sets the assignee and fires ticket_updated workflows.
func (s *Service) AssignTicket(ctx context.Context, id, agentID string) (*models.Ticket, error) {
	ticket, err := s.tickets.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ticket.AssignedTo = agentID
	if ticket.Status == models.StatusOpen {
		ticket.Status = models.StatusInProgress
	}
	ticket.UpdatedAt = s.now()
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.notifyUser(ctx, agentID, models.NotificationTicketAssigned,
		"Ticket assigned",
		fmt.Sprintf("Ticket %q has been assigned to you.", ticket.Title),
		ticket.ID, ticket.Priority)

	s.dispatchEvent(ctx, &models.Event{Type: models.TriggerTicketUpdated, Ticket: ticket})
	return ticket, nil
}

// AddComment appends a comment and fires comment_added workflows. The
// comment's sentiment is monitored; a negative comment on an open
// ticket escalates its priority one step.
func (s *Service) AddComment(ctx context.Context, id string, author *models.User, content string) (*models.Ticket, error) {
	ticket, err := s.tickets.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ticket.Comments = append(ticket.Comments, models.TicketComment{
		ID:        uuid.NewString(),
		TicketID:  ticket.ID,
		UserID:    author.ID,
		UserName:  author.Name,
		UserRole:  string(author.Role),
		Content:   content,
		CreatedAt: now,
	})
	ticket.UpdatedAt = now

	if author.Role == models.RoleEmployee && !ticket.Status.Terminal() {
		report := s.classifier.MonitorSentiment(content)
		if report.Label == classify.SentimentNegative {
			ticket.Priority = ticket.Priority.Escalate()
			s.log.Info("Priority escalated on negative comment", map[string]interface{}{
				"ticketId":  ticket.ID,
				"priority":  ticket.Priority,
				"sentiment": report.Score,
			})
		}
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.dispatchEvent(ctx, &models.Event{Type: models.TriggerCommentAdded, Ticket: ticket})
	return ticket, nil
}

// SubmitFeedback records the submitter's rating on a resolved ticket.
func (s *Service) SubmitFeedback(ctx context.Context, id string, rating int, comment string) (*models.Ticket, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}

	ticket, err := s.tickets.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ticket.Status.Terminal() {
		return nil, fmt.Errorf("feedback requires a resolved or closed ticket, status is %q", ticket.Status)
	}

	now := s.now()
	ticket.Feedback = &models.TicketFeedback{
		Rating:      rating,
		Comment:     comment,
		SubmittedAt: now,
	}
	ticket.UpdatedAt = now

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// BulkDeleteTickets removes tickets by ID and reports how many existed.
func (s *Service) BulkDeleteTickets(ctx context.Context, ids []string) (int, error) {
	deleted, err := s.tickets.BulkDelete(ctx, ids)
	if err != nil {
		return 0, err
	}
	s.log.Info("Tickets bulk deleted", map[string]interface{}{
		"requested": len(ids),
		"deleted":   deleted,
	})
	return deleted, nil
}
