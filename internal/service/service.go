// Package service wires classification, routing, workflows, and
// persistence into the ticket operations the HTTP layer exposes.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"helpdesk-automation/internal/classify"
	"helpdesk-automation/internal/common/logger"
	"helpdesk-automation/internal/common/metrics"
	"helpdesk-automation/internal/models"
	"helpdesk-automation/internal/route"
	"helpdesk-automation/internal/store"
	"helpdesk-automation/internal/workflow"
)

// Service is the application core behind the HTTP handlers.
type Service struct {
	tickets       store.TicketRepository
	workflows     store.WorkflowStore
	users         store.UserStore
	notifications store.NotificationStore

	classifier *classify.Engine
	cache      *classify.Cache
	router     *route.Router
	engine     *workflow.Engine
	validator  *workflow.Validator

	log logger.Logger
	now func() time.Time
}

// Deps collects the service's collaborators. Cache may be nil.
type Deps struct {
	Tickets       store.TicketRepository
	Workflows     store.WorkflowStore
	Users         store.UserStore
	Notifications store.NotificationStore
	Classifier    *classify.Engine
	Cache         *classify.Cache
	Router        *route.Router
	Engine        *workflow.Engine
	Validator     *workflow.Validator
	Logger        logger.Logger
}

func New(deps Deps) *Service {
	return &Service{
		tickets:       deps.Tickets,
		workflows:     deps.Workflows,
		users:         deps.Users,
		notifications: deps.Notifications,
		classifier:    deps.Classifier,
		cache:         deps.Cache,
		router:        deps.Router,
		engine:        deps.Engine,
		validator:     deps.Validator,
		log:           deps.Logger,
		now:           time.Now,
	}
}

// classifyText consults the cache first; classification is
// deterministic so a hit is always valid.
func (s *Service) classifyText(ctx context.Context, title, description string) classify.Result {
	if s.cache != nil {
		if cached := s.cache.Get(ctx, title, description); cached != nil {
			return *cached
		}
	}
	result := s.classifier.Classify(title, description)
	if s.cache != nil {
		s.cache.Put(ctx, title, description, &result)
	}
	return result
}

// Suggest surfaces a real-time category/priority hint for a draft
// ticket. Returns nil when the text carries too little signal.
func (s *Service) Suggest(ctx context.Context, title, description string) *classify.Suggestion {
	return s.classifier.Suggest(title, description)
}

// MonitorSentiment scores a single comment or chat message.
func (s *Service) MonitorSentiment(text string) classify.SentimentReport {
	return s.classifier.MonitorSentiment(text)
}

// notifyUser appends a feed entry, logging failures without
// propagating them; the feed is best-effort.
func (s *Service) notifyUser(ctx context.Context, userID string, notificationType models.NotificationType, title, message, ticketID string, priority models.TicketPriority) {
	if s.notifications == nil || userID == "" {
		return
	}
	err := s.notifications.Add(ctx, &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      notificationType,
		Title:     title,
		Message:   message,
		TicketID:  ticketID,
		CreatedAt: s.now(),
		Priority:  priority,
	})
	if err != nil {
		s.log.Warn("Failed to append notification", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
	}
}

// dispatchEvent runs the workflow engine over the event and persists
// the mutations workflows applied to the ticket.
func (s *Service) dispatchEvent(ctx context.Context, event *models.Event) []workflow.ExecutionReport {
	reports, err := s.engine.HandleEvent(ctx, event)
	if err != nil {
		s.log.Error("Workflow dispatch failed", map[string]interface{}{
			"ticketId": event.Ticket.ID,
			"trigger":  event.Type,
			"error":    err.Error(),
		})
		return nil
	}

	mutated := false
	for _, report := range reports {
		if report.Matched {
			mutated = true
			break
		}
	}
	if mutated {
		if err := s.tickets.Update(ctx, event.Ticket); err != nil {
			s.log.Error("Failed to persist workflow mutations", map[string]interface{}{
				"ticketId": event.Ticket.ID,
				"error":    err.Error(),
			})
		}
	}
	return reports
}

func recordStageDuration(stage string, start time.Time) {
	metrics.TicketProcessingDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
