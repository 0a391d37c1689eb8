// internal/workflow/actions.go
package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"helpdesk-automation/internal/models"
)

// requiredConfigKeys maps each action type to the config fields it
// cannot run without. Escalate needs nothing; it always bumps one step.
var requiredConfigKeys = map[models.ActionType][]string{
	models.ActionAssignAgent:    {"agentId"},
	models.ActionChangeStatus:   {"status"},
	models.ActionChangePriority: {"priority"},
	models.ActionSendEmail:      {"template"},
	models.ActionAddComment:     {"content"},
	models.ActionEscalate:       {},
	models.ActionAutoReply:      {"message"},
	models.ActionAddTag:         {"tag"},
}

// applyAction compiles the raw config and mutates the ticket. A config
// or delivery problem fails only this action.
func (e *Engine) applyAction(ctx context.Context, ticket *models.Ticket, action models.WorkflowAction) ActionResult {
	result := ActionResult{
		ActionID: action.ID,
		Type:     action.Type,
	}

	required, known := requiredConfigKeys[action.Type]
	if !known {
		result.Error = fmt.Sprintf("unknown action type %q", action.Type)
		return result
	}
	for _, key := range required {
		if action.Config[key] == "" {
			result.Error = fmt.Sprintf("action config missing required field %q", key)
			return result
		}
	}

	now := e.now()

	switch action.Type {
	case models.ActionAssignAgent:
		ticket.AssignedTo = action.Config["agentId"]
		ticket.UpdatedAt = now

	case models.ActionChangeStatus:
		status := models.TicketStatus(action.Config["status"])
		if !status.Valid() {
			result.Error = fmt.Sprintf("invalid status %q", action.Config["status"])
			return result
		}
		ticket.SetStatus(status, now)

	case models.ActionChangePriority:
		priority := models.TicketPriority(action.Config["priority"])
		if !priority.Valid() {
			result.Error = fmt.Sprintf("invalid priority %q", action.Config["priority"])
			return result
		}
		ticket.Priority = priority
		ticket.UpdatedAt = now

	case models.ActionSendEmail:
		if e.notifier != nil {
			if err := e.notifier.SendTemplate(ctx, ticket, action.Config["template"]); err != nil {
				result.Error = fmt.Sprintf("email send failed: %s", err)
				return result
			}
		}

	case models.ActionAddComment:
		ticket.Comments = append(ticket.Comments, models.TicketComment{
			ID:        uuid.NewString(),
			TicketID:  ticket.ID,
			UserID:    "system",
			UserName:  "Workflow Automation",
			UserRole:  "system",
			Content:   action.Config["content"],
			CreatedAt: now,
		})
		ticket.UpdatedAt = now

	case models.ActionEscalate:
		ticket.Priority = ticket.Priority.Escalate()
		ticket.UpdatedAt = now

	case models.ActionAutoReply:
		message := action.Config["message"]
		ticket.Comments = append(ticket.Comments, models.TicketComment{
			ID:        uuid.NewString(),
			TicketID:  ticket.ID,
			UserID:    "system",
			UserName:  "Support Assistant",
			UserRole:  "system",
			Content:   message,
			CreatedAt: now,
		})
		ticket.UpdatedAt = now
		if e.notifier != nil {
			if err := e.notifier.SendAutoReply(ctx, ticket, message); err != nil {
				result.Error = fmt.Sprintf("auto-reply send failed: %s", err)
				return result
			}
		}

	case models.ActionAddTag:
		ticket.AddTag(action.Config["tag"])
		ticket.UpdatedAt = now
	}

	result.Success = true
	return result
}
