// Package chatbot implements the support assistant: intent detection
// over incoming messages and canned responses with follow-up actions.
package chatbot

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"helpdesk-automation/internal/common/logger"
	"helpdesk-automation/internal/models"
	"helpdesk-automation/internal/store"
)

const welcomeMessage = "Hello! I'm your AI support assistant. I can help you with common IT issues, create tickets, or find solutions in our knowledge base. What can I help you with today?"

var welcomeSuggestions = []string{
	"I need to reset my password",
	"My computer won't turn on",
	"I can't connect to the network",
	"I need software installed",
}

// Responder manages chatbot sessions and generates replies.
type Responder struct {
	sessions store.ChatStore
	log      logger.Logger
	now      func() time.Time
}

func NewResponder(sessions store.ChatStore, log logger.Logger) *Responder {
	return &Responder{sessions: sessions, log: log, now: time.Now}
}

// StartSession opens a conversation seeded with the welcome turn.
func (r *Responder) StartSession(ctx context.Context, userID string) (*models.ChatSession, error) {
	now := r.now()
	session := &models.ChatSession{
		ID:     uuid.NewString(),
		UserID: userID,
		Messages: []models.ChatMessage{
			{
				ID:          "welcome",
				Role:        models.ChatRoleAssistant,
				Content:     welcomeMessage,
				Timestamp:   now,
				Suggestions: welcomeSuggestions,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// HandleMessage appends the user turn, generates the reply, and stores
// the updated session. Returns the assistant's message.
func (r *Responder) HandleMessage(ctx context.Context, sessionID, message string) (*models.ChatMessage, error) {
	session, err := r.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := r.now()
	session.Messages = append(session.Messages, models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      models.ChatRoleUser,
		Content:   message,
		Timestamp: now,
	})

	reply := respond(message)
	assistant := models.ChatMessage{
		ID:          uuid.NewString(),
		Role:        models.ChatRoleAssistant,
		Content:     reply.content,
		Timestamp:   now,
		Suggestions: reply.suggestions,
		Actions:     reply.actions,
	}
	session.Messages = append(session.Messages, assistant)

	if reply.intent != "" {
		session.Context.Intent = reply.intent
	}
	session.UpdatedAt = now

	if err := r.sessions.UpdateSession(ctx, session); err != nil {
		return nil, err
	}

	r.log.Debug("Chatbot replied", map[string]interface{}{
		"sessionId": sessionID,
		"intent":    reply.intent,
	})
	return &assistant, nil
}

type response struct {
	content     string
	suggestions []string
	actions     []models.ChatAction
	intent      string
}

// respond matches the message against intent keyword groups in fixed
// order and returns the canned reply for the first hit.
func respond(message string) response {
	lower := strings.ToLower(message)

	switch {
	case matchesAny(lower, "password", "reset", "login", "access", "locked", "forgot"):
		return response{
			content: "I can help you reset your password! You have two options:\n\n" +
				"1. Use our self-service password reset portal (fastest)\n" +
				"2. I can create a ticket for our IT team\n\nWhich would you prefer?",
			suggestions: []string{"Use self-service portal", "Create a ticket", "I need more help"},
			actions: []models.ChatAction{
				{Type: models.ChatActionResolve, Label: "Self-Service Portal",
					Data: map[string]string{"url": "https://reset.example.com"}},
				{Type: models.ChatActionCreateTicket, Label: "Create Ticket",
					Data: map[string]string{"category": "access", "priority": "medium"}},
			},
			intent: "password_reset",
		}

	case matchesAny(lower, "network", "wifi", "internet", "connection", "connect"):
		return response{
			content: "I understand you're having network connectivity issues. Let me help you troubleshoot:\n\n" +
				"1. Have you tried restarting your computer?\n" +
				"2. Are other devices able to connect to the network?\n" +
				"3. Are you seeing any error messages?\n\n" +
				"Please let me know, or I can create a ticket for our network team.",
			suggestions: []string{"Yes, I tried restarting", "No, nothing works", "Create a ticket"},
			actions: []models.ChatAction{
				{Type: models.ChatActionSearchKB, Label: "View Network Troubleshooting Guide",
					Data: map[string]string{"query": "network connectivity"}},
				{Type: models.ChatActionCreateTicket, Label: "Create Network Ticket",
					Data: map[string]string{"category": "network", "priority": "high"}},
			},
			intent: "network_issue",
		}

	case matchesAny(lower, "computer", "laptop", "device", "hardware", "won't turn on", "broken"):
		return response{
			content: "I see you're experiencing hardware issues. To better assist you:\n\n" +
				"1. What type of device is it? (laptop, desktop, printer, etc.)\n" +
				"2. What exactly is happening?\n" +
				"3. When did this start?\n\n" +
				"I can also create a hardware support ticket for you right away.",
			suggestions: []string{"It's a laptop", "It's a desktop", "Create a ticket"},
			actions: []models.ChatAction{
				{Type: models.ChatActionCreateTicket, Label: "Create Hardware Ticket",
					Data: map[string]string{"category": "hardware", "priority": "high"}},
			},
			intent: "hardware_issue",
		}

	case matchesAny(lower, "software", "install", "application", "program", "app"):
		return response{
			content: "I can help you with software installation! Please provide:\n\n" +
				"1. What software do you need?\n" +
				"2. Is this for work purposes?\n" +
				"3. Do you have approval from your manager?\n\n" +
				"Once I have this information, I'll create a software installation request for you.",
			suggestions: []string{"Microsoft Office", "Adobe Creative Suite", "Other software"},
			actions: []models.ChatAction{
				{Type: models.ChatActionCreateTicket, Label: "Create Software Request",
					Data: map[string]string{"category": "software", "priority": "medium"}},
			},
			intent: "software_installation",
		}

	case matchesAny(lower, "speak", "talk", "human", "agent", "person", "escalate"):
		return response{
			content: "I understand you'd like to speak with a human agent. I'll create a ticket and assign it to our support team right away. They'll reach out to you shortly.\n\n" +
				"Would you like to provide any additional details about your issue?",
			suggestions: []string{"Yes, add details", "No, that's all"},
			actions: []models.ChatAction{
				{Type: models.ChatActionEscalate, Label: "Escalate to Agent",
					Data: map[string]string{"priority": "high"}},
			},
			intent: "escalation",
		}

	case matchesAny(lower, "help", "what can you do", "options", "menu"):
		return response{
			content: "I can assist you with:\n\n" +
				"• Password resets and account access\n" +
				"• Network connectivity issues\n" +
				"• Hardware problems\n" +
				"• Software installation requests\n" +
				"• General IT questions\n\n" +
				"I can also search our knowledge base or create tickets for you. What would you like help with?",
			suggestions: []string{
				"Password reset",
				"Network issues",
				"Hardware problems",
				"Software installation",
				"Browse knowledge base",
			},
		}
	}

	return response{
		content: "I'm here to help! Could you please provide more details about your issue? For example:\n\n" +
			"• What problem are you experiencing?\n" +
			"• When did it start?\n" +
			"• Have you tried any troubleshooting steps?\n\n" +
			"Or you can choose from these common issues:",
		suggestions: []string{
			"Password reset",
			"Network connectivity",
			"Hardware issue",
			"Software installation",
			"Speak to an agent",
		},
	}
}

func matchesAny(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
