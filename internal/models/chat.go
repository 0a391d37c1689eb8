// internal/models/chat.go
package models

import "time"

// ChatRole distinguishes user and assistant turns in a chatbot session.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatActionType is a follow-up the assistant can offer on a message.
type ChatActionType string

const (
	ChatActionCreateTicket ChatActionType = "create_ticket"
	ChatActionSearchKB     ChatActionType = "search_kb"
	ChatActionEscalate     ChatActionType = "escalate"
	ChatActionResolve      ChatActionType = "resolve"
)

// ChatAction is an offered follow-up with optional payload data.
type ChatAction struct {
	Type  ChatActionType    `json:"type"`
	Label string            `json:"label"`
	Data  map[string]string `json:"data,omitempty"`
}

// ChatMessage is a single turn in a chatbot session.
type ChatMessage struct {
	ID          string       `json:"id"`
	Role        ChatRole     `json:"role"`
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	Suggestions []string     `json:"suggestions,omitempty"`
	Actions     []ChatAction `json:"actions,omitempty"`
}

// ChatContext carries conversation state the responder accumulates.
type ChatContext struct {
	Intent   string            `json:"intent,omitempty"`
	Entities map[string]string `json:"entities,omitempty"`
	TicketID string            `json:"ticketId,omitempty"`
	Resolved bool              `json:"resolved"`
}

// ChatSession is one user's conversation with the support assistant.
type ChatSession struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Messages  []ChatMessage `json:"messages"`
	Context   ChatContext   `json:"context"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
