// internal/models/notification.go
package models

import "time"

// NotificationType categorizes entries in a user's notification feed.
type NotificationType string

const (
	NotificationTicketUpdate   NotificationType = "ticket_update"
	NotificationTicketAssigned NotificationType = "ticket_assigned"
	NotificationTicketResolved NotificationType = "ticket_resolved"
	NotificationMessage        NotificationType = "message"
	NotificationSystem         NotificationType = "system"
)

// Notification is a feed entry produced by the pipeline and by workflow
// actions. Delivery via email/SMS is handled separately by the notifier.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	TicketID  string           `json:"ticketId,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
	Priority  TicketPriority   `json:"priority"`
}
