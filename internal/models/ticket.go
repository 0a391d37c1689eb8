// internal/models/ticket.go
package models

import (
	"strconv"
	"strings"
	"time"
)

// TicketStatus is the lifecycle state of a support ticket.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "open"
	StatusInProgress TicketStatus = "in-progress"
	StatusResolved   TicketStatus = "resolved"
	StatusClosed     TicketStatus = "closed"
)

// Valid reports whether s is one of the declared statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Terminal reports whether the status carries a resolution timestamp.
func (s TicketStatus) Terminal() bool {
	return s == StatusResolved || s == StatusClosed
}

// TicketPriority orders tickets by business impact.
type TicketPriority string

const (
	PriorityLow      TicketPriority = "low"
	PriorityMedium   TicketPriority = "medium"
	PriorityHigh     TicketPriority = "high"
	PriorityCritical TicketPriority = "critical"
)

func (p TicketPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Escalate returns the next priority up. Critical stays critical.
func (p TicketPriority) Escalate() TicketPriority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	case PriorityHigh, PriorityCritical:
		return PriorityCritical
	}
	return p
}

// TicketCategory is the support area a ticket belongs to.
type TicketCategory string

const (
	CategoryNetwork          TicketCategory = "network"
	CategoryAccess           TicketCategory = "access"
	CategorySecurity         TicketCategory = "security"
	CategoryHardware         TicketCategory = "hardware"
	CategorySoftware         TicketCategory = "software"
	CategoryEmail            TicketCategory = "email"
	CategoryPrinter          TicketCategory = "printer"
	CategoryPerformance      TicketCategory = "performance"
	CategoryDatabase         TicketCategory = "database"
	CategorySystem           TicketCategory = "system"
	CategoryInfrastructure   TicketCategory = "infrastructure"
	CategoryDisasterRecovery TicketCategory = "disaster-recovery"
	CategoryCloud            TicketCategory = "cloud"
	CategoryOther            TicketCategory = "other"
)

func (c TicketCategory) Valid() bool {
	switch c {
	case CategoryNetwork, CategoryAccess, CategorySecurity, CategoryHardware,
		CategorySoftware, CategoryEmail, CategoryPrinter, CategoryPerformance,
		CategoryDatabase, CategorySystem, CategoryInfrastructure,
		CategoryDisasterRecovery, CategoryCloud, CategoryOther:
		return true
	}
	return false
}

// TicketSource records the intake channel.
type TicketSource string

const (
	SourcePortal  TicketSource = "portal"
	SourceEmail   TicketSource = "email"
	SourceChatbot TicketSource = "chatbot"
	SourcePhone   TicketSource = "phone"
	SourceAPI     TicketSource = "api"
)

func (s TicketSource) Valid() bool {
	switch s {
	case SourcePortal, SourceEmail, SourceChatbot, SourcePhone, SourceAPI:
		return true
	}
	return false
}

// TicketComment is a single entry in a ticket's conversation thread.
type TicketComment struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticketId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	UserRole  string    `json:"userRole"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// TicketFeedback is the submitter's rating after resolution.
type TicketFeedback struct {
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Ticket is a support request moving through the status lifecycle.
// Invariant: ResolvedAt is set iff Status is resolved or closed.
type Ticket struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    TicketCategory  `json:"category"`
	Priority    TicketPriority  `json:"priority"`
	Status      TicketStatus    `json:"status"`
	Source      TicketSource    `json:"source"`
	SubmittedBy string          `json:"submittedBy"`
	AssignedTo  string          `json:"assignedTo,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	ResolvedAt  *time.Time      `json:"resolvedAt,omitempty"`
	Comments    []TicketComment `json:"comments"`
	Tags        []string        `json:"tags,omitempty"`
	Feedback    *TicketFeedback `json:"feedback,omitempty"`
}

// SetStatus transitions the ticket and keeps the ResolvedAt invariant:
// entering resolved/closed stamps the time, leaving it clears the stamp.
func (t *Ticket) SetStatus(status TicketStatus, now time.Time) {
	t.Status = status
	t.UpdatedAt = now
	if status.Terminal() {
		if t.ResolvedAt == nil {
			resolved := now
			t.ResolvedAt = &resolved
		}
	} else {
		t.ResolvedAt = nil
	}
}

// HasTag reports whether tag is already present.
func (t *Ticket) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// AddTag appends tag if absent.
func (t *Ticket) AddTag(tag string) {
	if !t.HasTag(tag) {
		t.Tags = append(t.Tags, tag)
	}
}

// Field returns the stringified value of a named ticket field for rule
// condition matching. Unknown fields yield the empty string.
func (t *Ticket) Field(name string) string {
	switch strings.ToLower(name) {
	case "id":
		return t.ID
	case "title":
		return t.Title
	case "description":
		return t.Description
	case "category":
		return string(t.Category)
	case "priority":
		return string(t.Priority)
	case "status":
		return string(t.Status)
	case "source":
		return string(t.Source)
	case "submittedby":
		return t.SubmittedBy
	case "assignedto":
		return t.AssignedTo
	case "rating":
		if t.Feedback == nil {
			return ""
		}
		return strconv.Itoa(t.Feedback.Rating)
	}
	return ""
}

// Clone returns a deep copy so store reads never alias live state.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	clone := *t
	if t.ResolvedAt != nil {
		resolved := *t.ResolvedAt
		clone.ResolvedAt = &resolved
	}
	if t.Comments != nil {
		clone.Comments = make([]TicketComment, len(t.Comments))
		copy(clone.Comments, t.Comments)
	}
	if t.Tags != nil {
		clone.Tags = make([]string, len(t.Tags))
		copy(clone.Tags, t.Tags)
	}
	if t.Feedback != nil {
		feedback := *t.Feedback
		clone.Feedback = &feedback
	}
	return &clone
}
