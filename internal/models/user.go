// internal/models/user.go
package models

import "time"

// UserRole separates submitters, support agents, and administrators.
type UserRole string

const (
	RoleEmployee UserRole = "employee"
	RoleAgent    UserRole = "agent"
	RoleAdmin    UserRole = "admin"
)

// User is a directory entry referenced by tickets and notifications.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
