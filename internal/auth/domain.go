package auth

import "time"

// Roles known to the application.
const (
	RoleAdmin  = "ADMIN"
	RoleWorker = "WORKER"
)

// User represents an authenticated user account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
}
