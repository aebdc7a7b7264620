package tickets

import (
	"time"

	"github.com/meridian-hq/meridian/internal/vault"
)

// Status is the ticket workflow state. PENDIENTE is initial; APROBADO and
// RECHAZADO are terminal for the worker (only the finance reset re-opens).
type Status string

const (
	StatusPending  Status = "PENDIENTE"
	StatusApproved Status = "APROBADO"
	StatusRejected Status = "RECHAZADO"
)

// Category is an expense category subject to per-employee permissions.
type Category string

const (
	CategoryDiets     Category = "DIETAS"
	CategoryTransport Category = "TRANSPORTE"
)

// Ticket is a worker-submitted expense claim with an attached receipt.
type Ticket struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"user_id"`
	CreatedAt time.Time     `json:"created_at"`
	Category  Category      `json:"category,omitempty"`
	Amount    *float64      `json:"amount,omitempty"`
	Status    Status        `json:"status"`
	Reason    *string       `json:"reason,omitempty"`
	File      vault.FileRef `json:"-"`
	FileMime  string        `json:"file_mime"`
}

// ListedTicket adds the owner's email for the admin listing.
type ListedTicket struct {
	Ticket
	OwnerEmail string `json:"email"`
}

// FilePayload is a decrypted (or legacy plaintext) receipt ready to serve.
// Length is derived from the decrypted buffer, not from the envelope.
type FilePayload struct {
	Content []byte
	Mime    string
}
