package invoices

import "time"

// Invoice is an issued client invoice with its uploaded PDF. Invoice files
// are stored as-is; only ticket receipts get at-rest encryption.
type Invoice struct {
	ID         int64     `json:"id"`
	ClientName string    `json:"client_name"`
	Amount     float64   `json:"amount"`
	Month      string    `json:"month"`
	FilePath   string    `json:"-"`
	FileMime   string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// FilePayload is a stored invoice document ready to serve.
type FilePayload struct {
	Content []byte
	Mime    string
}
