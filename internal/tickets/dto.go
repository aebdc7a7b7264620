package tickets

// SubmitRequest carries a worker's ticket upload.
type SubmitRequest struct {
	// Category is checked by the service, which distinguishes unknown
	// categories (forbidden) from missing permissions.
	Category string
	Amount   *float64 `validate:"omitempty"`
	FileName string   `validate:"required"`
	FileMime string   `validate:"required"`
	Content  []byte   `validate:"required"`
}

// RejectRequest carries the mandatory rejection reason.
type RejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}
