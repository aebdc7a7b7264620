package invoices

import "regexp"

// monthPattern validates the strict YYYY-MM month key at the creation
// boundary, months 01..12 only.
var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidMonth reports whether s is a well-formed month key.
func ValidMonth(s string) bool {
	return monthPattern.MatchString(s)
}

// CreateRequest carries an admin's invoice upload.
type CreateRequest struct {
	ClientName string  `validate:"required"`
	Amount     float64 `validate:"omitempty"`
	Month      string  `validate:"required"`
	FileName   string  `validate:"required"`
	FileMime   string  `validate:"required"`
	Content    []byte  `validate:"required"`
}
