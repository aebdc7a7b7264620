package employees

// Employee carries the HR attributes the ticket and finance modules need.
// DailyHours is the overtime threshold; AllowDiets/AllowTransport gate the
// corresponding expense-ticket categories.
type Employee struct {
	UserID         int64   `json:"user_id"`
	Email          string  `json:"email"`
	FullName       string  `json:"full_name"`
	Salary         float64 `json:"salary"`
	DailyHours     float64 `json:"daily_hours"`
	AllowDiets     bool    `json:"allow_diets"`
	AllowTransport bool    `json:"allow_transport"`
	Active         bool    `json:"active"`
}
