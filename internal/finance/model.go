package finance

import "time"

// Country carries the fiscal parameters used by entry receipts and the
// summary tax estimate.
type Country struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	CorporateTax float64 `json:"corporate_tax"`
	SocialRate   float64 `json:"social_rate"`
}

// Entry is a manually recorded month of incomes, expenses and salaries.
type Entry struct {
	ID          int64   `json:"id"`
	Month       string  `json:"month"`
	CountryCode string  `json:"country_code"`
	Incomes     float64 `json:"incomes"`
	Expenses    float64 `json:"expenses"`
	Salaries    float64 `json:"salaries"`
}

// EntryTotals is the per-month sum of manual entries.
type EntryTotals struct {
	Incomes  float64
	Expenses float64
	Salaries float64
}

// TimesheetRow is one worked day joined with the owner's email and daily
// hour threshold. Nil times mean the field was never clocked.
type TimesheetRow struct {
	Email      string
	Month      string
	Start      *time.Time
	End        *time.Time
	BreakStart *time.Time
	BreakEnd   *time.Time
	DailyHours float64
}

// OvertimeEntry is the itemized overtime of one employee in one month.
type OvertimeEntry struct {
	Email string  `json:"email"`
	Month string  `json:"month"`
	Hours float64 `json:"hours"`
}

// Series holds the positionally aligned monthly summary arrays.
type Series struct {
	Incomes            []float64       `json:"incomes"`
	FinanceIncomes     []float64       `json:"finance_incomes"`
	Expenses           []float64       `json:"expenses"`
	TicketExpenses     []float64       `json:"ticket_expenses"`
	Salaries           []float64       `json:"salaries"`
	ActiveSalaries     []float64       `json:"active_salaries"`
	EmpSalaries        []float64       `json:"emp_salaries"`
	Gross              []float64       `json:"gross"`
	Taxes              []float64       `json:"taxes"`
	Net                []float64       `json:"net"`
	Overtime           []float64       `json:"overtime"`
	OvertimeByEmployee []OvertimeEntry `json:"overtime_by_employee"`
	InvoiceIncomes     []float64       `json:"invoice_incomes"`
}

// Summary is the monthly rollup served to the dashboard.
type Summary struct {
	Months []string `json:"months"`
	Series Series   `json:"series"`
}
