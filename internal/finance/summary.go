package finance

import (
	"math"
	"sort"
)

// DefaultTaxRate applies when no finance entry pins a country.
const DefaultTaxRate = 0.25

// DefaultDailyHours is the overtime threshold for employees without an
// explicit contract value.
const DefaultDailyHours = 8

// Round2 rounds to cents, halves away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SummaryInput gathers the four independent monthly sources plus the
// broadcast salary totals and the applicable corporate tax rate.
type SummaryInput struct {
	Entries        map[string]EntryTotals
	Tickets        map[string]float64
	Invoices       map[string]float64
	Overtime       []OvertimeEntry
	ActiveSalaries float64
	AllSalaries    float64
	TaxRate        float64
}

// BuildSummary computes the rollup. The month axis is the sorted union of
// months present in any source; absent months contribute zero.
func BuildSummary(in SummaryInput) Summary {
	seen := map[string]bool{}
	for m := range in.Entries {
		seen[m] = true
	}
	for m := range in.Tickets {
		seen[m] = true
	}
	for m := range in.Invoices {
		seen[m] = true
	}
	for _, ot := range in.Overtime {
		seen[ot.Month] = true
	}
	months := make([]string, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Strings(months)

	n := len(months)
	s := Series{
		Incomes:            make([]float64, n),
		FinanceIncomes:     make([]float64, n),
		Expenses:           make([]float64, n),
		TicketExpenses:     make([]float64, n),
		Salaries:           make([]float64, n),
		ActiveSalaries:     make([]float64, n),
		EmpSalaries:        make([]float64, n),
		Gross:              make([]float64, n),
		Taxes:              make([]float64, n),
		Net:                make([]float64, n),
		Overtime:           make([]float64, n),
		InvoiceIncomes:     make([]float64, n),
		OvertimeByEmployee: in.Overtime,
	}
	if s.OvertimeByEmployee == nil {
		s.OvertimeByEmployee = []OvertimeEntry{}
	}

	for i, m := range months {
		entry := in.Entries[m]
		tickets := Round2(in.Tickets[m])
		invoices := Round2(in.Invoices[m])

		s.FinanceIncomes[i] = Round2(entry.Incomes)
		s.Incomes[i] = Round2(entry.Incomes + invoices)
		s.TicketExpenses[i] = tickets
		s.Expenses[i] = Round2(entry.Expenses + tickets)
		s.Salaries[i] = Round2(entry.Salaries)
		s.ActiveSalaries[i] = Round2(in.ActiveSalaries)
		s.EmpSalaries[i] = Round2(in.AllSalaries)
		s.Gross[i] = Round2(s.Incomes[i] - s.Expenses[i] - s.Salaries[i])
		if s.Gross[i] > 0 {
			s.Taxes[i] = Round2(s.Gross[i] * in.TaxRate)
		}
		s.Net[i] = Round2(s.Gross[i] - s.Taxes[i])
		s.InvoiceIncomes[i] = invoices

		var hours float64
		for _, ot := range in.Overtime {
			if ot.Month == m {
				hours += ot.Hours
			}
		}
		s.Overtime[i] = Round2(hours)
	}

	return Summary{Months: months, Series: s}
}

// OvertimeFromTimesheets folds raw timesheet rows into per-employee monthly
// overtime. A day counts only when both clock times exist; break time is
// subtracted when both break bounds exist; hours over the employee's daily
// threshold accumulate, anything at or under it counts zero.
func OvertimeFromTimesheets(rows []TimesheetRow) []OvertimeEntry {
	type key struct{ email, month string }
	totals := map[key]float64{}
	for _, row := range rows {
		if row.Start == nil || row.End == nil {
			continue
		}
		worked := row.End.Sub(*row.Start)
		if row.BreakStart != nil && row.BreakEnd != nil {
			worked -= row.BreakEnd.Sub(*row.BreakStart)
		}
		threshold := row.DailyHours
		if threshold <= 0 {
			threshold = DefaultDailyHours
		}
		hours := worked.Hours()
		if hours > threshold {
			totals[key{row.Email, row.Month}] += hours - threshold
		} else {
			// Keep the (email, month) pair on the axis even without overtime.
			totals[key{row.Email, row.Month}] += 0
		}
	}

	entries := make([]OvertimeEntry, 0, len(totals))
	for k, hours := range totals {
		entries = append(entries, OvertimeEntry{Email: k.email, Month: k.month, Hours: Round2(hours)})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Month != entries[j].Month {
			return entries[i].Month < entries[j].Month
		}
		return entries[i].Email < entries[j].Email
	})
	return entries
}
