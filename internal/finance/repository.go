package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hq/meridian/internal/platform/db"
	"github.com/meridian-hq/meridian/internal/platform/httpx"
)

// Repository reads and writes the finance tables plus the cross-module
// monthly totals the summary is built from.
type Repository interface {
	ListCountries(ctx context.Context) ([]Country, error)
	GetCountry(ctx context.Context, code string) (*Country, error)
	InsertCountry(ctx context.Context, c Country) error

	InsertEntry(ctx context.Context, e Entry) (int64, error)
	ListEntries(ctx context.Context) ([]Entry, error)

	EntryTotalsByMonth(ctx context.Context) (map[string]EntryTotals, error)
	ApprovedTicketTotalsByMonth(ctx context.Context) (map[string]float64, error)
	InvoiceTotalsByMonth(ctx context.Context) (map[string]float64, error)
	ListTimesheets(ctx context.Context) ([]TimesheetRow, error)
	LatestEntryTaxRate(ctx context.Context) (float64, bool, error)

	Reset(ctx context.Context) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) ListCountries(ctx context.Context) ([]Country, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT code, name, corporate_tax, social_rate FROM countries ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Country
	for rows.Next() {
		var c Country
		if err := rows.Scan(&c.Code, &c.Name, &c.CorporateTax, &c.SocialRate); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *repository) GetCountry(ctx context.Context, code string) (*Country, error) {
	var c Country
	err := r.pool.QueryRow(ctx,
		`SELECT code, name, corporate_tax, social_rate FROM countries WHERE code = $1`, code,
	).Scan(&c.Code, &c.Name, &c.CorporateTax, &c.SocialRate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) InsertCountry(ctx context.Context, c Country) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO countries (code, name, corporate_tax, social_rate) VALUES ($1, $2, $3, $4)`,
		c.Code, c.Name, c.CorporateTax, c.SocialRate)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: country code already exists", httpx.ErrValidation)
		}
		return fmt.Errorf("insert country: %w", err)
	}
	return nil
}

func (r *repository) InsertEntry(ctx context.Context, e Entry) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO finance_entries (month, country_code, incomes, expenses, salaries)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		e.Month, e.CountryCode, e.Incomes, e.Expenses, e.Salaries,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert finance entry: %w", err)
	}
	return id, nil
}

func (r *repository) ListEntries(ctx context.Context) ([]Entry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, month, country_code, incomes, expenses, salaries
		 FROM finance_entries ORDER BY month`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Month, &e.CountryCode, &e.Incomes, &e.Expenses, &e.Salaries); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *repository) EntryTotalsByMonth(ctx context.Context) (map[string]EntryTotals, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT month, SUM(incomes), SUM(expenses), SUM(salaries)
		 FROM finance_entries GROUP BY month`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := map[string]EntryTotals{}
	for rows.Next() {
		var month string
		var t EntryTotals
		if err := rows.Scan(&month, &t.Incomes, &t.Expenses, &t.Salaries); err != nil {
			return nil, err
		}
		totals[month] = t
	}
	return totals, rows.Err()
}

func (r *repository) ApprovedTicketTotalsByMonth(ctx context.Context) (map[string]float64, error) {
	return r.monthTotals(ctx,
		`SELECT to_char(created_at, 'YYYY-MM'), COALESCE(SUM(amount), 0)
		 FROM tickets WHERE status = 'APROBADO' GROUP BY 1`)
}

func (r *repository) InvoiceTotalsByMonth(ctx context.Context) (map[string]float64, error) {
	return r.monthTotals(ctx,
		`SELECT month, SUM(amount) FROM invoices GROUP BY month`)
}

func (r *repository) monthTotals(ctx context.Context, query string) (map[string]float64, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := map[string]float64{}
	for rows.Next() {
		var month string
		var amount float64
		if err := rows.Scan(&month, &amount); err != nil {
			return nil, err
		}
		totals[month] = amount
	}
	return totals, rows.Err()
}

func (r *repository) ListTimesheets(ctx context.Context) ([]TimesheetRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.email, to_char(t.date, 'YYYY-MM'),
		        t.start_time, t.end_time, t.break_start, t.break_end,
		        COALESCE(e.daily_hours, 8)
		 FROM timesheets t
		 JOIN users u ON u.id = t.user_id
		 LEFT JOIN employees e ON e.user_id = u.id
		 ORDER BY 2, u.email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []TimesheetRow
	for rows.Next() {
		var row TimesheetRow
		var start, end, breakStart, breakEnd pgtype.Timestamptz
		if err := rows.Scan(&row.Email, &row.Month, &start, &end, &breakStart, &breakEnd, &row.DailyHours); err != nil {
			return nil, err
		}
		row.Start = tzPtr(start)
		row.End = tzPtr(end)
		row.BreakStart = tzPtr(breakStart)
		row.BreakEnd = tzPtr(breakEnd)
		list = append(list, row)
	}
	return list, rows.Err()
}

func (r *repository) LatestEntryTaxRate(ctx context.Context) (float64, bool, error) {
	var rate float64
	err := r.pool.QueryRow(ctx,
		`SELECT c.corporate_tax
		 FROM finance_entries fe JOIN countries c ON c.code = fe.country_code
		 ORDER BY fe.id DESC LIMIT 1`,
	).Scan(&rate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return rate, true, nil
}

// Reset wipes all entries and invoices and puts every resolved ticket back
// into the pending queue.
func (r *repository) Reset(ctx context.Context) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM finance_entries`); err != nil {
			return fmt.Errorf("reset finance entries: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM invoices`); err != nil {
			return fmt.Errorf("reset invoices: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE tickets SET status = 'PENDIENTE', reason = NULL
			 WHERE status IN ('APROBADO', 'RECHAZADO')`); err != nil {
			return fmt.Errorf("reset tickets: %w", err)
		}
		return nil
	})
}

func tzPtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}
