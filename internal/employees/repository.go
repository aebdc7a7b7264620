package employees

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hq/meridian/internal/platform/httpx"
)

// Repository exposes the employee lookups used across modules.
type Repository interface {
	GetByUserID(ctx context.Context, userID int64) (*Employee, error)
	List(ctx context.Context) ([]Employee, error)
	ActiveSalaryTotal(ctx context.Context) (float64, error)
	AllSalaryTotal(ctx context.Context) (float64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const employeeColumns = `e.user_id, u.email, e.full_name, COALESCE(e.salary, 0),
	COALESCE(e.daily_hours, 8), e.allow_diets, e.allow_transport, u.active`

func (r *repository) GetByUserID(ctx context.Context, userID int64) (*Employee, error) {
	var e Employee
	err := r.pool.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees e JOIN users u ON u.id = e.user_id WHERE e.user_id = $1`,
		userID,
	).Scan(&e.UserID, &e.Email, &e.FullName, &e.Salary, &e.DailyHours, &e.AllowDiets, &e.AllowTransport, &e.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *repository) List(ctx context.Context) ([]Employee, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+employeeColumns+` FROM employees e JOIN users u ON u.id = e.user_id ORDER BY u.email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.UserID, &e.Email, &e.FullName, &e.Salary, &e.DailyHours, &e.AllowDiets, &e.AllowTransport, &e.Active); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *repository) ActiveSalaryTotal(ctx context.Context) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(e.salary), 0) FROM employees e JOIN users u ON u.id = e.user_id WHERE u.active`,
	).Scan(&total)
	return total, err
}

func (r *repository) AllSalaryTotal(ctx context.Context) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(salary), 0) FROM employees`).Scan(&total)
	return total, err
}
