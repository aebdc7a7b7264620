package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hq/meridian/internal/platform/httpx"
	"github.com/meridian-hq/meridian/internal/vault"
)

// Repository persists ticket rows.
type Repository interface {
	Insert(ctx context.Context, t Ticket) (int64, error)
	Get(ctx context.Context, id int64) (*Ticket, error)
	ListByOwner(ctx context.Context, userID int64) ([]Ticket, error)
	ListAll(ctx context.Context, status Status) ([]ListedTicket, error)
	UpdateStatus(ctx context.Context, id int64, status Status, reason *string) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Insert(ctx context.Context, t Ticket) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tickets (user_id, created_at, category, amount, status, reason, file_path, file_mime)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		t.UserID,
		t.CreatedAt,
		nullCategory(t.Category),
		nullFloat(t.Amount),
		string(t.Status),
		nullText(t.Reason),
		t.File.Path,
		t.FileMime,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert ticket: %w", err)
	}
	return id, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Ticket, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, created_at, category, amount, status, reason, file_path, file_mime
		 FROM tickets WHERE id = $1`, id)
	t, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *repository) ListByOwner(ctx context.Context, userID int64) ([]Ticket, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, created_at, category, amount, status, reason, file_path, file_mime
		 FROM tickets WHERE user_id = $1 ORDER BY id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *t)
	}
	return list, rows.Err()
}

func (r *repository) ListAll(ctx context.Context, status Status) ([]ListedTicket, error) {
	query := `SELECT t.id, t.user_id, t.created_at, t.category, t.amount, t.status, t.reason,
		t.file_path, t.file_mime, u.email
		FROM tickets t JOIN users u ON u.id = t.user_id`
	var args []any
	if status != "" {
		query += ` WHERE t.status = $1`
		args = append(args, string(status))
	}
	query += ` ORDER BY t.id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []ListedTicket
	for rows.Next() {
		var lt ListedTicket
		var category, reason, path pgtype.Text
		var amount pgtype.Float8
		var createdAt time.Time
		if err := rows.Scan(&lt.ID, &lt.UserID, &createdAt, &category, &amount, &lt.Status, &reason, &path, &lt.FileMime, &lt.OwnerEmail); err != nil {
			return nil, err
		}
		lt.CreatedAt = createdAt
		if category.Valid {
			lt.Category = Category(category.String)
		}
		if amount.Valid {
			v := amount.Float64
			lt.Amount = &v
		}
		if reason.Valid {
			v := reason.String
			lt.Reason = &v
		}
		lt.File = vault.RefFromPath(path.String)
		list = append(list, lt)
	}
	return list, rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status, reason *string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tickets SET status = $1, reason = $2 WHERE id = $3`,
		string(status), nullText(reason), id)
	if err != nil {
		return fmt.Errorf("update ticket status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*Ticket, error) {
	var t Ticket
	var category, reason, path pgtype.Text
	var amount pgtype.Float8
	if err := row.Scan(&t.ID, &t.UserID, &t.CreatedAt, &category, &amount, &t.Status, &reason, &path, &t.FileMime); err != nil {
		return nil, err
	}
	if category.Valid {
		t.Category = Category(category.String)
	}
	if amount.Valid {
		v := amount.Float64
		t.Amount = &v
	}
	if reason.Valid {
		v := reason.String
		t.Reason = &v
	}
	t.File = vault.RefFromPath(path.String)
	return &t, nil
}

func nullText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func nullFloat(f *float64) pgtype.Float8 {
	if f == nil {
		return pgtype.Float8{}
	}
	return pgtype.Float8{Float64: *f, Valid: true}
}

func nullCategory(c Category) pgtype.Text {
	if c == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: string(c), Valid: true}
}
