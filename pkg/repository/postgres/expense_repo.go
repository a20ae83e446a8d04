package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"expense-tracker/pkg/expense"
)

// ExpenseRepository implements expense.Repository backed by PostgreSQL (pgx).
// Every single-record statement filters by owner_id, so a row owned by
// another user is indistinguishable from an absent one.
type ExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository ensures the expenses schema. The users table must
// already exist (construct the user repository first): owner_id references
// it with ON DELETE CASCADE.
func NewExpenseRepository(pool *pgxpool.Pool) (*ExpenseRepository, error) {
	r := &ExpenseRepository{pool: pool}
	if err := r.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *ExpenseRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS expenses (
	id UUID PRIMARY KEY,
	owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	amount NUMERIC(10,2) NOT NULL,
	category TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	date DATE NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_expenses_owner_date ON expenses (owner_id, date DESC, created_at DESC);
`)
	return err
}

const expenseColumns = `
	e.id, e.owner_id, u.username, e.amount, e.category, e.description, e.date, e.created_at`

func (r *ExpenseRepository) Create(ctx context.Context, e expense.Expense) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO expenses (id, owner_id, amount, category, description, date, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, e.ID, e.OwnerID, e.Amount, string(e.Category), e.Description, e.Date, e.CreatedAt)
	return err
}

func (r *ExpenseRepository) GetForOwner(ctx context.Context, ownerID, id uuid.UUID) (expense.Expense, error) {
	row := r.pool.QueryRow(ctx, `
SELECT`+expenseColumns+`
FROM expenses e
JOIN users u ON u.id = e.owner_id
WHERE e.id = $1 AND e.owner_id = $2
`, id, ownerID)
	return scanExpense(row)
}

func (r *ExpenseRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, f expense.Filter) ([]expense.Expense, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	var start, end *time.Time
	if !f.StartDate.IsZero() {
		start = &f.StartDate
	}
	if !f.EndDate.IsZero() {
		end = &f.EndDate
	}
	rows, err := r.pool.Query(ctx, `
SELECT`+expenseColumns+`
FROM expenses e
JOIN users u ON u.id = e.owner_id
WHERE e.owner_id = $1
	AND ($2::text = '' OR e.category = $2)
	AND ($3::date IS NULL OR e.date >= $3)
	AND ($4::date IS NULL OR e.date <= $4)
ORDER BY e.date DESC, e.created_at DESC
LIMIT $5 OFFSET $6
`, ownerID, string(f.Category), start, end, limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []expense.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func (r *ExpenseRepository) UpdateForOwner(ctx context.Context, e expense.Expense) error {
	// owner_id and created_at are never part of the SET list.
	cmd, err := r.pool.Exec(ctx, `
UPDATE expenses
SET amount = $3, category = $4, description = $5, date = $6
WHERE id = $1 AND owner_id = $2
`, e.ID, e.OwnerID, e.Amount, string(e.Category), e.Description, e.Date)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return expense.ErrNotFound
	}
	return nil
}

func (r *ExpenseRepository) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return expense.ErrNotFound
	}
	return nil
}

func (r *ExpenseRepository) SummarizeForOwner(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (expense.Summary, error) {
	row := r.pool.QueryRow(ctx, `
SELECT COALESCE(SUM(amount), 0), COUNT(*)
FROM expenses
WHERE owner_id = $1 AND date >= $2 AND date < $3
`, ownerID, from, to)
	var s expense.Summary
	if err := row.Scan(&s.TotalAmount, &s.ExpenseCount); err != nil {
		return expense.Summary{}, err
	}
	return s, nil
}

func scanExpense(row pgx.Row) (expense.Expense, error) {
	var e expense.Expense
	var category string
	var date, created time.Time
	err := row.Scan(&e.ID, &e.OwnerID, &e.OwnerUsername, &e.Amount, &category, &e.Description, &date, &created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return expense.Expense{}, expense.ErrNotFound
		}
		return expense.Expense{}, err
	}
	e.Category = expense.Category(category)
	e.Date = date
	e.CreatedAt = created.UTC()
	return e, nil
}
