package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries bundles the raw SQL behind the repository. Row types mirror
// the schema; conversion to domain types happens in the repository.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type ExpenseRow struct {
	ID        string
	Owner     string
	Title     string
	Amount    string
	Category  string
	Date      string
	CreatedAt string
}

type BudgetRow struct {
	ID        string
	Owner     string
	Amount    string
	StartDate string
	EndDate   string
	CreatedAt string
}

const createExpense = `
INSERT INTO expenses (id, owner, title, amount, category, date, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateExpense(ctx context.Context, row ExpenseRow) error {
	_, err := q.db.ExecContext(ctx, createExpense,
		row.ID, row.Owner, row.Title, row.Amount, row.Category, row.Date, row.CreatedAt)
	return err
}

const getExpensesByOwner = `
SELECT id, owner, title, amount, category, date, created_at
FROM expenses
WHERE owner = ?
ORDER BY date DESC, created_at DESC
`

func (q *Queries) GetExpensesByOwner(ctx context.Context, owner string) ([]ExpenseRow, error) {
	rows, err := q.db.QueryContext(ctx, getExpensesByOwner, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ExpenseRow
	for rows.Next() {
		var r ExpenseRow
		if err := rows.Scan(&r.ID, &r.Owner, &r.Title, &r.Amount, &r.Category, &r.Date, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const createBudget = `
INSERT INTO budgets (id, owner, amount, start_date, end_date, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateBudget(ctx context.Context, row BudgetRow) error {
	_, err := q.db.ExecContext(ctx, createBudget,
		row.ID, row.Owner, row.Amount, row.StartDate, row.EndDate, row.CreatedAt)
	return err
}

const getLatestBudget = `
SELECT id, owner, amount, start_date, end_date, created_at
FROM budgets
WHERE owner = ?
ORDER BY created_at DESC, rowid DESC
LIMIT 1
`

func (q *Queries) GetLatestBudget(ctx context.Context, owner string) (BudgetRow, error) {
	var r BudgetRow
	err := q.db.QueryRowContext(ctx, getLatestBudget, owner).
		Scan(&r.ID, &r.Owner, &r.Amount, &r.StartDate, &r.EndDate, &r.CreatedAt)
	return r, err
}

const deleteBudgetsByOwner = `
DELETE FROM budgets WHERE owner = ?
`

func (q *Queries) DeleteBudgetsByOwner(ctx context.Context, owner string) error {
	_, err := q.db.ExecContext(ctx, deleteBudgetsByOwner, owner)
	return err
}

const upsertProfile = `
INSERT INTO profiles (id, email, full_name, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET email = excluded.email, full_name = excluded.full_name
`

func (q *Queries) UpsertProfile(ctx context.Context, id, email, fullName, createdAt string) error {
	_, err := q.db.ExecContext(ctx, upsertProfile, id, email, fullName, createdAt)
	return err
}
