// Package storage implements the SQLite-backed record store. The
// schema lives in embedded migrations and is applied on startup.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/Vijay-1289/Expense-Tracker/internal/core"
	"github.com/Vijay-1289/Expense-Tracker/internal/store"
)

const createdAtLayout = time.RFC3339Nano

// Repository implements store.Store on top of SQLite.
type Repository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

// NewRepository opens (creating if needed) the database at dbPath and
// runs pending migrations.
func NewRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	return &Repository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) InsertExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	e.ID = uuid.NewString()
	e.CreatedAt = r.now().UTC()

	row := ExpenseRow{
		ID:        e.ID,
		Owner:     string(e.Owner),
		Title:     e.Title,
		Amount:    e.Amount.String(),
		Category:  string(e.Category),
		Date:      e.Date.ISO(),
		CreatedAt: e.CreatedAt.Format(createdAtLayout),
	}
	if err := r.queries.CreateExpense(ctx, row); err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	return e, nil
}

func (r *Repository) ListExpenses(ctx context.Context, owner core.Identity) ([]core.Expense, error) {
	rows, err := r.queries.GetExpensesByOwner(ctx, string(owner))
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	items := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		e, err := expenseFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("decode expense %s: %w", row.ID, err)
		}
		items = append(items, e)
	}
	return items, nil
}

func (r *Repository) InsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	b.ID = uuid.NewString()
	b.CreatedAt = r.now().UTC()

	row := BudgetRow{
		ID:        b.ID,
		Owner:     string(b.Owner),
		Amount:    b.Amount.String(),
		StartDate: b.StartDate.ISO(),
		EndDate:   b.EndDate.ISO(),
		CreatedAt: b.CreatedAt.Format(createdAtLayout),
	}
	if err := r.queries.CreateBudget(ctx, row); err != nil {
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}
	return b, nil
}

func (r *Repository) LatestBudget(ctx context.Context, owner core.Identity) (*core.Budget, error) {
	row, err := r.queries.GetLatestBudget(ctx, string(owner))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest budget: %w", err)
	}
	b, err := budgetFromRow(row)
	if err != nil {
		return nil, fmt.Errorf("decode budget %s: %w", row.ID, err)
	}
	return &b, nil
}

func (r *Repository) DeleteBudgets(ctx context.Context, owner core.Identity) error {
	if err := r.queries.DeleteBudgetsByOwner(ctx, string(owner)); err != nil {
		return fmt.Errorf("delete budgets: %w", err)
	}
	return nil
}

func (r *Repository) UpsertProfile(ctx context.Context, p store.Profile) error {
	createdAt := r.now().UTC().Format(createdAtLayout)
	if err := r.queries.UpsertProfile(ctx, string(p.ID), p.Email, p.FullName, createdAt); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func expenseFromRow(row ExpenseRow) (core.Expense, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("amount %q: %w", row.Amount, err)
	}
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("date %q: %w", row.Date, err)
	}
	createdAt, err := time.Parse(createdAtLayout, row.CreatedAt)
	if err != nil {
		return core.Expense{}, fmt.Errorf("created_at %q: %w", row.CreatedAt, err)
	}
	return core.Expense{
		ID:        row.ID,
		Owner:     core.Identity(row.Owner),
		Title:     row.Title,
		Amount:    amount,
		Category:  core.Category(row.Category),
		Date:      date,
		CreatedAt: createdAt,
	}, nil
}

func budgetFromRow(row BudgetRow) (core.Budget, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("amount %q: %w", row.Amount, err)
	}
	start, err := core.ParseDate(row.StartDate)
	if err != nil {
		return core.Budget{}, fmt.Errorf("start_date %q: %w", row.StartDate, err)
	}
	end, err := core.ParseDate(row.EndDate)
	if err != nil {
		return core.Budget{}, fmt.Errorf("end_date %q: %w", row.EndDate, err)
	}
	createdAt, err := time.Parse(createdAtLayout, row.CreatedAt)
	if err != nil {
		return core.Budget{}, fmt.Errorf("created_at %q: %w", row.CreatedAt, err)
	}
	return core.Budget{
		ID:        row.ID,
		Owner:     core.Identity(row.Owner),
		Amount:    amount,
		StartDate: start,
		EndDate:   end,
		CreatedAt: createdAt,
	}, nil
}
