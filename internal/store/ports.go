// Package store defines the record-store boundary consumed by the
// service layer. Implementations live in store/memory and storage
// (SQLite); every query is scoped by the owning identity.
package store

import (
	"context"

	"github.com/Vijay-1289/Expense-Tracker/internal/core"
)

// Profile is the minimal user record bootstrapped on first sign-in.
type Profile struct {
	ID       core.Identity
	Email    string
	FullName string
}

// Ports for outbound adapters.
type (
	ExpenseStore interface {
		// InsertExpense stores a new expense and returns it with the
		// backend-assigned ID and creation timestamp filled in.
		InsertExpense(ctx context.Context, e core.Expense) (core.Expense, error)

		// ListExpenses returns all of the owner's expenses ordered by
		// date descending.
		ListExpenses(ctx context.Context, owner core.Identity) ([]core.Expense, error)
	}

	BudgetStore interface {
		// InsertBudget stores a new budget row. Older rows are kept;
		// the active budget is determined by recency at read time.
		InsertBudget(ctx context.Context, b core.Budget) (core.Budget, error)

		// LatestBudget returns the owner's most recently created budget,
		// or nil when none exists.
		LatestBudget(ctx context.Context, owner core.Identity) (*core.Budget, error)

		// DeleteBudgets removes all of the owner's budget rows.
		DeleteBudgets(ctx context.Context, owner core.Identity) error
	}

	ProfileStore interface {
		UpsertProfile(ctx context.Context, p Profile) error
	}
)

// Store is the unified backend surface assembled by the factory.
type Store interface {
	ExpenseStore
	BudgetStore
	ProfileStore
}
