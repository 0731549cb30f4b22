// Package services orchestrates writes across the record store and the
// change feed. Handlers call services, never the store directly.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Vijay-1289/Expense-Tracker/internal/changefeed"
	"github.com/Vijay-1289/Expense-Tracker/internal/core"
	"github.com/Vijay-1289/Expense-Tracker/internal/store"
)

// RemotePublisher fans events out to other instances. Nil means the
// deployment runs standalone.
type RemotePublisher interface {
	Publish(ctx context.Context, e changefeed.Event) error
}

// ExpenseInput carries raw form values for a new expense.
type ExpenseInput struct {
	Title      string
	Amount     string
	Category   string
	DateText   string
	DatePicker string
}

// Expenses records spending and announces each change on the feed.
type Expenses struct {
	store store.ExpenseStore
	hub   *changefeed.Hub
	relay RemotePublisher
}

func NewExpenses(s store.ExpenseStore, hub *changefeed.Hub, relay RemotePublisher) *Expenses {
	return &Expenses{store: s, hub: hub, relay: relay}
}

// Create validates the input, stores the expense and publishes an
// insert event. The write succeeds even if the relay is down.
func (s *Expenses) Create(ctx context.Context, owner core.Identity, in ExpenseInput) (core.Expense, error) {
	if owner == "" {
		return core.Expense{}, core.ErrNotSignedIn
	}

	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	date, err := core.ResolveDate(in.DateText, in.DatePicker)
	if err != nil {
		return core.Expense{}, err
	}

	e := core.Expense{
		Owner:    owner,
		Title:    in.Title,
		Amount:   amount,
		Category: core.Category(in.Category),
		Date:     date,
	}
	// Invalid input never reaches the store.
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	saved, err := s.store.InsertExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	s.announce(ctx, changefeed.NewEvent(changefeed.TableExpenses, changefeed.OpInsert, owner, saved.ID))
	return saved, nil
}

func (s *Expenses) announce(ctx context.Context, event changefeed.Event) {
	s.hub.Publish(event)
	if s.relay != nil {
		if err := s.relay.Publish(ctx, event); err != nil {
			slog.ErrorContext(ctx, "relay publish failed",
				"table", event.Table, "owner", event.Owner, "error", err)
		}
	}
}

// List returns the owner's expenses, newest date first.
func (s *Expenses) List(ctx context.Context, owner core.Identity) ([]core.Expense, error) {
	if owner == "" {
		return nil, core.ErrNotSignedIn
	}
	return s.store.ListExpenses(ctx, owner)
}
