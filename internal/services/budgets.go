package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Vijay-1289/Expense-Tracker/internal/changefeed"
	"github.com/Vijay-1289/Expense-Tracker/internal/core"
	"github.com/Vijay-1289/Expense-Tracker/internal/store"
)

// BudgetInput carries raw form values for a new budget window.
type BudgetInput struct {
	Amount          string
	StartDateText   string
	StartDatePicker string
	EndDateText     string
	EndDatePicker   string
}

// Budgets manages the spending window. Setting a budget appends a row;
// the newest row is the active one.
type Budgets struct {
	store store.BudgetStore
	hub   *changefeed.Hub
	relay RemotePublisher
}

func NewBudgets(s store.BudgetStore, hub *changefeed.Hub, relay RemotePublisher) *Budgets {
	return &Budgets{store: s, hub: hub, relay: relay}
}

// Set validates the input, stores a new budget row and publishes an
// insert event.
func (s *Budgets) Set(ctx context.Context, owner core.Identity, in BudgetInput) (core.Budget, error) {
	if owner == "" {
		return core.Budget{}, core.ErrNotSignedIn
	}

	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Budget{}, err
	}
	start, err := core.ResolveDate(in.StartDateText, in.StartDatePicker)
	if err != nil {
		return core.Budget{}, fmt.Errorf("start date: %w", err)
	}
	end, err := core.ResolveDate(in.EndDateText, in.EndDatePicker)
	if err != nil {
		return core.Budget{}, fmt.Errorf("end date: %w", err)
	}

	b := core.Budget{
		Owner:     owner,
		Amount:    amount,
		StartDate: start,
		EndDate:   end,
	}
	// Invalid input never reaches the store.
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	saved, err := s.store.InsertBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}

	s.announce(ctx, changefeed.NewEvent(changefeed.TableBudgets, changefeed.OpInsert, owner, saved.ID))
	return saved, nil
}

// Delete removes all of the owner's budget rows and publishes a delete
// event.
func (s *Budgets) Delete(ctx context.Context, owner core.Identity) error {
	if owner == "" {
		return core.ErrNotSignedIn
	}
	if err := s.store.DeleteBudgets(ctx, owner); err != nil {
		return fmt.Errorf("delete budgets: %w", err)
	}
	s.announce(ctx, changefeed.NewEvent(changefeed.TableBudgets, changefeed.OpDelete, owner, ""))
	return nil
}

// Latest returns the active budget, or nil when none is set.
func (s *Budgets) Latest(ctx context.Context, owner core.Identity) (*core.Budget, error) {
	if owner == "" {
		return nil, core.ErrNotSignedIn
	}
	return s.store.LatestBudget(ctx, owner)
}

func (s *Budgets) announce(ctx context.Context, event changefeed.Event) {
	s.hub.Publish(event)
	if s.relay != nil {
		if err := s.relay.Publish(ctx, event); err != nil {
			slog.ErrorContext(ctx, "relay publish failed",
				"table", event.Table, "owner", event.Owner, "error", err)
		}
	}
}
