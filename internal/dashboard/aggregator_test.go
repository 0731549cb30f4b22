package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Vijay-1289/Expense-Tracker/internal/changefeed"
	"github.com/Vijay-1289/Expense-Tracker/internal/core"
	"github.com/Vijay-1289/Expense-Tracker/internal/services"
	"github.com/Vijay-1289/Expense-Tracker/internal/store/memory"
)

// flakyStore fails list and latest-budget reads on demand.
type flakyStore struct {
	*memory.Store
	mu   sync.Mutex
	fail bool
}

func (s *flakyStore) setFail(v bool) {
	s.mu.Lock()
	s.fail = v
	s.mu.Unlock()
}

func (s *flakyStore) failing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fail
}

func (s *flakyStore) ListExpenses(ctx context.Context, owner core.Identity) ([]core.Expense, error) {
	if s.failing() {
		return nil, errors.New("store offline")
	}
	return s.Store.ListExpenses(ctx, owner)
}

func (s *flakyStore) LatestBudget(ctx context.Context, owner core.Identity) (*core.Budget, error) {
	if s.failing() {
		return nil, errors.New("store offline")
	}
	return s.Store.LatestBudget(ctx, owner)
}

type fixture struct {
	store    *flakyStore
	hub      *changefeed.Hub
	expenses *services.Expenses
	budgets  *services.Budgets
	manager  *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := &flakyStore{Store: memory.New()}
	hub := changefeed.NewHub(16)
	expenses := services.NewExpenses(st, hub, nil)
	budgets := services.NewBudgets(st, hub, nil)
	m := NewManager(hub, expenses, budgets)
	t.Cleanup(func() {
		m.CloseAll()
		hub.Close()
	})
	return &fixture{store: st, hub: hub, expenses: expenses, budgets: budgets, manager: m}
}

// waitFor polls the aggregator until cond holds or the deadline passes.
func waitFor(t *testing.T, agg *Aggregator, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		snap := agg.Snapshot()
		if cond(snap) {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not reached, last snapshot: %+v", snap)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func expenseInput(title, amount string) services.ExpenseInput {
	return services.ExpenseInput{
		Title:      title,
		Amount:     amount,
		Category:   string(core.Food),
		DatePicker: "2024-03-01",
	}
}

func TestAggregator_InitialLoad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.expenses.Create(ctx, "u1", expenseInput("Coffee", "150")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	agg := f.manager.Open(ctx, "u1")
	snap := waitFor(t, agg, func(s Snapshot) bool { return s.State == StateReady })

	if len(snap.Expenses) != 1 {
		t.Fatalf("initial load fetched %d expenses, want 1", len(snap.Expenses))
	}
	if snap.Summary.TotalSpent.String() != "150" {
		t.Fatalf("TotalSpent = %s, want 150", snap.Summary.TotalSpent)
	}
	if snap.Budget != nil || snap.Summary.HasBudget {
		t.Fatal("no budget was set, summary must not report one")
	}
}

func TestAggregator_RefreshOnExpenseEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	agg := f.manager.Open(ctx, "u1")
	waitFor(t, agg, func(s Snapshot) bool { return s.State == StateReady })

	if _, err := f.expenses.Create(ctx, "u1", expenseInput("Coffee", "150")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	snap := waitFor(t, agg, func(s Snapshot) bool { return len(s.Expenses) == 1 })
	if snap.Summary.TotalSpent.String() != "150" {
		t.Fatalf("TotalSpent = %s, want 150", snap.Summary.TotalSpent)
	}
}

func TestAggregator_OwnerScoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	agg := f.manager.Open(ctx, "u1")
	waitFor(t, agg, func(s Snapshot) bool { return s.State == StateReady })

	if _, err := f.expenses.Create(ctx, "u2", expenseInput("Cinema", "300")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.expenses.Create(ctx, "u1", expenseInput("Coffee", "150")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	snap := waitFor(t, agg, func(s Snapshot) bool { return len(s.Expenses) == 1 })
	if snap.Expenses[0].Title != "Coffee" {
		t.Fatalf("aggregator saw another identity's expense: %+v", snap.Expenses)
	}
}

func TestAggregator_ThresholdAlertScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	agg := f.manager.Open(ctx, "u1")
	waitFor(t, agg, func(s Snapshot) bool { return s.State == StateReady })

	if _, err := f.budgets.Set(ctx, "u1", services.BudgetInput{
		Amount:          "1000",
		StartDatePicker: "2024-03-01",
		EndDatePicker:   "2024-03-31",
	}); err != nil {
		t.Fatalf("Set budget: %v", err)
	}
	for _, amount := range []string{"400", "300", "150"} {
		if _, err := f.expenses.Create(ctx, "u1", expenseInput("Item", amount)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	snap := waitFor(t, agg, func(s Snapshot) bool {
		return len(s.Expenses) == 3 && s.Summary.HasBudget
	})
	if !snap.Summary.ThresholdAlert {
		t.Fatal("850 of 1000 spent must raise the threshold alert")
	}
	if snap.Summary.BudgetRemaining.String() != "150" {
		t.Fatalf("BudgetRemaining = %s, want 150", snap.Summary.BudgetRemaining)
	}
}

func TestAggregator_FetchFailureKeepsPriorData(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.expenses.Create(ctx, "u1", expenseInput("Coffee", "150")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	agg := f.manager.Open(ctx, "u1")
	waitFor(t, agg, func(s Snapshot) bool { return len(s.Expenses) == 1 })

	f.store.setFail(true)
	f.hub.Publish(changefeed.NewEvent(changefeed.TableExpenses, changefeed.OpInsert, "u1", "x"))

	snap := waitFor(t, agg, func(s Snapshot) bool { return s.LastError != "" })
	if snap.State != StateReady {
		t.Fatalf("state after failed refresh = %s, want ready", snap.State)
	}
	if len(snap.Expenses) != 1 {
		t.Fatal("failed refresh must keep the prior stable data")
	}

	// Recovery clears the error.
	f.store.setFail(false)
	f.hub.Publish(changefeed.NewEvent(changefeed.TableExpenses, changefeed.OpInsert, "u1", "x"))
	waitFor(t, agg, func(s Snapshot) bool { return s.LastError == "" })
}

func TestAggregator_FirstLoadFailureYieldsEmptyReady(t *testing.T) {
	f := newFixture(t)
	f.store.setFail(true)

	agg := f.manager.Open(context.Background(), "u1")
	snap := waitFor(t, agg, func(s Snapshot) bool { return s.LastError != "" })
	if snap.State != StateReady {
		t.Fatalf("state = %s, want ready", snap.State)
	}
	if len(snap.Expenses) != 0 || snap.Budget != nil {
		t.Fatal("failed first load should leave an empty dashboard")
	}
}

func TestAggregator_DeleteBudget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.budgets.Set(ctx, "u1", services.BudgetInput{
		Amount:          "1000",
		StartDatePicker: "2024-03-01",
		EndDatePicker:   "2024-03-31",
	}); err != nil {
		t.Fatalf("Set budget: %v", err)
	}
	if _, err := f.expenses.Create(ctx, "u1", expenseInput("Big", "900")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	agg := f.manager.Open(ctx, "u1")
	waitFor(t, agg, func(s Snapshot) bool { return s.Summary.ThresholdAlert })

	if err := agg.DeleteBudget(ctx); err != nil {
		t.Fatalf("DeleteBudget: %v", err)
	}

	snap := waitFor(t, agg, func(s Snapshot) bool { return !s.Summary.HasBudget })
	if snap.Summary.ThresholdAlert {
		t.Fatal("deleting the budget must clear the alert")
	}
	if len(snap.Expenses) != 1 {
		t.Fatal("deleting the budget must not touch expenses")
	}
	if snap.Summary.TotalSpent.String() != "900" {
		t.Fatalf("TotalSpent = %s, want 900", snap.Summary.TotalSpent)
	}
}

func TestAggregator_NotifyTicksOnRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	agg := f.manager.Open(ctx, "u1")
	waitFor(t, agg, func(s Snapshot) bool { return s.State == StateReady })

	tick, stop := agg.Notify()
	defer stop()

	if _, err := f.expenses.Create(ctx, "u1", expenseInput("Coffee", "150")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	select {
	case <-tick:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify listener did not tick after a refresh")
	}
}

func TestManager_OpenIsIdempotentAndCloseStops(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a1 := f.manager.Open(ctx, "u1")
	a2 := f.manager.Open(ctx, "u1")
	if a1 != a2 {
		t.Fatal("Open must return the same aggregator per identity")
	}

	f.manager.Close("u1")

	select {
	case <-a1.done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not stop the run loop")
	}

	// A fresh Open after Close starts a new aggregator.
	a3 := f.manager.Open(ctx, "u1")
	if a3 == a1 {
		t.Fatal("Open after Close must start a new aggregator")
	}
}
