// Package dashboard produces the view-state behind the dashboard
// widgets. One aggregator runs per signed-in identity, consuming the
// change feed and re-fetching on every event.
package dashboard

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Vijay-1289/Expense-Tracker/internal/changefeed"
	"github.com/Vijay-1289/Expense-Tracker/internal/core"
	"github.com/Vijay-1289/Expense-Tracker/internal/services"
)

type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateLoading         State = "loading"
	StateReady           State = "ready"
	StateRefreshing      State = "refreshing"
)

// Snapshot is the copied view-state handed to handlers. LastError holds
// the message of the most recent failed fetch; it clears on the next
// successful one.
type Snapshot struct {
	State     State
	Expenses  []core.Expense
	Budget    *core.Budget
	Summary   core.Summary
	LastError string
}

// Aggregator keeps one identity's dashboard state current. Events
// arrive on a single subscription channel consumed by one goroutine,
// so refresh ordering is explicit. Overlap with DeleteBudget is
// last-writer-wins.
type Aggregator struct {
	owner    core.Identity
	expenses *services.Expenses
	budgets  *services.Budgets
	sub      *changefeed.Subscription

	mu        sync.RWMutex
	snapshot  Snapshot
	listeners map[chan struct{}]struct{}

	// onRefresh fires after every snapshot update, outside the lock.
	onRefresh func(core.Identity)

	done chan struct{}
}

func newAggregator(owner core.Identity, expenses *services.Expenses, budgets *services.Budgets, sub *changefeed.Subscription) *Aggregator {
	return &Aggregator{
		owner:     owner,
		expenses:  expenses,
		budgets:   budgets,
		sub:       sub,
		snapshot:  Snapshot{State: StateLoading},
		listeners: make(map[chan struct{}]struct{}),
		done:      make(chan struct{}),
	}
}

// run performs the initial load and then re-fetches on every feed
// event. It exits when the subscription closes.
func (a *Aggregator) run(ctx context.Context) {
	defer close(a.done)

	a.refresh(ctx)

	for {
		select {
		case _, ok := <-a.sub.Events():
			if !ok {
				return
			}
			a.setState(StateRefreshing)
			a.refresh(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// refresh re-fetches both record sets and rebuilds the summary from the
// just-completed fetch. On failure the prior data is kept and only the
// error message changes.
func (a *Aggregator) refresh(ctx context.Context) {
	expenses, err := a.expenses.List(ctx, a.owner)
	if err != nil {
		a.fail(ctx, err)
		return
	}
	budget, err := a.budgets.Latest(ctx, a.owner)
	if err != nil {
		a.fail(ctx, err)
		return
	}

	a.mu.Lock()
	a.snapshot = Snapshot{
		State:    StateReady,
		Expenses: expenses,
		Budget:   budget,
		Summary:  core.Summarize(expenses, budget),
	}
	a.mu.Unlock()
	a.broadcast()
}

func (a *Aggregator) fail(ctx context.Context, err error) {
	slog.ErrorContext(ctx, "dashboard refresh failed", "owner", a.owner, "error", err)
	a.mu.Lock()
	a.snapshot.State = StateReady
	a.snapshot.LastError = err.Error()
	a.mu.Unlock()
	a.broadcast()
}

func (a *Aggregator) setState(s State) {
	a.mu.Lock()
	a.snapshot.State = s
	a.mu.Unlock()
}

// Snapshot returns a copy of the current view-state.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	snap := a.snapshot
	snap.Expenses = make([]core.Expense, len(a.snapshot.Expenses))
	copy(snap.Expenses, a.snapshot.Expenses)
	if a.snapshot.Budget != nil {
		b := *a.snapshot.Budget
		snap.Budget = &b
	}
	return snap
}

// DeleteBudget removes the owner's budget rows and resets the local
// aggregates immediately; expenses are untouched and the alert clears.
func (a *Aggregator) DeleteBudget(ctx context.Context) error {
	if err := a.budgets.Delete(ctx, a.owner); err != nil {
		return err
	}
	a.mu.Lock()
	a.snapshot.Budget = nil
	a.snapshot.Summary = core.Summarize(a.snapshot.Expenses, nil)
	a.mu.Unlock()
	a.broadcast()
	return nil
}

// Notify registers a listener that ticks after every snapshot update.
// The returned stop function must be called when the listener is done.
func (a *Aggregator) Notify() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	a.mu.Lock()
	a.listeners[ch] = struct{}{}
	a.mu.Unlock()
	stop := func() {
		a.mu.Lock()
		delete(a.listeners, ch)
		a.mu.Unlock()
	}
	return ch, stop
}

// broadcast ticks every listener without blocking. A listener that has
// not drained its previous tick coalesces with this one.
func (a *Aggregator) broadcast() {
	if a.onRefresh != nil {
		a.onRefresh(a.owner)
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	for ch := range a.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// close tears the aggregator down and waits for the run loop to exit.
func (a *Aggregator) close() {
	a.sub.Close()
	<-a.done
}
