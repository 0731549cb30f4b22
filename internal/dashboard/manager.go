package dashboard

import (
	"context"
	"sync"

	"github.com/Vijay-1289/Expense-Tracker/internal/changefeed"
	"github.com/Vijay-1289/Expense-Tracker/internal/core"
	"github.com/Vijay-1289/Expense-Tracker/internal/services"
)

// Manager owns one aggregator per signed-in identity. The aggregator
// and its feed subscription are created on first access and torn down
// on sign-out, so no live channel outlasts its session.
type Manager struct {
	hub      *changefeed.Hub
	expenses *services.Expenses
	budgets  *services.Budgets

	mu        sync.Mutex
	aggs      map[core.Identity]*Aggregator
	onRefresh func(core.Identity)
}

func NewManager(hub *changefeed.Hub, expenses *services.Expenses, budgets *services.Budgets) *Manager {
	return &Manager{
		hub:      hub,
		expenses: expenses,
		budgets:  budgets,
		aggs:     make(map[core.Identity]*Aggregator),
	}
}

// OnRefresh registers a hook invoked after every snapshot update of
// every aggregator, keyed by owner. Set it before the first Open.
func (m *Manager) OnRefresh(fn func(core.Identity)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRefresh = fn
}

// Open returns the identity's aggregator, starting one if needed.
func (m *Manager) Open(ctx context.Context, owner core.Identity) *Aggregator {
	m.mu.Lock()
	defer m.mu.Unlock()
	if agg, ok := m.aggs[owner]; ok {
		return agg
	}
	agg := newAggregator(owner, m.expenses, m.budgets, m.hub.Subscribe(owner))
	agg.onRefresh = m.onRefresh
	m.aggs[owner] = agg
	go agg.run(ctx)
	return agg
}

// Close stops the identity's aggregator. Called on sign-out.
func (m *Manager) Close(owner core.Identity) {
	m.mu.Lock()
	agg, ok := m.aggs[owner]
	delete(m.aggs, owner)
	m.mu.Unlock()
	if ok {
		agg.close()
	}
}

// CloseAll stops every aggregator. Called on server shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	aggs := make([]*Aggregator, 0, len(m.aggs))
	for owner, agg := range m.aggs {
		aggs = append(aggs, agg)
		delete(m.aggs, owner)
	}
	m.mu.Unlock()
	for _, agg := range aggs {
		agg.close()
	}
}
