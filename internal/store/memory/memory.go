// Package memory provides the in-memory record store, the default
// backend and the test double for everything above the store boundary.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Vijay-1289/Expense-Tracker/internal/core"
	"github.com/Vijay-1289/Expense-Tracker/internal/store"
)

type Store struct {
	mu       sync.Mutex
	expenses map[core.Identity][]core.Expense
	budgets  map[core.Identity][]core.Budget
	profiles map[core.Identity]store.Profile
	now      func() time.Time
}

func New() *Store {
	return &Store{
		expenses: make(map[core.Identity][]core.Expense),
		budgets:  make(map[core.Identity][]core.Budget),
		profiles: make(map[core.Identity]store.Profile),
		now:      time.Now,
	}
}

// InsertExpense stores the expense and returns it with a synthetic ID.
func (s *Store) InsertExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uuid.NewString()
	e.CreatedAt = s.now()
	s.expenses[e.Owner] = append(s.expenses[e.Owner], e)
	return e, nil
}

// ListExpenses returns the owner's expenses ordered by date descending,
// newest insert first among equal dates.
func (s *Store) ListExpenses(_ context.Context, owner core.Identity) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]core.Expense, len(s.expenses[owner]))
	copy(items, s.expenses[owner])
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date.Time) {
			return items[i].Date.After(items[j].Date)
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) InsertBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = uuid.NewString()
	b.CreatedAt = s.now()
	s.budgets[b.Owner] = append(s.budgets[b.Owner], b)
	return b, nil
}

// LatestBudget returns the most recently created budget; insert order
// breaks creation-time ties.
func (s *Store) LatestBudget(_ context.Context, owner core.Identity) (*core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.budgets[owner]
	if len(rows) == 0 {
		return nil, nil
	}
	latest := rows[0]
	for _, b := range rows[1:] {
		if !b.CreatedAt.Before(latest.CreatedAt) {
			latest = b
		}
	}
	out := latest
	return &out, nil
}

func (s *Store) DeleteBudgets(_ context.Context, owner core.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.budgets, owner)
	return nil
}

func (s *Store) UpsertProfile(_ context.Context, p store.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
	return nil
}

// Profile returns the stored profile, for tests.
func (s *Store) Profile(id core.Identity) (store.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	return p, ok
}
