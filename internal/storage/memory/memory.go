package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"outlay/internal/core"
	"outlay/internal/ledger"
)

// Store keeps expenses in memory with the same contract as the SQLite
// repository. Rows get sequential IDs and start in the pending export state.
// Useful for tests and for running without a database file.
type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Expense
	states map[int64]string
}

var _ ledger.Gateway = (*Store)(nil)

func New() *Store {
	return &Store{
		nextID: 1,
		states: map[int64]string{},
	}
}

func (s *Store) InsertExpense(_ context.Context, e core.ExpenseCreate) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := core.Expense{
		ID:          s.nextID,
		Amount:      e.Amount,
		Description: e.Description,
		Date:        e.Date,
		Category:    e.Category,
		CreatedAt:   time.Now().UTC(),
	}
	s.nextID++
	s.items = append(s.items, saved)
	s.states[saved.ID] = "pending"

	return saved, nil
}

func (s *Store) GetExpense(_ context.Context, id int64) (core.Expense, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.items {
		if e.ID == id {
			return e, true, nil
		}
	}
	return core.Expense{}, false, nil
}

func (s *Store) ListExpenses(_ context.Context, orderBy ledger.SortField, descending bool) ([]core.Expense, error) {
	var less func(a, b core.Expense) bool
	switch orderBy {
	case ledger.SortByExpenseDate:
		less = func(a, b core.Expense) bool { return a.Date.Before(b.Date.Time) }
	case ledger.SortByCreatedAt:
		less = func(a, b core.Expense) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		return nil, fmt.Errorf("unsupported sort field: %s", orderBy)
	}

	s.mu.Lock()
	out := append([]core.Expense(nil), s.items...)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !less(a, b) && !less(b, a) {
			// Equal field values fall back to insertion order
			return a.ID < b.ID
		}
		if descending {
			return less(b, a)
		}
		return less(a, b)
	})

	return out, nil
}

func (s *Store) DeleteExpense(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.items {
		if e.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			delete(s.states, id)
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) PendingExportExpenses(_ context.Context, limit int) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Expense
	for _, e := range s.items {
		if s.states[e.ID] != "pending" {
			continue
		}
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) MarkExported(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.states[id]; ok {
		s.states[id] = "exported"
	}
	return nil
}

func (s *Store) MarkExportError(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.states[id]; ok {
		s.states[id] = "error"
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}
