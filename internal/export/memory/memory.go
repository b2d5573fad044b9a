package memory

import (
	"context"
	"fmt"
	"sync"

	"outlay/internal/core"
	ports "outlay/internal/export"
)

// Store is an in-memory export target with the same contract as the Sheets
// client. Used in tests and when no spreadsheet is configured.
type Store struct {
	mu   sync.Mutex
	rows []core.Expense
}

var (
	_ ports.ExpenseWriter  = (*Store)(nil)
	_ ports.ExpenseRemover = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

// Append stores the expense and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, e)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// RemoveByID drops the row with the given ID. Absent IDs are a no-op.
func (s *Store) RemoveByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.rows {
		if e.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

// Rows returns a snapshot of the exported rows in append order.
func (s *Store) Rows() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.rows...)
}
