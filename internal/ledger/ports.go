package ledger

import (
	"context"

	"outlay/internal/core"
)

// SortField names a column the gateway may order listings by.
type SortField string

const (
	SortByExpenseDate SortField = "expense_date"
	SortByCreatedAt   SortField = "created_at"
)

// Ports for outbound adapters.
type (
	// Gateway is the persistence port the ledger drives. Each call is a
	// self-contained unit of work against the expenses table. Implementations
	// do not validate records; callers hand over already-validated input.
	Gateway interface {
		// InsertExpense stores a new expense and returns it with its
		// assigned ID and creation timestamp.
		InsertExpense(ctx context.Context, e core.ExpenseCreate) (core.Expense, error)

		// GetExpense returns the expense with the given ID. The bool reports
		// whether a row existed; a missing row is not an error.
		GetExpense(ctx context.Context, id int64) (core.Expense, bool, error)

		// ListExpenses returns every stored expense ordered by the given
		// field. Rows sharing a field value come back in ascending ID order.
		ListExpenses(ctx context.Context, orderBy SortField, descending bool) ([]core.Expense, error)

		// DeleteExpense removes the expense with the given ID and reports
		// whether a row existed.
		DeleteExpense(ctx context.Context, id int64) (bool, error)

		Close() error
	}
)
