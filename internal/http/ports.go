package http

import (
	"context"

	"github.com/shopspring/decimal"

	"outlay/internal/core"
)

// Ledger is the slice of the expense ledger the HTTP layer drives. The
// handlers never talk to storage directly; everything goes through these
// operations.
type Ledger interface {
	Create(ctx context.Context, e core.ExpenseCreate) (core.Expense, error)
	ListAll(ctx context.Context) ([]core.Expense, error)
	GetByID(ctx context.Context, id int64) (core.Expense, bool, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
	TotalAmount(ctx context.Context) (decimal.Decimal, error)
	TotalsByCategory(ctx context.Context) (map[string]decimal.Decimal, error)
}
