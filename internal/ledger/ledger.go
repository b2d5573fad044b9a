package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"outlay/internal/amqp"
	"outlay/internal/core"
)

// Ledger orchestrates expense operations across the persistence gateway and
// AMQP. Writes go to storage first; event publishing is best-effort and never
// fails the request.
type Ledger struct {
	gateway    Gateway
	amqpClient *amqp.Client
}

func New(gateway Gateway, amqpClient *amqp.Client) *Ledger {
	return &Ledger{
		gateway:    gateway,
		amqpClient: amqpClient,
	}
}

// Create stores a validated expense and publishes a created event
func (l *Ledger) Create(ctx context.Context, e core.ExpenseCreate) (core.Expense, error) {
	// Save to storage first (fast, reliable)
	saved, err := l.gateway.InsertExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	// Publish async created event (non-blocking)
	if err := l.publishCreated(ctx, saved.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish created event",
			"id", saved.ID, "error", err)
		// Don't fail the request - expense is saved locally
	}

	return saved, nil
}

// ListAll returns every expense, most recent date first. Expenses sharing a
// date keep their insertion order.
func (l *Ledger) ListAll(ctx context.Context) ([]core.Expense, error) {
	expenses, err := l.gateway.ListExpenses(ctx, SortByExpenseDate, true)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// GetByID returns the expense with the given ID. The bool reports whether it
// exists; asking for an absent ID is not an error.
func (l *Ledger) GetByID(ctx context.Context, id int64) (core.Expense, bool, error) {
	e, found, err := l.gateway.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, false, fmt.Errorf("get expense: %w", err)
	}
	return e, found, nil
}

// DeleteByID removes the expense with the given ID and reports whether a row
// existed. A deleted event is published only when something was removed.
func (l *Ledger) DeleteByID(ctx context.Context, id int64) (bool, error) {
	existed, err := l.gateway.DeleteExpense(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete expense: %w", err)
	}

	if existed {
		if err := l.publishDeleted(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish deleted event",
				"id", id, "error", err)
			// Don't fail the request - expense is deleted locally
		}
	}

	return existed, nil
}

// TotalAmount returns the exact sum of all stored amounts. An empty ledger
// sums to zero.
func (l *Ledger) TotalAmount(ctx context.Context) (decimal.Decimal, error) {
	expenses, err := l.gateway.ListExpenses(ctx, SortByExpenseDate, true)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("list expenses: %w", err)
	}
	return core.SumAmounts(expenses), nil
}

// TotalsByCategory returns the exact per-category sums. Categories are
// distinguished byte for byte; no normalization happens here.
func (l *Ledger) TotalsByCategory(ctx context.Context) (map[string]decimal.Decimal, error) {
	expenses, err := l.gateway.ListExpenses(ctx, SortByExpenseDate, true)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return core.GroupByCategory(expenses), nil
}

func (l *Ledger) publishCreated(ctx context.Context, id int64) error {
	if l.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping created event")
		return nil
	}

	return l.amqpClient.PublishExpenseCreated(ctx, id)
}

func (l *Ledger) publishDeleted(ctx context.Context, id int64) error {
	if l.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping deleted event")
		return nil
	}

	return l.amqpClient.PublishExpenseDeleted(ctx, id)
}

// Close closes both the gateway and the AMQP connection
func (l *Ledger) Close() error {
	var errs []error

	if l.gateway != nil {
		if err := l.gateway.Close(); err != nil {
			errs = append(errs, fmt.Errorf("gateway: %w", err))
		}
	}

	if l.amqpClient != nil {
		if err := l.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger: %v", errs)
	}

	return nil
}
