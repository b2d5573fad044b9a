package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"outlay/internal/amqp"
	"outlay/internal/core"
	exportmem "outlay/internal/export/memory"
	storagemem "outlay/internal/storage/memory"
)

func mustInsert(t *testing.T, s *storagemem.Store, amount, description, date, category string) core.Expense {
	t.Helper()
	d, err := core.ParseDate(date)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", date, err)
	}
	saved, err := s.InsertExpense(context.Background(), core.ExpenseCreate{
		Amount:      decimal.RequireFromString(amount),
		Description: description,
		Date:        d,
		Category:    category,
	})
	if err != nil {
		t.Fatalf("InsertExpense(%s): %v", description, err)
	}
	return saved
}

func TestHandleCreatedMessage(t *testing.T) {
	store := storagemem.New()
	target := exportmem.New()
	w := NewExportWorker(store, target, 10)
	ctx := context.Background()

	saved := mustInsert(t, store, "15.50", "Groceries", "2024-01-15", "Food")

	if err := w.HandleCreatedMessage(ctx, amqp.NewExpenseCreatedMessage(saved.ID)); err != nil {
		t.Fatalf("HandleCreatedMessage: %v", err)
	}

	rows := target.Rows()
	if len(rows) != 1 {
		t.Fatalf("export target has %d rows, want 1", len(rows))
	}
	if rows[0].ID != saved.ID || rows[0].Description != "Groceries" {
		t.Errorf("exported row = %+v, want the stored expense", rows[0])
	}

	pending, err := store.PendingExportExpenses(ctx, 10)
	if err != nil {
		t.Fatalf("PendingExportExpenses: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("%d expenses still pending after export", len(pending))
	}
}

func TestHandleCreatedMessageMissingExpense(t *testing.T) {
	store := storagemem.New()
	target := exportmem.New()
	w := NewExportWorker(store, target, 10)

	// The row was deleted before the worker saw the message
	if err := w.HandleCreatedMessage(context.Background(), amqp.NewExpenseCreatedMessage(404)); err != nil {
		t.Fatalf("HandleCreatedMessage for a missing expense should ack, got: %v", err)
	}
	if len(target.Rows()) != 0 {
		t.Error("export target received a row for a missing expense")
	}
}

type failingExporter struct{}

func (failingExporter) Append(context.Context, core.Expense) (string, error) {
	return "", errors.New("export target unavailable")
}

func (failingExporter) RemoveByID(context.Context, int64) error {
	return errors.New("export target unavailable")
}

func TestHandleCreatedMessageExportFailure(t *testing.T) {
	store := storagemem.New()
	w := NewExportWorker(store, failingExporter{}, 10)
	ctx := context.Background()

	saved := mustInsert(t, store, "5.00", "doomed", "2024-01-01", "Other")

	if err := w.HandleCreatedMessage(ctx, amqp.NewExpenseCreatedMessage(saved.ID)); err == nil {
		t.Fatal("HandleCreatedMessage should fail when the export target fails")
	}

	// The row moved out of pending into the error state
	pending, err := store.PendingExportExpenses(ctx, 10)
	if err != nil {
		t.Fatalf("PendingExportExpenses: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("%d expenses still pending after export failure", len(pending))
	}
}

func TestHandleDeletedMessage(t *testing.T) {
	store := storagemem.New()
	target := exportmem.New()
	w := NewExportWorker(store, target, 10)
	ctx := context.Background()

	saved := mustInsert(t, store, "9.99", "Lunch", "2024-02-01", "Food")
	if err := w.HandleCreatedMessage(ctx, amqp.NewExpenseCreatedMessage(saved.ID)); err != nil {
		t.Fatalf("HandleCreatedMessage: %v", err)
	}
	if len(target.Rows()) != 1 {
		t.Fatal("expense was not exported")
	}

	if err := w.HandleDeletedMessage(ctx, amqp.NewExpenseDeletedMessage(saved.ID)); err != nil {
		t.Fatalf("HandleDeletedMessage: %v", err)
	}
	if len(target.Rows()) != 0 {
		t.Error("exported row was not removed")
	}
}

func TestHandleDeletedMessageWithoutExporter(t *testing.T) {
	w := NewExportWorker(storagemem.New(), nil, 10)

	if err := w.HandleDeletedMessage(context.Background(), amqp.NewExpenseDeletedMessage(1)); err != nil {
		t.Fatalf("HandleDeletedMessage without exporter should be a no-op, got: %v", err)
	}
}

func TestProcessPending(t *testing.T) {
	store := storagemem.New()
	target := exportmem.New()
	w := NewExportWorker(store, target, 10)
	ctx := context.Background()

	mustInsert(t, store, "1.00", "a", "2024-01-01", "Food")
	mustInsert(t, store, "2.00", "b", "2024-01-02", "Food")
	mustInsert(t, store, "3.00", "c", "2024-01-03", "Transport")

	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}

	if len(target.Rows()) != 3 {
		t.Errorf("export target has %d rows, want 3", len(target.Rows()))
	}

	pending, err := store.PendingExportExpenses(ctx, 10)
	if err != nil {
		t.Fatalf("PendingExportExpenses: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("%d expenses still pending", len(pending))
	}
}

func TestProcessPendingEmpty(t *testing.T) {
	w := NewExportWorker(storagemem.New(), exportmem.New(), 10)

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("ProcessPending on empty storage: %v", err)
	}
}

func TestStartupCheck(t *testing.T) {
	store := storagemem.New()
	target := exportmem.New()
	w := NewExportWorker(store, target, 2)
	ctx := context.Background()

	// More rows than one regular batch; the startup pass uses a larger one
	for i := 0; i < 5; i++ {
		mustInsert(t, store, "1.00", "backlog", "2024-01-01", "Food")
	}

	if err := w.StartupCheck(ctx); err != nil {
		t.Fatalf("StartupCheck: %v", err)
	}

	if len(target.Rows()) != 5 {
		t.Errorf("export target has %d rows, want 5", len(target.Rows()))
	}
}
