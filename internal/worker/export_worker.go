package worker

import (
	"context"
	"fmt"
	"log/slog"

	"outlay/internal/amqp"
	"outlay/internal/core"
	"outlay/internal/export"
)

// Storage is the slice of the persistence gateway the worker needs: reading
// rows and tracking their export state.
type Storage interface {
	GetExpense(ctx context.Context, id int64) (core.Expense, bool, error)
	PendingExportExpenses(ctx context.Context, limit int) ([]core.Expense, error)
	MarkExported(ctx context.Context, id int64) error
	MarkExportError(ctx context.Context, id int64) error
}

// ExportWorker moves expenses from local storage into the export target.
// AMQP messages drive it in normal operation; the pending scans are the
// backup path for messages that never arrived.
type ExportWorker struct {
	storage   Storage
	exporter  export.Exporter
	batchSize int
}

func NewExportWorker(storage Storage, exporter export.Exporter, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleCreatedMessage processes a single expense created message from AMQP
func (w *ExportWorker) HandleCreatedMessage(ctx context.Context, msg *amqp.ExpenseCreatedMessage) error {
	slog.InfoContext(ctx, "Processing created message", "id", msg.ID)

	expense, found, err := w.storage.GetExpense(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}
	if !found {
		// Deleted before the export happened; nothing to write
		slog.WarnContext(ctx, "Expense no longer in storage, skipping export", "id", msg.ID)
		return nil
	}

	if err := w.exportExpense(ctx, expense); err != nil {
		return fmt.Errorf("export expense: %w", err)
	}

	return nil
}

// HandleDeletedMessage processes a single expense deleted message from AMQP
func (w *ExportWorker) HandleDeletedMessage(ctx context.Context, msg *amqp.ExpenseDeletedMessage) error {
	slog.InfoContext(ctx, "Processing deleted message", "id", msg.ID)

	if w.exporter == nil {
		slog.WarnContext(ctx, "No exporter configured, skipping removal", "id", msg.ID)
		return nil
	}

	if err := w.exporter.RemoveByID(ctx, msg.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to remove expense from export target",
			"id", msg.ID,
			"error", err)
		return fmt.Errorf("remove expense: %w", err)
	}

	slog.InfoContext(ctx, "Successfully removed exported expense", "id", msg.ID)
	return nil
}

// ProcessPending exports expenses still in the pending state.
// This is a backup mechanism in case AMQP messages are lost.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.PendingExportExpenses(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending expenses: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending expenses", "count", len(pending))

	for _, expense := range pending {
		if err := w.exportExpense(ctx, expense); err != nil {
			slog.ErrorContext(ctx, "Failed to export expense", "id", expense.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupCheck exports any backlog of pending expenses at worker startup.
// This is useful to recover from missed AMQP messages or worker downtime.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	// Use a larger batch for the startup pass
	pending, err := w.storage.PendingExportExpenses(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending expenses for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending expenses found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending expenses on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, expense := range pending {
		if err := w.exportExpense(ctx, expense); err != nil {
			slog.ErrorContext(ctx, "Failed to export expense during startup",
				"id", expense.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup export completed",
		"total", len(pending),
		"exported", successCount,
		"errors", errorCount)

	return nil
}

func (w *ExportWorker) exportExpense(ctx context.Context, expense core.Expense) error {
	ref, err := w.exporter.Append(ctx, expense)
	if err != nil {
		if markErr := w.storage.MarkExportError(ctx, expense.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", expense.ID, "error", markErr)
		}
		return fmt.Errorf("append to export target: %w", err)
	}

	if err := w.storage.MarkExported(ctx, expense.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as exported", "id", expense.ID, "error", err)
		// Don't return error here - the export actually worked
	}

	slog.InfoContext(ctx, "Successfully exported expense",
		"id", expense.ID,
		"ref", ref,
		"description", expense.Description,
		"amount", expense.Amount.StringFixed(2))

	return nil
}
