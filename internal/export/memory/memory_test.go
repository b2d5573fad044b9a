package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"outlay/internal/core"
)

func expense(id int64) core.Expense {
	return core.Expense{
		ID:          id,
		Amount:      decimal.RequireFromString("12.34"),
		Description: "test",
		Date:        core.NewDate(2024, 1, 15),
		Category:    "Food",
	}
}

func TestAppendAndRows(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.Append(ctx, expense(1))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if ref == "" {
		t.Error("Append returned an empty row reference")
	}

	rows := s.Rows()
	if len(rows) != 1 || rows[0].ID != 1 {
		t.Fatalf("Rows = %+v, want the single appended expense", rows)
	}
}

func TestAppendRejectsInvalidExpense(t *testing.T) {
	s := New()

	bad := expense(1)
	bad.Description = "  "
	if _, err := s.Append(context.Background(), bad); err == nil {
		t.Error("Append accepted an expense with a blank description")
	}
}

func TestRemoveByID(t *testing.T) {
	s := New()
	ctx := context.Background()

	for id := int64(1); id <= 3; id++ {
		if _, err := s.Append(ctx, expense(id)); err != nil {
			t.Fatalf("Append(%d): %v", id, err)
		}
	}

	if err := s.RemoveByID(ctx, 2); err != nil {
		t.Fatalf("RemoveByID: %v", err)
	}
	if rows := s.Rows(); len(rows) != 2 {
		t.Fatalf("got %d rows after removal, want 2", len(rows))
	}

	// Removing an ID that was never exported is a no-op
	if err := s.RemoveByID(ctx, 99); err != nil {
		t.Errorf("RemoveByID(99) = %v, want nil for an absent ID", err)
	}
}
