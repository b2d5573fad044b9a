package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"outlay/internal/core"
	"outlay/internal/ledger"
	"outlay/internal/storage/memory"
)

func newTestLedger() *ledger.Ledger {
	// No AMQP client: event publishing is skipped, operations still work
	return ledger.New(memory.New(), nil)
}

func mustCreate(t *testing.T, l *ledger.Ledger, amount, description, date, category string) core.Expense {
	t.Helper()
	d, err := core.ParseDate(date)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", date, err)
	}
	saved, err := l.Create(context.Background(), core.ExpenseCreate{
		Amount:      decimal.RequireFromString(amount),
		Description: description,
		Date:        d,
		Category:    category,
	})
	if err != nil {
		t.Fatalf("Create(%s): %v", description, err)
	}
	return saved
}

func TestCreateAndListAll(t *testing.T) {
	l := newTestLedger()

	saved := mustCreate(t, l, "15.50", "Groceries", "2024-01-15", "Food")
	if saved.ID <= 0 {
		t.Fatalf("Create returned ID %d, want positive", saved.ID)
	}

	expenses, err := l.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("got %d expenses, want 1", len(expenses))
	}
	if expenses[0].ID != saved.ID || expenses[0].Description != "Groceries" {
		t.Errorf("ListAll returned %+v, want the created expense", expenses[0])
	}
}

func TestListAllOrdersByDateDescending(t *testing.T) {
	l := newTestLedger()

	mustCreate(t, l, "10.00", "a", "2024-01-10", "Food")
	mustCreate(t, l, "20.00", "b", "2024-01-15", "Food")
	mustCreate(t, l, "30.00", "c", "2024-01-12", "Transport")
	mustCreate(t, l, "40.00", "d", "2024-01-08", "Other")

	expenses, err := l.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}

	wantDates := []string{"2024-01-15", "2024-01-12", "2024-01-10", "2024-01-08"}
	if len(expenses) != len(wantDates) {
		t.Fatalf("got %d expenses, want %d", len(expenses), len(wantDates))
	}
	for i, want := range wantDates {
		if expenses[i].Date.String() != want {
			t.Errorf("position %d: date = %s, want %s", i, expenses[i].Date.String(), want)
		}
	}
}

func TestTotalAmountIsExact(t *testing.T) {
	l := newTestLedger()

	mustCreate(t, l, "15.50", "a", "2024-01-01", "Food")
	mustCreate(t, l, "25.00", "b", "2024-01-02", "Food")
	mustCreate(t, l, "8.75", "c", "2024-01-03", "Transport")

	total, err := l.TotalAmount(context.Background())
	if err != nil {
		t.Fatalf("TotalAmount: %v", err)
	}
	if total.StringFixed(2) != "49.25" {
		t.Errorf("TotalAmount = %s, want 49.25", total.StringFixed(2))
	}
}

func TestTotalAmountEmpty(t *testing.T) {
	l := newTestLedger()

	total, err := l.TotalAmount(context.Background())
	if err != nil {
		t.Fatalf("TotalAmount: %v", err)
	}
	if !total.IsZero() {
		t.Errorf("TotalAmount on empty ledger = %s, want 0", total.String())
	}
}

func TestTotalsByCategory(t *testing.T) {
	l := newTestLedger()

	mustCreate(t, l, "15.00", "a", "2024-01-01", "Food")
	mustCreate(t, l, "25.00", "b", "2024-01-02", "Food")
	mustCreate(t, l, "30.00", "c", "2024-01-03", "Transport")
	mustCreate(t, l, "12.50", "d", "2024-01-04", "Food")

	totals, err := l.TotalsByCategory(context.Background())
	if err != nil {
		t.Fatalf("TotalsByCategory: %v", err)
	}

	if len(totals) != 2 {
		t.Fatalf("got %d categories, want exactly 2", len(totals))
	}
	if totals["Food"].StringFixed(2) != "52.50" {
		t.Errorf("Food total = %s, want 52.50", totals["Food"].StringFixed(2))
	}
	if totals["Transport"].StringFixed(2) != "30.00" {
		t.Errorf("Transport total = %s, want 30.00", totals["Transport"].StringFixed(2))
	}
}

func TestTotalsByCategoryEmpty(t *testing.T) {
	l := newTestLedger()

	totals, err := l.TotalsByCategory(context.Background())
	if err != nil {
		t.Fatalf("TotalsByCategory: %v", err)
	}
	if len(totals) != 0 {
		t.Errorf("got %d categories on empty ledger, want 0", len(totals))
	}
}

func TestGetByID(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	saved := mustCreate(t, l, "9.99", "Lunch", "2024-02-01", "Food")

	got, found, err := l.GetByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !found {
		t.Fatal("GetByID did not find a created expense")
	}
	if !got.Amount.Equal(saved.Amount) {
		t.Errorf("GetByID amount = %s, want %s", got.Amount.String(), saved.Amount.String())
	}

	_, found, err = l.GetByID(ctx, 42000)
	if err != nil {
		t.Fatalf("GetByID absent: %v", err)
	}
	if found {
		t.Error("GetByID reported an absent ID as found")
	}
}

func TestDeleteByID(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	saved := mustCreate(t, l, "5.00", "to delete", "2024-01-01", "Other")

	existed, err := l.DeleteByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	if !existed {
		t.Error("DeleteByID reported false for an existing expense")
	}

	existed, err = l.DeleteByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("DeleteByID second call: %v", err)
	}
	if existed {
		t.Error("DeleteByID reported true for an already deleted expense")
	}

	total, err := l.TotalAmount(ctx)
	if err != nil {
		t.Fatalf("TotalAmount after delete: %v", err)
	}
	if !total.IsZero() {
		t.Errorf("TotalAmount after deleting the only expense = %s, want 0", total.String())
	}
}

func TestAmountBoundariesRoundTrip(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	small := mustCreate(t, l, "0.01", "smallest", "2024-01-01", "Other")
	large := mustCreate(t, l, "9999.99", "largest", "2024-01-02", "Other")

	for _, saved := range []core.Expense{small, large} {
		got, found, err := l.GetByID(ctx, saved.ID)
		if err != nil || !found {
			t.Fatalf("GetByID(%d): found=%v err=%v", saved.ID, found, err)
		}
		if got.Amount.StringFixed(2) != saved.Amount.StringFixed(2) {
			t.Errorf("amount %s came back as %s", saved.Amount.StringFixed(2), got.Amount.StringFixed(2))
		}
	}

	total, err := l.TotalAmount(ctx)
	if err != nil {
		t.Fatalf("TotalAmount: %v", err)
	}
	if total.StringFixed(2) != "10000.00" {
		t.Errorf("TotalAmount = %s, want 10000.00", total.StringFixed(2))
	}
}

func TestClose(t *testing.T) {
	l := newTestLedger()

	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
