package core

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.String() != "2024-01-15" {
		t.Fatalf("round-trip = %s", d.String())
	}
	for _, s := range []string{"", "15/01/2024", "2024-13-01", "yesterday"} {
		if _, err := ParseDate(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestExpenseCreateValidate(t *testing.T) {
	good := ExpenseCreate{
		Amount:      decimal.RequireFromString("12.50"),
		Description: "groceries",
		Date:        NewDate(2024, 1, 15),
		Category:    "Food",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	one := decimal.RequireFromString("1.00")
	bads := []ExpenseCreate{
		{Amount: one, Description: "a", Date: Date{}, Category: "c"},                                      // zero date
		{Amount: one, Description: "", Date: NewDate(2024, 1, 1), Category: "c"},                          // empty description
		{Amount: one, Description: "   ", Date: NewDate(2024, 1, 1), Category: "c"},                       // blank description
		{Amount: one, Description: strings.Repeat("x", 501), Date: NewDate(2024, 1, 1), Category: "c"},    // too long
		{Amount: one, Description: "a", Date: NewDate(2024, 1, 1), Category: ""},                          // empty category
		{Amount: one, Description: "a", Date: NewDate(2024, 1, 1), Category: strings.Repeat("y", 101)},    // too long
		{Amount: decimal.Zero, Description: "a", Date: NewDate(2024, 1, 1), Category: "c"},                // zero amount
		{Amount: decimal.RequireFromString("-3"), Description: "a", Date: NewDate(2024, 1, 1), Category: "c"},
		{Amount: decimal.RequireFromString("1.005"), Description: "a", Date: NewDate(2024, 1, 1), Category: "c"}, // sub-cent
		{Amount: decimal.RequireFromString("100000000"), Description: "a", Date: NewDate(2024, 1, 1), Category: "c"},
	}
	for i, c := range bads {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestExpenseCreateValidateBoundaries(t *testing.T) {
	c := ExpenseCreate{
		Amount:      decimal.RequireFromString("99999999.99"),
		Description: strings.Repeat("d", 500),
		Date:        NewDate(2024, 2, 29),
		Category:    strings.Repeat("c", 100),
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("max-length fields should validate, got %v", err)
	}
}
