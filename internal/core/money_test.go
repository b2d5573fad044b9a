package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12.34", "12.34", true},
		{"12,34", "12.34", true},
		{" 7 ", "7", true},
		{"0.01", "0.01", true},
		{"9999.99", "9999.99", true},
		{"99999999.99", "99999999.99", true},
		{"12.345", "12.35", true}, // half-up on third decimal
		{"12.344", "12.34", true},
		{"", "", false},
		{"abc", "", false},
		{"-5", "", false},
		{"+5", "", false},
		{"0", "", false},
		{"0.004", "", false}, // rounds to zero
		{"100000000.00", "", false},
		{"12.34.56", "", false},
	}
	for i, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("case %d (%q) expected ok, got %v", i, tc.in, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("case %d (%q) expected error", i, tc.in)
			}
			continue
		}
		want := decimal.RequireFromString(tc.want)
		if !got.Equal(want) {
			t.Fatalf("case %d (%q) = %s, want %s", i, tc.in, got, want)
		}
	}
}

func TestParseAmountExactness(t *testing.T) {
	// Values that are not representable in binary floating point must still
	// round-trip exactly through parse and string form.
	for _, s := range []string{"0.01", "0.10", "15.50", "9999.99"} {
		d, err := ParseAmount(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if d.StringFixed(2) != s {
			t.Fatalf("parse %q round-tripped to %s", s, d.StringFixed(2))
		}
	}
}
