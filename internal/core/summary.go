package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CategoryTotal pairs a category name with its exact amount sum.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

// SumAmounts adds every amount with exact decimal arithmetic. An empty slice
// yields exact zero.
func SumAmounts(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// GroupByCategory sums amounts per exact category value. Categories are
// compared case-sensitively with no normalization.
func GroupByCategory(expenses []Expense) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}
	return totals
}

// SortedTotals orders category totals by amount descending, then name
// ascending, for stable rendering. The first entry is the top category.
func SortedTotals(totals map[string]decimal.Decimal) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(totals))
	for name, amount := range totals {
		out = append(out, CategoryTotal{Category: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Category < out[j].Category
	})
	return out
}
