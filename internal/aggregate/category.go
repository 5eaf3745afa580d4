package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"gstbooks/internal/core"
)

// OtherCategory labels the bucket TopN collapses the tail into.
const OtherCategory = "Other"

// GroupByCategory sums matching amounts per distinct category.
//
// Percentages are taken against the total of all matched amounts at full
// precision. When that total is zero every percentage is zero. Groups are
// returned in first-seen order.
func GroupByCategory(txs []core.Transaction, f core.Filter) []core.CategoryBreakdown {
	index := make(map[string]int)
	groups := make([]core.CategoryBreakdown, 0)
	total := decimal.Zero

	for _, tx := range txs {
		if !f.Match(tx) {
			continue
		}
		total = total.Add(tx.Amount)
		i, ok := index[tx.Category]
		if !ok {
			i = len(groups)
			index[tx.Category] = i
			groups = append(groups, core.CategoryBreakdown{Category: tx.Category, Amount: decimal.Zero})
		}
		groups[i].Amount = groups[i].Amount.Add(tx.Amount)
		groups[i].Count++
	}

	for i := range groups {
		groups[i].Percentage = core.Percent(groups[i].Amount, total)
	}
	return groups
}

// SortByAmount orders groups by amount descending, then by name.
func SortByAmount(groups []core.CategoryBreakdown) {
	sort.SliceStable(groups, func(i, j int) bool {
		if c := groups[i].Amount.Cmp(groups[j].Amount); c != 0 {
			return c > 0
		}
		return groups[i].Category < groups[j].Category
	})
}

// TopN keeps the n largest groups and folds the rest into an "Other" entry.
// The input is not modified.
func TopN(groups []core.CategoryBreakdown, n int) []core.CategoryBreakdown {
	sorted := append([]core.CategoryBreakdown(nil), groups...)
	SortByAmount(sorted)
	if n <= 0 || len(sorted) <= n {
		return sorted
	}

	other := core.CategoryBreakdown{Category: OtherCategory, Amount: decimal.Zero, Percentage: decimal.Zero}
	for _, g := range sorted[n:] {
		other.Amount = other.Amount.Add(g.Amount)
		other.Percentage = other.Percentage.Add(g.Percentage)
		other.Count += g.Count
	}
	return append(sorted[:n:n], other)
}
