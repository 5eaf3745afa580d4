package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"gstbooks/internal/core"
)

// MonthlyTotals buckets matching transactions by calendar month, ascending.
// Months without transactions are not emitted.
func MonthlyTotals(txs []core.Transaction, f core.Filter) []core.MonthTotal {
	byMonth := make(map[string]*core.MonthTotal)
	for _, tx := range txs {
		if !f.Match(tx) {
			continue
		}
		key := tx.Date.MonthKey()
		m, ok := byMonth[key]
		if !ok {
			m = &core.MonthTotal{Month: key, Income: decimal.Zero, Expenses: decimal.Zero}
			byMonth[key] = m
		}
		switch tx.Direction() {
		case core.Inflow:
			m.Income = m.Income.Add(tx.Amount)
		case core.Outflow:
			m.Expenses = m.Expenses.Add(tx.Amount)
		}
		m.Count++
	}

	out := make([]core.MonthTotal, 0, len(byMonth))
	for _, m := range byMonth {
		m.Net = m.Income.Sub(m.Expenses)
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// CompareMonths annotates each month with its change against the month before
// it in the series. The first month is compared against zero.
func CompareMonths(series []core.MonthTotal) []core.MonthChange {
	out := make([]core.MonthChange, len(series))
	prev := core.MonthTotal{Income: decimal.Zero, Expenses: decimal.Zero, Net: decimal.Zero}
	for i, m := range series {
		out[i] = core.MonthChange{
			MonthTotal:     m,
			IncomeChange:   ComputeChange(m.Income, prev.Income),
			ExpensesChange: ComputeChange(m.Expenses, prev.Expenses),
			NetChange:      ComputeChange(m.Net, prev.Net),
		}
		prev = m
	}
	return out
}
