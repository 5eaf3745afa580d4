// Package aggregate reduces transaction collections into period summaries,
// category distributions and month-over-month series.
//
// Every function is pure: the same input slice always yields the same output
// and nothing is retained between calls.
package aggregate

import (
	"github.com/shopspring/decimal"

	"gstbooks/internal/core"
)

var hundred = decimal.NewFromInt(100)

// ComputeStats totals the transactions matching f. Inflows count as income,
// outflows as expenses.
func ComputeStats(txs []core.Transaction, f core.Filter) core.PeriodSummary {
	income := decimal.Zero
	expenses := decimal.Zero
	count := 0
	for _, tx := range txs {
		if !f.Match(tx) {
			continue
		}
		count++
		switch tx.Direction() {
		case core.Inflow:
			income = income.Add(tx.Amount)
		case core.Outflow:
			expenses = expenses.Add(tx.Amount)
		}
	}
	return core.PeriodSummary{
		TotalIncome:      income,
		TotalExpenses:    expenses,
		NetIncome:        income.Sub(expenses),
		TransactionCount: count,
	}
}

// ComputeChange formats the relative change from previous to current.
//
// When previous is zero the result is "+100%" for a positive current value and
// "0%" otherwise. In every other case it is the percentage with one decimal
// and an explicit sign for non-negative values, e.g. "+12.3%" or "-4.0%".
func ComputeChange(current, previous decimal.Decimal) string {
	if previous.IsZero() {
		if current.IsPositive() {
			return "+100%"
		}
		return "0%"
	}
	change := current.Sub(previous).Div(previous).Mul(hundred).Round(1)
	s := change.StringFixed(1)
	if !change.IsNegative() {
		s = "+" + s
	}
	return s + "%"
}
