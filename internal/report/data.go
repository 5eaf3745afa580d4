package report

import (
	"github.com/shopspring/decimal"

	"gstbooks/internal/core"
)

type (
	// Share is a named fraction of total expenses.
	Share struct {
		Label  string          `json:"label"`
		Weight decimal.Decimal `json:"weight"`
	}

	// Breakdown splits total expenses into cost-of-goods and operating lines.
	// The weights of both lists together should add up to 1.
	Breakdown struct {
		CostOfGoods []Share `json:"costOfGoods"`
		Operating   []Share `json:"operating"`
	}
)

// DefaultBreakdown is the standard split: 40% cost of goods, 60% operating.
func DefaultBreakdown() Breakdown {
	return Breakdown{
		CostOfGoods: []Share{
			{Label: "Direct materials", Weight: decimal.RequireFromString("0.25")},
			{Label: "Direct labour", Weight: decimal.RequireFromString("0.15")},
		},
		Operating: []Share{
			{Label: "Salaries and wages", Weight: decimal.RequireFromString("0.25")},
			{Label: "Rent", Weight: decimal.RequireFromString("0.15")},
			{Label: "Utilities", Weight: decimal.RequireFromString("0.08")},
			{Label: "Marketing", Weight: decimal.RequireFromString("0.07")},
			{Label: "General and administrative", Weight: decimal.RequireFromString("0.05")},
		},
	}
}

// FinancialDataFrom builds profit and loss input from engine output.
//
// Revenue lines come from the inflow category groups; when there are none a
// single line carries the summary's total income. Total expenses are spread
// over the breakdown's lines. Each line is rounded to two places and the last
// line absorbs the rounding difference so the lines add up to the total.
func FinancialDataFrom(summary core.PeriodSummary, categories []core.CategoryBreakdown, gstSummary core.GSTSummary, b Breakdown) FinancialData {
	var data FinancialData
	for _, c := range categories {
		data.Revenue = append(data.Revenue, Line{Label: c.Category, Amount: c.Amount})
	}
	if len(data.Revenue) == 0 && !summary.TotalIncome.IsZero() {
		data.Revenue = []Line{{Label: "Income", Amount: summary.TotalIncome}}
	}

	shares := append(append([]Share(nil), b.CostOfGoods...), b.Operating...)
	lines := spread(summary.TotalExpenses, shares)
	data.CostOfGoods = lines[:len(b.CostOfGoods)]
	data.OperatingExpenses = lines[len(b.CostOfGoods):]

	if gstSummary.Transactions > 0 {
		data.GST = []Line{
			{Label: "Output tax on sales", Amount: gstSummary.GSTOnSales},
			{Label: "Input tax credit on purchases", Amount: gstSummary.GSTOnPurchases.Neg()},
		}
	}
	return data
}

func spread(total decimal.Decimal, shares []Share) []Line {
	lines := make([]Line, len(shares))
	allocated := decimal.Zero
	for i, s := range shares {
		amount := core.Round2(total.Mul(s.Weight))
		if i == len(shares)-1 {
			weights := decimal.Zero
			for _, w := range shares {
				weights = weights.Add(w.Weight)
			}
			if weights.Equal(decimal.NewFromInt(1)) {
				amount = total.Sub(allocated)
			}
		}
		lines[i] = Line{Label: s.Label, Amount: amount}
		allocated = allocated.Add(amount)
	}
	return lines
}
