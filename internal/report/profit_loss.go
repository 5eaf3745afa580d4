package report

import (
	"github.com/shopspring/decimal"
)

// Summary line labels and metric names of the profit and loss statement.
const (
	LabelGrossProfit = "Gross Profit"
	LabelNetIncome   = "Net Income"

	MetricProfitMargin = "profit_margin"
	MetricExpenseRatio = "expense_ratio"
	MetricGrossMargin  = "gross_margin"
)

// FinancialData feeds the profit and loss statement.
type FinancialData struct {
	Revenue           []Line `json:"revenue"`
	CostOfGoods       []Line `json:"costOfGoods"`
	OperatingExpenses []Line `json:"operatingExpenses"`
	// GST lines are informational; tax collected on behalf of the government
	// is not revenue.
	GST []Line `json:"gst,omitempty"`
}

func (d FinancialData) TotalRevenue() decimal.Decimal  { return sumLines(d.Revenue) }
func (d FinancialData) TotalExpenses() decimal.Decimal { return sumLines(d.CostOfGoods).Add(sumLines(d.OperatingExpenses)) }

// BuildProfitLoss lays out revenue, cost of goods and operating expenses.
// Margins are zero when there is no revenue.
func (a *Assembler) BuildProfitLoss(data FinancialData, period Period) ReportDocument {
	doc := a.newDocument(KindProfitLoss, period)

	revenue := section("Revenue", "Total Revenue", data.Revenue)
	cogs := section("Cost of Goods Sold", "Total Cost of Goods Sold", data.CostOfGoods)
	opex := section("Operating Expenses", "Total Operating Expenses", data.OperatingExpenses)
	doc.Sections = []Section{revenue, cogs, opex}
	if len(data.GST) > 0 {
		doc.Sections = append(doc.Sections, section("GST", "Net GST", data.GST))
	}

	grossProfit := revenue.Total.Amount.Sub(cogs.Total.Amount)
	netIncome := grossProfit.Sub(opex.Total.Amount)
	expenses := cogs.Total.Amount.Add(opex.Total.Amount)

	doc.Summary = []Line{
		{Label: LabelGrossProfit, Amount: grossProfit},
		{Label: LabelNetIncome, Amount: netIncome},
	}
	doc.Metrics = []Metric{
		percentMetric(MetricProfitMargin, netIncome, revenue.Total.Amount),
		percentMetric(MetricExpenseRatio, expenses, revenue.Total.Amount),
		percentMetric(MetricGrossMargin, grossProfit, revenue.Total.Amount),
	}
	return doc
}
