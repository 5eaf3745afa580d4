package report

import (
	"github.com/shopspring/decimal"

	"gstbooks/internal/core"
)

const (
	LabelTotalAssets            = "Total Assets"
	LabelTotalLiabilities       = "Total Liabilities"
	LabelTotalEquity            = "Total Equity"
	LabelLiabilitiesPlusEquity  = "Total Liabilities and Equity"
	LabelRetainedEarningsPeriod = "Retained earnings (period)"

	MetricDebtToEquity = "debt_to_equity"
	MetricCurrentRatio = "current_ratio"
)

// BalanceSheetData feeds the balance sheet.
type BalanceSheetData struct {
	CurrentAssets       []Line `json:"currentAssets"`
	FixedAssets         []Line `json:"fixedAssets"`
	CurrentLiabilities  []Line `json:"currentLiabilities"`
	LongTermLiabilities []Line `json:"longTermLiabilities"`
	Equity              []Line `json:"equity"`
}

// WithPeriodResult books the period's net income into equity and the net GST
// position into current liabilities (payable) or current assets (refund).
// Cash moves by the same net amount so the sheet stays balanced.
func (d BalanceSheetData) WithPeriodResult(summary core.PeriodSummary, gstSummary core.GSTSummary) BalanceSheetData {
	out := BalanceSheetData{
		CurrentAssets:       append([]Line(nil), d.CurrentAssets...),
		FixedAssets:         append([]Line(nil), d.FixedAssets...),
		CurrentLiabilities:  append([]Line(nil), d.CurrentLiabilities...),
		LongTermLiabilities: append([]Line(nil), d.LongTermLiabilities...),
		Equity:              append([]Line(nil), d.Equity...),
	}
	cash := summary.NetIncome
	switch {
	case gstSummary.GSTPayable.IsPositive():
		out.CurrentLiabilities = append(out.CurrentLiabilities, Line{Label: "GST payable", Amount: gstSummary.GSTPayable})
		cash = cash.Add(gstSummary.GSTPayable)
	case gstSummary.GSTRefund.IsPositive():
		out.CurrentAssets = append(out.CurrentAssets, Line{Label: "GST refund receivable", Amount: gstSummary.GSTRefund})
		cash = cash.Sub(gstSummary.GSTRefund)
	}
	out.CurrentAssets = append(out.CurrentAssets, Line{Label: "Cash from period operations", Amount: cash})
	out.Equity = append(out.Equity, Line{Label: LabelRetainedEarningsPeriod, Amount: summary.NetIncome})
	return out
}

// BuildBalanceSheet totals assets, liabilities and equity and flags whether
// assets equal liabilities plus equity.
func (a *Assembler) BuildBalanceSheet(data BalanceSheetData, period Period) ReportDocument {
	doc := a.newDocument(KindBalanceSheet, period)

	current := section("Current Assets", "Total Current Assets", data.CurrentAssets)
	fixed := section("Fixed Assets", "Total Fixed Assets", data.FixedAssets)
	currentLiab := section("Current Liabilities", "Total Current Liabilities", data.CurrentLiabilities)
	longTerm := section("Long-term Liabilities", "Total Long-term Liabilities", data.LongTermLiabilities)
	equity := section("Equity", LabelTotalEquity, data.Equity)
	doc.Sections = []Section{current, fixed, currentLiab, longTerm, equity}

	assets := current.Total.Amount.Add(fixed.Total.Amount)
	liabilities := currentLiab.Total.Amount.Add(longTerm.Total.Amount)
	liabPlusEquity := liabilities.Add(equity.Total.Amount)
	balanced := assets.Equal(liabPlusEquity)

	doc.Summary = []Line{
		{Label: LabelTotalAssets, Amount: assets},
		{Label: LabelTotalLiabilities, Amount: liabilities},
		{Label: LabelTotalEquity, Amount: equity.Total.Amount},
		{Label: LabelLiabilitiesPlusEquity, Amount: liabPlusEquity},
	}
	doc.Metrics = []Metric{
		{Name: MetricDebtToEquity, Value: ratio(liabilities, equity.Total.Amount), Unit: UnitRatio},
		{Name: MetricCurrentRatio, Value: ratio(current.Total.Amount, currentLiab.Total.Amount), Unit: UnitRatio},
	}
	doc.Balanced = &balanced
	return doc
}

// DefaultBalanceSheet is the opening position used when no ledger of assets
// is configured. It balances on its own.
func DefaultBalanceSheet() BalanceSheetData {
	return BalanceSheetData{
		CurrentAssets: []Line{
			{Label: "Cash and bank", Amount: decimal.NewFromInt(250000)},
			{Label: "Accounts receivable", Amount: decimal.NewFromInt(120000)},
			{Label: "Inventory", Amount: decimal.NewFromInt(80000)},
		},
		FixedAssets: []Line{
			{Label: "Equipment", Amount: decimal.NewFromInt(300000)},
			{Label: "Accumulated depreciation", Amount: decimal.NewFromInt(-50000)},
		},
		CurrentLiabilities: []Line{
			{Label: "Accounts payable", Amount: decimal.NewFromInt(90000)},
			{Label: "Short-term loans", Amount: decimal.NewFromInt(60000)},
		},
		LongTermLiabilities: []Line{
			{Label: "Term loan", Amount: decimal.NewFromInt(200000)},
		},
		Equity: []Line{
			{Label: "Owner's capital", Amount: decimal.NewFromInt(300000)},
			{Label: "Retained earnings", Amount: decimal.NewFromInt(50000)},
		},
	}
}
