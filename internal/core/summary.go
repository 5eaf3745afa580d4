package core

import "github.com/shopspring/decimal"

// PeriodSummary is derived on demand and never persisted.
type PeriodSummary struct {
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpenses    decimal.Decimal `json:"totalExpenses"`
	NetIncome        decimal.Decimal `json:"netIncome"`
	TransactionCount int             `json:"transactionCount"`
}

// CategoryBreakdown is one group of a category distribution.
// Percentage is kept at full precision; use Rounded for display.
type CategoryBreakdown struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
	Count      int             `json:"count"`
}

// Rounded returns a copy with the percentage rounded to two places.
func (c CategoryBreakdown) Rounded() CategoryBreakdown {
	c.Percentage = Round2(c.Percentage)
	return c
}

// GSTAmounts is the result of applying a rate to a base amount.
type GSTAmounts struct {
	Amount      decimal.Decimal `json:"amount"`
	Rate        decimal.Decimal `json:"rate"`
	GSTAmount   decimal.Decimal `json:"gstAmount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// GSTSummary rolls sale and purchase records into a net position.
// At most one of GSTPayable and GSTRefund is non-zero.
type GSTSummary struct {
	TotalSales     decimal.Decimal `json:"totalSales"`
	TotalPurchases decimal.Decimal `json:"totalPurchases"`
	GSTOnSales     decimal.Decimal `json:"gstOnSales"`
	GSTOnPurchases decimal.Decimal `json:"gstOnPurchases"`
	NetGST         decimal.Decimal `json:"netGST"`
	GSTPayable     decimal.Decimal `json:"gstPayable"`
	GSTRefund      decimal.Decimal `json:"gstRefund"`
	Transactions   int             `json:"transactions"`
}

// GSTRateBreakdown is one slab of a rate-wise GST table.
type GSTRateBreakdown struct {
	Rate             decimal.Decimal `json:"rate"`
	TaxableSales     decimal.Decimal `json:"taxableSales"`
	TaxablePurchases decimal.Decimal `json:"taxablePurchases"`
	OutputTax        decimal.Decimal `json:"outputTax"`
	InputTax         decimal.Decimal `json:"inputTax"`
}

// MonthTotal aggregates one calendar month.
type MonthTotal struct {
	Month    string          `json:"month"` // YYYY-MM
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
	Count    int             `json:"count"`
}

// MonthChange pairs a month with its deltas against the previous month.
type MonthChange struct {
	MonthTotal
	IncomeChange   string `json:"incomeChange"`
	ExpensesChange string `json:"expensesChange"`
	NetChange      string `json:"netChange"`
}
