package report

import (
	"fmt"

	"github.com/shopspring/decimal"

	"gstbooks/internal/core"
)

const (
	LabelOpeningBalance = "Opening Balance"
	LabelNetCashFlow    = "Net Cash Flow"
	LabelClosingBalance = "Closing Balance"

	MetricOperatingCashRatio = "operating_cash_ratio"
)

// CashFlowData feeds the cash flow statement. Inflows are positive and
// outflows negative.
type CashFlowData struct {
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Operating      []Line          `json:"operating"`
	Investing      []Line          `json:"investing"`
	Financing      []Line          `json:"financing"`
	// MonthlyNet is the recent monthly net series used for the projection.
	MonthlyNet       []decimal.Decimal `json:"monthlyNet,omitempty"`
	ProjectionMonths int               `json:"projectionMonths,omitempty"`
}

// CashFlowFrom derives operating activities from the ledger summary and the
// GST position. Investing and financing lines are supplied by the caller.
func CashFlowFrom(summary core.PeriodSummary, gstSummary core.GSTSummary, opening decimal.Decimal, investing, financing []Line) CashFlowData {
	operating := []Line{
		{Label: "Cash received from customers", Amount: summary.TotalIncome},
		{Label: "Cash paid to suppliers and for expenses", Amount: summary.TotalExpenses.Neg()},
	}
	switch {
	case gstSummary.GSTPayable.IsPositive():
		operating = append(operating, Line{Label: "GST paid", Amount: gstSummary.GSTPayable.Neg()})
	case gstSummary.GSTRefund.IsPositive():
		operating = append(operating, Line{Label: "GST refund received", Amount: gstSummary.GSTRefund})
	}
	return CashFlowData{
		OpeningBalance: opening,
		Operating:      operating,
		Investing:      investing,
		Financing:      financing,
	}
}

// WithProjection attaches a monthly net series to project forward.
func (d CashFlowData) WithProjection(series []core.MonthTotal, months int) CashFlowData {
	nets := make([]decimal.Decimal, len(series))
	for i, m := range series {
		nets[i] = m.Net
	}
	d.MonthlyNet = nets
	d.ProjectionMonths = months
	return d
}

// BuildCashFlow lays out operating, investing and financing activities and
// rolls the opening balance forward.
func (a *Assembler) BuildCashFlow(data CashFlowData, period Period) ReportDocument {
	doc := a.newDocument(KindCashFlow, period)

	operating := section("Operating Activities", "Net Cash from Operating Activities", data.Operating)
	investing := section("Investing Activities", "Net Cash from Investing Activities", data.Investing)
	financing := section("Financing Activities", "Net Cash from Financing Activities", data.Financing)
	doc.Sections = []Section{operating, investing, financing}

	net := operating.Total.Amount.Add(investing.Total.Amount).Add(financing.Total.Amount)
	closing := data.OpeningBalance.Add(net)

	if data.ProjectionMonths > 0 && len(data.MonthlyNet) > 0 {
		doc.Sections = append(doc.Sections, Section{
			Title: "Projected Balance",
			Lines: ProjectBalances(closing, data.MonthlyNet, data.ProjectionMonths),
			Total: Line{Label: "Average Monthly Net", Amount: averageNet(data.MonthlyNet)},
		})
	}

	doc.Summary = []Line{
		{Label: LabelOpeningBalance, Amount: data.OpeningBalance},
		{Label: LabelNetCashFlow, Amount: net},
		{Label: LabelClosingBalance, Amount: closing},
	}

	inflows := decimal.Zero
	for _, l := range data.Operating {
		if l.Amount.IsPositive() {
			inflows = inflows.Add(l.Amount)
		}
	}
	doc.Metrics = []Metric{percentMetric(MetricOperatingCashRatio, operating.Total.Amount, inflows)}
	return doc
}

// ProjectBalances extends closing by the average of nets for each of the
// next months. Lines are labelled "Month +1", "Month +2" and so on.
func ProjectBalances(closing decimal.Decimal, nets []decimal.Decimal, months int) []Line {
	avg := averageNet(nets)
	out := make([]Line, 0, months)
	balance := closing
	for i := 1; i <= months; i++ {
		balance = balance.Add(avg)
		out = append(out, Line{Label: fmt.Sprintf("Month +%d", i), Amount: balance})
	}
	return out
}

func averageNet(nets []decimal.Decimal) decimal.Decimal {
	if len(nets) == 0 {
		return decimal.Zero
	}
	return core.Round2(core.Sum(nets...).Div(decimal.NewFromInt(int64(len(nets)))))
}
