// Package report assembles financial statements (profit and loss, cash flow,
// balance sheet) from aggregated figures.
//
// Builders are pure: the only outside input is the Assembler's clock, which
// stamps GeneratedAt. Two calls with the same data and a fixed clock return
// identical documents.
package report

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gstbooks/internal/core"
)

// Kind identifies a statement type.
type Kind string

const (
	KindProfitLoss   Kind = "profit_loss"
	KindCashFlow     Kind = "cash_flow"
	KindBalanceSheet Kind = "balance_sheet"
)

// Metric units.
const (
	UnitPercent = "percent"
	UnitRatio   = "ratio"
)

var kinds = []Kind{KindProfitLoss, KindCashFlow, KindBalanceSheet}

// Kinds returns every supported statement type.
func Kinds() []Kind {
	return append([]Kind(nil), kinds...)
}

// ParseKind accepts the canonical names plus dashed and upper-case variants.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, known := range kinds {
		if k == known {
			return k, nil
		}
	}
	return "", core.ErrUnknownReportKind
}

func (k Kind) Title() string {
	switch k {
	case KindProfitLoss:
		return "Profit & Loss Statement"
	case KindCashFlow:
		return "Cash Flow Statement"
	case KindBalanceSheet:
		return "Balance Sheet"
	}
	return string(k)
}

type (
	// Period is the reporting window. Zero dates mean open-ended.
	Period struct {
		From core.Date `json:"from"`
		To   core.Date `json:"to"`
	}

	Line struct {
		Label  string          `json:"label"`
		Amount decimal.Decimal `json:"amount"`
	}

	Section struct {
		Title string `json:"title"`
		Lines []Line `json:"lines"`
		Total Line   `json:"total"`
	}

	Metric struct {
		Name  string          `json:"name"`
		Value decimal.Decimal `json:"value"`
		Unit  string          `json:"unit"`
	}

	ReportDocument struct {
		Kind        Kind      `json:"kind"`
		Title       string    `json:"title"`
		Period      Period    `json:"period"`
		GeneratedAt time.Time `json:"generatedAt"`
		Sections    []Section `json:"sections"`
		// Summary holds the bottom lines that sit between sections,
		// e.g. gross profit or closing balance.
		Summary  []Line   `json:"summary"`
		Metrics  []Metric `json:"metrics"`
		Balanced *bool    `json:"balanced,omitempty"`
	}
)

// PeriodOf returns the date window of a filter.
func PeriodOf(f core.Filter) Period {
	return Period{From: f.From, To: f.To}
}

// Filter converts the period back into a date-only filter.
func (p Period) Filter() core.Filter {
	return core.Filter{From: p.From, To: p.To}
}

func (p Period) String() string {
	switch {
	case p.From.IsEmpty() && p.To.IsEmpty():
		return "all time"
	case p.From.IsEmpty():
		return "up to " + p.To.String()
	case p.To.IsEmpty():
		return "from " + p.From.String()
	}
	return p.From.String() + " to " + p.To.String()
}

// Metric returns the metric with the given name.
func (d ReportDocument) Metric(name string) (Metric, bool) {
	for _, m := range d.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// SummaryLine returns the summary line with the given label.
func (d ReportDocument) SummaryLine(label string) (Line, bool) {
	for _, l := range d.Summary {
		if l.Label == label {
			return l, true
		}
	}
	return Line{}, false
}

// Assembler stamps documents with the time reported by Clock.
type Assembler struct {
	Clock func() time.Time
}

// NewAssembler returns an Assembler; a nil clock means time.Now in UTC.
func NewAssembler(clock func() time.Time) *Assembler {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Assembler{Clock: clock}
}

func (a *Assembler) now() time.Time {
	if a == nil || a.Clock == nil {
		return time.Now().UTC()
	}
	return a.Clock()
}

func (a *Assembler) newDocument(kind Kind, period Period) ReportDocument {
	return ReportDocument{
		Kind:        kind,
		Title:       kind.Title(),
		Period:      period,
		GeneratedAt: a.now(),
	}
}

// ratio is part/whole rounded to two places, zero when whole is zero.
func ratio(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return core.Round2(part.Div(whole))
}

func percentMetric(name string, part, whole decimal.Decimal) Metric {
	return Metric{Name: name, Value: core.Round2(core.Percent(part, whole)), Unit: UnitPercent}
}

func section(title, totalLabel string, lines []Line) Section {
	if lines == nil {
		lines = []Line{}
	}
	return Section{Title: title, Lines: lines, Total: Line{Label: totalLabel, Amount: sumLines(lines)}}
}

func sumLines(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total
}
