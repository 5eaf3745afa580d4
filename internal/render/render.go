// Package render prints reports and aggregates as text tables.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"gstbooks/internal/core"
	"gstbooks/internal/report"
)

// Format selects the table style.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts text, markdown and md.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

func newTable(w io.Writer, format Format, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	if format == FormatMarkdown {
		table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
		table.SetCenterSeparator("|")
	}
	return table
}

// rightAlign aligns every column after the first to the right.
func rightAlign(table *tablewriter.Table, columns int) {
	align := make([]int, columns)
	align[0] = tablewriter.ALIGN_LEFT
	for i := 1; i < columns; i++ {
		align[i] = tablewriter.ALIGN_RIGHT
	}
	table.SetColumnAlignment(align)
}

func heading(w io.Writer, format Format, title string) {
	if format == FormatMarkdown {
		fmt.Fprintf(w, "## %s\n\n", title)
		return
	}
	fmt.Fprintf(w, "%s\n%s\n", title, strings.Repeat("=", len(title)))
}

// Report prints every section, the summary lines and the metrics of doc.
func Report(w io.Writer, doc report.ReportDocument, format Format) {
	heading(w, format, doc.Title)
	fmt.Fprintf(w, "Period: %s\n\n", doc.Period)

	for _, sec := range doc.Sections {
		table := newTable(w, format, sec.Title, "Amount")
		rightAlign(table, 2)
		for _, line := range sec.Lines {
			table.Append([]string{line.Label, core.DisplayAmount(line.Amount)})
		}
		table.SetFooter([]string{sec.Total.Label, core.DisplayAmount(sec.Total.Amount)})
		table.Render()
		fmt.Fprintln(w)
	}

	if len(doc.Summary) > 0 {
		table := newTable(w, format, "Summary", "Amount")
		rightAlign(table, 2)
		for _, line := range doc.Summary {
			table.Append([]string{line.Label, core.DisplayAmount(line.Amount)})
		}
		table.Render()
		fmt.Fprintln(w)
	}

	if len(doc.Metrics) > 0 {
		table := newTable(w, format, "Metric", "Value")
		rightAlign(table, 2)
		for _, m := range doc.Metrics {
			table.Append([]string{m.Name, metricValue(m)})
		}
		table.Render()
	}

	if doc.Balanced != nil {
		fmt.Fprintf(w, "\nBalanced: %s\n", yesNo(*doc.Balanced))
	}
}

func metricValue(m report.Metric) string {
	if m.Unit == report.UnitPercent {
		return core.DisplayPercent(m.Value)
	}
	return m.Value.StringFixed(2)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Stats prints a period summary.
func Stats(w io.Writer, s core.PeriodSummary, format Format) {
	table := newTable(w, format, "Totals", "Amount")
	rightAlign(table, 2)
	table.AppendBulk([][]string{
		{"Income", core.DisplayAmount(s.TotalIncome)},
		{"Expenses", core.DisplayAmount(s.TotalExpenses)},
		{"Net income", core.DisplayAmount(s.NetIncome)},
		{"Transactions", strconv.Itoa(s.TransactionCount)},
	})
	table.Render()
}

// GST prints the net position and, when given, the rate-wise slabs.
func GST(w io.Writer, s core.GSTSummary, slabs []core.GSTRateBreakdown, format Format) {
	table := newTable(w, format, "GST", "Amount")
	rightAlign(table, 2)
	table.AppendBulk([][]string{
		{"Taxable sales", core.DisplayAmount(s.TotalSales)},
		{"Taxable purchases", core.DisplayAmount(s.TotalPurchases)},
		{"Output tax", core.DisplayAmount(s.GSTOnSales)},
		{"Input tax credit", core.DisplayAmount(s.GSTOnPurchases)},
		{"Payable", core.DisplayAmount(s.GSTPayable)},
		{"Refund", core.DisplayAmount(s.GSTRefund)},
	})
	table.Render()

	if len(slabs) == 0 {
		return
	}
	fmt.Fprintln(w)
	table = newTable(w, format, "Rate", "Taxable sales", "Taxable purchases", "Output tax", "Input tax")
	rightAlign(table, 5)
	for _, slab := range slabs {
		table.Append([]string{
			slab.Rate.String() + "%",
			core.DisplayAmount(slab.TaxableSales),
			core.DisplayAmount(slab.TaxablePurchases),
			core.DisplayAmount(slab.OutputTax),
			core.DisplayAmount(slab.InputTax),
		})
	}
	table.Render()
}

// Categories prints a category distribution in the order given.
func Categories(w io.Writer, groups []core.CategoryBreakdown, format Format) {
	table := newTable(w, format, "Category", "Amount", "Share", "Count")
	rightAlign(table, 4)
	for _, g := range groups {
		table.Append([]string{
			g.Category,
			core.DisplayAmount(g.Amount),
			core.DisplayPercent(g.Percentage),
			strconv.Itoa(g.Count),
		})
	}
	table.Render()
}
