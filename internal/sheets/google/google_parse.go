package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gstbooks/internal/core"
)

// Header names of the Transactions sheet, in default column order.
var sheetHeaders = []string{"Date", "ID", "Type", "Category", "Amount", "GST Rate", "Payment Method", "Description"}

// Accepted date layouts; ISO first, then day-first as typed in Indian locales.
var dateLayouts = []string{"2006-01-02", "02/01/2006", "2/1/2006", "02-01-2006"}

type rowError struct {
	Row int
	Err error
}

func (e rowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e rowError) Unwrap() error {
	return e.Err
}

type columns struct {
	date, id, typ, category, amount, rate, payment, description int
}

func defaultColumns() columns {
	return columns{0, 1, 2, 3, 4, 5, 6, 7}
}

// headerColumns locates each field by header name. ok is false when the row
// does not look like a header (no Date and Amount titles).
func headerColumns(row []string) (columns, bool) {
	c := columns{
		date:        indexOf(row, sheetHeaders[0]),
		id:          indexOf(row, sheetHeaders[1]),
		typ:         indexOf(row, sheetHeaders[2]),
		category:    indexOf(row, sheetHeaders[3]),
		amount:      indexOf(row, sheetHeaders[4]),
		rate:        indexOf(row, sheetHeaders[5]),
		payment:     indexOf(row, sheetHeaders[6]),
		description: indexOf(row, sheetHeaders[7]),
	}
	return c, c.date >= 0 && c.amount >= 0
}

// parseTransactionRows converts a values matrix as returned by the Sheets API
// into transactions. The first row is used as a header when it names the
// columns; otherwise the default column order applies. Blank rows are
// ignored; rows that fail to parse are returned as errors, numbered from 1 as
// in the sheet.
func parseTransactionRows(values [][]interface{}) ([]core.Transaction, []error) {
	if len(values) == 0 {
		return nil, nil
	}
	cols := defaultColumns()
	start := 0
	if hc, ok := headerColumns(toStrings(values[0])); ok {
		cols = hc
		start = 1
	}

	var (
		out     []core.Transaction
		skipped []error
	)
	for i := start; i < len(values); i++ {
		row := toStrings(values[i])
		if isBlank(row) {
			continue
		}
		tx, err := parseRow(row, cols)
		if err != nil {
			skipped = append(skipped, rowError{Row: i + 1, Err: err})
			continue
		}
		if tx.ID == "" {
			tx.ID = fmt.Sprintf("row-%d", i+1)
		}
		out = append(out, tx)
	}
	return out, skipped
}

func parseRow(row []string, c columns) (core.Transaction, error) {
	date, err := parseSheetDate(safeGet(row, c.date))
	if err != nil {
		return core.Transaction{}, err
	}
	typ, err := core.ParseTransactionType(safeGet(row, c.typ))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("type %q: %w", safeGet(row, c.typ), err)
	}
	amount, err := parseSheetAmount(safeGet(row, c.amount))
	if err != nil {
		return core.Transaction{}, err
	}
	rate := decimal.Zero
	if raw := safeGet(row, c.rate); strings.TrimSpace(raw) != "" {
		if rate, err = core.ParseRate(raw); err != nil {
			return core.Transaction{}, fmt.Errorf("gst rate %q: %w", raw, err)
		}
	}
	tx := core.Transaction{
		ID:            strings.TrimSpace(safeGet(row, c.id)),
		Date:          date,
		Amount:        amount,
		Type:          typ,
		Category:      strings.TrimSpace(safeGet(row, c.category)),
		GSTRate:       rate,
		PaymentMethod: strings.TrimSpace(safeGet(row, c.payment)),
		Description:   strings.TrimSpace(safeGet(row, c.description)),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func parseSheetDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.DateOf(t), nil
		}
	}
	return core.Date{}, fmt.Errorf("date %q: %w", s, core.ErrInvalidDate)
}

// parseSheetAmount accepts plain numbers as well as formatted values such as
// "₹1,23,456.50" or "Rs. 1,000.00". A lone comma is read as a decimal separator.
func parseSheetAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	for _, prefix := range []string{"₹", "Rs.", "Rs", "INR"} {
		clean = strings.TrimSpace(strings.TrimPrefix(clean, prefix))
	}
	if strings.Contains(clean, ".") || strings.Count(clean, ",") > 1 {
		clean = strings.ReplaceAll(clean, ",", "")
	}
	d, err := core.ParseAmount(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount %q: %w", s, err)
	}
	return d, nil
}

// transactionRow is the inverse of parseRow for the default column order.
func transactionRow(tx core.Transaction) []interface{} {
	return []interface{}{
		tx.Date.String(),
		tx.ID,
		string(tx.Type),
		tx.Category,
		tx.Amount.StringFixed(2),
		tx.GSTRate.String(),
		tx.PaymentMethod,
		tx.Description,
	}
}

func newID() string {
	return uuid.NewString()
}

// toStrings renders cells as text. Numbers are written without exponent so
// large amounts survive the conversion.
func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch x := v.(type) {
		case nil:
		case float64:
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(x))
		}
	}
	return out
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
