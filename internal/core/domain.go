package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TypeIncome   TransactionType = "income"
	TypeExpense  TransactionType = "expense"
	TypeSale     TransactionType = "sale"
	TypePurchase TransactionType = "purchase"
)

const (
	Inflow  Direction = "inflow"
	Outflow Direction = "outflow"
)

const (
	TaxRoleNone     TaxRole = ""
	TaxRoleSale     TaxRole = "sale"
	TaxRolePurchase TaxRole = "purchase"
)

const dateLayout = "2006-01-02"

type (
	// TransactionType is the stored classification of a record. Ledger widgets
	// use income/expense, the GST module uses sale/purchase.
	TransactionType string

	// Direction says whether money came in or went out.
	Direction string

	// TaxRole says which side of a GST return a record belongs to.
	TaxRole string

	Date struct {
		time.Time
	}

	Transaction struct {
		ID            string          `json:"id"`
		Date          Date            `json:"date"`
		Amount        decimal.Decimal `json:"amount"`
		Type          TransactionType `json:"type"`
		Category      string          `json:"category"`
		GSTRate       decimal.Decimal `json:"gstRate"` // percentage, e.g. 18
		PaymentMethod string          `json:"paymentMethod,omitempty"`
		Description   string          `json:"description,omitempty"`
	}

	// Filter narrows a transaction collection. Zero fields do not constrain.
	Filter struct {
		From      Date
		To        Date
		Type      TransactionType
		Direction Direction
		Category  string
	}
)

var (
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidRate       = errors.New("invalid gst rate")
	ErrUnknownType       = errors.New("unknown transaction type")
	ErrEmptyCategory     = errors.New("empty category")
	ErrInvalidRange      = errors.New("date range end before start")
	ErrUnknownReportKind = errors.New("unknown report kind")
)

var transactionTypes = []TransactionType{TypeIncome, TypeExpense, TypeSale, TypePurchase}

// TransactionTypes returns every accepted type value.
func TransactionTypes() []TransactionType {
	return append([]TransactionType(nil), transactionTypes...)
}

// ParseTransactionType normalizes s and checks it against the known types.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrUnknownType
	}
	return t, nil
}

func (t TransactionType) IsValid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeSale, TypePurchase:
		return true
	}
	return false
}

func (t TransactionType) String() string {
	return string(t)
}

// Direction maps income and sale to Inflow, expense and purchase to Outflow.
func (t TransactionType) Direction() Direction {
	switch t {
	case TypeIncome, TypeSale:
		return Inflow
	case TypeExpense, TypePurchase:
		return Outflow
	}
	return ""
}

// TaxRole is only set for sale and purchase records.
func (t TransactionType) TaxRole() TaxRole {
	switch t {
	case TypeSale:
		return TaxRoleSale
	case TypePurchase:
		return TaxRolePurchase
	}
	return TaxRoleNone
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// IsEmpty returns true if the date is zero (used for open filter bounds)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// MonthKey returns "YYYY-MM".
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// AddMonths shifts the date keeping the day, normalized like time.AddDate.
func (d Date) AddMonths(n int) Date {
	return Date{Time: d.AddDate(0, n, 0)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Direction is derived from the record type.
func (tx Transaction) Direction() Direction {
	return tx.Type.Direction()
}

func (tx Transaction) TaxRole() TaxRole {
	return tx.Type.TaxRole()
}

// GSTAmount is Amount * GSTRate / 100 rounded to two places.
func (tx Transaction) GSTAmount() decimal.Decimal {
	return Round2(tx.Amount.Mul(tx.GSTRate).Div(hundred))
}

// TotalAmount is Amount plus GSTAmount.
func (tx Transaction) TotalAmount() decimal.Decimal {
	return tx.Amount.Add(tx.GSTAmount())
}

// Validate checks a record at a system boundary. The engines never call it.
func (tx Transaction) Validate() error {
	var errs ValidationErrors
	if err := tx.Date.Validate(); err != nil {
		errs = append(errs, ValidationError{Field: "date", Message: "date is required", Err: err})
	}
	if !tx.Amount.IsPositive() {
		errs = append(errs, ValidationError{Field: "amount", Message: "amount must be greater than zero", Err: ErrInvalidAmount})
	}
	if tx.GSTRate.IsNegative() {
		errs = append(errs, ValidationError{Field: "gst_rate", Message: "gst rate cannot be negative", Err: ErrInvalidRate})
	}
	if !tx.Type.IsValid() {
		errs = append(errs, ValidationError{Field: "type", Message: "type must be one of income, expense, sale, purchase", Err: ErrUnknownType})
	}
	if strings.TrimSpace(tx.Category) == "" {
		errs = append(errs, ValidationError{Field: "category", Message: "category is required", Err: ErrEmptyCategory})
	}
	if len(tx.Description) > 200 {
		errs = append(errs, ValidationError{Field: "description", Message: "description too long (max 200 characters)"})
	}
	return errs.OrNil()
}

// Match reports whether tx satisfies every set field of the filter.
// Date bounds are inclusive.
func (f Filter) Match(tx Transaction) bool {
	if !f.From.IsZero() && tx.Date.Before(f.From.Time) {
		return false
	}
	if !f.To.IsZero() && tx.Date.After(f.To.Time) {
		return false
	}
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.Direction != "" && tx.Direction() != f.Direction {
		return false
	}
	if f.Category != "" && tx.Category != f.Category {
		return false
	}
	return true
}

func (f Filter) Validate() error {
	var errs ValidationErrors
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From.Time) {
		errs = append(errs, ValidationError{Field: "to", Message: "end date must not be before start date", Err: ErrInvalidRange})
	}
	if f.Type != "" && !f.Type.IsValid() {
		errs = append(errs, ValidationError{Field: "type", Message: "type must be one of income, expense, sale, purchase", Err: ErrUnknownType})
	}
	if f.Direction != "" && f.Direction != Inflow && f.Direction != Outflow {
		errs = append(errs, ValidationError{Field: "direction", Message: "direction must be inflow or outflow", Err: ErrUnknownType})
	}
	return errs.OrNil()
}

// Apply returns the matching transactions in input order.
func (f Filter) Apply(txs []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.Match(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// Previous returns the filter for the period of equal length right before f.
// Only meaningful when both bounds are set.
func (f Filter) Previous() Filter {
	prev := f
	if f.From.IsZero() || f.To.IsZero() {
		return prev
	}
	days := int(f.To.Sub(f.From.Time).Hours()/24) + 1
	prev.To = Date{Time: f.From.AddDate(0, 0, -1)}
	prev.From = Date{Time: f.From.AddDate(0, 0, -days)}
	return prev
}

// Key is a stable string form used for cache keys.
func (f Filter) Key() string {
	return f.From.String() + "|" + f.To.String() + "|" + string(f.Type) + "|" + string(f.Direction) + "|" + f.Category
}
