// This file implements utilities for parsing and validating HTTP request
// data: query filters, numeric parameters and JSON bodies.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"gstbooks/internal/core"
)

const maxBodyBytes = 1 << 20

// requestError marks input that could not be parsed at all. It maps to 400,
// unlike core.ValidationErrors which map to 422.
type requestError struct {
	Param string
	Err   error
}

func (e *requestError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Param, e.Err)
}

func (e *requestError) Unwrap() error {
	return e.Err
}

// parseFilter reads from, to, type, direction and category from the query.
// Unparseable dates are request errors; the remaining checks are left to
// Filter.Validate so all field problems are reported together.
func parseFilter(q url.Values) (core.Filter, error) {
	var f core.Filter
	for _, p := range []struct {
		name string
		dst  *core.Date
	}{{"from", &f.From}, {"to", &f.To}} {
		v := strings.TrimSpace(q.Get(p.name))
		if v == "" {
			continue
		}
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Filter{}, &requestError{Param: p.name, Err: err}
		}
		*p.dst = d
	}
	f.Type = core.TransactionType(strings.ToLower(strings.TrimSpace(q.Get("type"))))
	f.Direction = core.Direction(strings.ToLower(strings.TrimSpace(q.Get("direction"))))
	f.Category = sanitizeInput(q.Get("category"))

	if err := f.Validate(); err != nil {
		return core.Filter{}, err
	}
	return f, nil
}

// parseTop reads the optional top parameter; 0 means no limit.
func parseTop(q url.Values) (int, error) {
	v := strings.TrimSpace(q.Get("top"))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, &requestError{Param: "top", Err: errors.New("must be a non-negative integer")}
	}
	return n, nil
}

// parseDecimal reads a required signed decimal parameter.
func parseDecimal(q url.Values, name string) (decimal.Decimal, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return decimal.Zero, &requestError{Param: name, Err: errors.New("is required")}
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, &requestError{Param: name, Err: errors.New("must be a decimal number")}
	}
	return d, nil
}

// parseBool reads an optional boolean parameter.
func parseBool(q url.Values, name string) (bool, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, &requestError{Param: name, Err: errors.New("must be true or false")}
	}
	return b, nil
}

// decodeJSON reads one JSON object from the body into v, rejecting unknown
// fields and bodies over maxBodyBytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &requestError{Param: "body", Err: err}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &requestError{Param: "body", Err: errors.New("must contain a single JSON object")}
	}
	return nil
}

// flexString accepts either a JSON string or a JSON number.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// transactionRequest is the POST /api/transactions body.
type transactionRequest struct {
	Date          string     `json:"date"`
	Amount        flexString `json:"amount"`
	Type          string     `json:"type"`
	Category      string     `json:"category"`
	GSTRate       flexString `json:"gstRate"`
	PaymentMethod string     `json:"paymentMethod"`
	Description   string     `json:"description"`
}

// toTransaction converts the body into a record, collecting every field
// problem. A missing GST rate means zero.
func (req transactionRequest) toTransaction() (core.Transaction, error) {
	var errs core.ValidationErrors
	tx := core.Transaction{
		Type:          core.TransactionType(strings.ToLower(strings.TrimSpace(req.Type))),
		Category:      sanitizeInput(req.Category),
		PaymentMethod: sanitizeInput(req.PaymentMethod),
		Description:   sanitizeInput(req.Description),
	}

	if d, err := core.ParseDate(strings.TrimSpace(req.Date)); err != nil {
		errs = append(errs, core.ValidationError{Field: "date", Message: "date must be YYYY-MM-DD", Err: err})
	} else {
		tx.Date = d
	}
	if a, err := core.ParseAmount(string(req.Amount)); err != nil {
		errs = append(errs, core.ValidationError{Field: "amount", Message: "amount must be a positive decimal", Err: err})
	} else {
		tx.Amount = a
	}
	if strings.TrimSpace(string(req.GSTRate)) != "" {
		if rate, err := core.ParseRate(string(req.GSTRate)); err != nil {
			errs = append(errs, core.ValidationError{Field: "gst_rate", Message: "gst rate must be a non-negative percentage", Err: err})
		} else {
			tx.GSTRate = rate
		}
	}

	if err := tx.Validate(); err != nil {
		for _, ve := range core.AsValidationErrors(err) {
			if !hasField(errs, ve.Field) {
				errs = append(errs, ve)
			}
		}
	}
	if err := errs.OrNil(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func hasField(errs core.ValidationErrors, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
