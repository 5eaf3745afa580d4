package core

import (
	"errors"
	"strings"
)

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// ValidationErrors collects every problem found in one input.
type ValidationErrors []ValidationError

func (es ValidationErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the wrapped sentinels so errors.Is works on the collection.
func (es ValidationErrors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

// OrNil returns nil for an empty collection so callers can return it directly.
func (es ValidationErrors) OrNil() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

// IsValidation reports whether err carries validation failures.
func IsValidation(err error) bool {
	var ve ValidationError
	var ves ValidationErrors
	return errors.As(err, &ves) || errors.As(err, &ve)
}

// AsValidationErrors flattens err into field errors, or returns nil.
func AsValidationErrors(err error) ValidationErrors {
	var ves ValidationErrors
	if errors.As(err, &ves) {
		return ves
	}
	var ve ValidationError
	if errors.As(err, &ve) {
		return ValidationErrors{ve}
	}
	return nil
}
