// This file implements a small builder for JSON responses and the mapping
// from service errors to HTTP status codes.

package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"gstbooks/internal/core"
	"gstbooks/internal/log"
	"gstbooks/internal/services"
	"gstbooks/internal/source"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	payload, err := json.Marshal(b.body)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(payload)
	_, _ = w.Write([]byte("\n"))
}

// errorBody is the shape of every error response.
type errorBody struct {
	Error  string                 `json:"error"`
	Fields []core.ValidationError `json:"fields,omitempty"`
}

// ErrorResponse creates a standard JSON error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(errorBody{Error: message})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// ValidationErrorResponse creates a 422 listing every rejected field.
func ValidationErrorResponse(errs core.ValidationErrors) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusUnprocessableEntity).
		Body(errorBody{Error: "validation failed", Fields: errs})
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// errorResponse maps err to a response. Internal details are logged, not sent.
func errorResponse(err error) *JSONResponseBuilder {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return BadRequestError(reqErr.Error())
	case core.IsValidation(err):
		return ValidationErrorResponse(core.AsValidationErrors(err))
	case errors.Is(err, core.ErrUnknownReportKind):
		return NotFoundError("unknown report kind")
	case errors.Is(err, source.ErrNotFound):
		return NotFoundError("not found")
	case errors.Is(err, source.ErrReadOnly):
		return ErrorResponse(http.StatusMethodNotAllowed, "transaction source is read-only").
			Header("Allow", http.MethodGet)
	case errors.Is(err, services.ErrQueueDisabled):
		return ErrorResponse(http.StatusServiceUnavailable, "report queue is not configured")
	case errors.Is(err, services.ErrPublish):
		return ErrorResponse(http.StatusBadGateway, "report queue unavailable")
	case errors.Is(err, services.ErrSource):
		return ErrorResponse(http.StatusBadGateway, "transaction source unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorResponse(http.StatusGatewayTimeout, "request timed out")
	}
	return InternalServerError("internal error")
}

// writeError logs err with request context and writes the mapped response.
func writeError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	resp := errorResponse(err)
	ctx := r.Context()
	fields := log.NewFields().
		WithOperation(operation).
		WithError(err).
		WithErrorType(errorType(resp.statusCode))
	fields[log.FieldStatusCode] = resp.statusCode

	level := slog.LevelDebug
	msg := "Request rejected"
	if resp.statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
		msg = "Request failed"
	}
	log.FromContext(ctx).Fields(ctx, level, msg, fields)
	resp.Write(w)
}

func errorType(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusMethodNotAllowed, http.StatusUnprocessableEntity:
		return log.ErrorTypeValidation
	case http.StatusNotFound:
		return log.ErrorTypeNotFound
	case http.StatusGatewayTimeout:
		return log.ErrorTypeTimeout
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return log.ErrorTypeNetwork
	}
	return log.ErrorTypeInternal
}
