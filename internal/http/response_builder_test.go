package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"gstbooks/internal/core"
	"gstbooks/internal/log"
	"gstbooks/internal/services"
	"gstbooks/internal/source"
)

func TestJSONResponseBuilder(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/x").
		Body(map[string]int{"n": 1}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if w.Header().Get("Location") != "/x" || w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("unexpected headers %v", w.Header())
	}
	if w.Body.String() != "{\"n\":1}\n" {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestJSONResponseBuilder_NoBody(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("unexpected response %d %q", w.Code, w.Body.String())
	}
}

func TestJSONResponseBuilder_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Body(math.Inf(1)).Write(w)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for unencodable body, got %d", w.Code)
	}
}

func TestErrorResponseMapping(t *testing.T) {
	validation := core.ValidationErrors{{Field: "amount", Message: "bad", Err: core.ErrInvalidAmount}}
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"request error", &requestError{Param: "from", Err: core.ErrInvalidDate}, http.StatusBadRequest},
		{"validation errors", validation, http.StatusUnprocessableEntity},
		{"wrapped validation", fmt.Errorf("save: %w", validation), http.StatusUnprocessableEntity},
		{"single validation error", core.ValidationError{Field: "to"}, http.StatusUnprocessableEntity},
		{"unknown kind", core.ErrUnknownReportKind, http.StatusNotFound},
		{"not found", fmt.Errorf("latest: %w", source.ErrNotFound), http.StatusNotFound},
		{"read only", source.ErrReadOnly, http.StatusMethodNotAllowed},
		{"queue disabled", services.ErrQueueDisabled, http.StatusServiceUnavailable},
		{"publish", fmt.Errorf("%w: broker down", services.ErrPublish), http.StatusBadGateway},
		{"source", fmt.Errorf("%w: timeout", services.ErrSource), http.StatusBadGateway},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			errorResponse(tt.err).Write(w)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			var body errorBody
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Error == "" {
				t.Errorf("expected JSON error body, got %q", w.Body.String())
			}
		})
	}
}

func TestValidationErrorResponseFields(t *testing.T) {
	w := httptest.NewRecorder()
	ValidationErrorResponse(core.ValidationErrors{
		{Field: "date", Message: "date is required"},
		{Field: "category", Message: "category is required"},
	}).Write(w)

	var body errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Fields) != 2 || body.Fields[1].Field != "category" {
		t.Errorf("unexpected fields %+v", body.Fields)
	}
}

func TestWriteErrorLogsErrorType(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelDebug, Format: "json", Output: &buf})
	r := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	r = r.WithContext(context.WithValue(r.Context(), log.LoggerContextKey, logger))

	w := httptest.NewRecorder()
	writeError(w, r, log.OpAggregate, fmt.Errorf("%w: sheet gone", services.ErrSource))
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["level"] != "ERROR" || entry[log.FieldErrorType] != log.ErrorTypeNetwork || entry[log.FieldOperation] != log.OpAggregate {
		t.Errorf("unexpected log entry %v", entry)
	}
}
