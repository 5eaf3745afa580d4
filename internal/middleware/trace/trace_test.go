package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gstbooks/internal/log"
)

func TestMiddlewareLogsAndCounts(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelDebug, Component: log.ComponentHTTP, Format: "json", Output: &buf})

	m := NewMiddleware(func(*http.Request) string { return "203.0.113.5" }, logger)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	m.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * 2 * time.Millisecond)
	}

	statuses := []int{http.StatusOK, http.StatusNotFound, http.StatusBadGateway}
	for _, status := range statuses {
		status := status
		h := log.Middleware(logger)(log.RequestIDMiddleware(m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.WriteHeader(http.StatusTeapot)
		}))))
		req := httptest.NewRequest(http.MethodGet, "/api/stats?from=2025-01-01", nil)
		req.Header.Set(log.RequestIDHeader, "req-42")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	out := buf.String()
	for _, want := range []string{`"request_id":"req-42"`, `"client_ip":"203.0.113.5"`, `"status_code":404`, `"level":"WARN"`, `"level":"ERROR"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
	if strings.Contains(out, `"status_code":418`) {
		t.Error("second WriteHeader must not change the recorded status")
	}

	metrics := m.GetMetrics()
	if metrics.TotalRequests != 3 || metrics.ServerErrors != 1 {
		t.Errorf("unexpected metrics %+v", metrics)
	}
	if metrics.AverageResponseTime != 2000 {
		t.Errorf("average = %dus, want 2000", metrics.AverageResponseTime)
	}
}

func TestGetMetricsEmpty(t *testing.T) {
	m := NewMiddleware(nil, log.New(log.DefaultConfig()))
	if got := m.GetMetrics(); got != (Metrics{}) {
		t.Errorf("expected zero metrics, got %+v", got)
	}
}
