// Package http exposes the report service as a JSON API.
package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"gstbooks/internal/log"
	"gstbooks/internal/middleware/ratelimit"
	"gstbooks/internal/middleware/security"
	"gstbooks/internal/middleware/trace"
	"gstbooks/internal/services"
)

// ServerOptions tunes NewServer. Zero values select defaults.
type ServerOptions struct {
	// Ready reports backend health for /readyz. Nil means always ready.
	Ready              func(ctx context.Context) error
	RateLimitPerMinute int
	RequestTimeout     time.Duration
	TrustedProxies     []string
	Logger             *log.Logger
}

// Server is an http.Server with the API routes and middleware installed.
type Server struct {
	http.Server
	svc          *services.ReportService
	ready        func(ctx context.Context) error
	limiter      *ratelimit.Limiter
	detector     *security.Detector
	tracer       *trace.Middleware
	logger       *log.Logger
	timeout      time.Duration
	started      time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc *services.ReportService, opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentHTTP})
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}

	limitCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limitCfg.RequestsPerMinute = opts.RateLimitPerMinute
	}

	s := &Server{
		svc:      svc,
		ready:    opts.Ready,
		limiter:  ratelimit.NewLimiter(limitCfg),
		detector: detector,
		tracer:   trace.NewMiddleware(detector.ExtractClientIP, logger),
		logger:   logger,
		timeout:  timeout,
		started:  time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.Handle("GET /api/transactions", s.api(s.handleListTransactions))
	mux.Handle("POST /api/transactions", s.api(s.handleCreateTransaction))
	mux.Handle("GET /api/stats", s.api(s.handleStats))
	mux.Handle("GET /api/stats/change", s.api(s.handleStatsChange))
	mux.Handle("GET /api/categories", s.api(s.handleCategories))
	mux.Handle("GET /api/monthly", s.api(s.handleMonthly))
	mux.Handle("GET /api/gst/apply", s.api(s.handleGSTApply))
	mux.Handle("GET /api/gst/summary", s.api(s.handleGSTSummary))
	mux.Handle("GET /api/gst/by-rate", s.api(s.handleGSTByRate))
	mux.Handle("GET /api/gst/rates", s.api(s.handleGSTRates))
	mux.Handle("GET /api/overview", s.api(s.handleOverview))
	mux.Handle("GET /api/reports/{kind}", s.api(s.handleReport))
	mux.Handle("GET /api/reports/{kind}/latest", s.api(s.handleLatestSnapshot))
	mux.Handle("POST /api/reports/{kind}/queue", s.api(s.handleQueueReport))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var handler http.Handler = mux
	handler = s.flagSuspicious(handler)
	handler = headers.Middleware(handler)
	handler = s.tracer.Middleware(handler)
	handler = log.RequestIDMiddleware(handler)
	handler = log.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// api wraps an API handler with rate limiting and the request deadline.
func (s *Server) api(h http.HandlerFunc) http.Handler {
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, s.rateLimited)
	return limited(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
		defer cancel()
		h(w, r.WithContext(ctx))
	}))
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	retry := s.limiter.RetryAfter(s.detector.ExtractClientIP(r))
	if retry <= 0 {
		retry = 60
	}
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").
		Header("Retry-After", strconv.Itoa(retry)).
		Write(w)
}

// flagSuspicious logs probes; it never blocks them.
func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldUserAgent, r.Header.Get("User-Agent"))
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and the limiter cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Metrics gathers the middleware counters served on /metrics.
type Metrics struct {
	Requests  trace.Metrics             `json:"requests"`
	RateLimit ratelimit.Metrics         `json:"rateLimit"`
	Security  security.DetectionMetrics `json:"security"`
}

func (s *Server) Metrics() Metrics {
	return Metrics{
		Requests:  s.tracer.GetMetrics(),
		RateLimit: s.limiter.GetMetrics(),
		Security:  s.detector.GetMetrics(),
	}
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			NewJSONResponse().
				Status(http.StatusServiceUnavailable).
				Body(map[string]string{"status": "unavailable"}).
				Write(w)
			return
		}
	}
	NewJSONResponse().Body(map[string]any{
		"status":   "ready",
		"writable": s.svc.Writable(),
		"queue":    s.svc.QueueEnabled(),
	}).Write(w)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(s.Metrics()).Write(w)
}
