// Package cli provides common initialization shared by the gstbooks binaries.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gstbooks/internal/backend"
	"gstbooks/internal/cache"
	"gstbooks/internal/config"
	"gstbooks/internal/core"
	"gstbooks/internal/log"
	"gstbooks/internal/services"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func SetupLogger(component string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Component = component
	cfg.Level = log.ParseLevel(os.Getenv("LOG_LEVEL"))
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Format = format
	}
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	return cfg
}

// OpenBackend creates the configured transaction source.
// Exits the process on failure.
func OpenBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) *backend.BackendResult {
	bcfg, err := backend.FromAppConfig(cfg)
	ExitOnError(logger, "Invalid backend configuration", err)
	result, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Slog()).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend",
			log.FieldBackend, bcfg.Type,
			log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Backend ready",
		log.FieldBackend, result.Type,
		"writable", result.Writer != nil)
	return result
}

// NewReportService wires the backend, a TTL cache and an optional publisher
// into a ReportService. The returned stop func ends cache cleanup.
func NewReportService(cfg *config.Config, result *backend.BackendResult, publisher services.Publisher, logger *log.Logger) (*services.ReportService, func()) {
	lru := cache.NewLRUCache[[]core.Transaction](cfg.CacheSize, cfg.CacheTTL)
	manager := cache.NewManager(logger.WithComponent(log.ComponentCache).Slog())
	manager.Register(lru)
	manager.StartCleanup(cfg.CacheTTL)

	opts := services.Options{
		Writer:           result.Writer,
		Snapshots:        result.Snapshots,
		Cache:            lru,
		OpeningBalance:   cfg.OpeningBalance,
		ProjectionMonths: cfg.ProjectionMonths,
		Logger:           logger.WithComponent(log.ComponentService).Slog(),
	}
	if publisher != nil {
		opts.Publisher = publisher
	}
	return services.NewReportService(result.Source, opts), manager.Stop
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. cleanup
// runs first, bounded by timeout; done is closed once it has returned.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		cancel()

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}

// ExitOnError logs err and exits when it is non-nil.
func ExitOnError(logger *log.Logger, msg string, err error) {
	if err != nil {
		logger.Error(msg, log.FieldError, err)
		os.Exit(1)
	}
}
