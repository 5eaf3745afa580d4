package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"gstbooks/internal/amqp"
	"gstbooks/internal/cli"
	apphttp "gstbooks/internal/http"
	"gstbooks/internal/log"
	"gstbooks/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	result := cli.OpenBackend(context.Background(), logger, cfg)
	defer result.Close()

	// Report queueing is optional; without AMQP the queue endpoint answers 503.
	var publisher services.Publisher
	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.AMQPPrefetch)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		amqpClient = client
		publisher = client
		logger.Info("AMQP publisher ready", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	svc, stopCache := cli.NewReportService(cfg, result, publisher, logger)
	defer stopCache()

	var processor *services.SnapshotProcessor
	if cfg.SnapshotInterval > 0 && result.Snapshots != nil {
		pcfg := services.DefaultSnapshotProcessorConfig()
		pcfg.Interval = cfg.SnapshotInterval
		processor = services.NewSnapshotProcessor(svc, pcfg)
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.ServerOptions{
		Ready:              result.Ping,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		RequestTimeout:     cfg.RequestTimeout,
		TrustedProxies:     cfg.TrustedProxies,
		Logger:             logger.WithComponent(log.ComponentHTTP),
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = cfg.RequestTimeout + 5*time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if processor != nil {
			if err := processor.Stop(ctx); err != nil {
				logger.Warn("Snapshot processor stop", log.FieldError, err)
			}
		}
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if amqpClient != nil {
			_ = amqpClient.Close()
		}
	})

	if processor != nil {
		if err := processor.Start(ctx); err != nil {
			logger.Error("Failed to start snapshot processor", log.FieldError, err)
		}
	}

	logger.Info("Starting gstbooks server",
		"port", cfg.Port,
		log.FieldBackend, result.Type,
		"queue", svc.QueueEnabled())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
