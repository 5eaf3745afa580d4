package main

import (
	"context"
	"errors"
	"os"
	"time"

	"gstbooks/internal/amqp"
	"gstbooks/internal/cli"
	"gstbooks/internal/log"
	"gstbooks/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting report-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the report worker",
			log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}

	result := cli.OpenBackend(context.Background(), logger, cfg)
	defer result.Close()
	if result.Snapshots == nil {
		logger.Error("Backend has no snapshot store", log.FieldBackend, result.Type)
		os.Exit(1)
	}

	svc, stopCache := cli.NewReportService(cfg, result, nil, logger)
	defer stopCache()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.AMQPPrefetch)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	reportWorker := worker.NewReportWorker(svc, time.Now)

	// Readers should find a report before the first request arrives.
	logger.Info("Performing startup snapshot check...")
	if err := reportWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup snapshot check failed", log.FieldError, err)
	}

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- amqpClient.ConsumeReportRequests(ctx, reportWorker.HandleReportRequest)
	}()

	logger.Info("Report worker started", "queue", cfg.AMQPQueue, "prefetch", cfg.AMQPPrefetch)

	select {
	case err := <-consumeErr:
		if ctx.Err() == nil || (err != nil && !errors.Is(err, context.Canceled)) {
			logger.Error("Message consumption stopped", log.FieldError, err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Report worker stopped gracefully")
}
