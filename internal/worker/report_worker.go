package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gstbooks/internal/amqp"
	"gstbooks/internal/core"
	"gstbooks/internal/report"
	"gstbooks/internal/services"
	"gstbooks/internal/source"
)

// SnapshotService is the part of services.ReportService the worker needs.
type SnapshotService interface {
	services.Snapshotter
	LatestSnapshot(ctx context.Context, kind report.Kind) (report.Snapshot, error)
}

// ReportWorker turns queued report requests into stored snapshots.
type ReportWorker struct {
	service SnapshotService
	clock   func() time.Time
}

func NewReportWorker(service SnapshotService, clock func() time.Time) *ReportWorker {
	if clock == nil {
		clock = time.Now
	}
	return &ReportWorker{service: service, clock: clock}
}

// HandleReportRequest builds and stores the requested report. The message ID
// becomes the snapshot ID; a redelivered request replaces its snapshot.
// Requests that can never succeed are logged and acknowledged.
func (w *ReportWorker) HandleReportRequest(ctx context.Context, msg *amqp.ReportRequestMessage) error {
	slog.InfoContext(ctx, "Processing report request",
		"message_id", msg.ID,
		"report_kind", msg.Kind,
		"period_from", msg.From,
		"period_to", msg.To)

	period, err := msg.Period()
	if err != nil {
		slog.ErrorContext(ctx, "Discarding report request with invalid period",
			"message_id", msg.ID,
			"error", err)
		return nil
	}

	snap, err := w.service.GenerateSnapshot(ctx, msg.ID, msg.Kind, period)
	if err != nil {
		if core.IsValidation(err) || errors.Is(err, core.ErrUnknownReportKind) {
			slog.ErrorContext(ctx, "Discarding report request",
				"message_id", msg.ID,
				"error", err)
			return nil
		}
		return fmt.Errorf("generate %s snapshot: %w", msg.Kind, err)
	}

	slog.InfoContext(ctx, "Stored report snapshot",
		"message_id", msg.ID,
		"report_kind", snap.Kind,
		"latency", time.Since(msg.RequestedAt).String())
	return nil
}

// StartupCheck stores a financial-year-to-date snapshot for every kind that
// has none yet, so readers find a report before the first request arrives.
func (w *ReportWorker) StartupCheck(ctx context.Context) error {
	period := services.FinancialYearToDate(w.clock())
	created, failed := 0, 0

	for _, kind := range report.Kinds() {
		_, err := w.service.LatestSnapshot(ctx, kind)
		if err == nil {
			continue
		}
		if !errors.Is(err, source.ErrNotFound) {
			return fmt.Errorf("look up %s snapshot: %w", kind, err)
		}
		if _, err := w.service.GenerateSnapshot(ctx, uuid.NewString(), kind, period); err != nil {
			slog.ErrorContext(ctx, "Failed to create startup snapshot",
				"report_kind", kind,
				"error", err)
			failed++
			continue
		}
		created++
	}

	slog.InfoContext(ctx, "Startup snapshot check completed",
		"created", created,
		"failed", failed)
	if failed > 0 {
		return fmt.Errorf("startup check: %d snapshot(s) failed", failed)
	}
	return nil
}
