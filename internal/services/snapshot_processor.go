package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"gstbooks/internal/core"
	"gstbooks/internal/report"
)

// Snapshotter builds a report and stores it.
type Snapshotter interface {
	GenerateSnapshot(ctx context.Context, id string, kind report.Kind, period report.Period) (report.Snapshot, error)
}

// SnapshotProcessorConfig holds configuration for the snapshot processor
type SnapshotProcessorConfig struct {
	// Interval between refreshes (default: 1h)
	Interval time.Duration

	// Kinds to refresh (default: every report kind)
	Kinds []report.Kind

	// Clock is used to compute the reporting period (default: time.Now)
	Clock func() time.Time
}

// DefaultSnapshotProcessorConfig returns sensible defaults
func DefaultSnapshotProcessorConfig() SnapshotProcessorConfig {
	return SnapshotProcessorConfig{
		Interval: time.Hour,
		Kinds:    report.Kinds(),
		Clock:    time.Now,
	}
}

// SnapshotProcessor periodically stores fresh financial-year-to-date reports.
type SnapshotProcessor struct {
	snapshots Snapshotter
	config    SnapshotProcessorConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSnapshotProcessor(snapshots Snapshotter, config SnapshotProcessorConfig) *SnapshotProcessor {
	defaults := DefaultSnapshotProcessorConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if len(config.Kinds) == 0 {
		config.Kinds = defaults.Kinds
	}
	if config.Clock == nil {
		config.Clock = defaults.Clock
	}
	return &SnapshotProcessor{
		snapshots: snapshots,
		config:    config,
	}
}

// FinancialYearToDate returns the window from 1 April of the Indian
// financial year containing now up to now.
func FinancialYearToDate(now time.Time) report.Period {
	year := now.Year()
	if now.Month() < time.April {
		year--
	}
	return report.Period{
		From: core.NewDate(year, int(time.April), 1),
		To:   core.DateOf(now),
	}
}

// Start begins the refresh loop. Returns an error if already running.
func (p *SnapshotProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("snapshot processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Snapshot processor started",
		"interval", p.config.Interval,
		"kinds", len(p.config.Kinds))

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SnapshotProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Snapshot processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Snapshot processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running
func (p *SnapshotProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SnapshotProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	p.Refresh(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Refresh(ctx)
		}
	}
}

// Refresh stores one snapshot per configured kind and returns how many
// succeeded. Failures are logged and do not stop the remaining kinds.
func (p *SnapshotProcessor) Refresh(ctx context.Context) int {
	period := FinancialYearToDate(p.config.Clock())
	stored := 0
	for _, kind := range p.config.Kinds {
		if ctx.Err() != nil {
			break
		}
		snap, err := p.snapshots.GenerateSnapshot(ctx, uuid.NewString(), kind, period)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to refresh report snapshot",
				"report_kind", kind,
				"error", err)
			continue
		}
		stored++
		slog.DebugContext(ctx, "Report snapshot refreshed",
			"report_kind", kind,
			"id", snap.ID)
	}
	return stored
}
