package source

import (
	"context"
	"errors"

	"gstbooks/internal/core"
	"gstbooks/internal/report"
)

// Ports for outbound adapters.
type (
	// TransactionSource returns the records matching f.
	TransactionSource interface {
		ListTransactions(ctx context.Context, f core.Filter) ([]core.Transaction, error)
	}

	// TransactionWriter persists a validated record and returns it with its ID set.
	TransactionWriter interface {
		SaveTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	}

	// SnapshotStore keeps generated report documents.
	SnapshotStore interface {
		SaveReportSnapshot(ctx context.Context, snap report.Snapshot) error
		LatestReportSnapshot(ctx context.Context, kind report.Kind) (report.Snapshot, error)
	}
)

var (
	// ErrReadOnly is returned when a write is attempted on a source that does not support it.
	ErrReadOnly = errors.New("source is read-only")
	// ErrNotFound is returned when a lookup has no result.
	ErrNotFound = errors.New("not found")
)
