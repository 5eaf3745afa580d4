package backend

import (
	"context"
	"fmt"
	"log/slog"

	"gstbooks/internal/core"
	gsheet "gstbooks/internal/sheets/google"
	"gstbooks/internal/source/memory"
	"gstbooks/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// seedRecords returns the configured seed: the seed file when set, else the
// built-in sample data when enabled.
func seedRecords(config Config) ([]core.Transaction, error) {
	if config.SeedFile != "" {
		store, err := memory.NewFromFile(config.SeedFile)
		if err != nil {
			return nil, err
		}
		return store.ListTransactions(context.Background(), core.Filter{})
	}
	if config.SeedSampleData {
		return memory.SampleTransactions(), nil
	}
	return nil, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	seed, err := seedRecords(config)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("load seed data: %w", err)
	}
	if len(seed) > 0 {
		n, err := repo.SeedIfEmpty(ctx, seed)
		if err != nil {
			repo.Close()
			return nil, fmt.Errorf("seed sqlite backend: %w", err)
		}
		if n > 0 {
			f.logger.Info("Seeded SQLite backend", "count", n)
		}
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Type:      SQLiteBackend,
		Source:    repo,
		Writer:    repo,
		Snapshots: repo,
		Ping:      repo.Ping,
		Cleanup:   repo.Close,
	}, nil
}

// The sheets backend has no snapshot table; snapshots live in memory.
func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", "sheet", config.GoogleSheetName)

	return &BackendResult{
		Type:      SheetsBackend,
		Source:    cli,
		Writer:    cli,
		Snapshots: memory.New(nil),
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	seed, err := seedRecords(config)
	if err != nil {
		return nil, fmt.Errorf("load seed data: %w", err)
	}
	store := memory.New(seed)

	f.logger.Info("Initialized memory backend", "records", store.Len())

	return &BackendResult{
		Type:      MemoryBackend,
		Source:    store,
		Writer:    store,
		Snapshots: store,
	}, nil
}
