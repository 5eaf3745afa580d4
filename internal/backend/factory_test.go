package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"gstbooks/internal/config"
	"gstbooks/internal/core"
	"gstbooks/internal/source/memory"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "postgres"}); err == nil || !strings.Contains(err.Error(), "memory, sqlite, sheets") {
		t.Fatalf("expected error listing backends, got %v", err)
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: " Sheets ", GoogleTransactionsSheet: "Ledger", SeedSampleData: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Type != SheetsBackend || cfg.GoogleSheetName != "Ledger" || !cfg.SeedSampleData {
		t.Fatalf("unexpected conversion %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"memory", Config{Type: MemoryBackend}, ""},
		{"sqlite without path", Config{Type: SQLiteBackend}, "needs a database path"},
		{"sheets without id", Config{Type: SheetsBackend}, "needs a spreadsheet ID"},
		{"sheets reports every problem", Config{Type: SheetsBackend}, "service account credentials"},
		{"sheets without credentials", Config{Type: SheetsBackend, GoogleSpreadsheetID: "x"}, "service account credentials"},
		{"unknown", Config{Type: "mongo"}, "unknown data backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	res, err := f.CreateBackend(ctx, Config{Type: MemoryBackend, SeedSampleData: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer res.Close()

	txs, err := res.Source.ListTransactions(ctx, core.Filter{})
	if err != nil || len(txs) != len(memory.SampleTransactions()) {
		t.Fatalf("expected seeded sample data, n=%d err=%v", len(txs), err)
	}
	if res.Writer == nil || res.Snapshots == nil {
		t.Fatal("memory backend must be writable and keep snapshots")
	}

	empty, err := f.CreateBackend(ctx, Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	txs, _ = empty.Source.ListTransactions(ctx, core.Filter{})
	if len(txs) != 0 {
		t.Fatalf("expected empty store without seeding, got %d", len(txs))
	}
}

func TestCreateSQLiteBackendSeedsOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "books.db")
	f := NewFactory(nil)
	cfg := Config{Type: SQLiteBackend, SQLiteDBPath: path, SeedSampleData: true}

	for i := 0; i < 2; i++ {
		res, err := f.CreateBackend(ctx, cfg)
		if err != nil {
			t.Fatalf("create #%d: %v", i, err)
		}
		if err := res.Ping(ctx); err != nil {
			t.Fatalf("ping: %v", err)
		}
		txs, err := res.Source.ListTransactions(ctx, core.Filter{})
		if err != nil || len(txs) != len(memory.SampleTransactions()) {
			t.Fatalf("run %d: n=%d err=%v", i, len(txs), err)
		}
		if err := res.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	if _, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SheetsBackend}); err == nil {
		t.Fatal("expected validation error")
	}
}
