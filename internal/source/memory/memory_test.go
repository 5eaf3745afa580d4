package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"gstbooks/internal/core"
	"gstbooks/internal/report"
	"gstbooks/internal/source"
)

func TestStoreListFiltersAndSorts(t *testing.T) {
	s := New(SampleTransactions())
	ctx := context.Background()

	all, err := s.ListTransactions(ctx, core.Filter{})
	if err != nil || len(all) != len(SampleTransactions()) {
		t.Fatalf("unexpected list: n=%d err=%v", len(all), err)
	}
	for i := 1; i < len(all); i++ {
		if all[i].Date.Before(all[i-1].Date.Time) {
			t.Fatalf("records not sorted by date at %d", i)
		}
	}

	feb, err := s.ListTransactions(ctx, core.Filter{From: core.NewDate(2025, 2, 1), To: core.NewDate(2025, 2, 28)})
	if err != nil || len(feb) != 5 {
		t.Fatalf("expected 5 February records, got %d (err=%v)", len(feb), err)
	}

	rent, _ := s.ListTransactions(ctx, core.Filter{Category: "Rent"})
	if len(rent) != 3 {
		t.Fatalf("expected 3 rent records, got %d", len(rent))
	}

	inflows, _ := s.ListTransactions(ctx, core.Filter{Direction: core.Inflow})
	for _, tx := range inflows {
		if tx.Type != core.TypeIncome && tx.Type != core.TypeSale {
			t.Fatalf("unexpected %s record in inflows", tx.Type)
		}
	}
}

func TestStoreRejectsInvalidFilter(t *testing.T) {
	s := New(nil)
	_, err := s.ListTransactions(context.Background(), core.Filter{From: core.NewDate(2025, 2, 1), To: core.NewDate(2025, 1, 1)})
	if !errors.Is(err, core.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestStoreSaveTransaction(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	saved, err := s.SaveTransaction(ctx, core.Transaction{
		Date:     core.NewDate(2025, 1, 1),
		Amount:   decimal.NewFromInt(100),
		Type:     core.TypeSale,
		Category: "Sales",
		GSTRate:  decimal.NewFromInt(18),
	})
	if err != nil || saved.ID == "" {
		t.Fatalf("unexpected save: %+v err=%v", saved, err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected one record, got %d", s.Len())
	}

	_, err = s.SaveTransaction(ctx, core.Transaction{Type: "gift"})
	if !core.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("invalid record must not be stored")
	}
}

func TestSampleTransactionsIsFreshCopy(t *testing.T) {
	a := SampleTransactions()
	a[0].Category = "changed"
	if b := SampleTransactions(); b[0].Category == "changed" {
		t.Fatalf("sample data must not be shared between calls")
	}
	for _, tx := range SampleTransactions() {
		if err := tx.Validate(); err != nil {
			t.Fatalf("sample %s invalid: %v", tx.ID, err)
		}
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFromFile(filepath.Join(dir, "missing.json"))
	if err != nil || s.Len() != 0 {
		t.Fatalf("missing file should give empty store: err=%v", err)
	}

	path := filepath.Join(dir, "seed.json")
	content := `[{"date":"2025-01-02","amount":"1500.50","type":"income","category":"Consulting","gstRate":"0"}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s, err = NewFromFile(path)
	if err != nil || s.Len() != 1 {
		t.Fatalf("unexpected seed load: err=%v", err)
	}
	got, _ := s.ListTransactions(context.Background(), core.Filter{})
	if got[0].ID == "" || !got[0].Amount.Equal(decimal.RequireFromString("1500.50")) {
		t.Fatalf("unexpected seeded record %+v", got[0])
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`[{"date":"2025-01-02","amount":"-1","type":"income","category":"x"}]`), 0o644); err != nil {
		t.Fatalf("write bad seed: %v", err)
	}
	if _, err := NewFromFile(bad); err == nil {
		t.Fatalf("expected invalid seed to fail")
	}
}

func TestSnapshots(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	if _, err := s.LatestReportSnapshot(ctx, report.KindProfitLoss); !errors.Is(err, source.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_ = s.SaveReportSnapshot(ctx, report.Snapshot{ID: "1", Kind: report.KindProfitLoss})
	_ = s.SaveReportSnapshot(ctx, report.Snapshot{ID: "2", Kind: report.KindCashFlow})
	_ = s.SaveReportSnapshot(ctx, report.Snapshot{ID: "3", Kind: report.KindProfitLoss})
	got, err := s.LatestReportSnapshot(ctx, report.KindProfitLoss)
	if err != nil || got.ID != "3" {
		t.Fatalf("expected latest snapshot 3, got %+v err=%v", got, err)
	}

	_ = s.SaveReportSnapshot(ctx, report.Snapshot{ID: "1", Kind: report.KindProfitLoss})
	got, _ = s.LatestReportSnapshot(ctx, report.KindProfitLoss)
	if got.ID != "1" {
		t.Fatalf("re-saved snapshot should be latest, got %s", got.ID)
	}
}
