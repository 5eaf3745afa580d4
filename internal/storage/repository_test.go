package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"gstbooks/internal/core"
	"gstbooks/internal/report"
	"gstbooks/internal/source"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "gstbooks.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func record(day int, amount string, typ core.TransactionType, category, rate string) core.Transaction {
	return core.Transaction{
		Date:     core.NewDate(2025, 1, day),
		Amount:   decimal.RequireFromString(amount),
		Type:     typ,
		Category: category,
		GSTRate:  decimal.RequireFromString(rate),
	}
}

func TestRunMigrationsIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	v1, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	v2, err := RunMigrations(path)
	if err != nil || v1 != v2 || v1 != 2 {
		t.Fatalf("second run: v1=%d v2=%d err=%v", v1, v2, err)
	}
}

func TestSaveAndListTransactions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	inputs := []core.Transaction{
		record(10, "1000.10", core.TypeSale, "Product Sales", "18"),
		record(2, "250", core.TypeExpense, "Rent", "0"),
		record(31, "99.99", core.TypePurchase, "Inventory", "12"),
		record(15, "500", core.TypeIncome, "Consulting", "0"),
	}
	for _, tx := range inputs {
		saved, err := repo.SaveTransaction(ctx, tx)
		if err != nil {
			t.Fatalf("save: %v", err)
		}
		if saved.ID == "" {
			t.Fatalf("expected generated ID")
		}
	}

	all, err := repo.ListTransactions(ctx, core.Filter{})
	if err != nil || len(all) != 4 {
		t.Fatalf("list all: n=%d err=%v", len(all), err)
	}
	if all[0].Date.Day() != 2 || all[3].Date.Day() != 31 {
		t.Fatalf("expected date order, got %s ... %s", all[0].Date, all[3].Date)
	}
	if !all[1].Amount.Equal(decimal.RequireFromString("1000.10")) || !all[1].GSTRate.Equal(decimal.NewFromInt(18)) {
		t.Fatalf("decimal round trip lost precision: %+v", all[1])
	}

	cases := []struct {
		name string
		f    core.Filter
		want int
	}{
		{"inclusive bounds", core.Filter{From: core.NewDate(2025, 1, 2), To: core.NewDate(2025, 1, 10)}, 2},
		{"type", core.Filter{Type: core.TypePurchase}, 1},
		{"inflow", core.Filter{Direction: core.Inflow}, 2},
		{"outflow in range", core.Filter{Direction: core.Outflow, To: core.NewDate(2025, 1, 30)}, 1},
		{"category", core.Filter{Category: "Rent"}, 1},
		{"no match", core.Filter{Category: "Travel"}, 0},
	}
	for _, tc := range cases {
		got, err := repo.ListTransactions(ctx, tc.f)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if len(got) != tc.want {
			t.Errorf("%s: got %d records, want %d", tc.name, len(got), tc.want)
		}
	}
}

func TestSaveTransactionRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.SaveTransaction(context.Background(), core.Transaction{Date: core.NewDate(2025, 1, 1), Type: core.TypeSale, Category: "x"})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestListRejectsInvertedRange(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.ListTransactions(context.Background(), core.Filter{From: core.NewDate(2025, 2, 1), To: core.NewDate(2025, 1, 1)})
	if !errors.Is(err, core.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestSeedIfEmpty(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seed := []core.Transaction{record(1, "10", core.TypeIncome, "A", "0"), record(2, "20", core.TypeExpense, "B", "0")}

	n, err := repo.SeedIfEmpty(ctx, seed)
	if err != nil || n != 2 {
		t.Fatalf("first seed: n=%d err=%v", n, err)
	}
	n, err = repo.SeedIfEmpty(ctx, seed)
	if err != nil || n != 0 {
		t.Fatalf("second seed should be a no-op: n=%d err=%v", n, err)
	}
}

func TestReportSnapshots(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.LatestReportSnapshot(ctx, report.KindCashFlow); !errors.Is(err, source.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	base := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	a := report.NewAssembler(func() time.Time { return base })
	period := report.Period{From: core.NewDate(2025, 1, 1), To: core.NewDate(2025, 3, 31)}

	first, err := report.NewSnapshot("snap-1", a.BuildBalanceSheet(report.DefaultBalanceSheet(), period))
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	second := first
	second.ID = "snap-2"
	second.CreatedAt = base.Add(500 * time.Millisecond)

	for _, s := range []report.Snapshot{second, first} {
		if err := repo.SaveReportSnapshot(ctx, s); err != nil {
			t.Fatalf("save snapshot: %v", err)
		}
	}

	got, err := repo.LatestReportSnapshot(ctx, report.KindBalanceSheet)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got.ID != "snap-2" || !got.CreatedAt.Equal(second.CreatedAt) {
		t.Fatalf("expected newest snapshot, got %s at %v", got.ID, got.CreatedAt)
	}
	if got.Period.From.String() != "2025-01-01" || got.Period.To.String() != "2025-03-31" {
		t.Fatalf("period not preserved: %+v", got.Period)
	}
	doc, err := got.Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Balanced == nil || !*doc.Balanced {
		t.Fatalf("decoded document lost balanced flag")
	}

	replay := first
	replay.CreatedAt = base.Add(time.Second)
	if err := repo.SaveReportSnapshot(ctx, replay); err != nil {
		t.Fatalf("re-saving a snapshot ID should replace it: %v", err)
	}
	got, _ = repo.LatestReportSnapshot(ctx, report.KindBalanceSheet)
	if got.ID != "snap-1" {
		t.Fatalf("expected replaced snapshot to be latest, got %s", got.ID)
	}
}
