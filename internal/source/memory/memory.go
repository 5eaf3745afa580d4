package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gstbooks/internal/core"
	"gstbooks/internal/report"
	"gstbooks/internal/source"
)

// Ensure interface conformance
var (
	_ source.TransactionSource = (*Store)(nil)
	_ source.TransactionWriter = (*Store)(nil)
	_ source.SnapshotStore     = (*Store)(nil)
)

type Store struct {
	mu        sync.Mutex
	items     []core.Transaction
	snapshots []report.Snapshot
}

// New returns a store holding a copy of seed.
func New(seed []core.Transaction) *Store {
	return &Store{items: append([]core.Transaction(nil), seed...)}
}

// NewFromFile seeds the store from a JSON array of transactions. A missing
// file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed []core.Transaction
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	for i, tx := range seed {
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("seed record %d: %w", i, err)
		}
		if seed[i].ID == "" {
			seed[i].ID = uuid.NewString()
		}
	}
	return New(seed), nil
}

// ListTransactions returns matching records sorted by date, then ID.
func (s *Store) ListTransactions(_ context.Context, f core.Filter) ([]core.Transaction, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	out := f.Apply(s.items)
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// SaveTransaction validates tx, assigns an ID when missing and stores it.
func (s *Store) SaveTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, tx)
	return tx, nil
}

// SaveReportSnapshot stores snap, replacing any snapshot with the same ID.
func (s *Store) SaveReportSnapshot(_ context.Context, snap report.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.snapshots[:0]
	for _, existing := range s.snapshots {
		if existing.ID != snap.ID {
			kept = append(kept, existing)
		}
	}
	s.snapshots = append(kept, snap)
	return nil
}

// LatestReportSnapshot returns the most recently saved snapshot of kind.
func (s *Store) LatestReportSnapshot(_ context.Context, kind report.Kind) (report.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.snapshots) - 1; i >= 0; i-- {
		if s.snapshots[i].Kind == kind {
			return s.snapshots[i], nil
		}
	}
	return report.Snapshot{}, source.ErrNotFound
}

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// SampleTransactions returns a fresh copy of the demo ledger used when no
// backend data is available: one quarter of a small trading business.
func SampleTransactions() []core.Transaction {
	d := decimal.RequireFromString
	return []core.Transaction{
		{ID: "s-001", Date: core.NewDate(2025, 1, 3), Amount: d("85000"), Type: core.TypeSale, Category: "Product Sales", GSTRate: d("18"), PaymentMethod: "bank_transfer", Description: "Invoice INV-1001"},
		{ID: "s-002", Date: core.NewDate(2025, 1, 5), Amount: d("42000"), Type: core.TypePurchase, Category: "Inventory", GSTRate: d("18"), PaymentMethod: "bank_transfer", Description: "Stock replenishment"},
		{ID: "s-003", Date: core.NewDate(2025, 1, 7), Amount: d("25000"), Type: core.TypeExpense, Category: "Rent", GSTRate: d("0"), PaymentMethod: "bank_transfer", Description: "Office rent January"},
		{ID: "s-004", Date: core.NewDate(2025, 1, 12), Amount: d("15000"), Type: core.TypeIncome, Category: "Consulting", GSTRate: d("0"), PaymentMethod: "upi", Description: "Advisory retainer"},
		{ID: "s-005", Date: core.NewDate(2025, 1, 20), Amount: d("4800.50"), Type: core.TypeExpense, Category: "Utilities", GSTRate: d("0"), PaymentMethod: "card", Description: "Electricity and internet"},
		{ID: "s-006", Date: core.NewDate(2025, 1, 28), Amount: d("12000"), Type: core.TypePurchase, Category: "Office Supplies", GSTRate: d("12"), PaymentMethod: "card", Description: "Printer and stationery"},
		{ID: "s-007", Date: core.NewDate(2025, 2, 2), Amount: d("96000"), Type: core.TypeSale, Category: "Product Sales", GSTRate: d("18"), PaymentMethod: "bank_transfer", Description: "Invoice INV-1002"},
		{ID: "s-008", Date: core.NewDate(2025, 2, 6), Amount: d("25000"), Type: core.TypeExpense, Category: "Rent", GSTRate: d("0"), PaymentMethod: "bank_transfer", Description: "Office rent February"},
		{ID: "s-009", Date: core.NewDate(2025, 2, 10), Amount: d("38000"), Type: core.TypePurchase, Category: "Inventory", GSTRate: d("18"), PaymentMethod: "bank_transfer", Description: "Stock replenishment"},
		{ID: "s-010", Date: core.NewDate(2025, 2, 14), Amount: d("8500"), Type: core.TypeSale, Category: "Services", GSTRate: d("5"), PaymentMethod: "upi", Description: "Installation service"},
		{ID: "s-011", Date: core.NewDate(2025, 2, 21), Amount: d("6200"), Type: core.TypeExpense, Category: "Marketing", GSTRate: d("0"), PaymentMethod: "card", Description: "Online ads"},
		{ID: "s-012", Date: core.NewDate(2025, 3, 3), Amount: d("112000"), Type: core.TypeSale, Category: "Product Sales", GSTRate: d("18"), PaymentMethod: "bank_transfer", Description: "Invoice INV-1003"},
		{ID: "s-013", Date: core.NewDate(2025, 3, 6), Amount: d("25000"), Type: core.TypeExpense, Category: "Rent", GSTRate: d("0"), PaymentMethod: "bank_transfer", Description: "Office rent March"},
		{ID: "s-014", Date: core.NewDate(2025, 3, 11), Amount: d("64000"), Type: core.TypePurchase, Category: "Equipment", GSTRate: d("28"), PaymentMethod: "bank_transfer", Description: "Air conditioning units"},
		{ID: "s-015", Date: core.NewDate(2025, 3, 18), Amount: d("15000"), Type: core.TypeIncome, Category: "Consulting", GSTRate: d("0"), PaymentMethod: "upi", Description: "Advisory retainer"},
		{ID: "s-016", Date: core.NewDate(2025, 3, 25), Amount: d("5100.25"), Type: core.TypeExpense, Category: "Utilities", GSTRate: d("0"), PaymentMethod: "card", Description: "Electricity and internet"},
	}
}
