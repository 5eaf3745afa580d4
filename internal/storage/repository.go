package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gstbooks/internal/core"
	"gstbooks/internal/report"
	"gstbooks/internal/source"

	_ "modernc.org/sqlite"
)

// Ensure interface conformance
var (
	_ source.TransactionSource = (*SQLiteRepository)(nil)
	_ source.TransactionWriter = (*SQLiteRepository)(nil)
	_ source.SnapshotStore     = (*SQLiteRepository)(nil)
)

const transactionColumns = "id, date, amount, type, category, gst_rate, payment_method, description"

// Fixed width so created_at sorts as text.
const snapshotTimeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("SQLite schema ready", "db_path", dbPath, "schema_version", version)

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping is used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ListTransactions implements source.TransactionSource. Every filter field is
// pushed into the WHERE clause; dates are stored as YYYY-MM-DD so text
// comparison orders them correctly.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, f core.Filter) ([]core.Transaction, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	where, args := filterClause(f)
	query := "SELECT " + transactionColumns + " FROM transactions" + where + " ORDER BY date, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func filterClause(f core.Filter) (string, []any) {
	var conds []string
	var args []any
	if !f.From.IsEmpty() {
		conds = append(conds, "date >= ?")
		args = append(args, f.From.String())
	}
	if !f.To.IsEmpty() {
		conds = append(conds, "date <= ?")
		args = append(args, f.To.String())
	}
	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.Direction != "" {
		var types []string
		for _, t := range core.TransactionTypes() {
			if t.Direction() == f.Direction {
				types = append(types, "?")
				args = append(args, string(t))
			}
		}
		conds = append(conds, "type IN ("+strings.Join(types, ", ")+")")
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx                    core.Transaction
		date, amount, gstRate string
		typ                   string
	)
	if err := row.Scan(&tx.ID, &date, &amount, &typ, &tx.Category, &gstRate, &tx.PaymentMethod, &tx.Description); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: date %q: %w", tx.ID, date, err)
	}
	tx.Date = d
	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: amount %q: %w", tx.ID, amount, err)
	}
	if tx.GSTRate, err = decimal.NewFromString(gstRate); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: gst rate %q: %w", tx.ID, gstRate, err)
	}
	tx.Type = core.TransactionType(typ)
	return tx, nil
}

// SaveTransaction implements source.TransactionWriter.
func (r *SQLiteRepository) SaveTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO transactions ("+transactionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		tx.ID, tx.Date.String(), tx.Amount.String(), string(tx.Type), tx.Category,
		tx.GSTRate.String(), tx.PaymentMethod, tx.Description,
	)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"type", tx.Type,
		"category", tx.Category,
		"amount", tx.Amount.String(),
		"date", tx.Date.String())

	return tx, nil
}

// SeedIfEmpty inserts txs in one transaction when the table has no rows.
// It returns the number of inserted records.
func (r *SQLiteRepository) SeedIfEmpty(ctx context.Context, txs []core.Transaction) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&count); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer dbtx.Rollback()

	stmt, err := dbtx.PrepareContext(ctx, "INSERT INTO transactions ("+transactionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("prepare seed insert: %w", err)
	}
	defer stmt.Close()

	for _, tx := range txs {
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx, tx.ID, tx.Date.String(), tx.Amount.String(), string(tx.Type),
			tx.Category, tx.GSTRate.String(), tx.PaymentMethod, tx.Description); err != nil {
			return 0, fmt.Errorf("seed transaction %s: %w", tx.ID, err)
		}
	}
	if err := dbtx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return len(txs), nil
}

// SaveReportSnapshot implements source.SnapshotStore.
func (r *SQLiteRepository) SaveReportSnapshot(ctx context.Context, snap report.Snapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO report_snapshots (id, kind, period_from, period_to, document, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		snap.ID, string(snap.Kind), snap.Period.From.String(), snap.Period.To.String(),
		string(snap.Document), snap.CreatedAt.UTC().Format(snapshotTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert report snapshot: %w", err)
	}
	slog.InfoContext(ctx, "Report snapshot saved", "id", snap.ID, "kind", snap.Kind)
	return nil
}

// LatestReportSnapshot implements source.SnapshotStore.
func (r *SQLiteRepository) LatestReportSnapshot(ctx context.Context, kind report.Kind) (report.Snapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, kind, period_from, period_to, document, created_at
		 FROM report_snapshots WHERE kind = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT 1`, string(kind))

	var (
		snap                        report.Snapshot
		k, from, to, doc, createdAt string
	)
	if err := row.Scan(&snap.ID, &k, &from, &to, &doc, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return report.Snapshot{}, source.ErrNotFound
		}
		return report.Snapshot{}, fmt.Errorf("query report snapshot: %w", err)
	}
	snap.Kind = report.Kind(k)
	snap.Document = []byte(doc)
	var err error
	if from != "" {
		if snap.Period.From, err = core.ParseDate(from); err != nil {
			return report.Snapshot{}, fmt.Errorf("snapshot %s period start: %w", snap.ID, err)
		}
	}
	if to != "" {
		if snap.Period.To, err = core.ParseDate(to); err != nil {
			return report.Snapshot{}, fmt.Errorf("snapshot %s period end: %w", snap.ID, err)
		}
	}
	if snap.CreatedAt, err = time.Parse(snapshotTimeLayout, createdAt); err != nil {
		return report.Snapshot{}, fmt.Errorf("snapshot %s created_at: %w", snap.ID, err)
	}
	return snap, nil
}
