package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"gstbooks/internal/core"
	"gstbooks/internal/source"
)

const defaultSheetName = "Transactions"

// Ensure interface conformance
var (
	_ source.TransactionSource = (*Client)(nil)
	_ source.TransactionWriter = (*Client)(nil)
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Options configures a Client. Exactly one of CredentialsJSON or
// CredentialsFile should be set.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.SpreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if opts.SheetName == "" {
		opts.SheetName = defaultSheetName
	}

	creds, err := credentialsJSON(opts)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created",
		"spreadsheet_id", opts.SpreadsheetID,
		"sheet", opts.SheetName)

	return &Client{svc: svc, spreadsheetID: opts.SpreadsheetID, sheetName: opts.SheetName}, nil
}

func credentialsJSON(opts Options) ([]byte, error) {
	switch {
	case opts.CredentialsJSON != "":
		return []byte(opts.CredentialsJSON), nil
	case opts.CredentialsFile != "":
		data, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
}

// ListTransactions reads the whole sheet and filters in memory. Rows that do
// not parse are skipped and counted in the log.
func (c *Client) ListTransactions(ctx context.Context, f core.Filter) ([]core.Transaction, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:H", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	txs, skipped := parseTransactionRows(resp.Values)
	if len(skipped) > 0 {
		slog.WarnContext(ctx, "Skipped unparseable sheet rows",
			"sheet", c.sheetName,
			"count", len(skipped),
			"first_error", skipped[0].Error())
	}

	out := f.Apply(txs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

// SaveTransaction appends one row in the sheet's column order.
func (c *Client) SaveTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if c.svc == nil {
		return core.Transaction{}, errors.New("sheets service not initialized")
	}
	if tx.ID == "" {
		tx.ID = newID()
	}

	vr := &gsheet.ValueRange{Values: [][]interface{}{transactionRow(tx)}}
	rng := fmt.Sprintf("%s!A:H", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("append to %s: %w", rng, err)
	}

	ref := ""
	if resp.Updates != nil {
		ref = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Transaction appended to sheet",
		"id", tx.ID,
		"sheets_ref", ref,
		"amount", tx.Amount.String())
	return tx, nil
}
