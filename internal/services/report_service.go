package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"gstbooks/internal/aggregate"
	"gstbooks/internal/amqp"
	"gstbooks/internal/cache"
	"gstbooks/internal/core"
	"gstbooks/internal/gst"
	"gstbooks/internal/log"
	"gstbooks/internal/report"
	"gstbooks/internal/source"
)

var (
	// ErrSource marks failures of the underlying transaction source.
	ErrSource = errors.New("transaction source failed")
	// ErrQueueDisabled is returned by QueueReport when no publisher is configured.
	ErrQueueDisabled = errors.New("report queue is not configured")
	// ErrPublish marks a report request the broker did not accept.
	ErrPublish = errors.New("report request not published")
)

// Publisher sends report requests to the worker queue.
type Publisher interface {
	PublishReportRequest(ctx context.Context, msg *amqp.ReportRequestMessage) error
}

// Options configures a ReportService. Zero values are usable.
type Options struct {
	Writer           source.TransactionWriter
	Snapshots        source.SnapshotStore
	Publisher        Publisher
	Cache            cache.Cache[[]core.Transaction]
	OpeningBalance   decimal.Decimal
	ProjectionMonths int
	Breakdown        *report.Breakdown
	Clock            func() time.Time
	Logger           *slog.Logger
}

// ReportService answers aggregation, GST and report queries over one
// transaction source. Fetched records are cached per filter; any write
// purges the cache.
type ReportService struct {
	source           source.TransactionSource
	writer           source.TransactionWriter
	snapshots        source.SnapshotStore
	publisher        Publisher
	cache            cache.Cache[[]core.Transaction]
	assembler        *report.Assembler
	openingBalance   decimal.Decimal
	projectionMonths int
	breakdown        report.Breakdown
	logger           *slog.Logger
}

func NewReportService(src source.TransactionSource, opts Options) *ReportService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	breakdown := report.DefaultBreakdown()
	if opts.Breakdown != nil {
		breakdown = *opts.Breakdown
	}
	return &ReportService{
		source:           src,
		writer:           opts.Writer,
		snapshots:        opts.Snapshots,
		publisher:        opts.Publisher,
		cache:            opts.Cache,
		assembler:        report.NewAssembler(opts.Clock),
		openingBalance:   opts.OpeningBalance,
		projectionMonths: opts.ProjectionMonths,
		breakdown:        breakdown,
		logger:           logger,
	}
}

// Writable reports whether SaveTransaction can succeed.
func (s *ReportService) Writable() bool {
	return s.writer != nil
}

// QueueEnabled reports whether QueueReport can succeed.
func (s *ReportService) QueueEnabled() bool {
	return s.publisher != nil
}

// Transactions returns the records matching f, from cache when possible.
func (s *ReportService) Transactions(ctx context.Context, f core.Filter) ([]core.Transaction, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	key := f.Key()
	if s.cache != nil {
		if txs, ok := s.cache.Get(key); ok {
			return txs, nil
		}
	}
	txs, err := s.source.ListTransactions(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSource, err)
	}
	if s.cache != nil {
		s.cache.Set(key, txs)
	}
	return txs, nil
}

// SaveTransaction validates and stores tx.
func (s *ReportService) SaveTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if s.writer == nil {
		return core.Transaction{}, source.ErrReadOnly
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	saved, err := s.writer.SaveTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: save transaction: %w", ErrSource, err)
	}
	if s.cache != nil {
		s.cache.Purge()
	}
	s.logger.InfoContext(ctx, "Transaction saved",
		log.NewFields().WithTransaction(saved.ID, string(saved.Type), saved.Category, saved.Amount.String()).ToSlice()...)
	return saved, nil
}

func (s *ReportService) Stats(ctx context.Context, f core.Filter) (core.PeriodSummary, error) {
	txs, err := s.Transactions(ctx, f)
	if err != nil {
		return core.PeriodSummary{}, err
	}
	return aggregate.ComputeStats(txs, f), nil
}

// Categories groups the matching records by category. With top > 0 the
// result is sorted and the tail folded into "Other"; otherwise groups keep
// first-seen order.
func (s *ReportService) Categories(ctx context.Context, f core.Filter, top int) ([]core.CategoryBreakdown, error) {
	txs, err := s.Transactions(ctx, f)
	if err != nil {
		return nil, err
	}
	groups := aggregate.GroupByCategory(txs, f)
	if top > 0 {
		groups = aggregate.TopN(groups, top)
	}
	return rounded(groups), nil
}

// MonthlySeries is the month-over-month view.
type MonthlySeries struct {
	Months  []core.MonthTotal  `json:"months"`
	Changes []core.MonthChange `json:"changes"`
}

func (s *ReportService) Monthly(ctx context.Context, f core.Filter) (MonthlySeries, error) {
	txs, err := s.Transactions(ctx, f)
	if err != nil {
		return MonthlySeries{}, err
	}
	months := aggregate.MonthlyTotals(txs, f)
	return MonthlySeries{Months: months, Changes: aggregate.CompareMonths(months)}, nil
}

func (s *ReportService) GSTSummary(ctx context.Context, f core.Filter) (core.GSTSummary, error) {
	txs, err := s.Transactions(ctx, f)
	if err != nil {
		return core.GSTSummary{}, err
	}
	return gst.SummarizeFiltered(txs, f), nil
}

func (s *ReportService) GSTByRate(ctx context.Context, f core.Filter) ([]core.GSTRateBreakdown, error) {
	txs, err := s.Transactions(ctx, f)
	if err != nil {
		return nil, err
	}
	return gst.ByRate(f.Apply(txs)), nil
}

// Changes holds formatted period-over-period changes.
type Changes struct {
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
	Net      string `json:"net"`
}

// Overview is the batch dashboard payload.
type Overview struct {
	Period    report.Period            `json:"period"`
	Summary   core.PeriodSummary       `json:"summary"`
	Previous  *core.PeriodSummary      `json:"previous,omitempty"`
	Changes   *Changes                 `json:"changes,omitempty"`
	Income    []core.CategoryBreakdown `json:"incomeCategories"`
	Expenses  []core.CategoryBreakdown `json:"expenseCategories"`
	GST       core.GSTSummary          `json:"gst"`
	GSTByRate []core.GSTRateBreakdown  `json:"gstByRate"`
	Monthly   MonthlySeries            `json:"monthly"`
}

// Overview fetches the period and, when both bounds are set, the preceding
// period of equal length concurrently, then runs every engine over them.
func (s *ReportService) Overview(ctx context.Context, f core.Filter) (Overview, error) {
	if err := f.Validate(); err != nil {
		return Overview{}, err
	}

	var current, previous []core.Transaction
	comparePrevious := !f.From.IsZero() && !f.To.IsZero()
	prevFilter := f.Previous()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txs, err := s.Transactions(gctx, f)
		current = txs
		return err
	})
	if comparePrevious {
		g.Go(func() error {
			txs, err := s.Transactions(gctx, prevFilter)
			previous = txs
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	inflow, outflow := f, f
	inflow.Direction, outflow.Direction = core.Inflow, core.Outflow

	months := aggregate.MonthlyTotals(current, f)
	out := Overview{
		Period:    report.PeriodOf(f),
		Summary:   aggregate.ComputeStats(current, f),
		Income:    rounded(aggregate.TopN(aggregate.GroupByCategory(current, inflow), 0)),
		Expenses:  rounded(aggregate.TopN(aggregate.GroupByCategory(current, outflow), 0)),
		GST:       gst.SummarizeFiltered(current, f),
		GSTByRate: gst.ByRate(f.Apply(current)),
		Monthly:   MonthlySeries{Months: months, Changes: aggregate.CompareMonths(months)},
	}
	if comparePrevious {
		prev := aggregate.ComputeStats(previous, prevFilter)
		out.Previous = &prev
		out.Changes = &Changes{
			Income:   aggregate.ComputeChange(out.Summary.TotalIncome, prev.TotalIncome),
			Expenses: aggregate.ComputeChange(out.Summary.TotalExpenses, prev.TotalExpenses),
			Net:      aggregate.ComputeChange(out.Summary.NetIncome, prev.NetIncome),
		}
	}
	return out, nil
}

// BuildReport assembles one report over every record in period.
func (s *ReportService) BuildReport(ctx context.Context, kind report.Kind, period report.Period) (report.ReportDocument, error) {
	f := period.Filter()
	txs, err := s.Transactions(ctx, f)
	if err != nil {
		return report.ReportDocument{}, err
	}

	summary := aggregate.ComputeStats(txs, f)
	gstSummary := gst.SummarizeFiltered(txs, f)

	var doc report.ReportDocument
	switch kind {
	case report.KindProfitLoss:
		inflow := f
		inflow.Direction = core.Inflow
		revenue := aggregate.TopN(aggregate.GroupByCategory(txs, inflow), 0)
		doc = s.assembler.BuildProfitLoss(report.FinancialDataFrom(summary, revenue, gstSummary, s.breakdown), period)
	case report.KindCashFlow:
		data := report.CashFlowFrom(summary, gstSummary, s.openingBalance, nil, nil)
		if s.projectionMonths > 0 {
			data = data.WithProjection(aggregate.MonthlyTotals(txs, f), s.projectionMonths)
		}
		doc = s.assembler.BuildCashFlow(data, period)
	case report.KindBalanceSheet:
		doc = s.assembler.BuildBalanceSheet(report.DefaultBalanceSheet().WithPeriodResult(summary, gstSummary), period)
	default:
		return report.ReportDocument{}, core.ErrUnknownReportKind
	}

	fields := log.NewFields().WithReport(string(kind), period.From.String(), period.To.String())
	fields[log.FieldCount] = summary.TransactionCount
	s.logger.InfoContext(ctx, "Report built", fields.ToSlice()...)
	return doc, nil
}

// GenerateSnapshot builds a report and stores it.
func (s *ReportService) GenerateSnapshot(ctx context.Context, id string, kind report.Kind, period report.Period) (report.Snapshot, error) {
	if s.snapshots == nil {
		return report.Snapshot{}, fmt.Errorf("snapshot store is not configured")
	}
	doc, err := s.BuildReport(ctx, kind, period)
	if err != nil {
		return report.Snapshot{}, err
	}
	snap, err := report.NewSnapshot(id, doc)
	if err != nil {
		return report.Snapshot{}, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.snapshots.SaveReportSnapshot(ctx, snap); err != nil {
		return report.Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	return snap, nil
}

// LatestSnapshot returns the newest stored report of kind, or source.ErrNotFound.
func (s *ReportService) LatestSnapshot(ctx context.Context, kind report.Kind) (report.Snapshot, error) {
	if s.snapshots == nil {
		return report.Snapshot{}, source.ErrNotFound
	}
	return s.snapshots.LatestReportSnapshot(ctx, kind)
}

// QueueReport publishes a request for the worker to build and store a report.
func (s *ReportService) QueueReport(ctx context.Context, kind report.Kind, period report.Period) (*amqp.ReportRequestMessage, error) {
	if s.publisher == nil {
		return nil, ErrQueueDisabled
	}
	if err := period.Filter().Validate(); err != nil {
		return nil, err
	}
	msg := amqp.NewReportRequestMessage(kind, period)
	if err := s.publisher.PublishReportRequest(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to queue report request",
			"report_kind", kind,
			"error", err)
		return nil, fmt.Errorf("%w: %w", ErrPublish, err)
	}
	return msg, nil
}

func rounded(groups []core.CategoryBreakdown) []core.CategoryBreakdown {
	out := make([]core.CategoryBreakdown, len(groups))
	for i, g := range groups {
		out[i] = g.Rounded()
	}
	return out
}
