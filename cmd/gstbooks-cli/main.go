// Command gstbooks-cli prints one-shot reports from the configured backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"gstbooks/internal/cli"
	"gstbooks/internal/core"
	"gstbooks/internal/log"
	"gstbooks/internal/render"
	"gstbooks/internal/report"
	"gstbooks/internal/services"
)

// options are the parsed command line flags.
type options struct {
	kind   report.Kind
	period report.Period
	format render.Format
	stats  bool
	gst    bool
	top    int // negative: no category table
}

func (o options) empty() bool {
	return o.kind == "" && !o.stats && !o.gst && o.top < 0
}

// reportSource is the part of services.ReportService the CLI prints from.
type reportSource interface {
	BuildReport(ctx context.Context, kind report.Kind, period report.Period) (report.ReportDocument, error)
	Stats(ctx context.Context, f core.Filter) (core.PeriodSummary, error)
	GSTSummary(ctx context.Context, f core.Filter) (core.GSTSummary, error)
	GSTByRate(ctx context.Context, f core.Filter) ([]core.GSTRateBreakdown, error)
	Categories(ctx context.Context, f core.Filter, top int) ([]core.CategoryBreakdown, error)
}

func main() {
	var (
		kindFlag   = flag.String("report", "", "report to print: profit_loss, cash_flow or balance_sheet")
		fromFlag   = flag.String("from", "", "period start (YYYY-MM-DD, inclusive)")
		toFlag     = flag.String("to", "", "period end (YYYY-MM-DD, inclusive)")
		gstFlag    = flag.Bool("gst", false, "print the GST summary with rate slabs")
		statsFlag  = flag.Bool("stats", false, "print income and expense totals")
		topFlag    = flag.Int("categories", -1, "print the category breakdown; N > 0 keeps the top N")
		formatFlag = flag.String("format", "text", "output format: text or markdown")
		fyFlag     = flag.Bool("fy", false, "use the current financial year to date as the period")
	)
	flag.Parse()

	cli.LoadEnvFile()
	// Keep stdout for the tables.
	logCfg := log.DefaultConfig()
	logCfg.Component = log.ComponentCLI
	logCfg.Level = log.ParseLevel(os.Getenv("LOG_LEVEL"))
	logCfg.Format = os.Getenv("LOG_FORMAT")
	logCfg.Output = os.Stderr
	logger := log.New(logCfg)
	log.SetDefault(logger)

	opts := options{stats: *statsFlag, gst: *gstFlag, top: *topFlag}
	var err error
	opts.format, err = render.ParseFormat(*formatFlag)
	cli.ExitOnError(logger, "Invalid -format", err)
	if *kindFlag != "" {
		opts.kind, err = report.ParseKind(*kindFlag)
		cli.ExitOnError(logger, "Invalid -report", err)
	}
	if opts.empty() {
		fmt.Fprintln(os.Stderr, "nothing to print: use -report, -gst, -stats or -categories")
		flag.Usage()
		os.Exit(2)
	}
	opts.period, err = periodFromFlags(*fromFlag, *toFlag, *fyFlag, time.Now())
	cli.ExitOnError(logger, "Invalid period", err)

	// run closes the backend before its error reaches ExitOnError.
	cli.ExitOnError(logger, "Failed to print reports", run(logger, opts))
}

func run(logger *log.Logger, opts options) error {
	cfg := cli.LoadAndValidateConfig(logger)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result := cli.OpenBackend(ctx, logger, cfg)
	defer result.Close()
	svc, stopCache := cli.NewReportService(cfg, result, nil, logger)
	defer stopCache()

	return printReports(ctx, svc, opts, os.Stdout)
}

// printReports writes every requested table to out, stopping at the first error.
func printReports(ctx context.Context, svc reportSource, opts options, out io.Writer) error {
	f := opts.period.Filter()

	if opts.kind != "" {
		doc, err := svc.BuildReport(ctx, opts.kind, opts.period)
		if err != nil {
			return fmt.Errorf("build %s: %w", opts.kind, err)
		}
		render.Report(out, doc, opts.format)
		fmt.Fprintln(out)
	}
	if opts.stats {
		summary, err := svc.Stats(ctx, f)
		if err != nil {
			return fmt.Errorf("compute stats: %w", err)
		}
		render.Stats(out, summary, opts.format)
		fmt.Fprintln(out)
	}
	if opts.gst {
		summary, err := svc.GSTSummary(ctx, f)
		if err != nil {
			return fmt.Errorf("summarize GST: %w", err)
		}
		slabs, err := svc.GSTByRate(ctx, f)
		if err != nil {
			return fmt.Errorf("summarize GST by rate: %w", err)
		}
		render.GST(out, summary, slabs, opts.format)
		fmt.Fprintln(out)
	}
	if opts.top >= 0 {
		groups, err := svc.Categories(ctx, f, opts.top)
		if err != nil {
			return fmt.Errorf("group categories: %w", err)
		}
		render.Categories(out, groups, opts.format)
	}
	return nil
}

// periodFromFlags resolves -from/-to, or the financial year to date with -fy.
func periodFromFlags(from, to string, fy bool, now time.Time) (report.Period, error) {
	if fy {
		if from != "" || to != "" {
			return report.Period{}, fmt.Errorf("-fy cannot be combined with -from or -to")
		}
		return services.FinancialYearToDate(now), nil
	}
	var p report.Period
	var err error
	if from != "" {
		if p.From, err = core.ParseDate(from); err != nil {
			return report.Period{}, fmt.Errorf("-from %q: %w", from, err)
		}
	}
	if to != "" {
		if p.To, err = core.ParseDate(to); err != nil {
			return report.Period{}, fmt.Errorf("-to %q: %w", to, err)
		}
	}
	if err := p.Filter().Validate(); err != nil {
		return report.Period{}, err
	}
	return p, nil
}
