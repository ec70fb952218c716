package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rustyeddy/tradejournal/fills"
	"github.com/rustyeddy/tradejournal/internal/logger"
	"github.com/rustyeddy/tradejournal/internal/observability"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/stats"
	"github.com/rustyeddy/tradejournal/trade"
)

// Result reports one import.
type Result struct {
	Rows        int               `json:"rows"`
	Trades      []trade.Trade     `json:"trades"`
	Added       []trade.Trade     `json:"added"`
	Duplicates  []trade.Trade     `json:"duplicates"`
	Accounts    []string          `json:"accounts"`
	Diagnostics trade.Diagnostics `json:"diagnostics"`
}

// Importer runs the pipeline against a Store. Imports are independent; the
// store is the only shared state.
type Importer struct {
	store   journal.Store
	opts    Options
	metrics *observability.Metrics
}

// New returns an Importer. metrics may be nil.
func New(store journal.Store, opts Options, metrics *observability.Metrics) *Importer {
	return &Importer{store: store, opts: opts, metrics: metrics}
}

// ImportFile imports the export at path.
func (im *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()
	return im.Import(ctx, f)
}

// Import parses r, reconstructs trades and inserts the new ones. Only a
// failure to read r or to use the store is returned as an error; every other
// problem is reported in Result.Diagnostics.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Result, error) {
	start := time.Now()
	op := logger.StartOperation(ctx, "import")
	ctx = op.Context()

	res, err := im.run(ctx, r)
	status := "ok"
	if err != nil {
		status = "error"
		op.EndWithError(err)
	} else {
		op.End("rows", res.Rows, "trades", len(res.Trades), "added", len(res.Added))
	}
	im.metrics.RecordImport(status, time.Since(start).Seconds(), res.Rows, len(res.Trades), len(res.Added))
	return res, err
}

func (im *Importer) run(ctx context.Context, r io.Reader) (Result, error) {
	var res Result

	execs, rejected, err := fills.Read(r, im.opts.parse())
	if err != nil {
		return res, err
	}
	res.Rows = len(execs) + len(rejected)
	for _, pe := range rejected {
		im.report(ctx, &res, trade.Diagnostic{
			Kind:    trade.RowParseError,
			Line:    pe.Line,
			Message: pe.Reason,
		})
	}

	trades, diags := Reconstruct(execs, im.opts)
	for _, d := range diags {
		im.report(ctx, &res, d)
	}
	res.Trades = trades
	res.Accounts = stats.Accounts(trades)

	saveStart := time.Now()
	ins, err := journal.Insert(ctx, im.store, trades)
	im.metrics.RecordStoreOp("insert", time.Since(saveStart).Seconds(), err)
	if err != nil {
		return res, fmt.Errorf("store trades: %w", err)
	}
	im.metrics.SetStoredTrades(ins.Total)
	res.Added = ins.Added
	res.Duplicates = ins.Duplicates
	for _, t := range ins.Duplicates {
		im.report(ctx, &res, trade.Diagnostic{
			Kind:    trade.DuplicateTradeSkipped,
			Symbol:  t.Symbol,
			Message: fmt.Sprintf("%s %s entered %s already in journal", t.Symbol, t.Direction, t.EntryDate.Format(time.RFC3339)),
		})
	}

	logger.Info(ctx, "Import complete",
		"rows", res.Rows,
		"trades", len(res.Trades),
		"added", len(res.Added),
		"duplicates", len(res.Duplicates),
		"diagnostics", len(res.Diagnostics),
	)
	return res, nil
}

func (im *Importer) report(ctx context.Context, res *Result, d trade.Diagnostic) {
	res.Diagnostics = append(res.Diagnostics, d)
	im.metrics.RecordDiagnostic(string(d.Kind))
	logger.Event(ctx, "diagnostic", "kind", string(d.Kind), "line", d.Line, "symbol", d.Symbol)

	switch d.Kind {
	case trade.UnmatchedInstrument, trade.RowParseError:
		logger.Warn(ctx, d.Message, diagAttrs(d)...)
	default:
		logger.Debug(ctx, d.Message, diagAttrs(d)...)
	}
}

func diagAttrs(d trade.Diagnostic) []any {
	attrs := []any{slog.String("kind", string(d.Kind))}
	if d.Line > 0 {
		attrs = append(attrs, slog.Int("line", d.Line))
	}
	if d.Symbol != "" {
		attrs = append(attrs, slog.String("symbol", d.Symbol))
	}
	return attrs
}
