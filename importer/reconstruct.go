// Package importer turns a broker execution export into journal trades.
package importer

import (
	"fmt"
	"time"

	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/fills"
	"github.com/rustyeddy/tradejournal/market"
	"github.com/rustyeddy/tradejournal/pkg/id"
	"github.com/rustyeddy/tradejournal/trade"
)

// Options controls parsing, grouping and pricing.
type Options struct {
	Location       *time.Location
	Window         time.Duration
	DefaultAccount string
	SourceLabel    string
	Table          market.Table
}

// DefaultOptions matches config.Default.
func DefaultOptions() Options {
	return Options{
		Location:       time.Local,
		Window:         fills.DefaultWindow,
		DefaultAccount: fills.DefaultAccount,
		SourceLabel:    "NinjaTrader",
		Table:          market.DefaultTable,
	}
}

// OptionsFromConfig resolves the import section and instrument table.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	loc, err := cfg.Import.Location()
	if err != nil {
		return Options{}, fmt.Errorf("import.timezone: %w", err)
	}
	w, err := cfg.Import.Window()
	if err != nil {
		return Options{}, fmt.Errorf("import.group_window: %w", err)
	}
	return Options{
		Location:       loc,
		Window:         w,
		DefaultAccount: cfg.Import.DefaultAccount,
		SourceLabel:    cfg.Import.SourceLabel,
		Table:          cfg.Table(),
	}, nil
}

func (o Options) parse() fills.ParseOptions {
	return fills.ParseOptions{Location: o.Location, DefaultAccount: o.DefaultAccount}
}

func (o Options) window() time.Duration {
	if o.Window <= 0 {
		return fills.DefaultWindow
	}
	return o.Window
}

func (o Options) table() market.Table {
	if len(o.Table) == 0 {
		return market.DefaultTable
	}
	return o.Table
}

// Reconstruct builds priced trades from executions in file order (newest
// first). Every trade gets an id and import notes.
func Reconstruct(execs []fills.Execution, opts Options) ([]trade.Trade, trade.Diagnostics) {
	ordered := fills.Reverse(execs)
	orders := fills.Group(ordered, opts.window())
	trades, diags := trade.Match(orders, opts.table())

	for i := range trades {
		trades[i].ID = id.At(trades[i].EntryDate)
		trades[i].Notes = Notes(opts.SourceLabel, trades[i].Exits)
		trades[i].Tags = []string{}
		trades[i].Mistakes = []string{}
	}
	return trades, diags
}

// Notes is the note attached to an imported trade.
func Notes(source string, exits int) string {
	if source == "" {
		source = "broker export"
	}
	n := "Imported from " + source
	if exits > 1 {
		n += fmt.Sprintf(" (scaled out: %d exits)", exits)
	}
	return n
}
