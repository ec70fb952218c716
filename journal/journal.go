// journal/journal.go
package journal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/tradejournal/market"
	"github.com/rustyeddy/tradejournal/trade"
)

// ErrNotFound is returned when a trade id does not exist.
var ErrNotFound = errors.New("trade not found")

// PriceTolerance is the absolute price difference under which two trades with
// the same symbol, account and entry time are the same trade.
const PriceTolerance = 0.01

// Store persists the whole trade list. SaveTrades replaces the stored list
// atomically.
type Store interface {
	LoadTrades(ctx context.Context) ([]trade.Trade, error)
	SaveTrades(ctx context.Context, trades []trade.Trade) error
	Close() error
}

// Getter is implemented by stores that can fetch one trade directly.
type Getter interface {
	GetTrade(ctx context.Context, id string) (trade.Trade, error)
}

// RangeQuerier is implemented by stores that can filter by exit time.
type RangeQuerier interface {
	ListTradesClosedBetween(ctx context.Context, start, end time.Time) ([]trade.Trade, error)
}

// IsDuplicate reports whether a and b describe the same round trip.
func IsDuplicate(a, b trade.Trade) bool {
	return a.Symbol == b.Symbol &&
		a.Account == b.Account &&
		a.EntryDate.Equal(b.EntryDate) &&
		math.Abs(a.EntryPrice-b.EntryPrice) < PriceTolerance &&
		math.Abs(a.ExitPrice-b.ExitPrice) < PriceTolerance
}

// InsertResult reports what Insert kept and skipped.
type InsertResult struct {
	Added      []trade.Trade
	Duplicates []trade.Trade

	// Total is the stored trade count after the insert.
	Total int
}

// Insert appends trades that are not duplicates of stored trades or of
// earlier trades in the same batch.
func Insert(ctx context.Context, s Store, trades []trade.Trade) (InsertResult, error) {
	var res InsertResult

	existing, err := s.LoadTrades(ctx)
	if err != nil {
		return res, fmt.Errorf("load trades: %w", err)
	}

	all := existing
	for _, t := range trades {
		if containsDuplicate(all, t) {
			res.Duplicates = append(res.Duplicates, t)
			continue
		}
		all = append(all, t)
		res.Added = append(res.Added, t)
	}
	res.Total = len(all)

	if len(res.Added) == 0 {
		return res, nil
	}
	if err := s.SaveTrades(ctx, all); err != nil {
		return res, fmt.Errorf("save trades: %w", err)
	}
	return res, nil
}

func containsDuplicate(list []trade.Trade, t trade.Trade) bool {
	for _, e := range list {
		if IsDuplicate(e, t) {
			return true
		}
	}
	return false
}

// Get returns one trade by id.
func Get(ctx context.Context, s Store, tradeID string) (trade.Trade, error) {
	if g, ok := s.(Getter); ok {
		return g.GetTrade(ctx, tradeID)
	}
	trades, err := s.LoadTrades(ctx)
	if err != nil {
		return trade.Trade{}, err
	}
	for _, t := range trades {
		if t.ID == tradeID {
			return t, nil
		}
	}
	return trade.Trade{}, fmt.Errorf("trade %q: %w", tradeID, ErrNotFound)
}

// Delete removes one trade by id.
func Delete(ctx context.Context, s Store, tradeID string) error {
	trades, err := s.LoadTrades(ctx)
	if err != nil {
		return err
	}
	out := trades[:0:0]
	for _, t := range trades {
		if t.ID != tradeID {
			out = append(out, t)
		}
	}
	if len(out) == len(trades) {
		return fmt.Errorf("trade %q: %w", tradeID, ErrNotFound)
	}
	return s.SaveTrades(ctx, out)
}

// Annotate replaces the journal metadata of one trade. Execution fields are
// left untouched.
func Annotate(ctx context.Context, s Store, tradeID string, meta trade.Meta) (trade.Trade, error) {
	trades, err := s.LoadTrades(ctx)
	if err != nil {
		return trade.Trade{}, err
	}
	for i := range trades {
		if trades[i].ID != tradeID {
			continue
		}
		trades[i].Meta = meta
		if err := s.SaveTrades(ctx, trades); err != nil {
			return trade.Trade{}, err
		}
		return trades[i], nil
	}
	return trade.Trade{}, fmt.Errorf("trade %q: %w", tradeID, ErrNotFound)
}

// RecalcResult reports a Recalculate pass.
type RecalcResult struct {
	Total       int
	Changed     int
	Diagnostics trade.Diagnostics
}

// Recalculate recomputes the pnl of every stored trade with table, for use
// after the multiplier table changes.
func Recalculate(ctx context.Context, s Store, table market.Table) (RecalcResult, error) {
	var res RecalcResult

	trades, err := s.LoadTrades(ctx)
	if err != nil {
		return res, err
	}
	res.Total = len(trades)

	warned := map[string]bool{}
	for i := range trades {
		pnl, matched := trade.PnL(trades[i], table)
		if !matched && !warned[trades[i].Symbol] {
			warned[trades[i].Symbol] = true
			res.Diagnostics = append(res.Diagnostics, trade.Diagnostic{
				Kind:    trade.UnmatchedInstrument,
				Symbol:  trades[i].Symbol,
				Message: fmt.Sprintf("no multiplier rule for %q, using 1", trades[i].Symbol),
			})
		}
		if pnl != trades[i].PnL {
			trades[i].PnL = pnl
			res.Changed++
		}
	}

	if res.Changed == 0 {
		return res, nil
	}
	return res, s.SaveTrades(ctx, trades)
}

// ClosedBetween returns trades whose exit time is within [start, end),
// ordered by exit time.
func ClosedBetween(ctx context.Context, s Store, start, end time.Time) ([]trade.Trade, error) {
	if q, ok := s.(RangeQuerier); ok {
		return q.ListTradesClosedBetween(ctx, start, end)
	}
	trades, err := s.LoadTrades(ctx)
	if err != nil {
		return nil, err
	}
	var out []trade.Trade
	for _, t := range trades {
		if !t.ExitDate.Before(start) && t.ExitDate.Before(end) {
			out = append(out, t)
		}
	}
	sortByExit(out)
	return out, nil
}
