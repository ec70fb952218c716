package trade

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/fills"
	"github.com/rustyeddy/tradejournal/market"
)

// Position is an open round trip: the entry order and the exits collected
// since.
type Position struct {
	Entry fills.Order
	Exits []fills.Order
}

// State of the matcher. A nil Position means flat.
type State struct {
	Position *Position
}

// Flat reports whether no position is open.
func (s State) Flat() bool { return s.Position == nil }

// Step applies one order, oldest first. closed is set when the order completed
// a position; diag is set when an order was dropped.
//
// An Entry arriving while the open position has no exits replaces it and the
// earlier entry is dropped without a trade.
func Step(s State, o fills.Order) (next State, closed *Position, diag *Diagnostic) {
	switch o.Role {
	case fills.Entry:
		next = State{Position: &Position{Entry: o}}
		if s.Position == nil {
			return next, nil, nil
		}
		if len(s.Position.Exits) > 0 {
			return next, s.Position, nil
		}
		prev := s.Position.Entry
		return next, nil, &Diagnostic{
			Kind:    AbandonedEntryDropped,
			Line:    prev.Line,
			Symbol:  prev.Instrument,
			Message: fmt.Sprintf("%s %d %s @ %s superseded by a new entry before any exit", prev.Side, prev.Quantity, prev.Instrument, prev.Price),
		}

	case fills.Exit:
		if s.Position == nil {
			return s, nil, &Diagnostic{
				Kind:    StrayExitIgnored,
				Line:    o.Line,
				Symbol:  o.Instrument,
				Message: fmt.Sprintf("%s %d %s @ %s with no open position", o.Side, o.Quantity, o.Instrument, o.Price),
			}
		}
		p := *s.Position
		p.Exits = append(p.Exits[:len(p.Exits):len(p.Exits)], o)
		return State{Position: &p}, nil, nil
	}

	return s, nil, nil
}

// Finish ends the stream. An open position with exits is returned for
// closing; one without exits is dropped.
func Finish(s State) (closed *Position, diag *Diagnostic) {
	if s.Position == nil {
		return nil, nil
	}
	if len(s.Position.Exits) > 0 {
		return s.Position, nil
	}
	e := s.Position.Entry
	return nil, &Diagnostic{
		Kind:    AbandonedEntryDropped,
		Line:    e.Line,
		Symbol:  e.Instrument,
		Message: fmt.Sprintf("%s %d %s @ %s still open at end of input", e.Side, e.Quantity, e.Instrument, e.Price),
	}
}

// Close converts a position with at least one exit into a priced trade.
// diag is set when the instrument fell back to a multiplier of 1.
//
// The exit price is weighted across all exits, the exit time is the first
// exit's and the quantity is the entry's. Exit quantity is not reconciled
// against entry quantity.
func Close(p Position, table market.Table) (Trade, *Diagnostic) {
	prices := make([]decimal.Decimal, len(p.Exits))
	qtys := make([]int, len(p.Exits))
	for i, x := range p.Exits {
		prices[i] = x.Price
		qtys[i] = x.Quantity
	}

	dir := Long
	if p.Entry.Side == fills.Sell {
		dir = Short
	}

	t := Trade{
		Symbol:     p.Entry.Instrument,
		Direction:  dir,
		EntryPrice: p.Entry.Price.InexactFloat64(),
		ExitPrice:  WeightedPrice(prices, qtys).InexactFloat64(),
		EntryDate:  p.Entry.Time,
		ExitDate:   p.Exits[0].Time,
		Quantity:   p.Entry.Quantity,
		Account:    p.Entry.Account,
		Exits:      len(p.Exits),
	}

	pnl, matched := PnL(t, table)
	t.PnL = pnl
	if !matched {
		return t, &Diagnostic{
			Kind:    UnmatchedInstrument,
			Line:    p.Entry.Line,
			Symbol:  t.Symbol,
			Message: fmt.Sprintf("no multiplier rule for %q, using 1", t.Symbol),
		}
	}
	return t, nil
}

// Match folds orders through the state machine and returns the closed trades
// in order, plus every dropped order and unmatched instrument.
func Match(orders []fills.Order, table market.Table) ([]Trade, Diagnostics) {
	var (
		state  State
		trades []Trade
		diags  Diagnostics
	)

	emit := func(p *Position) {
		t, d := Close(*p, table)
		trades = append(trades, t)
		if d != nil {
			diags = append(diags, *d)
		}
	}

	for _, o := range orders {
		next, closed, d := Step(state, o)
		if d != nil {
			diags = append(diags, *d)
		}
		if closed != nil {
			emit(closed)
		}
		state = next
	}

	closed, d := Finish(state)
	if d != nil {
		diags = append(diags, *d)
	}
	if closed != nil {
		emit(closed)
	}
	return trades, diags
}
