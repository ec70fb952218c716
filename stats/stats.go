// Package stats summarizes journal trades: performance numbers, accounts and
// a daily P&L calendar.
package stats

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/trade"
)

// Summary is the performance panel for a list of trades.
type Summary struct {
	Trades int `json:"totalTrades"`
	Wins   int `json:"wins"`
	Losses int `json:"losses"`

	// WinRate is a percentage, 0 for no trades.
	WinRate float64 `json:"winRate"`

	TotalPnL     float64 `json:"totalPnl"`
	AvgPnL       float64 `json:"avgPnl"`
	AvgWin       float64 `json:"avgWin"`
	AvgLoss      float64 `json:"avgLoss"`
	LargestWin   float64 `json:"largestWin"`
	LargestLoss  float64 `json:"largestLoss"`
	ProfitFactor float64 `json:"profitFactor"`
}

// Summarize computes a Summary. Trades with zero pnl count toward the total
// but are neither wins nor losses.
func Summarize(trades []trade.Trade) Summary {
	var (
		s           Summary
		total       decimal.Decimal
		grossProfit decimal.Decimal
		grossLoss   decimal.Decimal
	)

	for _, t := range trades {
		p := decimal.NewFromFloat(t.PnL)
		total = total.Add(p)
		switch {
		case t.IsWin():
			s.Wins++
			grossProfit = grossProfit.Add(p)
			if t.PnL > s.LargestWin {
				s.LargestWin = t.PnL
			}
		case t.IsLoss():
			s.Losses++
			grossLoss = grossLoss.Add(p)
			if t.PnL < s.LargestLoss {
				s.LargestLoss = t.PnL
			}
		}
	}

	s.Trades = len(trades)
	s.TotalPnL = total.InexactFloat64()
	if s.Trades > 0 {
		n := decimal.NewFromInt(int64(s.Trades))
		s.AvgPnL = total.Div(n).InexactFloat64()
		s.WinRate = float64(s.Wins) / float64(s.Trades) * 100
	}
	if s.Wins > 0 {
		s.AvgWin = grossProfit.Div(decimal.NewFromInt(int64(s.Wins))).InexactFloat64()
	}
	if s.Losses > 0 {
		s.AvgLoss = grossLoss.Div(decimal.NewFromInt(int64(s.Losses))).InexactFloat64()
		s.ProfitFactor = grossProfit.Div(grossLoss.Abs()).InexactFloat64()
	}
	return s
}

// Print writes a human readable report of s.
func Print(w io.Writer, title string, s Summary) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, " %s\n", title)
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Trades:        %d\n", s.Trades)
	fmt.Fprintf(w, "Wins:          %d\n", s.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", s.Losses)
	fmt.Fprintf(w, "Win Rate:      %.1f%%\n", s.WinRate)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "P&L")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Total:         %.2f\n", s.TotalPnL)
	fmt.Fprintf(w, "Average:       %.2f\n", s.AvgPnL)
	fmt.Fprintf(w, "Avg Win:       %.2f\n", s.AvgWin)
	fmt.Fprintf(w, "Avg Loss:      %.2f\n", s.AvgLoss)
	fmt.Fprintf(w, "Largest Win:   %.2f\n", s.LargestWin)
	fmt.Fprintf(w, "Largest Loss:  %.2f\n", s.LargestLoss)

	if s.ProfitFactor > 0 {
		fmt.Fprintf(w, "Profit Factor: %.2f\n", s.ProfitFactor)
	}
}
