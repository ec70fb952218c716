// Package trade reconstructs round-trip trades from grouped orders and prices
// them.
package trade

import (
	"time"
)

// Direction of a round trip.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// Meta is the journal annotation carried with a trade. The pipeline never
// interprets it.
type Meta struct {
	Playbook         string   `json:"playbook"`
	EntryRating      int      `json:"entryRating"`
	ExitRating       int      `json:"exitRating"`
	DisciplineRating int      `json:"disciplineRating"`
	Tags             []string `json:"tags"`
	Mistakes         []string `json:"mistakes"`
	Notes            string   `json:"notes"`
	Screenshot       string   `json:"screenshot"`
}

// Trade is a closed round trip.
type Trade struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Direction  Direction `json:"tradeType"`
	EntryPrice float64   `json:"entryPrice"`
	ExitPrice  float64   `json:"exitPrice"`
	EntryDate  time.Time `json:"entryDate"`
	ExitDate   time.Time `json:"exitDate"`
	Quantity   int       `json:"quantity"`
	Account    string    `json:"account"`
	PnL        float64   `json:"pnl"`

	// Exits is the number of grouped exit orders that closed the trade.
	Exits int `json:"exits,omitempty"`

	Meta
}

// IsWin reports a strictly positive result.
func (t Trade) IsWin() bool { return t.PnL > 0 }

// IsLoss reports a strictly negative result.
func (t Trade) IsLoss() bool { return t.PnL < 0 }
