// Package fills turns a broker execution log into typed executions and
// collapses split fills into logical orders.
package fills

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side is the broker action of a fill.
type Side string

const (
	Buy  Side = "Buy"
	Sell Side = "Sell"
)

// ParseSide accepts Buy/Sell in any case.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Role is the broker's flag for whether a fill opens or closes exposure.
type Role string

const (
	Entry Role = "Entry"
	Exit  Role = "Exit"
)

// ParseRole accepts Entry/Exit in any case.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "entry":
		return Entry, nil
	case "exit":
		return Exit, nil
	}
	return "", fmt.Errorf("unknown entry/exit flag %q", s)
}

// Execution is one broker-reported fill.
type Execution struct {
	Instrument string
	Side       Side
	Quantity   int
	Price      decimal.Decimal
	Time       time.Time
	Role       Role
	Account    string

	// Line is the 1-based line of the source file, 0 when unknown.
	Line int
}

// Order is one or more executions collapsed into a single logical order.
// Price is the quantity-weighted average of the merged fills, Quantity their
// sum and Time the anchor (first) fill's timestamp.
type Order struct {
	Execution
	Fills int
}

// Reverse returns execs in the opposite order. Broker logs are newest-first.
func Reverse(execs []Execution) []Execution {
	out := make([]Execution, len(execs))
	for i, e := range execs {
		out[len(execs)-1-i] = e
	}
	return out
}
