// market/instruments.go
package market

import (
	"fmt"
	"strings"
)

// Rule maps a symbol pattern to the dollar value of a one point move for a
// single contract. Patterns are matched by substring containment.
type Rule struct {
	Pattern    string  `json:"pattern" yaml:"pattern"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

// Table is an ordered rule list evaluated first-match-wins.
//
// Micro contracts must come before their full-size roots: "MESZ4" contains
// "ES", so an "ES" rule listed first would price a micro at 50 instead of 5.
type Table []Rule

// DefaultTable is the built-in CME futures table.
var DefaultTable = Table{
	// micros
	{Pattern: "MES", Multiplier: 5},
	{Pattern: "MNQ", Multiplier: 2},
	{Pattern: "M2K", Multiplier: 5},
	{Pattern: "MYM", Multiplier: 0.5},
	{Pattern: "MGC", Multiplier: 10},
	{Pattern: "MCL", Multiplier: 100},

	// full size
	{Pattern: "ES", Multiplier: 50},
	{Pattern: "NQ", Multiplier: 20},
	{Pattern: "RTY", Multiplier: 50},
	{Pattern: "YM", Multiplier: 5},
	{Pattern: "GC", Multiplier: 100},
	{Pattern: "CL", Multiplier: 1000},
}

// Multiplier resolves the contract multiplier for symbol. ok is false when no
// rule matched, in which case the multiplier is 1.
func (t Table) Multiplier(symbol string) (mult float64, ok bool) {
	if r, found := t.Lookup(symbol); found {
		return r.Multiplier, true
	}
	return 1, false
}

// Lookup returns the first rule whose pattern is contained in symbol.
func (t Table) Lookup(symbol string) (Rule, bool) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	for _, r := range t {
		if r.Pattern != "" && strings.Contains(s, strings.ToUpper(r.Pattern)) {
			return r, true
		}
	}
	return Rule{}, false
}

// Validate rejects empty patterns, non-positive multipliers and rules that can
// never match because an earlier, shorter pattern already covers them.
func (t Table) Validate() error {
	for i, r := range t {
		p := strings.ToUpper(strings.TrimSpace(r.Pattern))
		if p == "" {
			return fmt.Errorf("instrument rule %d: empty pattern", i)
		}
		if r.Multiplier <= 0 {
			return fmt.Errorf("instrument rule %d (%s): multiplier must be positive", i, r.Pattern)
		}
		for j := 0; j < i; j++ {
			prev := strings.ToUpper(strings.TrimSpace(t[j].Pattern))
			if strings.Contains(p, prev) {
				return fmt.Errorf("instrument rule %d (%s) is shadowed by rule %d (%s)", i, r.Pattern, j, t[j].Pattern)
			}
		}
	}
	return nil
}
