package trade

import "fmt"

// Kind classifies a recoverable pipeline condition.
type Kind string

const (
	RowParseError         Kind = "row_parse_error"
	UnmatchedInstrument   Kind = "unmatched_instrument"
	StrayExitIgnored      Kind = "stray_exit_ignored"
	AbandonedEntryDropped Kind = "abandoned_entry_dropped"
	DuplicateTradeSkipped Kind = "duplicate_trade_skipped"
)

// Diagnostic reports a condition the pipeline recovered from.
type Diagnostic struct {
	Kind    Kind   `json:"kind"`
	Line    int    `json:"line,omitempty"`
	Symbol  string `json:"symbol,omitempty"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", d.Kind, d.Line, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// Diagnostics is an ordered diagnostics list.
type Diagnostics []Diagnostic

// Count returns how many diagnostics have kind k.
func (ds Diagnostics) Count(k Kind) int {
	n := 0
	for _, d := range ds {
		if d.Kind == k {
			n++
		}
	}
	return n
}

// Of returns the diagnostics of kind k.
func (ds Diagnostics) Of(k Kind) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Kind == k {
			out = append(out, d)
		}
	}
	return out
}
