package fills

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultWindow is the split-fill merge window.
const DefaultWindow = 2 * time.Second

// Group collapses split fills into orders. execs must be oldest first.
//
// Each execution joins the first group, in creation order, with the same
// instrument, account, side and role whose anchor time is strictly within
// window of the execution. The window is measured from the group's first fill,
// not from the most recently merged one. Earlier decisions are never revisited.
func Group(execs []Execution, window time.Duration) []Order {
	if window <= 0 {
		window = DefaultWindow
	}

	groups := make([]Order, 0, len(execs))
	for _, e := range execs {
		i := findGroup(groups, e, window)
		if i < 0 {
			groups = append(groups, Order{Execution: e, Fills: 1})
			continue
		}
		groups[i] = merge(groups[i], e)
	}
	return groups
}

func findGroup(groups []Order, e Execution, window time.Duration) int {
	for i := range groups {
		g := &groups[i]
		if absDuration(e.Time.Sub(g.Time)) >= window {
			continue
		}
		if g.Role == e.Role &&
			g.Side == e.Side &&
			g.Account == e.Account &&
			g.Instrument == e.Instrument {
			return i
		}
	}
	return -1
}

// merge folds e into g, weighting prices by the quantities held before the merge.
func merge(g Order, e Execution) Order {
	gq := decimal.NewFromInt(int64(g.Quantity))
	eq := decimal.NewFromInt(int64(e.Quantity))
	total := gq.Add(eq)

	g.Price = g.Price.Mul(gq).Add(e.Price.Mul(eq)).Div(total)
	g.Quantity += e.Quantity
	g.Fills++
	return g
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
