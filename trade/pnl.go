package trade

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/market"
)

// PnL returns realized profit for a trade priced with table. matched is false
// when the symbol fell back to a multiplier of 1.
//
// The result depends only on the stored fields, so recomputing a persisted
// trade always gives the same value for the same table.
func PnL(t Trade, table market.Table) (pnl float64, matched bool) {
	mult, matched := table.Multiplier(t.Symbol)
	d := Calc(t.Direction, decimal.NewFromFloat(t.EntryPrice), decimal.NewFromFloat(t.ExitPrice), t.Quantity, decimal.NewFromFloat(mult))
	return d.InexactFloat64(), matched
}

// Calc is the signed point move times multiplier times quantity.
func Calc(dir Direction, entry, exit decimal.Decimal, qty int, mult decimal.Decimal) decimal.Decimal {
	diff := exit.Sub(entry)
	if dir == Short {
		diff = diff.Neg()
	}
	return diff.Mul(mult).Mul(decimal.NewFromInt(int64(qty)))
}

// WeightedPrice is Σ(price·qty) / Σqty, or zero for no quantity.
func WeightedPrice(prices []decimal.Decimal, qtys []int) decimal.Decimal {
	var num, den decimal.Decimal
	for i, p := range prices {
		q := decimal.NewFromInt(int64(qtys[i]))
		num = num.Add(p.Mul(q))
		den = den.Add(q)
	}
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}
