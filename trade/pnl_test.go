package trade

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/tradejournal/market"
)

func TestPnL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		trade    Trade
		expected float64
		matched  bool
	}{
		{
			name:     "long_profit_micro",
			trade:    Trade{Symbol: "MESZ4", Direction: Long, EntryPrice: 100, ExitPrice: 110, Quantity: 2},
			expected: 100,
			matched:  true,
		},
		{
			name:     "long_loss",
			trade:    Trade{Symbol: "ESZ4", Direction: Long, EntryPrice: 100, ExitPrice: 99.75, Quantity: 1},
			expected: -12.5,
			matched:  true,
		},
		{
			name:     "short_profit",
			trade:    Trade{Symbol: "NQH5", Direction: Short, EntryPrice: 20000, ExitPrice: 19990.5, Quantity: 2},
			expected: 380,
			matched:  true,
		},
		{
			name:     "short_loss",
			trade:    Trade{Symbol: "MNQH5", Direction: Short, EntryPrice: 20000, ExitPrice: 20010, Quantity: 3},
			expected: -60,
			matched:  true,
		},
		{
			name:     "flat",
			trade:    Trade{Symbol: "ESZ4", Direction: Long, EntryPrice: 100, ExitPrice: 100, Quantity: 5},
			expected: 0,
			matched:  true,
		},
		{
			name:     "unmatched_defaults_to_one",
			trade:    Trade{Symbol: "AAPL", Direction: Long, EntryPrice: 100, ExitPrice: 101.1, Quantity: 10},
			expected: 11,
			matched:  false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, matched := PnL(tt.trade, market.DefaultTable)
			assert.InDelta(t, tt.expected, got, 1e-9)
			assert.Equal(t, tt.matched, matched)
		})
	}
}

func TestPnLSign(t *testing.T) {
	t.Parallel()

	prices := []float64{99, 100, 101}
	for _, exit := range prices {
		long, _ := PnL(Trade{Symbol: "ES", Direction: Long, EntryPrice: 100, ExitPrice: exit, Quantity: 1}, market.DefaultTable)
		short, _ := PnL(Trade{Symbol: "ES", Direction: Short, EntryPrice: 100, ExitPrice: exit, Quantity: 1}, market.DefaultTable)
		assert.Equal(t, exit > 100, long > 0)
		assert.Equal(t, exit < 100, short > 0)
	}
}

func TestPnLIsIdempotent(t *testing.T) {
	t.Parallel()

	tr := Trade{Symbol: "MESZ4", Direction: Short, EntryPrice: 5001.25, ExitPrice: 4998.333333333333, Quantity: 3}
	a, _ := PnL(tr, market.DefaultTable)
	tr.PnL = a
	b, _ := PnL(tr, market.DefaultTable)
	assert.Equal(t, a, b)
}

func TestWeightedPrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prices []string
		qtys   []int
		want   string
	}{
		{"single", []string{"105"}, []int{1}, "105"},
		{"scaled", []string{"105", "108"}, []int{1, 2}, "107"},
		{"quarters", []string{"5000.25", "5001.75"}, []int{1, 1}, "5001"},
		{"three", []string{"10", "20", "30"}, []int{1, 1, 2}, "22.5"},
		{"none", nil, nil, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := make([]decimal.Decimal, len(tt.prices))
			for i, p := range tt.prices {
				ps[i] = decimal.RequireFromString(p)
			}
			got := WeightedPrice(ps, tt.qtys)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}
