package stats

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/trade"
)

// Day is the realized result of one calendar day.
type Day struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	PnL    float64 `json:"pnl"`
	Trades int     `json:"trades"`
	Wins   int     `json:"wins"`
}

// Calendar buckets trades by exit date in loc, oldest day first. A nil loc
// means UTC.
func Calendar(trades []trade.Trade, loc *time.Location) []Day {
	if loc == nil {
		loc = time.UTC
	}

	sums := map[string]decimal.Decimal{}
	days := map[string]*Day{}
	for _, t := range trades {
		key := t.ExitDate.In(loc).Format(time.DateOnly)
		d, ok := days[key]
		if !ok {
			d = &Day{Date: key}
			days[key] = d
		}
		d.Trades++
		if t.IsWin() {
			d.Wins++
		}
		sums[key] = sums[key].Add(decimal.NewFromFloat(t.PnL))
	}

	out := make([]Day, 0, len(days))
	for key, d := range days {
		d.PnL = sums[key].InexactFloat64()
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Month keeps the days that fall in year/month.
func Month(days []Day, year int, month time.Month) []Day {
	prefix := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01-")
	var out []Day
	for _, d := range days {
		if len(d.Date) >= len(prefix) && d.Date[:len(prefix)] == prefix {
			out = append(out, d)
		}
	}
	return out
}

// ParseMonth parses YYYY-MM.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, err
	}
	return t.Year(), t.Month(), nil
}
