package journal

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/tradejournal/trade"
)

var csvHeader = []string{
	"trade_id", "symbol", "direction", "quantity", "entry_price", "exit_price",
	"entry_time", "exit_time", "pnl", "exits", "account",
	"playbook", "tags", "mistakes", "notes",
}

// WriteCSV writes trades with a header row.
func WriteCSV(w io.Writer, trades []trade.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, t := range trades {
		err := cw.Write([]string{
			t.ID,
			t.Symbol,
			string(t.Direction),
			strconv.Itoa(t.Quantity),
			f(t.EntryPrice),
			f(t.ExitPrice),
			t.EntryDate.Format(time.RFC3339),
			t.ExitDate.Format(time.RFC3339),
			strconv.FormatFloat(t.PnL, 'f', 2, 64),
			strconv.Itoa(t.Exits),
			t.Account,
			t.Playbook,
			strings.Join(t.Tags, ";"),
			strings.Join(t.Mistakes, ";"),
			t.Notes,
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
