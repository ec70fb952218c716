package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/marketdata"
)

var barsCmd = &cobra.Command{
	Use:   "bars <ticker>",
	Short: "Download OHLC bars as CSV",
	Long: `Download aggregate bars from the market data provider and print them as
CSV. With --trade the range covers the trade plus --pad on each side.

Examples:
  tradejournal bars ES --from 2024-11-14T09:00:00Z --to 2024-11-14T11:00:00Z -t 1m
  tradejournal bars ES --trade 01J9Z3... --pad 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBars,
}

var defaultHTTPClient = &http.Client{Timeout: 30 * time.Second}

var (
	barsFrom      string
	barsTo        string
	barsTimeframe string
	barsTrade     string
	barsPad       time.Duration
)

func init() {
	rootCmd.AddCommand(barsCmd)

	barsCmd.Flags().StringVar(&barsFrom, "from", "", "start time (RFC3339)")
	barsCmd.Flags().StringVar(&barsTo, "to", "", "end time (RFC3339)")
	barsCmd.Flags().StringVarP(&barsTimeframe, "timeframe", "t", "1m", "bar size: 1m, 5m, 1h, 1d")
	barsCmd.Flags().StringVar(&barsTrade, "trade", "", "use the entry and exit time of this trade")
	barsCmd.Flags().DurationVar(&barsPad, "pad", 30*time.Minute, "time added around --trade")
}

func runBars(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	start, end, err := barsRange(cmd)
	if err != nil {
		return err
	}

	client := &marketdata.Client{
		BaseURL: cfg.MarketData.BaseURL,
		APIKey:  cfg.MarketData.APIKey,
		HTTP:    defaultHTTPClient,
	}
	bars, err := client.FetchBars(ctx, args[0], start, end, barsTimeframe)
	if err != nil {
		return fmt.Errorf("fetch bars: %w", err)
	}
	return marketdata.WriteCSV(cmd.OutOrStdout(), bars)
}

func barsRange(cmd *cobra.Command) (time.Time, time.Time, error) {
	if barsTrade != "" {
		store, err := openStore(cmd.Context())
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		defer store.Close()

		t, err := journal.Get(cmd.Context(), store, barsTrade)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("get trade: %w", err)
		}
		return t.EntryDate.Add(-barsPad), t.ExitDate.Add(barsPad), nil
	}

	if barsFrom == "" || barsTo == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("--from and --to are required without --trade")
	}
	start, err := time.Parse(time.RFC3339, barsFrom)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--from: %w", err)
	}
	end, err := time.Parse(time.RFC3339, barsTo)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--to: %w", err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to must be after --from")
	}
	return start, end, nil
}
