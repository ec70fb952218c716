package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print performance statistics",
	Long: `Print win rate, average win and loss, largest trades and profit factor.

Example:
  tradejournal stats --account Sim101`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Print daily P&L",
	Long: `Print P&L, trade count and wins per exit day in the import time zone.

Example:
  tradejournal calendar --month 2024-11`,
	Args: cobra.NoArgs,
	RunE: runCalendar,
}

var (
	statsAccount    string
	calendarAccount string
	calendarMonth   string
)

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(calendarCmd)

	statsCmd.Flags().StringVarP(&statsAccount, "account", "a", stats.AllAccounts, "account to summarize")
	calendarCmd.Flags().StringVarP(&calendarAccount, "account", "a", stats.AllAccounts, "account to summarize")
	calendarCmd.Flags().StringVarP(&calendarMonth, "month", "m", "", "month as YYYY-MM (default all)")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	trades, err := store.LoadTrades(ctx)
	if err != nil {
		return fmt.Errorf("load trades: %w", err)
	}

	out := cmd.OutOrStdout()
	stats.Print(out, "Account: "+statsAccount, stats.Summarize(stats.FilterAccount(trades, statsAccount)))
	fmt.Fprintf(out, "\nAccounts: %v\n", stats.Accounts(trades))
	return nil
}

func runCalendar(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	opts, err := importOptions()
	if err != nil {
		return err
	}
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	trades, err := store.LoadTrades(ctx)
	if err != nil {
		return fmt.Errorf("load trades: %w", err)
	}

	days := stats.Calendar(stats.FilterAccount(trades, calendarAccount), opts.Location)
	if calendarMonth != "" {
		y, m, err := stats.ParseMonth(calendarMonth)
		if err != nil {
			return fmt.Errorf("month: %w", err)
		}
		days = stats.Month(days, y, m)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "DATE\tTRADES\tWINS\tPNL\t")
	for _, d := range days {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t\n", d.Date, d.Trades, d.Wins, d.PnL)
	}
	return tw.Flush()
}
