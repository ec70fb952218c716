package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/stats"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the journal",
	Long: `Write the journal as CSV, JSON or org-mode.

Examples:
  tradejournal export --format csv -o trades.csv
  tradejournal export --format org --account Live`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var (
	exportFormat  string
	exportOutput  string
	exportAccount string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "csv, json or org")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVarP(&exportAccount, "account", "a", stats.AllAccounts, "account to export")
}

func runExport(cmd *cobra.Command, args []string) error {
	switch exportFormat {
	case "csv", "json", "org":
	default:
		return fmt.Errorf("unknown format %q", exportFormat)
	}

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
	trades = stats.FilterAccount(trades, exportAccount)

	var w io.Writer = cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch exportFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(trades)
	case "org":
		_, err = fmt.Fprintln(w, journal.FormatTradesOrg(trades))
	default:
		err = journal.WriteCSV(w, trades)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", exportFormat, err)
	}
	return nil
}
