package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a broker execution export",
	Long: `Parse an execution CSV export (newest row first), rebuild round-trip
trades and add the ones not already in the journal.

Rows that cannot be parsed, exits with no open position and instruments
without a multiplier rule are reported, not fatal.

Example:
  tradejournal import ~/Downloads/NinjaTrader_Executions.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var (
	importAccount string
	importSource  string
	importVerbose bool
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importAccount, "account", "", "account for rows without one (overrides config)")
	importCmd.Flags().StringVar(&importSource, "source", "", "label recorded in trade notes (overrides config)")
	importCmd.Flags().BoolVarP(&importVerbose, "verbose", "v", false, "print every diagnostic")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	opts, err := importOptions()
	if err != nil {
		return err
	}
	if importAccount != "" {
		opts.DefaultAccount = importAccount
	}
	if importSource != "" {
		opts.SourceLabel = importSource
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := importer.New(store, opts, nil).ImportFile(ctx, args[0])
	if err != nil {
		return fmt.Errorf("import %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported %s\n", args[0])
	fmt.Fprintf(out, "  Rows:        %d\n", res.Rows)
	fmt.Fprintf(out, "  Trades:      %d\n", len(res.Trades))
	fmt.Fprintf(out, "  Added:       %d\n", len(res.Added))
	fmt.Fprintf(out, "  Duplicates:  %d\n", len(res.Duplicates))
	fmt.Fprintf(out, "  Accounts:    %v\n", res.Accounts)
	fmt.Fprintf(out, "  Diagnostics: %d\n", len(res.Diagnostics))
	if importVerbose {
		for _, d := range res.Diagnostics {
			fmt.Fprintf(out, "    %s\n", d)
		}
	}
	return nil
}
