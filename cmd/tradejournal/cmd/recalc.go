package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/internal/logger"
	"github.com/rustyeddy/tradejournal/journal"
)

var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Recompute the pnl of every trade",
	Long: `Recompute every stored trade's pnl with the configured instrument
multipliers. Run it after editing the instruments section of the config.`,
	Args: cobra.NoArgs,
	RunE: runRecalc,
}

func init() {
	rootCmd.AddCommand(recalcCmd)
}

func runRecalc(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := journal.Recalculate(ctx, store, cfg.Table())
	if err != nil {
		return fmt.Errorf("recalculate: %w", err)
	}
	for _, d := range res.Diagnostics {
		logger.Warn(ctx, d.Message, "kind", string(d.Kind), "symbol", d.Symbol)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Recalculated %d trades, %d changed\n", res.Total, res.Changed)
	return nil
}
