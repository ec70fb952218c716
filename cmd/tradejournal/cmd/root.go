package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/importer"
	"github.com/rustyeddy/tradejournal/internal/logger"
	"github.com/rustyeddy/tradejournal/journal"
)

var rootCmd = &cobra.Command{
	Use:   "tradejournal",
	Short: "Futures trade journal built from broker execution exports",
	Long: `Tradejournal reconstructs round-trip trades from a broker's execution
export and keeps them in a journal.

It provides tools for:
  - Importing NinjaTrader execution CSV files without duplicating trades
  - Listing, annotating and deleting journal trades
  - Win rate, profit factor and daily P&L calendars per account
  - Exporting the journal as CSV, JSON or org-mode
  - Serving the journal over HTTP`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

var (
	configPath string
	logLevel   string

	// cfg is loaded by setup before any subcommand runs.
	cfg *config.Config
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
}

func setup(cmd *cobra.Command, args []string) error {
	// A missing .env is normal.
	_ = godotenv.Load()

	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	cfg = c

	return logger.InitWithConfig(logger.LogConfig{
		Level:          c.Log.Level,
		Format:         c.Log.Format,
		TracingEnabled: c.Log.Tracing,
		Output:         cmd.ErrOrStderr(),
		TraceOutput:    cmd.ErrOrStderr(),
	})
}

func teardown(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return logger.Shutdown(ctx)
}

func openStore(ctx context.Context) (journal.Store, error) {
	s, err := journal.Open(ctx, cfg.Journal.Options())
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return s, nil
}

func importOptions() (importer.Options, error) {
	return importer.OptionsFromConfig(cfg)
}
