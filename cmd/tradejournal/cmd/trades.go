package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/stats"
	"github.com/rustyeddy/tradejournal/trade"
)

var tradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "Query and edit journal trades",
	Long: `Query and edit the trades stored in the journal.

Subcommands:
  list      - List trades, optionally for one account
  show      - Show one trade in org-mode
  day       - List trades closed on a specific day
  delete    - Remove a trade
  annotate  - Set playbook, ratings, tags, mistakes or notes

Examples:
  tradejournal trades list --account Sim101
  tradejournal trades show 01J9Z3...
  tradejournal trades day 2024-11-14
  tradejournal trades annotate 01J9Z3... --playbook ORB --tag a+`,
}

var tradesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trades",
	Args:  cobra.NoArgs,
	RunE:  runTradesList,
}

var tradesShowCmd = &cobra.Command{
	Use:   "show <trade-id>",
	Short: "Show details of a specific trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradesShow,
}

var tradesDayCmd = &cobra.Command{
	Use:   "day [YYYY-MM-DD]",
	Short: "List trades closed on a specific day (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTradesDay,
}

var tradesDeleteCmd = &cobra.Command{
	Use:   "delete <trade-id>",
	Short: "Delete a trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradesDelete,
}

var tradesAnnotateCmd = &cobra.Command{
	Use:   "annotate <trade-id>",
	Short: "Edit the journal fields of a trade",
	Long: `Edit the journal fields of a trade. Only the flags given are changed;
execution fields and pnl are never touched.`,
	Args: cobra.ExactArgs(1),
	RunE: runTradesAnnotate,
}

var (
	tradesAccount string

	annPlaybook   string
	annEntry      int
	annExit       int
	annDiscipline int
	annTags       []string
	annMistakes   []string
	annNotes      string
	annScreenshot string
)

func init() {
	rootCmd.AddCommand(tradesCmd)
	tradesCmd.AddCommand(tradesListCmd)
	tradesCmd.AddCommand(tradesShowCmd)
	tradesCmd.AddCommand(tradesDayCmd)
	tradesCmd.AddCommand(tradesDeleteCmd)
	tradesCmd.AddCommand(tradesAnnotateCmd)

	tradesListCmd.Flags().StringVarP(&tradesAccount, "account", "a", stats.AllAccounts, "account to list")
	tradesDayCmd.Flags().StringVarP(&tradesAccount, "account", "a", stats.AllAccounts, "account to list")

	f := tradesAnnotateCmd.Flags()
	f.StringVar(&annPlaybook, "playbook", "", "playbook / setup name")
	f.IntVar(&annEntry, "entry-rating", 0, "entry rating 0-5")
	f.IntVar(&annExit, "exit-rating", 0, "exit rating 0-5")
	f.IntVar(&annDiscipline, "discipline-rating", 0, "discipline rating 0-5")
	f.StringSliceVar(&annTags, "tag", nil, "tags (replaces existing)")
	f.StringSliceVar(&annMistakes, "mistake", nil, "mistakes (replaces existing)")
	f.StringVar(&annNotes, "notes", "", "free-form notes")
	f.StringVar(&annScreenshot, "screenshot", "", "screenshot path or URL")
}

func runTradesList(cmd *cobra.Command, args []string) error {
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
	return printTrades(cmd.OutOrStdout(), stats.FilterAccount(trades, tradesAccount))
}

func runTradesShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	t, err := journal.Get(ctx, store, args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradeOrg(t))
	return nil
}

func runTradesDay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	opts, err := importOptions()
	if err != nil {
		return err
	}
	loc := opts.Location
	day := time.Now().In(loc).Format(time.DateOnly)
	if len(args) == 1 {
		day = args[0]
	}
	start, end, err := dayBounds(loc, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := journal.ClosedBetween(ctx, store, start, end)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradesOrg(stats.FilterAccount(recs, tradesAccount)))
	return nil
}

func runTradesDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := journal.Delete(ctx, store, args[0]); err != nil {
		return fmt.Errorf("delete trade: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted trade %s\n", args[0])
	return nil
}

func runTradesAnnotate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	cur, err := journal.Get(ctx, store, args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}

	m := cur.Meta
	f := cmd.Flags()
	if f.Changed("playbook") {
		m.Playbook = annPlaybook
	}
	if f.Changed("entry-rating") {
		m.EntryRating = annEntry
	}
	if f.Changed("exit-rating") {
		m.ExitRating = annExit
	}
	if f.Changed("discipline-rating") {
		m.DisciplineRating = annDiscipline
	}
	if f.Changed("tag") {
		m.Tags = annTags
	}
	if f.Changed("mistake") {
		m.Mistakes = annMistakes
	}
	if f.Changed("notes") {
		m.Notes = annNotes
	}
	if f.Changed("screenshot") {
		m.Screenshot = annScreenshot
	}

	updated, err := journal.Annotate(ctx, store, args[0], m)
	if err != nil {
		return fmt.Errorf("annotate trade: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradeOrg(updated))
	return nil
}

func printTrades(w io.Writer, trades []trade.Trade) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSYMBOL\tDIR\tQTY\tENTRY\tEXIT\tCLOSED\tPNL\tACCOUNT")
	for _, t := range trades {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.2f\t%.2f\t%s\t%.2f\t%s\n",
			t.ID, t.Symbol, t.Direction, t.Quantity, t.EntryPrice, t.ExitPrice,
			t.ExitDate.Format("2006-01-02 15:04:05"), t.PnL, t.Account)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d trades\n", len(trades))
	return nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1), nil
}
