package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/market"
	"github.com/rustyeddy/tradejournal/trade"
)

const sampleExport = `Instrument,Action,Quantity,Price,Time,ID,E/X,Position,Order ID,Name,Commission,Rate,Account
MNQ 12-24,Buy,1,17990,11/15/2024 10:05:00 AM,,Exit,,,,,,Live
MNQ 12-24,Sell,1,18000,11/15/2024 10:00:00 AM,,Entry,,,,,,Live
MES 12-24,Sell,2,110,11/14/2024 9:31:00 AM,,Exit,,,,,,Sim101
MES 12-24,Buy,2,100,11/14/2024 9:30:00 AM,,Entry,,,,,,Sim101
`

// resetFlags restores every flag to its default between runs of rootCmd.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	cfg = nil

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// writeConfig writes a UTC, JSON-journal config into a temp dir.
func writeConfig(t *testing.T, edit func(*config.Config)) (string, string) {
	t.Helper()
	t.Setenv("JOURNAL_DSN", "")
	t.Setenv("LOG_LEVEL", "")

	dir := t.TempDir()
	c := config.Default()
	c.Import.Timezone = "UTC"
	c.Journal.Path = filepath.Join(dir, "trades.json")
	c.Log.Level = "error"
	if edit != nil {
		edit(c)
	}
	path := filepath.Join(dir, "tradejournal.yaml")
	require.NoError(t, c.SaveToFile(path))
	return path, dir
}

func importSample(t *testing.T, cfgPath, dir string) {
	t.Helper()

	csvPath := filepath.Join(dir, "executions.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleExport), 0o644))
	out, err := execute(t, "--config", cfgPath, "import", csvPath)
	require.NoError(t, err)
	require.Contains(t, out, "Added:       2")
}

func exportJSON(t *testing.T, cfgPath string) []trade.Trade {
	t.Helper()

	out, err := execute(t, "--config", cfgPath, "export", "--format", "json")
	require.NoError(t, err)
	var trades []trade.Trade
	require.NoError(t, json.Unmarshal([]byte(out), &trades))
	return trades
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "tradejournal version "+version+"\n", out)
}

func TestImportIsIdempotent(t *testing.T) {
	cfgPath, dir := writeConfig(t, nil)
	importSample(t, cfgPath, dir)

	out, err := execute(t, "--config", cfgPath, "import", "-v", filepath.Join(dir, "executions.csv"))
	require.NoError(t, err)
	assert.Contains(t, out, "Added:       0")
	assert.Contains(t, out, "Duplicates:  2")
	assert.Contains(t, out, string(trade.DuplicateTradeSkipped))

	_, err = execute(t, "--config", cfgPath, "import", filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestTradesCommands(t *testing.T) {
	cfgPath, dir := writeConfig(t, nil)
	importSample(t, cfgPath, dir)

	out, err := execute(t, "--config", cfgPath, "trades", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "MES 12-24")
	assert.Contains(t, out, "MNQ 12-24")
	assert.Contains(t, out, "2 trades")

	out, err = execute(t, "--config", cfgPath, "trades", "list", "--account", "Live")
	require.NoError(t, err)
	assert.NotContains(t, out, "MES 12-24")
	assert.Contains(t, out, "1 trades")

	out, err = execute(t, "--config", cfgPath, "trades", "day", "2024-11-15")
	require.NoError(t, err)
	assert.Contains(t, out, "** Trade: MNQ 12-24 short")
	assert.NotContains(t, out, "MES 12-24")

	trades := exportJSON(t, cfgPath)
	require.Len(t, trades, 2)
	tradeID := trades[0].ID

	out, err = execute(t, "--config", cfgPath, "trades", "show", tradeID)
	require.NoError(t, err)
	assert.Contains(t, out, ":TRADE_ID: "+tradeID)
	assert.Contains(t, out, ":PNL: 100.00")

	out, err = execute(t, "--config", cfgPath, "trades", "annotate", tradeID,
		"--playbook", "ORB", "--tag", "a+,trend", "--entry-rating", "4")
	require.NoError(t, err)
	assert.Contains(t, out, ":PLAYBOOK: ORB")
	assert.Contains(t, out, ":TAGS: a+ trend")

	got := exportJSON(t, cfgPath)[0]
	assert.Equal(t, 4, got.EntryRating)
	assert.Equal(t, "Imported from NinjaTrader", got.Notes)
	assert.Equal(t, 100.0, got.PnL)

	out, err = execute(t, "--config", cfgPath, "trades", "delete", tradeID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted trade "+tradeID)

	_, err = execute(t, "--config", cfgPath, "trades", "show", tradeID)
	assert.ErrorContains(t, err, "not found")
	assert.Len(t, exportJSON(t, cfgPath), 1)
}

func TestStatsAndCalendar(t *testing.T) {
	cfgPath, dir := writeConfig(t, nil)
	importSample(t, cfgPath, dir)

	out, err := execute(t, "--config", cfgPath, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Account: all")
	assert.Contains(t, out, "Trades:        2")
	assert.Contains(t, out, "Total:         120.00")
	assert.Contains(t, out, "Accounts: [Sim101 Live]")

	out, err = execute(t, "--config", cfgPath, "stats", "--account", "Live")
	require.NoError(t, err)
	assert.Contains(t, out, "Total:         20.00")

	out, err = execute(t, "--config", cfgPath, "calendar", "--month", "2024-11")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-11-14")
	assert.Contains(t, out, "2024-11-15")

	out, err = execute(t, "--config", cfgPath, "calendar", "--month", "2024-10")
	require.NoError(t, err)
	assert.NotContains(t, out, "2024-11")

	_, err = execute(t, "--config", cfgPath, "calendar", "--month", "November")
	assert.Error(t, err)
}

func TestRecalcUsesConfiguredTable(t *testing.T) {
	cfgPath, dir := writeConfig(t, nil)
	importSample(t, cfgPath, dir)

	out, err := execute(t, "--config", cfgPath, "recalc")
	require.NoError(t, err)
	assert.Contains(t, out, "Recalculated 2 trades, 0 changed")

	// Same journal, MES now worth 10 per point.
	cfg2, _ := writeConfig(t, func(c *config.Config) {
		c.Journal.Path = filepath.Join(dir, "trades.json")
		c.Instruments = []market.Rule{{Pattern: "MES", Multiplier: 10}, {Pattern: "MNQ", Multiplier: 2}}
	})
	out, err = execute(t, "--config", cfg2, "recalc")
	require.NoError(t, err)
	assert.Contains(t, out, "Recalculated 2 trades, 1 changed")
}

func TestExportFormats(t *testing.T) {
	cfgPath, dir := writeConfig(t, nil)
	importSample(t, cfgPath, dir)

	out, err := execute(t, "--config", cfgPath, "export", "--format", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "trade_id,symbol,direction"))

	outFile := filepath.Join(dir, "journal.org")
	_, err = execute(t, "--config", cfgPath, "export", "--format", "org", "--account", "Sim101", "-o", outFile)
	require.NoError(t, err)
	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "** Trade: MES 12-24 long")
	assert.NotContains(t, string(data), "MNQ")

	_, err = execute(t, "--config", cfgPath, "export", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestBars(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"status":"OK","resultsCount":1,"results":[{"t":1731576600000,"o":1,"h":2,"l":0.5,"c":1.5,"v":10}]}`)
	}))
	defer srv.Close()

	cfgPath, dir := writeConfig(t, func(c *config.Config) {
		c.MarketData.BaseURL = srv.URL
	})

	out, err := execute(t, "--config", cfgPath, "bars", "ES",
		"--from", "2024-11-14T09:00:00Z", "--to", "2024-11-14T10:00:00Z", "-t", "5m")
	require.NoError(t, err)
	assert.Equal(t, "/v2/aggs/ticker/ES/range/5/minute/1731574800000/1731578400000", gotPath)
	assert.Contains(t, out, "2024-11-14T09:30:00Z,1,2,0.5,1.5,10")

	importSample(t, cfgPath, dir)
	mes := exportJSON(t, cfgPath)[0]
	_, err = execute(t, "--config", cfgPath, "bars", "ES", "--trade", mes.ID)
	require.NoError(t, err)
	assert.Equal(t, "/v2/aggs/ticker/ES/range/1/minute/1731574800000/1731578460000", gotPath)

	_, err = execute(t, "--config", cfgPath, "bars", "ES")
	assert.ErrorContains(t, err, "--from and --to")
}

func TestConfigInitAndValidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tj.yaml")

	out, err := execute(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created default configuration")
	assert.FileExists(t, path)

	out, err = execute(t, "config", "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")
	assert.Contains(t, out, "Journal: json")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("import:\n  group_window: -1s\n"), 0o644))
	_, err = execute(t, "config", "validate", "-f", bad)
	assert.ErrorContains(t, err, "validation failed")
}

func TestServeHandler(t *testing.T) {
	cfgPath, dir := writeConfig(t, nil)
	importSample(t, cfgPath, dir)

	c, err := config.Load(cfgPath)
	require.NoError(t, err)
	cfg = c

	store, err := openStore(context.Background())
	require.NoError(t, err)
	defer store.Close()

	h, err := newHandler(store)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/trades?account=Live", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var trades []trade.Trade
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trades))
	require.Len(t, trades, 1)
	assert.Equal(t, "MNQ 12-24", trades[0].Symbol)
}
