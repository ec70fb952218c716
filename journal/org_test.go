package journal

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/trade"
)

func TestFormatTradeOrg(t *testing.T) {
	t.Parallel()

	tr := sampleTrade("01HM9ZK3XJ4V6Q", time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC), 4800.25, 4805.5)
	tr.Playbook = "ORB"
	tr.Tags = []string{"trend", "a+"}
	tr.Mistakes = []string{"moved stop"}

	result := FormatTradeOrg(tr)

	assert.Contains(t, result, "** Trade: MES 03-24 long (01HM9ZK3)")
	assert.Contains(t, result, ":PROPERTIES:")
	assert.Contains(t, result, ":TRADE_ID: 01HM9ZK3XJ4V6Q")
	assert.Contains(t, result, ":QUANTITY: 2")
	assert.Contains(t, result, ":ENTRY_PRICE: 4800.25")
	assert.Contains(t, result, ":EXIT_PRICE: 4805.50")
	assert.Contains(t, result, ":ENTRY_TIME: 2024-03-15T10:30:45Z")
	assert.Contains(t, result, ":EXIT_TIME: 2024-03-15T10:35:45Z")
	assert.Contains(t, result, ":PNL: 52.50")
	assert.Contains(t, result, ":PLAYBOOK: ORB")
	assert.Contains(t, result, ":TAGS: trend a+")
	assert.Contains(t, result, ":END:")
	assert.Contains(t, result, "*** Notes\n- Imported from NinjaTrader\n")
	assert.Contains(t, result, "*** Mistakes\n- moved stop\n")
	assert.Contains(t, result, "*** Review")

	assert.Less(t, strings.Index(result, ":PROPERTIES:"), strings.Index(result, ":END:"))
}

func TestFormatTradeOrgOmitsEmptyMeta(t *testing.T) {
	t.Parallel()

	result := FormatTradeOrg(sampleTrade("short", at(9, 0, 0), 1, 2))
	assert.NotContains(t, result, ":PLAYBOOK:")
	assert.NotContains(t, result, ":TAGS:")
	assert.Contains(t, result, "(short)")
}

func TestFormatTradesOrg(t *testing.T) {
	t.Parallel()

	assert.Empty(t, FormatTradesOrg(nil))

	out := FormatTradesOrg([]trade.Trade{
		sampleTrade("a", at(9, 0, 0), 1, 2),
		sampleTrade("b", at(10, 0, 0), 1, 2),
	})
	blocks := strings.Split(out, "\n\n** Trade:")
	require.Len(t, blocks, 2)
}
