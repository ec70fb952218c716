package stats

import "github.com/rustyeddy/tradejournal/trade"

// AllAccounts selects every account in FilterAccount.
const AllAccounts = "all"

// Accounts lists the distinct accounts in first-seen order.
func Accounts(trades []trade.Trade) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range trades {
		if seen[t.Account] {
			continue
		}
		seen[t.Account] = true
		out = append(out, t.Account)
	}
	return out
}

// FilterAccount keeps trades of one account. "all" and "" keep everything.
func FilterAccount(trades []trade.Trade, account string) []trade.Trade {
	if account == "" || account == AllAccounts {
		return trades
	}
	var out []trade.Trade
	for _, t := range trades {
		if t.Account == account {
			out = append(out, t)
		}
	}
	return out
}
