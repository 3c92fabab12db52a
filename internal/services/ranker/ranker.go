// Package ranker orders wallet balances by a fixed blockchain priority table
// and discards entries that should not be shown.
package ranker

import (
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"swapdesk/internal/domain"
)

const lowestPriority = 0

// chainPriorities is the fixed sort weight per chain. Chains absent from the
// table get the lowest priority and are excluded from ranking entirely.
var chainPriorities = map[domain.Chain]int{
	domain.ChainOsmosis:  100,
	domain.ChainEthereum: 50,
	domain.ChainArbitrum: 30,
	domain.ChainZilliqa:  20,
	domain.ChainNeo:      20,
}

// Priority returns the sort weight for a chain.
func Priority(chain domain.Chain) int {
	return chainPriorities[chain]
}

// Rank filters out non-positive and unknown-chain balances and sorts the
// rest by chain priority, highest first. Entries with equal priority keep
// their relative input order. The input slice is never mutated.
func Rank(balances []domain.WalletBalance) []domain.WalletBalance {
	valid := lo.Filter(balances, func(b domain.WalletBalance, _ int) bool {
		return b.Amount.IsPositive() && Priority(b.Chain) > lowestPriority
	})

	sort.SliceStable(valid, func(i, j int) bool {
		return Priority(valid[i].Chain) > Priority(valid[j].Chain)
	})

	return valid
}

// Valuation is a ranked balance with its USD value at current prices.
type Valuation struct {
	domain.WalletBalance
	Priority int             `json:"priority"`
	USDValue decimal.Decimal `json:"usd_value"`
}

// Valuations ranks the balances and values each at the given prices.
// Currencies without a known price are valued at zero.
func Valuations(balances []domain.WalletBalance, prices map[string]decimal.Decimal) []Valuation {
	return lo.Map(Rank(balances), func(b domain.WalletBalance, _ int) Valuation {
		return Valuation{
			WalletBalance: b,
			Priority:      Priority(b.Chain),
			USDValue:      prices[domain.NormalizeSymbol(b.Currency)].Mul(b.Amount),
		}
	})
}
