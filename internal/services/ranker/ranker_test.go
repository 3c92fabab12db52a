package ranker

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swapdesk/internal/domain"
)

func wb(currency string, amount int64, chain domain.Chain) domain.WalletBalance {
	return domain.WalletBalance{
		Currency: currency,
		Amount:   decimal.NewFromInt(amount),
		Chain:    chain,
	}
}

func TestRank(t *testing.T) {
	t.Run("filters and orders by priority", func(t *testing.T) {
		input := []domain.WalletBalance{
			wb("NEO", 5, domain.ChainNeo),
			wb("OSMO", 0, domain.ChainOsmosis),
			wb("ETH", 3, domain.ChainEthereum),
		}

		out := Rank(input)

		require.Len(t, out, 2)
		assert.Equal(t, "ETH", out[0].Currency)
		assert.Equal(t, "NEO", out[1].Currency)
	})

	t.Run("drops non-positive amounts", func(t *testing.T) {
		input := []domain.WalletBalance{
			wb("OSMO", 0, domain.ChainOsmosis),
			wb("ETH", -1, domain.ChainEthereum),
		}
		assert.Empty(t, Rank(input))
	})

	t.Run("drops unknown chains", func(t *testing.T) {
		input := []domain.WalletBalance{
			wb("DOGE", 100, domain.Chain("Dogechain")),
			wb("ZIL", 1, domain.ChainZilliqa),
		}

		out := Rank(input)

		require.Len(t, out, 1)
		assert.Equal(t, "ZIL", out[0].Currency)
	})

	t.Run("equal priorities keep input order", func(t *testing.T) {
		input := []domain.WalletBalance{
			wb("ZIL", 1, domain.ChainZilliqa),
			wb("NEO", 2, domain.ChainNeo),
			wb("ARB", 3, domain.ChainArbitrum),
		}

		out := Rank(input)

		require.Len(t, out, 3)
		assert.Equal(t, "ARB", out[0].Currency)
		// Zilliqa and Neo share priority 20, so input order survives
		assert.Equal(t, "ZIL", out[1].Currency)
		assert.Equal(t, "NEO", out[2].Currency)
	})

	t.Run("idempotent under re-sort", func(t *testing.T) {
		input := []domain.WalletBalance{
			wb("NEO", 1, domain.ChainNeo),
			wb("OSMO", 2, domain.ChainOsmosis),
			wb("ZIL", 3, domain.ChainZilliqa),
			wb("ETH", 4, domain.ChainEthereum),
		}

		once := Rank(input)
		twice := Rank(once)

		assert.Equal(t, once, twice)
	})

	t.Run("input is not mutated", func(t *testing.T) {
		input := []domain.WalletBalance{
			wb("NEO", 5, domain.ChainNeo),
			wb("OSMO", 7, domain.ChainOsmosis),
		}

		Rank(input)

		assert.Equal(t, "NEO", input[0].Currency)
		assert.Equal(t, "OSMO", input[1].Currency)
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		assert.Empty(t, Rank(nil))
	})
}

func TestValuations(t *testing.T) {
	prices := map[string]decimal.Decimal{
		"ETH": decimal.NewFromInt(2000),
		"NEO": decimal.NewFromInt(10),
	}

	input := []domain.WalletBalance{
		wb("NEO", 5, domain.ChainNeo),
		wb("ETH", 3, domain.ChainEthereum),
		wb("MYST", 9, domain.Chain("Mystery")),
	}

	out := Valuations(input, prices)

	require.Len(t, out, 2)
	assert.Equal(t, "ETH", out[0].Currency)
	assert.Equal(t, 50, out[0].Priority)
	assert.True(t, out[0].USDValue.Equal(decimal.NewFromInt(6000)))
	assert.Equal(t, "NEO", out[1].Currency)
	assert.True(t, out[1].USDValue.Equal(decimal.NewFromInt(50)))
}
