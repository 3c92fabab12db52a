package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swapdesk/internal/domain"
)

func newToken(symbol string, price, balance float64) domain.Token {
	return domain.NewToken(symbol, symbol, decimal.NewFromFloat(price), decimal.NewFromFloat(balance))
}

func TestCompute(t *testing.T) {
	atom := newToken("ATOM", 10, 100)
	usdc := newToken("USDC", 1, 50)

	t.Run("converts at price ratio", func(t *testing.T) {
		projection := Compute(&atom, &usdc, decimal.NewFromInt(5))

		assert.Equal(t, "50.000000", FormatAmount(projection.ToAmount))
		require.NotNil(t, projection.Summary)

		before := projection.Summary.Before
		assert.True(t, before.From.Balance.Equal(decimal.NewFromInt(100)))
		assert.True(t, before.To.Balance.Equal(decimal.NewFromInt(50)))

		after := projection.Summary.After
		assert.True(t, after.From.Balance.Equal(decimal.NewFromInt(95)))
		assert.True(t, after.To.Balance.Equal(decimal.NewFromInt(100)))
	})

	t.Run("projection does not touch inputs", func(t *testing.T) {
		Compute(&atom, &usdc, decimal.NewFromInt(5))
		assert.True(t, atom.Balance.Equal(decimal.NewFromInt(100)))
		assert.True(t, usdc.Balance.Equal(decimal.NewFromInt(50)))
	})

	t.Run("zero case on missing side", func(t *testing.T) {
		projection := Compute(nil, &usdc, decimal.NewFromInt(5))
		assert.True(t, projection.ToAmount.IsZero())
		assert.Nil(t, projection.Summary)

		projection = Compute(&atom, nil, decimal.NewFromInt(5))
		assert.True(t, projection.ToAmount.IsZero())
		assert.Nil(t, projection.Summary)
	})

	t.Run("zero case on non-positive amount", func(t *testing.T) {
		for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-1)} {
			projection := Compute(&atom, &usdc, amount)
			assert.True(t, projection.ToAmount.IsZero())
			assert.Nil(t, projection.Summary)
		}
	})

	t.Run("zero case on non-positive destination price", func(t *testing.T) {
		free := newToken("FREE", 0, 10)
		projection := Compute(&atom, &free, decimal.NewFromInt(5))
		assert.True(t, projection.ToAmount.IsZero())
		assert.Nil(t, projection.Summary)
	})

	t.Run("rounds ties half-up at 6 decimals", func(t *testing.T) {
		one := newToken("ONE", 1, 10)
		two := newToken("TWO", 2, 10)

		// 0.000005 * 1 / 2 = 0.0000025, tie at the 7th decimal
		projection := Compute(&one, &two, decimal.NewFromFloat(0.000005))
		assert.Equal(t, "0.000003", FormatAmount(projection.ToAmount))
	})

	t.Run("preserves value up to rounding error", func(t *testing.T) {
		from := newToken("AAA", 3.17, 250)
		to := newToken("BBB", 7.13, 40)
		amount := decimal.NewFromFloat(12.345678)

		projection := Compute(&from, &to, amount)
		require.NotNil(t, projection.Summary)

		valueBefore := projection.Summary.Before.From.Value().Add(projection.Summary.Before.To.Value())
		valueAfter := projection.Summary.After.From.Value().Add(projection.Summary.After.To.Value())

		// at most half an output unit at the 6-decimal scale, valued in BBB
		maxErr := to.Price.Mul(decimal.New(5, -7))
		assert.True(t, valueBefore.Sub(valueAfter).Abs().LessThanOrEqual(maxErr),
			"value drift %s exceeds %s", valueBefore.Sub(valueAfter).String(), maxErr.String())
	})

	t.Run("deterministic", func(t *testing.T) {
		a := Compute(&atom, &usdc, decimal.NewFromFloat(7.77))
		b := Compute(&atom, &usdc, decimal.NewFromFloat(7.77))
		assert.True(t, a.ToAmount.Equal(b.ToAmount))
	})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "valid integer", raw: "5", want: "5"},
		{name: "valid decimal", raw: "0.000001", want: "0.000001"},
		{name: "trims spaces", raw: " 2.5 ", want: "2.5"},
		{name: "empty", raw: "", wantErr: true},
		{name: "not a number", raw: "abc", wantErr: true},
		{name: "NaN", raw: "NaN", wantErr: true},
		{name: "zero", raw: "0", wantErr: true},
		{name: "negative", raw: "-3", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			amount, err := ParseAmount(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, amount.String())
		})
	}
}
