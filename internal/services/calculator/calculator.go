// Package calculator computes swap conversions and before/after balance
// projections. All functions are pure; nothing here touches the ledger.
package calculator

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"swapdesk/internal/domain"
)

// Scale is the fixed decimal scale of conversion results.
// Ties round half-up (away from zero; all quantities are non-negative).
const Scale = 6

// divPrecision keeps intermediate division well past the display scale so
// binary accumulation error never reaches the rounded result.
const divPrecision = 16

// Compute converts inputAmount of from into to at current prices and
// projects the resulting balances. Returns a zero projection without a
// summary when either side is absent, the amount is not positive, or the
// destination price is not positive.
func Compute(from, to *domain.Token, inputAmount decimal.Decimal) domain.SwapProjection {
	if from == nil || to == nil || !inputAmount.IsPositive() || !to.Price.IsPositive() {
		return domain.SwapProjection{ToAmount: decimal.Zero}
	}

	toAmount := inputAmount.Mul(from.Price).DivRound(to.Price, divPrecision).Round(Scale)

	before := domain.SummaryLeg{From: *from, To: *to}
	after := before
	after.From.Balance = before.From.Balance.Sub(inputAmount)
	after.To.Balance = before.To.Balance.Add(toAmount)

	return domain.SwapProjection{
		ToAmount: toAmount,
		Summary: &domain.SwapSummary{
			Before: before,
			After:  after,
		},
	}
}

// ParseAmount validates raw user input and converts it to a decimal.
// Empty, non-numeric, non-finite, zero, and negative input is rejected
// as a validation error.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Decimal{}, errors.Wrap(domain.ErrInvalidAmount, "amount is required")
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(domain.ErrInvalidAmount, "parse %q", raw)
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, errors.Wrapf(domain.ErrInvalidAmount, "got %s", amount.String())
	}

	return amount, nil
}

// FormatAmount renders a conversion result at the fixed display scale.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(Scale)
}
