// Package pricefeed supplies raw token prices from an external source.
package pricefeed

import (
	"context"
	"math/rand"
	"strings"

	"github.com/shopspring/decimal"

	"swapdesk/internal/domain"
)

// Feed provides the current token prices.
type Feed interface {
	FetchPrices(ctx context.Context) ([]domain.PricePoint, error)
}

// Dedupe drops repeated currencies keeping the first occurrence.
// The input slice is not mutated.
func Dedupe(points []domain.PricePoint) []domain.PricePoint {
	seen := make(map[string]struct{}, len(points))
	out := make([]domain.PricePoint, 0, len(points))
	for _, p := range points {
		symbol := domain.NormalizeSymbol(p.Currency)
		if _, ok := seen[symbol]; ok {
			continue
		}
		seen[symbol] = struct{}{}
		out = append(out, p)
	}

	return out
}

// SeedTokens builds the initial token balances from feed prices: each token
// gets a random starting balance up to maxBalance, rounded to 2 decimals,
// and a capitalized display name.
func SeedTokens(points []domain.PricePoint, maxBalance int64) []domain.Token {
	if maxBalance <= 0 {
		maxBalance = 1000
	}

	tokens := make([]domain.Token, 0, len(points))
	for _, p := range points {
		balance := decimal.NewFromFloat(rand.Float64()).
			Mul(decimal.NewFromInt(maxBalance)).
			Round(2)
		tokens = append(tokens, domain.NewToken(p.Currency, capitalize(p.Currency), p.Price, balance))
	}

	return tokens
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
