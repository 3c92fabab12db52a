// Package domain defines core data structures used throughout the swap service.
package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Token is a priced asset with a tracked balance.
// Symbol and Name are immutable after creation; Price and Balance may change.
type Token struct {
	// Symbol unique, case-normalized asset identifier.
	Symbol string `json:"symbol"`
	// Name human-readable asset name.
	Name string `json:"name"`
	// Price unit price in the quote currency.
	Price decimal.Decimal `json:"price"`
	// Balance currently held amount.
	Balance decimal.Decimal `json:"balance"`
}

// NewToken creates a Token, normalizing the symbol to upper case.
func NewToken(symbol, name string, price, balance decimal.Decimal) Token {
	return Token{
		Symbol:  NormalizeSymbol(symbol),
		Name:    name,
		Price:   price,
		Balance: balance,
	}
}

// NormalizeSymbol canonicalizes an asset symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Value returns the token holding valued at its current price.
func (t Token) Value() decimal.Decimal {
	return t.Balance.Mul(t.Price)
}

// PricePoint is a single row of raw price feed data.
type PricePoint struct {
	Currency string          `json:"currency"`
	Date     string          `json:"date"`
	Price    decimal.Decimal `json:"price"`
}
