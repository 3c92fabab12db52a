package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SettlementEvent records one committed swap: both balance deltas applied
// as a single unit.
type SettlementEvent struct {
	ID          string          `json:"id"`
	FromSymbol  string          `json:"from_symbol"`
	ToSymbol    string          `json:"to_symbol"`
	FromAmount  decimal.Decimal `json:"from_amount"`
	ToAmount    decimal.Decimal `json:"to_amount"`
	FromBalance decimal.Decimal `json:"from_balance"`
	ToBalance   decimal.Decimal `json:"to_balance"`
	SettledAt   time.Time       `json:"settled_at"`
}

// String returns a human-readable representation.
func (e *SettlementEvent) String() string {
	return fmt.Sprintf("%s->%s amount: %s received: %s", e.FromSymbol, e.ToSymbol, e.FromAmount.String(), e.ToAmount.String())
}

// SettlementRecord bundles a settlement event with its journal index.
type SettlementRecord struct {
	Index uint64
	Event SettlementEvent
}
