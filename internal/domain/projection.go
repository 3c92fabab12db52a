package domain

import "github.com/shopspring/decimal"

// SummaryLeg captures the from/to token pair at one point in time.
type SummaryLeg struct {
	From Token `json:"from"`
	To   Token `json:"to"`
}

// SwapSummary is a before/after balance view of a prospective swap.
type SwapSummary struct {
	Before SummaryLeg `json:"before"`
	After  SummaryLeg `json:"after"`
}

// SwapProjection is a derived preview of a swap outcome.
// It is recomputed on demand and never persisted; the After leg is a
// projection for display confirmation, not a committed balance.
type SwapProjection struct {
	ToAmount decimal.Decimal `json:"to_amount"`
	Summary  *SwapSummary    `json:"summary,omitempty"`
}
