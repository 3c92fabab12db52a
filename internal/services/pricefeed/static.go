package pricefeed

import (
	"context"

	"swapdesk/internal/domain"
)

// StaticFeed serves a fixed price list, for offline runs and tests.
type StaticFeed struct {
	points []domain.PricePoint
}

// NewStaticFeed creates a feed returning the given points.
func NewStaticFeed(points []domain.PricePoint) *StaticFeed {
	return &StaticFeed{points: points}
}

// FetchPrices returns the configured points deduplicated by currency.
func (f *StaticFeed) FetchPrices(_ context.Context) ([]domain.PricePoint, error) {
	return Dedupe(f.points), nil
}
