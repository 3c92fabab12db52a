package swapper

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Transfer submits a swap to the external settlement venue and returns when
// it completes or fails.
type Transfer interface {
	Submit(ctx context.Context, id string, fromSymbol, toSymbol string, amount decimal.Decimal) error
}

const defaultTransferDelay = 2 * time.Second

// SimulatedTransfer stands in for a real settlement call: it settles after
// a fixed bounded delay and honors context cancellation.
type SimulatedTransfer struct {
	delay time.Duration
}

// NewSimulatedTransfer creates a simulated transfer with the given delay.
// A non-positive delay falls back to the default.
func NewSimulatedTransfer(delay time.Duration) *SimulatedTransfer {
	if delay <= 0 {
		delay = defaultTransferDelay
	}
	return &SimulatedTransfer{delay: delay}
}

// Submit waits out the settlement delay. A cancelled context aborts the
// transfer without settling.
func (t *SimulatedTransfer) Submit(ctx context.Context, _ string, _, _ string, _ decimal.Decimal) error {
	timer := time.NewTimer(t.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
