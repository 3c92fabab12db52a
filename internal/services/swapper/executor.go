// Package swapper orchestrates swap execution: validation against live
// ledger state, the simulated external transfer, and the atomic settlement.
// It is the only component that commits ledger mutations.
package swapper

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"swapdesk/internal/domain"
	"swapdesk/internal/ledger"
	"swapdesk/internal/services/calculator"
)

// Journal records committed settlements.
type Journal interface {
	Save(event domain.SettlementEvent) error
}

// Executor runs the swap state machine. A second execute request while one
// is in flight is rejected with ErrBusy rather than queued, which stands in
// for a mutex around the ledger balances during settlement.
type Executor struct {
	ledger   *ledger.Ledger
	transfer Transfer
	journal  Journal
	logger   *zap.Logger

	mu      sync.Mutex
	state   State
	outcome State
}

// NewExecutor creates an Executor. The journal may be nil when no history
// should be kept.
func NewExecutor(l *ledger.Ledger, transfer Transfer, journal Journal, logger *zap.Logger) (*Executor, error) {
	if l == nil {
		return nil, errors.New("ledger is required")
	}
	if transfer == nil {
		return nil, errors.New("transfer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Executor{
		ledger:   l,
		transfer: transfer,
		journal:  journal,
		logger:   logger,
		state:    StateIdle,
	}, nil
}

// State returns the executor's current lifecycle state.
func (e *Executor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// LastOutcome returns the terminal state of the most recent execution,
// StateIdle when nothing has run yet.
func (e *Executor) LastOutcome() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outcome
}

// PickToken selects the token with the given symbol for the given side.
// Picking the symbol already on the opposite side exchanges the pair.
func (e *Executor) PickToken(side domain.Side, symbol string) error {
	token, ok := e.ledger.Token(symbol)
	if !ok {
		return errors.Wrap(domain.ErrUnknownToken, symbol)
	}

	next := e.ledger.Selection().Pick(side, token)
	e.ledger.SetSelection(domain.SelectionPatch{From: next.From, To: next.To})

	return nil
}

// SwitchTokens exchanges the from and to selection. No-op unless both sides
// are selected.
func (e *Executor) SwitchTokens() {
	sel := e.ledger.Selection()
	if !sel.Complete() {
		return
	}

	next := sel.Switch()
	e.ledger.SetSelection(domain.SelectionPatch{From: next.From, To: next.To})
}

// Quote computes the projection for the given input amount against the
// current selection. Recomputed on every call, never cached.
func (e *Executor) Quote(amount decimal.Decimal) domain.SwapProjection {
	sel := e.ledger.Selection()
	return calculator.Compute(sel.From, sel.To, amount)
}

// ExecuteSwap validates the request against ledger state at submit time,
// submits the transfer, and on completion applies both balance deltas as a
// single unit. Validation failures and transfer errors leave the ledger
// untouched; the state machine always returns to idle.
func (e *Executor) ExecuteSwap(ctx context.Context, fromAmount decimal.Decimal) (*domain.SettlementEvent, error) {
	if err := e.begin(); err != nil {
		return nil, err
	}

	sel := e.ledger.Selection()
	toAmount, err := e.validate(sel, fromAmount)
	if err != nil {
		e.finish(StateIdle)
		return nil, err
	}

	e.transition(StateSubmitting)

	id := uuid.NewString()
	if err := e.transfer.Submit(ctx, id, sel.From.Symbol, sel.To.Symbol, fromAmount); err != nil {
		e.finish(StateSettledFailure)
		e.logger.Warn("swap transfer failed",
			zap.String("id", id),
			zap.String("from", sel.From.Symbol),
			zap.String("to", sel.To.Symbol),
			zap.Error(err))
		return nil, errors.Wrap(err, "swap transfer")
	}

	event := e.settle(id, sel, fromAmount, toAmount)
	e.finish(StateSettledSuccess)

	e.logger.Info("swap settled",
		zap.String("id", id),
		zap.String("from", event.FromSymbol),
		zap.String("to", event.ToSymbol),
		zap.String("from_amount", event.FromAmount.String()),
		zap.String("to_amount", event.ToAmount.String()))

	return event, nil
}

// begin moves Idle -> Validating, rejecting concurrent executions.
func (e *Executor) begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateIdle {
		return domain.ErrBusy
	}
	e.state = StateValidating

	return nil
}

func (e *Executor) transition(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// finish records the terminal state and resets to Idle so the next request
// is accepted.
func (e *Executor) finish(terminal State) {
	e.mu.Lock()
	e.outcome = terminal
	e.state = StateIdle
	e.mu.Unlock()
}

// validate checks the request against current ledger state, not against any
// projection computed earlier, guarding against stale caller views.
func (e *Executor) validate(sel domain.Selection, fromAmount decimal.Decimal) (decimal.Decimal, error) {
	if !sel.Complete() {
		return decimal.Decimal{}, domain.ErrNothingSelected
	}
	if !fromAmount.IsPositive() {
		return decimal.Decimal{}, errors.Wrapf(domain.ErrInvalidAmount, "got %s", fromAmount.String())
	}

	current, ok := e.ledger.Token(sel.From.Symbol)
	if !ok {
		return decimal.Decimal{}, errors.Wrap(domain.ErrUnknownToken, sel.From.Symbol)
	}
	if current.Balance.LessThan(fromAmount) {
		return decimal.Decimal{}, errors.Wrapf(domain.ErrInsufficientBalance,
			"have %s %s, need %s", current.Balance.String(), current.Symbol, fromAmount.String())
	}

	projection := calculator.Compute(sel.From, sel.To, fromAmount)
	if !projection.ToAmount.IsPositive() {
		return decimal.Decimal{}, errors.Wrap(domain.ErrInvalidAmount, "no conversion available for pair")
	}

	return projection.ToAmount, nil
}

// settle applies both balance deltas atomically and journals the event.
func (e *Executor) settle(id string, sel domain.Selection, fromAmount, toAmount decimal.Decimal) *domain.SettlementEvent {
	fromToken, _ := e.ledger.Token(sel.From.Symbol)
	toToken, _ := e.ledger.Token(sel.To.Symbol)

	newFrom := fromToken.Balance.Sub(fromAmount)
	if newFrom.IsNegative() {
		newFrom = decimal.Zero
	}
	newTo := toToken.Balance.Add(toAmount)

	e.ledger.ApplySettlement(sel.From.Symbol, sel.To.Symbol, newFrom, newTo)

	event := domain.SettlementEvent{
		ID:          id,
		FromSymbol:  sel.From.Symbol,
		ToSymbol:    sel.To.Symbol,
		FromAmount:  fromAmount,
		ToAmount:    toAmount,
		FromBalance: newFrom,
		ToBalance:   newTo,
		SettledAt:   time.Now(),
	}

	if e.journal != nil {
		if err := e.journal.Save(event); err != nil {
			e.logger.Warn("failed to journal settlement", zap.String("id", id), zap.Error(err))
		}
	}

	return &event
}
