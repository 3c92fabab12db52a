package swapper

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"swapdesk/internal/domain"
	"swapdesk/internal/ledger"
)

// mockTransfer settles immediately, optionally failing or blocking until
// released.
type mockTransfer struct {
	err     error
	release chan struct{}
	calls   int
	mu      sync.Mutex
}

func (m *mockTransfer) Submit(ctx context.Context, _ string, _, _ string, _ decimal.Decimal) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.release != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.release:
		}
	}
	return m.err
}

type mockJournal struct {
	mu     sync.Mutex
	events []domain.SettlementEvent
}

func (m *mockJournal) Save(event domain.SettlementEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func newTestExecutor(t *testing.T, transfer Transfer) (*Executor, *ledger.Ledger, *mockJournal) {
	t.Helper()

	l, err := ledger.New(nil, zap.NewNop())
	require.NoError(t, err)
	l.SeedBalances([]domain.Token{
		domain.NewToken("ATOM", "Atom", decimal.NewFromInt(10), decimal.NewFromInt(100)),
		domain.NewToken("USDC", "Usdc", decimal.NewFromInt(1), decimal.NewFromInt(50)),
		domain.NewToken("FREE", "Free", decimal.Zero, decimal.NewFromInt(10)),
	})

	journal := &mockJournal{}
	exec, err := NewExecutor(l, transfer, journal, zap.NewNop())
	require.NoError(t, err)

	return exec, l, journal
}

func selectPair(t *testing.T, exec *Executor) {
	t.Helper()
	require.NoError(t, exec.PickToken(domain.SideFrom, "ATOM"))
	require.NoError(t, exec.PickToken(domain.SideTo, "USDC"))
}

func TestExecutor_PickToken(t *testing.T) {
	exec, l, _ := newTestExecutor(t, &mockTransfer{})
	selectPair(t, exec)

	t.Run("picking the opposite token swaps the pair", func(t *testing.T) {
		require.NoError(t, exec.PickToken(domain.SideFrom, "USDC"))
		sel := l.Selection()
		assert.Equal(t, "USDC", sel.From.Symbol)
		assert.Equal(t, "ATOM", sel.To.Symbol)
	})

	t.Run("unknown token is rejected", func(t *testing.T) {
		err := exec.PickToken(domain.SideFrom, "DOGE")
		assert.ErrorIs(t, err, domain.ErrUnknownToken)
	})
}

func TestExecutor_SwitchTokens(t *testing.T) {
	exec, l, _ := newTestExecutor(t, &mockTransfer{})

	// no-op with incomplete selection
	exec.SwitchTokens()
	assert.Nil(t, l.Selection().From)

	selectPair(t, exec)
	exec.SwitchTokens()

	sel := l.Selection()
	assert.Equal(t, "USDC", sel.From.Symbol)
	assert.Equal(t, "ATOM", sel.To.Symbol)
}

func TestExecutor_Quote(t *testing.T) {
	exec, _, _ := newTestExecutor(t, &mockTransfer{})
	selectPair(t, exec)

	projection := exec.Quote(decimal.NewFromInt(5))
	assert.Equal(t, "50.000000", projection.ToAmount.StringFixed(6))
	require.NotNil(t, projection.Summary)
	assert.True(t, projection.Summary.After.From.Balance.Equal(decimal.NewFromInt(95)))
}

func TestExecutor_ExecuteSwap(t *testing.T) {
	t.Run("settles and applies both deltas", func(t *testing.T) {
		exec, l, journal := newTestExecutor(t, &mockTransfer{})
		selectPair(t, exec)

		event, err := exec.ExecuteSwap(context.Background(), decimal.NewFromInt(5))
		require.NoError(t, err)
		require.NotNil(t, event)
		assert.NotEmpty(t, event.ID)
		assert.True(t, event.ToAmount.Equal(decimal.NewFromInt(50)))

		atom, _ := l.Token("ATOM")
		usdc, _ := l.Token("USDC")
		assert.True(t, atom.Balance.Equal(decimal.NewFromInt(95)))
		assert.True(t, usdc.Balance.Equal(decimal.NewFromInt(100)))

		require.Len(t, journal.events, 1)
		assert.Equal(t, event.ID, journal.events[0].ID)
		assert.Equal(t, StateIdle, exec.State())
		assert.Equal(t, StateSettledSuccess, exec.LastOutcome())
	})

	t.Run("insufficient balance leaves ledger unchanged", func(t *testing.T) {
		exec, l, journal := newTestExecutor(t, &mockTransfer{})
		selectPair(t, exec)

		_, err := exec.ExecuteSwap(context.Background(), decimal.NewFromInt(150))
		assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

		atom, _ := l.Token("ATOM")
		assert.True(t, atom.Balance.Equal(decimal.NewFromInt(100)))
		assert.Empty(t, journal.events)
		assert.Equal(t, StateIdle, exec.State())
	})

	t.Run("nothing selected is rejected", func(t *testing.T) {
		exec, _, _ := newTestExecutor(t, &mockTransfer{})

		_, err := exec.ExecuteSwap(context.Background(), decimal.NewFromInt(5))
		assert.ErrorIs(t, err, domain.ErrNothingSelected)
	})

	t.Run("non-positive amount is rejected", func(t *testing.T) {
		exec, _, _ := newTestExecutor(t, &mockTransfer{})
		selectPair(t, exec)

		_, err := exec.ExecuteSwap(context.Background(), decimal.Zero)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("unpriced destination is rejected", func(t *testing.T) {
		exec, _, _ := newTestExecutor(t, &mockTransfer{})
		require.NoError(t, exec.PickToken(domain.SideFrom, "ATOM"))
		require.NoError(t, exec.PickToken(domain.SideTo, "FREE"))

		_, err := exec.ExecuteSwap(context.Background(), decimal.NewFromInt(5))
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("transfer failure leaves ledger unchanged", func(t *testing.T) {
		exec, l, journal := newTestExecutor(t, &mockTransfer{err: errors.New("venue rejected")})
		selectPair(t, exec)

		_, err := exec.ExecuteSwap(context.Background(), decimal.NewFromInt(5))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "venue rejected")

		atom, _ := l.Token("ATOM")
		usdc, _ := l.Token("USDC")
		assert.True(t, atom.Balance.Equal(decimal.NewFromInt(100)))
		assert.True(t, usdc.Balance.Equal(decimal.NewFromInt(50)))
		assert.Empty(t, journal.events)
		assert.Equal(t, StateIdle, exec.State())
		assert.Equal(t, StateSettledFailure, exec.LastOutcome())
	})

	t.Run("cancellation aborts without mutation", func(t *testing.T) {
		exec, l, journal := newTestExecutor(t, NewSimulatedTransfer(time.Minute))
		selectPair(t, exec)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			_, err := exec.ExecuteSwap(ctx, decimal.NewFromInt(5))
			done <- err
		}()

		waitForState(t, exec, StateSubmitting)
		cancel()

		err := <-done
		assert.ErrorIs(t, err, context.Canceled)

		atom, _ := l.Token("ATOM")
		assert.True(t, atom.Balance.Equal(decimal.NewFromInt(100)))
		assert.Empty(t, journal.events)
		assert.Equal(t, StateIdle, exec.State())
	})

	t.Run("concurrent execution is rejected with busy", func(t *testing.T) {
		transfer := &mockTransfer{release: make(chan struct{})}
		exec, l, journal := newTestExecutor(t, transfer)
		selectPair(t, exec)

		done := make(chan error, 1)
		go func() {
			_, err := exec.ExecuteSwap(context.Background(), decimal.NewFromInt(5))
			done <- err
		}()

		waitForState(t, exec, StateSubmitting)

		_, err := exec.ExecuteSwap(context.Background(), decimal.NewFromInt(5))
		assert.ErrorIs(t, err, domain.ErrBusy)

		close(transfer.release)
		require.NoError(t, <-done)

		// exactly one settlement applied
		atom, _ := l.Token("ATOM")
		usdc, _ := l.Token("USDC")
		assert.True(t, atom.Balance.Equal(decimal.NewFromInt(95)))
		assert.True(t, usdc.Balance.Equal(decimal.NewFromInt(100)))
		assert.Len(t, journal.events, 1)
	})
}

func waitForState(t *testing.T, exec *Executor, want State) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if exec.State() == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("executor never reached state %s", want)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestSimulatedTransfer_Settles(t *testing.T) {
	transfer := NewSimulatedTransfer(10 * time.Millisecond)

	start := time.Now()
	err := transfer.Submit(context.Background(), "id", "ATOM", "USDC", decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}
