// Package ledger holds the process-wide balance state: one entry per token
// symbol plus the current from/to selection. Every mutation is flushed to a
// durable snapshot so restarts resume from the last consistent state.
package ledger

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"swapdesk/internal/domain"
	"swapdesk/internal/storage/snapshot"
)

// Ledger is the single source of truth for token balances and selection.
// Mutations are single-writer: only the swap executor commits changes,
// everything else reads.
type Ledger struct {
	mu           sync.RWMutex
	balances     map[string]domain.Token
	selectedFrom string
	selectedTo   string
	store        *snapshot.Store
	logger       *zap.Logger
}

// New creates a Ledger, reloading a prior snapshot verbatim when one exists.
func New(store *snapshot.Store, logger *zap.Logger) (*Ledger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	l := &Ledger{
		balances: make(map[string]domain.Token),
		store:    store,
		logger:   logger,
	}

	if err := l.restore(); err != nil {
		return nil, errors.Wrap(err, "restore ledger snapshot")
	}

	return l, nil
}

// Seeded reports whether the ledger holds any balances.
func (l *Ledger) Seeded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.balances) > 0
}

// SeedBalances sets the balances wholesale. It is meant to run once per
// empty-to-nonempty transition; the caller must not re-seed a populated
// ledger or all balances are overwritten.
func (l *Ledger) SeedBalances(tokens []domain.Token) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances = make(map[string]domain.Token, len(tokens))
	for _, t := range tokens {
		l.balances[t.Symbol] = t
	}
	l.persist()

	l.logger.Info("ledger seeded", zap.Int("tokens", len(tokens)))
}

// SetSelection merges only the provided sides into the current selection,
// leaving absent sides untouched.
func (l *Ledger) SetSelection(patch domain.SelectionPatch) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if patch.From != nil {
		l.selectedFrom = patch.From.Symbol
	}
	if patch.To != nil {
		l.selectedTo = patch.To.Symbol
	}
	l.persist()
}

// ApplyBalanceDelta replaces the balance of the token with the given symbol,
// floored at zero. Unknown symbols are a silent no-op. Selection references
// are resolved against the balance map on read, so updated tokens are never
// observed stale.
func (l *Ledger) ApplyBalanceDelta(symbol string, newBalance decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.applyDelta(symbol, newBalance) {
		return
	}
	l.persist()
}

// ApplySettlement applies both sides of a settled swap under one lock and
// one durable write, so a partially applied settlement is never observable.
func (l *Ledger) ApplySettlement(fromSymbol, toSymbol string, newFrom, newTo decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fromOK := l.applyDelta(fromSymbol, newFrom)
	toOK := l.applyDelta(toSymbol, newTo)
	if !fromOK && !toOK {
		return
	}
	l.persist()
}

func (l *Ledger) applyDelta(symbol string, newBalance decimal.Decimal) bool {
	t, ok := l.balances[symbol]
	if !ok {
		l.logger.Warn("balance delta for unknown symbol ignored", zap.String("symbol", symbol))
		return false
	}

	if newBalance.IsNegative() {
		newBalance = decimal.Zero
	}
	t.Balance = newBalance
	l.balances[symbol] = t
	return true
}

// Balances returns a copy of all tokens ordered by symbol.
func (l *Ledger) Balances() []domain.Token {
	l.mu.RLock()
	defer l.mu.RUnlock()

	tokens := make([]domain.Token, 0, len(l.balances))
	for _, t := range l.balances {
		tokens = append(tokens, t)
	}
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].Symbol < tokens[j].Symbol
	})

	return tokens
}

// Token returns the current record for the given symbol.
func (l *Ledger) Token(symbol string) (domain.Token, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	t, ok := l.balances[domain.NormalizeSymbol(symbol)]
	return t, ok
}

// Selection returns the current from/to pair resolved against the live
// balance map.
func (l *Ledger) Selection() domain.Selection {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var sel domain.Selection
	if t, ok := l.balances[l.selectedFrom]; ok {
		sel.From = &t
	}
	if t, ok := l.balances[l.selectedTo]; ok {
		sel.To = &t
	}

	return sel
}

func (l *Ledger) restore() error {
	if l.store == nil {
		return nil
	}

	state, err := l.store.Load()
	if err != nil || state == nil {
		return err
	}

	balances := make(map[string]domain.Token, len(state.Balances))
	for _, st := range state.Balances {
		t, err := st.ToToken()
		if err != nil {
			return err
		}
		balances[t.Symbol] = t
	}

	l.balances = balances
	l.selectedFrom = state.SelectedFrom
	l.selectedTo = state.SelectedTo

	return nil
}

// persist writes the full snapshot. Callers hold the write lock.
func (l *Ledger) persist() {
	if l.store == nil {
		return
	}

	state := snapshot.State{
		Balances:     make([]snapshot.StoredToken, 0, len(l.balances)),
		SelectedFrom: l.selectedFrom,
		SelectedTo:   l.selectedTo,
	}

	symbols := make([]string, 0, len(l.balances))
	for symbol := range l.balances {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	for _, symbol := range symbols {
		state.Balances = append(state.Balances, snapshot.NewStoredToken(l.balances[symbol]))
	}

	if err := l.store.Save(state); err != nil {
		l.logger.Warn("failed to persist ledger snapshot", zap.Error(err))
	}
}
