// Package internal wires the swap core together: feed, ledger, executor,
// and the settlement journal.
package internal

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"swapdesk/config"
	"swapdesk/internal/domain"
	"swapdesk/internal/ledger"
	"swapdesk/internal/services/pricefeed"
	"swapdesk/internal/services/swapper"
	"swapdesk/internal/storage/settlements"
	"swapdesk/internal/storage/snapshot"
)

const seedMaxBalance = 1000

// App owns the core components for one process.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	feed     pricefeed.Feed
	Ledger   *ledger.Ledger
	Executor *swapper.Executor
	Journal  *settlements.WALStore
}

// NewApp builds the core from configuration. A prior ledger snapshot is
// reloaded; otherwise the ledger starts empty until EnsureSeeded runs.
func NewApp(cfg config.Config, feed pricefeed.Feed, logger *zap.Logger) (*App, error) {
	if feed == nil {
		return nil, errors.New("price feed is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := snapshot.NewStore(cfg.StateDir)
	if err != nil {
		return nil, errors.Wrap(err, "init snapshot store")
	}

	led, err := ledger.New(store, logger)
	if err != nil {
		return nil, errors.Wrap(err, "init ledger")
	}

	journal, err := settlements.NewWALStore(cfg.JournalDir)
	if err != nil {
		return nil, errors.Wrap(err, "init settlement journal")
	}

	transfer := swapper.NewSimulatedTransfer(cfg.TransferDelay)
	executor, err := swapper.NewExecutor(led, transfer, journal, logger)
	if err != nil {
		journal.Close()
		return nil, errors.Wrap(err, "init executor")
	}

	return &App{
		cfg:      cfg,
		logger:   logger,
		feed:     feed,
		Ledger:   led,
		Executor: executor,
		Journal:  journal,
	}, nil
}

// EnsureSeeded fetches prices and seeds the ledger on the first run.
// A ledger restored from a snapshot is left untouched.
func (a *App) EnsureSeeded(ctx context.Context) error {
	if a.Ledger.Seeded() {
		return nil
	}

	points, err := a.feed.FetchPrices(ctx)
	if err != nil {
		return errors.Wrap(err, "seed balances from price feed")
	}

	a.Ledger.SeedBalances(pricefeed.SeedTokens(points, seedMaxBalance))
	a.selectDefaults()

	return nil
}

// selectDefaults picks the configured default pair when both tokens exist.
func (a *App) selectDefaults() {
	if _, ok := a.Ledger.Token(a.cfg.DefaultFrom); !ok {
		return
	}
	if _, ok := a.Ledger.Token(a.cfg.DefaultTo); !ok {
		return
	}

	if err := a.Executor.PickToken(domain.SideFrom, a.cfg.DefaultFrom); err != nil {
		a.logger.Warn("failed to select default from token", zap.Error(err))
	}
	if err := a.Executor.PickToken(domain.SideTo, a.cfg.DefaultTo); err != nil {
		a.logger.Warn("failed to select default to token", zap.Error(err))
	}
}

// Close releases app resources.
func (a *App) Close() error {
	if a.Journal == nil {
		return nil
	}
	return a.Journal.Close()
}
