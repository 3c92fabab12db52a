// Command swapdesk runs the token swap service: a price-seeded balance
// ledger with an HTTP gateway, or an interactive terminal swap wizard.
//
// Usage:
//
//	swapdesk --config config.yaml
//	swapdesk --tui
//	swapdesk (uses CLI arguments)
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"swapdesk/config"
	"swapdesk/internal"
	"swapdesk/internal/gateway"
	"swapdesk/internal/services/pricefeed"
	"swapdesk/internal/setup"
)

func main() {
	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	feed := pricefeed.NewHTTPFeed(cfg.FeedURL)
	app, err := internal.NewApp(cfg, feed, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	if err := app.EnsureSeeded(ctx); err != nil {
		log.Fatal(err)
	}

	if cfg.TUI {
		if err := setup.RunSwapWizard(ctx, app.Ledger, app.Executor); err != nil {
			log.Fatal(err)
		}
		return
	}

	server := gateway.NewServer(cfg.ListenAddr, app.Ledger, app.Executor, app.Journal, logger)

	logger.Info("gateway listening", zap.String("addr", cfg.ListenAddr))
	if len(cfg.TLSDomains) > 0 {
		err = server.StartWithAutoTLS(ctx, cfg.TLSDomains, cfg.CertCacheDir)
	} else {
		err = server.Start(ctx)
	}
	if err != nil {
		log.Fatal(err)
	}
}
