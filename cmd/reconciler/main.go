// Command reconciler runs a single reconciliation sweep and exits. It serves
// deployments that prefer an external cron over the embedded scheduler, and
// doubles as a manual re-drive after an explorer outage.
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kiris-store/checkout-bot/internal/chain"
	"github.com/kiris-store/checkout-bot/internal/domain"
	"github.com/kiris-store/checkout-bot/internal/ledger"
	"github.com/kiris-store/checkout-bot/internal/orders"
	"github.com/kiris-store/checkout-bot/internal/reconciler"
	"github.com/kiris-store/checkout-bot/pkg/config"
	"github.com/kiris-store/checkout-bot/pkg/logger"

	_ "github.com/lib/pq"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, _, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(*cfg)

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			log.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	claimStore := ledger.NewPostgresStore(db, log)
	gateway := orders.NewWooGateway(cfg.Store, log)

	explorerClient := &http.Client{Timeout: cfg.Explorers.Timeout}
	verifiers := chain.Registry{
		domain.NetworkTron: chain.NewTronscanClient(cfg.Explorers.TronURL, cfg.Explorers.TronAPIKey, explorerClient, log),
		domain.NetworkEth:  chain.NewEtherscanClient(cfg.Explorers.EthURL, cfg.Explorers.EthAPIKey, explorerClient, log),
	}

	rec := reconciler.New(claimStore, verifiers, gateway, cfg.Reconciler, log)

	result, err := rec.Sweep(ctx)
	if err != nil {
		log.Error("sweep failed", "error", err)
		os.Exit(1)
	}

	log.Info("sweep finished",
		"scanned", result.Scanned,
		"approved", result.Approved,
		"errors", result.Errors,
		"stale", result.Stale,
	)
}
