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
	"github.com/gorilla/mux"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kiris-store/checkout-bot/internal/bot"
	"github.com/kiris-store/checkout-bot/internal/chain"
	"github.com/kiris-store/checkout-bot/internal/checkout"
	"github.com/kiris-store/checkout-bot/internal/database"
	"github.com/kiris-store/checkout-bot/internal/domain"
	"github.com/kiris-store/checkout-bot/internal/health"
	"github.com/kiris-store/checkout-bot/internal/i18n"
	"github.com/kiris-store/checkout-bot/internal/idempotency"
	"github.com/kiris-store/checkout-bot/internal/jobs"
	jobhandlers "github.com/kiris-store/checkout-bot/internal/jobs/handlers"
	"github.com/kiris-store/checkout-bot/internal/ledger"
	"github.com/kiris-store/checkout-bot/internal/lifecycle"
	"github.com/kiris-store/checkout-bot/internal/middleware"
	"github.com/kiris-store/checkout-bot/internal/orders"
	"github.com/kiris-store/checkout-bot/internal/pricing"
	"github.com/kiris-store/checkout-bot/internal/ratelimit"
	"github.com/kiris-store/checkout-bot/internal/reconciler"
	"github.com/kiris-store/checkout-bot/internal/state"
	"github.com/kiris-store/checkout-bot/pkg/config"
	"github.com/kiris-store/checkout-bot/pkg/graceful"
	"github.com/kiris-store/checkout-bot/pkg/logger"
	"github.com/kiris-store/checkout-bot/pkg/metrics"
	redispkg "github.com/kiris-store/checkout-bot/pkg/redis"

	_ "github.com/lib/pq"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(*cfg)
	log.Info("starting checkout bot", "env", cfg.AppEnv, "ops_port", cfg.Server.Port)

	if cfg.Sentry.Enabled {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		})
		if err != nil {
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

	migrator := database.NewMigrator(db, log)
	if err := migrator.ApplyDir(ctx, "migrations"); err != nil {
		log.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := redispkg.New(ctx, redispkg.Config{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		PoolTimeout:  cfg.Redis.PoolTimeout,
		IdleTimeout:  cfg.Redis.IdleTimeout,
		MaxRetries:   cfg.Redis.MaxRetries,
	})
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// Conversation state.
	sessionStorage := state.NewRedisStorage(redisClient.Client, log)
	fsm := state.NewMachine(sessionStorage, log, redisClient.Client)
	state.RegisterTransitionRecorder(metrics.RecordStateTransition)

	// Checkout dependencies.
	gateway := orders.NewWooGateway(cfg.Store, log)
	rateSource := pricing.NewTRMClient(cfg.Rates, log)
	converter := pricing.NewConverter(rateSource, cfg.Commission, log)
	claimStore := ledger.NewPostgresStore(db, log)
	svc := checkout.NewService(gateway, converter, claimStore, cfg.Wallets.Map(), cfg.Store.ClaimedStatus, log)

	// Localization.
	i18nMgr, err := i18n.LoadFromDir(cfg.I18n.Dir, cfg.I18n.DefaultLang)
	if err != nil {
		log.Error("failed to load message catalogs", "error", err)
		os.Exit(1)
	}
	translator := i18nMgr.Translator(cfg.I18n.DefaultLang)

	// Duplicate update suppression.
	idemStore := idempotency.NewRedisStore(redisClient.Client, log)
	idemManager := idempotency.NewManager(idemStore, log)
	go idempotency.NewCleaner(redisClient.Client, log, time.Hour).Run(ctx)

	var rateLimitMw *middleware.RateLimitMiddleware
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.NewAdaptiveLimiter(
			ratelimit.NewRedisLimiter(redisClient.Client, log),
			ratelimit.NewMemoryLimiter(log),
			log,
		)
		rules := ratelimit.NewRules(cfg.RateLimit)
		rateLimitMw = middleware.NewRateLimitMiddleware(limiter, rules, log)

		go ratelimit.NewCleaner(redisClient.Client, log, time.Hour).Run(ctx)
	}

	b, err := bot.New(*cfg, log, fsm, svc, translator, idemManager, rateLimitMw)
	if err != nil {
		log.Error("failed to build bot", "error", err)
		os.Exit(1)
	}

	// Claim reconciliation.
	explorerClient := &http.Client{Timeout: cfg.Explorers.Timeout}
	verifiers := chain.Registry{
		domain.NetworkTron: chain.NewTronscanClient(cfg.Explorers.TronURL, cfg.Explorers.TronAPIKey, explorerClient, log),
		domain.NetworkEth:  chain.NewEtherscanClient(cfg.Explorers.EthURL, cfg.Explorers.EthAPIKey, explorerClient, log),
	}
	rec := reconciler.New(claimStore, verifiers, gateway, cfg.Reconciler, log)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	var scheduler jobs.Scheduler
	var worker jobs.Worker
	var queue jobs.Manager
	if cfg.Reconciler.Enabled {
		queue = jobs.NewManager(redisOpt, log)
		scheduler = jobs.NewScheduler(redisOpt, log)
		if err := scheduler.RegisterTasks(cfg.Reconciler.Cron, cfg.Reconciler.StaleCron); err != nil {
			log.Error("failed to register scheduled tasks", "error", err)
			os.Exit(1)
		}
		scheduler.Run()

		worker = jobs.NewWorker(redisOpt, map[string]int{
			jobs.QueueCritical: 6,
			jobs.QueueDefault:  3,
			jobs.QueueLow:      1,
		}, log)
		worker.RegisterHandler(jobs.TaskTypeReconcileSweep, jobhandlers.NewReconcileSweepHandler(rec, log))
		worker.RegisterHandler(jobs.TaskTypeStaleCheck, jobhandlers.NewStaleCheckHandler(rec, log))
		go func() {
			if err := worker.Run(); err != nil {
				log.Error("jobs worker stopped", "error", err)
			}
		}()
	}

	// Abandoned sessions expire in redis; the cleaner also drops sessions
	// whose last activity is older than a day so stale keyboards die early.
	cleaner := state.NewCleaner(redisClient.Client, sessionStorage, log, 24*time.Hour, time.Hour)
	go cleaner.Run(ctx)

	// Ops HTTP server: probes and metrics.
	checker := health.NewChecker(log)
	checker.AddCheck("postgres", health.NewDBChecker(db))
	checker.AddCheck("redis", health.NewRedisChecker(redisClient.Client))
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))

	router := mux.NewRouter()
	router.Use(logger.Middleware)
	router.Use(middleware.New(log))
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	router.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		results := checker.Check(r.Context())
		status := http.StatusOK
		for _, result := range results {
			if result != "OK" {
				status = http.StatusServiceUnavailable
				break
			}
		}
		w.WriteHeader(status)
	}).Methods(http.MethodGet)
	if queue != nil {
		router.HandleFunc("/reconcile", jobs.NewSweepTriggerHandler(queue, log)).Methods(http.MethodPost)
	}

	opsServer := graceful.NewServer(log, &http.Server{
		Addr:    cfg.Server.Port,
		Handler: router,
	}, cfg.Server.ShutdownTimeout)

	go func() {
		if err := opsServer.ListenAndServe(ctx); err != nil {
			log.Error("ops server stopped", "error", err)
		}
	}()

	config.Watch(v, log, func(fresh *config.Config) {
		logger.SetLevel(*fresh)
	})

	shutdown := lifecycle.NewShutdown(log)
	shutdown.Register("telegram-bot", func(ctx context.Context) error {
		b.Stop()
		return nil
	})
	if scheduler != nil {
		shutdown.Register("scheduler", func(ctx context.Context) error {
			scheduler.Shutdown()
			return nil
		})
	}
	if worker != nil {
		shutdown.Register("jobs-worker", func(ctx context.Context) error {
			worker.Shutdown()
			return nil
		})
	}
	if queue != nil {
		shutdown.Register("jobs-queue", func(ctx context.Context) error {
			return queue.Close()
		})
	}

	go b.Start()
	log.Info("checkout bot started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown finished with errors", "error", err)
	}

	log.Info("checkout bot stopped")
}
