package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/buttonmarket/internal/adapter/http"
	"github.com/iho/buttonmarket/internal/adapter/http/handler"
	"github.com/iho/buttonmarket/internal/adapter/http/middleware"
	"github.com/iho/buttonmarket/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/buttonmarket/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/buttonmarket/internal/adapter/repository/redis"
	"github.com/iho/buttonmarket/internal/infrastructure/auth"
	"github.com/iho/buttonmarket/internal/infrastructure/clock"
	"github.com/iho/buttonmarket/internal/infrastructure/config"
	"github.com/iho/buttonmarket/internal/infrastructure/eventpublisher"
	"github.com/iho/buttonmarket/internal/infrastructure/metrics"
	"github.com/iho/buttonmarket/internal/infrastructure/payoutworker"
	"github.com/iho/buttonmarket/internal/infrastructure/postgres"
	"github.com/iho/buttonmarket/internal/infrastructure/redis"
	"github.com/iho/buttonmarket/internal/infrastructure/sweeper"
	"github.com/iho/buttonmarket/internal/usecase"
)

// repositories is one store backend.
type repositories struct {
	label        string
	txManager    usecase.TransactionManager
	accounts     usecase.AccountRepository
	transactions usecase.TransactionRepository
	listings     usecase.ListingRepository
	bids         usecase.BidRepository
	payouts      usecase.PayoutRepository
	outbox       usecase.OutboxRepository
	retrier      usecase.Retrier
}

// app is the wired service: HTTP handler plus background workers.
type app struct {
	router    http.Handler
	limiter   *middleware.RateLimiter
	sweeper   *sweeper.Sweeper
	payouts   *payoutworker.Worker
	publisher *eventpublisher.EventPublisher
	closers   []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newMemoryRepositories() repositories {
	store := memory.NewStore()
	return repositories{
		label:        store.Label(),
		txManager:    memory.NewTxManager(store),
		accounts:     memory.NewAccountRepository(store),
		transactions: memory.NewTransactionRepository(store),
		listings:     memory.NewListingRepository(store),
		bids:         memory.NewBidRepository(store),
		payouts:      memory.NewPayoutRepository(store),
		outbox:       memory.NewOutboxRepository(store),
	}
}

func newPostgresRepositories(pool *pgxpool.Pool, logger zerolog.Logger) repositories {
	return repositories{
		label:        config.StoreDriverPostgres,
		txManager:    postgresRepo.NewTxManager(pool),
		accounts:     postgresRepo.NewAccountRepository(pool),
		transactions: postgresRepo.NewTransactionRepository(pool),
		listings:     postgresRepo.NewListingRepository(pool),
		bids:         postgresRepo.NewBidRepository(pool),
		payouts:      postgresRepo.NewPayoutRepository(pool),
		outbox:       postgresRepo.NewOutboxRepository(pool),
		retrier:      postgresRepo.NewRetrier(logger),
	}
}

func buildApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger, reg *prometheus.Registry) (*app, error) {
	a := &app{}
	m := metrics.New(reg)
	checks := map[string]handler.HealthCheck{}

	var repos repositories
	if cfg.IsDemo() {
		logger.Warn().Msg("using the in-memory demo store; balances are lost on restart")
		repos = newMemoryRepositories()
	} else {
		if cfg.RunMigrations {
			if err := postgres.RunMigrations(cfg.DatabaseURL, logger); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}

		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		checks["postgres"] = pool.Ping
		logger.Info().Msg("connected to postgres")

		repos = newPostgresRepositories(pool, logger)
	}

	var (
		idempotency usecase.IdempotencyStore
		locker      usecase.Locker
	)
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		logger.Info().Msg("connected to redis")

		idempotency = redisRepo.NewIdempotencyStore(client)
		locker = redisRepo.NewLocker(client)
	}

	var publisher eventpublisher.Publisher = eventpublisher.NewLogPublisher(logger)
	if cfg.NATSURL != "" {
		natsPublisher, err := eventpublisher.ConnectNATS(eventpublisher.NATSConfig{
			URL:           cfg.NATSURL,
			SubjectPrefix: cfg.NATSSubjectPrefix,
		}, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to nats: %w", err)
		}
		a.closers = append(a.closers, func() { _ = natsPublisher.Close() })
		publisher = natsPublisher
		logger.Info().Str("url", cfg.NATSURL).Msg("publishing activity to nats")
	}

	clk := clock.New()
	idGen := postgresRepo.NewULIDGenerator()

	ledgerUC := usecase.NewLedgerUseCase(repos.txManager, repos.accounts, repos.transactions, repos.outbox, idGen, clk, repos.retrier, m)
	platformUC := usecase.NewPlatformUseCase(ledgerUC, nil)
	listingUC := usecase.NewListingUseCase(repos.txManager, repos.listings, repos.bids, repos.outbox, ledgerUC, idGen, clk, repos.retrier, m, cfg.ListingDuration)
	payoutUC := usecase.NewPayoutUseCase(repos.txManager, repos.payouts, repos.outbox, ledgerUC, idGen, clk, repos.retrier, m, logger)
	bidUC := usecase.NewBidUseCase(repos.txManager, repos.listings, repos.bids, repos.payouts, repos.outbox, ledgerUC, payoutUC, idGen, clk, repos.retrier, m, logger)
	lifecycleUC := usecase.NewLifecycleUseCase(repos.txManager, repos.listings, repos.bids, repos.outbox, ledgerUC, idGen, repos.retrier, m, logger)
	reconUC := usecase.NewReconciliationUseCase(repos.accounts, repos.transactions, repos.listings, repos.bids, clk)

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
	a.router = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(ledgerUC, cfg.InitialGrantButtons),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC),
		PlatformHandler:  handler.NewPlatformHandler(platformUC),
		ListingHandler:   handler.NewListingHandler(listingUC),
		BidHandler:       handler.NewBidHandler(bidUC, listingUC),
		AdminHandler:     handler.NewAdminHandler(lifecycleUC, reconUC, clk),
		HealthHandler:    handler.NewHealthHandler(repos.label, checks),
		IdempotencyStore: idempotency,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		JWTManager:       jwtManager,
		RateLimiter:      a.limiter,
		Metrics:          m,
		MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Logger:           logger,
		RequestTimeout:   cfg.HTTPWriteTimeout,
	})

	a.sweeper = sweeper.New(sweeper.Config{
		Lifecycle: lifecycleUC,
		Locker:    locker,
		Clock:     clk,
		Metrics:   m,
		Logger:    logger,
		Interval:  cfg.SweepInterval,
		BatchSize: cfg.SweepBatchSize,
	})
	a.payouts = payoutworker.New(payoutworker.Config{
		Queue:       payoutUC,
		Processor:   payoutUC,
		Logger:      logger,
		Interval:    cfg.PayoutInterval,
		BatchSize:   cfg.PayoutBatchSize,
		Workers:     cfg.PayoutWorkers,
		MaxAttempts: cfg.PayoutMaxAttempts,
	})
	a.publisher = eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: repos.outbox,
		Publisher:  publisher,
		Clock:      clk,
		Metrics:    m,
		Logger:     logger,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
	})

	return a, nil
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
