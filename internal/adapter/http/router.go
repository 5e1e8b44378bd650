package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/buttonmarket/internal/adapter/http/handler"
	"github.com/iho/buttonmarket/internal/adapter/http/middleware"
	"github.com/iho/buttonmarket/internal/infrastructure/auth"
	"github.com/iho/buttonmarket/internal/infrastructure/metrics"
	"github.com/iho/buttonmarket/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler  *handler.AccountHandler
	LedgerHandler   *handler.LedgerHandler
	PlatformHandler *handler.PlatformHandler
	ListingHandler  *handler.ListingHandler
	BidHandler      *handler.BidHandler
	AdminHandler    *handler.AdminHandler
	HealthHandler   *handler.HealthHandler

	// IdempotencyStore enables Idempotency-Key replay when set.
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	// JWTManager switches identity from X-Account-ID to bearer tokens when set.
	JWTManager     *auth.JWTManager
	RateLimiter    *middleware.RateLimiter
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	Logger         zerolog.Logger
	RequestTimeout time.Duration
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Metrics))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}
	if cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/packages", cfg.PlatformHandler.Packages)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(cfg.JWTManager, cfg.Metrics))
			if cfg.IdempotencyStore != nil {
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
			}

			r.Post("/packages/purchase", cfg.PlatformHandler.Purchase)
			r.Get("/activity", cfg.LedgerHandler.Activity)

			r.Route("/accounts/{id}", func(r chi.Router) {
				r.Post("/open", cfg.AccountHandler.Open)
				r.Get("/balance", cfg.AccountHandler.Balance)
				r.Get("/transactions", cfg.AccountHandler.Transactions)
				r.Get("/bids", cfg.ListingHandler.BidsByBidder)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/grant", cfg.LedgerHandler.Grant)
					r.Post("/deduct", cfg.LedgerHandler.Deduct)
					r.Post("/refund", cfg.LedgerHandler.Refund)
					r.Post("/deposit", cfg.LedgerHandler.Deposit)
				})
			})

			r.Route("/listings", func(r chi.Router) {
				r.Get("/", cfg.ListingHandler.List)
				r.Post("/items", cfg.ListingHandler.CreateItem)
				r.Post("/button-lots", cfg.ListingHandler.CreateButtonLot)
				r.With(middleware.RequireAdmin).Post("/sweep", cfg.AdminHandler.Sweep)

				r.Get("/{id}", cfg.ListingHandler.Get)
				r.Get("/{id}/bids", cfg.ListingHandler.Bids)
				r.Post("/{id}/bids", cfg.BidHandler.Place)
				r.Post("/{id}/cancel", cfg.ListingHandler.Cancel)
			})

			r.With(middleware.RequireAdmin).Get("/reconciliation", cfg.AdminHandler.Reconcile)
		})
	})

	return r
}
