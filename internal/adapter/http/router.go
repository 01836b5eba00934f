package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osolis/billingcore/internal/adapter/http/handler"
	"github.com/osolis/billingcore/internal/adapter/http/middleware"
	"github.com/osolis/billingcore/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	BalanceHandler   *handler.BalanceHandler
	StatementHandler *handler.StatementHandler
	ChargeHandler    *handler.ChargeHandler
	PaymentHandler   *handler.PaymentHandler
	RebuildHandler   *handler.RebuildHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	RateLimiter      *middleware.RateLimiter
	Logging          *middleware.LoggingMiddleware
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.Logging != nil {
		r.Use(cfg.Logging.Wrap)
	}
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts (read-only reporting views)
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/{accountNumber}/balance", cfg.BalanceHandler.AccountBalance)
			r.Get("/{accountNumber}/statement", cfg.StatementHandler.AccountStatement)
		})

		// Clients
		r.Get("/clients/{clientID}/balance", cfg.BalanceHandler.ClientBalance)

		// Charges
		r.Route("/charges", func(r chi.Router) {
			r.Post("/", cfg.ChargeHandler.Create)
			r.Get("/", cfg.ChargeHandler.List)
			r.Get("/{id}", cfg.ChargeHandler.Get)
		})

		// Payments
		r.Route("/payments", func(r chi.Router) {
			r.Post("/", cfg.PaymentHandler.Create)
			r.Get("/", cfg.PaymentHandler.List)
			r.Get("/{id}", cfg.PaymentHandler.Get)
			r.Post("/{id}/allocate", cfg.PaymentHandler.Allocate)
		})

		// Rebuild
		r.Route("/rebuild", func(r chi.Router) {
			r.Post("/accounts", cfg.RebuildHandler.RebuildAll)
			r.Post("/accounts/{accountNumber}", cfg.RebuildHandler.RebuildAccount)
		})
	})

	return r
}
