package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/osolis/billingcore/internal/adapter/http"
	"github.com/osolis/billingcore/internal/adapter/http/handler"
	"github.com/osolis/billingcore/internal/adapter/http/middleware"
	postgresRepo "github.com/osolis/billingcore/internal/adapter/repository/postgres"
	redisRepo "github.com/osolis/billingcore/internal/adapter/repository/redis"
	"github.com/osolis/billingcore/internal/infrastructure/config"
	"github.com/osolis/billingcore/internal/infrastructure/logger"
	"github.com/osolis/billingcore/internal/infrastructure/metrics"
	"github.com/osolis/billingcore/internal/infrastructure/postgres"
	"github.com/osolis/billingcore/internal/infrastructure/redis"
	"github.com/osolis/billingcore/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	// Run migrations when a path is configured
	if cfg.MigrationsPath != "" {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	chargeRepo := postgresRepo.NewChargeRepository(pool)
	paymentRepo := postgresRepo.NewPaymentRepository(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	clientRepo := postgresRepo.NewClientRepository(pool)
	retrier := postgresRepo.NewRetrier()
	idGen := postgresRepo.NewULIDGenerator()
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	m := metrics.New()

	// All mutating use cases share one locker so work on the same parent
	// is serialized regardless of which entrypoint triggered it.
	locker := usecase.NewAccountLocker()

	// Initialize use cases
	chargeUC := usecase.NewChargeUseCase(chargeRepo, paymentRepo, accountRepo, idGen, cache, locker)
	paymentUC := usecase.NewAllocationUseCase(txManager, chargeRepo, paymentRepo, accountRepo, idGen, cache, locker, m)
	balanceUC := usecase.NewBalanceUseCase(accountRepo, clientRepo, chargeRepo, paymentRepo, cache, cfg.BalanceCacheTTL, m)
	statementUC := usecase.NewStatementUseCase(accountRepo, chargeRepo, paymentRepo)
	rebuildUC := usecase.NewRebuildUseCase(accountRepo, chargeRepo, paymentRepo, retrier, cache, locker, usecase.RebuildConfig{
		Workers:        cfg.RebuildWorkers,
		AccountTimeout: cfg.RebuildAccountTimeout,
	}, m)

	// Initialize handlers
	balanceHandler := handler.NewBalanceHandler(balanceUC)
	statementHandler := handler.NewStatementHandler(statementUC)
	chargeHandler := handler.NewChargeHandler(chargeUC)
	paymentHandler := handler.NewPaymentHandler(paymentUC)
	rebuildHandler := handler.NewRebuildHandler(rebuildUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		BalanceHandler:   balanceHandler,
		StatementHandler: statementHandler,
		ChargeHandler:    chargeHandler,
		PaymentHandler:   paymentHandler,
		RebuildHandler:   rebuildHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		RateLimiter:      newRateLimiter(cfg),
		Logging:          middleware.NewLoggingMiddleware(log.Logger),
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// newRateLimiter builds the per-IP limiter, or nil when disabled.
func newRateLimiter(cfg *config.Config) *middleware.RateLimiter {
	if cfg.RateLimitPerSecond <= 0 {
		return nil
	}
	return middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)
}

func shutdownTimeout(cfg *config.Config) time.Duration {
	if cfg.HTTPShutdownTimeout > 0 {
		return cfg.HTTPShutdownTimeout
	}
	return 10 * time.Second
}
