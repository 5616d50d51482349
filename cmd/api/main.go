package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"virtual-wallet/config"
	httpHandler "virtual-wallet/internal/adapter/http/handler"
	"virtual-wallet/internal/adapter/mail"
	pgStorage "virtual-wallet/internal/adapter/storage/postgres"
	redisStorage "virtual-wallet/internal/adapter/storage/redis"
	"virtual-wallet/internal/core/ports"
	"virtual-wallet/internal/service"
	"virtual-wallet/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Virtual Wallet")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	customerRepo := pgStorage.NewCustomerRepo(pool)
	walletRepo := pgStorage.NewWalletRepo(pool)
	topUpRepo := pgStorage.NewTopUpRepo(pool)
	sessionRepo := pgStorage.NewPaymentSessionRepo(pool)
	paymentRepo := pgStorage.NewPaymentRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize adapters
	hasher := service.NewArgon2TokenHasher()
	notifier := mail.NewNotifier(cfg.Mail, nil, log)

	// Initialize business services
	customerSvc := service.NewCustomerService(customerRepo, walletRepo, transactor, log)
	walletSvc := service.NewWalletService(customerRepo, walletRepo, topUpRepo, transactor, log)
	paymentSvc := service.NewPaymentService(
		customerRepo,
		walletRepo,
		sessionRepo,
		paymentRepo,
		transactor,
		hasher,
		notifier,
		cfg.Tokens.TTL,
		log,
	)

	// Expiry sweeper (optional)
	sweeperCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	if cfg.Tokens.SweepInterval > 0 {
		sweeper := service.NewSessionSweeper(sessionRepo, cfg.Tokens.SweepInterval, log)
		go sweeper.Run(sweeperCtx)
	}

	// Initialize rate limit store
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		CustomerSvc:    customerSvc,
		WalletSvc:      walletSvc,
		PaymentSvc:     paymentSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
