package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gmail-marketplace/config"
	"gmail-marketplace/internal/adapter/gateway/cashfree"
	httpHandler "gmail-marketplace/internal/adapter/http/handler"
	pgStorage "gmail-marketplace/internal/adapter/storage/postgres"
	redisStorage "gmail-marketplace/internal/adapter/storage/redis"
	"gmail-marketplace/internal/core/ports"
	"gmail-marketplace/internal/service"
	"gmail-marketplace/pkg/logger"
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
		Msg("Starting Gmail Marketplace")

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
	userRepo := pgStorage.NewUserRepo(pool)
	sellerRepo := pgStorage.NewSellerRepo(pool)
	inventoryRepo := pgStorage.NewInventoryRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	withdrawalRepo := pgStorage.NewWithdrawalRepo(pool)
	adminRepo := pgStorage.NewAdminRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)
	statsRepo := pgStorage.NewStatsRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	stockCache := redisStorage.NewStockCache(rdb, 30*time.Second)
	sessionLock := redisStorage.NewSessionLock(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	sigSvc := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Payment gateway client
	gateway := cashfree.NewClient(cfg.Gateway, log)

	// Admin notification webhook (best-effort)
	notifier := service.NewWebhookNotifier(cfg.Notify.AdminWebhookURL, &http.Client{Timeout: 10 * time.Second}, log)

	// Initialize business services
	walletSvc := service.NewWalletService(txRepo, userRepo, transactor, log)
	reconcileSvc := service.NewReconcileService(walletSvc, txRepo, gateway, cfg.Market, log)
	commerceSvc := service.NewCommerceService(
		userRepo,
		sellerRepo,
		inventoryRepo,
		txRepo,
		withdrawalRepo,
		encSvc,
		stockCache,
		sessionLock,
		notifier,
		transactor,
		cfg.Market,
		log,
	)
	approvalSvc := service.NewApprovalService(
		userRepo,
		sellerRepo,
		inventoryRepo,
		withdrawalRepo,
		auditRepo,
		stockCache,
		transactor,
		log,
	)
	authSvc := service.NewAuthService(adminRepo, hashSvc, tokenSvc)
	statsSvc := service.NewStatsService(statsRepo, log)

	// Background order watcher polls pending top-up orders
	watcher := service.NewWatcher(reconcileSvc, cfg.Market.PollInterval, log)
	defer watcher.Shutdown()

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		WalletSvc:      walletSvc,
		ReconcileSvc:   reconcileSvc,
		CommerceSvc:    commerceSvc,
		ApprovalSvc:    approvalSvc,
		AuthSvc:        authSvc,
		StatsSvc:       statsSvc,
		TokenSvc:       tokenSvc,
		SigSvc:         sigSvc,
		Watcher:        watcher,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		WebhookSecret:  cfg.Gateway.WebhookSecret,
		InternalToken:  cfg.API.InternalToken,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
