package handler

import (
	"gmail-marketplace/internal/adapter/http/middleware"
	redisStore "gmail-marketplace/internal/adapter/storage/redis"
	"gmail-marketplace/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	WalletSvc      ports.WalletService
	ReconcileSvc   ports.ReconcileService
	CommerceSvc    ports.CommerceService
	ApprovalSvc    ports.ApprovalService
	AuthSvc        ports.AuthService
	StatsSvc       ports.StatsService
	TokenSvc       ports.TokenService
	SigSvc         ports.SignatureService
	Watcher        OrderWatcher               // nil = background polling disabled
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	WebhookSecret  string
	InternalToken  string
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Gateway push notifications (signature-authenticated)
	webhookHandler := NewWebhookHandler(deps.ReconcileSvc, deps.SigSvc, deps.WebhookSecret, deps.Logger)
	r.POST("/webhooks/cashfree", webhookHandler.HandleCashfree)

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Bot-authenticated routes (end users via the trusted channel) ---
	internalAuth := middleware.InternalAuth(deps.InternalToken, deps.Logger)
	walletHandler := NewWalletHandler(deps.ReconcileSvc, deps.WalletSvc, deps.Watcher)
	marketHandler := NewMarketHandler(deps.CommerceSvc)
	sellerHandler := NewSellerHandler(deps.CommerceSvc)

	users := v1.Group("/users", internalAuth)
	{
		users.POST("/register", rl("public"), marketHandler.RegisterUser)
	}

	wallet := v1.Group("/wallet", internalAuth)
	{
		wallet.POST("/orders", rl("wallet_orders"), walletHandler.CreateOrder)
		wallet.GET("/orders/:id", rl("public"), walletHandler.GetOrder)
		wallet.DELETE("/orders/:id", rl("public"), walletHandler.CancelOrder)
		wallet.GET("/balance", rl("public"), walletHandler.GetBalance)
		wallet.GET("/transactions", rl("public"), walletHandler.ListTransactions)
	}

	market := v1.Group("/market", internalAuth)
	{
		market.GET("/stock", rl("public"), marketHandler.GetStock)
		market.POST("/purchase", rl("purchase"), marketHandler.Purchase)
		market.GET("/purchases", rl("public"), marketHandler.ListPurchases)
	}

	seller := v1.Group("/seller", internalAuth)
	{
		seller.POST("/register", rl("public"), sellerHandler.Register)
		seller.POST("/batches", rl("seller_batch"), sellerHandler.SubmitBatch)
		seller.GET("/stats", rl("public"), sellerHandler.Overview)
		seller.POST("/withdrawals", rl("public"), sellerHandler.RequestWithdrawal)
	}

	// --- Admin routes ---
	adminHandler := NewAdminHandler(deps.AuthSvc, deps.ApprovalSvc, deps.StatsSvc)
	v1.POST("/admin/login", rl("admin_login"), adminHandler.Login)

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	admin := v1.Group("/admin", jwtAuth)
	{
		admin.GET("/sellers/pending", rl("admin"), adminHandler.PendingSellers)
		admin.POST("/sellers/:id/resolve", rl("admin"), adminHandler.ResolveSeller)
		admin.GET("/batches/pending", rl("admin"), adminHandler.PendingBatches)
		admin.POST("/batches/:id/resolve", rl("admin"), adminHandler.ResolveBatch)
		admin.GET("/withdrawals/pending", rl("admin"), adminHandler.PendingWithdrawals)
		admin.POST("/withdrawals/:id/resolve", rl("admin"), adminHandler.ResolveWithdrawal)
		admin.POST("/users/:id/ban", rl("admin"), adminHandler.BanUser)
		admin.GET("/stats", rl("admin"), adminHandler.Stats)
		admin.GET("/stats/revenue", rl("admin"), adminHandler.Revenue)
	}

	return r
}
