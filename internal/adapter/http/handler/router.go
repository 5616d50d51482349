package handler

import (
	"virtual-wallet/internal/adapter/http/middleware"
	redisStore "virtual-wallet/internal/adapter/storage/redis"
	"virtual-wallet/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	CustomerSvc    ports.CustomerService
	WalletSvc      ports.WalletService
	PaymentSvc     ports.PaymentService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

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

	customerHandler := NewCustomerHandler(deps.CustomerSvc)
	walletHandler := NewWalletHandler(deps.WalletSvc)
	paymentHandler := NewPaymentHandler(deps.PaymentSvc)

	// API v1 routes
	v1 := r.Group("/api/v1")

	clients := v1.Group("/clients")
	{
		clients.POST("/register", rl("clients_register"), customerHandler.Register)
	}

	wallet := v1.Group("/wallet")
	{
		wallet.POST("/top-up", rl("wallet_topup"), walletHandler.TopUp)
		wallet.GET("/balance", rl("wallet_balance"), walletHandler.GetBalance)
	}

	payments := v1.Group("/payments")
	{
		payments.POST("/init", rl("payments_init"), paymentHandler.InitPayment)
		payments.POST("/confirm", rl("payments_confirm"), paymentHandler.ConfirmPayment)
	}

	return r
}
