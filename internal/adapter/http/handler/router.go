package handler

import (
	"wallet-ledger/internal/adapter/http/middleware"
	redisStore "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc      ports.LedgerService
	AssetSvc       ports.AssetService
	ReportingSvc   ports.ReportingService
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

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Ledger mutations ---
	ledgerHandler := NewLedgerHandler(deps.LedgerSvc)
	wallet := v1.Group("/wallet")
	{
		wallet.POST("/credit", rl("ledger"), ledgerHandler.Credit)
		wallet.POST("/debit", rl("ledger"), ledgerHandler.Debit)
		wallet.POST("/lock", rl("ledger"), ledgerHandler.Lock)
		wallet.POST("/release", rl("ledger"), ledgerHandler.Release)
		wallet.POST("/commit", rl("ledger"), ledgerHandler.Commit)
		wallet.POST("/relock", rl("ledger"), ledgerHandler.Relock)
	}

	// --- Read side ---
	assetHandler := NewAssetHandler(deps.AssetSvc)
	balanceHandler := NewBalanceHandler(deps.ReportingSvc)

	v1.GET("/assets", rl("assets"), assetHandler.ListAssets)
	v1.GET("/assets/:symbol", rl("assets"), assetHandler.GetAsset)
	v1.GET("/balances", rl("balances"), balanceHandler.GetBalances)
	v1.GET("/balances/:symbol", rl("balances"), balanceHandler.GetBalance)

	return r
}
