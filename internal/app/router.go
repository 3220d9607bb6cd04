package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"tixpay/internal/handler"
	"tixpay/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	FeesHandler      *handler.FeesHandler
	PaymentHandler   *handler.PaymentHandler
	ReconcileHandler *handler.ReconcileHandler
	RedisClient      *redis.Client
	NewRelicApp      *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Fee quotes.
		transactions := v1.Group("/transactions")
		{
			transactions.POST("/fees", deps.FeesHandler.GetTransactionFees)
		}

		// Payment initiation. Mutating routes replay cached responses for a
		// repeated client Idempotency-Key.
		idempotent := middleware.IdempotencyMiddleware(deps.RedisClient)

		directDebit := v1.Group("/direct_debit", idempotent)
		{
			directDebit.POST("/payment_method", deps.PaymentHandler.CreateDirectDebitPaymentMethod)
			directDebit.POST("/payment_request", deps.PaymentHandler.CreateDirectDebitPaymentRequest)
		}

		eWallet := v1.Group("/e_wallet", idempotent)
		{
			eWallet.POST("/payment_request", deps.PaymentHandler.CreateEWalletPaymentRequest)
		}

		// Payment lookups.
		payments := v1.Group("/payments")
		{
			payments.GET("/:id", deps.PaymentHandler.GetPayment)
		}

		// Manual reconciliation trigger.
		v1.POST("/reconcile", deps.ReconcileHandler.Reconcile)
	}

	return router
}
