package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tferezin/onchainledger/internal/config"
	"github.com/tferezin/onchainledger/internal/middleware"
	"github.com/tferezin/onchainledger/internal/services"
	"github.com/tferezin/onchainledger/pkg/ratelimiter"
)

// Router handles HTTP routing setup
type Router struct {
	scoreHandler   *ScoreHandler
	analyzeHandler *AnalyzeHandler
	compareHandler *CompareHandler
	batchHandler   *BatchHandler
	healthHandler  *HealthHandler

	config      *config.Config
	projection  *services.ProjectionService
	payments    *services.PaymentAuditService
	scores      *services.TrustScoreService
	rateLimiter *ratelimiter.RateLimiter
}

// NewRouter creates a new Router instance with all handlers
func NewRouter(cfg *config.Config, scores *services.TrustScoreService, projection *services.ProjectionService, payments *services.PaymentAuditService, healthHandler *HealthHandler) *Router {
	return &Router{
		scoreHandler:   NewScoreHandler(scores, projection),
		analyzeHandler: NewAnalyzeHandler(scores),
		compareHandler: NewCompareHandler(projection),
		batchHandler:   NewBatchHandler(projection),
		healthHandler:  healthHandler,
		config:         cfg,
		projection:     projection,
		payments:       payments,
		scores:         scores,
		rateLimiter:    ratelimiter.New(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.WindowSize),
	}
}

// SetupRoutes configures all API routes. The free teaser endpoint is
// rate limited per IP; the paid endpoints sit behind the x402 gate
// instead.
func (r *Router) SetupRoutes(engine *gin.Engine) {
	collector := r.scores.GetMetricsCollector()

	api := engine.Group("/api")
	{
		// Free tier
		api.GET("/score/:tokenAddress", r.rateLimiter.Middleware(), r.scoreHandler.GetScore)

		// Paid tier. The batch route is registered first so the
		// parameterized analyze route cannot shadow it.
		api.POST("/analyze/batch",
			middleware.PaymentMiddleware(r.config, r.payments, collector, middleware.BatchPrice(r.projection)),
			r.batchHandler.AnalyzeBatch)
		api.POST("/analyze/:tokenAddress",
			middleware.PaymentMiddleware(r.config, r.payments, collector, middleware.FixedPrice(r.config.Payment.PriceLamports)),
			r.analyzeHandler.Analyze)
		api.POST("/compare",
			middleware.PaymentMiddleware(r.config, r.payments, collector, middleware.FixedPrice(r.config.Payment.ComparePrice)),
			r.compareHandler.Compare)
	}
}

// SetupHealthRoutes configures health check routes
func (r *Router) SetupHealthRoutes(engine *gin.Engine) {
	health := engine.Group("/health")
	{
		health.GET("", r.healthHandler.GetHealth)          // Overall health
		health.GET("/live", r.healthHandler.GetLiveness)   // Liveness probe
		health.GET("/ready", r.healthHandler.GetReadiness) // Readiness probe
		health.GET("/stats", r.healthHandler.GetStats)     // Cache and metrics stats
	}
}

// StartCleanupRoutine starts the rate limiter cleanup loop
func (r *Router) StartCleanupRoutine(stopCh <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(r.config.RateLimit.CleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.rateLimiter.Cleanup()
			case <-stopCh:
				return
			}
		}
	}()
}
