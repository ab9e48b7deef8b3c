package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tferezin/onchainledger/internal/services"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	checker *services.HealthChecker
	scores  *services.TrustScoreService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(checker *services.HealthChecker, scores *services.TrustScoreService) *HealthHandler {
	return &HealthHandler{
		checker: checker,
		scores:  scores,
	}
}

// HealthResponse represents the overall health response
type HealthResponse struct {
	Status    services.HealthStatus           `json:"status"`
	Timestamp time.Time                       `json:"timestamp"`
	Services  map[string]*services.HealthCheck `json:"services"`
	Version   string                          `json:"version,omitempty"`
}

// GetHealth returns the overall health status
func (h *HealthHandler) GetHealth(c *gin.Context) {
	serviceChecks := h.checker.GetDetailedHealth()

	// Disabled dependencies never count against overall health
	overallStatus := services.HealthStatusHealthy
	for _, check := range serviceChecks {
		if check.Status == services.HealthStatusUnhealthy {
			overallStatus = services.HealthStatusUnhealthy
			break
		} else if check.Status == services.HealthStatusDegraded && overallStatus == services.HealthStatusHealthy {
			overallStatus = services.HealthStatusDegraded
		}
	}

	response := HealthResponse{
		Status:    overallStatus,
		Timestamp: time.Now(),
		Services:  serviceChecks,
		Version:   "1.0.0",
	}

	statusCode := http.StatusOK
	if overallStatus == services.HealthStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

// GetLiveness returns a simple liveness check
func (h *HealthHandler) GetLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now(),
	})
}

// GetReadiness returns readiness status (checks if the chain provider is available)
func (h *HealthHandler) GetReadiness(c *gin.Context) {
	chainHealth := h.checker.CheckChainProvider()

	if chainHealth.Status == services.HealthStatusUnhealthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "not_ready",
			"message":   "chain provider not available",
			"timestamp": time.Now(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}

// GetStats returns cache and aggregation statistics for monitoring
func (h *HealthHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"cache":     h.scores.GetCacheStats(),
		"metrics":   h.scores.GetMetrics(),
		"timestamp": time.Now(),
	})
}
