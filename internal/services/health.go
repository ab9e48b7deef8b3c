package services

import (
	"context"
	"fmt"
	"time"
)

// HealthStatus represents the health status of a service
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusDisabled  HealthStatus = "disabled"
)

// HealthCheck represents a health check result
type HealthCheck struct {
	Service      string        `json:"service"`
	Status       HealthStatus  `json:"status"`
	Message      string        `json:"message,omitempty"`
	ResponseTime time.Duration `json:"response_time"`
	Timestamp    time.Time     `json:"timestamp"`
}

// Pinger is the reachability surface a dependency exposes to health
// checks
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker probes the service's dependencies: the chain RPC
// provider and the optional payment audit store. The market and swap
// providers are deliberately not probed; their failures degrade
// individual analyzers instead of the service.
type HealthChecker struct {
	chain    Pinger
	payments *PaymentAuditService
	scores   *TrustScoreService
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(chain Pinger, payments *PaymentAuditService, scores *TrustScoreService) *HealthChecker {
	return &HealthChecker{
		chain:    chain,
		payments: payments,
		scores:   scores,
	}
}

// CheckChainProvider verifies the RPC provider answers
func (hc *HealthChecker) CheckChainProvider() *HealthCheck {
	start := time.Now()

	healthCheck := &HealthCheck{
		Service:   "helius_rpc",
		Timestamp: start,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := hc.chain.Ping(ctx); err != nil {
		healthCheck.Status = HealthStatusUnhealthy
		healthCheck.Message = fmt.Sprintf("ping failed: %v", err)
		healthCheck.ResponseTime = time.Since(start)
		return healthCheck
	}

	healthCheck.Status = HealthStatusHealthy
	healthCheck.Message = "rpc reachable"
	healthCheck.ResponseTime = time.Since(start)
	return healthCheck
}

// CheckPaymentStore verifies the payment audit store, when configured
func (hc *HealthChecker) CheckPaymentStore() *HealthCheck {
	start := time.Now()

	healthCheck := &HealthCheck{
		Service:   "payment_store",
		Timestamp: start,
	}

	if hc.payments == nil {
		healthCheck.Status = HealthStatusDisabled
		healthCheck.Message = "payment audit store not configured"
		healthCheck.ResponseTime = time.Since(start)
		return healthCheck
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// A signature lookup exercises connectivity and the collection in
	// one round trip
	if _, err := hc.payments.SeenSignature(ctx, "healthcheck"); err != nil {
		healthCheck.Status = HealthStatusDegraded
		healthCheck.Message = fmt.Sprintf("store query failed: %v", err)
		healthCheck.ResponseTime = time.Since(start)
		return healthCheck
	}

	healthCheck.Status = HealthStatusHealthy
	healthCheck.Message = "store reachable"
	healthCheck.ResponseTime = time.Since(start)
	return healthCheck
}

// CheckCaches reports result cache occupancy
func (hc *HealthChecker) CheckCaches() *HealthCheck {
	start := time.Now()
	stats := hc.scores.GetCacheStats()

	return &HealthCheck{
		Service: "result_cache",
		Status:  HealthStatusHealthy,
		Message: fmt.Sprintf("%v full entries, %v teaser entries",
			stats["full_cache_size"], stats["teaser_cache_size"]),
		ResponseTime: time.Since(start),
		Timestamp:    start,
	}
}

// GetDetailedHealth returns comprehensive health information
func (hc *HealthChecker) GetDetailedHealth() map[string]*HealthCheck {
	return map[string]*HealthCheck{
		"chain_provider": hc.CheckChainProvider(),
		"payment_store":  hc.CheckPaymentStore(),
		"result_cache":   hc.CheckCaches(),
	}
}
