package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds performance metrics for the application
type Metrics struct {
	// Request metrics
	TotalRequests      int64 `json:"total_requests"`
	SuccessfulRequests int64 `json:"successful_requests"`
	FailedRequests     int64 `json:"failed_requests"`

	// Response time metrics
	AverageResponseTime time.Duration `json:"average_response_time"`
	MinResponseTime     time.Duration `json:"min_response_time"`
	MaxResponseTime     time.Duration `json:"max_response_time"`

	// Cache metrics
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`

	// Analysis metrics
	AnalysesCompleted int64         `json:"analyses_completed"`
	AnalysesFailed    int64         `json:"analyses_failed"`
	DegradedResults   int64         `json:"degraded_results"`
	AverageScoreTime  time.Duration `json:"average_score_time"`

	// Provider metrics
	ProviderCalls       int64         `json:"provider_calls"`
	ProviderFailures    int64         `json:"provider_failures"`
	AverageProviderTime time.Duration `json:"average_provider_time"`

	// Payment metrics
	PaymentsAccepted int64 `json:"payments_accepted"`
	PaymentsRejected int64 `json:"payments_rejected"`

	// Concurrency metrics
	ActiveRequests int64 `json:"active_requests"`
	MutexWaits     int64 `json:"mutex_waits"`

	// Internal fields for calculations
	totalResponseTime time.Duration
	totalScoreTime    time.Duration
	totalProviderTime time.Duration
	mutex             sync.RWMutex
}

// MetricsCollector provides thread-safe metrics collection
type MetricsCollector struct {
	metrics   *Metrics
	startTime time.Time
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics: &Metrics{
			MinResponseTime: time.Duration(^uint64(0) >> 1), // Max duration
		},
		startTime: time.Now(),
	}
}

// RecordRequest records a new request
func (mc *MetricsCollector) RecordRequest() {
	atomic.AddInt64(&mc.metrics.TotalRequests, 1)
	atomic.AddInt64(&mc.metrics.ActiveRequests, 1)
}

// RecordRequestComplete records request completion
func (mc *MetricsCollector) RecordRequestComplete(duration time.Duration, success bool) {
	atomic.AddInt64(&mc.metrics.ActiveRequests, -1)

	if success {
		atomic.AddInt64(&mc.metrics.SuccessfulRequests, 1)
	} else {
		atomic.AddInt64(&mc.metrics.FailedRequests, 1)
	}

	// Update response time metrics
	mc.metrics.mutex.Lock()
	defer mc.metrics.mutex.Unlock()

	mc.metrics.totalResponseTime += duration

	if duration < mc.metrics.MinResponseTime {
		mc.metrics.MinResponseTime = duration
	}

	if duration > mc.metrics.MaxResponseTime {
		mc.metrics.MaxResponseTime = duration
	}

	// Calculate average
	totalRequests := atomic.LoadInt64(&mc.metrics.TotalRequests)
	if totalRequests > 0 {
		mc.metrics.AverageResponseTime = mc.metrics.totalResponseTime / time.Duration(totalRequests)
	}
}

// RecordCacheHit records a cache hit
func (mc *MetricsCollector) RecordCacheHit() {
	atomic.AddInt64(&mc.metrics.CacheHits, 1)
}

// RecordCacheMiss records a cache miss
func (mc *MetricsCollector) RecordCacheMiss() {
	atomic.AddInt64(&mc.metrics.CacheMisses, 1)
}

// RecordAnalysis records a completed trust score aggregation along
// with how many of its analyzers ran degraded
func (mc *MetricsCollector) RecordAnalysis(duration time.Duration, degradedCount int, success bool) {
	if success {
		atomic.AddInt64(&mc.metrics.AnalysesCompleted, 1)
	} else {
		atomic.AddInt64(&mc.metrics.AnalysesFailed, 1)
	}
	atomic.AddInt64(&mc.metrics.DegradedResults, int64(degradedCount))

	mc.metrics.mutex.Lock()
	defer mc.metrics.mutex.Unlock()

	mc.metrics.totalScoreTime += duration

	totalAnalyses := atomic.LoadInt64(&mc.metrics.AnalysesCompleted) + atomic.LoadInt64(&mc.metrics.AnalysesFailed)
	if totalAnalyses > 0 {
		mc.metrics.AverageScoreTime = mc.metrics.totalScoreTime / time.Duration(totalAnalyses)
	}
}

// RecordProviderCall records an upstream data provider call
func (mc *MetricsCollector) RecordProviderCall(duration time.Duration, success bool) {
	atomic.AddInt64(&mc.metrics.ProviderCalls, 1)

	if !success {
		atomic.AddInt64(&mc.metrics.ProviderFailures, 1)
	}

	// Update provider time metrics
	mc.metrics.mutex.Lock()
	defer mc.metrics.mutex.Unlock()

	mc.metrics.totalProviderTime += duration

	// Calculate average
	totalProviderCalls := atomic.LoadInt64(&mc.metrics.ProviderCalls)
	if totalProviderCalls > 0 {
		mc.metrics.AverageProviderTime = mc.metrics.totalProviderTime / time.Duration(totalProviderCalls)
	}
}

// RecordPayment records a payment verification outcome
func (mc *MetricsCollector) RecordPayment(accepted bool) {
	if accepted {
		atomic.AddInt64(&mc.metrics.PaymentsAccepted, 1)
	} else {
		atomic.AddInt64(&mc.metrics.PaymentsRejected, 1)
	}
}

// RecordMutexWait records a mutex wait
func (mc *MetricsCollector) RecordMutexWait() {
	atomic.AddInt64(&mc.metrics.MutexWaits, 1)
}

// GetMetrics returns a copy of current metrics
func (mc *MetricsCollector) GetMetrics() *Metrics {
	mc.metrics.mutex.RLock()
	defer mc.metrics.mutex.RUnlock()

	// Create a copy to avoid race conditions
	return &Metrics{
		TotalRequests:       atomic.LoadInt64(&mc.metrics.TotalRequests),
		SuccessfulRequests:  atomic.LoadInt64(&mc.metrics.SuccessfulRequests),
		FailedRequests:      atomic.LoadInt64(&mc.metrics.FailedRequests),
		AverageResponseTime: mc.metrics.AverageResponseTime,
		MinResponseTime:     mc.metrics.MinResponseTime,
		MaxResponseTime:     mc.metrics.MaxResponseTime,
		CacheHits:           atomic.LoadInt64(&mc.metrics.CacheHits),
		CacheMisses:         atomic.LoadInt64(&mc.metrics.CacheMisses),
		AnalysesCompleted:   atomic.LoadInt64(&mc.metrics.AnalysesCompleted),
		AnalysesFailed:      atomic.LoadInt64(&mc.metrics.AnalysesFailed),
		DegradedResults:     atomic.LoadInt64(&mc.metrics.DegradedResults),
		AverageScoreTime:    mc.metrics.AverageScoreTime,
		ProviderCalls:       atomic.LoadInt64(&mc.metrics.ProviderCalls),
		ProviderFailures:    atomic.LoadInt64(&mc.metrics.ProviderFailures),
		AverageProviderTime: mc.metrics.AverageProviderTime,
		PaymentsAccepted:    atomic.LoadInt64(&mc.metrics.PaymentsAccepted),
		PaymentsRejected:    atomic.LoadInt64(&mc.metrics.PaymentsRejected),
		ActiveRequests:      atomic.LoadInt64(&mc.metrics.ActiveRequests),
		MutexWaits:          atomic.LoadInt64(&mc.metrics.MutexWaits),
	}
}

// GetUptime returns the uptime since metrics collection started
func (mc *MetricsCollector) GetUptime() time.Duration {
	return time.Since(mc.startTime)
}

// Reset resets all metrics
func (mc *MetricsCollector) Reset() {
	mc.metrics.mutex.Lock()
	defer mc.metrics.mutex.Unlock()

	atomic.StoreInt64(&mc.metrics.TotalRequests, 0)
	atomic.StoreInt64(&mc.metrics.SuccessfulRequests, 0)
	atomic.StoreInt64(&mc.metrics.FailedRequests, 0)
	atomic.StoreInt64(&mc.metrics.CacheHits, 0)
	atomic.StoreInt64(&mc.metrics.CacheMisses, 0)
	atomic.StoreInt64(&mc.metrics.AnalysesCompleted, 0)
	atomic.StoreInt64(&mc.metrics.AnalysesFailed, 0)
	atomic.StoreInt64(&mc.metrics.DegradedResults, 0)
	atomic.StoreInt64(&mc.metrics.ProviderCalls, 0)
	atomic.StoreInt64(&mc.metrics.ProviderFailures, 0)
	atomic.StoreInt64(&mc.metrics.PaymentsAccepted, 0)
	atomic.StoreInt64(&mc.metrics.PaymentsRejected, 0)
	atomic.StoreInt64(&mc.metrics.ActiveRequests, 0)
	atomic.StoreInt64(&mc.metrics.MutexWaits, 0)

	mc.metrics.AverageResponseTime = 0
	mc.metrics.MinResponseTime = time.Duration(^uint64(0) >> 1)
	mc.metrics.MaxResponseTime = 0
	mc.metrics.AverageScoreTime = 0
	mc.metrics.AverageProviderTime = 0
	mc.metrics.totalResponseTime = 0
	mc.metrics.totalScoreTime = 0
	mc.metrics.totalProviderTime = 0

	mc.startTime = time.Now()
}

// GetCacheHitRatio returns the cache hit ratio as a percentage
func (mc *MetricsCollector) GetCacheHitRatio() float64 {
	hits := atomic.LoadInt64(&mc.metrics.CacheHits)
	misses := atomic.LoadInt64(&mc.metrics.CacheMisses)
	total := hits + misses

	if total == 0 {
		return 0.0
	}

	return float64(hits) / float64(total) * 100.0
}

// GetSuccessRate returns the success rate as a percentage
func (mc *MetricsCollector) GetSuccessRate() float64 {
	successful := atomic.LoadInt64(&mc.metrics.SuccessfulRequests)
	total := atomic.LoadInt64(&mc.metrics.TotalRequests)

	if total == 0 {
		return 0.0
	}

	return float64(successful) / float64(total) * 100.0
}
