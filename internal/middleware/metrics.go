package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tferezin/onchainledger/pkg/metrics"
)

// MetricsMiddleware records request counts and latency for every route
func MetricsMiddleware(collector *metrics.MetricsCollector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		collector.RecordRequest()

		c.Next()

		// 4xx and 5xx both count as failures
		collector.RecordRequestComplete(time.Since(start), c.Writer.Status() < 400)
	}
}
