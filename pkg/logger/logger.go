// Package logger provides the process-wide structured logger and the
// request logging middleware used by the HTTP layer. Every request is
// tagged with a correlation ID that is echoed back to the caller.
package logger

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ctxKey string

const (
	correlationIDKey ctxKey = "correlation_id"
	requestIDKey     ctxKey = "request_id"
)

// Logger is a thin wrapper around zap that knows how to pick up
// correlation fields from a request context.
type Logger struct {
	*zap.Logger
}

// Config controls the global logger built by Initialize.
type Config struct {
	Level       string   `json:"level"`
	Environment string   `json:"environment"`
	OutputPaths []string `json:"output_paths"`
}

var globalLogger *Logger

// Initialize builds the global logger. Production gets the JSON encoder
// without stacktraces, everything else gets the development console
// encoder.
func Initialize(cfg *Config) error {
	var zc zap.Config
	if cfg.Environment == "production" {
		zc = zap.NewProductionConfig()
		zc.DisableStacktrace = true
	} else {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zc.Level = level

	if len(cfg.OutputPaths) > 0 {
		zc.OutputPaths = cfg.OutputPaths
	}

	zc.InitialFields = map[string]interface{}{
		"service": "onchainledger",
	}

	base, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	globalLogger = &Logger{Logger: base}
	return nil
}

// GetLogger returns the global logger, initializing a development
// logger on first use if Initialize was never called. The fallback
// keeps tests and one-off tools from having to configure logging.
func GetLogger() *Logger {
	if globalLogger == nil {
		if err := Initialize(&Config{Level: "info", Environment: "development"}); err != nil {
			panic(fmt.Sprintf("failed to initialize fallback logger: %v", err))
		}
	}
	return globalLogger
}

// WithContext returns a logger carrying the correlation and request IDs
// stored in ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	fields := make([]zap.Field, 0, 2)
	if id, ok := ctx.Value(correlationIDKey).(string); ok && id != "" {
		fields = append(fields, zap.String("correlation_id", id))
	}
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if len(fields) == 0 {
		return l
	}
	return &Logger{Logger: l.Logger.With(fields...)}
}

// WithFields returns a logger with the given fields attached to every
// entry.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	zapFields := make([]zap.Field, 0, len(fields))
	for key, value := range fields {
		zapFields = append(zapFields, zap.Any(key, value))
	}
	return &Logger{Logger: l.Logger.With(zapFields...)}
}

// CorrelationIDFromContext returns the request's correlation ID or the
// empty string.
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

// LoggingMiddleware tags every request with fresh correlation and
// request IDs, exposes them as response headers, and logs request start
// and completion. Completion is logged at warn for 4xx and error for
// 5xx responses.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		correlationID := uuid.New().String()
		requestID := uuid.New().String()

		ctx := context.WithValue(c.Request.Context(), correlationIDKey, correlationID)
		ctx = context.WithValue(ctx, requestIDKey, requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Header("X-Correlation-ID", correlationID)
		c.Header("X-Request-ID", requestID)

		log := GetLogger().WithContext(ctx)

		log.Info("Request started",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status_code", status),
			zap.Duration("duration", time.Since(start)),
			zap.Int("response_size", c.Writer.Size()),
		}

		switch {
		case status >= 500:
			log.Error("Request completed", fields...)
		case status >= 400:
			log.Warn("Request completed", fields...)
		default:
			log.Info("Request completed", fields...)
		}

		for _, err := range c.Errors {
			log.Error("Request error", zap.Error(err.Err))
		}
	}
}

// RecoveryMiddleware recovers from handler panics, logs them with the
// request's correlation fields, and answers with a generic 500 body.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		ctx := c.Request.Context()
		GetLogger().WithContext(ctx).Error("Panic recovered",
			zap.Any("panic", recovered),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
		)

		c.JSON(500, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Internal server error",
				"details": "An unexpected error occurred",
			},
			"timestamp":      time.Now().UTC().Format(time.RFC3339),
			"correlation_id": CorrelationIDFromContext(ctx),
		})
	})
}
