package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tferezin/onchainledger/internal/config"
	"github.com/tferezin/onchainledger/internal/handlers"
	"github.com/tferezin/onchainledger/internal/middleware"
	"github.com/tferezin/onchainledger/internal/providers"
	"github.com/tferezin/onchainledger/internal/services"
	"github.com/tferezin/onchainledger/pkg/logger"
)

// Server represents the main application server
type Server struct {
	httpServer    *http.Server
	config        *config.Config
	heliusClient  *providers.HeliusClient
	trustScores   *services.TrustScoreService
	projection    *services.ProjectionService
	paymentAudits *services.PaymentAuditService
	router        *handlers.Router
	cleanupStopCh chan struct{}
}

func main() {
	// Load .env if present; real environment wins
	_ = godotenv.Load()

	cfg := config.LoadConfig()

	// Initialize logging
	loggerConfig := &logger.Config{
		Level:       cfg.Logging.Level,
		Environment: cfg.Logging.Environment,
		OutputPaths: cfg.Logging.OutputPaths,
	}

	if err := logger.Initialize(loggerConfig); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log := logger.GetLogger()

	log.Info("Starting OnChainLedger trust score API",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.String("rpc_endpoint", cfg.Helius.RPCEndpoint),
		zap.Duration("full_cache_ttl", cfg.Cache.FullTTL),
		zap.Duration("teaser_cache_ttl", cfg.Cache.TeaserTTL),
		zap.Bool("payments_enabled", cfg.Payment.Enabled),
		zap.Int("rate_limit_rpm", cfg.RateLimit.RequestsPerMinute),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("environment", cfg.Logging.Environment),
	)

	server, err := NewServer(cfg)
	if err != nil {
		log.Fatal("Failed to create server", zap.Error(err))
	}

	if err := server.Start(); err != nil {
		log.Fatal("Server failed to start", zap.Error(err))
	}
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	log := logger.GetLogger()

	log.Info("Initializing server components")

	// Data providers
	log.Debug("Initializing data providers")
	heliusClient := providers.NewHeliusClient(&cfg.Helius)
	birdeyeClient := providers.NewBirdeyeClient(&cfg.Birdeye)
	jupiterClient := providers.NewJupiterClient(&cfg.Jupiter)

	// Test RPC connection
	log.Debug("Testing RPC connection health")
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := heliusClient.Ping(pingCtx); err != nil {
		log.Warn("Helius RPC health check failed", zap.Error(err))
	} else {
		log.Info("Helius RPC connection healthy")
	}

	// Core services
	log.Debug("Initializing trust score service")
	trustScores := services.NewTrustScoreService(heliusClient, birdeyeClient, jupiterClient, cfg)

	log.Debug("Initializing projection service")
	projection := services.NewProjectionService(trustScores, cfg)

	// Optional payment audit store
	log.Debug("Initializing payment audit store")
	paymentAudits, err := services.NewPaymentAuditService(&cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize payment audit store: %w", err)
	}
	if paymentAudits == nil {
		log.Info("Payment audit store disabled (no MongoDB URI configured)")
	}

	// Health checker and handler
	log.Debug("Initializing health checker")
	healthChecker := services.NewHealthChecker(heliusClient, paymentAudits, trustScores)
	healthHandler := handlers.NewHealthHandler(healthChecker, trustScores)

	// Router
	log.Debug("Initializing router")
	router := handlers.NewRouter(cfg, trustScores, projection, paymentAudits, healthHandler)

	log.Info("Server components initialized successfully")

	return &Server{
		config:        cfg,
		heliusClient:  heliusClient,
		trustScores:   trustScores,
		projection:    projection,
		paymentAudits: paymentAudits,
		router:        router,
		cleanupStopCh: make(chan struct{}),
	}, nil
}

// Start starts the HTTP server with graceful shutdown handling
func (s *Server) Start() error {
	log := logger.GetLogger()

	// Set Gin mode based on environment
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Debug("Creating Gin engine")

	engine := gin.New()

	s.setupMiddleware(engine)

	s.router.SetupHealthRoutes(engine)
	s.router.SetupRoutes(engine)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Server.Host, s.config.Server.Port),
		Handler:      engine,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,

		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
		TLSNextProto:      make(map[string]func(*http.Server, *tls.Conn, http.Handler)),
	}

	log.Info("HTTP server configured",
		zap.String("address", s.httpServer.Addr),
		zap.Duration("read_timeout", s.config.Server.ReadTimeout),
		zap.Duration("write_timeout", s.config.Server.WriteTimeout),
		zap.Duration("idle_timeout", s.config.Server.IdleTimeout),
	)

	// Rate limiter cleanup loop
	s.router.StartCleanupRoutine(s.cleanupStopCh)

	// Start server in a goroutine
	go func() {
		log.Info("Starting HTTP server", zap.String("address", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	return s.waitForShutdown()
}

// setupMiddleware configures the middleware stack
func (s *Server) setupMiddleware(engine *gin.Engine) {
	log := logger.GetLogger()

	log.Debug("Setting up middleware stack")

	// Recovery runs first so panics in the rest of the stack are caught
	engine.Use(logger.RecoveryMiddleware())
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.MetricsMiddleware(s.trustScores.GetMetricsCollector()))
	engine.Use(s.corsMiddleware())

	log.Debug("Middleware stack configured")
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, "+middleware.PaymentHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// waitForShutdown waits for interrupt signal and performs graceful shutdown
func (s *Server) waitForShutdown() error {
	log := logger.GetLogger()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info("Received shutdown signal", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Info("Shutting down HTTP server", zap.Duration("timeout", 30*time.Second))

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	s.cleanup()

	log.Info("Server gracefully stopped")
	return nil
}

// cleanup performs cleanup of all services
func (s *Server) cleanup() {
	log := logger.GetLogger()

	log.Info("Cleaning up services...")

	close(s.cleanupStopCh)

	if s.trustScores != nil {
		log.Debug("Stopping trust score service")
		s.trustScores.Stop()
	}

	if s.paymentAudits != nil {
		log.Debug("Closing payment audit store")
		if err := s.paymentAudits.Close(); err != nil {
			log.Error("Error closing payment audit store", zap.Error(err))
		}
	}

	// Sync logger before exit
	if err := logger.GetLogger().Sync(); err != nil {
		// Don't log this error as logger might be closed
		fmt.Printf("Error syncing logger: %v\n", err)
	}

	log.Info("Cleanup completed")
}
