package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `json:"server"`
	Helius    HeliusConfig    `json:"helius"`
	Birdeye   BirdeyeConfig   `json:"birdeye"`
	Jupiter   JupiterConfig   `json:"jupiter"`
	Cache     CacheConfig     `json:"cache"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Payment   PaymentConfig   `json:"payment"`
	MongoDB   MongoDBConfig   `json:"mongodb"`
	Logging   LoggingConfig   `json:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `json:"port"`
	Host         string        `json:"host"`
	BaseURL      string        `json:"base_url"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// HeliusConfig holds Helius RPC and enhanced API configuration
type HeliusConfig struct {
	RPCEndpoint    string        `json:"rpc_endpoint"`
	APIEndpoint    string        `json:"api_endpoint"`
	APIKey         string        `json:"api_key"`
	Timeout        time.Duration `json:"timeout"`
	HistoryTimeout time.Duration `json:"history_timeout"`
	ParseTimeout   time.Duration `json:"parse_timeout"`
}

// BirdeyeConfig holds Birdeye market data API configuration
type BirdeyeConfig struct {
	Endpoint      string        `json:"endpoint"`
	APIKey        string        `json:"api_key"`
	Timeout       time.Duration `json:"timeout"`
	OHLCVTimeout  time.Duration `json:"ohlcv_timeout"`
	Chain         string        `json:"chain"`
	CandleType    string        `json:"candle_type"`
	HistoryWindow time.Duration `json:"history_window"`
}

// JupiterConfig holds Jupiter swap quote API configuration
type JupiterConfig struct {
	Endpoint    string        `json:"endpoint"`
	Timeout     time.Duration `json:"timeout"`
	SlippageBps int           `json:"slippage_bps"`
	SellAmount  int64         `json:"sell_amount"`
}

// CacheConfig holds result cache configuration. Full and teaser results
// live in independent buckets with independent TTLs.
type CacheConfig struct {
	FullTTL   time.Duration `json:"full_ttl"`
	TeaserTTL time.Duration `json:"teaser_ttl"`
}

// RateLimitConfig holds free-tier rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int           `json:"requests_per_minute"`
	WindowSize        time.Duration `json:"window_size"`
	CleanupInterval   time.Duration `json:"cleanup_interval"`
}

// PaymentConfig holds x402 payment gate configuration
type PaymentConfig struct {
	Enabled         bool   `json:"enabled"`
	WalletAddress   string `json:"wallet_address"`
	Network         string `json:"network"`
	PriceLamports   string `json:"price_lamports"`
	ComparePrice    string `json:"compare_price_lamports"`
	MinSignatureLen int    `json:"min_signature_len"`
}

// MongoDBConfig holds the optional payment audit store configuration
type MongoDBConfig struct {
	URI               string        `json:"uri"`
	Database          string        `json:"database"`
	PaymentCollection string        `json:"payment_collection"`
	ConnectTimeout    time.Duration `json:"connect_timeout"`
	MaxPoolSize       uint64        `json:"max_pool_size"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string   `json:"level"`
	Environment string   `json:"environment"`
	OutputPaths []string `json:"output_paths"`
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			BaseURL:      getEnv("BASE_URL", "http://localhost:8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Helius: HeliusConfig{
			RPCEndpoint:    getEnv("HELIUS_RPC_ENDPOINT", "https://mainnet.helius-rpc.com"),
			APIEndpoint:    getEnv("HELIUS_API_ENDPOINT", "https://api.helius.xyz/v0"),
			APIKey:         getEnv("HELIUS_API_KEY", ""),
			Timeout:        getDurationEnv("HELIUS_TIMEOUT", 10*time.Second),
			HistoryTimeout: getDurationEnv("HELIUS_HISTORY_TIMEOUT", 15*time.Second),
			ParseTimeout:   getDurationEnv("HELIUS_PARSE_TIMEOUT", 30*time.Second),
		},
		Birdeye: BirdeyeConfig{
			Endpoint:      getEnv("BIRDEYE_API_ENDPOINT", "https://public-api.birdeye.so"),
			APIKey:        getEnv("BIRDEYE_API_KEY", ""),
			Timeout:       getDurationEnv("BIRDEYE_TIMEOUT", 10*time.Second),
			OHLCVTimeout:  getDurationEnv("BIRDEYE_OHLCV_TIMEOUT", 15*time.Second),
			Chain:         getEnv("BIRDEYE_CHAIN", "solana"),
			CandleType:    getEnv("BIRDEYE_CANDLE_TYPE", "1H"),
			HistoryWindow: getDurationEnv("BIRDEYE_HISTORY_WINDOW", 7*24*time.Hour),
		},
		Jupiter: JupiterConfig{
			Endpoint:    getEnv("JUPITER_API_ENDPOINT", "https://quote-api.jup.ag/v6"),
			Timeout:     getDurationEnv("JUPITER_TIMEOUT", 10*time.Second),
			SlippageBps: getIntEnv("JUPITER_SLIPPAGE_BPS", 500),
			SellAmount:  getInt64Env("JUPITER_SELL_AMOUNT", 1000000),
		},
		Cache: CacheConfig{
			FullTTL:   getDurationEnv("CACHE_FULL_TTL", 15*time.Minute),
			TeaserTTL: getDurationEnv("CACHE_TEASER_TTL", 30*time.Minute),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getIntEnv("RATE_LIMIT_REQUESTS_PER_MINUTE", 10),
			WindowSize:        getDurationEnv("RATE_LIMIT_WINDOW_SIZE", time.Minute),
			CleanupInterval:   getDurationEnv("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		},
		Payment: PaymentConfig{
			Enabled:         getBoolEnv("X402_ENABLED", true),
			WalletAddress:   getEnv("X402_WALLET_ADDRESS", ""),
			Network:         getEnv("X402_NETWORK", "solana-mainnet"),
			PriceLamports:   getEnv("X402_PRICE_LAMPORTS", "10000"),
			ComparePrice:    getEnv("X402_COMPARE_PRICE_LAMPORTS", "15000"),
			MinSignatureLen: getIntEnv("X402_MIN_SIGNATURE_LEN", 64),
		},
		MongoDB: MongoDBConfig{
			URI:               getEnv("MONGODB_URI", ""),
			Database:          getEnv("MONGODB_DATABASE", "onchainledger"),
			PaymentCollection: getEnv("MONGODB_PAYMENT_COLLECTION", "payments"),
			ConnectTimeout:    getDurationEnv("MONGODB_CONNECT_TIMEOUT", 10*time.Second),
			MaxPoolSize:       getUint64Env("MONGODB_MAX_POOL_SIZE", 100),
		},
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Environment: getEnv("LOG_ENVIRONMENT", "development"),
			OutputPaths: getStringSliceEnv("LOG_OUTPUT_PATHS", []string{"stdout"}),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if int64Value, err := strconv.ParseInt(value, 10, 64); err == nil {
			return int64Value
		}
	}
	return defaultValue
}

func getUint64Env(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if uint64Value, err := strconv.ParseUint(value, 10, 64); err == nil {
			return uint64Value
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		// Simple comma-separated parsing
		return []string{value}
	}
	return defaultValue
}
