package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tferezin/onchainledger/internal/analyzers"
	"github.com/tferezin/onchainledger/internal/config"
	"github.com/tferezin/onchainledger/internal/models"
	"github.com/tferezin/onchainledger/internal/providers"
	"github.com/tferezin/onchainledger/pkg/cache"
	"github.com/tferezin/onchainledger/pkg/logger"
	"github.com/tferezin/onchainledger/pkg/metrics"
	"github.com/tferezin/onchainledger/pkg/mutex"
)

// gradeBand maps a minimum composite score to its grade and verdict
type gradeBand struct {
	min     float64
	grade   string
	verdict string
}

// Grade bands, highest first; lookup takes the first band the score
// reaches
var gradeBands = []gradeBand{
	{90, "A+", "VERY HIGH CONFIDENCE"},
	{80, "A", "HIGH CONFIDENCE"},
	{70, "B", "MODERATE CONFIDENCE"},
	{50, "C", "LOW CONFIDENCE"},
	{25, "D", "VERY LOW CONFIDENCE"},
	{0, "F", "LIKELY SCAM"},
}

// riskFactorOrder fixes the order analyzer risks appear in the
// aggregated riskFactors list, independent of completion order
var riskFactorOrder = []string{
	analyzers.NameAuthority,
	analyzers.NameHolders,
	analyzers.NameLiquidity,
	analyzers.NameHoneypot,
	analyzers.NameAge,
	analyzers.NameToken2022,
	analyzers.NameLPLock,
	analyzers.NameInsider,
	analyzers.NameWalletCluster,
	analyzers.NamePriceHistory,
}

// TrustScoreService runs the analyzer set and aggregates the results
// into a composite trust score, with per-tier result caching and
// per-address request deduplication
type TrustScoreService struct {
	chain        providers.ChainProvider
	analyzers    []analyzers.Analyzer
	fullCache    *cache.Cache[*models.CompositeResult]
	teaserCache  *cache.Cache[*models.CompositeResult]
	requestMutex *mutex.RequestMutex
	config       *config.Config
	metrics      *metrics.MetricsCollector
}

// NewTrustScoreService wires the full analyzer set against the given
// data providers
func NewTrustScoreService(chain providers.ChainProvider, market providers.MarketProvider, swap providers.SwapProvider, cfg *config.Config) *TrustScoreService {
	analyzerSet := []analyzers.Analyzer{
		analyzers.NewAuthorityAnalyzer(chain),
		analyzers.NewHoldersAnalyzer(chain),
		analyzers.NewLiquidityAnalyzer(market),
		analyzers.NewHoneypotAnalyzer(swap),
		analyzers.NewAgeAnalyzer(chain),
		analyzers.NewToken2022Analyzer(chain),
		analyzers.NewLPLockAnalyzer(chain),
		analyzers.NewInsiderAnalyzer(chain),
		analyzers.NewWalletClusterAnalyzer(chain),
		analyzers.NewPriceHistoryAnalyzer(market, cfg.Birdeye.HistoryWindow),
	}
	return NewTrustScoreServiceWithAnalyzers(chain, analyzerSet, cfg)
}

// NewTrustScoreServiceWithAnalyzers creates the service with an
// explicit analyzer set
func NewTrustScoreServiceWithAnalyzers(chain providers.ChainProvider, analyzerSet []analyzers.Analyzer, cfg *config.Config) *TrustScoreService {
	return &TrustScoreService{
		chain:        chain,
		analyzers:    analyzerSet,
		fullCache:    cache.New[*models.CompositeResult](cfg.Cache.FullTTL),
		teaserCache:  cache.New[*models.CompositeResult](cfg.Cache.TeaserTTL),
		requestMutex: mutex.New(cfg.Cache.FullTTL),
		config:       cfg,
		metrics:      metrics.NewMetricsCollector(),
	}
}

// ComputeFull returns the full composite result for a token
func (ts *TrustScoreService) ComputeFull(ctx context.Context, tokenAddress string) (*models.CompositeResult, error) {
	return ts.compute(ctx, tokenAddress, models.TierFull)
}

// ComputeTeaser returns a composite result cached in the teaser
// bucket. The teaser bucket has its own longer TTL and never shares
// entries with the full one.
func (ts *TrustScoreService) ComputeTeaser(ctx context.Context, tokenAddress string) (*models.CompositeResult, error) {
	return ts.compute(ctx, tokenAddress, models.TierTeaser)
}

func (ts *TrustScoreService) compute(ctx context.Context, tokenAddress string, tier models.Tier) (*models.CompositeResult, error) {
	log := logger.GetLogger().WithFields(map[string]interface{}{
		"token_address": tokenAddress,
		"tier":          string(tier),
		"component":     "trustscore_service",
	})

	tierCache := ts.cacheFor(tier)
	if cached, expiresAt, found := tierCache.GetWithExpiry(tokenAddress); found {
		log.Debug("Cache hit for trust score")
		ts.metrics.RecordCacheHit()
		return withExpiry(cached, expiresAt), nil
	}

	log.Debug("Cache miss, acquiring mutex for token")
	ts.metrics.RecordCacheMiss()

	// One aggregation per tier and address at a time; concurrent
	// callers wait and then hit the cache entry the first one wrote
	key := string(tier) + ":" + tokenAddress
	mutexStartTime := time.Now()
	ts.requestMutex.Lock(key)
	defer ts.requestMutex.Unlock(key)

	if time.Since(mutexStartTime) > time.Millisecond {
		ts.metrics.RecordMutexWait()
	}

	if cached, expiresAt, found := tierCache.GetWithExpiry(tokenAddress); found {
		log.Debug("Cache hit after mutex acquisition (populated by concurrent request)")
		ts.metrics.RecordCacheHit()
		return withExpiry(cached, expiresAt), nil
	}

	startTime := time.Now()
	result, err := ts.aggregate(ctx, tokenAddress)
	duration := time.Since(startTime)

	if err != nil {
		ts.metrics.RecordAnalysis(duration, 0, false)
		log.Error("Trust score aggregation failed",
			zap.Error(err),
			zap.Duration("duration", duration),
		)
		return nil, err
	}

	degraded := 0
	for _, analyzerResult := range result.Breakdown {
		if analyzerResult.Degraded {
			degraded++
		}
	}
	ts.metrics.RecordAnalysis(duration, degraded, true)

	expiresAt := tierCache.Set(tokenAddress, result)

	log.Info("Trust score computed",
		zap.Float64("score", result.TrustScore.Score),
		zap.String("grade", result.TrustScore.Grade),
		zap.Int("degraded_analyzers", degraded),
		zap.Duration("duration", duration),
	)

	return withExpiry(result, expiresAt), nil
}

// aggregate fans the analyzer set out concurrently alongside the
// metadata lookup and folds everything into one composite result
func (ts *TrustScoreService) aggregate(ctx context.Context, tokenAddress string) (*models.CompositeResult, error) {
	log := logger.GetLogger().WithFields(map[string]interface{}{
		"token_address": tokenAddress,
		"component":     "trustscore_service",
	})

	type analyzerOutcome struct {
		name   string
		result *models.AnalyzerResult
	}

	outcomes := make(chan analyzerOutcome, len(ts.analyzers))
	metadataCh := make(chan *models.TokenMetadata, 1)

	go func() {
		metadataCh <- ts.fetchMetadata(ctx, tokenAddress)
	}()

	for _, analyzer := range ts.analyzers {
		go func(a analyzers.Analyzer) {
			// An analyzer must never take the whole aggregation down;
			// a panic degrades to its documented fallback
			defer func() {
				if recovered := recover(); recovered != nil {
					log.Error("Analyzer panicked, substituting fallback",
						zap.String("analyzer", a.Name()),
						zap.Any("panic", recovered),
					)
					outcomes <- analyzerOutcome{name: a.Name(), result: a.Fallback()}
				}
			}()

			result := a.Analyze(ctx, tokenAddress)
			if result == nil {
				result = a.Fallback()
			}
			outcomes <- analyzerOutcome{name: a.Name(), result: result}
		}(analyzer)
	}

	breakdown := make(map[string]*models.AnalyzerResult, len(ts.analyzers))
	for range ts.analyzers {
		outcome := <-outcomes
		breakdown[outcome.name] = outcome.result
	}
	metadata := <-metadataCh

	composite := 0.0
	allDegraded := true
	for _, analyzerResult := range breakdown {
		composite += analyzerResult.Weighted
		if !analyzerResult.Degraded {
			allDegraded = false
		}
	}

	if metadata == nil && allDegraded {
		return nil, models.NewAggregationError(tokenAddress)
	}
	if metadata == nil {
		metadata = unknownMetadata(tokenAddress)
	}

	result := &models.CompositeResult{
		Token:           *metadata,
		TrustScore:      models.TrustScore{Score: composite, Grade: gradeFor(composite), Verdict: verdictFor(composite)},
		Breakdown:       breakdown,
		RiskFactors:     collectRiskFactors(breakdown),
		PositiveFactors: collectPositiveFactors(breakdown),
		Metadata:        &models.ResultMetadata{AnalyzedAt: time.Now().UTC()},
	}
	return result, nil
}

// fetchMetadata resolves token identity, falling back to UNKNOWN
// placeholders when the asset lookup fails
func (ts *TrustScoreService) fetchMetadata(ctx context.Context, tokenAddress string) *models.TokenMetadata {
	asset := ts.chain.GetAsset(ctx, tokenAddress)
	if asset == nil {
		return nil
	}

	metadata := &models.TokenMetadata{
		Address:  tokenAddress,
		Symbol:   asset.Metadata.Symbol,
		Name:     asset.Metadata.Name,
		Decimals: asset.TokenInfo.Decimals,
	}
	if metadata.Symbol == "" {
		metadata.Symbol = "UNKNOWN"
	}
	if metadata.Name == "" {
		metadata.Name = "Unknown Token"
	}
	if metadata.Decimals == 0 {
		metadata.Decimals = 9
	}
	return metadata
}

func unknownMetadata(tokenAddress string) *models.TokenMetadata {
	return &models.TokenMetadata{
		Address:  tokenAddress,
		Symbol:   "UNKNOWN",
		Name:     "Unknown Token",
		Decimals: 9,
	}
}

func (ts *TrustScoreService) cacheFor(tier models.Tier) *cache.Cache[*models.CompositeResult] {
	if tier == models.TierTeaser {
		return ts.teaserCache
	}
	return ts.fullCache
}

// withExpiry returns a shallow copy carrying the cache expiry, so a
// shared cached result is never mutated
func withExpiry(result *models.CompositeResult, expiresAt time.Time) *models.CompositeResult {
	copied := *result
	metadata := *result.Metadata
	metadata.CacheExpires = expiresAt.UTC()
	copied.Metadata = &metadata
	return &copied
}

func gradeFor(score float64) string {
	for _, band := range gradeBands {
		if score >= band.min {
			return band.grade
		}
	}
	return "F"
}

func verdictFor(score float64) string {
	for _, band := range gradeBands {
		if score >= band.min {
			return band.verdict
		}
	}
	return "LIKELY SCAM"
}

// collectRiskFactors flattens analyzer risks in the fixed reporting
// order
func collectRiskFactors(breakdown map[string]*models.AnalyzerResult) []string {
	factors := []string{}
	for _, name := range riskFactorOrder {
		if analyzerResult, ok := breakdown[name]; ok {
			factors = append(factors, analyzerResult.Risks...)
		}
	}
	return factors
}

// collectPositiveFactors derives the reassuring signals from analyzer
// details
func collectPositiveFactors(breakdown map[string]*models.AnalyzerResult) []string {
	factors := []string{}

	if authority, ok := breakdown[analyzers.NameAuthority]; ok && authority.Score == 100 && !authority.Degraded {
		factors = append(factors, "All authorities revoked")
	}
	if liquidity, ok := breakdown[analyzers.NameLiquidity]; ok {
		if tvl, ok := liquidity.Details["tvlUsd"].(float64); ok && tvl >= 50000 {
			factors = append(factors, "Good liquidity")
		}
	}
	if holders, ok := breakdown[analyzers.NameHolders]; ok {
		if top10, ok := holders.Details["top10Concentration"].(float64); ok && top10 <= 40 {
			factors = append(factors, "Well distributed token holders")
		}
	}
	if honeypot, ok := breakdown[analyzers.NameHoneypot]; ok {
		if isHoneypot, ok := honeypot.Details["isHoneypot"].(bool); ok && !isHoneypot {
			factors = append(factors, "Token is tradeable")
		}
	}
	if age, ok := breakdown[analyzers.NameAge]; ok {
		if hours, ok := age.Details["ageHours"].(int); ok && hours >= 168 {
			factors = append(factors, "Established token (7+ days)")
		}
	}
	if token2022, ok := breakdown[analyzers.NameToken2022]; ok && token2022.Score == 100 && !token2022.Degraded {
		factors = append(factors, "No dangerous token extensions")
	}
	if lpLock, ok := breakdown[analyzers.NameLPLock]; ok {
		if locked, ok := lpLock.Details["locked"].(bool); ok && locked {
			factors = append(factors, "LP tokens are locked")
		}
	}

	return factors
}

// GetCacheStats returns cache statistics for monitoring
func (ts *TrustScoreService) GetCacheStats() map[string]interface{} {
	return map[string]interface{}{
		"full_cache_size":   ts.fullCache.Size(),
		"teaser_cache_size": ts.teaserCache.Size(),
		"mutex_count":       ts.requestMutex.Size(),
		"full_ttl_ms":       ts.config.Cache.FullTTL.Milliseconds(),
		"teaser_ttl_ms":     ts.config.Cache.TeaserTTL.Milliseconds(),
	}
}

// GetMetrics returns performance metrics
func (ts *TrustScoreService) GetMetrics() *metrics.Metrics {
	return ts.metrics.GetMetrics()
}

// GetMetricsCollector returns the metrics collector for middleware integration
func (ts *TrustScoreService) GetMetricsCollector() *metrics.MetricsCollector {
	return ts.metrics
}

// ClearCache clears both tier caches
func (ts *TrustScoreService) ClearCache() {
	ts.fullCache.Clear()
	ts.teaserCache.Clear()
}

// Stop gracefully shuts down the service
func (ts *TrustScoreService) Stop() {
	ts.fullCache.Stop()
	ts.teaserCache.Stop()
	ts.requestMutex.Stop()
}
