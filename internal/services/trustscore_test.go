package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tferezin/onchainledger/internal/analyzers"
	"github.com/tferezin/onchainledger/internal/config"
	"github.com/tferezin/onchainledger/internal/models"
)

// stubChain is a canned-response ChainProvider; only GetAsset matters
// to the aggregation path when analyzers are stubbed
type stubChain struct {
	asset *models.Asset
}

func (s *stubChain) GetAsset(ctx context.Context, address string) *models.Asset { return s.asset }
func (s *stubChain) GetTokenLargestAccounts(ctx context.Context, address string) []models.TokenBalance {
	return nil
}
func (s *stubChain) GetTokenSupply(ctx context.Context, address string) *models.TokenSupply {
	return nil
}
func (s *stubChain) GetSignaturesForAddress(ctx context.Context, address string, limit int) []models.SignatureInfo {
	return nil
}
func (s *stubChain) GetParsedTransactions(ctx context.Context, signatures []string) []models.ParsedTransaction {
	return nil
}

// stubAnalyzer returns a canned result and counts invocations
type stubAnalyzer struct {
	name     string
	weight   float64
	result   *models.AnalyzerResult
	fallback *models.AnalyzerResult
	panics   bool
	calls    int32
}

func (s *stubAnalyzer) Name() string    { return s.name }
func (s *stubAnalyzer) Weight() float64 { return s.weight }

func (s *stubAnalyzer) Analyze(ctx context.Context, tokenAddress string) *models.AnalyzerResult {
	atomic.AddInt32(&s.calls, 1)
	if s.panics {
		panic("analyzer exploded")
	}
	return s.result
}

func (s *stubAnalyzer) Fallback() *models.AnalyzerResult { return s.fallback }

func (s *stubAnalyzer) callCount() int { return int(atomic.LoadInt32(&s.calls)) }

func analyzerResult(weight float64, score int, risks ...string) *models.AnalyzerResult {
	result := models.NewAnalyzerResult(weight)
	result.Score = score
	for _, risk := range risks {
		result.AddRisk(risk)
	}
	return result.Finalize()
}

func degradedStubResult(weight float64, score int) *models.AnalyzerResult {
	result := analyzerResult(weight, score, "data unavailable")
	result.Degraded = true
	return result
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{BaseURL: "http://localhost:3000"},
		Cache:  config.CacheConfig{FullTTL: 15 * time.Minute, TeaserTTL: 30 * time.Minute},
		Payment: config.PaymentConfig{
			Enabled:         true,
			PriceLamports:   "1000000",
			ComparePrice:    "2000000",
			MinSignatureLen: 64,
		},
	}
}

func namedAsset() *models.Asset {
	return &models.Asset{
		Metadata:  models.AssetMetadata{Name: "Sample Token", Symbol: "SMPL"},
		TokenInfo: models.AssetTokenInfo{Decimals: 6},
	}
}

func TestGradeBands(t *testing.T) {
	cases := []struct {
		score   float64
		grade   string
		verdict string
	}{
		{95, "A+", "VERY HIGH CONFIDENCE"},
		{90, "A+", "VERY HIGH CONFIDENCE"},
		{85, "A", "HIGH CONFIDENCE"},
		{75, "B", "MODERATE CONFIDENCE"},
		{55, "C", "LOW CONFIDENCE"},
		{30, "D", "VERY LOW CONFIDENCE"},
		{10, "F", "LIKELY SCAM"},
		{0, "F", "LIKELY SCAM"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.grade, gradeFor(tc.score), "score %.0f", tc.score)
		assert.Equal(t, tc.verdict, verdictFor(tc.score), "score %.0f", tc.score)
	}
}

func TestTrustScoreAggregation(t *testing.T) {
	ctx := context.Background()

	t.Run("CompositeIsSumOfWeightedScores", func(t *testing.T) {
		authority := &stubAnalyzer{
			name:   analyzers.NameAuthority,
			weight: analyzers.WeightAuthority,
			result: analyzerResult(analyzers.WeightAuthority, 100),
		}
		holders := &stubAnalyzer{
			name:   analyzers.NameHolders,
			weight: analyzers.WeightHolders,
			result: analyzerResult(analyzers.WeightHolders, 80, "High concentration"),
		}
		liquidity := &stubAnalyzer{
			name:   analyzers.NameLiquidity,
			weight: analyzers.WeightLiquidity,
			result: analyzerResult(analyzers.WeightLiquidity, 50, "Low liquidity: $4000 TVL"),
		}
		service := NewTrustScoreServiceWithAnalyzers(
			&stubChain{asset: namedAsset()},
			[]analyzers.Analyzer{authority, holders, liquidity},
			testConfig(),
		)
		defer service.Stop()

		result, err := service.ComputeFull(ctx, "mint")

		require.NoError(t, err)
		// 100*0.20 + 80*0.15 + 50*0.12 = 20 + 12 + 6
		assert.Equal(t, 38.0, result.TrustScore.Score)
		assert.Equal(t, "D", result.TrustScore.Grade)
		assert.Equal(t, "VERY LOW CONFIDENCE", result.TrustScore.Verdict)
		assert.Equal(t, "SMPL", result.Token.Symbol)
		assert.Equal(t, 6, result.Token.Decimals)
	})

	t.Run("RiskFactorsKeepReportingOrder", func(t *testing.T) {
		// Completion order is nondeterministic; the aggregated list is not
		honeypot := &stubAnalyzer{
			name:   analyzers.NameHoneypot,
			weight: analyzers.WeightHoneypot,
			result: analyzerResult(analyzers.WeightHoneypot, 0, "HONEYPOT DETECTED: Unable to sell token"),
		}
		authority := &stubAnalyzer{
			name:   analyzers.NameAuthority,
			weight: analyzers.WeightAuthority,
			result: analyzerResult(analyzers.WeightAuthority, 10, "Mint authority is enabled", "Freeze authority is enabled"),
		}
		service := NewTrustScoreServiceWithAnalyzers(
			&stubChain{asset: namedAsset()},
			[]analyzers.Analyzer{honeypot, authority},
			testConfig(),
		)
		defer service.Stop()

		result, err := service.ComputeFull(ctx, "mint")

		require.NoError(t, err)
		assert.Equal(t, []string{
			"Mint authority is enabled",
			"Freeze authority is enabled",
			"HONEYPOT DETECTED: Unable to sell token",
		}, result.RiskFactors)
	})

	t.Run("PositiveFactorsFromBreakdown", func(t *testing.T) {
		authority := &stubAnalyzer{
			name:   analyzers.NameAuthority,
			weight: analyzers.WeightAuthority,
			result: analyzerResult(analyzers.WeightAuthority, 100),
		}
		liquidityResult := analyzerResult(analyzers.WeightLiquidity, 100)
		liquidityResult.Details["tvlUsd"] = 60000.0
		liquidity := &stubAnalyzer{name: analyzers.NameLiquidity, weight: analyzers.WeightLiquidity, result: liquidityResult}

		honeypotResult := analyzerResult(analyzers.WeightHoneypot, 100)
		honeypotResult.Details["isHoneypot"] = false
		honeypot := &stubAnalyzer{name: analyzers.NameHoneypot, weight: analyzers.WeightHoneypot, result: honeypotResult}

		lpLockResult := analyzerResult(analyzers.WeightLPLock, 100)
		lpLockResult.Details["locked"] = true
		lpLock := &stubAnalyzer{name: analyzers.NameLPLock, weight: analyzers.WeightLPLock, result: lpLockResult}

		service := NewTrustScoreServiceWithAnalyzers(
			&stubChain{asset: namedAsset()},
			[]analyzers.Analyzer{authority, liquidity, honeypot, lpLock},
			testConfig(),
		)
		defer service.Stop()

		result, err := service.ComputeFull(ctx, "mint")

		require.NoError(t, err)
		assert.Contains(t, result.PositiveFactors, "All authorities revoked")
		assert.Contains(t, result.PositiveFactors, "Good liquidity")
		assert.Contains(t, result.PositiveFactors, "Token is tradeable")
		assert.Contains(t, result.PositiveFactors, "LP tokens are locked")
	})

	t.Run("PanickedAnalyzerDegradesToFallback", func(t *testing.T) {
		steady := &stubAnalyzer{
			name:   analyzers.NameAuthority,
			weight: analyzers.WeightAuthority,
			result: analyzerResult(analyzers.WeightAuthority, 100),
		}
		unstable := &stubAnalyzer{
			name:     analyzers.NameHolders,
			weight:   analyzers.WeightHolders,
			panics:   true,
			fallback: degradedStubResult(analyzers.WeightHolders, 100),
		}
		service := NewTrustScoreServiceWithAnalyzers(
			&stubChain{asset: namedAsset()},
			[]analyzers.Analyzer{steady, unstable},
			testConfig(),
		)
		defer service.Stop()

		result, err := service.ComputeFull(ctx, "mint")

		require.NoError(t, err)
		require.Contains(t, result.Breakdown, analyzers.NameHolders)
		assert.True(t, result.Breakdown[analyzers.NameHolders].Degraded)
		assert.Equal(t, 35.0, result.TrustScore.Score)
	})

	t.Run("AllDegradedWithoutMetadataFails", func(t *testing.T) {
		broken := &stubAnalyzer{
			name:   analyzers.NameAuthority,
			weight: analyzers.WeightAuthority,
			result: degradedStubResult(analyzers.WeightAuthority, 100),
		}
		service := NewTrustScoreServiceWithAnalyzers(
			&stubChain{},
			[]analyzers.Analyzer{broken},
			testConfig(),
		)
		defer service.Stop()

		result, err := service.ComputeFull(ctx, "mint")

		require.Error(t, err)
		assert.Nil(t, result)
		appErr, ok := err.(*models.AppError)
		require.True(t, ok)
		assert.Equal(t, models.ErrorCodeAggregationFailed, appErr.Code)
	})

	t.Run("MissingMetadataGetsPlaceholders", func(t *testing.T) {
		healthy := &stubAnalyzer{
			name:   analyzers.NameAuthority,
			weight: analyzers.WeightAuthority,
			result: analyzerResult(analyzers.WeightAuthority, 100),
		}
		service := NewTrustScoreServiceWithAnalyzers(
			&stubChain{},
			[]analyzers.Analyzer{healthy},
			testConfig(),
		)
		defer service.Stop()

		result, err := service.ComputeFull(ctx, "mint")

		require.NoError(t, err)
		assert.Equal(t, "UNKNOWN", result.Token.Symbol)
		assert.Equal(t, "Unknown Token", result.Token.Name)
		assert.Equal(t, 9, result.Token.Decimals)
	})
}

func TestTrustScoreCaching(t *testing.T) {
	ctx := context.Background()

	t.Run("SecondRequestServedFromCache", func(t *testing.T) {
		analyzer := &stubAnalyzer{
			name:   analyzers.NameAuthority,
			weight: analyzers.WeightAuthority,
			result: analyzerResult(analyzers.WeightAuthority, 100),
		}
		service := NewTrustScoreServiceWithAnalyzers(
			&stubChain{asset: namedAsset()},
			[]analyzers.Analyzer{analyzer},
			testConfig(),
		)
		defer service.Stop()

		first, err := service.ComputeFull(ctx, "mint")
		require.NoError(t, err)
		second, err := service.ComputeFull(ctx, "mint")
		require.NoError(t, err)

		assert.Equal(t, 1, analyzer.callCount())
		assert.Equal(t, first.TrustScore, second.TrustScore)
		assert.False(t, second.Metadata.CacheExpires.IsZero())
	})

	t.Run("TiersNeverShareCacheEntries", func(t *testing.T) {
		analyzer := &stubAnalyzer{
			name:   analyzers.NameAuthority,
			weight: analyzers.WeightAuthority,
			result: analyzerResult(analyzers.WeightAuthority, 100),
		}
		service := NewTrustScoreServiceWithAnalyzers(
			&stubChain{asset: namedAsset()},
			[]analyzers.Analyzer{analyzer},
			testConfig(),
		)
		defer service.Stop()

		_, err := service.ComputeFull(ctx, "mint")
		require.NoError(t, err)
		_, err = service.ComputeTeaser(ctx, "mint")
		require.NoError(t, err)

		// The teaser request aggregates again rather than reading the
		// full-tier entry
		assert.Equal(t, 2, analyzer.callCount())

		stats := service.GetCacheStats()
		assert.Equal(t, 1, stats["full_cache_size"])
		assert.Equal(t, 1, stats["teaser_cache_size"])
	})

	t.Run("ClearCacheForcesRecompute", func(t *testing.T) {
		analyzer := &stubAnalyzer{
			name:   analyzers.NameAuthority,
			weight: analyzers.WeightAuthority,
			result: analyzerResult(analyzers.WeightAuthority, 100),
		}
		service := NewTrustScoreServiceWithAnalyzers(
			&stubChain{asset: namedAsset()},
			[]analyzers.Analyzer{analyzer},
			testConfig(),
		)
		defer service.Stop()

		_, err := service.ComputeFull(ctx, "mint")
		require.NoError(t, err)
		service.ClearCache()
		_, err = service.ComputeFull(ctx, "mint")
		require.NoError(t, err)

		assert.Equal(t, 2, analyzer.callCount())
	})
}
