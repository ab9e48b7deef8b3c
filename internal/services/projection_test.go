package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tferezin/onchainledger/internal/analyzers"
	"github.com/tferezin/onchainledger/internal/models"
)

// perTokenChain resolves metadata only for addresses it knows a symbol
// for
type perTokenChain struct {
	stubChain
	symbols map[string]string
}

func (c *perTokenChain) GetAsset(ctx context.Context, address string) *models.Asset {
	symbol, ok := c.symbols[address]
	if !ok {
		return nil
	}
	return &models.Asset{
		Metadata:  models.AssetMetadata{Symbol: symbol, Name: symbol + " Token"},
		TokenInfo: models.AssetTokenInfo{Decimals: 6},
	}
}

// perTokenAnalyzer scores known addresses and degrades on unknown ones.
// At weight 1.0 the composite score equals the analyzer score.
type perTokenAnalyzer struct {
	scores map[string]int
}

func (a *perTokenAnalyzer) Name() string    { return analyzers.NameAuthority }
func (a *perTokenAnalyzer) Weight() float64 { return 1.0 }

func (a *perTokenAnalyzer) Analyze(ctx context.Context, address string) *models.AnalyzerResult {
	score, ok := a.scores[address]
	if !ok {
		return a.Fallback()
	}
	return analyzerResult(1.0, score, "Example risk flag")
}

func (a *perTokenAnalyzer) Fallback() *models.AnalyzerResult {
	return degradedStubResult(1.0, 100)
}

func newScoredProjection(scores map[string]int, symbols map[string]string) (*ProjectionService, func()) {
	trust := NewTrustScoreServiceWithAnalyzers(
		&perTokenChain{symbols: symbols},
		[]analyzers.Analyzer{&perTokenAnalyzer{scores: scores}},
		testConfig(),
	)
	return NewProjectionService(trust, testConfig()), trust.Stop
}

func compositeFixture(address, symbol string, score float64, risks []string) *models.CompositeResult {
	return &models.CompositeResult{
		Token:       models.TokenMetadata{Address: address, Symbol: symbol, Name: symbol + " Token", Decimals: 6},
		TrustScore:  models.TrustScore{Score: score, Grade: gradeFor(score), Verdict: verdictFor(score)},
		Breakdown:   map[string]*models.AnalyzerResult{},
		RiskFactors: risks,
		Metadata:    &models.ResultMetadata{AnalyzedAt: time.Now().UTC()},
	}
}

func TestProjectTeaser(t *testing.T) {
	projection := NewProjectionService(nil, testConfig())

	t.Run("ModerateToken", func(t *testing.T) {
		result := compositeFixture("MintModerate", "MOD", 77, []string{
			"Creator holds 12.00% of supply",
			"Token is less than 7 days old",
		})

		view := projection.ProjectTeaser(result)

		assert.Equal(t, "MintModerate", view.Token.Address)
		assert.Equal(t, "MOD", view.Token.Symbol)
		assert.Equal(t, "B", view.Preview.Grade)
		assert.Equal(t, "MEDIUM", view.Preview.RiskLevel)
		assert.True(t, view.Preview.Tradeable)
		assert.Equal(t, 2, view.Preview.FlagsDetected)
		assert.Equal(t, "70-79", view.Teaser.ScoreRange)
		assert.Equal(t, "2 risk flags detected. Unlock the full report for details.", view.Teaser.Message)
		assert.Equal(t, "http://localhost:3000/api/analyze/MintModerate", view.Upgrade.Endpoint)
		assert.Equal(t, "1000000 lamports", view.Upgrade.Price)
		assert.Equal(t, "x402", view.Upgrade.Protocol)
	})

	t.Run("ExactScoreAndRisksNeverLeak", func(t *testing.T) {
		result := compositeFixture("MintLeaky", "LEAK", 77, []string{
			"Mint authority is enabled",
		})

		view := projection.ProjectTeaser(result)
		body, err := json.Marshal(view)
		require.NoError(t, err)

		assert.NotContains(t, string(body), "77")
		assert.NotContains(t, string(body), "Mint authority is enabled")
	})

	t.Run("CleanToken", func(t *testing.T) {
		result := compositeFixture("MintClean", "CLN", 95, nil)

		view := projection.ProjectTeaser(result)

		assert.Equal(t, "A+", view.Preview.Grade)
		assert.Equal(t, "LOW", view.Preview.RiskLevel)
		assert.Equal(t, "90-100", view.Teaser.ScoreRange)
		assert.Equal(t, "No risk flags detected. Unlock the full report for the exact score and breakdown.", view.Teaser.Message)
	})

	t.Run("RiskyToken", func(t *testing.T) {
		result := compositeFixture("MintRisky", "RSK", 30, []string{"a", "b", "c"})

		view := projection.ProjectTeaser(result)

		assert.Equal(t, "CRITICAL", view.Preview.RiskLevel)
		assert.False(t, view.Preview.Tradeable)
		assert.Equal(t, "25-49", view.Teaser.ScoreRange)
		assert.Equal(t, "3 risk flags detected. Unlock the full report before trading this token.", view.Teaser.Message)
	})
}

func TestPricingFor(t *testing.T) {
	projection := NewProjectionService(nil, testConfig())

	cases := []struct {
		count    int
		perToken float64
		total    float64
		discount string
		lamports string
	}{
		{1, 0.01, 0.01, "0%", "1000000"},
		{2, 0.008, 0.016, "20%", "1600000"},
		{5, 0.008, 0.04, "20%", "4000000"},
		{6, 0.007, 0.042, "30%", "4200000"},
		{10, 0.007, 0.07, "30%", "7000000"},
		{11, 0.006, 0.066, "40%", "6600000"},
		{20, 0.006, 0.12, "40%", "12000000"},
	}
	for _, tc := range cases {
		pricing := projection.PricingFor(tc.count)
		assert.Equal(t, tc.perToken, pricing.PerToken, "count %d", tc.count)
		assert.InDelta(t, tc.total, pricing.Total, 0.0001, "count %d", tc.count)
		assert.Equal(t, tc.discount, pricing.Discount, "count %d", tc.count)
		assert.Equal(t, tc.lamports, pricing.Lamports, "count %d", tc.count)
	}
}

func TestCompare(t *testing.T) {
	ctx := context.Background()

	scores := map[string]int{"MintA": 85, "MintB": 92, "MintC": 40}
	symbols := map[string]string{"MintA": "AAA", "MintB": "BBB", "MintC": "CCC"}

	t.Run("FullTierRanksByScore", func(t *testing.T) {
		projection, stop := newScoredProjection(scores, symbols)
		defer stop()

		view, err := projection.Compare(ctx, []string{"MintA", "MintB", "MintC"}, models.TierFull)

		require.NoError(t, err)
		require.Len(t, view.Comparison, 3)
		assert.Equal(t, "BBB", view.Comparison[0].Token)
		assert.Equal(t, "AAA", view.Comparison[1].Token)
		assert.Equal(t, "CCC", view.Comparison[2].Token)
		require.NotNil(t, view.Comparison[0].Score)
		assert.Equal(t, 92.0, *view.Comparison[0].Score)
		assert.Equal(t, "BBB", view.Winner.Token)
		assert.Equal(t, "Highest trust score (92 vs 85 for the runner-up)", view.Winner.Reason)
		assert.Equal(t, "BBB has a slight edge with 7 more points. However, note that example risk flag.", view.Recommendation)
		assert.Equal(t, 3, view.Metadata.TokenCount)
	})

	t.Run("RecommendationScalesWithTheGap", func(t *testing.T) {
		projection, stop := newScoredProjection(scores, symbols)
		defer stop()

		view, err := projection.Compare(ctx, []string{"MintB", "MintC"}, models.TierFull)

		require.NoError(t, err)
		assert.Equal(t, "BBB is significantly safer than the other options with a 52 point lead. However, note that example risk flag.", view.Recommendation)
	})

	t.Run("TeaserTierRanksByGradeAndHidesScores", func(t *testing.T) {
		projection, stop := newScoredProjection(scores, symbols)
		defer stop()

		view, err := projection.Compare(ctx, []string{"MintA", "MintB", "MintC"}, models.TierTeaser)

		require.NoError(t, err)
		assert.Equal(t, "A+", view.Comparison[0].Grade)
		assert.Equal(t, "A", view.Comparison[1].Grade)
		assert.Equal(t, "D", view.Comparison[2].Grade)
		assert.Equal(t, "Best grade (A+) among compared tokens", view.Winner.Reason)
		assert.Empty(t, view.Recommendation)

		body, err := json.Marshal(view)
		require.NoError(t, err)
		assert.False(t, strings.Contains(string(body), `"score"`))
	})

	t.Run("AnyFailureFailsTheComparison", func(t *testing.T) {
		projection, stop := newScoredProjection(scores, symbols)
		defer stop()

		view, err := projection.Compare(ctx, []string{"MintA", "MintUnknown"}, models.TierFull)

		require.Error(t, err)
		assert.Nil(t, view)
	})
}

func TestBatch(t *testing.T) {
	ctx := context.Background()

	scores := map[string]int{"MintA": 85, "MintB": 92, "MintC": 40}
	symbols := map[string]string{"MintA": "AAA", "MintB": "BBB", "MintC": "CCC"}

	t.Run("FullTierCarriesResultsAndExtremes", func(t *testing.T) {
		projection, stop := newScoredProjection(scores, symbols)
		defer stop()

		view, err := projection.Batch(ctx, []string{"MintA", "MintB", "MintC"}, models.TierFull)

		require.NoError(t, err)
		assert.Equal(t, 3, view.Summary.Requested)
		assert.Equal(t, 3, view.Summary.Analyzed)
		assert.Equal(t, 0, view.Summary.Failed)
		require.Len(t, view.Results, 3)
		assert.NotNil(t, view.Results[0].Result)
		assert.Nil(t, view.Results[0].Preview)
		require.NotNil(t, view.Summary.Safest)
		assert.Equal(t, "BBB", view.Summary.Safest.Token)
		assert.Equal(t, 92.0, view.Summary.Safest.Score)
		require.NotNil(t, view.Summary.Riskiest)
		assert.Equal(t, "CCC", view.Summary.Riskiest.Token)
	})

	t.Run("TeaserTierCarriesPreviewsOnly", func(t *testing.T) {
		projection, stop := newScoredProjection(scores, symbols)
		defer stop()

		view, err := projection.Batch(ctx, []string{"MintA", "MintB"}, models.TierTeaser)

		require.NoError(t, err)
		require.Len(t, view.Results, 2)
		assert.Nil(t, view.Results[0].Result)
		require.NotNil(t, view.Results[0].Preview)
		assert.Nil(t, view.Summary.Safest)
		assert.Nil(t, view.Summary.Riskiest)
	})

	t.Run("TokensFailIndependently", func(t *testing.T) {
		projection, stop := newScoredProjection(scores, symbols)
		defer stop()

		view, err := projection.Batch(ctx, []string{"MintA", "MintUnknown", "MintB"}, models.TierFull)

		require.NoError(t, err)
		assert.Equal(t, 3, view.Summary.Requested)
		assert.Equal(t, 2, view.Summary.Analyzed)
		assert.Equal(t, 1, view.Summary.Failed)
		require.Len(t, view.Errors, 1)
		assert.Equal(t, "MintUnknown", view.Errors[0].Token)
	})

	t.Run("DuplicatesArePricedOnce", func(t *testing.T) {
		projection, stop := newScoredProjection(scores, symbols)
		defer stop()

		view, err := projection.Batch(ctx, []string{"MintA", "MintA", "MintB"}, models.TierFull)

		require.NoError(t, err)
		// Requested reports the raw request size; pricing and analysis
		// cover the deduplicated set
		assert.Equal(t, 3, view.Summary.Requested)
		assert.Equal(t, 2, view.Summary.Analyzed)
		assert.Equal(t, 0.008, view.Pricing.PerToken)
		assert.InDelta(t, 0.016, view.Pricing.Total, 0.0001)
		assert.Equal(t, "1600000", view.Pricing.Lamports)
	})
}

func TestDedupedCount(t *testing.T) {
	assert.Equal(t, 0, DedupedCount(nil))
	assert.Equal(t, 1, DedupedCount([]string{"a", "a", "a"}))
	assert.Equal(t, 3, DedupedCount([]string{"a", "b", "c", "b"}))
}
