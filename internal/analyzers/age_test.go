package analyzers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tferezin/onchainledger/internal/models"
)

func TestAgeAnalyzer(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assetCreatedAt := func(created time.Time) *models.Asset {
		return &models.Asset{Metadata: models.AssetMetadata{CreatedAt: &created}}
	}

	newAnalyzer := func(chain *fakeChain) *AgeAnalyzer {
		analyzer := NewAgeAnalyzer(chain)
		analyzer.now = func() time.Time { return now }
		return analyzer
	}

	t.Run("MatureToken", func(t *testing.T) {
		created := now.Add(-30 * 24 * time.Hour)
		analyzer := newAnalyzer(&fakeChain{asset: assetCreatedAt(created)})

		result := analyzer.Analyze(ctx, testTokenAddress)

		assert.Equal(t, 100, result.Score)
		assert.Equal(t, 720, result.Details["ageHours"])
		assert.Equal(t, created.Format(time.RFC3339), result.Details["createdAt"])
		assert.Empty(t, result.Risks)
	})

	t.Run("UnderOneHour", func(t *testing.T) {
		analyzer := newAnalyzer(&fakeChain{asset: assetCreatedAt(now.Add(-30 * time.Minute))})

		result := analyzer.Analyze(ctx, testTokenAddress)

		assert.Equal(t, 50, result.Score)
		assert.Contains(t, result.Risks, "Token is less than 1 hour old")
	})

	t.Run("UnderOneDay", func(t *testing.T) {
		analyzer := newAnalyzer(&fakeChain{asset: assetCreatedAt(now.Add(-6 * time.Hour))})

		result := analyzer.Analyze(ctx, testTokenAddress)

		assert.Equal(t, 70, result.Score)
		assert.Contains(t, result.Risks, "Token is less than 24 hours old")
	})

	t.Run("UnderOneWeek", func(t *testing.T) {
		analyzer := newAnalyzer(&fakeChain{asset: assetCreatedAt(now.Add(-72 * time.Hour))})

		result := analyzer.Analyze(ctx, testTokenAddress)

		assert.Equal(t, 90, result.Score)
		assert.Contains(t, result.Risks, "Token is less than 7 days old")
	})

	t.Run("MissingTimestampAssumedMature", func(t *testing.T) {
		analyzer := newAnalyzer(&fakeChain{asset: &models.Asset{}})

		result := analyzer.Analyze(ctx, testTokenAddress)

		assert.Equal(t, 100, result.Score)
		assert.False(t, result.Degraded)
		assert.Equal(t, assumedMatureHours, result.Details["ageHours"])
	})

	t.Run("ProviderFailureDegrades", func(t *testing.T) {
		analyzer := newAnalyzer(&fakeChain{})

		result := analyzer.Analyze(ctx, testTokenAddress)

		assert.True(t, result.Degraded)
		assert.Equal(t, 100, result.Score)
		assert.Equal(t, assumedMatureHours, result.Details["ageHours"])
		assert.Contains(t, result.Risks, "Unable to determine token age")
	})
}
