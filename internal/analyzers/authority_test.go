package analyzers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tferezin/onchainledger/internal/models"
)

func TestAuthorityAnalyzer(t *testing.T) {
	ctx := context.Background()

	t.Run("AllAuthoritiesRevoked", func(t *testing.T) {
		analyzer := NewAuthorityAnalyzer(&fakeChain{asset: &models.Asset{}})

		result := analyzer.Analyze(ctx, "mint")

		assert.Equal(t, 100, result.Score)
		assert.Equal(t, float64(20), result.Weighted)
		assert.Empty(t, result.Risks)
		assert.False(t, result.Degraded)
	})

	t.Run("MintAndFreezeEnabled", func(t *testing.T) {
		asset := &models.Asset{
			Authorities: []models.AssetAuthority{
				{Address: "MintAuth1111", Scopes: []string{"mint"}},
				{Address: "FreezeAuth11", Scopes: []string{"freeze"}},
			},
		}
		analyzer := NewAuthorityAnalyzer(&fakeChain{asset: asset})

		result := analyzer.Analyze(ctx, "mint")

		assert.Equal(t, 10, result.Score)
		assert.Len(t, result.Risks, 2)
		assert.Contains(t, result.Risks[1], "Freeze authority")
	})

	t.Run("UpdateAuthorityFromOwnership", func(t *testing.T) {
		asset := &models.Asset{
			Ownership: models.AssetOwnership{UpdateAuthority: "Updater1111"},
		}
		analyzer := NewAuthorityAnalyzer(&fakeChain{asset: asset})

		result := analyzer.Analyze(ctx, "mint")

		assert.Equal(t, 90, result.Score)
		assert.Len(t, result.Risks, 1)
	})

	t.Run("AllPenaltiesStack", func(t *testing.T) {
		asset := &models.Asset{
			Authorities: []models.AssetAuthority{
				{Address: "A", Scopes: []string{"mint"}},
				{Address: "B", Scopes: []string{"freeze"}},
				{Address: "C", Scopes: []string{"update"}},
			},
		}
		analyzer := NewAuthorityAnalyzer(&fakeChain{asset: asset})

		result := analyzer.Analyze(ctx, "mint")

		assert.Equal(t, 0, result.Score)
		assert.Equal(t, float64(0), result.Weighted)
	})

	t.Run("ProviderFailureDegrades", func(t *testing.T) {
		analyzer := NewAuthorityAnalyzer(&fakeChain{})

		result := analyzer.Analyze(ctx, "mint")

		assert.True(t, result.Degraded)
		assert.Equal(t, 100, result.Score)
		assert.Equal(t, []string{"Unable to fetch authority data"}, result.Risks)
	})
}
