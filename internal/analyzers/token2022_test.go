package analyzers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tferezin/onchainledger/internal/models"
)

func TestToken2022Analyzer(t *testing.T) {
	ctx := context.Background()

	extendedAsset := func(extensions ...models.Extension) *models.Asset {
		return &models.Asset{
			TokenInfo:  models.AssetTokenInfo{TokenProgram: Token2022ProgramID},
			Extensions: extensions,
		}
	}

	t.Run("ClassicProgramTokenScoresFull", func(t *testing.T) {
		asset := &models.Asset{
			TokenInfo: models.AssetTokenInfo{TokenProgram: "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"},
		}
		analyzer := NewToken2022Analyzer(&fakeChain{asset: asset})

		result := analyzer.Analyze(ctx, testTokenAddress)

		assert.Equal(t, 100, result.Score)
		assert.Equal(t, false, result.Details["isToken2022"])
		assert.Empty(t, result.Details["extensions"])
		assert.Empty(t, result.Risks)
	})

	t.Run("ExtendedTokenWithoutExtensions", func(t *testing.T) {
		analyzer := NewToken2022Analyzer(&fakeChain{asset: extendedAsset()})

		result := analyzer.Analyze(ctx, testTokenAddress)

		assert.Equal(t, 100, result.Score)
		assert.Equal(t, true, result.Details["isToken2022"])
	})

	t.Run("PermanentDelegateIsCritical", func(t *testing.T) {
		asset := extendedAsset(models.Extension{Kind: models.ExtensionPermanentDelegate})
		analyzer := NewToken2022Analyzer(&fakeChain{asset: asset})

		result := analyzer.Analyze(ctx, testTokenAddress)

		assert.Equal(t, 50, result.Score)
		assert.Contains(t, result.Risks, "CRITICAL: Permanent delegate can seize tokens from any holder")
	})

	t.Run("HighTransferFeePenalized", func(t *testing.T) {
		asset := extendedAsset(models.Extension{Kind: models.ExtensionTransferFee, FeePercent: 8.5})
		analyzer := NewToken2022Analyzer(&fakeChain{asset: asset})

		result := analyzer.Analyze(ctx, testTokenAddress)

		assert.Equal(t, 80, result.Score)
		assert.Equal(t, 8.5, result.Details["transferFeePercent"])
		assert.Contains(t, result.Risks, "High transfer fee: 8.5%")
	})

	t.Run("ModestTransferFeeReportedWithoutPenalty", func(t *testing.T) {
		asset := extendedAsset(models.Extension{Kind: models.ExtensionTransferFee, FeePercent: 2})
		analyzer := NewToken2022Analyzer(&fakeChain{asset: asset})

		result := analyzer.Analyze(ctx, testTokenAddress)

		assert.Equal(t, 100, result.Score)
		assert.Equal(t, float64(2), result.Details["transferFeePercent"])
		assert.Empty(t, result.Risks)
	})

	t.Run("StackedDangerousExtensions", func(t *testing.T) {
		asset := extendedAsset(
			models.Extension{Kind: models.ExtensionTransferHook},
			models.Extension{Kind: models.ExtensionPausable},
			models.Extension{Kind: models.ExtensionNonTransferable},
		)
		analyzer := NewToken2022Analyzer(&fakeChain{asset: asset})

		result := analyzer.Analyze(ctx, testTokenAddress)

		assert.Equal(t, 40, result.Score)
		assert.Len(t, result.Risks, 3)
	})

	t.Run("ProviderFailureIsNeutral", func(t *testing.T) {
		analyzer := NewToken2022Analyzer(&fakeChain{})

		result := analyzer.Analyze(ctx, testTokenAddress)

		assert.True(t, result.Degraded)
		assert.Equal(t, 50, result.Score)
		assert.Contains(t, result.Risks, "Unable to fetch token extension data")
	})
}
