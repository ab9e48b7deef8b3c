package analyzers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tferezin/onchainledger/internal/models"
)

func TestLPLockAnalyzer(t *testing.T) {
	ctx := context.Background()

	t.Run("KnownLockerHoldsLP", func(t *testing.T) {
		chain := &fakeChain{balances: []models.TokenBalance{
			{Address: "strmRqUCoQUgGUan5YhzUZa6KqdzwX5L6FpUxfmKg5m", Amount: rawAmount(800)},
			{Address: "SomeWallet111111111111111111111111111111111", Amount: rawAmount(200)},
		}}
		analyzer := NewLPLockAnalyzer(chain)

		result := analyzer.Analyze(ctx, testTokenAddress)

		assert.Equal(t, 100, result.Score)
		assert.Equal(t, true, result.Details["locked"])
		assert.Equal(t, "Streamflow", result.Details["lockerName"])
		assert.Equal(t, 80.0, result.Details["percentLocked"])
		assert.Empty(t, result.Risks)
	})

	t.Run("UnlockedLPIsModerateRisk", func(t *testing.T) {
		chain := &fakeChain{balances: []models.TokenBalance{
			{Address: "SomeWallet111111111111111111111111111111111", Amount: rawAmount(1000)},
		}}
		analyzer := NewLPLockAnalyzer(chain)

		result := analyzer.Analyze(ctx, testTokenAddress)

		assert.Equal(t, 75, result.Score)
		assert.Equal(t, false, result.Details["locked"])
		assert.Equal(t, 0.0, result.Details["percentLocked"])
		assert.Contains(t, result.Risks, "LP tokens are not locked")
	})

	t.Run("ProviderFailureScoresAsUnlocked", func(t *testing.T) {
		analyzer := NewLPLockAnalyzer(&fakeChain{})

		result := analyzer.Analyze(ctx, testTokenAddress)

		assert.True(t, result.Degraded)
		assert.Equal(t, 75, result.Score)
		assert.Equal(t, false, result.Details["locked"])
		assert.Contains(t, result.Risks, "Unable to fetch LP token holders")
	})
}
