package analyzers

import (
	"context"
	"math"
	"time"

	"github.com/tferezin/onchainledger/internal/models"
	"github.com/tferezin/onchainledger/internal/providers"
)

// assumedMatureHours is used when no creation timestamp is available:
// an unknown age is treated as a year old rather than penalized.
const assumedMatureHours = 8760

// AgeAnalyzer penalizes very young tokens
type AgeAnalyzer struct {
	chain providers.ChainProvider
	now   func() time.Time
}

// NewAgeAnalyzer creates a new token age analyzer
func NewAgeAnalyzer(chain providers.ChainProvider) *AgeAnalyzer {
	return &AgeAnalyzer{chain: chain, now: time.Now}
}

func (a *AgeAnalyzer) Name() string    { return NameAge }
func (a *AgeAnalyzer) Weight() float64 { return WeightAge }

// Fallback assumes a mature token when metadata is unavailable
func (a *AgeAnalyzer) Fallback() *models.AnalyzerResult {
	result := degradedResult(WeightAge, 100, "Unable to determine token age")
	result.Details["ageHours"] = assumedMatureHours
	return result
}

// Analyze computes hours since the mint's creation timestamp
func (a *AgeAnalyzer) Analyze(ctx context.Context, tokenAddress string) *models.AnalyzerResult {
	asset := a.chain.GetAsset(ctx, tokenAddress)
	if asset == nil {
		return a.Fallback()
	}

	result := models.NewAnalyzerResult(WeightAge)

	if asset.Metadata.CreatedAt == nil {
		result.Details["ageHours"] = assumedMatureHours
		result.Details["createdAt"] = nil
		return result.Finalize()
	}

	createdAt := *asset.Metadata.CreatedAt
	ageHours := a.now().Sub(createdAt).Hours()

	result.Details["ageHours"] = int(math.Round(ageHours))
	result.Details["createdAt"] = createdAt.UTC().Format(time.RFC3339)

	switch {
	case ageHours < 1:
		result.Penalize(50, "Token is less than 1 hour old")
	case ageHours < 24:
		result.Penalize(30, "Token is less than 24 hours old")
	case ageHours < 168:
		result.Penalize(10, "Token is less than 7 days old")
	}

	return result.Finalize()
}
