package analyzers

import (
	"context"

	"github.com/tferezin/onchainledger/internal/models"
)

// Analyzer names, in the fixed order risk factors are reported
const (
	NameAuthority     = "authority"
	NameHolders       = "holders"
	NameLiquidity     = "liquidity"
	NameHoneypot      = "honeypot"
	NameAge           = "age"
	NameToken2022     = "token2022"
	NameLPLock        = "lpLock"
	NameInsider       = "insider"
	NameWalletCluster = "walletCluster"
	NamePriceHistory  = "priceHistory"
)

// Analyzer weights; the full set sums to 1.0
const (
	WeightAuthority     = 0.20
	WeightHolders       = 0.15
	WeightLiquidity     = 0.12
	WeightHoneypot      = 0.08
	WeightAge           = 0.05
	WeightToken2022     = 0.10
	WeightLPLock        = 0.05
	WeightInsider       = 0.10
	WeightWalletCluster = 0.08
	WeightPriceHistory  = 0.07
)

// Analyzer is one independent risk check. Analyze never returns an
// error and never panics past its boundary: on provider failure it
// returns the same degraded result Fallback describes.
type Analyzer interface {
	Name() string
	Weight() float64
	Analyze(ctx context.Context, tokenAddress string) *models.AnalyzerResult

	// Fallback is the analyzer's documented result for total data
	// unavailability. The aggregator substitutes it when an analyzer
	// escapes its own recovery.
	Fallback() *models.AnalyzerResult
}

// degradedResult builds a finalized fallback result
func degradedResult(weight float64, score int, risk string) *models.AnalyzerResult {
	result := models.NewAnalyzerResult(weight)
	result.Score = score
	result.AddRisk(risk)
	result.Degraded = true
	return result.Finalize()
}
