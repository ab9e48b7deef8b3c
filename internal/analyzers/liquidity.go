package analyzers

import (
	"context"
	"fmt"

	"github.com/tferezin/onchainledger/internal/models"
	"github.com/tferezin/onchainledger/internal/providers"
)

// LiquidityAnalyzer scores the token's TVL. Missing liquidity data is
// itself a risk signal, so the degraded score is 20 rather than
// neutral.
type LiquidityAnalyzer struct {
	market providers.MarketProvider
}

// NewLiquidityAnalyzer creates a new liquidity analyzer
func NewLiquidityAnalyzer(market providers.MarketProvider) *LiquidityAnalyzer {
	return &LiquidityAnalyzer{market: market}
}

func (l *LiquidityAnalyzer) Name() string    { return NameLiquidity }
func (l *LiquidityAnalyzer) Weight() float64 { return WeightLiquidity }

// Fallback forces the score to 20: liquidity we cannot see is
// liquidity we cannot trust
func (l *LiquidityAnalyzer) Fallback() *models.AnalyzerResult {
	return degradedResult(WeightLiquidity, 20, "Unable to fetch liquidity data")
}

// Analyze scores the TVL bands of the token
func (l *LiquidityAnalyzer) Analyze(ctx context.Context, tokenAddress string) *models.AnalyzerResult {
	overview := l.market.GetTokenOverview(ctx, tokenAddress)
	if overview == nil {
		return l.Fallback()
	}

	result := models.NewAnalyzerResult(WeightLiquidity)

	tvl := overview.Liquidity
	result.Details["tvlUsd"] = tvl
	result.Details["volume24h"] = overview.Volume24hUSD
	result.Details["priceUsd"] = overview.Price
	result.Details["marketCap"] = overview.MarketCap

	switch {
	case tvl < 1000:
		result.Penalize(80, fmt.Sprintf("Very low liquidity: $%.0f TVL", tvl))
	case tvl < 10000:
		result.Penalize(50, fmt.Sprintf("Low liquidity: $%.0f TVL", tvl))
	case tvl < 50000:
		result.Penalize(20, fmt.Sprintf("Moderate liquidity: $%.0f TVL", tvl))
	}

	return result.Finalize()
}
