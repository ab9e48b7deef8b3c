package analyzers

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/tferezin/onchainledger/internal/models"
	"github.com/tferezin/onchainledger/internal/providers"

	"github.com/shopspring/decimal"
)

const (
	holderPrefixLen = 8
	topHolderCount  = 10
)

var hundred = decimal.NewFromInt(100)

// HoldersAnalyzer examines the holder distribution of a token:
// top-10 concentration, a Gini coefficient over all available
// holder shares, creator self-holding, and heuristic collusion
// patterns among top holders. Only concentration and the Gini
// coefficient are scored; pattern detection is informational.
type HoldersAnalyzer struct {
	chain providers.ChainProvider
}

// NewHoldersAnalyzer creates a new holder distribution analyzer
func NewHoldersAnalyzer(chain providers.ChainProvider) *HoldersAnalyzer {
	return &HoldersAnalyzer{chain: chain}
}

func (h *HoldersAnalyzer) Name() string    { return NameHolders }
func (h *HoldersAnalyzer) Weight() float64 { return WeightHolders }

// Fallback keeps the full score with a note about missing holder data
func (h *HoldersAnalyzer) Fallback() *models.AnalyzerResult {
	return degradedResult(WeightHolders, 100, "Unable to fetch holder data")
}

type holderShare struct {
	Address    string  `json:"address"`
	Balance    float64 `json:"balance"`
	Percentage float64 `json:"percentage"`
}

// Analyze computes distribution metrics for the token's holder table
func (h *HoldersAnalyzer) Analyze(ctx context.Context, tokenAddress string) *models.AnalyzerResult {
	var (
		largest []models.TokenBalance
		supply  *models.TokenSupply
		asset   *models.Asset
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		largest = h.chain.GetTokenLargestAccounts(ctx, tokenAddress)
	}()
	go func() {
		defer wg.Done()
		supply = h.chain.GetTokenSupply(ctx, tokenAddress)
	}()
	go func() {
		defer wg.Done()
		asset = h.chain.GetAsset(ctx, tokenAddress)
	}()
	wg.Wait()

	if len(largest) == 0 || supply == nil || supply.Amount.IsZero() {
		return h.Fallback()
	}

	result := models.NewAnalyzerResult(WeightHolders)

	totalSupply := supply.UiAmount()

	// Share percentages over all available holders, largest first
	allShares := make([]holderShare, 0, len(largest))
	for _, account := range largest {
		balance := account.Amount.Shift(-int32(supply.Decimals))
		percentage := balance.Div(totalSupply).Mul(hundred).InexactFloat64()
		allShares = append(allShares, holderShare{
			Address:    account.Address,
			Balance:    balance.InexactFloat64(),
			Percentage: percentage,
		})
	}

	topShares := allShares
	if len(topShares) > topHolderCount {
		topShares = topShares[:topHolderCount]
	}

	top10Total := 0.0
	topHolders := make([]holderShare, len(topShares))
	for i, share := range topShares {
		top10Total += share.Percentage
		topHolders[i] = holderShare{
			Address:    share.Address,
			Balance:    share.Balance,
			Percentage: round2(share.Percentage),
		}
	}

	result.Details["totalHolders"] = len(allShares)
	result.Details["top10Concentration"] = round2(top10Total)
	result.Details["topHolders"] = topHolders

	switch {
	case top10Total > 80:
		result.Penalize(60, fmt.Sprintf("High concentration: Top 10 hold %.2f%%", top10Total))
	case top10Total > 60:
		result.Penalize(40, fmt.Sprintf("Elevated concentration: Top 10 hold %.2f%%", top10Total))
	case top10Total > 40:
		result.Penalize(20, fmt.Sprintf("Moderate concentration: Top 10 hold %.2f%%", top10Total))
	}

	percentages := make([]float64, len(allShares))
	for i, share := range allShares {
		percentages[i] = share.Percentage
	}
	gini := GiniCoefficient(percentages)
	result.Details["giniCoefficient"] = round2(gini)
	if gini > 0.9 {
		result.Penalize(10, fmt.Sprintf("Extreme holder inequality (Gini %.2f)", gini))
	}

	if asset != nil {
		if creator := asset.CreatorAddress(); creator != "" {
			for _, share := range topShares {
				if share.Address == creator && share.Percentage > 10 {
					result.Details["creatorHoldsPercent"] = round2(share.Percentage)
					result.Penalize(15, fmt.Sprintf("Creator holds %.2f%% of supply", share.Percentage))
					break
				}
			}
		}
	}

	h.detectPatterns(result, topShares)

	return result.Finalize()
}

// detectPatterns reports heuristic collusion signals among the top
// holders. Detected patterns add risks but never change the score.
func (h *HoldersAnalyzer) detectPatterns(result *models.AnalyzerResult, shares []holderShare) {
	patterns := []string{}

	if n := uniformBlockSize(shares); n >= 3 {
		patterns = append(patterns, "uniformHoldings")
		result.AddRisk(fmt.Sprintf("%d top holders hold near-identical percentages", n))
	}

	if pairs := sharedPrefixPairs(shares); pairs >= 2 {
		patterns = append(patterns, "similarAddresses")
		result.AddRisk(fmt.Sprintf("%d holder address pairs share an %d-character prefix", pairs, holderPrefixLen))
	}

	if n := roundNumberHolders(shares); n >= 3 {
		patterns = append(patterns, "roundNumberHoldings")
		result.AddRisk(fmt.Sprintf("%d top holders hold suspiciously round percentages", n))
	}

	result.Details["suspiciousPatterns"] = patterns
}

// uniformBlockSize returns the size of the largest group of holders
// above 1% whose percentages all lie within 0.5 points of each other
func uniformBlockSize(shares []holderShare) int {
	significant := make([]float64, 0, len(shares))
	for _, share := range shares {
		if share.Percentage > 1 {
			significant = append(significant, share.Percentage)
		}
	}
	if len(significant) < 3 {
		return 0
	}
	sort.Float64s(significant)

	best := 1
	lo := 0
	for hi := range significant {
		for significant[hi]-significant[lo] > 0.5 {
			lo++
		}
		if hi-lo+1 > best {
			best = hi - lo + 1
		}
	}
	return best
}

// sharedPrefixPairs counts holder address pairs sharing a common prefix
func sharedPrefixPairs(shares []holderShare) int {
	groups := make(map[string]int)
	for _, share := range shares {
		if len(share.Address) < holderPrefixLen {
			continue
		}
		groups[share.Address[:holderPrefixLen]]++
	}

	pairs := 0
	for _, n := range groups {
		pairs += n * (n - 1) / 2
	}
	return pairs
}

// roundNumberHolders counts holders at or above 1% whose percentage is
// within 0.01 of a whole number
func roundNumberHolders(shares []holderShare) int {
	count := 0
	for _, share := range shares {
		if share.Percentage < 1 {
			continue
		}
		if math.Abs(share.Percentage-math.Round(share.Percentage)) <= 0.01 {
			count++
		}
	}
	return count
}

// GiniCoefficient computes the standard discrete Gini coefficient over
// holder shares: 0 for perfect equality, approaching 1 for maximal
// inequality.
func GiniCoefficient(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum, weighted float64
	for i, v := range sorted {
		sum += v
		weighted += float64(i+1) * v
	}
	if sum == 0 {
		return 0
	}

	return (2*weighted)/(float64(n)*sum) - float64(n+1)/float64(n)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
