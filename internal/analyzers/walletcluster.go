package analyzers

import (
	"context"
	"sort"
	"time"

	"github.com/tferezin/onchainledger/internal/models"
	"github.com/tferezin/onchainledger/internal/providers"
)

const (
	clusterHolderLimit      = 10
	clusterSignatureLimit   = 20
	clusterParseLimit       = 10
	clusterFetchBatchSize   = 3
	clusterMaxClusters      = 2
	clusterMaxSize          = 3
	clusterMaxSupplyPercent = 30.0
)

// Delay between funding-source batches, keeps the RPC provider happy
var clusterBatchDelay = 200 * time.Millisecond

// WalletClusterAnalyzer maps the funding ancestry of the top holders.
// Holders funded by a common source wallet are grouped into clusters;
// many clusters, or large ones, suggest a single operator splitting a
// position across wallets.
type WalletClusterAnalyzer struct {
	chain providers.ChainProvider
}

// NewWalletClusterAnalyzer creates a new wallet clustering analyzer
func NewWalletClusterAnalyzer(chain providers.ChainProvider) *WalletClusterAnalyzer {
	return &WalletClusterAnalyzer{chain: chain}
}

func (w *WalletClusterAnalyzer) Name() string    { return NameWalletCluster }
func (w *WalletClusterAnalyzer) Weight() float64 { return WeightWalletCluster }

// Fallback keeps the full score when funding history is unavailable
func (w *WalletClusterAnalyzer) Fallback() *models.AnalyzerResult {
	return degradedResult(WeightWalletCluster, 100, "Unable to analyze wallet clusters")
}

type clusterHolder struct {
	address string
	percent float64
}

// Analyze fetches funding sources for the top holders and groups
// holders that share one
func (w *WalletClusterAnalyzer) Analyze(ctx context.Context, tokenAddress string) *models.AnalyzerResult {
	balances := w.chain.GetTokenLargestAccounts(ctx, tokenAddress)
	supply := w.chain.GetTokenSupply(ctx, tokenAddress)
	if len(balances) == 0 || supply == nil || supply.Amount.IsZero() {
		return w.Fallback()
	}

	holders := topHolders(balances, supply, clusterHolderLimit)
	sources := w.fetchFundingSources(ctx, holders)
	clusters := buildClusters(holders, sources)

	largestCluster := 0
	clusteredPercent := 0.0
	for _, cluster := range clusters {
		if len(cluster) > largestCluster {
			largestCluster = len(cluster)
		}
		for _, holder := range cluster {
			clusteredPercent += holder.percent
		}
	}

	result := models.NewAnalyzerResult(WeightWalletCluster)
	result.Details["clustersFound"] = len(clusters)
	result.Details["largestClusterSize"] = largestCluster
	result.Details["clusteredSupplyPercent"] = round2(clusteredPercent)

	if len(clusters) > clusterMaxClusters {
		result.Penalize(20, "Multiple wallet clusters detected among top holders")
	}
	if largestCluster > clusterMaxSize {
		result.Penalize(15, "Large wallet cluster controls multiple top holder positions")
	}
	if clusteredPercent > clusterMaxSupplyPercent {
		result.Penalize(25, "Clustered wallets hold significant supply share")
	}

	return result.Finalize()
}

func topHolders(balances []models.TokenBalance, supply *models.TokenSupply, limit int) []clusterHolder {
	sorted := make([]models.TokenBalance, len(balances))
	copy(sorted, balances)
	sort.Slice(sorted, func(a, b int) bool {
		return sorted[a].Amount.GreaterThan(sorted[b].Amount)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	holders := make([]clusterHolder, 0, len(sorted))
	for _, balance := range sorted {
		percent, _ := balance.Amount.Mul(hundred).Div(supply.Amount).Float64()
		holders = append(holders, clusterHolder{address: balance.Address, percent: percent})
	}
	return holders
}

// fetchFundingSources walks each holder's earliest transactions and
// records the wallets that sent it SOL. Holders are processed in small
// batches with a pause in between to stay under provider rate limits.
func (w *WalletClusterAnalyzer) fetchFundingSources(ctx context.Context, holders []clusterHolder) map[string]map[string]bool {
	sources := make(map[string]map[string]bool, len(holders))

	for start := 0; start < len(holders); start += clusterFetchBatchSize {
		end := start + clusterFetchBatchSize
		if end > len(holders) {
			end = len(holders)
		}

		for _, holder := range holders[start:end] {
			sources[holder.address] = w.fundingSourcesFor(ctx, holder.address)
		}

		if end < len(holders) {
			select {
			case <-ctx.Done():
				return sources
			case <-time.After(clusterBatchDelay):
			}
		}
	}
	return sources
}

func (w *WalletClusterAnalyzer) fundingSourcesFor(ctx context.Context, holder string) map[string]bool {
	funders := map[string]bool{}

	signatures := w.chain.GetSignaturesForAddress(ctx, holder, clusterSignatureLimit)
	if len(signatures) == 0 {
		return funders
	}

	sorted := make([]models.SignatureInfo, len(signatures))
	copy(sorted, signatures)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].Slot < sorted[b].Slot })
	if len(sorted) > clusterParseLimit {
		sorted = sorted[:clusterParseLimit]
	}

	earliest := make([]string, 0, len(sorted))
	for _, sig := range sorted {
		earliest = append(earliest, sig.Signature)
	}

	for _, tx := range w.chain.GetParsedTransactions(ctx, earliest) {
		holderInvolved := false
		holderGainedSOL := false
		for _, change := range tx.AccountData {
			if change.Account == holder {
				holderInvolved = true
				holderGainedSOL = change.NativeBalanceChange > 0
				break
			}
		}

		for _, transfer := range tx.NativeTransfers {
			if transfer.ToUserAccount == holder && transfer.Amount > 0 && transfer.FromUserAccount != "" && transfer.FromUserAccount != holder {
				funders[transfer.FromUserAccount] = true
			}
		}

		// Balance-delta senders only count when the holder itself came
		// out of the transaction with more SOL. A holder paying a DEX
		// vault is a customer, not a funded wallet.
		if holderGainedSOL {
			for _, change := range tx.AccountData {
				if change.NativeBalanceChange < 0 && change.Account != holder && change.Account != "" {
					funders[change.Account] = true
				}
			}
		}

		if tx.FeePayer != "" && tx.FeePayer != holder && holderInvolved {
			funders[tx.FeePayer] = true
		}
	}
	return funders
}

// buildClusters groups holders into connected components over the
// shared-funding-source relation. Only components with at least two
// holders count as clusters.
func buildClusters(holders []clusterHolder, sources map[string]map[string]bool) [][]clusterHolder {
	n := len(holders)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}

	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if sharesFunder(sources[holders[i].address], sources[holders[j].address]) {
				union(i, j)
			}
		}
	}

	groups := map[int][]clusterHolder{}
	for i, holder := range holders {
		root := find(i)
		groups[root] = append(groups[root], holder)
	}

	clusters := [][]clusterHolder{}
	for _, group := range groups {
		if len(group) >= 2 {
			clusters = append(clusters, group)
		}
	}
	return clusters
}

func sharesFunder(a, b map[string]bool) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	for funder := range a {
		if b[funder] {
			return true
		}
	}
	return false
}
