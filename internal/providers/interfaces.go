package providers

import (
	"context"

	"github.com/tferezin/onchainledger/internal/models"
)

// All provider methods are failure-tolerant: they return nil or empty
// values instead of errors, so analyzers degrade per their documented
// policies instead of aborting the aggregation.

// ChainProvider exposes on-chain token facts
type ChainProvider interface {
	GetAsset(ctx context.Context, address string) *models.Asset
	GetTokenLargestAccounts(ctx context.Context, address string) []models.TokenBalance
	GetTokenSupply(ctx context.Context, address string) *models.TokenSupply
	GetSignaturesForAddress(ctx context.Context, address string, limit int) []models.SignatureInfo
	GetParsedTransactions(ctx context.Context, signatures []string) []models.ParsedTransaction
}

// MarketProvider exposes market data snapshots and candles
type MarketProvider interface {
	GetTokenOverview(ctx context.Context, address string) *models.TokenOverview
	GetOHLCV(ctx context.Context, address string, from, to int64) []models.Candle
}

// SwapProvider exposes sell-side swap quote simulation
type SwapProvider interface {
	SimulateSell(ctx context.Context, address string) models.SellSimulation
}
