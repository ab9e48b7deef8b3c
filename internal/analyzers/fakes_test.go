package analyzers

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tferezin/onchainledger/internal/models"
)

const testTokenAddress = "TokenMint1111111111111111111111111111111111"

// fakeChain is a canned-response ChainProvider for analyzer tests
type fakeChain struct {
	asset        *models.Asset
	balances     []models.TokenBalance
	supply       *models.TokenSupply
	signatures   []models.SignatureInfo
	transactions []models.ParsedTransaction

	// Per-address overrides for funding-source walks
	signaturesByAddress   map[string][]models.SignatureInfo
	transactionsBySig     map[string][]models.ParsedTransaction
	parsedTransactionCall int
	lastParsedSignatures  []string
}

func (f *fakeChain) GetAsset(ctx context.Context, address string) *models.Asset {
	return f.asset
}

func (f *fakeChain) GetTokenLargestAccounts(ctx context.Context, address string) []models.TokenBalance {
	return f.balances
}

func (f *fakeChain) GetTokenSupply(ctx context.Context, address string) *models.TokenSupply {
	return f.supply
}

func (f *fakeChain) GetSignaturesForAddress(ctx context.Context, address string, limit int) []models.SignatureInfo {
	if f.signaturesByAddress != nil {
		return f.signaturesByAddress[address]
	}
	return f.signatures
}

func (f *fakeChain) GetParsedTransactions(ctx context.Context, signatures []string) []models.ParsedTransaction {
	f.parsedTransactionCall++
	f.lastParsedSignatures = signatures
	if f.transactionsBySig != nil && len(signatures) > 0 {
		return f.transactionsBySig[signatures[0]]
	}
	return f.transactions
}

// fakeMarket is a canned-response MarketProvider
type fakeMarket struct {
	overview *models.TokenOverview
	candles  []models.Candle
}

func (f *fakeMarket) GetTokenOverview(ctx context.Context, address string) *models.TokenOverview {
	return f.overview
}

func (f *fakeMarket) GetOHLCV(ctx context.Context, address string, from, to int64) []models.Candle {
	return f.candles
}

// fakeSwap is a canned-response SwapProvider
type fakeSwap struct {
	simulation models.SellSimulation
}

func (f *fakeSwap) SimulateSell(ctx context.Context, address string) models.SellSimulation {
	return f.simulation
}

func rawAmount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func supplyOf(total int64, decimals int) *models.TokenSupply {
	return &models.TokenSupply{Amount: decimal.NewFromInt(total), Decimals: decimals}
}
