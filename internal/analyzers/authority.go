package analyzers

import (
	"context"

	"github.com/tferezin/onchainledger/internal/models"
	"github.com/tferezin/onchainledger/internal/providers"
)

// AuthorityAnalyzer inspects mint/freeze/update authority flags. All
// three penalties are independent and can stack.
type AuthorityAnalyzer struct {
	chain providers.ChainProvider
}

// NewAuthorityAnalyzer creates a new authority analyzer
func NewAuthorityAnalyzer(chain providers.ChainProvider) *AuthorityAnalyzer {
	return &AuthorityAnalyzer{chain: chain}
}

func (a *AuthorityAnalyzer) Name() string    { return NameAuthority }
func (a *AuthorityAnalyzer) Weight() float64 { return WeightAuthority }

// Fallback keeps the full score with a note about missing authority data
func (a *AuthorityAnalyzer) Fallback() *models.AnalyzerResult {
	return degradedResult(WeightAuthority, 100, "Unable to fetch authority data")
}

// Analyze checks which authorities are still enabled on the mint
func (a *AuthorityAnalyzer) Analyze(ctx context.Context, tokenAddress string) *models.AnalyzerResult {
	asset := a.chain.GetAsset(ctx, tokenAddress)
	if asset == nil {
		return a.Fallback()
	}

	result := models.NewAnalyzerResult(WeightAuthority)

	mintAuthority := asset.AuthorityAddress("mint")
	freezeAuthority := asset.AuthorityAddress("freeze")
	updateAuthority := asset.AuthorityAddress("update")
	if updateAuthority == "" {
		updateAuthority = asset.Ownership.UpdateAuthority
	}

	result.Details["mintAuthority"] = authorityDetail(mintAuthority)
	result.Details["freezeAuthority"] = authorityDetail(freezeAuthority)
	result.Details["updateAuthority"] = authorityDetail(updateAuthority)

	if mintAuthority != "" {
		result.Penalize(40, "Mint authority is enabled - token supply can be increased")
	}

	// Freeze authority is the honeypot primitive: holders can be
	// frozen out of selling entirely.
	if freezeAuthority != "" {
		result.Penalize(50, "CRITICAL: Freeze authority is enabled - honeypot risk")
	}

	if updateAuthority != "" {
		result.Penalize(10, "Update authority is enabled - metadata can be changed")
	}

	return result.Finalize()
}

func authorityDetail(address string) map[string]interface{} {
	detail := map[string]interface{}{
		"enabled": address != "",
	}
	if address != "" {
		detail["address"] = address
	}
	return detail
}
