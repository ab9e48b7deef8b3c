package analyzers

import (
	"context"
	"fmt"

	"github.com/tferezin/onchainledger/internal/models"
	"github.com/tferezin/onchainledger/internal/providers"
)

// Token2022ProgramID is the extended token program
const Token2022ProgramID = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"

// Token2022Analyzer inspects mint extensions on extended-program
// tokens. Classic-program mints get the full score: extension risks
// only apply where extensions can exist.
type Token2022Analyzer struct {
	chain providers.ChainProvider
}

// NewToken2022Analyzer creates a new token extension analyzer
func NewToken2022Analyzer(chain providers.ChainProvider) *Token2022Analyzer {
	return &Token2022Analyzer{chain: chain}
}

func (t *Token2022Analyzer) Name() string    { return NameToken2022 }
func (t *Token2022Analyzer) Weight() float64 { return WeightToken2022 }

// Fallback returns a neutral score when the mint cannot be inspected
func (t *Token2022Analyzer) Fallback() *models.AnalyzerResult {
	return degradedResult(WeightToken2022, 50, "Unable to fetch token extension data")
}

// Analyze scores the dangerous extension set of an extended mint
func (t *Token2022Analyzer) Analyze(ctx context.Context, tokenAddress string) *models.AnalyzerResult {
	asset := t.chain.GetAsset(ctx, tokenAddress)
	if asset == nil {
		return t.Fallback()
	}

	result := models.NewAnalyzerResult(WeightToken2022)

	isToken2022 := asset.TokenInfo.TokenProgram == Token2022ProgramID
	result.Details["isToken2022"] = isToken2022
	result.Details["programId"] = asset.TokenInfo.TokenProgram

	if !isToken2022 {
		result.Details["extensions"] = []models.Extension{}
		return result.Finalize()
	}

	extensions := asset.Extensions
	if extensions == nil {
		extensions = []models.Extension{}
	}
	result.Details["extensions"] = extensions

	for _, ext := range extensions {
		switch ext.Kind {
		case models.ExtensionPermanentDelegate:
			result.Penalize(50, "CRITICAL: Permanent delegate can seize tokens from any holder")
		case models.ExtensionTransferHook:
			result.Penalize(20, "Transfer hook detected - arbitrary code runs on every transfer")
		case models.ExtensionPausable, models.ExtensionMintCloseAuthority:
			result.Penalize(30, "Token can be paused or closed by authority")
		case models.ExtensionTransferFee:
			result.Details["transferFeePercent"] = ext.FeePercent
			if ext.FeePercent > 5 {
				result.Penalize(20, fmt.Sprintf("High transfer fee: %.1f%%", ext.FeePercent))
			}
		case models.ExtensionNonTransferable:
			result.Penalize(10, "Token is non-transferable (soulbound)")
		}
	}

	return result.Finalize()
}
