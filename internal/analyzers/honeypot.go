package analyzers

import (
	"context"

	"github.com/tferezin/onchainledger/internal/models"
	"github.com/tferezin/onchainledger/internal/providers"
)

// HoneypotAnalyzer verifies that the token can actually be sold by
// requesting a sell-side swap quote. No viable sell route zeroes the
// score outright.
type HoneypotAnalyzer struct {
	swap providers.SwapProvider
}

// NewHoneypotAnalyzer creates a new honeypot analyzer
func NewHoneypotAnalyzer(swap providers.SwapProvider) *HoneypotAnalyzer {
	return &HoneypotAnalyzer{swap: swap}
}

func (h *HoneypotAnalyzer) Name() string    { return NameHoneypot }
func (h *HoneypotAnalyzer) Weight() float64 { return WeightHoneypot }

// Fallback treats an unverifiable sell route as a honeypot
func (h *HoneypotAnalyzer) Fallback() *models.AnalyzerResult {
	result := degradedResult(WeightHoneypot, 0, "HONEYPOT DETECTED: Unable to sell token")
	result.Details["isHoneypot"] = true
	result.Details["sellSimulation"] = map[string]interface{}{"success": false}
	return result
}

// Analyze simulates a sell of the token
func (h *HoneypotAnalyzer) Analyze(ctx context.Context, tokenAddress string) *models.AnalyzerResult {
	simulation := h.swap.SimulateSell(ctx, tokenAddress)

	result := models.NewAnalyzerResult(WeightHoneypot)
	result.Details["isHoneypot"] = false
	result.Details["sellSimulation"] = map[string]interface{}{"success": simulation.Success}

	if !simulation.Success {
		result.Score = 0
		result.Details["isHoneypot"] = true
		result.AddRisk("HONEYPOT DETECTED: Unable to sell token")
	}

	return result.Finalize()
}
