package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tferezin/onchainledger/internal/config"
	"github.com/tferezin/onchainledger/internal/models"
	"github.com/tferezin/onchainledger/pkg/logger"

	"go.uber.org/zap"
)

const (
	usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	solMint  = "So11111111111111111111111111111111111111112"
)

// JupiterClient simulates sells through the Jupiter quote API
type JupiterClient struct {
	http   *http.Client
	config *config.JupiterConfig
}

// NewJupiterClient creates a new Jupiter client
func NewJupiterClient(cfg *config.JupiterConfig) *JupiterClient {
	return &JupiterClient{
		http:   &http.Client{},
		config: cfg,
	}
}

// SimulateSell attempts to quote a sell of the token. A missing route
// means the token cannot be sold.
func (j *JupiterClient) SimulateSell(ctx context.Context, address string) models.SellSimulation {
	log := logger.GetLogger()

	// Quote against SOL when the token itself is USDC
	outputMint := usdcMint
	if address == usdcMint {
		outputMint = solMint
	}

	params := url.Values{}
	params.Set("inputMint", address)
	params.Set("outputMint", outputMint)
	params.Set("amount", strconv.FormatInt(j.config.SellAmount, 10))
	params.Set("slippageBps", strconv.Itoa(j.config.SlippageBps))

	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/quote?%s", j.config.Endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.SellSimulation{Success: false, Error: err.Error()}
	}

	resp, err := j.http.Do(req)
	if err != nil {
		log.Warn("Jupiter sell simulation failed",
			zap.String("token_address", address),
			zap.Error(err),
		)
		return models.SellSimulation{Success: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.SellSimulation{
			Success: false,
			Error:   fmt.Sprintf("no sell route (status %d)", resp.StatusCode),
		}
	}

	var quote struct {
		OutAmount string `json:"outAmount"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return models.SellSimulation{Success: false, Error: err.Error()}
	}

	return models.SellSimulation{Success: true, OutAmount: quote.OutAmount}
}
