package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tferezin/onchainledger/internal/config"
	"github.com/tferezin/onchainledger/internal/models"
	"github.com/tferezin/onchainledger/pkg/logger"

	"go.uber.org/zap"
)

// BirdeyeClient fetches market data snapshots and OHLCV candles
type BirdeyeClient struct {
	http   *http.Client
	config *config.BirdeyeConfig
}

// NewBirdeyeClient creates a new Birdeye client
func NewBirdeyeClient(cfg *config.BirdeyeConfig) *BirdeyeClient {
	return &BirdeyeClient{
		http:   &http.Client{},
		config: cfg,
	}
}

// GetTokenOverview fetches the liquidity/price/volume snapshot, or nil
func (b *BirdeyeClient) GetTokenOverview(ctx context.Context, address string) *models.TokenOverview {
	log := logger.GetLogger()

	params := url.Values{}
	params.Set("address", address)

	var response struct {
		Data *models.TokenOverview `json:"data"`
	}
	if err := b.getJSON(ctx, "/defi/token_overview", params, b.config.Timeout, &response); err != nil {
		log.Warn("Birdeye token overview failed",
			zap.String("token_address", address),
			zap.Error(err),
		)
		return nil
	}

	return response.Data
}

// GetOHLCV fetches hourly candles for the given unix time range
func (b *BirdeyeClient) GetOHLCV(ctx context.Context, address string, from, to int64) []models.Candle {
	log := logger.GetLogger()

	params := url.Values{}
	params.Set("address", address)
	params.Set("type", b.config.CandleType)
	params.Set("time_from", strconv.FormatInt(from, 10))
	params.Set("time_to", strconv.FormatInt(to, 10))

	var response struct {
		Data struct {
			Items []models.Candle `json:"items"`
		} `json:"data"`
	}
	if err := b.getJSON(ctx, "/defi/ohlcv", params, b.config.OHLCVTimeout, &response); err != nil {
		log.Warn("Birdeye OHLCV failed",
			zap.String("token_address", address),
			zap.Error(err),
		)
		return nil
	}

	return response.Data.Items
}

func (b *BirdeyeClient) getJSON(ctx context.Context, path string, params url.Values, timeout time.Duration, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s%s?%s", b.config.Endpoint, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-API-KEY", b.config.APIKey)
	req.Header.Set("x-chain", b.config.Chain)

	resp, err := b.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
