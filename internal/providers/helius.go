package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tferezin/onchainledger/internal/config"
	"github.com/tferezin/onchainledger/internal/models"
	"github.com/tferezin/onchainledger/pkg/logger"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// HeliusClient talks to Helius. Standard RPC methods go through the
// solana-go client; the DAS getAsset method and the enhanced
// parsed-transactions API are Helius-proprietary and use plain HTTP.
type HeliusClient struct {
	rpc    *rpc.Client
	http   *http.Client
	config *config.HeliusConfig
}

// NewHeliusClient creates a new Helius client
func NewHeliusClient(cfg *config.HeliusConfig) *HeliusClient {
	endpoint := cfg.RPCEndpoint
	if cfg.APIKey != "" {
		endpoint = fmt.Sprintf("%s/?api-key=%s", cfg.RPCEndpoint, cfg.APIKey)
	}

	return &HeliusClient{
		rpc:    rpc.New(endpoint),
		http:   &http.Client{},
		config: cfg,
	}
}

// dasAsset is the raw DAS getAsset payload; only consumed fields are mapped
type dasAsset struct {
	ID          string `json:"id"`
	Authorities []struct {
		Address string   `json:"address"`
		Scopes  []string `json:"scopes"`
	} `json:"authorities"`
	Ownership struct {
		Owner           string `json:"owner"`
		OwnerType       string `json:"owner_type"`
		UpdateAuthority string `json:"update_authority"`
		Delegate        string `json:"delegate"`
		Delegated       bool   `json:"delegated"`
	} `json:"ownership"`
	Content struct {
		Metadata struct {
			Name      string `json:"name"`
			Symbol    string `json:"symbol"`
			CreatedAt string `json:"createdAt"`
		} `json:"metadata"`
	} `json:"content"`
	TokenInfo struct {
		Decimals       int                        `json:"decimals"`
		TokenProgram   string                     `json:"token_program"`
		MintExtensions map[string]json.RawMessage `json:"mint_extensions"`
	} `json:"token_info"`
	MintExtensions map[string]json.RawMessage `json:"mint_extensions"`
}

// GetAsset fetches the DAS asset record for a mint, or nil
func (h *HeliusClient) GetAsset(ctx context.Context, address string) *models.Asset {
	log := logger.GetLogger()

	reqBody := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      "get-asset",
		"method":  "getAsset",
		"params":  map[string]string{"id": address},
	}

	var response struct {
		Result *dasAsset `json:"result"`
	}
	if err := h.postJSON(ctx, h.rpcURL(), reqBody, h.config.Timeout, &response); err != nil {
		log.Warn("Helius getAsset failed",
			zap.String("token_address", address),
			zap.Error(err),
		)
		return nil
	}
	if response.Result == nil {
		return nil
	}

	return normalizeAsset(response.Result)
}

// GetTokenLargestAccounts fetches the largest token accounts for a mint
func (h *HeliusClient) GetTokenLargestAccounts(ctx context.Context, address string) []models.TokenBalance {
	log := logger.GetLogger()

	pubKey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	out, err := h.rpc.GetTokenLargestAccounts(ctx, pubKey, rpc.CommitmentFinalized)
	if err != nil || out == nil {
		log.Warn("Helius getTokenLargestAccounts failed",
			zap.String("token_address", address),
			zap.Error(err),
		)
		return nil
	}

	balances := make([]models.TokenBalance, 0, len(out.Value))
	for _, account := range out.Value {
		if account == nil {
			continue
		}
		amount, err := decimal.NewFromString(account.Amount)
		if err != nil {
			continue
		}
		balances = append(balances, models.TokenBalance{
			Address: account.Address.String(),
			Amount:  amount,
		})
	}

	return balances
}

// GetTokenSupply fetches the raw total supply for a mint, or nil
func (h *HeliusClient) GetTokenSupply(ctx context.Context, address string) *models.TokenSupply {
	log := logger.GetLogger()

	pubKey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	out, err := h.rpc.GetTokenSupply(ctx, pubKey, rpc.CommitmentFinalized)
	if err != nil || out == nil || out.Value == nil {
		log.Warn("Helius getTokenSupply failed",
			zap.String("token_address", address),
			zap.Error(err),
		)
		return nil
	}

	amount, err := decimal.NewFromString(out.Value.Amount)
	if err != nil {
		return nil
	}

	return &models.TokenSupply{
		Amount:   amount,
		Decimals: int(out.Value.Decimals),
	}
}

// GetSignaturesForAddress fetches recent transaction signatures for an address
func (h *HeliusClient) GetSignaturesForAddress(ctx context.Context, address string, limit int) []models.SignatureInfo {
	log := logger.GetLogger()

	pubKey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.HistoryTimeout)
	defer cancel()

	out, err := h.rpc.GetSignaturesForAddressWithOpts(ctx, pubKey, &rpc.GetSignaturesForAddressOpts{
		Limit: &limit,
	})
	if err != nil {
		log.Warn("Helius getSignaturesForAddress failed",
			zap.String("address", address),
			zap.Error(err),
		)
		return nil
	}

	signatures := make([]models.SignatureInfo, 0, len(out))
	for _, sig := range out {
		if sig == nil {
			continue
		}
		signatures = append(signatures, models.SignatureInfo{
			Signature: sig.Signature.String(),
			Slot:      sig.Slot,
		})
	}

	return signatures
}

// GetParsedTransactions fetches enriched transactions from the Helius
// enhanced API
func (h *HeliusClient) GetParsedTransactions(ctx context.Context, signatures []string) []models.ParsedTransaction {
	log := logger.GetLogger()

	if len(signatures) == 0 {
		return nil
	}

	url := fmt.Sprintf("%s/transactions/?api-key=%s", h.config.APIEndpoint, h.config.APIKey)
	reqBody := map[string]interface{}{"transactions": signatures}

	var transactions []models.ParsedTransaction
	if err := h.postJSON(ctx, url, reqBody, h.config.ParseTimeout, &transactions); err != nil {
		log.Warn("Helius getParsedTransactions failed",
			zap.Int("signature_count", len(signatures)),
			zap.Error(err),
		)
		return nil
	}

	return transactions
}

// Ping checks RPC reachability for health reporting
func (h *HeliusClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	_, err := h.rpc.GetHealth(ctx)
	return err
}

func (h *HeliusClient) rpcURL() string {
	if h.config.APIKey != "" {
		return fmt.Sprintf("%s/?api-key=%s", h.config.RPCEndpoint, h.config.APIKey)
	}
	return h.config.RPCEndpoint
}

func (h *HeliusClient) postJSON(ctx context.Context, url string, body interface{}, timeout time.Duration, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// normalizeAsset maps a raw DAS record into the model type, deciding
// extension kinds once at this boundary
func normalizeAsset(raw *dasAsset) *models.Asset {
	asset := &models.Asset{
		ID: raw.ID,
		Ownership: models.AssetOwnership{
			Owner:           raw.Ownership.Owner,
			OwnerType:       raw.Ownership.OwnerType,
			UpdateAuthority: raw.Ownership.UpdateAuthority,
			Delegate:        raw.Ownership.Delegate,
			Delegated:       raw.Ownership.Delegated,
		},
		Metadata: models.AssetMetadata{
			Name:   raw.Content.Metadata.Name,
			Symbol: raw.Content.Metadata.Symbol,
		},
		TokenInfo: models.AssetTokenInfo{
			Decimals:     raw.TokenInfo.Decimals,
			TokenProgram: raw.TokenInfo.TokenProgram,
		},
	}

	for _, auth := range raw.Authorities {
		asset.Authorities = append(asset.Authorities, models.AssetAuthority{
			Address: auth.Address,
			Scopes:  auth.Scopes,
		})
	}

	if raw.Content.Metadata.CreatedAt != "" {
		if createdAt, err := time.Parse(time.RFC3339, raw.Content.Metadata.CreatedAt); err == nil {
			asset.Metadata.CreatedAt = &createdAt
		}
	}

	extensions := raw.TokenInfo.MintExtensions
	if len(extensions) == 0 {
		extensions = raw.MintExtensions
	}
	for name, rawExt := range extensions {
		kind, ok := normalizeExtensionKind(name)
		if !ok {
			continue
		}
		ext := models.Extension{Kind: kind}
		if kind == models.ExtensionTransferFee {
			ext.FeePercent = parseTransferFeePercent(rawExt)
		}
		asset.Extensions = append(asset.Extensions, ext)
	}

	return asset
}

// normalizeExtensionKind maps a free-form extension name to the closed
// ExtensionKind set; unknown names are dropped
func normalizeExtensionKind(name string) (models.ExtensionKind, bool) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(name))

	switch key {
	case "permanentdelegate":
		return models.ExtensionPermanentDelegate, true
	case "transferhook", "transferhookaccount":
		return models.ExtensionTransferHook, true
	case "pausable":
		return models.ExtensionPausable, true
	case "mintcloseauthority":
		return models.ExtensionMintCloseAuthority, true
	case "transferfee", "transferfeeconfig", "transferfeeamount":
		return models.ExtensionTransferFee, true
	case "nontransferable", "nontransferableaccount":
		return models.ExtensionNonTransferable, true
	default:
		return "", false
	}
}

// parseTransferFeePercent extracts the fee in percent from a raw
// transfer-fee extension payload
func parseTransferFeePercent(raw json.RawMessage) float64 {
	var cfg struct {
		TransferFeeBasisPoints int `json:"transfer_fee_basis_points"`
		NewerTransferFee       *struct {
			TransferFeeBasisPoints int `json:"transfer_fee_basis_points"`
		} `json:"newer_transfer_fee"`
		OlderTransferFee *struct {
			TransferFeeBasisPoints int `json:"transfer_fee_basis_points"`
		} `json:"older_transfer_fee"`
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return 0
	}

	basisPoints := cfg.TransferFeeBasisPoints
	if basisPoints == 0 && cfg.NewerTransferFee != nil {
		basisPoints = cfg.NewerTransferFee.TransferFeeBasisPoints
	}
	if basisPoints == 0 && cfg.OlderTransferFee != nil {
		basisPoints = cfg.OlderTransferFee.TransferFeeBasisPoints
	}

	return float64(basisPoints) / 100
}
