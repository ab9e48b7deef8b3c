package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExtensionKind is the closed set of Token-2022 extension types the
// analyzers understand. Free-form provider strings are normalized into
// this enum once, at the adapter boundary.
type ExtensionKind string

const (
	ExtensionPermanentDelegate  ExtensionKind = "permanentDelegate"
	ExtensionTransferHook       ExtensionKind = "transferHook"
	ExtensionPausable           ExtensionKind = "pausable"
	ExtensionMintCloseAuthority ExtensionKind = "mintCloseAuthority"
	ExtensionTransferFee        ExtensionKind = "transferFee"
	ExtensionNonTransferable    ExtensionKind = "nonTransferable"
)

// Extension is a normalized mint extension
type Extension struct {
	Kind       ExtensionKind `json:"kind"`
	FeePercent float64       `json:"feePercent,omitempty"`
}

// AssetAuthority is one authority entry on an asset
type AssetAuthority struct {
	Address string   `json:"address"`
	Scopes  []string `json:"scopes"`
}

// AssetOwnership describes ownership flags on an asset
type AssetOwnership struct {
	Owner           string `json:"owner"`
	OwnerType       string `json:"owner_type"`
	UpdateAuthority string `json:"update_authority"`
	Delegate        string `json:"delegate"`
	Delegated       bool   `json:"delegated"`
}

// AssetMetadata is the content metadata of an asset
type AssetMetadata struct {
	Name      string     `json:"name"`
	Symbol    string     `json:"symbol"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// AssetTokenInfo holds token program details for an asset
type AssetTokenInfo struct {
	Decimals     int    `json:"decimals"`
	TokenProgram string `json:"token_program"`
}

// Asset is the normalized view of a DAS asset record
type Asset struct {
	ID          string           `json:"id"`
	Authorities []AssetAuthority `json:"authorities"`
	Ownership   AssetOwnership   `json:"ownership"`
	Metadata    AssetMetadata    `json:"metadata"`
	TokenInfo   AssetTokenInfo   `json:"token_info"`
	Extensions  []Extension      `json:"extensions"`
}

// AuthorityAddress returns the address of the first authority carrying
// the given scope, or an empty string
func (a *Asset) AuthorityAddress(scope string) string {
	for _, auth := range a.Authorities {
		for _, s := range auth.Scopes {
			if s == scope {
				return auth.Address
			}
		}
	}
	return ""
}

// CreatorAddress resolves the most likely creator wallet for the asset
func (a *Asset) CreatorAddress() string {
	if len(a.Authorities) > 0 && a.Authorities[0].Address != "" {
		return a.Authorities[0].Address
	}
	return a.Ownership.Owner
}

// TokenBalance is one entry of the largest-accounts table. Amount is
// the raw amount; raw amounts routinely exceed float64 precision, so
// they stay decimal until divided down to ui units.
type TokenBalance struct {
	Address string          `json:"address"`
	Amount  decimal.Decimal `json:"amount"`
}

// TokenSupply is the total raw supply of a mint
type TokenSupply struct {
	Amount   decimal.Decimal `json:"amount"`
	Decimals int             `json:"decimals"`
}

// UiAmount converts the raw supply to ui units
func (s *TokenSupply) UiAmount() decimal.Decimal {
	return s.Amount.Shift(-int32(s.Decimals))
}

// SignatureInfo is a transaction signature with its slot
type SignatureInfo struct {
	Signature string `json:"signature"`
	Slot      uint64 `json:"slot"`
}

// ParsedInstruction is a single instruction of a parsed transaction
type ParsedInstruction struct {
	ProgramID string `json:"programId"`
}

// AccountBalanceChange records a native balance delta for one account
type AccountBalanceChange struct {
	Account             string `json:"account"`
	NativeBalanceChange int64  `json:"nativeBalanceChange"`
}

// TokenTransfer is an SPL token movement inside a transaction
type TokenTransfer struct {
	Mint            string  `json:"mint"`
	FromUserAccount string  `json:"fromUserAccount"`
	ToUserAccount   string  `json:"toUserAccount"`
	TokenAmount     float64 `json:"tokenAmount"`
}

// NativeTransfer is a SOL movement inside a transaction
type NativeTransfer struct {
	FromUserAccount string `json:"fromUserAccount"`
	ToUserAccount   string `json:"toUserAccount"`
	Amount          int64  `json:"amount"`
}

// ParsedTransaction is the enriched form of an on-chain transaction
type ParsedTransaction struct {
	Signature       string                 `json:"signature"`
	FeePayer        string                 `json:"feePayer"`
	Type            string                 `json:"type"`
	Description     string                 `json:"description"`
	Instructions    []ParsedInstruction    `json:"instructions"`
	AccountData     []AccountBalanceChange `json:"accountData"`
	TokenTransfers  []TokenTransfer        `json:"tokenTransfers"`
	NativeTransfers []NativeTransfer       `json:"nativeTransfers"`
}

// TokenOverview is a market snapshot for a token
type TokenOverview struct {
	Liquidity             float64 `json:"liquidity"`
	Volume24hUSD          float64 `json:"v24hUSD"`
	Price                 float64 `json:"price"`
	MarketCap             float64 `json:"mc"`
	PriceChange24hPercent float64 `json:"priceChange24hPercent"`
}

// Candle is one OHLCV bar
type Candle struct {
	Open     float64 `json:"o"`
	High     float64 `json:"h"`
	Low      float64 `json:"l"`
	Close    float64 `json:"c"`
	Volume   float64 `json:"v"`
	UnixTime int64   `json:"unixTime"`
}

// SellSimulation is the outcome of a sell-side swap quote attempt
type SellSimulation struct {
	Success   bool   `json:"success"`
	OutAmount string `json:"outAmount,omitempty"`
	Error     string `json:"error,omitempty"`
}
