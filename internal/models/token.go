package models

import (
	"math"
	"time"
)

// Tier identifies the entitlement level a result is projected for.
// Teaser and full results never share a cache bucket.
type Tier string

const (
	TierTeaser Tier = "teaser"
	TierFull   Tier = "full"
)

// TokenMetadata holds the resolved identity of a token mint
type TokenMetadata struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
}

// AnalyzerResult is the output of a single risk analyzer
type AnalyzerResult struct {
	Score    int                    `json:"score"`
	MaxScore int                    `json:"maxScore"`
	Weight   float64                `json:"weight"`
	Weighted float64                `json:"weighted"`
	Details  map[string]interface{} `json:"details"`
	Risks    []string               `json:"risks"`

	// Degraded marks a result produced under the analyzer's documented
	// failure policy. Not serialized; used by the aggregator to detect
	// total data unavailability.
	Degraded bool `json:"-"`
}

// NewAnalyzerResult creates a result starting at full score
func NewAnalyzerResult(weight float64) *AnalyzerResult {
	return &AnalyzerResult{
		Score:    100,
		MaxScore: 100,
		Weight:   weight,
		Details:  make(map[string]interface{}),
		Risks:    []string{},
	}
}

// Penalize subtracts points and records the associated risk
func (r *AnalyzerResult) Penalize(points int, risk string) {
	r.Score -= points
	r.Risks = append(r.Risks, risk)
}

// AddRisk records an informational risk without changing the score
func (r *AnalyzerResult) AddRisk(risk string) {
	r.Risks = append(r.Risks, risk)
}

// Finalize clamps the score to [0,100] and derives the weighted value.
// Weighted is always round(score*weight); the composite score is the
// plain sum of weighted values with no top-level re-rounding.
func (r *AnalyzerResult) Finalize() *AnalyzerResult {
	if r.Score < 0 {
		r.Score = 0
	}
	if r.Score > 100 {
		r.Score = 100
	}
	r.Weighted = math.Round(float64(r.Score) * r.Weight)
	return r
}

// TrustScore is the composite trust metric for a token
type TrustScore struct {
	Score   float64 `json:"score"`
	Grade   string  `json:"grade"`
	Verdict string  `json:"verdict"`
}

// ResultMetadata carries timing information for a computed result
type ResultMetadata struct {
	AnalyzedAt   time.Time `json:"analyzedAt"`
	CacheExpires time.Time `json:"cacheExpires"`
}

// CompositeResult is the full output of one aggregation run. It is
// immutable after construction and cached per token address.
type CompositeResult struct {
	Token           TokenMetadata              `json:"token"`
	TrustScore      TrustScore                 `json:"trustScore"`
	Breakdown       map[string]*AnalyzerResult `json:"breakdown"`
	RiskFactors     []string                   `json:"riskFactors"`
	PositiveFactors []string                   `json:"positiveFactors"`
	Metadata        *ResultMetadata            `json:"metadata,omitempty"`
}
