package models

import "time"

// TeaserToken is the identity block of a teaser response
type TeaserToken struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
}

// TeaserPreview is the coarse projection of a computed result. It never
// carries the exact composite score or the verbatim risk strings.
type TeaserPreview struct {
	Grade         string `json:"grade"`
	RiskLevel     string `json:"riskLevel"`
	Tradeable     bool   `json:"tradeable"`
	FlagsDetected int    `json:"flagsDetected"`
}

// TeaserUnlock advertises what the paid tier adds
type TeaserUnlock struct {
	ScoreRange string `json:"scoreRange"`
	Message    string `json:"message"`
	Unlock     string `json:"unlock"`
}

// TeaserUpgrade points at the paid endpoint
type TeaserUpgrade struct {
	Endpoint string `json:"endpoint"`
	Price    string `json:"price"`
	Protocol string `json:"protocol"`
	Docs     string `json:"docs"`
}

// TeaserView is the free projection of one CompositeResult
type TeaserView struct {
	Token   TeaserToken   `json:"token"`
	Preview TeaserPreview `json:"preview"`
	Teaser  TeaserUnlock  `json:"teaser"`
	Upgrade TeaserUpgrade `json:"upgrade"`
}

// ComparisonEntry is one token's row in a comparison. Score is omitted
// on the teaser tier.
type ComparisonEntry struct {
	Token      string   `json:"token"`
	Address    string   `json:"address"`
	Score      *float64 `json:"score,omitempty"`
	Grade      string   `json:"grade"`
	Strengths  []string `json:"strengths,omitempty"`
	Weaknesses []string `json:"weaknesses,omitempty"`
}

// ComparisonWinner identifies the safer choice of a comparison
type ComparisonWinner struct {
	Token   string   `json:"token"`
	Address string   `json:"address"`
	Score   *float64 `json:"score,omitempty"`
	Reason  string   `json:"reason"`
}

// ComparisonMetadata carries comparison bookkeeping
type ComparisonMetadata struct {
	ComparedAt time.Time `json:"comparedAt"`
	TokenCount int       `json:"tokenCount"`
}

// ComparisonView is the response for a 2-5 token comparison
type ComparisonView struct {
	Comparison     []ComparisonEntry  `json:"comparison"`
	Winner         ComparisonWinner   `json:"winner"`
	Recommendation string             `json:"recommendation,omitempty"`
	Metadata       ComparisonMetadata `json:"metadata"`
}

// BatchItem is one token's slot in a batch result. Exactly one of
// Result (full tier) or Preview (teaser tier) is set on success.
type BatchItem struct {
	Address string           `json:"address"`
	Result  *CompositeResult `json:"result,omitempty"`
	Preview *TeaserPreview   `json:"preview,omitempty"`
}

// BatchError is a per-token failure entry
type BatchError struct {
	Token string `json:"token"`
	Error string `json:"error"`
}

// BatchExtreme marks the safest or riskiest token of a batch
type BatchExtreme struct {
	Token   string  `json:"token"`
	Address string  `json:"address"`
	Score   float64 `json:"score"`
}

// BatchSummary aggregates batch-level counters
type BatchSummary struct {
	Requested int           `json:"requested"`
	Analyzed  int           `json:"analyzed"`
	Failed    int           `json:"failed"`
	Safest    *BatchExtreme `json:"safest,omitempty"`
	Riskiest  *BatchExtreme `json:"riskiest,omitempty"`
}

// BatchPricing is the volume-tiered pricing metadata for a batch. It is
// a pure function of the deduplicated token count.
type BatchPricing struct {
	PerToken float64 `json:"perToken"`
	Total    float64 `json:"total"`
	Discount string  `json:"discount"`
	Lamports string  `json:"lamports"`
}

// BatchMetadata carries batch bookkeeping
type BatchMetadata struct {
	AnalyzedAt time.Time `json:"analyzedAt"`
}

// BatchView is the response for a 1-20 token batch
type BatchView struct {
	Results  []BatchItem   `json:"results"`
	Summary  BatchSummary  `json:"summary"`
	Pricing  BatchPricing  `json:"pricing"`
	Metadata BatchMetadata `json:"metadata"`
	Errors   []BatchError  `json:"errors,omitempty"`
}
