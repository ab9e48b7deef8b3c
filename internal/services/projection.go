package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tferezin/onchainledger/internal/config"
	"github.com/tferezin/onchainledger/internal/models"
)

// batchConcurrency bounds how many tokens a batch or comparison
// aggregates at once
const batchConcurrency = 5

// Teaser risk level bands over the composite score
const (
	riskLevelLowMin    = 80.0
	riskLevelMediumMin = 60.0
	riskLevelHighMin   = 40.0
	tradeableMin       = 50.0
)

// scoreRanges maps each grade to the coarse band the teaser may reveal
var scoreRanges = map[string]string{
	"A+": "90-100",
	"A":  "80-89",
	"B":  "70-79",
	"C":  "50-69",
	"D":  "25-49",
	"F":  "0-24",
}

// gradeRank orders grades best-first for teaser-tier comparisons,
// where exact scores are withheld
var gradeRank = map[string]int{
	"A+": 0,
	"A":  1,
	"B":  2,
	"C":  3,
	"D":  4,
	"F":  5,
}

// pricingTier is one volume band of the batch price schedule
type pricingTier struct {
	maxTokens int
	perToken  float64
	discount  string
}

// Batch price schedule; a band applies up to and including maxTokens
var pricingTiers = []pricingTier{
	{1, 0.01, "0%"},
	{5, 0.008, "20%"},
	{10, 0.007, "30%"},
	{20, 0.006, "40%"},
}

// basePricePerToken is the single-token price the lamports conversion
// is anchored to
const basePricePerToken = 0.01

// ProjectionService shapes composite results into the tiered response
// views: teaser previews, comparisons and batches
type ProjectionService struct {
	scores *TrustScoreService
	config *config.Config
}

// NewProjectionService creates a new projection service
func NewProjectionService(scores *TrustScoreService, cfg *config.Config) *ProjectionService {
	return &ProjectionService{scores: scores, config: cfg}
}

// ProjectTeaser reduces a composite result to the free preview. The
// exact score and the verbatim risk strings never cross this boundary;
// only the grade, a coarse band and the flag count do.
func (ps *ProjectionService) ProjectTeaser(result *models.CompositeResult) *models.TeaserView {
	score := result.TrustScore.Score
	preview := buildTeaserPreview(result)

	return &models.TeaserView{
		Token: models.TeaserToken{
			Address: result.Token.Address,
			Symbol:  result.Token.Symbol,
			Name:    result.Token.Name,
		},
		Preview: *preview,
		Teaser: models.TeaserUnlock{
			ScoreRange: scoreRanges[result.TrustScore.Grade],
			Message:    teaserMessage(len(result.RiskFactors), score),
			Unlock:     "Full analysis includes exact score, per-check breakdown, and all risk factors",
		},
		Upgrade: models.TeaserUpgrade{
			Endpoint: ps.config.Server.BaseURL + "/api/analyze/" + result.Token.Address,
			Price:    ps.config.Payment.PriceLamports + " lamports",
			Protocol: "x402",
			Docs:     "https://www.x402.org",
		},
	}
}

func buildTeaserPreview(result *models.CompositeResult) *models.TeaserPreview {
	score := result.TrustScore.Score
	return &models.TeaserPreview{
		Grade:         result.TrustScore.Grade,
		RiskLevel:     riskLevelFor(score),
		Tradeable:     score >= tradeableMin,
		FlagsDetected: len(result.RiskFactors),
	}
}

func riskLevelFor(score float64) string {
	switch {
	case score >= riskLevelLowMin:
		return "LOW"
	case score >= riskLevelMediumMin:
		return "MEDIUM"
	case score >= riskLevelHighMin:
		return "HIGH"
	default:
		return "CRITICAL"
	}
}

func teaserMessage(flagCount int, score float64) string {
	if flagCount == 0 {
		return "No risk flags detected. Unlock the full report for the exact score and breakdown."
	}
	if score < tradeableMin {
		return fmt.Sprintf("%d risk flags detected. Unlock the full report before trading this token.", flagCount)
	}
	return fmt.Sprintf("%d risk flags detected. Unlock the full report for details.", flagCount)
}

// Compare analyzes 2-5 tokens concurrently and ranks them. A failure
// on any token fails the whole comparison; a partial ranking would be
// misleading.
func (ps *ProjectionService) Compare(ctx context.Context, addresses []string, tier models.Tier) (*models.ComparisonView, error) {
	results := make([]*models.CompositeResult, len(addresses))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(batchConcurrency)
	for i, address := range addresses {
		i, address := i, address
		group.Go(func() error {
			result, err := ps.computeForTier(groupCtx, address, tier)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	entries := make([]models.ComparisonEntry, 0, len(results))
	for _, result := range results {
		entry := models.ComparisonEntry{
			Token:   result.Token.Symbol,
			Address: result.Token.Address,
			Grade:   result.TrustScore.Grade,
		}
		if tier == models.TierFull {
			score := result.TrustScore.Score
			entry.Score = &score
			entry.Strengths = topFactors(result.PositiveFactors, 3)
			entry.Weaknesses = topFactors(result.RiskFactors, 3)
		}
		entries = append(entries, entry)
	}

	// Best first: by exact score on the full tier, by grade on the
	// teaser tier
	indexed := make([]int, len(entries))
	for i := range indexed {
		indexed[i] = i
	}
	sort.SliceStable(indexed, func(a, b int) bool {
		if tier == models.TierFull {
			return results[indexed[a]].TrustScore.Score > results[indexed[b]].TrustScore.Score
		}
		return gradeRank[entries[indexed[a]].Grade] < gradeRank[entries[indexed[b]].Grade]
	})

	ranked := make([]models.ComparisonEntry, 0, len(entries))
	for _, i := range indexed {
		ranked = append(ranked, entries[i])
	}

	best := ranked[0]
	winner := models.ComparisonWinner{
		Token:   best.Token,
		Address: best.Address,
		Score:   best.Score,
		Reason:  winnerReason(tier, ranked),
	}

	view := &models.ComparisonView{
		Comparison: ranked,
		Winner:     winner,
		Metadata: models.ComparisonMetadata{
			ComparedAt: time.Now().UTC(),
			TokenCount: len(ranked),
		},
	}
	if tier == models.TierFull {
		view.Recommendation = recommendation(ranked)
	}
	return view, nil
}

// recommendation narrates the full-tier ranking: how far ahead the
// winner is, what carries it, and its most important caveat
func recommendation(ranked []models.ComparisonEntry) string {
	winner := ranked[0]
	if len(ranked) < 2 || winner.Score == nil || ranked[1].Score == nil {
		return fmt.Sprintf("%s looks safest based on current on-chain data", winner.Token)
	}
	runnerUp := ranked[1]
	diff := *winner.Score - *runnerUp.Score

	var rec string
	switch {
	case diff >= 20:
		rec = fmt.Sprintf("%s is significantly safer than the other options with a %.0f point lead.", winner.Token, diff)
	case diff >= 10:
		rec = fmt.Sprintf("%s is notably safer with a %.0f point advantage.", winner.Token, diff)
	case diff >= 5:
		rec = fmt.Sprintf("%s has a slight edge with %.0f more points.", winner.Token, diff)
	default:
		rec = fmt.Sprintf("%s and %s are very close in safety scores.", winner.Token, runnerUp.Token)
	}

	if len(winner.Strengths) > 0 {
		rec += " Key strengths: " + strings.Join(topFactors(winner.Strengths, 2), ", ") + "."
	}
	if len(winner.Weaknesses) > 0 {
		rec += " However, note that " + strings.ToLower(winner.Weaknesses[0]) + "."
	}
	return rec
}

func winnerReason(tier models.Tier, ranked []models.ComparisonEntry) string {
	if tier != models.TierFull {
		return fmt.Sprintf("Best grade (%s) among compared tokens", ranked[0].Grade)
	}
	if len(ranked) > 1 && ranked[0].Score != nil && ranked[1].Score != nil {
		return fmt.Sprintf("Highest trust score (%.0f vs %.0f for the runner-up)", *ranked[0].Score, *ranked[1].Score)
	}
	return "Highest trust score among compared tokens"
}

func topFactors(factors []string, limit int) []string {
	if len(factors) <= limit {
		return factors
	}
	return factors[:limit]
}

// Batch analyzes up to 20 deduplicated tokens. Tokens fail
// independently; one bad address never poisons the rest of the batch.
func (ps *ProjectionService) Batch(ctx context.Context, addresses []string, tier models.Tier) (*models.BatchView, error) {
	deduped := dedupeAddresses(addresses)

	results := make([]*models.CompositeResult, len(deduped))
	failures := make([]error, len(deduped))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(batchConcurrency)
	for i, address := range deduped {
		i, address := i, address
		group.Go(func() error {
			result, err := ps.computeForTier(groupCtx, address, tier)
			if err != nil {
				failures[i] = err
				return nil
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	items := []models.BatchItem{}
	batchErrors := []models.BatchError{}
	var safest, riskiest *models.BatchExtreme

	for i, address := range deduped {
		if failures[i] != nil {
			batchErrors = append(batchErrors, models.BatchError{
				Token: address,
				Error: failures[i].Error(),
			})
			continue
		}

		result := results[i]
		item := models.BatchItem{Address: address}
		if tier == models.TierFull {
			item.Result = result
		} else {
			item.Preview = buildTeaserPreview(result)
		}
		items = append(items, item)

		// Extremes expose exact scores, so only the full tier gets them
		if tier != models.TierFull {
			continue
		}
		score := result.TrustScore.Score
		if safest == nil || score > safest.Score {
			safest = &models.BatchExtreme{Token: result.Token.Symbol, Address: address, Score: score}
		}
		if riskiest == nil || score < riskiest.Score {
			riskiest = &models.BatchExtreme{Token: result.Token.Symbol, Address: address, Score: score}
		}
	}

	view := &models.BatchView{
		Results: items,
		Summary: models.BatchSummary{
			Requested: len(addresses),
			Analyzed:  len(items),
			Failed:    len(batchErrors),
			Safest:    safest,
			Riskiest:  riskiest,
		},
		Pricing:  ps.PricingFor(len(deduped)),
		Metadata: models.BatchMetadata{AnalyzedAt: time.Now().UTC()},
	}
	if len(batchErrors) > 0 {
		view.Errors = batchErrors
	}
	return view, nil
}

// PricingFor computes the volume-tiered batch price. It is a pure
// function of the deduplicated token count and is the same whether the
// batch succeeds or partially fails.
func (ps *ProjectionService) PricingFor(tokenCount int) models.BatchPricing {
	tier := pricingTiers[len(pricingTiers)-1]
	for _, candidate := range pricingTiers {
		if tokenCount <= candidate.maxTokens {
			tier = candidate
			break
		}
	}

	total := math.Round(tier.perToken*float64(tokenCount)*1000) / 1000

	// Lamports scale linearly with the configured single-call price
	baseLamports, err := strconv.ParseInt(ps.config.Payment.PriceLamports, 10, 64)
	if err != nil {
		baseLamports = 0
	}
	lamports := int64(math.Round(total / basePricePerToken * float64(baseLamports)))

	return models.BatchPricing{
		PerToken: tier.perToken,
		Total:    total,
		Discount: tier.discount,
		Lamports: strconv.FormatInt(lamports, 10),
	}
}

// DedupedCount returns how many unique addresses a batch request
// actually pays for
func DedupedCount(addresses []string) int {
	return len(dedupeAddresses(addresses))
}

func dedupeAddresses(addresses []string) []string {
	seen := make(map[string]bool, len(addresses))
	deduped := make([]string, 0, len(addresses))
	for _, address := range addresses {
		if !seen[address] {
			seen[address] = true
			deduped = append(deduped, address)
		}
	}
	return deduped
}

func (ps *ProjectionService) computeForTier(ctx context.Context, address string, tier models.Tier) (*models.CompositeResult, error) {
	if tier == models.TierFull {
		return ps.scores.ComputeFull(ctx, address)
	}
	return ps.scores.ComputeTeaser(ctx, address)
}
