package analyzers

import (
	"context"
	"fmt"
	"time"

	"github.com/tferezin/onchainledger/internal/models"
	"github.com/tferezin/onchainledger/internal/providers"
)

const (
	priceNeutralScore      = 50
	majorDropPercent       = 50.0
	severeDrawdownPercent  = 80.0
	pumpRisePercent        = 100.0
	pumpCollapsePercent    = 50.0
	volumeSpikeMultiple    = 5.0
	volumeCollapseMultiple = 0.3
	priceFadeMultiple      = 0.7
	minVolumeCandles       = 10
	minPumpCandles         = 5
)

// PriceHistoryAnalyzer reads a week of hourly candles and looks for
// rug-shaped price action: sudden collapses, deep drawdowns, volume
// spikes that die off, and classic pump-and-dump curves. A token with
// no chart history gets a neutral score rather than a penalty.
type PriceHistoryAnalyzer struct {
	market providers.MarketProvider
	window time.Duration
	now    func() time.Time
}

// NewPriceHistoryAnalyzer creates a new price history analyzer
func NewPriceHistoryAnalyzer(market providers.MarketProvider, window time.Duration) *PriceHistoryAnalyzer {
	return &PriceHistoryAnalyzer{market: market, window: window, now: time.Now}
}

func (p *PriceHistoryAnalyzer) Name() string    { return NamePriceHistory }
func (p *PriceHistoryAnalyzer) Weight() float64 { return WeightPriceHistory }

// Fallback returns the same neutral score as an empty chart
func (p *PriceHistoryAnalyzer) Fallback() *models.AnalyzerResult {
	return degradedResult(WeightPriceHistory, priceNeutralScore, "Unable to fetch price history")
}

// Analyze scans the candle series for drop, drawdown, volume and
// pump-and-dump patterns
func (p *PriceHistoryAnalyzer) Analyze(ctx context.Context, tokenAddress string) *models.AnalyzerResult {
	to := p.now().Unix()
	from := p.now().Add(-p.window).Unix()

	candles := p.market.GetOHLCV(ctx, tokenAddress, from, to)
	if len(candles) == 0 {
		result := models.NewAnalyzerResult(WeightPriceHistory)
		result.Score = priceNeutralScore
		result.Details["candleCount"] = 0
		result.AddRisk("No price history available")
		return result.Finalize()
	}

	drops := countMajorDrops(candles)
	drawdown := maxDrawdownPercent(candles)
	volumeAnomaly := hasVolumeAnomaly(candles)
	pumpAndDump := hasPumpAndDump(candles)

	result := models.NewAnalyzerResult(WeightPriceHistory)
	result.Details["candleCount"] = len(candles)
	result.Details["majorDrops"] = drops
	result.Details["maxDrawdownPercent"] = round2(drawdown)
	result.Details["volumeAnomaly"] = volumeAnomaly
	result.Details["pumpAndDump"] = pumpAndDump

	if drops > 2 {
		result.Penalize(15, fmt.Sprintf("History of major price drops (%d drops >50%%)", drops))
	}
	if drawdown > severeDrawdownPercent {
		result.Penalize(20, "Severe peak-to-trough price collapse")
	}
	if volumeAnomaly {
		result.Penalize(10, "Volume spike followed by collapse")
	}
	if pumpAndDump {
		result.Penalize(15, "Pump and dump pattern detected")
	}

	return result.Finalize()
}

// countMajorDrops counts drops of more than half, both within a candle
// (high to low) and against the previous candle's high. One candle can
// contribute both kinds.
func countMajorDrops(candles []models.Candle) int {
	drops := 0
	for i, candle := range candles {
		if candle.High > 0 && dropPercent(candle.High, candle.Low) > majorDropPercent {
			drops++
		}
		if i > 0 && candles[i-1].High > 0 && candle.Low < candles[i-1].High &&
			dropPercent(candles[i-1].High, candle.Low) > majorDropPercent {
			drops++
		}
	}
	return drops
}

func maxDrawdownPercent(candles []models.Candle) float64 {
	peak := 0.0
	worst := 0.0
	for _, candle := range candles {
		if candle.High > peak {
			peak = candle.High
		}
		if peak > 0 {
			drawdown := dropPercent(peak, candle.Low)
			if drawdown > worst {
				worst = drawdown
			}
		}
	}
	return worst
}

// hasVolumeAnomaly finds a volume spike over five times the series
// average whose very next candle loses most of that volume along with
// a sharp price fade
func hasVolumeAnomaly(candles []models.Candle) bool {
	if len(candles) < minVolumeCandles {
		return false
	}

	total := 0.0
	for _, candle := range candles {
		total += candle.Volume
	}
	average := total / float64(len(candles))
	if average == 0 {
		return false
	}

	for i := 1; i < len(candles)-1; i++ {
		spike := candles[i]
		if spike.Volume <= average*volumeSpikeMultiple {
			continue
		}
		next := candles[i+1]
		if next.Volume < spike.Volume*volumeCollapseMultiple && next.Close < spike.Close*priceFadeMultiple {
			return true
		}
	}
	return false
}

// hasPumpAndDump looks for the steepest candle-to-candle rise from a
// local low. A rise over 100% followed by a drop of over half from
// that pump's peak is the pattern; a gradual climb over the whole
// window is not.
func hasPumpAndDump(candles []models.Candle) bool {
	if len(candles) < minPumpCandles {
		return false
	}

	maxPumpPercent := 0.0
	peakIndex := -1
	for i := 1; i < len(candles); i++ {
		prevLow := candles[i-1].Low
		if prevLow <= 0 {
			continue
		}
		pump := (candles[i].High - prevLow) / prevLow * 100
		if pump > maxPumpPercent {
			maxPumpPercent = pump
			peakIndex = i
		}
	}
	if maxPumpPercent <= pumpRisePercent || peakIndex < 0 || peakIndex >= len(candles)-1 {
		return false
	}

	peak := candles[peakIndex].High
	if peak <= 0 {
		return false
	}
	lowestAfterPeak := peak
	for _, candle := range candles[peakIndex+1:] {
		if candle.Low < lowestAfterPeak {
			lowestAfterPeak = candle.Low
		}
	}
	return dropPercent(peak, lowestAfterPeak) > pumpCollapsePercent
}

func dropPercent(from, to float64) float64 {
	if from <= 0 {
		return 0
	}
	return (from - to) / from * 100
}
