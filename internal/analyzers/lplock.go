package analyzers

import (
	"context"

	"github.com/tferezin/onchainledger/internal/models"
	"github.com/tferezin/onchainledger/internal/providers"

	"github.com/shopspring/decimal"
)

// knownLockers maps locker contract addresses to their product names
var knownLockers = map[string]string{
	// Streamflow
	"strmRqUCoQUgGUan5YhzUZa6KqdzwX5L6FpUxfmKg5m": "Streamflow",

	// Raydium vaults
	"5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1": "Raydium Vault",
	"DjVE6JNiYqPL2QXyCUUh8rNjHrbz9hXHNYt99MQ59qw1": "Raydium Vault",
	"7YttLkHDoNj9wyDur5pM1ejNaAvT9X4eqaYcHQqtj2G5": "Raydium Vault",
	"ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL": "Raydium Vault",

	// Jupiter locks
	"JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4": "Jupiter Lock",
	"JUP4Fb2cqiRUcaTHdrPC8h2gNsA2ETXiPDD33WcGuJB": "Jupiter Lock",
	"LockvKvC3xvDdTYeDqZKH5AHH8Z8N3MTuSiAJU4wWsL": "Jupiter Lock",

	// UNCX Network
	"UNCXjqPzH1QhCwFiGqN5rSM3KrRzXmhHqVHw1JK4dVF": "UNCX Network",

	// Team Finance
	"TeamFqhVLcHXv1aJSqgtJYFMPNLnmwKnmXqmJR3sCNk": "Team Finance",

	// Fluxbeam
	"FLUXBmPhT3Fd1EDVFdg6YnuDpgaGgz9NqN1qZmJmcLQX": "Fluxbeam Lock",
}

// LPLockAnalyzer checks whether LP token holders include a known
// locker contract. An unlocked LP is moderate risk, never
// disqualifying: the score floor here is 75.
type LPLockAnalyzer struct {
	chain providers.ChainProvider
}

// NewLPLockAnalyzer creates a new LP lock analyzer
func NewLPLockAnalyzer(chain providers.ChainProvider) *LPLockAnalyzer {
	return &LPLockAnalyzer{chain: chain}
}

func (l *LPLockAnalyzer) Name() string    { return NameLPLock }
func (l *LPLockAnalyzer) Weight() float64 { return WeightLPLock }

// Fallback scores as unlocked when holder data is unavailable
func (l *LPLockAnalyzer) Fallback() *models.AnalyzerResult {
	result := degradedResult(WeightLPLock, 75, "Unable to fetch LP token holders")
	result.Details["locked"] = false
	result.Details["percentLocked"] = 0.0
	return result
}

// Analyze scans LP holders for known locker addresses
func (l *LPLockAnalyzer) Analyze(ctx context.Context, tokenAddress string) *models.AnalyzerResult {
	holders := l.chain.GetTokenLargestAccounts(ctx, tokenAddress)
	if len(holders) == 0 {
		return l.Fallback()
	}

	result := models.NewAnalyzerResult(WeightLPLock)

	totalHeld := decimal.Zero
	lockedAmount := decimal.Zero
	lockerName := ""

	for _, holder := range holders {
		totalHeld = totalHeld.Add(holder.Amount)
		if name, ok := knownLockers[holder.Address]; ok {
			lockedAmount = lockedAmount.Add(holder.Amount)
			if lockerName == "" {
				lockerName = name
			}
		}
	}

	percentLocked := 0.0
	if totalHeld.IsPositive() {
		percentLocked = lockedAmount.Div(totalHeld).Mul(hundred).InexactFloat64()
	}

	if lockerName != "" && percentLocked > 0 {
		result.Score = 100
		result.Details["locked"] = true
		result.Details["lockerName"] = lockerName
		result.Details["percentLocked"] = round2(percentLocked)
	} else {
		result.Score = 75
		result.Details["locked"] = false
		result.Details["percentLocked"] = 0.0
		result.AddRisk("LP tokens are not locked")
	}

	return result.Finalize()
}
