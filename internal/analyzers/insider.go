package analyzers

import (
	"context"
	"sort"
	"strings"

	"github.com/tferezin/onchainledger/internal/models"
	"github.com/tferezin/onchainledger/internal/providers"
)

const (
	insiderSignatureLimit = 100
	insiderParseLimit     = 20
	earlyBuyerThreshold   = 10
)

// Program ID prefixes that mark liquidity-pool and swap instructions
var (
	lpProgramPrefixes   = []string{"675kPX", "whirL", "CAMMCzo"}
	swapProgramPrefixes = []string{"JUP", "675kPX"}
)

// InsiderAnalyzer examines the token's first slot for launch
// self-dealing: LP creation bundled with swaps from one fee payer,
// the creator buying its own launch, and crowded early buying.
// History that cannot be fetched fails open: no evidence is not
// evidence of insiding.
type InsiderAnalyzer struct {
	chain providers.ChainProvider
}

// NewInsiderAnalyzer creates a new insider/bundle analyzer
func NewInsiderAnalyzer(chain providers.ChainProvider) *InsiderAnalyzer {
	return &InsiderAnalyzer{chain: chain}
}

func (i *InsiderAnalyzer) Name() string    { return NameInsider }
func (i *InsiderAnalyzer) Weight() float64 { return WeightInsider }

// Fallback keeps the full score with a note about missing history
func (i *InsiderAnalyzer) Fallback() *models.AnalyzerResult {
	return degradedResult(WeightInsider, 100, "Unable to fetch transaction history")
}

type earlyActivity struct {
	bundleDetected    bool
	creatorSniped     bool
	earlyBuyersCount  int
	suspiciousWallets []string
}

// Analyze inspects transactions in the token's first slot
func (i *InsiderAnalyzer) Analyze(ctx context.Context, tokenAddress string) *models.AnalyzerResult {
	asset := i.chain.GetAsset(ctx, tokenAddress)
	creator := ""
	if asset != nil {
		creator = asset.CreatorAddress()
	}

	signatures := i.chain.GetSignaturesForAddress(ctx, tokenAddress, insiderSignatureLimit)
	if len(signatures) == 0 {
		return i.Fallback()
	}

	// Earliest slot first; the first slot is the launch block
	sorted := make([]models.SignatureInfo, len(signatures))
	copy(sorted, signatures)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].Slot < sorted[b].Slot })

	firstSlot := sorted[0].Slot
	firstSlotSignatures := []string{}
	for _, sig := range sorted {
		if sig.Slot != firstSlot {
			break
		}
		firstSlotSignatures = append(firstSlotSignatures, sig.Signature)
		if len(firstSlotSignatures) == insiderParseLimit {
			break
		}
	}

	transactions := i.chain.GetParsedTransactions(ctx, firstSlotSignatures)
	activity := analyzeEarlyTransactions(transactions, creator, tokenAddress)

	result := models.NewAnalyzerResult(WeightInsider)
	result.Details["bundleDetected"] = activity.bundleDetected
	result.Details["creatorSniped"] = activity.creatorSniped
	result.Details["earlyBuyersCount"] = activity.earlyBuyersCount
	result.Details["suspiciousWallets"] = activity.suspiciousWallets

	if activity.bundleDetected {
		result.Penalize(30, "Creator bundled LP creation with own buys")
	}
	if activity.creatorSniped {
		result.Penalize(25, "Creator sniped their own token at launch")
	}
	if activity.earlyBuyersCount > earlyBuyerThreshold {
		result.Penalize(15, "Suspicious early buyer activity")
	}

	return result.Finalize()
}

// analyzeEarlyTransactions scans launch-slot transactions for bundle
// and snipe patterns
func analyzeEarlyTransactions(transactions []models.ParsedTransaction, creator, tokenAddress string) earlyActivity {
	activity := earlyActivity{suspiciousWallets: []string{}}
	if len(transactions) == 0 {
		return activity
	}

	buyers := map[string]bool{}
	lpCreationFound := false
	suspicious := map[string]bool{}

	markSuspicious := func(wallet string) {
		if wallet != "" && !suspicious[wallet] {
			suspicious[wallet] = true
			activity.suspiciousWallets = append(activity.suspiciousWallets, wallet)
		}
	}

	for _, tx := range transactions {
		description := strings.ToLower(tx.Description)

		isLPCreation := tx.Type == "CREATE_POOL" || tx.Type == "ADD_LIQUIDITY" ||
			strings.Contains(description, "create pool") ||
			strings.Contains(description, "add liquidity") ||
			strings.Contains(description, "initialize")
		if isLPCreation {
			lpCreationFound = true
		}

		isSwap := tx.Type == "SWAP" ||
			strings.Contains(description, "swap") ||
			strings.Contains(description, "buy")
		if isSwap {
			buyers[tx.FeePayer] = true
			if creator != "" && tx.FeePayer == creator {
				activity.creatorSniped = true
				markSuspicious(creator)
			}
		}

		// One transaction carrying both an LP instruction and a swap
		// instruction is a bundle
		hasLPOp := hasProgramWithPrefix(tx.Instructions, lpProgramPrefixes)
		hasSwapOp := hasProgramWithPrefix(tx.Instructions, swapProgramPrefixes)
		if hasLPOp && hasSwapOp {
			activity.bundleDetected = true
			markSuspicious(tx.FeePayer)
		}

		for _, transfer := range tx.TokenTransfers {
			if transfer.Mint != tokenAddress || transfer.ToUserAccount == "" {
				continue
			}
			buyers[transfer.ToUserAccount] = true
			if creator != "" && transfer.ToUserAccount == creator && isSwap {
				activity.creatorSniped = true
			}
		}
	}

	delete(buyers, "")
	activity.earlyBuyersCount = len(buyers)

	// The creator buying in the launch slot alongside LP creation
	// counts as a bundle even across transactions
	if lpCreationFound && creator != "" && buyers[creator] {
		activity.bundleDetected = true
		markSuspicious(creator)
	}

	if activity.earlyBuyersCount > earlyBuyerThreshold {
		count := 0
		for wallet := range buyers {
			markSuspicious(wallet)
			count++
			if count == 5 {
				break
			}
		}
	}

	return activity
}

func hasProgramWithPrefix(instructions []models.ParsedInstruction, prefixes []string) bool {
	for _, instruction := range instructions {
		for _, prefix := range prefixes {
			if strings.HasPrefix(instruction.ProgramID, prefix) {
				return true
			}
		}
	}
	return false
}
