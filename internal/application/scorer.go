package application

import (
	"fmt"

	"walletrep/internal/domain"
)

// Scoring weights. The formula starts from baseScore and applies the steps
// in Score in a fixed order; every step appends one breakdown entry even
// when its delta is zero.
const (
	baseScore = 50

	ageBonusCap      = 20
	daysPerAgePoint  = 30
	swapBonusCap     = 20
	swapsPerPoint    = 10
	voteBonusCap     = 15
	pointsPerVote    = 2
	liquidationCost  = 20
	mixerCost        = 40
	failedRateFloor  = 20.0
	failedRateWeight = 5
	rugPullCost      = 50
)

// Score folds a SignalSet into a final reputation score clamped to [0,100].
// It is deterministic, never fails, and emits one breakdown entry per
// formula step in application order.
func Score(signals domain.SignalSet) domain.ReputationScore {
	score := baseScore
	breakdown := make([]domain.BreakdownEntry, 0, 7)
	apply := func(label string, delta int, detail string) {
		score += delta
		breakdown = append(breakdown, domain.BreakdownEntry{Label: label, Delta: delta, Detail: detail})
	}

	apply("Wallet Age",
		min(ageBonusCap, signals.AgeDays/daysPerAgePoint),
		fmt.Sprintf("%d days", signals.AgeDays))

	apply("Uniswap Swaps",
		min(swapBonusCap, signals.SwapCount/swapsPerPoint),
		fmt.Sprintf("%d swaps", signals.SwapCount))

	apply("Governance Votes",
		min(voteBonusCap, signals.VoteCount*pointsPerVote),
		fmt.Sprintf("%d votes", signals.VoteCount))

	apply("Aave Liquidations",
		-signals.LiquidationCount*liquidationCost,
		fmt.Sprintf("%d liquidations", signals.LiquidationCount))

	mixerPenalty := 0
	if signals.MixerInteraction {
		mixerPenalty = mixerCost
	}
	apply("Mixer Interaction", -mixerPenalty, fmt.Sprintf("%t", signals.MixerInteraction))

	failedPenalty := 0
	if signals.FailedTxRate > failedRateFloor {
		failedPenalty = int(signals.FailedTxRate/10) * failedRateWeight
	}
	apply("Failed TX Rate",
		-failedPenalty,
		fmt.Sprintf("%d failed / %.2f%%", signals.FailedTxCount, signals.FailedTxRate))

	apply("Rug Pulls",
		-signals.RugPullCount*rugPullCost,
		fmt.Sprintf("%d detected", signals.RugPullCount))

	return domain.ReputationScore{Score: clamp(score), Breakdown: breakdown}
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
