package domain

import (
	"fmt"
	"time"
)

// SignalSet holds the derived per-wallet signals the scoring formula
// consumes. Recomputed on every scoring run, never persisted on its own.
type SignalSet struct {
	AgeDays          int
	MixerInteraction bool
	FailedTxCount    int
	FailedTxRate     float64 // percentage in [0,100]
	RugPullCount     int
	SwapCount        int
	LiquidationCount int
	VoteCount        int
}

// BreakdownEntry is one applied step of the scoring formula. Entries are
// ordered by formula application and kept for auditing only.
type BreakdownEntry struct {
	Label  string
	Delta  int
	Detail string
}

func (e BreakdownEntry) String() string {
	return fmt.Sprintf("%s (%s): %+d points", e.Label, e.Detail, e.Delta)
}

// ReputationScore is the bounded final score plus its ordered breakdown.
type ReputationScore struct {
	Score     int // in [0,100]
	Breakdown []BreakdownEntry
}

// Report is the persisted unit of one scoring run.
type Report struct {
	Address   string
	Score     int
	Signals   SignalSet
	Breakdown []BreakdownEntry
	ScoredAt  time.Time
}
