package application

import (
	"reflect"
	"testing"

	"walletrep/internal/domain"
)

func TestScoreAllZeroSignals(t *testing.T) {
	result := Score(domain.SignalSet{})
	if result.Score != 50 {
		t.Fatalf("expected base score 50, got %d", result.Score)
	}
	if len(result.Breakdown) != 7 {
		t.Fatalf("expected 7 breakdown entries, got %d", len(result.Breakdown))
	}
	for _, entry := range result.Breakdown {
		if entry.Delta != 0 {
			t.Fatalf("expected zero delta for %q, got %d", entry.Label, entry.Delta)
		}
	}
}

func TestScoreClampUpper(t *testing.T) {
	result := Score(domain.SignalSet{
		AgeDays:   100000,
		SwapCount: 100000,
		VoteCount: 100000,
	})
	// 50 + 20 + 20 + 15 = 105, clamped.
	if result.Score != 100 {
		t.Fatalf("expected clamp to 100, got %d", result.Score)
	}
}

func TestScoreClampLower(t *testing.T) {
	result := Score(domain.SignalSet{
		MixerInteraction: true,
		LiquidationCount: 5,
		RugPullCount:     3,
		FailedTxCount:    90,
		FailedTxRate:     90.0,
	})
	if result.Score != 0 {
		t.Fatalf("expected clamp to 0, got %d", result.Score)
	}
}

func TestScoreMixerPenaltyIsFlat(t *testing.T) {
	with := Score(domain.SignalSet{MixerInteraction: true})
	without := Score(domain.SignalSet{})
	if without.Score-with.Score != 40 {
		t.Fatalf("expected flat 40-point mixer penalty, got %d", without.Score-with.Score)
	}
}

func TestScoreFailedRateBelowFloorNotPenalized(t *testing.T) {
	result := Score(domain.SignalSet{FailedTxCount: 2, FailedTxRate: 20.0})
	if result.Score != 50 {
		t.Fatalf("expected no penalty at exactly 20%%, got score %d", result.Score)
	}
	// The step still emits its entry.
	entry := result.Breakdown[5]
	if entry.Label != "Failed TX Rate" || entry.Delta != 0 {
		t.Fatalf("expected zero-delta failed-rate entry, got %+v", entry)
	}
}

func TestScoreEndToEndScenario(t *testing.T) {
	signals := domain.SignalSet{
		AgeDays:          365, // +12
		SwapCount:        50,  // +5
		VoteCount:        10,  // +15 capped
		LiquidationCount: 1,   // -20
		MixerInteraction: false,
		FailedTxCount:    5,
		FailedTxRate:     25.0, // -10
		RugPullCount:     0,
	}
	result := Score(signals)
	if result.Score != 52 {
		t.Fatalf("expected 52, got %d", result.Score)
	}

	wantDeltas := []int{12, 5, 15, -20, 0, -10, 0}
	if len(result.Breakdown) != len(wantDeltas) {
		t.Fatalf("expected %d entries, got %d", len(wantDeltas), len(result.Breakdown))
	}
	for i, want := range wantDeltas {
		if result.Breakdown[i].Delta != want {
			t.Fatalf("entry %d (%s): expected delta %d, got %d",
				i, result.Breakdown[i].Label, want, result.Breakdown[i].Delta)
		}
	}
}

func TestScoreDeterministic(t *testing.T) {
	signals := domain.SignalSet{
		AgeDays:          123,
		MixerInteraction: true,
		FailedTxCount:    7,
		FailedTxRate:     35.0,
		RugPullCount:     1,
		SwapCount:        42,
		LiquidationCount: 2,
		VoteCount:        3,
	}
	first := Score(signals)
	second := Score(signals)
	if first.Score != second.Score {
		t.Fatalf("scores differ: %d vs %d", first.Score, second.Score)
	}
	if !reflect.DeepEqual(first.Breakdown, second.Breakdown) {
		t.Fatalf("breakdowns differ:\n%v\n%v", first.Breakdown, second.Breakdown)
	}
}

func TestScoreBoundsProperty(t *testing.T) {
	extremes := []domain.SignalSet{
		{},
		{AgeDays: 1 << 30, SwapCount: 1 << 30, VoteCount: 1 << 30},
		{LiquidationCount: 1 << 20, RugPullCount: 1 << 20, MixerInteraction: true, FailedTxRate: 100, FailedTxCount: 1 << 20},
		{AgeDays: 1 << 30, RugPullCount: 1 << 20},
	}
	for i, signals := range extremes {
		result := Score(signals)
		if result.Score < 0 || result.Score > 100 {
			t.Fatalf("case %d: score %d out of [0,100]", i, result.Score)
		}
	}
}
