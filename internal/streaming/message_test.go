package streaming

import (
	"testing"
	"time"

	"walletrep/internal/domain"
)

func TestEncodeRequiresTypeAndAddress(t *testing.T) {
	if _, err := Encode(Message{Address: "0xaa"}); err == nil {
		t.Fatal("expected error for missing type")
	}
	if _, err := Encode(Message{Type: MessageTypeScore}); err == nil {
		t.Fatal("expected error for missing address")
	}
}

func TestDecodeRejectsMalformedPayloads(t *testing.T) {
	for _, payload := range []string{"", "not json", "{}", `{"type":"score"}`} {
		if _, err := Decode([]byte(payload)); err == nil {
			t.Fatalf("expected decode error for %q", payload)
		}
	}
}

func TestReportSurvivesTransport(t *testing.T) {
	report := domain.Report{
		Address: "0xd8da6bf26964af9d7eed9e03e53415d37aa96045",
		Score:   52,
		Signals: domain.SignalSet{
			AgeDays:          365,
			FailedTxCount:    5,
			FailedTxRate:     25.0,
			SwapCount:        50,
			LiquidationCount: 1,
			VoteCount:        10,
		},
		Breakdown: []domain.BreakdownEntry{
			{Label: "Wallet Age", Delta: 12, Detail: "365 days"},
		},
		ScoredAt: time.Unix(1772150400, 0).UTC(),
	}

	payload, err := Encode(FromReport(report))
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(payload)
	if err != nil {
		t.Fatal(err)
	}
	got := decoded.ToReport()
	if got.Address != report.Address || got.Score != report.Score {
		t.Fatalf("report identity lost: %+v", got)
	}
	if got.Signals != report.Signals {
		t.Fatalf("signals lost: %+v", got.Signals)
	}
	if len(got.Breakdown) != 1 || got.Breakdown[0] != report.Breakdown[0] {
		t.Fatalf("breakdown lost: %+v", got.Breakdown)
	}
	if !got.ScoredAt.Equal(report.ScoredAt) {
		t.Fatalf("scored_at lost: %v", got.ScoredAt)
	}
}
