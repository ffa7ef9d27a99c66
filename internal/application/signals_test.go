package application

import (
	"testing"
	"time"

	"walletrep/internal/domain"
)

var testNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func TestWalletAgeDaysEmptyList(t *testing.T) {
	if got := WalletAgeDays(testNow, nil); got != 0 {
		t.Fatalf("expected age 0 for empty list, got %d", got)
	}
}

func TestWalletAgeDaysUsesFirstTransaction(t *testing.T) {
	txs := []domain.Transaction{
		{Hash: "0x1", Timestamp: testNow.AddDate(-1, 0, 0).Unix()},
		{Hash: "0x2", Timestamp: testNow.AddDate(0, 0, -1).Unix()},
	}
	if got := WalletAgeDays(testNow, txs); got != 365 {
		t.Fatalf("expected age 365, got %d", got)
	}
}

func TestWalletAgeDaysFutureTimestampClampsToZero(t *testing.T) {
	txs := []domain.Transaction{{Timestamp: testNow.Add(48 * time.Hour).Unix()}}
	if got := WalletAgeDays(testNow, txs); got != 0 {
		t.Fatalf("expected age 0 for future first tx, got %d", got)
	}
}

func TestMixerInteraction(t *testing.T) {
	cases := []struct {
		name string
		txs  []domain.Transaction
		want bool
	}{
		{"empty", nil, false},
		{"no match", []domain.Transaction{{To: "0x00000000000000000000000000000000000000aa"}}, false},
		{"exact match", []domain.Transaction{{To: domain.TornadoCashRouter}}, true},
		{"mixed case match", []domain.Transaction{
			{To: "0x00000000000000000000000000000000000000aa"},
			{To: "0x722122dF12D4e14e13Ac3b6895a86e84145b6967"},
		}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MixerInteraction(tc.txs); got != tc.want {
				t.Fatalf("expected %t, got %t", tc.want, got)
			}
		})
	}
}

func TestFailedTxStatsEmptyList(t *testing.T) {
	count, rate := FailedTxStats(nil)
	if count != 0 || rate != 0.0 {
		t.Fatalf("expected (0, 0.0), got (%d, %f)", count, rate)
	}
}

func TestFailedTxStats(t *testing.T) {
	txs := make([]domain.Transaction, 10)
	for i := 0; i < 3; i++ {
		txs[i].Failed = true
	}
	count, rate := FailedTxStats(txs)
	if count != 3 {
		t.Fatalf("expected 3 failed, got %d", count)
	}
	if rate != 30.0 {
		t.Fatalf("expected rate 30.0, got %f", rate)
	}
}
