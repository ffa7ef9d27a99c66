package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"walletrep/internal/domain"
)

type mockHistory struct {
	txs       []domain.Transaction
	transfers []domain.TokenTransfer
	err       error
}

func (m *mockHistory) Transactions(ctx context.Context, address string) ([]domain.Transaction, error) {
	return m.txs, m.err
}

func (m *mockHistory) TokenTransfers(ctx context.Context, address string) ([]domain.TokenTransfer, error) {
	return m.transfers, m.err
}

type mockGraph struct {
	swaps, liquidations, votes int
	err                        error
}

func (m *mockGraph) SwapCount(ctx context.Context, address string) (int, error) {
	return m.swaps, m.err
}

func (m *mockGraph) LiquidationCount(ctx context.Context, address string) (int, error) {
	return m.liquidations, m.err
}

func (m *mockGraph) VoteCount(ctx context.Context, address string) (int, error) {
	return m.votes, m.err
}

type mockRepo struct {
	stored []domain.Report
	err    error
}

func (m *mockRepo) StoreReport(ctx context.Context, report domain.Report) error {
	if m.err != nil {
		return m.err
	}
	m.stored = append(m.stored, report)
	return nil
}

type mockWriter struct {
	published []domain.Report
}

func (m *mockWriter) PublishReport(ctx context.Context, report domain.Report) error {
	m.published = append(m.published, report)
	return nil
}

const testWallet = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"

func fixedNow() time.Time {
	return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
}

func TestAnalyzerRejectsInvalidAddress(t *testing.T) {
	analyzer, err := NewAnalyzer(&mockHistory{}, &mockGraph{}, nil, nil, nil, AnalyzerConfig{Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	for _, address := range []string{"", "vitalik.eth", "0x123", "0xzz8dA6BF26964aF9D7eEd9e03E53415D37aA9604"} {
		if _, err := analyzer.Score(context.Background(), address); !errors.Is(err, ErrInvalidAddress) {
			t.Fatalf("address %q: expected ErrInvalidAddress, got %v", address, err)
		}
	}
}

func TestAnalyzerNormalizesAddress(t *testing.T) {
	repo := &mockRepo{}
	analyzer, err := NewAnalyzer(&mockHistory{}, &mockGraph{}, repo, nil, nil, AnalyzerConfig{Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	report, err := analyzer.Score(context.Background(), testWallet)
	if err != nil {
		t.Fatal(err)
	}
	want := "0xd8da6bf26964af9d7eed9e03e53415d37aa96045"
	if report.Address != want {
		t.Fatalf("expected normalized address %s, got %s", want, report.Address)
	}
	if len(repo.stored) != 1 || repo.stored[0].Address != want {
		t.Fatalf("expected one stored report for %s, got %+v", want, repo.stored)
	}
}

func TestAnalyzerProviderFailuresDegradeToDefaults(t *testing.T) {
	history := &mockHistory{err: errors.New("etherscan down")}
	graph := &mockGraph{err: errors.New("subgraph down")}
	analyzer, err := NewAnalyzer(history, graph, nil, nil, nil, AnalyzerConfig{Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	report, err := analyzer.Score(context.Background(), testWallet)
	if err != nil {
		t.Fatalf("analyzer must not fail on provider errors: %v", err)
	}
	if report.Signals != (domain.SignalSet{}) {
		t.Fatalf("expected zero signals, got %+v", report.Signals)
	}
	if report.Score != 50 {
		t.Fatalf("expected base score 50, got %d", report.Score)
	}
}

func TestAnalyzerCombinesSignals(t *testing.T) {
	history := &mockHistory{
		txs: []domain.Transaction{
			{Timestamp: fixedNow().AddDate(-1, 0, 0).Unix()},
			{Timestamp: fixedNow().AddDate(0, 0, -30).Unix(), Failed: true},
			{Timestamp: fixedNow().AddDate(0, 0, -20).Unix(), Failed: true},
			{Timestamp: fixedNow().AddDate(0, 0, -10).Unix()},
		},
	}
	graph := &mockGraph{swaps: 50, liquidations: 1, votes: 10}
	writer := &mockWriter{}
	analyzer, err := NewAnalyzer(history, graph, nil, writer, nil, AnalyzerConfig{Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	report, err := analyzer.Score(context.Background(), testWallet)
	if err != nil {
		t.Fatal(err)
	}
	// 50 +12 (365d) +5 (50 swaps) +15 (10 votes) -20 (1 liquidation)
	// -25 (50% failed rate) = 37
	if report.Signals.AgeDays != 365 {
		t.Fatalf("expected age 365, got %d", report.Signals.AgeDays)
	}
	if report.Signals.FailedTxCount != 2 || report.Signals.FailedTxRate != 50.0 {
		t.Fatalf("unexpected failed stats: %+v", report.Signals)
	}
	if report.Score != 37 {
		t.Fatalf("expected score 37, got %d", report.Score)
	}
	if len(writer.published) != 1 || writer.published[0].Score != 37 {
		t.Fatalf("expected published report, got %+v", writer.published)
	}
	if !report.ScoredAt.Equal(fixedNow()) {
		t.Fatalf("expected injected scoring time, got %v", report.ScoredAt)
	}
}

func TestAnalyzerStoreFailureDoesNotFailScoring(t *testing.T) {
	repo := &mockRepo{err: errors.New("db down")}
	analyzer, err := NewAnalyzer(&mockHistory{}, &mockGraph{}, repo, nil, nil, AnalyzerConfig{Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := analyzer.Score(context.Background(), testWallet); err != nil {
		t.Fatalf("store failure must not surface: %v", err)
	}
}
