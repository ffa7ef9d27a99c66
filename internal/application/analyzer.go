package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"walletrep/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// HistorySource provides a wallet's transaction and token-transfer history,
// both ordered ascending by timestamp.
type HistorySource interface {
	Transactions(ctx context.Context, address string) ([]domain.Transaction, error)
	TokenTransfers(ctx context.Context, address string) ([]domain.TokenTransfer, error)
}

// GraphSource provides indexed event counts for a wallet.
type GraphSource interface {
	SwapCount(ctx context.Context, address string) (int, error)
	LiquidationCount(ctx context.Context, address string) (int, error)
	VoteCount(ctx context.Context, address string) (int, error)
}

// ReportRepository persists finished reports.
type ReportRepository interface {
	StoreReport(ctx context.Context, report domain.Report) error
}

// StreamWriter publishes finished reports for downstream consumers.
type StreamWriter interface {
	PublishReport(ctx context.Context, report domain.Report) error
}

type AnalyzerObserver interface {
	OnScore(address string, score int, duration time.Duration)
	OnProviderError(kind string)
}

type AnalyzerConfig struct {
	Now func() time.Time
}

// Analyzer orchestrates one scoring run: fetch history and graph counts,
// derive the signal set, apply the formula, then persist and publish the
// report. Provider failures degrade to empty/zero signals; scoring itself
// never fails.
type Analyzer struct {
	history  HistorySource
	graph    GraphSource
	reports  ReportRepository
	writer   StreamWriter
	observer AnalyzerObserver
	now      func() time.Time
}

var ErrInvalidAddress = errors.New("invalid wallet address")

func NewAnalyzer(history HistorySource, graph GraphSource, reports ReportRepository, writer StreamWriter, observer AnalyzerObserver, cfg AnalyzerConfig) (*Analyzer, error) {
	if history == nil || graph == nil {
		return nil, errors.New("analyzer sources must not be nil")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Analyzer{
		history:  history,
		graph:    graph,
		reports:  reports,
		writer:   writer,
		observer: observer,
		now:      now,
	}, nil
}

func (a *Analyzer) Score(ctx context.Context, address string) (domain.Report, error) {
	address = domain.NormalizeAddress(address)
	if !domain.ValidAddress(address) {
		return domain.Report{}, ErrInvalidAddress
	}

	tracer := otel.Tracer("walletrep/analyzer")
	ctx, span := tracer.Start(ctx, "analyzer.score")
	span.SetAttributes(attribute.String("wallet.address", address))
	defer span.End()

	start := time.Now()

	txs, err := a.history.Transactions(ctx, address)
	if err != nil {
		slog.Warn("transaction history unavailable, scoring with empty history", "address", address, "err", err)
		a.providerError("history")
		txs = nil
	}
	transfers, err := a.history.TokenTransfers(ctx, address)
	if err != nil {
		slog.Warn("token transfers unavailable, scoring without transfers", "address", address, "err", err)
		a.providerError("history")
		transfers = nil
	}

	// The three counts are independent; fetch them concurrently. Failures
	// resolve to zero before the formula runs.
	var swaps, liquidations, votes int
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		swaps = a.graphCount(groupCtx, "swaps", address, a.graph.SwapCount)
		return nil
	})
	group.Go(func() error {
		liquidations = a.graphCount(groupCtx, "liquidations", address, a.graph.LiquidationCount)
		return nil
	})
	group.Go(func() error {
		votes = a.graphCount(groupCtx, "votes", address, a.graph.VoteCount)
		return nil
	})
	_ = group.Wait()

	now := a.now()
	failedCount, failedRate := FailedTxStats(txs)
	signals := domain.SignalSet{
		AgeDays:          WalletAgeDays(now, txs),
		MixerInteraction: MixerInteraction(txs),
		FailedTxCount:    failedCount,
		FailedTxRate:     failedRate,
		RugPullCount:     DetectRugPulls(address, txs, transfers),
		SwapCount:        swaps,
		LiquidationCount: liquidations,
		VoteCount:        votes,
	}

	result := Score(signals)
	report := domain.Report{
		Address:   address,
		Score:     result.Score,
		Signals:   signals,
		Breakdown: result.Breakdown,
		ScoredAt:  now,
	}
	span.SetAttributes(attribute.Int("wallet.score", report.Score))

	if a.reports != nil {
		if err := a.reports.StoreReport(ctx, report); err != nil {
			slog.Error("report store error", "address", address, "err", err)
		}
	}
	if a.writer != nil {
		if err := a.writer.PublishReport(ctx, report); err != nil {
			slog.Error("report publish error", "address", address, "err", err)
		}
	}
	if a.observer != nil {
		a.observer.OnScore(address, report.Score, time.Since(start))
	}
	return report, nil
}

func (a *Analyzer) graphCount(ctx context.Context, kind, address string, fetch func(context.Context, string) (int, error)) int {
	count, err := fetch(ctx, address)
	if err != nil {
		slog.Warn("graph query failed, counting as zero", "kind", kind, "address", address, "err", err)
		a.providerError(kind)
		return 0
	}
	if count < 0 {
		return 0
	}
	return count
}

func (a *Analyzer) providerError(kind string) {
	if a.observer != nil {
		a.observer.OnProviderError(kind)
	}
}
