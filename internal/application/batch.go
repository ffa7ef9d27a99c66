package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"walletrep/internal/domain"

	"github.com/segmentio/kafka-go"
)

// BulkReportRepository stores many reports in one round trip.
type BulkReportRepository interface {
	StoreReports(ctx context.Context, reports []domain.Report) error
}

type Committer interface {
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Batch accumulates consumed score events so the auditor can flush them into
// the repository and commit offsets in one pass.
type Batch struct {
	reports   []domain.Report
	messages  []kafka.Message
	minOffset map[int]int64
	maxOffset map[int]int64
}

func NewBatch() *Batch {
	return &Batch{
		minOffset: make(map[int]int64),
		maxOffset: make(map[int]int64),
	}
}

func (b *Batch) Add(report domain.Report, kafkaMsg kafka.Message) {
	b.reports = append(b.reports, report)
	b.messages = append(b.messages, kafkaMsg)

	// Track offsets range for logging/debugging
	partition := kafkaMsg.Partition
	offset := kafkaMsg.Offset
	if min, ok := b.minOffset[partition]; !ok || offset < min {
		b.minOffset[partition] = offset
	}
	if max, ok := b.maxOffset[partition]; !ok || offset > max {
		b.maxOffset[partition] = offset
	}
}

func (b *Batch) Len() int {
	return len(b.messages)
}

func (b *Batch) Flush(ctx context.Context, repo BulkReportRepository, committer Committer) error {
	if b.Len() == 0 {
		return nil
	}

	start := time.Now()

	if err := repo.StoreReports(ctx, b.reports); err != nil {
		return fmt.Errorf("failed to store reports: %w", err)
	}
	if err := committer.CommitMessages(ctx, b.messages...); err != nil {
		return fmt.Errorf("failed to commit kafka messages: %w", err)
	}

	slog.Info("flushed batch",
		"count", b.Len(),
		"duration", time.Since(start),
	)

	b.Reset()
	return nil
}

func (b *Batch) Reset() {
	b.reports = b.reports[:0]
	b.messages = b.messages[:0]
	clear(b.minOffset)
	clear(b.maxOffset)
}
