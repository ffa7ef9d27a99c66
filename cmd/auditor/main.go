package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"walletrep/internal/application"
	"walletrep/internal/config"
	"walletrep/internal/infrastructure/logging"
	"walletrep/internal/infrastructure/mysql"
	"walletrep/internal/infrastructure/sqlite"
	"walletrep/internal/infrastructure/telemetry"
	"walletrep/internal/streaming"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const maxBatchSize = 200

type reportStore interface {
	application.BulkReportRepository
	Close() error
}

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	rotating, err := logging.Init(logging.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("logging error: %v", err)
	}
	if rotating != nil {
		defer rotating.Close()
	}

	if len(cfg.KafkaBrokers) == 0 {
		slog.Error("KAFKA_BROKERS is required for the auditor")
		os.Exit(1)
	}

	shutdownTracing, err := telemetry.InitTracer(context.Background(), "walletrep-auditor", cfg.OtelEndpoint)
	if err != nil {
		slog.Warn("tracing init error", "err", err)
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(ctx); err != nil {
				slog.Warn("tracing shutdown error", "err", err)
			}
		}()
	}

	var store reportStore
	if cfg.MySQLDSN != "" {
		store, err = mysql.NewRepository(cfg.MySQLDSN)
	} else {
		store, err = sqlite.NewRepository(cfg.SQLitePath)
	}
	if err != nil {
		slog.Error("report store error", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		GroupID:  cfg.KafkaGroupID,
		Topic:    cfg.KafkaTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.Info("auditor started", "topic", cfg.KafkaTopic, "group", cfg.KafkaGroupID)
	consumeScores(ctx, reader, store)
}

func consumeScores(ctx context.Context, reader *kafka.Reader, store reportStore) {
	tracer := otel.Tracer("walletrep/auditor")
	batch := application.NewBatch()

	// Flush on a short interval so low-traffic topics still land promptly.
	flushInterval := 500 * time.Millisecond

	for {
		fetchCtx, cancel := context.WithTimeout(ctx, flushInterval)
		message, err := reader.FetchMessage(fetchCtx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				if batch.Len() > 0 {
					if err := batch.Flush(ctx, store, reader); err != nil {
						slog.Error("batch flush error (timeout)", "err", err)
					}
				}
				continue
			}
			if errors.Is(err, context.Canceled) {
				if batch.Len() > 0 {
					flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					if err := batch.Flush(flushCtx, store, reader); err != nil {
						slog.Error("final flush error", "err", err)
					}
					cancel()
				}
				return
			}
			slog.Error("kafka fetch error", "err", err)
			time.Sleep(100 * time.Millisecond)
			continue
		}

		decoded, err := streaming.Decode(message.Value)
		if err != nil {
			slog.Warn("message decode error", "err", err)
			_ = reader.CommitMessages(ctx, message)
			continue
		}

		messageCtx := telemetry.ExtractKafkaHeaders(ctx, message.Headers)
		if !trace.SpanContextFromContext(messageCtx).IsValid() && decoded.TraceID != "" {
			if ctxWithTrace, ok := telemetry.ContextWithTraceID(messageCtx, decoded.TraceID); ok {
				messageCtx = ctxWithTrace
			}
		}
		_, span := tracer.Start(messageCtx, "auditor.consume_score", trace.WithSpanKind(trace.SpanKindConsumer))
		span.SetAttributes(
			attribute.String("wallet.address", decoded.Address),
			attribute.Int("wallet.score", decoded.Score),
		)

		batch.Add(decoded.ToReport(), message)
		if batch.Len() >= maxBatchSize {
			if err := batch.Flush(ctx, store, reader); err != nil {
				slog.Error("batch flush error", "err", err)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
		}
		span.End()
	}
}
