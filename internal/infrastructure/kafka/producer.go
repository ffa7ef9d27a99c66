package kafka

import (
	"context"
	"errors"
	"strings"
	"time"

	"walletrep/internal/domain"
	"walletrep/internal/infrastructure/telemetry"
	"walletrep/internal/streaming"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Producer publishes finished score reports for downstream audit consumers.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

type ProducerConfig struct {
	Brokers []string
	Topic   string
}

func NewProducer(cfg ProducerConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		cfg.Topic = "walletrep-scores"
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 500 * time.Millisecond,
	}
	return &Producer{writer: writer, topic: cfg.Topic}, nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

func (p *Producer) PublishReport(ctx context.Context, report domain.Report) error {
	tracer := otel.Tracer("walletrep/kafka")

	traceID, traceIDHex, ok := telemetry.NewTraceID()
	if !ok {
		traceIDHex = ""
	}
	traceCtx := ctx
	if ok {
		if spanCtx, ok := telemetry.NewSpanContext(traceID); ok {
			traceCtx = trace.ContextWithSpanContext(ctx, spanCtx)
		}
	}
	traceCtx, span := tracer.Start(traceCtx, "scored.publish_report", trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()
	span.SetAttributes(
		attribute.String("wallet.address", report.Address),
		attribute.Int("wallet.score", report.Score),
	)

	msg := streaming.FromReport(report)
	msg.TraceID = traceIDHex
	payload, err := streaming.Encode(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	kafkaMsg := kafka.Message{
		Key:   []byte(report.Address),
		Value: payload,
	}
	telemetry.InjectKafkaHeaders(traceCtx, &kafkaMsg.Headers)

	if err := p.writer.WriteMessages(traceCtx, kafkaMsg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
