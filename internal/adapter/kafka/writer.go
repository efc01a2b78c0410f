package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/birdflu-tracker/internal/config"
	"github.com/couchcryptid/birdflu-tracker/internal/domain"
	"github.com/couchcryptid/birdflu-tracker/internal/observability"
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes joined case records to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer  messageWriter
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, metrics: metrics, logger: logger}
}

// Publish writes every joined record of the result in a single
// WriteMessages call. Records sharing a county land on the same partition.
func (w *Writer) Publish(ctx context.Context, result *domain.Result) error {
	if len(result.Records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(result.Records))
	for i := range result.Records {
		msg, err := serializeRecord(result, result.Records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		w.metrics.PublishErrors.Inc()
		return fmt.Errorf("publish %d records: %w", len(msgs), err)
	}
	w.metrics.RecordsPublished.Add(float64(len(msgs)))
	w.logger.Debug("records published", "count", len(msgs), "run_id", result.RunID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeRecord marshals a joined record into a Kafka message keyed by state|county.
func serializeRecord(result *domain.Result, rec domain.JoinedRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize joined record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.Key().String()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(result.RunID)},
			{Key: "fingerprint", Value: []byte(result.Fingerprint)},
		},
	}, nil
}
