package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaSink streams audit events to a Kafka topic. Production is
// fire-and-forget: delivery errors are logged, never surfaced to the
// enrollment path. A nil *KafkaSink is valid and publishes nothing.
type KafkaSink struct {
	client *kgo.Client
	logger *slog.Logger
}

// NewKafkaSink connects a producer for the given brokers and topic.
// Returns nil when brokers is empty (streaming not configured).
func NewKafkaSink(brokers, topic string, logger *slog.Logger) (*KafkaSink, error) {
	if brokers == "" {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(strings.Split(brokers, ",")...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, err
	}
	return &KafkaSink{client: client, logger: logger}, nil
}

// Publish produces the event keyed by enrollment id so per-record ordering
// holds within a partition.
func (s *KafkaSink) Publish(ctx context.Context, e Event) {
	if s == nil {
		return
	}
	value, err := json.Marshal(e)
	if err != nil {
		s.logger.WarnContext(ctx, "audit event marshal failed", "error", err)
		return
	}
	record := &kgo.Record{Key: []byte(e.EnrollmentID), Value: value}
	s.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			s.logger.Warn("audit event delivery failed",
				"action", e.Action,
				"enrollment_id", e.EnrollmentID,
				"error", err,
			)
		}
	})
}

// Close flushes pending records and releases the producer.
func (s *KafkaSink) Close(ctx context.Context) {
	if s == nil {
		return
	}
	if err := s.client.Flush(ctx); err != nil {
		s.logger.Warn("audit stream flush failed", "error", err)
	}
	s.client.Close()
}
