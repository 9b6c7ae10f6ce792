package audit

import (
	"context"
	"log/slog"
	"time"
)

// Publisher captures structured audit events. Persistence failures are logged
// and swallowed: an audit hiccup must never fail the enrollment operation it
// describes.
type Publisher struct {
	store  Store
	stream *KafkaSink
	logger *slog.Logger
}

// NewPublisher builds a publisher. stream may be nil (no Kafka configured).
func NewPublisher(store Store, stream *KafkaSink, logger *slog.Logger) *Publisher {
	return &Publisher{store: store, stream: stream, logger: logger}
}

// Emit records the event in the store and, when configured, on the stream.
func (p *Publisher) Emit(ctx context.Context, e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if err := p.store.Append(ctx, e); err != nil {
		p.logger.WarnContext(ctx, "audit append failed",
			"action", e.Action,
			"enrollment_id", e.EnrollmentID,
			"error", err,
		)
	}
	p.stream.Publish(ctx, e)
}
