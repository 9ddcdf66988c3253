package bus

import (
	"context"

	"github.com/mobilcari/mobil-cari/internal/pkg/logger"
)

// LoggedBus decorates a Bus with debug logging of published events.
type LoggedBus struct {
	inner Bus
	log   *logger.Logger
}

// NewLoggedBus wraps a bus with logging.
func NewLoggedBus(inner Bus, log *logger.Logger) *LoggedBus {
	return &LoggedBus{
		inner: inner,
		log:   log,
	}
}

// Publish implements Bus.
func (b *LoggedBus) Publish(ctx context.Context, topic string, event Event) error {
	err := b.inner.Publish(ctx, topic, event)
	if err != nil {
		b.log.Warn("Event publish failed", "topic", topic, "event_id", event.ID, "error", err)
		return err
	}
	b.log.Debug("Event published", "topic", topic, "event_id", event.ID, "source", event.Source)
	return nil
}

// Subscribe implements Bus.
func (b *LoggedBus) Subscribe(ctx context.Context, topic string, handler Handler) error {
	return b.inner.Subscribe(ctx, topic, handler)
}

// Close implements Bus.
func (b *LoggedBus) Close() error {
	return b.inner.Close()
}
