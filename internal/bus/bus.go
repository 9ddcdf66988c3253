// Package bus provides event bus implementations for publishing
// recommendation and catalog lifecycle events.
package bus

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Handler is a function that handles events.
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for event bus implementations. Events are
// fire-and-forget notifications; a publish with no subscribers succeeds.
type Bus interface {
	// Publish publishes an event to a topic.
	Publish(ctx context.Context, topic string, event Event) error

	// Subscribe subscribes to events on a topic.
	Subscribe(ctx context.Context, topic string, handler Handler) error

	// Close closes the bus and releases resources.
	Close() error
}

// Event represents a bus event.
type Event struct {
	// ID is the unique event identifier.
	ID string `json:"id"`

	// Type is the event type, normally the topic it was published to.
	Type string `json:"type"`

	// Source is the service that generated the event.
	Source string `json:"source"`

	// Timestamp is when the event was created (unix milliseconds).
	Timestamp int64 `json:"timestamp"`

	// Payload contains the event data.
	Payload any `json:"payload"`
}

// NewEvent creates an event with a fresh ID and the current timestamp.
func NewEvent(eventType, source string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UnixMilli(),
		Payload:   payload,
	}
}

// Topics for the recommendation lifecycle.
const (
	// TopicRecommendAnswered fires after every answered recommendation
	// request, carrying the query and result count.
	TopicRecommendAnswered = "recommend.answered"

	// TopicDatasetReloaded fires after the catalog CSV is reloaded.
	TopicDatasetReloaded = "dataset.reloaded"

	// TopicIndexCompleted fires after a catalog indexing run.
	TopicIndexCompleted = "index.completed"
)
