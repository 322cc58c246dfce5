package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event is the envelope used as the Kafka message payload.
type Event struct {
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

// EventBus abstracts publishing batch lifecycle events. The pipeline only
// publishes; downstream consumers (dashboards, notifiers) live elsewhere.
type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close()
}

// NewJSONEvent builds an Event with a JSON-encoded payload. An empty id gets
// a high-resolution timestamp based one.
func NewJSONEvent(id string, payload any) (Event, error) {
	if id == "" {
		id = fmt.Sprintf("%d", time.Now().UnixNano())
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal event payload: %w", err)
	}
	return Event{ID: id, Payload: b}, nil
}

// Noop is the EventBus used when no brokers are configured. Publishing is a
// silent success.
type Noop struct{}

func (Noop) Publish(ctx context.Context, topic string, event Event) error { return nil }
func (Noop) Close()                                                       {}
