package messaging

import (
	"context"
	"encoding/json"
)

// Message is what the outbox hands to a broker. Key groups related events
// (the aggregate id) so ordered transports keep them on one partition.
type Message struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Key     string          `json:"key"`
	Payload json.RawMessage `json:"payload"`
}

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, topic string, msg Message) error
	Subscribe(ctx context.Context, topic string) (<-chan Message, error)
	Close() error
}
