package messaging

import "context"

// Broker is a minimal pub/sub abstraction. The redis subpackage provides
// the production implementation; deployments without Redis run without one.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Event is the envelope published on every channel.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
