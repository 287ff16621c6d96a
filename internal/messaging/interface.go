package messaging

import "context"

// PublisherInterface publishes domain events under a routing key. Services
// hold this rather than *Publisher so they run without a broker.
type PublisherInterface interface {
	Publish(ctx context.Context, routingKey string, eventData interface{}) error
	Close() error
}

var (
	_ PublisherInterface = (*Publisher)(nil)
	_ PublisherInterface = NoopPublisher{}
)
