package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	ExchangeName = "medflow.events"
	ExchangeType = "topic"
)

// Publisher sends domain events to a durable topic exchange. It is safe for
// concurrent use; once the broker closes the channel further publishes fail
// with ErrPublisherClosed.
type Publisher struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool
	log     logrus.FieldLogger
}

// ErrPublisherClosed is returned after the broker connection went away.
var ErrPublisherClosed = errors.New("rabbitmq publisher closed")

// NewPublisher dials RabbitMQ and declares the events exchange.
func NewPublisher(rabbitmqURL string, log logrus.FieldLogger) (*Publisher, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("exchange", ExchangeName)
	log.WithField("url", redact(rabbitmqURL)).Info("Connecting to RabbitMQ")

	conn, err := amqp.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	// durable, not auto-deleted, not internal, wait for the broker
	if err := ch.ExchangeDeclare(ExchangeName, ExchangeType, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	p := &Publisher{conn: conn, channel: ch, log: log}
	go p.watch(ch.NotifyClose(make(chan *amqp.Error, 1)))

	log.Info("Connected to RabbitMQ")
	return p, nil
}

func (p *Publisher) watch(closed <-chan *amqp.Error) {
	if err, ok := <-closed; ok && err != nil {
		p.log.WithError(err).Error("RabbitMQ channel closed by broker")
	}
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

// Publish marshals eventData to JSON and sends it as a persistent message
// under routingKey.
func (p *Publisher) Publish(ctx context.Context, routingKey string, eventData interface{}) error {
	body, err := json.Marshal(eventData)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPublisherClosed
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    uuid.NewString(),
		AppId:        ServiceName,
		Type:         routingKey,
	}
	if err := p.channel.PublishWithContext(ctx, ExchangeName, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish event to %s: %w", routingKey, err)
	}

	p.log.WithFields(logrus.Fields{"routing_key": routingKey, "message_id": msg.MessageId}).Debug("Published event")
	return nil
}

// Close shuts the channel and the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if err := p.channel.Close(); err != nil {
		p.log.WithError(err).Warn("Error closing RabbitMQ channel")
	}
	return p.conn.Close()
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NoopPublisher) Close() error                                        { return nil }


func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "amqp://<invalid>"
	}
	return u.Redacted()
}
