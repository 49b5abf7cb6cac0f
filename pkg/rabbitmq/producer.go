/**
 * @description
 * RabbitMQ event producer. Subscription lifecycle events are published to a
 * durable topic exchange for downstream consumers (analytics, CRM sync).
 * When the broker is unreachable at startup the caller can fall back to the
 * no-op publisher so the service still comes up.
 */
package rabbitmq

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the interface implemented by types that can publish events.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
	Close()
}

// EventProducer publishes events to a RabbitMQ topic exchange.
type EventProducer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewEventProducer connects to RabbitMQ with a bounded dial timeout.
func NewEventProducer(amqpURL string) (*EventProducer, error) {
	conn, err := amqp.DialConfig(amqpURL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &EventProducer{conn: conn, channel: ch}, nil
}

// Publish sends a JSON-encoded message to the exchange with the routing key.
// The exchange is declared durable on first use.
func (p *EventProducer) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	if err := p.channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		// The channel may have been closed by a broker hiccup; reopen once.
		ch, chErr := p.conn.Channel()
		if chErr != nil {
			return chErr
		}
		p.channel = ch
		if err := p.channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
			return err
		}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	return p.channel.PublishWithContext(ctx,
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        jsonBody,
		},
	)
}

// Close shuts down the channel and connection.
func (p *EventProducer) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// NoopPublisher logs events instead of publishing them. Used when RabbitMQ is
// not configured or unavailable at startup.
type NoopPublisher struct {
	Logger *slog.Logger
}

// Publish logs the event and drops it.
func (p *NoopPublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	if p.Logger != nil {
		p.Logger.Debug("event publishing disabled, dropping event", "exchange", exchange, "routing_key", routingKey)
	}
	return nil
}

// Close is a no-op.
func (p *NoopPublisher) Close() {}
