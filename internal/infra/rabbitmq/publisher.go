package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"storefront/internal/domain"

	"github.com/streadway/amqp"
)

const (
	RoutingKeyOrderCreated = "order.created"
	RoutingKeyOrderUpdated = "order.updated"
)

// RoutingKey maps an event to its topic. Events that only make sense on the
// websocket (snapshots, per-sender errors) have none.
func RoutingKey(event domain.Event) (string, bool) {
	switch event.Name() {
	case domain.EventOrderCreated:
		return RoutingKeyOrderCreated, true
	case domain.EventOrderUpdated:
		return RoutingKeyOrderUpdated, true
	default:
		return "", false
	}
}

type Publisher struct {
	conn     *amqp.Connection
	channel  channel
	exchange string
}

func NewPublisher(amqpURL, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
	}, nil
}

// Publish sends the event envelope, the same JSON the websocket carries.
func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	key, ok := RoutingKey(event)
	if !ok {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := domain.EncodeEvent(event)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	slog.Debug("publishing order event", "routing_key", key, "exchange", p.exchange)

	err = p.channel.Publish(
		p.exchange,
		key,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Type:         event.Name(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
