package rabbitmq

import (
	"storefront/internal/notify"

	"github.com/streadway/amqp"
)

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

var (
	_ channel          = (*amqp.Channel)(nil)
	_ notify.Publisher = (*Publisher)(nil)
)
