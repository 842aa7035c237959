// Package messaging holds the RabbitMQ connection helpers.
package messaging

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Dial opens an AMQP connection identified by name in the broker UI.
func Dial(amqpURL, name string, timeout time.Duration) (*amqp.Connection, error) {
	props := amqp.NewConnectionProperties()
	props.SetClientConnectionName(name)

	cfg := amqp.Config{Properties: props}
	if timeout > 0 {
		cfg.Dial = amqp.DefaultDial(timeout)
	}

	conn, err := amqp.DialConfig(amqpURL, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to amqp: %w", err)
	}
	return conn, nil
}

// Channel is the part of *amqp.Channel used to publish to a queue.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// DeclareQueue declares a durable queue.
func DeclareQueue(ch Channel, name string) error {
	if _, err := ch.QueueDeclare(
		name,  // name of the queue
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // noWait
		nil,   // arguments
	); err != nil {
		return fmt.Errorf("declare queue %q: %w", name, err)
	}
	return nil
}

// PublishJSON publishes body to queue through the default exchange.
func PublishJSON(ctx context.Context, ch Channel, queue string, body []byte) error {
	return ch.PublishWithContext(
		ctx,
		"",    // default exchange
		queue, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}
