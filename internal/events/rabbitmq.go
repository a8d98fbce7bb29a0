// Package events carries match lifecycle events over RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/recruit-desk/internal/matching"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultExchange is the topic exchange lifecycle events are published to
const DefaultExchange = "recruit_desk.matches"

const publishTimeout = 5 * time.Second

// channel is the part of *amqp.Channel the publisher and consumer use.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// RabbitMQ publishes and consumes match events on a topic exchange.
// The routing key of each message is the event type.
type RabbitMQ struct {
	conn     *amqp.Connection
	channel  channel
	exchange string
}

// Dial connects to the broker and declares the exchange.
func Dial(url, exchange string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	r, err := newRabbitMQ(ch, exchange)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	r.conn = conn
	log.Printf("[EVENTS] Connected to RabbitMQ, exchange %s", r.exchange)
	return r, nil
}

func newRabbitMQ(ch channel, exchange string) (*RabbitMQ, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // delete when unused
		false,    // internal
		false,    // no-wait
		nil,      // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return &RabbitMQ{channel: ch, exchange: exchange}, nil
}

// Publish implements matching.Publisher.
func (r *RabbitMQ) Publish(ctx context.Context, event matching.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = r.channel.PublishWithContext(
		ctx,
		r.exchange,         // exchange
		string(event.Type), // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.MatchID + ":" + event.OccurredAt.Format(time.RFC3339Nano),
			Timestamp:    event.OccurredAt,
			Type:         string(event.Type),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Consume binds a durable queue to every match event and hands each decoded
// event to handler until ctx is cancelled. Handler errors requeue the message
// once; malformed messages are dropped.
func (r *RabbitMQ) Consume(ctx context.Context, queue string, handler func(context.Context, matching.Event) error) error {
	q, err := r.channel.QueueDeclare(
		queue, // queue name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := r.channel.QueueBind(q.Name, "match.#", r.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	msgs, err := r.channel.Consume(
		q.Name,
		"",
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			handleDelivery(ctx, d, handler)
		}
	}
}

// acknowledger is the part of amqp.Delivery used to settle a message.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func handleDelivery(ctx context.Context, d amqp.Delivery, handler func(context.Context, matching.Event) error) {
	settle(ctx, &d, d.Body, d.Redelivered, handler)
}

func settle(ctx context.Context, ack acknowledger, body []byte, redelivered bool, handler func(context.Context, matching.Event) error) {
	var event matching.Event
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("[EVENTS] Dropping invalid event: %v", err)
		_ = ack.Nack(false, false)
		return
	}

	if err := handler(ctx, event); err != nil {
		log.Printf("[EVENTS] Handler failed for %s on %s: %v", event.Type, event.MatchID, err)
		_ = ack.Nack(false, !redelivered)
		return
	}
	_ = ack.Ack(false)
}

// Close closes the channel and the connection.
func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		_ = r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
