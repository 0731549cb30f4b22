package changefeed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

// Relay bridges the local hub to an AMQP fanout exchange so that row
// changes made on one server instance refresh dashboards served by
// another. Without AMQP configured the hub alone covers a single
// instance.
type Relay struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
	origin       string
	hub          *Hub
}

func NewRelay(url, exchangeName, queueName string, hub *Hub) (*Relay, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	relay := &Relay{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
		origin:       uuid.NewString(),
		hub:          hub,
	}

	if err := relay.setup(); err != nil {
		relay.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return relay, nil
}

func (r *Relay) setup() error {
	// Declare exchange; fanout so every instance sees every change
	err := r.channel.ExchangeDeclare(
		r.exchangeName, // name
		"fanout",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	// Per-instance queue; deleted when the instance disconnects
	_, err = r.channel.QueueDeclare(
		r.queueName, // name
		false,       // durable
		true,        // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = r.channel.QueueBind(
		r.queueName,    // queue name
		"",             // routing key (ignored by fanout)
		r.exchangeName, // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// Publish sends a local change event to the exchange.
func (r *Relay) Publish(ctx context.Context, e Event) error {
	e.Origin = r.origin
	body, err := e.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = r.channel.PublishWithContext(
		ctx,
		r.exchangeName, // exchange
		"",             // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	slog.DebugContext(ctx, "Published change event",
		"table", e.Table,
		"op", e.Op,
		"exchange", r.exchangeName)

	return nil
}

// Run consumes events from the exchange and re-injects the ones from
// other instances into the local hub. It blocks until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	msgs, err := r.channel.Consume(
		r.queueName, // queue
		"",          // consumer
		true,        // auto-ack; a lost refresh trigger is not worth redelivery
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Change feed relay started", "queue", r.queueName, "exchange", r.exchangeName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping change feed relay", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("relay channel closed")
			}

			event, err := EventFromJSON(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to unmarshal change event", "error", err)
				continue
			}

			// Local events already went through the hub
			if event.Origin == r.origin {
				continue
			}

			r.hub.Publish(event)
		}
	}
}

func (r *Relay) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
