package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// EventPublisher is the outbound half of the saga exchange.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, message interface{}) error
}

type RabbitMQConfig struct {
	URL           string
	ExchangeName  string
	QueueName     string
	PrefetchCount int
}

type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	config  RabbitMQConfig
}

// NewRabbitMQ connects to the broker, declares the topic exchange and the
// command queue, and binds the queue to every inbound routing key.
func NewRabbitMQ(config RabbitMQConfig) (*RabbitMQ, error) {
	conn, err := amqp.Dial(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		config.ExchangeName, // name
		"topic",             // kind
		true,                // durable
		false,               // auto-delete
		false,               // internal
		false,               // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	q, err := channel.QueueDeclare(
		config.QueueName, // name
		true,             // durable
		false,            // delete when unused
		false,            // exclusive
		false,            // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, topic := range InboundTopics {
		if err := channel.QueueBind(q.Name, topic, config.ExchangeName, false, nil); err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to bind %s: %w", topic, err)
		}
	}

	return &RabbitMQ{
		conn:    conn,
		channel: channel,
		queue:   q,
		config:  config,
	}, nil
}

func (r *RabbitMQ) Publish(ctx context.Context, topic string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = r.channel.PublishWithContext(
		ctx,
		r.config.ExchangeName,
		topic, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}

	return nil
}

// Consume feeds deliveries through the router. Each delivery is handled on
// its own goroutine; nothing above the database row lock serializes commands
// for the same slot. A handler error requeues the delivery.
func (r *RabbitMQ) Consume(ctx context.Context, router *Router) error {
	prefetch := r.config.PrefetchCount
	if prefetch <= 0 {
		prefetch = 32
	}
	if err := r.channel.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := r.channel.Consume(
		r.queue.Name, // queue
		"",           // consumer
		false,        // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to consume messages: %w", err)
	}

	go r.handleMessages(ctx, msgs, router)
	return nil
}

func (r *RabbitMQ) handleMessages(ctx context.Context, msgs <-chan amqp.Delivery, router *Router) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			go func(msg amqp.Delivery) {
				if err := router.Dispatch(ctx, msg.RoutingKey, msg.Body); err != nil {
					logrus.Errorf("Failed to process %s: %v. Message will be retried.", msg.RoutingKey, err)
					msg.Nack(false, true) // requeue
				} else {
					msg.Ack(false)
				}
			}(msg)
		}
	}
}

func (r *RabbitMQ) Close() error {
	var errs []error

	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing RabbitMQ: %v", errs)
	}

	return nil
}

// HealthCheck verifies the broker connection is still usable.
func (r *RabbitMQ) HealthCheck() error {
	if r.conn == nil || r.conn.IsClosed() {
		return fmt.Errorf("RabbitMQ connection is closed")
	}

	testChannel, err := r.conn.Channel()
	if err != nil {
		return fmt.Errorf("RabbitMQ health check failed: %w", err)
	}
	testChannel.Close()

	return nil
}
