package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"goldshop/pkg/events"
)

const (
	defaultPrefetch = 10
	processTimeout  = 30 * time.Second
)

// EventHandler processes one received event. A returned error dead-letters
// the message.
type EventHandler func(ctx context.Context, event events.Envelope) error

type Consumer struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	queueName   string
	serviceName string
}

type ConsumerConfig struct {
	Exchange      string   // e.g. "goldshop.product"
	QueueName     string   // e.g. "worker.product.v1"; ignored when Transient
	RoutingKeys   []string // e.g. ["product.*.v1"]
	ServiceName   string   // consumer tag
	PrefetchCount int      // 0 uses the default
	// Transient queues are server named, exclusive to the connection and
	// deleted with it. They have no dead letter queue.
	Transient bool
}

func NewConsumer(url string, config ConsumerConfig) (*Consumer, error) {
	conn, err := dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		closeQuietly(nil, conn)
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	queueName, err := setupQueue(channel, config)
	if err != nil {
		closeQuietly(channel, conn)
		return nil, err
	}

	zap.L().Info("RabbitMQ consumer created",
		zap.String("queue", queueName),
		zap.String("exchange", config.Exchange),
		zap.Strings("routingKeys", config.RoutingKeys),
	)

	return &Consumer{
		conn:        conn,
		channel:     channel,
		queueName:   queueName,
		serviceName: config.ServiceName,
	}, nil
}

func setupQueue(channel *amqp.Channel, config ConsumerConfig) (string, error) {
	prefetch := config.PrefetchCount
	if prefetch == 0 {
		prefetch = defaultPrefetch
	}
	if err := channel.Qos(prefetch, 0, false); err != nil {
		return "", fmt.Errorf("failed to set QoS: %w", err)
	}

	if err := declareTopicExchange(channel, config.Exchange); err != nil {
		return "", fmt.Errorf("failed to declare exchange: %w", err)
	}

	var queue amqp.Queue
	var err error
	if config.Transient {
		queue, err = channel.QueueDeclare("", false, true, true, false, nil)
	} else {
		queue, err = declareDurableQueue(channel, config)
	}
	if err != nil {
		return "", err
	}

	for _, routingKey := range config.RoutingKeys {
		if err := channel.QueueBind(queue.Name, routingKey, config.Exchange, false, nil); err != nil {
			return "", fmt.Errorf("failed to bind queue: %w", err)
		}
	}
	return queue.Name, nil
}

// declareDurableQueue declares the queue with a dead letter exchange and
// queue named after it.
func declareDurableQueue(channel *amqp.Channel, config ConsumerConfig) (amqp.Queue, error) {
	dlxName := config.Exchange + ".dlx"
	if err := declareTopicExchange(channel, dlxName); err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare DLX: %w", err)
	}

	queue, err := channel.QueueDeclare(
		config.QueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		amqp.Table{"x-dead-letter-exchange": dlxName},
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare queue: %w", err)
	}

	dlqName := config.QueueName + ".dlq"
	if _, err := channel.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare DLQ: %w", err)
	}
	for _, routingKey := range config.RoutingKeys {
		if err := channel.QueueBind(dlqName, routingKey, dlxName, false, nil); err != nil {
			return amqp.Queue{}, fmt.Errorf("failed to bind DLQ: %w", err)
		}
	}
	return queue, nil
}

// Consume blocks, handing every delivery to handler until ctx is done or the
// channel closes.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	msgs, err := c.channel.Consume(
		c.queueName,
		c.serviceName, // consumer tag
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	zap.L().Info("Started consuming messages", zap.String("queue", c.queueName))

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Consumer context cancelled, stopping...")
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				zap.L().Warn("Message channel closed")
				return fmt.Errorf("message channel closed")
			}
			handleDelivery(ctx, c.queueName, msg, handler)
		}
	}
}

// handleDelivery acks processed messages and nacks, without requeue, the ones
// that cannot be decoded or processed.
func handleDelivery(ctx context.Context, queue string, msg amqp.Delivery, handler EventHandler) {
	traceID, _ := msg.Headers["x-trace-id"].(string)
	service, _ := msg.Headers["x-service"].(string)
	logger := zap.L().With(
		zap.String("queue", queue),
		zap.String("routingKey", msg.RoutingKey),
		zap.String("traceId", traceID),
	)
	logger.Debug("Received message", zap.String("sourceService", service))

	event, err := events.ParseEnvelope(msg.Body)
	if err != nil {
		logger.Error("Failed to parse event", zap.Error(err))
		_ = msg.Nack(false, false)
		return
	}

	processCtx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()

	if err := handler(processCtx, event); err != nil {
		logger.Error("Failed to process event", zap.String("event", event.Event), zap.Error(err))
		_ = msg.Nack(false, false)
		return
	}

	if err := msg.Ack(false); err != nil {
		logger.Error("Failed to acknowledge message", zap.Error(err))
		return
	}
	logger.Debug("Processed event", zap.String("event", event.Event))
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			zap.L().Error("Failed to close channel", zap.Error(err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			zap.L().Error("Failed to close connection", zap.Error(err))
			return err
		}
	}
	zap.L().Info("RabbitMQ consumer closed")
	return nil
}
