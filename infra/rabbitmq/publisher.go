package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"goldshop/pkg/events"
)

const publishTimeout = 5 * time.Second

// Publisher implements events.Publisher with publisher confirms.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	service string

	mu       sync.Mutex
	declared map[string]bool
}

var _ events.Publisher = (*Publisher)(nil)

func NewPublisher(url, service string) (*Publisher, error) {
	conn, err := dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		closeQuietly(nil, conn)
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	zap.L().Info("RabbitMQ publisher connected", zap.String("service", service))

	return &Publisher{
		conn:     conn,
		channel:  channel,
		service:  service,
		declared: map[string]bool{},
	}, nil
}

// DeclareExchange declares a durable topic exchange once per publisher.
func (p *Publisher) DeclareExchange(exchange string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.declared[exchange] {
		return nil
	}
	if err := declareTopicExchange(p.channel, exchange); err != nil {
		return err
	}
	p.declared[exchange] = true
	return nil
}

func (p *Publisher) Publish(ctx context.Context, exchange string, event *events.Event, headers events.Headers) error {
	if err := p.DeclareExchange(exchange); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	msg, err := newPublishing(event, headers, p.service)
	if err != nil {
		return err
	}
	routingKey := event.GetRoutingKey()

	// One channel per publish keeps confirmations of concurrent publishers apart.
	publishCh, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to create publish channel: %w", err)
	}
	defer publishCh.Close()

	if err := publishCh.Confirm(false); err != nil {
		return fmt.Errorf("failed to enable confirms: %w", err)
	}
	confirms := publishCh.NotifyPublish(make(chan amqp.Confirmation, 1))

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := publishCh.PublishWithContext(publishCtx, exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	select {
	case confirm := <-confirms:
		if !confirm.Ack {
			return fmt.Errorf("message was not acknowledged by broker")
		}
	case <-publishCtx.Done():
		return fmt.Errorf("publish confirmation timeout")
	}

	zap.L().Info("Event published",
		zap.String("exchange", exchange),
		zap.String("routingKey", routingKey),
		zap.String("traceId", headers.TraceID),
	)
	return nil
}

func newPublishing(event *events.Event, headers events.Headers, service string) (amqp.Publishing, error) {
	body, err := event.ToJSON()
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to serialize event: %w", err)
	}
	if headers.Service != "" {
		service = headers.Service
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.Timestamp,
		Headers: amqp.Table{
			"x-trace-id":       headers.TraceID,
			"x-correlation-id": headers.CorrelationID,
			"x-service":        service,
		},
	}, nil
}

func (p *Publisher) IsHealthy() bool {
	if p == nil || p.conn == nil || p.channel == nil {
		return false
	}
	return !p.conn.IsClosed() && !p.channel.IsClosed()
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			zap.L().Error("Failed to close channel", zap.Error(err))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			zap.L().Error("Failed to close connection", zap.Error(err))
			return err
		}
	}
	zap.L().Info("RabbitMQ publisher closed")
	return nil
}
