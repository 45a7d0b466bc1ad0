package rabbitmq

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"goldshop/pkg/events"
)

type fakeAcknowledger struct {
	acked   int
	nacked  int
	requeue bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acked++
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked++
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

func delivery(t *testing.T, ack amqp.Acknowledger, body []byte) amqp.Delivery {
	t.Helper()
	return amqp.Delivery{
		Acknowledger: ack,
		RoutingKey:   "product.created.v1",
		Headers:      amqp.Table{"x-trace-id": "trace-1"},
		Body:         body,
	}
}

func productEventBody(t *testing.T) []byte {
	t.Helper()
	category := "c-1"
	event := events.NewEvent(events.ProductCreatedEvent, events.EventVersionV1, events.ProductPayload{
		ID:         "p-1",
		CategoryID: &category,
		Name:       "Ring",
		Karat:      18,
		OccurredAt: time.Now(),
	}, events.NewHeaders("test"))
	body, err := event.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return body
}

func TestHandleDelivery_AcksProcessedEvent(t *testing.T) {
	ack := &fakeAcknowledger{}
	var got events.ProductPayload

	handleDelivery(context.Background(), "q", delivery(t, ack, productEventBody(t)), func(ctx context.Context, e events.Envelope) error {
		if e.Event != events.ProductCreatedEvent || e.Domain() != events.ProductDomain {
			t.Fatalf("expected product.created, got %s", e.Event)
		}
		return e.DecodePayload(&got)
	})

	if ack.acked != 1 || ack.nacked != 0 {
		t.Fatalf("expected one ack, got acked=%d nacked=%d", ack.acked, ack.nacked)
	}
	if got.ID != "p-1" || got.CategoryIDs()[0] != "c-1" {
		t.Fatalf("expected decoded payload, got %+v", got)
	}
}

func TestHandleDelivery_DeadLettersFailures(t *testing.T) {
	tests := []struct {
		name    string
		body    []byte
		handler EventHandler
	}{
		{"malformed body", []byte("{not json"), func(context.Context, events.Envelope) error { return nil }},
		{"handler error", productEventBody(t), func(context.Context, events.Envelope) error { return errors.New("db down") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAcknowledger{}
			handleDelivery(context.Background(), "q", delivery(t, ack, tt.body), tt.handler)
			if ack.nacked != 1 || ack.requeue || ack.acked != 0 {
				t.Fatalf("expected one nack without requeue, got acked=%d nacked=%d requeue=%v", ack.acked, ack.nacked, ack.requeue)
			}
		})
	}
}

func TestNewPublishing(t *testing.T) {
	event := events.NewEvent(events.CategoryMovedEvent, events.EventVersionV1, events.CategoryMovedPayload{IDs: []string{"1"}}, events.Headers{TraceID: "t", CorrelationID: "c"})

	msg, err := newPublishing(event, events.Headers{TraceID: "t", CorrelationID: "c"}, "inventory")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.DeliveryMode != amqp.Persistent || msg.ContentType != "application/json" {
		t.Fatalf("expected persistent json message, got %d %s", msg.DeliveryMode, msg.ContentType)
	}
	if msg.Headers["x-service"] != "inventory" || msg.Headers["x-trace-id"] != "t" {
		t.Fatalf("unexpected headers %v", msg.Headers)
	}
	if event.GetRoutingKey() != "category.moved.v1" {
		t.Fatalf("expected routing key category.moved.v1, got %s", event.GetRoutingKey())
	}
}
