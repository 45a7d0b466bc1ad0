package events

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	Event         string    `json:"event"`         // e.g. "category.moved"
	Version       string    `json:"version"`       // e.g. "v1"
	Timestamp     time.Time `json:"timestamp"`     // occurrence time, UTC
	Payload       any       `json:"payload"`       // event data
	TraceID       string    `json:"traceId"`       // distributed tracing
	CorrelationID string    `json:"correlationId"` // request correlation
}

type Headers struct {
	TraceID       string
	CorrelationID string
	Service       string
}

func NewEvent(eventName, version string, payload any, headers Headers) *Event {
	return &Event{
		Event:         eventName,
		Version:       version,
		Timestamp:     time.Now().UTC(),
		Payload:       payload,
		TraceID:       headers.TraceID,
		CorrelationID: headers.CorrelationID,
	}
}

// NewHeaders starts a fresh trace for an event raised by service.
func NewHeaders(service string) Headers {
	return Headers{
		TraceID:       GenerateTraceID(),
		CorrelationID: GenerateCorrelationID(),
		Service:       service,
	}
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func (e *Event) GetRoutingKey() string {
	return e.Event + "." + e.Version
}

// Envelope is a received event whose payload is decoded on demand.
type Envelope struct {
	Event         string          `json:"event"`
	Version       string          `json:"version"`
	Timestamp     time.Time       `json:"timestamp"`
	Payload       json.RawMessage `json:"payload"`
	TraceID       string          `json:"traceId"`
	CorrelationID string          `json:"correlationId"`
}

func ParseEnvelope(body []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, fmt.Errorf("failed to decode event envelope: %w", err)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("event envelope has no event name")
	}
	return env, nil
}

func (e Envelope) DecodePayload(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Event, err)
	}
	return nil
}

// Domain returns the first segment of the event name ("product" for
// "product.created").
func (e Envelope) Domain() string {
	domain, _, _ := strings.Cut(e.Event, ".")
	return domain
}

func GenerateTraceID() string {
	return uuid.New().String()
}

func GenerateCorrelationID() string {
	return uuid.New().String()
}
