package consumers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"goldshop/domain"
	"goldshop/pkg/events"
)

const maxRetries = 3

// CategoryCounter recomputes the cached product counters of categories.
type CategoryCounter interface {
	RecountCategories(ctx context.Context, ids []string) ([]domain.CategoryStats, error)
}

// ProductEventHandler keeps product_count and gold_weight of categories in
// step with product events and announces each recount as category.updated.
type ProductEventHandler struct {
	repository CategoryCounter
	publisher  events.Publisher
	service    string
}

func NewProductEventHandler(repository CategoryCounter, publisher events.Publisher, service string) *ProductEventHandler {
	return &ProductEventHandler{
		repository: repository,
		publisher:  publisher,
		service:    service,
	}
}

func (h *ProductEventHandler) HandleEvent(ctx context.Context, event events.Envelope) error {
	zap.L().Info("Product event received",
		zap.String("event", event.Event),
		zap.String("version", event.Version),
		zap.String("traceId", event.TraceID),
	)

	switch event.Event {
	case events.ProductCreatedEvent, events.ProductUpdatedEvent, events.ProductDeletedEvent:
	default:
		zap.L().Warn("Unknown product event type", zap.String("event", event.Event))
		return nil
	}

	var payload events.ProductPayload
	if err := event.DecodePayload(&payload); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}
	if payload.ID == "" {
		return fmt.Errorf("malformed payload - id missing")
	}

	ids := payload.CategoryIDs()
	if len(ids) == 0 {
		zap.L().Debug("Product has no category, nothing to recount", zap.String("productId", payload.ID))
		return nil
	}

	stats, err := h.recount(ctx, ids, event.TraceID)
	if err != nil {
		return err
	}

	for _, s := range stats {
		h.announce(ctx, s, event)
	}
	return nil
}

func (h *ProductEventHandler) recount(ctx context.Context, ids []string, traceID string) ([]domain.CategoryStats, error) {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		var stats []domain.CategoryStats
		stats, err = h.repository.RecountCategories(ctx, ids)
		if err == nil {
			return stats, nil
		}
		if attempt < maxRetries {
			zap.L().Warn("Recount failed, retrying",
				zap.Strings("categoryIds", ids),
				zap.Int("attempt", attempt),
				zap.String("traceId", traceID),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(10*attempt) * time.Millisecond):
			}
		}
	}
	return nil, fmt.Errorf("failed to recount categories after %d attempts: %w", maxRetries, err)
}

// announce publishes the new counters of one category. The correlation id of
// the product event is carried over.
func (h *ProductEventHandler) announce(ctx context.Context, s domain.CategoryStats, cause events.Envelope) {
	if h.publisher == nil {
		return
	}

	count, weight := s.ProductCount, s.GoldWeight
	headers := events.NewHeaders(h.service)
	if cause.CorrelationID != "" {
		headers.CorrelationID = cause.CorrelationID
	}

	event := events.NewEvent(events.CategoryUpdatedEvent, events.EventVersionV1, events.CategoryUpdatedPayload{
		IDs:          []string{s.CategoryID},
		Fields:       []string{"product_count", "gold_weight"},
		ProductCount: &count,
		GoldWeight:   &weight,
		UpdatedAt:    time.Now().UTC(),
	}, headers)

	if err := h.publisher.Publish(ctx, events.CategoryExchange, event, headers); err != nil {
		zap.L().Error("Failed to publish category counters",
			zap.String("categoryId", s.CategoryID),
			zap.String("traceId", headers.TraceID),
			zap.Error(err),
		)
	}
}
