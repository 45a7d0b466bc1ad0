package web

import (
	"context"

	"go.uber.org/zap"

	"goldshop/pkg/events"
)

// HandleEvent invalidates every open screen when a category changed
// elsewhere. The trees are refetched on the next render.
func (r *Registry) HandleEvent(ctx context.Context, event events.Envelope) error {
	if event.Domain() != events.CategoryDomain {
		return nil
	}

	zap.L().Debug("Category changed, invalidating screens",
		zap.String("event", event.Event),
		zap.String("traceId", event.TraceID),
		zap.Int("screens", r.Len()),
	)
	r.InvalidateAll()
	return nil
}
