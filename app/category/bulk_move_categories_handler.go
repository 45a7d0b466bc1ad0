package category

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"goldshop/domain"
	"goldshop/pkg/events"
	"goldshop/pkg/httperror"
)

type BulkMoveCategoriesHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

type BulkMoveCategoriesRequest struct {
	IDs      []string `json:"ids" validate:"required,min=1,dive,required"`
	ParentID *string  `json:"parent_id"`
}

type BulkMoveCategoriesResponse struct {
	Moved int64 `json:"moved"`
}

func NewBulkMoveCategoriesHandler(repository Repository, eventPublisher events.Publisher) *BulkMoveCategoriesHandler {
	return &BulkMoveCategoriesHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

func (h BulkMoveCategoriesHandler) Handle(ctx context.Context, req *BulkMoveCategoriesRequest) (*BulkMoveCategoriesResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, validationError("bulk_move", err)
	}

	ids := uniqueIDs(req.IDs)
	tree, err := loadTree(ctx, h.repository, "bulk_move")
	if err != nil {
		return nil, err
	}
	if err := requireKnown(tree, ids, "bulk_move"); err != nil {
		return nil, err
	}
	if err := checkNewParent(tree, ids, req.ParentID); err != nil {
		return nil, err
	}

	moved, err := h.repository.UpdateCategories(ctx, ids, domain.CategoryChanges{
		ParentSet: true,
		ParentID:  req.ParentID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrCategoryCycle) {
			return nil, movedIntoSubtree(req.ParentID)
		}
		zap.L().Error("Failed to move categories", zap.Strings("ids", ids), zap.Error(err))
		return nil, httperror.InternalServerError(
			"category.bulk_move.update_failed",
			"An error occurred while moving the categories",
			nil,
		)
	}

	publish(ctx, h.eventPublisher, events.CategoryMovedEvent, events.CategoryMovedPayload{
		IDs:      ids,
		ParentID: req.ParentID,
		MovedBy:  actor(ctx),
		MovedAt:  time.Now().UTC(),
	})

	return &BulkMoveCategoriesResponse{
		Moved: moved,
	}, nil
}
