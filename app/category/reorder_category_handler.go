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

type ReorderCategoryHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

type ReorderCategoryRequest struct {
	ID           string  `json:"id" validate:"required"`
	NewParentID  *string `json:"new_parent_id"`
	NewSortOrder *int    `json:"new_sort_order" validate:"omitempty,min=0"`
}

type ReorderCategoryResponse struct {
	ID        string  `json:"id"`
	ParentID  *string `json:"parent_id"`
	SortOrder int     `json:"sort_order"`
}

func NewReorderCategoryHandler(repository Repository, eventPublisher events.Publisher) *ReorderCategoryHandler {
	return &ReorderCategoryHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

// Handle moves one category under a new parent (nil is the root) at the given
// position. Without a position the category goes after its last sibling.
func (h ReorderCategoryHandler) Handle(ctx context.Context, req *ReorderCategoryRequest) (*ReorderCategoryResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, validationError("reorder", err)
	}

	tree, err := loadTree(ctx, h.repository, "reorder")
	if err != nil {
		return nil, err
	}
	if err := requireKnown(tree, []string{req.ID}, "reorder"); err != nil {
		return nil, err
	}
	if err := checkNewParent(tree, []string{req.ID}, req.NewParentID); err != nil {
		return nil, err
	}

	order, err := h.repository.ReorderCategory(ctx, req.ID, req.NewParentID, req.NewSortOrder)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return nil, httperror.NotFound(domain.CodeCategoryNotFound, "Category not found", nil)
		}
		if errors.Is(err, domain.ErrCategoryCycle) {
			return nil, movedIntoSubtree(req.NewParentID)
		}
		zap.L().Error("Failed to reorder category", zap.String("id", req.ID), zap.Error(err))
		return nil, httperror.InternalServerError(
			"category.reorder.update_failed",
			"An error occurred while moving the category",
			nil,
		)
	}

	publish(ctx, h.eventPublisher, events.CategoryMovedEvent, events.CategoryMovedPayload{
		IDs:       []string{req.ID},
		ParentID:  req.NewParentID,
		SortOrder: &order,
		MovedBy:   actor(ctx),
		MovedAt:   time.Now().UTC(),
	})

	return &ReorderCategoryResponse{
		ID:        req.ID,
		ParentID:  req.NewParentID,
		SortOrder: order,
	}, nil
}
