package category

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"goldshop/domain"
	"goldshop/pkg/events"
	"goldshop/pkg/httperror"
)

type BulkDeleteCategoriesHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

type BulkDeleteCategoriesRequest struct {
	IDs   []string `json:"ids" validate:"required,min=1,dive,required"`
	Force bool     `json:"force"`
}

type BulkDeleteCategoriesResponse struct {
	Deleted int64 `json:"deleted"`
}

func NewBulkDeleteCategoriesHandler(repository Repository, eventPublisher events.Publisher) *BulkDeleteCategoriesHandler {
	return &BulkDeleteCategoriesHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

// Handle deletes the categories. Without force it refuses, with 409, when
// any of them still holds products. Forced deletes detach the products and
// promote surviving children to roots.
func (h BulkDeleteCategoriesHandler) Handle(ctx context.Context, req *BulkDeleteCategoriesRequest) (*BulkDeleteCategoriesResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, validationError("bulk_delete", err)
	}

	ids := uniqueIDs(req.IDs)
	tree, err := loadTree(ctx, h.repository, "bulk_delete")
	if err != nil {
		return nil, err
	}
	if err := requireKnown(tree, ids, "bulk_delete"); err != nil {
		return nil, err
	}

	if !req.Force {
		counts, err := h.repository.ProductCounts(ctx, ids)
		if err != nil {
			zap.L().Error("Failed to count products", zap.Strings("ids", ids), zap.Error(err))
			return nil, httperror.InternalServerError(
				"category.bulk_delete.failed",
				"Failed to count products",
				nil,
			)
		}
		if blocked := blockedIDs(counts); len(blocked) > 0 {
			return nil, httperror.Conflict(
				domain.CodeCategoryHasProducts,
				"Selected categories still hold products",
				map[string]any{"ids": blocked},
			)
		}
	}

	deleted, err := h.repository.DeleteCategories(ctx, ids)
	if err != nil {
		zap.L().Error("Failed to delete categories", zap.Strings("ids", ids), zap.Error(err))
		return nil, httperror.InternalServerError(
			"category.bulk_delete.delete_failed",
			"An error occurred while deleting the categories",
			nil,
		)
	}

	publish(ctx, h.eventPublisher, events.CategoryDeletedEvent, events.CategoryDeletedPayload{
		IDs:       ids,
		Force:     req.Force,
		DeletedBy: actor(ctx),
		DeletedAt: time.Now().UTC(),
	})

	return &BulkDeleteCategoriesResponse{
		Deleted: deleted,
	}, nil
}

func blockedIDs(counts map[string]int) []string {
	var blocked []string
	for id, n := range counts {
		if n > 0 {
			blocked = append(blocked, id)
		}
	}
	sort.Strings(blocked)
	return blocked
}
