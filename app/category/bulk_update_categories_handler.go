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

type BulkUpdateCategoriesHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

// CategoryUpdates is the sparse bulk form. Absent keys are left untouched;
// "parent_id": null moves the categories to the root.
type CategoryUpdates struct {
	IsActive *bool          `json:"is_active"`
	Color    *string        `json:"color" validate:"omitempty,hexcolor"`
	Icon     *string        `json:"icon" validate:"omitempty,max=255"`
	ParentID OptionalString `json:"parent_id" validate:"-"`
}

type BulkUpdateCategoriesRequest struct {
	IDs     []string        `json:"ids" validate:"required,min=1,dive,required"`
	Updates CategoryUpdates `json:"updates"`
}

type BulkUpdateCategoriesResponse struct {
	Updated int64 `json:"updated"`
}

func NewBulkUpdateCategoriesHandler(repository Repository, eventPublisher events.Publisher) *BulkUpdateCategoriesHandler {
	return &BulkUpdateCategoriesHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

func (h BulkUpdateCategoriesHandler) Handle(ctx context.Context, req *BulkUpdateCategoriesRequest) (*BulkUpdateCategoriesResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, validationError("bulk_update", err)
	}

	changes := domain.CategoryChanges{
		IsActive:  req.Updates.IsActive,
		Color:     req.Updates.Color,
		Icon:      req.Updates.Icon,
		ParentSet: req.Updates.ParentID.Set,
		ParentID:  req.Updates.ParentID.Value,
	}
	if changes.Empty() {
		return nil, httperror.BadRequest(
			"category.bulk_update.no_changes",
			"No fields were changed",
			nil,
		)
	}

	ids := uniqueIDs(req.IDs)
	tree, err := loadTree(ctx, h.repository, "bulk_update")
	if err != nil {
		return nil, err
	}
	if err := requireKnown(tree, ids, "bulk_update"); err != nil {
		return nil, err
	}
	if changes.ParentSet {
		if err := checkNewParent(tree, ids, changes.ParentID); err != nil {
			return nil, err
		}
	}

	updated, err := h.repository.UpdateCategories(ctx, ids, changes)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryCycle) {
			return nil, movedIntoSubtree(changes.ParentID)
		}
		zap.L().Error("Failed to bulk update categories", zap.Strings("ids", ids), zap.Error(err))
		return nil, httperror.InternalServerError(
			"category.bulk_update.update_failed",
			"An error occurred while updating the categories",
			nil,
		)
	}

	now := time.Now().UTC()
	publish(ctx, h.eventPublisher, events.CategoryUpdatedEvent, events.CategoryUpdatedPayload{
		IDs:       ids,
		Fields:    changes.Fields(),
		UpdatedBy: actor(ctx),
		UpdatedAt: now,
	})
	if changes.ParentSet {
		publish(ctx, h.eventPublisher, events.CategoryMovedEvent, events.CategoryMovedPayload{
			IDs:      ids,
			ParentID: changes.ParentID,
			MovedBy:  actor(ctx),
			MovedAt:  now,
		})
	}

	return &BulkUpdateCategoriesResponse{
		Updated: updated,
	}, nil
}
