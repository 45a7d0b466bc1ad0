package category

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"goldshop/domain"
	"goldshop/pkg/events"
	"goldshop/pkg/httperror"
)

type UpdateCategoryHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

type UpdateCategoryRequest struct {
	ID          string  `params:"id" validate:"required"`
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Color       *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Icon        *string `json:"icon,omitempty" validate:"omitempty,max=255"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type UpdateCategoryResponse struct {
	Category domain.CategoryNode `json:"category"`
}

func NewUpdateCategoryHandler(repository Repository, eventPublisher events.Publisher) *UpdateCategoryHandler {
	return &UpdateCategoryHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

func (h UpdateCategoryHandler) Handle(ctx context.Context, req *UpdateCategoryRequest) (*UpdateCategoryResponse, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := validate.Struct(req); err != nil {
		return nil, validationError("update", err)
	}

	changes := domain.CategoryChanges{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		IsActive:    req.IsActive,
	}
	if changes.Empty() {
		return nil, httperror.BadRequest(
			"category.update.no_changes",
			"No fields were changed",
			nil,
		)
	}

	if _, err := h.repository.GetCategory(ctx, req.ID); err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return nil, httperror.NotFound(
				domain.CodeCategoryNotFound,
				"Category not found",
				nil,
			)
		}
		return nil, httperror.InternalServerError(
			"category.update.failed",
			"Failed to get category",
			nil,
		)
	}

	if _, err := h.repository.UpdateCategories(ctx, []string{req.ID}, changes); err != nil {
		zap.L().Error("Failed to update category", zap.String("id", req.ID), zap.Error(err))
		return nil, httperror.InternalServerError(
			"category.update.update_failed",
			"An error occurred while updating the category",
			nil,
		)
	}

	category, err := h.repository.GetCategory(ctx, req.ID)
	if err != nil {
		return nil, httperror.InternalServerError(
			"category.update.failed",
			"Failed to get category",
			nil,
		)
	}
	category.Children = nil

	publish(ctx, h.eventPublisher, events.CategoryUpdatedEvent, events.CategoryUpdatedPayload{
		IDs:       []string{req.ID},
		Fields:    changes.Fields(),
		UpdatedBy: actor(ctx),
		UpdatedAt: time.Now().UTC(),
	})

	return &UpdateCategoryResponse{
		Category: category,
	}, nil
}
