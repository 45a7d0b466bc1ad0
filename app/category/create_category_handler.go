package category

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"goldshop/domain"
	"goldshop/pkg/events"
	"goldshop/pkg/httperror"
)

type CreateCategoryHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

type CreateCategoryRequest struct {
	ParentID    *string `json:"parent_id"`
	Name        string  `json:"name" validate:"required,max=120"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
	Icon        *string `json:"icon" validate:"omitempty,max=255"`
	IsActive    *bool   `json:"is_active"`
}

type CreateCategoryResponse struct {
	Category domain.CategoryNode `json:"category"`
}

func NewCreateCategoryHandler(repository Repository, eventPublisher events.Publisher) *CreateCategoryHandler {
	return &CreateCategoryHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

func (h CreateCategoryHandler) Handle(ctx context.Context, req *CreateCategoryRequest) (*CreateCategoryResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return nil, validationError("create", err)
	}

	if req.ParentID != nil {
		if _, err := h.repository.GetCategory(ctx, *req.ParentID); err != nil {
			return nil, httperror.NotFound(
				domain.CodeCategoryNotFound,
				"Parent category not found",
				map[string]any{"parent_id": *req.ParentID},
			)
		}
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	category, err := h.repository.CreateCategory(ctx, domain.CategoryNode{
		ParentID:    req.ParentID,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		IsActive:    active,
	})
	if err != nil {
		zap.L().Error("Failed to create category", zap.Error(err))
		return nil, httperror.InternalServerError(
			"category.create.create_failed",
			"An error occurred while creating the category",
			nil,
		)
	}
	category.Children = []domain.CategoryNode{}

	publish(ctx, h.eventPublisher, events.CategoryCreatedEvent, events.CategoryCreatedPayload{
		ID:        category.ID,
		ParentID:  category.ParentID,
		Name:      category.Name,
		SortOrder: category.SortOrder,
		CreatedBy: actor(ctx),
		CreatedAt: time.Now().UTC(),
	})

	return &CreateCategoryResponse{
		Category: category,
	}, nil
}
