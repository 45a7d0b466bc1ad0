package product

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"goldshop/domain"
	"goldshop/pkg/events"
	"goldshop/pkg/httperror"
)

type UpdateProductHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

type UpdateProductRequest struct {
	ProductID   string           `params:"id" validate:"required,uuid"`
	CategoryID  *string          `json:"category_id,omitempty" validate:"omitempty,uuid"`
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Karat       *int             `json:"karat,omitempty" validate:"omitempty,min=1,max=24"`
	WeightGrams *decimal.Decimal `json:"weight_grams,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
}

type UpdateProductResponse struct {
	Product domain.Product `json:"product"`
}

func NewUpdateProductHandler(repository Repository, eventPublisher events.Publisher) *UpdateProductHandler {
	return &UpdateProductHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

func (h UpdateProductHandler) Handle(ctx context.Context, req *UpdateProductRequest) (*UpdateProductResponse, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := validate.Struct(req); err != nil {
		return nil, validationError("update", err)
	}

	product, err := h.repository.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, httperror.NotFound(
				"product.update.not_found",
				"Product not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"product.update.failed",
			"Failed to get product",
			nil,
		)
	}

	previous := product.CategoryID
	if req.CategoryID != nil {
		if err := requireCategory(ctx, h.repository, req.CategoryID, "update"); err != nil {
			return nil, err
		}
		product.CategoryID = req.CategoryID
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Karat != nil {
		product.Karat = *req.Karat
	}
	if req.WeightGrams != nil {
		product.WeightGrams = *req.WeightGrams
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if err := checkAmounts(product.WeightGrams, product.Price, "update"); err != nil {
		return nil, err
	}

	if err := h.repository.UpdateProduct(ctx, product); err != nil {
		zap.L().Error("Failed to update product", zap.String("id", product.ID), zap.Error(err))
		return nil, httperror.InternalServerError(
			"product.update.update_failed",
			"An error occurred while updating the product",
			nil,
		)
	}

	var moved *string
	if !sameCategory(previous, product.CategoryID) {
		moved = previous
	}
	publish(ctx, h.eventPublisher, events.ProductUpdatedEvent, product, moved)

	return &UpdateProductResponse{
		Product: product,
	}, nil
}

func sameCategory(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
