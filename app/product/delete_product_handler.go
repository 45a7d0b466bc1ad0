package product

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"goldshop/domain"
	"goldshop/pkg/events"
	"goldshop/pkg/httperror"
)

type DeleteProductHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

func NewDeleteProductHandler(repository Repository, eventPublisher events.Publisher) *DeleteProductHandler {
	return &DeleteProductHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

type DeleteProductRequest struct {
	ProductID string `params:"id" validate:"required,uuid"`
}

type DeleteProductResponse struct {
	Deleted bool `json:"deleted"`
}

func (h DeleteProductHandler) Handle(ctx context.Context, req *DeleteProductRequest) (*DeleteProductResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, validationError("destroy", err)
	}

	product, err := h.repository.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, httperror.NotFound(
				"product.destroy.not_found",
				"Product not found",
				nil,
			)
		}
		return nil, httperror.InternalServerError(
			"product.destroy.failed",
			"Failed to retrieve product",
			nil,
		)
	}

	if err := h.repository.DeleteProduct(ctx, req.ProductID); err != nil {
		zap.L().Error("Failed to delete product", zap.String("id", req.ProductID), zap.Error(err))
		return nil, httperror.InternalServerError(
			"product.destroy.failed",
			"Failed to delete product",
			nil,
		)
	}

	publish(ctx, h.eventPublisher, events.ProductDeletedEvent, product, nil)

	return &DeleteProductResponse{
		Deleted: true,
	}, nil
}
