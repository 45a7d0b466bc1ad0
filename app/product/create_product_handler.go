package product

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"goldshop/domain"
	"goldshop/pkg/events"
	"goldshop/pkg/httperror"
)

type CreateProductHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

type CreateProductRequest struct {
	CategoryID  *string         `json:"category_id" validate:"omitempty,uuid"`
	Name        string          `json:"name" validate:"required,max=200"`
	Karat       int             `json:"karat" validate:"required,min=1,max=24"`
	WeightGrams decimal.Decimal `json:"weight_grams"`
	Price       decimal.Decimal `json:"price"`
}

type CreateProductResponse struct {
	Product domain.Product `json:"product"`
}

func NewCreateProductHandler(repository Repository, eventPublisher events.Publisher) *CreateProductHandler {
	return &CreateProductHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

func (h CreateProductHandler) Handle(ctx context.Context, req *CreateProductRequest) (*CreateProductResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return nil, validationError("create", err)
	}
	if err := checkAmounts(req.WeightGrams, req.Price, "create"); err != nil {
		return nil, err
	}
	if err := requireCategory(ctx, h.repository, req.CategoryID, "create"); err != nil {
		return nil, err
	}

	product, err := h.repository.CreateProduct(ctx, domain.Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Karat:       req.Karat,
		WeightGrams: req.WeightGrams,
		Price:       req.Price,
	})
	if err != nil {
		zap.L().Error("Failed to create product", zap.Error(err))
		return nil, httperror.InternalServerError(
			"product.create.create_failed",
			"An error occurred while creating the product",
			nil,
		)
	}

	publish(ctx, h.eventPublisher, events.ProductCreatedEvent, product, nil)

	return &CreateProductResponse{
		Product: product,
	}, nil
}

// checkAmounts requires a positive weight and a non-negative price.
func checkAmounts(weight, price decimal.Decimal, action string) error {
	if !weight.IsPositive() {
		return httperror.BadRequest(
			"product."+action+".invalid_weight",
			"Weight must be greater than zero",
			map[string]any{"weight_grams": weight.String()},
		)
	}
	if price.IsNegative() {
		return httperror.BadRequest(
			"product."+action+".invalid_price",
			"Price must not be negative",
			map[string]any{"price": price.String()},
		)
	}
	return nil
}
