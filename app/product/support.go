package product

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"goldshop/domain"
	"goldshop/pkg/events"
	"goldshop/pkg/httperror"
)

const serviceName = "inventory"

var validate = validator.New(validator.WithRequiredStructEnabled())

func validationError(action string, err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return httperror.BadRequest(
			"product."+action+".validation_failed",
			"Validation failed for the request",
			ve.Error(),
		)
	}

	return httperror.InternalServerError(
		"product."+action+".validation_error",
		"An unexpected validation error occurred",
		nil,
	)
}

func requireCategory(ctx context.Context, repository Repository, categoryID *string, action string) error {
	if categoryID == nil {
		return nil
	}
	_, err := repository.GetCategory(ctx, *categoryID)
	if errors.Is(err, domain.ErrCategoryNotFound) {
		return httperror.NotFound(
			domain.CodeCategoryNotFound,
			"Category not found",
			map[string]any{"category_id": *categoryID},
		)
	}
	if err != nil {
		return httperror.InternalServerError(
			"product."+action+".failed",
			"Failed to get category",
			nil,
		)
	}
	return nil
}

func publish(ctx context.Context, publisher events.Publisher, name string, p domain.Product, previousCategoryID *string) {
	if publisher == nil {
		return
	}

	headers := events.NewHeaders(serviceName)
	event := events.NewEvent(name, events.EventVersionV1, events.ProductPayload{
		ID:                 p.ID,
		CategoryID:         p.CategoryID,
		PreviousCategoryID: previousCategoryID,
		Name:               p.Name,
		Karat:              p.Karat,
		WeightGrams:        p.WeightGrams,
		Price:              p.Price,
		OccurredAt:         time.Now().UTC(),
	}, headers)
	if err := publisher.Publish(ctx, events.ProductExchange, event, headers); err != nil {
		zap.L().Error("Failed to publish product event",
			zap.String("event", name),
			zap.String("productId", p.ID),
			zap.Error(err),
		)
	}
}
