package category

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"goldshop/domain"
	"goldshop/internal/middleware"
	"goldshop/pkg/events"
	"goldshop/pkg/httperror"
)

const serviceName = "inventory"

var validate = validator.New(validator.WithRequiredStructEnabled())

// OptionalString tells an explicit JSON null apart from an absent key.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

func validationError(action string, err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return httperror.BadRequest(
			"category."+action+".validation_failed",
			"Validation failed for the request",
			ve.Error(),
		)
	}

	return httperror.InternalServerError(
		"category."+action+".validation_error",
		"An unexpected validation error occurred",
		nil,
	)
}

// loadTree reads every category and nests them.
func loadTree(ctx context.Context, repository TreeReader, action string) (*domain.Tree, error) {
	rows, err := repository.GetCategories(ctx)
	if err != nil {
		zap.L().Error("Failed to load categories", zap.String("action", action), zap.Error(err))
		return nil, httperror.InternalServerError(
			"category."+action+".failed",
			"Failed to retrieve categories",
			nil,
		)
	}
	return domain.NewTree(domain.BuildForest(rows)), nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func requireKnown(tree *domain.Tree, ids []string, action string) error {
	var missing []string
	for _, id := range ids {
		if !tree.Contains(id) {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return httperror.NotFound(
			domain.CodeCategoryNotFound,
			"Category not found",
			map[string]any{"ids": missing, "action": action},
		)
	}
	return nil
}

// checkNewParent rejects a parent that is unknown, one of ids, or below one
// of them. A nil parent is the root.
func checkNewParent(tree *domain.Tree, ids []string, parentID *string) error {
	if parentID == nil {
		return nil
	}
	if !tree.Contains(*parentID) {
		return httperror.NotFound(
			domain.CodeCategoryNotFound,
			"Parent category not found",
			map[string]any{"parent_id": *parentID},
		)
	}
	for _, id := range ids {
		if id == *parentID || tree.IsDescendant(id, *parentID) {
			return httperror.UnprocessableEntity(
				domain.CodeCategoryCycle,
				"A category cannot be moved into itself or one of its descendants",
				map[string]any{"id": id, "parent_id": *parentID},
			)
		}
	}
	return nil
}

// movedIntoSubtree reports a cycle the repository caught under its tree lock,
// after a concurrent move invalidated the snapshot check.
func movedIntoSubtree(parentID *string) error {
	details := map[string]any{}
	if parentID != nil {
		details["parent_id"] = *parentID
	}
	return httperror.UnprocessableEntity(
		domain.CodeCategoryCycle,
		"A category cannot be moved into itself or one of its descendants",
		details,
	)
}

func publish(ctx context.Context, publisher events.Publisher, name string, payload any) {
	if publisher == nil {
		return
	}

	headers := events.NewHeaders(serviceName)
	event := events.NewEvent(name, events.EventVersionV1, payload, headers)
	if err := publisher.Publish(ctx, events.CategoryExchange, event, headers); err != nil {
		zap.L().Error("Failed to publish category event",
			zap.String("event", name),
			zap.String("traceId", headers.TraceID),
			zap.Error(err),
		)
	}
}

func actor(ctx context.Context) string {
	return middleware.UserID(ctx)
}
