package category

import (
	"context"

	"go.uber.org/zap"

	"goldshop/domain"
	"goldshop/pkg/httperror"
)

type GetCategoryTreeHandler struct {
	repository Repository
}

func NewGetCategoryTreeHandler(repository Repository) *GetCategoryTreeHandler {
	return &GetCategoryTreeHandler{
		repository: repository,
	}
}

type GetCategoryTreeRequest struct{}

type GetCategoryTreeResponse struct {
	Categories []domain.CategoryNode `json:"categories"`
}

func (h GetCategoryTreeHandler) Handle(ctx context.Context, req *GetCategoryTreeRequest) (*GetCategoryTreeResponse, error) {
	forest, err := Forest(ctx, h.repository)
	if err != nil {
		return nil, err
	}

	return &GetCategoryTreeResponse{
		Categories: forest,
	}, nil
}

// Forest returns the nested category tree. It is shared with the gRPC service.
func Forest(ctx context.Context, repository TreeReader) ([]domain.CategoryNode, error) {
	rows, err := repository.GetCategories(ctx)
	if err != nil {
		zap.L().Error("Failed to load category tree", zap.Error(err))
		return nil, httperror.InternalServerError(
			"category.tree.failed",
			"Failed to retrieve categories",
			nil,
		)
	}
	return domain.BuildForest(rows), nil
}
