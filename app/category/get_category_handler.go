package category

import (
	"context"

	"goldshop/domain"
	"goldshop/pkg/httperror"
)

type GetCategoryHandler struct {
	repository Repository
}

func NewGetCategoryHandler(repository Repository) *GetCategoryHandler {
	return &GetCategoryHandler{
		repository: repository,
	}
}

type GetCategoryRequest struct {
	ID string `params:"id"`
}

type GetCategoryResponse struct {
	Category domain.CategoryNode `json:"category"`
}

// Handle returns the category with its subtree.
func (h GetCategoryHandler) Handle(ctx context.Context, req *GetCategoryRequest) (*GetCategoryResponse, error) {
	tree, err := loadTree(ctx, h.repository, "show")
	if err != nil {
		return nil, err
	}

	category, ok := tree.Node(req.ID)
	if !ok {
		return nil, httperror.NotFound(
			domain.CodeCategoryNotFound,
			"Category not found",
			nil,
		)
	}

	return &GetCategoryResponse{
		Category: category,
	}, nil
}
