package product

import (
	"context"

	"go.uber.org/zap"

	"goldshop/domain"
	"goldshop/pkg/httperror"
)

const maxPageSize = 100

type GetProductsHandler struct {
	repository Repository
}

func NewGetProductsHandler(repository Repository) *GetProductsHandler {
	return &GetProductsHandler{
		repository: repository,
	}
}

type GetProductsRequest struct {
	CategoryID string `query:"category_id"`
	Page       int    `query:"page"`
	PageSize   int    `query:"pageSize"`
}

type GetProductsResponse struct {
	Products   []domain.Product `json:"products"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalItems int              `json:"totalItems"`
	TotalPages int              `json:"totalPages"`
}

func (h GetProductsHandler) Handle(ctx context.Context, req *GetProductsRequest) (*GetProductsResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}

	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 10
	}
	pageSize = min(pageSize, maxPageSize)

	offset := (page - 1) * pageSize

	var categoryID *string
	if req.CategoryID != "" {
		categoryID = &req.CategoryID
	}

	products, err := h.repository.GetProducts(ctx, categoryID, pageSize, offset)
	if err != nil {
		zap.L().Error("Failed to list products", zap.Error(err))
		return nil, httperror.InternalServerError(
			"product.index.failed",
			"Failed to retrieve products",
			nil,
		)
	}

	totalItems, err := h.repository.CountProducts(ctx, categoryID)
	if err != nil {
		return nil, httperror.InternalServerError(
			"product.count_products.failed",
			"Failed to count products",
			nil,
		)
	}

	totalPages := (totalItems + pageSize - 1) / pageSize

	return &GetProductsResponse{
		Products:   products,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}
