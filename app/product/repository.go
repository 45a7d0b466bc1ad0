package product

import (
	"context"

	"goldshop/domain"
)

type Repository interface {
	GetProducts(ctx context.Context, categoryID *string, limit, offset int) ([]domain.Product, error)
	CountProducts(ctx context.Context, categoryID *string) (int, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, p domain.Product) error
	DeleteProduct(ctx context.Context, id string) error
	GetCategory(ctx context.Context, id string) (domain.CategoryNode, error)
}
