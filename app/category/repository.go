package category

import (
	"context"

	"goldshop/domain"
)

// TreeReader lists every category row.
type TreeReader interface {
	GetCategories(ctx context.Context) ([]domain.CategoryNode, error)
}

type Repository interface {
	TreeReader
	GetCategory(ctx context.Context, id string) (domain.CategoryNode, error)
	CreateCategory(ctx context.Context, c domain.CategoryNode) (domain.CategoryNode, error)
	UpdateCategories(ctx context.Context, ids []string, changes domain.CategoryChanges) (int64, error)
	DeleteCategories(ctx context.Context, ids []string) (int64, error)
	ProductCounts(ctx context.Context, ids []string) (map[string]int, error)
	ReorderCategory(ctx context.Context, id string, parentID *string, sortOrder *int) (int, error)
}

// IconStore keeps uploaded category icons.
type IconStore interface {
	Upload(key string, data []byte) error
	Delete(key string) error
	URL(key string) string
}
