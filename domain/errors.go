package domain

import "errors"

// Error codes shared by the REST service and its clients.
const (
	CodeCategoryHasProducts = "category.bulk_delete.has_products"
	CodeCategoryCycle       = "category.move.cycle"
	CodeCategoryNotFound    = "category.not_found"
)

var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryHasProducts = errors.New("category has products")
	ErrCategoryCycle       = errors.New("category move would create a cycle")
	ErrProductNotFound     = errors.New("product not found")
)
