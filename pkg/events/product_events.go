package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ProductDomain   = "product"
	ProductExchange = "goldshop.product"
)

const (
	ProductCreatedEvent = "product.created"
	ProductUpdatedEvent = "product.updated"
	ProductDeletedEvent = "product.deleted"
)

// ProductPayload is shared by all product events. PreviousCategoryID is set
// when an update moved the product to another category.
type ProductPayload struct {
	ID                 string          `json:"id"`
	CategoryID         *string         `json:"categoryId"`
	PreviousCategoryID *string         `json:"previousCategoryId,omitempty"`
	Name               string          `json:"name"`
	Karat              int             `json:"karat"`
	WeightGrams        decimal.Decimal `json:"weightGrams"`
	Price              decimal.Decimal `json:"price"`
	OccurredAt         time.Time       `json:"occurredAt"`
}

// CategoryIDs returns the categories whose counters the event affects.
func (p ProductPayload) CategoryIDs() []string {
	var ids []string
	if p.CategoryID != nil && *p.CategoryID != "" {
		ids = append(ids, *p.CategoryID)
	}
	if p.PreviousCategoryID != nil && *p.PreviousCategoryID != "" &&
		(p.CategoryID == nil || *p.PreviousCategoryID != *p.CategoryID) {
		ids = append(ids, *p.PreviousCategoryID)
	}
	return ids
}
