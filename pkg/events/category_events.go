package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CategoryDomain   = "category"
	CategoryExchange = "goldshop.category"
)

const (
	CategoryCreatedEvent = "category.created"
	CategoryUpdatedEvent = "category.updated"
	CategoryMovedEvent   = "category.moved"
	CategoryDeletedEvent = "category.deleted"
)

const (
	EventVersionV1 = "v1"
)

type CategoryCreatedPayload struct {
	ID        string    `json:"id"`
	ParentID  *string   `json:"parentId"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sortOrder"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// CategoryUpdatedPayload lists the categories touched by one write and the
// fields that changed. Counters are set when the worker recounted them.
type CategoryUpdatedPayload struct {
	IDs          []string         `json:"ids"`
	Fields       []string         `json:"fields"`
	ProductCount *int             `json:"productCount,omitempty"`
	GoldWeight   *decimal.Decimal `json:"goldWeight,omitempty"`
	UpdatedBy    string           `json:"updatedBy,omitempty"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

type CategoryMovedPayload struct {
	IDs       []string  `json:"ids"`
	ParentID  *string   `json:"parentId"`
	SortOrder *int      `json:"sortOrder,omitempty"`
	MovedBy   string    `json:"movedBy"`
	MovedAt   time.Time `json:"movedAt"`
}

type CategoryDeletedPayload struct {
	IDs       []string  `json:"ids"`
	Force     bool      `json:"force"`
	DeletedBy string    `json:"deletedBy"`
	DeletedAt time.Time `json:"deletedAt"`
}
