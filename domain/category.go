package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CategoryNode struct {
	ID           string          `json:"id" db:"id"`
	ParentID     *string         `json:"parent_id" db:"parent_id"`
	Name         string          `json:"name" db:"name"`
	Description  *string         `json:"description,omitempty" db:"description"`
	Icon         *string         `json:"icon,omitempty" db:"icon"`
	Color        *string         `json:"color,omitempty" db:"color"`
	SortOrder    int             `json:"sort_order" db:"sort_order"`
	IsActive     bool            `json:"is_active" db:"is_active"`
	ProductCount *int            `json:"product_count,omitempty" db:"product_count"`
	GoldWeight   decimal.Decimal `json:"gold_weight" db:"gold_weight"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
	Children     []CategoryNode  `json:"children" db:"-"`
}

func (n CategoryNode) IsRoot() bool {
	return n.ParentID == nil || *n.ParentID == ""
}

// Parent returns the parent id, or "" for a root node.
func (n CategoryNode) Parent() string {
	if n.ParentID == nil {
		return ""
	}
	return *n.ParentID
}

func (n CategoryNode) HasProducts() bool {
	return n.ProductCount != nil && *n.ProductCount > 0
}

// CategoryChanges is a sparse update applied to one or more categories. A nil
// field is left as it is. ParentSet distinguishes "move to root" (ParentSet
// with a nil ParentID) from "parent untouched".
type CategoryChanges struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
	IsActive    *bool
	ParentSet   bool
	ParentID    *string
}

// Fields lists the column names the changes touch.
func (c CategoryChanges) Fields() []string {
	var fields []string
	if c.Name != nil {
		fields = append(fields, "name")
	}
	if c.Description != nil {
		fields = append(fields, "description")
	}
	if c.Color != nil {
		fields = append(fields, "color")
	}
	if c.Icon != nil {
		fields = append(fields, "icon")
	}
	if c.IsActive != nil {
		fields = append(fields, "is_active")
	}
	if c.ParentSet {
		fields = append(fields, "parent_id")
	}
	return fields
}

func (c CategoryChanges) Empty() bool {
	return len(c.Fields()) == 0
}

// CategoryStats are the cached product counters of one category.
type CategoryStats struct {
	CategoryID   string          `db:"category_id"`
	ProductCount int             `db:"product_count"`
	GoldWeight   decimal.Decimal `db:"gold_weight"`
}
