package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `db:"id" json:"id"`
	CategoryID  *string         `db:"category_id" json:"category_id"`
	Name        string          `db:"name" json:"name"`
	Karat       int             `db:"karat" json:"karat"`
	WeightGrams decimal.Decimal `db:"weight_grams" json:"weight_grams"`
	Price       decimal.Decimal `db:"price" json:"price"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// FineGoldGrams converts the product weight to pure gold grams for its karat.
func (p Product) FineGoldGrams() decimal.Decimal {
	if p.Karat <= 0 {
		return decimal.Zero
	}
	return p.WeightGrams.Mul(decimal.NewFromInt(int64(p.Karat))).Div(decimal.NewFromInt(24)).Round(3)
}
