package transport

import "github.com/shopspring/decimal"

type CreateProductRequest struct {
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice"`
	Category      string           `json:"category"`
	Images        []string         `json:"images"`
	Stock         int64            `json:"stock"`
	Sizes         []string         `json:"sizes"`
	Colors        []string         `json:"colors"`
	Featured      bool             `json:"featured"`
}

// PatchProductRequest carries only the fields to change. ClearDiscount
// removes an existing discount price.
type PatchProductRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice"`
	ClearDiscount bool             `json:"clearDiscount"`
	Category      *string          `json:"category"`
	Images        []string         `json:"images"`
	Stock         *int64           `json:"stock"`
	Sizes         []string         `json:"sizes"`
	Colors        []string         `json:"colors"`
	Featured      *bool            `json:"featured"`
}

type ListFilter struct {
	Category string
	Search   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Featured bool
}
