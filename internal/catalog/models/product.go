package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey"                 json:"id"`
	Name          string              `gorm:"not null"                             json:"name"`
	Description   string              `gorm:"not null"                             json:"description"`
	Price         decimal.Decimal     `gorm:"type:numeric(12,2);not null"          json:"price"`
	DiscountPrice decimal.NullDecimal `gorm:"type:numeric(12,2)"                   json:"discountPrice"`
	Category      string              `gorm:"index;not null"                       json:"category"`
	Images        StringList          `gorm:"not null"                             json:"images"`
	Stock         int64               `gorm:"not null;default:0;check:stock >= 0"  json:"stock"`
	Sizes         StringList          `                                            json:"sizes"`
	Colors        StringList          `                                            json:"colors"`
	Featured      bool                `gorm:"index;not null;default:false"         json:"featured"`
	CreatedAt     time.Time           `gorm:"index"                                json:"createdAt"`
	UpdatedAt     time.Time           `                                            json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// EffectivePrice is what a buyer pays per unit.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice.Valid {
		return p.DiscountPrice.Decimal
	}
	return p.Price
}
