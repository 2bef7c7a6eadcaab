package models

import (
	"github.com/shopspring/decimal"
)

// PriceBreak is a volume tier: ordering at least MinQty units of the product
// makes every unit cost Price. Discount is the percentage advertised for the
// tier and is never used to compute prices.
type PriceBreak struct {
	ID        uint             `gorm:"primaryKey" json:"-"`
	ProductID uint             `gorm:"index;not null" json:"-"`
	MinQty    int              `gorm:"not null" json:"minQty"`
	Price     decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"price"`
	Discount  *decimal.Decimal `gorm:"type:decimal(5,2)" json:"discount,omitempty"`
}

func (b *PriceBreak) TableName() string {
	return "price_breaks"
}
