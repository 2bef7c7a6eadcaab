package models

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ProductStatus is the publication state of a catalog product.
type ProductStatus string

const (
	StatusActive   ProductStatus = "active"
	StatusInactive ProductStatus = "inactive"
	StatusPending  ProductStatus = "pending"
)

// Product represents a product in the bulk-order catalog.
// Quantity bounds are optional; a nil bound means the product does not
// restrict that side.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Code        string          `gorm:"uniqueIndex;not null" json:"code"`
	Name        string          `gorm:"not null" json:"name"`
	BasePrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"basePrice"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	Status      ProductStatus   `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	MinQuantity *int            `json:"minQuantity,omitempty"`
	MaxQuantity *int            `json:"maxQuantity,omitempty"`
	Colors      pq.StringArray  `gorm:"type:text[]" json:"colors,omitempty"`
	Sizes       pq.StringArray  `gorm:"type:text[]" json:"sizes,omitempty"`
	CategoryID  uint            `gorm:"not null" json:"-"`
	Category    Category        `gorm:"foreignKey:CategoryID" json:"-"`
	PriceBreaks []PriceBreak    `gorm:"foreignKey:ProductID" json:"priceBreaks,omitempty"`
}

func (p *Product) TableName() string {
	return "products"
}

// IsActive reports whether the product can be ordered.
func (p *Product) IsActive() bool {
	return p.Status == StatusActive
}
