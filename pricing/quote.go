package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/mytheresa/go-bulk-cart/models"
)

// Tier is one row of a product's volume price table.
type Tier struct {
	MinQty   int
	Price    decimal.Decimal
	Discount *decimal.Decimal
	Active   bool
}

// NextTier describes the closest break the quantity has not reached yet.
type NextTier struct {
	MinQty       int
	Price        decimal.Decimal
	UnitsMissing int
}

// Quote is the full price breakdown for ordering a quantity of a product.
type Quote struct {
	ProductID       uint
	Quantity        int
	UnitPrice       decimal.Decimal
	TotalPrice      decimal.Decimal
	BaseTotal       decimal.Decimal
	Savings         decimal.Decimal
	DiscountPercent decimal.Decimal
	Applied         *Tier
	Tiers           []Tier
	Next            *NextTier
}

// NewQuote prices quantity units of p. DiscountPercent is rounded to one
// decimal place; all amounts are exact.
func NewQuote(p models.Product, quantity int) Quote {
	breaks := sortedBreaks(p)
	unit := ResolveUnitPrice(p, quantity)
	qty := decimal.NewFromInt(int64(quantity))

	q := Quote{
		ProductID:       p.ID,
		Quantity:        quantity,
		UnitPrice:       unit,
		TotalPrice:      unit.Mul(qty),
		BaseTotal:       p.BasePrice.Mul(qty),
		DiscountPercent: ResolveDiscountPercent(p, quantity).Round(1),
		Tiers:           make([]Tier, 0, len(breaks)),
	}
	q.Savings = q.BaseTotal.Sub(q.TotalPrice)

	applied, hasApplied := applicableBreak(breaks, quantity)
	for _, b := range breaks {
		q.Tiers = append(q.Tiers, Tier{
			MinQty:   b.MinQty,
			Price:    b.Price,
			Discount: b.Discount,
			Active:   quantity >= b.MinQty,
		})
		if q.Next == nil && b.MinQty > quantity {
			q.Next = &NextTier{
				MinQty:       b.MinQty,
				Price:        b.Price,
				UnitsMissing: b.MinQty - quantity,
			}
		}
	}
	if hasApplied {
		q.Applied = &Tier{
			MinQty:   applied.MinQty,
			Price:    applied.Price,
			Discount: applied.Discount,
			Active:   true,
		}
	}
	return q
}
