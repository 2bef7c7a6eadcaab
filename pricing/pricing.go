// Package pricing resolves per-unit prices from a product's volume price
// breaks. Every function is pure: the product is read, never modified.
package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mytheresa/go-bulk-cart/models"
)

var hundred = decimal.NewFromInt(100)

// sortedBreaks returns a copy of the product's breaks ordered by MinQty.
// The sort is stable, so breaks sharing a MinQty keep their listed order.
func sortedBreaks(p models.Product) []models.PriceBreak {
	breaks := make([]models.PriceBreak, len(p.PriceBreaks))
	copy(breaks, p.PriceBreaks)
	sort.SliceStable(breaks, func(i, j int) bool {
		return breaks[i].MinQty < breaks[j].MinQty
	})
	return breaks
}

// applicableBreak scans the sorted breaks and keeps the last one the
// quantity qualifies for. On equal MinQty the break listed last wins.
func applicableBreak(breaks []models.PriceBreak, quantity int) (models.PriceBreak, bool) {
	var (
		found   models.PriceBreak
		matched bool
	)
	for _, b := range breaks {
		if quantity >= b.MinQty {
			found = b
			matched = true
		}
	}
	return found, matched
}

// ResolveUnitPrice returns the per-unit price that applies when ordering
// quantity units of p. It falls back to the base price when no break
// qualifies.
func ResolveUnitPrice(p models.Product, quantity int) decimal.Decimal {
	if b, ok := applicableBreak(sortedBreaks(p), quantity); ok {
		return b.Price
	}
	return p.BasePrice
}

// ResolveTotalPrice is the unit price at quantity times quantity.
func ResolveTotalPrice(p models.Product, quantity int) decimal.Decimal {
	return ResolveUnitPrice(p, quantity).Mul(decimal.NewFromInt(int64(quantity)))
}

// ResolveDiscountPercent is the saving against base price, in percent.
// Products without breaks, free products and non-positive quantities
// report zero.
func ResolveDiscountPercent(p models.Product, quantity int) decimal.Decimal {
	if len(p.PriceBreaks) == 0 || p.BasePrice.IsZero() || quantity <= 0 {
		return decimal.Zero
	}
	baseTotal := p.BasePrice.Mul(decimal.NewFromInt(int64(quantity)))
	saved := baseTotal.Sub(ResolveTotalPrice(p, quantity))
	return saved.Div(baseTotal).Mul(hundred)
}
