package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/mytheresa/go-bulk-cart/models"
)

// Key identifies a cart line. An empty Color or Size means no selection.
type Key struct {
	ProductID uint
	Color     string
	Size      string
}

// Item is a cart line: a snapshot of the product taken at the last mutation
// plus the order-specific fields. UnitPrice is not recomputed when the
// catalog changes.
type Item struct {
	ProductID   uint                 `json:"productId"`
	Code        string               `json:"code"`
	Name        string               `json:"name"`
	BasePrice   decimal.Decimal      `json:"basePrice"`
	Stock       int                  `json:"stock"`
	Status      models.ProductStatus `json:"status"`
	MinQuantity *int                 `json:"minQuantity,omitempty"`
	MaxQuantity *int                 `json:"maxQuantity,omitempty"`
	PriceBreaks []models.PriceBreak  `json:"priceBreaks,omitempty"`

	Quantity      int             `json:"quantity"`
	SelectedColor string          `json:"selectedColor,omitempty"`
	SelectedSize  string          `json:"selectedSize,omitempty"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

func (i Item) Key() Key {
	return Key{ProductID: i.ProductID, Color: i.SelectedColor, Size: i.SelectedSize}
}

// Product rebuilds the catalog view of the line's snapshot.
func (i Item) Product() models.Product {
	return models.Product{
		ID:          i.ProductID,
		Code:        i.Code,
		Name:        i.Name,
		BasePrice:   i.BasePrice,
		Stock:       i.Stock,
		Status:      i.Status,
		MinQuantity: i.MinQuantity,
		MaxQuantity: i.MaxQuantity,
		PriceBreaks: i.PriceBreaks,
	}
}

// State is the whole cart. Subtotal, Total and ItemCount are derived from
// Items and are only ever set by withItems.
type State struct {
	Items     []Item          `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

// Empty returns the initial cart.
func Empty() State {
	return State{
		Items:    []Item{},
		Subtotal: decimal.Zero,
		Total:    decimal.Zero,
	}
}

// withItems builds a state from items, recomputing every aggregate.
func withItems(items []Item) State {
	s := Empty()
	if items != nil {
		s.Items = items
	}
	for _, item := range s.Items {
		s.Subtotal = s.Subtotal.Add(item.TotalPrice)
		s.ItemCount += item.Quantity
	}
	// No tax or shipping yet.
	s.Total = s.Subtotal
	return s
}

func (s State) indexOf(k Key) int {
	for i, item := range s.Items {
		if item.Key() == k {
			return i
		}
	}
	return -1
}

// Item looks up the line for the product and variant selection.
func (s State) Item(productID uint, color, size string) (Item, bool) {
	idx := s.indexOf(Key{ProductID: productID, Color: color, Size: size})
	if idx < 0 {
		return Item{}, false
	}
	return s.Items[idx].clone(), true
}

// Contains reports whether the product and variant selection has a line.
func (s State) Contains(productID uint, color, size string) bool {
	_, ok := s.Item(productID, color, size)
	return ok
}

// Clone deep-copies the items so the result can be handed to readers.
func (s State) Clone() State {
	items := make([]Item, len(s.Items))
	for i, item := range s.Items {
		items[i] = item.clone()
	}
	s.Items = items
	return s
}

// clone copies the line including its bounds and price breaks.
func (i Item) clone() Item {
	i.MinQuantity = cloneBound(i.MinQuantity)
	i.MaxQuantity = cloneBound(i.MaxQuantity)
	i.PriceBreaks = cloneBreaks(i.PriceBreaks)
	return i
}

func cloneBound(b *int) *int {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

func cloneBreaks(breaks []models.PriceBreak) []models.PriceBreak {
	if breaks == nil {
		return nil
	}
	out := make([]models.PriceBreak, len(breaks))
	for n, b := range breaks {
		if b.Discount != nil {
			d := *b.Discount
			b.Discount = &d
		}
		out[n] = b
	}
	return out
}

// Equal compares two states by value. Amounts are compared numerically.
func (s State) Equal(o State) bool {
	if len(s.Items) != len(o.Items) || s.ItemCount != o.ItemCount ||
		!s.Subtotal.Equal(o.Subtotal) || !s.Total.Equal(o.Total) {
		return false
	}
	for i := range s.Items {
		if !s.Items[i].equal(o.Items[i]) {
			return false
		}
	}
	return true
}

func (i Item) equal(o Item) bool {
	if i.Key() != o.Key() || i.Code != o.Code || i.Name != o.Name ||
		i.Stock != o.Stock || i.Status != o.Status || i.Quantity != o.Quantity ||
		!i.BasePrice.Equal(o.BasePrice) || !i.UnitPrice.Equal(o.UnitPrice) ||
		!i.TotalPrice.Equal(o.TotalPrice) ||
		!equalBound(i.MinQuantity, o.MinQuantity) || !equalBound(i.MaxQuantity, o.MaxQuantity) ||
		len(i.PriceBreaks) != len(o.PriceBreaks) {
		return false
	}
	for n := range i.PriceBreaks {
		a, b := i.PriceBreaks[n], o.PriceBreaks[n]
		if a.MinQty != b.MinQty || !a.Price.Equal(b.Price) {
			return false
		}
	}
	return true
}

func equalBound(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// amount encodes a decimal as a bare JSON number. decimal.Decimal decodes
// both forms, so only encoding needs it.
type amount decimal.Decimal

func (a amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).String()), nil
}

type storedBreak struct {
	MinQty   int     `json:"minQty"`
	Price    amount  `json:"price"`
	Discount *amount `json:"discount,omitempty"`
}

// MarshalJSON writes the aggregates as JSON numbers.
func (s State) MarshalJSON() ([]byte, error) {
	type plain State
	return json.Marshal(struct {
		plain
		Subtotal amount `json:"subtotal"`
		Total    amount `json:"total"`
	}{plain(s), amount(s.Subtotal), amount(s.Total)})
}

// MarshalJSON writes the line's amounts as JSON numbers.
func (i Item) MarshalJSON() ([]byte, error) {
	type plain Item
	var breaks []storedBreak
	for _, b := range i.PriceBreaks {
		sb := storedBreak{MinQty: b.MinQty, Price: amount(b.Price)}
		if b.Discount != nil {
			d := amount(*b.Discount)
			sb.Discount = &d
		}
		breaks = append(breaks, sb)
	}
	return json.Marshal(struct {
		plain
		BasePrice   amount        `json:"basePrice"`
		UnitPrice   amount        `json:"unitPrice"`
		TotalPrice  amount        `json:"totalPrice"`
		PriceBreaks []storedBreak `json:"priceBreaks,omitempty"`
	}{plain(i), amount(i.BasePrice), amount(i.UnitPrice), amount(i.TotalPrice), breaks})
}
