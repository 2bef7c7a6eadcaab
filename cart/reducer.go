package cart

import (
	"github.com/shopspring/decimal"

	"github.com/mytheresa/go-bulk-cart/models"
	"github.com/mytheresa/go-bulk-cart/pricing"
)

// Intent is a requested cart transition.
type Intent interface {
	Name() string
}

type AddToCart struct {
	Product  models.Product
	Quantity int
	Color    string
	Size     string
}

type RemoveFromCart struct {
	ProductID uint
	Color     string
	Size      string
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero
// or less removes the line.
type UpdateQuantity struct {
	ProductID uint
	Quantity  int
	Color     string
	Size      string
}

type ClearCart struct{}

func (AddToCart) Name() string      { return "add_to_cart" }
func (RemoveFromCart) Name() string { return "remove_from_cart" }
func (UpdateQuantity) Name() string { return "update_quantity" }
func (ClearCart) Name() string      { return "clear_cart" }

// Reduce applies in to s and returns the next state. s is never modified;
// on error the returned state is s itself.
func Reduce(s State, in Intent) (State, error) {
	switch in := in.(type) {
	case AddToCart:
		return add(s, in)
	case RemoveFromCart:
		return remove(s, Key{ProductID: in.ProductID, Color: in.Color, Size: in.Size}), nil
	case UpdateQuantity:
		return update(s, in)
	case ClearCart:
		return Empty(), nil
	default:
		return s, nil
	}
}

// newItem snapshots p and prices quantity units of it.
func newItem(p models.Product, quantity int, color, size string) Item {
	unit := pricing.ResolveUnitPrice(p, quantity)
	breaks := cloneBreaks(p.PriceBreaks)
	if breaks == nil {
		breaks = []models.PriceBreak{}
	}

	return Item{
		ProductID:     p.ID,
		Code:          p.Code,
		Name:          p.Name,
		BasePrice:     p.BasePrice,
		Stock:         p.Stock,
		Status:        p.Status,
		MinQuantity:   cloneBound(p.MinQuantity),
		MaxQuantity:   cloneBound(p.MaxQuantity),
		PriceBreaks:   breaks,
		Quantity:      quantity,
		SelectedColor: color,
		SelectedSize:  size,
		UnitPrice:     unit,
		TotalPrice:    unit.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// checkBounds validates a line against stock and the product's quantity
// bounds. requested is the quantity asked for by the intent, resulting the
// quantity the line would end up with. The requested quantity is checked
// first (stock, min, max), then a merged total (stock, max).
func checkBounds(p models.Product, requested, resulting int) error {
	if requested > p.Stock {
		return ruleError(ErrInsufficientStock, p.ID, requested, p.Stock)
	}
	if p.MinQuantity != nil && requested < *p.MinQuantity {
		return ruleError(ErrQuantityBelowMinimum, p.ID, requested, *p.MinQuantity)
	}
	if p.MaxQuantity != nil && requested > *p.MaxQuantity {
		return ruleError(ErrQuantityAboveMaximum, p.ID, requested, *p.MaxQuantity)
	}
	if resulting == requested {
		return nil
	}
	if resulting > p.Stock {
		return ruleError(ErrInsufficientStock, p.ID, resulting, p.Stock)
	}
	if p.MaxQuantity != nil && resulting > *p.MaxQuantity {
		return ruleError(ErrQuantityAboveMaximum, p.ID, resulting, *p.MaxQuantity)
	}
	return nil
}

func add(s State, in AddToCart) (State, error) {
	p := in.Product
	if in.Quantity < 1 {
		return s, ruleError(ErrInvalidQuantity, p.ID, in.Quantity, 1)
	}
	if !p.IsActive() {
		return s, ruleError(ErrInactiveProduct, p.ID, in.Quantity, 0)
	}

	idx := s.indexOf(Key{ProductID: p.ID, Color: in.Color, Size: in.Size})
	resulting := in.Quantity
	if idx >= 0 {
		resulting += s.Items[idx].Quantity
	}

	if err := checkBounds(p, in.Quantity, resulting); err != nil {
		return s, err
	}

	line := newItem(p, resulting, in.Color, in.Size)
	items := make([]Item, len(s.Items), len(s.Items)+1)
	copy(items, s.Items)
	if idx >= 0 {
		items[idx] = line
	} else {
		items = append(items, line)
	}
	return withItems(items), nil
}

func remove(s State, k Key) State {
	idx := s.indexOf(k)
	if idx < 0 {
		return s
	}
	items := make([]Item, 0, len(s.Items)-1)
	items = append(items, s.Items[:idx]...)
	items = append(items, s.Items[idx+1:]...)
	return withItems(items)
}

// update re-validates stock and bounds against the line's snapshot; the
// product status is not rechecked.
func update(s State, in UpdateQuantity) (State, error) {
	k := Key{ProductID: in.ProductID, Color: in.Color, Size: in.Size}
	if in.Quantity <= 0 {
		return remove(s, k), nil
	}

	idx := s.indexOf(k)
	if idx < 0 {
		return s, ruleError(ErrItemNotFound, in.ProductID, in.Quantity, 0)
	}

	p := s.Items[idx].Product()
	if err := checkBounds(p, in.Quantity, in.Quantity); err != nil {
		return s, err
	}

	items := make([]Item, len(s.Items))
	copy(items, s.Items)
	items[idx] = newItem(p, in.Quantity, in.Color, in.Size)
	return withItems(items), nil
}
