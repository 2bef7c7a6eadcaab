package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mytheresa/go-bulk-cart/app/api"
	domain "github.com/mytheresa/go-bulk-cart/cart"
	"github.com/mytheresa/go-bulk-cart/models"
)

type Item struct {
	ProductID  uint    `json:"productId"`
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Color      string  `json:"color,omitempty"`
	Size       string  `json:"size,omitempty"`
	Quantity   int     `json:"quantity"`
	BasePrice  float64 `json:"basePrice"`
	UnitPrice  float64 `json:"unitPrice"`
	TotalPrice float64 `json:"totalPrice"`
	Stock      int     `json:"stock"`
}

type Response struct {
	Items     []Item  `json:"items"`
	Subtotal  float64 `json:"subtotal"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"itemCount"`
}

type addRequest struct {
	ProductID uint   `json:"productId"`
	Quantity  *int   `json:"quantity"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

type updateRequest struct {
	Quantity int    `json:"quantity"`
	Color    string `json:"color"`
	Size     string `json:"size"`
}

// Store is the cart the handlers operate on. *cart.Cart implements it.
type Store interface {
	Add(ctx context.Context, product models.Product, quantity int, color, size string) (domain.State, error)
	Remove(ctx context.Context, productID uint, color, size string) (domain.State, error)
	UpdateQuantity(ctx context.Context, productID uint, quantity int, color, size string) (domain.State, error)
	Clear(ctx context.Context) (domain.State, error)
	Snapshot() domain.State
	Item(productID uint, color, size string) (domain.Item, bool)
}

type ProductProvider interface {
	GetByID(id uint) (*models.Product, error)
}

type CartHandler struct {
	cart     Store
	products ProductProvider
}

func NewCartHandler(c Store, products ProductProvider) *CartHandler {
	return &CartHandler{cart: c, products: products}
}

func (h *CartHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	api.OKResponse(w, toResponse(h.cart.Snapshot()))
}

func (h *CartHandler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	var input addRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if input.ProductID == 0 {
		api.ErrorResponse(w, http.StatusBadRequest, "Missing productId")
		return
	}

	quantity := 1
	if input.Quantity != nil {
		quantity = *input.Quantity
	}

	product, err := h.products.GetByID(input.ProductID)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			api.ErrorResponse(w, http.StatusNotFound, "Product not found")
		} else {
			api.ErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve product")
		}
		return
	}

	state, err := h.cart.Add(r.Context(), *product, quantity, input.Color, input.Size)
	if err != nil {
		writeRuleError(w, err)
		return
	}
	api.JSONResponse(w, http.StatusCreated, toResponse(state))
}

func (h *CartHandler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var input updateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	state, err := h.cart.UpdateQuantity(r.Context(), id, input.Quantity, input.Color, input.Size)
	if err != nil {
		writeRuleError(w, err)
		return
	}
	api.OKResponse(w, toResponse(state))
}

// HandleRemoveItem always succeeds; removing a line that is not in the cart
// leaves it unchanged.
func (h *CartHandler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	state, err := h.cart.Remove(r.Context(), id, q.Get("color"), q.Get("size"))
	if err != nil {
		writeRuleError(w, err)
		return
	}
	api.OKResponse(w, toResponse(state))
}

func (h *CartHandler) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	item, found := h.cart.Item(id, q.Get("color"), q.Get("size"))
	if !found {
		api.ErrorResponse(w, http.StatusNotFound, domain.ErrItemNotFound.Error())
		return
	}
	api.OKResponse(w, toItem(item))
}

func (h *CartHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	state, err := h.cart.Clear(r.Context())
	if err != nil {
		writeRuleError(w, err)
		return
	}
	api.OKResponse(w, toResponse(state))
}

func productID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("productId"), 10, 64)
	if err != nil || id == 0 {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid productId")
		return 0, false
	}
	return uint(id), true
}

func writeRuleError(w http.ResponseWriter, err error) {
	api.ErrorResponse(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInactiveProduct),
		errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, domain.ErrQuantityBelowMinimum),
		errors.Is(err, domain.ErrQuantityAboveMaximum):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func toResponse(s domain.State) Response {
	items := make([]Item, len(s.Items))
	for i, item := range s.Items {
		items[i] = toItem(item)
	}
	return Response{
		Items:     items,
		Subtotal:  s.Subtotal.InexactFloat64(),
		Total:     s.Total.InexactFloat64(),
		ItemCount: s.ItemCount,
	}
}

func toItem(item domain.Item) Item {
	return Item{
		ProductID:  item.ProductID,
		Code:       item.Code,
		Name:       item.Name,
		Color:      item.SelectedColor,
		Size:       item.SelectedSize,
		Quantity:   item.Quantity,
		BasePrice:  item.BasePrice.InexactFloat64(),
		UnitPrice:  item.UnitPrice.InexactFloat64(),
		TotalPrice: item.TotalPrice.InexactFloat64(),
		Stock:      item.Stock,
	}
}
