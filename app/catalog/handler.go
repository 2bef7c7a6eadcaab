package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mytheresa/go-bulk-cart/app/api"
	"github.com/mytheresa/go-bulk-cart/models"
	"github.com/mytheresa/go-bulk-cart/pricing"
)

type Response struct {
	Total    int       `json:"total"`
	Products []Product `json:"products"`
}

type Category struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type Product struct {
	ID         uint     `json:"id"`
	Code       string   `json:"code"`
	Name       string   `json:"name"`
	BasePrice  float64  `json:"basePrice"`
	Status     string   `json:"status"`
	Stock      int      `json:"stock"`
	StockLevel string   `json:"stockLevel"`
	Category   Category `json:"category"`
}

type PriceBreak struct {
	MinQty   int      `json:"minQty"`
	Price    float64  `json:"price"`
	Discount *float64 `json:"discount,omitempty"`
}

type ProductDetail struct {
	Product
	MinQuantity *int         `json:"minQuantity,omitempty"`
	MaxQuantity *int         `json:"maxQuantity,omitempty"`
	Colors      []string     `json:"colors"`
	Sizes       []string     `json:"sizes"`
	PriceBreaks []PriceBreak `json:"priceBreaks"`
}

type Tier struct {
	PriceBreak
	Active bool `json:"active"`
}

type NextTier struct {
	MinQty       int     `json:"minQty"`
	Price        float64 `json:"price"`
	UnitsMissing int     `json:"unitsMissing"`
}

type Quote struct {
	ProductID       uint      `json:"productId"`
	Quantity        int       `json:"quantity"`
	UnitPrice       float64   `json:"unitPrice"`
	TotalPrice      float64   `json:"totalPrice"`
	BaseTotal       float64   `json:"baseTotal"`
	Savings         float64   `json:"savings"`
	DiscountPercent float64   `json:"discountPercent"`
	Applied         *Tier     `json:"appliedTier,omitempty"`
	Tiers           []Tier    `json:"tiers"`
	Next            *NextTier `json:"nextTier,omitempty"`
}

type ProductProvider interface {
	GetFilteredProducts(offset, limit int, filters models.ProductFilters) ([]models.Product, int64, error)
	GetByID(id uint) (*models.Product, error)
}

type CatalogHandler struct {
	repo ProductProvider
}

func NewCatalogHandler(r ProductProvider) *CatalogHandler {
	return &CatalogHandler{
		repo: r,
	}
}

func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	// Parse pagination query params
	offset := 0
	limit := 10

	if oStr := r.URL.Query().Get("offset"); oStr != "" {
		if o, err := strconv.Atoi(oStr); err == nil && o >= 0 {
			offset = o
		}
	}

	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil {
			if l < 1 {
				limit = 1
			} else if l > 100 {
				limit = 100
			} else {
				limit = l
			}
		}
	}

	// Parse filters
	filters := models.ProductFilters{
		CategoryCode: r.URL.Query().Get("category"),
		Status:       models.ProductStatus(r.URL.Query().Get("status")),
	}
	if priceStr := r.URL.Query().Get("price_lt"); priceStr != "" {
		if val, err := strconv.ParseFloat(priceStr, 64); err == nil {
			filters.PriceLessThan = &val
		}
	}

	res, total, err := h.repo.GetFilteredProducts(offset, limit, filters)
	if err != nil {
		api.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	products := make([]Product, len(res))
	for i, p := range res {
		products[i] = toProduct(p)
	}

	api.OKResponse(w, Response{
		Total:    int(total),
		Products: products,
	})
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := h.lookup(w, r)
	if !ok {
		return
	}

	breaks := make([]PriceBreak, len(product.PriceBreaks))
	for i, b := range product.PriceBreaks {
		breaks[i] = toPriceBreak(b.MinQty, b.Price.InexactFloat64(), b.Discount)
	}

	api.OKResponse(w, ProductDetail{
		Product:     toProduct(*product),
		MinQuantity: product.MinQuantity,
		MaxQuantity: product.MaxQuantity,
		Colors:      nonNil(product.Colors),
		Sizes:       nonNil(product.Sizes),
		PriceBreaks: breaks,
	})
}

// HandleGetQuote prices ?quantity= units of a product (default 1) without
// touching the cart.
func (h *CatalogHandler) HandleGetQuote(w http.ResponseWriter, r *http.Request) {
	quantity := 1
	if qStr := r.URL.Query().Get("quantity"); qStr != "" {
		q, err := strconv.Atoi(qStr)
		if err != nil || q < 1 {
			api.ErrorResponse(w, http.StatusBadRequest, "quantity must be a positive integer")
			return
		}
		quantity = q
	}

	product, ok := h.lookup(w, r)
	if !ok {
		return
	}

	q := pricing.NewQuote(*product, quantity)
	tiers := make([]Tier, len(q.Tiers))
	for i, t := range q.Tiers {
		tiers[i] = Tier{
			PriceBreak: toPriceBreak(t.MinQty, t.Price.InexactFloat64(), t.Discount),
			Active:     t.Active,
		}
	}

	resp := Quote{
		ProductID:       q.ProductID,
		Quantity:        q.Quantity,
		UnitPrice:       q.UnitPrice.InexactFloat64(),
		TotalPrice:      q.TotalPrice.InexactFloat64(),
		BaseTotal:       q.BaseTotal.InexactFloat64(),
		Savings:         q.Savings.InexactFloat64(),
		DiscountPercent: q.DiscountPercent.InexactFloat64(),
		Tiers:           tiers,
	}
	if q.Applied != nil {
		resp.Applied = &Tier{
			PriceBreak: toPriceBreak(q.Applied.MinQty, q.Applied.Price.InexactFloat64(), q.Applied.Discount),
			Active:     true,
		}
	}
	if q.Next != nil {
		resp.Next = &NextTier{
			MinQty:       q.Next.MinQty,
			Price:        q.Next.Price.InexactFloat64(),
			UnitsMissing: q.Next.UnitsMissing,
		}
	}
	api.OKResponse(w, resp)
}

// lookup resolves the {id} path value, writing the error response itself
// when the product cannot be returned.
func (h *CatalogHandler) lookup(w http.ResponseWriter, r *http.Request) (*models.Product, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		api.ErrorResponse(w, http.StatusNotFound, "Product not found")
		return nil, false
	}

	product, err := h.repo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			api.ErrorResponse(w, http.StatusNotFound, "Product not found")
		} else {
			api.ErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve product")
		}
		return nil, false
	}
	return product, true
}

func toProduct(p models.Product) Product {
	return Product{
		ID:         p.ID,
		Code:       p.Code,
		Name:       p.Name,
		BasePrice:  p.BasePrice.InexactFloat64(),
		Status:     string(p.Status),
		Stock:      p.Stock,
		StockLevel: string(models.StockLevelOf(p.Stock)),
		Category: Category{
			Code: p.Category.Code,
			Name: p.Category.Name,
		},
	}
}

func toPriceBreak(minQty int, price float64, discount *decimal.Decimal) PriceBreak {
	b := PriceBreak{MinQty: minQty, Price: price}
	if discount != nil {
		d := discount.InexactFloat64()
		b.Discount = &d
	}
	return b
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
