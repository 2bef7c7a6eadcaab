package models

import (
	"errors"

	"gorm.io/gorm"
)

type ProductsRepository struct {
	db *gorm.DB
}

// ErrProductNotFound is returned when a product is not found.
var ErrProductNotFound = errors.New("product not found")

type ProductFilters struct {
	CategoryCode  string
	Status        ProductStatus
	PriceLessThan *float64
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

func (r *ProductsRepository) GetFilteredProducts(offset, limit int, filters ProductFilters) ([]Product, int64, error) {
	var products []Product
	var total int64

	query := r.db.Model(&Product{}).
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Preload("Category").
		Preload("PriceBreaks")

	if filters.CategoryCode != "" {
		query = query.Where("categories.code = ?", filters.CategoryCode)
	}
	if filters.Status != "" {
		query = query.Where("products.status = ?", filters.Status)
	}
	if filters.PriceLessThan != nil {
		query = query.Where("products.base_price < ?", *filters.PriceLessThan)
	}

	// Count total after filtering
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("products.id").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// GetByID loads a product with its category and volume price breaks.
func (r *ProductsRepository) GetByID(id uint) (*Product, error) {
	var product Product
	if err := r.db.
		Preload("Category").
		Preload("PriceBreaks").
		First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err // Other DB error
	}
	return &product, nil
}
