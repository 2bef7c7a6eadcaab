package models

import "gorm.io/gorm"

// CategorySummary is a category together with the number of active
// products filed under it.
type CategorySummary struct {
	Category
	ActiveProducts int64
}

type CategoriesRepository struct {
	db *gorm.DB
}

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{db: db}
}

func (r *CategoriesRepository) GetCategorySummaries() ([]CategorySummary, error) {
	var summaries []CategorySummary
	err := r.db.Model(&Category{}).
		Select("categories.id, categories.code, categories.name, COUNT(products.id) AS active_products").
		Joins("LEFT JOIN products ON products.category_id = categories.id AND products.status = ?", StatusActive).
		Group("categories.id, categories.code, categories.name").
		Order("categories.code").
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *CategoriesRepository) CreateCategory(category *Category) error {
	return r.db.Create(category).Error
}
