package repository

import (
	"context" // Request-scoped cancellation

	"finance_tracker/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// CategoryRepository persists the category catalog
type CategoryRepository struct {
	db *gorm.DB
}

// FindAll returns every category in id order
func (r *CategoryRepository) FindAll(ctx context.Context) ([]domain.Category, error) {
	categories := []domain.Category{}
	err := r.db.WithContext(ctx).Order("id").Find(&categories).Error
	return categories, err
}

// Save inserts or updates a category
func (r *CategoryRepository) Save(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		return nil, translate(err)
	}
	return category, nil
}
