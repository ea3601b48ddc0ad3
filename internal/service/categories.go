package service

import (
	"context" // Request-scoped cancellation
	"strings" // Name validation
	"time"    // Cache TTL

	"finance_tracker/internal/domain"     // Importing domain models
	"finance_tracker/internal/repository" // Persistence
	"finance_tracker/internal/utils"      // Redis cache

	"github.com/sirupsen/logrus"     // Logging library
	"golang.org/x/sync/singleflight" // Collapse concurrent cache misses
)

const (
	categoriesCacheKey = "categories:all"
	categoriesCacheTTL = 5 * time.Minute
)

// CategoryService serves the category catalog, cached in Redis when available
type CategoryService struct {
	store *repository.Store
	cache *utils.Cache
	group singleflight.Group
}

// NewCategoryService creates a category service; cache may be nil
func NewCategoryService(store *repository.Store, cache *utils.Cache) *CategoryService {
	return &CategoryService{store: store, cache: cache}
}

// List returns every category
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	var cached []domain.Category
	found, err := s.cache.Get(ctx, categoriesCacheKey, &cached)
	if err != nil {
		logrus.WithField("error", err.Error()).Warn("Category cache read failed")
	} else if found {
		return cached, nil
	}

	v, err, _ := s.group.Do(categoriesCacheKey, func() (any, error) {
		// Shared by every waiting caller, so one cancelled request must not fail the rest
		fillCtx := context.WithoutCancel(ctx)
		categories, err := s.store.Categories.FindAll(fillCtx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(fillCtx, categoriesCacheKey, categories, categoriesCacheTTL); err != nil {
			logrus.WithField("error", err.Error()).Warn("Category cache write failed")
		}
		return categories, nil
	})
	if err != nil {
		return nil, internalErr("failed to list categories", err)
	}
	return v.([]domain.Category), nil
}

// Create adds a category to the catalog
func (s *CategoryService) Create(ctx context.Context, name string) (*domain.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationErr("name is required")
	}
	category, err := s.store.Categories.Save(ctx, &domain.Category{Name: name})
	if err != nil {
		return nil, internalErr("failed to create category", err)
	}
	if err := s.cache.Delete(ctx, categoriesCacheKey); err != nil {
		logrus.WithField("error", err.Error()).Warn("Category cache invalidation failed")
	}
	logrus.WithFields(logrus.Fields{"category_id": category.ID, "name": category.Name}).Info("Category created")
	return category, nil
}
