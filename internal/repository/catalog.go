package repository

import (
	"context"
	"errors"
	"time"

	"ecommerce-api/internal/domain"

	"gorm.io/gorm"
)

var ErrCategoryUnavailable = errors.New("category lookup unavailable")

// CategoryLookup resolves the category shown next to a product
type CategoryLookup interface {
	// Category fetches the category by id
	Category(ctx context.Context, id uint) (*domain.Category, error)
}

// GormCategoryLookup reads categories from the catalog tables
type GormCategoryLookup struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewCategoryLookup creates a lookup bounded by timeout; zero disables the bound
func NewCategoryLookup(db *gorm.DB, timeout time.Duration) *GormCategoryLookup {
	return &GormCategoryLookup{db: db, timeout: timeout}
}

// Category fetches the category by id
func (l *GormCategoryLookup) Category(ctx context.Context, id uint) (*domain.Category, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	var category domain.Category
	result := l.db.WithContext(ctx).First(&category, QueryByID, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrCategoryUnavailable, handleError(result.Error))
	}
	return &category, nil
}
