package service

import (
	"context"
	"time"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/errs"
	"ecommerce-api/internal/repository"

	"go.uber.org/zap"
)

// ProductService defines the product business operations
type ProductService interface {
	CreateProduct(ctx context.Context, in *domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uint, in *domain.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	GetProduct(ctx context.Context, id uint) (*domain.Product, error)
	// ListProducts returns published products only
	ListProducts(ctx context.Context, params ListParams) (*repository.Page[domain.Product], error)
}

type productService struct {
	resource[domain.Product]
	now func() time.Time
}

// NewProductService creates a new product service
func NewProductService(store repository.Store[domain.Product], logger *zap.Logger) ProductService {
	return &productService{
		resource: resource[domain.Product]{store: store, name: "Product", logger: logger},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateProduct validates, sanitizes and stores a product, publishing it immediately
func (s *productService) CreateProduct(ctx context.Context, in *domain.ProductInput) (*domain.Product, error) {
	logger := s.logger.With(
		zap.String("layer", "Service"),
		zap.String("operation", "CreateProduct"),
	)

	if in == nil {
		return nil, errs.Validation("Product data is required", map[string]interface{}{
			"field":   "data",
			"message": "Product data must be provided",
		})
	}

	if err := ValidateProductData(in, ActionCreate); err != nil {
		logger.Info("Product rejected", zap.Error(err))
		return nil, err
	}
	clean := SanitizeProductData(*in)
	logWarnings(logger, "Product creation warnings", ProductWarnings(&clean))

	product := &domain.Product{}
	if err := clean.ApplyTo(product); err != nil {
		return nil, errs.Validation("Product validation failed", map[string][]string{"data": {err.Error()}})
	}
	published := s.now()
	product.PublishedAt = &published

	if err := s.create(ctx, product); err != nil {
		logger.Error("Failed to save product", zap.Error(err))
		return nil, err
	}

	logger.Info("Product created successfully",
		zap.Uint("productId", product.ID),
		zap.String("title", product.Title),
		zap.Float64("price", product.Price),
	)
	return product, nil
}

// UpdateProduct applies the present fields of in to an existing product
func (s *productService) UpdateProduct(ctx context.Context, id uint, in *domain.ProductInput) (*domain.Product, error) {
	logger := s.logger.With(
		zap.String("layer", "Service"),
		zap.String("operation", "UpdateProduct"),
		zap.Uint("productId", id),
	)

	if err := ValidateProductData(in, ActionUpdate); err != nil {
		return nil, err
	}
	clean := SanitizeProductData(*in)
	logWarnings(logger, "Product update warnings", ProductWarnings(&clean))

	product, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := clean.ApplyTo(product); err != nil {
		return nil, errs.Validation("Product validation failed", map[string][]string{"data": {err.Error()}})
	}

	if err := s.save(ctx, product); err != nil {
		logger.Error("Failed to update product", zap.Error(err))
		return nil, err
	}

	logger.Info("Product updated successfully")
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uint) error {
	return s.remove(ctx, id)
}

func (s *productService) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	return s.get(ctx, id)
}

func (s *productService) ListProducts(ctx context.Context, params ListParams) (*repository.Page[domain.Product], error) {
	return s.list(ctx, params, repository.Where("published_at IS NOT NULL"))
}
