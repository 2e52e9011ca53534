package usecase

import (
	"context"
	"time"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/repository"
	"ecommerce-api/internal/service"
	"ecommerce-api/pkg/imaging"

	"go.uber.org/zap"
)

const defaultLookupTimeout = 2 * time.Second

// Enrichment is the outcome of one best-effort enrichment step
type Enrichment[T any] struct {
	Value T
	Err   error
}

// OrElse returns the value, or fallback when the step failed
func (e Enrichment[T]) OrElse(fallback T) T {
	if e.Err != nil {
		return fallback
	}
	return e.Value
}

// ProductView is a product as returned to readers
type ProductView struct {
	domain.Product
	DiscountedPrice *float64 `json:"discountedPrice,omitempty"`
	// Images holds []imaging.ProcessedImage when variants were derived, else the stored records
	Images   interface{}      `json:"images,omitempty"`
	Category *domain.Category `json:"category,omitempty"`
}

// ProductUseCase defines the product use cases
type ProductUseCase interface {
	CreateProduct(ctx context.Context, in *domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uint, in *domain.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	GetProduct(ctx context.Context, id uint) (*ProductView, error)
	ListProducts(ctx context.Context, params service.ListParams) (*repository.Page[ProductView], error)
}

type productUseCase struct {
	service     service.ProductService
	categories  repository.CategoryLookup
	accountName string
	logger      *zap.Logger
	timeout     time.Duration
}

// NewProductUseCase creates a new product use case. categories may be nil and an empty
// accountName disables image variants.
func NewProductUseCase(
	service service.ProductService,
	categories repository.CategoryLookup,
	accountName string,
	logger *zap.Logger,
) ProductUseCase {
	return &productUseCase{
		service:     service,
		categories:  categories,
		accountName: accountName,
		logger:      logger,
		timeout:     defaultLookupTimeout,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, in *domain.ProductInput) (*domain.Product, error) {
	return uc.service.CreateProduct(ctx, in)
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, id uint, in *domain.ProductInput) (*domain.Product, error) {
	return uc.service.UpdateProduct(ctx, id, in)
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id uint) error {
	return uc.service.DeleteProduct(ctx, id)
}

// GetProduct loads one product and enriches it
func (uc *productUseCase) GetProduct(ctx context.Context, id uint) (*ProductView, error) {
	product, err := uc.service.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	view := uc.enrich(ctx, product)
	return &view, nil
}

// ListProducts loads a page of published products and enriches each of them
func (uc *productUseCase) ListProducts(ctx context.Context, params service.ListParams) (*repository.Page[ProductView], error) {
	page, err := uc.service.ListProducts(ctx, params)
	if err != nil {
		return nil, err
	}

	views := make([]ProductView, 0, len(page.Items))
	for i := range page.Items {
		views = append(views, uc.enrich(ctx, &page.Items[i]))
	}

	return &repository.Page[ProductView]{
		Items:    views,
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    page.Total,
	}, nil
}

// enrich adds the derived fields. Failed steps are logged and replaced by their fallback.
func (uc *productUseCase) enrich(ctx context.Context, product *domain.Product) ProductView {
	logger := uc.logger.With(
		zap.String("layer", "UseCase"),
		zap.String("operation", "EnrichProduct"),
		zap.Uint("productId", product.ID),
	)

	view := ProductView{Product: *product}

	view.DiscountedPrice = discountedPrice(product)

	images := uc.imageVariants(product)
	if images.Err != nil {
		logger.Warn("Failed to derive image variants", zap.Error(images.Err))
	}
	view.Images = images.OrElse(product.Images)

	category := uc.category(ctx, product)
	if category.Err != nil {
		logger.Warn("Failed to load category", zap.Error(category.Err))
	}
	view.Category = category.OrElse(nil)

	return view
}

func discountedPrice(product *domain.Product) *float64 {
	price, ok := product.DiscountedPrice()
	if !ok {
		return nil
	}
	return &price
}

func (uc *productUseCase) imageVariants(product *domain.Product) Enrichment[interface{}] {
	if len(product.Images) == 0 {
		return Enrichment[interface{}]{}
	}
	if !imaging.ValidAccountName(uc.accountName) {
		return Enrichment[interface{}]{Value: product.Images}
	}

	processed, err := imaging.ProcessImages(product.Images, uc.accountName)
	if err != nil {
		return Enrichment[interface{}]{Err: err}
	}
	return Enrichment[interface{}]{Value: processed}
}

func (uc *productUseCase) category(ctx context.Context, product *domain.Product) Enrichment[*domain.Category] {
	if uc.categories == nil || product.CategoryID == nil {
		return Enrichment[*domain.Category]{}
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	category, err := uc.categories.Category(ctx, *product.CategoryID)
	return Enrichment[*domain.Category]{Value: category, Err: err}
}
