package service

import (
	"context"
	"strings"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/repository"

	"go.uber.org/zap"
)

// AddressService defines the address operations
type AddressService interface {
	CreateAddress(ctx context.Context, in *domain.AddressInput, userID *uint) (*domain.Address, error)
	UpdateAddress(ctx context.Context, id uint, in *domain.AddressInput) (*domain.Address, error)
	DeleteAddress(ctx context.Context, id uint) error
	GetAddress(ctx context.Context, id uint) (*domain.Address, error)
	ListAddresses(ctx context.Context, params ListParams) (*repository.Page[domain.Address], error)
}

type addressService struct {
	resource[domain.Address]
}

func NewAddressService(store repository.Store[domain.Address], logger *zap.Logger) AddressService {
	return &addressService{
		resource: resource[domain.Address]{store: store, name: "Address", logger: logger},
	}
}

func (s *addressService) CreateAddress(ctx context.Context, in *domain.AddressInput, userID *uint) (*domain.Address, error) {
	address := &domain.Address{UserID: userID}
	sanitizeAddress(in).ApplyTo(address)

	if err := s.create(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

func (s *addressService) UpdateAddress(ctx context.Context, id uint, in *domain.AddressInput) (*domain.Address, error) {
	address, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	sanitizeAddress(in).ApplyTo(address)

	if err := s.save(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

func (s *addressService) DeleteAddress(ctx context.Context, id uint) error {
	return s.remove(ctx, id)
}

func (s *addressService) GetAddress(ctx context.Context, id uint) (*domain.Address, error) {
	return s.get(ctx, id)
}

func (s *addressService) ListAddresses(ctx context.Context, params ListParams) (*repository.Page[domain.Address], error) {
	return s.list(ctx, params)
}

// sanitizeAddress trims every field and upper-cases the postal code
func sanitizeAddress(in *domain.AddressInput) *domain.AddressInput {
	out := &domain.AddressInput{
		Street:  trimmed(in.Street),
		City:    trimmed(in.City),
		Country: trimmed(in.Country),
	}
	if in.PostalCode != nil {
		code := strings.ToUpper(strings.TrimSpace(*in.PostalCode))
		out.PostalCode = &code
	}
	return out
}

// ReviewService defines the review operations
type ReviewService interface {
	CreateReview(ctx context.Context, in *domain.ReviewInput, userID *uint) (*domain.Review, error)
	UpdateReview(ctx context.Context, id uint, in *domain.ReviewInput) (*domain.Review, error)
	DeleteReview(ctx context.Context, id uint) error
	GetReview(ctx context.Context, id uint) (*domain.Review, error)
	ListReviews(ctx context.Context, params ListParams) (*repository.Page[domain.Review], error)
}

type reviewService struct {
	resource[domain.Review]
}

func NewReviewService(store repository.Store[domain.Review], logger *zap.Logger) ReviewService {
	return &reviewService{
		resource: resource[domain.Review]{store: store, name: "Review", logger: logger},
	}
}

func (s *reviewService) CreateReview(ctx context.Context, in *domain.ReviewInput, userID *uint) (*domain.Review, error) {
	review := &domain.Review{UserID: userID}
	sanitizeReview(in).ApplyTo(review)

	if err := s.create(ctx, review); err != nil {
		return nil, err
	}

	s.logger.Info("Review created", zap.Uint("reviewId", review.ID), zap.Int("rating", review.Rating))
	return review, nil
}

func (s *reviewService) UpdateReview(ctx context.Context, id uint, in *domain.ReviewInput) (*domain.Review, error) {
	review, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	sanitizeReview(in).ApplyTo(review)

	if err := s.save(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, id uint) error {
	return s.remove(ctx, id)
}

func (s *reviewService) GetReview(ctx context.Context, id uint) (*domain.Review, error) {
	return s.get(ctx, id)
}

func (s *reviewService) ListReviews(ctx context.Context, params ListParams) (*repository.Page[domain.Review], error) {
	return s.list(ctx, params)
}

func sanitizeReview(in *domain.ReviewInput) *domain.ReviewInput {
	out := *in
	out.Comment = trimmed(in.Comment)
	return &out
}
