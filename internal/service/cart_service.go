package service

import (
	"context"
	"errors"
	"strings"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/errs"
	"ecommerce-api/internal/repository"

	"go.uber.org/zap"
)

// CartService defines the cart business operations
type CartService interface {
	CreateCart(ctx context.Context, in *domain.CartInput, userID *uint) (*domain.Cart, error)
	UpdateCart(ctx context.Context, id uint, in *domain.CartInput) (*domain.Cart, error)
	DeleteCart(ctx context.Context, id uint) error
	GetCart(ctx context.Context, id uint) (*domain.Cart, error)
	ListCarts(ctx context.Context, params ListParams) (*repository.Page[domain.Cart], error)
	AddCartItem(ctx context.Context, id uint, item domain.CartItem) (*domain.Cart, error)
	// MergeCarts moves a guest cart into the user's cart at login
	MergeCarts(ctx context.Context, sessionID string, userID uint) (*domain.Cart, error)
}

type cartService struct {
	resource[domain.Cart]
}

// NewCartService creates a new cart service
func NewCartService(store repository.Store[domain.Cart], logger *zap.Logger) CartService {
	return &cartService{
		resource: resource[domain.Cart]{store: store, name: "Cart", logger: logger},
	}
}

func (s *cartService) CreateCart(ctx context.Context, in *domain.CartInput, userID *uint) (*domain.Cart, error) {
	logger := s.logger.With(
		zap.String("layer", "Service"),
		zap.String("operation", "CreateCart"),
	)

	input := *in
	if input.SessionID == nil {
		generated := GenerateSessionID()
		input.SessionID = &generated
	}

	if err := ValidateCartData(&input, ActionCreate); err != nil {
		return nil, err
	}
	clean := SanitizeCartData(input)
	logWarnings(logger, "Cart creation warnings", CartWarnings(clean))

	cart := &domain.Cart{UserID: userID}
	clean.ApplyTo(cart)

	if err := s.create(ctx, cart); err != nil {
		logger.Error("Failed to save cart", zap.Error(err))
		return nil, err
	}

	logger.Info("Cart created", zap.Uint("cartId", cart.ID), zap.Int("items", len(cart.Items)))
	return cart, nil
}

func (s *cartService) UpdateCart(ctx context.Context, id uint, in *domain.CartInput) (*domain.Cart, error) {
	logger := s.logger.With(
		zap.String("layer", "Service"),
		zap.String("operation", "UpdateCart"),
		zap.Uint("cartId", id),
	)

	if err := ValidateCartData(in, ActionUpdate); err != nil {
		return nil, err
	}
	clean := SanitizeCartData(*in)
	logWarnings(logger, "Cart update warnings", CartWarnings(clean))

	cart, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	clean.ApplyTo(cart)

	if err := s.save(ctx, cart); err != nil {
		logger.Error("Failed to update cart", zap.Error(err))
		return nil, err
	}
	return cart, nil
}

func (s *cartService) DeleteCart(ctx context.Context, id uint) error {
	return s.remove(ctx, id)
}

func (s *cartService) GetCart(ctx context.Context, id uint) (*domain.Cart, error) {
	return s.get(ctx, id)
}

func (s *cartService) ListCarts(ctx context.Context, params ListParams) (*repository.Page[domain.Cart], error) {
	return s.list(ctx, params)
}

// AddCartItem validates a single line and merges it into the cart
func (s *cartService) AddCartItem(ctx context.Context, id uint, item domain.CartItem) (*domain.Cart, error) {
	logger := s.logger.With(
		zap.String("layer", "Service"),
		zap.String("operation", "AddCartItem"),
		zap.Uint("cartId", id),
	)

	line := SanitizeCartData(domain.CartInput{Items: []domain.CartItem{item}})
	if err := ValidateCartData(&line, ActionUpdate); err != nil {
		return nil, err
	}

	cart, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateCartItemAddition(cart.Items, line.Items[0]); err != nil {
		logger.Info("Cart item rejected", zap.Error(err))
		return nil, err
	}

	cart.Items = MergeCartItems(cart.Items, line.Items)
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	logger.Info("Cart item added", zap.Int("items", len(cart.Items)))
	return cart, nil
}

// MergeCarts folds the guest cart identified by sessionID into the user's cart. When the
// user has no cart the guest cart is handed over instead.
func (s *cartService) MergeCarts(ctx context.Context, sessionID string, userID uint) (*domain.Cart, error) {
	logger := s.logger.With(
		zap.String("layer", "Service"),
		zap.String("operation", "MergeCarts"),
		zap.Uint("userId", userID),
	)
	sessionID = strings.ToUpper(strings.TrimSpace(sessionID))

	var result *domain.Cart
	err := s.store.Transaction(ctx, func(tx repository.Store[domain.Cart]) error {
		guest, err := tx.FindBy(ctx, repository.Where("session_id = ?", sessionID))
		if err != nil {
			return storeError(err, s.name, "find")
		}

		owned, err := tx.FindBy(ctx, repository.Where("user_id = ? AND id <> ?", userID, guest.ID))
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return storeError(err, s.name, "find")
		}

		if owned == nil {
			guest.UserID = &userID
			result = guest
			return storeError(tx.Save(ctx, guest), s.name, "update")
		}

		merged := MergeCartItems(owned.Items, guest.Items)
		if len(merged) > MaxCartItems {
			return errs.BusinessLogic("Cart item validation failed", map[string][]string{
				"items": {"Cart is full (maximum 20 items)"},
			})
		}
		owned.Items = merged

		if err := tx.Save(ctx, owned); err != nil {
			return storeError(err, s.name, "update")
		}
		if err := tx.Delete(ctx, guest.ID); err != nil {
			return storeError(err, s.name, "delete")
		}
		result = owned
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Carts merged", zap.Uint("cartId", result.ID), zap.Int("items", len(result.Items)))
	return result, nil
}
