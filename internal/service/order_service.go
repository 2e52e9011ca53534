package service

import (
	"context"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/repository"

	"go.uber.org/zap"
)

// OrderService defines the order business operations
type OrderService interface {
	CreateOrder(ctx context.Context, in *domain.OrderInput, userID *uint) (*domain.Order, error)
	UpdateOrder(ctx context.Context, id uint, in *domain.OrderInput) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id uint) error
	GetOrder(ctx context.Context, id uint) (*domain.Order, error)
	ListOrders(ctx context.Context, params ListParams) (*repository.Page[domain.Order], error)
}

type orderService struct {
	resource[domain.Order]
}

// NewOrderService creates a new order service
func NewOrderService(store repository.Store[domain.Order], logger *zap.Logger) OrderService {
	return &orderService{
		resource: resource[domain.Order]{store: store, name: "Order", logger: logger},
	}
}

// CreateOrder validates and stores a new order. A missing order number is generated.
func (s *orderService) CreateOrder(ctx context.Context, in *domain.OrderInput, userID *uint) (*domain.Order, error) {
	logger := s.logger.With(
		zap.String("layer", "Service"),
		zap.String("operation", "CreateOrder"),
	)

	input := *in
	if input.OrderNumber == nil {
		number := GenerateOrderNumber()
		input.OrderNumber = &number
	}

	if err := ValidateOrderData(&input, ActionCreate); err != nil {
		return nil, err
	}
	clean := SanitizeOrderData(input)
	logWarnings(logger, "Order creation warnings", OrderWarnings(clean))

	order := &domain.Order{
		UserID:        userID,
		OrderStatus:   domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
	}
	clean.ApplyTo(order)

	if err := ValidateOrderData(orderSnapshot(order), ActionUpdate); err != nil {
		return nil, err
	}

	if err := s.create(ctx, order); err != nil {
		logger.Error("Failed to save order", zap.Error(err))
		return nil, err
	}

	logger.Info("Order created",
		zap.Uint("orderId", order.ID),
		zap.String("orderNumber", order.OrderNumber),
		zap.Float64("totalAmount", order.TotalAmount),
	)
	return order, nil
}

// UpdateOrder applies in to an existing order. Status changes must follow the workflow
// and the result must still satisfy the cross-field rules.
func (s *orderService) UpdateOrder(ctx context.Context, id uint, in *domain.OrderInput) (*domain.Order, error) {
	logger := s.logger.With(
		zap.String("layer", "Service"),
		zap.String("operation", "UpdateOrder"),
		zap.Uint("orderId", id),
	)

	if err := ValidateOrderData(in, ActionUpdate); err != nil {
		return nil, err
	}
	clean := SanitizeOrderData(*in)
	logWarnings(logger, "Order update warnings", OrderWarnings(clean))

	order, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if clean.OrderStatus != nil && *clean.OrderStatus != order.OrderStatus {
		if err := ValidateOrderWorkflow(order.OrderStatus, *clean.OrderStatus); err != nil {
			logger.Info("Order transition rejected", zap.Error(err))
			return nil, err
		}
	}

	clean.ApplyTo(order)
	if err := ValidateOrderData(orderSnapshot(order), ActionUpdate); err != nil {
		return nil, err
	}

	if err := s.save(ctx, order); err != nil {
		logger.Error("Failed to update order", zap.Error(err))
		return nil, err
	}

	logger.Info("Order updated", zap.String("orderStatus", string(order.OrderStatus)))
	return order, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, id uint) error {
	return s.remove(ctx, id)
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (*domain.Order, error) {
	return s.get(ctx, id)
}

func (s *orderService) ListOrders(ctx context.Context, params ListParams) (*repository.Page[domain.Order], error) {
	return s.list(ctx, params)
}
