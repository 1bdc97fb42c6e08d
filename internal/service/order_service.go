package service

import (
	"context"
	"errors"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/metrics"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"go.uber.org/zap"
)

type OrderService interface {
	Create(ctx context.Context, input domain.CreateOrderInput) (*domain.Order, error)
	Cancel(ctx context.Context, id int64, reason string) (*domain.Order, error)
	ChangeStatus(ctx context.Context, id int64, status string) (*domain.Order, error)
	Get(ctx context.Context, id int64) (*domain.Order, error)
	// List accepts "", "all", "Active" or a single order status.
	List(ctx context.Context, status string) ([]domain.Order, error)
	ListActive(ctx context.Context) ([]domain.Order, error)
	Items(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
}

type orderService struct {
	store   repository.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewOrderService(store repository.Store, m *metrics.Metrics, logger *zap.Logger) OrderService {
	return &orderService{
		store:   store,
		metrics: m,
		logger:  logger,
	}
}

func (s *orderService) Create(ctx context.Context, input domain.CreateOrderInput) (*domain.Order, error) {
	order, err := s.store.Orders().CreateOrder(ctx, input)
	if err != nil {
		if IsExpected(err) {
			mylogger.Warn(
				ctx,
				s.logger,
				"Order rejected",
				zap.Int64("customer_id", input.CustomerID),
				zap.Error(err),
			)
		}

		return nil, err
	}

	s.metrics.OrderCreated()
	mylogger.Info(
		ctx,
		s.logger,
		"Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("customer_id", order.CustomerID),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)),
	)

	return order, nil
}

func (s *orderService) Cancel(ctx context.Context, id int64, reason string) (*domain.Order, error) {
	order, err := s.store.Orders().CancelOrder(ctx, id, reason)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidOrderTransition) || errors.Is(err, domain.ErrInvalidDeliveryTransition) {
			mylogger.Warn(ctx, s.logger, "Order cannot be cancelled", zap.Int64("order_id", id), zap.Error(err))
		}

		return nil, err
	}

	s.metrics.OrderCancelled()
	mylogger.Info(ctx, s.logger, "Order cancelled", zap.Int64("order_id", id))

	return order, nil
}

func (s *orderService) ChangeStatus(ctx context.Context, id int64, status string) (*domain.Order, error) {
	next, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	order, err := s.store.Orders().ChangeStatus(ctx, id, next)
	if err != nil {
		return nil, err
	}

	if next == domain.OrderStatusCancelled {
		s.metrics.OrderCancelled()
	}
	mylogger.Info(ctx, s.logger, "Order status changed", zap.Int64("order_id", id), zap.String("status", string(next)))

	return order, nil
}

func (s *orderService) Get(ctx context.Context, id int64) (*domain.Order, error) {
	return s.store.Orders().GetByID(ctx, id)
}

func (s *orderService) List(ctx context.Context, status string) ([]domain.Order, error) {
	statuses, err := domain.ParseOrderStatusFilter(status)
	if err != nil {
		return nil, err
	}

	return s.store.Orders().List(ctx, statuses)
}

func (s *orderService) ListActive(ctx context.Context) ([]domain.Order, error) {
	return s.store.Orders().List(ctx, []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusProcessing})
}

func (s *orderService) Items(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	return s.store.Orders().Items(ctx, orderID)
}
