package service

import (
	"context"
	"strings"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/metrics"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"go.uber.org/zap"
)

type DeliveryService interface {
	// List accepts a comma separated status filter; empty means every status.
	List(ctx context.Context, status string) ([]domain.Delivery, error)
	Get(ctx context.Context, id int64) (*domain.Delivery, error)
	Assign(ctx context.Context, id, employeeID int64) (*domain.Delivery, error)
	Dispatch(ctx context.Context, id int64) (*domain.Delivery, error)
	Complete(ctx context.Context, id int64, notes string) (*domain.Delivery, error)
	UpdateLocation(ctx context.Context, id int64, location string) (*domain.Delivery, error)
	AvailablePersonnel(ctx context.Context) ([]domain.Employee, error)
	CreateForOrder(ctx context.Context, orderID int64) (*domain.Delivery, error)
	CreateEmployee(ctx context.Context, employee *domain.Employee) (*domain.Employee, error)
}

type deliveryService struct {
	store   repository.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewDeliveryService(store repository.Store, m *metrics.Metrics, logger *zap.Logger) DeliveryService {
	return &deliveryService{
		store:   store,
		metrics: m,
		logger:  logger,
	}
}

func (s *deliveryService) List(ctx context.Context, status string) ([]domain.Delivery, error) {
	statuses, err := domain.ParseDeliveryStatusFilter(status)
	if err != nil {
		return nil, err
	}

	return s.store.Deliveries().List(ctx, domain.DeliveryFilter{Statuses: statuses})
}

func (s *deliveryService) Get(ctx context.Context, id int64) (*domain.Delivery, error) {
	return s.store.Deliveries().GetByID(ctx, id)
}

func (s *deliveryService) Assign(ctx context.Context, id, employeeID int64) (*domain.Delivery, error) {
	d, err := s.store.Deliveries().Assign(ctx, id, employeeID)
	if err != nil {
		if IsExpected(err) {
			mylogger.Warn(
				ctx,
				s.logger,
				"Delivery not assigned",
				zap.Int64("delivery_id", id),
				zap.Int64("employee_id", employeeID),
				zap.Error(err),
			)
		}

		return nil, err
	}

	mylogger.Info(ctx, s.logger, "Delivery assigned", zap.Int64("delivery_id", id), zap.Int64("employee_id", employeeID))
	return d, nil
}

func (s *deliveryService) Dispatch(ctx context.Context, id int64) (*domain.Delivery, error) {
	d, err := s.store.Deliveries().Dispatch(ctx, id)
	if err != nil {
		return nil, err
	}

	mylogger.Info(ctx, s.logger, "Delivery out for delivery", zap.Int64("delivery_id", id))
	return d, nil
}

func (s *deliveryService) Complete(ctx context.Context, id int64, notes string) (*domain.Delivery, error) {
	d, err := s.store.Deliveries().Complete(ctx, id, strings.TrimSpace(notes))
	if err != nil {
		return nil, err
	}

	s.metrics.DeliveryCompleted()
	mylogger.Info(ctx, s.logger, "Delivery completed", zap.Int64("delivery_id", id))

	return d, nil
}

func (s *deliveryService) UpdateLocation(ctx context.Context, id int64, location string) (*domain.Delivery, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrInvalidInput
	}

	return s.store.Deliveries().UpdateLocation(ctx, id, location)
}

func (s *deliveryService) AvailablePersonnel(ctx context.Context) ([]domain.Employee, error) {
	return s.store.Employees().ListByRoles(ctx, domain.AssignableRoles)
}

func (s *deliveryService) CreateForOrder(ctx context.Context, orderID int64) (*domain.Delivery, error) {
	d, err := s.store.Deliveries().CreateForOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	mylogger.Info(ctx, s.logger, "Delivery created for order", zap.Int64("order_id", orderID), zap.Int64("delivery_id", d.ID))
	return d, nil
}

func (s *deliveryService) CreateEmployee(ctx context.Context, employee *domain.Employee) (*domain.Employee, error) {
	if !employee.Role.Valid() {
		return nil, domain.ErrInvalidEmployeeRole
	}

	return s.store.Employees().Create(ctx, employee)
}
