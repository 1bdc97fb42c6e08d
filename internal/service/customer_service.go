package service

import (
	"context"
	"strings"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"go.uber.org/zap"
)

type CustomerService interface {
	Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	Get(ctx context.Context, id int64) (*domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
}

type customerService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewCustomerService(store repository.Store, logger *zap.Logger) CustomerService {
	return &customerService{
		store:  store,
		logger: logger,
	}
}

// Create stores a blank email as NULL so several customers may omit it.
func (s *customerService) Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if customer.Email != nil {
		email := strings.TrimSpace(*customer.Email)
		if email == "" {
			customer.Email = nil
		} else {
			customer.Email = &email
		}
	}

	created, err := s.store.Customers().Create(ctx, customer)
	if err != nil {
		return nil, err
	}

	mylogger.Info(ctx, s.logger, "Customer registered", zap.Int64("customer_id", created.ID))
	return created, nil
}

func (s *customerService) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.store.Customers().GetByID(ctx, id)
}

func (s *customerService) List(ctx context.Context) ([]domain.Customer, error) {
	return s.store.Customers().List(ctx)
}
