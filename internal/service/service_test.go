package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository/memory"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/service"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/metrics"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/utils"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]domain.RefreshSession
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[string]domain.RefreshSession)}
}

func (f *fakeSessions) Save(_ context.Context, s *domain.RefreshSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = *s
	return nil
}

func (f *fakeSessions) Get(_ context.Context, id string) (*domain.RefreshSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return &s, nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[id]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(f.sessions, id)
	return nil
}

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	store    *memory.Store
	metrics  *metrics.Metrics
	sessions *fakeSessions

	shops     service.ShopService
	products  service.ProductService
	customers service.CustomerService
	orders    service.OrderService
	delivery  service.DeliveryService
	reports   service.ReportService
	auth      service.AuthService
	health    service.HealthService
}

func (s *ServiceSuite) SetupTest() {
	logger := zap.NewNop()

	s.ctx = context.Background()
	s.store = memory.New(logger)
	s.metrics = metrics.New()
	s.sessions = newFakeSessions()

	jwtManager, err := utils.NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	s.Require().NoError(err)

	s.shops = service.NewShopService(s.store, logger)
	s.products = service.NewProductService(s.store, logger)
	s.customers = service.NewCustomerService(s.store, logger)
	s.orders = service.NewOrderService(s.store, s.metrics, logger)
	s.delivery = service.NewDeliveryService(s.store, s.metrics, logger)
	s.reports = service.NewReportService(s.store)
	s.auth = service.NewAuthService(s.store, s.sessions, jwtManager, validator.NewValidator(), logger)
	s.health = service.NewHealthService(s.store)
}

func (s *ServiceSuite) counter(name string) float64 {
	families, err := s.metrics.Registry.Gather()
	s.Require().NoError(err)

	for _, f := range families {
		if f.GetName() == name {
			return f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

// seed creates a shop with two products and a customer.
func (s *ServiceSuite) seed() (shop *domain.Shop, burger, chai *domain.Product, customer *domain.Customer) {
	shop, err := s.shops.Create(s.ctx, &domain.Shop{Name: "Raju Canteen", ShopType: "Food"})
	s.Require().NoError(err)

	burger, err = s.products.Create(s.ctx, &domain.Product{ShopID: shop.ID, Name: "Zinger", Price: decimal.RequireFromString("350.499"), IsAvailable: true})
	s.Require().NoError(err)
	chai, err = s.products.Create(s.ctx, &domain.Product{ShopID: shop.ID, Name: "Chai", Price: decimal.NewFromInt(60), IsAvailable: true})
	s.Require().NoError(err)

	customer, err = s.customers.Create(s.ctx, &domain.Customer{FirstName: "Hamza", LastName: "Ali", Hostel: "H9"})
	s.Require().NoError(err)

	return shop, burger, chai, customer
}

func TestServices(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}
