package postgres_test

import (
	"testing"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository/postgres"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository/storetest"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/testsuite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type PostgresStoreSuite struct {
	storetest.StoreSuite
	infra testsuite.BaseSuite
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.infra.SetT(s.T())
	s.infra.SetupPostgres("../../../migrations")

	s.Ctx = s.infra.Ctx
	s.Store = postgres.New(s.infra.DbPool, zap.NewNop())
}

func (s *PostgresStoreSuite) TearDownSuite() {
	s.infra.TearDownInfrastructure()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.infra.TruncateTable("customers, shops, products, orders, order_items, delivery, employees, users, outbox, processed_events")
}

func (s *PostgresStoreSuite) TestCreateForOrderRecreatesMissingDelivery() {
	shop, err := s.Store.Shops().Create(s.Ctx, &domain.Shop{Name: "Tuck Shop"})
	s.Require().NoError(err)
	p, err := s.Store.Products().Create(s.Ctx, &domain.Product{ShopID: shop.ID, Name: "Chai", Price: decimal.NewFromInt(3), IsAvailable: true})
	s.Require().NoError(err)
	c, err := s.Store.Customers().Create(s.Ctx, &domain.Customer{FirstName: "Ali", LastName: "Raza"})
	s.Require().NoError(err)

	input := domain.CreateOrderInput{CustomerID: c.ID, Products: []domain.OrderLine{{ProductID: p.ID, Quantity: 1}}}
	open, err := s.Store.Orders().CreateOrder(s.Ctx, input)
	s.Require().NoError(err)
	cancelled, err := s.Store.Orders().CreateOrder(s.Ctx, input)
	s.Require().NoError(err)
	_, err = s.Store.Orders().CancelOrder(s.Ctx, cancelled.ID, "")
	s.Require().NoError(err)

	_, err = s.infra.DbPool.Exec(s.Ctx, `DELETE FROM delivery`)
	s.Require().NoError(err)

	d, err := s.Store.Deliveries().CreateForOrder(s.Ctx, open.ID)
	s.Require().NoError(err)
	s.Equal(domain.DeliveryStatusPending, d.Status)
	s.Equal(open.ID, d.OrderID)

	d, err = s.Store.Deliveries().CreateForOrder(s.Ctx, cancelled.ID)
	s.Require().NoError(err)
	s.Equal(domain.DeliveryStatusCancelled, d.Status)

	order, err := s.Store.Orders().GetByID(s.Ctx, open.ID)
	s.Require().NoError(err)
	s.Require().NotNil(order.DeliveryID)
	s.Equal(d.ID-1, *order.DeliveryID)
}

func (s *PostgresStoreSuite) TestCancelOrderWithoutDelivery() {
	shop, err := s.Store.Shops().Create(s.Ctx, &domain.Shop{Name: "Tuck Shop"})
	s.Require().NoError(err)
	p, err := s.Store.Products().Create(s.Ctx, &domain.Product{ShopID: shop.ID, Name: "Chai", Price: decimal.NewFromInt(3), IsAvailable: true})
	s.Require().NoError(err)
	c, err := s.Store.Customers().Create(s.Ctx, &domain.Customer{FirstName: "Ali", LastName: "Raza"})
	s.Require().NoError(err)

	order, err := s.Store.Orders().CreateOrder(s.Ctx, domain.CreateOrderInput{CustomerID: c.ID, Products: []domain.OrderLine{{ProductID: p.ID, Quantity: 1}}})
	s.Require().NoError(err)

	_, err = s.infra.DbPool.Exec(s.Ctx, `DELETE FROM delivery WHERE order_id = $1`, order.ID)
	s.Require().NoError(err)

	got, err := s.Store.Orders().CancelOrder(s.Ctx, order.ID, "")
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCancelled, got.Status)
	s.Nil(got.DeliveryID)
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	suite.Run(t, new(PostgresStoreSuite))
}
