package service_test

import (
	"time"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/service"
)

func (s *ServiceSuite) TestCreateOrder() {
	_, burger, chai, customer := s.seed()

	order, err := s.orders.Create(s.ctx, domain.CreateOrderInput{
		CustomerID:    customer.ID,
		Products:      []domain.OrderLine{{ProductID: burger.ID, Quantity: 2}, {ProductID: chai.ID, Quantity: 3}},
		PaymentMethod: "Cash",
	})
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusPending, order.Status)
	s.Equal("881", order.TotalAmount.String())
	s.Len(order.Items, 2)
	s.Require().NotNil(order.DeliveryStatus)
	s.Equal(domain.DeliveryStatusPending, *order.DeliveryStatus)
	s.Equal(float64(1), s.counter("orders_created_total"))
}

func (s *ServiceSuite) TestCreateOrderValidation() {
	_, burger, _, customer := s.seed()

	_, err := s.orders.Create(s.ctx, domain.CreateOrderInput{CustomerID: customer.ID})
	s.ErrorIs(err, domain.ErrEmptyOrder)

	_, err = s.orders.Create(s.ctx, domain.CreateOrderInput{
		CustomerID: customer.ID,
		Products:   []domain.OrderLine{{ProductID: burger.ID, Quantity: 0}},
	})
	s.ErrorIs(err, domain.ErrInvalidQuantity)

	_, err = s.orders.Create(s.ctx, domain.CreateOrderInput{
		CustomerID: customer.ID,
		Products:   []domain.OrderLine{{ProductID: burger.ID, Quantity: domain.MaxQuantity + 1}},
	})
	s.ErrorIs(err, domain.ErrInvalidQuantity)

	_, err = s.orders.Create(s.ctx, domain.CreateOrderInput{
		CustomerID: customer.ID + 50,
		Products:   []domain.OrderLine{{ProductID: burger.ID, Quantity: 1}},
	})
	s.ErrorIs(err, repository.ErrCustomerNotFound)

	s.Equal(float64(0), s.counter("orders_created_total"))

	all, err := s.orders.List(s.ctx, "")
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *ServiceSuite) TestCancelAndStatusFilters() {
	_, burger, _, customer := s.seed()

	place := func() *domain.Order {
		o, err := s.orders.Create(s.ctx, domain.CreateOrderInput{
			CustomerID: customer.ID,
			Products:   []domain.OrderLine{{ProductID: burger.ID, Quantity: 1}},
		})
		s.Require().NoError(err)
		return o
	}

	first, second, third := place(), place(), place()

	cancelled, err := s.orders.Cancel(s.ctx, first.ID, "changed my mind")
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCancelled, cancelled.Status)
	s.Require().NotNil(cancelled.DeliveryStatus)
	s.Equal(domain.DeliveryStatusCancelled, *cancelled.DeliveryStatus)

	_, err = s.orders.Cancel(s.ctx, first.ID, "again")
	s.ErrorIs(err, domain.ErrInvalidOrderTransition)

	_, err = s.orders.ChangeStatus(s.ctx, second.ID, "processing")
	s.Require().NoError(err)
	_, err = s.orders.ChangeStatus(s.ctx, second.ID, "Completed")
	s.Require().NoError(err)

	_, err = s.orders.ChangeStatus(s.ctx, third.ID, "Shipped")
	s.ErrorIs(err, domain.ErrInvalidOrderStatus)

	_, err = s.orders.ChangeStatus(s.ctx, third.ID, "Cancelled")
	s.Require().NoError(err)
	s.Equal(float64(2), s.counter("orders_cancelled_total"))

	active, err := s.orders.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Empty(active)

	fourth := place()
	active, err = s.orders.List(s.ctx, "Active")
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal(fourth.ID, active[0].ID)

	all, err := s.orders.List(s.ctx, "all")
	s.Require().NoError(err)
	s.Len(all, 4)

	completed, err := s.orders.List(s.ctx, "Completed")
	s.Require().NoError(err)
	s.Require().Len(completed, 1)
	s.Equal(second.ID, completed[0].ID)

	_, err = s.orders.List(s.ctx, "bogus")
	s.ErrorIs(err, domain.ErrInvalidOrderStatus)

	items, err := s.orders.Items(s.ctx, fourth.ID)
	s.Require().NoError(err)
	s.Len(items, 1)

	_, err = s.orders.Items(s.ctx, fourth.ID+100)
	s.ErrorIs(err, repository.ErrOrderNotFound)
}

func (s *ServiceSuite) TestReports() {
	shop, burger, chai, customer := s.seed()

	for _, lines := range [][]domain.OrderLine{
		{{ProductID: burger.ID, Quantity: 1}, {ProductID: chai.ID, Quantity: 4}},
		{{ProductID: chai.ID, Quantity: 2}},
	} {
		_, err := s.orders.Create(s.ctx, domain.CreateOrderInput{CustomerID: customer.ID, Products: lines})
		s.Require().NoError(err)
	}

	today := time.Now()
	sales, err := s.reports.ShopSales(s.ctx, shop.ID, today, today)
	s.Require().NoError(err)
	s.Equal(int64(2), sales.OrderCount)
	s.Equal(int64(7), sales.ItemsSold)
	s.Equal("710.5", sales.TotalSales.String())

	_, err = s.reports.ShopSales(s.ctx, shop.ID, today, today.AddDate(0, 0, -1))
	s.ErrorIs(err, domain.ErrInvalidDateRange)

	popular, err := s.reports.PopularProducts(s.ctx, shop.ID, 0)
	s.Require().NoError(err)
	s.Require().Len(popular, 2)
	s.Equal(chai.ID, popular[0].ProductID)
	s.Equal(int64(6), popular[0].QuantitySold)

	popular, err = s.reports.PopularProducts(s.ctx, shop.ID, 1)
	s.Require().NoError(err)
	s.Len(popular, 1)

	_, err = s.reports.PopularProducts(s.ctx, shop.ID, service.MaxPopularLimit+1)
	s.ErrorIs(err, service.ErrInvalidLimit)

	_, err = s.reports.PopularProducts(s.ctx, shop.ID+99, 5)
	s.ErrorIs(err, repository.ErrShopNotFound)
}
