package service_test

import (
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/shopspring/decimal"
)

func (s *ServiceSuite) TestProductPriceRoundedOnCreateAndUpdate() {
	_, burger, _, _ := s.seed()
	s.Equal("350.5", burger.Price.String())

	price := decimal.RequireFromString("99.994")
	updated, err := s.products.Update(s.ctx, burger.ID, &domain.UpdateProductInput{Price: &price})
	s.Require().NoError(err)
	s.Equal("99.99", updated.Price.String())

	negative := decimal.NewFromInt(-1)
	_, err = s.products.Update(s.ctx, burger.ID, &domain.UpdateProductInput{Price: &negative})
	s.ErrorIs(err, domain.ErrInvalidPrice)
}

func (s *ServiceSuite) TestShopProducts() {
	shop, _, _, _ := s.seed()

	products, err := s.shops.Products(s.ctx, shop.ID)
	s.Require().NoError(err)
	s.Len(products, 2)

	_, err = s.shops.Products(s.ctx, shop.ID+100)
	s.ErrorIs(err, repository.ErrShopNotFound)
}

func (s *ServiceSuite) TestShopDeleteBlockedByOrders() {
	shop, burger, _, customer := s.seed()

	_, err := s.orders.Create(s.ctx, domain.CreateOrderInput{
		CustomerID: customer.ID,
		Products:   []domain.OrderLine{{ProductID: burger.ID, Quantity: 1}},
	})
	s.Require().NoError(err)

	s.ErrorIs(s.shops.Delete(s.ctx, shop.ID), repository.ErrReferencedByOrders)
	s.ErrorIs(s.products.Delete(s.ctx, burger.ID), repository.ErrReferencedByOrders)
}

func (s *ServiceSuite) TestCustomerBlankEmailStoredAsNull() {
	blank := "  "
	for i := 0; i < 2; i++ {
		c, err := s.customers.Create(s.ctx, &domain.Customer{FirstName: "No", LastName: "Mail", Email: &blank})
		s.Require().NoError(err)
		s.Nil(c.Email)
	}

	email := "a@giki.edu.pk"
	_, err := s.customers.Create(s.ctx, &domain.Customer{FirstName: "A", LastName: "B", Email: &email})
	s.Require().NoError(err)
	_, err = s.customers.Create(s.ctx, &domain.Customer{FirstName: "C", LastName: "D", Email: &email})
	s.ErrorIs(err, repository.ErrCustomerAlreadyExists)

	all, err := s.customers.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *ServiceSuite) TestCategories() {
	categories, err := s.products.Categories(s.ctx)
	s.Require().NoError(err)
	s.Len(categories, len(domain.DefaultCategories))
}

func (s *ServiceSuite) TestHealthPing() {
	at, err := s.health.Ping(s.ctx)
	s.Require().NoError(err)
	s.False(at.IsZero())
}
