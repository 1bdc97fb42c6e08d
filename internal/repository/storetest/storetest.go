// Package storetest holds the behaviour every repository.Store must share.
// Backends embed StoreSuite, set Store before each test and run it with suite.Run.
package storetest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	outbox "github.com/muhammad-umar-9/GIK-BuyHub/pkg/outbox/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type StoreSuite struct {
	suite.Suite
	Ctx   context.Context
	Store repository.Store
}

func (s *StoreSuite) ctx() context.Context {
	if s.Ctx == nil {
		return context.Background()
	}
	return s.Ctx
}

func (s *StoreSuite) requireMoney(expected string, actual decimal.Decimal) {
	s.T().Helper()
	want := decimal.RequireFromString(expected)
	s.Require().Truef(want.Equal(actual), "expected %s, got %s", want, actual)
}

func (s *StoreSuite) newShop(name string) *domain.Shop {
	shop, err := s.Store.Shops().Create(s.ctx(), &domain.Shop{
		Name:        name,
		ShopType:    "Cafe",
		Location:    "Academic Block",
		OpeningTime: "08:00",
		ClosingTime: "23:00",
	})
	s.Require().NoError(err)
	return shop
}

func (s *StoreSuite) category(name string) domain.Category {
	categories, err := s.Store.Products().ListCategories(s.ctx())
	s.Require().NoError(err)
	for _, c := range categories {
		if c.Name == name {
			return c
		}
	}
	s.FailNow("category not seeded", name)
	return domain.Category{}
}

func (s *StoreSuite) newProduct(shopID int64, name, price string, available bool) *domain.Product {
	p, err := s.Store.Products().Create(s.ctx(), &domain.Product{
		ShopID:      shopID,
		Name:        name,
		Price:       decimal.RequireFromString(price),
		IsAvailable: available,
	})
	s.Require().NoError(err)
	return p
}

func (s *StoreSuite) newCustomer(first, last string) *domain.Customer {
	c, err := s.Store.Customers().Create(s.ctx(), &domain.Customer{
		FirstName:  first,
		LastName:   last,
		Phone:      "0300-1234567",
		Hostel:     "H7",
		RoomNumber: "112",
	})
	s.Require().NoError(err)
	return c
}

func (s *StoreSuite) newEmployee(first string, role domain.EmployeeRole) *domain.Employee {
	e, err := s.Store.Employees().Create(s.ctx(), &domain.Employee{
		FirstName:     first,
		LastName:      "Khan",
		Role:          role,
		ContactNumber: "0311-7654321",
	})
	s.Require().NoError(err)
	return e
}

func (s *StoreSuite) newOrder(customerID int64, lines ...domain.OrderLine) *domain.Order {
	o, err := s.Store.Orders().CreateOrder(s.ctx(), domain.CreateOrderInput{
		CustomerID:    customerID,
		Products:      lines,
		PaymentMethod: "Cash",
	})
	s.Require().NoError(err)
	return o
}

func line(productID int64, quantity int) domain.OrderLine {
	return domain.OrderLine{ProductID: productID, Quantity: quantity}
}

func (s *StoreSuite) drainOutbox() []*outbox.OutboxEvent {
	var events []*outbox.OutboxEvent
	for {
		n, err := s.Store.Outbox().Relay(s.ctx(), 100, func(_ context.Context, e *outbox.OutboxEvent) error {
			events = append(events, e)
			return nil
		})
		s.Require().NoError(err)
		if n == 0 {
			return events
		}
	}
}

func eventTypes(events []*outbox.OutboxEvent) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.EventType)
	}
	return out
}

func (s *StoreSuite) TestShops() {
	b := s.newShop("Raju Canteen")
	a := s.newShop("Ayaan Bakers")

	shops, err := s.Store.Shops().List(s.ctx())
	s.Require().NoError(err)
	s.Require().Len(shops, 2)
	s.Equal(a.ID, shops[0].ID)
	s.Equal(b.ID, shops[1].ID)

	name := "Raju Tuck Shop"
	updated, err := s.Store.Shops().Update(s.ctx(), b.ID, &domain.UpdateShopInput{Name: &name})
	s.Require().NoError(err)
	s.Equal(name, updated.Name)
	s.Equal("Academic Block", updated.Location)

	_, err = s.Store.Shops().Update(s.ctx(), 999999, &domain.UpdateShopInput{Name: &name})
	s.ErrorIs(err, repository.ErrShopNotFound)

	_, err = s.Store.Shops().GetByID(s.ctx(), 999999)
	s.ErrorIs(err, repository.ErrShopNotFound)

	s.Require().NoError(s.Store.Shops().Delete(s.ctx(), a.ID))
	s.ErrorIs(s.Store.Shops().Delete(s.ctx(), a.ID), repository.ErrShopNotFound)
}

func (s *StoreSuite) TestShopDeleteRemovesUnorderedProducts() {
	shop := s.newShop("Tuck Shop")
	p := s.newProduct(shop.ID, "Samosa", "40.00", true)

	s.Require().NoError(s.Store.Shops().Delete(s.ctx(), shop.ID))

	_, err := s.Store.Products().GetByID(s.ctx(), p.ID)
	s.ErrorIs(err, repository.ErrProductNotFound)
}

func (s *StoreSuite) TestDeleteBlockedByOrders() {
	shop := s.newShop("Tuck Shop")
	p := s.newProduct(shop.ID, "Samosa", "40.00", true)
	c := s.newCustomer("Ali", "Raza")
	s.newOrder(c.ID, line(p.ID, 1))

	s.ErrorIs(s.Store.Shops().Delete(s.ctx(), shop.ID), repository.ErrReferencedByOrders)
	s.ErrorIs(s.Store.Products().Delete(s.ctx(), p.ID), repository.ErrReferencedByOrders)

	_, err := s.Store.Products().GetByID(s.ctx(), p.ID)
	s.NoError(err)
	_, err = s.Store.Shops().GetByID(s.ctx(), shop.ID)
	s.NoError(err)
}

func (s *StoreSuite) TestProducts() {
	shop := s.newShop("Tuck Shop")
	other := s.newShop("Juice Corner")
	bakery := s.category("Bakery")

	p, err := s.Store.Products().Create(s.ctx(), &domain.Product{
		ShopID:      shop.ID,
		CategoryID:  &bakery.ID,
		Name:        "Chocolate Cake",
		Price:       decimal.RequireFromString("250.00"),
		IsAvailable: true,
	})
	s.Require().NoError(err)
	s.Equal("Tuck Shop", p.ShopName)
	s.Equal("Bakery", p.CategoryName)
	s.requireMoney("250", p.Price)

	s.newProduct(other.ID, "Mango Shake", "180.00", true)

	all, err := s.Store.Products().List(s.ctx(), domain.ProductFilter{})
	s.Require().NoError(err)
	s.Len(all, 2)
	s.Equal(p.ID, all[0].ID)

	byShop, err := s.Store.Products().List(s.ctx(), domain.ProductFilter{ShopID: &other.ID})
	s.Require().NoError(err)
	s.Require().Len(byShop, 1)
	s.Equal("Mango Shake", byShop[0].Name)

	byCategory, err := s.Store.Products().List(s.ctx(), domain.ProductFilter{CategoryID: &bakery.ID, ShopID: &shop.ID})
	s.Require().NoError(err)
	s.Require().Len(byCategory, 1)
	s.Equal(p.ID, byCategory[0].ID)

	price := decimal.RequireFromString("275.50")
	available := false
	updated, err := s.Store.Products().Update(s.ctx(), p.ID, &domain.UpdateProductInput{Price: &price, IsAvailable: &available})
	s.Require().NoError(err)
	s.requireMoney("275.50", updated.Price)
	s.False(updated.IsAvailable)
	s.Equal("Chocolate Cake", updated.Name)

	missing := int64(999999)
	_, err = s.Store.Products().Create(s.ctx(), &domain.Product{ShopID: missing, Name: "Ghost", Price: decimal.NewFromInt(1)})
	s.ErrorIs(err, repository.ErrShopNotFound)

	_, err = s.Store.Products().Create(s.ctx(), &domain.Product{ShopID: shop.ID, CategoryID: &missing, Name: "Ghost", Price: decimal.NewFromInt(1)})
	s.ErrorIs(err, repository.ErrCategoryNotFound)

	_, err = s.Store.Products().Update(s.ctx(), missing, &domain.UpdateProductInput{Price: &price})
	s.ErrorIs(err, repository.ErrProductNotFound)

	s.Require().NoError(s.Store.Products().Delete(s.ctx(), p.ID))
	s.ErrorIs(s.Store.Products().Delete(s.ctx(), p.ID), repository.ErrProductNotFound)
}

func (s *StoreSuite) TestCategoriesSeeded() {
	categories, err := s.Store.Products().ListCategories(s.ctx())
	s.Require().NoError(err)

	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	s.Equal([]string{"Bakery", "Beverages", "Desi", "Fast Food", "Stationery"}, names)
}

func (s *StoreSuite) TestCustomers() {
	email := "ali@giki.edu.pk"
	first, err := s.Store.Customers().Create(s.ctx(), &domain.Customer{FirstName: "Zain", LastName: "Ali", Email: &email})
	s.Require().NoError(err)
	s.NotZero(first.ID)

	_, err = s.Store.Customers().Create(s.ctx(), &domain.Customer{FirstName: "Other", LastName: "Ali", Email: &email})
	s.ErrorIs(err, repository.ErrCustomerAlreadyExists)

	s.newCustomer("Ahmed", "Butt")
	s.newCustomer("Ahmed", "Awan")

	customers, err := s.Store.Customers().List(s.ctx())
	s.Require().NoError(err)
	s.Require().Len(customers, 3)
	s.Equal("Awan", customers[0].LastName)
	s.Equal("Butt", customers[1].LastName)
	s.Equal("Zain", customers[2].FirstName)

	got, err := s.Store.Customers().GetByID(s.ctx(), first.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.Email)
	s.Equal(email, *got.Email)

	_, err = s.Store.Customers().GetByID(s.ctx(), 999999)
	s.ErrorIs(err, repository.ErrCustomerNotFound)
}

func (s *StoreSuite) TestCreateOrder() {
	shop := s.newShop("Tuck Shop")
	paratha := s.newProduct(shop.ID, "Paratha Roll", "12.50", true)
	chai := s.newProduct(shop.ID, "Chai", "3.00", true)
	c := s.newCustomer("Ali", "Raza")

	order := s.newOrder(c.ID, line(paratha.ID, 2), line(chai.ID, 1), line(paratha.ID, 1))

	s.Equal(domain.OrderStatusPending, order.Status)
	s.Equal(c.ID, order.CustomerID)
	s.Equal("Ali Raza", order.CustomerName)
	s.Equal("H7", order.Hostel)
	s.requireMoney("40.50", order.TotalAmount)
	s.Require().Len(order.Items, 3)
	s.requireMoney("25.00", order.Items[0].Subtotal)
	s.requireMoney("12.50", order.Items[2].UnitPrice)
	s.Equal("Paratha Roll", order.Items[0].ProductName)
	s.Equal("Tuck Shop", order.Items[0].ShopName)

	s.Require().NotNil(order.DeliveryID)
	s.Require().NotNil(order.DeliveryStatus)
	s.Equal(domain.DeliveryStatusPending, *order.DeliveryStatus)

	price := decimal.RequireFromString("99.00")
	_, err := s.Store.Products().Update(s.ctx(), paratha.ID, &domain.UpdateProductInput{Price: &price})
	s.Require().NoError(err)

	items, err := s.Store.Orders().Items(s.ctx(), order.ID)
	s.Require().NoError(err)
	s.Require().Len(items, 3)
	s.requireMoney("12.50", items[0].UnitPrice)

	s.Equal([]string{domain.EventOrderCreated}, eventTypes(s.drainOutbox()))
}

func (s *StoreSuite) TestCreateOrderRejected() {
	shop := s.newShop("Tuck Shop")
	p := s.newProduct(shop.ID, "Chai", "3.00", true)
	soldOut := s.newProduct(shop.ID, "Biryani", "220.00", false)
	feast := s.newProduct(shop.ID, "Mess Feast", "100000.00", true)
	c := s.newCustomer("Ali", "Raza")

	cases := []struct {
		name  string
		input domain.CreateOrderInput
		err   error
	}{
		{"empty", domain.CreateOrderInput{CustomerID: c.ID}, domain.ErrEmptyOrder},
		{"zero quantity", domain.CreateOrderInput{CustomerID: c.ID, Products: []domain.OrderLine{line(p.ID, 0)}}, domain.ErrInvalidQuantity},
		{"unknown customer", domain.CreateOrderInput{CustomerID: 999999, Products: []domain.OrderLine{line(p.ID, 1)}}, repository.ErrCustomerNotFound},
		{"unknown product", domain.CreateOrderInput{CustomerID: c.ID, Products: []domain.OrderLine{line(p.ID, 1), line(999999, 1)}}, repository.ErrProductNotFound},
		{"unavailable product", domain.CreateOrderInput{CustomerID: c.ID, Products: []domain.OrderLine{line(soldOut.ID, 1)}}, repository.ErrProductUnavailable},
		{"quantity over cap", domain.CreateOrderInput{CustomerID: c.ID, Products: []domain.OrderLine{line(p.ID, domain.MaxQuantity+1)}}, domain.ErrInvalidQuantity},
		{"total too large", domain.CreateOrderInput{CustomerID: c.ID, Products: []domain.OrderLine{line(feast.ID, domain.MaxQuantity)}}, domain.ErrOrderTotalTooLarge},
	}

	for _, tc := range cases {
		_, err := s.Store.Orders().CreateOrder(s.ctx(), tc.input)
		s.ErrorIs(err, tc.err, tc.name)
	}

	orders, err := s.Store.Orders().List(s.ctx(), nil)
	s.Require().NoError(err)
	s.Empty(orders)

	deliveries, err := s.Store.Deliveries().List(s.ctx(), domain.DeliveryFilter{})
	s.Require().NoError(err)
	s.Empty(deliveries)

	s.Empty(s.drainOutbox())
}

func (s *StoreSuite) TestCancelOrder() {
	shop := s.newShop("Tuck Shop")
	p := s.newProduct(shop.ID, "Chai", "3.00", true)
	c := s.newCustomer("Ali", "Raza")
	order := s.newOrder(c.ID, line(p.ID, 2))

	cancelled, err := s.Store.Orders().CancelOrder(s.ctx(), order.ID, "changed my mind")
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCancelled, cancelled.Status)
	s.Require().NotNil(cancelled.CancellationReason)
	s.Equal("changed my mind", *cancelled.CancellationReason)
	s.Require().NotNil(cancelled.DeliveryStatus)
	s.Equal(domain.DeliveryStatusCancelled, *cancelled.DeliveryStatus)

	_, err = s.Store.Orders().CancelOrder(s.ctx(), order.ID, "")
	s.ErrorIs(err, domain.ErrInvalidOrderTransition)

	_, err = s.Store.Orders().CancelOrder(s.ctx(), 999999, "")
	s.ErrorIs(err, repository.ErrOrderNotFound)

	s.Equal([]string{domain.EventOrderCreated, domain.EventOrderCancelled}, eventTypes(s.drainOutbox()))
}

func (s *StoreSuite) TestCancelOrderBlockedOnceDispatched() {
	shop := s.newShop("Tuck Shop")
	p := s.newProduct(shop.ID, "Chai", "3.00", true)
	c := s.newCustomer("Ali", "Raza")
	rider := s.newEmployee("Bilal", domain.EmployeeRoleDelivery)
	order := s.newOrder(c.ID, line(p.ID, 1))

	_, err := s.Store.Deliveries().Assign(s.ctx(), *order.DeliveryID, rider.ID)
	s.Require().NoError(err)
	_, err = s.Store.Deliveries().Dispatch(s.ctx(), *order.DeliveryID)
	s.Require().NoError(err)

	_, err = s.Store.Orders().CancelOrder(s.ctx(), order.ID, "too late")
	s.ErrorIs(err, domain.ErrInvalidDeliveryTransition)

	got, err := s.Store.Orders().GetByID(s.ctx(), order.ID)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusPending, got.Status)
	s.Nil(got.CancellationReason)
	s.Equal(domain.DeliveryStatusOutForDelivery, *got.DeliveryStatus)
}

func (s *StoreSuite) TestCancelCompletedOrderRejected() {
	shop := s.newShop("Tuck Shop")
	p := s.newProduct(shop.ID, "Chai", "3.00", true)
	c := s.newCustomer("Ali", "Raza")
	order := s.newOrder(c.ID, line(p.ID, 1))

	_, err := s.Store.Orders().ChangeStatus(s.ctx(), order.ID, domain.OrderStatusProcessing)
	s.Require().NoError(err)
	_, err = s.Store.Orders().ChangeStatus(s.ctx(), order.ID, domain.OrderStatusCompleted)
	s.Require().NoError(err)

	_, err = s.Store.Orders().CancelOrder(s.ctx(), order.ID, "too late")
	s.ErrorIs(err, domain.ErrInvalidOrderTransition)

	got, err := s.Store.Orders().GetByID(s.ctx(), order.ID)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCompleted, got.Status)
	s.Nil(got.CancellationReason)
	s.Require().NotNil(got.DeliveryStatus)
	s.Equal(domain.DeliveryStatusPending, *got.DeliveryStatus)

	delivery, err := s.Store.Deliveries().GetByID(s.ctx(), *order.DeliveryID)
	s.Require().NoError(err)
	s.Equal(domain.DeliveryStatusPending, delivery.Status)

	s.Equal([]string{
		domain.EventOrderCreated,
		domain.EventOrderStatusChanged,
		domain.EventOrderStatusChanged,
	}, eventTypes(s.drainOutbox()))
}

func (s *StoreSuite) TestChangeStatus() {
	shop := s.newShop("Tuck Shop")
	p := s.newProduct(shop.ID, "Chai", "3.00", true)
	c := s.newCustomer("Ali", "Raza")
	order := s.newOrder(c.ID, line(p.ID, 1))

	got, err := s.Store.Orders().ChangeStatus(s.ctx(), order.ID, domain.OrderStatusProcessing)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusProcessing, got.Status)

	got, err = s.Store.Orders().ChangeStatus(s.ctx(), order.ID, domain.OrderStatusCompleted)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCompleted, got.Status)

	_, err = s.Store.Orders().ChangeStatus(s.ctx(), order.ID, domain.OrderStatusProcessing)
	s.ErrorIs(err, domain.ErrInvalidOrderTransition)

	_, err = s.Store.Orders().ChangeStatus(s.ctx(), order.ID, domain.OrderStatus("Shipped"))
	s.ErrorIs(err, domain.ErrInvalidOrderStatus)

	_, err = s.Store.Orders().ChangeStatus(s.ctx(), 999999, domain.OrderStatusProcessing)
	s.ErrorIs(err, repository.ErrOrderNotFound)

	second := s.newOrder(c.ID, line(p.ID, 1))
	got, err = s.Store.Orders().ChangeStatus(s.ctx(), second.ID, domain.OrderStatusCancelled)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCancelled, got.Status)
	s.Equal(domain.DeliveryStatusCancelled, *got.DeliveryStatus)
	s.Nil(got.CancellationReason)

	s.Equal([]string{
		domain.EventOrderCreated,
		domain.EventOrderStatusChanged,
		domain.EventOrderStatusChanged,
		domain.EventOrderCreated,
		domain.EventOrderCancelled,
	}, eventTypes(s.drainOutbox()))
}

func (s *StoreSuite) TestListOrders() {
	shop := s.newShop("Tuck Shop")
	p := s.newProduct(shop.ID, "Chai", "3.00", true)
	c := s.newCustomer("Ali", "Raza")

	pending := s.newOrder(c.ID, line(p.ID, 1))
	processing := s.newOrder(c.ID, line(p.ID, 2))
	cancelled := s.newOrder(c.ID, line(p.ID, 3))

	_, err := s.Store.Orders().ChangeStatus(s.ctx(), processing.ID, domain.OrderStatusProcessing)
	s.Require().NoError(err)
	_, err = s.Store.Orders().CancelOrder(s.ctx(), cancelled.ID, "")
	s.Require().NoError(err)

	all, err := s.Store.Orders().List(s.ctx(), nil)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(cancelled.ID, all[0].ID)
	s.Equal(pending.ID, all[2].ID)
	s.Equal("Ali Raza", all[0].CustomerName)

	active, err := s.Store.Orders().List(s.ctx(), []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusProcessing})
	s.Require().NoError(err)
	s.Require().Len(active, 2)
	s.Equal(processing.ID, active[0].ID)
	s.Equal(pending.ID, active[1].ID)

	_, err = s.Store.Orders().Items(s.ctx(), 999999)
	s.ErrorIs(err, repository.ErrOrderNotFound)
}

func (s *StoreSuite) TestDeliveryLifecycle() {
	shop := s.newShop("Tuck Shop")
	p := s.newProduct(shop.ID, "Chai", "3.00", true)
	c := s.newCustomer("Ali", "Raza")
	rider := s.newEmployee("Bilal", domain.EmployeeRoleDelivery)
	order := s.newOrder(c.ID, line(p.ID, 2))
	id := *order.DeliveryID

	d, err := s.Store.Deliveries().GetByID(s.ctx(), id)
	s.Require().NoError(err)
	s.Equal(domain.DeliveryStatusPending, d.Status)
	s.Nil(d.AssignedTime)
	s.Nil(d.DeliveryPerson)
	s.Equal("Ali Raza", d.CustomerName)
	s.Equal("0300-1234567", d.CustomerPhone)
	s.Require().Len(d.Items, 1)
	s.Equal("Chai", d.Items[0].ProductName)

	d, err = s.Store.Deliveries().Assign(s.ctx(), id, rider.ID)
	s.Require().NoError(err)
	s.Equal(domain.DeliveryStatusAssigned, d.Status)
	s.NotNil(d.AssignedTime)
	s.Require().NotNil(d.EmployeeID)
	s.Equal(rider.ID, *d.EmployeeID)
	s.Require().NotNil(d.DeliveryPerson)
	s.Equal("Bilal Khan", *d.DeliveryPerson)

	_, err = s.Store.Deliveries().Assign(s.ctx(), id, rider.ID)
	s.ErrorIs(err, domain.ErrInvalidDeliveryTransition)

	d, err = s.Store.Deliveries().Dispatch(s.ctx(), id)
	s.Require().NoError(err)
	s.Equal(domain.DeliveryStatusOutForDelivery, d.Status)

	d, err = s.Store.Deliveries().Complete(s.ctx(), id, "left at the door")
	s.Require().NoError(err)
	s.Equal(domain.DeliveryStatusDelivered, d.Status)
	s.NotNil(d.DeliveryTime)
	s.Equal("left at the door", d.DeliveryNotes)

	_, err = s.Store.Deliveries().Dispatch(s.ctx(), id)
	s.ErrorIs(err, domain.ErrInvalidDeliveryTransition)

	_, err = s.Store.Deliveries().Complete(s.ctx(), id, "")
	s.ErrorIs(err, domain.ErrInvalidDeliveryTransition)

	got, err := s.Store.Orders().GetByID(s.ctx(), order.ID)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusPending, got.Status)

	s.Equal([]string{
		domain.EventOrderCreated,
		domain.EventDeliveryAssigned,
		domain.EventDeliveryDispatched,
		domain.EventDeliveryCompleted,
	}, eventTypes(s.drainOutbox()))
}

func (s *StoreSuite) TestCompleteStraightFromAssigned() {
	shop := s.newShop("Tuck Shop")
	p := s.newProduct(shop.ID, "Chai", "3.00", true)
	c := s.newCustomer("Ali", "Raza")
	waiter := s.newEmployee("Hamza", domain.EmployeeRoleWaiter)
	order := s.newOrder(c.ID, line(p.ID, 1))

	_, err := s.Store.Deliveries().Complete(s.ctx(), *order.DeliveryID, "")
	s.ErrorIs(err, domain.ErrInvalidDeliveryTransition)

	_, err = s.Store.Deliveries().Assign(s.ctx(), *order.DeliveryID, waiter.ID)
	s.Require().NoError(err)

	d, err := s.Store.Deliveries().Complete(s.ctx(), *order.DeliveryID, "")
	s.Require().NoError(err)
	s.Equal(domain.DeliveryStatusDelivered, d.Status)
}

func (s *StoreSuite) TestAssignRejected() {
	shop := s.newShop("Tuck Shop")
	p := s.newProduct(shop.ID, "Chai", "3.00", true)
	c := s.newCustomer("Ali", "Raza")
	cashier := s.newEmployee("Usman", domain.EmployeeRoleCashier)
	rider := s.newEmployee("Bilal", domain.EmployeeRoleDelivery)
	order := s.newOrder(c.ID, line(p.ID, 1))

	_, err := s.Store.Deliveries().Assign(s.ctx(), *order.DeliveryID, cashier.ID)
	s.ErrorIs(err, repository.ErrEmployeeNotAssignable)

	_, err = s.Store.Deliveries().Assign(s.ctx(), *order.DeliveryID, 999999)
	s.ErrorIs(err, repository.ErrEmployeeNotFound)

	_, err = s.Store.Deliveries().Assign(s.ctx(), 999999, rider.ID)
	s.ErrorIs(err, repository.ErrDeliveryNotFound)

	d, err := s.Store.Deliveries().GetByID(s.ctx(), *order.DeliveryID)
	s.Require().NoError(err)
	s.Equal(domain.DeliveryStatusPending, d.Status)
	s.Nil(d.EmployeeID)
}

func (s *StoreSuite) TestListDeliveries() {
	shop := s.newShop("Tuck Shop")
	p := s.newProduct(shop.ID, "Chai", "3.00", true)
	c := s.newCustomer("Ali", "Raza")
	rider := s.newEmployee("Bilal", domain.EmployeeRoleDelivery)

	first := s.newOrder(c.ID, line(p.ID, 1))
	second := s.newOrder(c.ID, line(p.ID, 1))
	unassigned := s.newOrder(c.ID, line(p.ID, 1))

	_, err := s.Store.Deliveries().Assign(s.ctx(), *first.DeliveryID, rider.ID)
	s.Require().NoError(err)
	time.Sleep(5 * time.Millisecond)
	_, err = s.Store.Deliveries().Assign(s.ctx(), *second.DeliveryID, rider.ID)
	s.Require().NoError(err)

	all, err := s.Store.Deliveries().List(s.ctx(), domain.DeliveryFilter{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(*second.DeliveryID, all[0].ID)
	s.Equal(*first.DeliveryID, all[1].ID)
	s.Equal(*unassigned.DeliveryID, all[2].ID)
	s.Require().NotNil(all[0].DeliveryPerson)
	s.Equal("Bilal Khan", *all[0].DeliveryPerson)
	s.Equal("H7", all[2].Hostel)
	s.requireMoney("3", *all[2].TotalAmount)

	pending, err := s.Store.Deliveries().List(s.ctx(), domain.DeliveryFilter{Statuses: []domain.DeliveryStatus{domain.DeliveryStatusPending}})
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(*unassigned.DeliveryID, pending[0].ID)
}

func (s *StoreSuite) TestUpdateLocationAndCreateForOrder() {
	shop := s.newShop("Tuck Shop")
	p := s.newProduct(shop.ID, "Chai", "3.00", true)
	c := s.newCustomer("Ali", "Raza")
	order := s.newOrder(c.ID, line(p.ID, 1))

	d, err := s.Store.Deliveries().UpdateLocation(s.ctx(), *order.DeliveryID, "Gate 2")
	s.Require().NoError(err)
	s.Equal("Gate 2", d.DeliveryLocation)

	_, err = s.Store.Deliveries().UpdateLocation(s.ctx(), 999999, "Gate 2")
	s.ErrorIs(err, repository.ErrDeliveryNotFound)

	_, err = s.Store.Deliveries().CreateForOrder(s.ctx(), order.ID)
	s.ErrorIs(err, repository.ErrDeliveryAlreadyExists)

	_, err = s.Store.Deliveries().CreateForOrder(s.ctx(), 999999)
	s.ErrorIs(err, repository.ErrOrderNotFound)
}

func (s *StoreSuite) TestEmployees() {
	s.newEmployee("Zubair", domain.EmployeeRoleDelivery)
	s.newEmployee("Asad", domain.EmployeeRoleCook)
	s.newEmployee("Imran", domain.EmployeeRoleManager)

	assignable, err := s.Store.Employees().ListByRoles(s.ctx(), domain.AssignableRoles)
	s.Require().NoError(err)
	s.Require().Len(assignable, 2)
	s.Equal("Asad", assignable[0].FirstName)
	s.Equal("Zubair", assignable[1].FirstName)

	_, err = s.Store.Employees().GetByID(s.ctx(), 999999)
	s.ErrorIs(err, repository.ErrEmployeeNotFound)
}

func (s *StoreSuite) TestUsers() {
	u, err := s.Store.Users().Create(s.ctx(), &domain.User{Username: "ali_raza", PasswordHash: "hash", Role: domain.UserRoleStudent})
	s.Require().NoError(err)
	s.NotZero(u.ID)
	s.False(u.CreatedAt.IsZero())

	_, err = s.Store.Users().Create(s.ctx(), &domain.User{Username: "ali_raza", PasswordHash: "other", Role: domain.UserRoleAdmin})
	s.ErrorIs(err, repository.ErrUserAlreadyExists)

	got, err := s.Store.Users().GetByUsername(s.ctx(), "ali_raza")
	s.Require().NoError(err)
	s.Equal(u.ID, got.ID)
	s.Equal("hash", got.PasswordHash)

	got, err = s.Store.Users().GetByID(s.ctx(), u.ID)
	s.Require().NoError(err)
	s.Equal(domain.UserRoleStudent, got.Role)

	_, err = s.Store.Users().GetByUsername(s.ctx(), "nobody")
	s.ErrorIs(err, repository.ErrUserNotFound)
}

func (s *StoreSuite) TestReports() {
	tuck := s.newShop("Tuck Shop")
	juice := s.newShop("Juice Corner")
	roll := s.newProduct(tuck.ID, "Roll", "10.00", true)
	chai := s.newProduct(tuck.ID, "Chai", "5.00", true)
	shake := s.newProduct(juice.ID, "Shake", "100.00", true)
	c := s.newCustomer("Ali", "Raza")

	s.newOrder(c.ID, line(roll.ID, 2), line(shake.ID, 1))
	s.newOrder(c.ID, line(chai.ID, 3))
	cancelled := s.newOrder(c.ID, line(roll.ID, 7))
	_, err := s.Store.Orders().CancelOrder(s.ctx(), cancelled.ID, "")
	s.Require().NoError(err)

	now := time.Now().UTC()
	sales, err := s.Store.Reports().ShopSales(s.ctx(), tuck.ID, domain.SalesRange{Start: now.Add(-24 * time.Hour), End: now.Add(24 * time.Hour)})
	s.Require().NoError(err)
	s.EqualValues(2, sales.OrderCount)
	s.EqualValues(5, sales.ItemsSold)
	s.requireMoney("35", sales.TotalSales)

	past, err := s.Store.Reports().ShopSales(s.ctx(), tuck.ID, domain.SalesRange{Start: now.Add(-72 * time.Hour), End: now.Add(-48 * time.Hour)})
	s.Require().NoError(err)
	s.Zero(past.OrderCount)
	s.requireMoney("0", past.TotalSales)

	_, err = s.Store.Reports().ShopSales(s.ctx(), 999999, domain.SalesRange{Start: now, End: now})
	s.ErrorIs(err, repository.ErrShopNotFound)

	_, err = s.Store.Reports().ShopSales(s.ctx(), tuck.ID, domain.SalesRange{Start: now, End: now.Add(-time.Hour)})
	s.ErrorIs(err, domain.ErrInvalidDateRange)

	popular, err := s.Store.Reports().PopularProducts(s.ctx(), tuck.ID, 5)
	s.Require().NoError(err)
	s.Require().Len(popular, 2)
	s.Equal(chai.ID, popular[0].ProductID)
	s.EqualValues(3, popular[0].QuantitySold)
	s.requireMoney("15", popular[0].Revenue)
	s.Equal(roll.ID, popular[1].ProductID)
	s.EqualValues(2, popular[1].QuantitySold)

	top, err := s.Store.Reports().PopularProducts(s.ctx(), tuck.ID, 1)
	s.Require().NoError(err)
	s.Len(top, 1)

	_, err = s.Store.Reports().PopularProducts(s.ctx(), 999999, 5)
	s.ErrorIs(err, repository.ErrShopNotFound)
}

func (s *StoreSuite) TestOutboxRetriesFailedPublish() {
	shop := s.newShop("Tuck Shop")
	p := s.newProduct(shop.ID, "Chai", "3.00", true)
	c := s.newCustomer("Ali", "Raza")
	order := s.newOrder(c.ID, line(p.ID, 1))

	n, err := s.Store.Outbox().Relay(s.ctx(), 10, func(context.Context, *outbox.OutboxEvent) error {
		return errors.New("broker down")
	})
	s.Require().NoError(err)
	s.Equal(1, n)

	events := s.drainOutbox()
	s.Require().Len(events, 1)
	s.Equal(domain.EventOrderCreated, events[0].EventType)
	s.Equal(domain.TopicOrderEvents, events[0].Topic)
	s.Equal(fmt.Sprint(order.ID), events[0].AggregateID)
	s.NotZero(events[0].Id)
	var envelope domain.EventEnvelope[domain.OrderCreatedEvent]
	s.Require().NoError(json.Unmarshal(events[0].Payload, &envelope))
	s.Equal(domain.EventOrderCreated, envelope.Event)
	s.Equal(order.ID, envelope.Payload.OrderID)
	s.Equal(c.ID, envelope.Payload.CustomerID)
	s.requireMoney("3", envelope.Payload.TotalAmount)
	s.Require().Len(envelope.Payload.Items, 1)
	s.Equal(p.ID, envelope.Payload.Items[0].ProductID)

	s.Empty(s.drainOutbox())
}

func (s *StoreSuite) TestPing() {
	now, err := s.Store.Ping(s.ctx())
	s.Require().NoError(err)
	s.WithinDuration(time.Now(), now, time.Minute)
}
