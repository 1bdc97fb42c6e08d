package service_test

import (
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/service"
)

func (s *ServiceSuite) TestDeliveryFlow() {
	_, burger, _, customer := s.seed()

	order, err := s.orders.Create(s.ctx, domain.CreateOrderInput{
		CustomerID: customer.ID,
		Products:   []domain.OrderLine{{ProductID: burger.ID, Quantity: 1}},
	})
	s.Require().NoError(err)
	s.Require().NotNil(order.DeliveryID)
	deliveryID := *order.DeliveryID

	rider, err := s.delivery.CreateEmployee(s.ctx, &domain.Employee{FirstName: "Bilal", LastName: "Shah", Role: domain.EmployeeRoleDelivery})
	s.Require().NoError(err)
	cashier, err := s.delivery.CreateEmployee(s.ctx, &domain.Employee{FirstName: "Sana", LastName: "Iqbal", Role: domain.EmployeeRoleCashier})
	s.Require().NoError(err)

	_, err = s.delivery.CreateEmployee(s.ctx, &domain.Employee{FirstName: "X", LastName: "Y", Role: "Pilot"})
	s.ErrorIs(err, domain.ErrInvalidEmployeeRole)

	available, err := s.delivery.AvailablePersonnel(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(available, 1)
	s.Equal(rider.ID, available[0].ID)

	_, err = s.delivery.Assign(s.ctx, deliveryID, cashier.ID)
	s.ErrorIs(err, repository.ErrEmployeeNotAssignable)

	assigned, err := s.delivery.Assign(s.ctx, deliveryID, rider.ID)
	s.Require().NoError(err)
	s.Equal(domain.DeliveryStatusAssigned, assigned.Status)
	s.NotNil(assigned.AssignedTime)
	s.Require().NotNil(assigned.DeliveryPerson)
	s.Equal("Bilal Shah", *assigned.DeliveryPerson)

	_, err = s.delivery.UpdateLocation(s.ctx, deliveryID, "   ")
	s.ErrorIs(err, service.ErrInvalidInput)

	moved, err := s.delivery.UpdateLocation(s.ctx, deliveryID, "Gate 2")
	s.Require().NoError(err)
	s.Equal("Gate 2", moved.DeliveryLocation)

	_, err = s.delivery.Dispatch(s.ctx, deliveryID)
	s.Require().NoError(err)

	_, err = s.orders.Cancel(s.ctx, order.ID, "too late")
	s.ErrorIs(err, domain.ErrInvalidDeliveryTransition)

	done, err := s.delivery.Complete(s.ctx, deliveryID, "  left at reception ")
	s.Require().NoError(err)
	s.Equal(domain.DeliveryStatusDelivered, done.Status)
	s.Equal("left at reception", done.DeliveryNotes)
	s.NotNil(done.DeliveryTime)
	s.Equal(float64(1), s.counter("deliveries_completed_total"))

	again, err := s.orders.Get(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusPending, again.Status)

	delivered, err := s.delivery.List(s.ctx, "Delivered, Assigned")
	s.Require().NoError(err)
	s.Len(delivered, 1)

	_, err = s.delivery.List(s.ctx, "Pending,Lost")
	s.ErrorIs(err, domain.ErrInvalidDeliveryStatus)

	_, err = s.delivery.CreateForOrder(s.ctx, order.ID)
	s.ErrorIs(err, repository.ErrDeliveryAlreadyExists)
}
