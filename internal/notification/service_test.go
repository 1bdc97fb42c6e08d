package notification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/notification"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/notification/email"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type fakeSender struct {
	sent []email.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg email.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type mapDedup struct {
	seen map[int64]bool
}

func (d *mapDedup) ProcessOnce(_ context.Context, eventID int64, action func() error) error {
	if d.seen[eventID] {
		return nil
	}
	if err := action(); err != nil {
		return err
	}
	d.seen[eventID] = true
	return nil
}

type NotificationSuite struct {
	suite.Suite
	ctx     context.Context
	sender  *fakeSender
	dedup   *mapDedup
	service *notification.NotificationService

	withEmail    *domain.Customer
	withoutEmail *domain.Customer
}

func (s *NotificationSuite) SetupTest() {
	s.ctx = context.Background()
	store := memory.New(zap.NewNop())

	addr := "ali@giki.edu.pk"
	var err error
	s.withEmail, err = store.Customers().Create(s.ctx, &domain.Customer{FirstName: "Ali", LastName: "Raza", Email: &addr})
	s.Require().NoError(err)
	s.withoutEmail, err = store.Customers().Create(s.ctx, &domain.Customer{FirstName: "Sara", LastName: "Khan"})
	s.Require().NoError(err)

	s.sender = &fakeSender{}
	s.dedup = &mapDedup{seen: map[int64]bool{}}
	s.service = notification.NewNotificationService(store.Customers(), s.sender, s.dedup, zap.NewNop())
}

func (s *NotificationSuite) TestOrderCreatedSendsOnce() {
	event := domain.OrderCreatedEvent{
		OrderID:     7,
		CustomerID:  s.withEmail.ID,
		TotalAmount: decimal.RequireFromString("450.5"),
		Items:       []domain.OrderItemEvent{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}},
		CreatedAt:   time.Now(),
	}

	s.Require().NoError(s.service.HandleOrderCreated(s.ctx, 11, event))
	s.Require().NoError(s.service.HandleOrderCreated(s.ctx, 11, event))

	s.Require().Len(s.sender.sent, 1)
	msg := s.sender.sent[0]
	s.Equal("ali@giki.edu.pk", msg.To)
	s.Contains(msg.Subject, "#7")
	s.Contains(msg.Body, "3 item(s)")
	s.Contains(msg.Body, "450.50")
}

func (s *NotificationSuite) TestSkipsCustomerWithoutEmail() {
	err := s.service.HandleOrderCancelled(s.ctx, 12, domain.OrderCancelledEvent{OrderID: 1, CustomerID: s.withoutEmail.ID})
	s.Require().NoError(err)
	s.Empty(s.sender.sent)
	s.False(s.dedup.seen[12])
}

func (s *NotificationSuite) TestSkipsUnknownCustomer() {
	err := s.service.HandleOrderStatusChanged(s.ctx, 13, domain.OrderStatusChangedEvent{OrderID: 1, CustomerID: 999})
	s.Require().NoError(err)
	s.Empty(s.sender.sent)
}

func (s *NotificationSuite) TestStatusChangedAndCancelledBodies() {
	s.Require().NoError(s.service.HandleOrderStatusChanged(s.ctx, 20, domain.OrderStatusChangedEvent{
		OrderID:    3,
		CustomerID: s.withEmail.ID,
		From:       domain.OrderStatusPending,
		To:         domain.OrderStatusProcessing,
	}))
	s.Require().NoError(s.service.HandleOrderCancelled(s.ctx, 21, domain.OrderCancelledEvent{
		OrderID:    3,
		CustomerID: s.withEmail.ID,
		Reason:     "<out of stock>",
	}))

	s.Require().Len(s.sender.sent, 2)
	s.Contains(s.sender.sent[0].Subject, "Processing")
	s.Contains(s.sender.sent[1].Body, "&lt;out of stock&gt;")
}

func (s *NotificationSuite) TestDeliveryEvents() {
	base := domain.DeliveryEvent{DeliveryID: 4, OrderID: 3, CustomerID: s.withEmail.ID}

	base.Status = domain.DeliveryStatusAssigned
	s.Require().NoError(s.service.HandleDelivery(s.ctx, 30, domain.EventDeliveryAssigned, base))
	base.Status = domain.DeliveryStatusOutForDelivery
	s.Require().NoError(s.service.HandleDelivery(s.ctx, 31, domain.EventDeliveryDispatched, base))
	base.Status = domain.DeliveryStatusDelivered
	s.Require().NoError(s.service.HandleDelivery(s.ctx, 32, domain.EventDeliveryCompleted, base))
	s.Require().NoError(s.service.HandleDelivery(s.ctx, 33, "DeliveryTeleported", base))

	s.Require().Len(s.sender.sent, 3)
	s.Contains(s.sender.sent[1].Body, "out for delivery")
	s.Contains(s.sender.sent[2].Body, "delivered")
}

func (s *NotificationSuite) TestSendFailureLeavesEventUnprocessed() {
	s.sender.err = errors.New("smtp down")

	err := s.service.HandleOrderCancelled(s.ctx, 40, domain.OrderCancelledEvent{OrderID: 1, CustomerID: s.withEmail.ID})
	s.Require().ErrorIs(err, s.sender.err)
	s.False(s.dedup.seen[40])

	s.sender.err = nil
	s.Require().NoError(s.service.HandleOrderCancelled(s.ctx, 40, domain.OrderCancelledEvent{OrderID: 1, CustomerID: s.withEmail.ID}))
	s.Len(s.sender.sent, 1)
}

func TestNotificationService(t *testing.T) {
	suite.Run(t, new(NotificationSuite))
}
