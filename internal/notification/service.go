package notification

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/notification/email"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	outboxUtils "github.com/muhammad-umar-9/GIK-BuyHub/pkg/outbox/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type NotificationService struct {
	customers repository.CustomerRepository
	sender    email.Sender
	dedup     outboxUtils.Deduplicator
	logger    *zap.Logger
	tracer    trace.Tracer
}

func NewNotificationService(
	customers repository.CustomerRepository,
	sender email.Sender,
	dedup outboxUtils.Deduplicator,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		customers: customers,
		sender:    sender,
		dedup:     dedup,
		logger:    logger,
		tracer:    otel.Tracer("notification-service"),
	}
}

func (s *NotificationService) HandleOrderCreated(ctx context.Context, eventID int64, event domain.OrderCreatedEvent) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandleOrderCreated")
	defer span.End()

	span.SetAttributes(attribute.Int64("event_id", eventID), attribute.Int64("order.id", event.OrderID))

	return s.notify(ctx, eventID, event.CustomerID, func(c *domain.Customer) email.Message {
		items := 0
		for _, item := range event.Items {
			items += item.Quantity
		}

		return email.Message{
			Subject: fmt.Sprintf("GIKI BuyHub: order #%d received", event.OrderID),
			Body: fmt.Sprintf(`
		<h1>Thanks for your order, %s!</h1>
		<p>Order <b>#%d</b> with %d item(s) is pending.</p>
		<p>Total: <b>Rs. %s</b></p>
	`, html.EscapeString(c.FirstName), event.OrderID, items, event.TotalAmount.StringFixed(2)),
		}
	})
}

func (s *NotificationService) HandleOrderStatusChanged(ctx context.Context, eventID int64, event domain.OrderStatusChangedEvent) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandleOrderStatusChanged")
	defer span.End()

	span.SetAttributes(attribute.Int64("event_id", eventID), attribute.String("order.status", string(event.To)))

	return s.notify(ctx, eventID, event.CustomerID, func(c *domain.Customer) email.Message {
		return email.Message{
			Subject: fmt.Sprintf("GIKI BuyHub: order #%d is %s", event.OrderID, event.To),
			Body: fmt.Sprintf(`
		<h1>Hi %s,</h1>
		<p>Your order <b>#%d</b> moved from %s to <b>%s</b>.</p>
	`, html.EscapeString(c.FirstName), event.OrderID, event.From, event.To),
		}
	})
}

func (s *NotificationService) HandleOrderCancelled(ctx context.Context, eventID int64, event domain.OrderCancelledEvent) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandleOrderCancelled")
	defer span.End()

	span.SetAttributes(attribute.Int64("event_id", eventID), attribute.Int64("order.id", event.OrderID))

	return s.notify(ctx, eventID, event.CustomerID, func(c *domain.Customer) email.Message {
		reason := ""
		if event.Reason != "" {
			reason = fmt.Sprintf("<p>Reason: %s</p>", html.EscapeString(event.Reason))
		}

		return email.Message{
			Subject: fmt.Sprintf("GIKI BuyHub: order #%d cancelled", event.OrderID),
			Body: fmt.Sprintf(`
		<h1>Hi %s,</h1>
		<p>Your order <b>#%d</b> was cancelled.</p>
		%s
	`, html.EscapeString(c.FirstName), event.OrderID, reason),
		}
	})
}

// HandleDelivery covers DeliveryAssigned, DeliveryDispatched and DeliveryCompleted.
func (s *NotificationService) HandleDelivery(ctx context.Context, eventID int64, eventType string, event domain.DeliveryEvent) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandleDelivery")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("event_id", eventID),
		attribute.String("event.type", eventType),
		attribute.Int64("delivery.id", event.DeliveryID),
	)

	var line string
	switch eventType {
	case domain.EventDeliveryAssigned:
		line = "A delivery person has been assigned to your order."
	case domain.EventDeliveryDispatched:
		line = "Your order is out for delivery."
	case domain.EventDeliveryCompleted:
		line = "Your order has been delivered. Enjoy!"
	default:
		mylogger.Warn(ctx, s.logger, "Ignored delivery event", zap.String("event", eventType))
		return nil
	}

	return s.notify(ctx, eventID, event.CustomerID, func(c *domain.Customer) email.Message {
		return email.Message{
			Subject: fmt.Sprintf("GIKI BuyHub: order #%d %s", event.OrderID, event.Status),
			Body: fmt.Sprintf(`
		<h1>Hi %s,</h1>
		<p>%s</p>
		<p>Order <b>#%d</b>, delivery <b>#%d</b>.</p>
	`, html.EscapeString(c.FirstName), line, event.OrderID, event.DeliveryID),
		}
	})
}

// notify resolves the customer's address and sends once per event id.
// Customers without an email are skipped.
func (s *NotificationService) notify(
	ctx context.Context,
	eventID int64,
	customerID int64,
	build func(c *domain.Customer) email.Message,
) error {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			mylogger.Warn(ctx, s.logger, "Customer not found, skipping notification",
				zap.Int64("event_id", eventID),
				zap.Int64("customer_id", customerID),
			)
			return nil
		}

		return fmt.Errorf("get customer %d: %w", customerID, err)
	}

	if customer.Email == nil || *customer.Email == "" {
		mylogger.Debug(ctx, s.logger, "Customer has no email, skipping notification", zap.Int64("customer_id", customerID))
		return nil
	}

	msg := build(customer)
	msg.To = *customer.Email

	return s.dedup.ProcessOnce(ctx, eventID, func() error {
		return s.sender.Send(ctx, msg)
	})
}
