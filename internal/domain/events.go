package domain

import (
	"strconv"
	"time"

	outbox "github.com/muhammad-umar-9/GIK-BuyHub/pkg/outbox/domain"
	"github.com/shopspring/decimal"
)

const (
	TopicOrderEvents    = "order_events"
	TopicDeliveryEvents = "delivery_events"

	AggregateOrder    = "order"
	AggregateDelivery = "delivery"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventOrderCancelled     = "OrderCancelled"
	EventDeliveryAssigned   = "DeliveryAssigned"
	EventDeliveryDispatched = "DeliveryDispatched"
	EventDeliveryCompleted  = "DeliveryCompleted"
)

type OrderItemEvent struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type OrderCreatedEvent struct {
	OrderID     int64            `json:"order_id"`
	CustomerID  int64            `json:"customer_id"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	Items       []OrderItemEvent `json:"items"`
	CreatedAt   time.Time        `json:"created_at"`
}

type OrderStatusChangedEvent struct {
	OrderID    int64       `json:"order_id"`
	CustomerID int64       `json:"customer_id"`
	From       OrderStatus `json:"from"`
	To         OrderStatus `json:"to"`
	ChangedAt  time.Time   `json:"changed_at"`
}

type OrderCancelledEvent struct {
	OrderID     int64     `json:"order_id"`
	CustomerID  int64     `json:"customer_id"`
	Reason      string    `json:"reason"`
	CancelledAt time.Time `json:"cancelled_at"`
}

type DeliveryEvent struct {
	DeliveryID int64          `json:"delivery_id"`
	OrderID    int64          `json:"order_id"`
	CustomerID int64          `json:"customer_id"`
	EmployeeID *int64         `json:"employee_id,omitempty"`
	Status     DeliveryStatus `json:"status"`
	Notes      string         `json:"notes,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// EventEnvelope is the message shape consumers read off the topics.
type EventEnvelope[T any] struct {
	EventID int64  `json:"event_id"`
	Event   string `json:"event"`
	Payload T      `json:"payload"`
}

func NewOrderCreatedEvent(o *Order) (*outbox.OutboxEvent, error) {
	items := make([]OrderItemEvent, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemEvent{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	return outbox.NewOutboxEvent(AggregateOrder, strconv.FormatInt(o.ID, 10), EventOrderCreated, TopicOrderEvents, OrderCreatedEvent{
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		TotalAmount: o.TotalAmount,
		Items:       items,
		CreatedAt:   o.OrderDate,
	})
}

func NewOrderStatusChangedEvent(o *Order, from OrderStatus, at time.Time) (*outbox.OutboxEvent, error) {
	return outbox.NewOutboxEvent(AggregateOrder, strconv.FormatInt(o.ID, 10), EventOrderStatusChanged, TopicOrderEvents, OrderStatusChangedEvent{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		From:       from,
		To:         o.Status,
		ChangedAt:  at,
	})
}

func NewOrderCancelledEvent(o *Order, at time.Time) (*outbox.OutboxEvent, error) {
	reason := ""
	if o.CancellationReason != nil {
		reason = *o.CancellationReason
	}

	return outbox.NewOutboxEvent(AggregateOrder, strconv.FormatInt(o.ID, 10), EventOrderCancelled, TopicOrderEvents, OrderCancelledEvent{
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		Reason:      reason,
		CancelledAt: at,
	})
}

// NewDeliveryEvent builds DeliveryAssigned, DeliveryDispatched or DeliveryCompleted.
// Deliveries are keyed by order id so they share a partition with the order's events.
func NewDeliveryEvent(eventType string, d *Delivery, customerID int64, at time.Time) (*outbox.OutboxEvent, error) {
	return outbox.NewOutboxEvent(AggregateDelivery, strconv.FormatInt(d.OrderID, 10), eventType, TopicDeliveryEvents, DeliveryEvent{
		DeliveryID: d.ID,
		OrderID:    d.OrderID,
		CustomerID: customerID,
		EmployeeID: d.EmployeeID,
		Status:     d.Status,
		Notes:      d.DeliveryNotes,
		OccurredAt: at,
	})
}
