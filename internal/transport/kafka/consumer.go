package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/kafka"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"go.uber.org/zap"
)

// Notifier is the set of notification handlers the consumer dispatches to.
type Notifier interface {
	HandleOrderCreated(ctx context.Context, eventID int64, event domain.OrderCreatedEvent) error
	HandleOrderStatusChanged(ctx context.Context, eventID int64, event domain.OrderStatusChangedEvent) error
	HandleOrderCancelled(ctx context.Context, eventID int64, event domain.OrderCancelledEvent) error
	HandleDelivery(ctx context.Context, eventID int64, eventType string, event domain.DeliveryEvent) error
}

type Consumer struct {
	notifier Notifier
	logger   *zap.Logger
}

func NewConsumer(notifier Notifier, logger *zap.Logger) *Consumer {
	return &Consumer{
		notifier: notifier,
		logger:   logger,
	}
}

// Start blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context, brokers []string, groupID string, topics []string) error {
	consumerGroup := kafka.NewConsumerGroup(
		brokers,
		groupID,
		topics,
		c.processMessage,
		c.logger,
	)

	return consumerGroup.Run(ctx)
}

type eventWrapper struct {
	EventID int64           `json:"event_id"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func (c *Consumer) processMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	mylogger.Info(
		ctx,
		c.logger,
		"Processing message",
		zap.String("topic", msg.Topic),
	)

	var wrapper eventWrapper
	if err := json.Unmarshal(msg.Value, &wrapper); err != nil {
		mylogger.Error(ctx, c.logger, "Error unmarshalling wrapper, skipping", zap.Error(err))
		return nil
	}

	var err error
	switch wrapper.Event {
	case domain.EventOrderCreated:
		var event domain.OrderCreatedEvent
		if !c.decode(ctx, wrapper, &event) {
			return nil
		}
		err = c.notifier.HandleOrderCreated(ctx, wrapper.EventID, event)
	case domain.EventOrderStatusChanged:
		var event domain.OrderStatusChangedEvent
		if !c.decode(ctx, wrapper, &event) {
			return nil
		}
		err = c.notifier.HandleOrderStatusChanged(ctx, wrapper.EventID, event)
	case domain.EventOrderCancelled:
		var event domain.OrderCancelledEvent
		if !c.decode(ctx, wrapper, &event) {
			return nil
		}
		err = c.notifier.HandleOrderCancelled(ctx, wrapper.EventID, event)
	case domain.EventDeliveryAssigned, domain.EventDeliveryDispatched, domain.EventDeliveryCompleted:
		var event domain.DeliveryEvent
		if !c.decode(ctx, wrapper, &event) {
			return nil
		}
		err = c.notifier.HandleDelivery(ctx, wrapper.EventID, wrapper.Event, event)
	default:
		mylogger.Info(ctx, c.logger, "Ignored event type", zap.String("event", wrapper.Event))
		return nil
	}

	if err != nil {
		return fmt.Errorf("handle %s event %d: %w", wrapper.Event, wrapper.EventID, err)
	}

	return nil
}

// decode reports false for payloads that can never be processed; those are
// logged and acknowledged.
func (c *Consumer) decode(ctx context.Context, wrapper eventWrapper, out any) bool {
	if wrapper.EventID == 0 {
		mylogger.Error(ctx, c.logger, "Event without id, skipping", zap.String("event", wrapper.Event))
		return false
	}

	if err := json.Unmarshal(wrapper.Payload, out); err != nil {
		mylogger.Error(
			ctx,
			c.logger,
			"Error parsing event payload, skipping",
			zap.String("event", wrapper.Event),
			zap.Int64("event_id", wrapper.EventID),
			zap.Error(err),
		)
		return false
	}

	return true
}
