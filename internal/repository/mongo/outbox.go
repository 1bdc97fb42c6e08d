package mongo

import (
	"context"
	"fmt"
	"time"

	outbox "github.com/muhammad-umar-9/GIK-BuyHub/pkg/outbox/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/outbox/worker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
)

type outboxEvent struct {
	ID            int64      `bson:"_id"`
	AggregateType string     `bson:"aggregate_type"`
	AggregateID   string     `bson:"aggregate_id"`
	EventType     string     `bson:"event_type"`
	Payload       string     `bson:"payload"`
	Topic         string     `bson:"topic"`
	CreatedAt     time.Time  `bson:"created_at"`
	PublishedAt   *time.Time `bson:"published_at"`
	Attempts      int64      `bson:"attempts"`
	LastError     *string    `bson:"last_error"`
}

// wrapEvent adapts a domain event constructor's result for saveEvent.
func wrapEvent(e *outbox.OutboxEvent, err error) func() (*outboxEvent, error) {
	return func() (*outboxEvent, error) {
		if err != nil {
			return nil, err
		}
		return &outboxEvent{
			AggregateType: e.AggregateType,
			AggregateID:   e.AggregateID,
			EventType:     e.EventType,
			Payload:       string(e.Payload),
			Topic:         e.Topic,
			CreatedAt:     now(),
		}, nil
	}
}

func (e outboxEvent) toDomain() *outbox.OutboxEvent {
	return &outbox.OutboxEvent{
		Id:            e.ID,
		AggregateType: e.AggregateType,
		AggregateID:   e.AggregateID,
		EventType:     e.EventType,
		Payload:       []byte(e.Payload),
		CreatedAt:     e.CreatedAt.UTC(),
		PublishedAt:   e.PublishedAt,
		Attempts:      e.Attempts,
		LastError:     e.LastError,
		Topic:         e.Topic,
	}
}

type outboxRelay struct{ s *Store }

// Relay has no row locks to lean on, so it assumes a single relay process per database.
func (r outboxRelay) Relay(ctx context.Context, batchSize int, publish worker.PublishFunc) (int, error) {
	ctx, span := r.s.tracer.Start(ctx, "OutboxRepository.Relay")
	defer span.End()

	span.SetAttributes(attribute.Int("batch_size", batchSize))

	filter := bson.D{
		{Key: "published_at", Value: nil},
		{Key: "attempts", Value: bson.D{{Key: "$lt", Value: outbox.MaxAttempts}}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetLimit(int64(batchSize))

	var events []outboxEvent
	if err := findAll(ctx, r.s.col(colOutbox), filter, opts, &events); err != nil {
		span.RecordError(err)
		return 0, err
	}

	for _, e := range events {
		var update bson.D
		if err := publish(ctx, e.toDomain()); err != nil {
			update = bson.D{
				{Key: "$set", Value: bson.D{{Key: "last_error", Value: err.Error()}}},
				{Key: "$inc", Value: bson.D{{Key: "attempts", Value: 1}}},
			}
		} else {
			update = bson.D{{Key: "$set", Value: bson.D{
				{Key: "published_at", Value: now()},
				{Key: "last_error", Value: nil},
			}}}
		}

		if _, err := r.s.col(colOutbox).UpdateByID(ctx, e.ID, update); err != nil {
			span.RecordError(err)
			return 0, fmt.Errorf("mark event %d: %w", e.ID, err)
		}
	}

	return len(events), nil
}
