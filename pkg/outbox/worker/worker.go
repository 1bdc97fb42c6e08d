package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/outbox/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// PublishFunc hands one event to the broker.
type PublishFunc func(ctx context.Context, event *domain.OutboxEvent) error

// Relay is implemented by every store that keeps an outbox. It claims up to
// batchSize unpublished events, calls publish for each one and records the
// outcome: published on success, attempts+1 and last_error on failure.
// It returns the number of events it handed to publish.
type Relay interface {
	Relay(ctx context.Context, batchSize int, publish PublishFunc) (int, error)
}

type KafkaProducer interface {
	ProduceMessage(ctx context.Context, topic, key string, message interface{}) error
}

type OutboxProcessor struct {
	relay         Relay
	kafkaProducer KafkaProducer
	logger        *zap.Logger
	batchSize     int
	interval      time.Duration
	tracer        trace.Tracer
}

func NewOutboxProcessor(
	relay Relay,
	producer KafkaProducer,
	logger *zap.Logger,
) *OutboxProcessor {
	return &OutboxProcessor{
		relay:         relay,
		kafkaProducer: producer,
		logger:        logger,
		batchSize:     50,
		interval:      500 * time.Millisecond,
		tracer:        otel.Tracer("outbox-worker"),
	}
}

func (p *OutboxProcessor) WithInterval(interval time.Duration) *OutboxProcessor {
	p.interval = interval
	return p
}

// Start blocks until ctx is done.
func (p *OutboxProcessor) Start(ctx context.Context) error {
	mylogger.Info(
		ctx,
		p.logger,
		"Starting outbox processor",
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			mylogger.Info(
				ctx,
				p.logger,
				"Outbox processor stopping",
			)

			return nil
		case <-ticker.C:
			if _, err := p.ProcessBatch(ctx); err != nil {
				mylogger.Error(
					ctx,
					p.logger,
					"Error processing outbox batch",
					zap.Error(err),
				)
			}
		}
	}
}

func (p *OutboxProcessor) ProcessBatch(ctx context.Context) (int, error) {
	ctx, span := p.tracer.Start(ctx, "OutboxProcessor.ProcessBatch")
	defer span.End()

	count, err := p.relay.Relay(ctx, p.batchSize, p.publish)
	if err != nil {
		span.RecordError(err)
		return count, fmt.Errorf("relay outbox batch: %w", err)
	}

	span.SetAttributes(attribute.Int("outbox.batch_count", count))
	if count > 0 {
		mylogger.Info(
			ctx,
			p.logger,
			"Processed outbox events",
			zap.Int("count", count),
		)
	}

	return count, nil
}

func (p *OutboxProcessor) publish(ctx context.Context, event *domain.OutboxEvent) error {
	var payloadMap map[string]any
	if err := json.Unmarshal(event.Payload, &payloadMap); err != nil {
		mylogger.Error(
			ctx,
			p.logger,
			"outbox worker unmarshal event payload failed",
			zap.Int64("id", event.Id),
			zap.Error(err),
		)

		return fmt.Errorf("unmarshal payload: %w", err)
	}

	payloadMap["event_id"] = event.Id

	if err := p.kafkaProducer.ProduceMessage(ctx, event.Topic, event.AggregateID, payloadMap); err != nil {
		mylogger.Error(
			ctx,
			p.logger,
			"outbox worker produce message failed",
			zap.Int64("id", event.Id),
			zap.Error(err),
		)

		return err
	}

	mylogger.Debug(
		ctx,
		p.logger,
		"outbox worker event published successfully",
		zap.Int64("id", event.Id),
	)

	return nil
}
