package memory

import (
	"context"

	outbox "github.com/muhammad-umar-9/GIK-BuyHub/pkg/outbox/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/outbox/worker"
	"go.uber.org/zap"
)

type outboxRelay struct{ s *Store }

// Relay publishes outside the lock so a slow broker never stalls the store.
// A single processor is assumed; two concurrent relays may publish an event twice.
func (r outboxRelay) Relay(ctx context.Context, batchSize int, publish worker.PublishFunc) (int, error) {
	r.s.mu.RLock()
	batch := make([]outbox.OutboxEvent, 0, batchSize)
	for _, e := range r.s.events {
		if len(batch) == batchSize {
			break
		}
		if e.PublishedAt == nil && e.Attempts < outbox.MaxAttempts {
			batch = append(batch, *e)
		}
	}
	r.s.mu.RUnlock()

	if len(batch) == 0 {
		return 0, nil
	}

	results := make(map[int64]error, len(batch))
	for i := range batch {
		results[batch[i].Id] = publish(ctx, &batch[i])
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := timeNow()
	for _, e := range r.s.events {
		publishErr, ok := results[e.Id]
		if !ok {
			continue
		}

		if publishErr != nil {
			msg := publishErr.Error()
			e.Attempts++
			e.LastError = &msg

			r.s.logger.Warn("Outbox publish failed",
				zap.Int64("event_id", e.Id),
				zap.Int64("attempts", e.Attempts),
				zap.Error(publishErr),
			)
			continue
		}

		e.PublishedAt = ptr(now)
		e.LastError = nil
	}

	return len(batch), nil
}
