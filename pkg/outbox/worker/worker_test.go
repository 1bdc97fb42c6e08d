package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/outbox/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sliceRelay struct {
	events    []*domain.OutboxEvent
	published []int64
	failed    map[int64]string
}

func (r *sliceRelay) Relay(ctx context.Context, batchSize int, publish PublishFunc) (int, error) {
	n := 0
	for _, e := range r.events {
		if n == batchSize {
			break
		}
		n++
		if err := publish(ctx, e); err != nil {
			r.failed[e.Id] = err.Error()
			continue
		}
		r.published = append(r.published, e.Id)
	}
	return n, nil
}

type recordingProducer struct {
	fail     bool
	messages []map[string]any
	keys     []string
	topics   []string
}

func (p *recordingProducer) ProduceMessage(_ context.Context, topic, key string, message interface{}) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.topics = append(p.topics, topic)
	p.keys = append(p.keys, key)
	p.messages = append(p.messages, message.(map[string]any))
	return nil
}

func newEvent(t *testing.T, id int64) *domain.OutboxEvent {
	t.Helper()

	e, err := domain.NewOutboxEvent("order", "42", "OrderCreated", "order_events", map[string]any{"order_id": 42})
	require.NoError(t, err)
	e.Id = id
	return e
}

func TestProcessBatch_PublishesWithEventID(t *testing.T) {
	relay := &sliceRelay{events: []*domain.OutboxEvent{newEvent(t, 1), newEvent(t, 2)}, failed: map[int64]string{}}
	producer := &recordingProducer{}

	p := NewOutboxProcessor(relay, producer, zap.NewNop())

	count, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.Equal(t, []int64{1, 2}, relay.published)

	require.Len(t, producer.messages, 2)
	require.Equal(t, "OrderCreated", producer.messages[0]["event"])
	require.EqualValues(t, 1, producer.messages[0]["event_id"])
	require.Equal(t, "42", producer.keys[0])
	require.Equal(t, "order_events", producer.topics[0])
}

func TestProcessBatch_ProducerFailureMarksFailed(t *testing.T) {
	relay := &sliceRelay{events: []*domain.OutboxEvent{newEvent(t, 5)}, failed: map[int64]string{}}

	p := NewOutboxProcessor(relay, &recordingProducer{fail: true}, zap.NewNop())

	_, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	require.Empty(t, relay.published)
	require.Equal(t, "broker down", relay.failed[5])
}

func TestProcessBatch_BadPayload(t *testing.T) {
	bad := &domain.OutboxEvent{Id: 9, Payload: []byte("not json"), Topic: "order_events"}
	relay := &sliceRelay{events: []*domain.OutboxEvent{bad}, failed: map[int64]string{}}

	p := NewOutboxProcessor(relay, &recordingProducer{}, zap.NewNop())

	_, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	require.Contains(t, relay.failed[9], "unmarshal payload")
}
