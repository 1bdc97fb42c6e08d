package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	pkgkafka "github.com/muhammad-umar-9/GIK-BuyHub/pkg/kafka"
	outbox "github.com/muhammad-umar-9/GIK-BuyHub/pkg/outbox/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/testsuite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type call struct {
	eventID   int64
	eventType string
	orderID   int64
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []call
	err   error
}

func (n *recordingNotifier) record(c call) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, c)
	return n.err
}

func (n *recordingNotifier) snapshot() []call {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]call(nil), n.calls...)
}

func (n *recordingNotifier) HandleOrderCreated(_ context.Context, id int64, e domain.OrderCreatedEvent) error {
	return n.record(call{id, domain.EventOrderCreated, e.OrderID})
}

func (n *recordingNotifier) HandleOrderStatusChanged(_ context.Context, id int64, e domain.OrderStatusChangedEvent) error {
	return n.record(call{id, domain.EventOrderStatusChanged, e.OrderID})
}

func (n *recordingNotifier) HandleOrderCancelled(_ context.Context, id int64, e domain.OrderCancelledEvent) error {
	return n.record(call{id, domain.EventOrderCancelled, e.OrderID})
}

func (n *recordingNotifier) HandleDelivery(_ context.Context, id int64, eventType string, e domain.DeliveryEvent) error {
	return n.record(call{id, eventType, e.OrderID})
}

// wire renders an outbox event the way the relay publishes it.
func wire(t *testing.T, event *outbox.OutboxEvent, id int64) map[string]any {
	t.Helper()

	var m map[string]any
	require.NoError(t, json.Unmarshal(event.Payload, &m))
	m["event_id"] = id
	return m
}

func message(t *testing.T, v any) *sarama.ConsumerMessage {
	t.Helper()

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return &sarama.ConsumerMessage{Topic: domain.TopicOrderEvents, Value: raw}
}

func sampleOrder() *domain.Order {
	return &domain.Order{
		ID:          5,
		CustomerID:  2,
		Status:      domain.OrderStatusPending,
		TotalAmount: decimal.NewFromInt(300),
		OrderDate:   time.Now(),
		Items:       []domain.OrderItem{{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(150)}},
	}
}

func TestProcessMessage_Dispatch(t *testing.T) {
	n := &recordingNotifier{}
	c := NewConsumer(n, zap.NewNop())
	ctx := context.Background()
	o := sampleOrder()

	created, err := domain.NewOrderCreatedEvent(o)
	require.NoError(t, err)
	require.NoError(t, c.processMessage(ctx, message(t, wire(t, created, 1))))

	o.Status = domain.OrderStatusProcessing
	changed, err := domain.NewOrderStatusChangedEvent(o, domain.OrderStatusPending, time.Now())
	require.NoError(t, err)
	require.NoError(t, c.processMessage(ctx, message(t, wire(t, changed, 2))))

	cancelled, err := domain.NewOrderCancelledEvent(o, time.Now())
	require.NoError(t, err)
	require.NoError(t, c.processMessage(ctx, message(t, wire(t, cancelled, 3))))

	d := &domain.Delivery{ID: 9, OrderID: o.ID, Status: domain.DeliveryStatusOutForDelivery}
	dispatched, err := domain.NewDeliveryEvent(domain.EventDeliveryDispatched, d, o.CustomerID, time.Now())
	require.NoError(t, err)
	require.NoError(t, c.processMessage(ctx, message(t, wire(t, dispatched, 4))))

	require.Equal(t, []call{
		{1, domain.EventOrderCreated, 5},
		{2, domain.EventOrderStatusChanged, 5},
		{3, domain.EventOrderCancelled, 5},
		{4, domain.EventDeliveryDispatched, 5},
	}, n.snapshot())
}

func TestProcessMessage_SkipsPoisonMessages(t *testing.T) {
	n := &recordingNotifier{}
	c := NewConsumer(n, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, c.processMessage(ctx, &sarama.ConsumerMessage{Value: []byte("not json")}))
	require.NoError(t, c.processMessage(ctx, message(t, map[string]any{"event": "UserRegistered", "event_id": 1})))
	require.NoError(t, c.processMessage(ctx, message(t, map[string]any{"event": domain.EventOrderCreated, "payload": map[string]any{"order_id": 1}})))
	require.NoError(t, c.processMessage(ctx, message(t, map[string]any{"event": domain.EventOrderCreated, "event_id": 2, "payload": "oops"})))

	require.Empty(t, n.snapshot())
}

func TestProcessMessage_HandlerErrorIsReturned(t *testing.T) {
	boom := errors.New("smtp down")
	n := &recordingNotifier{err: boom}
	c := NewConsumer(n, zap.NewNop())

	created, err := domain.NewOrderCreatedEvent(sampleOrder())
	require.NoError(t, err)

	err = c.processMessage(context.Background(), message(t, wire(t, created, 8)))
	require.ErrorIs(t, err, boom)
}

type ConsumerSuite struct {
	testsuite.BaseSuite
}

func (s *ConsumerSuite) SetupSuite() {
	s.Ctx = context.Background()
	s.SetupKafka()
}

func (s *ConsumerSuite) TearDownSuite() {
	s.TearDownInfrastructure()
}

func (s *ConsumerSuite) TestConsumesPublishedEvents() {
	producer, err := pkgkafka.NewProducer(s.KafkaBrokers, zap.NewNop())
	s.Require().NoError(err)
	defer producer.Close()

	created, err := domain.NewOrderCreatedEvent(sampleOrder())
	s.Require().NoError(err)
	s.Require().NoError(producer.ProduceMessage(s.Ctx, domain.TopicOrderEvents, created.AggregateID, wire(s.T(), created, 100)))

	d := &domain.Delivery{ID: 9, OrderID: 5, Status: domain.DeliveryStatusAssigned}
	assigned, err := domain.NewDeliveryEvent(domain.EventDeliveryAssigned, d, 2, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(producer.ProduceMessage(s.Ctx, domain.TopicDeliveryEvents, assigned.AggregateID, wire(s.T(), assigned, 101)))

	n := &recordingNotifier{}
	c := NewConsumer(n, zap.NewNop())

	ctx, cancel := context.WithCancel(s.Ctx)
	done := make(chan error, 1)
	go func() {
		done <- c.Start(ctx, s.KafkaBrokers, "notifier-test", []string{domain.TopicOrderEvents, domain.TopicDeliveryEvents})
	}()

	s.Eventually(func() bool { return len(n.snapshot()) == 2 }, 60*time.Second, 500*time.Millisecond)

	cancel()
	s.Require().NoError(<-done)

	s.ElementsMatch([]call{
		{100, domain.EventOrderCreated, 5},
		{101, domain.EventDeliveryAssigned, 5},
	}, n.snapshot())
}

func TestConsumerWithKafka(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	suite.Run(t, new(ConsumerSuite))
}
