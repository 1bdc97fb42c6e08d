package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

type OutboxEvent struct {
	Id            int64           `db:"id"`
	AggregateType string          `db:"aggregate_type"`
	AggregateID   string          `db:"aggregate_id"`
	EventType     string          `db:"event_type"`
	Payload       json.RawMessage `db:"payload"`
	CreatedAt     time.Time       `db:"created_at"`
	PublishedAt   *time.Time      `db:"published_at"`
	Attempts      int64           `db:"attempts"`
	LastError     *string         `db:"last_error"`
	Topic         string          `db:"topic"`
}

// MaxAttempts is how many failed publishes an event gets before the relay gives up on it.
const MaxAttempts = 10

type envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// NewOutboxEvent wraps payload as {"event": eventType, "payload": payload}.
func NewOutboxEvent(aggregateType, aggregateID, eventType, topic string, payload any) (*OutboxEvent, error) {
	raw, err := json.Marshal(envelope{Event: eventType, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	return &OutboxEvent{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       raw,
		CreatedAt:     time.Now().UTC(),
		Topic:         topic,
	}, nil
}
