package utils

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	sendAttempts = 3
	retryDelay   = 500 * time.Millisecond
)

// Deduplicator runs action at most once per event id.
type Deduplicator interface {
	ProcessOnce(ctx context.Context, eventID int64, action func() error) error
}

type pgDeduplicator struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresDeduplicator(pool *pgxpool.Pool, logger *zap.Logger) Deduplicator {
	return &pgDeduplicator{pool: pool, logger: logger}
}

func (d *pgDeduplicator) ProcessOnce(ctx context.Context, eventID int64, action func() error) error {
	return ProcessWithDeduplication(ctx, d.pool, d.logger, eventID, action)
}

// ProcessWithDeduplication records eventID in processed_events and runs action in the
// same transaction, so a failed action leaves the event eligible for redelivery.
func ProcessWithDeduplication(
	ctx context.Context,
	pool *pgxpool.Pool,
	logger *zap.Logger,
	eventID int64,
	action func() error,
) error {
	span := trace.SpanFromContext(ctx)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)

		err := tx.Rollback(shutdownCtx)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Error(
				shutdownCtx,
				logger,
				"Error rolling back transaction",
				zap.Error(err),
			)
		}
	}()

	query := `
		INSERT INTO processed_events (event_id)
		VALUES ($1)
	`

	_, err = tx.Exec(ctx, query, eventID)
	if err != nil {
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == "23505" {
			mylogger.Info(
				ctx,
				logger,
				"Event already processed, skipping",
				zap.Int64("event_id", eventID),
			)

			return nil
		}

		span.RecordError(err)
		return err
	}

	if err := retry(ctx, action); err != nil {
		mylogger.Error(ctx, logger, "Failed to send after retries", zap.Int64("event_id", eventID), zap.Error(err))

		return fmt.Errorf("failed to send: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			logger,
			"Failed to commit transaction",
			zap.Error(err),
		)

		return fmt.Errorf("failed to commit processed event: %w", err)
	}

	return nil
}

type redisDeduplicator struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewRedisDeduplicator keeps processed ids as keys with a ttl. Used when the
// notifier runs without Postgres.
func NewRedisDeduplicator(client *redis.Client, logger *zap.Logger, ttl time.Duration) Deduplicator {
	return &redisDeduplicator{client: client, logger: logger, ttl: ttl}
}

func (d *redisDeduplicator) ProcessOnce(ctx context.Context, eventID int64, action func() error) error {
	key := "processed_event:" + strconv.FormatInt(eventID, 10)

	claimed, err := d.client.SetNX(ctx, key, time.Now().Unix(), d.ttl).Result()
	if err != nil {
		return fmt.Errorf("claim event %d: %w", eventID, err)
	}

	if !claimed {
		mylogger.Info(ctx, d.logger, "Event already processed, skipping", zap.Int64("event_id", eventID))
		return nil
	}

	if err := retry(ctx, action); err != nil {
		if delErr := d.client.Del(context.WithoutCancel(ctx), key).Err(); delErr != nil {
			mylogger.Error(ctx, d.logger, "Failed to release event claim", zap.Int64("event_id", eventID), zap.Error(delErr))
		}

		return fmt.Errorf("failed to send: %w", err)
	}

	return nil
}

func retry(ctx context.Context, action func() error) error {
	var err error
	for i := 0; i < sendAttempts; i++ {
		if err = action(); err == nil {
			return nil
		}

		if i < sendAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}

	return err
}
