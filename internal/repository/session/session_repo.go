package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const keyPrefix = "session:"

type SessionRepository interface {
	Save(ctx context.Context, session *domain.RefreshSession) error
	Get(ctx context.Context, id string) (*domain.RefreshSession, error)
	Delete(ctx context.Context, id string) error
}

type sessionRepository struct {
	client *redis.Client
	logger *zap.Logger
	tracer trace.Tracer
}

func NewSessionRepository(client *redis.Client, logger *zap.Logger) SessionRepository {
	return &sessionRepository{
		client: client,
		logger: logger,
		tracer: otel.Tracer("repository/session"),
	}
}

func key(id string) string {
	return keyPrefix + id
}

// Save stores the session until its ExpiresAt.
func (r *sessionRepository) Save(ctx context.Context, session *domain.RefreshSession) error {
	ctx, span := r.tracer.Start(ctx, "SessionRepository.Save")
	defer span.End()

	span.SetAttributes(attribute.Int64("user.id", session.UserID))

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.ID)
	}

	data, err := json.Marshal(session)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := r.client.Set(ctx, key(session.ID), data, ttl).Err(); err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to save session", zap.Int64("user_id", session.UserID), zap.Error(err))
		return fmt.Errorf("save session: %w", err)
	}

	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.RefreshSession, error) {
	ctx, span := r.tracer.Start(ctx, "SessionRepository.Get")
	defer span.End()

	val, err := r.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrSessionNotFound
		}

		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to get session", zap.Error(err))
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session domain.RefreshSession
	if err := json.Unmarshal(val, &session); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(ctx, "SessionRepository.Delete")
	defer span.End()

	n, err := r.client.Del(ctx, key(id)).Result()
	if err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to delete session", zap.Error(err))
		return fmt.Errorf("delete session: %w", err)
	}

	if n == 0 {
		return repository.ErrSessionNotFound
	}

	return nil
}
