package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type userRepo struct {
	store  *Store
	tracer trace.Tracer
	logger *zap.Logger
}

func newUserRepo(s *Store) *userRepo {
	return &userRepo{
		store:  s,
		logger: s.logger,
		tracer: otel.Tracer("repository/postgres/user_repo"),
	}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("username", user.Username),
	)

	query := `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING user_id, created_at;
	`

	created := *user
	err := r.store.pool.QueryRow(ctx, query, user.Username, user.PasswordHash, user.Role).
		Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return nil, repository.ErrUserAlreadyExists
		}

		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Failed to create user", zap.Error(err))

		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return &created, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.GetByUsername")
	defer span.End()

	return r.getOne(ctx, `WHERE username = $1`, username)
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	return r.getOne(ctx, `WHERE user_id = $1`, id)
}

func (r *userRepo) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	query := `SELECT user_id, username, password_hash, role, created_at FROM users ` + where

	var u domain.User
	if err := r.store.pool.QueryRow(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}

		mylogger.Error(ctx, r.logger, "Failed to find user", zap.Error(err))

		return nil, fmt.Errorf("error finding user: %w", err)
	}

	return &u, nil
}
