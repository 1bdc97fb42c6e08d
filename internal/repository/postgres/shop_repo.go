package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const shopColumns = `shop_id, name, shop_type, location, contact_number, opening_time, closing_time, description`

type shopRepo struct {
	store  *Store
	tracer trace.Tracer
	logger *zap.Logger
}

func newShopRepo(s *Store) *shopRepo {
	return &shopRepo{
		store:  s,
		logger: s.logger,
		tracer: otel.Tracer("repository/postgres/shop_repo"),
	}
}

func scanShop(row pgx.Row) (*domain.Shop, error) {
	var s domain.Shop
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.ShopType,
		&s.Location,
		&s.ContactNumber,
		&s.OpeningTime,
		&s.ClosingTime,
		&s.Description,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *shopRepo) Create(ctx context.Context, shop *domain.Shop) (*domain.Shop, error) {
	ctx, span := r.tracer.Start(ctx, "ShopRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("name", shop.Name),
	)

	query := `
		INSERT INTO shops (name, shop_type, location, contact_number, opening_time, closing_time, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + shopColumns

	created, err := scanShop(r.store.pool.QueryRow(
		ctx,
		query,
		shop.Name,
		shop.ShopType,
		shop.Location,
		shop.ContactNumber,
		shop.OpeningTime,
		shop.ClosingTime,
		shop.Description,
	))
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error creating shop",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error creating shop: %w", err)
	}

	return created, nil
}

func (r *shopRepo) GetByID(ctx context.Context, id int64) (*domain.Shop, error) {
	ctx, span := r.tracer.Start(ctx, "ShopRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `SELECT ` + shopColumns + ` FROM shops WHERE shop_id = $1`

	shop, err := scanShop(r.store.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrShopNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error get shop by id",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error getting shop: %w", err)
	}

	return shop, nil
}

func (r *shopRepo) List(ctx context.Context) ([]domain.Shop, error) {
	ctx, span := r.tracer.Start(ctx, "ShopRepository.List")
	defer span.End()

	query := `SELECT ` + shopColumns + ` FROM shops ORDER BY name, shop_id`

	rows, err := r.store.pool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Error listing shops", zap.Error(err))

		return nil, fmt.Errorf("error selecting shops: %w", err)
	}
	defer rows.Close()

	shops := make([]domain.Shop, 0)
	for rows.Next() {
		shop, err := scanShop(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("error scanning shop: %w", err)
		}
		shops = append(shops, *shop)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating shops: %w", err)
	}

	span.SetAttributes(attribute.Int("result_count", len(shops)))

	return shops, nil
}

func (r *shopRepo) Update(ctx context.Context, id int64, input *domain.UpdateShopInput) (*domain.Shop, error) {
	ctx, span := r.tracer.Start(ctx, "ShopRepository.Update")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	if input.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	var args []interface{}
	var updates []string
	argId := 1

	add := func(column string, value interface{}) {
		updates = append(updates, fmt.Sprintf("%s = $%d", column, argId))
		args = append(args, value)
		argId++
	}

	if input.Name != nil {
		add("name", *input.Name)
	}
	if input.ShopType != nil {
		add("shop_type", *input.ShopType)
	}
	if input.Location != nil {
		add("location", *input.Location)
	}
	if input.ContactNumber != nil {
		add("contact_number", *input.ContactNumber)
	}
	if input.OpeningTime != nil {
		add("opening_time", *input.OpeningTime)
	}
	if input.ClosingTime != nil {
		add("closing_time", *input.ClosingTime)
	}
	if input.Description != nil {
		add("description", *input.Description)
	}

	query := `UPDATE shops SET ` + strings.Join(updates, ", ") +
		fmt.Sprintf(" WHERE shop_id = $%d RETURNING ", argId) + shopColumns
	args = append(args, id)

	shop, err := scanShop(r.store.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrShopNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to update shop",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error updating shop: %w", err)
	}

	return shop, nil
}

func (r *shopRepo) Delete(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "ShopRepository.Delete")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	commandTag, err := r.store.pool.Exec(ctx, `DELETE FROM shops WHERE shop_id = $1`, id)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return repository.ErrReferencedByOrders
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error deleting shop by id",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error deleting shop by id: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return repository.ErrShopNotFound
	}

	return nil
}
