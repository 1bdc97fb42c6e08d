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

const customerColumns = `customer_id, first_name, last_name, email, phone, address, hostel, room_number, created_at`

type customerRepo struct {
	store  *Store
	tracer trace.Tracer
	logger *zap.Logger
}

func newCustomerRepo(s *Store) *customerRepo {
	return &customerRepo{
		store:  s,
		logger: s.logger,
		tracer: otel.Tracer("repository/postgres/customer_repo"),
	}
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Phone,
		&c.Address,
		&c.Hostel,
		&c.RoomNumber,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepo) Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	ctx, span := r.tracer.Start(ctx, "CustomerRepository.Create")
	defer span.End()

	query := `
		INSERT INTO customers (first_name, last_name, email, phone, address, hostel, room_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + customerColumns

	created, err := scanCustomer(r.store.pool.QueryRow(
		ctx,
		query,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.Phone,
		customer.Address,
		customer.Hostel,
		customer.RoomNumber,
	))
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return nil, repository.ErrCustomerAlreadyExists
		}

		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Error creating customer", zap.Error(err))

		return nil, fmt.Errorf("error creating customer: %w", err)
	}

	return created, nil
}

func (r *customerRepo) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	ctx, span := r.tracer.Start(ctx, "CustomerRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	customer, err := scanCustomer(r.store.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE customer_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrCustomerNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error get customer by id",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error getting customer: %w", err)
	}

	return customer, nil
}

func (r *customerRepo) List(ctx context.Context) ([]domain.Customer, error) {
	ctx, span := r.tracer.Start(ctx, "CustomerRepository.List")
	defer span.End()

	rows, err := r.store.pool.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY first_name, last_name, customer_id`)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Error listing customers", zap.Error(err))

		return nil, fmt.Errorf("error selecting customers: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("error scanning customer: %w", err)
		}
		customers = append(customers, *c)
	}

	return customers, rows.Err()
}
