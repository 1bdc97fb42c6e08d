package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const deliverySelect = `
	SELECT d.delivery_id, d.order_id, d.employee_id, d.delivery_status, d.assigned_time, d.delivery_time,
		d.delivery_notes, d.delivery_location,
		o.order_date, o.total_amount, o.special_instructions, o.customer_id,
		c.first_name || ' ' || c.last_name, c.phone, c.hostel, c.room_number,
		e.first_name || ' ' || e.last_name, e.contact_number
	FROM delivery d
	JOIN orders o ON o.order_id = d.order_id
	JOIN customers c ON c.customer_id = o.customer_id
	LEFT JOIN employees e ON e.employee_id = d.employee_id`

type deliveryRepo struct {
	store  *Store
	tracer trace.Tracer
	logger *zap.Logger
}

func newDeliveryRepo(s *Store) *deliveryRepo {
	return &deliveryRepo{
		store:  s,
		logger: s.logger,
		tracer: otel.Tracer("repository/postgres/delivery_repo"),
	}
}

func scanDelivery(row pgx.Row) (*domain.Delivery, error) {
	var d domain.Delivery
	err := row.Scan(
		&d.ID,
		&d.OrderID,
		&d.EmployeeID,
		&d.Status,
		&d.AssignedTime,
		&d.DeliveryTime,
		&d.DeliveryNotes,
		&d.DeliveryLocation,
		&d.OrderDate,
		&d.TotalAmount,
		&d.SpecialInstructions,
		&d.CustomerID,
		&d.CustomerName,
		&d.CustomerPhone,
		&d.Hostel,
		&d.RoomNumber,
		&d.DeliveryPerson,
		&d.DeliveryPersonPhone,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deliveryRepo) GetByID(ctx context.Context, id int64) (*domain.Delivery, error) {
	ctx, span := r.tracer.Start(ctx, "DeliveryRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	d, err := scanDelivery(r.store.pool.QueryRow(ctx, deliverySelect+` WHERE d.delivery_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrDeliveryNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error get delivery by id",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error getting delivery: %w", err)
	}

	d.Items, err = r.store.orders.items(ctx, r.store.pool, d.OrderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return d, nil
}

func (r *deliveryRepo) List(ctx context.Context, filter domain.DeliveryFilter) ([]domain.Delivery, error) {
	ctx, span := r.tracer.Start(ctx, "DeliveryRepository.List")
	defer span.End()

	query := deliverySelect
	var args []interface{}

	if len(filter.Statuses) > 0 {
		names := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			names = append(names, string(s))
		}

		span.SetAttributes(attribute.StringSlice("statuses", names))

		query += ` WHERE d.delivery_status = ANY($1)`
		args = append(args, names)
	}
	query += ` ORDER BY d.assigned_time DESC NULLS LAST, d.delivery_id DESC`

	rows, err := r.store.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Error listing deliveries", zap.Error(err))

		return nil, fmt.Errorf("error selecting deliveries: %w", err)
	}
	defer rows.Close()

	deliveries := make([]domain.Delivery, 0)
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("error scanning delivery: %w", err)
		}
		deliveries = append(deliveries, *d)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating deliveries: %w", err)
	}

	span.SetAttributes(attribute.Int("result_count", len(deliveries)))

	return deliveries, nil
}

// lockDelivery reads the delivery row under FOR UPDATE together with the
// owning customer, which every delivery event carries.
func (r *deliveryRepo) lockDelivery(ctx context.Context, tx pgx.Tx, id int64) (*domain.Delivery, int64, error) {
	var (
		d          domain.Delivery
		customerID int64
	)

	err := tx.QueryRow(ctx, `
		SELECT d.delivery_id, d.order_id, d.employee_id, d.delivery_status, d.delivery_notes, o.customer_id
		FROM delivery d
		JOIN orders o ON o.order_id = d.order_id
		WHERE d.delivery_id = $1
		FOR UPDATE OF d`, id).
		Scan(&d.ID, &d.OrderID, &d.EmployeeID, &d.Status, &d.DeliveryNotes, &customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, repository.ErrDeliveryNotFound
		}
		return nil, 0, fmt.Errorf("error locking delivery: %w", err)
	}

	return &d, customerID, nil
}

func checkDeliveryTransition(d *domain.Delivery, next domain.DeliveryStatus) error {
	if !d.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s to %s", domain.ErrInvalidDeliveryTransition, d.Status, next)
	}
	return nil
}

func (r *deliveryRepo) Assign(ctx context.Context, id, employeeID int64) (*domain.Delivery, error) {
	ctx, span := r.tracer.Start(ctx, "DeliveryRepository.Assign")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("delivery_id", id),
		attribute.Int64("employee_id", employeeID),
	)

	err := r.store.inTx(ctx, func(tx pgx.Tx) error {
		d, customerID, err := r.lockDelivery(ctx, tx, id)
		if err != nil {
			return err
		}

		employee, err := getEmployee(ctx, tx, employeeID)
		if err != nil {
			return err
		}
		if !employee.Role.IsAssignable() {
			return fmt.Errorf("%w: role %s", repository.ErrEmployeeNotAssignable, employee.Role)
		}

		if err := checkDeliveryTransition(d, domain.DeliveryStatusAssigned); err != nil {
			return err
		}

		now := time.Now().UTC()
		if _, err := tx.Exec(ctx, `
			UPDATE delivery SET employee_id = $1, delivery_status = $2, assigned_time = $3
			WHERE delivery_id = $4`,
			employeeID, domain.DeliveryStatusAssigned, now, id); err != nil {
			return fmt.Errorf("error assigning delivery: %w", err)
		}

		d.EmployeeID = &employeeID
		d.Status = domain.DeliveryStatusAssigned

		return r.saveEvent(ctx, tx, domain.EventDeliveryAssigned, d, customerID, now)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r *deliveryRepo) Dispatch(ctx context.Context, id int64) (*domain.Delivery, error) {
	ctx, span := r.tracer.Start(ctx, "DeliveryRepository.Dispatch")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("delivery_id", id),
	)

	err := r.store.inTx(ctx, func(tx pgx.Tx) error {
		d, customerID, err := r.lockDelivery(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := checkDeliveryTransition(d, domain.DeliveryStatusOutForDelivery); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `UPDATE delivery SET delivery_status = $1 WHERE delivery_id = $2`,
			domain.DeliveryStatusOutForDelivery, id); err != nil {
			return fmt.Errorf("error dispatching delivery: %w", err)
		}

		d.Status = domain.DeliveryStatusOutForDelivery

		return r.saveEvent(ctx, tx, domain.EventDeliveryDispatched, d, customerID, time.Now().UTC())
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r *deliveryRepo) Complete(ctx context.Context, id int64, notes string) (*domain.Delivery, error) {
	ctx, span := r.tracer.Start(ctx, "DeliveryRepository.Complete")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("delivery_id", id),
	)

	err := r.store.inTx(ctx, func(tx pgx.Tx) error {
		d, customerID, err := r.lockDelivery(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := checkDeliveryTransition(d, domain.DeliveryStatusDelivered); err != nil {
			return err
		}

		now := time.Now().UTC()
		if _, err := tx.Exec(ctx, `
			UPDATE delivery SET delivery_status = $1, delivery_time = $2, delivery_notes = $3
			WHERE delivery_id = $4`,
			domain.DeliveryStatusDelivered, now, notes, id); err != nil {
			return fmt.Errorf("error completing delivery: %w", err)
		}

		d.Status = domain.DeliveryStatusDelivered
		d.DeliveryNotes = notes

		return r.saveEvent(ctx, tx, domain.EventDeliveryCompleted, d, customerID, now)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r *deliveryRepo) UpdateLocation(ctx context.Context, id int64, location string) (*domain.Delivery, error) {
	ctx, span := r.tracer.Start(ctx, "DeliveryRepository.UpdateLocation")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("delivery_id", id),
	)

	tag, err := r.store.pool.Exec(ctx, `UPDATE delivery SET delivery_location = $1 WHERE delivery_id = $2`, location, id)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Error updating delivery location", zap.Int64("id", id), zap.Error(err))

		return nil, fmt.Errorf("error updating delivery location: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return nil, repository.ErrDeliveryNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *deliveryRepo) CreateForOrder(ctx context.Context, orderID int64) (*domain.Delivery, error) {
	ctx, span := r.tracer.Start(ctx, "DeliveryRepository.CreateForOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
	)

	var id int64
	err := r.store.inTx(ctx, func(tx pgx.Tx) error {
		var orderStatus domain.OrderStatus
		err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE order_id = $1 FOR UPDATE`, orderID).Scan(&orderStatus)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repository.ErrOrderNotFound
			}
			return fmt.Errorf("error locking order: %w", err)
		}

		status := domain.DeliveryStatusPending
		if orderStatus == domain.OrderStatusCancelled {
			status = domain.DeliveryStatusCancelled
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO delivery (order_id, delivery_status)
			VALUES ($1, $2)
			ON CONFLICT (order_id) DO NOTHING
			RETURNING delivery_id`, orderID, status).Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repository.ErrDeliveryAlreadyExists
			}
			return fmt.Errorf("error inserting delivery: %w", err)
		}

		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r *deliveryRepo) saveEvent(ctx context.Context, tx pgx.Tx, eventType string, d *domain.Delivery, customerID int64, at time.Time) error {
	event, err := domain.NewDeliveryEvent(eventType, d, customerID, at)
	if err != nil {
		return err
	}
	return r.store.outbox.SaveOutboxEvent(ctx, tx, event)
}
