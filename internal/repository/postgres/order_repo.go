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
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const orderSelect = `
	SELECT o.order_id, o.customer_id, o.order_date, o.status, o.total_amount, o.payment_method,
		o.special_instructions, o.cancellation_reason,
		c.first_name || ' ' || c.last_name, c.phone, c.hostel, c.room_number,
		d.delivery_id, d.delivery_status
	FROM orders o
	JOIN customers c ON c.customer_id = o.customer_id
	LEFT JOIN delivery d ON d.order_id = o.order_id`

const orderItemSelect = `
	SELECT oi.order_item_id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price, oi.subtotal,
		p.name, s.name
	FROM order_items oi
	JOIN products p ON p.product_id = oi.product_id
	JOIN shops s ON s.shop_id = p.shop_id
	WHERE oi.order_id = $1
	ORDER BY oi.order_item_id`

type orderRepo struct {
	store  *Store
	tracer trace.Tracer
	logger *zap.Logger
}

func newOrderRepo(s *Store) *orderRepo {
	return &orderRepo{
		store:  s,
		logger: s.logger,
		tracer: otel.Tracer("repository/postgres/order_repo"),
	}
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID,
		&o.CustomerID,
		&o.OrderDate,
		&o.Status,
		&o.TotalAmount,
		&o.PaymentMethod,
		&o.SpecialInstructions,
		&o.CancellationReason,
		&o.CustomerName,
		&o.Phone,
		&o.Hostel,
		&o.RoomNumber,
		&o.DeliveryID,
		&o.DeliveryStatus,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) CreateOrder(ctx context.Context, input domain.CreateOrderInput) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.CreateOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer_id", input.CustomerID),
		attribute.Int("line_count", len(input.Products)),
	)

	if err := input.Validate(); err != nil {
		return nil, err
	}

	var orderID int64
	err := r.store.inTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE customer_id = $1)`, input.CustomerID).
			Scan(&exists); err != nil {
			return fmt.Errorf("error checking customer: %w", err)
		}
		if !exists {
			return repository.ErrCustomerNotFound
		}

		prices, err := r.lockPrices(ctx, tx, input.ProductIDs())
		if err != nil {
			return err
		}

		order, err := domain.NewOrder(input, prices, time.Now().UTC())
		if err != nil {
			return err
		}

		orderQuery := `
			INSERT INTO orders (customer_id, order_date, status, total_amount, payment_method, special_instructions)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING order_id;
		`
		if err := tx.QueryRow(
			ctx,
			orderQuery,
			order.CustomerID,
			order.OrderDate,
			order.Status,
			order.TotalAmount,
			order.PaymentMethod,
			order.SpecialInstructions,
		).Scan(&order.ID); err != nil {
			return fmt.Errorf("error inserting order: %w", err)
		}

		itemQuery := `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING order_item_id;
		`
		for i := range order.Items {
			item := &order.Items[i]
			item.OrderID = order.ID

			if err := tx.QueryRow(ctx, itemQuery, order.ID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal).
				Scan(&item.ID); err != nil {
				return fmt.Errorf("error inserting order item: %w", err)
			}
		}

		if _, err := tx.Exec(ctx, `INSERT INTO delivery (order_id, delivery_status) VALUES ($1, $2)`,
			order.ID, domain.DeliveryStatusPending); err != nil {
			return fmt.Errorf("error inserting delivery: %w", err)
		}

		event, err := domain.NewOrderCreatedEvent(order)
		if err != nil {
			return err
		}
		if err := r.store.outbox.SaveOutboxEvent(ctx, tx, event); err != nil {
			return err
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		span.RecordError(err)

		mylogger.Warn(
			ctx,
			r.logger,
			"Order creation rolled back",
			zap.Int64("customer_id", input.CustomerID),
			zap.Error(err),
		)

		return nil, err
	}

	span.SetAttributes(attribute.Int64("order_id", orderID))

	return r.GetByID(ctx, orderID)
}

// lockPrices reads current prices and keeps the product rows locked until commit,
// so a concurrent price change cannot slip between the snapshot and the insert.
func (r *orderRepo) lockPrices(ctx context.Context, tx pgx.Tx, ids []int64) (map[int64]decimal.Decimal, error) {
	rows, err := tx.Query(ctx, `
		SELECT product_id, price, is_available
		FROM products
		WHERE product_id = ANY($1)
		FOR SHARE`, ids)
	if err != nil {
		return nil, fmt.Errorf("error selecting products: %w", err)
	}
	defer rows.Close()

	prices := make(map[int64]decimal.Decimal, len(ids))
	available := make(map[int64]bool, len(ids))
	for rows.Next() {
		var (
			id          int64
			price       decimal.Decimal
			isAvailable bool
		)
		if err := rows.Scan(&id, &price, &isAvailable); err != nil {
			return nil, fmt.Errorf("error scanning product price: %w", err)
		}
		prices[id] = price
		available[id] = isAvailable
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range ids {
		if _, ok := prices[id]; !ok {
			return nil, fmt.Errorf("%w: %d", repository.ErrProductNotFound, id)
		}
		if !available[id] {
			return nil, fmt.Errorf("%w: %d", repository.ErrProductUnavailable, id)
		}
	}

	return prices, nil
}

func (r *orderRepo) CancelOrder(ctx context.Context, id int64, reason string) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.CancelOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", id),
	)

	err := r.store.inTx(ctx, func(tx pgx.Tx) error {
		var (
			status     domain.OrderStatus
			customerID int64
		)
		err := tx.QueryRow(ctx, `SELECT status, customer_id FROM orders WHERE order_id = $1 FOR UPDATE`, id).
			Scan(&status, &customerID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repository.ErrOrderNotFound
			}
			return fmt.Errorf("error locking order: %w", err)
		}

		if !status.CanTransitionTo(domain.OrderStatusCancelled) {
			return fmt.Errorf("%w: order is %s", domain.ErrInvalidOrderTransition, status)
		}

		var (
			deliveryID     int64
			deliveryStatus domain.DeliveryStatus
			hasDelivery    = true
		)
		err = tx.QueryRow(ctx, `SELECT delivery_id, delivery_status FROM delivery WHERE order_id = $1 FOR UPDATE`, id).
			Scan(&deliveryID, &deliveryStatus)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("error locking delivery: %w", err)
			}
			hasDelivery = false
		}

		if hasDelivery && !deliveryStatus.CanTransitionTo(domain.DeliveryStatusCancelled) {
			return fmt.Errorf("%w: delivery is %s", domain.ErrInvalidDeliveryTransition, deliveryStatus)
		}

		var reasonArg *string
		if reason != "" {
			reasonArg = &reason
		}

		if _, err := tx.Exec(ctx, `UPDATE orders SET status = $1, cancellation_reason = $2 WHERE order_id = $3`,
			domain.OrderStatusCancelled, reasonArg, id); err != nil {
			return fmt.Errorf("error cancelling order: %w", err)
		}

		if hasDelivery {
			if _, err := tx.Exec(ctx, `UPDATE delivery SET delivery_status = $1 WHERE delivery_id = $2`,
				domain.DeliveryStatusCancelled, deliveryID); err != nil {
				return fmt.Errorf("error cancelling delivery: %w", err)
			}
		}

		event, err := domain.NewOrderCancelledEvent(&domain.Order{
			ID:                 id,
			CustomerID:         customerID,
			CancellationReason: reasonArg,
		}, time.Now().UTC())
		if err != nil {
			return err
		}

		return r.store.outbox.SaveOutboxEvent(ctx, tx, event)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r *orderRepo) ChangeStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidOrderStatus, status)
	}

	if status == domain.OrderStatusCancelled {
		return r.CancelOrder(ctx, id, "")
	}

	ctx, span := r.tracer.Start(ctx, "OrderRepository.ChangeStatus")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", id),
		attribute.String("status", string(status)),
	)

	err := r.store.inTx(ctx, func(tx pgx.Tx) error {
		var (
			current    domain.OrderStatus
			customerID int64
		)
		err := tx.QueryRow(ctx, `SELECT status, customer_id FROM orders WHERE order_id = $1 FOR UPDATE`, id).
			Scan(&current, &customerID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repository.ErrOrderNotFound
			}
			return fmt.Errorf("error locking order: %w", err)
		}

		if !current.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s to %s", domain.ErrInvalidOrderTransition, current, status)
		}

		if _, err := tx.Exec(ctx, `UPDATE orders SET status = $1 WHERE order_id = $2`, status, id); err != nil {
			return fmt.Errorf("error updating order status: %w", err)
		}

		event, err := domain.NewOrderStatusChangedEvent(&domain.Order{ID: id, CustomerID: customerID, Status: status}, current, time.Now().UTC())
		if err != nil {
			return err
		}

		return r.store.outbox.SaveOutboxEvent(ctx, tx, event)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	order, err := scanOrder(r.store.pool.QueryRow(ctx, orderSelect+` WHERE o.order_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrOrderNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error get order by id",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error getting order: %w", err)
	}

	order.Items, err = r.items(ctx, r.store.pool, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return order, nil
}

func (r *orderRepo) List(ctx context.Context, statuses []domain.OrderStatus) ([]domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.List")
	defer span.End()

	query := orderSelect
	var args []interface{}

	if len(statuses) > 0 {
		names := make([]string, 0, len(statuses))
		for _, s := range statuses {
			names = append(names, string(s))
		}

		span.SetAttributes(attribute.StringSlice("statuses", names))

		query += ` WHERE o.status = ANY($1)`
		args = append(args, names)
	}
	query += ` ORDER BY o.order_date DESC, o.order_id DESC`

	rows, err := r.store.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Error listing orders", zap.Error(err))

		return nil, fmt.Errorf("error selecting orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("error scanning order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	span.SetAttributes(attribute.Int("result_count", len(orders)))

	return orders, nil
}

func (r *orderRepo) Items(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.Items")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
	)

	var exists bool
	if err := r.store.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE order_id = $1)`, orderID).
		Scan(&exists); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error checking order: %w", err)
	}
	if !exists {
		return nil, repository.ErrOrderNotFound
	}

	return r.items(ctx, r.store.pool, orderID)
}

func (r *orderRepo) items(ctx context.Context, q querier, orderID int64) ([]domain.OrderItem, error) {
	rows, err := q.Query(ctx, orderItemSelect, orderID)
	if err != nil {
		mylogger.Error(ctx, r.logger, "Error selecting order items", zap.Int64("order_id", orderID), zap.Error(err))
		return nil, fmt.Errorf("error selecting order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
			&item.ProductName,
			&item.ShopName,
		); err != nil {
			return nil, fmt.Errorf("error scanning order item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}
