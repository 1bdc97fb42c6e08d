package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type orderRepo struct{ s *Store }

// itemViews names every line's product and shop.
func (s *Store) itemViews(ctx context.Context, docs []orderDoc) (map[int64][]domain.OrderItem, error) {
	var productIDs []int64
	for _, d := range docs {
		for _, item := range d.Items {
			productIDs = append(productIDs, item.ProductID)
		}
	}

	var products []productDoc
	if len(productIDs) > 0 {
		if err := findAll(ctx, s.col(colProducts), inIDs(productIDs), nil, &products); err != nil {
			return nil, err
		}
	}

	productsByID := make(map[int64]productDoc, len(products))
	shopIDs := make([]int64, 0, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
		shopIDs = append(shopIDs, p.ShopID)
	}

	shops, err := s.shopNames(ctx, shopIDs)
	if err != nil {
		return nil, err
	}

	out := make(map[int64][]domain.OrderItem, len(docs))
	for _, d := range docs {
		items := d.items()
		for i := range items {
			p := productsByID[items[i].ProductID]
			items[i].ProductName = p.Name
			items[i].ShopName = shops[p.ShopID]
		}
		out[d.ID] = items
	}

	return out, nil
}

// orderViews joins customer and delivery data the way the order endpoints expose it.
func (s *Store) orderViews(ctx context.Context, docs []orderDoc, withItems bool) ([]domain.Order, error) {
	orderIDs := make([]int64, 0, len(docs))
	customerIDs := make([]int64, 0, len(docs))
	for _, d := range docs {
		orderIDs = append(orderIDs, d.ID)
		customerIDs = append(customerIDs, d.CustomerID)
	}

	customers := make(map[int64]customerDoc, len(docs))
	deliveries := make(map[int64]deliveryDoc, len(docs))
	if len(docs) > 0 {
		var cs []customerDoc
		if err := findAll(ctx, s.col(colCustomers), inIDs(customerIDs), nil, &cs); err != nil {
			return nil, err
		}
		for _, c := range cs {
			customers[c.ID] = c
		}

		var ds []deliveryDoc
		filter := bson.D{{Key: "order_id", Value: bson.D{{Key: "$in", Value: orderIDs}}}}
		if err := findAll(ctx, s.col(colDeliveries), filter, nil, &ds); err != nil {
			return nil, err
		}
		for _, d := range ds {
			deliveries[d.OrderID] = d
		}
	}

	var items map[int64][]domain.OrderItem
	if withItems {
		var err error
		if items, err = s.itemViews(ctx, docs); err != nil {
			return nil, err
		}
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, d := range docs {
		o := d.toDomain()

		c := customers[d.CustomerID]
		o.CustomerName = c.FirstName + " " + c.LastName
		o.Phone = c.Phone
		o.Hostel = c.Hostel
		o.RoomNumber = c.RoomNumber

		if del, ok := deliveries[d.ID]; ok {
			id, status := del.ID, domain.DeliveryStatus(del.Status)
			o.DeliveryID = &id
			o.DeliveryStatus = &status
		}

		if withItems {
			o.Items = items[d.ID]
		}
		orders = append(orders, o)
	}

	return orders, nil
}

func (s *Store) saveEvent(ctx context.Context, build func() (*outboxEvent, error)) error {
	event, err := build()
	if err != nil {
		return err
	}

	event.ID, err = s.nextID(ctx, colOutbox)
	if err != nil {
		return err
	}

	if _, err := s.col(colOutbox).InsertOne(ctx, event); err != nil {
		return fmt.Errorf("save outbox event: %w", err)
	}
	return nil
}

func (r orderRepo) CreateOrder(ctx context.Context, input domain.CreateOrderInput) (*domain.Order, error) {
	ctx, span := r.s.tracer.Start(ctx, "OrderRepository.CreateOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer_id", input.CustomerID),
		attribute.Int("line_count", len(input.Products)),
	)

	if err := input.Validate(); err != nil {
		return nil, err
	}

	var orderID int64
	err := r.s.inTx(ctx, func(sc mongo.SessionContext) error {
		found, err := exists(sc, r.s.col(colCustomers), byID(input.CustomerID))
		if err != nil {
			return err
		}
		if !found {
			return repository.ErrCustomerNotFound
		}

		ids := input.ProductIDs()
		var products []productDoc
		if err := findAll(sc, r.s.col(colProducts), inIDs(ids), nil, &products); err != nil {
			return err
		}

		productsByID := make(map[int64]productDoc, len(products))
		for _, p := range products {
			productsByID[p.ID] = p
		}

		prices := make(map[int64]decimal.Decimal, len(ids))
		for _, id := range ids {
			p, ok := productsByID[id]
			if !ok {
				return fmt.Errorf("%w: %d", repository.ErrProductNotFound, id)
			}
			if !p.IsAvailable {
				return fmt.Errorf("%w: %d", repository.ErrProductUnavailable, id)
			}
			prices[id] = fromDecimal128(p.Price)
		}

		order, err := domain.NewOrder(input, prices, now())
		if err != nil {
			return err
		}

		if order.ID, err = r.s.nextID(sc, colOrders); err != nil {
			return err
		}

		firstItem, err := r.s.reserveIDs(sc, "order_items", len(order.Items))
		if err != nil {
			return err
		}
		for i := range order.Items {
			order.Items[i].ID = firstItem + int64(i)
			order.Items[i].OrderID = order.ID
		}

		doc, err := newOrderDoc(order)
		if err != nil {
			return err
		}
		if _, err := r.s.col(colOrders).InsertOne(sc, doc); err != nil {
			return fmt.Errorf("error inserting order: %w", err)
		}

		deliveryID, err := r.s.nextID(sc, colDeliveries)
		if err != nil {
			return err
		}
		delivery := deliveryDoc{ID: deliveryID, OrderID: order.ID, Status: string(domain.DeliveryStatusPending)}
		if _, err := r.s.col(colDeliveries).InsertOne(sc, delivery); err != nil {
			return fmt.Errorf("error inserting delivery: %w", err)
		}

		if err := r.s.saveEvent(sc, wrapEvent(domain.NewOrderCreatedEvent(order))); err != nil {
			return err
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		span.RecordError(err)

		mylogger.Warn(
			ctx,
			r.s.logger,
			"Order creation rolled back",
			zap.Int64("customer_id", input.CustomerID),
			zap.Error(err),
		)

		return nil, err
	}

	return r.GetByID(ctx, orderID)
}

func (r orderRepo) CancelOrder(ctx context.Context, id int64, reason string) (*domain.Order, error) {
	ctx, span := r.s.tracer.Start(ctx, "OrderRepository.CancelOrder")
	defer span.End()

	span.SetAttributes(attribute.Int64("order_id", id))

	err := r.s.inTx(ctx, func(sc mongo.SessionContext) error {
		var order orderDoc
		if err := findOne(sc, r.s.col(colOrders), byID(id), &order, repository.ErrOrderNotFound); err != nil {
			return err
		}

		status := domain.OrderStatus(order.Status)
		if !status.CanTransitionTo(domain.OrderStatusCancelled) {
			return fmt.Errorf("%w: order is %s", domain.ErrInvalidOrderTransition, status)
		}

		var delivery deliveryDoc
		hasDelivery := true
		if err := findOne(sc, r.s.col(colDeliveries), bson.D{{Key: "order_id", Value: id}}, &delivery, repository.ErrDeliveryNotFound); err != nil {
			if !errors.Is(err, repository.ErrDeliveryNotFound) {
				return err
			}
			hasDelivery = false
		}

		if hasDelivery {
			ds := domain.DeliveryStatus(delivery.Status)
			if !ds.CanTransitionTo(domain.DeliveryStatusCancelled) {
				return fmt.Errorf("%w: delivery is %s", domain.ErrInvalidDeliveryTransition, ds)
			}
		}

		var reasonArg *string
		if reason != "" {
			reasonArg = &reason
		}

		_, err := r.s.col(colOrders).UpdateByID(sc, id, bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: string(domain.OrderStatusCancelled)},
			{Key: "cancellation_reason", Value: reasonArg},
		}}})
		if err != nil {
			return fmt.Errorf("error cancelling order: %w", err)
		}

		if hasDelivery {
			_, err := r.s.col(colDeliveries).UpdateByID(sc, delivery.ID, bson.D{{Key: "$set", Value: bson.D{
				{Key: "delivery_status", Value: string(domain.DeliveryStatusCancelled)},
			}}})
			if err != nil {
				return fmt.Errorf("error cancelling delivery: %w", err)
			}
		}

		cancelled := order.toDomain()
		cancelled.CancellationReason = reasonArg
		return r.s.saveEvent(sc, wrapEvent(domain.NewOrderCancelledEvent(&cancelled, now())))
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r orderRepo) ChangeStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidOrderStatus, status)
	}

	if status == domain.OrderStatusCancelled {
		return r.CancelOrder(ctx, id, "")
	}

	ctx, span := r.s.tracer.Start(ctx, "OrderRepository.ChangeStatus")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", id),
		attribute.String("status", string(status)),
	)

	err := r.s.inTx(ctx, func(sc mongo.SessionContext) error {
		var order orderDoc
		if err := findOne(sc, r.s.col(colOrders), byID(id), &order, repository.ErrOrderNotFound); err != nil {
			return err
		}

		from := domain.OrderStatus(order.Status)
		if !from.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s to %s", domain.ErrInvalidOrderTransition, from, status)
		}

		_, err := r.s.col(colOrders).UpdateByID(sc, id, bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: string(status)}}}})
		if err != nil {
			return fmt.Errorf("error updating order status: %w", err)
		}

		changed := order.toDomain()
		changed.Status = status
		return r.s.saveEvent(sc, wrapEvent(domain.NewOrderStatusChangedEvent(&changed, from, now())))
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r orderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	ctx, span := r.s.tracer.Start(ctx, "OrderRepository.GetByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("id", id))

	var doc orderDoc
	if err := findOne(ctx, r.s.col(colOrders), byID(id), &doc, repository.ErrOrderNotFound); err != nil {
		return nil, err
	}

	orders, err := r.s.orderViews(ctx, []orderDoc{doc}, true)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &orders[0], nil
}

func (r orderRepo) List(ctx context.Context, statuses []domain.OrderStatus) ([]domain.Order, error) {
	ctx, span := r.s.tracer.Start(ctx, "OrderRepository.List")
	defer span.End()

	filter := bson.D{}
	if len(statuses) > 0 {
		names := make([]string, 0, len(statuses))
		for _, st := range statuses {
			names = append(names, string(st))
		}
		span.SetAttributes(attribute.StringSlice("statuses", names))
		filter = bson.D{{Key: "status", Value: bson.D{{Key: "$in", Value: names}}}}
	}

	var docs []orderDoc
	opts := options.Find().SetSort(bson.D{{Key: "order_date", Value: -1}, {Key: "_id", Value: -1}})
	if err := findAll(ctx, r.s.col(colOrders), filter, opts, &docs); err != nil {
		span.RecordError(err)
		return nil, err
	}

	return r.s.orderViews(ctx, docs, false)
}

func (r orderRepo) Items(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	var doc orderDoc
	if err := findOne(ctx, r.s.col(colOrders), byID(orderID), &doc, repository.ErrOrderNotFound); err != nil {
		return nil, err
	}

	items, err := r.s.itemViews(ctx, []orderDoc{doc})
	if err != nil {
		return nil, err
	}
	return items[orderID], nil
}
