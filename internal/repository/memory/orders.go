package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

type orderRepo struct{ s *Store }

// itemsView copies the order's lines with product and shop names. Callers hold s.mu.
func (s *Store) itemsView(orderID int64) []domain.OrderItem {
	stored := s.items[orderID]
	items := make([]domain.OrderItem, 0, len(stored))
	for _, item := range stored {
		p := s.products[item.ProductID]
		item.ProductName = p.Name
		item.ShopName = s.shops[p.ShopID].Name
		items = append(items, item)
	}
	return items
}

// orderView joins customer and delivery columns onto a stored order. Callers hold s.mu.
func (s *Store) orderView(o domain.Order) domain.Order {
	c := s.customers[o.CustomerID]
	o.CustomerName = c.FullName()
	o.Phone = c.Phone
	o.Hostel = c.Hostel
	o.RoomNumber = c.RoomNumber

	o.DeliveryID, o.DeliveryStatus = nil, nil
	if d, ok := s.deliveryForOrder(o.ID); ok {
		o.DeliveryID = ptr(d.ID)
		o.DeliveryStatus = ptr(d.Status)
	}

	if o.CancellationReason != nil {
		o.CancellationReason = ptr(*o.CancellationReason)
	}
	o.Items = s.itemsView(o.ID)

	return o
}

func (r orderRepo) CreateOrder(ctx context.Context, input domain.CreateOrderInput) (*domain.Order, error) {
	_, span := r.s.tracer.Start(ctx, "OrderRepository.CreateOrder")
	defer span.End()

	span.SetAttributes(attribute.Int64("customer_id", input.CustomerID))

	if err := input.Validate(); err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.customers[input.CustomerID]; !ok {
		return nil, repository.ErrCustomerNotFound
	}

	prices := make(map[int64]decimal.Decimal)
	for _, id := range input.ProductIDs() {
		p, ok := r.s.products[id]
		if !ok {
			return nil, fmt.Errorf("%w: %d", repository.ErrProductNotFound, id)
		}
		if !p.IsAvailable {
			return nil, fmt.Errorf("%w: %d", repository.ErrProductUnavailable, id)
		}
		prices[id] = p.Price
	}

	order, err := domain.NewOrder(input, prices, timeNow())
	if err != nil {
		return nil, err
	}

	r.s.seq.order++
	order.ID = r.s.seq.order
	for i := range order.Items {
		r.s.seq.item++
		order.Items[i].ID = r.s.seq.item
		order.Items[i].OrderID = order.ID
	}

	event, err := domain.NewOrderCreatedEvent(order)
	if err := r.s.appendEvent(event, err); err != nil {
		return nil, err
	}

	r.s.items[order.ID] = order.Items
	order.Items = nil
	r.s.orders[order.ID] = *order

	r.s.seq.delivery++
	delivery := domain.NewPendingDelivery(order.ID)
	delivery.ID = r.s.seq.delivery
	r.s.deliveries[delivery.ID] = *delivery

	view := r.s.orderView(*order)
	return &view, nil
}

func (r orderRepo) CancelOrder(ctx context.Context, id int64, reason string) (*domain.Order, error) {
	_, span := r.s.tracer.Start(ctx, "OrderRepository.CancelOrder")
	defer span.End()

	span.SetAttributes(attribute.Int64("order_id", id))

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.cancel(id, reason)
}

// cancel runs with s.mu held.
func (r orderRepo) cancel(id int64, reason string) (*domain.Order, error) {
	order, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}

	if !order.Status.CanTransitionTo(domain.OrderStatusCancelled) {
		return nil, fmt.Errorf("%w: order is %s", domain.ErrInvalidOrderTransition, order.Status)
	}

	delivery, hasDelivery := r.s.deliveryForOrder(id)
	if hasDelivery && !delivery.Status.CanTransitionTo(domain.DeliveryStatusCancelled) {
		return nil, fmt.Errorf("%w: delivery is %s", domain.ErrInvalidDeliveryTransition, delivery.Status)
	}

	order.Status = domain.OrderStatusCancelled
	order.CancellationReason = nil
	if reason != "" {
		order.CancellationReason = ptr(reason)
	}

	event, err := domain.NewOrderCancelledEvent(&order, timeNow())
	if err := r.s.appendEvent(event, err); err != nil {
		return nil, err
	}

	r.s.orders[id] = order
	if hasDelivery {
		delivery.Status = domain.DeliveryStatusCancelled
		r.s.deliveries[delivery.ID] = delivery
	}

	view := r.s.orderView(order)
	return &view, nil
}

func (r orderRepo) ChangeStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidOrderStatus, status)
	}

	_, span := r.s.tracer.Start(ctx, "OrderRepository.ChangeStatus")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", id),
		attribute.String("status", string(status)),
	)

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if status == domain.OrderStatusCancelled {
		return r.cancel(id, "")
	}

	order, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}

	from := order.Status
	if !from.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s to %s", domain.ErrInvalidOrderTransition, from, status)
	}
	order.Status = status

	event, err := domain.NewOrderStatusChangedEvent(&order, from, timeNow())
	if err := r.s.appendEvent(event, err); err != nil {
		return nil, err
	}
	r.s.orders[id] = order

	view := r.s.orderView(order)
	return &view, nil
}

func (r orderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	order, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}

	view := r.s.orderView(order)
	return &view, nil
}

func (r orderRepo) List(_ context.Context, statuses []domain.OrderStatus) ([]domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := make(map[domain.OrderStatus]struct{}, len(statuses))
	for _, status := range statuses {
		wanted[status] = struct{}{}
	}

	orders := make([]domain.Order, 0)
	for _, o := range r.s.orders {
		if len(wanted) > 0 {
			if _, ok := wanted[o.Status]; !ok {
				continue
			}
		}

		view := r.s.orderView(o)
		view.Items = nil
		orders = append(orders, view)
	}
	sort.Slice(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if !a.OrderDate.Equal(b.OrderDate) {
			return a.OrderDate.After(b.OrderDate)
		}
		return a.ID > b.ID
	})

	return orders, nil
}

func (r orderRepo) Items(_ context.Context, orderID int64) ([]domain.OrderItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if _, ok := r.s.orders[orderID]; !ok {
		return nil, repository.ErrOrderNotFound
	}
	return r.s.itemsView(orderID), nil
}
