package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"go.opentelemetry.io/otel/attribute"
)

type deliveryRepo struct{ s *Store }

// deliveryView joins order, customer and employee columns. Callers hold s.mu.
func (s *Store) deliveryView(d domain.Delivery, withItems bool) domain.Delivery {
	o := s.orders[d.OrderID]
	c := s.customers[o.CustomerID]

	d.OrderDate = ptr(o.OrderDate)
	d.TotalAmount = ptr(o.TotalAmount)
	d.SpecialInstructions = o.SpecialInstructions
	d.CustomerID = o.CustomerID
	d.CustomerName = c.FullName()
	d.CustomerPhone = c.Phone
	d.Hostel = c.Hostel
	d.RoomNumber = c.RoomNumber

	d.DeliveryPerson, d.DeliveryPersonPhone = nil, nil
	if d.EmployeeID != nil {
		d.EmployeeID = ptr(*d.EmployeeID)
		if e, ok := s.employees[*d.EmployeeID]; ok {
			d.DeliveryPerson = ptr(e.FullName())
			d.DeliveryPersonPhone = ptr(e.ContactNumber)
		}
	}
	if d.AssignedTime != nil {
		d.AssignedTime = ptr(*d.AssignedTime)
	}
	if d.DeliveryTime != nil {
		d.DeliveryTime = ptr(*d.DeliveryTime)
	}

	d.Items = nil
	if withItems {
		d.Items = s.itemsView(d.OrderID)
	}

	return d
}

func (r deliveryRepo) GetByID(_ context.Context, id int64) (*domain.Delivery, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.deliveries[id]
	if !ok {
		return nil, repository.ErrDeliveryNotFound
	}

	view := r.s.deliveryView(d, true)
	return &view, nil
}

func (r deliveryRepo) List(_ context.Context, filter domain.DeliveryFilter) ([]domain.Delivery, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := make(map[domain.DeliveryStatus]struct{}, len(filter.Statuses))
	for _, status := range filter.Statuses {
		wanted[status] = struct{}{}
	}

	deliveries := make([]domain.Delivery, 0)
	for _, d := range r.s.deliveries {
		if len(wanted) > 0 {
			if _, ok := wanted[d.Status]; !ok {
				continue
			}
		}
		deliveries = append(deliveries, r.s.deliveryView(d, false))
	}
	sort.Slice(deliveries, func(i, j int) bool {
		return domain.DeliveryLess(&deliveries[i], &deliveries[j])
	})

	return deliveries, nil
}

// transition applies next to the delivery under the write lock and queues eventType.
func (r deliveryRepo) transition(
	ctx context.Context,
	name string,
	id int64,
	next domain.DeliveryStatus,
	eventType string,
	mutate func(d *domain.Delivery, now time.Time) error,
) (*domain.Delivery, error) {
	_, span := r.s.tracer.Start(ctx, "DeliveryRepository."+name)
	defer span.End()

	span.SetAttributes(attribute.Int64("delivery_id", id))

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.deliveries[id]
	if !ok {
		return nil, repository.ErrDeliveryNotFound
	}

	now := timeNow()
	if mutate != nil {
		if err := mutate(&d, now); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	if !d.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", domain.ErrInvalidDeliveryTransition, d.Status, next)
	}
	d.Status = next

	event, err := domain.NewDeliveryEvent(eventType, &d, r.s.orders[d.OrderID].CustomerID, now)
	if err := r.s.appendEvent(event, err); err != nil {
		return nil, err
	}
	r.s.deliveries[id] = d

	view := r.s.deliveryView(d, true)
	return &view, nil
}

func (r deliveryRepo) Assign(ctx context.Context, id, employeeID int64) (*domain.Delivery, error) {
	return r.transition(ctx, "Assign", id, domain.DeliveryStatusAssigned, domain.EventDeliveryAssigned,
		func(d *domain.Delivery, now time.Time) error {
			e, ok := r.s.employees[employeeID]
			if !ok {
				return repository.ErrEmployeeNotFound
			}
			if !e.Role.IsAssignable() {
				return fmt.Errorf("%w: role %s", repository.ErrEmployeeNotAssignable, e.Role)
			}
			d.EmployeeID = ptr(employeeID)
			d.AssignedTime = ptr(now)
			return nil
		})
}

func (r deliveryRepo) Dispatch(ctx context.Context, id int64) (*domain.Delivery, error) {
	return r.transition(ctx, "Dispatch", id, domain.DeliveryStatusOutForDelivery, domain.EventDeliveryDispatched, nil)
}

func (r deliveryRepo) Complete(ctx context.Context, id int64, notes string) (*domain.Delivery, error) {
	return r.transition(ctx, "Complete", id, domain.DeliveryStatusDelivered, domain.EventDeliveryCompleted,
		func(d *domain.Delivery, now time.Time) error {
			d.DeliveryTime = ptr(now)
			d.DeliveryNotes = notes
			return nil
		})
}

func (r deliveryRepo) UpdateLocation(_ context.Context, id int64, location string) (*domain.Delivery, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.deliveries[id]
	if !ok {
		return nil, repository.ErrDeliveryNotFound
	}

	d.DeliveryLocation = location
	r.s.deliveries[id] = d

	view := r.s.deliveryView(d, true)
	return &view, nil
}

func (r deliveryRepo) CreateForOrder(_ context.Context, orderID int64) (*domain.Delivery, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	order, ok := r.s.orders[orderID]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	if _, exists := r.s.deliveryForOrder(orderID); exists {
		return nil, repository.ErrDeliveryAlreadyExists
	}

	r.s.seq.delivery++
	d := domain.NewPendingDelivery(orderID)
	d.ID = r.s.seq.delivery
	if order.Status == domain.OrderStatusCancelled {
		d.Status = domain.DeliveryStatusCancelled
	}
	r.s.deliveries[d.ID] = *d

	view := r.s.deliveryView(*d, true)
	return &view, nil
}
