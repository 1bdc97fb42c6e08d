package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
)

type deliveryRepo struct{ s *Store }

func (s *Store) deliveryViews(ctx context.Context, docs []deliveryDoc, withItems bool) ([]domain.Delivery, error) {
	orderIDs := make([]int64, 0, len(docs))
	employeeIDs := make([]int64, 0)
	for _, d := range docs {
		orderIDs = append(orderIDs, d.OrderID)
		if d.EmployeeID != nil {
			employeeIDs = append(employeeIDs, *d.EmployeeID)
		}
	}

	orders := make(map[int64]orderDoc, len(docs))
	customers := make(map[int64]customerDoc, len(docs))
	employees := make(map[int64]employeeDoc, len(employeeIDs))

	var orderDocs []orderDoc
	if len(orderIDs) > 0 {
		if err := findAll(ctx, s.col(colOrders), inIDs(orderIDs), nil, &orderDocs); err != nil {
			return nil, err
		}

		customerIDs := make([]int64, 0, len(orderDocs))
		for _, o := range orderDocs {
			orders[o.ID] = o
			customerIDs = append(customerIDs, o.CustomerID)
		}

		var cs []customerDoc
		if err := findAll(ctx, s.col(colCustomers), inIDs(customerIDs), nil, &cs); err != nil {
			return nil, err
		}
		for _, c := range cs {
			customers[c.ID] = c
		}
	}

	if len(employeeIDs) > 0 {
		var es []employeeDoc
		if err := findAll(ctx, s.col(colEmployees), inIDs(employeeIDs), nil, &es); err != nil {
			return nil, err
		}
		for _, e := range es {
			employees[e.ID] = e
		}
	}

	var items map[int64][]domain.OrderItem
	if withItems {
		var err error
		if items, err = s.itemViews(ctx, orderDocs); err != nil {
			return nil, err
		}
	}

	out := make([]domain.Delivery, 0, len(docs))
	for _, doc := range docs {
		d := doc.toDomain()

		o := orders[doc.OrderID]
		orderDate := o.OrderDate.UTC()
		total := fromDecimal128(o.TotalAmount)
		d.OrderDate = &orderDate
		d.TotalAmount = &total
		d.SpecialInstructions = o.SpecialInstructions
		d.CustomerID = o.CustomerID

		c := customers[o.CustomerID]
		d.CustomerName = c.FirstName + " " + c.LastName
		d.CustomerPhone = c.Phone
		d.Hostel = c.Hostel
		d.RoomNumber = c.RoomNumber

		if doc.EmployeeID != nil {
			if e, ok := employees[*doc.EmployeeID]; ok {
				name, phone := e.FirstName+" "+e.LastName, e.ContactNumber
				d.DeliveryPerson = &name
				d.DeliveryPersonPhone = &phone
			}
		}

		if withItems {
			d.Items = items[doc.OrderID]
		}
		out = append(out, d)
	}

	return out, nil
}

func (r deliveryRepo) GetByID(ctx context.Context, id int64) (*domain.Delivery, error) {
	ctx, span := r.s.tracer.Start(ctx, "DeliveryRepository.GetByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("id", id))

	var doc deliveryDoc
	if err := findOne(ctx, r.s.col(colDeliveries), byID(id), &doc, repository.ErrDeliveryNotFound); err != nil {
		return nil, err
	}

	views, err := r.s.deliveryViews(ctx, []deliveryDoc{doc}, true)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &views[0], nil
}

func (r deliveryRepo) List(ctx context.Context, filter domain.DeliveryFilter) ([]domain.Delivery, error) {
	ctx, span := r.s.tracer.Start(ctx, "DeliveryRepository.List")
	defer span.End()

	query := bson.D{}
	if len(filter.Statuses) > 0 {
		names := make([]string, 0, len(filter.Statuses))
		for _, st := range filter.Statuses {
			names = append(names, string(st))
		}
		span.SetAttributes(attribute.StringSlice("statuses", names))
		query = bson.D{{Key: "delivery_status", Value: bson.D{{Key: "$in", Value: names}}}}
	}

	// Nulls sort lowest, so a descending sort leaves unassigned deliveries last.
	opts := options.Find().SetSort(bson.D{{Key: "assigned_time", Value: -1}, {Key: "_id", Value: -1}})

	var docs []deliveryDoc
	if err := findAll(ctx, r.s.col(colDeliveries), query, opts, &docs); err != nil {
		span.RecordError(err)
		return nil, err
	}

	return r.s.deliveryViews(ctx, docs, false)
}

// transition loads the delivery inside a transaction, lets check validate the
// change and fill the extra fields to $set, then moves it to next and saves eventType.
func (r deliveryRepo) transition(
	ctx context.Context,
	name string,
	id int64,
	next domain.DeliveryStatus,
	eventType string,
	check func(sc mongo.SessionContext, d *domain.Delivery, at time.Time) (bson.D, error),
) (*domain.Delivery, error) {
	ctx, span := r.s.tracer.Start(ctx, "DeliveryRepository."+name)
	defer span.End()

	span.SetAttributes(attribute.Int64("delivery_id", id))

	err := r.s.inTx(ctx, func(sc mongo.SessionContext) error {
		var doc deliveryDoc
		if err := findOne(sc, r.s.col(colDeliveries), byID(id), &doc, repository.ErrDeliveryNotFound); err != nil {
			return err
		}

		d := doc.toDomain()
		at := now()

		set := bson.D{}
		if check != nil {
			extra, err := check(sc, &d, at)
			if err != nil {
				return err
			}
			set = append(set, extra...)
		}

		if !d.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s to %s", domain.ErrInvalidDeliveryTransition, d.Status, next)
		}
		d.Status = next
		set = append(set, bson.E{Key: "delivery_status", Value: string(next)})

		if _, err := r.s.col(colDeliveries).UpdateByID(sc, id, bson.D{{Key: "$set", Value: set}}); err != nil {
			return fmt.Errorf("error updating delivery: %w", err)
		}

		var order orderDoc
		if err := findOne(sc, r.s.col(colOrders), byID(d.OrderID), &order, repository.ErrOrderNotFound); err != nil {
			return err
		}

		return r.s.saveEvent(sc, wrapEvent(domain.NewDeliveryEvent(eventType, &d, order.CustomerID, at)))
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r deliveryRepo) Assign(ctx context.Context, id, employeeID int64) (*domain.Delivery, error) {
	return r.transition(ctx, "Assign", id, domain.DeliveryStatusAssigned, domain.EventDeliveryAssigned,
		func(sc mongo.SessionContext, d *domain.Delivery, at time.Time) (bson.D, error) {
			var e employeeDoc
			if err := findOne(sc, r.s.col(colEmployees), byID(employeeID), &e, repository.ErrEmployeeNotFound); err != nil {
				return nil, err
			}

			role := domain.EmployeeRole(e.Role)
			if !role.IsAssignable() {
				return nil, fmt.Errorf("%w: role %s", repository.ErrEmployeeNotAssignable, role)
			}

			d.EmployeeID = &employeeID
			return bson.D{
				{Key: "employee_id", Value: employeeID},
				{Key: "assigned_time", Value: at},
			}, nil
		})
}

func (r deliveryRepo) Dispatch(ctx context.Context, id int64) (*domain.Delivery, error) {
	return r.transition(ctx, "Dispatch", id, domain.DeliveryStatusOutForDelivery, domain.EventDeliveryDispatched, nil)
}

func (r deliveryRepo) Complete(ctx context.Context, id int64, notes string) (*domain.Delivery, error) {
	return r.transition(ctx, "Complete", id, domain.DeliveryStatusDelivered, domain.EventDeliveryCompleted,
		func(_ mongo.SessionContext, d *domain.Delivery, at time.Time) (bson.D, error) {
			d.DeliveryNotes = notes
			return bson.D{
				{Key: "delivery_time", Value: at},
				{Key: "delivery_notes", Value: notes},
			}, nil
		})
}

func (r deliveryRepo) UpdateLocation(ctx context.Context, id int64, location string) (*domain.Delivery, error) {
	ctx, span := r.s.tracer.Start(ctx, "DeliveryRepository.UpdateLocation")
	defer span.End()

	span.SetAttributes(attribute.Int64("delivery_id", id))

	res, err := r.s.col(colDeliveries).UpdateByID(ctx, id, bson.D{{Key: "$set", Value: bson.D{{Key: "delivery_location", Value: location}}}})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error updating delivery location: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, repository.ErrDeliveryNotFound
	}

	return r.GetByID(ctx, id)
}

func (r deliveryRepo) CreateForOrder(ctx context.Context, orderID int64) (*domain.Delivery, error) {
	ctx, span := r.s.tracer.Start(ctx, "DeliveryRepository.CreateForOrder")
	defer span.End()

	span.SetAttributes(attribute.Int64("order_id", orderID))

	var id int64
	err := r.s.inTx(ctx, func(sc mongo.SessionContext) error {
		var order orderDoc
		if err := findOne(sc, r.s.col(colOrders), byID(orderID), &order, repository.ErrOrderNotFound); err != nil {
			return err
		}

		taken, err := exists(sc, r.s.col(colDeliveries), bson.D{{Key: "order_id", Value: orderID}})
		if err != nil {
			return err
		}
		if taken {
			return repository.ErrDeliveryAlreadyExists
		}

		status := domain.DeliveryStatusPending
		if domain.OrderStatus(order.Status) == domain.OrderStatusCancelled {
			status = domain.DeliveryStatusCancelled
		}

		if id, err = r.s.nextID(sc, colDeliveries); err != nil {
			return err
		}

		_, err = r.s.col(colDeliveries).InsertOne(sc, deliveryDoc{ID: id, OrderID: orderID, Status: string(status)})
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDeliveryAlreadyExists
		}
		if err != nil {
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
