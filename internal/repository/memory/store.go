// Package memory is a process-local repository.Store. State lives behind one
// mutex, so every composite operation is atomic with respect to the others.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	outbox "github.com/muhammad-umar-9/GIK-BuyHub/pkg/outbox/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/outbox/worker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type sequences struct {
	shop, category, product, customer, order, item, delivery, employee, user, event int64
}

type Store struct {
	mu     sync.RWMutex
	logger *zap.Logger
	tracer trace.Tracer

	seq        sequences
	shops      map[int64]domain.Shop
	categories map[int64]domain.Category
	products   map[int64]domain.Product
	customers  map[int64]domain.Customer
	orders     map[int64]domain.Order
	items      map[int64][]domain.OrderItem
	deliveries map[int64]domain.Delivery
	employees  map[int64]domain.Employee
	users      map[int64]domain.User
	events     []*outbox.OutboxEvent
}

var _ repository.Store = (*Store)(nil)

func New(logger *zap.Logger) *Store {
	s := &Store{
		logger:     logger,
		tracer:     otel.Tracer("repository/memory"),
		shops:      make(map[int64]domain.Shop),
		categories: make(map[int64]domain.Category),
		products:   make(map[int64]domain.Product),
		customers:  make(map[int64]domain.Customer),
		orders:     make(map[int64]domain.Order),
		items:      make(map[int64][]domain.OrderItem),
		deliveries: make(map[int64]domain.Delivery),
		employees:  make(map[int64]domain.Employee),
		users:      make(map[int64]domain.User),
	}

	for _, c := range domain.DefaultCategories {
		s.seq.category++
		c.ID = s.seq.category
		s.categories[c.ID] = c
	}

	return s
}

func (s *Store) Shops() repository.ShopRepository          { return shopRepo{s} }
func (s *Store) Products() repository.ProductRepository    { return productRepo{s} }
func (s *Store) Customers() repository.CustomerRepository  { return customerRepo{s} }
func (s *Store) Orders() repository.OrderRepository        { return orderRepo{s} }
func (s *Store) Deliveries() repository.DeliveryRepository { return deliveryRepo{s} }
func (s *Store) Employees() repository.EmployeeRepository  { return employeeRepo{s} }
func (s *Store) Users() repository.UserRepository          { return userRepo{s} }
func (s *Store) Reports() repository.ReportRepository      { return reportRepo{s} }
func (s *Store) Outbox() worker.Relay                      { return outboxRelay{s} }

func (s *Store) Ping(_ context.Context) (time.Time, error) {
	return timeNow(), nil
}

func (s *Store) Close(_ context.Context) error {
	return nil
}

// appendEvent stamps and queues an outbox event. Callers hold s.mu.
func (s *Store) appendEvent(event *outbox.OutboxEvent, err error) error {
	if err != nil {
		return err
	}

	s.seq.event++
	event.Id = s.seq.event
	event.CreatedAt = timeNow()
	s.events = append(s.events, event)

	return nil
}

// productOrdered reports whether any order line references productID. Callers hold s.mu.
func (s *Store) productOrdered(productID int64) bool {
	for _, items := range s.items {
		for _, item := range items {
			if item.ProductID == productID {
				return true
			}
		}
	}
	return false
}

func (s *Store) deliveryForOrder(orderID int64) (domain.Delivery, bool) {
	for _, d := range s.deliveries {
		if d.OrderID == orderID {
			return d, true
		}
	}
	return domain.Delivery{}, false
}

func timeNow() time.Time {
	return time.Now().UTC()
}

func ptr[T any](v T) *T {
	return &v
}
