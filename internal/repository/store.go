package repository

import (
	"context"
	"time"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/outbox/worker"
)

// Store is the storage capability set the services run on. Each backing
// database provides one implementation; composite operations are atomic.
type Store interface {
	Shops() ShopRepository
	Products() ProductRepository
	Customers() CustomerRepository
	Orders() OrderRepository
	Deliveries() DeliveryRepository
	Employees() EmployeeRepository
	Users() UserRepository
	Reports() ReportRepository
	Outbox() worker.Relay

	// Ping returns the store's clock.
	Ping(ctx context.Context) (time.Time, error)
	Close(ctx context.Context) error
}

type ShopRepository interface {
	Create(ctx context.Context, shop *domain.Shop) (*domain.Shop, error)
	GetByID(ctx context.Context, id int64) (*domain.Shop, error)
	List(ctx context.Context) ([]domain.Shop, error)
	Update(ctx context.Context, id int64, input *domain.UpdateShopInput) (*domain.Shop, error)
	// Delete removes the shop and its products. Fails with ErrReferencedByOrders
	// when any of those products appears on an order.
	Delete(ctx context.Context, id int64) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Update(ctx context.Context, id int64, input *domain.UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
}

type OrderRepository interface {
	// CreateOrder checks the customer and every product, snapshots prices and
	// writes the order, its items, a Pending delivery and an OrderCreated event.
	CreateOrder(ctx context.Context, input domain.CreateOrderInput) (*domain.Order, error)
	// CancelOrder moves the order and its delivery to Cancelled together.
	CancelOrder(ctx context.Context, id int64, reason string) (*domain.Order, error)
	// ChangeStatus routes Cancelled through CancelOrder.
	ChangeStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, statuses []domain.OrderStatus) ([]domain.Order, error)
	Items(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
}

type DeliveryRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Delivery, error)
	List(ctx context.Context, filter domain.DeliveryFilter) ([]domain.Delivery, error)
	Assign(ctx context.Context, id, employeeID int64) (*domain.Delivery, error)
	Dispatch(ctx context.Context, id int64) (*domain.Delivery, error)
	Complete(ctx context.Context, id int64, notes string) (*domain.Delivery, error)
	UpdateLocation(ctx context.Context, id int64, location string) (*domain.Delivery, error)
	CreateForOrder(ctx context.Context, orderID int64) (*domain.Delivery, error)
}

type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) (*domain.Employee, error)
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	ListByRoles(ctx context.Context, roles []domain.EmployeeRole) ([]domain.Employee, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type ReportRepository interface {
	ShopSales(ctx context.Context, shopID int64, r domain.SalesRange) (*domain.ShopSales, error)
	PopularProducts(ctx context.Context, shopID int64, limit int) ([]domain.PopularProduct, error)
}
