package mongo

import (
	"fmt"
	"time"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type shopDoc struct {
	ID            int64  `bson:"_id"`
	Name          string `bson:"name"`
	ShopType      string `bson:"shop_type"`
	Location      string `bson:"location"`
	ContactNumber string `bson:"contact_number"`
	OpeningTime   string `bson:"opening_time"`
	ClosingTime   string `bson:"closing_time"`
	Description   string `bson:"description"`
}

func newShopDoc(s *domain.Shop) shopDoc {
	return shopDoc{
		ID:            s.ID,
		Name:          s.Name,
		ShopType:      s.ShopType,
		Location:      s.Location,
		ContactNumber: s.ContactNumber,
		OpeningTime:   s.OpeningTime,
		ClosingTime:   s.ClosingTime,
		Description:   s.Description,
	}
}

func (d shopDoc) toDomain() domain.Shop {
	return domain.Shop{
		ID:            d.ID,
		Name:          d.Name,
		ShopType:      d.ShopType,
		Location:      d.Location,
		ContactNumber: d.ContactNumber,
		OpeningTime:   d.OpeningTime,
		ClosingTime:   d.ClosingTime,
		Description:   d.Description,
	}
}

type categoryDoc struct {
	ID          int64  `bson:"_id"`
	Name        string `bson:"name"`
	Description string `bson:"description"`
}

type productDoc struct {
	ID          int64                `bson:"_id"`
	ShopID      int64                `bson:"shop_id"`
	CategoryID  *int64               `bson:"category_id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Price       primitive.Decimal128 `bson:"price"`
	IsAvailable bool                 `bson:"is_available"`
}

func newProductDoc(p *domain.Product) (productDoc, error) {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return productDoc{}, err
	}

	return productDoc{
		ID:          p.ID,
		ShopID:      p.ShopID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		IsAvailable: p.IsAvailable,
	}, nil
}

func (d productDoc) toDomain() domain.Product {
	return domain.Product{
		ID:          d.ID,
		ShopID:      d.ShopID,
		CategoryID:  d.CategoryID,
		Name:        d.Name,
		Description: d.Description,
		Price:       fromDecimal128(d.Price),
		IsAvailable: d.IsAvailable,
	}
}

type customerDoc struct {
	ID         int64     `bson:"_id"`
	FirstName  string    `bson:"first_name"`
	LastName   string    `bson:"last_name"`
	Email      *string   `bson:"email"`
	Phone      string    `bson:"phone"`
	Address    string    `bson:"address"`
	Hostel     string    `bson:"hostel"`
	RoomNumber string    `bson:"room_number"`
	CreatedAt  time.Time `bson:"created_at"`
}

func (d customerDoc) toDomain() domain.Customer {
	return domain.Customer{
		ID:         d.ID,
		FirstName:  d.FirstName,
		LastName:   d.LastName,
		Email:      d.Email,
		Phone:      d.Phone,
		Address:    d.Address,
		Hostel:     d.Hostel,
		RoomNumber: d.RoomNumber,
		CreatedAt:  d.CreatedAt,
	}
}

type employeeDoc struct {
	ID            int64  `bson:"_id"`
	FirstName     string `bson:"first_name"`
	LastName      string `bson:"last_name"`
	Role          string `bson:"role"`
	ContactNumber string `bson:"contact_number"`
	Email         string `bson:"email"`
}

func (d employeeDoc) toDomain() domain.Employee {
	return domain.Employee{
		ID:            d.ID,
		FirstName:     d.FirstName,
		LastName:      d.LastName,
		Role:          domain.EmployeeRole(d.Role),
		ContactNumber: d.ContactNumber,
		Email:         d.Email,
	}
}

type userDoc struct {
	ID           int64     `bson:"_id"`
	Username     string    `bson:"username"`
	PasswordHash string    `bson:"password_hash"`
	Role         string    `bson:"role"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d userDoc) toDomain() domain.User {
	return domain.User{
		ID:           d.ID,
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		Role:         domain.UserRole(d.Role),
		CreatedAt:    d.CreatedAt,
	}
}

// orderDoc embeds its lines; there is no separate order_items collection.
type orderDoc struct {
	ID                  int64                `bson:"_id"`
	CustomerID          int64                `bson:"customer_id"`
	OrderDate           time.Time            `bson:"order_date"`
	Status              string               `bson:"status"`
	TotalAmount         primitive.Decimal128 `bson:"total_amount"`
	PaymentMethod       string               `bson:"payment_method"`
	SpecialInstructions string               `bson:"special_instructions"`
	CancellationReason  *string              `bson:"cancellation_reason"`
	Items               []orderItemDoc       `bson:"items"`
}

type orderItemDoc struct {
	ID        int64                `bson:"order_item_id"`
	ProductID int64                `bson:"product_id"`
	Quantity  int                  `bson:"quantity"`
	UnitPrice primitive.Decimal128 `bson:"unit_price"`
	Subtotal  primitive.Decimal128 `bson:"subtotal"`
}

func newOrderDoc(o *domain.Order) (orderDoc, error) {
	total, err := toDecimal128(o.TotalAmount)
	if err != nil {
		return orderDoc{}, err
	}

	doc := orderDoc{
		ID:                  o.ID,
		CustomerID:          o.CustomerID,
		OrderDate:           o.OrderDate,
		Status:              string(o.Status),
		TotalAmount:         total,
		PaymentMethod:       o.PaymentMethod,
		SpecialInstructions: o.SpecialInstructions,
		CancellationReason:  o.CancellationReason,
		Items:               make([]orderItemDoc, 0, len(o.Items)),
	}

	for _, item := range o.Items {
		unit, err := toDecimal128(item.UnitPrice)
		if err != nil {
			return orderDoc{}, err
		}
		subtotal, err := toDecimal128(item.Subtotal)
		if err != nil {
			return orderDoc{}, err
		}

		doc.Items = append(doc.Items, orderItemDoc{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: unit,
			Subtotal:  subtotal,
		})
	}

	return doc, nil
}

func (d orderDoc) toDomain() domain.Order {
	return domain.Order{
		ID:                  d.ID,
		CustomerID:          d.CustomerID,
		OrderDate:           d.OrderDate.UTC(),
		Status:              domain.OrderStatus(d.Status),
		TotalAmount:         fromDecimal128(d.TotalAmount),
		PaymentMethod:       d.PaymentMethod,
		SpecialInstructions: d.SpecialInstructions,
		CancellationReason:  d.CancellationReason,
	}
}

func (d orderDoc) items() []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, domain.OrderItem{
			ID:        item.ID,
			OrderID:   d.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: fromDecimal128(item.UnitPrice),
			Subtotal:  fromDecimal128(item.Subtotal),
		})
	}
	return items
}

type deliveryDoc struct {
	ID               int64      `bson:"_id"`
	OrderID          int64      `bson:"order_id"`
	EmployeeID       *int64     `bson:"employee_id"`
	Status           string     `bson:"delivery_status"`
	AssignedTime     *time.Time `bson:"assigned_time"`
	DeliveryTime     *time.Time `bson:"delivery_time"`
	DeliveryNotes    string     `bson:"delivery_notes"`
	DeliveryLocation string     `bson:"delivery_location"`
}

func (d deliveryDoc) toDomain() domain.Delivery {
	out := domain.Delivery{
		ID:               d.ID,
		OrderID:          d.OrderID,
		EmployeeID:       d.EmployeeID,
		Status:           domain.DeliveryStatus(d.Status),
		DeliveryNotes:    d.DeliveryNotes,
		DeliveryLocation: d.DeliveryLocation,
	}
	if d.AssignedTime != nil {
		t := d.AssignedTime.UTC()
		out.AssignedTime = &t
	}
	if d.DeliveryTime != nil {
		t := d.DeliveryTime.UTC()
		out.DeliveryTime = &t
	}
	return out
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(domain.Money(d).String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("convert %s to decimal128: %w", d, err)
	}
	return v, nil
}

// fromDecimal128 trusts values written by toDecimal128.
func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}
