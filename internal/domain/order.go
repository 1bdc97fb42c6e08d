package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID                  int64           `db:"order_id" json:"order_id"`
	CustomerID          int64           `db:"customer_id" json:"customer_id"`
	OrderDate           time.Time       `db:"order_date" json:"order_date"`
	Status              OrderStatus     `db:"status" json:"status"`
	TotalAmount         decimal.Decimal `db:"total_amount" json:"total_amount"`
	PaymentMethod       string          `db:"payment_method" json:"payment_method"`
	SpecialInstructions string          `db:"special_instructions" json:"special_instructions"`
	CancellationReason  *string         `db:"cancellation_reason" json:"cancellation_reason"`

	CustomerName   string          `db:"customer_name" json:"customer_name,omitempty"`
	Phone          string          `db:"phone" json:"phone,omitempty"`
	Hostel         string          `db:"hostel" json:"hostel,omitempty"`
	RoomNumber     string          `db:"room_number" json:"room_number,omitempty"`
	DeliveryID     *int64          `db:"delivery_id" json:"delivery_id,omitempty"`
	DeliveryStatus *DeliveryStatus `db:"delivery_status" json:"delivery_status,omitempty"`

	Items []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	ID          int64           `db:"order_item_id" json:"order_item_id"`
	OrderID     int64           `db:"order_id" json:"order_id"`
	ProductID   int64           `db:"product_id" json:"product_id"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	Subtotal    decimal.Decimal `db:"subtotal" json:"subtotal"`
	ProductName string          `db:"product_name" json:"product_name,omitempty"`
	ShopName    string          `db:"shop_name" json:"shop_name,omitempty"`
}

type OrderLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type CreateOrderInput struct {
	CustomerID          int64       `json:"customer_id"`
	Products            []OrderLine `json:"products"`
	PaymentMethod       string      `json:"payment_method"`
	SpecialInstructions string      `json:"special_instructions"`
}

// MaxQuantity caps a single order line.
const MaxQuantity = 1000

func (in *CreateOrderInput) Validate() error {
	if len(in.Products) == 0 {
		return ErrEmptyOrder
	}

	for _, line := range in.Products {
		if line.Quantity <= 0 || line.Quantity > MaxQuantity {
			return fmt.Errorf("%w: product %d", ErrInvalidQuantity, line.ProductID)
		}
	}

	return nil
}

// ProductIDs returns each referenced product once, in first-seen order.
func (in *CreateOrderInput) ProductIDs() []int64 {
	seen := make(map[int64]struct{}, len(in.Products))
	ids := make([]int64, 0, len(in.Products))
	for _, line := range in.Products {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	return ids
}

// NewOrder prices every line from prices, which holds the current product price
// at the moment of ordering. Repeated products stay separate lines.
func NewOrder(in CreateOrderInput, prices map[int64]decimal.Decimal, now time.Time) (*Order, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	order := &Order{
		CustomerID:          in.CustomerID,
		OrderDate:           now,
		Status:              OrderStatusPending,
		PaymentMethod:       in.PaymentMethod,
		SpecialInstructions: in.SpecialInstructions,
		Items:               make([]OrderItem, 0, len(in.Products)),
	}

	total := decimal.Zero
	for _, line := range in.Products {
		price, ok := prices[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product %d", ErrMissingPrice, line.ProductID)
		}

		unit := Money(price)
		subtotal := Money(unit.Mul(decimal.NewFromInt(int64(line.Quantity))))
		if !subtotal.LessThan(MaxMoney) {
			return nil, fmt.Errorf("%w: product %d", ErrOrderTotalTooLarge, line.ProductID)
		}

		order.Items = append(order.Items, OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: unit,
			Subtotal:  subtotal,
		})
		total = total.Add(subtotal)
	}

	order.TotalAmount = Money(total)
	if !order.TotalAmount.LessThan(MaxMoney) {
		return nil, ErrOrderTotalTooLarge
	}
	return order, nil
}
