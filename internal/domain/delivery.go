package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Delivery struct {
	ID               int64          `db:"delivery_id" json:"delivery_id"`
	OrderID          int64          `db:"order_id" json:"order_id"`
	EmployeeID       *int64         `db:"employee_id" json:"employee_id"`
	Status           DeliveryStatus `db:"delivery_status" json:"delivery_status"`
	AssignedTime     *time.Time     `db:"assigned_time" json:"assigned_time"`
	DeliveryTime     *time.Time     `db:"delivery_time" json:"delivery_time"`
	DeliveryNotes    string         `db:"delivery_notes" json:"delivery_notes"`
	DeliveryLocation string         `db:"delivery_location" json:"delivery_location"`

	OrderDate           *time.Time       `db:"order_date" json:"order_date,omitempty"`
	TotalAmount         *decimal.Decimal `db:"total_amount" json:"total_amount,omitempty"`
	SpecialInstructions string           `db:"special_instructions" json:"special_instructions,omitempty"`
	CustomerID          int64            `db:"customer_id" json:"customer_id,omitempty"`
	CustomerName        string           `db:"customer_name" json:"customer_name,omitempty"`
	CustomerPhone       string           `db:"customer_phone" json:"customer_phone,omitempty"`
	Hostel              string           `db:"hostel" json:"hostel,omitempty"`
	RoomNumber          string           `db:"room_number" json:"room_number,omitempty"`
	DeliveryPerson      *string          `db:"delivery_person" json:"delivery_person,omitempty"`
	DeliveryPersonPhone *string          `db:"delivery_person_phone" json:"delivery_person_phone,omitempty"`

	Items []OrderItem `json:"items,omitempty"`
}

// NewPendingDelivery is the delivery row every new order gets.
func NewPendingDelivery(orderID int64) *Delivery {
	return &Delivery{
		OrderID: orderID,
		Status:  DeliveryStatusPending,
	}
}

type DeliveryFilter struct {
	Statuses []DeliveryStatus
}

// DeliveryLess sorts newest assignment first; unassigned rows go last, ties by id desc.
func DeliveryLess(a, b *Delivery) bool {
	switch {
	case a.AssignedTime == nil && b.AssignedTime == nil:
		return a.ID > b.ID
	case a.AssignedTime == nil:
		return false
	case b.AssignedTime == nil:
		return true
	case !a.AssignedTime.Equal(*b.AssignedTime):
		return a.AssignedTime.After(*b.AssignedTime)
	default:
		return a.ID > b.ID
	}
}
