package domain

import (
	"fmt"
	"strings"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusCompleted  OrderStatus = "Completed"
	OrderStatusCancelled  OrderStatus = "Cancelled"

	// OrderStatusActive is a filter alias for Pending and Processing. It is never stored.
	OrderStatusActive OrderStatus = "Active"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusCompleted, OrderStatusCancelled},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ParseOrderStatus(raw string) (OrderStatus, error) {
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled} {
		if strings.EqualFold(strings.TrimSpace(raw), string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOrderStatus, raw)
}

// ParseOrderStatusFilter turns a ?status= value into the set of stored statuses
// to match. Empty or "all" means no filtering and yields nil.
func ParseOrderStatusFilter(raw string) ([]OrderStatus, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return nil, nil
	}

	if strings.EqualFold(raw, string(OrderStatusActive)) {
		return []OrderStatus{OrderStatusPending, OrderStatusProcessing}, nil
	}

	s, err := ParseOrderStatus(raw)
	if err != nil {
		return nil, err
	}
	return []OrderStatus{s}, nil
}

type DeliveryStatus string

const (
	DeliveryStatusPending        DeliveryStatus = "Pending"
	DeliveryStatusAssigned       DeliveryStatus = "Assigned"
	DeliveryStatusOutForDelivery DeliveryStatus = "Out for Delivery"
	DeliveryStatusDelivered      DeliveryStatus = "Delivered"
	DeliveryStatusCancelled      DeliveryStatus = "Cancelled"
)

var deliveryTransitions = map[DeliveryStatus][]DeliveryStatus{
	DeliveryStatusPending:        {DeliveryStatusAssigned, DeliveryStatusCancelled},
	DeliveryStatusAssigned:       {DeliveryStatusOutForDelivery, DeliveryStatusDelivered, DeliveryStatusCancelled},
	DeliveryStatusOutForDelivery: {DeliveryStatusDelivered},
}

var deliveryStatuses = []DeliveryStatus{
	DeliveryStatusPending,
	DeliveryStatusAssigned,
	DeliveryStatusOutForDelivery,
	DeliveryStatusDelivered,
	DeliveryStatusCancelled,
}

func (s DeliveryStatus) Valid() bool {
	for _, known := range deliveryStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	for _, allowed := range deliveryTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ParseDeliveryStatus(raw string) (DeliveryStatus, error) {
	for _, s := range deliveryStatuses {
		if strings.EqualFold(strings.TrimSpace(raw), string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDeliveryStatus, raw)
}

// ParseDeliveryStatusFilter accepts a comma separated list such as "Pending,Assigned".
// Empty input yields nil, meaning every status.
func ParseDeliveryStatusFilter(raw string) ([]DeliveryStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var out []DeliveryStatus
	seen := make(map[DeliveryStatus]struct{})
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}

		s, err := ParseDeliveryStatus(part)
		if err != nil {
			return nil, err
		}

		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out, nil
}

type EmployeeRole string

const (
	EmployeeRoleDelivery EmployeeRole = "Delivery"
	EmployeeRoleWaiter   EmployeeRole = "Waiter"
	EmployeeRoleCook     EmployeeRole = "Cook"
	EmployeeRoleManager  EmployeeRole = "Manager"
	EmployeeRoleCashier  EmployeeRole = "Cashier"
)

// AssignableRoles may be put on a delivery.
var AssignableRoles = []EmployeeRole{EmployeeRoleDelivery, EmployeeRoleWaiter, EmployeeRoleCook}

func (r EmployeeRole) Valid() bool {
	switch r {
	case EmployeeRoleDelivery, EmployeeRoleWaiter, EmployeeRoleCook, EmployeeRoleManager, EmployeeRoleCashier:
		return true
	}
	return false
}

func (r EmployeeRole) IsAssignable() bool {
	for _, role := range AssignableRoles {
		if r == role {
			return true
		}
	}
	return false
}
