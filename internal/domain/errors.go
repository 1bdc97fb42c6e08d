package domain

import "errors"

var (
	ErrEmptyOrder                = errors.New("order must contain at least one item")
	ErrInvalidQuantity           = errors.New("quantity must be between 1 and 1000")
	ErrInvalidPrice              = errors.New("price must be between 0 and 99999999.99")
	ErrOrderTotalTooLarge        = errors.New("order total exceeds 99999999.99")
	ErrMissingPrice              = errors.New("no price for ordered product")
	ErrInvalidOrderStatus        = errors.New("unknown order status")
	ErrInvalidDeliveryStatus     = errors.New("unknown delivery status")
	ErrInvalidEmployeeRole       = errors.New("unknown employee role")
	ErrInvalidUserRole           = errors.New("unknown user role")
	ErrInvalidDateRange          = errors.New("start date must not be after end date")
	ErrInvalidOrderTransition    = errors.New("order status transition not allowed")
	ErrInvalidDeliveryTransition = errors.New("delivery status transition not allowed")
)
