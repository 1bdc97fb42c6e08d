package repository

import "errors"

var (
	ErrShopNotFound          = errors.New("shop not found")
	ErrProductNotFound       = errors.New("product not found")
	ErrProductUnavailable    = errors.New("product is not available")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCustomerNotFound      = errors.New("customer not found")
	ErrCustomerAlreadyExists = errors.New("customer with this email already exists")
	ErrOrderNotFound         = errors.New("order not found")
	ErrDeliveryNotFound      = errors.New("delivery not found")
	ErrDeliveryAlreadyExists = errors.New("delivery already exists for order")
	ErrEmployeeNotFound      = errors.New("employee not found")
	ErrEmployeeNotAssignable = errors.New("employee role cannot take deliveries")
	ErrUserNotFound          = errors.New("user not found")
	ErrUserAlreadyExists     = errors.New("user already exists")
	ErrSessionNotFound       = errors.New("session not found")
	ErrReferencedByOrders    = errors.New("referenced by existing orders")
)
