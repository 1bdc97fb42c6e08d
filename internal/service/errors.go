package service

import (
	"errors"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/utils"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/validator"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidLimit       = errors.New("limit must be between 1 and 100")
	ErrInvalidInput       = errors.New("invalid input")
)

var expectedErrors = []error{
	ErrInvalidCredentials,
	ErrInvalidLimit,
	ErrInvalidInput,
	repository.ErrShopNotFound,
	repository.ErrProductNotFound,
	repository.ErrProductUnavailable,
	repository.ErrCategoryNotFound,
	repository.ErrCustomerNotFound,
	repository.ErrCustomerAlreadyExists,
	repository.ErrOrderNotFound,
	repository.ErrDeliveryNotFound,
	repository.ErrDeliveryAlreadyExists,
	repository.ErrEmployeeNotFound,
	repository.ErrEmployeeNotAssignable,
	repository.ErrUserNotFound,
	repository.ErrUserAlreadyExists,
	repository.ErrSessionNotFound,
	repository.ErrReferencedByOrders,
	domain.ErrEmptyOrder,
	domain.ErrInvalidQuantity,
	domain.ErrInvalidPrice,
	domain.ErrOrderTotalTooLarge,
	domain.ErrInvalidOrderStatus,
	domain.ErrInvalidDeliveryStatus,
	domain.ErrInvalidEmployeeRole,
	domain.ErrInvalidUserRole,
	domain.ErrInvalidDateRange,
	domain.ErrInvalidOrderTransition,
	domain.ErrInvalidDeliveryTransition,
	validator.ErrPasswordTooShort,
	validator.ErrPasswordTooWeak,
	validator.ErrUsernameMalformed,
	utils.ErrInvalidToken,
}

// IsExpected reports whether err is a caller mistake or a state conflict
// rather than a failure of the store.
func IsExpected(err error) bool {
	for _, target := range expectedErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
