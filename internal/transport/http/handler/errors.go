package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/service"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/utils"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/validator"
	"github.com/sony/gobreaker"
)

func mapErrorCode(err error) int {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fiber.StatusServiceUnavailable

	case errors.Is(err, domain.ErrEmptyOrder),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrOrderTotalTooLarge),
		errors.Is(err, domain.ErrInvalidOrderStatus),
		errors.Is(err, domain.ErrInvalidDeliveryStatus),
		errors.Is(err, domain.ErrInvalidEmployeeRole),
		errors.Is(err, domain.ErrInvalidUserRole),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, service.ErrInvalidLimit),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, validator.ErrPasswordTooShort),
		errors.Is(err, validator.ErrPasswordTooWeak),
		errors.Is(err, validator.ErrUsernameMalformed):
		return fiber.StatusBadRequest

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, utils.ErrInvalidToken):
		return fiber.StatusUnauthorized

	case errors.Is(err, repository.ErrShopNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrCategoryNotFound),
		errors.Is(err, repository.ErrCustomerNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrDeliveryNotFound),
		errors.Is(err, repository.ErrEmployeeNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return fiber.StatusNotFound

	case errors.Is(err, domain.ErrInvalidOrderTransition),
		errors.Is(err, domain.ErrInvalidDeliveryTransition),
		errors.Is(err, repository.ErrReferencedByOrders),
		errors.Is(err, repository.ErrProductUnavailable),
		errors.Is(err, repository.ErrEmployeeNotAssignable),
		errors.Is(err, repository.ErrDeliveryAlreadyExists),
		errors.Is(err, repository.ErrCustomerAlreadyExists),
		errors.Is(err, repository.ErrUserAlreadyExists):
		return fiber.StatusConflict

	case errors.Is(err, repository.ErrSessionNotFound):
		return fiber.StatusUnauthorized
	}

	return fiber.StatusInternalServerError
}
