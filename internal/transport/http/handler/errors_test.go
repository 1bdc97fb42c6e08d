package handler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/service"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"
)

func TestMapErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: product 3", domain.ErrInvalidQuantity), fiber.StatusBadRequest},
		{domain.ErrInvalidDateRange, fiber.StatusBadRequest},
		{service.ErrInvalidCredentials, fiber.StatusUnauthorized},
		{repository.ErrOrderNotFound, fiber.StatusNotFound},
		{fmt.Errorf("cancel: %w", domain.ErrInvalidDeliveryTransition), fiber.StatusConflict},
		{repository.ErrReferencedByOrders, fiber.StatusConflict},
		{gobreaker.ErrOpenState, fiber.StatusServiceUnavailable},
		{errors.New("connection reset by peer"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, mapErrorCode(tc.err), tc.err.Error())
	}
}
