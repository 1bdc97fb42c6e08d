package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/service"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"go.uber.org/zap"
)

type HealthHandler struct {
	health  service.HealthService
	logger  *zap.Logger
	timeout time.Duration
}

func NewHealthHandler(health service.HealthService, logger *zap.Logger, timeout time.Duration) *HealthHandler {
	return &HealthHandler{
		health:  health,
		logger:  logger,
		timeout: timeout,
	}
}

// TestDB bypasses the breaker: it exists to report the store's state as is.
func (h *HealthHandler) TestDB(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	now, err := h.health.Ping(ctx)
	if err != nil {
		mylogger.Error(ctx, h.logger, "Database connection failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Database connection failed",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Database connected successfully",
		"time":    now,
	})
}
