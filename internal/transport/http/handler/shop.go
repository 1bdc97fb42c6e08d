package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/service"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type ShopHandler struct {
	base
	shops   service.ShopService
	reports service.ReportService
}

func NewShopHandler(shops service.ShopService, reports service.ReportService, logger *zap.Logger, timeout time.Duration) *ShopHandler {
	return &ShopHandler{
		base:    newBase("ShopService", logger, timeout),
		shops:   shops,
		reports: reports,
	}
}

type CreateShopInput struct {
	Name          string `json:"name" validate:"required,max=100"`
	ShopType      string `json:"shop_type" validate:"max=50"`
	Location      string `json:"location" validate:"max=100"`
	ContactNumber string `json:"contact_number" validate:"max=20"`
	OpeningTime   string `json:"opening_time" validate:"max=10"`
	ClosingTime   string `json:"closing_time" validate:"max=10"`
	Description   string `json:"description" validate:"max=1000"`
}

type UpdateShopInput struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=100"`
	ShopType      *string `json:"shop_type" validate:"omitempty,max=50"`
	Location      *string `json:"location" validate:"omitempty,max=100"`
	ContactNumber *string `json:"contact_number" validate:"omitempty,max=20"`
	OpeningTime   *string `json:"opening_time" validate:"omitempty,max=10"`
	ClosingTime   *string `json:"closing_time" validate:"omitempty,max=10"`
	Description   *string `json:"description" validate:"omitempty,max=1000"`
}

func (h *ShopHandler) List(c *fiber.Ctx) error {
	res, err := execute(c, &h.base, func(ctx context.Context) ([]domain.Shop, error) {
		return h.shops.List(ctx)
	})
	if err != nil {
		return h.fail(c, "list shops failed", err)
	}

	return c.JSON(res)
}

func (h *ShopHandler) Get(c *fiber.Ctx) error {
	id, ok, err := h.paramID(c, "id")
	if !ok {
		return err
	}

	res, err := execute(c, &h.base, func(ctx context.Context) (*domain.Shop, error) {
		return h.shops.Get(ctx, id)
	})
	if err != nil {
		return h.fail(c, "get shop failed", err, zap.Int64("shop_id", id))
	}

	return c.JSON(res)
}

func (h *ShopHandler) Create(c *fiber.Ctx) error {
	var input CreateShopInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	res, err := execute(c, &h.base, func(ctx context.Context) (*domain.Shop, error) {
		return h.shops.Create(ctx, &domain.Shop{
			Name:          input.Name,
			ShopType:      input.ShopType,
			Location:      input.Location,
			ContactNumber: input.ContactNumber,
			OpeningTime:   input.OpeningTime,
			ClosingTime:   input.ClosingTime,
			Description:   input.Description,
		})
	})
	if err != nil {
		return h.fail(c, "create shop failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *ShopHandler) Update(c *fiber.Ctx) error {
	id, ok, err := h.paramID(c, "id")
	if !ok {
		return err
	}

	var input UpdateShopInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	res, err := execute(c, &h.base, func(ctx context.Context) (*domain.Shop, error) {
		return h.shops.Update(ctx, id, &domain.UpdateShopInput{
			Name:          input.Name,
			ShopType:      input.ShopType,
			Location:      input.Location,
			ContactNumber: input.ContactNumber,
			OpeningTime:   input.OpeningTime,
			ClosingTime:   input.ClosingTime,
			Description:   input.Description,
		})
	})
	if err != nil {
		return h.fail(c, "update shop failed", err, zap.Int64("shop_id", id))
	}

	return c.JSON(res)
}

func (h *ShopHandler) Delete(c *fiber.Ctx) error {
	id, ok, err := h.paramID(c, "id")
	if !ok {
		return err
	}

	_, err = execute(c, &h.base, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, h.shops.Delete(ctx, id)
	})
	if err != nil {
		return h.fail(c, "delete shop failed", err, zap.Int64("shop_id", id))
	}

	mylogger.Info(c.UserContext(), h.logger, "shop deleted", zap.Int64("shop_id", id))
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ShopHandler) Products(c *fiber.Ctx) error {
	id, ok, err := h.paramID(c, "id")
	if !ok {
		return err
	}

	res, err := execute(c, &h.base, func(ctx context.Context) ([]domain.Product, error) {
		return h.shops.Products(ctx, id)
	})
	if err != nil {
		return h.fail(c, "list shop products failed", err, zap.Int64("shop_id", id))
	}

	return c.JSON(res)
}

// Sales reports ?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD, both days inclusive.
func (h *ShopHandler) Sales(c *fiber.Ctx) error {
	id, ok, err := h.paramID(c, "id")
	if !ok {
		return err
	}

	start, startErr := time.Parse(dateLayout, c.Query("start_date"))
	end, endErr := time.Parse(dateLayout, c.Query("end_date"))
	if startErr != nil || endErr != nil {
		mylogger.Warn(c.UserContext(), h.logger, "Invalid sales range",
			zap.String("start_date", c.Query("start_date")),
			zap.String("end_date", c.Query("end_date")),
		)

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "start_date and end_date must be dates in YYYY-MM-DD format",
		})
	}

	res, err := execute(c, &h.base, func(ctx context.Context) (*domain.ShopSales, error) {
		return h.reports.ShopSales(ctx, id, start, end)
	})
	if err != nil {
		return h.fail(c, "shop sales failed", err, zap.Int64("shop_id", id))
	}

	return c.JSON(res)
}

func (h *ShopHandler) PopularProducts(c *fiber.Ctx) error {
	id, ok, err := h.paramID(c, "id")
	if !ok {
		return err
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit is invalid"})
		}
		limit = n
	}

	res, err := execute(c, &h.base, func(ctx context.Context) ([]domain.PopularProduct, error) {
		return h.reports.PopularProducts(ctx, id, limit)
	})
	if err != nil {
		return h.fail(c, "popular products failed", err, zap.Int64("shop_id", id))
	}

	return c.JSON(res)
}
