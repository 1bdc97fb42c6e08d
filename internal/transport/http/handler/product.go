package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/service"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductHandler struct {
	base
	products service.ProductService
}

func NewProductHandler(products service.ProductService, logger *zap.Logger, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		base:     newBase("ProductService", logger, timeout),
		products: products,
	}
}

type CreateProductInput struct {
	ShopID      int64            `json:"shop_id" validate:"required,gt=0"`
	CategoryID  *int64           `json:"category_id" validate:"omitempty,gt=0"`
	Name        string           `json:"name" validate:"required,max=100"`
	Description string           `json:"description" validate:"max=1000"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	IsAvailable *bool            `json:"is_available"`
}

type UpdateProductInput struct {
	ShopID      *int64           `json:"shop_id" validate:"omitempty,gt=0"`
	CategoryID  *int64           `json:"category_id" validate:"omitempty,gt=0"`
	Name        *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	Price       *decimal.Decimal `json:"price"`
	IsAvailable *bool            `json:"is_available"`
}

// List accepts optional ?category_id= and ?shop_id= filters.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	categoryID, ok, err := h.queryID(c, "category_id")
	if !ok {
		return err
	}
	shopID, ok, err := h.queryID(c, "shop_id")
	if !ok {
		return err
	}

	res, err := execute(c, &h.base, func(ctx context.Context) ([]domain.Product, error) {
		return h.products.List(ctx, domain.ProductFilter{CategoryID: categoryID, ShopID: shopID})
	})
	if err != nil {
		return h.fail(c, "list products failed", err)
	}

	return c.JSON(res)
}

func (h *ProductHandler) Categories(c *fiber.Ctx) error {
	res, err := execute(c, &h.base, func(ctx context.Context) ([]domain.Category, error) {
		return h.products.Categories(ctx)
	})
	if err != nil {
		return h.fail(c, "list categories failed", err)
	}

	return c.JSON(res)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok, err := h.paramID(c, "id")
	if !ok {
		return err
	}

	res, err := execute(c, &h.base, func(ctx context.Context) (*domain.Product, error) {
		return h.products.Get(ctx, id)
	})
	if err != nil {
		return h.fail(c, "get product failed", err, zap.Int64("product_id", id))
	}

	return c.JSON(res)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var input CreateProductInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	available := true
	if input.IsAvailable != nil {
		available = *input.IsAvailable
	}

	res, err := execute(c, &h.base, func(ctx context.Context) (*domain.Product, error) {
		return h.products.Create(ctx, &domain.Product{
			ShopID:      input.ShopID,
			CategoryID:  input.CategoryID,
			Name:        input.Name,
			Description: input.Description,
			Price:       *input.Price,
			IsAvailable: available,
		})
	})
	if err != nil {
		return h.fail(c, "create product failed", err)
	}

	mylogger.Info(c.UserContext(), h.logger, "product created", zap.Int64("product_id", res.ID))
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok, err := h.paramID(c, "id")
	if !ok {
		return err
	}

	var input UpdateProductInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	res, err := execute(c, &h.base, func(ctx context.Context) (*domain.Product, error) {
		return h.products.Update(ctx, id, &domain.UpdateProductInput{
			ShopID:      input.ShopID,
			CategoryID:  input.CategoryID,
			Name:        input.Name,
			Description: input.Description,
			Price:       input.Price,
			IsAvailable: input.IsAvailable,
		})
	})
	if err != nil {
		return h.fail(c, "update product failed", err, zap.Int64("product_id", id))
	}

	return c.JSON(res)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok, err := h.paramID(c, "id")
	if !ok {
		return err
	}

	_, err = execute(c, &h.base, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, h.products.Delete(ctx, id)
	})
	if err != nil {
		return h.fail(c, "delete product failed", err, zap.Int64("product_id", id))
	}

	return c.SendStatus(fiber.StatusNoContent)
}
