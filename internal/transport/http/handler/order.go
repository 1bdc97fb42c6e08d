package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/service"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"go.uber.org/zap"
)

type OrderHandler struct {
	base
	orders    service.OrderService
	customers service.CustomerService
}

func NewOrderHandler(orders service.OrderService, customers service.CustomerService, logger *zap.Logger, timeout time.Duration) *OrderHandler {
	return &OrderHandler{
		base:      newBase("OrderService", logger, timeout),
		orders:    orders,
		customers: customers,
	}
}

type OrderLineInput struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity"`
}

type CreateOrderInput struct {
	CustomerID          int64            `json:"customer_id" validate:"required,gt=0"`
	Products            []OrderLineInput `json:"products" validate:"dive"`
	PaymentMethod       string           `json:"payment_method" validate:"max=30"`
	SpecialInstructions string           `json:"special_instructions" validate:"max=500"`
}

type ChangeStatusInput struct {
	Status string `json:"status" validate:"required"`
}

type CancelOrderInput struct {
	CancellationReason string `json:"cancellation_reason" validate:"max=500"`
}

type CreateCustomerInput struct {
	FirstName  string `json:"first_name" validate:"required,max=50"`
	LastName   string `json:"last_name" validate:"required,max=50"`
	Email      string `json:"email" validate:"omitempty,email,max=100"`
	Phone      string `json:"phone" validate:"max=20"`
	Address    string `json:"address" validate:"max=200"`
	Hostel     string `json:"hostel" validate:"max=50"`
	RoomNumber string `json:"room_number" validate:"max=20"`
}

// List accepts ?status= with a single status, "Active" or "all".
func (h *OrderHandler) List(c *fiber.Ctx) error {
	res, err := execute(c, &h.base, func(ctx context.Context) ([]domain.Order, error) {
		return h.orders.List(ctx, c.Query("status"))
	})
	if err != nil {
		return h.fail(c, "list orders failed", err)
	}

	return c.JSON(res)
}

func (h *OrderHandler) ListActive(c *fiber.Ctx) error {
	res, err := execute(c, &h.base, func(ctx context.Context) ([]domain.Order, error) {
		return h.orders.ListActive(ctx)
	})
	if err != nil {
		return h.fail(c, "list active orders failed", err)
	}

	return c.JSON(res)
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, ok, err := h.paramID(c, "id")
	if !ok {
		return err
	}

	res, err := execute(c, &h.base, func(ctx context.Context) (*domain.Order, error) {
		return h.orders.Get(ctx, id)
	})
	if err != nil {
		return h.fail(c, "get order failed", err, zap.Int64("order_id", id))
	}

	return c.JSON(res)
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var input CreateOrderInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	lines := make([]domain.OrderLine, 0, len(input.Products))
	for _, p := range input.Products {
		lines = append(lines, domain.OrderLine{ProductID: p.ProductID, Quantity: p.Quantity})
	}

	res, err := execute(c, &h.base, func(ctx context.Context) (*domain.Order, error) {
		return h.orders.Create(ctx, domain.CreateOrderInput{
			CustomerID:          input.CustomerID,
			Products:            lines,
			PaymentMethod:       input.PaymentMethod,
			SpecialInstructions: input.SpecialInstructions,
		})
	})
	if err != nil {
		return h.fail(c, "create order failed", err, zap.Int64("customer_id", input.CustomerID))
	}

	mylogger.Info(c.UserContext(), h.logger, "create order succeeded", zap.Int64("order_id", res.ID))
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *OrderHandler) ChangeStatus(c *fiber.Ctx) error {
	id, ok, err := h.paramID(c, "id")
	if !ok {
		return err
	}

	var input ChangeStatusInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	res, err := execute(c, &h.base, func(ctx context.Context) (*domain.Order, error) {
		return h.orders.ChangeStatus(ctx, id, input.Status)
	})
	if err != nil {
		return h.fail(c, "change order status failed", err, zap.Int64("order_id", id), zap.String("status", input.Status))
	}

	return c.JSON(res)
}

func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	id, ok, err := h.paramID(c, "id")
	if !ok {
		return err
	}

	var input CancelOrderInput
	if ok, err := h.bindOptional(c, &input); !ok {
		return err
	}

	res, err := execute(c, &h.base, func(ctx context.Context) (*domain.Order, error) {
		return h.orders.Cancel(ctx, id, input.CancellationReason)
	})
	if err != nil {
		return h.fail(c, "cancel order failed", err, zap.Int64("order_id", id))
	}

	return c.JSON(fiber.Map{
		"message": "Order cancelled successfully",
		"order":   res,
	})
}

func (h *OrderHandler) Items(c *fiber.Ctx) error {
	id, ok, err := h.paramID(c, "id")
	if !ok {
		return err
	}

	res, err := execute(c, &h.base, func(ctx context.Context) ([]domain.OrderItem, error) {
		return h.orders.Items(ctx, id)
	})
	if err != nil {
		return h.fail(c, "list order items failed", err, zap.Int64("order_id", id))
	}

	return c.JSON(res)
}

func (h *OrderHandler) ListCustomers(c *fiber.Ctx) error {
	res, err := execute(c, &h.base, func(ctx context.Context) ([]domain.Customer, error) {
		return h.customers.List(ctx)
	})
	if err != nil {
		return h.fail(c, "list customers failed", err)
	}

	return c.JSON(res)
}

func (h *OrderHandler) CreateCustomer(c *fiber.Ctx) error {
	var input CreateCustomerInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	var email *string
	if input.Email != "" {
		email = &input.Email
	}

	res, err := execute(c, &h.base, func(ctx context.Context) (*domain.Customer, error) {
		return h.customers.Create(ctx, &domain.Customer{
			FirstName:  input.FirstName,
			LastName:   input.LastName,
			Email:      email,
			Phone:      input.Phone,
			Address:    input.Address,
			Hostel:     input.Hostel,
			RoomNumber: input.RoomNumber,
		})
	})
	if err != nil {
		return h.fail(c, "create customer failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(res)
}
