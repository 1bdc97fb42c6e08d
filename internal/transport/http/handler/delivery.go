package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/service"
	"go.uber.org/zap"
)

type DeliveryHandler struct {
	base
	delivery service.DeliveryService
}

func NewDeliveryHandler(delivery service.DeliveryService, logger *zap.Logger, timeout time.Duration) *DeliveryHandler {
	return &DeliveryHandler{
		base:     newBase("DeliveryService", logger, timeout),
		delivery: delivery,
	}
}

type AssignInput struct {
	EmployeeID int64 `json:"employee_id" validate:"required,gt=0"`
}

type CompleteInput struct {
	DeliveryNotes string `json:"delivery_notes" validate:"max=500"`
}

type LocationInput struct {
	DeliveryLocation string `json:"delivery_location" validate:"required,max=200"`
}

type CreateEmployeeInput struct {
	FirstName     string `json:"first_name" validate:"required,max=50"`
	LastName      string `json:"last_name" validate:"required,max=50"`
	Role          string `json:"role" validate:"required,oneof=Delivery Waiter Cook Manager Cashier"`
	ContactNumber string `json:"contact_number" validate:"max=20"`
	Email         string `json:"email" validate:"omitempty,email,max=100"`
}

// List accepts ?status=Pending,Assigned.
func (h *DeliveryHandler) List(c *fiber.Ctx) error {
	res, err := execute(c, &h.base, func(ctx context.Context) ([]domain.Delivery, error) {
		return h.delivery.List(ctx, c.Query("status"))
	})
	if err != nil {
		return h.fail(c, "list deliveries failed", err, zap.String("status", c.Query("status")))
	}

	return c.JSON(res)
}

func (h *DeliveryHandler) Get(c *fiber.Ctx) error {
	id, ok, err := h.paramID(c, "id")
	if !ok {
		return err
	}

	res, err := execute(c, &h.base, func(ctx context.Context) (*domain.Delivery, error) {
		return h.delivery.Get(ctx, id)
	})
	if err != nil {
		return h.fail(c, "get delivery failed", err, zap.Int64("delivery_id", id))
	}

	return c.JSON(res)
}

func (h *DeliveryHandler) AvailablePersonnel(c *fiber.Ctx) error {
	res, err := execute(c, &h.base, func(ctx context.Context) ([]domain.Employee, error) {
		return h.delivery.AvailablePersonnel(ctx)
	})
	if err != nil {
		return h.fail(c, "list personnel failed", err)
	}

	return c.JSON(res)
}

func (h *DeliveryHandler) CreateEmployee(c *fiber.Ctx) error {
	var input CreateEmployeeInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	res, err := execute(c, &h.base, func(ctx context.Context) (*domain.Employee, error) {
		return h.delivery.CreateEmployee(ctx, &domain.Employee{
			FirstName:     input.FirstName,
			LastName:      input.LastName,
			Role:          domain.EmployeeRole(input.Role),
			ContactNumber: input.ContactNumber,
			Email:         input.Email,
		})
	})
	if err != nil {
		return h.fail(c, "create employee failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *DeliveryHandler) CreateForOrder(c *fiber.Ctx) error {
	orderID, ok, err := h.paramID(c, "orderId")
	if !ok {
		return err
	}

	res, err := execute(c, &h.base, func(ctx context.Context) (*domain.Delivery, error) {
		return h.delivery.CreateForOrder(ctx, orderID)
	})
	if err != nil {
		return h.fail(c, "create delivery for order failed", err, zap.Int64("order_id", orderID))
	}

	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *DeliveryHandler) Assign(c *fiber.Ctx) error {
	id, ok, err := h.paramID(c, "deliveryId")
	if !ok {
		return err
	}

	var input AssignInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	res, err := execute(c, &h.base, func(ctx context.Context) (*domain.Delivery, error) {
		return h.delivery.Assign(ctx, id, input.EmployeeID)
	})
	if err != nil {
		return h.fail(c, "assign delivery failed", err, zap.Int64("delivery_id", id), zap.Int64("employee_id", input.EmployeeID))
	}

	return c.JSON(fiber.Map{
		"message":  "Delivery person assigned successfully",
		"delivery": res,
	})
}

func (h *DeliveryHandler) Dispatch(c *fiber.Ctx) error {
	id, ok, err := h.paramID(c, "id")
	if !ok {
		return err
	}

	res, err := execute(c, &h.base, func(ctx context.Context) (*domain.Delivery, error) {
		return h.delivery.Dispatch(ctx, id)
	})
	if err != nil {
		return h.fail(c, "dispatch delivery failed", err, zap.Int64("delivery_id", id))
	}

	return c.JSON(fiber.Map{
		"message":  "Delivery is out for delivery",
		"delivery": res,
	})
}

func (h *DeliveryHandler) Complete(c *fiber.Ctx) error {
	id, ok, err := h.paramID(c, "id")
	if !ok {
		return err
	}

	var input CompleteInput
	if ok, err := h.bindOptional(c, &input); !ok {
		return err
	}

	res, err := execute(c, &h.base, func(ctx context.Context) (*domain.Delivery, error) {
		return h.delivery.Complete(ctx, id, input.DeliveryNotes)
	})
	if err != nil {
		return h.fail(c, "complete delivery failed", err, zap.Int64("delivery_id", id))
	}

	return c.JSON(fiber.Map{
		"message":  "Delivery marked as completed successfully!",
		"delivery": res,
	})
}

func (h *DeliveryHandler) UpdateLocation(c *fiber.Ctx) error {
	id, ok, err := h.paramID(c, "id")
	if !ok {
		return err
	}

	var input LocationInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	res, err := execute(c, &h.base, func(ctx context.Context) (*domain.Delivery, error) {
		return h.delivery.UpdateLocation(ctx, id, input.DeliveryLocation)
	})
	if err != nil {
		return h.fail(c, "update delivery location failed", err, zap.Int64("delivery_id", id))
	}

	return c.JSON(res)
}
