package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/service"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/transport/http/middleware"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/utils"
	"go.uber.org/zap"
)

type AuthHandler struct {
	base
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService, logger *zap.Logger, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		base: newBase("AuthService", logger, timeout),
		auth: auth,
	}
}

type SignupInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=student owner employee"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshInput struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func toTokenResponse(t *utils.TokenPair) tokenResponse {
	return tokenResponse{AccessToken: t.AccessToken, RefreshToken: t.RefreshToken}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var input SignupInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	res, err := execute(c, &h.base, func(ctx context.Context) (*domain.User, error) {
		return h.auth.Signup(ctx, input.Username, input.Password, domain.UserRole(input.Role))
	})
	if err != nil {
		return h.fail(c, "signup failed", err, zap.String("username", input.Username))
	}

	mylogger.Info(c.UserContext(), h.logger, "signup succeeded", zap.Int64("user_id", res.ID))
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input LoginInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	res, err := execute(c, &h.base, func(ctx context.Context) (*utils.TokenPair, error) {
		return h.auth.Login(ctx, input.Username, input.Password)
	})
	if err != nil {
		return h.fail(c, "login failed", err, zap.String("username", input.Username))
	}

	return c.JSON(toTokenResponse(res))
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input RefreshInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	res, err := execute(c, &h.base, func(ctx context.Context) (*utils.TokenPair, error) {
		return h.auth.Refresh(ctx, input.RefreshToken)
	})
	if err != nil {
		return h.fail(c, "refresh failed", err)
	}

	return c.JSON(toTokenResponse(res))
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var input RefreshInput
	if ok, err := h.bind(c, &input); !ok {
		return err
	}

	_, err := execute(c, &h.base, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, h.auth.Logout(ctx, input.RefreshToken)
	})
	if err != nil {
		return h.fail(c, "logout failed", err)
	}

	return c.JSON(fiber.Map{"success": true})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals(middleware.LocalUserID).(int64)
	if !ok {
		mylogger.Info(c.UserContext(), h.logger, "user_id get failed")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	res, err := execute(c, &h.base, func(ctx context.Context) (*domain.User, error) {
		return h.auth.Me(ctx, userID)
	})
	if err != nil {
		return h.fail(c, "get me failed", err, zap.Int64("user_id", userID))
	}

	return c.JSON(res)
}
