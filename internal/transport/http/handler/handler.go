package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/service"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/utils"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var errInvalidID = errors.New("id is invalid")

// base carries what every handler needs: a breaker around the service layer,
// a request deadline and body validation.
type base struct {
	logger   *zap.Logger
	cb       *gobreaker.CircuitBreaker
	validate *validator.Validate
	timeout  time.Duration
}

func newBase(name string, logger *zap.Logger, timeout time.Duration) base {
	return base{
		logger: logger,
		cb: utils.NewBreaker(name, logger, func(err error) bool {
			return err == nil || service.IsExpected(err)
		}),
		validate: validator.New(),
		timeout:  timeout,
	}
}

// execute runs fn under the request deadline and the breaker.
func execute[T any](c *fiber.Ctx, b *base, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(c.UserContext(), b.timeout)
	defer cancel()

	return utils.ExecuteWithBreaker(b.cb, func() (T, error) {
		return fn(ctx)
	})
}

// fail writes err as a JSON error. Unclassified errors are logged in full and
// reported to the client as a generic message.
func (b *base) fail(c *fiber.Ctx, msg string, err error, fields ...zap.Field) error {
	code := mapErrorCode(err)
	fields = append(fields, zap.Int("http_code", code), zap.Error(err))

	switch code {
	case fiber.StatusInternalServerError:
		mylogger.Error(c.UserContext(), b.logger, msg, fields...)
		return c.Status(code).JSON(fiber.Map{"error": "internal server error"})
	case fiber.StatusServiceUnavailable:
		mylogger.Warn(c.UserContext(), b.logger, "Circuit breaker open", fields...)
		return c.Status(code).JSON(fiber.Map{"error": "service temporarily unavailable"})
	}

	mylogger.Warn(c.UserContext(), b.logger, msg, fields...)
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// bind parses the JSON body into dst and validates its tags. On failure the
// 400 response is already written and the returned error must be returned as is.
func (b *base) bind(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		mylogger.Warn(c.UserContext(), b.logger, "Failed to parse body", zap.String("path", c.Path()), zap.Error(err))
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := b.validate.Struct(dst); err != nil {
		mylogger.Warn(c.UserContext(), b.logger, "Validation failed", zap.String("path", c.Path()), zap.Error(err))
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": utils.FormatValidationError(err)})
	}

	return true, nil
}

// bindOptional is bind for endpoints whose body may be omitted entirely.
func (b *base) bindOptional(c *fiber.Ctx, dst any) (bool, error) {
	if len(c.Body()) == 0 {
		return true, nil
	}
	return b.bind(c, dst)
}

// paramID reads a positive integer path parameter.
func (b *base) paramID(c *fiber.Ctx, name string) (int64, bool, error) {
	raw := c.Params(name)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		mylogger.Warn(c.UserContext(), b.logger, "Invalid id", zap.String("param", name), zap.String("value", raw))
		return 0, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errInvalidID.Error()})
	}

	return id, true, nil
}

// queryID reads an optional positive integer query parameter.
func (b *base) queryID(c *fiber.Ctx, name string) (*int64, bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true, nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		mylogger.Warn(c.UserContext(), b.logger, "Invalid query id", zap.String("param", name), zap.String("value", raw))
		return nil, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": name + " is invalid"})
	}

	return &id, true, nil
}
