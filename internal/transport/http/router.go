package http

import (
	"errors"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/transport/http/handler"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/transport/http/middleware"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/metrics"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/utils"
	"go.uber.org/zap"
)

type Handlers struct {
	Health   *handler.HealthHandler
	Shop     *handler.ShopHandler
	Product  *handler.ProductHandler
	Order    *handler.OrderHandler
	Delivery *handler.DeliveryHandler
	Auth     *handler.AuthHandler
}

type Config struct {
	// LimiterMax of zero disables rate limiting.
	LimiterMax        int
	LimiterExpiration time.Duration
	// ProtectAdmin puts shop, product and employee mutations behind an owner or admin token.
	ProtectAdmin bool
	StaticDir    string
}

func NewApp(cfg Config, h *Handlers, jwt *utils.JWTManager, m *metrics.Metrics, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "gikihub",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
			}

			if code >= fiber.StatusInternalServerError {
				mylogger.Error(c.UserContext(), logger, "Unhandled error", zap.String("path", c.Path()), zap.Error(err))
				return c.Status(code).JSON(fiber.Map{"error": "internal server error"})
			}

			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(otelfiber.Middleware())
	if m != nil {
		app.Use(m.Middleware())
	}
	app.Use(cors.New())

	if cfg.LimiterMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.LimiterMax,
			Expiration: cfg.LimiterExpiration,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Too many requests. Try again later.",
				})
			},
		}))
	}

	RegisterRoutes(app, cfg, h, jwt)

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	return app
}

func RegisterRoutes(app *fiber.App, cfg Config, h *Handlers, jwt *utils.JWTManager) {
	auth := middleware.NewAuthMiddleware(jwt)

	var guard []fiber.Handler
	if cfg.ProtectAdmin {
		guard = []fiber.Handler{auth, middleware.RequireRole(string(domain.UserRoleOwner), string(domain.UserRoleAdmin))}
	}
	protect := func(next fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, guard...), next)
	}

	api := app.Group("/api")
	api.Get("/test-db", h.Health.TestDB)

	shops := api.Group("/shops")
	shops.Get("", h.Shop.List)
	shops.Post("", protect(h.Shop.Create)...)
	shops.Get("/:id/products", h.Shop.Products)
	shops.Get("/:id/sales", h.Shop.Sales)
	shops.Get("/:id/popular-products", h.Shop.PopularProducts)
	shops.Get("/:id", h.Shop.Get)
	shops.Put("/:id", protect(h.Shop.Update)...)
	shops.Delete("/:id", protect(h.Shop.Delete)...)

	products := api.Group("/products")
	products.Get("", h.Product.List)
	products.Get("/categories", h.Product.Categories)
	products.Post("", protect(h.Product.Create)...)
	products.Get("/:id", h.Product.Get)
	products.Put("/:id", protect(h.Product.Update)...)
	products.Delete("/:id", protect(h.Product.Delete)...)

	orders := api.Group("/orders")
	orders.Get("", h.Order.List)
	orders.Get("/active", h.Order.ListActive)
	orders.Get("/customers/all", h.Order.ListCustomers)
	orders.Post("/customers", h.Order.CreateCustomer)
	orders.Post("", h.Order.Create)
	orders.Get("/:id", h.Order.Get)
	orders.Get("/:id/items", h.Order.Items)
	orders.Patch("/:id/status", h.Order.ChangeStatus)
	orders.Post("/:id/cancel", h.Order.Cancel)

	delivery := api.Group("/delivery")
	delivery.Get("", h.Delivery.List)
	delivery.Get("/personnel/available", h.Delivery.AvailablePersonnel)
	delivery.Post("/personnel", protect(h.Delivery.CreateEmployee)...)
	delivery.Post("/create-for-order/:orderId", h.Delivery.CreateForOrder)
	delivery.Get("/:id", h.Delivery.Get)
	delivery.Post("/:deliveryId/assign", h.Delivery.Assign)
	delivery.Post("/:id/dispatch", h.Delivery.Dispatch)
	delivery.Post("/:id/complete", h.Delivery.Complete)
	delivery.Patch("/:id/location", h.Delivery.UpdateLocation)

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", h.Auth.Signup)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/refresh", h.Auth.Refresh)
	authGroup.Post("/logout", h.Auth.Logout)
	authGroup.Get("/me", auth, h.Auth.Me)
}
