package http

import (
	"time"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/service"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/transport/http/handler"
	"go.uber.org/zap"
)

type Services struct {
	Health    service.HealthService
	Shops     service.ShopService
	Products  service.ProductService
	Customers service.CustomerService
	Orders    service.OrderService
	Delivery  service.DeliveryService
	Reports   service.ReportService
	Auth      service.AuthService
}

// NewHandlers gives every handler the same per-request timeout.
func NewHandlers(s Services, logger *zap.Logger, timeout time.Duration) *Handlers {
	return &Handlers{
		Health:   handler.NewHealthHandler(s.Health, logger, timeout),
		Shop:     handler.NewShopHandler(s.Shops, s.Reports, logger, timeout),
		Product:  handler.NewProductHandler(s.Products, logger, timeout),
		Order:    handler.NewOrderHandler(s.Orders, s.Customers, logger, timeout),
		Delivery: handler.NewDeliveryHandler(s.Delivery, logger, timeout),
		Auth:     handler.NewAuthHandler(s.Auth, logger, timeout),
	}
}
