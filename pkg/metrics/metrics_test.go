package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CountsByRoute(t *testing.T) {
	m := New()

	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/shops/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	for _, path := range []string{"/shops/1", "/shops/2"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}

	require.Equal(t, float64(2), testutil.ToFloat64(m.requests.WithLabelValues("GET", "/shops/:id", "204")))
}

func TestDomainCounters(t *testing.T) {
	m := New()

	m.OrderCreated()
	m.OrderCreated()
	m.OrderCancelled()
	m.DeliveryCompleted()
	m.CacheHit("shop")
	m.CacheMiss("shop")

	require.Equal(t, float64(2), testutil.ToFloat64(m.ordersCreated))
	require.Equal(t, float64(1), testutil.ToFloat64(m.ordersCancelled))
	require.Equal(t, float64(1), testutil.ToFloat64(m.deliveriesComplete))
	require.Equal(t, float64(1), testutil.ToFloat64(m.cacheLookups.WithLabelValues("shop", "hit")))
}
