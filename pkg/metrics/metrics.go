package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Metrics struct {
	Registry *prometheus.Registry

	requests           *prometheus.CounterVec
	latency            *prometheus.HistogramVec
	ordersCreated      prometheus.Counter
	ordersCancelled    prometheus.Counter
	deliveriesComplete prometheus.Counter
	cacheLookups       *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders placed.",
		}),
		ordersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_cancelled_total",
			Help: "Orders cancelled.",
		}),
		deliveriesComplete: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "deliveries_completed_total",
			Help: "Deliveries marked delivered.",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Redis cache lookups by key prefix and result.",
		}, []string{"prefix", "result"}),
	}

	reg.MustRegister(m.requests, m.latency, m.ordersCreated, m.ordersCancelled, m.deliveriesComplete, m.cacheLookups)

	return m
}

func (m *Metrics) OrderCreated()           { m.ordersCreated.Inc() }
func (m *Metrics) OrderCancelled()         { m.ordersCancelled.Inc() }
func (m *Metrics) DeliveryCompleted()      { m.deliveriesComplete.Inc() }
func (m *Metrics) CacheHit(prefix string)  { m.cacheLookups.WithLabelValues(prefix, "hit").Inc() }
func (m *Metrics) CacheMiss(prefix string) { m.cacheLookups.WithLabelValues(prefix, "miss").Inc() }

// Middleware records a counter and a latency observation per request,
// labelled by the matched route pattern rather than the raw path.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
		}

		route := c.Route().Path
		m.requests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())

		return err
	}
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{
		Registry: m.Registry,
	}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("Metrics server is listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
