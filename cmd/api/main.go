package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/bootstrap"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository/session"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/service"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/transport/http"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/config"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/db"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/kafka"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/metrics"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/outbox/worker"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/utils"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/validator"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not found: %v\n", err)
	}

	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.LoggerConfig("gikihub-api"))
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	var tp *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		tp, err = utils.InitTracer(ctx, "gikihub-api", cfg.Tracing.Endpoint, cfg.Env)
		if err != nil {
			log.Fatalf("Failed to init tracer: %v", err)
		}
	} else {
		utils.InitPropagator()
	}

	backend, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Error opening %s store: %v", cfg.Storage.Driver, err)
	}
	store := backend.Store

	jwtManager, err := utils.NewJWTManager(cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	if err != nil {
		log.Fatalf("Error creating jwt manager: %v", err)
	}

	m := metrics.New()

	shopService := service.NewShopService(store, logger)
	productService := service.NewProductService(store, logger)
	sessions := session.NewMemorySessionRepository()

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = db.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			log.Fatalf("Error connecting to redis: %v", err)
		}

		shopService = service.NewCachedShopService(shopService, rdb, cfg.Redis.CacheTTL, m, logger)
		productService = service.NewCachedProductService(productService, rdb, cfg.Redis.CacheTTL, m, logger)
		sessions = session.NewSessionRepository(rdb, logger)
	} else {
		logger.Warn("Redis disabled, caching is off and sessions are kept in process")
	}

	services := http.Services{
		Health:    service.NewHealthService(store),
		Shops:     shopService,
		Products:  productService,
		Customers: service.NewCustomerService(store, logger),
		Orders:    service.NewOrderService(store, m, logger),
		Delivery:  service.NewDeliveryService(store, m, logger),
		Reports:   service.NewReportService(store),
		Auth:      service.NewAuthService(store, sessions, jwtManager, validator.NewValidator(), logger),
	}

	var metricsMiddleware *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsMiddleware = m
	}

	app := http.NewApp(http.Config{
		LimiterMax:        cfg.Limiter.Max,
		LimiterExpiration: cfg.Limiter.Expiration,
		ProtectAdmin:      cfg.Auth.ProtectAdmin,
		StaticDir:         cfg.HTTP.StaticDir,
	}, http.NewHandlers(services, logger, cfg.HTTP.RequestTimeout), jwtManager, metricsMiddleware, logger)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("port", cfg.HTTP.Port), zap.String("storage", cfg.Storage.Driver))
		return app.Listen(cfg.HTTP.Port)
	})

	g.Go(func() error {
		<-gCtx.Done()

		log.Println("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.Timeout)
		defer cancel()

		return app.ShutdownWithContext(shutdownCtx)
	})

	if cfg.Metrics.Enabled {
		g.Go(func() error {
			return m.Serve(gCtx, cfg.Metrics.Port, logger)
		})
	}

	var producer kafka.Producer
	if cfg.Kafka.Enabled {
		producer, err = kafka.NewProducer(cfg.Kafka.Brokers, logger)
		if err != nil {
			log.Fatalf("Error creating kafka producer: %v", err)
		}

		outboxProcessor := worker.NewOutboxProcessor(store.Outbox(), producer, logger).
			WithInterval(cfg.Kafka.OutboxPoll)
		g.Go(func() error {
			return outboxProcessor.Start(gCtx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}

	log.Println("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("Error closing kafka producer: %v\n", err)
		}
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Printf("Error closing redis: %v\n", err)
		}
	}

	if err := store.Close(shutdownCtx); err != nil {
		log.Printf("Error closing store: %v\n", err)
	} else {
		log.Println("Store closed successfully")
	}

	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down telemetry: %v\n", err)
		} else {
			log.Println("Telemetry stopped correctly")
		}
	}
}
