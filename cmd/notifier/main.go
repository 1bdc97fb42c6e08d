package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/bootstrap"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/notification"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/notification/email"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/transport/kafka"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/config"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/db"
	outboxUtils "github.com/muhammad-umar-9/GIK-BuyHub/pkg/outbox/utils"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/utils"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// processedTTL bounds how long redis remembers handled event ids.
const processedTTL = 7 * 24 * time.Hour

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not found: %v\n", err)
	}

	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.LoggerConfig("gikihub-notifier"))
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	var tp *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		tp, err = utils.InitTracer(ctx, "gikihub-notifier", cfg.Tracing.Endpoint, cfg.Env)
		if err != nil {
			log.Fatalf("Error starting telemetry: %v", err)
		}
	} else {
		utils.InitPropagator()
	}

	backend, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Error opening %s store: %v", cfg.Storage.Driver, err)
	}

	var (
		dedup outboxUtils.Deduplicator
		rdb   *redis.Client
	)
	if backend.Pool != nil {
		dedup = outboxUtils.NewPostgresDeduplicator(backend.Pool, logger)
	} else {
		rdb, err = db.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			log.Fatalf("Error connecting to redis for event deduplication: %v", err)
		}
		dedup = outboxUtils.NewRedisDeduplicator(rdb, logger, processedTTL)
	}

	emailSender := email.NewSMTPSender(cfg.SMTP, logger)
	notificationService := notification.NewNotificationService(backend.Store.Customers(), emailSender, dedup, logger)
	consumer := kafka.NewConsumer(notificationService, logger)

	logger.Info("Notifier started",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("group", cfg.Kafka.GroupID),
	)

	if err := consumer.Start(ctx, cfg.Kafka.Brokers, cfg.Kafka.GroupID, []string{cfg.Kafka.OrderTopic, cfg.Kafka.DeliveryTopic}); err != nil {
		logger.Error("Consumer stopped with error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Printf("Error closing redis: %v\n", err)
		}
	}

	if err := backend.Store.Close(shutdownCtx); err != nil {
		log.Printf("Error closing store: %v\n", err)
	} else {
		log.Println("Store closed successfully")
	}

	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error closing telemetry: %v\n", err)
		} else {
			log.Printf("Closed telemetry successfully")
		}
	}
}
