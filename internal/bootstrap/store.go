package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository/memory"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository/mongo"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository/postgres"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/config"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/db"
	"go.uber.org/zap"
)

// Backend is the opened store. Pool is set only for the postgres driver.
type Backend struct {
	Store repository.Store
	Pool  *pgxpool.Pool
}

// OpenStore connects to the database named by cfg.Storage.Driver.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if cfg.Postgres.AutoMigrate {
			if err := db.Migrate(cfg.Postgres.URL, cfg.Postgres.MigrationsPath, logger); err != nil {
				return nil, err
			}
		}

		pool, err := db.NewPostgresDB(ctx, cfg.Postgres.URL, logger)
		if err != nil {
			return nil, err
		}

		return &Backend{Store: postgres.New(pool, logger), Pool: pool}, nil

	case config.DriverMongo:
		client, err := db.NewMongoClient(ctx, cfg.Mongo.URI, logger)
		if err != nil {
			return nil, err
		}

		store, err := mongo.New(ctx, client, cfg.Mongo.Database, logger)
		if err != nil {
			_ = client.Disconnect(context.WithoutCancel(ctx))
			return nil, err
		}

		return &Backend{Store: store}, nil

	case config.DriverMemory:
		logger.Warn("Using in-memory store, data is lost on restart")
		return &Backend{Store: memory.New(logger)}, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
