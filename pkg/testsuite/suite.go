package testsuite

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BaseSuite struct {
	suite.Suite
	PgContainer    *postgres.PostgresContainer
	KafkaContainer *kafka.KafkaContainer
	RedisContainer *tcredis.RedisContainer
	MongoContainer *mongodb.MongoDBContainer
	DbPool         *pgxpool.Pool
	DbURL          string
	KafkaBrokers   []string
	Redis          *redis.Client
	Mongo          *mongo.Client
	Ctx            context.Context
}

func (s *BaseSuite) SetupPostgres(migrationsRelPath string) {
	s.ensureCtx()

	var err error
	s.PgContainer, err = postgres.Run(
		s.Ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)

	s.DbURL, err = s.PgContainer.ConnectionString(s.Ctx, "sslmode=disable")
	s.Require().NoError(err)

	absPath, err := filepath.Abs(migrationsRelPath)
	s.Require().NoError(err)

	sourceURL := "file://" + absPath
	log.Printf("Running migrations from: %s", sourceURL)

	m, err := migrate.New(sourceURL, s.DbURL)
	s.Require().NoError(err)
	s.Require().NoError(m.Up())

	s.DbPool, err = pgxpool.New(s.Ctx, s.DbURL)
	s.Require().NoError(err)
}

func (s *BaseSuite) SetupKafka() {
	s.ensureCtx()

	var err error
	s.KafkaContainer, err = kafka.Run(
		s.Ctx,
		"confluentinc/cp-kafka:7.5.0",
		kafka.WithClusterID("test-cluster"),
	)
	s.Require().NoError(err)

	s.KafkaBrokers, err = s.KafkaContainer.Brokers(s.Ctx)
	s.Require().NoError(err)
}

func (s *BaseSuite) SetupRedis() {
	s.ensureCtx()

	var err error
	s.RedisContainer, err = tcredis.Run(s.Ctx, "redis:7-alpine")
	s.Require().NoError(err)

	uri, err := s.RedisContainer.ConnectionString(s.Ctx)
	s.Require().NoError(err)

	opts, err := redis.ParseURL(uri)
	s.Require().NoError(err)

	s.Redis = redis.NewClient(opts)
	s.Require().NoError(s.Redis.Ping(s.Ctx).Err())
}

// SetupMongo starts a single node replica set so multi-document transactions work.
func (s *BaseSuite) SetupMongo() {
	s.ensureCtx()

	var err error
	s.MongoContainer, err = mongodb.Run(
		s.Ctx,
		"mongo:7",
		mongodb.WithReplicaSet("rs0"),
	)
	s.Require().NoError(err)

	uri, err := s.MongoContainer.ConnectionString(s.Ctx)
	s.Require().NoError(err)

	s.Mongo, err = mongo.Connect(s.Ctx, options.Client().ApplyURI(uri))
	s.Require().NoError(err)
	s.Require().NoError(s.Mongo.Ping(s.Ctx, nil))
}

func (s *BaseSuite) TearDownInfrastructure() {
	if s.DbPool != nil {
		s.DbPool.Close()
	}
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	if s.Mongo != nil {
		_ = s.Mongo.Disconnect(s.Ctx)
	}

	containers := map[string]testcontainers.Container{}
	if s.PgContainer != nil {
		containers["postgres"] = s.PgContainer
	}
	if s.KafkaContainer != nil {
		containers["kafka"] = s.KafkaContainer
	}
	if s.RedisContainer != nil {
		containers["redis"] = s.RedisContainer
	}
	if s.MongoContainer != nil {
		containers["mongo"] = s.MongoContainer
	}

	for name, c := range containers {
		if err := c.Terminate(s.Ctx); err != nil {
			log.Printf("Failed to terminate %s container: %v", name, err)
		}
	}
}

func (s *BaseSuite) TruncateTable(tableName string) {
	_, err := s.DbPool.Exec(s.Ctx, fmt.Sprintf("TRUNCATE %s RESTART IDENTITY CASCADE", tableName))
	s.Require().NoError(err)
}

func (s *BaseSuite) ensureCtx() {
	if s.Ctx == nil {
		s.Ctx = context.Background()
	}
}
