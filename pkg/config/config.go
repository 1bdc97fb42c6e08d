package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config/local.yaml"

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongodb"
	DriverMemory   = "memory"
)

type Config struct {
	Env      string  `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTP    `yaml:"http"`
	Storage  Storage `yaml:"storage"`
	Postgres PG      `yaml:"postgres"`
	Mongo    Mongo   `yaml:"mongo"`
	Redis    Redis   `yaml:"redis"`
	Kafka    Kafka   `yaml:"kafka"`
	Auth     Auth    `yaml:"auth"`
	Limiter  Limiter `yaml:"limiter"`
	Metrics  Metrics `yaml:"metrics"`
	Tracing  Tracing `yaml:"tracing"`
	SMTP     SMTP    `yaml:"smtp"`
	Logger   Logger  `yaml:"logger"`
}

type HTTP struct {
	Port           string        `yaml:"port" env:"HTTP_PORT" env-default:":3000"`
	Timeout        time.Duration `yaml:"timeout" env-default:"4s"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"HTTP_REQUEST_TIMEOUT" env-default:"2s"`
	StaticDir      string        `yaml:"static_dir" env:"HTTP_STATIC_DIR"`
}

// Storage selects the backing store implementation.
type Storage struct {
	Driver string `yaml:"driver" env:"DB_TYPE" env-default:"postgres"`
}

type PG struct {
	URL            string `yaml:"url" env:"DB_URL"`
	AutoMigrate    bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"false"`
	MigrationsPath string `yaml:"migrations_path" env:"DB_MIGRATIONS_PATH" env-default:"./migrations"`
}

type Mongo struct {
	URI      string `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017/?replicaSet=rs0"`
	Database string `yaml:"database" env:"MONGO_DB" env-default:"gikihub"`
}

type Redis struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	CacheTTL time.Duration `yaml:"cache_ttl" env:"REDIS_CACHE_TTL" env-default:"10m"`
	Enabled  bool          `yaml:"enabled" env:"REDIS_ENABLED" env-default:"true"`
}

type Kafka struct {
	Brokers       []string      `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:"," env-default:"localhost:9092"`
	OrderTopic    string        `yaml:"order_topic" env:"KAFKA_ORDER_TOPIC" env-default:"order_events"`
	DeliveryTopic string        `yaml:"delivery_topic" env:"KAFKA_DELIVERY_TOPIC" env-default:"delivery_events"`
	GroupID       string        `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"notifier-group"`
	OutboxPoll    time.Duration `yaml:"outbox_poll" env:"KAFKA_OUTBOX_POLL" env-default:"500ms"`
	Enabled       bool          `yaml:"enabled" env:"KAFKA_ENABLED" env-default:"false"`
}

type Auth struct {
	AccessSecret  string        `yaml:"access_secret" env:"ACCESS_SECRET"`
	RefreshSecret string        `yaml:"refresh_secret" env:"REFRESH_SECRET"`
	AccessTTL     time.Duration `yaml:"access_ttl" env:"ACCESS_TTL" env-default:"15m"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl" env:"REFRESH_TTL" env-default:"720h"`
	ProtectAdmin  bool          `yaml:"protect_admin" env:"AUTH_PROTECT_ADMIN" env-default:"false"`
}

type Limiter struct {
	Max        int           `yaml:"max" env:"LIMITER_MAX" env-default:"20"`
	Expiration time.Duration `yaml:"expiration" env:"LIMITER_EXPIRATION" env-default:"5s"`
}

type Metrics struct {
	Port    string `yaml:"port" env:"METRICS_PORT" env-default:":9091"`
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
}

type Tracing struct {
	Endpoint string `yaml:"endpoint" env:"JAEGER_ENDPOINT" env-default:"localhost:4318"`
	Enabled  bool   `yaml:"enabled" env:"TRACING_ENABLED" env-default:"false"`
}

type SMTP struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	User     string `yaml:"user" env:"SMTP_USER"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"SMTP_FROM"`
}

type Logger struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// MustLoad reads CONFIG_PATH, or ./config/local.yaml when it is unset.
func MustLoad() *Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("error reading config: %v", err)
	}

	return cfg
}

// Load reads the yaml file at path and overrides it with the environment.
// A missing file falls back to environment variables and defaults only.
func Load(path string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("config file %s does not exist, using env only", path)

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("postgres driver selected but DB_URL is empty")
		}
	case DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	return nil
}
