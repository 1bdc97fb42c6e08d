package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoad_FromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")

	content := `
env: prod
storage:
  driver: memory
http:
  port: ":8080"
redis:
  cache_ttl: 30s
kafka:
  brokers: ["a:9092", "b:9092"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, DriverMemory, cfg.Storage.Driver)
	require.Equal(t, ":8080", cfg.HTTP.Port)
	require.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	require.Equal(t, 20, cfg.Limiter.Max)
}

func TestLoad_UnknownDriver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")

	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: cassandra\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cassandra")
}

func TestLoad_PostgresRequiresURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")

	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: postgres\n"), 0o600))
	t.Setenv("DB_URL", "")

	_, err := Load(path)
	require.Error(t, err)
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(LoggerConfig{Level: "loud", Env: "dev"})
	require.Error(t, err)

	logger, err := NewLogger(LoggerConfig{Level: "debug", Env: "prod", Service: "gikihub-api"})
	require.NoError(t, err)
	require.NotNil(t, logger)
	require.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestConfig_LoggerConfig(t *testing.T) {
	cfg := &Config{Env: "local", Logger: Logger{Level: "warn"}}

	require.Equal(t, LoggerConfig{Level: "warn", Env: "local", Service: "gikihub-notifier"}, cfg.LoggerConfig("gikihub-notifier"))
}
