package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LoggerConfig struct {
	Level   string
	Env     string
	Service string
}

// NewLogger builds a json production logger for env "prod" and a console
// development logger otherwise. Every entry carries env and, when set, service.
func NewLogger(cfg LoggerConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Env == "prod" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.InitialFields = map[string]interface{}{
		"env": cfg.Env,
	}
	if cfg.Service != "" {
		zapCfg.InitialFields["service"] = cfg.Service
	}

	return zapCfg.Build()
}

func (c *Config) LoggerConfig(service string) LoggerConfig {
	return LoggerConfig{
		Level:   c.Logger.Level,
		Env:     c.Env,
		Service: service,
	}
}
