// Package config содержит конфигурацию сервиса заметок о персонажах.
package config

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	pkgconfig "charmemo/pkg/config"
	"charmemo/pkg/logger"
)

const serviceName = "memo"

// Константы ошибок и сообщений для конфигурации.
const (
	LogConfigSummary    = "memo service configuration"
	ErrFailedLoadConfig = "failed to load memo configuration"
)

// Config представляет полную конфигурацию сервиса.
type Config struct {
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	HTTP     HTTPConfig     `yaml:"http"`
	JWT      JWTConfig      `yaml:"jwt"`
	Logging  LoggingConfig  `yaml:"logging"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
	Catalog  CatalogConfig  `yaml:"catalog"`
}

// Ошибки проверки конфигурации.
var (
	ErrPoolBounds       = errors.New("postgres min_conn must not exceed max_conn")
	ErrEmptyJWTSecret   = errors.New("jwt secret_key is empty")
	ErrBreakerThreshold = errors.New("catalog breaker_threshold must be positive")
	ErrUnknownLogMode   = errors.New("logging mode must be development or production")
)

// Validate проверяет связанные поля. Вызывается из pkgconfig.Load.
func (c *Config) Validate() error {
	var errs []error
	if c.Postgres.MaxConn > 0 && c.Postgres.MinConn > c.Postgres.MaxConn {
		errs = append(errs, ErrPoolBounds)
	}
	if c.JWT.SecretKey == "" {
		errs = append(errs, ErrEmptyJWTSecret)
	}
	if c.Catalog.CacheEnabled && c.Catalog.BreakerThreshold <= 0 {
		errs = append(errs, ErrBreakerThreshold)
	}
	if c.Logging.Mode != "development" && c.Logging.Mode != "production" {
		errs = append(errs, ErrUnknownLogMode)
	}
	return errors.Join(errs...)
}

// Load загружает конфигурацию из переменных окружения.
func Load(ctx context.Context) (*Config, error) {
	return LoadFile(ctx, "")
}

// LoadFile загружает конфигурацию из YAML файла, если он есть, иначе из окружения.
func LoadFile(ctx context.Context, path string) (*Config, error) {
	cfg, err := pkgconfig.Load[Config](ctx, serviceName, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	logger.Log(ctx).Info(ctx, LogConfigSummary,
		zap.String("http_address", cfg.HTTP.GetAddress()),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.String("postgres_database", cfg.Postgres.Database),
		zap.String("redis_address", cfg.Redis.GetAddress()),
		zap.Bool("catalog_cache", cfg.Catalog.CacheEnabled),
		zap.Duration("catalog_cache_ttl", cfg.Catalog.CacheTTL),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_mode", cfg.Logging.Mode))

	return cfg, nil
}
