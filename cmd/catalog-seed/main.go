// Package main загружает каталог персонажей из YAML файла в базу сервиса заметок.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"charmemo/internal/memo/adapters/cache"
	"charmemo/internal/memo/adapters/postgres"
	"charmemo/internal/memo/catalog"
	"charmemo/internal/memo/config"
	"charmemo/internal/memo/db"
	"charmemo/internal/memo/domain/entities"
	"charmemo/internal/memo/resilience"
	pkgredis "charmemo/pkg/db/redis"
	"charmemo/pkg/logger"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger      = "failed to initialize logger"
	ErrLoadConfig      = "failed to load configuration"
	ErrLoadCatalog     = "failed to load catalog file"
	ErrInitDB          = "failed to initialize database"
	ErrUpsertCatalog   = "failed to write catalog"
	ErrInvalidateCache = "failed to invalidate catalog cache, entries expire by TTL"
)

// Константы для сообщений.
const (
	LogCatalogLoaded  = "catalog file loaded"
	LogCatalogWritten = "catalog written"
	LogDryRun         = "dry run, nothing written"
)

func main() {
	file := flag.String("file", "configs/catalog.yaml", "path to the YAML catalog")
	dryRun := flag.Bool("dry-run", false, "validate the catalog without writing it")
	flag.Parse()

	log, err := logger.NewLogger(logger.Development, "info")
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}
	logger.SetGlobalLogger(log)
	defer func() { _ = log.Sync() }()

	ctx := logger.NewRequestIDContext(context.Background(), "")

	if err := run(ctx, *file, *dryRun); err != nil {
		log.Error(ctx, "catalog seed failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, file string, dryRun bool) error {
	log := logger.Log(ctx)

	chars, err := catalog.LoadFile(file)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrLoadCatalog, err)
	}
	log.Info(ctx, LogCatalogLoaded, zap.String("file", file), zap.Int("characters", len(chars)))

	if dryRun {
		log.Info(ctx, LogDryRun)
		return nil
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrLoadConfig, err)
	}

	database, err := resilience.RetryValue(ctx, resilience.NewRetry("postgres", resilience.DefaultRetryConfig()),
		func(ctx context.Context) (*db.DB, error) {
			return db.New(ctx, &cfg.Postgres)
		})
	if err != nil {
		return fmt.Errorf("%s: %w", ErrInitDB, err)
	}
	defer database.Close(ctx)

	if err := postgres.NewCatalogWriter(database.Pool()).Upsert(ctx, chars); err != nil {
		return fmt.Errorf("%s: %w", ErrUpsertCatalog, err)
	}
	log.Info(ctx, LogCatalogWritten, zap.Int("characters", len(chars)))

	if cfg.Catalog.CacheEnabled {
		invalidateCache(ctx, cfg, database, chars)
	}
	return nil
}

// invalidateCache удаляет закэшированный каталог, чтобы сервис увидел новый.
func invalidateCache(ctx context.Context, cfg *config.Config, database *db.DB, chars []entities.Character) {
	log := logger.Log(ctx)

	timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := pkgredis.NewClient(timeoutCtx, cfg.Redis.ClientConfig())
	if err != nil {
		log.Warn(ctx, ErrInvalidateCache, zap.Error(err))
		return
	}
	defer func() { _ = client.Close() }()

	ids := make([]string, 0, len(chars))
	for _, c := range chars {
		ids = append(ids, c.ID)
	}

	catalogCache := cache.NewCatalogCache(
		postgres.NewCharacterRepository(database.Pool()),
		cache.NewRedisCache(client, cfg.Catalog.CacheTTL),
		resilience.NewCircuitBreaker("catalog-seed", resilience.DefaultCircuitBreakerConfig()),
		cfg.Catalog.CacheTTL,
	)
	if err := catalogCache.Invalidate(timeoutCtx, ids...); err != nil {
		log.Warn(ctx, ErrInvalidateCache, zap.Error(err))
	}
}
