// Package main реализует точку входа службы заметок о персонажах.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"charmemo/internal/memo/adapters/cache"
	httpServer "charmemo/internal/memo/adapters/http"
	"charmemo/internal/memo/adapters/http/memo"
	"charmemo/internal/memo/adapters/postgres"
	"charmemo/internal/memo/adapters/services"
	"charmemo/internal/memo/app"
	"charmemo/internal/memo/config"
	"charmemo/internal/memo/db"
	"charmemo/internal/memo/ports/repositories"
	"charmemo/internal/memo/query"
	"charmemo/internal/memo/resilience"
	pkgredis "charmemo/pkg/db/redis"
	"charmemo/pkg/logger"
	"charmemo/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "MEMO_LOGGER_MODE"
	EnvLoggerLevel = "MEMO_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrInitDB               = "failed to initialize database"
	ErrInitCache            = "catalog cache unavailable, serving catalog from database"
	ErrStartHTTPServer      = "failed to start HTTP server"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "memo service started"
	LogServiceShutdownDone = "memo service shutdown complete"
	LogClosingDB           = "closing database connections"
	LogClosingRedis        = "closing Redis connection"
	LogStoppingHTTP        = "stopping HTTP server"
	LogInitRepo            = "initializing repositories"
	LogInitCache           = "initializing catalog cache"
	LogInitServices        = "initializing services"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
)

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		cfg, err := config.Load(ctx)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		// База может подниматься дольше сервиса.
		database, err := resilience.RetryValue(ctx, resilience.NewRetry("postgres", resilience.DefaultRetryConfig()),
			func(ctx context.Context) (*db.DB, error) {
				return db.New(ctx, &cfg.Postgres)
			})
		if err != nil {
			log.Error(ctx, ErrInitDB, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		log.Info(ctx, LogInitRepo)
		repoFactory := postgres.NewRepositoryFactory(database.Pool())

		characters, redisClient := catalogRepository(ctx, cfg, repoFactory.CharacterRepository())

		queries := query.New(query.Repositories{
			Characters:   characters,
			Categories:   repoFactory.CategoryRepository(),
			Settings:     repoFactory.SettingRepository(),
			MemoItems:    repoFactory.MemoItemRepository(),
			MemoContents: repoFactory.MemoContentRepository(),
		})

		log.Info(ctx, LogInitServices)
		tokenService := services.NewJWT(cfg.JWT.SecretKey)
		memoService := app.NewMemoService(queries)

		log.Info(ctx, LogInitHTTPServer)
		fiberApp := fiber.New(fiber.Config{
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		})
		httpServer.SetupRouter(fiberApp, memo.NewHandler(memoService, queries), tokenService, cfg.HTTP.RequestTimeout)

		log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
		go func() {
			if err := fiberApp.Listen(cfg.HTTP.GetAddress()); err != nil {
				log.Error(ctx, ErrStartHTTPServer, zap.Error(err))
			}
		}()

		// Хуки выполняются по порядку: HTTP дренируется раньше, чем закрываются хранилища.
		shutdown.Wait(ctx, cfg.Shutdown.GetTimeout(),
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingHTTP)
				return fiberApp.ShutdownWithContext(ctx)
			},
			// Закрытие Redis соединения.
			func(ctx context.Context) error {
				if redisClient == nil {
					return nil
				}
				log.Info(ctx, LogClosingRedis)
				return redisClient.Close()
			},
			func(ctx context.Context) error {
				log.Info(ctx, LogClosingDB)
				database.Close(ctx)
				return nil
			},
		)

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// catalogRepository ставит Redis-кэш перед каталогом, если он включен и
// доступен. Иначе каталог читается напрямую из Postgres.
func catalogRepository(ctx context.Context, cfg *config.Config, store repositories.CharacterRepository) (repositories.CharacterRepository, *pkgredis.Client) {
	log := logger.Log(ctx)
	if !cfg.Catalog.CacheEnabled {
		return store, nil
	}

	log.Info(ctx, LogInitCache, zap.String("address", cfg.Redis.GetAddress()))
	client, err := resilience.RetryValue(ctx, resilience.NewRetry("redis", resilience.DefaultRetryConfig()),
		func(ctx context.Context) (*pkgredis.Client, error) {
			return pkgredis.NewClient(ctx, cfg.Redis.ClientConfig())
		})
	if err != nil {
		log.Warn(ctx, ErrInitCache, zap.Error(err))
		return store, nil
	}

	breaker := resilience.NewCircuitBreaker("catalog-cache", resilience.CircuitBreakerConfig{
		ErrorThreshold:   cfg.Catalog.BreakerThreshold,
		Timeout:          cfg.Catalog.BreakerTimeout,
		SuccessThreshold: 1,
	})
	return cache.NewCatalogCache(store, cache.NewRedisCache(client, cfg.Catalog.CacheTTL), breaker, cfg.Catalog.CacheTTL), client
}
