package logger_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"charmemo/pkg/identity"
	"charmemo/pkg/logger"
)

func TestFromContext(t *testing.T) {
	t.Run("success when logger exists in context", func(t *testing.T) {
		testLogger, err := logger.NewLogger(logger.Development, "debug")
		require.NoError(t, err)

		ctx := logger.NewContext(context.Background(), testLogger)

		retrievedLogger, err := logger.FromContext(ctx)
		require.NoError(t, err)
		assert.Same(t, testLogger, retrievedLogger)
	})

	t.Run("error when no logger in context", func(t *testing.T) {
		retrievedLogger, err := logger.FromContext(context.Background())
		require.Error(t, err)
		assert.Nil(t, retrievedLogger)
		assert.ErrorIs(t, err, logger.ErrLoggerNotFound)
	})

	t.Run("error when context has non-logger values", func(t *testing.T) {
		type ctxKeyType struct{}

		ctx := context.WithValue(context.Background(), ctxKeyType{}, "not a logger")

		retrievedLogger, err := logger.FromContext(ctx)
		require.Error(t, err)
		assert.Nil(t, retrievedLogger)
		assert.ErrorIs(t, err, logger.ErrLoggerNotFound)
	})
}

func TestInitGlobalLogger(t *testing.T) {
	defer logger.SetGlobalLogger(nil)

	t.Run("successfully initializes global logger", func(t *testing.T) {
		logger.SetGlobalLogger(nil)

		require.NoError(t, logger.InitGlobalLogger(logger.Development))
		assert.NotNil(t, logger.Log(context.Background()))
	})

	t.Run("returns nil when global logger already exists", func(t *testing.T) {
		logger.SetGlobalLogger(nil)

		require.NoError(t, logger.InitGlobalLoggerWithLevel(logger.Production, "info"))
		firstLogger := logger.Log(context.Background())

		require.NoError(t, logger.InitGlobalLoggerWithLevel(logger.Development, "debug"))
		secondLogger := logger.Log(context.Background())

		assert.Same(t, firstLogger, secondLogger)
	})
}

func TestLog(t *testing.T) {
	logger.SetGlobalLogger(nil)
	defer logger.SetGlobalLogger(nil)

	t.Run("returns logger from context when available", func(t *testing.T) {
		contextLogger, err := logger.NewLogger(logger.Development, "debug")
		require.NoError(t, err)

		globalLogger, err := logger.NewLogger(logger.Production, "error")
		require.NoError(t, err)
		logger.SetGlobalLogger(globalLogger)

		ctx := logger.NewContext(context.Background(), contextLogger)

		result := logger.Log(ctx)
		assert.Same(t, contextLogger, result)
		assert.NotSame(t, globalLogger, result)
	})

	t.Run("returns global logger when no logger in context", func(t *testing.T) {
		globalLogger, err := logger.NewLogger(logger.Development, "info")
		require.NoError(t, err)
		logger.SetGlobalLogger(globalLogger)

		assert.Same(t, globalLogger, logger.Log(context.Background()))
	})

	t.Run("returns the same fallback logger instance each time", func(t *testing.T) {
		logger.SetGlobalLogger(nil)

		result1 := logger.Log(context.Background())
		result2 := logger.Log(context.Background())

		require.NotNil(t, result1)
		assert.Same(t, result1, result2, "fallback logger should be a singleton")
	})
}

func TestLoggerMethods(t *testing.T) {
	log, err := logger.NewLogger(logger.Development, "debug")
	require.NoError(t, err)

	t.Run("With creates new logger instance", func(t *testing.T) {
		newLog := log.With(zap.String("key", "value"), zap.Int("key2", 42))

		assert.NotNil(t, newLog)
		assert.NotSame(t, log, newLog, "With() should return a new logger instance")
	})

	t.Run("Logging methods with request ID context", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "test-request-id-123")

		assert.NotPanics(t, func() {
			log.Debug(ctx, "debug message with request ID")
			log.Info(ctx, "info message with request ID")
			log.Warn(ctx, "warning message with request ID")
			log.Error(ctx, "error message with request ID", zap.String("custom_field", "custom_value"))
		})
	})

	t.Run("WithRequestID", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "test-request-id-456")

		assert.NotSame(t, log, log.WithRequestID(ctx))
		assert.Same(t, log, log.WithRequestID(context.Background()),
			"withRequestID should return same logger when no request ID exists")
	})
}

func TestNewLogger(t *testing.T) {
	levels := []string{"debug", "info", "warn", "warning", "error", "invalid", ""}

	for _, env := range []logger.Environment{logger.Development, logger.Production} {
		for _, level := range levels {
			t.Run(string(env)+"/level="+level, func(t *testing.T) {
				log, err := logger.NewLogger(env, level)
				require.NoError(t, err)
				require.NotNil(t, log)
			})
		}
	}
}

func TestRequestID(t *testing.T) {
	t.Run("generates unique time-ordered ids", func(t *testing.T) {
		id1 := logger.GenerateRequestID()
		id2 := logger.GenerateRequestID()
		assert.NotEqual(t, id1, id2)

		parsed, err := uuid.Parse(id1)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())
	})

	t.Run("replaces unusable client ids", func(t *testing.T) {
		for _, raw := range []string{"has space", "line\nbreak", strings.Repeat("a", logger.MaxRequestIDLength+1), "кириллица"} {
			ctx := logger.NewRequestIDContext(context.Background(), raw)

			id, ok := logger.GetRequestID(ctx)
			require.True(t, ok)
			assert.NotEqual(t, raw, id)
			assert.True(t, logger.ValidRequestID(id))
		}
	})

	t.Run("returns request ID when present in context", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "test-request-id-123")

		id, ok := logger.GetRequestID(ctx)
		assert.True(t, ok)
		assert.Equal(t, "test-request-id-123", id)
	})

	t.Run("generates an id for empty input", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "")

		id, ok := logger.GetRequestID(ctx)
		assert.True(t, ok)
		assert.NotEmpty(t, id)
	})

	t.Run("returns false when no request ID in context", func(t *testing.T) {
		id, ok := logger.GetRequestID(context.Background())
		assert.False(t, ok)
		assert.Empty(t, id)
	})
}

func TestContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.Wrap(zap.New(core))

	ctx := logger.NewRequestIDContext(context.Background(), "req-1")
	log.Info(ctx, "anonymous")
	log.Info(identity.WithOwner(ctx, "user-1"), "owned", zap.String("memo_item_id", "item-1"))
	log.Info(identity.CatalogContext(identity.WithOwner(ctx, "user-1")), "catalog")

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, map[string]interface{}{logger.RequestID: "req-1"}, entries[0].ContextMap())
	assert.Equal(t, map[string]interface{}{
		logger.RequestID: "req-1",
		logger.Owner:     "user-1",
		"memo_item_id":   "item-1",
	}, entries[1].ContextMap())
	assert.NotContains(t, entries[2].ContextMap(), logger.Owner)
}
