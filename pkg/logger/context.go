package logger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger errors.
var (
	ErrLoggerNotFound   = errors.New("logger not found in context")
	ErrInitGlobalLogger = errors.New("failed to initialize global logger")
)

type loggerKeyType struct{}

var loggerKey = loggerKeyType{}

// global is the process logger; nil means the fallback is used.
var global atomic.Pointer[Logger]

// initMu serializes InitGlobalLoggerWithLevel so only one logger is built.
var initMu sync.Mutex

// fallback writes only warnings and errors until the service sets up its logger.
var fallback = sync.OnceValue(func() *Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	zl, err := cfg.Build()
	if err != nil {
		zl = zap.NewNop()
	}
	return &Logger{l: zl.With(zap.String("logger", "fallback"))}
})

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger stored by NewContext.
func FromContext(ctx context.Context) (*Logger, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context validation: %w", ErrLoggerNotFound)
	}
	logger, ok := ctx.Value(loggerKey).(*Logger)
	if !ok {
		return nil, fmt.Errorf("logger lookup: %w", ErrLoggerNotFound)
	}
	return logger, nil
}

// InitGlobalLogger sets the global logger once with the default level.
func InitGlobalLogger(env Environment) error {
	return InitGlobalLoggerWithLevel(env, "")
}

// InitGlobalLoggerWithLevel sets the global logger once. Subsequent calls are no-ops.
func InitGlobalLoggerWithLevel(env Environment, level string) error {
	initMu.Lock()
	defer initMu.Unlock()

	if global.Load() != nil {
		return nil
	}

	logger, err := NewLogger(env, level)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInitGlobalLogger, err)
	}
	global.Store(logger)
	return nil
}

// SetGlobalLogger replaces the global logger; nil restores the fallback.
func SetGlobalLogger(logger *Logger) {
	global.Store(logger)
}

// Log returns the context logger, else the global logger, else the fallback.
func Log(ctx context.Context) *Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(*Logger); ok {
			return logger
		}
	}
	if logger := global.Load(); logger != nil {
		return logger
	}
	return fallback()
}
