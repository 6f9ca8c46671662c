// Package shutdown blocks until SIGINT or SIGTERM and then releases resources
// in order within a deadline.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"charmemo/pkg/logger"
)

// Log messages.
const (
	LogSignalReceived   = "shutdown signal received"
	LogContextCancelled = "shutdown requested by context"
	LogHookFailed       = "shutdown hook failed"
	LogTimedOut         = "shutdown timed out, remaining hooks skipped"
)

// Hook releases one resource.
type Hook func(context.Context) error

// Wait blocks until SIGINT or SIGTERM or ctx cancellation, then calls Run.
func Wait(ctx context.Context, timeout time.Duration, hooks ...Hook) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Log(ctx).Info(ctx, LogSignalReceived, zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Log(ctx).Info(ctx, LogContextCancelled)
	}

	Run(context.WithoutCancel(ctx), timeout, hooks...)
}

// Run calls hooks one after another in the given order, so a server can drain
// before the stores it uses are closed. A failing hook does not stop the rest.
// Once timeout elapses the hook in progress is abandoned and the rest skipped.
// Run reports how many hooks completed.
func Run(ctx context.Context, timeout time.Duration, hooks ...Hook) int {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := logger.Log(ctx)

	for i, hook := range hooks {
		if ctx.Err() != nil {
			log.Warn(ctx, LogTimedOut,
				zap.Duration("timeout", timeout),
				zap.Int("completed", i),
				zap.Int("total", len(hooks)))
			return i
		}

		done := make(chan error, 1)
		go func() { done <- hook(ctx) }()

		select {
		case err := <-done:
			if err != nil {
				log.Warn(ctx, LogHookFailed, zap.Int("hook", i), zap.Error(err))
			}
		case <-ctx.Done():
			log.Warn(ctx, LogTimedOut,
				zap.Duration("timeout", timeout),
				zap.Int("completed", i),
				zap.Int("total", len(hooks)))
			return i
		}
	}
	return len(hooks)
}
