package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"charmemo/pkg/logger"
)

// Сообщения access-лога.
const (
	LogRequestCompleted = "request completed"
	LogRequestRejected  = "request rejected"
	LogRequestFailed    = "request failed"
)

// NewLoggerMiddleware пишет одну строку на запрос. Контекст читается после
// обработчика, поэтому владелец, выставленный auth middleware, попадает в лог.
// Уровень зависит от статуса: 5xx error, 4xx warn.
func NewLoggerMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) error {
		start := time.Now()

		err := ctx.Next()

		requestCtx := RequestContext(ctx)
		log := logger.Log(requestCtx)
		status := ctx.Response().StatusCode()
		fields := []zap.Field{
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.Path()),
			zap.String("ip", ctx.IP()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}

		switch {
		case err != nil:
			log.Error(requestCtx, LogRequestFailed, append(fields, zap.Error(err))...)
		case status >= fiber.StatusInternalServerError:
			log.Error(requestCtx, LogRequestFailed, fields...)
		case status >= fiber.StatusBadRequest:
			log.Warn(requestCtx, LogRequestRejected, fields...)
		default:
			log.Info(requestCtx, LogRequestCompleted, fields...)
		}
		return err
	}
}
