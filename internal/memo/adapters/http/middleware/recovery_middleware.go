package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"charmemo/pkg/logger"
)

// LogPanicRecovered пишется один раз на каждую перехваченную панику.
const LogPanicRecovered = "handler panic recovered"

// NewRecoveryMiddleware перехватывает панику обработчика и отвечает 500 в том
// же формате, что и обычные ошибки. Стек пишется только в лог.
func NewRecoveryMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			requestCtx := RequestContext(ctx)
			logger.Log(requestCtx).Error(requestCtx, LogPanicRecovered,
				zap.String("panic", fmt.Sprint(r)),
				zap.String("method", ctx.Method()),
				zap.String("route", ctx.Route().Path),
				zap.ByteString("stack", debug.Stack()),
			)

			err = ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal error",
				"kind":  "internal",
			})
		}()

		return ctx.Next()
	}
}
