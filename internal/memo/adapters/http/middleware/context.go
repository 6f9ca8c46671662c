// Package middleware holds the HTTP middleware of the memo API.
package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"charmemo/pkg/logger"
)

// UserContextKey is the fiber local holding the request's context.Context.
const UserContextKey = "userContext"

// HeaderRequestID is echoed back on every response.
const HeaderRequestID = "X-Request-ID"

// RequestContext returns the context prepared by the middleware chain.
func RequestContext(ctx fiber.Ctx) context.Context {
	if userCtx, ok := ctx.Locals(UserContextKey).(context.Context); ok {
		return userCtx
	}
	return ctx.Context() // fallback
}

// SetRequestContext replaces the request's context.
func SetRequestContext(ctx fiber.Ctx, userCtx context.Context) {
	ctx.Locals(UserContextKey, userCtx)
}

// NewContextMiddleware builds the request context with a request id and a
// timeout. A zero timeout disables the limit.
func NewContextMiddleware(timeout time.Duration) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		userCtx := logger.NewRequestIDContext(ctx.Context(), ctx.Get(HeaderRequestID))
		requestID, _ := logger.GetRequestID(userCtx)
		ctx.Set(HeaderRequestID, requestID)

		if timeout > 0 {
			var cancel context.CancelFunc
			userCtx, cancel = context.WithTimeout(userCtx, timeout)
			defer cancel()
		}
		SetRequestContext(ctx, userCtx)

		return ctx.Next()
	}
}
