package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"charmemo/internal/memo/ports/services"
	"charmemo/pkg/identity"
	"charmemo/pkg/logger"
)

// Константы для логирования.
const (
	LogAuthMiddleware = "auth middleware"

	ErrorNoAuthHeader       = "authentication required"
	ErrorInvalidTokenFormat = "invalid token format"
	ErrorInvalidToken       = "invalid or expired token"
)

const bearerPrefix = "Bearer "

// NewAuthMiddleware проверяет bearer токен, если он передан, и кладет владельца
// в контекст запроса. Запрос без заголовка проходит анонимно: публичный каталог
// доступен без авторизации, остальное закрывает RequireOwner.
func NewAuthMiddleware(tokens services.TokenService) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := RequestContext(ctx)
		log := logger.Log(requestCtx).With(zap.String("middleware", "auth"))
		log.Debug(requestCtx, LogAuthMiddleware)

		authHeader := ctx.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return ctx.Next()
		}

		if !strings.HasPrefix(authHeader, bearerPrefix) {
			log.Debug(requestCtx, ErrorInvalidTokenFormat)
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": ErrorInvalidTokenFormat,
			})
		}

		owner, err := tokens.ValidateAccessToken(requestCtx, strings.TrimPrefix(authHeader, bearerPrefix))
		if err != nil {
			log.Debug(requestCtx, ErrorInvalidToken, zap.Error(err))
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": ErrorInvalidToken,
			})
		}

		SetRequestContext(ctx, identity.WithOwner(requestCtx, owner))
		return ctx.Next()
	}
}

// RequireOwner отклоняет анонимные запросы до вызова h.
func RequireOwner(h fiber.Handler) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		if !identity.IsAuthenticated(RequestContext(ctx)) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": ErrorNoAuthHeader,
			})
		}
		return h(ctx)
	}
}
