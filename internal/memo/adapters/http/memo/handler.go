// Package memo содержит HTTP-обработчики каталога персонажей и заметок.
package memo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"charmemo/internal/memo/adapters/http/middleware"
	"charmemo/internal/memo/app"
	"charmemo/internal/memo/domain/entities"
	"charmemo/internal/memo/query"
	"charmemo/pkg/identity"
	"charmemo/pkg/logger"
)

// Константы ошибок.
const (
	ErrMsgInvalidRequestBody = "invalid request body"
	ErrMsgInvalidVersion     = "version query parameter must be an integer"
	ErrMsgInvalidLocale      = "invalid locale"
	ErrMsgInvalidFilter      = "invalid filter parameters"
	ErrMsgNotFound           = "not found"
	ErrMsgInternal           = "Internal server error"
)

// Handler обработчик HTTP-запросов каталога и заметок.
type Handler struct {
	service *app.MemoService
	queries *query.Queries
}

// NewHandler создает новый экземпляр обработчика.
func NewHandler(service *app.MemoService, queries *query.Queries) *Handler {
	return &Handler{service: service, queries: queries}
}

func handlerLog(ctx context.Context, name string) *logger.Logger {
	return logger.Log(ctx).With(zap.String("handler", "Handler."+name))
}

// ErrorResponse - тело любого ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func reply(ctx fiber.Ctx, status int, body any) error {
	if err := ctx.Status(status).JSON(body); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

func badRequest(ctx fiber.Ctx, msg string) error {
	return reply(ctx, fiber.StatusBadRequest, ErrorResponse{Error: msg, Kind: entities.KindValidation.String()})
}

// StatusOf сопоставляет ошибке HTTP-статус.
func StatusOf(err error) int {
	if errors.Is(err, identity.ErrUnauthenticated) {
		return fiber.StatusUnauthorized
	}
	kind, ok := entities.KindOf(err)
	if !ok {
		return fiber.StatusInternalServerError
	}
	switch kind {
	case entities.KindNotFound:
		return fiber.StatusNotFound
	case entities.KindVersionConflict:
		return fiber.StatusConflict
	case entities.KindTransport:
		return fiber.StatusServiceUnavailable
	case entities.KindValidation:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// handleError обрабатывает ошибки и возвращает соответствующий HTTP-статус.
// Детали транспортных ошибок наружу не отдаются.
func handleError(ctx fiber.Ctx, err error) error {
	status := StatusOf(err)

	resp := ErrorResponse{Error: err.Error()}
	if kind, ok := entities.KindOf(err); ok {
		resp.Kind = kind.String()
	}
	switch status {
	case fiber.StatusInternalServerError:
		resp = ErrorResponse{Error: ErrMsgInternal}
	case fiber.StatusServiceUnavailable:
		resp.Error = "storage unavailable"
	}
	return reply(ctx, status, resp)
}

func bindBody(ctx fiber.Ctx, req any) error {
	if err := ctx.Bind().Body(req); err != nil {
		requestCtx := middleware.RequestContext(ctx)
		logger.Log(requestCtx).Debug(requestCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return err
	}
	return nil
}

// versionParam читает обязательный ?version= запросов на удаление.
func versionParam(ctx fiber.Ctx) (int, error) {
	v, err := strconv.Atoi(ctx.Query("version"))
	if err != nil {
		return 0, err
	}
	return v, nil
}

func notFound(ctx fiber.Ctx) error {
	return reply(ctx, fiber.StatusNotFound, ErrorResponse{Error: ErrMsgNotFound, Kind: entities.KindNotFound.String()})
}

// listingResponse - тело списков, которые могут деградировать.
type listingResponse struct {
	Items    any    `json:"items"`
	Degraded bool   `json:"degraded"`
	Cause    string `json:"cause,omitempty"`
}

func causeOf(err error) string {
	if err == nil {
		return ""
	}
	if kind, ok := entities.KindOf(err); ok {
		return kind.String()
	}
	return "unknown"
}
