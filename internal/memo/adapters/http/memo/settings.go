package memo

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"charmemo/internal/memo/adapters/http/middleware"
)

// ListSettings отдает настройки персонажей владельца.
func (h *Handler) ListSettings(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)

	settings, err := h.queries.ListSettings(userCtx)
	if err != nil {
		handlerLog(userCtx, "ListSettings").Error(userCtx, "failed to list settings", zap.Error(err))
		return handleError(ctx, err)
	}
	return reply(ctx, fiber.StatusOK, settings)
}

// GetSetting отдает настройку владельца для персонажа.
func (h *Handler) GetSetting(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)

	setting, err := h.queries.GetSettingByCharacter(userCtx, ctx.Params("character_id"))
	if err != nil {
		handlerLog(userCtx, "GetSetting").Error(userCtx, "failed to get setting", zap.Error(err))
		return handleError(ctx, err)
	}
	if setting == nil {
		return notFound(ctx)
	}
	return reply(ctx, fiber.StatusOK, setting)
}

// DeleteSetting удаляет настройку, возвращая персонажу значения каталога.
func (h *Handler) DeleteSetting(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)

	version, err := versionParam(ctx)
	if err != nil {
		return badRequest(ctx, ErrMsgInvalidVersion)
	}

	if err := h.queries.DeleteSetting(userCtx, ctx.Params("setting_id"), version); err != nil {
		handlerLog(userCtx, "DeleteSetting").Warn(userCtx, "failed to delete setting", zap.Error(err))
		return handleError(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
