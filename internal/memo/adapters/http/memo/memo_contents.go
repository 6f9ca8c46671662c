package memo

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"charmemo/internal/memo/adapters/http/middleware"
	"charmemo/internal/memo/query"
)

// CreateMemoContent создает заметку для пары персонаж и пункт.
func (h *Handler) CreateMemoContent(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)

	var req CreateMemoContentRequest
	if err := bindBody(ctx, &req); err != nil {
		return badRequest(ctx, ErrMsgInvalidRequestBody)
	}

	content, err := h.queries.CreateMemoContent(userCtx, query.MemoContentInput{
		CharacterID: req.CharacterID,
		MemoItemID:  req.MemoItemID,
		Content:     req.Content,
	})
	if err != nil {
		handlerLog(userCtx, "CreateMemoContent").Warn(userCtx, "failed to create memo content", zap.Error(err))
		return handleError(ctx, err)
	}
	return reply(ctx, fiber.StatusCreated, content)
}

// GetMemoContent отдает заметку по ID.
func (h *Handler) GetMemoContent(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)

	content, err := h.queries.GetMemoContent(userCtx, ctx.Params("memo_content_id"))
	if err != nil {
		handlerLog(userCtx, "GetMemoContent").Error(userCtx, "failed to get memo content", zap.Error(err))
		return handleError(ctx, err)
	}
	if content == nil {
		return notFound(ctx)
	}
	return reply(ctx, fiber.StatusOK, content)
}

// UpdateMemoContent изменяет текст заметки при совпадении версии.
func (h *Handler) UpdateMemoContent(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)

	var req UpdateMemoContentRequest
	if err := bindBody(ctx, &req); err != nil {
		return badRequest(ctx, ErrMsgInvalidRequestBody)
	}

	content, err := h.queries.UpdateMemoContent(userCtx, ctx.Params("memo_content_id"), req.Content, req.Version)
	if err != nil {
		handlerLog(userCtx, "UpdateMemoContent").Warn(userCtx, "failed to update memo content", zap.Error(err))
		return handleError(ctx, err)
	}
	return reply(ctx, fiber.StatusOK, content)
}

// DeleteMemoContent удаляет заметку при совпадении версии.
func (h *Handler) DeleteMemoContent(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)

	version, err := versionParam(ctx)
	if err != nil {
		return badRequest(ctx, ErrMsgInvalidVersion)
	}

	if err := h.queries.DeleteMemoContent(userCtx, ctx.Params("memo_content_id"), version); err != nil {
		handlerLog(userCtx, "DeleteMemoContent").Warn(userCtx, "failed to delete memo content", zap.Error(err))
		return handleError(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
