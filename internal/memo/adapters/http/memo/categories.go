package memo

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"charmemo/internal/memo/adapters/http/middleware"
	"charmemo/internal/memo/domain/entities"
)

// ListCategories отдает категории владельца.
func (h *Handler) ListCategories(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)

	categories, err := h.queries.ListCategories(userCtx)
	if err != nil {
		handlerLog(userCtx, "ListCategories").Error(userCtx, "failed to list categories", zap.Error(err))
		return handleError(ctx, err)
	}
	return reply(ctx, fiber.StatusOK, categories)
}

// GetCategory отдает категорию по ID.
func (h *Handler) GetCategory(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)

	category, err := h.queries.GetCategory(userCtx, ctx.Params("category_id"))
	if err != nil {
		handlerLog(userCtx, "GetCategory").Error(userCtx, "failed to get category", zap.Error(err))
		return handleError(ctx, err)
	}
	if category == nil {
		return notFound(ctx)
	}
	return reply(ctx, fiber.StatusOK, category)
}

// CreateCategory создает категорию.
func (h *Handler) CreateCategory(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)

	var req CategoryRequest
	if err := bindBody(ctx, &req); err != nil {
		return badRequest(ctx, ErrMsgInvalidRequestBody)
	}

	category, err := h.queries.CreateCategory(userCtx, req.Name, req.Color, req.Order)
	if err != nil {
		handlerLog(userCtx, "CreateCategory").Warn(userCtx, "failed to create category", zap.Error(err))
		return handleError(ctx, err)
	}
	return reply(ctx, fiber.StatusCreated, category)
}

// UpdateCategory изменяет категорию при совпадении версии.
func (h *Handler) UpdateCategory(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)

	var req CategoryRequest
	if err := bindBody(ctx, &req); err != nil {
		return badRequest(ctx, ErrMsgInvalidRequestBody)
	}

	category := &entities.Category{
		ID:    ctx.Params("category_id"),
		Name:  req.Name,
		Color: req.Color,
		Order: req.Order,
	}
	updated, err := h.queries.UpdateCategory(userCtx, category, req.Version)
	if err != nil {
		handlerLog(userCtx, "UpdateCategory").Warn(userCtx, "failed to update category", zap.Error(err))
		return handleError(ctx, err)
	}
	return reply(ctx, fiber.StatusOK, updated)
}

// DeleteCategory удаляет категорию; ее персонажи становятся без категории.
func (h *Handler) DeleteCategory(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)

	version, err := versionParam(ctx)
	if err != nil {
		return badRequest(ctx, ErrMsgInvalidVersion)
	}

	if err := h.queries.DeleteCategory(userCtx, ctx.Params("category_id"), version); err != nil {
		handlerLog(userCtx, "DeleteCategory").Warn(userCtx, "failed to delete category", zap.Error(err))
		return handleError(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
