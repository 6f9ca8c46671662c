package memo

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"charmemo/internal/memo/adapters/http/middleware"
	"charmemo/internal/memo/domain/entities"
)

// memoItemFilters переводит параметры запроса в фильтры:
// visible=true, min_order и max_order (оба или ни одного), q.
func memoItemFilters(ctx fiber.Ctx) ([]entities.MemoItemFilter, error) {
	var filters []entities.MemoItemFilter

	if ctx.Query("visible") == "true" {
		filters = append(filters, entities.VisibleOnly())
	}

	minRaw, maxRaw := ctx.Query("min_order"), ctx.Query("max_order")
	if minRaw != "" || maxRaw != "" {
		minOrder, err := strconv.Atoi(minRaw)
		if err != nil {
			return nil, err
		}
		maxOrder, err := strconv.Atoi(maxRaw)
		if err != nil {
			return nil, err
		}
		filters = append(filters, entities.OrderBetween(minOrder, maxOrder))
	}

	if q := ctx.Query("q"); q != "" {
		filters = append(filters, entities.NameContains(q))
	}
	return filters, nil
}

// ListMemoItems отдает пункты заметок владельца с фильтрами.
func (h *Handler) ListMemoItems(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)
	log := handlerLog(userCtx, "ListMemoItems")

	filters, err := memoItemFilters(ctx)
	if err != nil {
		log.Debug(userCtx, ErrMsgInvalidFilter, zap.Error(err))
		return badRequest(ctx, ErrMsgInvalidFilter)
	}

	items, err := h.queries.ListMemoItems(userCtx, filters...)
	if err != nil {
		log.Error(userCtx, "failed to list memo items", zap.Error(err))
		return handleError(ctx, err)
	}
	return reply(ctx, fiber.StatusOK, items)
}

// DisplayMemoItems отдает видимые пункты для экрана; ошибка дает degraded список.
func (h *Handler) DisplayMemoItems(ctx fiber.Ctx) error {
	listing := h.service.DisplayMemoItems(middleware.RequestContext(ctx))
	return reply(ctx, fiber.StatusOK, listingResponse{
		Items:    listing.Items,
		Degraded: listing.Degraded,
		Cause:    causeOf(listing.Cause),
	})
}

// GetMemoItem отдает пункт заметок по ID.
func (h *Handler) GetMemoItem(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)

	item, err := h.queries.GetMemoItem(userCtx, ctx.Params("memo_item_id"))
	if err != nil {
		handlerLog(userCtx, "GetMemoItem").Error(userCtx, "failed to get memo item", zap.Error(err))
		return handleError(ctx, err)
	}
	if item == nil {
		return notFound(ctx)
	}
	return reply(ctx, fiber.StatusOK, item)
}

// CreateMemoItem создает пункт заметок. Без visible пункт видим.
func (h *Handler) CreateMemoItem(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)

	var req MemoItemRequest
	if err := bindBody(ctx, &req); err != nil {
		return badRequest(ctx, ErrMsgInvalidRequestBody)
	}

	item, err := h.queries.CreateMemoItem(userCtx, req.Name, req.Order, req.Visible == nil || *req.Visible)
	if err != nil {
		handlerLog(userCtx, "CreateMemoItem").Warn(userCtx, "failed to create memo item", zap.Error(err))
		return handleError(ctx, err)
	}
	return reply(ctx, fiber.StatusCreated, item)
}

// UpdateMemoItem изменяет пункт заметок при совпадении версии.
func (h *Handler) UpdateMemoItem(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)

	var req MemoItemRequest
	if err := bindBody(ctx, &req); err != nil {
		return badRequest(ctx, ErrMsgInvalidRequestBody)
	}

	id := ctx.Params("memo_item_id")

	// Без поля visible сохраняется текущее значение: переименование не
	// должно возвращать скрытый пункт в интерфейс.
	var visible bool
	if req.Visible != nil {
		visible = *req.Visible
	} else {
		current, err := h.queries.GetMemoItem(userCtx, id)
		if err != nil {
			handlerLog(userCtx, "UpdateMemoItem").Warn(userCtx, "failed to load memo item", zap.Error(err))
			return handleError(ctx, err)
		}
		if current == nil {
			return notFound(ctx)
		}
		visible = current.Visible
	}

	item := &entities.MemoItem{
		ID:      id,
		Name:    req.Name,
		Order:   req.Order,
		Visible: visible,
	}
	updated, err := h.queries.UpdateMemoItem(userCtx, item, req.Version)
	if err != nil {
		handlerLog(userCtx, "UpdateMemoItem").Warn(userCtx, "failed to update memo item", zap.Error(err))
		return handleError(ctx, err)
	}
	return reply(ctx, fiber.StatusOK, updated)
}

// DeleteMemoItem удаляет пункт вместе со всеми заметками по нему.
func (h *Handler) DeleteMemoItem(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)

	version, err := versionParam(ctx)
	if err != nil {
		return badRequest(ctx, ErrMsgInvalidVersion)
	}

	if err := h.service.DeleteMemoItem(userCtx, ctx.Params("memo_item_id"), version); err != nil {
		handlerLog(userCtx, "DeleteMemoItem").Warn(userCtx, "failed to delete memo item", zap.Error(err))
		return handleError(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// ListMemoItemContents отдает заметки по пункту, сгруппированные по персонажу.
func (h *Handler) ListMemoItemContents(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)

	byCharacter, err := h.service.ContentsByCharacter(userCtx, ctx.Params("memo_item_id"))
	if err != nil {
		handlerLog(userCtx, "ListMemoItemContents").Error(userCtx, "failed to list memo contents", zap.Error(err))
		return handleError(ctx, err)
	}
	return reply(ctx, fiber.StatusOK, byCharacter)
}
