package memo

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"charmemo/internal/memo/adapters/http/middleware"
	"charmemo/internal/memo/app"
	"charmemo/internal/memo/domain/entities"
	"charmemo/internal/memo/i18n"
)

// ListCharacters отдает каталог в порядке владельца или, с ?locale=, по
// локализованному имени. Ошибка хранилища отдается как degraded список.
func (h *Handler) ListCharacters(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)
	log := handlerLog(userCtx, "ListCharacters")

	var listing app.Listing[entities.Character]
	if raw := ctx.Query("locale"); raw != "" {
		tag, err := i18n.ParseLocale(raw)
		if err != nil {
			log.Debug(userCtx, ErrMsgInvalidLocale, zap.String("locale", raw), zap.Error(err))
			return badRequest(ctx, ErrMsgInvalidLocale)
		}
		listing = h.service.DisplayCharactersByName(userCtx, tag)
	} else {
		listing = h.service.DisplayCharacters(userCtx)
	}

	return reply(ctx, fiber.StatusOK, listingResponse{
		Items:    listing.Items,
		Degraded: listing.Degraded,
		Cause:    causeOf(listing.Cause),
	})
}

// GetCharacter отдает одного персонажа каталога.
func (h *Handler) GetCharacter(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)

	char, err := h.queries.GetCharacter(userCtx, ctx.Params("character_id"))
	if err != nil {
		handlerLog(userCtx, "GetCharacter").Error(userCtx, "failed to get character", zap.Error(err))
		return handleError(ctx, err)
	}
	if char == nil {
		return notFound(ctx)
	}
	return reply(ctx, fiber.StatusOK, char)
}

// groupingResponse - тело ответа с группировкой по категориям.
type groupingResponse struct {
	app.Grouping
	Degraded bool   `json:"degraded"`
	Cause    string `json:"cause,omitempty"`
}

// ListCharactersByCategory отдает каталог, сгруппированный по категориям владельца.
func (h *Handler) ListCharactersByCategory(ctx fiber.Ctx) error {
	listing := h.service.DisplayCharactersByCategory(middleware.RequestContext(ctx))
	return reply(ctx, fiber.StatusOK, groupingResponse{
		Grouping: listing.Grouping,
		Degraded: listing.Degraded,
		Cause:    causeOf(listing.Cause),
	})
}

// GetMemoSheet отдает видимые пункты заметок владельца с текстами для персонажа.
func (h *Handler) GetMemoSheet(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)

	sheet, err := h.service.MemoSheet(userCtx, ctx.Params("character_id"))
	if err != nil {
		handlerLog(userCtx, "GetMemoSheet").Error(userCtx, "failed to build memo sheet", zap.Error(err))
		return handleError(ctx, err)
	}
	return reply(ctx, fiber.StatusOK, sheet)
}

// ListCharacterContents отдает заметки владельца по персонажу в порядке ключа сортировки.
func (h *Handler) ListCharacterContents(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)

	contents, err := h.queries.ListMemoContentsByCharacter(userCtx, ctx.Params("character_id"))
	if err != nil {
		handlerLog(userCtx, "ListCharacterContents").Error(userCtx, "failed to list memo contents", zap.Error(err))
		return handleError(ctx, err)
	}
	return reply(ctx, fiber.StatusOK, contents)
}

// SaveMemo создает или изменяет заметку персонажа по пункту.
func (h *Handler) SaveMemo(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)

	var req SaveMemoRequest
	if err := bindBody(ctx, &req); err != nil {
		return badRequest(ctx, ErrMsgInvalidRequestBody)
	}

	content, err := h.service.SaveMemo(userCtx, ctx.Params("character_id"), ctx.Params("memo_item_id"), req.Content, req.Version)
	if err != nil {
		handlerLog(userCtx, "SaveMemo").Warn(userCtx, "failed to save memo", zap.Error(err))
		return handleError(ctx, err)
	}
	return reply(ctx, fiber.StatusOK, content)
}

// AssignCategory назначает персонажу категорию владельца.
func (h *Handler) AssignCategory(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)

	var req AssignCategoryRequest
	if err := bindBody(ctx, &req); err != nil {
		return badRequest(ctx, ErrMsgInvalidRequestBody)
	}

	setting, err := h.service.AssignCategory(userCtx, ctx.Params("character_id"), req.CategoryID, req.Version)
	if err != nil {
		handlerLog(userCtx, "AssignCategory").Warn(userCtx, "failed to assign category", zap.Error(err))
		return handleError(ctx, err)
	}
	return reply(ctx, fiber.StatusOK, setting)
}

// SetCustomOrder задает персонажу собственный порядок.
func (h *Handler) SetCustomOrder(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)

	var req CustomOrderRequest
	if err := bindBody(ctx, &req); err != nil {
		return badRequest(ctx, ErrMsgInvalidRequestBody)
	}

	setting, err := h.service.SetCustomOrder(userCtx, ctx.Params("character_id"), req.Order, req.Version)
	if err != nil {
		handlerLog(userCtx, "SetCustomOrder").Warn(userCtx, "failed to set custom order", zap.Error(err))
		return handleError(ctx, err)
	}
	return reply(ctx, fiber.StatusOK, setting)
}
