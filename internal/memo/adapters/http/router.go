// Package http содержит компоненты для HTTP сервера.
package http

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"charmemo/internal/memo/adapters/http/memo"
	"charmemo/internal/memo/adapters/http/middleware"
	"charmemo/internal/memo/ports/services"
)

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, handler *memo.Handler, tokens services.TokenService, requestTimeout time.Duration) {
	owned := middleware.RequireOwner

	// Middleware для всех запросов.
	app.Use(middleware.NewContextMiddleware(requestTimeout))
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())

	app.Get("/healthz", func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	// API версии 1. Токен проверяется, если передан.
	apiV1 := app.Group("/api/v1")
	apiV1.Use(middleware.NewAuthMiddleware(tokens))

	// Каталог персонажей (публичный) и представления владельца.
	characters := apiV1.Group("/characters")
	characters.Get("/", handler.ListCharacters)
	characters.Get("/grouped", owned(handler.ListCharactersByCategory))
	characters.Get("/:character_id", handler.GetCharacter)
	characters.Get("/:character_id/memo", owned(handler.GetMemoSheet))
	characters.Put("/:character_id/memo/:memo_item_id", owned(handler.SaveMemo))
	characters.Get("/:character_id/contents", owned(handler.ListCharacterContents))
	characters.Put("/:character_id/category", owned(handler.AssignCategory))
	characters.Put("/:character_id/order", owned(handler.SetCustomOrder))

	// Пункты заметок.
	memoItems := apiV1.Group("/memo-items")
	memoItems.Get("/", owned(handler.ListMemoItems))
	memoItems.Post("/", owned(handler.CreateMemoItem))
	memoItems.Get("/display", owned(handler.DisplayMemoItems))
	memoItems.Get("/:memo_item_id", owned(handler.GetMemoItem))
	memoItems.Put("/:memo_item_id", owned(handler.UpdateMemoItem))
	memoItems.Delete("/:memo_item_id", owned(handler.DeleteMemoItem))
	memoItems.Get("/:memo_item_id/contents", owned(handler.ListMemoItemContents))

	// Заметки.
	memoContents := apiV1.Group("/memo-contents")
	memoContents.Post("/", owned(handler.CreateMemoContent))
	memoContents.Get("/:memo_content_id", owned(handler.GetMemoContent))
	memoContents.Put("/:memo_content_id", owned(handler.UpdateMemoContent))
	memoContents.Delete("/:memo_content_id", owned(handler.DeleteMemoContent))

	// Категории.
	categories := apiV1.Group("/categories")
	categories.Get("/", owned(handler.ListCategories))
	categories.Post("/", owned(handler.CreateCategory))
	categories.Get("/:category_id", owned(handler.GetCategory))
	categories.Put("/:category_id", owned(handler.UpdateCategory))
	categories.Delete("/:category_id", owned(handler.DeleteCategory))

	// Настройки персонажей.
	settings := apiV1.Group("/settings")
	settings.Get("/", owned(handler.ListSettings))
	settings.Get("/:character_id", owned(handler.GetSetting))
	settings.Delete("/:setting_id", owned(handler.DeleteSetting))

	// Обработчик для несуществующих маршрутов.
	app.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Route not found",
		})
	})
}
