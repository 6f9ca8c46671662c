package memo

// SaveMemoRequest записывает заметку персонажа по пункту. Version 0 создает запись.
type SaveMemoRequest struct {
	Content *string `json:"content"`
	Version int     `json:"version"`
}

// MemoItemRequest создает или изменяет пункт заметок.
type MemoItemRequest struct {
	Name    string `json:"name"`
	Order   int    `json:"order"`
	Visible *bool  `json:"visible"`
	Version int    `json:"version"`
}

// CreateMemoContentRequest создает заметку напрямую.
type CreateMemoContentRequest struct {
	CharacterID string  `json:"characterId"`
	MemoItemID  string  `json:"memoItemId"`
	Content     *string `json:"content"`
}

// UpdateMemoContentRequest изменяет текст заметки.
type UpdateMemoContentRequest struct {
	Content *string `json:"content"`
	Version int     `json:"version"`
}

// CategoryRequest создает или изменяет категорию.
type CategoryRequest struct {
	Name    string `json:"name"`
	Color   string `json:"color"`
	Order   int    `json:"order"`
	Version int    `json:"version"`
}

// AssignCategoryRequest назначает персонажу категорию. Null снимает назначение.
type AssignCategoryRequest struct {
	CategoryID *string `json:"categoryId"`
	Version    int     `json:"version"`
}

// CustomOrderRequest задает персонажу собственный порядок. Null возвращает порядок каталога.
type CustomOrderRequest struct {
	Order   *int `json:"order"`
	Version int  `json:"version"`
}
