// Package app implements the aggregation layer of the memo service: it joins
// query results into the views the client displays and decides, per call,
// whether a failure degrades the view or propagates.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"charmemo/internal/memo/domain/entities"
	"charmemo/internal/memo/i18n"
	"charmemo/internal/memo/query"
	"charmemo/pkg/identity"
	"charmemo/pkg/logger"
)

// Queries is the part of the query layer the service depends on.
type Queries interface {
	ListCharacters(ctx context.Context) ([]entities.Character, error)
	GetCharacter(ctx context.Context, id string) (*entities.Character, error)

	ListCategories(ctx context.Context) ([]entities.Category, error)
	GetCategory(ctx context.Context, id string) (*entities.Category, error)

	ListSettings(ctx context.Context) ([]entities.UserCharacterSetting, error)
	GetSettingByCharacter(ctx context.Context, characterID string) (*entities.UserCharacterSetting, error)
	CreateSetting(ctx context.Context, characterID string, categoryID *string, customOrder *int) (*entities.UserCharacterSetting, error)
	UpdateSetting(ctx context.Context, setting *entities.UserCharacterSetting, expectedVersion int) (*entities.UserCharacterSetting, error)

	ListMemoItems(ctx context.Context, filters ...entities.MemoItemFilter) ([]entities.MemoItem, error)
	GetMemoItem(ctx context.Context, id string) (*entities.MemoItem, error)
	DeleteMemoItem(ctx context.Context, id string, expectedVersion int) error

	ListMemoContentsByCharacter(ctx context.Context, characterID string) ([]entities.MemoContent, error)
	ListMemoContentsByMemoItem(ctx context.Context, memoItemID string) ([]entities.MemoContent, error)
	CreateMemoContent(ctx context.Context, in query.MemoContentInput) (*entities.MemoContent, error)
	UpdateMemoContent(ctx context.Context, id string, content *string, expectedVersion int) (*entities.MemoContent, error)
	DeleteMemoContent(ctx context.Context, id string, expectedVersion int) error
}

var _ Queries = (*query.Queries)(nil)

// MemoService holds the business logic behind the memo screens.
type MemoService struct {
	q Queries
}

// NewMemoService creates a MemoService over q.
func NewMemoService(q Queries) *MemoService {
	return &MemoService{q: q}
}

func methodLog(ctx context.Context, method string) *logger.Logger {
	return logger.Log(ctx).With(zap.String("layer", "service"), zap.String("method", method))
}

// ownerSettings returns the owner's settings, or none for anonymous callers.
func (s *MemoService) ownerSettings(ctx context.Context) ([]entities.UserCharacterSetting, error) {
	if !identity.IsAuthenticated(ctx) {
		return nil, nil
	}
	return s.q.ListSettings(ctx)
}

// SortedCharacters returns the catalog in the caller's effective order.
func (s *MemoService) SortedCharacters(ctx context.Context) ([]entities.Character, error) {
	chars, err := s.q.ListCharacters(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.ownerSettings(ctx)
	if err != nil {
		return nil, err
	}
	return SortedCharacters(chars, settings), nil
}

// CharactersByCategory groups the catalog by the owner's categories.
func (s *MemoService) CharactersByCategory(ctx context.Context) (*Grouping, error) {
	chars, err := s.q.ListCharacters(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.q.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.q.ListSettings(ctx)
	if err != nil {
		return nil, err
	}
	g := GroupByCategory(chars, categories, settings)
	return &g, nil
}

// CharactersByName returns the catalog with names resolved for tag, in the
// collation order of tag.
func (s *MemoService) CharactersByName(ctx context.Context, tag language.Tag) ([]entities.Character, error) {
	chars, err := s.q.ListCharacters(ctx)
	if err != nil {
		return nil, err
	}
	i18n.SortByName(chars, tag)
	return i18n.Localize(chars, tag), nil
}

// MemoSheetRow pairs one visible memo item with the character's content for it.
type MemoSheetRow struct {
	Item    entities.MemoItem     `json:"item"`
	Content *entities.MemoContent `json:"content"`
}

// MemoSheet is every visible memo item of the owner for one character.
type MemoSheet struct {
	Character entities.Character `json:"character"`
	Rows      []MemoSheetRow     `json:"rows"`
}

// MemoSheet joins the owner's visible memo items with the contents of one
// character. Contents are read with a single range lookup.
func (s *MemoService) MemoSheet(ctx context.Context, characterID string) (*MemoSheet, error) {
	const op = "app.MemoSheet"
	log := methodLog(ctx, "MemoSheet")

	character, err := s.q.GetCharacter(ctx, characterID)
	if err != nil {
		return nil, err
	}
	if character == nil {
		return nil, entities.NewError(entities.KindNotFound, op, fmt.Errorf("character %s", characterID))
	}

	items, err := s.q.ListMemoItems(ctx, entities.VisibleOnly())
	if err != nil {
		return nil, err
	}
	contents, err := s.q.ListMemoContentsByCharacter(ctx, characterID)
	if err != nil {
		return nil, err
	}

	byItem := make(map[string]*entities.MemoContent, len(contents))
	for i := range contents {
		byItem[contents[i].MemoItemID] = &contents[i]
	}

	sheet := &MemoSheet{Character: *character, Rows: make([]MemoSheetRow, 0, len(items))}
	for _, item := range items {
		sheet.Rows = append(sheet.Rows, MemoSheetRow{Item: item, Content: byItem[item.ID]})
	}

	log.Debug(ctx, "memo sheet built",
		zap.String("characterID", characterID),
		zap.Int("items", len(items)),
		zap.Int("contents", len(contents)))
	return sheet, nil
}

// ContentsByCharacter returns, for one memo item, the owner's content keyed by character id.
func (s *MemoService) ContentsByCharacter(ctx context.Context, memoItemID string) (map[string]entities.MemoContent, error) {
	contents, err := s.q.ListMemoContentsByMemoItem(ctx, memoItemID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]entities.MemoContent, len(contents))
	for _, c := range contents {
		out[c.CharacterID] = c
	}
	return out, nil
}

func (s *MemoService) findContent(ctx context.Context, characterID, memoItemID string) (*entities.MemoContent, error) {
	contents, err := s.q.ListMemoContentsByCharacter(ctx, characterID)
	if err != nil {
		return nil, err
	}
	for i := range contents {
		if contents[i].MemoItemID == memoItemID {
			return &contents[i], nil
		}
	}
	return nil, nil
}

// SaveMemo writes the owner's note for (characterID, memoItemID).
//
// expectedVersion 0 means the caller has seen no record: one is created, and
// if another writer got there first the call is a version conflict. A
// positive expectedVersion updates the existing record; if the record is
// gone the call is not found. An empty string is stored as is.
func (s *MemoService) SaveMemo(ctx context.Context, characterID, memoItemID string, content *string, expectedVersion int) (*entities.MemoContent, error) {
	const op = "app.SaveMemo"
	log := methodLog(ctx, "SaveMemo")

	if expectedVersion < 0 {
		return nil, entities.Validationf(op, "expected version must not be negative")
	}

	existing, err := s.findContent(ctx, characterID, memoItemID)
	if err != nil {
		return nil, err
	}

	switch {
	case existing == nil && expectedVersion == 0:
		created, err := s.q.CreateMemoContent(ctx, query.MemoContentInput{
			CharacterID: characterID,
			MemoItemID:  memoItemID,
			Content:     content,
		})
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "memo created", zap.String("id", created.ID))
		return created, nil

	case existing == nil:
		return nil, entities.NewError(entities.KindNotFound, op,
			fmt.Errorf("memo %s", entities.SortKey(characterID, memoItemID)))

	case expectedVersion == 0:
		return nil, entities.NewError(entities.KindVersionConflict, op,
			fmt.Errorf("memo %s already exists at version %d", existing.SortKey(), existing.Version))

	default:
		return s.q.UpdateMemoContent(ctx, existing.ID, content, expectedVersion)
	}
}

// DeleteMemoItem removes a memo item together with every content written for
// it. Contents are deleted first, each with its own version; the first
// failure stops the cascade and is returned.
func (s *MemoService) DeleteMemoItem(ctx context.Context, id string, expectedVersion int) error {
	const op = "app.DeleteMemoItem"
	log := methodLog(ctx, "DeleteMemoItem")

	if expectedVersion < entities.InitialVersion {
		return entities.Validationf(op, "expected version must be >= %d, got %d", entities.InitialVersion, expectedVersion)
	}

	item, err := s.q.GetMemoItem(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return entities.NewError(entities.KindNotFound, op, fmt.Errorf("memo item %s", id))
	}
	if item.Version != expectedVersion {
		return entities.NewError(entities.KindVersionConflict, op,
			fmt.Errorf("memo item %s is at version %d", id, item.Version))
	}

	contents, err := s.q.ListMemoContentsByMemoItem(ctx, id)
	if err != nil {
		return err
	}
	for _, c := range contents {
		if err := s.q.DeleteMemoContent(ctx, c.ID, c.Version); err != nil {
			log.Warn(ctx, "memo item cascade stopped", zap.String("contentID", c.ID), zap.Error(err))
			return err
		}
	}

	if err := s.q.DeleteMemoItem(ctx, id, expectedVersion); err != nil {
		return err
	}

	log.Info(ctx, "memo item deleted", zap.String("id", id), zap.Int("contents", len(contents)))
	return nil
}
