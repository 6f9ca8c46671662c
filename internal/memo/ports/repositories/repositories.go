// Package repositories defines the persistence access port of the memo service.
//
// Owner-scoped repositories take no owner argument: implementations apply the
// authenticated owner carried by the context (see pkg/identity) to every
// statement. Callers must never try to pass or fake an owner.
//
// Lookups of a single record return (nil, nil) when it does not exist.
// Failures are *entities.Error values of a closed set of kinds.
package repositories

import (
	"context"

	"charmemo/internal/memo/domain/entities"
)

// CharacterRepository reads the public character catalog. It requires no owner.
type CharacterRepository interface {
	Get(ctx context.Context, id string) (*entities.Character, error)
	List(ctx context.Context) ([]entities.Character, error)
}

// CategoryRepository stores the owner's categories.
type CategoryRepository interface {
	Get(ctx context.Context, id string) (*entities.Category, error)
	List(ctx context.Context) ([]entities.Category, error)
	Create(ctx context.Context, category *entities.Category) (*entities.Category, error)
	Update(ctx context.Context, category *entities.Category, expectedVersion int) (*entities.Category, error)
	Delete(ctx context.Context, id string, expectedVersion int) error
}

// SettingRepository stores per-owner character settings, at most one per character.
type SettingRepository interface {
	Get(ctx context.Context, id string) (*entities.UserCharacterSetting, error)
	GetByCharacter(ctx context.Context, characterID string) (*entities.UserCharacterSetting, error)
	List(ctx context.Context) ([]entities.UserCharacterSetting, error)
	Create(ctx context.Context, setting *entities.UserCharacterSetting) (*entities.UserCharacterSetting, error)
	Update(ctx context.Context, setting *entities.UserCharacterSetting, expectedVersion int) (*entities.UserCharacterSetting, error)
	Delete(ctx context.Context, id string, expectedVersion int) error
}

// MemoItemRepository stores the owner's memo items. List is served by the
// owner index; criteria are applied by the store.
type MemoItemRepository interface {
	Get(ctx context.Context, id string) (*entities.MemoItem, error)
	List(ctx context.Context, criteria entities.MemoItemCriteria) ([]entities.MemoItem, error)
	Create(ctx context.Context, item *entities.MemoItem) (*entities.MemoItem, error)
	Update(ctx context.Context, item *entities.MemoItem, expectedVersion int) (*entities.MemoItem, error)
	Delete(ctx context.Context, id string, expectedVersion int) error
}

// MemoContentRepository stores the owner's memo contents.
//
// ListByCharacter is a single range lookup on the (owner, sort key) index and
// returns rows ascending by sort key. Create rejects a second record for the
// same (characterId, memoItemId) with a version conflict.
type MemoContentRepository interface {
	Get(ctx context.Context, id string) (*entities.MemoContent, error)
	ListByCharacter(ctx context.Context, characterID string) ([]entities.MemoContent, error)
	ListByMemoItem(ctx context.Context, memoItemID string) ([]entities.MemoContent, error)
	Create(ctx context.Context, content *entities.MemoContent) (*entities.MemoContent, error)
	Update(ctx context.Context, content *entities.MemoContent, expectedVersion int) (*entities.MemoContent, error)
	Delete(ctx context.Context, id string, expectedVersion int) error
}
