package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"charmemo/internal/memo/domain/entities"
)

// upsertSetting creates the owner's setting for characterID or applies
// change to the existing one. expectedVersion follows SaveMemo.
func (s *MemoService) upsertSetting(
	ctx context.Context,
	op, characterID string,
	expectedVersion int,
	change func(*entities.UserCharacterSetting),
) (*entities.UserCharacterSetting, error) {
	if expectedVersion < 0 {
		return nil, entities.Validationf(op, "expected version must not be negative")
	}

	character, err := s.q.GetCharacter(ctx, characterID)
	if err != nil {
		return nil, err
	}
	if character == nil {
		return nil, entities.Validationf(op, "unknown character %s", characterID)
	}

	existing, err := s.q.GetSettingByCharacter(ctx, characterID)
	if err != nil {
		return nil, err
	}

	switch {
	case existing == nil && expectedVersion == 0:
		draft := entities.UserCharacterSetting{CharacterID: characterID}
		change(&draft)
		return s.q.CreateSetting(ctx, characterID, draft.CategoryID, draft.CustomOrder)

	case existing == nil:
		return nil, entities.NewError(entities.KindNotFound, op, fmt.Errorf("setting for character %s", characterID))

	case expectedVersion == 0:
		return nil, entities.NewError(entities.KindVersionConflict, op,
			fmt.Errorf("setting for character %s already exists at version %d", characterID, existing.Version))

	default:
		change(existing)
		return s.q.UpdateSetting(ctx, existing, expectedVersion)
	}
}

// AssignCategory puts a character into one of the owner's categories, or
// back into uncategorized when categoryID is nil.
func (s *MemoService) AssignCategory(ctx context.Context, characterID string, categoryID *string, expectedVersion int) (*entities.UserCharacterSetting, error) {
	const op = "app.AssignCategory"

	if categoryID != nil {
		category, err := s.q.GetCategory(ctx, *categoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, entities.Validationf(op, "unknown category %s", *categoryID)
		}
	}

	setting, err := s.upsertSetting(ctx, op, characterID, expectedVersion, func(st *entities.UserCharacterSetting) {
		st.CategoryID = categoryID
	})
	if err != nil {
		return nil, err
	}

	methodLog(ctx, "AssignCategory").Info(ctx, "category assigned", zap.String("characterID", characterID))
	return setting, nil
}

// SetCustomOrder overrides the display order of a character for the owner.
// A nil order restores the catalog order.
func (s *MemoService) SetCustomOrder(ctx context.Context, characterID string, order *int, expectedVersion int) (*entities.UserCharacterSetting, error) {
	return s.upsertSetting(ctx, "app.SetCustomOrder", characterID, expectedVersion, func(st *entities.UserCharacterSetting) {
		st.CustomOrder = order
	})
}
