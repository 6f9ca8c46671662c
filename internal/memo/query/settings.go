package query

import (
	"context"

	"go.uber.org/zap"

	"charmemo/internal/memo/domain/entities"
)

// ListSettings returns every character setting of the owner.
func (q *Queries) ListSettings(ctx context.Context) ([]entities.UserCharacterSetting, error) {
	const op = "query.ListSettings"
	log := methodLog(ctx, "ListSettings")

	owner, err := requireOwner(ctx, op)
	if err != nil {
		return nil, err
	}

	settings, err := q.settings.List(ctx)
	if err != nil {
		log.Error(ctx, "failed to list character settings", zap.Error(err))
		return nil, propagate(op, err)
	}
	for _, s := range settings {
		if err := checkOwner(op, "character setting", s.ID, s.Owner, owner); err != nil {
			log.Error(ctx, "foreign character setting in owner listing", zap.String("id", s.ID))
			return nil, err
		}
	}

	if settings == nil {
		settings = []entities.UserCharacterSetting{}
	}
	return settings, nil
}

// GetSettingByCharacter returns the owner's setting for characterID, or nil.
func (q *Queries) GetSettingByCharacter(ctx context.Context, characterID string) (*entities.UserCharacterSetting, error) {
	const op = "query.GetSettingByCharacter"
	log := methodLog(ctx, "GetSettingByCharacter")

	if _, err := requireOwner(ctx, op); err != nil {
		return nil, err
	}
	if err := requireID(op, "character id", characterID); err != nil {
		return nil, err
	}

	s, err := q.settings.GetByCharacter(ctx, characterID)
	if err != nil {
		log.Error(ctx, "failed to get character setting", zap.Error(err))
		return nil, propagate(op, err)
	}
	return s, nil
}

// CreateSetting stores the owner's setting for one character.
func (q *Queries) CreateSetting(ctx context.Context, characterID string, categoryID *string, customOrder *int) (*entities.UserCharacterSetting, error) {
	const op = "query.CreateSetting"
	log := methodLog(ctx, "CreateSetting")

	if _, err := requireOwner(ctx, op); err != nil {
		return nil, err
	}
	if err := requireID(op, "character id", characterID); err != nil {
		return nil, err
	}
	if categoryID != nil && *categoryID == "" {
		return nil, entities.Validationf(op, "category id must be omitted or non-empty")
	}

	created, err := q.settings.Create(ctx, entities.NewUserCharacterSetting(characterID, categoryID, customOrder))
	if err != nil {
		log.Error(ctx, "failed to create character setting", zap.Error(err))
		return nil, propagate(op, err)
	}
	return created, nil
}

// UpdateSetting writes category and custom order if the stored version equals expectedVersion.
func (q *Queries) UpdateSetting(ctx context.Context, setting *entities.UserCharacterSetting, expectedVersion int) (*entities.UserCharacterSetting, error) {
	const op = "query.UpdateSetting"
	log := methodLog(ctx, "UpdateSetting")

	if _, err := requireOwner(ctx, op); err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, entities.Validationf(op, "character setting is required")
	}
	if err := requireID(op, "character setting id", setting.ID); err != nil {
		return nil, err
	}
	if setting.CategoryID != nil && *setting.CategoryID == "" {
		return nil, entities.Validationf(op, "category id must be omitted or non-empty")
	}
	if err := requireVersion(op, expectedVersion); err != nil {
		return nil, err
	}

	updated, err := q.settings.Update(ctx, setting, expectedVersion)
	if err != nil {
		log.Error(ctx, "failed to update character setting", zap.Error(err))
		return nil, propagate(op, err)
	}
	return updated, nil
}

// DeleteSetting removes a character setting, restoring catalog defaults.
func (q *Queries) DeleteSetting(ctx context.Context, id string, expectedVersion int) error {
	const op = "query.DeleteSetting"
	log := methodLog(ctx, "DeleteSetting")

	if _, err := requireOwner(ctx, op); err != nil {
		return err
	}
	if err := requireID(op, "character setting id", id); err != nil {
		return err
	}
	if err := requireVersion(op, expectedVersion); err != nil {
		return err
	}

	if err := q.settings.Delete(ctx, id, expectedVersion); err != nil {
		log.Error(ctx, "failed to delete character setting", zap.Error(err))
		return propagate(op, err)
	}
	return nil
}
