package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"charmemo/internal/memo/domain/entities"
	"charmemo/internal/memo/ports/repositories"
	"charmemo/pkg/logger"
)

const settingColumns = `id, owner, character_id, category_id, custom_order, version, created_at, updated_at`

const probeSetting = `SELECT version FROM user_character_settings WHERE id = $1 AND owner = $2`

// SettingRepository implements repositories.SettingRepository.
type SettingRepository struct {
	db DBTX
}

// NewSettingRepository creates the user character setting repository.
func NewSettingRepository(db DBTX) repositories.SettingRepository {
	return &SettingRepository{db: db}
}

func scanSetting(row pgx.Row) (entities.UserCharacterSetting, error) {
	var s entities.UserCharacterSetting
	err := row.Scan(&s.ID, &s.Owner, &s.CharacterID, &s.CategoryID, &s.CustomOrder, &s.Version, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *SettingRepository) getOne(ctx context.Context, op, where string, arg string) (*entities.UserCharacterSetting, error) {
	owner, err := ownerFrom(ctx, op)
	if err != nil {
		return nil, err
	}

	s, err := scanSetting(r.db.QueryRow(ctx,
		`SELECT `+settingColumns+` FROM user_character_settings WHERE `+where+` = $1 AND owner = $2`, arg, owner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		logger.Log(ctx).Error(ctx, "failed to get character setting", zap.String("method", op), zap.Error(err))
		return nil, classify(op, err)
	}
	return &s, nil
}

// Get returns the owner's setting with id, or nil.
func (r *SettingRepository) Get(ctx context.Context, id string) (*entities.UserCharacterSetting, error) {
	return r.getOne(ctx, "SettingRepository.Get", "id", id)
}

// GetByCharacter returns the owner's setting for characterID, or nil.
func (r *SettingRepository) GetByCharacter(ctx context.Context, characterID string) (*entities.UserCharacterSetting, error) {
	return r.getOne(ctx, "SettingRepository.GetByCharacter", "character_id", characterID)
}

// List returns every setting of the owner.
func (r *SettingRepository) List(ctx context.Context) ([]entities.UserCharacterSetting, error) {
	const op = "SettingRepository.List"

	owner, err := ownerFrom(ctx, op)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+settingColumns+` FROM user_character_settings WHERE owner = $1 ORDER BY character_id`, owner)
	if err != nil {
		logger.Log(ctx).Error(ctx, "failed to list character settings", zap.String("method", op), zap.Error(err))
		return nil, classify(op, err)
	}

	settings, err := collect(rows, scanSetting)
	if err != nil {
		return nil, classify(op, err)
	}
	return settings, nil
}

// Create inserts setting for the authenticated owner. A second setting for the
// same character is a version conflict.
func (r *SettingRepository) Create(ctx context.Context, setting *entities.UserCharacterSetting) (*entities.UserCharacterSetting, error) {
	const op = "SettingRepository.Create"

	owner, err := ownerFrom(ctx, op)
	if err != nil {
		return nil, err
	}

	created, err := scanSetting(r.db.QueryRow(ctx,
		`INSERT INTO user_character_settings (id, owner, character_id, category_id, custom_order, version, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING `+settingColumns,
		setting.ID, owner, setting.CharacterID, setting.CategoryID, setting.CustomOrder,
		entities.InitialVersion, setting.CreatedAt, setting.UpdatedAt,
	))
	if err != nil {
		logger.Log(ctx).Error(ctx, "failed to create character setting", zap.String("method", op), zap.Error(err))
		return nil, classify(op, err)
	}
	return &created, nil
}

// Update writes category and custom order if the version still matches.
func (r *SettingRepository) Update(ctx context.Context, setting *entities.UserCharacterSetting, expectedVersion int) (*entities.UserCharacterSetting, error) {
	const op = "SettingRepository.Update"

	owner, err := ownerFrom(ctx, op)
	if err != nil {
		return nil, err
	}

	updated, err := scanSetting(r.db.QueryRow(ctx,
		`UPDATE user_character_settings
         SET category_id = $1, custom_order = $2, version = version + 1, updated_at = now()
         WHERE id = $3 AND owner = $4 AND version = $5
         RETURNING `+settingColumns,
		setting.CategoryID, setting.CustomOrder, setting.ID, owner, expectedVersion,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, missOrConflict(ctx, r.db, op, probeSetting, setting.ID, owner)
		}
		logger.Log(ctx).Error(ctx, "failed to update character setting", zap.String("method", op), zap.Error(err))
		return nil, classify(op, err)
	}
	return &updated, nil
}

// Delete removes the setting if the version still matches.
func (r *SettingRepository) Delete(ctx context.Context, id string, expectedVersion int) error {
	const op = "SettingRepository.Delete"

	owner, err := ownerFrom(ctx, op)
	if err != nil {
		return err
	}

	result, err := r.db.Exec(ctx,
		`DELETE FROM user_character_settings WHERE id = $1 AND owner = $2 AND version = $3`,
		id, owner, expectedVersion)
	if err != nil {
		logger.Log(ctx).Error(ctx, "failed to delete character setting", zap.String("method", op), zap.Error(err))
		return classify(op, err)
	}
	if result.RowsAffected() == 0 {
		return missOrConflict(ctx, r.db, op, probeSetting, id, owner)
	}
	return nil
}
