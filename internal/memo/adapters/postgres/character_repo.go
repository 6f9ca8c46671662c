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

const characterColumns = `id, name, icon, sort_order, localized_names, created_at, updated_at`

// CharacterRepository reads the public catalog. It never looks at the owner identity.
type CharacterRepository struct {
	db DBTX
}

// NewCharacterRepository creates the character catalog repository.
func NewCharacterRepository(db DBTX) repositories.CharacterRepository {
	return &CharacterRepository{db: db}
}

func scanCharacter(row pgx.Row) (entities.Character, error) {
	var c entities.Character
	err := row.Scan(&c.ID, &c.Name, &c.Icon, &c.Order, &c.Names, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Get returns one character, or nil when the id is unknown.
func (r *CharacterRepository) Get(ctx context.Context, id string) (*entities.Character, error) {
	const op = "CharacterRepository.Get"
	log := logger.Log(ctx).With(zap.String("repository", "character"), zap.String("method", "Get"))

	c, err := scanCharacter(r.db.QueryRow(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "character not found", zap.String("id", id))
			return nil, nil
		}
		log.Error(ctx, "failed to get character", zap.Error(err))
		return nil, classify(op, err)
	}
	return &c, nil
}

// List returns the whole catalog ordered by sort_order, id.
func (r *CharacterRepository) List(ctx context.Context) ([]entities.Character, error) {
	const op = "CharacterRepository.List"
	log := logger.Log(ctx).With(zap.String("repository", "character"), zap.String("method", "List"))

	rows, err := r.db.Query(ctx,
		`SELECT `+characterColumns+` FROM characters ORDER BY sort_order, id`)
	if err != nil {
		log.Error(ctx, "failed to list characters", zap.Error(err))
		return nil, classify(op, err)
	}

	chars, err := collect(rows, scanCharacter)
	if err != nil {
		log.Error(ctx, "failed to read characters", zap.Error(err))
		return nil, classify(op, err)
	}

	log.Debug(ctx, "characters listed", zap.Int("count", len(chars)))
	return chars, nil
}
