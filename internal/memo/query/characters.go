package query

import (
	"context"

	"go.uber.org/zap"

	"charmemo/internal/memo/domain/entities"
	"charmemo/pkg/identity"
)

// ListCharacters returns the whole catalog sorted by order, then id.
// It runs in catalog mode whatever identity ctx carries.
func (q *Queries) ListCharacters(ctx context.Context) ([]entities.Character, error) {
	const op = "query.ListCharacters"
	log := methodLog(ctx, "ListCharacters")

	chars, err := q.characters.List(identity.CatalogContext(ctx))
	if err != nil {
		log.Error(ctx, "failed to list characters", zap.Error(err))
		return nil, propagate(op, err)
	}

	for i := range chars {
		if verr := chars[i].Validate(); verr != nil {
			log.Error(ctx, "malformed catalog row", zap.Int("index", i), zap.Error(verr))
			return nil, malformed(op, "character at %d: %v", i, verr)
		}
	}

	if chars == nil {
		chars = []entities.Character{}
	}
	entities.SortCharacters(chars)
	return chars, nil
}

// GetCharacter returns the character with id, or nil when it does not exist.
func (q *Queries) GetCharacter(ctx context.Context, id string) (*entities.Character, error) {
	const op = "query.GetCharacter"

	if err := requireID(op, "character id", id); err != nil {
		return nil, err
	}

	c, err := q.characters.Get(identity.CatalogContext(ctx), id)
	if err != nil {
		methodLog(ctx, "GetCharacter").Error(ctx, "failed to get character", zap.String("id", id), zap.Error(err))
		return nil, propagate(op, err)
	}
	if c == nil {
		return nil, nil
	}
	if verr := c.Validate(); verr != nil {
		return nil, malformed(op, "character %s: %v", id, verr)
	}
	return c, nil
}
