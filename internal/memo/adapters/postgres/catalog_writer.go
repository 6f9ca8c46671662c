package postgres

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"charmemo/internal/memo/domain/entities"
	"charmemo/pkg/logger"
)

// Catalog administration error messages.
const (
	ErrBeginCatalogTx   = "failed to begin catalog transaction"
	ErrUpsertCharacter  = "failed to upsert character"
	ErrCommitCatalogTx  = "failed to commit catalog transaction"
	ErrInvalidCharacter = "invalid catalog character"
)

// CatalogWriter administers the character catalog out of band. It is used by
// the seeding tool only; end users never write characters.
type CatalogWriter struct {
	db  TxBeginner
	now func() time.Time
}

// NewCatalogWriter creates a catalog writer.
func NewCatalogWriter(db TxBeginner) *CatalogWriter {
	return &CatalogWriter{db: db, now: time.Now}
}

// Upsert inserts or replaces chars in a single transaction.
func (w *CatalogWriter) Upsert(ctx context.Context, chars []entities.Character) (err error) {
	log := logger.Log(ctx).With(zap.String("repository", "catalog"), zap.String("method", "Upsert"))

	for i := range chars {
		if verr := chars[i].Validate(); verr != nil {
			return fmt.Errorf("%s %d: %w", ErrInvalidCharacter, i, verr)
		}
	}

	tx, err := w.db.Begin(ctx)
	if err != nil {
		log.Error(ctx, ErrBeginCatalogTx, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrBeginCatalogTx, err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Warn(ctx, "catalog rollback failed", zap.Error(rbErr))
			}
		}
	}()

	now := w.now().UTC()
	for _, c := range chars {
		names := c.Names
		if names == nil {
			names = map[string]string{}
		}
		if _, err = tx.Exec(ctx,
			`INSERT INTO characters (id, name, icon, sort_order, localized_names, created_at, updated_at)
             VALUES ($1, $2, $3, $4, $5, $6, $6)
             ON CONFLICT (id) DO UPDATE
             SET name = EXCLUDED.name, icon = EXCLUDED.icon, sort_order = EXCLUDED.sort_order,
                 localized_names = EXCLUDED.localized_names, updated_at = EXCLUDED.updated_at`,
			c.ID, c.Name, c.Icon, c.Order, names, now,
		); err != nil {
			log.Error(ctx, ErrUpsertCharacter, zap.String("id", c.ID), zap.Error(err))
			return fmt.Errorf("%s %s: %w", ErrUpsertCharacter, c.ID, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		log.Error(ctx, ErrCommitCatalogTx, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrCommitCatalogTx, err)
	}

	log.Info(ctx, "catalog upserted", zap.Int("count", len(chars)))
	return nil
}
