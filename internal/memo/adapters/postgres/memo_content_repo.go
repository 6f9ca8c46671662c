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

const memoContentColumns = `id, owner, character_id, memo_item_id, content, version, created_at, updated_at`

const probeMemoContent = `SELECT version FROM memo_contents WHERE id = $1 AND owner = $2`

// MemoContentRepository implements repositories.MemoContentRepository.
type MemoContentRepository struct {
	db DBTX
}

// NewMemoContentRepository creates the memo content repository.
func NewMemoContentRepository(db DBTX) repositories.MemoContentRepository {
	return &MemoContentRepository{db: db}
}

func scanMemoContent(row pgx.Row) (entities.MemoContent, error) {
	var m entities.MemoContent
	err := row.Scan(&m.ID, &m.Owner, &m.CharacterID, &m.MemoItemID, &m.Content, &m.Version, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (r *MemoContentRepository) log(ctx context.Context, method string) *logger.Logger {
	return logger.Log(ctx).With(zap.String("repository", "memo_content"), zap.String("method", method))
}

// Get returns the owner's memo content with id, or nil.
func (r *MemoContentRepository) Get(ctx context.Context, id string) (*entities.MemoContent, error) {
	const op = "MemoContentRepository.Get"
	log := r.log(ctx, "Get")

	owner, err := ownerFrom(ctx, op)
	if err != nil {
		return nil, err
	}

	m, err := scanMemoContent(r.db.QueryRow(ctx,
		`SELECT `+memoContentColumns+` FROM memo_contents WHERE id = $1 AND owner = $2`, id, owner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "memo content not found", zap.String("id", id))
			return nil, nil
		}
		log.Error(ctx, "failed to get memo content", zap.Error(err))
		return nil, classify(op, err)
	}
	return &m, nil
}

// ListByCharacter runs one range scan over the (owner, sort_key) index.
func (r *MemoContentRepository) ListByCharacter(ctx context.Context, characterID string) ([]entities.MemoContent, error) {
	const op = "MemoContentRepository.ListByCharacter"
	log := r.log(ctx, "ListByCharacter")

	owner, err := ownerFrom(ctx, op)
	if err != nil {
		return nil, err
	}

	from, to := entities.CharacterKeyRange(characterID)
	rows, err := r.db.Query(ctx,
		`SELECT `+memoContentColumns+` FROM memo_contents
         WHERE owner = $1 AND sort_key >= $2 AND sort_key < $3
         ORDER BY sort_key, id`,
		owner, from, to)
	if err != nil {
		log.Error(ctx, "failed to list memo contents", zap.Error(err))
		return nil, classify(op, err)
	}

	contents, err := collect(rows, scanMemoContent)
	if err != nil {
		log.Error(ctx, "failed to read memo contents", zap.Error(err))
		return nil, classify(op, err)
	}

	log.Debug(ctx, "memo contents listed", zap.String("characterID", characterID), zap.Int("count", len(contents)))
	return contents, nil
}

// ListByMemoItem returns the owner's contents for one memo item across characters.
func (r *MemoContentRepository) ListByMemoItem(ctx context.Context, memoItemID string) ([]entities.MemoContent, error) {
	const op = "MemoContentRepository.ListByMemoItem"
	log := r.log(ctx, "ListByMemoItem")

	owner, err := ownerFrom(ctx, op)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+memoContentColumns+` FROM memo_contents
         WHERE owner = $1 AND memo_item_id = $2
         ORDER BY character_id, id`,
		owner, memoItemID)
	if err != nil {
		log.Error(ctx, "failed to list memo contents by item", zap.Error(err))
		return nil, classify(op, err)
	}

	contents, err := collect(rows, scanMemoContent)
	if err != nil {
		log.Error(ctx, "failed to read memo contents", zap.Error(err))
		return nil, classify(op, err)
	}
	return contents, nil
}

// Create inserts content for the authenticated owner.
func (r *MemoContentRepository) Create(ctx context.Context, content *entities.MemoContent) (*entities.MemoContent, error) {
	const op = "MemoContentRepository.Create"
	log := r.log(ctx, "Create")

	owner, err := ownerFrom(ctx, op)
	if err != nil {
		return nil, err
	}

	created, err := scanMemoContent(r.db.QueryRow(ctx,
		`INSERT INTO memo_contents (id, owner, character_id, memo_item_id, content, version, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING `+memoContentColumns,
		content.ID, owner, content.CharacterID, content.MemoItemID, content.Content,
		entities.InitialVersion, content.CreatedAt, content.UpdatedAt,
	))
	if err != nil {
		log.Error(ctx, "failed to create memo content", zap.Error(err))
		return nil, classify(op, err)
	}

	log.Debug(ctx, "memo content created", zap.String("id", created.ID))
	return &created, nil
}

// Update writes content.Content if the stored version equals expectedVersion.
func (r *MemoContentRepository) Update(ctx context.Context, content *entities.MemoContent, expectedVersion int) (*entities.MemoContent, error) {
	const op = "MemoContentRepository.Update"
	log := r.log(ctx, "Update")

	owner, err := ownerFrom(ctx, op)
	if err != nil {
		return nil, err
	}

	updated, err := scanMemoContent(r.db.QueryRow(ctx,
		`UPDATE memo_contents
         SET content = $1, version = version + 1, updated_at = now()
         WHERE id = $2 AND owner = $3 AND version = $4
         RETURNING `+memoContentColumns,
		content.Content, content.ID, owner, expectedVersion,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "memo content update matched no row", zap.String("id", content.ID))
			return nil, missOrConflict(ctx, r.db, op, probeMemoContent, content.ID, owner)
		}
		log.Error(ctx, "failed to update memo content", zap.Error(err))
		return nil, classify(op, err)
	}
	return &updated, nil
}

// Delete removes the record if the stored version equals expectedVersion.
func (r *MemoContentRepository) Delete(ctx context.Context, id string, expectedVersion int) error {
	const op = "MemoContentRepository.Delete"
	log := r.log(ctx, "Delete")

	owner, err := ownerFrom(ctx, op)
	if err != nil {
		return err
	}

	result, err := r.db.Exec(ctx,
		`DELETE FROM memo_contents WHERE id = $1 AND owner = $2 AND version = $3`,
		id, owner, expectedVersion)
	if err != nil {
		log.Error(ctx, "failed to delete memo content", zap.Error(err))
		return classify(op, err)
	}
	if result.RowsAffected() == 0 {
		log.Debug(ctx, "memo content delete matched no row", zap.String("id", id))
		return missOrConflict(ctx, r.db, op, probeMemoContent, id, owner)
	}
	return nil
}
