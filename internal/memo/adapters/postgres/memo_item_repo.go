package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"charmemo/internal/memo/domain/entities"
	"charmemo/internal/memo/ports/repositories"
	"charmemo/pkg/logger"
)

const memoItemColumns = `id, owner, name, sort_order, visible, version, created_at, updated_at`

const probeMemoItem = `SELECT version FROM memo_items WHERE id = $1 AND owner = $2`

// MemoItemRepository implements repositories.MemoItemRepository.
type MemoItemRepository struct {
	db DBTX
}

// NewMemoItemRepository creates the memo item repository.
func NewMemoItemRepository(db DBTX) repositories.MemoItemRepository {
	return &MemoItemRepository{db: db}
}

func scanMemoItem(row pgx.Row) (entities.MemoItem, error) {
	var m entities.MemoItem
	err := row.Scan(&m.ID, &m.Owner, &m.Name, &m.Order, &m.Visible, &m.Version, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (r *MemoItemRepository) log(ctx context.Context, method string) *logger.Logger {
	return logger.Log(ctx).With(zap.String("repository", "memo_item"), zap.String("method", method))
}

// Get returns the owner's memo item with id, or nil.
func (r *MemoItemRepository) Get(ctx context.Context, id string) (*entities.MemoItem, error) {
	const op = "MemoItemRepository.Get"
	log := r.log(ctx, "Get")

	owner, err := ownerFrom(ctx, op)
	if err != nil {
		return nil, err
	}

	item, err := scanMemoItem(r.db.QueryRow(ctx,
		`SELECT `+memoItemColumns+` FROM memo_items WHERE id = $1 AND owner = $2`, id, owner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "memo item not found", zap.String("id", id))
			return nil, nil
		}
		log.Error(ctx, "failed to get memo item", zap.Error(err))
		return nil, classify(op, err)
	}
	return &item, nil
}

// buildMemoItemQuery translates criteria into SQL over the (owner, sort_order) index.
func buildMemoItemQuery(owner string, criteria entities.MemoItemCriteria) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + memoItemColumns + ` FROM memo_items WHERE owner = $1`)
	args := []interface{}{owner}

	if criteria.VisibleOnly {
		sb.WriteString(` AND visible = TRUE`)
	}
	if criteria.MinOrder != nil {
		args = append(args, *criteria.MinOrder)
		fmt.Fprintf(&sb, ` AND sort_order >= $%d`, len(args))
	}
	if criteria.MaxOrder != nil {
		args = append(args, *criteria.MaxOrder)
		fmt.Fprintf(&sb, ` AND sort_order <= $%d`, len(args))
	}
	for _, substr := range criteria.NameContains {
		args = append(args, substr)
		fmt.Fprintf(&sb, ` AND strpos(lower(name), lower($%d)) > 0`, len(args))
	}
	sb.WriteString(` ORDER BY sort_order, id`)

	return sb.String(), args
}

// List returns the owner's memo items matching criteria, ordered by sort_order, id.
func (r *MemoItemRepository) List(ctx context.Context, criteria entities.MemoItemCriteria) ([]entities.MemoItem, error) {
	const op = "MemoItemRepository.List"
	log := r.log(ctx, "List")

	owner, err := ownerFrom(ctx, op)
	if err != nil {
		return nil, err
	}

	query, args := buildMemoItemQuery(owner, criteria)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		log.Error(ctx, "failed to list memo items", zap.Error(err))
		return nil, classify(op, err)
	}

	items, err := collect(rows, scanMemoItem)
	if err != nil {
		log.Error(ctx, "failed to read memo items", zap.Error(err))
		return nil, classify(op, err)
	}
	return items, nil
}

// Create inserts item for the authenticated owner.
func (r *MemoItemRepository) Create(ctx context.Context, item *entities.MemoItem) (*entities.MemoItem, error) {
	const op = "MemoItemRepository.Create"
	log := r.log(ctx, "Create")

	owner, err := ownerFrom(ctx, op)
	if err != nil {
		return nil, err
	}

	created, err := scanMemoItem(r.db.QueryRow(ctx,
		`INSERT INTO memo_items (id, owner, name, sort_order, visible, version, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING `+memoItemColumns,
		item.ID, owner, item.Name, item.Order, item.Visible, entities.InitialVersion, item.CreatedAt, item.UpdatedAt,
	))
	if err != nil {
		log.Error(ctx, "failed to create memo item", zap.Error(err))
		return nil, classify(op, err)
	}
	return &created, nil
}

// Update writes name, order and visibility if the version still matches.
func (r *MemoItemRepository) Update(ctx context.Context, item *entities.MemoItem, expectedVersion int) (*entities.MemoItem, error) {
	const op = "MemoItemRepository.Update"
	log := r.log(ctx, "Update")

	owner, err := ownerFrom(ctx, op)
	if err != nil {
		return nil, err
	}

	updated, err := scanMemoItem(r.db.QueryRow(ctx,
		`UPDATE memo_items
         SET name = $1, sort_order = $2, visible = $3, version = version + 1, updated_at = now()
         WHERE id = $4 AND owner = $5 AND version = $6
         RETURNING `+memoItemColumns,
		item.Name, item.Order, item.Visible, item.ID, owner, expectedVersion,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, missOrConflict(ctx, r.db, op, probeMemoItem, item.ID, owner)
		}
		log.Error(ctx, "failed to update memo item", zap.Error(err))
		return nil, classify(op, err)
	}
	return &updated, nil
}

// Delete removes the item if the version still matches. Contents are left to the caller.
func (r *MemoItemRepository) Delete(ctx context.Context, id string, expectedVersion int) error {
	const op = "MemoItemRepository.Delete"
	log := r.log(ctx, "Delete")

	owner, err := ownerFrom(ctx, op)
	if err != nil {
		return err
	}

	result, err := r.db.Exec(ctx,
		`DELETE FROM memo_items WHERE id = $1 AND owner = $2 AND version = $3`,
		id, owner, expectedVersion)
	if err != nil {
		log.Error(ctx, "failed to delete memo item", zap.Error(err))
		return classify(op, err)
	}
	if result.RowsAffected() == 0 {
		return missOrConflict(ctx, r.db, op, probeMemoItem, id, owner)
	}
	return nil
}
