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

const categoryColumns = `id, owner, name, color, sort_order, version, created_at, updated_at`

const probeCategory = `SELECT version FROM categories WHERE id = $1 AND owner = $2`

// CategoryRepository implements repositories.CategoryRepository.
type CategoryRepository struct {
	db DBTX
}

// NewCategoryRepository creates the category repository.
func NewCategoryRepository(db DBTX) repositories.CategoryRepository {
	return &CategoryRepository{db: db}
}

func scanCategory(row pgx.Row) (entities.Category, error) {
	var c entities.Category
	err := row.Scan(&c.ID, &c.Owner, &c.Name, &c.Color, &c.Order, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Get returns the owner's category with id, or nil.
func (r *CategoryRepository) Get(ctx context.Context, id string) (*entities.Category, error) {
	const op = "CategoryRepository.Get"

	owner, err := ownerFrom(ctx, op)
	if err != nil {
		return nil, err
	}

	c, err := scanCategory(r.db.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND owner = $2`, id, owner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		logger.Log(ctx).Error(ctx, "failed to get category", zap.String("method", op), zap.Error(err))
		return nil, classify(op, err)
	}
	return &c, nil
}

// List returns the owner's categories.
func (r *CategoryRepository) List(ctx context.Context) ([]entities.Category, error) {
	const op = "CategoryRepository.List"

	owner, err := ownerFrom(ctx, op)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE owner = $1 ORDER BY sort_order, id`, owner)
	if err != nil {
		logger.Log(ctx).Error(ctx, "failed to list categories", zap.String("method", op), zap.Error(err))
		return nil, classify(op, err)
	}

	categories, err := collect(rows, scanCategory)
	if err != nil {
		return nil, classify(op, err)
	}
	return categories, nil
}

// Create inserts category for the authenticated owner.
func (r *CategoryRepository) Create(ctx context.Context, category *entities.Category) (*entities.Category, error) {
	const op = "CategoryRepository.Create"

	owner, err := ownerFrom(ctx, op)
	if err != nil {
		return nil, err
	}

	created, err := scanCategory(r.db.QueryRow(ctx,
		`INSERT INTO categories (id, owner, name, color, sort_order, version, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING `+categoryColumns,
		category.ID, owner, category.Name, category.Color, category.Order,
		entities.InitialVersion, category.CreatedAt, category.UpdatedAt,
	))
	if err != nil {
		logger.Log(ctx).Error(ctx, "failed to create category", zap.String("method", op), zap.Error(err))
		return nil, classify(op, err)
	}
	return &created, nil
}

// Update writes name, color and order if the version still matches.
func (r *CategoryRepository) Update(ctx context.Context, category *entities.Category, expectedVersion int) (*entities.Category, error) {
	const op = "CategoryRepository.Update"

	owner, err := ownerFrom(ctx, op)
	if err != nil {
		return nil, err
	}

	updated, err := scanCategory(r.db.QueryRow(ctx,
		`UPDATE categories
         SET name = $1, color = $2, sort_order = $3, version = version + 1, updated_at = now()
         WHERE id = $4 AND owner = $5 AND version = $6
         RETURNING `+categoryColumns,
		category.Name, category.Color, category.Order, category.ID, owner, expectedVersion,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, missOrConflict(ctx, r.db, op, probeCategory, category.ID, owner)
		}
		logger.Log(ctx).Error(ctx, "failed to update category", zap.String("method", op), zap.Error(err))
		return nil, classify(op, err)
	}
	return &updated, nil
}

// Delete removes the category if the version still matches. Settings pointing
// at it fall back to uncategorized through ON DELETE SET NULL.
func (r *CategoryRepository) Delete(ctx context.Context, id string, expectedVersion int) error {
	const op = "CategoryRepository.Delete"

	owner, err := ownerFrom(ctx, op)
	if err != nil {
		return err
	}

	result, err := r.db.Exec(ctx,
		`DELETE FROM categories WHERE id = $1 AND owner = $2 AND version = $3`,
		id, owner, expectedVersion)
	if err != nil {
		logger.Log(ctx).Error(ctx, "failed to delete category", zap.String("method", op), zap.Error(err))
		return classify(op, err)
	}
	if result.RowsAffected() == 0 {
		return missOrConflict(ctx, r.db, op, probeCategory, id, owner)
	}
	return nil
}
