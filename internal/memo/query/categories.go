package query

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"charmemo/internal/memo/domain/entities"
)

// ListCategories returns the owner's categories sorted by order, then id.
func (q *Queries) ListCategories(ctx context.Context) ([]entities.Category, error) {
	const op = "query.ListCategories"
	log := methodLog(ctx, "ListCategories")

	owner, err := requireOwner(ctx, op)
	if err != nil {
		return nil, err
	}

	categories, err := q.categories.List(ctx)
	if err != nil {
		log.Error(ctx, "failed to list categories", zap.Error(err))
		return nil, propagate(op, err)
	}
	for _, c := range categories {
		if err := checkOwner(op, "category", c.ID, c.Owner, owner); err != nil {
			log.Error(ctx, "foreign category in owner listing", zap.String("id", c.ID))
			return nil, err
		}
	}

	if categories == nil {
		categories = []entities.Category{}
	}
	entities.SortCategories(categories)
	return categories, nil
}

// GetCategory returns the owner's category, or nil.
func (q *Queries) GetCategory(ctx context.Context, id string) (*entities.Category, error) {
	const op = "query.GetCategory"
	log := methodLog(ctx, "GetCategory")

	if _, err := requireOwner(ctx, op); err != nil {
		return nil, err
	}
	if err := requireID(op, "category id", id); err != nil {
		return nil, err
	}

	c, err := q.categories.Get(ctx, id)
	if err != nil {
		log.Error(ctx, "failed to get category", zap.Error(err))
		return nil, propagate(op, err)
	}
	return c, nil
}

// CreateCategory stores a new category for the owner.
func (q *Queries) CreateCategory(ctx context.Context, name, color string, order int) (*entities.Category, error) {
	const op = "query.CreateCategory"
	log := methodLog(ctx, "CreateCategory")

	if _, err := requireOwner(ctx, op); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, entities.Validationf(op, "category name is required")
	}

	created, err := q.categories.Create(ctx, entities.NewCategory(name, color, order))
	if err != nil {
		log.Error(ctx, "failed to create category", zap.Error(err))
		return nil, propagate(op, err)
	}
	return created, nil
}

// UpdateCategory writes name, color and order if the stored version equals expectedVersion.
func (q *Queries) UpdateCategory(ctx context.Context, category *entities.Category, expectedVersion int) (*entities.Category, error) {
	const op = "query.UpdateCategory"
	log := methodLog(ctx, "UpdateCategory")

	if _, err := requireOwner(ctx, op); err != nil {
		return nil, err
	}
	if category == nil {
		return nil, entities.Validationf(op, "category is required")
	}
	if err := requireID(op, "category id", category.ID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(category.Name) == "" {
		return nil, entities.Validationf(op, "category name is required")
	}
	if err := requireVersion(op, expectedVersion); err != nil {
		return nil, err
	}

	updated, err := q.categories.Update(ctx, category, expectedVersion)
	if err != nil {
		log.Error(ctx, "failed to update category", zap.Error(err))
		return nil, propagate(op, err)
	}
	return updated, nil
}

// DeleteCategory removes a category. Characters assigned to it become uncategorized.
func (q *Queries) DeleteCategory(ctx context.Context, id string, expectedVersion int) error {
	const op = "query.DeleteCategory"
	log := methodLog(ctx, "DeleteCategory")

	if _, err := requireOwner(ctx, op); err != nil {
		return err
	}
	if err := requireID(op, "category id", id); err != nil {
		return err
	}
	if err := requireVersion(op, expectedVersion); err != nil {
		return err
	}

	if err := q.categories.Delete(ctx, id, expectedVersion); err != nil {
		log.Error(ctx, "failed to delete category", zap.Error(err))
		return propagate(op, err)
	}
	return nil
}
