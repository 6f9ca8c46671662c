package query

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"charmemo/internal/memo/domain/entities"
)

// ListMemoItems returns the owner's memo items matching every filter, sorted
// by order, then id.
func (q *Queries) ListMemoItems(ctx context.Context, filters ...entities.MemoItemFilter) ([]entities.MemoItem, error) {
	const op = "query.ListMemoItems"
	log := methodLog(ctx, "ListMemoItems")

	owner, err := requireOwner(ctx, op)
	if err != nil {
		return nil, err
	}

	criteria, err := entities.CriteriaFrom(filters...)
	if err != nil {
		return nil, entities.NewError(entities.KindValidation, op, err)
	}

	items, err := q.memoItems.List(ctx, criteria)
	if err != nil {
		log.Error(ctx, "failed to list memo items", zap.Error(err))
		return nil, propagate(op, err)
	}

	for _, item := range items {
		if err := checkOwner(op, "memo item", item.ID, item.Owner, owner); err != nil {
			log.Error(ctx, "foreign memo item in owner listing", zap.String("id", item.ID))
			return nil, err
		}
	}

	if items == nil {
		items = []entities.MemoItem{}
	}
	entities.SortMemoItems(items)
	return items, nil
}

// GetMemoItem returns the owner's memo item, or nil.
func (q *Queries) GetMemoItem(ctx context.Context, id string) (*entities.MemoItem, error) {
	const op = "query.GetMemoItem"
	log := methodLog(ctx, "GetMemoItem")

	if _, err := requireOwner(ctx, op); err != nil {
		return nil, err
	}
	if err := requireID(op, "memo item id", id); err != nil {
		return nil, err
	}

	item, err := q.memoItems.Get(ctx, id)
	if err != nil {
		log.Error(ctx, "failed to get memo item", zap.Error(err))
		return nil, propagate(op, err)
	}
	return item, nil
}

// CreateMemoItem stores a new memo item for the owner.
func (q *Queries) CreateMemoItem(ctx context.Context, name string, order int, visible bool) (*entities.MemoItem, error) {
	const op = "query.CreateMemoItem"
	log := methodLog(ctx, "CreateMemoItem")

	if _, err := requireOwner(ctx, op); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, entities.Validationf(op, "memo item name is required")
	}

	item := entities.NewMemoItem(name, order)
	item.Visible = visible

	created, err := q.memoItems.Create(ctx, item)
	if err != nil {
		log.Error(ctx, "failed to create memo item", zap.Error(err))
		return nil, propagate(op, err)
	}

	log.Debug(ctx, "memo item created", zap.String("id", created.ID))
	return created, nil
}

// UpdateMemoItem writes name, order and visibility of item if its stored
// version equals expectedVersion.
func (q *Queries) UpdateMemoItem(ctx context.Context, item *entities.MemoItem, expectedVersion int) (*entities.MemoItem, error) {
	const op = "query.UpdateMemoItem"

	if _, err := requireOwner(ctx, op); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, entities.Validationf(op, "memo item is required")
	}
	if err := requireID(op, "memo item id", item.ID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(item.Name) == "" {
		return nil, entities.Validationf(op, "memo item name is required")
	}
	if err := requireVersion(op, expectedVersion); err != nil {
		return nil, err
	}

	updated, err := q.memoItems.Update(ctx, item, expectedVersion)
	if err != nil {
		methodLog(ctx, "UpdateMemoItem").Warn(ctx, "memo item update rejected", zap.String("id", item.ID), zap.Error(err))
		return nil, propagate(op, err)
	}
	return updated, nil
}

// DeleteMemoItem removes one memo item if its stored version equals expectedVersion.
// Its contents are not touched; see the service layer for the cascade.
func (q *Queries) DeleteMemoItem(ctx context.Context, id string, expectedVersion int) error {
	const op = "query.DeleteMemoItem"

	if _, err := requireOwner(ctx, op); err != nil {
		return err
	}
	if err := requireID(op, "memo item id", id); err != nil {
		return err
	}
	if err := requireVersion(op, expectedVersion); err != nil {
		return err
	}

	if err := q.memoItems.Delete(ctx, id, expectedVersion); err != nil {
		return propagate(op, err)
	}
	return nil
}
