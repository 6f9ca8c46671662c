package querytest

import (
	"context"
	"fmt"

	"charmemo/internal/memo/domain/entities"
)

type characterRepo struct{ s *Store }

func (r *characterRepo) Get(_ context.Context, id string) (*entities.Character, error) {
	const op = "CharacterRepository.Get"
	defer r.s.mu.Unlock()
	if err := r.s.enter(op); err != nil {
		return nil, err
	}
	c, ok := r.s.characters[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *characterRepo) List(_ context.Context) ([]entities.Character, error) {
	const op = "CharacterRepository.List"
	defer r.s.mu.Unlock()
	if err := r.s.enter(op); err != nil {
		return nil, err
	}
	return sortedValues(r.s.characters,
		func(entities.Character) bool { return true },
		func(a, b entities.Character) bool { return a.ID < b.ID }), nil
}

type categoryRepo struct{ s *Store }

func (r *categoryRepo) Get(ctx context.Context, id string) (*entities.Category, error) {
	const op = "CategoryRepository.Get"
	defer r.s.mu.Unlock()
	if err := r.s.enter(op); err != nil {
		return nil, err
	}
	owner, err := ownerOf(ctx, op)
	if err != nil {
		return nil, err
	}
	c, ok := r.s.categories[id]
	if !ok || c.Owner != owner {
		return nil, nil
	}
	return &c, nil
}

func (r *categoryRepo) List(ctx context.Context) ([]entities.Category, error) {
	const op = "CategoryRepository.List"
	defer r.s.mu.Unlock()
	if err := r.s.enter(op); err != nil {
		return nil, err
	}
	owner, err := ownerOf(ctx, op)
	if err != nil {
		return nil, err
	}
	return sortedValues(r.s.categories,
		func(c entities.Category) bool { return c.Owner == owner },
		func(a, b entities.Category) bool { return a.ID < b.ID }), nil
}

func (r *categoryRepo) Create(ctx context.Context, category *entities.Category) (*entities.Category, error) {
	const op = "CategoryRepository.Create"
	defer r.s.mu.Unlock()
	if err := r.s.enter(op); err != nil {
		return nil, err
	}
	owner, err := ownerOf(ctx, op)
	if err != nil {
		return nil, err
	}
	if _, exists := r.s.categories[category.ID]; exists {
		return nil, duplicate(op, "category id")
	}
	c := *category
	c.Owner = owner
	c.Version = entities.InitialVersion
	r.s.categories[c.ID] = c
	return &c, nil
}

func (r *categoryRepo) Update(ctx context.Context, category *entities.Category, expectedVersion int) (*entities.Category, error) {
	const op = "CategoryRepository.Update"
	defer r.s.mu.Unlock()
	if err := r.s.enter(op); err != nil {
		return nil, err
	}
	owner, err := ownerOf(ctx, op)
	if err != nil {
		return nil, err
	}
	stored, ok := r.s.categories[category.ID]
	if err := versioned(op, category.ID, ok, stored.Owner, owner, stored.Version, expectedVersion); err != nil {
		return nil, err
	}
	stored.Name, stored.Color, stored.Order = category.Name, category.Color, category.Order
	stored.Version++
	stored.UpdatedAt = r.s.now()
	r.s.categories[stored.ID] = stored
	return &stored, nil
}

func (r *categoryRepo) Delete(ctx context.Context, id string, expectedVersion int) error {
	const op = "CategoryRepository.Delete"
	defer r.s.mu.Unlock()
	if err := r.s.enter(op); err != nil {
		return err
	}
	owner, err := ownerOf(ctx, op)
	if err != nil {
		return err
	}
	stored, ok := r.s.categories[id]
	if err := versioned(op, id, ok, stored.Owner, owner, stored.Version, expectedVersion); err != nil {
		return err
	}
	delete(r.s.categories, id)
	for sid, setting := range r.s.settings {
		if setting.Owner == owner && setting.CategoryID != nil && *setting.CategoryID == id {
			setting.CategoryID = nil
			r.s.settings[sid] = setting
		}
	}
	return nil
}

type settingRepo struct{ s *Store }

func (r *settingRepo) find(ctx context.Context, op string, match func(entities.UserCharacterSetting) bool) (*entities.UserCharacterSetting, error) {
	defer r.s.mu.Unlock()
	if err := r.s.enter(op); err != nil {
		return nil, err
	}
	owner, err := ownerOf(ctx, op)
	if err != nil {
		return nil, err
	}
	for _, setting := range r.s.settings {
		if setting.Owner == owner && match(setting) {
			return &setting, nil
		}
	}
	return nil, nil
}

func (r *settingRepo) Get(ctx context.Context, id string) (*entities.UserCharacterSetting, error) {
	return r.find(ctx, "SettingRepository.Get", func(s entities.UserCharacterSetting) bool { return s.ID == id })
}

func (r *settingRepo) GetByCharacter(ctx context.Context, characterID string) (*entities.UserCharacterSetting, error) {
	return r.find(ctx, "SettingRepository.GetByCharacter", func(s entities.UserCharacterSetting) bool {
		return s.CharacterID == characterID
	})
}

func (r *settingRepo) List(ctx context.Context) ([]entities.UserCharacterSetting, error) {
	const op = "SettingRepository.List"
	defer r.s.mu.Unlock()
	if err := r.s.enter(op); err != nil {
		return nil, err
	}
	owner, err := ownerOf(ctx, op)
	if err != nil {
		return nil, err
	}
	return sortedValues(r.s.settings,
		func(s entities.UserCharacterSetting) bool { return s.Owner == owner },
		func(a, b entities.UserCharacterSetting) bool { return a.CharacterID < b.CharacterID }), nil
}

func (r *settingRepo) checkRefs(op, owner string, setting *entities.UserCharacterSetting) error {
	if _, ok := r.s.characters[setting.CharacterID]; !ok {
		return entities.NewError(entities.KindValidation, op, fmt.Errorf("unknown character %s", setting.CharacterID))
	}
	if setting.CategoryID != nil {
		c, ok := r.s.categories[*setting.CategoryID]
		if !ok || c.Owner != owner {
			return entities.NewError(entities.KindValidation, op, fmt.Errorf("unknown category %s", *setting.CategoryID))
		}
	}
	return nil
}

func (r *settingRepo) Create(ctx context.Context, setting *entities.UserCharacterSetting) (*entities.UserCharacterSetting, error) {
	const op = "SettingRepository.Create"
	defer r.s.mu.Unlock()
	if err := r.s.enter(op); err != nil {
		return nil, err
	}
	owner, err := ownerOf(ctx, op)
	if err != nil {
		return nil, err
	}
	for _, existing := range r.s.settings {
		if existing.ID == setting.ID || (existing.Owner == owner && existing.CharacterID == setting.CharacterID) {
			return nil, duplicate(op, "character setting")
		}
	}
	if err := r.checkRefs(op, owner, setting); err != nil {
		return nil, err
	}
	stored := *setting
	stored.Owner = owner
	stored.Version = entities.InitialVersion
	r.s.settings[stored.ID] = stored
	return &stored, nil
}

func (r *settingRepo) Update(ctx context.Context, setting *entities.UserCharacterSetting, expectedVersion int) (*entities.UserCharacterSetting, error) {
	const op = "SettingRepository.Update"
	defer r.s.mu.Unlock()
	if err := r.s.enter(op); err != nil {
		return nil, err
	}
	owner, err := ownerOf(ctx, op)
	if err != nil {
		return nil, err
	}
	stored, ok := r.s.settings[setting.ID]
	if err := versioned(op, setting.ID, ok, stored.Owner, owner, stored.Version, expectedVersion); err != nil {
		return nil, err
	}
	probe := stored
	probe.CategoryID = setting.CategoryID
	if err := r.checkRefs(op, owner, &probe); err != nil {
		return nil, err
	}
	stored.CategoryID, stored.CustomOrder = setting.CategoryID, setting.CustomOrder
	stored.Version++
	stored.UpdatedAt = r.s.now()
	r.s.settings[stored.ID] = stored
	return &stored, nil
}

func (r *settingRepo) Delete(ctx context.Context, id string, expectedVersion int) error {
	const op = "SettingRepository.Delete"
	defer r.s.mu.Unlock()
	if err := r.s.enter(op); err != nil {
		return err
	}
	owner, err := ownerOf(ctx, op)
	if err != nil {
		return err
	}
	stored, ok := r.s.settings[id]
	if err := versioned(op, id, ok, stored.Owner, owner, stored.Version, expectedVersion); err != nil {
		return err
	}
	delete(r.s.settings, id)
	return nil
}

type memoItemRepo struct{ s *Store }

func (r *memoItemRepo) Get(ctx context.Context, id string) (*entities.MemoItem, error) {
	const op = "MemoItemRepository.Get"
	defer r.s.mu.Unlock()
	if err := r.s.enter(op); err != nil {
		return nil, err
	}
	owner, err := ownerOf(ctx, op)
	if err != nil {
		return nil, err
	}
	item, ok := r.s.memoItems[id]
	if !ok || item.Owner != owner {
		return nil, nil
	}
	return &item, nil
}

func (r *memoItemRepo) List(ctx context.Context, criteria entities.MemoItemCriteria) ([]entities.MemoItem, error) {
	const op = "MemoItemRepository.List"
	defer r.s.mu.Unlock()
	if err := r.s.enter(op); err != nil {
		return nil, err
	}
	owner, err := ownerOf(ctx, op)
	if err != nil {
		return nil, err
	}
	items := sortedValues(r.s.memoItems,
		func(m entities.MemoItem) bool { return m.Owner == owner && criteria.Match(m) },
		func(a, b entities.MemoItem) bool { return a.ID < b.ID })
	entities.SortMemoItems(items)
	return items, nil
}

func (r *memoItemRepo) Create(ctx context.Context, item *entities.MemoItem) (*entities.MemoItem, error) {
	const op = "MemoItemRepository.Create"
	defer r.s.mu.Unlock()
	if err := r.s.enter(op); err != nil {
		return nil, err
	}
	owner, err := ownerOf(ctx, op)
	if err != nil {
		return nil, err
	}
	if _, exists := r.s.memoItems[item.ID]; exists {
		return nil, duplicate(op, "memo item id")
	}
	stored := *item
	stored.Owner = owner
	stored.Version = entities.InitialVersion
	r.s.memoItems[stored.ID] = stored
	return &stored, nil
}

func (r *memoItemRepo) Update(ctx context.Context, item *entities.MemoItem, expectedVersion int) (*entities.MemoItem, error) {
	const op = "MemoItemRepository.Update"
	defer r.s.mu.Unlock()
	if err := r.s.enter(op); err != nil {
		return nil, err
	}
	owner, err := ownerOf(ctx, op)
	if err != nil {
		return nil, err
	}
	stored, ok := r.s.memoItems[item.ID]
	if err := versioned(op, item.ID, ok, stored.Owner, owner, stored.Version, expectedVersion); err != nil {
		return nil, err
	}
	stored.Name, stored.Order, stored.Visible = item.Name, item.Order, item.Visible
	stored.Version++
	stored.UpdatedAt = r.s.now()
	r.s.memoItems[stored.ID] = stored
	return &stored, nil
}

func (r *memoItemRepo) Delete(ctx context.Context, id string, expectedVersion int) error {
	const op = "MemoItemRepository.Delete"
	defer r.s.mu.Unlock()
	if err := r.s.enter(op); err != nil {
		return err
	}
	owner, err := ownerOf(ctx, op)
	if err != nil {
		return err
	}
	stored, ok := r.s.memoItems[id]
	if err := versioned(op, id, ok, stored.Owner, owner, stored.Version, expectedVersion); err != nil {
		return err
	}
	for _, c := range r.s.memoContents {
		if c.Owner == owner && c.MemoItemID == id {
			return entities.NewError(entities.KindValidation, op, fmt.Errorf("memo item %s still has contents", id))
		}
	}
	delete(r.s.memoItems, id)
	return nil
}

type memoContentRepo struct{ s *Store }

func (r *memoContentRepo) Get(ctx context.Context, id string) (*entities.MemoContent, error) {
	const op = "MemoContentRepository.Get"
	defer r.s.mu.Unlock()
	if err := r.s.enter(op); err != nil {
		return nil, err
	}
	owner, err := ownerOf(ctx, op)
	if err != nil {
		return nil, err
	}
	c, ok := r.s.memoContents[id]
	if !ok || c.Owner != owner {
		return nil, nil
	}
	return &c, nil
}

func (r *memoContentRepo) list(ctx context.Context, op string, keep func(entities.MemoContent) bool) ([]entities.MemoContent, error) {
	defer r.s.mu.Unlock()
	if err := r.s.enter(op); err != nil {
		return nil, err
	}
	owner, err := ownerOf(ctx, op)
	if err != nil {
		return nil, err
	}
	out := sortedValues(r.s.memoContents,
		func(c entities.MemoContent) bool { return c.Owner == owner && keep(c) },
		func(a, b entities.MemoContent) bool { return a.ID < b.ID })
	entities.SortMemoContents(out)
	return out, nil
}

func (r *memoContentRepo) ListByCharacter(ctx context.Context, characterID string) ([]entities.MemoContent, error) {
	from, to := entities.CharacterKeyRange(characterID)
	return r.list(ctx, "MemoContentRepository.ListByCharacter", func(c entities.MemoContent) bool {
		key := c.SortKey()
		return key >= from && key < to
	})
}

func (r *memoContentRepo) ListByMemoItem(ctx context.Context, memoItemID string) ([]entities.MemoContent, error) {
	return r.list(ctx, "MemoContentRepository.ListByMemoItem", func(c entities.MemoContent) bool {
		return c.MemoItemID == memoItemID
	})
}

func (r *memoContentRepo) Create(ctx context.Context, content *entities.MemoContent) (*entities.MemoContent, error) {
	const op = "MemoContentRepository.Create"
	defer r.s.mu.Unlock()
	if err := r.s.enter(op); err != nil {
		return nil, err
	}
	owner, err := ownerOf(ctx, op)
	if err != nil {
		return nil, err
	}
	for _, existing := range r.s.memoContents {
		if existing.ID == content.ID ||
			(existing.Owner == owner && existing.SortKey() == content.SortKey()) {
			return nil, duplicate(op, "memo content "+content.SortKey())
		}
	}
	if _, ok := r.s.characters[content.CharacterID]; !ok {
		return nil, entities.NewError(entities.KindValidation, op, fmt.Errorf("unknown character %s", content.CharacterID))
	}
	if item, ok := r.s.memoItems[content.MemoItemID]; !ok || item.Owner != owner {
		return nil, entities.NewError(entities.KindValidation, op, fmt.Errorf("unknown memo item %s", content.MemoItemID))
	}
	stored := *content
	stored.Owner = owner
	stored.Version = entities.InitialVersion
	if content.Content != nil {
		stored.Content = entities.StringPtr(*content.Content)
	}
	r.s.memoContents[stored.ID] = stored
	return &stored, nil
}

func (r *memoContentRepo) Update(ctx context.Context, content *entities.MemoContent, expectedVersion int) (*entities.MemoContent, error) {
	const op = "MemoContentRepository.Update"
	defer r.s.mu.Unlock()
	if err := r.s.enter(op); err != nil {
		return nil, err
	}
	owner, err := ownerOf(ctx, op)
	if err != nil {
		return nil, err
	}
	stored, ok := r.s.memoContents[content.ID]
	if err := versioned(op, content.ID, ok, stored.Owner, owner, stored.Version, expectedVersion); err != nil {
		return nil, err
	}
	stored.Content = nil
	if content.Content != nil {
		stored.Content = entities.StringPtr(*content.Content)
	}
	stored.Version++
	stored.UpdatedAt = r.s.now()
	r.s.memoContents[stored.ID] = stored
	return &stored, nil
}

func (r *memoContentRepo) Delete(ctx context.Context, id string, expectedVersion int) error {
	const op = "MemoContentRepository.Delete"
	defer r.s.mu.Unlock()
	if err := r.s.enter(op); err != nil {
		return err
	}
	owner, err := ownerOf(ctx, op)
	if err != nil {
		return err
	}
	stored, ok := r.s.memoContents[id]
	if err := versioned(op, id, ok, stored.Owner, owner, stored.Version, expectedVersion); err != nil {
		return err
	}
	delete(r.s.memoContents, id)
	return nil
}
