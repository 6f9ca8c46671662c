package query

import (
	"context"

	"go.uber.org/zap"

	"charmemo/internal/memo/domain/entities"
)

// MemoContentInput describes a memo content to create. A nil Content stores
// "no text", distinct from an empty string.
type MemoContentInput struct {
	CharacterID string  `json:"characterId"`
	MemoItemID  string  `json:"memoItemId"`
	Content     *string `json:"content"`
}

// ListMemoContentsByCharacter returns the owner's contents for one character,
// ascending by composite key. It is a single range lookup on the sort key index.
func (q *Queries) ListMemoContentsByCharacter(ctx context.Context, characterID string) ([]entities.MemoContent, error) {
	const op = "query.ListMemoContentsByCharacter"
	log := methodLog(ctx, "ListMemoContentsByCharacter")

	owner, err := requireOwner(ctx, op)
	if err != nil {
		return nil, err
	}
	if err := requireKeyPart(op, "character id", characterID); err != nil {
		return nil, err
	}

	contents, err := q.memoContents.ListByCharacter(ctx, characterID)
	if err != nil {
		log.Error(ctx, "failed to list memo contents", zap.String("characterID", characterID), zap.Error(err))
		return nil, propagate(op, err)
	}

	for _, c := range contents {
		if err := checkOwner(op, "memo content", c.ID, c.Owner, owner); err != nil {
			return nil, err
		}
		if c.CharacterID != characterID {
			log.Error(ctx, "range lookup returned foreign character",
				zap.String("want", characterID), zap.String("got", c.CharacterID))
			return nil, malformed(op, "memo content %s belongs to character %q", c.ID, c.CharacterID)
		}
	}

	if contents == nil {
		contents = []entities.MemoContent{}
	}
	entities.SortMemoContents(contents)
	return contents, nil
}

// ListMemoContentsByMemoItem returns the owner's contents for one memo item
// across characters, ascending by composite key.
func (q *Queries) ListMemoContentsByMemoItem(ctx context.Context, memoItemID string) ([]entities.MemoContent, error) {
	const op = "query.ListMemoContentsByMemoItem"

	owner, err := requireOwner(ctx, op)
	if err != nil {
		return nil, err
	}
	if err := requireKeyPart(op, "memo item id", memoItemID); err != nil {
		return nil, err
	}

	contents, err := q.memoContents.ListByMemoItem(ctx, memoItemID)
	if err != nil {
		methodLog(ctx, "ListMemoContentsByMemoItem").Error(ctx, "failed to list memo contents", zap.Error(err))
		return nil, propagate(op, err)
	}

	for _, c := range contents {
		if err := checkOwner(op, "memo content", c.ID, c.Owner, owner); err != nil {
			return nil, err
		}
		if c.MemoItemID != memoItemID {
			return nil, malformed(op, "memo content %s belongs to memo item %q", c.ID, c.MemoItemID)
		}
	}

	if contents == nil {
		contents = []entities.MemoContent{}
	}
	entities.SortMemoContents(contents)
	return contents, nil
}

// GetMemoContent returns the owner's memo content, or nil.
func (q *Queries) GetMemoContent(ctx context.Context, id string) (*entities.MemoContent, error) {
	const op = "query.GetMemoContent"

	if _, err := requireOwner(ctx, op); err != nil {
		return nil, err
	}
	if err := requireID(op, "memo content id", id); err != nil {
		return nil, err
	}

	content, err := q.memoContents.Get(ctx, id)
	if err != nil {
		return nil, propagate(op, err)
	}
	return content, nil
}

// CreateMemoContent stores a new memo content for the owner. A second content
// for the same character and memo item is a version conflict.
func (q *Queries) CreateMemoContent(ctx context.Context, in MemoContentInput) (*entities.MemoContent, error) {
	const op = "query.CreateMemoContent"
	log := methodLog(ctx, "CreateMemoContent")

	if _, err := requireOwner(ctx, op); err != nil {
		return nil, err
	}
	if err := requireKeyPart(op, "character id", in.CharacterID); err != nil {
		return nil, err
	}
	if err := requireKeyPart(op, "memo item id", in.MemoItemID); err != nil {
		return nil, err
	}

	created, err := q.memoContents.Create(ctx, entities.NewMemoContent(in.CharacterID, in.MemoItemID, in.Content))
	if err != nil {
		log.Warn(ctx, "failed to create memo content",
			zap.String("characterID", in.CharacterID),
			zap.String("memoItemID", in.MemoItemID),
			zap.Error(err))
		return nil, propagate(op, err)
	}

	log.Debug(ctx, "memo content created", zap.String("id", created.ID))
	return created, nil
}

// UpdateMemoContent replaces the text of a memo content if its stored version
// equals expectedVersion. On success the version grows by exactly one.
func (q *Queries) UpdateMemoContent(ctx context.Context, id string, content *string, expectedVersion int) (*entities.MemoContent, error) {
	const op = "query.UpdateMemoContent"

	if _, err := requireOwner(ctx, op); err != nil {
		return nil, err
	}
	if err := requireID(op, "memo content id", id); err != nil {
		return nil, err
	}
	if err := requireVersion(op, expectedVersion); err != nil {
		return nil, err
	}

	updated, err := q.memoContents.Update(ctx, &entities.MemoContent{ID: id, Content: content}, expectedVersion)
	if err != nil {
		methodLog(ctx, "UpdateMemoContent").Warn(ctx, "memo content update rejected",
			zap.String("id", id), zap.Int("expectedVersion", expectedVersion), zap.Error(err))
		return nil, propagate(op, err)
	}
	return updated, nil
}

// DeleteMemoContent removes a memo content if its stored version equals expectedVersion.
func (q *Queries) DeleteMemoContent(ctx context.Context, id string, expectedVersion int) error {
	const op = "query.DeleteMemoContent"

	if _, err := requireOwner(ctx, op); err != nil {
		return err
	}
	if err := requireID(op, "memo content id", id); err != nil {
		return err
	}
	if err := requireVersion(op, expectedVersion); err != nil {
		return err
	}

	if err := q.memoContents.Delete(ctx, id, expectedVersion); err != nil {
		methodLog(ctx, "DeleteMemoContent").Warn(ctx, "memo content delete rejected", zap.String("id", id), zap.Error(err))
		return propagate(op, err)
	}
	return nil
}
