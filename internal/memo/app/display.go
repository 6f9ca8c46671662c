package app

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"charmemo/internal/memo/domain/entities"
)

// Listing is a display list. Degraded is set when the data could not be
// loaded completely; Cause says why. A degraded empty listing is not the
// same as a real empty result.
type Listing[T any] struct {
	Items    []T   `json:"items"`
	Degraded bool  `json:"degraded"`
	Cause    error `json:"-"`
}

// GroupingListing is the degradable form of Grouping.
type GroupingListing struct {
	Grouping
	Degraded bool  `json:"degraded"`
	Cause    error `json:"-"`
}

func degrade(ctx context.Context, method string, err error) {
	methodLog(ctx, method).Warn(ctx, "serving degraded view", zap.Bool("degraded", true), zap.Error(err))
}

// DisplayCharacters is SortedCharacters for screens: the catalog failing
// yields an empty degraded listing; the owner's settings failing yields the
// catalog order, also flagged degraded.
func (s *MemoService) DisplayCharacters(ctx context.Context) Listing[entities.Character] {
	chars, err := s.q.ListCharacters(ctx)
	if err != nil {
		degrade(ctx, "DisplayCharacters", err)
		return Listing[entities.Character]{Items: []entities.Character{}, Degraded: true, Cause: err}
	}

	settings, err := s.ownerSettings(ctx)
	if err != nil {
		degrade(ctx, "DisplayCharacters", err)
		return Listing[entities.Character]{Items: SortedCharacters(chars, nil), Degraded: true, Cause: err}
	}

	return Listing[entities.Character]{Items: SortedCharacters(chars, settings)}
}

// DisplayCharactersByName is CharactersByName for screens.
func (s *MemoService) DisplayCharactersByName(ctx context.Context, tag language.Tag) Listing[entities.Character] {
	chars, err := s.CharactersByName(ctx, tag)
	if err != nil {
		degrade(ctx, "DisplayCharactersByName", err)
		return Listing[entities.Character]{Items: []entities.Character{}, Degraded: true, Cause: err}
	}
	return Listing[entities.Character]{Items: chars}
}

// DisplayMemoItems lists the owner's visible memo items for screens.
func (s *MemoService) DisplayMemoItems(ctx context.Context) Listing[entities.MemoItem] {
	items, err := s.q.ListMemoItems(ctx, entities.VisibleOnly())
	if err != nil {
		degrade(ctx, "DisplayMemoItems", err)
		return Listing[entities.MemoItem]{Items: []entities.MemoItem{}, Degraded: true, Cause: err}
	}
	return Listing[entities.MemoItem]{Items: items}
}

// DisplayCharactersByCategory is CharactersByCategory for screens. Without
// the catalog the grouping is empty; without categories or settings every
// character is shown uncategorized. Both cases are flagged degraded.
func (s *MemoService) DisplayCharactersByCategory(ctx context.Context) GroupingListing {
	chars, err := s.q.ListCharacters(ctx)
	if err != nil {
		degrade(ctx, "DisplayCharactersByCategory", err)
		return GroupingListing{Grouping: GroupByCategory(nil, nil, nil), Degraded: true, Cause: err}
	}

	categories, err := s.q.ListCategories(ctx)
	if err == nil {
		var settings []entities.UserCharacterSetting
		settings, err = s.q.ListSettings(ctx)
		if err == nil {
			return GroupingListing{Grouping: GroupByCategory(chars, categories, settings)}
		}
	}

	degrade(ctx, "DisplayCharactersByCategory", err)
	return GroupingListing{Grouping: GroupByCategory(chars, nil, nil), Degraded: true, Cause: err}
}
