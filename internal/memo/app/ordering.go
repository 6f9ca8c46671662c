package app

import (
	"sort"

	"charmemo/internal/memo/domain/entities"
)

// UncategorizedID names the bucket of characters without a usable category.
const UncategorizedID = "uncategorized"

// Bucket is one category group. Category is nil for the uncategorized bucket.
type Bucket struct {
	ID         string                `json:"id"`
	Category   *entities.Category    `json:"category"`
	Characters []entities.Character `json:"characters"`
}

// Grouping is the category view of the catalog: ordered buckets plus a map
// from bucket id to its characters.
type Grouping struct {
	Buckets    []Bucket                         `json:"buckets"`
	ByCategory map[string][]entities.Character `json:"byCategory"`
}

func settingsByCharacter(settings []entities.UserCharacterSetting) map[string]*entities.UserCharacterSetting {
	out := make(map[string]*entities.UserCharacterSetting, len(settings))
	for i := range settings {
		out[settings[i].CharacterID] = &settings[i]
	}
	return out
}

// SortedCharacters returns chars ordered by effective order (the owner's
// custom order when set, else the catalog order), ties broken by id.
// The input slice is not modified.
func SortedCharacters(chars []entities.Character, settings []entities.UserCharacterSetting) []entities.Character {
	bySetting := settingsByCharacter(settings)
	out := make([]entities.Character, len(chars))
	copy(out, chars)
	sortByEffectiveOrder(out, bySetting)
	return out
}

func sortByEffectiveOrder(chars []entities.Character, bySetting map[string]*entities.UserCharacterSetting) {
	sort.SliceStable(chars, func(i, j int) bool {
		oi := bySetting[chars[i].ID].EffectiveOrder(chars[i].Order)
		oj := bySetting[chars[j].ID].EffectiveOrder(chars[j].Order)
		if oi != oj {
			return oi < oj
		}
		return chars[i].ID < chars[j].ID
	})
}

// GroupByCategory buckets chars by their effective category. A character
// without a setting, without a category, or pointing at a category that no
// longer exists lands in UncategorizedID. Category buckets follow the
// category order, uncategorized comes last and empty buckets are omitted.
// The result depends only on the input.
func GroupByCategory(chars []entities.Character, categories []entities.Category, settings []entities.UserCharacterSetting) Grouping {
	bySetting := settingsByCharacter(settings)

	known := make(map[string]*entities.Category, len(categories))
	ordered := make([]entities.Category, len(categories))
	copy(ordered, categories)
	entities.SortCategories(ordered)
	for i := range ordered {
		known[ordered[i].ID] = &ordered[i]
	}

	members := make(map[string][]entities.Character)
	for _, c := range chars {
		bucket := UncategorizedID
		if s := bySetting[c.ID]; s != nil && s.CategoryID != nil {
			if _, ok := known[*s.CategoryID]; ok {
				bucket = *s.CategoryID
			}
		}
		members[bucket] = append(members[bucket], c)
	}

	g := Grouping{
		Buckets:    make([]Bucket, 0, len(members)),
		ByCategory: make(map[string][]entities.Character, len(members)),
	}
	add := func(id string, category *entities.Category) {
		list, ok := members[id]
		if !ok {
			return
		}
		sortByEffectiveOrder(list, bySetting)
		g.Buckets = append(g.Buckets, Bucket{ID: id, Category: category, Characters: list})
		g.ByCategory[id] = list
	}

	for i := range ordered {
		add(ordered[i].ID, &ordered[i])
	}
	add(UncategorizedID, nil)

	return g
}
