package entities

import (
	"errors"
	"sort"
	"time"
)

// Character is an entry of the shared, read-only character catalog.
type Character struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Icon  string `json:"icon" yaml:"icon"`
	Order int    `json:"order" yaml:"order"`
	// Names maps a BCP 47 locale tag to a localized display name.
	Names     map[string]string `json:"names,omitempty" yaml:"names,omitempty"`
	CreatedAt time.Time         `json:"createdAt" yaml:"-"`
	UpdatedAt time.Time         `json:"updatedAt" yaml:"-"`
}

// Catalog row errors.
var (
	ErrEmptyCharacterID   = errors.New("character id cannot be empty")
	ErrEmptyCharacterName = errors.New("character name cannot be empty")
)

// Validate reports a malformed catalog row.
func (c *Character) Validate() error {
	if c.ID == "" {
		return ErrEmptyCharacterID
	}
	if c.Name == "" {
		return ErrEmptyCharacterName
	}
	return nil
}

// SortCharacters sorts ascending by Order, ties broken by ID.
func SortCharacters(chars []Character) {
	sort.SliceStable(chars, func(i, j int) bool {
		return lessOrder(chars[i].Order, chars[j].Order, chars[i].ID, chars[j].ID)
	})
}

func lessOrder(a, b int, idA, idB string) bool {
	if a != b {
		return a < b
	}
	return idA < idB
}
