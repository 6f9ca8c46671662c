package entities

import (
	"time"

	"github.com/google/uuid"
)

// UserCharacterSetting overrides category membership and display order of one
// character for one owner. A missing setting means catalog defaults.
type UserCharacterSetting struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	CharacterID string    `json:"characterId"`
	CategoryID  *string   `json:"categoryId"`
	CustomOrder *int      `json:"customOrder"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewUserCharacterSetting creates an unsaved setting with a fresh id.
func NewUserCharacterSetting(characterID string, categoryID *string, customOrder *int) *UserCharacterSetting {
	now := time.Now().UTC()
	return &UserCharacterSetting{
		ID:          uuid.NewString(),
		CharacterID: characterID,
		CategoryID:  categoryID,
		CustomOrder: customOrder,
		Version:     InitialVersion,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// EffectiveOrder returns CustomOrder when set, else the catalog order.
func (s *UserCharacterSetting) EffectiveOrder(catalogOrder int) int {
	if s == nil || s.CustomOrder == nil {
		return catalogOrder
	}
	return *s.CustomOrder
}
