package entities

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Category is an owner-defined grouping of characters.
type Category struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Order     int       `json:"order"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewCategory creates an unsaved category with a fresh id.
func NewCategory(name, color string, order int) *Category {
	now := time.Now().UTC()
	return &Category{
		ID:        uuid.NewString(),
		Name:      name,
		Color:     color,
		Order:     order,
		Version:   InitialVersion,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SortCategories sorts ascending by Order, ties broken by ID.
func SortCategories(categories []Category) {
	sort.SliceStable(categories, func(i, j int) bool {
		return lessOrder(categories[i].Order, categories[j].Order, categories[i].ID, categories[j].ID)
	})
}
