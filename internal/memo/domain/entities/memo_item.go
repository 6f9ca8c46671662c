package entities

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// MemoItem is a note field defined by its owner, e.g. "Punish options".
// Hidden items keep their contents but are left out of display lists.
type MemoItem struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Name      string    `json:"name"`
	Order     int       `json:"order"`
	Visible   bool      `json:"visible"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewMemoItem creates an unsaved, visible memo item.
func NewMemoItem(name string, order int) *MemoItem {
	now := time.Now().UTC()
	return &MemoItem{
		ID:        uuid.NewString(),
		Name:      name,
		Order:     order,
		Visible:   true,
		Version:   InitialVersion,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SortMemoItems sorts ascending by Order, ties broken by ID.
func SortMemoItems(items []MemoItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return lessOrder(items[i].Order, items[j].Order, items[i].ID, items[j].ID)
	})
}
