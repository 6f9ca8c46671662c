package entities

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// InitialVersion is the version of a freshly created record.
const InitialVersion = 1

// SortKeySeparator joins characterId and memoItemId in the composite sort key.
const SortKeySeparator = "#"

// sortKeyUpperBound is the byte right after SortKeySeparator.
const sortKeyUpperBound = "$"

// MemoContent is the note text of one owner for one (character, memo item) pair.
// A nil Content means no text has been written; "" is an explicit empty note.
type MemoContent struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	CharacterID string    `json:"characterId"`
	MemoItemID  string    `json:"memoItemId"`
	Content     *string   `json:"content"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewMemoContent creates an unsaved memo content with a fresh id.
func NewMemoContent(characterID, memoItemID string, content *string) *MemoContent {
	now := time.Now().UTC()
	return &MemoContent{
		ID:          uuid.NewString(),
		CharacterID: characterID,
		MemoItemID:  memoItemID,
		Content:     content,
		Version:     InitialVersion,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SortKey returns the composite key of the record.
func (m *MemoContent) SortKey() string {
	return SortKey(m.CharacterID, m.MemoItemID)
}

// SortKey builds characterID + "#" + memoItemID.
func SortKey(characterID, memoItemID string) string {
	return characterID + SortKeySeparator + memoItemID
}

// CharacterKeyRange returns the half-open [from, to) sort key range holding
// every memo content of characterID.
func CharacterKeyRange(characterID string) (from, to string) {
	return characterID + SortKeySeparator, characterID + sortKeyUpperBound
}

// ValidKeyPart reports whether id can be used inside a composite sort key.
func ValidKeyPart(id string) bool {
	return id != "" && !strings.Contains(id, SortKeySeparator)
}

// SortMemoContents sorts ascending by composite key, ties broken by ID.
func SortMemoContents(contents []MemoContent) {
	sort.SliceStable(contents, func(i, j int) bool {
		ki, kj := contents[i].SortKey(), contents[j].SortKey()
		if ki != kj {
			return ki < kj
		}
		return contents[i].ID < contents[j].ID
	})
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
