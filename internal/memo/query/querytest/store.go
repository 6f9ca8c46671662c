// Package querytest provides an in-memory implementation of the memo
// persistence port. It keeps the same versioning, owner scoping and
// constraint semantics as the PostgreSQL adapter, so tests of the query and
// service layers can exercise real conflicts without a database.
package querytest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"charmemo/internal/memo/domain/entities"
	"charmemo/internal/memo/query"
	"charmemo/pkg/identity"
)

// Store is a goroutine-safe in-memory persistence backend.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	characters   map[string]entities.Character
	categories   map[string]entities.Category
	settings     map[string]entities.UserCharacterSetting
	memoItems    map[string]entities.MemoItem
	memoContents map[string]entities.MemoContent

	failures map[string]error
	calls    map[string]int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		now:          func() time.Time { return time.Now().UTC() },
		characters:   make(map[string]entities.Character),
		categories:   make(map[string]entities.Category),
		settings:     make(map[string]entities.UserCharacterSetting),
		memoItems:    make(map[string]entities.MemoItem),
		memoContents: make(map[string]entities.MemoContent),
		failures:     make(map[string]error),
		calls:        make(map[string]int),
	}
}

// Repositories returns port implementations backed by s.
func (s *Store) Repositories() query.Repositories {
	return query.Repositories{
		Characters:   &characterRepo{s: s},
		Categories:   &categoryRepo{s: s},
		Settings:     &settingRepo{s: s},
		MemoItems:    &memoItemRepo{s: s},
		MemoContents: &memoContentRepo{s: s},
	}
}

// SeedCharacters puts chars into the catalog as is, malformed rows included.
func (s *Store) SeedCharacters(chars ...entities.Character) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chars {
		s.characters[c.ID] = c
	}
}

// FailOn makes every later call of method (e.g. "MemoItemRepository.List")
// return err. A nil err clears the failure.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, method)
		return
	}
	s.failures[method] = err
}

// Calls reports how many times method was invoked.
func (s *Store) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// enter locks the store, records the call and returns the injected failure, if any.
// The caller must unlock.
func (s *Store) enter(method string) error {
	s.mu.Lock()
	s.calls[method]++
	if err, ok := s.failures[method]; ok {
		return entities.NewError(entities.KindTransport, method, err)
	}
	return nil
}

func ownerOf(ctx context.Context, op string) (string, error) {
	owner, err := identity.OwnerFromContext(ctx)
	if err != nil {
		return "", entities.NewError(entities.KindValidation, op, err)
	}
	return owner, nil
}

// versioned resolves a write against a stored record: missing, or someone
// else's, is not found; a moved version is a conflict.
func versioned(op, id string, exists bool, recordOwner, owner string, current, expected int) error {
	if !exists || recordOwner != owner {
		return entities.NewError(entities.KindNotFound, op, fmt.Errorf("id %s", id))
	}
	if current != expected {
		return entities.NewError(entities.KindVersionConflict, op, fmt.Errorf("id %s is at version %d", id, current))
	}
	return nil
}

func duplicate(op, what string) error {
	return entities.NewError(entities.KindVersionConflict, op, fmt.Errorf("duplicate %s", what))
}

func sortedValues[T any](m map[string]T, keep func(T) bool, less func(a, b T) bool) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		if keep(v) {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
