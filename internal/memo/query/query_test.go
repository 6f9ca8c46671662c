package query_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"charmemo/internal/memo/domain/entities"
	"charmemo/internal/memo/query"
	"charmemo/internal/memo/query/querytest"
	"charmemo/pkg/identity"
	"charmemo/pkg/logger"
)

const (
	ownerA = "user-a"
	ownerB = "user-b"
)

func baseContext(t *testing.T) context.Context {
	t.Helper()
	testLogger, err := logger.NewLogger(logger.Development, "debug")
	require.NoError(t, err)
	return logger.NewContext(context.Background(), testLogger)
}

func newQueries(t *testing.T, chars ...entities.Character) (*query.Queries, *querytest.Store) {
	t.Helper()
	store := querytest.NewStore()
	store.SeedCharacters(chars...)
	return query.New(store.Repositories()), store
}

func requireKind(t *testing.T, err error, kind entities.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	got, ok := entities.KindOf(err)
	require.True(t, ok, "untyped error: %v", err)
	require.Equal(t, kind, got, err.Error())
}

var catalog = []entities.Character{
	{ID: "luigi", Name: "Luigi", Order: 2},
	{ID: "mario", Name: "Mario", Order: 1},
	{ID: "daisy", Name: "Daisy", Order: 2},
	{ID: "peach", Name: "Peach", Order: 3},
}

func TestListCharacters(t *testing.T) {
	t.Run("sorted by order with id tie-break", func(t *testing.T) {
		q, _ := newQueries(t, catalog...)

		chars, err := q.ListCharacters(baseContext(t))

		require.NoError(t, err)
		ids := make([]string, 0, len(chars))
		for _, c := range chars {
			ids = append(ids, c.ID)
		}
		assert.Equal(t, []string{"mario", "daisy", "luigi", "peach"}, ids)
	})

	t.Run("empty catalog is a valid empty result", func(t *testing.T) {
		q, _ := newQueries(t)

		chars, err := q.ListCharacters(baseContext(t))

		require.NoError(t, err)
		assert.NotNil(t, chars)
		assert.Empty(t, chars)
	})

	t.Run("malformed row is a transport error", func(t *testing.T) {
		q, _ := newQueries(t, entities.Character{ID: "ghost", Name: ""})

		_, err := q.ListCharacters(baseContext(t))

		requireKind(t, err, entities.KindTransport)
	})

	t.Run("transport failure propagates", func(t *testing.T) {
		q, store := newQueries(t, catalog...)
		store.FailOn("CharacterRepository.List", errors.New("connection refused"))

		chars, err := q.ListCharacters(baseContext(t))

		assert.Nil(t, chars)
		requireKind(t, err, entities.KindTransport)
		assert.ErrorIs(t, err, entities.ErrTransport)
	})
}

type characterRepoMock struct {
	mock.Mock
}

func (m *characterRepoMock) Get(ctx context.Context, id string) (*entities.Character, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Character), args.Error(1)
}

func (m *characterRepoMock) List(ctx context.Context) ([]entities.Character, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Character), args.Error(1)
}

func TestCharacters_CatalogMode(t *testing.T) {
	withoutOwner := mock.MatchedBy(func(ctx context.Context) bool {
		return !identity.IsAuthenticated(ctx)
	})

	repo := &characterRepoMock{}
	repo.On("List", withoutOwner).Return([]entities.Character{{ID: "mario", Name: "Mario"}}, nil).Once()
	repo.On("Get", withoutOwner, "mario").Return(&entities.Character{ID: "mario", Name: "Mario"}, nil).Once()
	repo.On("Get", withoutOwner, "wario").Return(nil, nil).Once()
	repo.On("Get", withoutOwner, "broken").Return(nil, errors.New("socket closed")).Once()

	q := query.New(query.Repositories{Characters: repo})
	ctx := identity.WithOwner(baseContext(t), ownerA)

	chars, err := q.ListCharacters(ctx)
	require.NoError(t, err)
	assert.Len(t, chars, 1)

	c, err := q.GetCharacter(ctx, "mario")
	require.NoError(t, err)
	assert.Equal(t, "Mario", c.Name)

	c, err = q.GetCharacter(ctx, "wario")
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = q.GetCharacter(ctx, "broken")
	requireKind(t, err, entities.KindTransport)

	_, err = q.GetCharacter(ctx, "")
	requireKind(t, err, entities.KindValidation)

	repo.AssertExpectations(t)
}

func TestMemoContent_RoundTrip(t *testing.T) {
	q, _ := newQueries(t, catalog...)
	ctx := identity.WithOwner(baseContext(t), ownerA)

	item, err := q.CreateMemoItem(ctx, "Combos", 1, true)
	require.NoError(t, err)

	created, err := q.CreateMemoContent(ctx, query.MemoContentInput{
		CharacterID: "mario",
		MemoItemID:  item.ID,
		Content:     entities.StringPtr("jab, jab, smash"),
	})
	require.NoError(t, err)
	assert.Equal(t, entities.InitialVersion, created.Version)
	assert.Equal(t, ownerA, created.Owner)

	got, err := q.GetMemoContent(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "mario", got.CharacterID)
	assert.Equal(t, item.ID, got.MemoItemID)
	assert.Equal(t, "jab, jab, smash", *got.Content)
	assert.Equal(t, created.Version, got.Version)
}

func TestMemoContent_NilAndEmptyAreDistinct(t *testing.T) {
	q, _ := newQueries(t, catalog...)
	ctx := identity.WithOwner(baseContext(t), ownerA)

	item, err := q.CreateMemoItem(ctx, "Notes", 1, true)
	require.NoError(t, err)

	none, err := q.CreateMemoContent(ctx, query.MemoContentInput{CharacterID: "mario", MemoItemID: item.ID})
	require.NoError(t, err)
	empty, err := q.CreateMemoContent(ctx, query.MemoContentInput{CharacterID: "luigi", MemoItemID: item.ID, Content: entities.StringPtr("")})
	require.NoError(t, err)

	gotNone, err := q.GetMemoContent(ctx, none.ID)
	require.NoError(t, err)
	assert.Nil(t, gotNone.Content)

	gotEmpty, err := q.GetMemoContent(ctx, empty.ID)
	require.NoError(t, err)
	require.NotNil(t, gotEmpty.Content)
	assert.Equal(t, "", *gotEmpty.Content)
}

func TestListMemoContentsByCharacter_ScopedToOwnerAndCharacter(t *testing.T) {
	q, _ := newQueries(t, catalog...)
	ctxA := identity.WithOwner(baseContext(t), ownerA)
	ctxB := identity.WithOwner(baseContext(t), ownerB)

	itemA, err := q.CreateMemoItem(ctxA, "Combos", 1, true)
	require.NoError(t, err)
	itemB, err := q.CreateMemoItem(ctxB, "Combos", 1, true)
	require.NoError(t, err)

	for _, in := range []struct {
		ctx  context.Context
		char string
		item string
	}{
		{ctxA, "mario", itemA.ID},
		{ctxA, "luigi", itemA.ID},
		{ctxB, "mario", itemB.ID},
	} {
		_, err := q.CreateMemoContent(in.ctx, query.MemoContentInput{CharacterID: in.char, MemoItemID: in.item, Content: entities.StringPtr("x")})
		require.NoError(t, err)
	}

	contents, err := q.ListMemoContentsByCharacter(ctxA, "mario")
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Equal(t, ownerA, contents[0].Owner)
	assert.Equal(t, "mario", contents[0].CharacterID)

	contents, err = q.ListMemoContentsByCharacter(ctxA, "peach")
	require.NoError(t, err)
	assert.Empty(t, contents)

	byItem, err := q.ListMemoContentsByMemoItem(ctxA, itemA.ID)
	require.NoError(t, err)
	assert.Len(t, byItem, 2)
	assert.Equal(t, "luigi", byItem[0].CharacterID)
}

func TestListMemoContentsByCharacter_PrefixIsNotAMatch(t *testing.T) {
	q, _ := newQueries(t,
		entities.Character{ID: "mario", Name: "Mario"},
		entities.Character{ID: "mario2", Name: "Mario 2"},
	)
	ctx := identity.WithOwner(baseContext(t), ownerA)

	item, err := q.CreateMemoItem(ctx, "Combos", 1, true)
	require.NoError(t, err)
	_, err = q.CreateMemoContent(ctx, query.MemoContentInput{CharacterID: "mario2", MemoItemID: item.ID})
	require.NoError(t, err)

	contents, err := q.ListMemoContentsByCharacter(ctx, "mario")

	require.NoError(t, err)
	assert.Empty(t, contents)
}

type contentRepoStub struct {
	rows []entities.MemoContent
}

func (s contentRepoStub) ListByCharacter(context.Context, string) ([]entities.MemoContent, error) {
	return s.rows, nil
}
func (s contentRepoStub) ListByMemoItem(context.Context, string) ([]entities.MemoContent, error) {
	return s.rows, nil
}
func (s contentRepoStub) Get(context.Context, string) (*entities.MemoContent, error) { return nil, nil }
func (s contentRepoStub) Create(context.Context, *entities.MemoContent) (*entities.MemoContent, error) {
	return nil, nil
}
func (s contentRepoStub) Update(context.Context, *entities.MemoContent, int) (*entities.MemoContent, error) {
	return nil, nil
}
func (s contentRepoStub) Delete(context.Context, string, int) error { return nil }

func TestListMemoContentsByCharacter_RejectsForeignRows(t *testing.T) {
	ctx := identity.WithOwner(baseContext(t), ownerA)

	t.Run("other character", func(t *testing.T) {
		q := query.New(query.Repositories{MemoContents: contentRepoStub{rows: []entities.MemoContent{
			{ID: "c1", Owner: ownerA, CharacterID: "luigi", MemoItemID: "combo", Version: 1},
		}}})

		_, err := q.ListMemoContentsByCharacter(ctx, "mario")

		requireKind(t, err, entities.KindTransport)
	})

	t.Run("other owner", func(t *testing.T) {
		q := query.New(query.Repositories{MemoContents: contentRepoStub{rows: []entities.MemoContent{
			{ID: "c1", Owner: ownerB, CharacterID: "mario", MemoItemID: "combo", Version: 1},
		}}})

		_, err := q.ListMemoContentsByCharacter(ctx, "mario")

		requireKind(t, err, entities.KindTransport)
	})
}

func TestUpdateMemoContent_Versioning(t *testing.T) {
	q, _ := newQueries(t, catalog...)
	ctx := identity.WithOwner(baseContext(t), ownerA)

	item, err := q.CreateMemoItem(ctx, "Combos", 1, true)
	require.NoError(t, err)
	created, err := q.CreateMemoContent(ctx, query.MemoContentInput{CharacterID: "mario", MemoItemID: item.ID, Content: entities.StringPtr("v1")})
	require.NoError(t, err)

	updated, err := q.UpdateMemoContent(ctx, created.ID, entities.StringPtr("v2"), created.Version)
	require.NoError(t, err)
	assert.Equal(t, created.Version+1, updated.Version)

	t.Run("stale version is rejected and the row is unchanged", func(t *testing.T) {
		_, err := q.UpdateMemoContent(ctx, created.ID, entities.StringPtr("stale"), created.Version)
		requireKind(t, err, entities.KindVersionConflict)

		got, err := q.GetMemoContent(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "v2", *got.Content)
		assert.Equal(t, updated.Version, got.Version)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := q.UpdateMemoContent(ctx, "missing", entities.StringPtr("x"), 1)
		requireKind(t, err, entities.KindNotFound)
	})

	t.Run("another owner cannot see the record", func(t *testing.T) {
		ctxB := identity.WithOwner(baseContext(t), ownerB)
		_, err := q.UpdateMemoContent(ctxB, created.ID, entities.StringPtr("x"), updated.Version)
		requireKind(t, err, entities.KindNotFound)

		err = q.DeleteMemoContent(ctxB, created.ID, updated.Version)
		requireKind(t, err, entities.KindNotFound)
	})

	t.Run("delete with stale version conflicts, then succeeds", func(t *testing.T) {
		err := q.DeleteMemoContent(ctx, created.ID, created.Version)
		requireKind(t, err, entities.KindVersionConflict)

		require.NoError(t, q.DeleteMemoContent(ctx, created.ID, updated.Version))

		got, err := q.GetMemoContent(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestUpdateMemoContent_ConcurrentSameVersion(t *testing.T) {
	q, _ := newQueries(t, catalog...)
	ctx := identity.WithOwner(baseContext(t), ownerA)

	item, err := q.CreateMemoItem(ctx, "Combos", 1, true)
	require.NoError(t, err)
	created, err := q.CreateMemoContent(ctx, query.MemoContentInput{CharacterID: "mario", MemoItemID: item.ID})
	require.NoError(t, err)

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := q.UpdateMemoContent(ctx, created.ID, entities.StringPtr("writer"), created.Version)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			if errors.Is(err, entities.ErrVersionConflict) {
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, writers-1, conflicts)

	got, err := q.GetMemoContent(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Version+1, got.Version)
}

func TestCreateMemoContent_DuplicatePairConflicts(t *testing.T) {
	q, _ := newQueries(t, catalog...)
	ctx := identity.WithOwner(baseContext(t), ownerA)

	item, err := q.CreateMemoItem(ctx, "Combos", 1, true)
	require.NoError(t, err)
	in := query.MemoContentInput{CharacterID: "mario", MemoItemID: item.ID}

	_, err = q.CreateMemoContent(ctx, in)
	require.NoError(t, err)
	_, err = q.CreateMemoContent(ctx, in)

	requireKind(t, err, entities.KindVersionConflict)
}

func TestValidationHappensBeforePersistence(t *testing.T) {
	q, store := newQueries(t, catalog...)
	anonymous := baseContext(t)
	ctx := identity.WithOwner(anonymous, ownerA)

	cases := []struct {
		name   string
		method string
		call   func() error
	}{
		{"missing owner", "MemoContentRepository.ListByCharacter", func() error {
			_, err := q.ListMemoContentsByCharacter(anonymous, "mario")
			return err
		}},
		{"separator in character id", "MemoContentRepository.ListByCharacter", func() error {
			_, err := q.ListMemoContentsByCharacter(ctx, "mario#1")
			return err
		}},
		{"empty memo item id", "MemoContentRepository.Create", func() error {
			_, err := q.CreateMemoContent(ctx, query.MemoContentInput{CharacterID: "mario"})
			return err
		}},
		{"zero version", "MemoContentRepository.Update", func() error {
			_, err := q.UpdateMemoContent(ctx, "c1", nil, 0)
			return err
		}},
		{"negative version on delete", "MemoContentRepository.Delete", func() error {
			return q.DeleteMemoContent(ctx, "c1", -1)
		}},
		{"inverted order range", "MemoItemRepository.List", func() error {
			_, err := q.ListMemoItems(ctx, entities.OrderBetween(5, 1))
			return err
		}},
		{"blank memo item name", "MemoItemRepository.Create", func() error {
			_, err := q.CreateMemoItem(ctx, "  ", 1, true)
			return err
		}},
		{"blank category name", "CategoryRepository.Create", func() error {
			_, err := q.CreateCategory(ctx, "", "red", 1)
			return err
		}},
		{"empty category reference", "SettingRepository.Create", func() error {
			_, err := q.CreateSetting(ctx, "mario", entities.StringPtr(""), nil)
			return err
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			requireKind(t, err, entities.KindValidation)
			assert.Zero(t, store.Calls(tc.method))
		})
	}
}

func TestListMemoItems_Filters(t *testing.T) {
	q, _ := newQueries(t)
	ctx := identity.WithOwner(baseContext(t), ownerA)

	combos, err := q.CreateMemoItem(ctx, "Combos", 1, true)
	require.NoError(t, err)
	_, err = q.CreateMemoItem(ctx, "Secret tech", 2, false)
	require.NoError(t, err)
	punish, err := q.CreateMemoItem(ctx, "Punish COMBOS", 5, true)
	require.NoError(t, err)

	t.Run("visible only", func(t *testing.T) {
		items, err := q.ListMemoItems(ctx, entities.VisibleOnly())
		require.NoError(t, err)
		require.Len(t, items, 2)
		for _, item := range items {
			assert.True(t, item.Visible)
		}
	})

	t.Run("combined filters", func(t *testing.T) {
		items, err := q.ListMemoItems(ctx, entities.VisibleOnly(), entities.NameContains("combo"), entities.OrderBetween(2, 9))
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, punish.ID, items[0].ID)
	})

	t.Run("no filters returns all in order", func(t *testing.T) {
		items, err := q.ListMemoItems(ctx)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, combos.ID, items[0].ID)
	})

	t.Run("other owners see nothing", func(t *testing.T) {
		items, err := q.ListMemoItems(identity.WithOwner(baseContext(t), ownerB))
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestMemoItemCRUD(t *testing.T) {
	q, _ := newQueries(t)
	ctx := identity.WithOwner(baseContext(t), ownerA)

	item, err := q.CreateMemoItem(ctx, "Combos", 1, true)
	require.NoError(t, err)

	changed := *item
	changed.Visible = false
	changed.Name = "Old combos"
	updated, err := q.UpdateMemoItem(ctx, &changed, item.Version)
	require.NoError(t, err)
	assert.False(t, updated.Visible)
	assert.Equal(t, 2, updated.Version)

	_, err = q.UpdateMemoItem(ctx, &changed, item.Version)
	requireKind(t, err, entities.KindVersionConflict)

	require.NoError(t, q.DeleteMemoItem(ctx, item.ID, updated.Version))
	got, err := q.GetMemoItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCategoriesAndSettings(t *testing.T) {
	q, _ := newQueries(t, catalog...)
	ctx := identity.WithOwner(baseContext(t), ownerA)

	mains, err := q.CreateCategory(ctx, "Mains", "#f00", 1)
	require.NoError(t, err)

	setting, err := q.CreateSetting(ctx, "mario", &mains.ID, nil)
	require.NoError(t, err)

	_, err = q.CreateSetting(ctx, "mario", nil, nil)
	requireKind(t, err, entities.KindVersionConflict)

	_, err = q.CreateSetting(ctx, "luigi", entities.StringPtr("no-such-category"), nil)
	requireKind(t, err, entities.KindValidation)

	got, err := q.GetSettingByCharacter(ctx, "mario")
	require.NoError(t, err)
	assert.Equal(t, setting.ID, got.ID)

	order := 7
	got.CustomOrder = &order
	updated, err := q.UpdateSetting(ctx, got, got.Version)
	require.NoError(t, err)
	assert.Equal(t, 7, *updated.CustomOrder)

	require.NoError(t, q.DeleteCategory(ctx, mains.ID, mains.Version))

	got, err = q.GetSettingByCharacter(ctx, "mario")
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)

	settings, err := q.ListSettings(ctx)
	require.NoError(t, err)
	assert.Len(t, settings, 1)

	require.NoError(t, q.DeleteSetting(ctx, got.ID, got.Version))
	categories, err := q.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestCategoriesAndSettings_LogFailures(t *testing.T) {
	q, store := newQueries(t, catalog...)
	core, logs := observer.New(zapcore.ErrorLevel)
	ctx := identity.WithOwner(logger.NewContext(context.Background(), logger.Wrap(zap.New(core))), ownerA)

	errDown := errors.New("connection refused")
	store.FailOn("CategoryRepository.List", errDown)
	store.FailOn("SettingRepository.List", errDown)

	_, err := q.ListCategories(ctx)
	requireKind(t, err, entities.KindTransport)
	_, err = q.ListSettings(ctx)
	requireKind(t, err, entities.KindTransport)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "failed to list categories", entries[0].Message)
	assert.Equal(t, "ListCategories", entries[0].ContextMap()["method"])
	assert.Equal(t, "query", entries[0].ContextMap()["layer"])
	assert.Equal(t, "failed to list character settings", entries[1].Message)
	assert.Equal(t, "ListSettings", entries[1].ContextMap()["method"])
}
