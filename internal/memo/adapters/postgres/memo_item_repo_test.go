package postgres_test

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charmemo/internal/memo/adapters/postgres"
	"charmemo/internal/memo/domain/entities"
)

var memoItemCols = []string{"id", "owner", "name", "sort_order", "visible", "version", "created_at", "updated_at"}

func TestMemoItemRepository_List(t *testing.T) {
	t.Run("no criteria lists all of the owner's items", func(t *testing.T) {
		ctx := ownerContext(t)
		mock := newMock(t)

		mock.ExpectQuery(`SELECT .+ FROM memo_items WHERE owner = \$1 ORDER BY sort_order, id`).
			WithArgs(testOwner).
			WillReturnRows(pgxmock.NewRows(memoItemCols).
				AddRow("combo", testOwner, "Combos", 1, true, 1, testTime, testTime).
				AddRow("notes", testOwner, "Notes", 2, false, 1, testTime, testTime))

		items, err := postgres.NewMemoItemRepository(mock).List(ctx, entities.MemoItemCriteria{})

		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.False(t, items[1].Visible)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("criteria become numbered predicates", func(t *testing.T) {
		ctx := ownerContext(t)
		mock := newMock(t)

		criteria, err := entities.CriteriaFrom(
			entities.VisibleOnly(),
			entities.OrderBetween(1, 5),
			entities.NameContains("com"),
		)
		require.NoError(t, err)

		mock.ExpectQuery(`WHERE owner = \$1 AND visible = TRUE AND sort_order >= \$2 AND sort_order <= \$3 AND strpos\(lower\(name\), lower\(\$4\)\) > 0 ORDER BY sort_order, id`).
			WithArgs(testOwner, 1, 5, "com").
			WillReturnRows(pgxmock.NewRows(memoItemCols).
				AddRow("combo", testOwner, "Combos", 1, true, 1, testTime, testTime))

		items, err := postgres.NewMemoItemRepository(mock).List(ctx, criteria)

		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "combo", items[0].ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no owner", func(t *testing.T) {
		mock := newMock(t)

		_, err := postgres.NewMemoItemRepository(mock).List(loggedContext(t), entities.MemoItemCriteria{})

		assertKind(t, err, entities.KindValidation)
	})
}

func TestMemoItemRepository_Get(t *testing.T) {
	ctx := ownerContext(t)
	mock := newMock(t)

	mock.ExpectQuery(`SELECT .+ FROM memo_items WHERE id = \$1 AND owner = \$2`).
		WithArgs("missing", testOwner).
		WillReturnError(pgx.ErrNoRows)

	item, err := postgres.NewMemoItemRepository(mock).Get(ctx, "missing")

	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestMemoItemRepository_CreateUpdateDelete(t *testing.T) {
	item := &entities.MemoItem{ID: "combo", Name: "Combos", Order: 1, Visible: true, CreatedAt: testTime, UpdatedAt: testTime}

	t.Run("create", func(t *testing.T) {
		ctx := ownerContext(t)
		mock := newMock(t)

		mock.ExpectQuery(`INSERT INTO memo_items .+`).
			WithArgs("combo", testOwner, "Combos", 1, true, entities.InitialVersion, testTime, testTime).
			WillReturnRows(pgxmock.NewRows(memoItemCols).
				AddRow("combo", testOwner, "Combos", 1, true, 1, testTime, testTime))

		created, err := postgres.NewMemoItemRepository(mock).Create(ctx, item)

		require.NoError(t, err)
		assert.Equal(t, 1, created.Version)
	})

	t.Run("update conflict", func(t *testing.T) {
		ctx := ownerContext(t)
		mock := newMock(t)

		mock.ExpectQuery(`UPDATE memo_items`).
			WithArgs("Combos", 1, true, "combo", testOwner, 1).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(`SELECT version FROM memo_items`).
			WithArgs("combo", testOwner).
			WillReturnRows(pgxmock.NewRows([]string{"version"}).AddRow(2))

		_, err := postgres.NewMemoItemRepository(mock).Update(ctx, item, 1)

		assertKind(t, err, entities.KindVersionConflict)
	})

	t.Run("delete", func(t *testing.T) {
		ctx := ownerContext(t)
		mock := newMock(t)

		mock.ExpectExec(`DELETE FROM memo_items`).
			WithArgs("combo", testOwner, 2).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, postgres.NewMemoItemRepository(mock).Delete(ctx, "combo", 2))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
