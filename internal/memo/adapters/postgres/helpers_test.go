package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charmemo/internal/memo/domain/entities"
	"charmemo/pkg/identity"
	"charmemo/pkg/logger"
)

const testOwner = "user-1"

var testTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func loggedContext(t *testing.T) context.Context {
	t.Helper()
	testLogger, err := logger.NewLogger(logger.Development, "debug")
	require.NoError(t, err)
	return logger.NewContext(context.Background(), testLogger)
}

func ownerContext(t *testing.T) context.Context {
	t.Helper()
	return identity.WithOwner(loggedContext(t), testOwner)
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func assertKind(t *testing.T, err error, kind entities.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	got, ok := entities.KindOf(err)
	require.True(t, ok, "expected typed error, got %v", err)
	assert.Equal(t, kind, got, err.Error())
}
