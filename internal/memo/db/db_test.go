package db_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charmemo/internal/memo/config"
	"charmemo/internal/memo/db"
	"charmemo/pkg/logger"
)

func TestMigrationsURL(t *testing.T) {
	t.Run("absolute path is kept", func(t *testing.T) {
		url, err := db.MigrationsURL("/srv/migrations/memo")
		require.NoError(t, err)
		assert.Equal(t, "file:///srv/migrations/memo", url)
	})

	t.Run("relative path is resolved", func(t *testing.T) {
		url, err := db.MigrationsURL("migrations/memo")
		require.NoError(t, err)

		abs, err := filepath.Abs("migrations/memo")
		require.NoError(t, err)
		assert.Equal(t, "file://"+abs, url)
		assert.True(t, strings.HasPrefix(url, "file:///"))
	})
}

func TestNew_MigrationFailure(t *testing.T) {
	testLogger, err := logger.NewLogger(logger.Development, "debug")
	require.NoError(t, err)
	ctx := logger.NewContext(context.Background(), testLogger)

	cfg := &config.PostgresConfig{
		Host:          "127.0.0.1",
		Port:          1,
		User:          "postgres",
		Password:      "postgres",
		Database:      "memo",
		MinConn:       1,
		MaxConn:       2,
		MigrationsDir: t.TempDir(),
	}

	database, err := db.New(ctx, cfg)

	require.Error(t, err)
	assert.Nil(t, database)
	assert.Contains(t, err.Error(), db.ErrDBMigrations)
}
