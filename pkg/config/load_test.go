package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charmemo/pkg/config"
)

type sample struct {
	Name  string `yaml:"name" env:"SAMPLE_NAME" env-default:"default-name"`
	Count int    `yaml:"count" env:"SAMPLE_COUNT" env-default:"3"`
}

var errTooMany = errors.New("count too large")

type checked struct {
	Count int `yaml:"count" env:"CHECKED_COUNT" env-default:"1"`
}

func (c *checked) Validate() error {
	if c.Count > 10 {
		return errTooMany
	}
	return nil
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults when nothing is set", func(t *testing.T) {
		cfg, err := config.Load[sample](ctx, "test", "")
		require.NoError(t, err)
		assert.Equal(t, "default-name", cfg.Name)
		assert.Equal(t, 3, cfg.Count)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("SAMPLE_NAME", "from-env")

		cfg, err := config.Load[sample](ctx, "test", filepath.Join(t.TempDir(), "missing.yml"))
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Name)
	})

	t.Run("reads yaml file when present", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("name: from-file\ncount: 7\n"), 0o600))

		cfg, err := config.Load[sample](ctx, "test", path)
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.Name)
		assert.Equal(t, 7, cfg.Count)
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("SAMPLE_COUNT", "not_a_number")

		cfg, err := config.Load[sample](ctx, "test", "")
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), config.ErrFailedLoadConfiguration)
	})
	t.Run("runs Validate when implemented", func(t *testing.T) {
		t.Setenv("CHECKED_COUNT", "11")

		cfg, err := config.Load[checked](ctx, "test", "")
		require.ErrorIs(t, err, errTooMany)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), config.ErrInvalidConfiguration)

		t.Setenv("CHECKED_COUNT", "4")
		ok, err := config.Load[checked](ctx, "test", "")
		require.NoError(t, err)
		assert.Equal(t, 4, ok.Count)
	})
}
