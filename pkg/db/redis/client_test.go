package redis_test

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbredis "charmemo/pkg/db/redis"
)

func configFor(t *testing.T, addr string) *dbredis.Config {
	t.Helper()

	host, portStr, _ := strings.Cut(addr, ":")
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := dbredis.DefaultConfig()
	cfg.Host = host
	cfg.Port = port
	return cfg
}

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	t.Run("connects and round-trips values", func(t *testing.T) {
		s := miniredis.RunT(t)

		client, err := dbredis.NewClient(ctx, configFor(t, s.Addr()))
		require.NoError(t, err)
		defer func() { assert.NoError(t, client.Close()) }()

		require.NoError(t, client.Set(ctx, "key", "value", time.Minute))

		got, err := client.Get(ctx, "key")
		require.NoError(t, err)
		assert.Equal(t, "value", got)

		require.NoError(t, client.Delete(ctx, "key"))
		assert.False(t, s.Exists("key"))
		assert.NotNil(t, client.RawClient())
	})

	t.Run("connection failure", func(t *testing.T) {
		cfg := &dbredis.Config{Host: "127.0.0.1", Port: 1, Timeout: 100 * time.Millisecond}

		client, err := dbredis.NewClient(ctx, cfg)
		require.Error(t, err)
		assert.Nil(t, client)
		assert.Contains(t, err.Error(), dbredis.ErrConnect)
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  dbredis.Config
		want error
	}{
		{"ok", dbredis.Config{Host: "redis", Port: 6379}, nil},
		{"empty host", dbredis.Config{Port: 6379}, dbredis.ErrEmptyHost},
		{"zero port", dbredis.Config{Host: "redis"}, dbredis.ErrInvalidPort},
		{"port overflow", dbredis.Config{Host: "redis", Port: 70000}, dbredis.ErrInvalidPort},
		{"negative db", dbredis.Config{Host: "redis", Port: 6379, DB: -1}, dbredis.ErrInvalidDB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("ipv6 addr", func(t *testing.T) {
		cfg := dbredis.Config{Host: "::1", Port: 6379}
		assert.Equal(t, "[::1]:6379", cfg.Addr())
	})

	t.Run("invalid config is rejected before dialing", func(t *testing.T) {
		_, err := dbredis.NewClient(context.Background(), &dbredis.Config{Port: 6379})
		require.ErrorIs(t, err, dbredis.ErrEmptyHost)
	})
}
