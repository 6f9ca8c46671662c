package cache_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charmemo/internal/memo/adapters/cache"
	"charmemo/internal/memo/domain/entities"
	"charmemo/internal/memo/resilience"
	pkgredis "charmemo/pkg/db/redis"
)

func mockRedisServer(t *testing.T) (*miniredis.Miniredis, *pkgredis.Client) {
	t.Helper()

	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	host, portStr, _ := strings.Cut(s.Addr(), ":")
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := pkgredis.DefaultConfig()
	cfg.Host = host
	cfg.Port = port
	cfg.Timeout = time.Second

	client, err := pkgredis.NewClient(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return s, client
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	s, client := mockRedisServer(t)
	c := cache.NewRedisCache(client, time.Hour)

	_, found, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	value, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", value)
	assert.Equal(t, time.Hour, s.TTL("k"))

	require.NoError(t, c.Set(ctx, "short", "v", time.Minute))
	assert.Equal(t, time.Minute, s.TTL("short"))

	require.NoError(t, c.Delete(ctx, "k"))
	assert.False(t, s.Exists("k"))

	s.Close()
	_, _, err = c.Get(ctx, "k")
	assert.Error(t, err)
}

type countingCatalog struct {
	chars []entities.Character
	err   error
	lists int
	gets  int
}

func (r *countingCatalog) List(context.Context) ([]entities.Character, error) {
	r.lists++
	return r.chars, r.err
}

func (r *countingCatalog) Get(_ context.Context, id string) (*entities.Character, error) {
	r.gets++
	if r.err != nil {
		return nil, r.err
	}
	for i := range r.chars {
		if r.chars[i].ID == id {
			c := r.chars[i]
			return &c, nil
		}
	}
	return nil, nil
}

func newCatalogCache(t *testing.T, store *countingCatalog) (*miniredis.Miniredis, *cache.CatalogCache, *resilience.CircuitBreaker) {
	t.Helper()
	s, client := mockRedisServer(t)
	breaker := resilience.NewCircuitBreaker("catalog-cache", resilience.CircuitBreakerConfig{
		ErrorThreshold: 2, Timeout: time.Hour, SuccessThreshold: 1,
	})
	return s, cache.NewCatalogCache(store, cache.NewRedisCache(client, time.Minute), breaker, 5*time.Minute), breaker
}

func catalog() []entities.Character {
	return []entities.Character{
		{ID: "mario", Name: "Mario", Order: 1, Names: map[string]string{"ja": "マリオ"}},
		{ID: "luigi", Name: "Luigi", Order: 2},
	}
}

func TestCatalogCacheList(t *testing.T) {
	ctx := context.Background()
	store := &countingCatalog{chars: catalog()}
	s, c, _ := newCatalogCache(t, store)

	first, err := c.List(ctx)
	require.NoError(t, err)
	second, err := c.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, store.lists)
	assert.Equal(t, first, second)
	assert.Equal(t, "マリオ", second[0].Names["ja"])
	assert.Equal(t, 5*time.Minute, s.TTL(cache.CatalogListKey))

	require.NoError(t, c.Invalidate(ctx, "mario"))
	_, err = c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, store.lists)
}

func TestCatalogCacheGet(t *testing.T) {
	ctx := context.Background()
	store := &countingCatalog{chars: catalog()}
	s, c, _ := newCatalogCache(t, store)

	char, err := c.Get(ctx, "luigi")
	require.NoError(t, err)
	require.NotNil(t, char)
	assert.Equal(t, "Luigi", char.Name)

	_, err = c.Get(ctx, "luigi")
	require.NoError(t, err)
	assert.Equal(t, 1, store.gets)

	missing, err := c.Get(ctx, "wario")
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.False(t, s.Exists(cache.CharacterKey("wario")))
}

func TestCatalogCacheStoreErrorNotCached(t *testing.T) {
	ctx := context.Background()
	cause := entities.NewError(entities.KindTransport, "CharacterRepository.List", errors.New("down"))
	store := &countingCatalog{err: cause}
	s, c, _ := newCatalogCache(t, store)

	_, err := c.List(ctx)
	assert.ErrorIs(t, err, entities.ErrTransport)
	assert.False(t, s.Exists(cache.CatalogListKey))
}

func TestCatalogCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	store := &countingCatalog{chars: catalog()}
	s, c, _ := newCatalogCache(t, store)

	require.NoError(t, s.Set(cache.CatalogListKey, "{not json"))

	chars, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, chars, 2)
	assert.Equal(t, 1, store.lists)
}

func TestCatalogCacheFallsBackWhenRedisDown(t *testing.T) {
	ctx := context.Background()
	store := &countingCatalog{chars: catalog()}
	s, c, breaker := newCatalogCache(t, store)

	s.Close()

	for range 3 {
		chars, err := c.List(ctx)
		require.NoError(t, err)
		assert.Len(t, chars, 2)
	}
	assert.Equal(t, 3, store.lists)
	assert.Equal(t, resilience.StateOpen, breaker.GetState())
}
