package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"charmemo/internal/memo/domain/entities"
	"charmemo/internal/memo/ports/cache"
	"charmemo/internal/memo/ports/repositories"
	"charmemo/internal/memo/resilience"
	"charmemo/pkg/logger"
)

// Redis keys of the catalog.
const (
	CatalogListKey      = "memo:catalog:characters"
	catalogCharacterKey = "memo:catalog:character:"
)

// Log messages.
const (
	LogCatalogHit      = "catalog cache hit"
	LogCatalogMiss     = "catalog cache miss"
	LogCatalogBypass   = "catalog cache unavailable, reading from store"
	LogCatalogCorrupt  = "catalog cache entry is corrupt"
	LogCatalogEvict    = "catalog cache invalidated"
	LogCatalogStoreErr = "failed to store catalog in cache"
)

// CharacterKey returns the cache key of a single catalog entry.
func CharacterKey(id string) string {
	return catalogCharacterKey + id
}

// CatalogCache is a read-through cache in front of the character catalog.
// Cache failures never fail a read: the breaker trips and reads go to the store.
type CatalogCache struct {
	next    repositories.CharacterRepository
	cache   cache.Cache
	breaker *resilience.CircuitBreaker
	ttl     time.Duration
}

var _ repositories.CharacterRepository = (*CatalogCache)(nil)

// NewCatalogCache wraps next with c.
func NewCatalogCache(next repositories.CharacterRepository, c cache.Cache, breaker *resilience.CircuitBreaker, ttl time.Duration) *CatalogCache {
	return &CatalogCache{next: next, cache: c, breaker: breaker, ttl: ttl}
}

// List returns the catalog from the cache, or from the store on a miss.
func (c *CatalogCache) List(ctx context.Context) ([]entities.Character, error) {
	var cached []entities.Character
	if c.load(ctx, CatalogListKey, &cached) {
		return cached, nil
	}

	chars, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, CatalogListKey, chars)
	return chars, nil
}

// Get returns one character from the cache or the store. Absence is not cached.
func (c *CatalogCache) Get(ctx context.Context, id string) (*entities.Character, error) {
	key := CharacterKey(id)

	var cached entities.Character
	if c.load(ctx, key, &cached) {
		return &cached, nil
	}

	char, err := c.next.Get(ctx, id)
	if err != nil || char == nil {
		return char, err
	}
	c.store(ctx, key, char)
	return char, nil
}

// Invalidate drops the list and the given entries.
func (c *CatalogCache) Invalidate(ctx context.Context, ids ...string) error {
	keys := make([]string, 0, len(ids)+1)
	keys = append(keys, CatalogListKey)
	for _, id := range ids {
		keys = append(keys, CharacterKey(id))
	}
	for _, key := range keys {
		if err := c.breaker.Execute(ctx, func() error { return c.cache.Delete(ctx, key) }); err != nil {
			return err
		}
	}
	logger.Log(ctx).Info(ctx, LogCatalogEvict, zap.Int("entries", len(ids)))
	return nil
}

// load reports whether key was found and decoded into dst.
func (c *CatalogCache) load(ctx context.Context, key string, dst any) bool {
	log := logger.Log(ctx).With(zap.String("key", key))

	var (
		raw   string
		found bool
	)
	err := c.breaker.Execute(ctx, func() error {
		var err error
		raw, found, err = c.cache.Get(ctx, key)
		return err
	})
	if err != nil {
		log.Warn(ctx, LogCatalogBypass, zap.Error(err))
		return false
	}
	if !found {
		log.Debug(ctx, LogCatalogMiss)
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		log.Warn(ctx, LogCatalogCorrupt, zap.Error(err))
		_ = c.breaker.Execute(ctx, func() error { return c.cache.Delete(ctx, key) })
		return false
	}
	log.Debug(ctx, LogCatalogHit)
	return true
}

func (c *CatalogCache) store(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		logger.Log(ctx).Warn(ctx, LogCatalogStoreErr, zap.String("key", key), zap.Error(err))
		return
	}
	err = c.breaker.Execute(ctx, func() error { return c.cache.Set(ctx, key, string(raw), c.ttl) })
	if err != nil {
		logger.Log(ctx).Warn(ctx, LogCatalogStoreErr, zap.String("key", key), zap.Error(err))
	}
}
