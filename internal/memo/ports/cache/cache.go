// Package cache defines the cache port used for the public character catalog.
package cache

import (
	"context"
	"time"
)

// Cache is a string key/value store with expiry. Get returns ("", false, nil) on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
