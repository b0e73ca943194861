package cache

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache is a process-local key/value store with per-entry expiry.
// Entries written with Set live for the default expiration.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	SetTTL(key string, value any, ttl time.Duration)
	Delete(keys ...string)
	Len() int
}

type memoryCache struct {
	store *cache.Cache
}

func NewCache(defaultExpiration, cleanupInterval time.Duration) Cache {
	return &memoryCache{store: cache.New(defaultExpiration, cleanupInterval)}
}

func (c *memoryCache) Get(key string) (any, bool) { return c.store.Get(key) }

func (c *memoryCache) Set(key string, value any) {
	c.store.SetDefault(key, value)
}

func (c *memoryCache) SetTTL(key string, value any, ttl time.Duration) {
	c.store.Set(key, value, ttl)
}

func (c *memoryCache) Delete(keys ...string) {
	for _, k := range keys {
		c.store.Delete(k)
	}
}

func (c *memoryCache) Len() int { return c.store.ItemCount() }

// Get returns the value under key when present and of type T.
// A value of another type counts as a miss.
func Get[T any](c Cache, key string) (T, bool) {
	v, ok := c.Get(key)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Load returns the cached T under key, or calls load and caches its result.
// Errors are not cached.
func Load[T any](c Cache, key string, load func() (T, error)) (T, error) {
	if v, ok := Get[T](c, key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}
