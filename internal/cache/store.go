// Package cache wraps an in-memory TTL store backing the session stage.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store is the TTL key/value contract the session store relies on.
type Store interface {
	Set(key string, value any, ttl time.Duration)
	Get(key string) (any, bool)
	Delete(key string)
}

// Options configure the in-memory cache behavior.
type Options struct {
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
}

// New creates a go-cache backed Store.
func New(opts Options) Store {
	defaultTTL := opts.DefaultTTL
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	cleanup := opts.CleanupInterval
	if cleanup <= 0 {
		cleanup = defaultTTL
	}
	return &goCacheStore{backend: gocache.New(defaultTTL, cleanup), defaultTTL: defaultTTL}
}

type goCacheStore struct {
	backend    *gocache.Cache
	defaultTTL time.Duration
}

func (s *goCacheStore) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	s.backend.Set(key, value, ttl)
}

func (s *goCacheStore) Get(key string) (any, bool) {
	return s.backend.Get(key)
}

func (s *goCacheStore) Delete(key string) {
	s.backend.Delete(key)
}
