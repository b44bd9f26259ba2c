package storage

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryBackend keeps documents in process memory
type MemoryBackend struct {
	cache *gocache.Cache
}

// NewMemoryBackend creates a memory backend. A zero ttl keeps documents forever
// and starts no janitor goroutine.
func NewMemoryBackend(ttl time.Duration) *MemoryBackend {
	cleanup := 10 * time.Minute
	if ttl <= 0 {
		ttl = gocache.NoExpiration
		cleanup = 0
	}
	return &MemoryBackend{
		cache: gocache.New(ttl, cleanup),
	}
}

// Load retrieves a document
func (m *MemoryBackend) Load(_ context.Context, key string) ([]byte, error) {
	if val, found := m.cache.Get(key); found {
		return cloneBytes(val.([]byte)), nil
	}
	return nil, ErrNotFound
}

// Save stores a copy of value
func (m *MemoryBackend) Save(_ context.Context, key string, value []byte) error {
	m.cache.Set(key, cloneBytes(value), gocache.DefaultExpiration)
	return nil
}

// Delete removes a document
func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.cache.Delete(key)
	return nil
}

// Close drops all documents
func (m *MemoryBackend) Close() error {
	m.cache.Flush()
	return nil
}

func cloneBytes(b []byte) []byte {
	return append([]byte(nil), b...)
}
