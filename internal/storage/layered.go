package storage

import (
	"context"
	"errors"
	"time"
)

// LayeredBackend reads through a memory layer in front of a durable backend
type LayeredBackend struct {
	memory  *MemoryBackend
	durable Backend
}

// NewLayeredBackend wraps durable with a memory layer whose entries expire after memoryTTL
func NewLayeredBackend(durable Backend, memoryTTL time.Duration) *LayeredBackend {
	return &LayeredBackend{
		memory:  NewMemoryBackend(memoryTTL),
		durable: durable,
	}
}

// Load checks memory first, then the durable layer
func (l *LayeredBackend) Load(ctx context.Context, key string) ([]byte, error) {
	if val, err := l.memory.Load(ctx, key); err == nil {
		return val, nil
	}

	val, err := l.durable.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	// Promote to memory
	_ = l.memory.Save(ctx, key, val)
	return val, nil
}

// Save writes durable first so memory never holds unpersisted data
func (l *LayeredBackend) Save(ctx context.Context, key string, value []byte) error {
	if err := l.durable.Save(ctx, key, value); err != nil {
		_ = l.memory.Delete(ctx, key)
		return err
	}
	return l.memory.Save(ctx, key, value)
}

// Delete removes from both layers
func (l *LayeredBackend) Delete(ctx context.Context, key string) error {
	_ = l.memory.Delete(ctx, key)
	return l.durable.Delete(ctx, key)
}

// Close closes both layers
func (l *LayeredBackend) Close() error {
	return errors.Join(l.memory.Close(), l.durable.Close())
}
