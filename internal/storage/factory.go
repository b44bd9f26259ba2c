package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/puppyjudge/internal/model"
)

// DefaultDir returns ~/.puppyjudge/data, or a relative fallback when HOME is unknown
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".puppyjudge", "data")
	}
	return filepath.Join(home, ".puppyjudge", "data")
}

// Open creates the backend selected by cfg
func Open(ctx context.Context, cfg model.StorageConfig) (Backend, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = DefaultDir()
	}

	switch strings.ToLower(cfg.Backend) {
	case "memory":
		return NewMemoryBackend(0), nil

	case "disk", "file":
		return NewDiskBackend(dir), nil

	case "layered", "":
		return NewLayeredBackend(NewDiskBackend(dir), cfg.MemoryTTL), nil

	case "redis":
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("storage backend redis requires redis_url")
		}
		client, err := ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return NewRedisBackend(client), nil

	case "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			path = filepath.Join(dir, "puppyjudge.db")
		}
		return OpenSQLite(ctx, path)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: memory, disk, layered, redis, sqlite)", cfg.Backend)
	}
}
