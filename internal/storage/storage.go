// Package storage persists whole JSON documents under string keys.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Document keys
const (
	HistoryKey = "puppy_judge_history"
	SquareKey  = "puppy_judge_square_data"
)

// ErrNotFound is returned by Load when nothing is stored under the key
var ErrNotFound = errors.New("document not found")

// Backend defines the interface for document persistence
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// StorageError wraps a backend failure with the operation and key
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func wrap(op, key string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	return &StorageError{Op: op, Key: key, Err: err}
}

// IsCorrupt reports whether err came from decoding a stored document
func IsCorrupt(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Op == "decode"
}

// LoadJSON decodes the document under key into dst.
// It reports false, without error, when the key is absent.
func LoadJSON(ctx context.Context, b Backend, key string, dst any) (bool, error) {
	data, err := b.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, &StorageError{Op: "decode", Key: key, Err: err}
	}
	return true, nil
}

// SaveJSON encodes v and stores it under key, replacing the previous document
func SaveJSON(ctx context.Context, b Backend, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &StorageError{Op: "encode", Key: key, Err: err}
	}
	return b.Save(ctx, key, data)
}
