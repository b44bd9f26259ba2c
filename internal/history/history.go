// Package history keeps the private, most-recent-first list of saved verdicts.
package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/puppyjudge/internal/model"
	"github.com/ppiankov/puppyjudge/internal/storage"
)

// ErrNotFound is returned when no history item has the given id
var ErrNotFound = errors.New("history item not found")

// Store is the history document. Every mutation rewrites the whole document.
type Store struct {
	mu      sync.Mutex
	backend storage.Backend
	key     string
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a history store over backend
func New(backend storage.Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		key:     storage.HistoryKey,
		logger:  zap.NewNop(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all items, most recent first
func (s *Store) List(ctx context.Context) ([]model.HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Get returns one item
func (s *Store) Get(ctx context.Context, id string) (*model.HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Add prepends a new item and returns it
func (s *Store) Add(ctx context.Context, c model.CaseData, v model.VerdictData, persona model.JudgePersona) (*model.HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	item := model.HistoryItem{
		ID:        s.newID(),
		Timestamp: s.now(),
		Case:      c,
		Verdict:   v.Clone(),
		Persona:   persona,
	}
	items = append([]model.HistoryItem{item}, items...)

	if err := storage.SaveJSON(ctx, s.backend, s.key, items); err != nil {
		return nil, err
	}
	s.logger.Info("History saved", zap.String("id", item.ID), zap.Int("count", len(items)))
	return &item, nil
}

// Delete removes exactly the item with id, keeping the order of the rest
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return err
	}

	kept := make([]model.HistoryItem, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := storage.SaveJSON(ctx, s.backend, s.key, kept); err != nil {
		return err
	}
	s.logger.Info("History item deleted", zap.String("id", id))
	return nil
}

// Clear drops the whole history document and reports how many items it held.
// An unreadable document is dropped too.
func (s *Store) Clear(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.backend.Delete(ctx, s.key); err != nil {
		return 0, err
	}
	s.logger.Info("History cleared", zap.Int("count", len(items)))
	return len(items), nil
}

// RecordAppeal replaces the verdict of item id and appends the appeal to its record
func (s *Store) RecordAppeal(ctx context.Context, id string, appeal model.AppealData, v model.VerdictData) (*model.HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].ID != id {
			continue
		}
		items[i].Verdict = v.Clone()
		items[i].Appeals = append(items[i].Appeals, appeal)
		if err := storage.SaveJSON(ctx, s.backend, s.key, items); err != nil {
			return nil, err
		}
		s.logger.Info("Appeal recorded",
			zap.String("id", id),
			zap.String("court_level", string(v.CourtLevel)),
			zap.Int("appeals", len(items[i].Appeals)),
		)
		item := items[i]
		return &item, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *Store) load(ctx context.Context) ([]model.HistoryItem, error) {
	var items []model.HistoryItem
	_, err := storage.LoadJSON(ctx, s.backend, s.key, &items)
	if storage.IsCorrupt(err) {
		// the next save replaces the unreadable document
		s.logger.Warn("History document unreadable, starting over", zap.Error(err))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}
