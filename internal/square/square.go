// Package square is the public feed of shared cases with votes, comments and views.
package square

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/puppyjudge/internal/model"
	"github.com/ppiankov/puppyjudge/internal/storage"
	"github.com/ppiankov/puppyjudge/internal/theme"
)

var (
	// ErrNotFound is returned when no public case has the given id
	ErrNotFound = errors.New("public case not found")

	// ErrEmptyComment is returned for blank comment text
	ErrEmptyComment = errors.New("comment is empty")

	// ErrInvalidSide is returned for votes that name neither party
	ErrInvalidSide = errors.New("vote side must be user or partner")
)

// MaxCommentRunes bounds a single comment
const MaxCommentRunes = 500

// Filter narrows a listing
type Filter struct {
	Sort    model.SquareSort
	Persona model.JudgePersona // empty means all
}

// Service owns the square document
type Service struct {
	mu      sync.Mutex
	backend storage.Backend
	key     string
	seed    bool
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
	picker  theme.Picker
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSeed controls whether an empty square is filled with the example cases
func WithSeed(enabled bool) Option {
	return func(s *Service) { s.seed = enabled }
}

// WithPicker overrides the randomness used for comment authors
func WithPicker(p theme.Picker) Option {
	return func(s *Service) { s.picker = p }
}

// New creates a square service over backend
func New(backend storage.Backend, opts ...Option) *Service {
	s := &Service{
		backend: backend,
		key:     storage.SquareKey,
		seed:    true,
		logger:  zap.NewNop(),
		now:     time.Now,
		newID:   uuid.NewString,
		picker:  theme.DefaultPicker,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cases lists public cases sorted and filtered
func (s *Service) Cases(ctx context.Context, f Filter) ([]model.PublicCase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cases, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.PublicCase, 0, len(cases))
	for _, c := range cases {
		if f.Persona != "" && c.Persona != f.Persona {
			continue
		}
		out = append(out, c)
	}

	if f.Sort == model.SortHottest {
		sort.SliceStable(out, func(i, j int) bool { return out[i].HotScore() > out[j].HotScore() })
	} else {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	}
	return out, nil
}

// Get returns one case without counting a view
func (s *Service) Get(ctx context.Context, id string) (*model.PublicCase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cases, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(cases, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &cases[i], nil
}

// Publish appends a case and verdict to the square
func (s *Service) Publish(ctx context.Context, c model.CaseData, v model.VerdictData, persona model.JudgePersona) (*model.PublicCase, error) {
	pc := model.PublicCase{
		ID:        s.newID(),
		Timestamp: s.now(),
		Persona:   persona,
		Case:      c,
		Verdict:   v.Clone(),
		Comments:  []model.Comment{},
	}

	err := s.mutate(ctx, func(cases []model.PublicCase) ([]model.PublicCase, error) {
		return append([]model.PublicCase{pc}, cases...), nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Case published", zap.String("id", pc.ID), zap.String("persona", string(persona)))
	return &pc, nil
}

// Vote adds one vote for side
func (s *Service) Vote(ctx context.Context, id string, side model.Side) (*model.PublicCase, error) {
	if side != model.SideUser && side != model.SidePartner {
		return nil, ErrInvalidSide
	}
	return s.update(ctx, id, func(c *model.PublicCase) error {
		if side == model.SideUser {
			c.Votes.User++
		} else {
			c.Votes.Partner++
		}
		return nil
	})
}

// Comment adds a comment, newest first, signed with a persona-flavoured name
func (s *Service) Comment(ctx context.Context, id, content string, persona model.JudgePersona) (*model.PublicCase, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyComment
	}
	if r := []rune(content); len(r) > MaxCommentRunes {
		content = string(r[:MaxCommentRunes])
	}

	author, avatar := theme.CommentAuthor(persona, s.picker)
	comment := model.Comment{
		ID:        s.newID(),
		Author:    author,
		Avatar:    avatar,
		Content:   content,
		Timestamp: s.now(),
	}
	return s.update(ctx, id, func(c *model.PublicCase) error {
		c.Comments = append([]model.Comment{comment}, c.Comments...)
		return nil
	})
}

// View increments the view counter and returns the case
func (s *Service) View(ctx context.Context, id string) (*model.PublicCase, error) {
	return s.update(ctx, id, func(c *model.PublicCase) error {
		c.Views++
		return nil
	})
}

func (s *Service) update(ctx context.Context, id string, fn func(*model.PublicCase) error) (*model.PublicCase, error) {
	var updated model.PublicCase
	err := s.mutate(ctx, func(cases []model.PublicCase) ([]model.PublicCase, error) {
		i := indexOf(cases, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err := fn(&cases[i]); err != nil {
			return nil, err
		}
		updated = cases[i]
		return cases, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// mutate performs one locked read-modify-write of the whole document
func (s *Service) mutate(ctx context.Context, fn func([]model.PublicCase) ([]model.PublicCase, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cases, err := s.load(ctx)
	if err != nil {
		return err
	}
	cases, err = fn(cases)
	if err != nil {
		return err
	}
	return storage.SaveJSON(ctx, s.backend, s.key, cases)
}

// load reads the document, seeding it on first use
func (s *Service) load(ctx context.Context) ([]model.PublicCase, error) {
	var cases []model.PublicCase
	found, err := storage.LoadJSON(ctx, s.backend, s.key, &cases)
	switch {
	case storage.IsCorrupt(err):
		// the next save replaces the unreadable document
		s.logger.Warn("Square document unreadable, starting over", zap.Error(err))
		cases, found = nil, false
	case err != nil:
		return nil, err
	}
	if found || !s.seed {
		return cases, nil
	}

	cases = seedCases(s.now())
	if err := storage.SaveJSON(ctx, s.backend, s.key, cases); err != nil {
		s.logger.Warn("Failed to persist seed cases", zap.Error(err))
	}
	return cases, nil
}

func indexOf(cases []model.PublicCase, id string) int {
	for i := range cases {
		if cases[i].ID == id {
			return i
		}
	}
	return -1
}
