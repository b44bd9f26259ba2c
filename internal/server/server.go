// Package server exposes the court, history and town square over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/ppiankov/puppyjudge/internal/app"
	"github.com/ppiankov/puppyjudge/internal/court"
	"github.com/ppiankov/puppyjudge/internal/model"
	"github.com/ppiankov/puppyjudge/internal/worker"
)

// defaultMaxBodyBytes covers ten base64 encoded 4 MiB screenshots
const defaultMaxBodyBytes = 64 << 20

const shutdownTimeout = 10 * time.Second

// Server is the HTTP API
type Server struct {
	app      *app.App
	logger   *zap.Logger
	sessions *gocache.Cache
	limiter  *worker.Limiter
	validate *validator.Validate
	now      func() time.Time
	courtOps []court.Option
	maxBody  int64
	handler  http.Handler
}

// Option configures a Server
type Option func(*Server)

// WithClock overrides the time source used by sessions
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
		s.courtOps = append(s.courtOps, court.WithClock(now))
	}
}

// WithCourtOptions adds options to every session's court
func WithCourtOptions(opts ...court.Option) Option {
	return func(s *Server) { s.courtOps = append(s.courtOps, opts...) }
}

// WithMaxBodyBytes caps request bodies; larger bodies get 413
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// New creates the server and its router
func New(a *app.App, opts ...Option) *Server {
	cfg := a.Config.Server
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}

	s := &Server{
		app:      a,
		logger:   a.Logger.Named("http"),
		sessions: gocache.New(ttl, ttl/2),
		limiter:  worker.NewLimiter(cfg.RequestsPerSecond, cfg.BurstSize),
		validate: model.NewValidator(),
		now:      time.Now,
		maxBody:  defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handler = s.routes()
	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on cfg.Addr until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	cfg := s.app.Config.Server
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info("listening", zap.String("addr", cfg.Addr))

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

type session struct {
	ID    string
	Court *court.Court
}

func (s *Server) newSession(id string) *session {
	sess := &session{ID: id, Court: s.app.NewCourt(s.courtOps...)}
	s.sessions.SetDefault(id, sess)
	return sess
}

// lookupSession refreshes the idle timer on every hit
func (s *Server) lookupSession(id string) (*session, bool) {
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, false
	}
	sess := v.(*session)
	s.sessions.SetDefault(id, sess)
	return sess, true
}
