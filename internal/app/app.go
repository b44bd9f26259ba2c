// Package app wires configuration, logging, storage and the verdict generator
// into the services the CLI and HTTP server use.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/puppyjudge/internal/court"
	"github.com/ppiankov/puppyjudge/internal/history"
	"github.com/ppiankov/puppyjudge/internal/llm"
	"github.com/ppiankov/puppyjudge/internal/logging"
	"github.com/ppiankov/puppyjudge/internal/model"
	"github.com/ppiankov/puppyjudge/internal/square"
	"github.com/ppiankov/puppyjudge/internal/storage"
	"github.com/ppiankov/puppyjudge/internal/verdict"
)

// App owns every long-lived dependency
type App struct {
	Config  model.Config
	Logger  *zap.Logger
	Storage storage.Backend
	Judge   *verdict.Orchestrator
	History *history.Store
	Square  *square.Service

	provider   llm.Provider
	ownsLogger bool
}

type options struct {
	logger   *zap.Logger
	backend  storage.Backend
	provider llm.Provider
}

// Option overrides a dependency, mostly for tests
type Option func(*options)

// WithLogger uses l instead of building one from cfg.Logging
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBackend uses b instead of opening cfg.Storage
func WithBackend(b storage.Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithProvider uses p instead of building one from cfg.LLM
func WithProvider(p llm.Provider) Option {
	return func(o *options) { o.provider = p }
}

// New validates cfg and builds the app. A provider that cannot be built (for
// example a missing API key) does not fail startup: verdict requests then
// return a ConfigurationError while history and the square keep working.
func New(ctx context.Context, cfg model.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := model.NewValidator().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &App{Config: cfg, Logger: o.logger}
	if a.Logger == nil {
		logger, err := logging.New(cfg.Logging)
		if err != nil {
			return nil, err
		}
		a.Logger = logger
		a.ownsLogger = true
	}

	a.Storage = o.backend
	if a.Storage == nil {
		backend, err := storage.Open(ctx, cfg.Storage)
		if err != nil {
			a.syncLogger()
			return nil, fmt.Errorf("open storage: %w", err)
		}
		a.Storage = backend
	}
	a.Logger.Debug("storage ready", zap.String("backend", cfg.Storage.Backend))

	var unavailable error
	a.provider = o.provider
	if a.provider == nil {
		p, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
		switch {
		case err != nil:
			unavailable = err
			level := zap.ErrorLevel
			if errors.Is(err, llm.ErrMissingAPIKey) {
				level = zap.WarnLevel
			}
			a.Logger.Check(level, "verdict generator unavailable").Write(
				zap.String("provider", cfg.LLM.Provider), zap.Error(err))
		case p == nil:
			unavailable = errors.New("no LLM provider configured")
		default:
			a.provider = p
		}
	}
	if a.provider != nil {
		a.Logger.Info("verdict generator ready",
			zap.String("provider", a.provider.Name()),
			zap.String("model", cfg.LLM.Model))
	}

	a.Judge = verdict.New(a.provider,
		verdict.WithLogger(a.Logger.Named("verdict")),
		verdict.WithNormalization(cfg.Court.NormalizeVerdict),
		verdict.WithModel(cfg.LLM.Model, cfg.LLM.MaxTokens, cfg.LLM.Temperature),
		verdict.WithUnavailableReason(unavailable),
	)
	a.History = history.New(a.Storage, history.WithLogger(a.Logger.Named("history")))
	a.Square = square.New(a.Storage,
		square.WithLogger(a.Logger.Named("square")),
		square.WithSeed(cfg.Storage.SeedSquare),
	)

	return a, nil
}

// Provider returns the verdict generator, nil when unavailable
func (a *App) Provider() llm.Provider {
	return a.provider
}

// NewCourt creates a state machine for one user session
func (a *App) NewCourt(opts ...court.Option) *court.Court {
	base := []court.Option{
		court.WithLogger(a.Logger.Named("court")),
		court.WithHistory(a.History),
		court.WithSquare(a.Square),
	}
	return court.New(a.Judge, court.ConfigFromModel(a.Config.Court), append(base, opts...)...)
}

// Close releases storage and flushes the logger
func (a *App) Close() error {
	var err error
	if a.Storage != nil {
		if cerr := a.Storage.Close(); cerr != nil {
			err = fmt.Errorf("close storage: %w", cerr)
		}
	}
	a.syncLogger()
	return err
}

func (a *App) syncLogger() {
	if a.ownsLogger && a.Logger != nil {
		_ = a.Logger.Sync()
	}
}
