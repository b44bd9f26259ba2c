package court

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ppiankov/puppyjudge/internal/model"
	"github.com/ppiankov/puppyjudge/internal/theme"
	"github.com/ppiankov/puppyjudge/internal/verdict"
)

// HistoryStore is the part of the history store the court needs
type HistoryStore interface {
	Add(ctx context.Context, c model.CaseData, v model.VerdictData, persona model.JudgePersona) (*model.HistoryItem, error)
	Get(ctx context.Context, id string) (*model.HistoryItem, error)
	Delete(ctx context.Context, id string) error
	RecordAppeal(ctx context.Context, id string, appeal model.AppealData, v model.VerdictData) (*model.HistoryItem, error)
}

// SquareFeed is the part of the public square the court needs
type SquareFeed interface {
	Publish(ctx context.Context, c model.CaseData, v model.VerdictData, persona model.JudgePersona) (*model.PublicCase, error)
	View(ctx context.Context, id string) (*model.PublicCase, error)
	Vote(ctx context.Context, id string, side model.Side) (*model.PublicCase, error)
	Comment(ctx context.Context, id, content string, persona model.JudgePersona) (*model.PublicCase, error)
}

// Notifier receives failure notices
type Notifier interface {
	Notify(n Notice)
}

// LogNotifier writes notices to a zap logger
type LogNotifier struct {
	Logger *zap.Logger
}

// Notify implements Notifier
func (n LogNotifier) Notify(notice Notice) {
	if n.Logger == nil {
		return
	}
	n.Logger.Warn("court notice",
		zap.String("persona", string(notice.Persona)),
		zap.String("message", notice.Message),
		zap.String("error", notice.Err))
}

// Court is the verdict workflow for one user session. All methods are safe for
// concurrent use; while a request is in flight every mutating call returns ErrBusy.
type Court struct {
	mu sync.Mutex

	judge    verdict.Judge
	history  HistoryStore
	square   SquareFeed
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	validate *validator.Validate
	cfg      Config

	screen       Screen
	overlay      Overlay
	persona      model.JudgePersona
	current      *model.CaseData
	verdict      *model.VerdictData
	historyID    string
	target       model.CourtLevel
	returnTo     Screen
	selected     *model.PublicCase
	busy         bool
	appealClosed bool
	lastNotice   *Notice
}

// Option configures a Court
type Option func(*Court)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Court) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(c *Court) { c.now = now }
}

// WithSleep overrides how the appeal transition delay is waited out
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Court) { c.sleep = sleep }
}

// WithNotifier sets where failure notices go
func WithNotifier(n Notifier) Option {
	return func(c *Court) { c.notifier = n }
}

// WithHistory attaches a history store
func WithHistory(h HistoryStore) Option {
	return func(c *Court) { c.history = h }
}

// WithSquare attaches the public square
func WithSquare(s SquareFeed) Option {
	return func(c *Court) { c.square = s }
}

// New creates a court in the Input screen
func New(judge verdict.Judge, cfg Config, opts ...Option) *Court {
	if cfg.AppealWindow <= 0 {
		cfg.AppealWindow = DefaultAppealWindow
	}
	if cfg.TransitionDelay < 0 {
		cfg.TransitionDelay = 0
	}
	if !cfg.DefaultPersona.Valid() {
		cfg.DefaultPersona = model.PersonaCute
	}
	c := &Court{
		judge:    judge,
		logger:   zap.NewNop(),
		now:      time.Now,
		sleep:    sleepContext,
		validate: model.NewValidator(),
		cfg:      cfg,
		screen:   ScreenInput,
		overlay:  OverlayNone,
		persona:  cfg.DefaultPersona,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.notifier == nil {
		c.notifier = LogNotifier{Logger: c.logger}
	}
	return c
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SetPersona switches the judge persona. Only allowed on the Input screen.
func (c *Court) SetPersona(p model.JudgePersona) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	if c.screen != ScreenInput {
		return fmt.Errorf("%w: persona is chosen on the input screen", ErrInvalidTransition)
	}
	if !p.Valid() {
		return fmt.Errorf("%w: unknown persona %q", verdict.ErrInvalidRequest, p)
	}
	c.persona = p
	return nil
}

// Submit files a new case with the INITIAL court. On success the court moves to
// Result and the verdict is recorded in history. On failure it returns to Input.
func (c *Court) Submit(ctx context.Context, cd model.CaseData) (*model.VerdictData, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	if c.screen != ScreenInput {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: submit from %s", ErrInvalidTransition, c.screen)
	}
	if err := c.validate.Struct(cd); err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", verdict.ErrInvalidRequest, err)
	}
	persona := c.persona
	c.busy = true
	c.screen = ScreenProcessing
	c.lastNotice = nil
	c.mu.Unlock()

	c.logger.Info("case submitted", zap.String("persona", string(persona)), zap.Int("images", len(cd.Images)))

	v, err := c.judge.RequestVerdict(ctx, verdict.Request{
		Case:    cd,
		Persona: persona,
		Level:   model.CourtInitial,
	})
	if err != nil {
		c.fail(persona, err, func() { c.screen = ScreenInput })
		return nil, err
	}

	historyID := ""
	if c.history != nil {
		item, herr := c.history.Add(ctx, cd, *v, persona)
		if herr != nil {
			c.logger.Warn("history add failed", zap.Error(herr))
		} else {
			historyID = item.ID
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	c.screen = ScreenResult
	c.overlay = OverlayNone
	c.setVerdict(cd, *v, persona, historyID)
	out := v.Clone()
	return &out, nil
}

// OpenAppeal shows the appeal form over the Result screen
func (c *Court) OpenAppeal() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	if c.screen != ScreenResult || c.overlay != OverlayNone || c.verdict == nil {
		return fmt.Errorf("%w: appeal needs a verdict on screen", ErrInvalidTransition)
	}
	if err := c.appealableLocked(); err != nil {
		return err
	}
	c.overlay = OverlayAppeal
	return nil
}

// CancelAppeal closes the appeal form
func (c *Court) CancelAppeal() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	if c.overlay != OverlayAppeal {
		return fmt.Errorf("%w: no appeal form open", ErrInvalidTransition)
	}
	c.overlay = OverlayNone
	return nil
}

// Appeal escalates the current verdict to the next court level. The transition
// delay is waited out before the request is sent. On failure the previous
// verdict stays on screen.
func (c *Court) Appeal(ctx context.Context, appeal model.AppealData) (*model.VerdictData, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	if c.screen != ScreenResult || c.overlay != OverlayAppeal || c.verdict == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: appeal form is not open", ErrInvalidTransition)
	}
	if err := c.appealableLocked(); err != nil {
		c.overlay = OverlayNone
		c.mu.Unlock()
		return nil, err
	}
	if err := c.validate.Struct(appeal); err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", verdict.ErrInvalidRequest, err)
	}
	next, _ := c.verdict.CourtLevel.Next()
	previous := c.verdict.Clone()
	cd := *c.current
	persona := c.persona
	historyID := c.historyID
	c.busy = true
	c.overlay = OverlayAppealTransition
	c.target = next
	c.lastNotice = nil
	c.mu.Unlock()

	c.logger.Info("appeal filed",
		zap.String("from", string(previous.CourtLevel)),
		zap.String("to", string(next)))

	if err := c.sleep(ctx, c.cfg.TransitionDelay); err != nil {
		c.mu.Lock()
		c.busy = false
		c.overlay = OverlayNone
		c.target = ""
		c.mu.Unlock()
		return nil, err
	}

	v, err := c.judge.RequestVerdict(ctx, verdict.Request{
		Case:     cd,
		Persona:  persona,
		Level:    next,
		Appeal:   &appeal,
		Previous: &previous,
	})
	if err != nil {
		c.fail(persona, err, func() {
			c.overlay = OverlayNone
			c.target = ""
		})
		return nil, err
	}

	if c.history != nil && historyID != "" {
		if _, herr := c.history.RecordAppeal(ctx, historyID, appeal, *v); herr != nil {
			c.logger.Warn("history appeal update failed", zap.String("id", historyID), zap.Error(herr))
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	c.overlay = OverlayNone
	c.target = ""
	c.setVerdict(cd, *v, persona, historyID)
	out := v.Clone()
	return &out, nil
}

// Reset clears the current case and returns to Input
func (c *Court) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	if c.screen != ScreenResult && c.screen != ScreenInput {
		return fmt.Errorf("%w: reset from %s", ErrInvalidTransition, c.screen)
	}
	c.screen = ScreenInput
	c.overlay = OverlayNone
	c.current = nil
	c.verdict = nil
	c.historyID = ""
	c.appealClosed = false
	return nil
}

// LoadHistory shows a stored verdict on the Result screen
func (c *Court) LoadHistory(ctx context.Context, id string) (*model.HistoryItem, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	if c.screen != ScreenInput && c.screen != ScreenResult {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: history opens from input or result", ErrInvalidTransition)
	}
	c.mu.Unlock()
	if c.history == nil {
		return nil, fmt.Errorf("%w: history is not available", ErrInvalidTransition)
	}

	item, err := c.history.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return nil, ErrBusy
	}
	c.screen = ScreenResult
	c.overlay = OverlayNone
	c.setVerdict(item.Case, item.Verdict, item.Persona, item.ID)
	return item, nil
}

// DeleteHistory removes a stored verdict. The screen does not change.
func (c *Court) DeleteHistory(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.mu.Unlock()
	if c.history == nil {
		return fmt.Errorf("%w: history is not available", ErrInvalidTransition)
	}
	if err := c.history.Delete(ctx, id); err != nil {
		return err
	}
	c.mu.Lock()
	if c.historyID == id {
		c.historyID = ""
	}
	c.mu.Unlock()
	return nil
}

// OpenSquare switches to the public square, remembering where to return
func (c *Court) OpenSquare() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	if c.screen != ScreenInput && c.screen != ScreenResult {
		return fmt.Errorf("%w: square opens from input or result", ErrInvalidTransition)
	}
	c.returnTo = c.screen
	c.screen = ScreenSquare
	c.overlay = OverlayNone
	return nil
}

// SelectCase opens one public case and counts the view
func (c *Court) SelectCase(ctx context.Context, id string) (*model.PublicCase, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	if c.screen != ScreenSquare {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: select a case from the square", ErrInvalidTransition)
	}
	c.mu.Unlock()
	if c.square == nil {
		return nil, fmt.Errorf("%w: square is not available", ErrInvalidTransition)
	}

	pc, err := c.square.View(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.screen = ScreenSquareDetail
	c.selected = pc
	return pc, nil
}

// VoteSelected casts a community vote on the open case
func (c *Court) VoteSelected(ctx context.Context, side model.Side) (*model.PublicCase, error) {
	return c.onSelected(ctx, func(id string) (*model.PublicCase, error) {
		return c.square.Vote(ctx, id, side)
	})
}

// CommentSelected adds a comment to the open case
func (c *Court) CommentSelected(ctx context.Context, content string) (*model.PublicCase, error) {
	c.mu.Lock()
	persona := c.persona
	c.mu.Unlock()
	return c.onSelected(ctx, func(id string) (*model.PublicCase, error) {
		return c.square.Comment(ctx, id, content, persona)
	})
}

func (c *Court) onSelected(ctx context.Context, fn func(id string) (*model.PublicCase, error)) (*model.PublicCase, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	if c.screen != ScreenSquareDetail || c.selected == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: no square case open", ErrInvalidTransition)
	}
	id := c.selected.ID
	c.mu.Unlock()

	pc, err := fn(id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected != nil && c.selected.ID == pc.ID {
		c.selected = pc
	}
	return pc, nil
}

// BackToSquare closes the case detail
func (c *Court) BackToSquare() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.screen != ScreenSquareDetail {
		return fmt.Errorf("%w: no square case open", ErrInvalidTransition)
	}
	c.screen = ScreenSquare
	c.selected = nil
	return nil
}

// LeaveSquare returns to the screen the square was opened from
func (c *Court) LeaveSquare() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.screen != ScreenSquare && c.screen != ScreenSquareDetail {
		return fmt.Errorf("%w: not in the square", ErrInvalidTransition)
	}
	c.selected = nil
	c.screen = c.returnTo
	if c.screen == ScreenResult && c.verdict == nil {
		c.screen = ScreenInput
	}
	if c.screen == "" {
		c.screen = ScreenInput
	}
	return nil
}

// Publish shares the verdict on screen to the public square
func (c *Court) Publish(ctx context.Context) (*model.PublicCase, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	if c.screen != ScreenResult || c.verdict == nil || c.current == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: nothing to publish", ErrInvalidTransition)
	}
	cd := *c.current
	v := c.verdict.Clone()
	persona := c.persona
	c.mu.Unlock()

	if c.square == nil {
		return nil, fmt.Errorf("%w: square is not available", ErrInvalidTransition)
	}
	pc, err := c.square.Publish(ctx, cd, v, persona)
	if err != nil {
		return nil, err
	}
	c.logger.Info("case published", zap.String("id", pc.ID))
	return pc, nil
}

// AppealRemaining is the time left to appeal the verdict on screen, never negative
func (c *Court) AppealRemaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remainingLocked()
}

// CanAppeal reports whether an appeal could be opened right now
func (c *Court) CanAppeal() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.busy && c.screen == ScreenResult && c.appealableLocked() == nil
}

// Snapshot returns a copy of the current state
func (c *Court) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		Screen:      c.screen,
		Overlay:     c.overlay,
		Persona:     c.persona,
		TargetLevel: c.target,
		HistoryID:   c.historyID,
		Busy:        c.busy,
	}
	if c.current != nil {
		cd := *c.current
		s.Case = &cd
	}
	if c.verdict != nil {
		v := c.verdict.Clone()
		s.Verdict = &v
		deadline := v.AppealDeadline(c.cfg.AppealWindow)
		s.AppealDeadline = &deadline
		s.AppealRemaining = c.remainingLocked()
		s.CanAppeal = !c.busy && c.screen == ScreenResult && c.appealableLocked() == nil
	}
	if c.selected != nil {
		pc := *c.selected
		s.Selected = &pc
	}
	if c.lastNotice != nil {
		n := *c.lastNotice
		s.LastNotice = &n
	}
	return s
}

func (c *Court) setVerdict(cd model.CaseData, v model.VerdictData, persona model.JudgePersona, historyID string) {
	cp := v.Clone()
	c.current = &cd
	c.verdict = &cp
	c.persona = persona
	c.historyID = historyID
	c.appealClosed = false
}

// appealableLocked latches the expiry so a verdict never becomes appealable again.
func (c *Court) appealableLocked() error {
	if c.verdict == nil {
		return fmt.Errorf("%w: no verdict", ErrInvalidTransition)
	}
	if c.verdict.CourtLevel.IsFinal() {
		return ErrFinalVerdict
	}
	if c.appealClosed {
		return ErrAppealExpired
	}
	if !c.now().Before(c.verdict.AppealDeadline(c.cfg.AppealWindow)) {
		c.appealClosed = true
		return ErrAppealExpired
	}
	return nil
}

func (c *Court) remainingLocked() time.Duration {
	if c.verdict == nil || c.appealClosed {
		return 0
	}
	left := c.verdict.AppealDeadline(c.cfg.AppealWindow).Sub(c.now())
	if left < 0 {
		return 0
	}
	return left
}

// fail restores state after a failed request and emits one notice for
// configuration and generation failures.
func (c *Court) fail(persona model.JudgePersona, err error, restore func()) {
	c.mu.Lock()
	c.busy = false
	restore()
	var notice *Notice
	if isNoticeWorthy(err) {
		notice = &Notice{
			Persona: persona,
			Message: theme.Lookup(persona).FailureNotice,
			Err:     err.Error(),
			At:      c.now(),
		}
		c.lastNotice = notice
	}
	c.mu.Unlock()

	c.logger.Error("verdict request failed", zap.String("persona", string(persona)), zap.Error(err))
	if notice != nil && c.notifier != nil {
		c.notifier.Notify(*notice)
	}
}

func isNoticeWorthy(err error) bool {
	var cfgErr *verdict.ConfigurationError
	var genErr *verdict.GenerationError
	return errors.As(err, &cfgErr) || errors.As(err, &genErr)
}
