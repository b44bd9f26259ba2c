package verdict

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ppiankov/puppyjudge/internal/llm"
	"github.com/ppiankov/puppyjudge/internal/model"
	"github.com/ppiankov/puppyjudge/internal/prompt"
)

// Request is the input to one verdict generation
type Request struct {
	Case     model.CaseData
	Persona  model.JudgePersona
	Level    model.CourtLevel
	Appeal   *model.AppealData
	Previous *model.VerdictData
}

// Judge produces verdicts. The court and batch runner depend on this, not on Orchestrator.
type Judge interface {
	RequestVerdict(ctx context.Context, req Request) (*model.VerdictData, error)
}

// Orchestrator validates a request, renders the prompt, performs exactly one
// schema-constrained generation call and decodes the reply.
type Orchestrator struct {
	provider    llm.Provider
	unavailable error
	logger      *zap.Logger
	now         func() time.Time
	normalize   bool
	model       string
	maxTokens   int
	temperature float64
	validate    *validator.Validate
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock overrides time.Now for stamping verdicts
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithNormalization toggles the local contract enforcement pass
func WithNormalization(enabled bool) Option {
	return func(o *Orchestrator) { o.normalize = enabled }
}

// WithModel overrides the provider's configured model
func WithModel(name string, maxTokens int, temperature float64) Option {
	return func(o *Orchestrator) {
		o.model = name
		o.maxTokens = maxTokens
		o.temperature = temperature
	}
}

// WithUnavailableReason records why no provider could be built,
// surfaced inside the ConfigurationError.
func WithUnavailableReason(err error) Option {
	return func(o *Orchestrator) { o.unavailable = err }
}

// New creates an orchestrator. A nil provider yields ConfigurationError on every request.
func New(provider llm.Provider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider:  provider,
		logger:    zap.NewNop(),
		now:       time.Now,
		normalize: true,
		validate:  model.NewValidator(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Configured reports whether a provider is present
func (o *Orchestrator) Configured() bool {
	return o.provider != nil
}

// RequestVerdict generates a verdict for req
func (o *Orchestrator) RequestVerdict(ctx context.Context, req Request) (*model.VerdictData, error) {
	if o.provider == nil {
		return nil, &ConfigurationError{Reason: "no verdict generator configured", Err: o.unavailable}
	}
	if err := o.checkRequest(req); err != nil {
		return nil, err
	}

	level := req.Level
	if !level.Valid() {
		level = model.CourtInitial
	}
	persona := req.Persona
	if !persona.Valid() {
		persona = model.PersonaCute
	}

	p, err := prompt.Build(prompt.Request{
		Persona:  persona,
		Level:    level,
		Case:     req.Case,
		Appeal:   req.Appeal,
		Previous: req.Previous,
	})
	if err != nil {
		return nil, &GenerationError{Stage: StagePrompt, Err: err}
	}

	log := o.logger.With(
		zap.String("provider", o.provider.Name()),
		zap.String("persona", string(persona)),
		zap.String("court_level", string(level)),
		zap.Int("images", len(p.Images)),
		zap.Bool("appeal", req.Appeal != nil),
	)
	log.Info("Requesting verdict")
	start := time.Now()

	resp, err := o.provider.Generate(ctx, llm.GenerateRequest{
		System:      p.System,
		Prompt:      p.Text,
		Images:      p.Images,
		Schema:      Schema(),
		SchemaName:  SchemaName,
		Model:       o.model,
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	})
	if err != nil {
		log.Error("Verdict generation failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, &GenerationError{Stage: StageGenerate, Err: err}
	}
	log.Debug("Raw verdict reply", zap.String("text", resp.Text))

	v, err := o.decode(resp.Text)
	if err != nil {
		log.Error("Verdict reply rejected", zap.Error(err))
		return nil, err
	}

	if o.normalize {
		for _, fix := range Normalize(v, persona, level) {
			log.Warn("Corrected verdict", zap.String("field", fix.Field), zap.String("detail", fix.Detail))
		}
	}
	if len(v.AnalysisPoints) != model.AnalysisPointCount {
		err := fmt.Errorf("analysisPoints has %d entries, want %d", len(v.AnalysisPoints), model.AnalysisPointCount)
		log.Error("Verdict reply rejected", zap.Error(err))
		return nil, &GenerationError{Stage: StageValidate, Err: err}
	}
	if prompt.ShortAdviceRequired(persona, level) && strings.TrimSpace(v.ShortAdvice) == "" {
		log.Warn("Verdict is missing short advice")
	}

	v.CourtLevel = level
	v.Timestamp = o.now()

	log.Info("Verdict ready",
		zap.String("model", resp.Model),
		zap.Int("tokens", resp.TokensUsed),
		zap.Float64("user_pct", v.UserPercentage),
		zap.Float64("partner_pct", v.PartnerPercentage),
		zap.Duration("elapsed", time.Since(start)),
	)
	return v, nil
}

func (o *Orchestrator) checkRequest(req Request) error {
	if err := o.validate.Struct(req.Case); err != nil {
		return fmt.Errorf("%w: case: %s", ErrInvalidRequest, describe(err))
	}
	if req.Appeal == nil {
		return nil
	}
	if req.Previous == nil {
		return fmt.Errorf("%w: appeal without a previous verdict", ErrInvalidRequest)
	}
	if err := o.validate.Struct(req.Appeal); err != nil {
		return fmt.Errorf("%w: appeal: %s", ErrInvalidRequest, describe(err))
	}
	return nil
}

// wireVerdict mirrors the response schema. Pointers distinguish absent fields from zero values.
type wireVerdict struct {
	CuteOpening        *string  `json:"cuteOpening" validate:"required"`
	CoreConflict       *string  `json:"coreConflict" validate:"required"`
	EventAnalysis      *string  `json:"eventAnalysis" validate:"required"`
	AnalysisPoints     []string `json:"analysisPoints" validate:"required"`
	UserPercentage     *float64 `json:"userPercentage" validate:"required"`
	PartnerPercentage  *float64 `json:"partnerPercentage" validate:"required"`
	UserSideSummary    *string  `json:"userSideSummary" validate:"required"`
	PartnerSideSummary *string  `json:"partnerSideSummary" validate:"required"`
	ShortAdvice        *string  `json:"shortAdvice" validate:"required"`
	LongAdvice         *string  `json:"longAdvice" validate:"required"`
}

func (o *Orchestrator) decode(text string) (*model.VerdictData, error) {
	text = llm.StripCodeFence(text)
	if text == "" {
		return nil, &GenerationError{Stage: StageDecode, Err: llm.ErrEmptyResponse}
	}

	var w wireVerdict
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return nil, &GenerationError{Stage: StageDecode, Err: err}
	}
	if err := o.validate.Struct(w); err != nil {
		return nil, &GenerationError{Stage: StageValidate, Err: fmt.Errorf("missing fields: %s", describe(err))}
	}

	return &model.VerdictData{
		CuteOpening:        *w.CuteOpening,
		CoreConflict:       *w.CoreConflict,
		EventAnalysis:      *w.EventAnalysis,
		AnalysisPoints:     w.AnalysisPoints,
		UserPercentage:     *w.UserPercentage,
		PartnerPercentage:  *w.PartnerPercentage,
		UserSideSummary:    *w.UserSideSummary,
		PartnerSideSummary: *w.PartnerSideSummary,
		ShortAdvice:        *w.ShortAdvice,
		LongAdvice:         *w.LongAdvice,
	}, nil
}

// describe flattens validator errors to "Field(tag)" pairs
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s(%s)", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
