package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/puppyjudge/internal/model"
	"github.com/ppiankov/puppyjudge/internal/verdict"
)

// judgeKey is the limiter bucket shared by every batch job
const judgeKey = "judge"

// CaseFile is the YAML document read by the batch command
type CaseFile struct {
	Cases []CaseSpec `yaml:"cases"`
}

// CaseSpec is one dispute in a case file. Image paths are relative to the file.
type CaseSpec struct {
	ID          string   `yaml:"id"`
	Persona     string   `yaml:"persona"`
	Background  string   `yaml:"background"`
	UserSide    string   `yaml:"user_side"`
	PartnerSide string   `yaml:"partner_side"`
	Images      []string `yaml:"images"`
}

// Case is a loaded case ready to be judged
type Case struct {
	ID      string
	Persona model.JudgePersona
	Data    model.CaseData
}

// VerdictJob requests one INITIAL verdict
type VerdictJob struct {
	Case    Case
	Judge   verdict.Judge
	Limiter *Limiter
	Logger  *zap.Logger
}

// Execute executes the verdict job
func (j *VerdictJob) Execute(ctx context.Context) Result {
	res := &VerdictResult{ID: j.Case.ID, Persona: j.Case.Persona, Case: j.Case.Data}
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	if err := ctx.Err(); err != nil {
		res.Error = err
		return res
	}
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, judgeKey); err != nil {
			res.Error = fmt.Errorf("rate limit: %w", err)
			return res
		}
	}

	v, err := j.Judge.RequestVerdict(ctx, verdict.Request{
		Case:    j.Case.Data,
		Persona: j.Case.Persona,
		Level:   model.CourtInitial,
	})
	if err != nil {
		res.Error = err
		if j.Logger != nil {
			j.Logger.Warn("batch case failed", zap.String("id", j.Case.ID), zap.Error(err))
		}
		return res
	}
	res.Verdict = v
	return res
}

// VerdictResult represents the result of a verdict job
type VerdictResult struct {
	ID       string
	Persona  model.JudgePersona
	Case     model.CaseData
	Verdict  *model.VerdictData
	Duration time.Duration
	Error    error
}

// GetError returns the error from the verdict result
func (r *VerdictResult) GetError() error {
	return r.Error
}

// BatchProcessor judges many cases concurrently
type BatchProcessor struct {
	judge   verdict.Judge
	pool    *Pool
	limiter *Limiter
	logger  *zap.Logger
}

// NewBatchProcessor creates a new batch processor. limiter may be nil.
func NewBatchProcessor(judge verdict.Judge, concurrency int, limiter *Limiter, logger *zap.Logger) *BatchProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchProcessor{
		judge:   judge,
		pool:    NewPool(concurrency),
		limiter: limiter,
		logger:  logger,
	}
}

// ProcessCases judges every case and returns results in input order
func (b *BatchProcessor) ProcessCases(ctx context.Context, cases []Case) []*VerdictResult {
	if len(cases) == 0 {
		return []*VerdictResult{}
	}

	jobs := make([]Job, len(cases))
	for i, c := range cases {
		jobs[i] = &VerdictJob{Case: c, Judge: b.judge, Limiter: b.limiter, Logger: b.logger}
	}

	b.logger.Info("batch started", zap.Int("cases", len(cases)), zap.Int("workers", b.pool.Workers()))
	results := b.pool.Run(ctx, jobs)
	b.logger.Info("batch finished", zap.Int("cases", len(cases)), zap.Int("failed", Failed(results)))

	out := make([]*VerdictResult, len(results))
	for i, r := range results {
		out[i] = r.(*VerdictResult)
	}
	return out
}

// ProcessFile loads a case file and judges every case in it
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*VerdictResult, error) {
	cases, err := LoadCaseFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("load cases: %w", err)
	}
	return b.ProcessCases(ctx, cases), nil
}

// LoadCaseFile reads a YAML case file, assigns ids to unnamed cases and
// inlines referenced images.
func LoadCaseFile(filePath string) ([]Case, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	var file CaseFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filePath, err)
	}

	baseDir := filepath.Dir(filePath)
	seen := make(map[string]bool)
	cases := make([]Case, 0, len(file.Cases))

	for i, spec := range file.Cases {
		id := strings.TrimSpace(spec.ID)
		if id == "" {
			id = fmt.Sprintf("case-%d", i+1)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate case id %q", id)
		}
		seen[id] = true

		persona := model.PersonaCute
		if spec.Persona != "" {
			p, ok := model.ParsePersona(spec.Persona)
			if !ok {
				return nil, fmt.Errorf("case %s: unknown persona %q", id, spec.Persona)
			}
			persona = p
		}

		cd := model.CaseData{
			Background:  spec.Background,
			UserSide:    spec.UserSide,
			PartnerSide: spec.PartnerSide,
		}
		for _, p := range spec.Images {
			if !filepath.IsAbs(p) {
				p = filepath.Join(baseDir, p)
			}
			img, err := ReadImage(p)
			if err != nil {
				return nil, fmt.Errorf("case %s: %w", id, err)
			}
			cd.Images = append(cd.Images, img)
		}

		cases = append(cases, Case{ID: id, Persona: persona, Data: cd})
	}

	return cases, nil
}

// ReadImage loads an image file and sniffs its MIME type
func ReadImage(path string) (model.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Image{}, fmt.Errorf("read image: %w", err)
	}
	if len(data) > model.MaxImageBytes {
		return model.Image{}, fmt.Errorf("image %s is %d bytes, limit is %d", path, len(data), model.MaxImageBytes)
	}
	return model.NewImage(data, ""), nil
}
