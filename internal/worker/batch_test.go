package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/puppyjudge/internal/model"
	"github.com/ppiankov/puppyjudge/internal/verdict"
)

// mockJudge implements verdict.Judge
type mockJudge struct {
	mu       sync.Mutex
	failFor  string
	requests []verdict.Request
}

func (m *mockJudge) RequestVerdict(ctx context.Context, req verdict.Request) (*model.VerdictData, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	time.Sleep(5 * time.Millisecond)
	if m.failFor != "" && strings.Contains(req.Case.Background, m.failFor) {
		return nil, &verdict.GenerationError{Stage: verdict.StageGenerate, Err: errors.New("503")}
	}
	return &model.VerdictData{
		CoreConflict:      req.Case.Background,
		UserPercentage:    50,
		PartnerPercentage: 50,
		CourtLevel:        req.Level,
	}, nil
}

func testCases() []Case {
	return []Case{
		{ID: "a", Persona: model.PersonaCute, Data: model.CaseData{Background: "洗碗"}},
		{ID: "b", Persona: model.PersonaToxic, Data: model.CaseData{Background: "迟到"}},
		{ID: "c", Persona: model.PersonaCute, Data: model.CaseData{Background: "忘记纪念日"}},
	}
}

func TestBatchProcessor_ProcessCases(t *testing.T) {
	judge := &mockJudge{}
	processor := NewBatchProcessor(judge, 2, NewLimiter(1000, 10), nil)

	results := processor.ProcessCases(context.Background(), testCases())

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, id := range []string{"a", "b", "c"} {
		r := results[i]
		if r.ID != id {
			t.Errorf("result %d: expected id %s, got %s", i, id, r.ID)
		}
		if r.Error != nil {
			t.Errorf("unexpected error for %s: %v", id, r.Error)
		}
		if r.Verdict == nil || r.Verdict.CourtLevel != model.CourtInitial {
			t.Errorf("expected INITIAL verdict for %s", id)
		}
	}
	if results[1].Persona != model.PersonaToxic {
		t.Errorf("expected persona carried through, got %s", results[1].Persona)
	}
	if len(judge.requests) != 3 {
		t.Errorf("expected exactly one request per case, got %d", len(judge.requests))
	}
}

func TestBatchProcessor_ProcessCases_Error(t *testing.T) {
	judge := &mockJudge{failFor: "迟到"}
	processor := NewBatchProcessor(judge, 3, nil, nil)

	results := processor.ProcessCases(context.Background(), testCases())

	var genErr *verdict.GenerationError
	if !errors.As(results[1].GetError(), &genErr) {
		t.Errorf("expected generation error for case b, got %v", results[1].GetError())
	}
	if results[0].Error != nil || results[2].Error != nil {
		t.Error("one failure must not affect other cases")
	}
}

func TestBatchProcessor_ProcessCases_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockJudge{}, 2, nil, nil)
	if results := processor.ProcessCases(context.Background(), nil); len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_Cancelled(t *testing.T) {
	judge := &mockJudge{}
	processor := NewBatchProcessor(judge, 1, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := processor.ProcessCases(ctx, testCases())

	for _, r := range results {
		if !errors.Is(r.Error, context.Canceled) {
			t.Errorf("case %s: expected context.Canceled, got %v", r.ID, r.Error)
		}
	}
	if len(judge.requests) != 0 {
		t.Errorf("no request should be sent after cancellation, got %d", len(judge.requests))
	}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestLoadCaseFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "chat.png"), pngHeader)
	writeFile(t, filepath.Join(dir, "cases.yaml"), []byte(`
cases:
  - id: dishes
    persona: toxic
    background: 周末谁洗碗
    user_side: 轮到你了
    partner_side: 我累了
    images: [chat.png]
  - background: 忘记纪念日
`))

	cases, err := LoadCaseFile(filepath.Join(dir, "cases.yaml"))
	if err != nil {
		t.Fatalf("LoadCaseFile failed: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}

	first := cases[0]
	if first.ID != "dishes" || first.Persona != model.PersonaToxic {
		t.Errorf("unexpected first case: %+v", first)
	}
	if first.Data.PartnerSide != "我累了" {
		t.Errorf("partner side not loaded: %q", first.Data.PartnerSide)
	}
	if len(first.Data.Images) != 1 || first.Data.Images[0].MIMEType != "image/png" {
		t.Errorf("expected one png image, got %+v", first.Data.Images)
	}

	if cases[1].ID != "case-2" || cases[1].Persona != model.PersonaCute {
		t.Errorf("expected defaults for unnamed case, got %+v", cases[1])
	}
}

func TestLoadCaseFile_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"duplicate id", "cases:\n  - id: x\n    background: a\n  - id: x\n    background: b\n", "duplicate"},
		{"bad persona", "cases:\n  - background: a\n    persona: grumpy\n", "unknown persona"},
		{"missing image", "cases:\n  - background: a\n    images: [nope.png]\n", "read image"},
		{"bad yaml", "cases: [\n", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".yaml")
			writeFile(t, path, []byte(tt.content))
			_, err := LoadCaseFile(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	if _, err := LoadCaseFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cases.yaml")
	writeFile(t, path, []byte("cases:\n  - id: one\n    background: 洗碗\n  - id: two\n    background: 迟到\n"))

	processor := NewBatchProcessor(&mockJudge{}, 2, nil, nil)
	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 2 || results[0].ID != "one" || results[1].ID != "two" {
		t.Errorf("unexpected results: %+v", results)
	}

	if _, err := processor.ProcessFile(context.Background(), filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReadImage_TooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.png")
	writeFile(t, path, make([]byte, model.MaxImageBytes+1))
	if _, err := ReadImage(path); err == nil {
		t.Error("expected size error")
	}
}
