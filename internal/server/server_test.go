package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ppiankov/puppyjudge/internal/app"
	"github.com/ppiankov/puppyjudge/internal/court"
	"github.com/ppiankov/puppyjudge/internal/llm"
	"github.com/ppiankov/puppyjudge/internal/model"
)

type stubProvider struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *stubProvider) Name() string                         { return "stub" }
func (s *stubProvider) IsAvailable(ctx context.Context) bool { return true }

func (s *stubProvider) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	b, _ := json.Marshal(map[string]any{
		"cuteOpening":        "汪",
		"coreConflict":       "谁洗碗",
		"eventAnalysis":      "分析",
		"analysisPoints":     []string{"一", "二", "三"},
		"userPercentage":     45,
		"partnerPercentage":  55,
		"userSideSummary":    "a",
		"partnerSideSummary": "b",
		"shortAdvice":        "去洗",
		"longAdvice":         "一起洗",
	})
	return &llm.GenerateResponse{Text: string(b)}, nil
}

type testEnv struct {
	server   *Server
	provider *stubProvider
	app      *app.App
}

func newTestEnv(t *testing.T, mutate func(*model.Config)) *testEnv {
	t.Helper()
	cfg := *model.DefaultConfig()
	cfg.Storage.Backend = "memory"
	cfg.Storage.SeedSquare = true
	cfg.Court.TransitionDelay = 0
	cfg.Server.RequestsPerSecond = 100
	cfg.Server.BurstSize = 100
	if mutate != nil {
		mutate(&cfg)
	}

	provider := &stubProvider{}
	a, err := app.New(context.Background(), cfg, app.WithLogger(zaptest.NewLogger(t)), app.WithProvider(provider))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	return &testEnv{server: New(a), provider: provider, app: a}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (e *testEnv) createSession(t *testing.T, persona string) string {
	t.Helper()
	var body any
	if persona != "" {
		body = map[string]string{"persona": persona}
	}
	rec := e.do(t, http.MethodPost, "/v1/sessions", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[sessionResponse](t, rec).ID
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	resp := decode[errorResponse](t, rec)
	assert.Equal(t, code, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Message)
	assert.NotEmpty(t, resp.Error.RequestID)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, true, decode[map[string]any](t, rec)["configured"])
}

func TestSessionFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.createSession(t, "toxic")
	base := "/v1/sessions/" + id

	rec := env.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[sessionResponse](t, rec).State
	assert.Equal(t, court.ScreenInput, state.Screen)
	assert.Equal(t, model.PersonaToxic, state.Persona)

	rec = env.do(t, http.MethodPost, base+"/submit", map[string]any{"background": "周末谁洗碗", "userSide": "轮到你了"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	vr := decode[verdictResponse](t, rec)
	assert.Equal(t, model.CourtInitial, vr.Verdict.CourtLevel)
	assert.Equal(t, court.ScreenResult, vr.State.Screen)
	assert.True(t, vr.State.CanAppeal)

	rec = env.do(t, http.MethodPost, base+"/appeal", map[string]any{"reason": "不服"})
	assertError(t, rec, http.StatusConflict, "invalid_transition")

	rec = env.do(t, http.MethodPost, base+"/appeal/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, court.OverlayAppeal, decode[sessionResponse](t, rec).State.Overlay)

	rec = env.do(t, http.MethodPost, base+"/appeal", map[string]any{"reason": "我昨天洗过了"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.CourtIntermediate, decode[verdictResponse](t, rec).Verdict.CourtLevel)

	env.do(t, http.MethodPost, base+"/appeal/open", nil)
	rec = env.do(t, http.MethodPost, base+"/appeal", map[string]any{"reason": "还是不服"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.CourtHigh, decode[verdictResponse](t, rec).Verdict.CourtLevel)

	rec = env.do(t, http.MethodPost, base+"/appeal/open", nil)
	assertError(t, rec, http.StatusUnprocessableEntity, "final_verdict")
	assert.Equal(t, 3, env.provider.calls)

	rec = env.do(t, http.MethodPost, base+"/publish", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	published := decode[model.PublicCase](t, rec)
	assert.Equal(t, model.CourtHigh, published.Verdict.CourtLevel)

	rec = env.do(t, http.MethodPost, base+"/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, court.ScreenInput, decode[sessionResponse](t, rec).State.Screen)
}

func TestSubmit_Errors(t *testing.T) {
	env := newTestEnv(t, nil)
	base := "/v1/sessions/" + env.createSession(t, "")

	rec := env.do(t, http.MethodPost, base+"/submit", map[string]any{"background": "  "})
	assertError(t, rec, http.StatusBadRequest, "invalid_request")

	rec = env.do(t, http.MethodPost, base+"/submit", map[string]any{"background": "x", "mood": "angry"})
	assertError(t, rec, http.StatusBadRequest, "invalid_request")

	env.provider.err = errors.New("upstream 503")
	rec = env.do(t, http.MethodPost, base+"/submit", map[string]any{"background": "吵架"})
	assertError(t, rec, http.StatusBadGateway, "generation_failed")

	rec = env.do(t, http.MethodGet, base, nil)
	state := decode[sessionResponse](t, rec).State
	assert.Equal(t, court.ScreenInput, state.Screen)
	require.NotNil(t, state.LastNotice)
	assert.Contains(t, state.LastNotice.Message, "API Error")

	rec = env.do(t, http.MethodPost, "/v1/sessions/nope/submit", map[string]any{"background": "吵架"})
	assertError(t, rec, http.StatusNotFound, "not_found")
}

func TestSubmit_BodyTooLarge(t *testing.T) {
	env := newTestEnv(t, nil)
	env.server = New(env.app, WithMaxBodyBytes(64))
	base := "/v1/sessions/" + env.createSession(t, "")

	rec := env.do(t, http.MethodPost, base+"/submit", map[string]any{"background": strings.Repeat("吵", 100)})
	assertError(t, rec, http.StatusRequestEntityTooLarge, "body_too_large")

	rec = env.do(t, http.MethodPost, base+"/submit", map[string]any{"background": "吵架"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestSubmit_NotConfigured(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	cfg := *model.DefaultConfig()
	cfg.Storage.Backend = "memory"
	a, err := app.New(context.Background(), cfg, app.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	defer func() { _ = a.Close() }()
	env := &testEnv{server: New(a), app: a}

	base := "/v1/sessions/" + env.createSession(t, "")
	rec := env.do(t, http.MethodPost, base+"/submit", map[string]any{"background": "吵架"})
	assertError(t, rec, http.StatusServiceUnavailable, "not_configured")
}

func TestSubmit_RateLimited(t *testing.T) {
	env := newTestEnv(t, func(cfg *model.Config) {
		cfg.Server.RequestsPerSecond = 0.01
		cfg.Server.BurstSize = 1
	})
	base := "/v1/sessions/" + env.createSession(t, "")

	rec := env.do(t, http.MethodPost, base+"/submit", map[string]any{"background": "吵架"})
	require.Equal(t, http.StatusOK, rec.Code)
	env.do(t, http.MethodPost, base+"/reset", nil)

	rec = env.do(t, http.MethodPost, base+"/submit", map[string]any{"background": "又吵架"})
	assertError(t, rec, http.StatusTooManyRequests, "rate_limited")
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, 1, env.provider.calls)

	// non generating routes are not limited
	rec = env.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSetPersona(t *testing.T) {
	env := newTestEnv(t, nil)
	base := "/v1/sessions/" + env.createSession(t, "")

	rec := env.do(t, http.MethodPut, base+"/persona", map[string]string{"persona": "TOXIC"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.PersonaToxic, decode[sessionResponse](t, rec).State.Persona)

	rec = env.do(t, http.MethodPut, base+"/persona", map[string]string{"persona": "grumpy"})
	assertError(t, rec, http.StatusBadRequest, "invalid_request")
}

func TestHistoryRoutes(t *testing.T) {
	env := newTestEnv(t, nil)
	base := "/v1/sessions/" + env.createSession(t, "")
	env.do(t, http.MethodPost, base+"/submit", map[string]any{"background": "周末谁洗碗"})

	rec := env.do(t, http.MethodGet, "/v1/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[struct {
		Items []model.HistoryItem `json:"items"`
	}](t, rec).Items
	require.Len(t, items, 1)
	id := items[0].ID

	rec = env.do(t, http.MethodGet, "/v1/history/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, decode[model.HistoryItem](t, rec).ID)

	rec = env.do(t, http.MethodGet, "/v1/history/"+id+"?format=markdown", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/markdown"))
	assert.Contains(t, rec.Body.String(), "谁洗碗")

	other := "/v1/sessions/" + env.createSession(t, "")
	rec = env.do(t, http.MethodPost, other+"/history/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[sessionResponse](t, rec).State
	assert.Equal(t, court.ScreenResult, state.Screen)
	assert.Equal(t, id, state.HistoryID)

	rec = env.do(t, http.MethodDelete, "/v1/history/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, "/v1/history/"+id, nil)
	assertError(t, rec, http.StatusNotFound, "not_found")
}

func TestHistoryClear(t *testing.T) {
	env := newTestEnv(t, nil)
	base := "/v1/sessions/" + env.createSession(t, "")
	for _, bg := range []string{"周末谁洗碗", "谁忘了纪念日"} {
		rec := env.do(t, http.MethodPost, base+"/reset", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		rec = env.do(t, http.MethodPost, base+"/submit", map[string]any{"background": bg})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := env.do(t, http.MethodDelete, "/v1/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decode[map[string]any](t, rec)["deleted"])

	rec = env.do(t, http.MethodGet, "/v1/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[struct {
		Items []model.HistoryItem `json:"items"`
	}](t, rec).Items)
}

func TestSquareRoutes(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/v1/square?sort=hottest", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cases := decode[struct {
		Cases []model.PublicCase `json:"cases"`
	}](t, rec).Cases
	require.Len(t, cases, 2)
	assert.Equal(t, "mock-2", cases[0].ID)

	rec = env.do(t, http.MethodGet, "/v1/square?persona=cute", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[struct {
		Cases []model.PublicCase `json:"cases"`
	}](t, rec).Cases, 1)

	rec = env.do(t, http.MethodGet, "/v1/square?persona=grumpy", nil)
	assertError(t, rec, http.StatusBadRequest, "invalid_request")

	rec = env.do(t, http.MethodGet, "/v1/square/mock-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	viewed := decode[model.PublicCase](t, rec)

	rec = env.do(t, http.MethodPost, "/v1/square/mock-1/votes", map[string]string{"side": "user"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, viewed.Votes.User+1, decode[model.PublicCase](t, rec).Votes.User)

	rec = env.do(t, http.MethodPost, "/v1/square/mock-1/votes", map[string]string{"side": "both"})
	assertError(t, rec, http.StatusBadRequest, "invalid_request")

	rec = env.do(t, http.MethodPost, "/v1/square/mock-1/comments", map[string]string{"content": "支持", "persona": "toxic"})
	require.Equal(t, http.StatusCreated, rec.Code)
	commented := decode[model.PublicCase](t, rec)
	assert.Equal(t, "支持", commented.Comments[0].Content)
	assert.Contains(t, commented.Comments[0].Author, "毒舌路人")

	rec = env.do(t, http.MethodPost, "/v1/square/missing/comments", map[string]string{"content": "hi"})
	assertError(t, rec, http.StatusNotFound, "not_found")
}

func TestSessionSquareNavigation(t *testing.T) {
	env := newTestEnv(t, nil)
	base := "/v1/sessions/" + env.createSession(t, "")

	rec := env.do(t, http.MethodPost, base+"/square/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, court.ScreenSquare, decode[sessionResponse](t, rec).State.Screen)

	rec = env.do(t, http.MethodPost, base+"/square/mock-2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[sessionResponse](t, rec).State
	assert.Equal(t, court.ScreenSquareDetail, state.Screen)
	require.NotNil(t, state.Selected)
	assert.Equal(t, "mock-2", state.Selected.ID)

	rec = env.do(t, http.MethodPost, base+"/square/vote", map[string]string{"side": "partner"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	state = decode[sessionResponse](t, rec).State
	require.NotNil(t, state.Selected)
	assert.Equal(t, 13, state.Selected.Votes.Partner)

	rec = env.do(t, http.MethodPost, base+"/square/comment", map[string]string{"content": "站TA"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	state = decode[sessionResponse](t, rec).State
	require.NotNil(t, state.Selected)
	require.NotEmpty(t, state.Selected.Comments)
	assert.Equal(t, "站TA", state.Selected.Comments[0].Content)

	rec = env.do(t, http.MethodPost, base+"/square/comment", map[string]string{"content": "   "})
	assertError(t, rec, http.StatusBadRequest, "invalid_request")

	rec = env.do(t, http.MethodPost, base+"/square/back", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPost, base+"/square/vote", map[string]string{"side": "user"})
	assertError(t, rec, http.StatusConflict, "invalid_transition")

	rec = env.do(t, http.MethodPost, base+"/square/leave", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, court.ScreenInput, decode[sessionResponse](t, rec).State.Screen)

	rec = env.do(t, http.MethodPost, base+"/square/leave", nil)
	assertError(t, rec, http.StatusConflict, "invalid_transition")
}

func TestSessionExpiry(t *testing.T) {
	env := newTestEnv(t, func(cfg *model.Config) { cfg.Server.SessionTTL = 50 * time.Millisecond })
	id := env.createSession(t, "")

	time.Sleep(120 * time.Millisecond)
	rec := env.do(t, http.MethodGet, "/v1/sessions/"+id, nil)
	assertError(t, rec, http.StatusNotFound, "not_found")
}

func TestRecover(t *testing.T) {
	env := newTestEnv(t, nil)
	h := env.server.recoverMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRun_Shutdown(t *testing.T) {
	env := newTestEnv(t, func(cfg *model.Config) { cfg.Server.Addr = "127.0.0.1:0" })
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.server.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
