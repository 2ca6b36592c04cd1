package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	screenlore "github.com/screenlore/go-screenlore"
	"github.com/screenlore/go-screenlore/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubService struct {
	resp     *types.QueryResponse
	err      error
	lastReq  types.QueryRequest
	reloaded bool
}

func (s *stubService) Answer(ctx context.Context, req types.QueryRequest) (*types.QueryResponse, error) {
	s.lastReq = req
	return s.resp, s.err
}

func (s *stubService) BaselineAnswer(ctx context.Context, req types.QueryRequest) (*types.QueryResponse, error) {
	s.lastReq = req
	return s.resp, s.err
}

func (s *stubService) Reload() { s.reloaded = true }

func testRouter(svc screenlore.Service) *gin.Engine {
	engine := gin.New()
	h := NewQueryHandler(svc, nil)
	engine.POST("/api/query", h.Query)
	engine.POST("/api/query/baseline", h.Baseline)
	engine.POST("/admin/reload", h.Reload)
	return engine
}

func canned() *types.QueryResponse {
	return &types.QueryResponse{
		Question: "Who is Frank Sheeran?",
		Answer: types.Answer{
			AnswerText:       "Frank Sheeran is connected to:\n- Russell Bufalino (works_with, stable)",
			ModeUsed:         types.ModeKG,
			QueryType:        types.QueryTypeFact,
			Confidence:       0.6,
			EntitiesUsed:     []string{"char_frank_sheeran"},
			EventsUsed:       []string{},
			StateChangesUsed: []string{},
			EvidenceRefs:     []string{"sc_002:blk_001"},
			ReasoningNotes:   "kg: ranked 1 edges",
		},
	}
}

func postJSON(t *testing.T, engine *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)
	return rec
}

func TestQuerySuccess(t *testing.T) {
	svc := &stubService{resp: canned()}
	rec := postJSON(t, testRouter(svc), "/api/query", `{"question": "Who is Frank Sheeran?"}`)

	require.Equal(t, 200, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Who is Frank Sheeran?", body["question"])
	assert.Equal(t, "kg", body["mode_used"])
	assert.Equal(t, "fact", body["query_type"])
	// The comparison key is always present, null when not requested.
	_, ok := body["baseline_comparison"]
	assert.True(t, ok)
	assert.Nil(t, body["baseline_comparison"])
	for _, key := range []string{"answer_text", "confidence", "entities_used", "events_used",
		"state_changes_used", "evidence_refs", "reasoning_notes"} {
		assert.Contains(t, body, key)
	}
}

func TestQueryRequestDefaults(t *testing.T) {
	svc := &stubService{resp: canned()}
	postJSON(t, testRouter(svc), "/api/query", `{"question": "Who is Frank?"}`)

	assert.Equal(t, types.ModeAuto, svc.lastReq.PreferredMode)
	assert.True(t, svc.lastReq.IncludeEvidence)
	assert.False(t, svc.lastReq.IncludeBaselineComparison)

	postJSON(t, testRouter(svc), "/api/query",
		`{"question": "Who is Frank?", "preferred_mode": "ntg", "include_evidence": false, "include_baseline_comparison": true}`)
	assert.Equal(t, types.ModeNTG, svc.lastReq.PreferredMode)
	assert.False(t, svc.lastReq.IncludeEvidence)
	assert.True(t, svc.lastReq.IncludeBaselineComparison)
}

func TestQueryRejectsUnknownMode(t *testing.T) {
	for _, mode := range []string{"bogus", "kgg", "BASELINE"} {
		svc := &stubService{resp: canned()}
		rec := postJSON(t, testRouter(svc), "/api/query",
			fmt.Sprintf(`{"question": "Who is Frank?", "preferred_mode": %q}`, mode))

		assert.Equal(t, 400, rec.Code, "mode %q", mode)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "invalid_request", body["error"])
		// The service is never reached.
		assert.Empty(t, svc.lastReq.Question)
	}

	// Every request-mode value still passes.
	for _, mode := range []string{"auto", "kg", "ntg", "hybrid", "baseline_rag", "baseline", ""} {
		svc := &stubService{resp: canned()}
		rec := postJSON(t, testRouter(svc), "/api/query",
			fmt.Sprintf(`{"question": "Who is Frank?", "preferred_mode": %q}`, mode))
		assert.Equal(t, 200, rec.Code, "mode %q", mode)
	}
}

func TestBaselineRejectsUnknownMode(t *testing.T) {
	svc := &stubService{resp: canned()}
	rec := postJSON(t, testRouter(svc), "/api/query/baseline",
		`{"question": "Who is Frank?", "preferred_mode": "bogus"}`)
	assert.Equal(t, 400, rec.Code)
	assert.Empty(t, svc.lastReq.Question)
}

func TestQueryMissingQuestion(t *testing.T) {
	svc := &stubService{resp: canned()}
	rec := postJSON(t, testRouter(svc), "/api/query", `{}`)

	assert.Equal(t, 400, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid_request", body["error"])
}

func TestQueryMalformedJSON(t *testing.T) {
	svc := &stubService{resp: canned()}
	rec := postJSON(t, testRouter(svc), "/api/query", `{"question": `)
	assert.Equal(t, 400, rec.Code)
}

func TestQueryErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		errorCode string
	}{
		{"empty question", screenlore.ErrEmptyQuestion, 400, "invalid_request"},
		{"invalid mode", fmt.Errorf("%w: %q", screenlore.ErrInvalidMode, "bogus"), 400, "invalid_request"},
		{"contract violation", fmt.Errorf("answer: %w", screenlore.ErrContractViolation), 500, "internal_fault"},
		{"unexpected", errors.New("disk on fire"), 500, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{err: tt.err}
			rec := postJSON(t, testRouter(svc), "/api/query", `{"question": "  "}`)
			assert.Equal(t, tt.status, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.errorCode, body["error"])
		})
	}
}

func TestBaselineOmitsComparisonField(t *testing.T) {
	svc := &stubService{resp: canned()}
	rec := postJSON(t, testRouter(svc), "/api/query/baseline", `{"question": "Who is Frank Sheeran?"}`)

	require.Equal(t, 200, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "answer_text")
	_, ok := body["baseline_comparison"]
	assert.False(t, ok)
}

func TestReload(t *testing.T) {
	svc := &stubService{resp: canned()}
	rec := postJSON(t, testRouter(svc), "/admin/reload", `{}`)

	assert.Equal(t, 200, rec.Code)
	assert.True(t, svc.reloaded)
}

func TestHealthEndpoints(t *testing.T) {
	engine := gin.New()
	h := NewHealthHandler()
	engine.GET("/health", h.HealthCheck)
	engine.GET("/ready", h.ReadinessCheck)

	for _, path := range []string{"/health", "/ready"} {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, 200, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "screenlore", body["service"])
	}
}
