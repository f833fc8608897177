package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/job-intel/internal/fetch"
	"github.com/jonathan/job-intel/internal/pipeline"
	"github.com/jonathan/job-intel/internal/server/ratelimit"
	"github.com/jonathan/job-intel/internal/types"
)

const juniorPosting = `Junior Python Developer
Entry-level position on our data team. You need 5+ years of Python and SQL.
Salary: $50,000-$60,000 per year. Remote within the US.`

// stubAnalyzer returns a fixed error.
type stubAnalyzer struct {
	err error
}

func (s stubAnalyzer) Analyze(context.Context, *types.AnalyzeRequest) (*types.AnalyzeResponse, error) {
	return nil, s.err
}

type stubStats fetch.CacheStats

func (s stubStats) Stats() fetch.CacheStats { return fetch.CacheStats(s) }

func newTestServer(t *testing.T, analyzer Analyzer, cfg Config) http.Handler {
	t.Helper()
	if analyzer == nil {
		analyzer = pipeline.New(nil, nil)
	}
	if cfg.RateLimit == nil {
		cfg.RateLimit = ratelimit.NewConfig(false, 0, nil)
	}
	s := New(cfg, analyzer, stubStats{Hits: 3, Misses: 1, Entries: 2})
	t.Cleanup(s.rateLimiter.Stop)
	return s.Handler()
}

func postJSON(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func analyzeBody(t *testing.T, req types.AnalyzeRequest) string {
	t.Helper()
	data, err := json.Marshal(req)
	require.NoError(t, err)
	return string(data)
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(t, nil, Config{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok","cache":{"hits":3,"misses":1,"entries":2}}`, w.Body.String())
}

func TestAnalyzeEndpoint_Success(t *testing.T) {
	h := newTestServer(t, nil, Config{})

	w := postJSON(t, h, analyzeBody(t, types.AnalyzeRequest{JobPosting: types.JobPosting{Text: juniorPosting}}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp types.AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.ExplicitSkills, "python")
	require.NotNil(t, resp.SalaryRange)
	assert.Equal(t, 50000, resp.SalaryRange.Min)
	assert.Equal(t, w.Header().Get(RequestIDHeader), resp.RequestID)
	assert.NotEmpty(t, resp.RequestID)
}

func TestAnalyzeEndpoint_HonorsIncomingRequestID(t *testing.T) {
	h := newTestServer(t, nil, Config{})

	req := httptest.NewRequest(http.MethodPost, "/analyze",
		strings.NewReader(analyzeBody(t, types.AnalyzeRequest{JobPosting: types.JobPosting{Text: juniorPosting}})))
	req.Header.Set(RequestIDHeader, "trace-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "trace-123", w.Header().Get(RequestIDHeader))
	assert.Contains(t, w.Body.String(), `"request_id":"trace-123"`)
}

func TestAnalyzeEndpoint_MalformedJSON(t *testing.T) {
	h := newTestServer(t, nil, Config{})

	for _, body := range []string{"", "{", `{"job_posting": "text"}`, "[]"} {
		w := postJSON(t, h, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestAnalyzeEndpoint_BodyTooLarge(t *testing.T) {
	h := newTestServer(t, nil, Config{})

	body := `{"job_posting":{"text":"` + strings.Repeat("a", MaxBodyBytes) + `"}}`
	w := postJSON(t, h, body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestAnalyzeEndpoint_ValidationError(t *testing.T) {
	h := newTestServer(t, nil, Config{})

	w := postJSON(t, h, `{"job_posting":{"text":"too short"}}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation error", body.Error)
	assert.Equal(t, "job_posting.text", body.Field)
	assert.NotEmpty(t, body.RequestID)
}

func TestAnalyzeEndpoint_FetchError(t *testing.T) {
	fetchErr := &pipeline.FetchError{
		URL:   "http://127.0.0.1/",
		Cause: &fetch.Error{URL: "http://127.0.0.1/", Kind: fetch.KindUnsafeURL, Message: "address 127.0.0.1 is not public"},
	}
	h := newTestServer(t, stubAnalyzer{err: fetchErr}, Config{})

	w := postJSON(t, h, `{"job_posting":{"url":"http://127.0.0.1/"}}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "fetch error")
	assert.Contains(t, w.Body.String(), "not public")
}

func TestAnalyzeEndpoint_InternalErrorIsGeneric(t *testing.T) {
	internal := &pipeline.InternalError{Stage: "critique", Cause: errors.New("index out of range [7] with length 3")}
	h := newTestServer(t, stubAnalyzer{err: internal}, Config{})

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"job_posting":{"url":"https://example.com"}}`))
	req.Header.Set(RequestIDHeader, "req-9")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error","request_id":"req-9"}`, w.Body.String())
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	h := newTestServer(t, nil, Config{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/analyze", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCORS(t *testing.T) {
	h := newTestServer(t, nil, Config{CORSOrigins: []string{"http://localhost:8000"}})

	allowed := httptest.NewRequest(http.MethodGet, "/health", nil)
	allowed.Header.Set("Origin", "http://localhost:8000")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, allowed)
	assert.Equal(t, "http://localhost:8000", w.Header().Get("Access-Control-Allow-Origin"))

	other := httptest.NewRequest(http.MethodGet, "/health", nil)
	other.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, other)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	preflight := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	preflight.Header.Set("Origin", "http://localhost:8000")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, preflight)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestCORS_Wildcard(t *testing.T) {
	h := newTestServer(t, nil, Config{CORSOrigins: []string{"*"}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	cfg := &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []ratelimit.EndpointConfig{
			{Path: "/analyze", Method: "POST", Limit: 1, Window: time.Hour, Burst: 1},
		},
	}
	h := newTestServer(t, stubAnalyzer{err: &pipeline.ValidationError{Message: "bad"}}, Config{RateLimit: cfg})

	first := postJSON(t, h, `{}`)
	assert.Equal(t, http.StatusBadRequest, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", first.Header().Get("X-RateLimit-Remaining"))

	second := postJSON(t, h, `{}`)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "3600", second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), "rate_limit_exceeded")

	// health stays reachable
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	s := New(Config{Port: 0, RateLimit: ratelimit.NewConfig(false, 0, nil)}, stubAnalyzer{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestJSONResponse(t *testing.T) {
	s := &Server{logger: zap.NewNop()}

	w := httptest.NewRecorder()
	s.jsonResponse(w, http.StatusCreated, map[string]int{"n": 1})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "{\"n\":1}\n", w.Body.String())
}
