package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-search/internal/ingestion"
	"github.com/jonathan/talent-search/internal/metrics"
	"github.com/jonathan/talent-search/internal/server/ratelimit"
	"github.com/jonathan/talent-search/internal/types"
)

type fakeSearcher struct {
	resp  *types.SearchResponse
	err   error
	query string
}

func (f *fakeSearcher) Search(_ context.Context, raw string) (*types.SearchResponse, error) {
	f.query = raw
	return f.resp, f.err
}

type fakeIngester struct {
	got   *ingestion.Request
	isNew bool
	err   error
}

func (f *fakeIngester) Ingest(_ context.Context, req ingestion.Request) (*ingestion.Result, error) {
	f.got = &req
	if f.err != nil {
		return nil, f.err
	}
	c := &types.Candidate{ID: "cand-1", Name: req.Name, Email: req.Email, RawText: req.ResumeText}
	return &ingestion.Result{CandidateID: c.ID, IsNew: f.isNew, Candidate: c}, nil
}

type fakeStore map[string]*types.Candidate

func (f fakeStore) GetCandidate(_ context.Context, id string) (*types.Candidate, error) {
	if id == "broken" {
		return nil, errors.New("connection refused")
	}
	return f[id], nil
}

type fixture struct {
	handler  http.Handler
	search   *fakeSearcher
	ingest   *fakeIngester
	registry *prometheus.Registry
}

func newFixture(t *testing.T, rl *ratelimit.Config) *fixture {
	t.Helper()
	if rl == nil {
		rl = &ratelimit.Config{Enabled: false}
	}
	reg := prometheus.NewRegistry()
	f := &fixture{
		search:   &fakeSearcher{resp: &types.SearchResponse{Query: "java", Results: []types.ScoredResult{}}},
		ingest:   &fakeIngester{isNew: true},
		registry: reg,
	}
	s := New(Config{Port: 0}, Deps{
		Search: f.search,
		Ingest: f.ingest,
		Store:  fakeStore{"cand-1": {ID: "cand-1", Name: "Priya Sharma"}},
		Jobs: []types.Job{
			{ID: "job1", Title: "Senior Java Developer", Location: "Pune", Skills: []string{"Java"}},
		},
		Metrics:   metrics.New(reg),
		Gatherer:  reg,
		RateLimit: rl,
	})
	f.handler = s.Handler()
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

const submission = `{"name":"Priya Sharma","email":"priya@example.com","location":"Pune","experience":7,"resume_text":"Java developer"}`

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestSearchEndpoint(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(httptest.NewRequest(http.MethodGet, "/search_candidates?query=senior+java+in+pune", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "senior java in pune", f.search.query)
	body := decode(t, w)
	assert.Equal(t, "java", body["query"])
	assert.Equal(t, []any{}, body["results"])
}

func TestSearchEndpoint_StoreFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.search.err = errors.New("failed to search candidates: connection refused")

	w := f.do(httptest.NewRequest(http.MethodGet, "/search_candidates?query=java", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode(t, w)["error"])
}

func TestListJobs(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(httptest.NewRequest(http.MethodGet, "/jobs", nil))

	require.Equal(t, http.StatusOK, w.Code)
	jobs := decode(t, w)["jobs"].([]any)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job1", jobs[0].(map[string]any)["id"])
}

func TestApply(t *testing.T) {
	t.Run("unknown job", func(t *testing.T) {
		f := newFixture(t, nil)

		w := f.do(httptest.NewRequest(http.MethodPost, "/apply/nope", strings.NewReader(submission)))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "job not found: nope", decode(t, w)["error"])
		assert.Nil(t, f.ingest.got)
	})

	t.Run("json body", func(t *testing.T) {
		f := newFixture(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/apply/job1", strings.NewReader(submission))
		req.Header.Set("Content-Type", "application/json")

		w := f.do(req)

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "cand-1", body["candidate_id"])
		assert.Equal(t, true, body["is_new"])
		assert.Equal(t, "Senior Java Developer", body["job_applied"].(map[string]any)["title"])
		assert.Equal(t, "Priya Sharma", body["resume"].(map[string]any)["name"])
		require.NotNil(t, f.ingest.got.Experience)
		assert.Equal(t, 7, *f.ingest.got.Experience)
	})

	t.Run("multipart upload", func(t *testing.T) {
		f := newFixture(t, nil)
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("name", "Priya Sharma"))
		require.NoError(t, mw.WriteField("email", "priya@example.com"))
		require.NoError(t, mw.WriteField("location", "Pune"))
		require.NoError(t, mw.WriteField("experience", "7"))
		part, err := mw.CreateFormFile("file", "priya.txt")
		require.NoError(t, err)
		_, err = part.Write([]byte("Java and Spring Boot developer"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/apply/job1", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := f.do(req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "priya.txt", f.ingest.got.Filename)
		assert.Equal(t, "Java and Spring Boot developer", f.ingest.got.ResumeText)
		assert.Equal(t, 7, *f.ingest.got.Experience)
	})

	t.Run("multipart bad experience", func(t *testing.T) {
		f := newFixture(t, nil)
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("experience", "seven"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/apply/job1", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := f.do(req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, f.ingest.got)
	})
}

func TestCreateCandidate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		isNew      bool
		ingestErr  error
		wantStatus int
		wantError  string
	}{
		{name: "new candidate", body: submission, isNew: true, wantStatus: http.StatusCreated},
		{name: "existing candidate", body: submission, isNew: false, wantStatus: http.StatusOK},
		{name: "invalid json", body: "{not json", wantStatus: http.StatusBadRequest, wantError: "bad request: invalid JSON body"},
		{
			name:       "validation error",
			body:       `{"name":"x"}`,
			ingestErr:  &ingestion.ValidationError{Field: "email", Message: "required"},
			wantStatus: http.StatusBadRequest,
			wantError:  "validation error: email - required",
		},
		{
			name:       "store failure",
			body:       submission,
			ingestErr:  errors.New("failed to upsert candidate: disk full"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.ingest.isNew = tt.isNew
			f.ingest.err = tt.ingestErr

			w := f.do(httptest.NewRequest(http.MethodPost, "/candidates", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decode(t, w)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
				return
			}
			assert.Equal(t, "cand-1", body["candidate_id"])
			assert.Equal(t, tt.isNew, body["is_new"])
		})
	}
}

func TestGetCandidate(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(httptest.NewRequest(http.MethodGet, "/candidates/cand-1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Priya Sharma", decode(t, w)["name"])

	w = f.do(httptest.NewRequest(http.MethodGet, "/candidates/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(httptest.NewRequest(http.MethodGet, "/candidates/broken", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORSMiddleware(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = f.do(httptest.NewRequest(http.MethodOptions, "/candidates", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, f.ingest.got)
}

func TestRateLimitMiddleware(t *testing.T) {
	f := newFixture(t, &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []ratelimit.EndpointConfig{
			{Path: "/candidates", Method: http.MethodPost, Limit: 1, Window: time.Minute},
		},
	})

	w := f.do(httptest.NewRequest(http.MethodPost, "/candidates", strings.NewReader(submission)))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = f.do(httptest.NewRequest(http.MethodPost, "/candidates", strings.NewReader(submission)))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	body := decode(t, w)
	assert.Equal(t, "rate_limit_exceeded", body["error"])
	assert.Contains(t, body, "retry_after")

	w = f.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, nil)

	f.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	f.do(httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	w := f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `talent_search_http_requests_total{route="GET /health",status="200"} 1`)
	assert.Contains(t, w.Body.String(), `route="unmatched",status="404"`)
}

func TestHTTPRequestCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	s := New(Config{}, Deps{
		Search:    &fakeSearcher{resp: &types.SearchResponse{Results: []types.ScoredResult{}}},
		Metrics:   m,
		Gatherer:  reg,
		RateLimit: &ratelimit.Config{Enabled: false},
	})

	for range 3 {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search_candidates?query=go", nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET /search_candidates", "200")))
}
