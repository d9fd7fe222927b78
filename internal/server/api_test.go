package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"talentscreen/internal/ai"
	"talentscreen/internal/config"
	tsErrors "talentscreen/internal/errors"
	"talentscreen/internal/observability"
	"talentscreen/internal/store"
	"talentscreen/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	result types.MatchResult
	usage  *ai.TokenUsage
	err    error
}

func (g *stubGateway) ScreenResume(ctx context.Context, input types.MatchInput) (types.MatchResult, *ai.TokenUsage, error) {
	if g.err != nil {
		return types.MatchResult{}, nil, g.err
	}
	return g.result, g.usage, nil
}

func (g *stubGateway) GetModelInfo(ctx context.Context) *ai.ModelInfo {
	return &ai.ModelInfo{Name: "gemini-test", Available: true}
}

func (g *stubGateway) GetCircuitBreakerStats() map[string]any {
	return map[string]any{"enabled": false}
}

func (g *stubGateway) Close() error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Observability: config.ObservabilityConfig{
			Enabled: false,
			HealthCheck: config.HealthCheckConfig{
				Timeout: 2 * time.Second,
			},
		},
	}
}

// newTestServer wires a server against a temp database and a stub AI gateway.
func newTestServer(t *testing.T, gateway ai.Gateway, cfg ServerConfig) (*Server, http.Handler) {
	t.Helper()

	logger, err := tsErrors.New("error")
	require.NoError(t, err)

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	appCfg := testConfig()
	srv := NewServer(appCfg, cfg, st, gateway, logger)

	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{Enabled: false}, appCfg)
	require.NoError(t, err)

	return srv, srv.setupRoutes(om)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func createJob(t *testing.T, handler http.Handler, title string) types.Job {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/api/jobs", CreateJobRequest{
		Title:       title,
		Department:  "Engineering",
		Description: "Build and ship backend services",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decodeBody[types.Job](t, rec)
}

func TestCreateAndGetJob(t *testing.T) {
	_, handler := newTestServer(t, &stubGateway{}, ServerConfig{})

	job := createJob(t, handler, "Backend Engineer")
	assert.NotZero(t, job.ID)
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Equal(t, "Engineering", job.Department)

	rec := doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/jobs/%d", job.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decodeBody[types.Job](t, rec)
	assert.Equal(t, job.ID, fetched.ID)

	rec = doJSON(t, handler, http.MethodGet, "/api/jobs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	jobs := decodeBody[[]types.Job](t, rec)
	require.Len(t, jobs, 1)
	assert.Equal(t, job.ID, jobs[0].ID)
}

func TestCreateJobValidation(t *testing.T) {
	_, handler := newTestServer(t, &stubGateway{}, ServerConfig{})

	tests := []struct {
		name      string
		req       CreateJobRequest
		wantField string
	}{
		{"missing title", CreateJobRequest{Description: "desc"}, "title"},
		{"missing description", CreateJobRequest{Title: "Engineer"}, "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, handler, http.MethodPost, "/api/jobs", tt.req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeBody[ErrorResponse](t, rec)
			assert.Equal(t, tt.wantField, resp.Field)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestGetJobNotFound(t *testing.T) {
	_, handler := newTestServer(t, &stubGateway{}, ServerConfig{})

	rec := doJSON(t, handler, http.MethodGet, "/api/jobs/9999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "Job not found", resp.Message)
}

func TestGetJobInvalidID(t *testing.T) {
	_, handler := newTestServer(t, &stubGateway{}, ServerConfig{})

	rec := doJSON(t, handler, http.MethodGet, "/api/jobs/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "Invalid job ID", resp.Message)
}

func TestAnalyzeResume(t *testing.T) {
	gateway := &stubGateway{
		result: types.MatchResult{
			MatchScore:            82,
			Summary:               "Strong match for the role.",
			Strengths:             []string{"Go experience"},
			Weaknesses:            []string{"No Kubernetes"},
			MissingQualifications: []string{},
		},
		usage: &ai.TokenUsage{InputTokens: 100, OutputTokens: 40, TotalTokens: 140},
	}
	_, handler := newTestServer(t, gateway, ServerConfig{})

	job := createJob(t, handler, "Backend Engineer")

	rec := doJSON(t, handler, http.MethodPost, "/api/analyze", AnalyzeRequest{
		JobID:         job.ID,
		ResumeText:    "Five years of Go development.",
		CandidateName: "Jamie Rivera",
		FileName:      "jamie.txt",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	analysis := decodeBody[types.Analysis](t, rec)
	assert.Equal(t, types.AnalysisCompleted, analysis.Status)
	assert.Equal(t, 82, analysis.MatchScore)
	assert.Equal(t, "Strong match for the role.", analysis.Summary)
	assert.Equal(t, []string{"Go experience"}, analysis.Strengths)

	rec = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/analyses/%d", analysis.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decodeBody[types.Analysis](t, rec)
	assert.Equal(t, analysis.ID, fetched.ID)
	assert.Equal(t, job.ID, fetched.JobID)

	rec = doJSON(t, handler, http.MethodGet, "/api/analyses", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	analyses := decodeBody[[]types.Analysis](t, rec)
	require.Len(t, analyses, 1)
}

func TestAnalyzeValidation(t *testing.T) {
	_, handler := newTestServer(t, &stubGateway{}, ServerConfig{})

	rec := doJSON(t, handler, http.MethodPost, "/api/analyze", AnalyzeRequest{
		JobID:      1,
		ResumeText: "resume text",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "candidateName", resp.Field)
}

func TestAnalyzeJobNotFound(t *testing.T) {
	_, handler := newTestServer(t, &stubGateway{}, ServerConfig{})

	rec := doJSON(t, handler, http.MethodPost, "/api/analyze", AnalyzeRequest{
		JobID:         42,
		ResumeText:    "resume text",
		CandidateName: "Jamie Rivera",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "Job not found", resp.Message)
}

func TestAnalyzeAIFailure(t *testing.T) {
	gateway := &stubGateway{
		err: tsErrors.NewAIError(tsErrors.ErrCodeAIServiceFailed, "model unavailable", nil),
	}
	_, handler := newTestServer(t, gateway, ServerConfig{})

	job := createJob(t, handler, "Backend Engineer")

	rec := doJSON(t, handler, http.MethodPost, "/api/analyze", AnalyzeRequest{
		JobID:         job.ID,
		ResumeText:    "resume text",
		CandidateName: "Jamie Rivera",
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "AI Analysis failed", resp.Message)

	// The failed attempt must remain visible in the analyses list
	rec = doJSON(t, handler, http.MethodGet, "/api/analyses", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	analyses := decodeBody[[]types.Analysis](t, rec)
	require.Len(t, analyses, 1)
	assert.Equal(t, types.AnalysisFailed, analyses[0].Status)
}

func TestAuthMiddleware(t *testing.T) {
	_, handler := newTestServer(t, &stubGateway{}, ServerConfig{
		APIKeys: []string{"secret-key-12345"},
	})

	// Missing key
	rec := doJSON(t, handler, http.MethodGet, "/api/jobs", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Invalid key
	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.Header.Set("X-API-Key", "wrong-key")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid X-API-Key header
	req = httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.Header.Set("X-API-Key", "secret-key-12345")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Valid Bearer token fallback
	req = httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.Header.Set("Authorization", "Bearer secret-key-12345")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Health and stats stay open
	rec = doJSON(t, handler, http.MethodGet, "/stats", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestSizeLimit(t *testing.T) {
	_, handler := newTestServer(t, &stubGateway{}, ServerConfig{
		MaxRequestSize: 64,
	})

	rec := doJSON(t, handler, http.MethodPost, "/api/jobs", CreateJobRequest{
		Title:       "Engineer",
		Description: string(bytes.Repeat([]byte("x"), 256)),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimitByIP(t *testing.T) {
	_, handler := newTestServer(t, &stubGateway{}, ServerConfig{
		RateLimit: &config.RateLimitConfig{
			Enabled:        true,
			RequestsPerMin: 1,
			BurstCapacity:  1,
			ByIP:           true,
		},
	})

	rec := doJSON(t, handler, http.MethodGet, "/api/jobs", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/jobs", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "Too many requests", resp.Message)
}

func TestHealthEndpoint(t *testing.T) {
	_, handler := newTestServer(t, &stubGateway{}, ServerConfig{})

	rec := doJSON(t, handler, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "talentscreen", body["service"])
	assert.Contains(t, body, "ai_model")
	assert.Contains(t, body, "storage")
}
