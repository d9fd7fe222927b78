package screening

import (
	"context"
	"path/filepath"
	"testing"

	"talentscreen/internal/ai"
	"talentscreen/internal/errors"
	"talentscreen/internal/store"
	"talentscreen/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGateway returns a canned result or error and records its input
type stubGateway struct {
	result    types.MatchResult
	err       error
	lastInput types.MatchInput
	calls     int
}

func (s *stubGateway) ScreenResume(ctx context.Context, input types.MatchInput) (types.MatchResult, *ai.TokenUsage, error) {
	s.calls++
	s.lastInput = input
	if s.err != nil {
		return types.MatchResult{}, nil, s.err
	}
	return s.result, &ai.TokenUsage{InputTokens: 100, OutputTokens: 50, TotalTokens: 150}, nil
}

func (s *stubGateway) GetModelInfo(ctx context.Context) *ai.ModelInfo {
	return &ai.ModelInfo{Name: "stub", Available: true}
}

func (s *stubGateway) GetCircuitBreakerStats() map[string]any {
	return map[string]any{"overall_healthy": true}
}

func (s *stubGateway) Close() error { return nil }

func newTestOrchestrator(t *testing.T, gateway ai.Gateway) (*Orchestrator, store.Store) {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	logger, err := errors.New("error")
	require.NoError(t, err)

	return NewOrchestrator(s, gateway, logger), s
}

func createJob(t *testing.T, s store.Store) *types.Job {
	t.Helper()

	job, err := s.CreateJob(context.Background(), types.JobInput{
		Title:        "Backend Engineer",
		Department:   "Engineering",
		Description:  "Build Go services.",
		Requirements: "- 5 years of Go",
	})
	require.NoError(t, err)
	return job
}

func TestSubmitCompletesAnalysis(t *testing.T) {
	gateway := &stubGateway{result: types.MatchResult{
		MatchScore:            85,
		Summary:               "Strong match.",
		Strengths:             []string{"Go", "SQL"},
		Weaknesses:            []string{"No Kubernetes"},
		MissingQualifications: []string{},
	}}
	orch, s := newTestOrchestrator(t, gateway)
	ctx := context.Background()
	job := createJob(t, s)

	analysis, usage, err := orch.Submit(ctx, types.AnalyzeRequest{
		JobID:         job.ID,
		CandidateName: "Jane Candidate",
		FileName:      "jane.txt",
		ResumeText:    "A decade of Go.",
	})
	require.NoError(t, err)

	assert.Equal(t, types.AnalysisCompleted, analysis.Status)
	assert.Equal(t, 85, analysis.MatchScore)
	assert.Equal(t, "Strong match.", analysis.Summary)
	assert.Equal(t, []string{"Go", "SQL"}, analysis.Strengths)
	assert.Equal(t, job.ID, analysis.JobID)
	require.NotNil(t, usage)
	assert.Equal(t, int64(150), usage.TotalTokens)

	// The gateway saw the stored job and resume content
	assert.Equal(t, "Backend Engineer", gateway.lastInput.JobTitle)
	assert.Equal(t, "A decade of Go.", gateway.lastInput.ResumeText)

	// Resume record persisted
	resume, err := s.GetResume(ctx, analysis.ResumeID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Candidate", resume.CandidateName)
}

func TestSubmitValidation(t *testing.T) {
	orch, s := newTestOrchestrator(t, &stubGateway{})
	ctx := context.Background()
	job := createJob(t, s)

	tests := []struct {
		name  string
		req   types.AnalyzeRequest
		field string
	}{
		{
			name:  "missing jobId",
			req:   types.AnalyzeRequest{CandidateName: "A", ResumeText: "r"},
			field: "jobId",
		},
		{
			name:  "missing candidateName",
			req:   types.AnalyzeRequest{JobID: job.ID, ResumeText: "r"},
			field: "candidateName",
		},
		{
			name:  "blank resumeText",
			req:   types.AnalyzeRequest{JobID: job.ID, CandidateName: "A", ResumeText: "   "},
			field: "resumeText",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := orch.Submit(ctx, tt.req)

			require.Error(t, err)
			appErr, ok := err.(*errors.AppError)
			require.True(t, ok)
			assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
			assert.Equal(t, tt.field, appErr.Field())
		})
	}

	// Validation failures must not persist anything
	resumes, err := s.ListResumes(ctx)
	require.NoError(t, err)
	assert.Empty(t, resumes)
	analyses, err := s.ListAnalyses(ctx)
	require.NoError(t, err)
	assert.Empty(t, analyses)
}

func TestSubmitJobNotFound(t *testing.T) {
	gateway := &stubGateway{}
	orch, s := newTestOrchestrator(t, gateway)
	ctx := context.Background()

	_, _, err := orch.Submit(ctx, types.AnalyzeRequest{
		JobID:         9999,
		CandidateName: "A",
		ResumeText:    "r",
	})

	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeNotFound, appErr.Type)
	assert.Equal(t, "Job not found", appErr.Message)
	assert.Zero(t, gateway.calls)

	// Nothing persisted for an unknown job
	resumes, err := s.ListResumes(ctx)
	require.NoError(t, err)
	assert.Empty(t, resumes)
}

func TestSubmitAIFailureMarksAnalysisFailed(t *testing.T) {
	gateway := &stubGateway{err: errors.NewAIError(errors.ErrCodeAIServiceFailed, "backend down", nil)}
	orch, s := newTestOrchestrator(t, gateway)
	ctx := context.Background()
	job := createJob(t, s)

	_, _, err := orch.Submit(ctx, types.AnalyzeRequest{
		JobID:         job.ID,
		CandidateName: "Jane Candidate",
		ResumeText:    "A decade of Go.",
	})

	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeAI, appErr.Type)

	// Resume and analysis survive the failure; analysis is marked failed
	analyses, err := s.ListAnalyses(ctx)
	require.NoError(t, err)
	require.Len(t, analyses, 1)
	assert.Equal(t, types.AnalysisFailed, analyses[0].Status)
	assert.Equal(t, "AI analysis failed. Please try again.", analyses[0].Summary)
	assert.Equal(t, 0, analyses[0].MatchScore)

	resumes, err := s.ListResumes(ctx)
	require.NoError(t, err)
	require.Len(t, resumes, 1)
	assert.Equal(t, "Jane Candidate", resumes[0].CandidateName)
}

func TestSubmitPendingRecordPrecedesAICall(t *testing.T) {
	// A gateway that inspects the store mid-flight to observe the pending row
	var observed *types.Analysis
	orch, s := newTestOrchestrator(t, nil)
	gateway := &checkingGateway{check: func() {
		analyses, err := s.ListAnalyses(context.Background())
		if err == nil && len(analyses) == 1 {
			observed = analyses[0]
		}
	}}
	orch.gateway = gateway
	ctx := context.Background()
	job := createJob(t, s)

	_, _, err := orch.Submit(ctx, types.AnalyzeRequest{
		JobID:         job.ID,
		CandidateName: "A",
		ResumeText:    "r",
	})
	require.NoError(t, err)

	require.NotNil(t, observed, "pending analysis should exist while the AI call runs")
	assert.Equal(t, types.AnalysisPending, observed.Status)
	assert.Equal(t, "Analysis in progress...", observed.Summary)
	assert.Equal(t, 0, observed.MatchScore)
}

func TestSubmitTerminalStatusSurvivesCancelledContext(t *testing.T) {
	t.Run("AI failure", func(t *testing.T) {
		orch, s := newTestOrchestrator(t, nil)
		ctx, cancel := context.WithCancel(context.Background())
		orch.gateway = &cancellingGateway{
			cancel: cancel,
			err:    errors.NewAIError(errors.ErrCodeAIServiceFailed, "context canceled", nil),
		}
		job := createJob(t, s)

		_, _, err := orch.Submit(ctx, types.AnalyzeRequest{
			JobID:         job.ID,
			CandidateName: "A",
			ResumeText:    "r",
		})
		require.Error(t, err)

		// The client is gone but the analysis must still reach a terminal state
		analyses, err := s.ListAnalyses(context.Background())
		require.NoError(t, err)
		require.Len(t, analyses, 1)
		assert.Equal(t, types.AnalysisFailed, analyses[0].Status)
		assert.Equal(t, "AI analysis failed. Please try again.", analyses[0].Summary)
	})

	t.Run("AI success", func(t *testing.T) {
		orch, s := newTestOrchestrator(t, nil)
		ctx, cancel := context.WithCancel(context.Background())
		orch.gateway = &cancellingGateway{
			cancel: cancel,
			result: types.MatchResult{MatchScore: 70, Summary: "ok", Strengths: []string{}, Weaknesses: []string{}, MissingQualifications: []string{}},
		}
		job := createJob(t, s)

		analysis, _, err := orch.Submit(ctx, types.AnalyzeRequest{
			JobID:         job.ID,
			CandidateName: "A",
			ResumeText:    "r",
		})
		require.NoError(t, err)
		assert.Equal(t, types.AnalysisCompleted, analysis.Status)
		assert.Equal(t, 70, analysis.MatchScore)
	})
}

// cancellingGateway cancels the request context before returning, the way a
// client disconnect surfaces mid-call.
type cancellingGateway struct {
	cancel context.CancelFunc
	result types.MatchResult
	err    error
}

func (c *cancellingGateway) ScreenResume(ctx context.Context, input types.MatchInput) (types.MatchResult, *ai.TokenUsage, error) {
	c.cancel()
	if c.err != nil {
		return types.MatchResult{}, nil, c.err
	}
	return c.result, nil, nil
}

func (c *cancellingGateway) GetModelInfo(ctx context.Context) *ai.ModelInfo {
	return &ai.ModelInfo{Available: true}
}

func (c *cancellingGateway) GetCircuitBreakerStats() map[string]any { return nil }

func (c *cancellingGateway) Close() error { return nil }

type checkingGateway struct {
	check func()
}

func (c *checkingGateway) ScreenResume(ctx context.Context, input types.MatchInput) (types.MatchResult, *ai.TokenUsage, error) {
	c.check()
	return types.MatchResult{MatchScore: 50, Summary: "ok", Strengths: []string{}, Weaknesses: []string{}, MissingQualifications: []string{}}, nil, nil
}

func (c *checkingGateway) GetModelInfo(ctx context.Context) *ai.ModelInfo {
	return &ai.ModelInfo{Available: true}
}

func (c *checkingGateway) GetCircuitBreakerStats() map[string]any { return nil }

func (c *checkingGateway) Close() error { return nil }
