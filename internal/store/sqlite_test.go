package store

import (
	"context"
	"path/filepath"
	"testing"

	"talentscreen/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestStore creates a store backed by a temporary database
func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dbPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestCreateAndGetJob(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	job, err := s.CreateJob(ctx, types.JobInput{
		Title:        "Backend Engineer",
		Department:   "Engineering",
		Description:  "Build and run Go services.",
		Requirements: "- Go\n- SQL",
	})
	require.NoError(t, err)
	assert.NotZero(t, job.ID)
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.False(t, job.CreatedAt.IsZero())

	got, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, "Engineering", got.Department)
}

func TestGetJobNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetJob(context.Background(), 9999)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListJobsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.CreateJob(ctx, types.JobInput{Title: "First", Description: "d"})
	require.NoError(t, err)
	second, err := s.CreateJob(ctx, types.JobInput{Title: "Second", Description: "d"})
	require.NoError(t, err)

	jobs, err := s.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	// Rows created within the same timestamp still list newest first
	assert.Equal(t, second.ID, jobs[0].ID)
	assert.Equal(t, first.ID, jobs[1].ID)
}

func TestCreateAndGetResume(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	resume, err := s.CreateResume(ctx, types.ResumeInput{
		CandidateName: "Jane Candidate",
		FileName:      "jane.txt",
		Content:       "10 years of Go experience.",
	})
	require.NoError(t, err)
	assert.NotZero(t, resume.ID)

	got, err := s.GetResume(ctx, resume.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Candidate", got.CandidateName)
	assert.Equal(t, "10 years of Go experience.", got.Content)
}

func TestCreateAnalysisDefaults(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	job, err := s.CreateJob(ctx, types.JobInput{Title: "Job", Description: "d"})
	require.NoError(t, err)
	resume, err := s.CreateResume(ctx, types.ResumeInput{CandidateName: "A", Content: "c"})
	require.NoError(t, err)

	analysis, err := s.CreateAnalysis(ctx, types.AnalysisInput{
		JobID:    job.ID,
		ResumeID: resume.ID,
		Summary:  "Analysis in progress...",
	})
	require.NoError(t, err)

	assert.Equal(t, types.AnalysisPending, analysis.Status)
	assert.Equal(t, 0, analysis.MatchScore)
	assert.Equal(t, "Analysis in progress...", analysis.Summary)

	// List fields decode to empty slices, never nil
	assert.NotNil(t, analysis.Strengths)
	assert.Empty(t, analysis.Strengths)
	assert.NotNil(t, analysis.Weaknesses)
	assert.NotNil(t, analysis.MissingQualifications)
}

func TestUpdateAnalysisPartial(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	job, err := s.CreateJob(ctx, types.JobInput{Title: "Job", Description: "d"})
	require.NoError(t, err)
	resume, err := s.CreateResume(ctx, types.ResumeInput{CandidateName: "A", Content: "c"})
	require.NoError(t, err)
	analysis, err := s.CreateAnalysis(ctx, types.AnalysisInput{
		JobID:    job.ID,
		ResumeID: resume.ID,
		Summary:  "Analysis in progress...",
	})
	require.NoError(t, err)

	score := 85
	summary := "Strong match."
	completed := types.AnalysisCompleted
	updated, err := s.UpdateAnalysis(ctx, analysis.ID, types.AnalysisUpdate{
		MatchScore:            &score,
		Summary:               &summary,
		Strengths:             []string{"Go", "SQL"},
		Weaknesses:            []string{"No Kubernetes"},
		MissingQualifications: []string{},
		Status:                &completed,
	})
	require.NoError(t, err)

	assert.Equal(t, 85, updated.MatchScore)
	assert.Equal(t, "Strong match.", updated.Summary)
	assert.Equal(t, []string{"Go", "SQL"}, updated.Strengths)
	assert.Equal(t, []string{"No Kubernetes"}, updated.Weaknesses)
	assert.Empty(t, updated.MissingQualifications)
	assert.Equal(t, types.AnalysisCompleted, updated.Status)

	// Untouched fields survive a partial update
	failed := types.AnalysisFailed
	failedSummary := "AI analysis failed. Please try again."
	updated, err = s.UpdateAnalysis(ctx, analysis.ID, types.AnalysisUpdate{
		Summary: &failedSummary,
		Status:  &failed,
	})
	require.NoError(t, err)

	assert.Equal(t, 85, updated.MatchScore)
	assert.Equal(t, []string{"Go", "SQL"}, updated.Strengths)
	assert.Equal(t, types.AnalysisFailed, updated.Status)
}

func TestUpdateAnalysisNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.UpdateAnalysis(context.Background(), 424242, types.AnalysisUpdate{})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAnalysesNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	job, err := s.CreateJob(ctx, types.JobInput{Title: "Job", Description: "d"})
	require.NoError(t, err)
	resume, err := s.CreateResume(ctx, types.ResumeInput{CandidateName: "A", Content: "c"})
	require.NoError(t, err)

	first, err := s.CreateAnalysis(ctx, types.AnalysisInput{JobID: job.ID, ResumeID: resume.ID})
	require.NoError(t, err)
	second, err := s.CreateAnalysis(ctx, types.AnalysisInput{JobID: job.ID, ResumeID: resume.ID})
	require.NoError(t, err)

	analyses, err := s.ListAnalyses(ctx)
	require.NoError(t, err)
	require.Len(t, analyses, 2)
	assert.Equal(t, second.ID, analyses[0].ID)
	assert.Equal(t, first.ID, analyses[1].ID)
}

func TestSeedDemoJobs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, SeedDemoJobs(ctx, s, nil))

	jobs, err := s.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	// Seeding again must not duplicate
	require.NoError(t, SeedDemoJobs(ctx, s, nil))
	jobs, err = s.ListJobs(ctx)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	titles := []string{jobs[0].Title, jobs[1].Title}
	assert.Contains(t, titles, "Senior Full Stack Engineer")
	assert.Contains(t, titles, "Product Marketing Manager")
}
