// Package screening coordinates the resume analysis lifecycle: resume
// intake, pending analysis creation, the AI call, and the final status
// transition.
package screening

import (
	"context"
	"strings"

	"talentscreen/internal/ai"
	"talentscreen/internal/errors"
	"talentscreen/internal/store"
	"talentscreen/internal/types"
)

const (
	pendingSummary = "Analysis in progress..."
	failedSummary  = "AI analysis failed. Please try again."
)

// Orchestrator runs resume screening against stored jobs.
type Orchestrator struct {
	store   store.Store
	gateway ai.Gateway
	logger  *errors.Logger
}

// NewOrchestrator creates a screening orchestrator.
func NewOrchestrator(s store.Store, gateway ai.Gateway, logger *errors.Logger) *Orchestrator {
	return &Orchestrator{
		store:   s,
		gateway: gateway,
		logger:  logger,
	}
}

// validateRequest checks the analyze request fields before any record is written.
func validateRequest(req types.AnalyzeRequest) error {
	if req.JobID <= 0 {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"jobId is required", nil).WithField("jobId")
	}
	if strings.TrimSpace(req.CandidateName) == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"candidateName is required", nil).WithField("candidateName")
	}
	if strings.TrimSpace(req.ResumeText) == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"resumeText is required", nil).WithField("resumeText")
	}
	return nil
}

// Submit runs one screening request end to end.
//
// The resume record and the analysis record are kept even when the AI
// call fails: the analysis is marked failed instead of being rolled
// back, so the dashboard can show the attempt.
func (o *Orchestrator) Submit(ctx context.Context, req types.AnalyzeRequest) (*types.Analysis, *ai.TokenUsage, error) {
	if err := validateRequest(req); err != nil {
		return nil, nil, err
	}

	// Job must exist before anything is persisted
	job, err := o.store.GetJob(ctx, req.JobID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, nil, errors.NewNotFoundError(errors.ErrCodeJobNotFound, "Job not found", nil)
		}
		return nil, nil, errors.NewStorageError(errors.ErrCodeStorageFailed, "Failed to load job", err)
	}

	resume, err := o.store.CreateResume(ctx, types.ResumeInput{
		CandidateName: req.CandidateName,
		FileName:      req.FileName,
		Content:       req.ResumeText,
	})
	if err != nil {
		return nil, nil, errors.NewStorageError(errors.ErrCodeStorageFailed, "Failed to store resume", err)
	}

	analysis, err := o.store.CreateAnalysis(ctx, types.AnalysisInput{
		JobID:    job.ID,
		ResumeID: resume.ID,
		Summary:  pendingSummary,
		Status:   types.AnalysisPending,
	})
	if err != nil {
		return nil, nil, errors.NewStorageError(errors.ErrCodeStorageFailed, "Failed to create analysis", err)
	}

	o.logger.Info("Screening started",
		"analysis_id", analysis.ID,
		"job_id", job.ID,
		"resume_id", resume.ID,
		"candidate", req.CandidateName)

	result, tokenUsage, aiErr := o.gateway.ScreenResume(ctx, types.MatchInput{
		JobTitle:        job.Title,
		JobDescription:  job.Description,
		JobRequirements: job.Requirements,
		ResumeText:      resume.Content,
	})

	// The terminal status update must land even when the request context
	// was cancelled during the AI call, otherwise the row stays pending
	// forever. Only a process crash may leave a pending row behind.
	updateCtx := context.WithoutCancel(ctx)

	if aiErr != nil {
		o.markFailed(updateCtx, analysis.ID, aiErr)
		return nil, nil, aiErr
	}

	completed := types.AnalysisCompleted
	updated, err := o.store.UpdateAnalysis(updateCtx, analysis.ID, types.AnalysisUpdate{
		MatchScore:            &result.MatchScore,
		Summary:               &result.Summary,
		Strengths:             result.Strengths,
		Weaknesses:            result.Weaknesses,
		MissingQualifications: result.MissingQualifications,
		Status:                &completed,
	})
	if err != nil {
		return nil, tokenUsage, errors.NewStorageError(errors.ErrCodeStorageFailed,
			"Failed to store analysis result", err)
	}

	o.logger.Info("Screening completed",
		"analysis_id", updated.ID,
		"job_id", job.ID,
		"match_score", updated.MatchScore)

	return updated, tokenUsage, nil
}

// markFailed transitions an analysis to failed after an AI error. The
// update is best-effort: a storage error here is logged, not returned,
// because the caller already has the AI failure to report.
func (o *Orchestrator) markFailed(ctx context.Context, analysisID int64, aiErr error) {
	o.logger.LogError(aiErr, "AI analysis failed", "analysis_id", analysisID)

	failed := types.AnalysisFailed
	summary := failedSummary
	if _, err := o.store.UpdateAnalysis(ctx, analysisID, types.AnalysisUpdate{
		Summary: &summary,
		Status:  &failed,
	}); err != nil {
		o.logger.LogError(err, "Failed to mark analysis as failed", "analysis_id", analysisID)
	}
}
