package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"talentscreen/internal/observability"
	"talentscreen/internal/store"
	"talentscreen/internal/types"

	tsErrors "talentscreen/internal/errors"

	"go.opentelemetry.io/otel/attribute"
)

// createListJobsHandler returns the handler for GET /api/jobs
func (s *Server) createListJobsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("talentscreen.api")
		ctx, span := tracer.Start(ctx, "api.jobs.list")
		defer span.End()

		jobs, err := s.Store.ListJobs(ctx)
		if err != nil {
			span.RecordError(err)
			s.Logger.LogError(err, "Failed to list jobs")
			writeErrorResponse(w, "Failed to fetch jobs", "", http.StatusInternalServerError)
			return
		}

		span.SetAttributes(attribute.Int("response.job_count", len(jobs)))
		writeJSONResponse(w, http.StatusOK, jobs)
	}
}

// createJobHandler returns the handler for POST /api/jobs
func (s *Server) createJobHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("talentscreen.api")
		ctx, span := tracer.Start(ctx, "api.jobs.create")
		defer span.End()

		var req CreateJobRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body: "+err.Error(), "", http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.Title) == "" {
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Job title is required", "title", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Description) == "" {
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Job description is required", "description", http.StatusBadRequest)
			return
		}

		job, err := s.Store.CreateJob(ctx, types.JobInput{
			Title:        req.Title,
			Department:   req.Department,
			Description:  req.Description,
			Requirements: req.Requirements,
		})
		if err != nil {
			span.RecordError(err)
			s.Logger.LogError(err, "Failed to create job", "title", req.Title)
			writeErrorResponse(w, "Failed to create job", "", http.StatusInternalServerError)
			return
		}

		metrics := om.GetMetrics()
		metrics.RecordBusinessMetric(ctx, "job_created", true, om,
			attribute.String("job.title", job.Title))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int64("job.id", job.ID),
		)
		writeJSONResponse(w, http.StatusCreated, job)
	}
}

// createGetJobHandler returns the handler for GET /api/jobs/{id}
func (s *Server) createGetJobHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("talentscreen.api")
		ctx, span := tracer.Start(ctx, "api.jobs.get")
		defer span.End()

		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid job ID", "", http.StatusBadRequest)
			return
		}
		span.SetAttributes(attribute.Int64("job.id", id))

		job, err := s.Store.GetJob(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeErrorResponse(w, "Job not found", "", http.StatusNotFound)
				return
			}
			span.RecordError(err)
			s.Logger.LogError(err, "Failed to fetch job", "job_id", id)
			writeErrorResponse(w, "Failed to fetch job", "", http.StatusInternalServerError)
			return
		}

		writeJSONResponse(w, http.StatusOK, job)
	}
}

// createListAnalysesHandler returns the handler for GET /api/analyses
func (s *Server) createListAnalysesHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("talentscreen.api")
		ctx, span := tracer.Start(ctx, "api.analyses.list")
		defer span.End()

		analyses, err := s.Store.ListAnalyses(ctx)
		if err != nil {
			span.RecordError(err)
			s.Logger.LogError(err, "Failed to list analyses")
			writeErrorResponse(w, "Failed to fetch analyses", "", http.StatusInternalServerError)
			return
		}

		span.SetAttributes(attribute.Int("response.analysis_count", len(analyses)))
		writeJSONResponse(w, http.StatusOK, analyses)
	}
}

// createGetAnalysisHandler returns the handler for GET /api/analyses/{id}
func (s *Server) createGetAnalysisHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("talentscreen.api")
		ctx, span := tracer.Start(ctx, "api.analyses.get")
		defer span.End()

		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid analysis ID", "", http.StatusBadRequest)
			return
		}
		span.SetAttributes(attribute.Int64("analysis.id", id))

		analysis, err := s.Store.GetAnalysis(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeErrorResponse(w, "Analysis not found", "", http.StatusNotFound)
				return
			}
			span.RecordError(err)
			s.Logger.LogError(err, "Failed to fetch analysis", "analysis_id", id)
			writeErrorResponse(w, "Failed to fetch analysis", "", http.StatusInternalServerError)
			return
		}

		writeJSONResponse(w, http.StatusOK, analysis)
	}
}

// createAnalyzeHandler returns the handler for POST /api/analyze. It runs the
// full screening flow: persist the resume, create a pending analysis, call the
// AI gateway, and finalize the analysis record.
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("talentscreen.api")
		ctx, span := tracer.Start(ctx, "api.analyze")
		defer span.End()

		var req AnalyzeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body: "+err.Error(), "", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int64("job.id", req.JobID),
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.String("operation", "screen"),
		)

		// Track the AI-backed screening with observability and token usage
		metrics := om.GetMetrics()
		var analysis *types.Analysis
		err := metrics.TrackAIOperationWithTokens(ctx, "screen", func(ctx context.Context) *observability.AIOperationResult {
			result, tokenUsage, subErr := s.Orchestrator.Submit(ctx, types.AnalyzeRequest{
				JobID:         req.JobID,
				ResumeText:    req.ResumeText,
				CandidateName: req.CandidateName,
				FileName:      req.FileName,
			})
			analysis = result
			return &observability.AIOperationResult{
				Error:      subErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			s.writeScreeningError(w, r, err)
			metrics.RecordBusinessMetric(ctx, "resume_screened", false, om,
				attribute.String("error", err.Error()))
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_screened", true, om,
			attribute.Int("match.score", analysis.MatchScore))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int64("analysis.id", analysis.ID),
			attribute.Int("match.score", analysis.MatchScore),
		)
		writeJSONResponse(w, http.StatusCreated, analysis)
	}
}

// writeScreeningError maps screening failures onto HTTP responses. Validation
// problems carry the offending field name; AI failures always report the same
// message because the pending analysis has already been marked failed.
func (s *Server) writeScreeningError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *tsErrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case tsErrors.ErrorTypeValidation:
			writeErrorResponse(w, appErr.Message, appErr.Field(), http.StatusBadRequest)
			return
		case tsErrors.ErrorTypeNotFound:
			writeErrorResponse(w, appErr.Message, "", http.StatusNotFound)
			return
		case tsErrors.ErrorTypeAI:
			s.Logger.LogError(err, "AI screening failed", "endpoint", r.URL.Path)
			writeErrorResponse(w, "AI Analysis failed", "", http.StatusInternalServerError)
			return
		}
	}

	s.Logger.LogError(err, "Screening failed", "endpoint", r.URL.Path)
	writeErrorResponse(w, "Failed to analyze resume", "", http.StatusInternalServerError)
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Check if this request was rate limited by examining the response
			// We'll wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// writeJSONResponse writes a JSON body with the given status code
func writeJSONResponse(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
