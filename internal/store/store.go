// Package store provides persistent storage for jobs, resumes, and analyses.
package store

import (
	"context"
	"errors"

	"talentscreen/internal/types"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the persistence operations used by the HTTP server and
// the screening orchestrator.
type Store interface {
	CreateJob(ctx context.Context, input types.JobInput) (*types.Job, error)
	ListJobs(ctx context.Context) ([]*types.Job, error)
	GetJob(ctx context.Context, id int64) (*types.Job, error)

	CreateResume(ctx context.Context, input types.ResumeInput) (*types.Resume, error)
	ListResumes(ctx context.Context) ([]*types.Resume, error)
	GetResume(ctx context.Context, id int64) (*types.Resume, error)

	CreateAnalysis(ctx context.Context, input types.AnalysisInput) (*types.Analysis, error)
	ListAnalyses(ctx context.Context) ([]*types.Analysis, error)
	GetAnalysis(ctx context.Context, id int64) (*types.Analysis, error)
	UpdateAnalysis(ctx context.Context, id int64, update types.AnalysisUpdate) (*types.Analysis, error)

	Ping(ctx context.Context) error
	Close() error
}
