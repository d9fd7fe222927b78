package types

import "time"

// AnalysisStatus is the lifecycle state of an Analysis record
type AnalysisStatus string

const (
	AnalysisPending   AnalysisStatus = "pending"
	AnalysisCompleted AnalysisStatus = "completed"
	AnalysisFailed    AnalysisStatus = "failed"
)

// Job represents an open position candidates are screened against
type Job struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Department   string    `json:"department,omitempty"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// JobInput holds the fields a caller supplies when creating a Job
type JobInput struct {
	Title        string `json:"title"`
	Department   string `json:"department,omitempty"`
	Description  string `json:"description"`
	Requirements string `json:"requirements,omitempty"`
}

// Resume represents the raw resume text submitted for one candidate
type Resume struct {
	ID            int64     `json:"id"`
	CandidateName string    `json:"candidateName"`
	FileName      string    `json:"fileName,omitempty"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ResumeInput holds the fields for creating a Resume
type ResumeInput struct {
	CandidateName string `json:"candidateName"`
	FileName      string `json:"fileName,omitempty"`
	Content       string `json:"content"`
}

// Analysis binds a Job and a Resume to an AI screening result.
// Strengths, Weaknesses and MissingQualifications are always non-nil;
// they stay empty until the analysis completes.
type Analysis struct {
	ID                    int64          `json:"id"`
	JobID                 int64          `json:"jobId"`
	ResumeID              int64          `json:"resumeId"`
	MatchScore            int            `json:"matchScore"`
	Summary               string         `json:"summary"`
	Strengths             []string       `json:"strengths"`
	Weaknesses            []string       `json:"weaknesses"`
	MissingQualifications []string       `json:"missingQualifications"`
	Status                AnalysisStatus `json:"status"`
	CreatedAt             time.Time      `json:"createdAt"`
}

// AnalysisInput holds the fields for creating an Analysis record
type AnalysisInput struct {
	JobID      int64
	ResumeID   int64
	MatchScore int
	Summary    string
	Status     AnalysisStatus
}

// AnalysisUpdate is a partial update applied to an existing Analysis.
// Nil fields are left untouched.
type AnalysisUpdate struct {
	MatchScore            *int
	Summary               *string
	Strengths             []string
	Weaknesses            []string
	MissingQualifications []string
	Status                *AnalysisStatus
}

// AnalyzeRequest is the payload for submitting a resume against a job
type AnalyzeRequest struct {
	JobID         int64  `json:"jobId"`
	ResumeText    string `json:"resumeText"`
	CandidateName string `json:"candidateName"`
	FileName      string `json:"fileName,omitempty"`
}

// MatchInput is what the AI gateway needs to score a resume against a job
type MatchInput struct {
	JobTitle        string `json:"jobTitle"`
	JobDescription  string `json:"jobDescription"`
	JobRequirements string `json:"jobRequirements"`
	ResumeText      string `json:"resumeText"`
}

// MatchResult is the structured reply the AI gateway produces
type MatchResult struct {
	MatchScore            int      `json:"matchScore"`
	Summary               string   `json:"summary"`
	Strengths             []string `json:"strengths"`
	Weaknesses            []string `json:"weaknesses"`
	MissingQualifications []string `json:"missingQualifications"`
}
