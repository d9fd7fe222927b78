package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"talentscreen/internal/errors"
	"talentscreen/internal/types"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store on top of a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *errors.Logger
}

// Open opens (and creates if necessary) the SQLite database at path.
// An empty path resolves to $HOME/.talentscreen/talentscreen.db.
func Open(path string, logger *errors.Logger) (*SQLiteStore, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir := filepath.Join(homeDir, ".talentscreen")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		path = filepath.Join(dir, "talentscreen.db")
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if logger != nil {
		logger.Info("Database opened", "path", path)
	}

	return s, nil
}

// runMigrations creates all necessary tables
func (s *SQLiteStore) runMigrations() error {
	schema := `
	CREATE TABLE IF NOT EXISTS jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		department TEXT,
		description TEXT NOT NULL,
		requirements TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS resumes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		candidate_name TEXT NOT NULL,
		file_name TEXT,
		content TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS analyses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id INTEGER NOT NULL,
		resume_id INTEGER NOT NULL,
		match_score INTEGER NOT NULL DEFAULT 0,
		summary TEXT NOT NULL DEFAULT '',
		strengths TEXT NOT NULL DEFAULT '[]',
		weaknesses TEXT NOT NULL DEFAULT '[]',
		missing_qualifications TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'completed', 'failed')),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (job_id) REFERENCES jobs(id) ON DELETE CASCADE,
		FOREIGN KEY (resume_id) REFERENCES resumes(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_job_id ON analyses(job_id);
	CREATE INDEX IF NOT EXISTS idx_analyses_resume_id ON analyses(resume_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Ping verifies the database connection is alive.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Job operations

func (s *SQLiteStore) CreateJob(ctx context.Context, input types.JobInput) (*types.Job, error) {
	query := `INSERT INTO jobs (title, department, description, requirements) VALUES (?, ?, ?, ?)`
	result, err := s.db.ExecContext(ctx, query, input.Title, input.Department, input.Description, input.Requirements)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetJob(ctx, id)
}

func (s *SQLiteStore) ListJobs(ctx context.Context) ([]*types.Job, error) {
	query := `SELECT id, title, department, description, requirements, created_at
			  FROM jobs ORDER BY created_at DESC, id DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []*types.Job{}
	for rows.Next() {
		job := &types.Job{}
		if err := rows.Scan(&job.ID, &job.Title, &job.Department, &job.Description,
			&job.Requirements, &job.CreatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (s *SQLiteStore) GetJob(ctx context.Context, id int64) (*types.Job, error) {
	query := `SELECT id, title, department, description, requirements, created_at
			  FROM jobs WHERE id=?`
	job := &types.Job{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(&job.ID, &job.Title, &job.Department,
		&job.Description, &job.Requirements, &job.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Resume operations

func (s *SQLiteStore) CreateResume(ctx context.Context, input types.ResumeInput) (*types.Resume, error) {
	query := `INSERT INTO resumes (candidate_name, file_name, content) VALUES (?, ?, ?)`
	result, err := s.db.ExecContext(ctx, query, input.CandidateName, input.FileName, input.Content)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetResume(ctx, id)
}

func (s *SQLiteStore) ListResumes(ctx context.Context) ([]*types.Resume, error) {
	query := `SELECT id, candidate_name, file_name, content, created_at
			  FROM resumes ORDER BY created_at DESC, id DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resumes := []*types.Resume{}
	for rows.Next() {
		resume := &types.Resume{}
		if err := rows.Scan(&resume.ID, &resume.CandidateName, &resume.FileName,
			&resume.Content, &resume.CreatedAt); err != nil {
			return nil, err
		}
		resumes = append(resumes, resume)
	}
	return resumes, rows.Err()
}

func (s *SQLiteStore) GetResume(ctx context.Context, id int64) (*types.Resume, error) {
	query := `SELECT id, candidate_name, file_name, content, created_at
			  FROM resumes WHERE id=?`
	resume := &types.Resume{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(&resume.ID, &resume.CandidateName,
		&resume.FileName, &resume.Content, &resume.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return resume, nil
}

// Analysis operations

func (s *SQLiteStore) CreateAnalysis(ctx context.Context, input types.AnalysisInput) (*types.Analysis, error) {
	status := input.Status
	if status == "" {
		status = types.AnalysisPending
	}
	query := `INSERT INTO analyses (job_id, resume_id, match_score, summary, status)
			  VALUES (?, ?, ?, ?, ?)`
	result, err := s.db.ExecContext(ctx, query, input.JobID, input.ResumeID,
		input.MatchScore, input.Summary, string(status))
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetAnalysis(ctx, id)
}

func (s *SQLiteStore) ListAnalyses(ctx context.Context) ([]*types.Analysis, error) {
	query := `SELECT id, job_id, resume_id, match_score, summary, strengths, weaknesses,
			  missing_qualifications, status, created_at
			  FROM analyses ORDER BY created_at DESC, id DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	analyses := []*types.Analysis{}
	for rows.Next() {
		analysis, err := scanAnalysis(rows.Scan)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}
	return analyses, rows.Err()
}

func (s *SQLiteStore) GetAnalysis(ctx context.Context, id int64) (*types.Analysis, error) {
	query := `SELECT id, job_id, resume_id, match_score, summary, strengths, weaknesses,
			  missing_qualifications, status, created_at
			  FROM analyses WHERE id=?`
	analysis, err := scanAnalysis(s.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

func (s *SQLiteStore) UpdateAnalysis(ctx context.Context, id int64, update types.AnalysisUpdate) (*types.Analysis, error) {
	current, err := s.GetAnalysis(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.MatchScore != nil {
		current.MatchScore = *update.MatchScore
	}
	if update.Summary != nil {
		current.Summary = *update.Summary
	}
	if update.Strengths != nil {
		current.Strengths = update.Strengths
	}
	if update.Weaknesses != nil {
		current.Weaknesses = update.Weaknesses
	}
	if update.MissingQualifications != nil {
		current.MissingQualifications = update.MissingQualifications
	}
	if update.Status != nil {
		current.Status = *update.Status
	}

	strengths, err := marshalStringList(current.Strengths)
	if err != nil {
		return nil, err
	}
	weaknesses, err := marshalStringList(current.Weaknesses)
	if err != nil {
		return nil, err
	}
	missing, err := marshalStringList(current.MissingQualifications)
	if err != nil {
		return nil, err
	}

	query := `UPDATE analyses SET match_score=?, summary=?, strengths=?, weaknesses=?,
			  missing_qualifications=?, status=? WHERE id=?`
	if _, err := s.db.ExecContext(ctx, query, current.MatchScore, current.Summary,
		strengths, weaknesses, missing, string(current.Status), id); err != nil {
		return nil, err
	}

	return s.GetAnalysis(ctx, id)
}

// scanAnalysis scans one analysis row, decoding the JSON-encoded list columns.
func scanAnalysis(scan func(dest ...any) error) (*types.Analysis, error) {
	analysis := &types.Analysis{}
	var strengths, weaknesses, missing, status string

	err := scan(&analysis.ID, &analysis.JobID, &analysis.ResumeID, &analysis.MatchScore,
		&analysis.Summary, &strengths, &weaknesses, &missing, &status, &analysis.CreatedAt)
	if err != nil {
		return nil, err
	}

	analysis.Status = types.AnalysisStatus(status)
	if analysis.Strengths, err = unmarshalStringList(strengths); err != nil {
		return nil, err
	}
	if analysis.Weaknesses, err = unmarshalStringList(weaknesses); err != nil {
		return nil, err
	}
	if analysis.MissingQualifications, err = unmarshalStringList(missing); err != nil {
		return nil, err
	}

	return analysis, nil
}

func marshalStringList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalStringList(data string) ([]string, error) {
	if data == "" {
		return []string{}, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}
